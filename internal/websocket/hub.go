package websocket

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub fans lobby events out to websocket clients. Clients subscribe to one
// channel per lobby ("lobby:<CODE>"); events published on that channel, either
// locally or through the redis bridge, reach every subscriber. The hub owns no
// lobby state of its own; it is a pure delivery layer.
type Hub struct {
	channels    map[string]map[*Client]bool
	clients     map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	subscribe   chan *subscription
	unsubscribe chan *subscription
	broadcast   chan *broadcastRequest
	stop        chan struct{}
	done        chan struct{} // closed when Run() exits
	stopped     bool
	log         *logrus.Logger
	mu          sync.RWMutex
}

type subscription struct {
	client  *Client
	channel string
}

type broadcastRequest struct {
	channel string
	data    []byte
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		channels:    make(map[string]map[*Client]bool),
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan *subscription),
		unsubscribe: make(chan *subscription),
		broadcast:   make(chan *broadcastRequest, 256),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		log:         log,
	}
}

func (h *Hub) Run() {
	defer close(h.done) // Signal that Run() has exited

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.channels = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if !h.stopped {
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					h.dropFromChannels(client)
					client.Close()
				}
			}
			h.mu.Unlock()

		case sub := <-h.subscribe:
			h.mu.Lock()
			if !h.stopped {
				if h.channels[sub.channel] == nil {
					h.channels[sub.channel] = make(map[*Client]bool)
				}
				h.channels[sub.channel][sub.client] = true
			}
			h.mu.Unlock()

		case sub := <-h.unsubscribe:
			h.mu.Lock()
			if !h.stopped {
				if subs := h.channels[sub.channel]; subs != nil {
					delete(subs, sub.client)
					if len(subs) == 0 {
						delete(h.channels, sub.channel)
					}
				}
			}
			h.mu.Unlock()

		case req := <-h.broadcast:
			h.mu.RLock()
			for client := range h.channels[req.channel] {
				select {
				case client.send <- req.data:
				default:
					// Slow consumer; skip rather than stall delivery.
					h.log.WithField("channel", req.channel).Warn("dropping event for slow websocket client")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop gracefully shuts down the hub. It blocks until Run() has exited.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

// Broadcast delivers a raw event payload to every subscriber of the channel.
// Safe to call from any goroutine, including after Stop.
func (h *Hub) Broadcast(channel string, data []byte) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.broadcast <- &broadcastRequest{channel: channel, data: data}:
	default:
		h.log.WithField("channel", channel).Warn("hub broadcast queue full, dropping event")
	}
}

// SubscriberCount reports how many clients listen on a channel.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister safely unregisters a client, tolerating a hub mid-shutdown.
func (h *Hub) Unregister(client *Client) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.unregister <- client:
	default:
	}
}

func (h *Hub) Subscribe(client *Client, channel string) {
	select {
	case h.subscribe <- &subscription{client: client, channel: channel}:
	case <-h.done:
	}
}

func (h *Hub) Unsubscribe(client *Client, channel string) {
	select {
	case h.unsubscribe <- &subscription{client: client, channel: channel}:
	case <-h.done:
	}
}

// dropFromChannels must run with h.mu held.
func (h *Hub) dropFromChannels(client *Client) {
	for name, subs := range h.channels {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.channels, name)
		}
	}
}
