package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunningHub(t *testing.T) *Hub {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	hub := NewHub(log)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func newTestClient(hub *Hub) *Client {
	return &Client{hub: hub, send: make(chan []byte, 8), userID: uuid.New()}
}

func waitForSubscribers(t *testing.T, hub *Hub, channel string, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(channel) == want
	}, time.Second, 5*time.Millisecond)
}

func TestHub_BroadcastReachesSubscribers(t *testing.T) {
	hub := newRunningHub(t)

	sub := newTestClient(hub)
	other := newTestClient(hub)
	hub.Register(sub)
	hub.Register(other)
	hub.Subscribe(sub, "lobby:ABC123")
	hub.Subscribe(other, "lobby:XYZ789")
	waitForSubscribers(t, hub, "lobby:ABC123", 1)
	waitForSubscribers(t, hub, "lobby:XYZ789", 1)

	hub.Broadcast("lobby:ABC123", []byte("hello"))

	select {
	case data := <-sub.send:
		assert.Equal(t, "hello", string(data))
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the broadcast")
	}

	select {
	case data := <-other.send:
		t.Fatalf("unsubscribed channel received %q", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	hub := newRunningHub(t)

	client := newTestClient(hub)
	hub.Register(client)
	hub.Subscribe(client, "lobby:ABC123")
	waitForSubscribers(t, hub, "lobby:ABC123", 1)

	hub.Unsubscribe(client, "lobby:ABC123")
	waitForSubscribers(t, hub, "lobby:ABC123", 0)

	hub.Broadcast("lobby:ABC123", []byte("late"))
	select {
	case data := <-client.send:
		t.Fatalf("received %q after unsubscribe", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterDropsAllChannels(t *testing.T) {
	hub := newRunningHub(t)

	client := newTestClient(hub)
	hub.Register(client)
	hub.Subscribe(client, "lobby:ABC123")
	hub.Subscribe(client, "lobby:XYZ789")
	waitForSubscribers(t, hub, "lobby:ABC123", 1)
	waitForSubscribers(t, hub, "lobby:XYZ789", 1)

	hub.Unregister(client)
	waitForSubscribers(t, hub, "lobby:ABC123", 0)
	waitForSubscribers(t, hub, "lobby:XYZ789", 0)
}

func TestHub_SlowConsumerDoesNotBlock(t *testing.T) {
	hub := newRunningHub(t)

	slow := &Client{hub: hub, send: make(chan []byte), userID: uuid.New()}
	hub.Register(slow)
	hub.Subscribe(slow, "lobby:ABC123")
	waitForSubscribers(t, hub, "lobby:ABC123", 1)

	// Nothing drains slow.send; both broadcasts must still return promptly.
	done := make(chan struct{})
	go func() {
		hub.Broadcast("lobby:ABC123", []byte("one"))
		hub.Broadcast("lobby:ABC123", []byte("two"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow consumer")
	}
}

func TestHub_BroadcastAfterStopIsNoop(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	hub := NewHub(log)
	go hub.Run()

	hub.Stop()
	hub.Broadcast("lobby:ABC123", []byte("ignored"))
	hub.Stop()
}
