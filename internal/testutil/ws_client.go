package testutil

import (
	"encoding/json"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/patified/patified-backend/internal/relay"
	"github.com/patified/patified-backend/internal/websocket"
)

// WSClient is a websocket test client that subscribes to lobby channels and
// collects the events pushed to it.
type WSClient struct {
	t    *testing.T
	conn *ws.Conn
}

// NewWSClient dials the test server's websocket endpoint with the token.
func NewWSClient(t *testing.T, ts *TestServer, token string) *WSClient {
	t.Helper()

	conn, _, err := ws.DefaultDialer.Dial(ts.WebSocketURL(token), nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}

	client := &WSClient{t: t, conn: conn}
	t.Cleanup(client.Close)
	return client
}

// Subscribe joins a lobby channel and waits for the ack.
func (c *WSClient) Subscribe(lobbyCode string) {
	c.t.Helper()

	msg, err := websocket.NewMessage(websocket.MessageTypeSubscribe, websocket.SubscribePayload{LobbyCode: lobbyCode})
	if err != nil {
		c.t.Fatalf("failed to build subscribe message: %v", err)
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		c.t.Fatalf("failed to send subscribe: %v", err)
	}

	var ack websocket.Message
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := c.conn.ReadJSON(&ack); err != nil {
		c.t.Fatalf("failed to read subscribe ack: %v", err)
	}
	if ack.Type != websocket.MessageTypeSubscribed {
		c.t.Fatalf("expected subscribed ack, got %q", ack.Type)
	}
}

// ReadEvent waits for the next lobby event, failing the test on timeout.
func (c *WSClient) ReadEvent(timeout time.Duration) *relay.Event {
	c.t.Helper()

	c.conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("failed to read event: %v", err)
	}

	var event relay.Event
	if err := json.Unmarshal(data, &event); err != nil {
		c.t.Fatalf("failed to unmarshal event %s: %v", string(data), err)
	}
	return &event
}

// Close shuts the connection down.
func (c *WSClient) Close() {
	c.conn.Close()
}
