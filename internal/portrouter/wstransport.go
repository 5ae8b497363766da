package portrouter

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Grounded on supabase/client/realtime.go's RealtimeClient: a dialed
// *websocket.Conn with a single read loop and a heartbeat ticker,
// generalized here to the server side of the dApp port connection and to
// the Envelope framing instead of Phoenix channel frames.

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const wsHeartbeatInterval = 25 * time.Second

// WSTransport is a Transport backed by one upgraded WebSocket connection.
// Writes are serialized with a mutex since *websocket.Conn forbids
// concurrent writers.
type WSTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSTransport wraps an already-upgraded connection.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{conn: conn}
}

// Send writes env as a JSON text frame.
func (t *WSTransport) Send(env Envelope) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteJSON(env)
}

// Close closes the underlying connection.
func (t *WSTransport) Close() error {
	return t.conn.Close()
}

// ServeWS upgrades r and runs the read loop, feeding every decoded
// Envelope into router.Handle(ctx, portID, env) until the connection
// closes, then disconnects the port. A heartbeat goroutine pings on
// wsHeartbeatInterval, per realtime.go's heartbeat() pattern.
func ServeWS(ctx context.Context, router *Router, portID, origin string, w http.ResponseWriter, r *http.Request, log *logrus.Entry) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	transport := NewWSTransport(conn)
	router.Register(portID, origin, transport)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(wsHeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				transport.mu.Lock()
				err := conn.WriteMessage(websocket.PingMessage, nil)
				transport.mu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()
	defer close(done)
	defer router.Disconnect(portID, "transport_closed")
	defer conn.Close()

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if log != nil {
				log.WithError(err).WithField("port", portID).Debug("portrouter: ws read loop ended")
			}
			return nil
		}
		router.Handle(ctx, portID, env)
	}
}
