package portrouter

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ChanTransport is an in-memory Transport that queues outbound Envelopes
// onto a channel instead of a network socket, for headless tests and for
// the long-poll HTTP fallback below.
type ChanTransport struct {
	Outbox chan Envelope
}

// NewChanTransport constructs a ChanTransport with a buffered outbox.
func NewChanTransport(buffer int) *ChanTransport {
	return &ChanTransport{Outbox: make(chan Envelope, buffer)}
}

// Send enqueues env onto Outbox, never blocking indefinitely on a full
// buffer: a stuck consumer is a disconnected one.
func (t *ChanTransport) Send(env Envelope) error {
	select {
	case t.Outbox <- env:
		return nil
	default:
		return errOutboxFull
	}
}

var errOutboxFull = httpTransportError("portrouter: outbox full, dropping port")

type httpTransportError string

func (e httpTransportError) Error() string { return string(e) }

// MountHTTP wires a request/drain long-poll transport onto r, mounted
// under prefix, as the second Transport implementation spec.md's ambient
// stack calls for ("a go-chi/chi HTTP transport ... for headless
// testing"): POST prefix/{portId}/send delivers one inbound Envelope,
// GET prefix/{portId}/poll drains whatever the router has queued for
// that port since the last poll.
func MountHTTP(r chi.Router, router *Router, prefix string) {
	r.Route(prefix, func(rt chi.Router) {
		rt.Post("/{portId}/connect", func(w http.ResponseWriter, req *http.Request) {
			portID := chi.URLParam(req, "portId")
			origin := req.URL.Query().Get("origin")
			transport := NewChanTransport(64)
			router.Register(portID, origin, transport)
			w.WriteHeader(http.StatusNoContent)
		})

		rt.Post("/{portId}/send", func(w http.ResponseWriter, req *http.Request) {
			portID := chi.URLParam(req, "portId")
			var env Envelope
			if err := json.NewDecoder(req.Body).Decode(&env); err != nil {
				http.Error(w, "malformed envelope", http.StatusBadRequest)
				return
			}
			router.Handle(req.Context(), portID, env)
			w.WriteHeader(http.StatusAccepted)
		})

		rt.Get("/{portId}/poll", func(w http.ResponseWriter, req *http.Request) {
			portID := chi.URLParam(req, "portId")
			p := router.lookupPort(portID)
			if p == nil {
				http.Error(w, "unknown port", http.StatusNotFound)
				return
			}
			transport, ok := p.transport.(*ChanTransport)
			if !ok {
				http.Error(w, "port is not HTTP-transported", http.StatusConflict)
				return
			}

			envelopes := drain(req.Context(), transport.Outbox)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(envelopes)
		})
	})
}

// drain collects whatever is immediately available on outbox without
// blocking past one long-poll tick.
func drain(ctx context.Context, outbox chan Envelope) []Envelope {
	var out []Envelope
	select {
	case env := <-outbox:
		out = append(out, env)
	case <-ctx.Done():
		return out
	}
	for {
		select {
		case env := <-outbox:
			out = append(out, env)
		default:
			return out
		}
	}
}
