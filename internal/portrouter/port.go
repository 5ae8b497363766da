// Package portrouter implements the §4.6 port router: a per-connection
// state machine that frames the dApp wire protocol (handshake, request,
// response, event) over a pluggable Transport.
//
// Grounded on supabase/client/realtime.go's RealtimeClient/Channel shape
// (ref-counted joins, a per-connection read loop dispatching into typed
// handlers, a heartbeat goroutine) generalized from Postgres-changes
// channels to the dApp handshake/request/response/event envelope.
package portrouter

import (
	"context"
	"sync"
)

// State is a port's position in its per-connection state machine.
type State int

const (
	StateConnected State = iota
	StateHandshakeSent
)

// Envelope is one frame of the dApp wire protocol, per spec.md §6.
type Envelope struct {
	Channel   string          `json:"channel"`
	SessionID string          `json:"sessionId,omitempty"`
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   any             `json:"payload,omitempty"`
}

// HandshakePayload is the payload of a "handshake" envelope.
type HandshakePayload struct {
	HandshakeID string `json:"handshakeId"`
}

// HandshakeAckPayload is the payload of a "handshake_ack" envelope.
type HandshakeAckPayload struct {
	ProtocolVersion string   `json:"protocolVersion"`
	HandshakeID     string   `json:"handshakeId"`
	ChainRef        string   `json:"chainRef"`
	ChainID         string   `json:"chainId"`
	Accounts        []string `json:"accounts"`
	IsUnlocked      bool     `json:"isUnlocked"`
	Meta            any      `json:"meta,omitempty"`
}

// RequestPayload is the payload of a "request" envelope: a JSON-RPC call.
type RequestPayload struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// ResponsePayload is the payload of a "response" envelope.
type ResponsePayload struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   any    `json:"error,omitempty"`
}

// EventPayload is the payload of an "event" envelope.
type EventPayload struct {
	Event  string `json:"event"`
	Params []any  `json:"params,omitempty"`
}

const (
	protocolVersion = "1.0"

	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
	EventMetaChanged     = "metaChanged"
	EventDisconnect      = "disconnect"
	EventSessionUnlocked = "session:unlocked"
	EventSessionLocked   = "session:locked"
)

// Transport delivers Envelopes to one connected dApp and reports its
// eventual disconnection.
type Transport interface {
	Send(envelope Envelope) error
}

// Port is one dApp connection: its framing state, last-acked session, and
// the transport it writes through.
type Port struct {
	mu sync.Mutex

	id        string
	origin    string
	transport Transport

	state     State
	sessionID string

	cancelByRequestID map[string]context.CancelFunc
}

func newPort(id, origin string, transport Transport) *Port {
	return &Port{id: id, origin: origin, transport: transport, state: StateConnected, cancelByRequestID: make(map[string]context.CancelFunc)}
}

// ID returns the port's router-assigned identifier.
func (p *Port) ID() string { return p.id }

// Origin returns the dApp origin this port was registered for.
func (p *Port) Origin() string { return p.origin }
