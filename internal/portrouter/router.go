package portrouter

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/walletd/core/internal/accounts"
	"github.com/walletd/core/internal/approvals"
	"github.com/walletd/core/internal/chainregistry"
	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/obsmetrics"
	"github.com/walletd/core/internal/permissions"
	"github.com/walletd/core/internal/rpcengine"
	"github.com/walletd/core/internal/walleterrors"
)

// unlockChecker is the narrow view of the unlock session Router needs.
type unlockChecker interface {
	IsUnlocked() bool
}

// Router multiplexes every connected Port's handshake/request/event
// traffic onto the shared controllers, per spec.md §4.6.
type Router struct {
	mu sync.Mutex

	engine        *rpcengine.Engine
	approvalsCtl  *approvals.Controller
	permissionsCtl *permissions.Controller
	chains        *chainregistry.Controller
	accountsCtl   *accounts.Controller
	session       unlockChecker
	bus           *messenger.Bus
	log           *logrus.Entry

	ports map[string]*Port

	unsubscribe []messenger.Unsubscribe
}

// Deps wires the controllers and session checker a Router dispatches
// against.
type Deps struct {
	Engine        *rpcengine.Engine
	Approvals     *approvals.Controller
	Permissions   *permissions.Controller
	ChainRegistry *chainregistry.Controller
	Accounts      *accounts.Controller
	Session       unlockChecker
	Bus           *messenger.Bus
	Log           *logrus.Entry
}

// New constructs a Router and subscribes it to every broadcast-worthy
// topic named in spec.md §4.6 (accountsChanged, chainChanged,
// metaChanged, session unlock/lock).
func New(deps Deps) *Router {
	log := deps.Log
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	r := &Router{
		engine: deps.Engine, approvalsCtl: deps.Approvals, permissionsCtl: deps.Permissions,
		chains: deps.ChainRegistry, accountsCtl: deps.Accounts, session: deps.Session,
		bus: deps.Bus, log: log, ports: make(map[string]*Port),
	}

	r.unsubscribe = append(r.unsubscribe,
		deps.Bus.Subscribe(messenger.TopicAccountsChanged, false, func(messenger.Event) { r.broadcastAccountsChanged() }),
		deps.Bus.Subscribe(messenger.TopicPermissionsChanged, false, func(messenger.Event) { r.broadcastAccountsChanged() }),
		deps.Bus.Subscribe(messenger.TopicChainRegistryChanged, false, func(messenger.Event) { r.broadcastChainChanged() }),
		deps.Bus.Subscribe(messenger.TopicNetworkChanged, false, func(messenger.Event) { r.broadcastMetaChanged() }),
		deps.Bus.Subscribe(messenger.TopicUnlockUnlocked, false, func(messenger.Event) { r.broadcastEvent(EventSessionUnlocked, nil) }),
		deps.Bus.Subscribe(messenger.TopicUnlockLocked, false, func(messenger.Event) { r.handleSessionLocked() }),
	)
	return r
}

// Close tears down every topic subscription. Connected ports are left to
// the caller to Disconnect.
func (r *Router) Close() {
	for _, unsub := range r.unsubscribe {
		unsub()
	}
}

// Register adds a newly accepted connection to the router under id,
// starting in StateConnected.
func (r *Router) Register(id, origin string, transport Transport) *Port {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := newPort(id, origin, transport)
	r.ports[id] = p
	return p
}

// Handle processes one inbound Envelope from port id, per the per-port
// state machine in spec.md §4.6.
func (r *Router) Handle(ctx context.Context, portID string, env Envelope) {
	r.mu.Lock()
	p, ok := r.ports[portID]
	r.mu.Unlock()
	if !ok {
		return
	}

	switch env.Type {
	case "handshake":
		r.handleHandshake(ctx, p, env)
	case "request":
		r.handleRequest(ctx, p, env)
	case "disconnect":
		r.Disconnect(p.ID(), "client_disconnect")
	default:
		r.log.WithField("type", env.Type).Warn("portrouter: unknown envelope type, dropping port")
		r.Disconnect(p.ID(), "protocol_error")
	}
}

func (r *Router) handleHandshake(ctx context.Context, p *Port, env Envelope) {
	var payload HandshakePayload
	_ = decodePayload(env.Payload, &payload)

	p.mu.Lock()
	previousSession := p.sessionID
	rotating := p.state == StateHandshakeSent && previousSession != "" && previousSession != env.SessionID
	p.state = StateHandshakeSent
	p.sessionID = env.SessionID
	p.mu.Unlock()

	if rotating {
		r.approvalsCtl.ExpirePendingByRequestContext(p.ID(), previousSession, "session_lost")
	}

	chain, err := r.chains.ActiveChain("eip155")
	var chainRef, chainID string
	if err == nil && chain != nil {
		chainRef, chainID = chain.ChainRef, chain.ChainID
	}

	unlocked := r.session.IsUnlocked()
	accountIDs := r.permissionsCtl.AccountIDsFor(p.Origin(), permissions.Context{Namespace: "eip155", ChainRef: chainRef})
	addresses := []string{}
	if unlocked && len(accountIDs) > 0 {
		idSet := make(map[string]bool, len(accountIDs))
		for _, id := range accountIDs {
			idSet[id] = true
		}
		for _, acct := range r.accountsCtl.GetState(false) {
			if idSet[acct.ID] {
				addresses = append(addresses, acct.Address)
			}
		}
	}

	ack := HandshakeAckPayload{
		ProtocolVersion: protocolVersion,
		HandshakeID:     payload.HandshakeID,
		ChainRef:        chainRef,
		ChainID:         chainID,
		Accounts:        addresses,
		IsUnlocked:      unlocked,
	}
	r.send(p, Envelope{Channel: env.Channel, SessionID: env.SessionID, Type: "handshake_ack", Payload: ack})
}

func (r *Router) handleRequest(ctx context.Context, p *Port, env Envelope) {
	p.mu.Lock()
	known := p.state == StateHandshakeSent && p.sessionID == env.SessionID
	p.mu.Unlock()
	if !known {
		// Per spec.md §4.6, a request with a stale or unrecognized
		// sessionId is silently ignored rather than answered.
		return
	}

	var reqPayload RequestPayload
	if err := decodePayload(env.Payload, &reqPayload); err != nil {
		r.send(p, r.errorResponse(env, "", walleterrors.New(walleterrors.ReasonInvalidRequest, "malformed request envelope")))
		return
	}

	var params json.RawMessage
	if reqPayload.Params != nil {
		params, _ = json.Marshal(reqPayload.Params)
	}

	rpcReq := rpcengine.Request{
		Method: reqPayload.Method,
		Params: params,
		Context: rpcengine.Context{
			Origin:    p.Origin(),
			PortID:    p.ID(),
			SessionID: env.SessionID,
		},
	}

	done := obsmetrics.RPCInFlight()
	start := time.Now()
	result, wireErr := r.engine.Handle(ctx, rpcReq)
	done()

	if wireErr != nil {
		obsmetrics.RecordRPC(reqPayload.Method, "error", time.Since(start))
		r.send(p, Envelope{Channel: env.Channel, SessionID: env.SessionID, Type: "response", ID: env.ID, Payload: ResponsePayload{
			JSONRPC: "2.0", ID: reqPayload.ID, Error: wireErr,
		}})
		return
	}
	obsmetrics.RecordRPC(reqPayload.Method, "ok", time.Since(start))
	r.send(p, Envelope{Channel: env.Channel, SessionID: env.SessionID, Type: "response", ID: env.ID, Payload: ResponsePayload{
		JSONRPC: "2.0", ID: reqPayload.ID, Result: result,
	}})
}

func (r *Router) errorResponse(env Envelope, rpcID string, err error) Envelope {
	wireErr := rpcengine.EncodeError(err)
	return Envelope{Channel: env.Channel, SessionID: env.SessionID, Type: "response", ID: env.ID, Payload: ResponsePayload{
		JSONRPC: "2.0", ID: rpcID, Error: wireErr,
	}}
}

// Disconnect tears down port id: rejects its pending approvals with
// session_lost, drops the port, and removes it from the router's map.
func (r *Router) Disconnect(portID, reason string) {
	r.mu.Lock()
	p, ok := r.ports[portID]
	if ok {
		delete(r.ports, portID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	p.mu.Lock()
	sessionID := p.sessionID
	p.mu.Unlock()

	if sessionID != "" {
		r.approvalsCtl.ExpirePendingByRequestContext(portID, sessionID, "session_lost")
	}
}

func (r *Router) send(p *Port, env Envelope) {
	if err := p.transport.Send(env); err != nil {
		r.log.WithError(err).WithField("port", p.ID()).Warn("portrouter: write failed, disconnecting port")
		r.Disconnect(p.ID(), "write_failure")
	}
}

// lookupPort returns the registered Port for id, or nil.
func (r *Router) lookupPort(id string) *Port {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ports[id]
}

func (r *Router) snapshotPorts() []*Port {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Port, 0, len(r.ports))
	for _, p := range r.ports {
		out = append(out, p)
	}
	return out
}

// broadcastAccountsChanged recomputes, per-port, the account list visible
// to that port's origin and emits accountsChanged. A locked session
// always broadcasts an empty list, per spec.md §4.6.
func (r *Router) broadcastAccountsChanged() {
	unlocked := r.session.IsUnlocked()
	var allAccounts []accounts.View
	var chainRef string
	if unlocked {
		allAccounts = r.accountsCtl.GetState(false)
		if chain, err := r.chains.ActiveChain("eip155"); err == nil && chain != nil {
			chainRef = chain.ChainRef
		}
	}

	for _, p := range r.snapshotPorts() {
		p.mu.Lock()
		ready := p.state == StateHandshakeSent
		sessionID := p.sessionID
		origin := p.origin
		p.mu.Unlock()
		if !ready {
			continue
		}

		addresses := []string{}
		if unlocked {
			ids := r.permissionsCtl.AccountIDsFor(origin, permissions.Context{Namespace: "eip155", ChainRef: chainRef})
			idSet := make(map[string]bool, len(ids))
			for _, id := range ids {
				idSet[id] = true
			}
			for _, acct := range allAccounts {
				if idSet[acct.ID] {
					addresses = append(addresses, acct.Address)
				}
			}
		}

		env := Envelope{SessionID: sessionID, Type: "event", Payload: EventPayload{Event: EventAccountsChanged, Params: []any{addresses}}}
		r.send(p, env)
	}
}

// handleSessionLocked reacts to the session transitioning to locked, per
// spec.md §1/§4.4/§4.6: the pending approval queue is cleared (rejected
// 4001, not merely paused), every handshaked port is told accounts is
// now empty and that the session locked, and every port is then
// disconnected — a locked session has no live dApp ports, not idle ones.
func (r *Router) handleSessionLocked() {
	r.approvalsCtl.ClearOnLock()
	r.broadcastAccountsChanged()
	r.broadcastEvent(EventSessionLocked, nil)
	for _, p := range r.snapshotPorts() {
		r.Disconnect(p.ID(), "session_locked")
	}
}

func (r *Router) broadcastChainChanged() {
	r.broadcastEvent(EventChainChanged, r.chains.GetState())
}

func (r *Router) broadcastMetaChanged() {
	r.broadcastEvent(EventMetaChanged, nil)
}

// broadcastEvent sends event uniformly to every handshaked port, dropping
// any port whose write fails, per spec.md §4.6.
func (r *Router) broadcastEvent(event string, payload any) {
	for _, p := range r.snapshotPorts() {
		p.mu.Lock()
		ready := p.state == StateHandshakeSent
		sessionID := p.sessionID
		p.mu.Unlock()
		if !ready {
			continue
		}
		var params []any
		if payload != nil {
			params = []any{payload}
		}
		r.send(p, Envelope{SessionID: sessionID, Type: "event", Payload: EventPayload{Event: event, Params: params}})
	}
}

func decodePayload(payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
