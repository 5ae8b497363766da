// Package uibridge implements the §4.7 UI bridge: the privileged
// request/response channel the extension's own UI speaks, plus the
// snapshot push that keeps it in sync with every state-changing
// controller.
//
// Grounded on cmd/gateway's handler registry shape (a method-name-keyed
// dispatch table over a single request envelope) and
// internal/middleware/auth.go's JWT handshake, generalized from one HTTP
// route per method to a single typed `ui.*` method dispatch plus an SSE
// snapshot push.
package uibridge

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/walletd/core/internal/keyring"
	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/obsmetrics"
	"github.com/walletd/core/internal/transactions"
	"github.com/walletd/core/internal/walleterrors"
)

// Request is one inbound {type:"ui:request"} envelope.
type Request struct {
	Type   string          `json:"type"`
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ErrorPayload is the {reason, message, data?} shape the UI channel
// carries on failure, per spec.md §4.7 (distinct from the dApp wire
// protocol's numeric EIP-1193 codes: the UI speaks the taxonomy Reason
// directly so it can localise messages).
type ErrorPayload struct {
	Reason  walleterrors.Reason `json:"reason"`
	Message string              `json:"message"`
	Data    map[string]any      `json:"data,omitempty"`
}

// Response is the {type:"ui:response"} or {type:"ui:error"} reply.
type Response struct {
	Type   string        `json:"type"`
	ID     string        `json:"id"`
	Result any           `json:"result,omitempty"`
	Error  *ErrorPayload `json:"error,omitempty"`
}

// Event is a {type:"ui:event"} push, currently only "ui:stateChanged".
type Event struct {
	Type    string     `json:"type"`
	Event   string      `json:"event"`
	Payload UiSnapshot `json:"payload"`
}

type methodFunc func(ctx context.Context, b *Bridge, params json.RawMessage) (any, error)

// Bridge dispatches ui.* methods against the shared controllers and
// fans out snapshot pushes to subscribed listeners.
type Bridge struct {
	mu sync.Mutex

	deps     Deps
	keyring  *keyring.Service
	txns     *transactions.Controller
	signer   transactions.Signer
	methods  map[string]methodFunc
	log      *logrus.Entry

	listeners    map[int]chan Event
	nextListener int

	unsubscribe []messenger.Unsubscribe
}

// New constructs a Bridge and subscribes it to every topic that should
// trigger a fresh snapshot push, per spec.md §4.7.
func New(deps Deps, keyringSvc *keyring.Service, txns *transactions.Controller, signer transactions.Signer, bus *messenger.Bus, log *logrus.Entry) *Bridge {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	b := &Bridge{
		deps: deps, keyring: keyringSvc, txns: txns, signer: signer, log: log,
		listeners: make(map[int]chan Event),
	}
	b.methods = buildMethodTable()

	for _, topic := range []string{
		messenger.TopicAccountsChanged, messenger.TopicNetworkChanged,
		messenger.TopicPermissionsChanged, messenger.TopicUnlockStateChanged,
		messenger.TopicChainRegistryChanged, messenger.TopicAttentionRequested,
		messenger.TopicApprovalResolved,
	} {
		t := topic
		b.unsubscribe = append(b.unsubscribe, bus.Subscribe(t, false, func(messenger.Event) { b.broadcastSnapshot() }))
	}
	b.unsubscribe = append(b.unsubscribe, bus.Subscribe(messenger.TopicAttentionRequested, false, func(messenger.Event) {
		obsmetrics.SetApprovalsPending(len(deps.Approvals.GetState()))
	}))
	b.unsubscribe = append(b.unsubscribe, bus.Subscribe(messenger.TopicApprovalResolved, false, func(messenger.Event) {
		obsmetrics.SetApprovalsPending(len(deps.Approvals.GetState()))
	}))
	return b
}

// Close unsubscribes from every topic and closes every listener channel.
func (b *Bridge) Close() {
	for _, unsub := range b.unsubscribe {
		unsub()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.listeners {
		close(ch)
		delete(b.listeners, id)
	}
}

// Subscribe registers a new snapshot-event listener and returns the
// channel plus an unsubscribe func. The channel is buffered by one so a
// slow reader never blocks the publishing goroutine; a stale pending
// event is simply replaced by the freshest snapshot.
func (b *Bridge) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextListener
	b.nextListener++
	ch := make(chan Event, 1)
	b.listeners[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.listeners[id]; ok {
			close(existing)
			delete(b.listeners, id)
		}
	}
}

func (b *Bridge) broadcastSnapshot() {
	snapshot := buildSnapshot(b.deps)
	event := Event{Type: "ui:event", Event: "ui:stateChanged", Payload: snapshot}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.listeners {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

// Handle dispatches req to its method handler and encodes the result (or
// error) as a Response, per spec.md §4.7's envelope pair.
func (b *Bridge) Handle(ctx context.Context, req Request) Response {
	fn, ok := b.methods[req.Method]
	if !ok {
		return errorResponse(req.ID, walleterrors.New(walleterrors.ReasonMethodNotFound, "unknown ui method").WithDetails("method", req.Method))
	}

	result, err := fn(ctx, b, req.Params)
	if err != nil {
		return errorResponse(req.ID, err)
	}
	return Response{Type: "ui:response", ID: req.ID, Result: result}
}

func errorResponse(id string, err error) Response {
	we := walleterrors.As(err)
	if we == nil {
		we = walleterrors.New(walleterrors.ReasonInternal, err.Error())
	}
	return Response{Type: "ui:error", ID: id, Error: &ErrorPayload{
		Reason: we.Reason, Message: we.Error(), Data: we.Details,
	}}
}

func decodeParams(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return walleterrors.Wrap(walleterrors.ReasonInvalidParams, err, "decode ui request params")
	}
	return nil
}

func buildMethodTable() map[string]methodFunc {
	m := map[string]methodFunc{
		"ui.session.unlock":              methodSessionUnlock,
		"ui.session.lock":                methodSessionLock,
		"ui.session.setAutoLockDuration": methodSessionSetAutoLockDuration,

		"ui.onboarding.status":         methodOnboardingStatus,
		"ui.onboarding.initializeVault": methodOnboardingInitializeVault,

		"ui.keyrings.generateMnemonic":      methodGenerateMnemonic,
		"ui.keyrings.confirmNewMnemonic":    methodConfirmNewMnemonic,
		"ui.keyrings.importMnemonic":        methodImportMnemonic,
		"ui.keyrings.importPrivateKey":      methodImportPrivateKey,
		"ui.keyrings.deriveNextAccount":     methodDeriveNextAccount,
		"ui.keyrings.setHidden":             methodSetHidden,
		"ui.keyrings.setLabel":              methodSetLabel,
		"ui.keyrings.removeAccount":         methodRemoveAccount,
		"ui.keyrings.removeHDKeyring":       methodRemoveHDKeyring,
		"ui.keyrings.removePrivateKeyKeyring": methodRemovePrivateKeyKeyring,
		"ui.keyrings.exportMnemonic":        methodExportMnemonic,
		"ui.keyrings.exportPrivateKey":      methodExportPrivateKey,

		"ui.approvals.approve": methodApprovalsApprove,
		"ui.approvals.reject":  methodApprovalsReject,

		"ui.snapshot.get": methodSnapshotGet,

		"ui.networks.switchActive": methodNetworksSwitchActive,
		"ui.accounts.switchActive": methodAccountsSwitchActive,
	}
	return m
}
