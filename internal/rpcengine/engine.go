package rpcengine

import (
	"context"
	"time"

	"github.com/walletd/core/internal/approvals"
	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/permissions"
	"github.com/walletd/core/internal/walleterrors"
)

// unlockChecker is the narrow slice of unlocksession.Session the engine
// depends on; defined locally so rpcengine never imports unlocksession
// directly (avoids a dependency edge the wiring layer doesn't need).
type unlockChecker interface {
	IsUnlocked() bool
}

// permissionGuard is the narrow slice of permissions.Controller the
// engine depends on.
type permissionGuard interface {
	IsConnected(origin string, chainCtx permissions.Context) bool
	AssertPermission(origin string, capability permissions.Capability, chainCtx permissions.Context) error
}

// approver is the narrow slice of approvals.Controller the engine
// depends on.
type approver interface {
	RequestApproval(ctx context.Context, task approvals.Task) (any, error)
}

// lockedQueueWindow bounds how long a LockedQueue method waits for unlock
// before failing, per spec.md §9's open question ("bound it explicitly in
// your implementation") and DESIGN.md's decision (30s, matching the
// receipt-poll cap's order of magnitude).
const lockedQueueWindow = 30 * time.Second

// Engine resolves and dispatches Requests through the five-stage
// middleware chain.
type Engine struct {
	registry    *Registry
	session     unlockChecker
	permissions permissionGuard
	approvals   approver
	activeChain ActiveChainResolver
	bus         *messenger.Bus
}

// New constructs an Engine. activeChain resolves the caller's active
// chainRef per namespace (typically chainregistry.Controller.ActiveChain).
// bus is used only to wait out LockedQueue's drain window for unlock.
func New(registry *Registry, session unlockChecker, perms permissionGuard, appr approver, activeChain ActiveChainResolver, bus *messenger.Bus) *Engine {
	return &Engine{registry: registry, session: session, permissions: perms, approvals: appr, activeChain: activeChain, bus: bus}
}

// Handle is the engine's sole entry point: stage (i) context envelope and
// error-to-wire encoding wraps every later stage, so no internal error
// ever escapes undecorated.
func (e *Engine) Handle(ctx context.Context, req Request) (any, *WireError) {
	result, err := e.dispatch(ctx, req)
	if err != nil {
		encoded := encodeError(err)
		return nil, &encoded
	}
	return result, nil
}

// dispatch runs stages (ii)-(v): locked guard, permission guard,
// attention request, handler dispatch.
func (e *Engine) dispatch(ctx context.Context, req Request) (any, error) {
	res, err := e.registry.resolve(req, e.activeChain)
	if err != nil {
		return nil, err
	}
	req.Context.ChainRef = res.chainRef

	if !req.Context.Internal {
		if override, handled, err := e.lockedGuard(ctx, res, req); handled {
			return override, err
		}
		if err := e.permissionGuardCheck(res, req); err != nil {
			return nil, err
		}
	}

	if res.method.ApprovalRequired && !req.Context.Internal {
		task := approvals.Task{
			Type:      res.method.ApprovalType,
			Origin:    req.Context.Origin,
			PortID:    req.Context.PortID,
			SessionID: req.Context.SessionID,
			Payload:   req.Params,
		}
		return e.approvals.RequestApproval(ctx, task)
	}

	if res.method.Handler == nil {
		return nil, walleterrors.New(walleterrors.ReasonInternal, "method has no handler").WithDetails("method", req.Method)
	}
	return res.method.Handler(ctx, req)
}

// lockedGuard implements spec.md §4.5's "Locked guard". handled is true
// when the guard has already produced the final outcome (pass-through,
// an explicit response, or a denial) and the caller must not proceed to
// the permission guard or dispatch.
func (e *Engine) lockedGuard(ctx context.Context, res *resolution, req Request) (result any, handled bool, err error) {
	if e.session.IsUnlocked() {
		return nil, false, nil
	}

	if res.namespace.AllowWhenLocked[req.Method] {
		return nil, false, nil
	}

	if policy := res.method.Locked; policy != nil {
		switch policy.Type {
		case LockedAllow:
			return nil, false, nil
		case LockedResponse:
			return policy.Response, true, nil
		case LockedQueue:
			if e.waitForUnlock(ctx) {
				return nil, false, nil
			}
			return nil, true, walleterrors.New(walleterrors.ReasonLocked, "request queued past its drain window").
				WithDetails("method", req.Method).WithDetails("queueWindowMs", lockedQueueWindow.Milliseconds())
		case LockedDeny:
			// fall through to the default denial below
		}
	}

	return nil, true, walleterrors.New(walleterrors.ReasonLocked, "Request "+req.Method+" requires an unlocked session").WithCode(4100)
}

// waitForUnlock blocks until the session unlocks, ctx is cancelled, or
// lockedQueueWindow elapses, per spec.md §4.5/§9: a LockedQueue method is
// held rather than denied outright, but only up to a bounded window.
func (e *Engine) waitForUnlock(ctx context.Context) bool {
	if e.session.IsUnlocked() {
		return true
	}

	unlocked := make(chan struct{}, 1)
	unsub := e.bus.Subscribe(messenger.TopicUnlockUnlocked, false, func(messenger.Event) {
		select {
		case unlocked <- struct{}{}:
		default:
		}
	})
	defer unsub()

	timer := time.NewTimer(lockedQueueWindow)
	defer timer.Stop()

	select {
	case <-unlocked:
		return true
	case <-ctx.Done():
		return false
	case <-timer.C:
		return false
	}
}

// permissionGuardCheck implements spec.md §4.5's "Permission guard".
func (e *Engine) permissionGuardCheck(res *resolution, req Request) error {
	chainCtx := permissions.Context{Namespace: res.namespace.Name, ChainRef: res.chainRef}

	switch res.method.permissionCheck() {
	case PermissionNone:
		return nil
	case PermissionConnected:
		if !e.permissions.IsConnected(req.Context.Origin, chainCtx) {
			return walleterrors.New(walleterrors.ReasonNotConnected, "origin is not connected").WithDetails("origin", req.Context.Origin)
		}
		return nil
	case PermissionScope:
		return e.permissions.AssertPermission(req.Context.Origin, res.method.Capability, chainCtx)
	default:
		return nil
	}
}
