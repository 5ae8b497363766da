// Package rpcengine implements the §4.5 RPC engine: a namespace registry,
// method resolution, and a five-stage middleware chain (context envelope
// and error encoding, locked guard, permission guard, attention request,
// dispatch).
//
// Grounded on internal/middleware/auth.go's wrap-next-handler chain
// (AuthMiddleware.Handler composing around http.Handler) generalized from
// a fixed two-stage HTTP chain to an ordered, per-namespace-configurable
// JSON-RPC pipeline.
package rpcengine

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/walletd/core/internal/permissions"
	"github.com/walletd/core/internal/walleterrors"
)

// PermissionCheck selects how the permission guard treats a method.
type PermissionCheck string

const (
	PermissionNone      PermissionCheck = "none"
	PermissionConnected PermissionCheck = "connected"
	PermissionScope     PermissionCheck = "scope"
)

// LockedType selects how the locked guard treats a method while the
// session is locked.
type LockedType string

const (
	LockedAllow    LockedType = "allow"
	LockedDeny     LockedType = "deny"
	LockedResponse LockedType = "response"
	LockedQueue    LockedType = "queue"
)

// LockedPolicy overrides the locked guard's default deny for one method.
type LockedPolicy struct {
	Type     LockedType
	Response any
}

// HandlerFunc executes a method's business logic after every guard has
// passed.
type HandlerFunc func(ctx context.Context, req Request) (any, error)

// MethodDefinition is the per-method configuration the registry dispatches
// against.
type MethodDefinition struct {
	// Capability is the permission the scope guard checks for. Empty
	// means the method carries no capability-gated behavior.
	Capability permissions.Capability
	// PermissionCheck defaults to Scope when Capability is set, else
	// None, unless explicitly overridden here.
	PermissionCheck PermissionCheck
	// Locked overrides the locked guard's default-deny outcome.
	Locked *LockedPolicy
	// ApprovalRequired routes the call through approvals.RequestApproval
	// instead of Handler; the approval's resolved value becomes the
	// method result.
	ApprovalRequired bool
	// ApprovalType labels the approval task for the UI bridge's
	// per-type resolution semantics (spec.md §4.7).
	ApprovalType string
	Handler      HandlerFunc
}

func (d MethodDefinition) permissionCheck() PermissionCheck {
	if d.PermissionCheck != "" {
		return d.PermissionCheck
	}
	if d.Capability != "" {
		return PermissionScope
	}
	return PermissionNone
}

// Namespace is one registered adapter: a set of method-name prefixes, a
// method table, and the read-only methods reachable while locked.
type Namespace struct {
	Name            string
	MethodPrefixes  []string
	Methods         map[string]MethodDefinition
	AllowWhenLocked map[string]bool
}

func (n *Namespace) matchesMethod(method string) bool {
	for _, prefix := range n.MethodPrefixes {
		if strings.HasPrefix(method, prefix) {
			return true
		}
	}
	return false
}

// Context carries the caller-supplied routing hints for one call.
type Context struct {
	Origin    string
	PortID    string
	SessionID string
	Namespace string
	ChainRef  string
	Internal  bool
}

// Request is one inbound JSON-RPC-shaped call.
type Request struct {
	Method  string
	Params  json.RawMessage
	Context Context
}

// Registry holds every registered namespace and resolves a Request to its
// namespace, chainRef, and MethodDefinition.
type Registry struct {
	namespaces       map[string]*Namespace
	defaultNamespace string
}

// NewRegistry constructs an empty Registry. defaultNamespace is used when
// neither an explicit context nor a method-prefix match resolves one.
func NewRegistry(defaultNamespace string) *Registry {
	return &Registry{namespaces: make(map[string]*Namespace), defaultNamespace: defaultNamespace}
}

// Register adds ns to the registry, keyed by its name.
func (r *Registry) Register(ns *Namespace) {
	r.namespaces[ns.Name] = ns
}

// ActiveChainResolver resolves the caller's active chainRef for a
// namespace, used when Request.Context.ChainRef is empty.
type ActiveChainResolver func(namespace string) (string, error)

// resolution is the outcome of resolving a Request against the registry.
type resolution struct {
	namespace *Namespace
	method    MethodDefinition
	chainRef  string
}

// resolve implements spec.md §4.5 "Resolution": namespace from explicit
// context, else chainRef prefix, else method-prefix lookup, else default;
// chainRef from explicit context, else the active chain for the resolved
// namespace.
func (r *Registry) resolve(req Request, activeChain ActiveChainResolver) (*resolution, error) {
	namespaceName := req.Context.Namespace
	if namespaceName == "" && req.Context.ChainRef != "" {
		namespaceName = namespacePrefix(req.Context.ChainRef)
	}
	if namespaceName == "" {
		for name, ns := range r.namespaces {
			if ns.matchesMethod(req.Method) {
				namespaceName = name
				break
			}
		}
	}
	if namespaceName == "" {
		namespaceName = r.defaultNamespace
	}

	ns, ok := r.namespaces[namespaceName]
	if !ok {
		return nil, walleterrors.New(walleterrors.ReasonNotCompatible, "unknown namespace").WithDetails("namespace", namespaceName)
	}

	if req.Context.ChainRef != "" && namespacePrefix(req.Context.ChainRef) != namespaceName {
		return nil, walleterrors.New(walleterrors.ReasonInvalidRequest, "namespace does not match chainRef")
	}

	chainRef := req.Context.ChainRef
	if chainRef == "" {
		resolved, err := activeChain(namespaceName)
		if err != nil {
			return nil, walleterrors.New(walleterrors.ReasonInvalidRequest, "Missing chainRef")
		}
		chainRef = resolved
	}

	def, ok := ns.Methods[req.Method]
	if !ok {
		return nil, walleterrors.New(walleterrors.ReasonMethodNotFound, "method not found").WithDetails("method", req.Method)
	}

	return &resolution{namespace: ns, method: def, chainRef: chainRef}, nil
}

// namespacePrefix extracts the CAIP-2 namespace from a chainRef like
// "eip155:1".
func namespacePrefix(chainRef string) string {
	if i := strings.IndexByte(chainRef, ':'); i >= 0 {
		return chainRef[:i]
	}
	return chainRef
}
