package uibridge

import (
	"github.com/walletd/core/internal/accounts"
	"github.com/walletd/core/internal/approvals"
	"github.com/walletd/core/internal/chainregistry"
	"github.com/walletd/core/internal/network"
	"github.com/walletd/core/internal/permissions"
	"github.com/walletd/core/internal/storage"
	"github.com/walletd/core/internal/unlocksession"
)

// UiSnapshot is the full state push to the extension UI whenever any of
// (accounts, network, approvals, permissions, session) changes, per
// spec.md §4.7.
type UiSnapshot struct {
	Session     unlocksession.State    `json:"session"`
	Accounts    []accounts.View        `json:"accounts"`
	ActiveID    string                 `json:"activeAccountId,omitempty"`
	Chains      []chainregistry.Chain  `json:"chains"`
	Network     []network.ChainState   `json:"network"`
	Permissions []permissions.Grant    `json:"permissions"`
	Approvals   []approvals.Task       `json:"approvals"`
}

// Deps wires the controllers a Bridge reads its snapshot from, plus the
// storage port it persists vault onboarding material to directly (the
// one write the bridge itself owns rather than delegating to a
// controller, since vault ciphertext has no controller of its own).
type Deps struct {
	Session       *unlocksession.Session
	Accounts      *accounts.Controller
	ChainRegistry *chainregistry.Controller
	Network       *network.Controller
	Permissions   *permissions.Controller
	Approvals     *approvals.Controller
	Store         storage.Store
}

// buildSnapshot reads every dependency controller's current state. Per
// spec.md §5's single-threaded model, each controller's GetState is
// itself a consistent point-in-time read; no cross-controller lock is
// needed to assemble the composite.
func buildSnapshot(deps Deps) UiSnapshot {
	return UiSnapshot{
		Session:     deps.Session.GetState(),
		Accounts:    deps.Accounts.GetState(true),
		ActiveID:    deps.Accounts.ActiveAccountID(),
		Chains:      deps.ChainRegistry.GetState(),
		Network:     deps.Network.GetState(),
		Permissions: deps.Permissions.GetState(),
		Approvals:   deps.Approvals.GetState(),
	}
}
