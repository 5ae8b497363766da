// Package permissions implements the §4.4 permissions controller: an
// in-memory projection over the storage port granting origins a closed
// set of capabilities per chain namespace.
//
// Grounded on internal/keyring/service.go's projection-plus-storage-port
// shape (mutex-guarded maps, persistLocked-style write-through, publish
// on mutation), applied here to permission grants instead of keyrings.
package permissions

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/storage"
	"github.com/walletd/core/internal/walleterrors"
)

// Capability is one of the closed set of grantable capabilities.
type Capability string

const (
	CapabilityBasic       Capability = "Basic"
	CapabilityAccounts    Capability = "Accounts"
	CapabilitySign        Capability = "Sign"
	CapabilityTransaction Capability = "Transaction"
)

var allCapabilities = map[Capability]struct{}{
	CapabilityBasic:       {},
	CapabilityAccounts:    {},
	CapabilitySign:        {},
	CapabilityTransaction: {},
}

// ChainGrant is the per-chain slice of a Grant: which capabilities and,
// for Accounts, which accounts are permitted.
type ChainGrant struct {
	ChainRef     string   `json:"chainRef"`
	Capabilities []string `json:"capabilities"`
	AccountIDs   []string `json:"accountIds,omitempty"`
}

// Grant is the persisted record of what one origin may do.
type Grant struct {
	ID        string       `json:"id"`
	Origin    string       `json:"origin"`
	Namespace string       `json:"namespace"`
	Chains    []ChainGrant `json:"chains"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Context carries the namespace/chainRef a permission check is made
// against.
type Context struct {
	Namespace string
	ChainRef  string
}

// Controller is the in-memory projection of every origin's grants.
type Controller struct {
	mu sync.Mutex

	store storage.Store
	bus   *messenger.Bus

	grants map[string]*Grant // keyed by origin+namespace
	loaded bool
}

// New constructs a Controller. Call Load before use.
func New(store storage.Store, bus *messenger.Bus) *Controller {
	return &Controller{store: store, bus: bus, grants: make(map[string]*Grant)}
}

func grantKey(origin, namespace string) string { return origin + "\x00" + namespace }

// Load reads every persisted grant from the storage port into the
// in-memory projection.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.store.List(ctx, storage.NamespacePermissions)
	if err != nil {
		return err
	}
	c.grants = make(map[string]*Grant, len(records))
	for _, rec := range records {
		var g Grant
		if err := json.Unmarshal(rec.Value, &g); err != nil {
			return walleterrors.Wrap(walleterrors.ReasonInternal, err, "decode permission grant")
		}
		gg := g
		c.grants[grantKey(gg.Origin, gg.Namespace)] = &gg
	}
	c.loaded = true
	return nil
}

// GetState returns every grant, sorted by (origin, namespace) for stable
// dedupe comparisons.
func (c *Controller) GetState() []Grant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() []Grant {
	result := make([]Grant, 0, len(c.grants))
	for _, g := range c.grants {
		result = append(result, cloneGrant(*g))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Origin != result[j].Origin {
			return result[i].Origin < result[j].Origin
		}
		return result[i].Namespace < result[j].Namespace
	})
	return result
}

func cloneGrant(g Grant) Grant {
	chains := make([]ChainGrant, len(g.Chains))
	for i, ch := range g.Chains {
		caps := append([]string(nil), ch.Capabilities...)
		ids := append([]string(nil), ch.AccountIDs...)
		sort.Strings(caps)
		sort.Strings(ids)
		chains[i] = ChainGrant{ChainRef: ch.ChainRef, Capabilities: caps, AccountIDs: ids}
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i].ChainRef < chains[j].ChainRef })
	g.Chains = chains
	return g
}

// GrantFor returns the current grant for origin/namespace, if any.
func (c *Controller) GrantFor(origin, namespace string) (*Grant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.grants[grantKey(origin, namespace)]
	if !ok {
		return nil, false
	}
	clone := cloneGrant(*g)
	return &clone, true
}

// GrantBasic establishes (or refreshes) a Basic-capability grant for
// origin/namespace on chainRef. Per spec.md §8, granting Basic on two
// different chains accumulates: grant(Basic, cA) then grant(Basic, cB)
// leaves chainRefs = sorted unique {cA, cB}, not a single chain-less entry.
func (c *Controller) GrantBasic(ctx context.Context, origin, namespace, chainRef string) (*Grant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.getOrCreateLocked(origin, namespace)
	c.ensureCapabilityLocked(g, chainRef, CapabilityBasic)

	if err := c.persistLocked(ctx, g); err != nil {
		return nil, err
	}
	c.publish()
	clone := cloneGrant(*g)
	return &clone, nil
}

// GrantAccounts extends origin's Accounts capability on chainRef with
// accountIDs, deduplicating against any already-permitted accounts. Per
// spec.md §4.4, chain switching must extend an existing grant's chain
// list without duplicating accountIds.
func (c *Controller) GrantAccounts(ctx context.Context, origin, namespace, chainRef string, accountIDs []string) (*Grant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.getOrCreateLocked(origin, namespace)
	c.ensureCapabilityLocked(g, chainRef, CapabilityAccounts)

	chain := c.findOrAddChainLocked(g, chainRef)
	existing := make(map[string]struct{}, len(chain.AccountIDs))
	for _, id := range chain.AccountIDs {
		existing[id] = struct{}{}
	}
	for _, id := range accountIDs {
		if _, ok := existing[id]; !ok {
			chain.AccountIDs = append(chain.AccountIDs, id)
			existing[id] = struct{}{}
		}
	}
	c.setChainLocked(g, chainRef, chain)

	if err := c.persistLocked(ctx, g); err != nil {
		return nil, err
	}
	c.publish()
	clone := cloneGrant(*g)
	return &clone, nil
}

// GrantSign adds the Sign capability to origin/namespace on chainRef.
func (c *Controller) GrantSign(ctx context.Context, origin, namespace, chainRef string) (*Grant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.getOrCreateLocked(origin, namespace)
	c.ensureCapabilityLocked(g, chainRef, CapabilitySign)

	if err := c.persistLocked(ctx, g); err != nil {
		return nil, err
	}
	c.publish()
	clone := cloneGrant(*g)
	return &clone, nil
}

// Revoke removes origin's entire grant for namespace.
func (c *Controller) Revoke(ctx context.Context, origin, namespace string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := grantKey(origin, namespace)
	if _, ok := c.grants[key]; !ok {
		return walleterrors.New(walleterrors.ReasonNotFound, "no grant for origin/namespace")
	}
	delete(c.grants, key)
	if err := c.store.Delete(ctx, storage.NamespacePermissions, key); err != nil {
		return err
	}
	c.publish()
	return nil
}

// IsConnected returns true only if origin's grant for namespace has the
// Accounts capability on chainRef AND (for EVM) at least one permitted
// account.
func (c *Controller) IsConnected(origin string, chainCtx Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.grants[grantKey(origin, chainCtx.Namespace)]
	if !ok {
		return false
	}
	for _, chain := range g.Chains {
		if chain.ChainRef != chainCtx.ChainRef {
			continue
		}
		if !hasCapability(chain.Capabilities, CapabilityAccounts) {
			return false
		}
		return len(chain.AccountIDs) > 0
	}
	return false
}

// AssertPermission resolves capability's requirement against origin's
// grant and returns an error if absent.
func (c *Controller) AssertPermission(origin string, capability Capability, chainCtx Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.grants[grantKey(origin, chainCtx.Namespace)]
	if !ok {
		return walleterrors.New(walleterrors.ReasonDenied, "no grant for namespace").WithDetails("origin", origin)
	}

	if chainCtx.ChainRef == "" {
		if hasCapability(g.chainlessCapabilities(), capability) {
			return nil
		}
		return walleterrors.New(walleterrors.ReasonDenied, "capability not granted").WithDetails("capability", string(capability))
	}

	for _, chain := range g.Chains {
		if chain.ChainRef == chainCtx.ChainRef && hasCapability(chain.Capabilities, capability) {
			return nil
		}
	}
	return walleterrors.New(walleterrors.ReasonDenied, "capability not granted for chain").
		WithDetails("capability", string(capability)).WithDetails("chainRef", chainCtx.ChainRef)
}

// AccountIDsFor returns the permitted account IDs for origin/chainRef, or
// nil if none.
func (c *Controller) AccountIDsFor(origin string, chainCtx Context) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.grants[grantKey(origin, chainCtx.Namespace)]
	if !ok {
		return nil
	}
	for _, chain := range g.Chains {
		if chain.ChainRef == chainCtx.ChainRef {
			return append([]string(nil), chain.AccountIDs...)
		}
	}
	return nil
}

func (g *Grant) chainlessCapabilities() []string {
	seen := map[string]struct{}{}
	for _, chain := range g.Chains {
		if chain.ChainRef == "" {
			for _, capability := range chain.Capabilities {
				seen[capability] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for capability := range seen {
		out = append(out, capability)
	}
	return out
}

func hasCapability(caps []string, capability Capability) bool {
	for _, c := range caps {
		if c == string(capability) {
			return true
		}
	}
	return false
}

func (c *Controller) getOrCreateLocked(origin, namespace string) *Grant {
	key := grantKey(origin, namespace)
	if g, ok := c.grants[key]; ok {
		return g
	}
	g := &Grant{
		ID:        uuid.NewString(),
		Origin:    origin,
		Namespace: namespace,
		CreatedAt: time.Now().UTC(),
	}
	c.grants[key] = g
	return g
}

func (c *Controller) ensureCapabilityLocked(g *Grant, chainRef string, capability Capability) {
	if _, ok := allCapabilities[capability]; !ok {
		return
	}
	chain := c.findOrAddChainLocked(g, chainRef)
	if !hasCapability(chain.Capabilities, capability) {
		chain.Capabilities = append(chain.Capabilities, string(capability))
	}
	c.setChainLocked(g, chainRef, chain)
}

func (c *Controller) findOrAddChainLocked(g *Grant, chainRef string) ChainGrant {
	for _, chain := range g.Chains {
		if chain.ChainRef == chainRef {
			return chain
		}
	}
	return ChainGrant{ChainRef: chainRef}
}

func (c *Controller) setChainLocked(g *Grant, chainRef string, chain ChainGrant) {
	for i, existing := range g.Chains {
		if existing.ChainRef == chainRef {
			g.Chains[i] = chain
			g.UpdatedAt = time.Now().UTC()
			return
		}
	}
	g.Chains = append(g.Chains, chain)
	g.UpdatedAt = time.Now().UTC()
}

func (c *Controller) persistLocked(ctx context.Context, g *Grant) error {
	_, err := storage.PutValue(ctx, c.store, storage.NamespacePermissions, grantKey(g.Origin, g.Namespace), g, nil)
	return err
}

func (c *Controller) publish() {
	c.bus.PublishIfChanged(messenger.TopicPermissionsChanged, c.stateLocked())
}
