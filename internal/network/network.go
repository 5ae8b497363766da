// Package network implements the §4.4 network controller: per-chain RPC
// endpoint state, health tracking, and round-robin failover.
//
// Grounded on internal/chain/client.go's endpoint/retry handling,
// generalized into a persisted per-chain endpoint list with health
// counters instead of a single fixed client target.
package network

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/storage"
	"github.com/walletd/core/internal/walleterrors"
)

// FailureThreshold is the consecutive-failure count that triggers
// endpoint rotation and cooldown.
const FailureThreshold = 3

// CooldownDuration is how long a rotated-away-from endpoint is held back
// before it becomes eligible again.
const CooldownDuration = 2 * time.Minute

// EndpointHealth tracks one endpoint's outcome history.
type EndpointHealth struct {
	SuccessCount        int        `json:"successCount"`
	FailureCount        int        `json:"failureCount"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	CooldownUntil       *time.Time `json:"cooldownUntil,omitempty"`
}

// Endpoint is one RPC node URL and its health.
type Endpoint struct {
	URL    string         `json:"url"`
	Health EndpointHealth `json:"health"`
}

// ChainState is the endpoint list and strategy for one chain.
type ChainState struct {
	ChainRef    string     `json:"chainRef"`
	Endpoints   []Endpoint `json:"endpoints"`
	ActiveIndex int        `json:"activeIndex"`
	Strategy    string     `json:"strategy"`
}

// Controller is the in-memory projection of every chain's endpoint state.
type Controller struct {
	mu sync.Mutex

	store storage.Store
	bus   *messenger.Bus

	chains map[string]*ChainState
	loaded bool
}

// New constructs a Controller. Call Load before use.
func New(store storage.Store, bus *messenger.Bus) *Controller {
	return &Controller{store: store, bus: bus, chains: make(map[string]*ChainState)}
}

// Load reads every persisted chain endpoint state into the projection.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.store.List(ctx, storage.NamespaceNetwork)
	if err != nil {
		return err
	}
	c.chains = make(map[string]*ChainState, len(records))
	for _, rec := range records {
		var cs ChainState
		if err := json.Unmarshal(rec.Value, &cs); err != nil {
			return walleterrors.Wrap(walleterrors.ReasonInternal, err, "decode chain endpoint state")
		}
		s := cs
		c.chains[s.ChainRef] = &s
	}
	c.loaded = true
	return nil
}

// RegisterEndpoints sets (or replaces) the endpoint list for chainRef,
// defaulting to round-robin and activating index 0. Existing health
// counters for URLs that persist across the call are preserved.
func (c *Controller) RegisterEndpoints(ctx context.Context, chainRef string, urls []string) (*ChainState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(urls) == 0 {
		return nil, walleterrors.New(walleterrors.ReasonInvalidParams, "at least one endpoint is required")
	}

	existing := c.chains[chainRef]
	preserved := map[string]EndpointHealth{}
	if existing != nil {
		for _, ep := range existing.Endpoints {
			preserved[ep.URL] = ep.Health
		}
	}

	cs := &ChainState{ChainRef: chainRef, Strategy: "round-robin"}
	for _, u := range urls {
		cs.Endpoints = append(cs.Endpoints, Endpoint{URL: u, Health: preserved[u]})
	}
	c.chains[chainRef] = cs

	if err := c.persistLocked(ctx, cs); err != nil {
		return nil, err
	}
	c.publish()
	clone := cloneChainState(*cs)
	return &clone, nil
}

// ActiveEndpoint returns the currently active endpoint URL for chainRef.
func (c *Controller) ActiveEndpoint(chainRef string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cs, ok := c.chains[chainRef]
	if !ok || len(cs.Endpoints) == 0 {
		return "", walleterrors.New(walleterrors.ReasonChainNotRegistered, "no endpoints registered").WithDetails("chainRef", chainRef)
	}
	return cs.Endpoints[cs.ActiveIndex].URL, nil
}

// ReportRpcOutcome records the outcome of one RPC call against
// chainRef's active endpoint, rotating and scheduling cooldown if
// consecutive failures reach FailureThreshold.
func (c *Controller) ReportRpcOutcome(ctx context.Context, chainRef string, success bool, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cs, ok := c.chains[chainRef]
	if !ok || len(cs.Endpoints) == 0 {
		return walleterrors.New(walleterrors.ReasonChainNotRegistered, "no endpoints registered").WithDetails("chainRef", chainRef)
	}

	active := &cs.Endpoints[cs.ActiveIndex]
	if success {
		active.Health.SuccessCount++
		active.Health.ConsecutiveFailures = 0
		active.Health.CooldownUntil = nil
	} else {
		active.Health.FailureCount++
		active.Health.ConsecutiveFailures++
		if active.Health.ConsecutiveFailures >= FailureThreshold {
			until := now.Add(CooldownDuration)
			active.Health.CooldownUntil = &until
			c.rotateLocked(cs, now)
		}
	}

	if err := c.persistLocked(ctx, cs); err != nil {
		return err
	}
	c.bus.Publish(messenger.TopicNetworkEndpointHealth, cloneChainState(*cs))
	c.publish()
	return nil
}

// rotateLocked advances ActiveIndex to the next endpoint not currently
// in cooldown, wrapping round-robin. Must be called with mu held.
func (c *Controller) rotateLocked(cs *ChainState, now time.Time) {
	n := len(cs.Endpoints)
	for i := 1; i <= n; i++ {
		idx := (cs.ActiveIndex + i) % n
		ep := cs.Endpoints[idx]
		if ep.Health.CooldownUntil == nil || !ep.Health.CooldownUntil.After(now) {
			cs.ActiveIndex = idx
			return
		}
	}
	// every endpoint is in cooldown: stay put, caller will keep retrying
	// and the loop above re-evaluates as cooldowns expire.
}

// GetState returns every chain's endpoint state, sorted by chainRef.
func (c *Controller) GetState() []ChainState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() []ChainState {
	result := make([]ChainState, 0, len(c.chains))
	for _, cs := range c.chains {
		result = append(result, cloneChainState(*cs))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ChainRef < result[j].ChainRef })
	return result
}

func cloneChainState(cs ChainState) ChainState {
	cs.Endpoints = append([]Endpoint(nil), cs.Endpoints...)
	return cs
}

func (c *Controller) persistLocked(ctx context.Context, cs *ChainState) error {
	_, err := storage.PutValue(ctx, c.store, storage.NamespaceNetwork, cs.ChainRef, cs, nil)
	return err
}

func (c *Controller) publish() {
	c.bus.PublishIfChanged(messenger.TopicNetworkChanged, c.stateLocked())
}
