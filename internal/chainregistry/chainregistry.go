// Package chainregistry implements the §4.4 chain registry controller:
// the set of known chains (as added via wallet_addEthereumChain or
// built-in defaults) and which one is currently active per namespace.
//
// Grounded on internal/config's static network-list pattern, made
// dynamic and persisted per spec.md's "chain registry" controller.
package chainregistry

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/storage"
	"github.com/walletd/core/internal/walleterrors"
)

// Chain is one registered chain, CAIP-2 identified.
type Chain struct {
	ChainRef          string   `json:"chainRef"` // e.g. "eip155:1"
	Namespace         string   `json:"namespace"`
	ChainID           string   `json:"chainId"`
	Name              string   `json:"name"`
	NativeCurrency    Currency `json:"nativeCurrency"`
	RPCUrls           []string `json:"rpcUrls"`
	BlockExplorerUrls []string `json:"blockExplorerUrls,omitempty"`
}

// Currency describes a chain's native currency.
type Currency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

const activeChainKey = "activeByNamespace"

type activeChainMap map[string]string

// Controller is the in-memory projection of known chains and the active
// chain per namespace.
type Controller struct {
	mu sync.Mutex

	store storage.Store
	bus   *messenger.Bus

	chains map[string]*Chain
	active activeChainMap
	loaded bool
}

// New constructs a Controller. Call Load before use.
func New(store storage.Store, bus *messenger.Bus) *Controller {
	return &Controller{store: store, bus: bus, chains: make(map[string]*Chain), active: make(activeChainMap)}
}

// Load reads every persisted chain and the active-chain map.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.store.List(ctx, storage.NamespaceChainRegistry)
	if err != nil {
		return err
	}
	c.chains = make(map[string]*Chain, len(records))
	c.active = make(activeChainMap)
	for _, rec := range records {
		if rec.Key == activeChainKey {
			if err := json.Unmarshal(rec.Value, &c.active); err != nil {
				return walleterrors.Wrap(walleterrors.ReasonInternal, err, "decode active chain map")
			}
			continue
		}
		var chain Chain
		if err := json.Unmarshal(rec.Value, &chain); err != nil {
			return walleterrors.Wrap(walleterrors.ReasonInternal, err, "decode chain")
		}
		ch := chain
		c.chains[ch.ChainRef] = &ch
	}
	c.loaded = true
	return nil
}

// UpsertChain adds or replaces a chain definition (wallet_addEthereumChain).
func (c *Controller) UpsertChain(ctx context.Context, chain Chain) (*Chain, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if chain.ChainRef == "" {
		return nil, walleterrors.New(walleterrors.ReasonInvalidParams, "chainRef is required")
	}
	c.chains[chain.ChainRef] = &chain

	if _, err := storage.PutValue(ctx, c.store, storage.NamespaceChainRegistry, chain.ChainRef, chain, nil); err != nil {
		return nil, err
	}
	if _, ok := c.active[chain.Namespace]; !ok {
		c.active[chain.Namespace] = chain.ChainRef
		if err := c.persistActiveLocked(ctx); err != nil {
			return nil, err
		}
	}
	c.publish()
	clone := chain
	return &clone, nil
}

// SwitchActive sets the active chain for chainRef's namespace
// (wallet_switchEthereumChain). Fails ChainNotRegistered if unknown.
func (c *Controller) SwitchActive(ctx context.Context, chainRef string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	chain, ok := c.chains[chainRef]
	if !ok {
		return walleterrors.New(walleterrors.ReasonChainNotRegistered, "chain not registered").WithDetails("chainRef", chainRef)
	}
	c.active[chain.Namespace] = chainRef

	if err := c.persistActiveLocked(ctx); err != nil {
		return err
	}
	c.publish()
	return nil
}

// ActiveChain returns the active chain for namespace, or NotFound if none
// has ever been set.
func (c *Controller) ActiveChain(namespace string) (*Chain, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ref, ok := c.active[namespace]
	if !ok {
		return nil, walleterrors.New(walleterrors.ReasonNotFound, "no active chain for namespace").WithDetails("namespace", namespace)
	}
	chain, ok := c.chains[ref]
	if !ok {
		return nil, walleterrors.New(walleterrors.ReasonChainNotRegistered, "active chain reference is stale").WithDetails("chainRef", ref)
	}
	clone := *chain
	return &clone, nil
}

// GetChain returns a registered chain by reference.
func (c *Controller) GetChain(chainRef string) (*Chain, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	chain, ok := c.chains[chainRef]
	if !ok {
		return nil, walleterrors.New(walleterrors.ReasonChainNotRegistered, "chain not registered").WithDetails("chainRef", chainRef)
	}
	clone := *chain
	return &clone, nil
}

// GetState returns every registered chain sorted by chainRef.
func (c *Controller) GetState() []Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() []Chain {
	result := make([]Chain, 0, len(c.chains))
	for _, chain := range c.chains {
		result = append(result, *chain)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ChainRef < result[j].ChainRef })
	return result
}

func (c *Controller) persistActiveLocked(ctx context.Context) error {
	_, err := storage.PutValue(ctx, c.store, storage.NamespaceChainRegistry, activeChainKey, c.active, nil)
	return err
}

// publish must be called with mu held.
func (c *Controller) publish() {
	c.bus.PublishIfChanged(messenger.TopicChainRegistryChanged, c.stateLocked())
}
