// Package accounts implements the §4.4 accounts controller: a read
// projection over keyring.Service's account list, enriched with the
// cosmetic metadata (labels) that keyring itself never persists, since
// keyring is the secret custodian and stays ignorant of UI concerns.
//
// Grounded on internal/database/mock_repository.go's in-memory-map
// projection shape (as already used by permissions/network/
// chainregistry), subscribing to keyring's own change topic so the
// merged view stays current without polling.
package accounts

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/walletd/core/internal/keyring"
	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/storage"
	"github.com/walletd/core/internal/walleterrors"
)

// Source is the subset of keyring.Service the controller depends on.
type Source interface {
	ListAccounts(includeHidden bool) []keyring.AccountRecord
}

// View is one account as exposed to the RPC engine and UI bridge: the
// keyring's account record plus a controller-owned label.
type View struct {
	keyring.AccountRecord
	Label string `json:"label,omitempty"`
}

const activeAccountKey = "activeAccountId"

// Controller is the in-memory label store layered over Source.
type Controller struct {
	mu sync.Mutex

	store  storage.Store
	bus    *messenger.Bus
	source Source

	labels  map[string]string
	activeID string

	unsubscribe messenger.Unsubscribe
}

// New constructs a Controller and subscribes it to keyring's account
// change topic so GetState always reflects the latest keyring list.
func New(store storage.Store, bus *messenger.Bus, source Source) *Controller {
	c := &Controller{store: store, bus: bus, source: source, labels: make(map[string]string)}
	c.unsubscribe = bus.Subscribe(messenger.TopicAccountsChanged, false, func(messenger.Event) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.publish()
	})
	return c
}

// Load reads every persisted label into the projection.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	recs, err := c.store.List(ctx, storage.NamespaceAccounts)
	if err != nil {
		return err
	}
	c.labels = make(map[string]string, len(recs))
	for _, rec := range recs {
		var value string
		if err := json.Unmarshal(rec.Value, &value); err != nil {
			return walleterrors.Wrap(walleterrors.ReasonInternal, err, "decode account label")
		}
		if rec.Key == activeAccountKey {
			c.activeID = value
			continue
		}
		c.labels[rec.Key] = value
	}
	return nil
}

// SetActive marks accountID as the UI's selected account, persisting the
// choice and publishing the updated projection.
func (c *Controller) SetActive(ctx context.Context, accountID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.accountExistsLocked(accountID) {
		return walleterrors.New(walleterrors.ReasonAccountNotFound, "account not found").WithDetails("accountId", accountID)
	}
	if _, err := storage.PutValue(ctx, c.store, storage.NamespaceAccounts, activeAccountKey, accountID, nil); err != nil {
		return err
	}
	c.activeID = accountID
	c.publish()
	return nil
}

// ActiveAccountID returns the currently selected account id, or "" if
// none has been chosen yet.
func (c *Controller) ActiveAccountID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// SetLabel validates accountID exists in the keyring projection, then
// persists and publishes the updated label.
func (c *Controller) SetLabel(ctx context.Context, accountID, label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.accountExistsLocked(accountID) {
		return walleterrors.New(walleterrors.ReasonAccountNotFound, "account not found").WithDetails("accountId", accountID)
	}

	if _, err := storage.PutValue(ctx, c.store, storage.NamespaceAccounts, accountID, label, nil); err != nil {
		return err
	}
	c.labels[accountID] = label
	c.publish()
	return nil
}

func (c *Controller) accountExistsLocked(accountID string) bool {
	for _, acct := range c.source.ListAccounts(true) {
		if acct.ID == accountID {
			return true
		}
	}
	return false
}

// GetState returns every account (hidden ones only when includeHidden is
// true) merged with its label, sorted by namespace then address (matching keyring.ListAccounts'
// ordering).
func (c *Controller) GetState(includeHidden bool) []View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked(includeHidden)
}

func (c *Controller) stateLocked(includeHidden bool) []View {
	accts := c.source.ListAccounts(includeHidden)
	result := make([]View, 0, len(accts))
	for _, acct := range accts {
		result = append(result, View{AccountRecord: acct, Label: c.labels[acct.ID]})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Namespace != result[j].Namespace {
			return result[i].Namespace < result[j].Namespace
		}
		return result[i].Address < result[j].Address
	})
	return result
}

func (c *Controller) publish() {
	c.bus.PublishIfChanged(messenger.TopicAccountsChanged, c.stateLocked(true))
}

// Close unsubscribes from keyring's change topic.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}
