// Package storage defines the namespaced record store port that every
// controller in internal/{accounts,permissions,network,chainregistry,
// approvals,transactions} and internal/vault persists through, plus the
// backends that satisfy it.
//
// Grounded on the teacher's internal/app/storage package: the same
// Get/Create/Update/List-per-domain shape (interfaces.go, memory.go,
// postgres/store.go) generalized from one interface per domain type to a
// single namespaced Record port, since spec.md §5/§6 describes one
// abstract storage port shared by every controller rather than a typed
// interface per module.
package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/walletd/core/internal/walleterrors"
)

// Namespace identifies a logical record collection. Controllers each own
// one namespace; see internal/core for the concrete assignment.
type Namespace string

const (
	NamespaceVault         Namespace = "vault"
	NamespaceKeyring       Namespace = "keyring"
	NamespaceAccounts      Namespace = "accounts"
	NamespacePermissions   Namespace = "permissions"
	NamespaceNetwork       Namespace = "network"
	NamespaceChainRegistry Namespace = "chainRegistry"
	NamespaceApprovals     Namespace = "approvals"
	NamespaceTransactions  Namespace = "transactions"
)

// Record is one namespaced key/value row. Value is opaque JSON; callers
// marshal/unmarshal their own domain types. Version is incremented on
// every successful Put and used for optimistic-concurrency checks.
type Record struct {
	Namespace Namespace
	Key       string
	Value     json.RawMessage
	Version   int
	UpdatedAt time.Time
}

// Store is the storage port every controller persists through. All
// implementations must be safe for concurrent use.
type Store interface {
	// Get returns the record at (namespace, key), or NotFound.
	Get(ctx context.Context, namespace Namespace, key string) (Record, error)

	// Put writes value at (namespace, key). If expectedVersion is non-nil,
	// the write fails with Conflict-shaped walleterrors unless the
	// stored record's current version matches; pass nil to write
	// unconditionally (first write or don't-care callers). On success
	// returns the new Record with its incremented Version.
	Put(ctx context.Context, namespace Namespace, key string, value json.RawMessage, expectedVersion *int) (Record, error)

	// Delete removes the record at (namespace, key). Deleting an absent
	// key is not an error.
	Delete(ctx context.Context, namespace Namespace, key string) error

	// List returns every record in namespace, ordered by key.
	List(ctx context.Context, namespace Namespace) ([]Record, error)

	// Close releases any underlying resources (connections, etc).
	Close() error
}

// errVersionConflict builds the WalletError for a Put whose
// expectedVersion does not match the stored version; the backends build
// their own equivalent error and do not call it.
func errVersionConflict(namespace Namespace, key string) error {
	return walleterrors.New(walleterrors.ReasonInvalidRequest, "version conflict").
		WithDetails("namespace", string(namespace)).
		WithDetails("key", key)
}

func errNotFound(namespace Namespace, key string) error {
	return walleterrors.New(walleterrors.ReasonNotFound, "record not found").
		WithDetails("namespace", string(namespace)).
		WithDetails("key", key)
}

// PutValue is a convenience helper that marshals v to JSON and calls
// Put. Typical call site: storage.PutValue(ctx, store, NamespaceAccounts,
// acct.ID, acct, nil).
func PutValue(ctx context.Context, s Store, namespace Namespace, key string, v any, expectedVersion *int) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Record{}, walleterrors.Wrap(walleterrors.ReasonInternal, err, "marshal record value")
	}
	return s.Put(ctx, namespace, key, raw, expectedVersion)
}

// GetValue fetches the record at (namespace, key) and unmarshals its
// value into dst.
func GetValue(ctx context.Context, s Store, namespace Namespace, key string, dst any) (Record, error) {
	rec, err := s.Get(ctx, namespace, key)
	if err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(rec.Value, dst); err != nil {
		return Record{}, walleterrors.Wrap(walleterrors.ReasonInternal, err, "unmarshal record value")
	}
	return rec, nil
}
