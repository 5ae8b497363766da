// Package memstore is the default in-process Store, used by cmd/walletd
// when no database is configured and by every controller's tests.
//
// Grounded on internal/app/storage/memory.go's Memory type (per-domain
// map + mutex + next-ID counter), generalized to a single namespaced map
// keyed by (Namespace, Key).
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"encoding/json"

	"github.com/walletd/core/internal/storage"
	"github.com/walletd/core/internal/walleterrors"
)

type recordKey struct {
	namespace storage.Namespace
	key       string
}

// Store is a thread-safe in-memory implementation of storage.Store.
type Store struct {
	mu      sync.RWMutex
	records map[recordKey]storage.Record
}

var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{records: make(map[recordKey]storage.Record)}
}

func (s *Store) Get(_ context.Context, namespace storage.Namespace, key string) (storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[recordKey{namespace, key}]
	if !ok {
		return storage.Record{}, walleterrors.New(walleterrors.ReasonNotFound, "record not found").
			WithDetails("namespace", string(namespace)).WithDetails("key", key)
	}
	return cloneRecord(rec), nil
}

func (s *Store) Put(_ context.Context, namespace storage.Namespace, key string, value json.RawMessage, expectedVersion *int) (storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rk := recordKey{namespace, key}
	existing, exists := s.records[rk]

	if expectedVersion != nil {
		currentVersion := 0
		if exists {
			currentVersion = existing.Version
		}
		if currentVersion != *expectedVersion {
			return storage.Record{}, walleterrors.New(walleterrors.ReasonInvalidRequest, "version conflict").
				WithDetails("namespace", string(namespace)).WithDetails("key", key)
		}
	}

	nextVersion := 1
	if exists {
		nextVersion = existing.Version + 1
	}

	rec := storage.Record{
		Namespace: namespace,
		Key:       key,
		Value:     append(json.RawMessage(nil), value...),
		Version:   nextVersion,
		UpdatedAt: time.Now().UTC(),
	}
	s.records[rk] = rec
	return cloneRecord(rec), nil
}

func (s *Store) Delete(_ context.Context, namespace storage.Namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, recordKey{namespace, key})
	return nil
}

func (s *Store) List(_ context.Context, namespace storage.Namespace) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]storage.Record, 0)
	for rk, rec := range s.records {
		if rk.namespace == namespace {
			result = append(result, cloneRecord(rec))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (s *Store) Close() error { return nil }

func cloneRecord(rec storage.Record) storage.Record {
	rec.Value = append(json.RawMessage(nil), rec.Value...)
	return rec
}
