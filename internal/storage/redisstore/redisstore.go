// Package redisstore implements storage.Store over Redis hashes. When
// WALLETD_STORAGE_BACKEND is "redis", internal/core uses it as the single
// store behind every controller's namespace, not as a cache in front of
// another backend.
//
// Grounded on _examples/threefoldtecharchive-rivine/modules/datastore/
// redis.go's Redis wrapper (SaveManager/GetManagers via HSet/HGetAll),
// generalized from one HSET per domain type to one HSET per namespace,
// against go-redis/redis/v8's context-aware client (the teacher's actual
// go.mod pin; Rivine's v6 API is pre-context and kept only as the shape
// reference).
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/walletd/core/internal/storage"
	"github.com/walletd/core/internal/walleterrors"
)

type envelope struct {
	Value     json.RawMessage `json:"value"`
	Version   int             `json:"version"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Store implements storage.Store over a single Redis client, one HSET per
// namespace keyed by record key.
type Store struct {
	client *redis.Client
}

var _ storage.Store = (*Store)(nil)

// Open connects to addr (host:port) and verifies the connection with a
// PING, matching the Rivine constructor's eager-connect behaviour.
func Open(addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, walleterrors.Wrap(walleterrors.ReasonInternal, err, "connect to redis")
	}
	return &Store{client: client}, nil
}

func hashKey(namespace storage.Namespace) string {
	return fmt.Sprintf("walletd:%s", namespace)
}

func (s *Store) Get(ctx context.Context, namespace storage.Namespace, key string) (storage.Record, error) {
	raw, err := s.client.HGet(ctx, hashKey(namespace), key).Result()
	if err == redis.Nil {
		return storage.Record{}, walleterrors.New(walleterrors.ReasonNotFound, "record not found").
			WithDetails("namespace", string(namespace)).WithDetails("key", key)
	}
	if err != nil {
		return storage.Record{}, walleterrors.Wrap(walleterrors.ReasonInternal, err, "hget record")
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return storage.Record{}, walleterrors.Wrap(walleterrors.ReasonInternal, err, "decode envelope")
	}
	return storage.Record{Namespace: namespace, Key: key, Value: env.Value, Version: env.Version, UpdatedAt: env.UpdatedAt}, nil
}

func (s *Store) Put(ctx context.Context, namespace storage.Namespace, key string, value json.RawMessage, expectedVersion *int) (storage.Record, error) {
	existing, err := s.Get(ctx, namespace, key)
	exists := err == nil
	if err != nil && !walleterrors.Is(err, walleterrors.ReasonNotFound) {
		return storage.Record{}, err
	}

	if expectedVersion != nil {
		have := 0
		if exists {
			have = existing.Version
		}
		if have != *expectedVersion {
			return storage.Record{}, walleterrors.New(walleterrors.ReasonInvalidRequest, "version conflict").
				WithDetails("namespace", string(namespace)).WithDetails("key", key)
		}
	}

	nextVersion := 1
	if exists {
		nextVersion = existing.Version + 1
	}
	now := time.Now().UTC()

	env := envelope{Value: value, Version: nextVersion, UpdatedAt: now}
	encoded, err := json.Marshal(env)
	if err != nil {
		return storage.Record{}, walleterrors.Wrap(walleterrors.ReasonInternal, err, "encode envelope")
	}

	if err := s.client.HSet(ctx, hashKey(namespace), key, encoded).Err(); err != nil {
		return storage.Record{}, walleterrors.Wrap(walleterrors.ReasonInternal, err, "hset record")
	}

	return storage.Record{Namespace: namespace, Key: key, Value: value, Version: nextVersion, UpdatedAt: now}, nil
}

func (s *Store) Delete(ctx context.Context, namespace storage.Namespace, key string) error {
	if err := s.client.HDel(ctx, hashKey(namespace), key).Err(); err != nil {
		return walleterrors.Wrap(walleterrors.ReasonInternal, err, "hdel record")
	}
	return nil
}

func (s *Store) List(ctx context.Context, namespace storage.Namespace) ([]storage.Record, error) {
	all, err := s.client.HGetAll(ctx, hashKey(namespace)).Result()
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.ReasonInternal, err, "hgetall records")
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]storage.Record, 0, len(keys))
	for _, k := range keys {
		var env envelope
		if err := json.Unmarshal([]byte(all[k]), &env); err != nil {
			return nil, walleterrors.Wrap(walleterrors.ReasonInternal, err, "decode envelope")
		}
		result = append(result, storage.Record{Namespace: namespace, Key: k, Value: env.Value, Version: env.Version, UpdatedAt: env.UpdatedAt})
	}
	return result, nil
}

func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close redisstore: %w", err)
	}
	return nil
}
