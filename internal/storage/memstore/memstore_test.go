package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walletd/core/internal/storage"
	"github.com/walletd/core/internal/walleterrors"
)

func TestPutThenGetRoundTrips(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec, err := s.Put(ctx, storage.NamespaceAccounts, "acct-1", []byte(`{"id":"acct-1"}`), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Version)

	got, err := s.Get(ctx, storage.NamespaceAccounts, "acct-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"acct-1"}`, string(got.Value))
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background(), storage.NamespaceAccounts, "missing")
	require.Error(t, err)
	assert.True(t, walleterrors.Is(err, walleterrors.ReasonNotFound))
}

func TestPutVersionConflict(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Put(ctx, storage.NamespaceAccounts, "a", []byte(`1`), nil)
	require.NoError(t, err)

	staleVersion := 0
	_, err = s.Put(ctx, storage.NamespaceAccounts, "a", []byte(`2`), &staleVersion)
	require.Error(t, err)
	assert.True(t, walleterrors.Is(err, walleterrors.ReasonInvalidRequest))

	currentVersion := 1
	rec, err := s.Put(ctx, storage.NamespaceAccounts, "a", []byte(`2`), &currentVersion)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Version)
}

func TestListOrdersByKey(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, _ = s.Put(ctx, storage.NamespaceAccounts, "b", []byte(`1`), nil)
	_, _ = s.Put(ctx, storage.NamespaceAccounts, "a", []byte(`2`), nil)
	_, _ = s.Put(ctx, storage.NamespacePermissions, "x", []byte(`3`), nil)

	recs, err := s.List(ctx, storage.NamespaceAccounts)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].Key)
	assert.Equal(t, "b", recs[1].Key)
}

func TestDeleteThenGetNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, _ = s.Put(ctx, storage.NamespaceAccounts, "a", []byte(`1`), nil)
	require.NoError(t, s.Delete(ctx, storage.NamespaceAccounts, "a"))

	_, err := s.Get(ctx, storage.NamespaceAccounts, "a")
	require.Error(t, err)
}

func TestRecordValuesAreCopiedNotAliased(t *testing.T) {
	s := New()
	ctx := context.Background()

	val := []byte(`{"n":1}`)
	_, err := s.Put(ctx, storage.NamespaceAccounts, "a", val, nil)
	require.NoError(t, err)

	val[2] = 'X' // mutate caller's slice after Put
	got, err := s.Get(ctx, storage.NamespaceAccounts, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(got.Value))
}
