package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walletd/core/internal/keyring"
	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/storage/memstore"
)

type fakeSource struct {
	accounts []keyring.AccountRecord
}

func (f *fakeSource) ListAccounts(includeHidden bool) []keyring.AccountRecord {
	var result []keyring.AccountRecord
	for _, a := range f.accounts {
		if a.Hidden && !includeHidden {
			continue
		}
		result = append(result, a)
	}
	return result
}

func newTestController(t *testing.T, source *fakeSource) (*Controller, context.Context) {
	t.Helper()
	store := memstore.New()
	bus := messenger.New()
	c := New(store, bus, source)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	t.Cleanup(c.Close)
	return c, ctx
}

func TestGetStateMergesLabels(t *testing.T) {
	source := &fakeSource{accounts: []keyring.AccountRecord{
		{ID: "acct-1", Namespace: "eip155", Address: "0xabc", CreatedAt: time.Now()},
	}}
	c, ctx := newTestController(t, source)

	require.NoError(t, c.SetLabel(ctx, "acct-1", "My Wallet"))

	got := c.GetState(true)
	require.Len(t, got, 1)
	assert.Equal(t, "My Wallet", got[0].Label)
	assert.Equal(t, "0xabc", got[0].Address)
}

func TestSetLabelFailsForUnknownAccount(t *testing.T) {
	c, ctx := newTestController(t, &fakeSource{})
	err := c.SetLabel(ctx, "missing", "x")
	assert.Error(t, err)
}

func TestGetStateExcludesHiddenByDefault(t *testing.T) {
	source := &fakeSource{accounts: []keyring.AccountRecord{
		{ID: "acct-1", Namespace: "eip155", Address: "0xabc"},
		{ID: "acct-2", Namespace: "eip155", Address: "0xdef", Hidden: true},
	}}
	c, _ := newTestController(t, source)

	assert.Len(t, c.GetState(false), 1)
	assert.Len(t, c.GetState(true), 2)
}

func TestSetActiveFailsForUnknownAccount(t *testing.T) {
	c, ctx := newTestController(t, &fakeSource{})
	err := c.SetActive(ctx, "missing")
	assert.Error(t, err)
	assert.Empty(t, c.ActiveAccountID())
}

func TestSetActiveRoundTripsAcrossInstances(t *testing.T) {
	store := memstore.New()
	bus := messenger.New()
	source := &fakeSource{accounts: []keyring.AccountRecord{
		{ID: "acct-1", Namespace: "eip155", Address: "0xabc"},
	}}
	ctx := context.Background()

	c1 := New(store, bus, source)
	require.NoError(t, c1.Load(ctx))
	require.NoError(t, c1.SetActive(ctx, "acct-1"))
	assert.Equal(t, "acct-1", c1.ActiveAccountID())
	c1.Close()

	c2 := New(store, bus, source)
	require.NoError(t, c2.Load(ctx))
	t.Cleanup(c2.Close)
	assert.Equal(t, "acct-1", c2.ActiveAccountID())
}

func TestLoadRoundTripsLabelsAcrossInstances(t *testing.T) {
	store := memstore.New()
	bus := messenger.New()
	source := &fakeSource{accounts: []keyring.AccountRecord{
		{ID: "acct-1", Namespace: "eip155", Address: "0xabc"},
	}}
	ctx := context.Background()

	c1 := New(store, bus, source)
	require.NoError(t, c1.Load(ctx))
	require.NoError(t, c1.SetLabel(ctx, "acct-1", "Savings"))
	c1.Close()

	c2 := New(store, bus, source)
	require.NoError(t, c2.Load(ctx))
	t.Cleanup(c2.Close)

	got := c2.GetState(true)
	require.Len(t, got, 1)
	assert.Equal(t, "Savings", got[0].Label)
}
