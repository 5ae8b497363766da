package chainregistry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/storage/memstore"
)

func newTestController(t *testing.T) (*Controller, context.Context) {
	t.Helper()
	store := memstore.New()
	bus := messenger.New()
	c := New(store, bus)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	return c, ctx
}

func mainnet() Chain {
	return Chain{
		ChainRef:       "eip155:1",
		Namespace:      "eip155",
		ChainID:        "0x1",
		Name:           "Ethereum Mainnet",
		NativeCurrency: Currency{Name: "Ether", Symbol: "ETH", Decimals: 18},
		RPCUrls:        []string{"https://rpc1"},
	}
}

func TestUpsertChainSetsFirstAsActive(t *testing.T) {
	c, ctx := newTestController(t)
	_, err := c.UpsertChain(ctx, mainnet())
	require.NoError(t, err)

	active, err := c.ActiveChain("eip155")
	require.NoError(t, err)
	assert.Equal(t, "eip155:1", active.ChainRef)
}

func TestUpsertChainDoesNotOverrideExistingActive(t *testing.T) {
	c, ctx := newTestController(t)
	_, err := c.UpsertChain(ctx, mainnet())
	require.NoError(t, err)

	polygon := Chain{ChainRef: "eip155:137", Namespace: "eip155", ChainID: "0x89", Name: "Polygon"}
	_, err = c.UpsertChain(ctx, polygon)
	require.NoError(t, err)

	active, err := c.ActiveChain("eip155")
	require.NoError(t, err)
	assert.Equal(t, "eip155:1", active.ChainRef)
}

func TestSwitchActiveChangesActiveChain(t *testing.T) {
	c, ctx := newTestController(t)
	require.NoError(t, must(c.UpsertChain(ctx, mainnet())))
	polygon := Chain{ChainRef: "eip155:137", Namespace: "eip155", ChainID: "0x89", Name: "Polygon"}
	require.NoError(t, must(c.UpsertChain(ctx, polygon)))

	require.NoError(t, c.SwitchActive(ctx, "eip155:137"))
	active, err := c.ActiveChain("eip155")
	require.NoError(t, err)
	assert.Equal(t, "eip155:137", active.ChainRef)
}

func TestSwitchActiveFailsForUnknownChain(t *testing.T) {
	c, ctx := newTestController(t)
	err := c.SwitchActive(ctx, "eip155:999")
	assert.Error(t, err)
}

func TestActiveChainNotFoundBeforeAnyUpsert(t *testing.T) {
	c, _ := newTestController(t)
	_, err := c.ActiveChain("eip155")
	assert.Error(t, err)
}

func TestLoadRoundTripsChainsAndActive(t *testing.T) {
	store := memstore.New()
	bus := messenger.New()
	ctx := context.Background()

	c1 := New(store, bus)
	require.NoError(t, c1.Load(ctx))
	require.NoError(t, must(c1.UpsertChain(ctx, mainnet())))

	c2 := New(store, bus)
	require.NoError(t, c2.Load(ctx))
	active, err := c2.ActiveChain("eip155")
	require.NoError(t, err)
	assert.Equal(t, "eip155:1", active.ChainRef)
	assert.Len(t, c2.GetState(), 1)
}

func must(_ *Chain, err error) error { return err }
