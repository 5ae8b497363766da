package network

import (
	"context"
	"testing"
	"time"

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

func TestRegisterEndpointsSetsActiveIndexZero(t *testing.T) {
	c, ctx := newTestController(t)
	_, err := c.RegisterEndpoints(ctx, "eip155:1", []string{"https://rpc1", "https://rpc2"})
	require.NoError(t, err)

	active, err := c.ActiveEndpoint("eip155:1")
	require.NoError(t, err)
	assert.Equal(t, "https://rpc1", active)
}

func TestReportRpcOutcomeRotatesAfterThreshold(t *testing.T) {
	c, ctx := newTestController(t)
	_, err := c.RegisterEndpoints(ctx, "eip155:1", []string{"https://rpc1", "https://rpc2"})
	require.NoError(t, err)

	now := time.Now()
	for i := 0; i < FailureThreshold; i++ {
		require.NoError(t, c.ReportRpcOutcome(ctx, "eip155:1", false, now))
	}

	active, err := c.ActiveEndpoint("eip155:1")
	require.NoError(t, err)
	assert.Equal(t, "https://rpc2", active)
}

func TestReportRpcOutcomeSuccessResetsConsecutiveFailures(t *testing.T) {
	c, ctx := newTestController(t)
	_, err := c.RegisterEndpoints(ctx, "eip155:1", []string{"https://rpc1", "https://rpc2"})
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, c.ReportRpcOutcome(ctx, "eip155:1", false, now))
	require.NoError(t, c.ReportRpcOutcome(ctx, "eip155:1", true, now))

	state := c.GetState()
	require.Len(t, state, 1)
	assert.Equal(t, 0, state[0].Endpoints[0].Health.ConsecutiveFailures)
	assert.Equal(t, 1, state[0].Endpoints[0].Health.SuccessCount)
}

func TestRotateSkipsEndpointsInCooldown(t *testing.T) {
	c, ctx := newTestController(t)
	_, err := c.RegisterEndpoints(ctx, "eip155:1", []string{"https://rpc1", "https://rpc2", "https://rpc3"})
	require.NoError(t, err)

	now := time.Now()
	for i := 0; i < FailureThreshold; i++ {
		require.NoError(t, c.ReportRpcOutcome(ctx, "eip155:1", false, now))
	}
	// rpc2 is now active; drive it into cooldown too.
	for i := 0; i < FailureThreshold; i++ {
		require.NoError(t, c.ReportRpcOutcome(ctx, "eip155:1", false, now))
	}

	active, err := c.ActiveEndpoint("eip155:1")
	require.NoError(t, err)
	assert.Equal(t, "https://rpc3", active)
}

func TestActiveEndpointFailsForUnregisteredChain(t *testing.T) {
	c, _ := newTestController(t)
	_, err := c.ActiveEndpoint("eip155:999")
	assert.Error(t, err)
}

func TestRegisterEndpointsPreservesHealthForReusedURLs(t *testing.T) {
	c, ctx := newTestController(t)
	_, err := c.RegisterEndpoints(ctx, "eip155:1", []string{"https://rpc1"})
	require.NoError(t, err)
	require.NoError(t, c.ReportRpcOutcome(ctx, "eip155:1", true, time.Now()))

	_, err = c.RegisterEndpoints(ctx, "eip155:1", []string{"https://rpc1", "https://rpc2"})
	require.NoError(t, err)

	state := c.GetState()
	require.Len(t, state, 1)
	assert.Equal(t, 1, state[0].Endpoints[0].Health.SuccessCount)
}

func TestLoadRoundTripsAcrossInstances(t *testing.T) {
	store := memstore.New()
	bus := messenger.New()
	ctx := context.Background()

	c1 := New(store, bus)
	require.NoError(t, c1.Load(ctx))
	_, err := c1.RegisterEndpoints(ctx, "eip155:1", []string{"https://rpc1"})
	require.NoError(t, err)

	c2 := New(store, bus)
	require.NoError(t, c2.Load(ctx))
	active, err := c2.ActiveEndpoint("eip155:1")
	require.NoError(t, err)
	assert.Equal(t, "https://rpc1", active)
}
