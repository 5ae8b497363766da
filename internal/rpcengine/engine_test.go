package rpcengine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walletd/core/internal/approvals"
	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/permissions"
	"github.com/walletd/core/internal/walleterrors"
)

type fakeSession struct{ unlocked bool }

func (f *fakeSession) IsUnlocked() bool { return f.unlocked }

type fakePermissions struct {
	connected bool
	assertErr error
}

func (f *fakePermissions) IsConnected(origin string, chainCtx permissions.Context) bool {
	return f.connected
}

func (f *fakePermissions) AssertPermission(origin string, capability permissions.Capability, chainCtx permissions.Context) error {
	return f.assertErr
}

type fakeApprovals struct {
	result any
	err    error
	called bool
	task   approvals.Task
}

func (f *fakeApprovals) RequestApproval(ctx context.Context, task approvals.Task) (any, error) {
	f.called = true
	f.task = task
	return f.result, f.err
}

func newTestEngine(session *fakeSession, perms *fakePermissions, appr *fakeApprovals) (*Engine, *Registry) {
	e, reg, _ := newTestEngineWithBus(session, perms, appr)
	return e, reg
}

func newTestEngineWithBus(session *fakeSession, perms *fakePermissions, appr *fakeApprovals) (*Engine, *Registry, *messenger.Bus) {
	reg := NewRegistry(EVMNamespace)
	ns := &Namespace{
		Name:            EVMNamespace,
		MethodPrefixes:  []string{"eth_", "wallet_", "personal_"},
		Methods:         make(map[string]MethodDefinition),
		AllowWhenLocked: map[string]bool{"eth_chainId": true},
	}
	ns.Methods["eth_chainId"] = MethodDefinition{
		PermissionCheck: PermissionNone,
		Handler:         func(ctx context.Context, req Request) (any, error) { return "0x1", nil },
	}
	ns.Methods["eth_accounts"] = MethodDefinition{
		PermissionCheck: PermissionConnected,
		Handler:         func(ctx context.Context, req Request) (any, error) { return []string{"0xabc"}, nil },
	}
	ns.Methods["personal_sign"] = MethodDefinition{
		Capability:       permissions.CapabilitySign,
		PermissionCheck:  PermissionScope,
		ApprovalRequired: true,
		ApprovalType:     "signMessage",
	}
	ns.Methods["wallet_watchAsset"] = MethodDefinition{
		PermissionCheck: PermissionNone,
		Locked:          &LockedPolicy{Type: LockedQueue},
		Handler:         func(ctx context.Context, req Request) (any, error) { return true, nil },
	}
	reg.Register(ns)

	activeChain := func(namespace string) (string, error) { return "eip155:1", nil }
	bus := messenger.New()
	e := New(reg, session, perms, appr, activeChain, bus)
	return e, reg, bus
}

func TestHandleDispatchesToHandler(t *testing.T) {
	e, _ := newTestEngine(&fakeSession{unlocked: true}, &fakePermissions{connected: true}, &fakeApprovals{})
	result, wireErr := e.Handle(context.Background(), Request{Method: "eth_chainId"})
	require.Nil(t, wireErr)
	assert.Equal(t, "0x1", result)
}

func TestHandleLockedDeniesNonPassthroughMethod(t *testing.T) {
	e, _ := newTestEngine(&fakeSession{unlocked: false}, &fakePermissions{connected: true}, &fakeApprovals{})
	_, wireErr := e.Handle(context.Background(), Request{Method: "eth_accounts"})
	require.NotNil(t, wireErr)
	assert.Equal(t, 4100, wireErr.Code)
}

func TestHandleLockedAllowsPassthroughMethod(t *testing.T) {
	e, _ := newTestEngine(&fakeSession{unlocked: false}, &fakePermissions{connected: true}, &fakeApprovals{})
	result, wireErr := e.Handle(context.Background(), Request{Method: "eth_chainId"})
	require.Nil(t, wireErr)
	assert.Equal(t, "0x1", result)
}

func TestHandlePermissionGuardDeniesWhenNotConnected(t *testing.T) {
	e, _ := newTestEngine(&fakeSession{unlocked: true}, &fakePermissions{connected: false}, &fakeApprovals{})
	_, wireErr := e.Handle(context.Background(), Request{Method: "eth_accounts"})
	require.NotNil(t, wireErr)
	assert.NotEqual(t, 0, wireErr.Code)
}

func TestHandleApprovalRequiredRoutesThroughApprovals(t *testing.T) {
	appr := &fakeApprovals{result: "0xsignature"}
	e, _ := newTestEngine(&fakeSession{unlocked: true}, &fakePermissions{connected: true}, appr)

	result, wireErr := e.Handle(context.Background(), Request{
		Method:  "personal_sign",
		Context: Context{Origin: "https://dapp.example"},
	})
	require.Nil(t, wireErr)
	assert.Equal(t, "0xsignature", result)
	assert.True(t, appr.called)
	assert.Equal(t, "signMessage", appr.task.Type)
	assert.Equal(t, "https://dapp.example", appr.task.Origin)
}

func TestHandleApprovalRejectionIsEncoded(t *testing.T) {
	appr := &fakeApprovals{err: walleterrors.New(walleterrors.ReasonUserRejected, "user declined")}
	e, _ := newTestEngine(&fakeSession{unlocked: true}, &fakePermissions{connected: true}, appr)

	_, wireErr := e.Handle(context.Background(), Request{Method: "personal_sign"})
	require.NotNil(t, wireErr)
	assert.Equal(t, 4001, wireErr.Code)
}

func TestHandleUnknownMethodIsMethodNotFound(t *testing.T) {
	e, _ := newTestEngine(&fakeSession{unlocked: true}, &fakePermissions{connected: true}, &fakeApprovals{})
	_, wireErr := e.Handle(context.Background(), Request{Method: "eth_doesNotExist"})
	require.NotNil(t, wireErr)
	assert.Equal(t, 4200, wireErr.Code)
}

func TestHandleExplicitMismatchedNamespaceAndChainRefFails(t *testing.T) {
	e, _ := newTestEngine(&fakeSession{unlocked: true}, &fakePermissions{connected: true}, &fakeApprovals{})
	_, wireErr := e.Handle(context.Background(), Request{
		Method:  "eth_chainId",
		Context: Context{Namespace: "bitcoin", ChainRef: "eip155:1"},
	})
	require.NotNil(t, wireErr)
}

func TestHandleLockedQueueResumesOnUnlock(t *testing.T) {
	e, _, bus := newTestEngineWithBus(&fakeSession{unlocked: false}, &fakePermissions{connected: true}, &fakeApprovals{})

	go func() {
		time.Sleep(10 * time.Millisecond)
		bus.Publish(messenger.TopicUnlockUnlocked, nil)
	}()

	result, wireErr := e.Handle(context.Background(), Request{Method: "wallet_watchAsset"})
	require.Nil(t, wireErr)
	assert.Equal(t, true, result)
}

func TestHandleLockedQueueFailsWhenContextCancelled(t *testing.T) {
	e, _, _ := newTestEngineWithBus(&fakeSession{unlocked: false}, &fakePermissions{connected: true}, &fakeApprovals{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, wireErr := e.Handle(ctx, Request{Method: "wallet_watchAsset"})
	require.NotNil(t, wireErr)
	assert.Equal(t, 4100, wireErr.Code)
}

func TestHandleInternalOriginBypassesGuards(t *testing.T) {
	e, _ := newTestEngine(&fakeSession{unlocked: false}, &fakePermissions{connected: false}, &fakeApprovals{})
	result, wireErr := e.Handle(context.Background(), Request{
		Method:  "eth_accounts",
		Context: Context{Internal: true},
	})
	require.Nil(t, wireErr)
	assert.Equal(t, []string{"0xabc"}, result)
}
