package uibridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walletd/core/internal/accounts"
	"github.com/walletd/core/internal/approvals"
	"github.com/walletd/core/internal/chainregistry"
	"github.com/walletd/core/internal/keyring"
	"github.com/walletd/core/internal/keyring/evmadapter"
	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/network"
	"github.com/walletd/core/internal/permissions"
	"github.com/walletd/core/internal/storage/memstore"
	"github.com/walletd/core/internal/transactions"
	"github.com/walletd/core/internal/unlocksession"
	"github.com/walletd/core/internal/vault"
)

const testPassword = "correct horse battery staple"

type testRig struct {
	bridge   *Bridge
	session  *unlocksession.Session
	keyring  *keyring.Service
	chains   *chainregistry.Controller
	accounts *accounts.Controller
	approves *approvals.Controller
	perms    *permissions.Controller
}

func newTestRig(t *testing.T, unlockedAndSeeded bool) (*testRig, context.Context) {
	t.Helper()
	ctx := context.Background()
	bus := messenger.New()

	v := vault.New(1)
	session := unlocksession.New(v, bus)

	keyStore := memstore.New()
	svc := keyring.NewService(session, keyStore, bus)
	svc.RegisterAdapter(evmadapter.New())

	if unlockedAndSeeded {
		_, err := v.Initialize(testPassword)
		require.NoError(t, err)
		_, err = session.Unlock(testPassword)
		require.NoError(t, err)
		require.NoError(t, svc.LoadOnUnlock(ctx))
	}

	acctCtl := accounts.New(memstore.New(), bus, svc)
	require.NoError(t, acctCtl.Load(ctx))

	chains := chainregistry.New(memstore.New(), bus)
	require.NoError(t, chains.Load(ctx))
	_, err := chains.UpsertChain(ctx, chainregistry.Chain{
		ChainRef: "eip155:1", Namespace: "eip155", ChainID: "0x1", Name: "Mainnet",
		NativeCurrency: chainregistry.Currency{Name: "Ether", Symbol: "ETH", Decimals: 18},
		RPCUrls:        []string{"https://rpc1"},
	})
	require.NoError(t, err)

	perms := permissions.New(memstore.New(), bus)
	require.NoError(t, perms.Load(ctx))

	approves := approvals.New(memstore.New(), bus)

	net := network.New(memstore.New(), bus)
	require.NoError(t, net.Load(ctx))

	txns := transactions.New(memstore.New(), bus, net.ActiveEndpoint, logrus.NewEntry(logrus.New()))

	deps := Deps{
		Session: session, Accounts: acctCtl, ChainRegistry: chains,
		Network: net, Permissions: perms, Approvals: approves, Store: memstore.New(),
	}
	bridge := New(deps, svc, txns, svc, bus, logrus.NewEntry(logrus.New()))
	t.Cleanup(bridge.Close)

	return &testRig{
		bridge: bridge, session: session, keyring: svc, chains: chains,
		accounts: acctCtl, approves: approves, perms: perms,
	}, ctx
}

func rawParams(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestHandleUnknownMethodReturnsMethodNotFound(t *testing.T) {
	rig, ctx := newTestRig(t, false)
	resp := rig.bridge.Handle(ctx, Request{ID: "1", Method: "ui.nope"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ui:error", resp.Type)
}

func TestOnboardingStatusReportsUninitialised(t *testing.T) {
	rig, ctx := newTestRig(t, false)
	resp := rig.bridge.Handle(ctx, Request{ID: "1", Method: "ui.onboarding.status"})
	require.Nil(t, resp.Error)
	status := resp.Result.(map[string]bool)
	assert.False(t, status["initialized"])
	assert.False(t, status["unlocked"])
}

func TestInitializeVaultUnlocksSession(t *testing.T) {
	rig, ctx := newTestRig(t, false)
	resp := rig.bridge.Handle(ctx, Request{
		ID: "1", Method: "ui.onboarding.initializeVault",
		Params: rawParams(t, unlockParams{Password: testPassword}),
	})
	require.Nil(t, resp.Error)
	assert.True(t, rig.session.GetState().IsUnlocked)
}

func TestSessionUnlockThenLock(t *testing.T) {
	rig, ctx := newTestRig(t, false)
	_, err := rig.session.Vault().Initialize(testPassword)
	require.NoError(t, err)
	rig.session.Lock(unlocksession.ReasonManual)

	resp := rig.bridge.Handle(ctx, Request{
		ID: "1", Method: "ui.session.unlock",
		Params: rawParams(t, unlockParams{Password: testPassword}),
	})
	require.Nil(t, resp.Error)
	assert.True(t, rig.session.GetState().IsUnlocked)

	resp = rig.bridge.Handle(ctx, Request{ID: "2", Method: "ui.session.lock"})
	require.Nil(t, resp.Error)
	assert.False(t, rig.session.GetState().IsUnlocked)
}

func TestSessionUnlockWithWrongPasswordFails(t *testing.T) {
	rig, ctx := newTestRig(t, false)
	_, err := rig.session.Vault().Initialize(testPassword)
	require.NoError(t, err)
	rig.session.Lock(unlocksession.ReasonManual)

	resp := rig.bridge.Handle(ctx, Request{
		ID: "1", Method: "ui.session.unlock",
		Params: rawParams(t, unlockParams{Password: "wrong"}),
	})
	require.NotNil(t, resp.Error)
}

func TestAccountsSwitchActive(t *testing.T) {
	rig, ctx := newTestRig(t, true)
	phrase, err := rig.keyring.GenerateMnemonic(12)
	require.NoError(t, err)
	acct, err := rig.keyring.ConfirmNewMnemonic(ctx, "eip155", testPassword, phrase)
	require.NoError(t, err)

	resp := rig.bridge.Handle(ctx, Request{
		ID: "1", Method: "ui.accounts.switchActive",
		Params: rawParams(t, switchActiveAccountParams{AccountID: acct.ID}),
	})
	require.Nil(t, resp.Error)
	assert.Equal(t, acct.ID, rig.accounts.ActiveAccountID())
}

func TestAccountsSwitchActiveFailsForUnknownAccount(t *testing.T) {
	rig, ctx := newTestRig(t, true)
	resp := rig.bridge.Handle(ctx, Request{
		ID: "1", Method: "ui.accounts.switchActive",
		Params: rawParams(t, switchActiveAccountParams{AccountID: "missing"}),
	})
	require.NotNil(t, resp.Error)
}

func TestApprovalsRejectCompletesPendingTask(t *testing.T) {
	rig, ctx := newTestRig(t, true)

	resultCh := make(chan error, 1)
	go func() {
		_, err := rig.approves.RequestApproval(ctx, approvals.Task{
			Type: "signMessage", Origin: "https://dapp.example",
		})
		resultCh <- err
	}()

	require.Eventually(t, func() bool { return len(rig.approves.GetState()) == 1 }, assertTimeout, assertTick)
	taskID := rig.approves.GetState()[0].ID

	resp := rig.bridge.Handle(ctx, Request{
		ID: "1", Method: "ui.approvals.reject",
		Params: rawParams(t, rejectParams{ID: taskID, Reason: "no thanks"}),
	})
	require.Nil(t, resp.Error)

	err := <-resultCh
	require.Error(t, err)
}

func TestApprovalsApproveSignMessageGrantsSignAndReturnsSignature(t *testing.T) {
	rig, ctx := newTestRig(t, true)
	phrase, err := rig.keyring.GenerateMnemonic(12)
	require.NoError(t, err)
	acct, err := rig.keyring.ConfirmNewMnemonic(ctx, "eip155", testPassword, phrase)
	require.NoError(t, err)

	params := rawParams(t, []string{"0x68656c6c6f", acct.Address})

	resultCh := make(chan any, 1)
	errCh := make(chan error, 1)
	go func() {
		v, err := rig.approves.RequestApproval(ctx, approvals.Task{
			Type: "signMessage", Origin: "https://dapp.example", Payload: json.RawMessage(params),
		})
		resultCh <- v
		errCh <- err
	}()

	require.Eventually(t, func() bool { return len(rig.approves.GetState()) == 1 }, assertTimeout, assertTick)
	taskID := rig.approves.GetState()[0].ID

	resp := rig.bridge.Handle(ctx, Request{
		ID: "1", Method: "ui.approvals.approve",
		Params: rawParams(t, approveParams{ID: taskID}),
	})
	require.Nil(t, resp.Error)

	require.NoError(t, <-errCh)
	sig := (<-resultCh).(string)
	assert.NotEmpty(t, sig)

	grant, ok := rig.perms.GrantFor("https://dapp.example", "eip155")
	require.True(t, ok)
	require.Len(t, grant.Chains, 1)
	assert.Contains(t, grant.Chains[0].Capabilities, string(permissions.CapabilitySign))
}

func TestSnapshotGetReflectsState(t *testing.T) {
	rig, ctx := newTestRig(t, true)
	resp := rig.bridge.Handle(ctx, Request{ID: "1", Method: "ui.snapshot.get"})
	require.Nil(t, resp.Error)
	snap := resp.Result.(UiSnapshot)
	assert.True(t, snap.Session.IsUnlocked)
}

const (
	assertTimeout = 2 * time.Second
	assertTick    = 10 * time.Millisecond
)
