package keyring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walletd/core/internal/keyring/evmadapter"
	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/storage/memstore"
	"github.com/walletd/core/internal/unlocksession"
	"github.com/walletd/core/internal/vault"
	"github.com/walletd/core/internal/walleterrors"
)

const testPassword = "correct horse battery staple"

func unlockedService(t *testing.T) (*Service, *unlocksession.Session, context.Context) {
	t.Helper()
	bus := messenger.New()
	v := vault.New(1)
	session := unlocksession.New(v, bus)
	store := memstore.New()

	svc := NewService(session, store, bus)
	svc.RegisterAdapter(evmadapter.New())

	_, err := v.Initialize(testPassword)
	require.NoError(t, err)
	_, err = session.Unlock(testPassword)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.LoadOnUnlock(ctx))
	return svc, session, ctx
}

func TestConfirmNewMnemonicCreatesAccountZero(t *testing.T) {
	svc, _, ctx := unlockedService(t)

	phrase, err := svc.GenerateMnemonic(12)
	require.NoError(t, err)

	acct, err := svc.ConfirmNewMnemonic(ctx, "eip155", testPassword, phrase)
	require.NoError(t, err)
	assert.Equal(t, 0, acct.Index)
	assert.NotEmpty(t, acct.Address)

	accounts := svc.ListAccounts(false)
	require.Len(t, accounts, 1)
	assert.Equal(t, acct.Address, accounts[0].Address)
}

func TestImportMnemonicRejectsDuplicate(t *testing.T) {
	svc, _, ctx := unlockedService(t)

	phrase, err := svc.GenerateMnemonic(12)
	require.NoError(t, err)

	_, err = svc.ConfirmNewMnemonic(ctx, "eip155", testPassword, phrase)
	require.NoError(t, err)

	_, err = svc.ImportMnemonic(ctx, "eip155", testPassword, phrase)
	require.Error(t, err)
	assert.True(t, walleterrors.Is(err, walleterrors.ReasonDuplicateAccount))
}

func TestImportMnemonicRejectsInvalidPhrase(t *testing.T) {
	svc, _, ctx := unlockedService(t)

	_, err := svc.ImportMnemonic(ctx, "eip155", testPassword, "not a real mnemonic phrase at all nope")
	require.Error(t, err)
	assert.True(t, walleterrors.Is(err, walleterrors.ReasonInvalidMnemonic))
}

func TestDeriveNextAccountIsMonotonic(t *testing.T) {
	svc, _, ctx := unlockedService(t)

	phrase, err := svc.GenerateMnemonic(12)
	require.NoError(t, err)
	first, err := svc.ConfirmNewMnemonic(ctx, "eip155", testPassword, phrase)
	require.NoError(t, err)

	second, err := svc.DeriveNextAccount(ctx, testPassword, first.KeyringID)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Index)

	third, err := svc.DeriveNextAccount(ctx, testPassword, first.KeyringID)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Index)
}

func TestImportPrivateKeyRejectsDuplicate(t *testing.T) {
	svc, _, ctx := unlockedService(t)

	key := "0x000000000000000000000000000000000000000000000000000000000000000a"

	_, err := svc.ImportPrivateKey(ctx, "eip155", testPassword, key)
	require.NoError(t, err)

	_, err = svc.ImportPrivateKey(ctx, "eip155", testPassword, key)
	require.Error(t, err)
	assert.True(t, walleterrors.Is(err, walleterrors.ReasonDuplicateAccount))
}

func TestSetHiddenExcludesFromDefaultListing(t *testing.T) {
	svc, _, ctx := unlockedService(t)

	phrase, err := svc.GenerateMnemonic(12)
	require.NoError(t, err)
	acct, err := svc.ConfirmNewMnemonic(ctx, "eip155", testPassword, phrase)
	require.NoError(t, err)

	require.NoError(t, svc.SetHidden(ctx, testPassword, acct.ID, true))

	assert.Empty(t, svc.ListAccounts(false))
	assert.Len(t, svc.ListAccounts(true), 1)
}

func TestRemovePrivateKeyKeyringRemovesAccount(t *testing.T) {
	svc, _, ctx := unlockedService(t)

	key := "0x000000000000000000000000000000000000000000000000000000000000000b"
	acct, err := svc.ImportPrivateKey(ctx, "eip155", testPassword, key)
	require.NoError(t, err)

	require.NoError(t, svc.RemovePrivateKeyKeyring(ctx, testPassword, acct.KeyringID))
	assert.Empty(t, svc.ListAccounts(true))
}

func TestRemoveHDKeyringFailsWithRemainingAccounts(t *testing.T) {
	svc, _, ctx := unlockedService(t)

	phrase, err := svc.GenerateMnemonic(12)
	require.NoError(t, err)
	acct, err := svc.ConfirmNewMnemonic(ctx, "eip155", testPassword, phrase)
	require.NoError(t, err)

	err = svc.RemoveHDKeyring(ctx, testPassword, acct.KeyringID)
	require.Error(t, err)
	assert.True(t, walleterrors.Is(err, walleterrors.ReasonInvalidRequest))
}

func TestRemoveHDKeyringSucceedsWhenEmpty(t *testing.T) {
	svc, _, ctx := unlockedService(t)

	phrase, err := svc.GenerateMnemonic(12)
	require.NoError(t, err)
	acct, err := svc.ConfirmNewMnemonic(ctx, "eip155", testPassword, phrase)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveAccount(ctx, testPassword, acct.ID))
	require.NoError(t, svc.RemoveHDKeyring(ctx, testPassword, acct.KeyringID))
}

func TestSignPersonalMessageRoutesToOwningAdapter(t *testing.T) {
	svc, _, ctx := unlockedService(t)

	key := "0x000000000000000000000000000000000000000000000000000000000000000c"
	acct, err := svc.ImportPrivateKey(ctx, "eip155", testPassword, key)
	require.NoError(t, err)

	sig, err := svc.SignPersonalMessage(acct.Address, []byte("hello"))
	require.NoError(t, err)
	assert.Len(t, sig, 65)
}

func TestSignPersonalMessageFailsForUnknownAddress(t *testing.T) {
	svc, _, _ := unlockedService(t)

	_, err := svc.SignPersonalMessage("0xdoesnotexist", []byte("hello"))
	require.Error(t, err)
	assert.True(t, walleterrors.Is(err, walleterrors.ReasonAccountNotFound))
}

func TestExportMnemonicRequiresCorrectPassword(t *testing.T) {
	svc, _, ctx := unlockedService(t)

	phrase, err := svc.GenerateMnemonic(12)
	require.NoError(t, err)
	acct, err := svc.ConfirmNewMnemonic(ctx, "eip155", testPassword, phrase)
	require.NoError(t, err)

	_, err = svc.ExportMnemonic("wrong password", acct.KeyringID)
	require.Error(t, err)

	exported, err := svc.ExportMnemonic(testPassword, acct.KeyringID)
	require.NoError(t, err)
	assert.Equal(t, phrase, string(exported))
}

func TestExportPrivateKeyRequiresCorrectPassword(t *testing.T) {
	svc, _, ctx := unlockedService(t)

	key := "0x000000000000000000000000000000000000000000000000000000000000000d"
	acct, err := svc.ImportPrivateKey(ctx, "eip155", testPassword, key)
	require.NoError(t, err)

	_, err = svc.ExportPrivateKey("wrong password", acct.KeyringID)
	require.Error(t, err)

	exported, err := svc.ExportPrivateKey(testPassword, acct.KeyringID)
	require.NoError(t, err)
	assert.Equal(t, key, string(exported))
}

func TestLoadOnUnlockRoundTripsPersistedState(t *testing.T) {
	bus := messenger.New()
	v := vault.New(1)
	session := unlocksession.New(v, bus)
	store := memstore.New()

	svc := NewService(session, store, bus)
	svc.RegisterAdapter(evmadapter.New())

	_, err := v.Initialize(testPassword)
	require.NoError(t, err)
	_, err = session.Unlock(testPassword)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.LoadOnUnlock(ctx))

	phrase, err := svc.GenerateMnemonic(12)
	require.NoError(t, err)
	acct, err := svc.ConfirmNewMnemonic(ctx, "eip155", testPassword, phrase)
	require.NoError(t, err)

	session.Lock(unlocksession.ReasonManual)
	_, err = session.Unlock(testPassword)
	require.NoError(t, err)

	reloaded := NewService(session, store, bus)
	reloaded.RegisterAdapter(evmadapter.New())
	require.NoError(t, reloaded.LoadOnUnlock(ctx))

	accounts := reloaded.ListAccounts(false)
	require.Len(t, accounts, 1)
	assert.Equal(t, acct.Address, accounts[0].Address)

	exported, err := reloaded.ExportMnemonic(testPassword, acct.KeyringID)
	require.NoError(t, err)
	assert.Equal(t, phrase, string(exported))
}
