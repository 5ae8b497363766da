package uibridge

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/walletd/core/internal/obsmetrics"
	"github.com/walletd/core/internal/storage"
	"github.com/walletd/core/internal/unlocksession"
)

type unlockParams struct {
	Password string `json:"password"`
}

func methodSessionUnlock(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p unlockParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if _, err := b.deps.Session.Unlock(p.Password); err != nil {
		return nil, err
	}
	return buildSnapshot(b.deps), nil
}

func methodSessionLock(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	b.deps.Session.Lock(unlocksession.ReasonManual)
	obsmetrics.RecordSessionLock(string(unlocksession.ReasonManual))
	return buildSnapshot(b.deps), nil
}

type setAutoLockParams struct {
	Ms int64 `json:"ms"`
}

func methodSessionSetAutoLockDuration(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p setAutoLockParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	b.deps.Session.SetAutoLockDuration(p.Ms)
	return true, nil
}

func methodOnboardingStatus(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	v := b.deps.Session.Vault()
	return map[string]bool{"initialized": v.Initialized(), "unlocked": v.Unlocked()}, nil
}

func methodOnboardingInitializeVault(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p unlockParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	ct, err := b.deps.Session.Vault().Initialize(p.Password)
	if err != nil {
		return nil, err
	}
	if _, err := storage.PutValue(ctx, b.deps.Store, storage.NamespaceVault, "ciphertext", ct, nil); err != nil {
		return nil, err
	}
	// Initialize already leaves the vault unlocked; Unlock is called again
	// purely so the session's bookkeeping (lastUnlockedAt, auto-lock timer,
	// unlock:unlocked publish) runs the same way it does for every other
	// unlock.
	if _, err := b.deps.Session.Unlock(p.Password); err != nil {
		return nil, err
	}
	return buildSnapshot(b.deps), nil
}

type generateMnemonicParams struct {
	Words int `json:"words"`
}

func methodGenerateMnemonic(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	p := generateMnemonicParams{Words: 12}
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	phrase, err := b.keyring.GenerateMnemonic(p.Words)
	if err != nil {
		return nil, err
	}
	return map[string]string{"mnemonic": phrase}, nil
}

type mnemonicKeyringParams struct {
	Namespace string `json:"namespace"`
	Password  string `json:"password"`
	Mnemonic  string `json:"mnemonic"`
}

func methodConfirmNewMnemonic(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p mnemonicKeyringParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return b.keyring.ConfirmNewMnemonic(ctx, p.Namespace, p.Password, p.Mnemonic)
}

func methodImportMnemonic(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p mnemonicKeyringParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return b.keyring.ImportMnemonic(ctx, p.Namespace, p.Password, p.Mnemonic)
}

type importPrivateKeyParams struct {
	Namespace     string `json:"namespace"`
	Password      string `json:"password"`
	PrivateKeyHex string `json:"privateKeyHex"`
}

func methodImportPrivateKey(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p importPrivateKeyParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return b.keyring.ImportPrivateKey(ctx, p.Namespace, p.Password, p.PrivateKeyHex)
}

type keyringIDParams struct {
	Password  string `json:"password"`
	KeyringID string `json:"keyringId"`
}

func methodDeriveNextAccount(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p keyringIDParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return b.keyring.DeriveNextAccount(ctx, p.Password, p.KeyringID)
}

type setHiddenParams struct {
	Password  string `json:"password"`
	AccountID string `json:"accountId"`
	Hidden    bool   `json:"hidden"`
}

func methodSetHidden(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p setHiddenParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := b.keyring.SetHidden(ctx, p.Password, p.AccountID, p.Hidden); err != nil {
		return nil, err
	}
	return true, nil
}

type setLabelParams struct {
	AccountID string `json:"accountId"`
	Label     string `json:"label"`
}

func methodSetLabel(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p setLabelParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := b.deps.Accounts.SetLabel(ctx, p.AccountID, p.Label); err != nil {
		return nil, err
	}
	return true, nil
}

func methodRemoveAccount(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p struct {
		Password  string `json:"password"`
		AccountID string `json:"accountId"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := b.keyring.RemoveAccount(ctx, p.Password, p.AccountID); err != nil {
		return nil, err
	}
	return true, nil
}

func methodRemoveHDKeyring(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p keyringIDParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := b.keyring.RemoveHDKeyring(ctx, p.Password, p.KeyringID); err != nil {
		return nil, err
	}
	return true, nil
}

func methodRemovePrivateKeyKeyring(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p keyringIDParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := b.keyring.RemovePrivateKeyKeyring(ctx, p.Password, p.KeyringID); err != nil {
		return nil, err
	}
	return true, nil
}

// methodExportMnemonic verifies the password against the vault before
// exporting, per spec.md §4.7 "password-gated exports ... first call
// Vault.verifyPassword".
func methodExportMnemonic(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p keyringIDParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := b.deps.Session.VerifyPassword(p.Password); err != nil {
		return nil, err
	}
	phrase, err := b.keyring.ExportMnemonic(p.Password, p.KeyringID)
	if err != nil {
		return nil, err
	}
	defer zero(phrase)
	return map[string]string{"mnemonic": string(phrase)}, nil
}

func methodExportPrivateKey(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p keyringIDParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := b.deps.Session.VerifyPassword(p.Password); err != nil {
		return nil, err
	}
	key, err := b.keyring.ExportPrivateKey(p.Password, p.KeyringID)
	if err != nil {
		return nil, err
	}
	defer zero(key)
	return map[string]string{"privateKeyHex": hex.EncodeToString(key)}, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func methodSnapshotGet(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	return buildSnapshot(b.deps), nil
}

type switchActiveChainParams struct {
	ChainRef string `json:"chainRef"`
}

func methodNetworksSwitchActive(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p switchActiveChainParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := b.deps.ChainRegistry.SwitchActive(ctx, p.ChainRef); err != nil {
		return nil, err
	}
	return true, nil
}

type switchActiveAccountParams struct {
	AccountID string `json:"accountId"`
}

func methodAccountsSwitchActive(ctx context.Context, b *Bridge, raw json.RawMessage) (any, error) {
	var p switchActiveAccountParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := b.deps.Accounts.SetActive(ctx, p.AccountID); err != nil {
		return nil, err
	}
	return true, nil
}
