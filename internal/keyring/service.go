package keyring

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/walletd/core/internal/keyring/mnemonic"
	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/storage"
	"github.com/walletd/core/internal/unlocksession"
	"github.com/walletd/core/internal/vault"
	"github.com/walletd/core/internal/walleterrors"
)

// Service is the §4.3 KeyringService: a registry of NamespaceAdapters
// backing an in-memory projection of keyrings and accounts, sealed at
// rest through the vault.
type Service struct {
	mu sync.Mutex

	adapters map[string]NamespaceAdapter
	session  *unlocksession.Session
	store    storage.Store
	bus      *messenger.Bus

	metas    map[string]*KeyringMeta
	accounts map[string]*AccountRecord
	secrets  map[string]secretKeyring // keyringID -> secret, only while unlocked
	loaded   bool
}

// NewService constructs a Service with no adapters registered; call
// RegisterAdapter for each supported namespace before use.
func NewService(session *unlocksession.Session, store storage.Store, bus *messenger.Bus) *Service {
	return &Service{
		adapters: make(map[string]NamespaceAdapter),
		session:  session,
		store:    store,
		bus:      bus,
		metas:    make(map[string]*KeyringMeta),
		accounts: make(map[string]*AccountRecord),
		secrets:  make(map[string]secretKeyring),
	}
}

// RegisterAdapter adds support for a chain namespace.
func (s *Service) RegisterAdapter(a NamespaceAdapter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adapters[a.Namespace()] = a
}

func (s *Service) adapterFor(namespace string) (NamespaceAdapter, error) {
	a, ok := s.adapters[namespace]
	if !ok {
		return nil, walleterrors.New(walleterrors.ReasonNotCompatible, "no adapter registered for namespace").
			WithDetails("namespace", namespace)
	}
	return a, nil
}

// LoadOnUnlock reads every persisted KeyringMeta/AccountRecord from the
// storage port and the secret payload from the vault, populating the
// in-memory projection. Call once after a successful unlock.
func (s *Service) LoadOnUnlock(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	metaRecords, err := s.store.List(ctx, storage.NamespaceKeyring)
	if err != nil {
		return err
	}
	s.metas = make(map[string]*KeyringMeta, len(metaRecords))
	for _, rec := range metaRecords {
		var meta KeyringMeta
		if err := json.Unmarshal(rec.Value, &meta); err != nil {
			return walleterrors.Wrap(walleterrors.ReasonInternal, err, "decode keyring meta")
		}
		m := meta
		s.metas[m.ID] = &m
	}

	acctRecords, err := s.store.List(ctx, storage.NamespaceAccounts)
	if err != nil {
		return err
	}
	s.accounts = make(map[string]*AccountRecord, len(acctRecords))
	for _, rec := range acctRecords {
		var acct AccountRecord
		if err := json.Unmarshal(rec.Value, &acct); err != nil {
			return walleterrors.Wrap(walleterrors.ReasonInternal, err, "decode account record")
		}
		a := acct
		s.accounts[a.ID] = &a
	}

	secretBytes, err := s.exportVaultBytes()
	if err != nil {
		return err
	}
	// A freshly initialised vault's secret is still the random bytes
	// vault.Initialize generated, not yet a {"keyrings":[...]} payload;
	// that only happens after the first keyring mutation reseals it.
	// Treat anything that doesn't parse as JSON as "no keyrings yet"
	// rather than an error.
	s.secrets = make(map[string]secretKeyring)
	var payload vaultPayload
	if json.Unmarshal(secretBytes, &payload) == nil {
		for _, k := range payload.Keyrings {
			s.secrets[k.ID] = k
		}
	}

	s.loaded = true
	return nil
}

// GenerateMnemonic returns a new BIP-39-shaped mnemonic of the requested
// word count, without creating a keyring.
func (s *Service) GenerateMnemonic(words int) (string, error) {
	phrase, err := mnemonic.Generate(words)
	if err != nil {
		return "", walleterrors.Wrap(walleterrors.ReasonInvalidMnemonic, err, "")
	}
	return phrase, nil
}

// ConfirmNewMnemonic registers an HD keyring for a freshly generated
// mnemonic the caller has already had the user confirm, and derives
// account index 0. Rejects duplicates against existing HD keyrings of
// the same namespace by comparing the address at index 0.
func (s *Service) ConfirmNewMnemonic(ctx context.Context, namespace, password, mnemonicPhrase string) (*AccountRecord, error) {
	return s.importMnemonicLocked(ctx, namespace, password, mnemonicPhrase)
}

// ImportMnemonic imports an externally-supplied mnemonic as a new HD
// keyring. Same duplicate-rejection rule as ConfirmNewMnemonic.
func (s *Service) ImportMnemonic(ctx context.Context, namespace, password, mnemonicPhrase string) (*AccountRecord, error) {
	if !mnemonic.Validate(mnemonicPhrase) {
		return nil, walleterrors.New(walleterrors.ReasonInvalidMnemonic, "mnemonic failed checksum validation")
	}
	return s.importMnemonicLocked(ctx, namespace, password, mnemonicPhrase)
}

func (s *Service) importMnemonicLocked(ctx context.Context, namespace, password, mnemonicPhrase string) (*AccountRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	adapter, err := s.adapterFor(namespace)
	if err != nil {
		return nil, err
	}

	firstAddress, err := adapter.DeriveHDAddress(mnemonicPhrase, 0)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.ReasonInvalidMnemonic, err, "derive address")
	}

	for _, meta := range s.metas {
		if meta.Namespace != namespace || meta.Kind != KindHD {
			continue
		}
		secret, ok := s.secrets[meta.ID]
		if !ok {
			continue
		}
		existingFirst, err := adapter.DeriveHDAddress(secret.Mnemonic, 0)
		if err == nil && existingFirst == firstAddress {
			return nil, walleterrors.New(walleterrors.ReasonDuplicateAccount, "mnemonic already imported for this namespace")
		}
	}

	meta := &KeyringMeta{
		ID:        uuid.NewString(),
		Namespace: namespace,
		Kind:      KindHD,
		NextIndex: 0,
		CreatedAt: time.Now().UTC(),
	}
	s.secrets[meta.ID] = secretKeyring{ID: meta.ID, Namespace: namespace, Kind: string(KindHD), Mnemonic: mnemonicPhrase}
	s.metas[meta.ID] = meta

	acct, err := s.deriveNextAccountLocked(meta, adapter)
	if err != nil {
		return nil, err
	}

	if err := s.persistLocked(ctx, password); err != nil {
		return nil, err
	}
	s.publishAccountsChanged()
	return acct, nil
}

// DeriveNextAccount derives the next monotonic-index account on the
// given HD keyring.
func (s *Service) DeriveNextAccount(ctx context.Context, password, keyringID string) (*AccountRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.metas[keyringID]
	if !ok || meta.Kind != KindHD {
		return nil, walleterrors.New(walleterrors.ReasonAccountNotFound, "keyring not found").WithDetails("keyringId", keyringID)
	}
	adapter, err := s.adapterFor(meta.Namespace)
	if err != nil {
		return nil, err
	}

	acct, err := s.deriveNextAccountLocked(meta, adapter)
	if err != nil {
		return nil, err
	}
	if err := s.persistLocked(ctx, password); err != nil {
		return nil, err
	}
	s.publishAccountsChanged()
	return acct, nil
}

func (s *Service) deriveNextAccountLocked(meta *KeyringMeta, adapter NamespaceAdapter) (*AccountRecord, error) {
	secret, ok := s.secrets[meta.ID]
	if !ok {
		return nil, walleterrors.New(walleterrors.ReasonSecretUnavailable, "keyring secret unavailable")
	}

	index := meta.NextIndex
	address, err := adapter.DeriveHDAddress(secret.Mnemonic, index)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.ReasonInvalidMnemonic, err, "derive account")
	}

	acct := &AccountRecord{
		ID:        uuid.NewString(),
		KeyringID: meta.ID,
		Namespace: meta.Namespace,
		Address:   address,
		Index:     index,
		CreatedAt: time.Now().UTC(),
	}
	s.accounts[acct.ID] = acct
	meta.NextIndex = index + 1
	return acct, nil
}

// ImportPrivateKey imports a private-key keyring. Rejects if the derived
// address already exists among any known account.
func (s *Service) ImportPrivateKey(ctx context.Context, namespace, password, privateKeyHex string) (*AccountRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	adapter, err := s.adapterFor(namespace)
	if err != nil {
		return nil, err
	}

	address, err := adapter.AddressFromPrivateKey(privateKeyHex)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.ReasonInvalidPrivateKey, err, "derive address")
	}

	for _, acct := range s.accounts {
		if acct.Namespace == namespace && acct.Address == address {
			return nil, walleterrors.New(walleterrors.ReasonDuplicateAccount, "address already imported")
		}
	}

	meta := &KeyringMeta{
		ID:        uuid.NewString(),
		Namespace: namespace,
		Kind:      KindPrivateKey,
		CreatedAt: time.Now().UTC(),
	}
	s.secrets[meta.ID] = secretKeyring{ID: meta.ID, Namespace: namespace, Kind: string(KindPrivateKey), PrivateKey: privateKeyHex}
	s.metas[meta.ID] = meta

	acct := &AccountRecord{
		ID:        uuid.NewString(),
		KeyringID: meta.ID,
		Namespace: namespace,
		Address:   address,
		CreatedAt: time.Now().UTC(),
	}
	s.accounts[acct.ID] = acct

	if err := s.persistLocked(ctx, password); err != nil {
		return nil, err
	}
	s.publishAccountsChanged()
	return acct, nil
}

// SetHidden hides or unhides an HD account. Hidden accounts remain in
// the keyring but are excluded from ListAccounts' default view.
func (s *Service) SetHidden(ctx context.Context, password, accountID string, hidden bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[accountID]
	if !ok {
		return walleterrors.New(walleterrors.ReasonAccountNotFound, "account not found").WithDetails("accountId", accountID)
	}
	acct.Hidden = hidden

	if err := s.persistLocked(ctx, password); err != nil {
		return err
	}
	s.publishAccountsChanged()
	return nil
}

// RemovePrivateKeyKeyring removes a private-key keyring and its account.
func (s *Service) RemovePrivateKeyKeyring(ctx context.Context, password, keyringID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.metas[keyringID]
	if !ok || meta.Kind != KindPrivateKey {
		return walleterrors.New(walleterrors.ReasonAccountNotFound, "private-key keyring not found").WithDetails("keyringId", keyringID)
	}

	for id, acct := range s.accounts {
		if acct.KeyringID == keyringID {
			delete(s.accounts, id)
		}
	}
	delete(s.secrets, keyringID)
	delete(s.metas, keyringID)

	if err := s.persistLocked(ctx, password); err != nil {
		return err
	}
	s.publishAccountsChanged()
	return nil
}

// RemoveHDKeyring removes an HD keyring, but only if every account it
// derived has already been removed.
func (s *Service) RemoveHDKeyring(ctx context.Context, password, keyringID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.metas[keyringID]
	if !ok || meta.Kind != KindHD {
		return walleterrors.New(walleterrors.ReasonAccountNotFound, "HD keyring not found").WithDetails("keyringId", keyringID)
	}

	for _, acct := range s.accounts {
		if acct.KeyringID == keyringID {
			return walleterrors.New(walleterrors.ReasonInvalidRequest, "cannot remove HD keyring with remaining derived accounts")
		}
	}

	delete(s.secrets, keyringID)
	delete(s.metas, keyringID)

	if err := s.persistLocked(ctx, password); err != nil {
		return err
	}
	s.publishAccountsChanged()
	return nil
}

// RemoveAccount removes a single derived (HD) or imported account. For
// HD accounts this only removes the projection entry; the keyring itself
// must be removed separately via RemoveHDKeyring once empty.
func (s *Service) RemoveAccount(ctx context.Context, password, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountID]; !ok {
		return walleterrors.New(walleterrors.ReasonAccountNotFound, "account not found").WithDetails("accountId", accountID)
	}
	delete(s.accounts, accountID)

	if err := s.persistLocked(ctx, password); err != nil {
		return err
	}
	s.publishAccountsChanged()
	return nil
}

// ListAccounts returns every account (hidden ones only when includeHidden
// is true), sorted by (namespace, address) for stable dedupe comparisons.
func (s *Service) ListAccounts(includeHidden bool) []AccountRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]AccountRecord, 0, len(s.accounts))
	for _, acct := range s.accounts {
		if acct.Hidden && !includeHidden {
			continue
		}
		result = append(result, *acct)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Namespace != result[j].Namespace {
			return result[i].Namespace < result[j].Namespace
		}
		return result[i].Address < result[j].Address
	})
	return result
}

// SignPersonalMessage locates the keyring owning address and signs
// message through its namespace adapter.
func (s *Service) SignPersonalMessage(address string, message []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signLocked(address, message, false)
}

// SignTypedData locates the keyring owning address and signs a
// pre-hashed typed-data digest through its namespace adapter.
func (s *Service) SignTypedData(address string, digest []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signLocked(address, digest, true)
}

// SignDigest implements transactions.Signer: namespace is accepted for
// interface compatibility but unused, since address alone identifies the
// owning keyring and its adapter.
func (s *Service) SignDigest(namespace, address string, digest []byte) ([]byte, error) {
	return s.SignTypedData(address, digest)
}

func (s *Service) signLocked(address string, payload []byte, typed bool) ([]byte, error) {
	acct, adapter, err := s.findAccountAndAdapterLocked(address)
	if err != nil {
		return nil, err
	}
	secret, ok := s.secrets[acct.KeyringID]
	if !ok {
		return nil, walleterrors.New(walleterrors.ReasonSecretUnavailable, "keyring secret unavailable")
	}

	if typed {
		return adapter.SignTypedData(secret.Mnemonic, acct.Index, secret.PrivateKey, payload)
	}
	return adapter.SignPersonalMessage(secret.Mnemonic, acct.Index, secret.PrivateKey, payload)
}

func (s *Service) findAccountAndAdapterLocked(address string) (*AccountRecord, NamespaceAdapter, error) {
	for _, acct := range s.accounts {
		if acct.Address == address {
			adapter, err := s.adapterFor(acct.Namespace)
			if err != nil {
				return nil, nil, err
			}
			return acct, adapter, nil
		}
	}
	return nil, nil, walleterrors.New(walleterrors.ReasonAccountNotFound, "no keyring owns this address").WithDetails("address", address)
}

// ExportMnemonic returns the mnemonic for keyringID after verifying
// password against the vault. Caller owns zeroising the returned bytes.
func (s *Service) ExportMnemonic(password, keyringID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.VerifyPassword(password); err != nil {
		return nil, err
	}
	secret, ok := s.secrets[keyringID]
	if !ok || secret.Kind != string(KindHD) {
		return nil, walleterrors.New(walleterrors.ReasonSecretUnavailable, "HD keyring not found").WithDetails("keyringId", keyringID)
	}
	return []byte(secret.Mnemonic), nil
}

// ExportPrivateKey returns the private key for keyringID after verifying
// password against the vault. Caller owns zeroising the returned bytes.
func (s *Service) ExportPrivateKey(password, keyringID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.VerifyPassword(password); err != nil {
		return nil, err
	}
	secret, ok := s.secrets[keyringID]
	if !ok || secret.Kind != string(KindPrivateKey) {
		return nil, walleterrors.New(walleterrors.ReasonSecretUnavailable, "private-key keyring not found").WithDetails("keyringId", keyringID)
	}
	return []byte(secret.PrivateKey), nil
}

// persistLocked derives the secret payload, hands it to the vault to
// reseal, and writes KeyringMeta/AccountRecords through the storage
// port. Must be called with mu held.
func (s *Service) persistLocked(ctx context.Context, password string) error {
	payload := vaultPayload{Keyrings: make([]secretKeyring, 0, len(s.secrets))}
	for _, secret := range s.secrets {
		payload.Keyrings = append(payload.Keyrings, secret)
	}
	sort.Slice(payload.Keyrings, func(i, j int) bool { return payload.Keyrings[i].ID < payload.Keyrings[j].ID })

	raw, err := json.Marshal(payload)
	if err != nil {
		return walleterrors.Wrap(walleterrors.ReasonInternal, err, "marshal vault payload")
	}

	if _, err := s.sealVault(password, raw); err != nil {
		return err
	}

	for id, meta := range s.metas {
		if _, err := storage.PutValue(ctx, s.store, storage.NamespaceKeyring, id, meta, nil); err != nil {
			return err
		}
	}
	for id, acct := range s.accounts {
		if _, err := storage.PutValue(ctx, s.store, storage.NamespaceAccounts, id, acct, nil); err != nil {
			return err
		}
	}
	return nil
}

// sealVault reseals the live vault session with raw if the session is
// already unlocked (the common case), falling back to Seal with an
// explicit password when no session is active yet (first-ever mutation).
func (s *Service) sealVault(password string, raw []byte) (*vault.Ciphertext, error) {
	if s.session.GetState().IsUnlocked {
		return s.rawVault().Reseal(raw)
	}
	return s.rawVault().Seal(password, raw)
}

// rawVault exposes the unlock session's underlying vault for reseal/seal
// calls. unlocksession.Session intentionally does not expose Reseal/Seal
// directly since ordinary callers should never bypass the timer/publish
// logic; KeyringService is the one caller allowed to extend the sealed
// payload.
func (s *Service) rawVault() *vault.Vault {
	return s.session.Vault()
}

func (s *Service) exportVaultBytes() ([]byte, error) {
	return s.rawVault().ExportKey()
}

func (s *Service) publishAccountsChanged() {
	s.bus.Publish(messenger.TopicAccountsChanged, s.ListAccounts(false))
}
