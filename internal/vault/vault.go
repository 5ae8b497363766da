// Package vault implements the password-sealed secret store of spec.md
// §4.1: PBKDF2-SHA256 key derivation over a random salt, AES-GCM seal/
// unseal of a single in-memory secret blob, with a state machine
// (Uninitialised -> Unlocked <-> Locked) and explicit zeroisation on lock.
//
// Grounded on tee/enclave/runtime.go (AES-GCM Seal/Unseal, ZeroBytes) and
// tee/vault/vault.go (secret-never-escapes-uncopied discipline), extended
// with password-based derivation and lock/reseal semantics modelled on
// _examples/threefoldtecharchive-rivine/modules/wallet/encrypt.go
// (checkMasterKey, managedUnlock, wipeSecrets).
package vault

import (
	"encoding/base64"
	"sync"
	"time"

	"github.com/walletd/core/internal/walleterrors"
)

// Ciphertext is the on-disk shape of an initialised vault, persisted via
// the storage port under storage.NamespaceVault (spec.md §6).
type Ciphertext struct {
	Version    int    `json:"version"`
	Algorithm  string `json:"algorithm"`
	Salt       string `json:"salt"`
	Iterations int    `json:"iterations"`
	IV         string `json:"iv"`
	Cipher     string `json:"cipher"`
	CreatedAt  int64  `json:"createdAt"`
}

func (c *Ciphertext) saltBytes() ([]byte, error)   { return base64.StdEncoding.DecodeString(c.Salt) }
func (c *Ciphertext) ivBytes() ([]byte, error)     { return base64.StdEncoding.DecodeString(c.IV) }
func (c *Ciphertext) cipherBytes() ([]byte, error) { return base64.StdEncoding.DecodeString(c.Cipher) }

// state is the vault's lifecycle per spec.md §4.1.
type state int

const (
	stateUninitialised state = iota
	stateLocked
	stateUnlocked
)

// Vault is the password-sealed secret store. All exported methods are
// safe for concurrent use; mutation is serialized by mu, matching the
// "storage ports are single-writer" discipline of spec.md §5.
type Vault struct {
	mu sync.Mutex

	state state

	ciphertext *Ciphertext
	iterations int

	derivedKey []byte
	secret     *Secret
}

// New constructs an uninitialised Vault. iterations, if zero, defaults to
// DefaultIterations.
func New(iterations int) *Vault {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Vault{state: stateUninitialised, iterations: iterations}
}

// Restore rehydrates a Vault from a persisted Ciphertext (cold start,
// recovered by the caller from the storage.NamespaceVault namespace). The
// vault starts Locked.
func Restore(ciphertext *Ciphertext) *Vault {
	iterations := ciphertext.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Vault{state: stateLocked, ciphertext: ciphertext, iterations: iterations}
}

// Initialized reports whether a ciphertext exists (Locked or Unlocked).
func (v *Vault) Initialized() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state != stateUninitialised
}

// Unlocked reports the current lock state.
func (v *Vault) Unlocked() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state == stateUnlocked
}

// Initialize generates a random 32-byte secret and 16-byte salt, derives a
// key via PBKDF2-SHA256, AES-GCM-encrypts the secret, and returns the
// resulting ciphertext. Fails with AlreadyInitialized if called twice.
// Side effect: the vault enters Unlocked state holding the new secret.
func (v *Vault) Initialize(password string) (*Ciphertext, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != stateUninitialised {
		return nil, walleterrors.New(walleterrors.ReasonAlreadyInitialized, "vault already initialised")
	}

	salt, err := randomBytes(saltLen)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.ReasonInternal, err, "generate salt")
	}
	secret, err := randomBytes(32)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.ReasonInternal, err, "generate secret")
	}

	key := deriveKey(password, salt, v.iterations)
	iv, cipherBytes, err := sealBytes(key, secret)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.ReasonInternal, err, "seal secret")
	}

	ct := &Ciphertext{
		Version:    1,
		Algorithm:  algorithmPBKDF2SHA256,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Iterations: v.iterations,
		IV:         base64.StdEncoding.EncodeToString(iv),
		Cipher:     base64.StdEncoding.EncodeToString(cipherBytes),
		CreatedAt:  time.Now().UnixMilli(),
	}

	v.ciphertext = ct
	v.derivedKey = key
	v.secret = NewSecret(secret)
	v.state = stateUnlocked

	return cloneCiphertext(ct), nil
}

// Unlock re-derives the key from password and the stored (or supplied)
// ciphertext, AES-GCM-decrypts the secret, and enters Unlocked state.
// Fails InvalidPassword on auth-tag failure; on ANY decryption failure the
// session is reset to Locked, per spec.md §4.1.
func (v *Vault) Unlock(password string, ciphertext *Ciphertext) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ct := ciphertext
	if ct == nil {
		ct = v.ciphertext
	}
	if ct == nil {
		return nil, walleterrors.New(walleterrors.ReasonNotInitialized, "vault has not been initialised")
	}

	salt, err := ct.saltBytes()
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.ReasonInvalidCiphertext, err, "decode salt")
	}
	iv, err := ct.ivBytes()
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.ReasonInvalidCiphertext, err, "decode iv")
	}
	cipherBytes, err := ct.cipherBytes()
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.ReasonInvalidCiphertext, err, "decode cipher")
	}

	iterations := ct.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	key := deriveKey(password, salt, iterations)
	secret, err := unsealBytes(key, iv, cipherBytes)
	if err != nil {
		v.resetToLocked()
		return nil, walleterrors.New(walleterrors.ReasonInvalidPassword, "incorrect password")
	}

	v.ciphertext = ct
	v.iterations = iterations
	v.derivedKey = key
	v.secret = NewSecret(secret)
	v.state = stateUnlocked

	return v.secret.Copy(), nil
}

// resetToLocked zeroes any in-memory key material and reverts to Locked
// (or Uninitialised, if no ciphertext has ever existed). Must be called
// with mu held.
func (v *Vault) resetToLocked() {
	ZeroBytes(v.derivedKey)
	v.derivedKey = nil
	v.secret.Zero()
	v.secret = nil
	if v.ciphertext != nil {
		v.state = stateLocked
	} else {
		v.state = stateUninitialised
	}
}

// Lock zeroes the derived key and secret, retaining the ciphertext.
func (v *Vault) Lock() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resetToLocked()
}

// VerifyPassword re-derives the key and attempts decryption without
// mutating session state, per spec.md §4.1.
func (v *Vault) VerifyPassword(password string) error {
	v.mu.Lock()
	ct := v.ciphertext
	v.mu.Unlock()

	if ct == nil {
		return walleterrors.New(walleterrors.ReasonNotInitialized, "vault has not been initialised")
	}

	salt, err := ct.saltBytes()
	if err != nil {
		return walleterrors.Wrap(walleterrors.ReasonInvalidCiphertext, err, "decode salt")
	}
	iv, err := ct.ivBytes()
	if err != nil {
		return walleterrors.Wrap(walleterrors.ReasonInvalidCiphertext, err, "decode iv")
	}
	cipherBytes, err := ct.cipherBytes()
	if err != nil {
		return walleterrors.Wrap(walleterrors.ReasonInvalidCiphertext, err, "decode cipher")
	}
	iterations := ct.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	key := deriveKey(password, salt, iterations)
	plaintext, err := unsealBytes(key, iv, cipherBytes)
	if err != nil {
		return walleterrors.New(walleterrors.ReasonInvalidPassword, "incorrect password")
	}
	ZeroBytes(plaintext)
	ZeroBytes(key)
	return nil
}

// ExportKey returns a copy of the current secret. Fails Locked otherwise.
func (v *Vault) ExportKey() ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != stateUnlocked {
		return nil, walleterrors.New(walleterrors.ReasonLocked, "vault is locked")
	}
	return v.secret.Copy(), nil
}

// Seal rewrites the ciphertext for secret under an explicitly supplied
// password (used when the vault's secret payload is extended by new
// keyring material and the caller hasn't necessarily unlocked via this
// exact Vault instance, e.g. during Initialize-adjacent flows).
func (v *Vault) Seal(password string, secret []byte) (*Ciphertext, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	salt, iterations := saltLen, v.iterations
	var saltBytes []byte
	var err error
	if v.ciphertext != nil {
		saltBytes, err = v.ciphertext.saltBytes()
		if err != nil {
			return nil, walleterrors.Wrap(walleterrors.ReasonInvalidCiphertext, err, "decode salt")
		}
		iterations = v.ciphertext.Iterations
	} else {
		saltBytes, err = randomBytes(salt)
		if err != nil {
			return nil, walleterrors.Wrap(walleterrors.ReasonInternal, err, "generate salt")
		}
	}

	key := deriveKey(password, saltBytes, iterations)
	iv, cipherBytes, err := sealBytes(key, secret)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.ReasonInternal, err, "seal secret")
	}

	createdAt := time.Now().UnixMilli()
	if v.ciphertext != nil {
		createdAt = v.ciphertext.CreatedAt
	}

	ct := &Ciphertext{
		Version:    1,
		Algorithm:  algorithmPBKDF2SHA256,
		Salt:       base64.StdEncoding.EncodeToString(saltBytes),
		Iterations: iterations,
		IV:         base64.StdEncoding.EncodeToString(iv),
		Cipher:     base64.StdEncoding.EncodeToString(cipherBytes),
		CreatedAt:  createdAt,
	}

	v.ciphertext = ct
	v.iterations = iterations
	v.derivedKey = key
	v.secret = NewSecret(append([]byte(nil), secret...))

	return cloneCiphertext(ct), nil
}

// Reseal rewrites the ciphertext with a new random IV, re-using the
// existing (salt, iterations) and derived key. Requires the vault to be
// Unlocked. Per spec.md §8, reseal(secret) followed by unlock(password, _)
// with the same password must still succeed.
func (v *Vault) Reseal(secret []byte) (*Ciphertext, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != stateUnlocked {
		return nil, walleterrors.New(walleterrors.ReasonLocked, "vault is locked")
	}

	iv, cipherBytes, err := sealBytes(v.derivedKey, secret)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.ReasonInternal, err, "seal secret")
	}

	ct := &Ciphertext{
		Version:    v.ciphertext.Version,
		Algorithm:  v.ciphertext.Algorithm,
		Salt:       v.ciphertext.Salt,
		Iterations: v.ciphertext.Iterations,
		IV:         base64.StdEncoding.EncodeToString(iv),
		Cipher:     base64.StdEncoding.EncodeToString(cipherBytes),
		CreatedAt:  v.ciphertext.CreatedAt,
	}
	v.ciphertext = ct
	v.secret.Zero()
	v.secret = NewSecret(append([]byte(nil), secret...))

	return cloneCiphertext(ct), nil
}

// Ciphertext returns a copy of the currently stored ciphertext, or nil if
// the vault has never been initialised.
func (v *Vault) Ciphertext() *Ciphertext {
	v.mu.Lock()
	defer v.mu.Unlock()
	return cloneCiphertext(v.ciphertext)
}

func cloneCiphertext(ct *Ciphertext) *Ciphertext {
	if ct == nil {
		return nil
	}
	cp := *ct
	return &cp
}
