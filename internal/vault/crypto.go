package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLen = 16
	ivLen   = 12
	keyLen  = 32

	// DefaultIterations is the PBKDF2-SHA256 round count used for new
	// vaults, per spec.md §4.1 ("≥600 000 iterations, configurable").
	DefaultIterations = 600_000

	algorithmPBKDF2SHA256 = "pbkdf2-sha256"
)

// deriveKey runs PBKDF2-SHA256 over password with salt and iterations,
// grounded on tee/enclave/runtime.go's AES-GCM Seal/Unseal, extended with
// password-based key derivation per spec.md §4.1.
func deriveKey(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha256.New)
}

// sealBytes AES-GCM-encrypts plaintext under key with a fresh random IV.
func sealBytes(key, plaintext []byte) (iv, cipherOut []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("create gcm: %w", err)
	}

	iv = make([]byte, ivLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, fmt.Errorf("generate iv: %w", err)
	}

	cipherOut = gcm.Seal(nil, iv, plaintext, nil)
	return iv, cipherOut, nil
}

// unsealBytes AES-GCM-decrypts cipherIn under key and iv. An auth-tag
// mismatch (wrong key, i.e. wrong password) returns a generic error; the
// caller maps that to ReasonInvalidPassword.
func unsealBytes(key, iv, cipherIn []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	if len(iv) != gcm.NonceSize() {
		return nil, fmt.Errorf("invalid iv length")
	}
	plaintext, err := gcm.Open(nil, iv, cipherIn, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("generate random bytes: %w", err)
	}
	return b, nil
}
