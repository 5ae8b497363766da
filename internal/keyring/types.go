// Package keyring implements §4.3 KeyringService: a registry of
// namespace adapters (address codec + hd/private-key factories) backing
// HD and imported private-key keyrings, persisted as a single JSON
// payload the vault reseals on every mutation.
//
// Grounded on tee/keys/manager.go (DeriveKey/Sign/Verify/GetAddress per
// chain type, Zero()), generalized from a single P-256 HSM-style manager
// to a pluggable namespace-adapter registry, since spec.md §4.3 requires
// multiple concurrently-registered chain namespaces rather than one
// fixed curve.
package keyring

import "time"

// KeyringKind distinguishes how a keyring's signing material was
// obtained.
type KeyringKind string

const (
	KindHD         KeyringKind = "hd"
	KindPrivateKey KeyringKind = "privateKey"
)

// KeyringMeta is the persisted, non-secret description of one keyring.
// The secret material (mnemonic or private key) lives only inside the
// vault-sealed payload, never in KeyringMeta itself.
type KeyringMeta struct {
	ID           string      `json:"id"`
	Namespace    string      `json:"namespace"`
	Kind         KeyringKind `json:"kind"`
	NextIndex    int         `json:"nextIndex"`
	WordCount    int         `json:"wordCount,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// AccountRecord is one derived (HD) or imported (private-key) account.
type AccountRecord struct {
	ID         string    `json:"id"`
	KeyringID  string    `json:"keyringId"`
	Namespace  string    `json:"namespace"`
	Address    string    `json:"address"`
	Index      int       `json:"index,omitempty"`
	Hidden     bool      `json:"hidden"`
	Label      string    `json:"label,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// secretKeyring is the in-memory-only secret payload for one keyring,
// part of the vault-sealed JSON blob. Never persisted through the
// storage port directly.
type secretKeyring struct {
	ID         string `json:"id"`
	Namespace  string `json:"namespace"`
	Kind       string `json:"kind"`
	Mnemonic   string `json:"mnemonic,omitempty"`
	PrivateKey string `json:"privateKey,omitempty"`
}

// vaultPayload is the full secret blob the vault seals: every keyring's
// secret material, keyed by keyring ID.
type vaultPayload struct {
	Keyrings []secretKeyring `json:"keyrings"`
}

// NamespaceAdapter is implemented once per supported chain namespace
// (e.g. "eip155" for EVM chains). KeyringService never touches raw key
// material directly outside of an adapter call.
type NamespaceAdapter interface {
	// Namespace returns the CAIP-2-shaped namespace string this adapter
	// serves, e.g. "eip155".
	Namespace() string

	// DeriveHDAddress derives the address at index from mnemonic,
	// without retaining any key material beyond the call.
	DeriveHDAddress(mnemonic string, index int) (string, error)

	// AddressFromPrivateKey derives the address for an imported private
	// key, validating its format.
	AddressFromPrivateKey(privateKeyHex string) (string, error)

	// SignPersonalMessage signs message on behalf of address, given
	// either the owning mnemonic+index or a raw private key (exactly one
	// of mnemonic/privateKeyHex is non-empty).
	SignPersonalMessage(mnemonic string, index int, privateKeyHex string, message []byte) ([]byte, error)

	// SignTypedData signs a typed-data digest already hashed by the
	// caller (EIP-712 style), analogous to SignPersonalMessage.
	SignTypedData(mnemonic string, index int, privateKeyHex string, digest []byte) ([]byte, error)
}
