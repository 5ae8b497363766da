package transactions

import (
	"context"
	"encoding/json"
)

// ReceiptStatus is the outcome FetchReceipt reports for a broadcast
// transaction.
type ReceiptStatus int

const (
	// ReceiptPending means the transaction has not yet been mined.
	ReceiptPending ReceiptStatus = iota
	// ReceiptConfirmed means the transaction was mined successfully.
	ReceiptConfirmed
	// ReceiptReverted means the transaction was mined but reverted.
	ReceiptReverted
)

// DraftRequest carries the caller-supplied parameters for BuildDraft.
type DraftRequest struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Value    string          `json:"value"`
	Data     string          `json:"data,omitempty"`
	ChainRef string          `json:"chainRef"`
	Extra    json.RawMessage `json:"extra,omitempty"`
}

// Signer abstracts the keyring: SignDigest signs digest on behalf of
// address, returning a raw recoverable signature. Transactions never
// touches key material directly.
type Signer interface {
	SignDigest(namespace, address string, digest []byte) ([]byte, error)
}

// Adapter is implemented once per supported chain namespace, providing
// the chain-specific pieces of the transaction pipeline (spec.md §4.4
// "A TransactionAdapter per namespace provides buildDraft,
// signTransaction, broadcastTransaction, and optional fetchReceipt/
// detectReplacement").
type Adapter interface {
	Namespace() string

	// BuildDraft validates req and returns an opaque, namespace-specific
	// draft payload.
	BuildDraft(ctx context.Context, req DraftRequest) (json.RawMessage, error)

	// SignTransaction computes the draft's signing digest, obtains a
	// signature via signer, and returns the assembled signed transaction
	// plus its hash.
	SignTransaction(ctx context.Context, draft json.RawMessage, signer Signer) (signedTx []byte, txHash string, err error)

	// BroadcastTransaction submits signedTx to rpcURL and returns the
	// accepted transaction hash (normally identical to SignTransaction's
	// txHash).
	BroadcastTransaction(ctx context.Context, rpcURL string, signedTx []byte) (txHash string, err error)

	// FetchReceipt polls rpcURL for txHash's mining status. Adapters that
	// don't support polling may return ReceiptPending, nil forever (the
	// controller's attempt cap still applies).
	FetchReceipt(ctx context.Context, rpcURL string, txHash string) (ReceiptStatus, error)

	// DetectReplacement reports whether txHash was replaced (e.g. by a
	// higher-fee resubmission at the same nonce) and, if so, the
	// replacing hash.
	DetectReplacement(ctx context.Context, rpcURL string, txHash string) (replacedBy string, ok bool, err error)
}
