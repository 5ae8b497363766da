package transactions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEVMBuildDraftNormalizesAddresses(t *testing.T) {
	a := NewEVMAdapter(nil)
	raw, err := a.BuildDraft(context.Background(), DraftRequest{From: "0xABC", To: "0xDEF", Value: "0x1", ChainRef: "eip155:1"})
	require.NoError(t, err)

	var draft evmDraft
	require.NoError(t, json.Unmarshal(raw, &draft))
	assert.Equal(t, "0xabc", draft.From)
	assert.Equal(t, "0xdef", draft.To)
}

func TestEVMBuildDraftRejectsMissingFields(t *testing.T) {
	a := NewEVMAdapter(nil)
	_, err := a.BuildDraft(context.Background(), DraftRequest{ChainRef: "eip155:1"})
	assert.Error(t, err)
}

func TestEVMSignTransactionProducesHashAndSignature(t *testing.T) {
	a := NewEVMAdapter(nil)
	draft, err := a.BuildDraft(context.Background(), DraftRequest{From: "0xabc", To: "0xdef", Value: "0x1", ChainRef: "eip155:1"})
	require.NoError(t, err)

	signedTx, txHash, err := a.SignTransaction(context.Background(), draft, fakeSigner{})
	require.NoError(t, err)
	assert.NotEmpty(t, txHash)

	var envelope evmSignedEnvelope
	require.NoError(t, json.Unmarshal(signedTx, &envelope))
	assert.Equal(t, txHash, envelope.TxHash)
	assert.NotEmpty(t, envelope.Signature)
}

func TestEVMSignTransactionIsDeterministic(t *testing.T) {
	a := NewEVMAdapter(nil)
	draft, err := a.BuildDraft(context.Background(), DraftRequest{From: "0xabc", To: "0xdef", Value: "0x1", ChainRef: "eip155:1"})
	require.NoError(t, err)

	_, hash1, err := a.SignTransaction(context.Background(), draft, fakeSigner{})
	require.NoError(t, err)
	_, hash2, err := a.SignTransaction(context.Background(), draft, fakeSigner{})
	require.NoError(t, err)
	assert.Equal(t, hash1, hash2)
}

func TestEVMBroadcastTransactionFallsBackToLocalHashOnRpcError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewEVMAdapter(srv.Client())
	draft, err := a.BuildDraft(context.Background(), DraftRequest{From: "0xabc", To: "0xdef", Value: "0x1", ChainRef: "eip155:1"})
	require.NoError(t, err)
	signedTx, txHash, err := a.SignTransaction(context.Background(), draft, fakeSigner{})
	require.NoError(t, err)

	got, err := a.BroadcastTransaction(context.Background(), srv.URL, signedTx)
	require.NoError(t, err)
	assert.Equal(t, txHash, got)
}

func TestEVMBroadcastTransactionUsesNodeReturnedHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"1","result":"0xnodehash"}`))
	}))
	defer srv.Close()

	a := NewEVMAdapter(srv.Client())
	draft, err := a.BuildDraft(context.Background(), DraftRequest{From: "0xabc", To: "0xdef", Value: "0x1", ChainRef: "eip155:1"})
	require.NoError(t, err)
	signedTx, _, err := a.SignTransaction(context.Background(), draft, fakeSigner{})
	require.NoError(t, err)

	got, err := a.BroadcastTransaction(context.Background(), srv.URL, signedTx)
	require.NoError(t, err)
	assert.Equal(t, "0xnodehash", got)
}

func TestEVMFetchReceiptPendingWhenNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"1","result":null}`))
	}))
	defer srv.Close()

	a := NewEVMAdapter(srv.Client())
	status, err := a.FetchReceipt(context.Background(), srv.URL, "0xhash")
	require.NoError(t, err)
	assert.Equal(t, ReceiptPending, status)
}

func TestEVMFetchReceiptConfirmedAndReverted(t *testing.T) {
	for _, tc := range []struct {
		status string
		want   ReceiptStatus
	}{
		{status: "0x1", want: ReceiptConfirmed},
		{status: "0x0", want: ReceiptReverted},
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"1","result":{"status":"` + tc.status + `"}}`))
		}))

		a := NewEVMAdapter(srv.Client())
		got, err := a.FetchReceipt(context.Background(), srv.URL, "0xhash")
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
		srv.Close()
	}
}

func TestEVMFetchReceiptPropagatesRpcError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"1","error":{"code":-32000,"message":"not found"}}`))
	}))
	defer srv.Close()

	a := NewEVMAdapter(srv.Client())
	_, err := a.FetchReceipt(context.Background(), srv.URL, "0xhash")
	assert.Error(t, err)
}

func TestEVMDetectReplacementAlwaysFalse(t *testing.T) {
	a := NewEVMAdapter(nil)
	_, ok, err := a.DetectReplacement(context.Background(), "http://rpc", "0xhash")
	require.NoError(t, err)
	assert.False(t, ok)
}
