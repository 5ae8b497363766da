package transactions

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/storage"
	"github.com/walletd/core/internal/storage/memstore"
	"github.com/walletd/core/internal/walleterrors"
)

const testNamespace = "testchain"
const testChainRef = "testchain:1"
const testRPCURL = "http://rpc.example"

type fakeAdapter struct {
	signErr          error
	broadcastErr     error
	receipts         []ReceiptStatus
	receiptErr       error
	detectReplaced   bool
	detectReplacedBy string
}

func (a *fakeAdapter) Namespace() string { return testNamespace }

func (a *fakeAdapter) BuildDraft(ctx context.Context, req DraftRequest) (json.RawMessage, error) {
	return json.Marshal(req)
}

func (a *fakeAdapter) SignTransaction(ctx context.Context, draft json.RawMessage, signer Signer) ([]byte, string, error) {
	if a.signErr != nil {
		return nil, "", a.signErr
	}
	sig, err := signer.SignDigest(testNamespace, "0xabc", []byte("digest"))
	if err != nil {
		return nil, "", err
	}
	return sig, "0xhash", nil
}

func (a *fakeAdapter) BroadcastTransaction(ctx context.Context, rpcURL string, signedTx []byte) (string, error) {
	if a.broadcastErr != nil {
		return "", a.broadcastErr
	}
	return "0xhash", nil
}

func (a *fakeAdapter) FetchReceipt(ctx context.Context, rpcURL string, txHash string) (ReceiptStatus, error) {
	if a.receiptErr != nil {
		return ReceiptPending, a.receiptErr
	}
	if len(a.receipts) == 0 {
		return ReceiptPending, nil
	}
	next := a.receipts[0]
	a.receipts = a.receipts[1:]
	return next, nil
}

func (a *fakeAdapter) DetectReplacement(ctx context.Context, rpcURL string, txHash string) (string, bool, error) {
	return a.detectReplacedBy, a.detectReplaced, nil
}

type fakeSigner struct{}

func (fakeSigner) SignDigest(namespace, address string, digest []byte) ([]byte, error) {
	return []byte("signature"), nil
}

func newTestController(t *testing.T, adapter Adapter) (*Controller, context.Context) {
	t.Helper()
	store := memstore.New()
	bus := messenger.New()
	resolver := func(chainRef string) (string, error) { return testRPCURL, nil }
	log := logrus.New()
	log.SetOutput(io.Discard)
	c := New(store, bus, resolver, log.WithField("test", true))
	c.RegisterAdapter(adapter)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	return c, ctx
}

func draftReq() DraftRequest {
	return DraftRequest{From: "0xabc", To: "0xdef", Value: "0x1", ChainRef: testChainRef}
}

func TestCreateDraftStartsPending(t *testing.T) {
	c, ctx := newTestController(t, &fakeAdapter{})
	rec, err := c.CreateDraft(ctx, testNamespace, draftReq())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, rec.Status)
	assert.NotEmpty(t, rec.ID)
}

func TestCreateDraftFailsForUnknownNamespace(t *testing.T) {
	c, ctx := newTestController(t, &fakeAdapter{})
	_, err := c.CreateDraft(ctx, "unknown", draftReq())
	assert.Error(t, err)
}

func TestRejectPendingMovesToFailed(t *testing.T) {
	c, ctx := newTestController(t, &fakeAdapter{})
	rec, err := c.CreateDraft(ctx, testNamespace, draftReq())
	require.NoError(t, err)

	require.NoError(t, c.RejectPending(ctx, rec.ID, "user declined"))
	got := c.GetState()
	require.Len(t, got, 1)
	assert.Equal(t, StatusFailed, got[0].Status)
	assert.Equal(t, "user declined", got[0].Error)
}

func TestSignBeforeApproveIsRejected(t *testing.T) {
	c, ctx := newTestController(t, &fakeAdapter{})
	rec, err := c.CreateDraft(ctx, testNamespace, draftReq())
	require.NoError(t, err)

	err = c.Sign(ctx, rec.ID, fakeSigner{})
	require.Error(t, err)
	we := walleterrors.As(err)
	require.NotNil(t, we)
	assert.Equal(t, walleterrors.ReasonInvalidTransition, we.Reason)
}

func TestTransitionFailsOnTerminalRecord(t *testing.T) {
	c, ctx := newTestController(t, &fakeAdapter{})
	rec, err := c.CreateDraft(ctx, testNamespace, draftReq())
	require.NoError(t, err)
	require.NoError(t, c.RejectPending(ctx, rec.ID, "nope"))

	err = c.Approve(ctx, rec.ID)
	assert.Error(t, err)
}

func TestHappyPathReachesConfirmed(t *testing.T) {
	adapter := &fakeAdapter{receipts: []ReceiptStatus{ReceiptConfirmed}}
	c, ctx := newTestController(t, adapter)
	rec, err := c.CreateDraft(ctx, testNamespace, draftReq())
	require.NoError(t, err)

	require.NoError(t, c.Approve(ctx, rec.ID))
	require.NoError(t, c.Sign(ctx, rec.ID, fakeSigner{}))
	require.NoError(t, c.Broadcast(ctx, rec.ID))

	require.Eventually(t, func() bool {
		got := c.GetState()
		return len(got) == 1 && got[0].Status == StatusConfirmed
	}, 6*time.Second, 50*time.Millisecond)

	c.Shutdown()
}

func TestBroadcastFailureMarksFailed(t *testing.T) {
	adapter := &fakeAdapter{broadcastErr: walleterrors.New(walleterrors.ReasonInternal, "node down")}
	c, ctx := newTestController(t, adapter)
	rec, err := c.CreateDraft(ctx, testNamespace, draftReq())
	require.NoError(t, err)
	require.NoError(t, c.Approve(ctx, rec.ID))
	require.NoError(t, c.Sign(ctx, rec.ID, fakeSigner{}))

	err = c.Broadcast(ctx, rec.ID)
	assert.Error(t, err)

	got := c.GetState()
	require.Len(t, got, 1)
	assert.Equal(t, StatusFailed, got[0].Status)
}

func TestReplacementDetectedDuringPolling(t *testing.T) {
	adapter := &fakeAdapter{detectReplaced: true, detectReplacedBy: "0xnewhash"}
	c, ctx := newTestController(t, adapter)
	rec, err := c.CreateDraft(ctx, testNamespace, draftReq())
	require.NoError(t, err)
	require.NoError(t, c.Approve(ctx, rec.ID))
	require.NoError(t, c.Sign(ctx, rec.ID, fakeSigner{}))
	require.NoError(t, c.Broadcast(ctx, rec.ID))

	require.Eventually(t, func() bool {
		got := c.GetState()
		return len(got) == 1 && got[0].Status == StatusReplaced
	}, 6*time.Second, 50*time.Millisecond)

	c.Shutdown()
}

func TestResumePendingContinuesPollingBroadcastRecords(t *testing.T) {
	store := memstore.New()
	bus := messenger.New()
	resolver := func(chainRef string) (string, error) { return testRPCURL, nil }
	log := logrus.New()
	log.SetOutput(io.Discard)

	now := time.Unix(1_700_000_000, 0).UTC()
	rec := Record{
		ID: "resumed-1", Namespace: testNamespace, ChainRef: testChainRef,
		From: "0xabc", To: "0xdef", TxHash: "0xhash", Status: StatusBroadcast,
		CreatedAt: now, UpdatedAt: now,
	}
	_, err := storage.PutValue(context.Background(), store, storage.NamespaceTransactions, rec.ID, rec, nil)
	require.NoError(t, err)

	adapter := &fakeAdapter{receipts: []ReceiptStatus{ReceiptConfirmed}}
	c := New(store, bus, resolver, log.WithField("test", true))
	c.RegisterAdapter(adapter)
	require.NoError(t, c.Load(context.Background()))
	c.ResumePending(context.Background(), fakeSigner{})

	require.Eventually(t, func() bool {
		got := c.GetState()
		return len(got) == 1 && got[0].Status == StatusConfirmed
	}, 6*time.Second, 50*time.Millisecond)

	c.Shutdown()
}
