// Package transactions implements the §4.4 transaction controller: a
// forced-ordering state machine (pending -> approved -> signed ->
// broadcast -> {confirmed|failed|replaced}) with per-namespace adapters
// and exponential-backoff receipt polling.
//
// Grounded on internal/app/jam/coordinator.go's job-state-machine shape
// (status transitions guarded by a whitelist, a background poll loop per
// in-flight item), generalized from job completion to chain receipts.
package transactions

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/storage"
	"github.com/walletd/core/internal/walleterrors"
)

// Status is one state in the transaction's forced-ordering lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusSigned     Status = "signed"
	StatusBroadcast  Status = "broadcast"
	StatusConfirmed  Status = "confirmed"
	StatusFailed     Status = "failed"
	StatusReplaced   Status = "replaced"
)

// terminal reports whether status accepts no further transitions.
func terminal(s Status) bool { return s == StatusFailed || s == StatusReplaced || s == StatusConfirmed }

// allowedTransitions whitelists from->to status changes. A mis-ordered
// report is rejected per spec.md §5.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusApproved: true, StatusFailed: true},
	StatusApproved:  {StatusSigned: true, StatusFailed: true},
	StatusSigned:    {StatusBroadcast: true, StatusFailed: true},
	StatusBroadcast: {StatusConfirmed: true, StatusFailed: true, StatusReplaced: true},
}

// Record is one persisted transaction.
type Record struct {
	ID        string          `json:"id"`
	Namespace string          `json:"namespace"`
	ChainRef  string          `json:"chainRef"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Draft     json.RawMessage `json:"draft,omitempty"`
	SignedTx  string          `json:"signedTx,omitempty"`
	TxHash    string          `json:"txHash,omitempty"`
	Status    Status          `json:"status"`
	Error     string          `json:"error,omitempty"`
	Attempts  int             `json:"attempts"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// pollConfig is the exponential backoff schedule for receipt polling,
// per spec.md §4.4.
const (
	pollBase        = 3 * time.Second
	pollCap         = 30 * time.Second
	pollMaxAttempts = 20
)

// EndpointResolver resolves the active RPC URL for a chainRef.
type EndpointResolver func(chainRef string) (string, error)

// Controller is the in-memory projection of every transaction record.
type Controller struct {
	mu sync.Mutex

	store    storage.Store
	bus      *messenger.Bus
	adapters map[string]Adapter
	endpoint EndpointResolver
	log      *logrus.Entry

	records map[string]*Record

	pollWG     sync.WaitGroup
	pollCancel map[string]context.CancelFunc
}

// New constructs a Controller. Call Load then ResumePending at startup.
func New(store storage.Store, bus *messenger.Bus, endpoint EndpointResolver, log *logrus.Entry) *Controller {
	return &Controller{
		store:      store,
		bus:        bus,
		adapters:   make(map[string]Adapter),
		endpoint:   endpoint,
		log:        log,
		records:    make(map[string]*Record),
		pollCancel: make(map[string]context.CancelFunc),
	}
}

// RegisterAdapter adds support for a chain namespace's transaction
// pipeline.
func (c *Controller) RegisterAdapter(a Adapter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adapters[a.Namespace()] = a
}

func (c *Controller) adapterFor(namespace string) (Adapter, error) {
	a, ok := c.adapters[namespace]
	if !ok {
		return nil, walleterrors.New(walleterrors.ReasonNotCompatible, "no transaction adapter for namespace").WithDetails("namespace", namespace)
	}
	return a, nil
}

// Load reads every persisted record into the projection.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	recs, err := c.store.List(ctx, storage.NamespaceTransactions)
	if err != nil {
		return err
	}
	c.records = make(map[string]*Record, len(recs))
	for _, rec := range recs {
		var r Record
		if err := json.Unmarshal(rec.Value, &r); err != nil {
			return walleterrors.Wrap(walleterrors.ReasonInternal, err, "decode transaction record")
		}
		rr := r
		c.records[rr.ID] = &rr
	}
	return nil
}

// ResumePending restarts receipt polling for every broadcast-but-
// unterminated record, continuing from its recorded status with no
// re-queueing on the event bus, per spec.md §4.4.
func (c *Controller) ResumePending(ctx context.Context, signer Signer) {
	c.mu.Lock()
	var toResume []*Record
	for _, r := range c.records {
		if !terminal(r.Status) && r.Status == StatusBroadcast {
			toResume = append(toResume, r)
		}
	}
	c.mu.Unlock()

	for _, r := range toResume {
		c.startPolling(ctx, r.ID)
	}
}

// CreateDraft validates req through the namespace adapter, creates a
// pending record, and returns it.
func (c *Controller) CreateDraft(ctx context.Context, namespace string, req DraftRequest) (*Record, error) {
	c.mu.Lock()
	adapter, err := c.adapterFor(namespace)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	draft, err := adapter.BuildDraft(ctx, req)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.ReasonInvalidParams, err, "build transaction draft")
	}

	now := time.Now().UTC()
	rec := &Record{
		ID:        uuid.NewString(),
		Namespace: namespace,
		ChainRef:  req.ChainRef,
		From:      req.From,
		To:        req.To,
		Draft:     draft,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	c.mu.Lock()
	c.records[rec.ID] = rec
	err = c.persistLocked(ctx, rec)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	c.publish()
	clone := *rec
	return &clone, nil
}

// Approve transitions id from pending to approved (user confirmed via
// the UI bridge).
func (c *Controller) Approve(ctx context.Context, id string) error {
	return c.transition(ctx, id, StatusApproved, func(*Record) error { return nil })
}

// RejectPending transitions id from pending to failed (user declined).
func (c *Controller) RejectPending(ctx context.Context, id string, reason string) error {
	return c.transition(ctx, id, StatusFailed, func(r *Record) error {
		r.Error = reason
		return nil
	})
}

// Sign transitions id from approved to signed, invoking the namespace
// adapter's SignTransaction with signer.
func (c *Controller) Sign(ctx context.Context, id string, signer Signer) error {
	c.mu.Lock()
	rec, ok := c.records[id]
	if !ok {
		c.mu.Unlock()
		return walleterrors.New(walleterrors.ReasonNotFound, "transaction not found").WithDetails("id", id)
	}
	adapter, err := c.adapterFor(rec.Namespace)
	draft := rec.Draft
	c.mu.Unlock()
	if err != nil {
		return err
	}

	signedTx, txHash, signErr := adapter.SignTransaction(ctx, draft, signer)
	if signErr != nil {
		return c.transition(ctx, id, StatusFailed, func(r *Record) error {
			r.Error = signErr.Error()
			return nil
		})
	}
	return c.transition(ctx, id, StatusSigned, func(r *Record) error {
		r.SignedTx = string(signedTx)
		r.TxHash = txHash
		return nil
	})
}

// Broadcast transitions id from signed to broadcast and starts receipt
// polling.
func (c *Controller) Broadcast(ctx context.Context, id string) error {
	c.mu.Lock()
	rec, ok := c.records[id]
	if !ok {
		c.mu.Unlock()
		return walleterrors.New(walleterrors.ReasonNotFound, "transaction not found").WithDetails("id", id)
	}
	adapter, err := c.adapterFor(rec.Namespace)
	chainRef, signedTx := rec.ChainRef, []byte(rec.SignedTx)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	rpcURL, err := c.endpoint(chainRef)
	if err != nil {
		return err
	}

	txHash, broadcastErr := adapter.BroadcastTransaction(ctx, rpcURL, signedTx)
	if broadcastErr != nil {
		return c.transition(ctx, id, StatusFailed, func(r *Record) error {
			r.Error = broadcastErr.Error()
			return nil
		})
	}

	if err := c.transition(ctx, id, StatusBroadcast, func(r *Record) error {
		r.TxHash = txHash
		return nil
	}); err != nil {
		return err
	}

	c.startPolling(ctx, id)
	return nil
}

// startPolling runs the exponential-backoff receipt poll loop for id in
// its own goroutine until a terminal status, max attempts, or ctx
// cancellation.
func (c *Controller) startPolling(ctx context.Context, id string) {
	pollCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.pollCancel[id] = cancel
	c.mu.Unlock()

	c.pollWG.Add(1)
	go func() {
		defer c.pollWG.Done()
		defer func() {
			c.mu.Lock()
			delete(c.pollCancel, id)
			c.mu.Unlock()
		}()
		c.pollLoop(pollCtx, id)
	}()
}

func (c *Controller) pollLoop(ctx context.Context, id string) {
	delay := pollBase
	for attempt := 1; attempt <= pollMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		c.mu.Lock()
		rec, ok := c.records[id]
		if !ok || terminal(rec.Status) {
			c.mu.Unlock()
			return
		}
		adapter, err := c.adapterFor(rec.Namespace)
		chainRef, txHash := rec.ChainRef, rec.TxHash
		c.mu.Unlock()
		if err != nil {
			return
		}

		rpcURL, err := c.endpoint(chainRef)
		if err != nil {
			c.logError(id, "resolve endpoint for receipt poll", err)
			continue
		}

		if replacedBy, replaced, err := adapter.DetectReplacement(ctx, rpcURL, txHash); err == nil && replaced {
			_ = c.transition(ctx, id, StatusReplaced, func(r *Record) error {
				r.Error = "replaced by " + replacedBy
				return nil
			})
			return
		}

		status, err := adapter.FetchReceipt(ctx, rpcURL, txHash)
		if err != nil {
			c.logError(id, "fetch receipt", err)
		} else {
			c.mu.Lock()
			if rec, ok := c.records[id]; ok {
				rec.Attempts = attempt
			}
			c.mu.Unlock()

			switch status {
			case ReceiptConfirmed:
				_ = c.transition(ctx, id, StatusConfirmed, func(*Record) error { return nil })
				return
			case ReceiptReverted:
				_ = c.transition(ctx, id, StatusFailed, func(r *Record) error {
					r.Error = "transaction reverted"
					return nil
				})
				return
			}
		}

		delay *= 2
		if delay > pollCap {
			delay = pollCap
		}
	}

	_ = c.transition(ctx, id, StatusFailed, func(r *Record) error {
		r.Error = string(walleterrors.ReasonReceiptTimeout)
		return nil
	})
}

func (c *Controller) logError(id, action string, err error) {
	if c.log == nil {
		return
	}
	c.log.WithError(err).WithField("transactionId", id).Warn("transaction " + action + " failed")
}

// transition applies a whitelisted status change, running mutate (which
// may set additional fields) before persisting. A non-whitelisted
// from->to pair is rejected.
func (c *Controller) transition(ctx context.Context, id string, to Status, mutate func(*Record) error) error {
	c.mu.Lock()
	rec, ok := c.records[id]
	if !ok {
		c.mu.Unlock()
		return walleterrors.New(walleterrors.ReasonNotFound, "transaction not found").WithDetails("id", id)
	}
	if terminal(rec.Status) {
		c.mu.Unlock()
		return walleterrors.New(walleterrors.ReasonInvalidTransition, "transaction already in a terminal state").
			WithDetails("id", id).WithDetails("status", string(rec.Status))
	}
	if !allowedTransitions[rec.Status][to] {
		c.mu.Unlock()
		return walleterrors.New(walleterrors.ReasonInvalidTransition, "status transition not permitted").
			WithDetails("from", string(rec.Status)).WithDetails("to", string(to))
	}

	if err := mutate(rec); err != nil {
		c.mu.Unlock()
		return err
	}
	rec.Status = to
	rec.UpdatedAt = time.Now().UTC()
	err := c.persistLocked(ctx, rec)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.publish()
	return nil
}

// GetState returns every transaction record, sorted by ID.
func (c *Controller) GetState() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() []Record {
	result := make([]Record, 0, len(c.records))
	for _, r := range c.records {
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (c *Controller) persistLocked(ctx context.Context, rec *Record) error {
	_, err := storage.PutValue(ctx, c.store, storage.NamespaceTransactions, rec.ID, rec, nil)
	return err
}

func (c *Controller) publish() {
	c.bus.PublishIfChanged(messenger.TopicTransactionStatusChanged, c.stateLocked())
}

// Shutdown cancels every in-flight poll loop and waits for them to exit.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(c.pollCancel))
	for _, cancel := range c.pollCancel {
		cancels = append(cancels, cancel)
	}
	c.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
	c.pollWG.Wait()
}
