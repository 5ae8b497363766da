// Package approvals implements the §4.4 approvals controller: a pending
// queue of UI-attention tasks, each resolved or rejected exactly once by
// the UI bridge, that callers await by blocking on a per-task channel.
//
// Grounded on internal/app/jam/coordinator.go's pending-work-item +
// completion-channel pattern, generalized from job completion to
// approve/reject resolution of arbitrary task types.
package approvals

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/storage"
	"github.com/walletd/core/internal/walleterrors"
)

// Task describes one pending UI-attention request.
type Task struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Origin    string    `json:"origin"`
	PortID    string    `json:"portId"`
	SessionID string    `json:"sessionId"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

type result struct {
	value any
	err   error
}

type pendingEntry struct {
	task     Task
	resultCh chan result
	done     bool
}

// Controller is the in-memory pending-approval queue.
type Controller struct {
	mu sync.Mutex

	store storage.Store
	bus   *messenger.Bus

	pending map[string]*pendingEntry
}

// New constructs a Controller.
func New(store storage.Store, bus *messenger.Bus) *Controller {
	return &Controller{store: store, bus: bus, pending: make(map[string]*pendingEntry)}
}

// RequestApproval enqueues task, publishes attention:requested, and
// blocks until Resolve/Reject is called for it or ctx is cancelled.
func (c *Controller) RequestApproval(ctx context.Context, task Task) (any, error) {
	task.ID = uuid.NewString()
	task.CreatedAt = time.Now().UTC()
	entry := &pendingEntry{task: task, resultCh: make(chan result, 1)}

	c.mu.Lock()
	c.pending[task.ID] = entry
	c.persistSnapshotLocked(ctx)
	c.mu.Unlock()

	c.bus.Publish(messenger.TopicAttentionRequested, task)

	select {
	case res := <-entry.resultCh:
		return res.value, res.err
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, task.ID)
		c.persistSnapshotLocked(ctx)
		c.mu.Unlock()
		return nil, ctx.Err()
	}
}

// Resolve completes task id with value. Double-resolution is a hard
// error, per spec.md §5 "Approval resolution is sequenced... double-
// resolution is a hard error."
func (c *Controller) Resolve(id string, value any) error {
	return c.complete(id, result{value: value})
}

// Reject completes task id with err.
func (c *Controller) Reject(id string, err error) error {
	return c.complete(id, result{err: err})
}

func (c *Controller) complete(id string, res result) error {
	c.mu.Lock()
	entry, ok := c.pending[id]
	if !ok {
		c.mu.Unlock()
		return walleterrors.New(walleterrors.ReasonNotFound, "no pending approval with this id").WithDetails("id", id)
	}
	if entry.done {
		c.mu.Unlock()
		return walleterrors.New(walleterrors.ReasonInvalidRequest, "approval already resolved").WithDetails("id", id)
	}
	entry.done = true
	delete(c.pending, id)
	c.persistSnapshotLocked(context.Background())
	c.mu.Unlock()

	entry.resultCh <- res
	c.bus.Publish(messenger.TopicApprovalResolved, map[string]any{"id": id, "rejected": res.err != nil})
	return nil
}

// ExpirePendingByRequestContext rejects every pending task whose
// (portId, sessionId) matches with a UserRejected error carrying reason,
// per spec.md §4.4.
func (c *Controller) ExpirePendingByRequestContext(portID, sessionID, reason string) int {
	c.mu.Lock()
	var matched []*pendingEntry
	for id, entry := range c.pending {
		if entry.task.PortID == portID && entry.task.SessionID == sessionID {
			entry.done = true
			matched = append(matched, entry)
			delete(c.pending, id)
		}
	}
	c.persistSnapshotLocked(context.Background())
	c.mu.Unlock()

	err := walleterrors.New(walleterrors.ReasonUserRejected, reason)
	for _, entry := range matched {
		entry.resultCh <- result{err: err}
		c.bus.Publish(messenger.TopicApprovalResolved, map[string]any{"id": entry.task.ID, "rejected": true})
	}
	return len(matched)
}

// ClearOnLock rejects every pending task and empties the queue, per
// spec.md §4.4 "the queue... is cleared on lock." The dApp sees this as
// a user rejection (wire code 4001), not a locked error (4100): the call
// itself is gone, not paused, per spec.md §5 scenario 2 ("the pending
// approval is rejected 4001").
func (c *Controller) ClearOnLock() int {
	c.mu.Lock()
	var matched []*pendingEntry
	for id, entry := range c.pending {
		entry.done = true
		matched = append(matched, entry)
		delete(c.pending, id)
	}
	c.persistSnapshotLocked(context.Background())
	c.mu.Unlock()

	err := walleterrors.New(walleterrors.ReasonUserRejected, "session locked")
	for _, entry := range matched {
		entry.resultCh <- result{err: err}
		c.bus.Publish(messenger.TopicApprovalResolved, map[string]any{"id": entry.task.ID, "rejected": true})
	}
	return len(matched)
}

// GetState returns every pending task, sorted by ID for stable ordering.
func (c *Controller) GetState() []Task {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]Task, 0, len(c.pending))
	for _, entry := range c.pending {
		result = append(result, entry.task)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// persistSnapshotLocked best-effort persists the current pending list for
// cross-restart visibility (the queue itself, including resultCh, cannot
// be resumed across a process restart; this is informational only). Must
// be called with mu held.
func (c *Controller) persistSnapshotLocked(ctx context.Context) {
	tasks := make([]Task, 0, len(c.pending))
	for _, entry := range c.pending {
		tasks = append(tasks, entry.task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	_, _ = storage.PutValue(ctx, c.store, storage.NamespaceApprovals, "pending", tasks, nil)
}
