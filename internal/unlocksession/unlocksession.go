// Package unlocksession implements the §4.2 unlock session: an
// UnlockState machine layered over internal/vault, owning a single
// monotonic auto-lock timer per process and the cold-start recovery math
// that reconciles a persisted snapshot against the live vault state.
//
// Grounded on services/common/service/base.go's stop-channel/sync.Once
// lifecycle discipline (adapted here to a single time.Timer rather than
// a ticker worker, since spec.md §5 requires "a single pending timer per
// process", not a poll loop) and internal/vault (Lock/Unlock) for the
// underlying secret transition.
package unlocksession

import (
	"sync"
	"time"

	"github.com/walletd/core/internal/messenger"
	"github.com/walletd/core/internal/vault"
	"github.com/walletd/core/internal/walleterrors"
)

// LockReason explains why a session transitioned to locked.
type LockReason string

const (
	ReasonManual  LockReason = "manual"
	ReasonTimeout LockReason = "timeout"
	ReasonSuspend LockReason = "suspend"
)

// DefaultTimeout is used when no explicit auto-lock duration has ever
// been configured.
const DefaultTimeout = 15 * time.Minute

// State is the externally-visible unlock state, published on every
// transition.
type State struct {
	IsUnlocked     bool       `json:"isUnlocked"`
	TimeoutMs      int64      `json:"timeoutMs"`
	LastUnlockedAt *time.Time `json:"lastUnlockedAt,omitempty"`
	NextAutoLockAt *time.Time `json:"nextAutoLockAt,omitempty"`
}

// Snapshot is the persisted cold-start recovery shape: State plus the
// instant it was captured, so elapsed time can be computed after a
// restart.
type Snapshot struct {
	State              State     `json:"state"`
	SnapshotCapturedAt time.Time `json:"snapshotCapturedAt"`
}

// Session wraps a *vault.Vault with the auto-lock timer and publishes
// state transitions on bus.
type Session struct {
	mu sync.Mutex

	v     *vault.Vault
	bus   *messenger.Bus
	clock func() time.Time

	timeout        time.Duration
	lastUnlockedAt *time.Time
	nextAutoLockAt *time.Time
	timer          *time.Timer
}

// New constructs a Session over v, publishing transitions on bus.
func New(v *vault.Vault, bus *messenger.Bus) *Session {
	return &Session{v: v, bus: bus, clock: time.Now, timeout: DefaultTimeout}
}

// Unlock authenticates password against the vault, enters unlocked
// state, and (re)schedules the auto-lock timer for the configured
// timeout.
func (s *Session) Unlock(password string) ([]byte, error) {
	secret, err := s.v.Unlock(password, nil)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	now := s.clock()
	s.lastUnlockedAt = &now
	s.scheduleAutoLockLocked(s.timeout)
	state := s.stateLocked()
	s.mu.Unlock()

	s.publish(state)
	s.bus.Publish(messenger.TopicUnlockUnlocked, state)
	return secret, nil
}

// Lock transitions to locked for reason, stopping any pending timer.
func (s *Session) Lock(reason LockReason) {
	s.v.Lock()

	s.mu.Lock()
	s.stopTimerLocked()
	s.nextAutoLockAt = nil
	state := s.stateLocked()
	s.mu.Unlock()

	s.publish(state)
	s.bus.Publish(messenger.TopicUnlockLocked, map[string]any{"reason": reason, "state": state})
}

// ScheduleAutoLock (re)arms the timer. If ms is nil, the session's
// currently configured timeout is used.
func (s *Session) ScheduleAutoLock(ms *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.v.Unlocked() {
		return
	}
	d := s.timeout
	if ms != nil {
		d = time.Duration(*ms) * time.Millisecond
	}
	s.scheduleAutoLockLocked(d)
}

// SetAutoLockDuration changes the configured timeout used by future
// unlocks and reschedules the current timer (if any) to the new value.
func (s *Session) SetAutoLockDuration(ms int64) {
	s.mu.Lock()
	s.timeout = time.Duration(ms) * time.Millisecond
	rearm := s.v.Unlocked()
	if rearm {
		s.scheduleAutoLockLocked(s.timeout)
	}
	state := s.stateLocked()
	s.mu.Unlock()
	s.publish(state)
}

// GetState returns a copy of the current unlock state.
func (s *Session) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// IsUnlocked reports whether the session currently holds an unsealed
// secret, satisfying rpcengine's unlockChecker without that package
// importing unlocksession directly.
func (s *Session) IsUnlocked() bool {
	return s.GetState().IsUnlocked
}

// Vault exposes the underlying vault for callers that extend the sealed
// payload beyond the session's own secret (KeyringService reseals the
// vault with {vault secret, keyring material} on every mutation).
// Ordinary callers should use Unlock/Lock/VerifyPassword instead.
func (s *Session) Vault() *vault.Vault {
	return s.v
}

// scheduleAutoLockLocked arms (or rearms) the single timer for d from
// now. Must be called with mu held.
func (s *Session) scheduleAutoLockLocked(d time.Duration) {
	s.stopTimerLocked()
	next := s.clock().Add(d)
	s.nextAutoLockAt = &next
	s.timer = time.AfterFunc(d, func() { s.Lock(ReasonTimeout) })
}

// stopTimerLocked stops the pending timer, if any. Must be called with
// mu held.
func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) stateLocked() State {
	return State{
		IsUnlocked:     s.v.Unlocked(),
		TimeoutMs:      s.timeout.Milliseconds(),
		LastUnlockedAt: s.lastUnlockedAt,
		NextAutoLockAt: s.nextAutoLockAt,
	}
}

func (s *Session) publish(state State) {
	s.bus.Publish(messenger.TopicUnlockStateChanged, state)
}

// Recover reconciles a persisted Snapshot with the live vault state on
// process start, per spec.md §4.2. now is injected for testability.
func (s *Session) Recover(snapshot Snapshot, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := now.Sub(snapshot.SnapshotCapturedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	isUnlocked := s.v.Unlocked()

	switch {
	case snapshot.State.IsUnlocked && isUnlocked:
		if snapshot.State.NextAutoLockAt != nil && !snapshot.State.NextAutoLockAt.After(now) {
			s.mu.Unlock()
			s.Lock(ReasonTimeout)
			s.mu.Lock()
			return
		}
		if snapshot.State.NextAutoLockAt != nil {
			remaining := snapshot.State.NextAutoLockAt.Sub(now)
			if remaining > s.timeout {
				remaining = s.timeout
			}
			if remaining > 0 {
				s.lastUnlockedAt = snapshot.State.LastUnlockedAt
				s.scheduleAutoLockLocked(remaining)
			}
		}
	case snapshot.State.IsUnlocked && !isUnlocked:
		// Persisted state claims unlocked but the live vault is locked
		// (e.g. process restarted without the secret in memory): leave
		// it locked, do not resurrect.
	case !snapshot.State.IsUnlocked && isUnlocked:
		s.mu.Unlock()
		s.Lock(ReasonSuspend)
		s.mu.Lock()
	}
}

// VerifyPassword delegates to the underlying vault without mutating
// session state, surfacing InvalidPassword on mismatch.
func (s *Session) VerifyPassword(password string) error {
	if err := s.v.VerifyPassword(password); err != nil {
		return walleterrors.Wrap(walleterrors.ReasonInvalidPassword, err, "")
	}
	return nil
}
