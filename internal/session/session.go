// Package session drives one open labeling or review session: the 1 Hz
// timer, the periodic autosave of elapsed time, expiration and the final
// submit or skip that closes it.
package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kazz187/labelguild/internal/expiration"
	"github.com/kazz187/labelguild/internal/timer"
	"github.com/kazz187/labelguild/pkg/cerr"
)

const (
	TickInterval     = time.Second
	AutosaveInterval = 5 * time.Second
)

// Store is the server side of a session. Implementations are bound to one
// task and one role.
type Store interface {
	SaveTime(ctx context.Context, seconds int64) error
	NotifyExpired(ctx context.Context, reason expiration.Reason, seconds int64) error
	Release(ctx context.Context, seconds int64) error
}

// FinalizeFunc performs the authoritative write that closes the session.
type FinalizeFunc func(ctx context.Context, seconds int64) error

type State int

const (
	StateActive State = iota
	StateFinalizing
	StateFinalized
	StateExpired
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateFinalizing:
		return "finalizing"
	case StateFinalized:
		return "finalized"
	case StateExpired:
		return "expired"
	case StateReleased:
		return "released"
	}
	return "unknown"
}

func (s State) Closed() bool {
	return s == StateFinalized || s == StateExpired || s == StateReleased
}

type Option func(*Session)

// WithOnWarn is called once when the soft limit is reached.
func WithOnWarn(fn func(expiration.Outcome)) Option {
	return func(s *Session) { s.onWarn = fn }
}

// WithOnExpire is called once when the session expires, whether or not the
// store accepted the notification.
func WithOnExpire(fn func(expiration.Outcome, error)) Option {
	return func(s *Session) { s.onExpire = fn }
}

type Session struct {
	taskID string
	store  Store

	mu    sync.Mutex
	timer *timer.Timer
	state State
	done  chan struct{}

	// saveMu is held across the store round trip of an autosave so that a
	// finalize waits for the in-flight one before writing.
	saveMu sync.Mutex
	// saving is set while Run has an autosave in flight.
	saving atomic.Bool

	onWarn   func(expiration.Outcome)
	onExpire func(expiration.Outcome, error)
}

func New(taskID string, t *timer.Timer, store Store, opts ...Option) *Session {
	s := &Session{
		taskID: taskID,
		store:  store,
		timer:  t,
		state:  StateActive,
		done:   make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) TaskID() string { return s.taskID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Elapsed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.Elapsed()
}

func (s *Session) LastPersisted() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.LastPersisted()
}

// Done is closed once the session is finalized, expired or released.
func (s *Session) Done() <-chan struct{} { return s.done }

// Tick advances the session by one second.
func (s *Session) Tick(ctx context.Context) expiration.Outcome {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return expiration.Outcome{}
	}
	out := s.timer.Tick()
	return s.apply(ctx, out)
}

// Resume evaluates the policy without advancing, catching deadlines that
// passed while no ticks ran.
func (s *Session) Resume(ctx context.Context) expiration.Outcome {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return expiration.Outcome{}
	}
	out := s.timer.Check()
	return s.apply(ctx, out)
}

// apply is called with mu held and releases it.
func (s *Session) apply(ctx context.Context, out expiration.Outcome) expiration.Outcome {
	switch out.Action {
	case expiration.Warn:
		s.mu.Unlock()
		slog.InfoContext(ctx, "session reached its time limit", "task_id", s.taskID, "grace_seconds", out.GraceSeconds)
		if s.onWarn != nil {
			s.onWarn(out)
		}
	case expiration.Expire:
		seconds := s.timer.Elapsed()
		s.close(StateExpired)
		s.mu.Unlock()
		s.expire(ctx, out, seconds)
	default:
		s.mu.Unlock()
	}
	return out
}

func (s *Session) expire(ctx context.Context, out expiration.Outcome, seconds int64) {
	s.saveMu.Lock()
	err := s.store.NotifyExpired(ctx, out.Reason, seconds)
	s.saveMu.Unlock()
	if err != nil {
		slog.WarnContext(ctx, "failed to notify expiration", "task_id", s.taskID, "reason", out.Reason, "seconds", seconds, "error", err)
	} else {
		slog.InfoContext(ctx, "session expired", "task_id", s.taskID, "reason", out.Reason, "seconds", seconds)
	}
	if s.onExpire != nil {
		s.onExpire(out, err)
	}
}

// close is called with mu held.
func (s *Session) close(state State) {
	s.state = state
	s.timer.Stop()
	close(s.done)
}

// Autosave persists the elapsed time when it is ahead of the stored value.
// Failures are logged and left for the next call.
func (s *Session) Autosave(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return nil
	}
	seconds, ok := s.timer.Unpersisted()
	s.mu.Unlock()
	if !ok {
		return nil
	}

	if err := s.store.SaveTime(ctx, seconds); err != nil {
		slog.WarnContext(ctx, "autosave failed", "task_id", s.taskID, "seconds", seconds, "error", err)
		return err
	}

	s.mu.Lock()
	s.timer.MarkPersisted(seconds)
	s.mu.Unlock()
	return nil
}

// Finalize stops autosave and ticks, then runs fn with the final elapsed
// time. When fn fails the session stays open so the caller can retry.
func (s *Session) Finalize(ctx context.Context, fn FinalizeFunc) error {
	return s.closeWith(ctx, StateFinalized, fn)
}

// Skip releases the claim, keeping the time spent so far.
func (s *Session) Skip(ctx context.Context) error {
	return s.closeWith(ctx, StateReleased, s.store.Release)
}

func (s *Session) closeWith(ctx context.Context, final State, fn FinalizeFunc) error {
	s.mu.Lock()
	switch s.state {
	case StateActive:
	case StateExpired:
		s.mu.Unlock()
		return cerr.NewError(cerr.DeadlineExceeded, "session expired", nil)
	case StateFinalizing:
		s.mu.Unlock()
		return cerr.NewError(cerr.FailedPrecondition, "session is already being finalized", nil)
	default:
		s.mu.Unlock()
		return cerr.NewError(cerr.FailedPrecondition, "session is closed", nil)
	}
	// A deadline may have passed since the last tick.
	if out := s.timer.Check(); out.Expired() {
		s.apply(ctx, out)
		return cerr.NewError(cerr.DeadlineExceeded, "session expired", nil)
	}
	s.state = StateFinalizing
	seconds := s.timer.Elapsed()
	s.mu.Unlock()

	s.saveMu.Lock()
	err := fn(ctx, seconds)
	s.saveMu.Unlock()

	s.mu.Lock()
	if err != nil {
		if !cerr.IsCode(err, cerr.DeadlineExceeded) {
			s.state = StateActive
			s.mu.Unlock()
			return err
		}
		// The server recorded the expiration itself.
		out := s.timer.Check()
		if !out.Expired() {
			out = s.timer.Expire(expiration.ReasonTask)
		}
		s.close(StateExpired)
		s.mu.Unlock()
		if s.onExpire != nil {
			s.onExpire(out, nil)
		}
		return err
	}
	s.timer.MarkPersisted(seconds)
	s.close(final)
	s.mu.Unlock()
	return nil
}

// Run drives the session from sched until it closes or ctx is done. Autosaves
// run beside the tick loop so a slow store never delays a tick; an autosave
// tick that arrives while the previous save is still in flight is skipped.
func (s *Session) Run(ctx context.Context, sched timer.Scheduler) error {
	if sched == nil {
		sched = timer.SystemScheduler{}
	}
	tick := sched.NewTicker(TickInterval)
	defer tick.Stop()
	autosave := sched.NewTicker(AutosaveInterval)
	defer autosave.Stop()

	s.Resume(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-tick.C():
			s.Tick(ctx)
		case <-autosave.C():
			if !s.saving.CompareAndSwap(false, true) {
				continue
			}
			go func() {
				defer s.saving.Store(false)
				_ = s.Autosave(ctx)
			}()
		}
	}
}
