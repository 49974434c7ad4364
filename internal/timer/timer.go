// Package timer keeps the elapsed active seconds of one labeling session and
// applies the expiration policy on every tick.
package timer

import (
	"time"

	"github.com/kazz187/labelguild/internal/expiration"
)

// Timer is owned by a single session and is not safe for concurrent use.
type Timer struct {
	limits        expiration.Limits
	clock         Clock
	startedAt     time.Time
	elapsed       int64
	lastPersisted int64
	warned        bool
	stopped       bool
	outcome       expiration.Outcome
}

// New resumes a timer at initialTimeSpent, the last value the store holds.
func New(limits expiration.Limits, startedAt time.Time, initialTimeSpent int64, clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock{}
	}
	if initialTimeSpent < 0 {
		initialTimeSpent = 0
	}
	return &Timer{
		limits:        limits,
		clock:         clock,
		startedAt:     startedAt,
		elapsed:       initialTimeSpent,
		lastPersisted: initialTimeSpent,
		// A resumed session past the warning point was already warned.
		warned: limits.MaxTime > 0 && initialTimeSpent > limits.MaxTime,
	}
}

// Tick advances the counter by one second and evaluates the policy. A
// stopped timer no longer advances and keeps returning its final outcome.
func (t *Timer) Tick() expiration.Outcome {
	if t.stopped {
		return t.outcome
	}
	t.elapsed++
	return t.evaluate()
}

// Check evaluates the policy without advancing, for resumed or woken
// sessions whose ticks may have been missed.
func (t *Timer) Check() expiration.Outcome {
	if t.stopped {
		return t.outcome
	}
	return t.evaluate()
}

func (t *Timer) evaluate() expiration.Outcome {
	out := expiration.Evaluate(t.limits, expiration.State{
		Elapsed:   t.elapsed,
		StartedAt: t.startedAt,
		Now:       t.clock.Now(),
		Warned:    t.warned,
	})
	switch out.Action {
	case expiration.Warn:
		t.warned = true
	case expiration.Expire:
		t.stopped = true
		t.outcome = out
	}
	return out
}

// Expire stops the timer with an expiration decided elsewhere, such as by
// the server at submit.
func (t *Timer) Expire(reason expiration.Reason) expiration.Outcome {
	if !t.outcome.Expired() {
		t.stopped = true
		t.outcome = expiration.Outcome{Action: expiration.Expire, Reason: reason}
	}
	return t.outcome
}

// Stop freezes the counter, for finalize and skip.
func (t *Timer) Stop() { t.stopped = true }

func (t *Timer) Stopped() bool             { return t.stopped }
func (t *Timer) Warned() bool              { return t.warned }
func (t *Timer) Elapsed() int64            { return t.elapsed }
func (t *Timer) StartedAt() time.Time      { return t.startedAt }
func (t *Timer) Limits() expiration.Limits { return t.limits }

// Expired returns the expiration outcome once the timer stopped because of
// the policy.
func (t *Timer) Expired() (expiration.Outcome, bool) {
	return t.outcome, t.outcome.Expired()
}

// Unpersisted returns the elapsed value when it is ahead of the last value
// acknowledged by the store.
func (t *Timer) Unpersisted() (int64, bool) {
	return t.elapsed, t.elapsed > t.lastPersisted
}

// MarkPersisted records a value acknowledged by the store. Older
// acknowledgements are ignored.
func (t *Timer) MarkPersisted(seconds int64) {
	if seconds > t.lastPersisted {
		t.lastPersisted = seconds
	}
}

func (t *Timer) LastPersisted() int64 { return t.lastPersisted }
