// Package expiration decides, from elapsed active time and wall-clock time
// since claim, whether a labeling session continues, warns or expires.
package expiration

import "time"

type Action int

const (
	Continue Action = iota
	Warn
	Expire
)

func (a Action) String() string {
	switch a {
	case Continue:
		return "continue"
	case Warn:
		return "warn"
	case Expire:
		return "expire"
	}
	return "unknown"
}

type Reason string

const (
	ReasonNone     Reason = ""
	ReasonTask     Reason = "task"
	ReasonAbsolute Reason = "absolute"
)

// Limits are the configured budgets of one session, in seconds. Zero disables
// a limit. Reviewer sessions leave AbsoluteDuration at zero.
type Limits struct {
	MaxTime          int64 `yaml:"max_time" json:"max_time"`
	ExtraTime        int64 `yaml:"extra_time" json:"extra_time"`
	AbsoluteDuration int64 `yaml:"absolute_duration,omitempty" json:"absolute_duration,omitempty"`
}

// HardLimit is the elapsed value at which the session expires with
// ReasonTask. With no grace time the session still gets the warning tick at
// MaxTime and expires on the next one.
func (l Limits) HardLimit() int64 {
	if l.MaxTime <= 0 {
		return 0
	}
	if l.ExtraTime <= 0 {
		return l.MaxTime + 1
	}
	return l.MaxTime + l.ExtraTime
}

// AbsoluteDeadline returns the wall-clock instant after which a session
// claimed at startedAt expires regardless of active time.
func (l Limits) AbsoluteDeadline(startedAt time.Time) (time.Time, bool) {
	if l.AbsoluteDuration <= 0 || startedAt.IsZero() {
		return time.Time{}, false
	}
	return startedAt.Add(time.Duration(l.AbsoluteDuration) * time.Second), true
}

// State is everything Evaluate looks at besides the limits.
type State struct {
	Elapsed   int64
	StartedAt time.Time
	Now       time.Time
	Warned    bool
}

type Outcome struct {
	Action Action
	Reason Reason
	// GraceSeconds is the runway granted past the warning. Zero means
	// continuing earns nothing further.
	GraceSeconds int64
}

func (o Outcome) Expired() bool { return o.Action == Expire }

// Evaluate combines the absolute deadline, the hard limit and the soft
// warning into one outcome. When more than one condition holds, absolute
// wins over task, and either wins over the warning.
func Evaluate(l Limits, s State) Outcome {
	if deadline, ok := l.AbsoluteDeadline(s.StartedAt); ok && !s.Now.Before(deadline) {
		return Outcome{Action: Expire, Reason: ReasonAbsolute}
	}
	if hard := l.HardLimit(); hard > 0 && s.Elapsed >= hard {
		return Outcome{Action: Expire, Reason: ReasonTask}
	}
	if l.MaxTime > 0 && s.Elapsed == l.MaxTime && !s.Warned {
		return Outcome{Action: Warn, GraceSeconds: max(l.ExtraTime, 0)}
	}
	return Outcome{Action: Continue}
}
