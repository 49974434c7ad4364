package expiration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	limits := Limits{MaxTime: 1800, ExtraTime: 300, AbsoluteDuration: 3600}

	tests := []struct {
		name     string
		limits   Limits
		state    State
		expected Outcome
	}{
		{
			name:     "before max",
			limits:   limits,
			state:    State{Elapsed: 1799, StartedAt: t0, Now: t0.Add(1799 * time.Second)},
			expected: Outcome{Action: Continue},
		},
		{
			name:     "warning at max",
			limits:   limits,
			state:    State{Elapsed: 1800, StartedAt: t0, Now: t0.Add(1800 * time.Second)},
			expected: Outcome{Action: Warn, GraceSeconds: 300},
		},
		{
			name:     "warning not repeated",
			limits:   limits,
			state:    State{Elapsed: 1800, StartedAt: t0, Now: t0.Add(1800 * time.Second), Warned: true},
			expected: Outcome{Action: Continue},
		},
		{
			name:     "grace time",
			limits:   limits,
			state:    State{Elapsed: 2099, StartedAt: t0, Now: t0.Add(2099 * time.Second)},
			expected: Outcome{Action: Continue},
		},
		{
			name:     "hard limit",
			limits:   limits,
			state:    State{Elapsed: 2100, StartedAt: t0, Now: t0.Add(2100 * time.Second)},
			expected: Outcome{Action: Expire, Reason: ReasonTask},
		},
		{
			name:     "absolute deadline with suspended ticks",
			limits:   limits,
			state:    State{Elapsed: 40, StartedAt: t0, Now: t0.Add(3600 * time.Second)},
			expected: Outcome{Action: Expire, Reason: ReasonAbsolute},
		},
		{
			name:     "absolute wins over task",
			limits:   Limits{MaxTime: 10, AbsoluteDuration: 10},
			state:    State{Elapsed: 50, StartedAt: t0, Now: t0.Add(time.Hour)},
			expected: Outcome{Action: Expire, Reason: ReasonAbsolute},
		},
		{
			name:     "no extra time warns then expires next tick",
			limits:   Limits{MaxTime: 60},
			state:    State{Elapsed: 60},
			expected: Outcome{Action: Warn},
		},
		{
			name:     "no extra time expiry",
			limits:   Limits{MaxTime: 60},
			state:    State{Elapsed: 61},
			expected: Outcome{Action: Expire, Reason: ReasonTask},
		},
		{
			name:     "no limits",
			limits:   Limits{},
			state:    State{Elapsed: 1 << 20, StartedAt: t0, Now: t0.Add(1000 * time.Hour)},
			expected: Outcome{Action: Continue},
		},
		{
			name:     "absolute without claim time",
			limits:   Limits{AbsoluteDuration: 10},
			state:    State{Now: t0},
			expected: Outcome{Action: Continue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Evaluate(tt.limits, tt.state))
		})
	}
}

func TestWarningFiresOnce(t *testing.T) {
	limits := Limits{MaxTime: 1800, ExtraTime: 300}
	warned := false
	warnings := 0
	var expiredAt int64
	for elapsed := int64(1); elapsed <= 3000; elapsed++ {
		out := Evaluate(limits, State{Elapsed: elapsed, Warned: warned})
		if out.Action == Warn {
			warnings++
			warned = true
			assert.Equal(t, int64(1800), elapsed)
		}
		if out.Expired() {
			expiredAt = elapsed
			assert.Equal(t, ReasonTask, out.Reason)
			break
		}
	}
	assert.Equal(t, 1, warnings)
	assert.Equal(t, int64(2100), expiredAt)
}

func TestHardLimit(t *testing.T) {
	tests := []struct {
		name     string
		limits   Limits
		expected int64
	}{
		{name: "max plus extra", limits: Limits{MaxTime: 1800, ExtraTime: 300}, expected: 2100},
		{name: "no extra time is one tick past max", limits: Limits{MaxTime: 60}, expected: 61},
		{name: "negative extra time counts as none", limits: Limits{MaxTime: 60, ExtraTime: -5}, expected: 61},
		{name: "no max time", limits: Limits{ExtraTime: 300}, expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.limits.HardLimit())
		})
	}
}
