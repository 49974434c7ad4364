package timer

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Ticker is the subset of *time.Ticker a session loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Scheduler creates the interval tickers that drive a session.
type Scheduler interface {
	NewTicker(d time.Duration) Ticker
}

type SystemScheduler struct{}

func (SystemScheduler) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s *systemTicker) C() <-chan time.Time { return s.t.C }
func (s *systemTicker) Stop()               { s.t.Stop() }
