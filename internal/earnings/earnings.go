// Package earnings converts pay configuration and time spent into an amount
// of money.
package earnings

import (
	"fmt"

	"github.com/kazz187/labelguild/pkg/cerr"
)

// Cents is an amount of money in the smallest currency unit.
type Cents int64

func (c Cents) String() string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

type Mode string

const (
	ModeHourly  Mode = "hourly"
	ModePerTask Mode = "per_task"
)

// Rate is the pay configuration of one role on a project.
type Rate struct {
	Mode    Mode  `yaml:"mode" json:"mode"`
	Hourly  Cents `yaml:"hourly_cents,omitempty" json:"hourly_cents,omitempty"`
	PerTask Cents `yaml:"per_task_cents,omitempty" json:"per_task_cents,omitempty"`
}

func (r Rate) Validate() error {
	switch r.Mode {
	case ModeHourly:
		if r.Hourly < 0 {
			return fmt.Errorf("hourly rate must not be negative")
		}
	case ModePerTask:
		if r.PerTask < 0 {
			return fmt.Errorf("per task rate must not be negative")
		}
	case "":
	default:
		return fmt.Errorf("unknown payment mode %q", r.Mode)
	}
	return nil
}

// Compute returns the earnings for seconds of work. Hourly pay only covers
// time up to paidLimit when it is positive; grace time past it is unpaid.
// An unset mode pays nothing.
func Compute(r Rate, seconds, paidLimit int64) (Cents, error) {
	if seconds < 0 {
		return 0, cerr.NewError(cerr.InvalidArgument, "seconds must not be negative", nil)
	}
	switch r.Mode {
	case "":
		return 0, nil
	case ModePerTask:
		return r.PerTask, nil
	case ModeHourly:
		paid := seconds
		if paidLimit > 0 && paid > paidLimit {
			paid = paidLimit
		}
		return Cents((int64(r.Hourly)*paid + 1800) / 3600), nil
	default:
		return 0, cerr.NewError(cerr.FailedPrecondition, fmt.Sprintf("unknown payment mode %q", r.Mode), nil)
	}
}
