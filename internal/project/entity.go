package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/kazz187/labelguild/internal/earnings"
	"github.com/kazz187/labelguild/internal/expiration"
	"github.com/kazz187/labelguild/internal/schema"
)

// Project holds the configuration every task of the project is worked under.
// Durations are in seconds; zero disables the limit.
type Project struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// ReviewEnabled sends submissions to "submitted" instead of "completed".
	ReviewEnabled bool `yaml:"review_enabled"`

	MaxTaskTime                int64 `yaml:"max_task_time"`
	ExtraTimeAfterMax          int64 `yaml:"extra_time_after_max"`
	AbsoluteExpirationDuration int64 `yaml:"absolute_expiration_duration"`
	ReviewTaskTime             int64 `yaml:"review_task_time"`
	ReviewExtraTime            int64 `yaml:"review_extra_time"`

	AnnotatorPay earnings.Rate `yaml:"annotator_pay"`
	ReviewerPay  earnings.Rate `yaml:"reviewer_pay"`

	Schema schema.Tree `yaml:"schema"`

	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

func (p *Project) AnnotatorLimits() expiration.Limits {
	return expiration.Limits{
		MaxTime:          p.MaxTaskTime,
		ExtraTime:        p.ExtraTimeAfterMax,
		AbsoluteDuration: p.AbsoluteExpirationDuration,
	}
}

// ReviewerLimits has no absolute deadline.
func (p *Project) ReviewerLimits() expiration.Limits {
	return expiration.Limits{
		MaxTime:   p.ReviewTaskTime,
		ExtraTime: p.ReviewExtraTime,
	}
}

func (p *Project) Validate() error {
	var errs []error
	if p.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	for name, v := range map[string]int64{
		"max_task_time":                p.MaxTaskTime,
		"extra_time_after_max":         p.ExtraTimeAfterMax,
		"absolute_expiration_duration": p.AbsoluteExpirationDuration,
		"review_task_time":             p.ReviewTaskTime,
		"review_extra_time":            p.ReviewExtraTime,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	if err := p.AnnotatorPay.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("annotator_pay: %w", err))
	}
	if err := p.ReviewerPay.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("reviewer_pay: %w", err))
	}
	if err := p.Schema.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("schema: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("project %q: %w", p.ID, err)
	}
	return nil
}
