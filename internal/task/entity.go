package task

import (
	"time"

	"github.com/kazz187/labelguild/internal/earnings"
	"github.com/kazz187/labelguild/internal/expiration"
	"github.com/kazz187/labelguild/internal/schema"
)

type Task struct {
	ID        string `yaml:"id"`
	ProjectID string `yaml:"project_id"`
	Status    Status `yaml:"status"`

	// AssignedTo is only set while the task is in progress.
	AssignedTo  string `yaml:"assigned_to,omitempty"`
	AnnotatorID string `yaml:"annotator_id,omitempty"`
	ReviewedBy  string `yaml:"reviewed_by,omitempty"`

	AnnotatorTimeSpent int64           `yaml:"annotator_time_spent"`
	ReviewerTimeSpent  int64           `yaml:"reviewer_time_spent"`
	AnnotatorEarnings  *earnings.Cents `yaml:"annotator_earnings,omitempty"`
	ReviewerEarnings   *earnings.Cents `yaml:"reviewer_earnings,omitempty"`
	AnnotatorStartedAt time.Time       `yaml:"annotator_started_at,omitempty"`
	ReviewerStartedAt  time.Time       `yaml:"reviewer_started_at,omitempty"`
	SubmittedAt        time.Time       `yaml:"submitted_at,omitempty"`
	ReviewedAt         time.Time       `yaml:"reviewed_at,omitempty"`

	ReviewRating     int32  `yaml:"review_rating,omitempty"`
	ReviewFeedback   string `yaml:"review_feedback,omitempty"`
	ReviewerRating   int32  `yaml:"reviewer_rating,omitempty"`
	ReviewerFeedback string `yaml:"reviewer_feedback,omitempty"`
	FeedbackBy       string `yaml:"feedback_by,omitempty"`

	ExpiredCount       int32             `yaml:"expired_count,omitempty"`
	ReviewExpiredCount int32             `yaml:"review_expired_count,omitempty"`
	LastExpiredAt      time.Time         `yaml:"last_expired_at,omitempty"`
	LastExpireReason   expiration.Reason `yaml:"last_expire_reason,omitempty"`

	ParentTaskID string            `yaml:"parent_task_id,omitempty"`
	Payload      map[string]any    `yaml:"payload,omitempty"`
	Values       schema.Values     `yaml:"values,omitempty"`
	Metadata     map[string]string `yaml:"metadata,omitempty"`
	CreatedAt    time.Time         `yaml:"created_at"`
	UpdatedAt    time.Time         `yaml:"updated_at"`
}

// Clone returns a copy that shares no maps or pointers with t.
func (t *Task) Clone() *Task {
	c := *t
	if t.AnnotatorEarnings != nil {
		v := *t.AnnotatorEarnings
		c.AnnotatorEarnings = &v
	}
	if t.ReviewerEarnings != nil {
		v := *t.ReviewerEarnings
		c.ReviewerEarnings = &v
	}
	c.Payload = cloneAny(t.Payload)
	if t.Values != nil {
		c.Values = schema.Values(cloneAny(t.Values))
	}
	if t.Metadata != nil {
		c.Metadata = make(map[string]string, len(t.Metadata))
		for k, v := range t.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func cloneAny(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch v := v.(type) {
		case map[string]any:
			out[k] = cloneAny(v)
		case []any:
			out[k] = append([]any(nil), v...)
		default:
			out[k] = v
		}
	}
	return out
}
