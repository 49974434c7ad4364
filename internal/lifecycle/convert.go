package lifecycle

import (
	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/earnings"
	"github.com/kazz187/labelguild/internal/task"
)

func toAPI(t *task.Task) *apiv1.Task {
	if t == nil {
		return nil
	}
	return &apiv1.Task{
		ID:                     t.ID,
		ProjectID:              t.ProjectID,
		Status:                 string(t.Status),
		AssignedTo:             t.AssignedTo,
		AnnotatorID:            t.AnnotatorID,
		ReviewedBy:             t.ReviewedBy,
		AnnotatorTimeSpent:     t.AnnotatorTimeSpent,
		ReviewerTimeSpent:      t.ReviewerTimeSpent,
		AnnotatorEarningsCents: centsPtr(t.AnnotatorEarnings),
		ReviewerEarningsCents:  centsPtr(t.ReviewerEarnings),
		AnnotatorStartedAt:     t.AnnotatorStartedAt,
		ReviewerStartedAt:      t.ReviewerStartedAt,
		SubmittedAt:            t.SubmittedAt,
		ReviewedAt:             t.ReviewedAt,
		ReviewRating:           t.ReviewRating,
		ReviewFeedback:         t.ReviewFeedback,
		ReviewerRating:         t.ReviewerRating,
		ReviewerFeedback:       t.ReviewerFeedback,
		ExpiredCount:           t.ExpiredCount,
		ReviewExpiredCount:     t.ReviewExpiredCount,
		LastExpiredAt:          t.LastExpiredAt,
		LastExpireReason:       string(t.LastExpireReason),
		ParentTaskID:           t.ParentTaskID,
		Payload:                t.Payload,
		Values:                 t.Values,
		Metadata:               t.Metadata,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
	}
}

func centsPtr(c *earnings.Cents) *int64 {
	if c == nil {
		return nil
	}
	v := int64(*c)
	return &v
}
