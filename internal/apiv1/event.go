package apiv1

import "time"

type EventType string

const (
	EventTypeTaskCreated               EventType = "task.created"
	EventTypeTaskClaimed               EventType = "task.claimed"
	EventTypeTaskSkipped               EventType = "task.skipped"
	EventTypeTaskExpired               EventType = "task.expired"
	EventTypeTaskSubmitted             EventType = "task.submitted"
	EventTypeReviewClaimed             EventType = "review.claimed"
	EventTypeReviewSkipped             EventType = "review.skipped"
	EventTypeReviewExpired             EventType = "review.expired"
	EventTypeTaskApproved              EventType = "task.approved"
	EventTypeTaskRejected              EventType = "task.rejected"
	EventTypeTaskRequeued              EventType = "task.requeued"
	EventTypeReviewerFeedbackSubmitted EventType = "reviewer_feedback.submitted"
)

// Event metadata keys.
const (
	MetaProjectID = "project_id"
	MetaActor     = "actor"
	MetaStatus    = "status"
	MetaReason    = "reason"
	MetaSeconds   = "seconds"
	MetaEarnings  = "earnings_cents"
	MetaRating    = "rating"
	MetaParentID  = "parent_task_id"
	MetaNewTaskID = "new_task_id"
)

type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	ResourceID string            `json:"resource_id"`
	Payload    string            `json:"payload,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// SubscribeEventsRequest narrows a subscription. Empty fields match
// everything; set fields must all match.
type SubscribeEventsRequest struct {
	EventTypes []EventType `json:"event_types,omitempty"`
	ProjectID  string      `json:"project_id,omitempty"`
	TaskID     string      `json:"task_id,omitempty"`
	Actor      string      `json:"actor,omitempty"`
}
