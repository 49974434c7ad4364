package apiv1

import (
	"time"

	"github.com/kazz187/labelguild/internal/expiration"
	"github.com/kazz187/labelguild/internal/schema"
)

type Task struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	Status      string `json:"status"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	AnnotatorID string `json:"annotator_id,omitempty"`
	ReviewedBy  string `json:"reviewed_by,omitempty"`

	AnnotatorTimeSpent     int64  `json:"annotator_time_spent"`
	ReviewerTimeSpent      int64  `json:"reviewer_time_spent"`
	AnnotatorEarningsCents *int64 `json:"annotator_earnings_cents,omitempty"`
	ReviewerEarningsCents  *int64 `json:"reviewer_earnings_cents,omitempty"`

	AnnotatorStartedAt time.Time `json:"annotator_started_at,omitzero"`
	ReviewerStartedAt  time.Time `json:"reviewer_started_at,omitzero"`
	SubmittedAt        time.Time `json:"submitted_at,omitzero"`
	ReviewedAt         time.Time `json:"reviewed_at,omitzero"`

	ReviewRating     int32  `json:"review_rating,omitempty"`
	ReviewFeedback   string `json:"review_feedback,omitempty"`
	ReviewerRating   int32  `json:"reviewer_rating,omitempty"`
	ReviewerFeedback string `json:"reviewer_feedback,omitempty"`

	ExpiredCount       int32     `json:"expired_count,omitempty"`
	ReviewExpiredCount int32     `json:"review_expired_count,omitempty"`
	LastExpiredAt      time.Time `json:"last_expired_at,omitzero"`
	LastExpireReason   string    `json:"last_expire_reason,omitempty"`

	ParentTaskID string            `json:"parent_task_id,omitempty"`
	Payload      map[string]any    `json:"payload,omitempty"`
	Values       map[string]any    `json:"values,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type Pagination struct {
	Limit  int32 `json:"limit,omitempty"`
	Offset int32 `json:"offset,omitempty"`
}

type PaginationResponse struct {
	Total  int32 `json:"total"`
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

type CreateTaskRequest struct {
	ProjectID string            `json:"project_id"`
	Payload   map[string]any    `json:"payload,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type CreateTaskResponse struct {
	Task *Task `json:"task"`
}

type GetTaskRequest struct {
	ID string `json:"id"`
}

type GetTaskResponse struct {
	Task *Task `json:"task"`
}

type ListTasksRequest struct {
	ProjectID    string      `json:"project_id,omitempty"`
	Status       string      `json:"status,omitempty"`
	AssignedTo   string      `json:"assigned_to,omitempty"`
	ReviewedBy   string      `json:"reviewed_by,omitempty"`
	ParentTaskID string      `json:"parent_task_id,omitempty"`
	Pagination   *Pagination `json:"pagination,omitempty"`
}

type ListTasksResponse struct {
	Tasks      []*Task             `json:"tasks"`
	Pagination *PaginationResponse `json:"pagination"`
}

type GetTaskSchemaRequest struct {
	TaskID string `json:"task_id"`
}

type GetTaskSchemaResponse struct {
	TaskID        string            `json:"task_id"`
	ProjectID     string            `json:"project_id"`
	Schema        schema.Tree       `json:"schema"`
	Payload       map[string]any    `json:"payload,omitempty"`
	Limits        expiration.Limits `json:"limits"`
	ReviewLimits  expiration.Limits `json:"review_limits"`
	ReviewEnabled bool              `json:"review_enabled"`
}

// ClaimTaskResponse reports a lost race as Claimed=false rather than an error.
type ClaimTaskRequest struct {
	TaskID string `json:"task_id"`
}

type ClaimTaskResponse struct {
	Claimed bool              `json:"claimed"`
	Message string            `json:"message,omitempty"`
	Task    *Task             `json:"task,omitempty"`
	Limits  expiration.Limits `json:"limits"`
}

type SkipTaskRequest struct {
	TaskID  string `json:"task_id"`
	// Seconds is the final elapsed time of the released session, if known.
	Seconds int64  `json:"seconds,omitempty"`
}

type SkipTaskResponse struct {
	Task *Task `json:"task"`
}

type UpdateTimerRequest struct {
	TaskID  string `json:"task_id"`
	Seconds int64  `json:"seconds"`
}

type UpdateTimerResponse struct {
	Persisted bool  `json:"persisted"`
	Seconds   int64 `json:"seconds"`
}

type ExpireTaskRequest struct {
	TaskID  string `json:"task_id"`
	Reason  string `json:"reason"`
	Seconds int64  `json:"seconds"`
}

type ExpireTaskResponse struct {
	Task *Task `json:"task"`
}

type SubmitTaskRequest struct {
	TaskID  string         `json:"task_id"`
	Values  map[string]any `json:"values"`
	Seconds int64          `json:"seconds"`
}

type SubmitTaskResponse struct {
	EarningsCents int64 `json:"earnings_cents"`
	TimeSpent     int64 `json:"time_spent"`
	Task          *Task `json:"task"`
}

type ClaimReviewRequest struct {
	TaskID string `json:"task_id"`
}

type ClaimReviewResponse struct {
	Claimed bool              `json:"claimed"`
	Message string            `json:"message,omitempty"`
	Task    *Task             `json:"task,omitempty"`
	Limits  expiration.Limits `json:"limits"`
}

type SkipReviewRequest struct {
	TaskID  string `json:"task_id"`
	// Seconds is the final elapsed time of the released session, if known.
	Seconds int64  `json:"seconds,omitempty"`
}

type SkipReviewResponse struct {
	Task *Task `json:"task"`
}

type UpdateReviewTimerRequest struct {
	TaskID  string `json:"task_id"`
	Seconds int64  `json:"seconds"`
}

type UpdateReviewTimerResponse struct {
	Persisted bool  `json:"persisted"`
	Seconds   int64 `json:"seconds"`
}

type ExpireReviewRequest struct {
	TaskID  string `json:"task_id"`
	Reason  string `json:"reason"`
	Seconds int64  `json:"seconds"`
}

type ExpireReviewResponse struct {
	Task *Task `json:"task"`
}

type ApproveTaskRequest struct {
	TaskID   string         `json:"task_id"`
	Values   map[string]any `json:"values,omitempty"`
	Rating   int32          `json:"rating"`
	Seconds  int64          `json:"seconds"`
	Feedback string         `json:"feedback,omitempty"`
}

type ApproveTaskResponse struct {
	EarningsCents int64 `json:"earnings_cents"`
	TimeSpent     int64 `json:"time_spent"`
	Task          *Task `json:"task"`
}

type RejectTaskRequest struct {
	TaskID   string `json:"task_id"`
	Rating   int32  `json:"rating,omitempty"`
	Seconds  int64  `json:"seconds"`
	Feedback string `json:"feedback,omitempty"`
}

type RejectTaskResponse struct {
	EarningsCents int64 `json:"earnings_cents"`
	Task          *Task `json:"task"`
}

type RequeueTaskRequest struct {
	TaskID string `json:"task_id"`
}

type RequeueTaskResponse struct {
	NewTaskID string `json:"new_task_id"`
	Frozen    *Task  `json:"frozen"`
	Task      *Task  `json:"task"`
}

type SubmitReviewerFeedbackRequest struct {
	TaskID   string `json:"task_id"`
	Rating   int32  `json:"rating"`
	Feedback string `json:"feedback,omitempty"`
}

type SubmitReviewerFeedbackResponse struct {
	Task *Task `json:"task"`
}

type TaskLog struct {
	ID        string            `json:"id"`
	TaskID    string            `json:"task_id"`
	Event     string            `json:"event"`
	Actor     string            `json:"actor,omitempty"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type ListTaskLogsRequest struct {
	TaskID     string      `json:"task_id"`
	Actor      string      `json:"actor,omitempty"`
	Events     []string    `json:"events,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type ListTaskLogsResponse struct {
	Logs       []*TaskLog          `json:"logs"`
	Pagination *PaginationResponse `json:"pagination"`
}
