package task

import (
	"fmt"
	"time"

	"github.com/kazz187/labelguild/internal/earnings"
	"github.com/kazz187/labelguild/internal/expiration"
	"github.com/kazz187/labelguild/internal/schema"
	"github.com/kazz187/labelguild/pkg/cerr"
)

const msgNotAvailable = "task is no longer available"

// Claim is the compare-and-set applied by repositories: it only succeeds on
// a pending task nobody holds.
func (t *Task) Claim(workerID string, now time.Time) error {
	if workerID == "" {
		return cerr.NewError(cerr.InvalidArgument, "worker id is required", nil)
	}
	if t.AssignedTo != "" || t.Status != StatusPending {
		return cerr.NewError(cerr.Aborted, msgNotAvailable, nil)
	}
	t.Status = StatusInProgress
	t.AssignedTo = workerID
	t.AnnotatorStartedAt = now
	t.UpdatedAt = now
	return nil
}

// CheckHolder fails unless workerID holds the in-progress claim.
func (t *Task) CheckHolder(workerID string) error {
	if t.Status != StatusInProgress {
		if t.AnnotatorEarnings != nil {
			return cerr.NewError(cerr.FailedPrecondition, "task was already submitted", nil)
		}
		return cerr.NewError(cerr.FailedPrecondition, fmt.Sprintf("task is %s, not in progress", t.Status), nil)
	}
	if t.AssignedTo != workerID {
		return cerr.NewError(cerr.PermissionDenied, "task is not claimed by this worker", nil)
	}
	return nil
}

// Skip releases the claim. Time spent is kept so the next claim resumes it.
func (t *Task) Skip(workerID string, now time.Time) error {
	if err := t.CheckHolder(workerID); err != nil {
		return err
	}
	if err := checkTransition(t.Status, EventSkip, StatusPending); err != nil {
		return err
	}
	t.Status = StatusPending
	t.AssignedTo = ""
	t.UpdatedAt = now
	return nil
}

// RecordTime stores an autosaved attempter time. Values not above the stored
// one are ignored and reported as unchanged.
func (t *Task) RecordTime(workerID string, seconds int64, now time.Time) (bool, error) {
	if err := t.CheckHolder(workerID); err != nil {
		return false, err
	}
	if seconds <= t.AnnotatorTimeSpent {
		return false, nil
	}
	t.AnnotatorTimeSpent = seconds
	t.UpdatedAt = now
	return true, nil
}

// Expire releases a claim whose session ran out of time.
func (t *Task) Expire(workerID string, reason expiration.Reason, seconds int64, now time.Time) error {
	if err := t.CheckHolder(workerID); err != nil {
		return err
	}
	if err := checkTransition(t.Status, EventExpire, StatusPending); err != nil {
		return err
	}
	t.Status = StatusPending
	t.AssignedTo = ""
	t.AnnotatorTimeSpent = max(t.AnnotatorTimeSpent, seconds)
	t.ExpiredCount++
	t.LastExpiredAt = now
	t.LastExpireReason = reason
	t.UpdatedAt = now
	return nil
}

// Submission is the finalized attempter result.
type Submission struct {
	WorkerID string
	Values   schema.Values
	Seconds  int64
	Earnings earnings.Cents
	Target   Status
}

// Submit finalizes the attempter pass. Earnings are written once; a second
// submit fails without touching them.
func (t *Task) Submit(s Submission, now time.Time) error {
	if err := t.CheckHolder(s.WorkerID); err != nil {
		return err
	}
	if t.AnnotatorEarnings != nil {
		return cerr.NewError(cerr.FailedPrecondition, "task was already submitted", nil)
	}
	if err := checkTransition(t.Status, EventSubmit, s.Target); err != nil {
		return err
	}
	amount := s.Earnings
	t.Status = s.Target
	t.Values = s.Values
	t.AnnotatorTimeSpent = max(t.AnnotatorTimeSpent, s.Seconds)
	t.AnnotatorEarnings = &amount
	t.AnnotatorID = s.WorkerID
	t.AssignedTo = ""
	t.SubmittedAt = now
	t.UpdatedAt = now
	return nil
}

// ClaimReview is the reviewer compare-and-set. The attempter cannot review
// their own work.
func (t *Task) ClaimReview(reviewerID string, now time.Time) error {
	if reviewerID == "" {
		return cerr.NewError(cerr.InvalidArgument, "reviewer id is required", nil)
	}
	if !t.Status.Reviewable() {
		return cerr.NewError(cerr.FailedPrecondition, fmt.Sprintf("task is %s, not awaiting review", t.Status), nil)
	}
	if t.AnnotatorID == reviewerID {
		return cerr.NewError(cerr.FailedPrecondition, "attempter cannot review their own task", nil)
	}
	if t.ReviewedBy != "" {
		return cerr.NewError(cerr.Aborted, "task is already under review", nil)
	}
	t.ReviewedBy = reviewerID
	t.ReviewerStartedAt = now
	t.UpdatedAt = now
	return nil
}

// CheckReviewer fails unless reviewerID holds the review of a reviewable task.
func (t *Task) CheckReviewer(reviewerID string) error {
	if !t.Status.Reviewable() {
		if t.ReviewerEarnings != nil {
			return cerr.NewError(cerr.FailedPrecondition, "review was already resolved", nil)
		}
		return cerr.NewError(cerr.FailedPrecondition, fmt.Sprintf("task is %s, not awaiting review", t.Status), nil)
	}
	if t.ReviewedBy != reviewerID {
		return cerr.NewError(cerr.PermissionDenied, "task is not claimed for review by this reviewer", nil)
	}
	return nil
}

func (t *Task) SkipReview(reviewerID string, now time.Time) error {
	if err := t.CheckReviewer(reviewerID); err != nil {
		return err
	}
	t.ReviewedBy = ""
	t.UpdatedAt = now
	return nil
}

func (t *Task) RecordReviewTime(reviewerID string, seconds int64, now time.Time) (bool, error) {
	if err := t.CheckReviewer(reviewerID); err != nil {
		return false, err
	}
	if seconds <= t.ReviewerTimeSpent {
		return false, nil
	}
	t.ReviewerTimeSpent = seconds
	t.UpdatedAt = now
	return true, nil
}

func (t *Task) ExpireReview(reviewerID string, reason expiration.Reason, seconds int64, now time.Time) error {
	if err := t.CheckReviewer(reviewerID); err != nil {
		return err
	}
	t.ReviewedBy = ""
	t.ReviewerTimeSpent = max(t.ReviewerTimeSpent, seconds)
	t.ReviewExpiredCount++
	t.LastExpiredAt = now
	t.LastExpireReason = reason
	t.UpdatedAt = now
	return nil
}

// Resolution is the outcome of a review pass.
type Resolution struct {
	ReviewerID string
	Approve    bool
	// Values replaces the attempter's answers on approval when set.
	Values   schema.Values
	Rating   int32
	Feedback string
	Seconds  int64
	Earnings earnings.Cents
}

// Resolve approves or rejects. Approval needs a rating, rejection accepts
// none; a given rating must be between 1 and 5.
func (t *Task) Resolve(r Resolution, now time.Time) error {
	if err := t.CheckReviewer(r.ReviewerID); err != nil {
		return err
	}
	if t.ReviewerEarnings != nil {
		return cerr.NewError(cerr.FailedPrecondition, "review was already resolved", nil)
	}
	if r.Approve && r.Rating == 0 {
		return cerr.NewError(cerr.InvalidArgument, "rating is required to approve", nil)
	}
	if err := checkRating(r.Rating); err != nil {
		return err
	}
	event, to := EventReject, StatusRejected
	if r.Approve {
		event, to = EventApprove, StatusApproved
	}
	if err := checkTransition(t.Status, event, to); err != nil {
		return err
	}
	amount := r.Earnings
	t.Status = to
	if r.Approve && r.Values != nil {
		t.Values = r.Values
	}
	t.ReviewRating = r.Rating
	t.ReviewFeedback = r.Feedback
	t.ReviewerTimeSpent = max(t.ReviewerTimeSpent, r.Seconds)
	t.ReviewerEarnings = &amount
	t.ReviewedAt = now
	t.UpdatedAt = now
	return nil
}

// Freeze turns a rejected task into its immutable requeued record.
func (t *Task) Freeze(now time.Time) error {
	if err := checkTransition(t.Status, EventRequeue, StatusRejectedRequeued); err != nil {
		return err
	}
	t.Status = StatusRejectedRequeued
	t.UpdatedAt = now
	return nil
}

// Sibling returns the fresh pending task that replaces a frozen one. Time,
// earnings and answers start over; payload and project carry across.
func (t *Task) Sibling(id string, now time.Time) *Task {
	src := t.Clone()
	return &Task{
		ID:           id,
		ProjectID:    src.ProjectID,
		Status:       StatusPending,
		ParentTaskID: t.ID,
		Payload:      src.Payload,
		Metadata:     src.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// RecordReviewerFeedback stores the administrative rating of a review. It
// does not change the status and may happen once.
func (t *Task) RecordReviewerFeedback(by string, rating int32, feedback string, now time.Time) error {
	if !t.Status.Reviewed() {
		return cerr.NewError(cerr.FailedPrecondition, fmt.Sprintf("task is %s, not reviewed", t.Status), nil)
	}
	if t.ReviewerRating != 0 {
		return cerr.NewError(cerr.FailedPrecondition, "reviewer feedback was already submitted", nil)
	}
	if rating == 0 {
		return cerr.NewError(cerr.InvalidArgument, "rating is required", nil)
	}
	if err := checkRating(rating); err != nil {
		return err
	}
	t.ReviewerRating = rating
	t.ReviewerFeedback = feedback
	t.FeedbackBy = by
	t.UpdatedAt = now
	return nil
}

func checkRating(rating int32) error {
	if rating < 0 || rating > 5 {
		return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("rating must be between 1 and 5, got %d", rating), nil)
	}
	return nil
}
