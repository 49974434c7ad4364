package lifecycle

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/earnings"
	"github.com/kazz187/labelguild/internal/expiration"
	"github.com/kazz187/labelguild/internal/project"
	"github.com/kazz187/labelguild/internal/schema"
	"github.com/kazz187/labelguild/internal/task"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/clog"
)

// ClaimReview starts the review pass of a submitted or completed task.
func (s *Service) ClaimReview(ctx context.Context, taskID, reviewerID string) (*task.Task, *project.Project, error) {
	if err := requireTaskID(taskID); err != nil {
		return nil, nil, err
	}
	if err := requireWorker(reviewerID); err != nil {
		return nil, nil, err
	}
	clog.AddTask(ctx, taskID, reviewerID)

	// The project is resolved before the claim is written so a lookup
	// failure leaves the task untouched.
	current, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.project(ctx, current)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.tasks.ClaimReview(ctx, taskID, reviewerID, s.now())
	if err != nil {
		return nil, nil, err
	}
	s.publish(apiv1.EventTypeReviewClaimed, t, reviewerID, nil)
	return t, p, nil
}

func (s *Service) SkipReview(ctx context.Context, taskID, reviewerID string, seconds int64) (*task.Task, error) {
	if err := requireTaskID(taskID); err != nil {
		return nil, err
	}
	if err := requireWorker(reviewerID); err != nil {
		return nil, err
	}
	clog.AddTask(ctx, taskID, reviewerID)

	now := s.now()
	t, err := s.tasks.Update(ctx, taskID, func(t *task.Task) error {
		if _, err := t.RecordReviewTime(reviewerID, seconds, now); err != nil {
			return err
		}
		return t.SkipReview(reviewerID, now)
	})
	if err != nil {
		return nil, err
	}
	s.publish(apiv1.EventTypeReviewSkipped, t, reviewerID, map[string]string{
		apiv1.MetaSeconds: itoa(t.ReviewerTimeSpent),
	})
	return t, nil
}

func (s *Service) UpdateReviewTimer(ctx context.Context, taskID, reviewerID string, seconds int64) (bool, int64, error) {
	if err := requireTaskID(taskID); err != nil {
		return false, 0, err
	}
	if err := requireWorker(reviewerID); err != nil {
		return false, 0, err
	}
	if seconds < 0 {
		return false, 0, cerr.NewError(cerr.InvalidArgument, "seconds must not be negative", nil)
	}

	var stored int64
	now := s.now()
	_, err := s.tasks.Update(ctx, taskID, func(t *task.Task) error {
		changed, err := t.RecordReviewTime(reviewerID, seconds, now)
		if err != nil {
			return err
		}
		stored = t.ReviewerTimeSpent
		if !changed {
			return errUnchanged
		}
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return false, stored, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, stored, nil
}

func (s *Service) ExpireReview(ctx context.Context, taskID, reviewerID string, reason expiration.Reason, seconds int64) (*task.Task, error) {
	if err := requireTaskID(taskID); err != nil {
		return nil, err
	}
	if err := requireWorker(reviewerID); err != nil {
		return nil, err
	}
	if err := checkReason(reason); err != nil {
		return nil, err
	}
	clog.AddTask(ctx, taskID, reviewerID)

	now := s.now()
	t, err := s.tasks.Update(ctx, taskID, func(t *task.Task) error {
		return t.ExpireReview(reviewerID, reason, seconds, now)
	})
	if err != nil {
		return nil, err
	}
	s.publishExpired(apiv1.EventTypeReviewExpired, t, reviewerID, reason, t.ReviewerTimeSpent)
	return t, nil
}

type ResolveInput struct {
	TaskID     string
	ReviewerID string
	Approve    bool
	// Values, when set on approval, replaces the attempter's answers and
	// must be complete.
	Values   schema.Values
	Rating   int32
	Feedback string
	Seconds  int64
}

// Resolve approves or rejects the task and pays the reviewer. The whole
// resolution is one store write.
func (s *Service) Resolve(ctx context.Context, in ResolveInput) (*task.Task, error) {
	if err := requireTaskID(in.TaskID); err != nil {
		return nil, err
	}
	if err := requireWorker(in.ReviewerID); err != nil {
		return nil, err
	}
	if in.Seconds < 0 {
		return nil, cerr.NewError(cerr.InvalidArgument, "seconds must not be negative", nil)
	}
	clog.AddTask(ctx, in.TaskID, in.ReviewerID)

	current, err := s.tasks.Get(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	p, err := s.project(ctx, current)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var expired *expiration.Outcome
	t, err := s.tasks.Update(ctx, in.TaskID, func(t *task.Task) error {
		if err := t.CheckReviewer(in.ReviewerID); err != nil {
			return err
		}
		seconds := max(in.Seconds, t.ReviewerTimeSpent)
		if out := recheck(p.ReviewerLimits(), seconds, t.ReviewerStartedAt, now); out.Expired() {
			if err := t.ExpireReview(in.ReviewerID, out.Reason, seconds, now); err != nil {
				return err
			}
			expired = &out
			return nil
		}
		if in.Approve && in.Values != nil {
			if err := checkComplete(&p.Schema, in.Values); err != nil {
				return err
			}
		}
		amount, err := earnings.Compute(p.ReviewerPay, seconds, p.ReviewTaskTime)
		if err != nil {
			return err
		}
		return t.Resolve(task.Resolution{
			ReviewerID: in.ReviewerID,
			Approve:    in.Approve,
			Values:     in.Values,
			Rating:     in.Rating,
			Feedback:   in.Feedback,
			Seconds:    seconds,
			Earnings:   amount,
		}, now)
	})
	if err != nil {
		return nil, err
	}
	if expired != nil {
		slog.InfoContext(ctx, "review resolution arrived after expiration", "task_id", t.ID, "reviewer_id", in.ReviewerID, "reason", expired.Reason)
		s.publishExpired(apiv1.EventTypeReviewExpired, t, in.ReviewerID, expired.Reason, t.ReviewerTimeSpent)
		return nil, cerr.NewError(cerr.DeadlineExceeded, "review expired before resolution", nil).
			AddViolation("expired", string(expired.Reason))
	}

	eventType := apiv1.EventTypeTaskRejected
	if in.Approve {
		eventType = apiv1.EventTypeTaskApproved
	}
	s.publish(eventType, t, in.ReviewerID, map[string]string{
		apiv1.MetaSeconds:  itoa(t.ReviewerTimeSpent),
		apiv1.MetaEarnings: itoa(centsOf(t.ReviewerEarnings)),
		apiv1.MetaRating:   itoa(int64(t.ReviewRating)),
	})
	return t, nil
}

// SubmitReviewerFeedback lets an operator rate the review itself.
func (s *Service) SubmitReviewerFeedback(ctx context.Context, taskID, operatorID string, rating int32, feedback string) (*task.Task, error) {
	if err := requireTaskID(taskID); err != nil {
		return nil, err
	}
	if err := requireWorker(operatorID); err != nil {
		return nil, err
	}
	clog.AddTask(ctx, taskID, operatorID)

	now := s.now()
	t, err := s.tasks.Update(ctx, taskID, func(t *task.Task) error {
		return t.RecordReviewerFeedback(operatorID, rating, feedback, now)
	})
	if err != nil {
		return nil, err
	}
	s.publish(apiv1.EventTypeReviewerFeedbackSubmitted, t, operatorID, map[string]string{
		apiv1.MetaRating: itoa(int64(rating)),
	})
	return t, nil
}
