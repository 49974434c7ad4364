package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/earnings"
	"github.com/kazz187/labelguild/internal/expiration"
	"github.com/kazz187/labelguild/internal/project"
	"github.com/kazz187/labelguild/internal/schema"
	"github.com/kazz187/labelguild/internal/task"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/clog"
)

type SubmitInput struct {
	TaskID   string
	WorkerID string
	Values   schema.Values
	Seconds  int64
}

// Submit finalizes the attempter pass. The answers are revalidated against
// the project schema and the deadlines are rechecked against the stored
// record; either failure leaves the answers unwritten.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*task.Task, error) {
	if err := requireTaskID(in.TaskID); err != nil {
		return nil, err
	}
	if err := requireWorker(in.WorkerID); err != nil {
		return nil, err
	}
	if in.Seconds < 0 {
		return nil, cerr.NewError(cerr.InvalidArgument, "seconds must not be negative", nil)
	}
	clog.AddTask(ctx, in.TaskID, in.WorkerID)

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
		if err := t.CheckHolder(in.WorkerID); err != nil {
			return err
		}
		seconds := max(in.Seconds, t.AnnotatorTimeSpent)
		if out := recheck(p.AnnotatorLimits(), seconds, t.AnnotatorStartedAt, now); out.Expired() {
			if err := t.Expire(in.WorkerID, out.Reason, seconds, now); err != nil {
				return err
			}
			expired = &out
			return nil
		}
		if err := checkComplete(&p.Schema, in.Values); err != nil {
			return err
		}
		amount, err := earnings.Compute(p.AnnotatorPay, seconds, p.MaxTaskTime)
		if err != nil {
			return err
		}
		return t.Submit(task.Submission{
			WorkerID: in.WorkerID,
			Values:   in.Values,
			Seconds:  seconds,
			Earnings: amount,
			Target:   submitTarget(p),
		}, now)
	})
	if err != nil {
		return nil, err
	}
	if expired != nil {
		slog.InfoContext(ctx, "submission arrived after expiration", "task_id", t.ID, "worker_id", in.WorkerID, "reason", expired.Reason)
		s.publishExpired(apiv1.EventTypeTaskExpired, t, in.WorkerID, expired.Reason, t.AnnotatorTimeSpent)
		return nil, cerr.NewError(cerr.DeadlineExceeded, "task expired before submission", nil).
			AddViolation("expired", string(expired.Reason))
	}

	s.publish(apiv1.EventTypeTaskSubmitted, t, in.WorkerID, map[string]string{
		apiv1.MetaSeconds:  itoa(t.AnnotatorTimeSpent),
		apiv1.MetaEarnings: itoa(centsOf(t.AnnotatorEarnings)),
	})
	return t, nil
}

func submitTarget(p *project.Project) task.Status {
	if p.ReviewEnabled {
		return task.StatusSubmitted
	}
	return task.StatusCompleted
}

// recheck runs the same policy the worker's timer runs. The warning has no
// meaning here, so it counts as already given.
func recheck(limits expiration.Limits, seconds int64, startedAt, now time.Time) expiration.Outcome {
	return expiration.Evaluate(limits, expiration.State{
		Elapsed:   seconds,
		StartedAt: startedAt,
		Now:       now,
		Warned:    true,
	})
}

// checkComplete rejects an incomplete answer bag with one violation per
// missing required field.
func checkComplete(tree *schema.Tree, values schema.Values) error {
	if schema.IsComplete(tree, values) {
		return nil
	}
	e := cerr.NewError(cerr.InvalidArgument, "submission is incomplete", nil)
	for _, id := range schema.Incomplete(tree, values) {
		e.AddFieldViolation(id, "required", "field "+id+" is required")
	}
	return e
}
