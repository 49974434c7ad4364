package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/expiration"
	"github.com/kazz187/labelguild/internal/project"
	"github.com/kazz187/labelguild/internal/task"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/clog"
)

// CreateTask seeds a pending task in a configured project.
func (s *Service) CreateTask(ctx context.Context, projectID string, payload map[string]any, metadata map[string]string) (*task.Task, error) {
	if projectID == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "project_id is required", nil)
	}
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	now := s.now()
	t := &task.Task{
		ID:        ulid.Make().String(),
		ProjectID: projectID,
		Status:    task.StatusPending,
		Payload:   payload,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	s.publish(apiv1.EventTypeTaskCreated, t, "", nil)
	return t, nil
}

// Schema returns the task together with the project it is worked under.
func (s *Service) Schema(ctx context.Context, taskID string) (*task.Task, *project.Project, error) {
	if err := requireTaskID(taskID); err != nil {
		return nil, nil, err
	}
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.project(ctx, t)
	if err != nil {
		return nil, nil, err
	}
	return t, p, nil
}

// Claim assigns the task to workerID. Losing the race returns cerr.Aborted.
func (s *Service) Claim(ctx context.Context, taskID, workerID string) (*task.Task, *project.Project, error) {
	if err := requireTaskID(taskID); err != nil {
		return nil, nil, err
	}
	if err := requireWorker(workerID); err != nil {
		return nil, nil, err
	}
	clog.AddTask(ctx, taskID, workerID)

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
	t, err := s.tasks.Claim(ctx, taskID, workerID, s.now())
	if err != nil {
		return nil, nil, err
	}
	s.publish(apiv1.EventTypeTaskClaimed, t, workerID, map[string]string{
		apiv1.MetaSeconds: itoa(t.AnnotatorTimeSpent),
	})
	return t, p, nil
}

// Skip releases the claim held by workerID, keeping the time spent.
func (s *Service) Skip(ctx context.Context, taskID, workerID string, seconds int64) (*task.Task, error) {
	if err := requireTaskID(taskID); err != nil {
		return nil, err
	}
	if err := requireWorker(workerID); err != nil {
		return nil, err
	}
	clog.AddTask(ctx, taskID, workerID)

	now := s.now()
	t, err := s.tasks.Update(ctx, taskID, func(t *task.Task) error {
		if _, err := t.RecordTime(workerID, seconds, now); err != nil {
			return err
		}
		return t.Skip(workerID, now)
	})
	if err != nil {
		return nil, err
	}
	s.publish(apiv1.EventTypeTaskSkipped, t, workerID, map[string]string{
		apiv1.MetaSeconds: itoa(t.AnnotatorTimeSpent),
	})
	return t, nil
}

// UpdateTimer is the autosave of the attempter's elapsed time. Values not
// above the stored one are acknowledged without a write.
func (s *Service) UpdateTimer(ctx context.Context, taskID, workerID string, seconds int64) (bool, int64, error) {
	if err := requireTaskID(taskID); err != nil {
		return false, 0, err
	}
	if err := requireWorker(workerID); err != nil {
		return false, 0, err
	}
	if seconds < 0 {
		return false, 0, cerr.NewError(cerr.InvalidArgument, "seconds must not be negative", nil)
	}

	var stored int64
	now := s.now()
	_, err := s.tasks.Update(ctx, taskID, func(t *task.Task) error {
		changed, err := t.RecordTime(workerID, seconds, now)
		if err != nil {
			return err
		}
		stored = t.AnnotatorTimeSpent
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

// Expire records a client-detected expiration and releases the claim.
func (s *Service) Expire(ctx context.Context, taskID, workerID string, reason expiration.Reason, seconds int64) (*task.Task, error) {
	if err := requireTaskID(taskID); err != nil {
		return nil, err
	}
	if err := requireWorker(workerID); err != nil {
		return nil, err
	}
	if err := checkReason(reason); err != nil {
		return nil, err
	}
	clog.AddTask(ctx, taskID, workerID)

	now := s.now()
	t, err := s.tasks.Update(ctx, taskID, func(t *task.Task) error {
		return t.Expire(workerID, reason, seconds, now)
	})
	if err != nil {
		return nil, err
	}
	s.publishExpired(apiv1.EventTypeTaskExpired, t, workerID, reason, t.AnnotatorTimeSpent)
	return t, nil
}

func (s *Service) publishExpired(eventType apiv1.EventType, t *task.Task, actor string, reason expiration.Reason, seconds int64) {
	s.publish(eventType, t, actor, map[string]string{
		apiv1.MetaReason:  string(reason),
		apiv1.MetaSeconds: itoa(seconds),
	})
}

func checkReason(reason expiration.Reason) error {
	switch reason {
	case expiration.ReasonTask, expiration.ReasonAbsolute:
		return nil
	}
	return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown expiration reason %q", reason), nil)
}
