package client

import (
	"context"
	"errors"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/expiration"
	"github.com/kazz187/labelguild/internal/session"
	"github.com/kazz187/labelguild/internal/timer"
	"github.com/kazz187/labelguild/pkg/cerr"
)

// ErrNotClaimed is returned by Open when another worker won the claim.
var ErrNotClaimed = errors.New("task is no longer available")

type Role int

const (
	RoleAnnotator Role = iota
	RoleReviewer
)

func (r Role) String() string {
	if r == RoleReviewer {
		return "reviewer"
	}
	return "annotator"
}

// sessionStore binds a session to one task and role on the server.
type sessionStore struct {
	client *TaskClient
	taskID string
	role   Role
}

func (s *sessionStore) SaveTime(ctx context.Context, seconds int64) error {
	var err error
	if s.role == RoleReviewer {
		_, err = s.client.UpdateReviewTimer(ctx, s.taskID, seconds)
	} else {
		_, err = s.client.UpdateTimer(ctx, s.taskID, seconds)
	}
	return err
}

func (s *sessionStore) NotifyExpired(ctx context.Context, reason expiration.Reason, seconds int64) error {
	var err error
	if s.role == RoleReviewer {
		_, err = s.client.ExpireReview(ctx, s.taskID, reason, seconds)
	} else {
		_, err = s.client.Expire(ctx, s.taskID, reason, seconds)
	}
	return err
}

func (s *sessionStore) Release(ctx context.Context, seconds int64) error {
	var err error
	if s.role == RoleReviewer {
		_, err = s.client.SkipReview(ctx, s.taskID, seconds)
	} else {
		_, err = s.client.Skip(ctx, s.taskID, seconds)
	}
	return err
}

// Work is a claimed task with its running session.
type Work struct {
	*session.Session
	Role   Role
	Task   *apiv1.Task
	Schema *apiv1.GetTaskSchemaResponse

	client *TaskClient
}

// Open claims taskID in role and starts a session resumed from the time the
// server already holds. The session does not tick until Run or Tick is
// called.
func (c *TaskClient) Open(ctx context.Context, role Role, taskID string, clock timer.Clock, opts ...session.Option) (*Work, error) {
	var (
		t      *apiv1.Task
		limits expiration.Limits
	)
	switch role {
	case RoleReviewer:
		resp, err := c.ClaimReview(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if !resp.Claimed {
			return nil, ErrNotClaimed
		}
		t, limits = resp.Task, resp.Limits
	default:
		resp, err := c.Claim(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if !resp.Claimed {
			return nil, ErrNotClaimed
		}
		t, limits = resp.Task, resp.Limits
	}

	schema, err := c.Schema(ctx, taskID)
	if err != nil {
		return nil, err
	}

	var tm *timer.Timer
	if role == RoleReviewer {
		tm = timer.New(limits, t.ReviewerStartedAt, t.ReviewerTimeSpent, clock)
	} else {
		tm = timer.New(limits, t.AnnotatorStartedAt, t.AnnotatorTimeSpent, clock)
	}
	store := &sessionStore{client: c, taskID: taskID, role: role}
	return &Work{
		Session: session.New(taskID, tm, store, opts...),
		Role:    role,
		Task:    t,
		Schema:  schema,
		client:  c,
	}, nil
}

func (w *Work) requireRole(role Role) error {
	if w.Role != role {
		return cerr.NewError(cerr.FailedPrecondition, "session is open as "+w.Role.String(), nil)
	}
	return nil
}

// Submit finalizes an annotator session.
func (w *Work) Submit(ctx context.Context, values map[string]any) (*apiv1.SubmitTaskResponse, error) {
	if err := w.requireRole(RoleAnnotator); err != nil {
		return nil, err
	}
	var resp *apiv1.SubmitTaskResponse
	err := w.Finalize(ctx, func(ctx context.Context, seconds int64) error {
		var err error
		resp, err = w.client.Submit(ctx, w.TaskID(), values, seconds)
		return err
	})
	return resp, err
}

// Approve finalizes a review session. values may be nil to keep the
// annotator's answers.
func (w *Work) Approve(ctx context.Context, values map[string]any, rating int32, feedback string) (*apiv1.ApproveTaskResponse, error) {
	if err := w.requireRole(RoleReviewer); err != nil {
		return nil, err
	}
	var resp *apiv1.ApproveTaskResponse
	err := w.Finalize(ctx, func(ctx context.Context, seconds int64) error {
		var err error
		resp, err = w.client.Approve(ctx, &apiv1.ApproveTaskRequest{
			TaskID:   w.TaskID(),
			Values:   values,
			Rating:   rating,
			Seconds:  seconds,
			Feedback: feedback,
		})
		return err
	})
	return resp, err
}

func (w *Work) Reject(ctx context.Context, rating int32, feedback string) (*apiv1.RejectTaskResponse, error) {
	if err := w.requireRole(RoleReviewer); err != nil {
		return nil, err
	}
	var resp *apiv1.RejectTaskResponse
	err := w.Finalize(ctx, func(ctx context.Context, seconds int64) error {
		var err error
		resp, err = w.client.Reject(ctx, &apiv1.RejectTaskRequest{
			TaskID:   w.TaskID(),
			Rating:   rating,
			Seconds:  seconds,
			Feedback: feedback,
		})
		return err
	})
	return resp, err
}
