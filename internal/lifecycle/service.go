// Package lifecycle runs the task state machine on top of the task store:
// claims, timed sessions reported by workers, submission, review and
// requeue.
package lifecycle

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/earnings"
	"github.com/kazz187/labelguild/internal/eventbus"
	"github.com/kazz187/labelguild/internal/project"
	"github.com/kazz187/labelguild/internal/task"
	"github.com/kazz187/labelguild/pkg/cerr"
)

// errUnchanged aborts a store update that would write nothing new.
var errUnchanged = errors.New("unchanged")

type Service struct {
	tasks    task.Repository
	projects project.Repository
	eventBus *eventbus.Bus
	now      func() time.Time
}

type Option func(*Service)

// WithNow replaces the wall clock used for timestamps and deadline checks.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(tasks task.Repository, projects project.Repository, eventBus *eventbus.Bus, opts ...Option) *Service {
	s := &Service{
		tasks:    tasks,
		projects: projects,
		eventBus: eventBus,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) project(ctx context.Context, t *task.Task) (*project.Project, error) {
	p, err := s.projects.Get(ctx, t.ProjectID)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, cerr.NewError(cerr.FailedPrecondition, "project of the task is not configured", err)
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) publish(eventType apiv1.EventType, t *task.Task, actor string, extra map[string]string) {
	meta := map[string]string{
		apiv1.MetaProjectID: t.ProjectID,
		apiv1.MetaStatus:    string(t.Status),
	}
	if actor != "" {
		meta[apiv1.MetaActor] = actor
	}
	for k, v := range extra {
		meta[k] = v
	}
	s.eventBus.PublishNew(eventType, t.ID, "", meta)
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func centsOf(c *earnings.Cents) int64 {
	if c == nil {
		return 0
	}
	return int64(*c)
}

func requireWorker(workerID string) error {
	if workerID == "" {
		return cerr.NewError(cerr.Unauthenticated, "worker identity is required", nil).
			AddViolation("worker_required", apiv1.WorkerHeader+" header is missing")
	}
	return nil
}

func requireTaskID(id string) error {
	if id == "" {
		return cerr.NewError(cerr.InvalidArgument, "task_id is required", nil)
	}
	return nil
}
