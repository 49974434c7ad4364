package lifecycle

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/task"
	"github.com/kazz187/labelguild/pkg/clog"
)

// Requeue freezes a rejected task and spawns its pending sibling in one
// store operation. It cannot be undone.
func (s *Service) Requeue(ctx context.Context, taskID, operatorID string) (frozen, spawned *task.Task, err error) {
	if err := requireTaskID(taskID); err != nil {
		return nil, nil, err
	}
	if err := requireWorker(operatorID); err != nil {
		return nil, nil, err
	}
	clog.AddTask(ctx, taskID, operatorID)

	now := s.now()
	frozen, spawned, err = s.tasks.Requeue(ctx, taskID, func(t *task.Task) (*task.Task, error) {
		if err := t.Freeze(now); err != nil {
			return nil, err
		}
		return t.Sibling(ulid.Make().String(), now), nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.publish(apiv1.EventTypeTaskRequeued, frozen, operatorID, map[string]string{
		apiv1.MetaNewTaskID: spawned.ID,
	})
	s.publish(apiv1.EventTypeTaskCreated, spawned, operatorID, map[string]string{
		apiv1.MetaParentID: frozen.ID,
	})
	return frozen, spawned, nil
}
