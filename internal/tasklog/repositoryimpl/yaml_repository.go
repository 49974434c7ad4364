package repositoryimpl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/labelguild/internal/tasklog"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/storage"
)

const prefix = "task_logs"

// YAMLRepository keeps one directory per task and one file per entry. Entry
// ids are ULIDs, so file name order is time order.
type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func taskDir(taskID string) string {
	return prefix + "/" + taskID
}

func (r *YAMLRepository) Append(ctx context.Context, l *tasklog.TaskLog) error {
	if l.TaskID == "" || l.ID == "" {
		return cerr.NewError(cerr.InvalidArgument, "task log needs a task and an id", nil)
	}
	data, err := yaml.Marshal(l)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal task log: %w", err))
	}
	key := fmt.Sprintf("%s/%s.yaml", taskDir(l.TaskID), l.ID)
	if err := r.storage.CreateExclusive(ctx, key, data); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return cerr.NewError(cerr.AlreadyExists, "task log already exists", err)
		}
		return cerr.WrapStorageWriteError("task_log", err)
	}
	return nil
}

func (r *YAMLRepository) List(ctx context.Context, q tasklog.Query) (*tasklog.Page, error) {
	var logs []*tasklog.TaskLog
	err := storage.Walk(ctx, r.storage, taskDir(q.TaskID), func(path string, data []byte) error {
		var l tasklog.TaskLog
		if err := yaml.Unmarshal(data, &l); err != nil {
			slog.WarnContext(ctx, "skipping corrupt task log", "path", path, "error", err)
			return nil
		}
		logs = append(logs, &l)
		return nil
	})
	if err != nil {
		return nil, cerr.WrapStorageReadError("task_logs", err)
	}
	return q.Paginate(logs), nil
}
