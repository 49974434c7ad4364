package repositoryimpl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/labelguild/internal/task"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/storage"
)

const tasksPrefix = "tasks"

// YAMLRepository stores one YAML document per task. Read-modify-write cycles
// are serialized in process, so a storage directory must have one writer.
type YAMLRepository struct {
	storage storage.Storage
	mu      sync.Mutex
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", tasksPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, t *task.Task) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal task: %w", err))
	}
	if err := r.storage.CreateExclusive(ctx, path(t.ID), data); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return cerr.NewError(cerr.AlreadyExists, "task already exists", err)
		}
		return cerr.WrapStorageWriteError("task", err)
	}
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	data, err := r.storage.Read(ctx, path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("task", err)
	}
	var t task.Task
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal task: %w", err))
	}
	return &t, nil
}

func (r *YAMLRepository) List(ctx context.Context, filter task.ListFilter, limit, offset int) ([]*task.Task, int, error) {
	var all []*task.Task
	err := storage.Walk(ctx, r.storage, tasksPrefix, func(p string, data []byte) error {
		var t task.Task
		if err := yaml.Unmarshal(data, &t); err != nil {
			slog.WarnContext(ctx, "skipping unreadable task", "path", p, "error", err)
			return nil
		}
		if filter.Match(&t) {
			all = append(all, &t)
		}
		return nil
	})
	if err != nil {
		return nil, 0, cerr.WrapStorageReadError("tasks", err)
	}

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *YAMLRepository) Claim(ctx context.Context, id, workerID string, now time.Time) (*task.Task, error) {
	return r.Update(ctx, id, func(t *task.Task) error {
		return t.Claim(workerID, now)
	})
}

func (r *YAMLRepository) ClaimReview(ctx context.Context, id, reviewerID string, now time.Time) (*task.Task, error) {
	return r.Update(ctx, id, func(t *task.Task) error {
		return t.ClaimReview(reviewerID, now)
	})
}

func (r *YAMLRepository) Update(ctx context.Context, id string, fn func(t *task.Task) error) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(t); err != nil {
		return nil, err
	}
	if err := r.write(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *YAMLRepository) Requeue(ctx context.Context, id string, fn func(t *task.Task) (*task.Task, error)) (*task.Task, *task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frozen, err := r.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	spawned, err := fn(frozen)
	if err != nil {
		return nil, nil, err
	}
	if err := r.Create(ctx, spawned); err != nil {
		return nil, nil, err
	}
	if err := r.write(ctx, frozen); err != nil {
		if delErr := r.storage.Delete(ctx, path(spawned.ID)); delErr != nil {
			err = errors.Join(err, cerr.WrapStorageDeleteError("task", delErr))
		}
		return nil, nil, err
	}
	return frozen, spawned, nil
}

func (r *YAMLRepository) write(ctx context.Context, t *task.Task) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal task: %w", err))
	}
	if err := r.storage.Write(ctx, path(t.ID), data); err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	return nil
}
