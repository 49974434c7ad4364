package repositoryimpl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/kazz187/labelguild/internal/task"
)

const cacheKeyPrefix = "labelguild:task:"

// CachedRepository serves Get from Redis and drops the entry after every
// write through it. Mutations always read the underlying store, so a stale
// entry can only be observed by plain reads, for at most ttl.
type CachedRepository struct {
	task.Repository
	client redis.Cmdable
	ttl    time.Duration
}

func NewCachedRepository(repo task.Repository, client redis.Cmdable, ttl time.Duration) *CachedRepository {
	return &CachedRepository{Repository: repo, client: client, ttl: ttl}
}

func cacheKey(id string) string {
	return cacheKeyPrefix + id
}

func (r *CachedRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	data, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	switch {
	case err == nil:
		var t task.Task
		if err := yaml.Unmarshal(data, &t); err == nil {
			return &t, nil
		}
		slog.WarnContext(ctx, "dropping undecodable cached task", "task_id", id)
		r.invalidate(ctx, id)
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "task cache read failed", "task_id", id, "error", err)
	}

	t, err := r.Repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := yaml.Marshal(t); err == nil {
		if err := r.client.Set(ctx, cacheKey(id), data, r.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "task cache write failed", "task_id", id, "error", err)
		}
	}
	return t, nil
}

func (r *CachedRepository) Claim(ctx context.Context, id, workerID string, now time.Time) (*task.Task, error) {
	t, err := r.Repository.Claim(ctx, id, workerID, now)
	r.invalidate(ctx, id)
	return t, err
}

func (r *CachedRepository) ClaimReview(ctx context.Context, id, reviewerID string, now time.Time) (*task.Task, error) {
	t, err := r.Repository.ClaimReview(ctx, id, reviewerID, now)
	r.invalidate(ctx, id)
	return t, err
}

func (r *CachedRepository) Update(ctx context.Context, id string, fn func(t *task.Task) error) (*task.Task, error) {
	t, err := r.Repository.Update(ctx, id, fn)
	r.invalidate(ctx, id)
	return t, err
}

func (r *CachedRepository) Requeue(ctx context.Context, id string, fn func(t *task.Task) (*task.Task, error)) (*task.Task, *task.Task, error) {
	frozen, spawned, err := r.Repository.Requeue(ctx, id, fn)
	r.invalidate(ctx, id)
	return frozen, spawned, err
}

func (r *CachedRepository) invalidate(ctx context.Context, ids ...string) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cacheKey(id))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		slog.WarnContext(ctx, "task cache invalidation failed", "keys", keys, "error", err)
	}
}
