package repositoryimpl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/labelguild/internal/task"
)

// fakeRedis implements the commands the cache uses on a map.
type fakeRedis struct {
	redis.Cmdable
	data  map[string][]byte
	gets  int
	fails bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.gets++
	if f.fails {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if f.fails {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	f.data[key] = value.([]byte)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestCachedRepository(t *testing.T) {
	ctx := context.Background()
	base := newRepo(t)
	seed(t, base, "T")
	client := newFakeRedis()
	repo := NewCachedRepository(base, client, time.Minute)

	first, err := repo.Get(ctx, "T")
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, first.Status)
	assert.Contains(t, client.data, cacheKey("T"))

	cached, err := repo.Get(ctx, "T")
	require.NoError(t, err)
	assert.Equal(t, first.ID, cached.ID)

	_, err = repo.Claim(ctx, "T", "alice", now)
	require.NoError(t, err)
	assert.NotContains(t, client.data, cacheKey("T"))

	fresh, err := repo.Get(ctx, "T")
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, fresh.Status)
	assert.Equal(t, "alice", fresh.AssignedTo)
}

func TestCachedRepository_RedisDown(t *testing.T) {
	ctx := context.Background()
	base := newRepo(t)
	seed(t, base, "T")
	client := newFakeRedis()
	client.fails = true
	repo := NewCachedRepository(base, client, time.Minute)

	got, err := repo.Get(ctx, "T")
	require.NoError(t, err)
	assert.Equal(t, "T", got.ID)
	assert.Equal(t, 1, client.gets)
}
