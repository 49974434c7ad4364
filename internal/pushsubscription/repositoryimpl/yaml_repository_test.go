package repositoryimpl_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/labelguild/internal/pushsubscription"
	"github.com/kazz187/labelguild/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/storage"
)

func TestSaveReplacesByEndpoint(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := repositoryimpl.NewYAMLRepository(store)

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, pushsubscription.New("alice", "https://push.example/a", "p1", "a1", nil, first)))
	require.NoError(t, repo.Save(ctx, pushsubscription.New("bob", "https://push.example/a", "p2", "a2",
		[]string{pushsubscription.TopicReviewAvailable}, first.Add(time.Hour))))

	got, err := repo.Get(ctx, pushsubscription.IDFor("https://push.example/a"))
	require.NoError(t, err)
	assert.Equal(t, "bob", got.WorkerID)
	assert.Equal(t, "p2", got.P256dhKey)
	assert.True(t, first.Equal(got.CreatedAt))
	assert.True(t, first.Add(time.Hour).Equal(got.UpdatedAt))

	require.NoError(t, repo.Delete(ctx, got.ID))
	assert.True(t, cerr.IsCode(repo.Delete(ctx, got.ID), cerr.NotFound))
}

func TestListFor(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := repositoryimpl.NewYAMLRepository(store)

	now := time.Now()
	require.NoError(t, repo.Save(ctx, pushsubscription.New("alice", "https://push.example/alice", "p", "a", nil, now)))
	require.NoError(t, repo.Save(ctx, pushsubscription.New("rita", "https://push.example/rita", "p", "a",
		[]string{pushsubscription.TopicReviewAvailable}, now)))
	require.NoError(t, store.Write(ctx, "push_subscriptions/broken.yaml", []byte("endpoint: [")))

	tests := []struct {
		name  string
		topic string
		actor string
		want  []string
	}{
		{name: "work", topic: pushsubscription.TopicWorkAvailable, want: []string{"alice"}},
		{name: "review", topic: pushsubscription.TopicReviewAvailable, want: []string{"alice", "rita"}},
		{name: "actor is skipped", topic: pushsubscription.TopicReviewAvailable, actor: "alice", want: []string{"rita"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs, err := repo.ListFor(ctx, tt.topic, tt.actor)
			require.NoError(t, err)
			var workers []string
			for _, s := range subs {
				workers = append(workers, s.WorkerID)
			}
			assert.ElementsMatch(t, tt.want, workers)
		})
	}
}
