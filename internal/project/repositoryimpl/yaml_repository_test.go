package repositoryimpl_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/labelguild/internal/project"
	"github.com/kazz187/labelguild/internal/project/repositoryimpl"
	"github.com/kazz187/labelguild/internal/schema"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/storage"
)

func TestSaveKeepsCreationTime(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := repositoryimpl.NewYAMLRepository(s)

	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, &project.Project{ID: "speech", Name: "Speech", UpdatedAt: first}))
	require.NoError(t, repo.Save(ctx, &project.Project{
		ID:          "speech",
		Name:        "Speech v2",
		MaxTaskTime: 900,
		Schema: schema.Tree{Fields: []schema.Field{
			&schema.Text{Base: schema.Base{ID: "transcript", Required: true}},
		}},
		UpdatedAt: first.Add(time.Hour),
	}))

	got, err := repo.Get(ctx, "speech")
	require.NoError(t, err)
	assert.Equal(t, "Speech v2", got.Name)
	assert.Equal(t, int64(900), got.MaxTaskTime)
	assert.True(t, first.Equal(got.CreatedAt))
	assert.True(t, first.Add(time.Hour).Equal(got.UpdatedAt))
	_, ok := got.Schema.Find("transcript")
	assert.True(t, ok)
}

func TestSaveRejectsInvalidProject(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := repositoryimpl.NewYAMLRepository(s)

	err = repo.Save(ctx, &project.Project{ID: "bad", MaxTaskTime: -1})
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	_, err = repo.Get(ctx, "bad")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestListOrdersByID(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := repositoryimpl.NewYAMLRepository(s)

	for _, id := range []string{"video", "audio", "images"} {
		require.NoError(t, repo.Save(ctx, &project.Project{ID: id, UpdatedAt: time.Now()}))
	}
	require.NoError(t, s.Write(ctx, "projects/zzz.yaml", []byte("id: [")))

	projects, err := repo.List(ctx)
	require.NoError(t, err)
	var ids []string
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"audio", "images", "video"}, ids)
}
