package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/client"
	"github.com/kazz187/labelguild/internal/earnings"
	"github.com/kazz187/labelguild/internal/eventbus"
	"github.com/kazz187/labelguild/internal/lifecycle"
	"github.com/kazz187/labelguild/internal/project"
	projectrepo "github.com/kazz187/labelguild/internal/project/repositoryimpl"
	"github.com/kazz187/labelguild/internal/schema"
	taskrepo "github.com/kazz187/labelguild/internal/task/repositoryimpl"
	"github.com/kazz187/labelguild/internal/tasklog"
	tasklogrepo "github.com/kazz187/labelguild/internal/tasklog/repositoryimpl"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/storage"
)

func newServer(t *testing.T) string {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	projects := projectrepo.NewYAMLRepository(store)
	require.NoError(t, projects.Save(context.Background(), &project.Project{
		ID:            "pets",
		ReviewEnabled: true,
		MaxTaskTime:   600,
		AnnotatorPay:  earnings.Rate{Mode: earnings.ModePerTask, PerTask: 12},
		ReviewerPay:   earnings.Rate{Mode: earnings.ModePerTask, PerTask: 5},
		Schema: schema.Tree{Fields: []schema.Field{
			&schema.Choice{Base: schema.Base{ID: "label", Required: true}, Options: []schema.Option{{ID: "cat"}, {ID: "dog"}}},
		}},
	}))

	tasks := taskrepo.NewYAMLRepository(store)
	mux := http.NewServeMux()
	mux.Handle(apiv1.NewTaskServiceHandler(
		lifecycle.NewServer(lifecycle.NewService(tasks, projects, eventbus.New()), tasks, tasklog.NewServer(tasklogrepo.NewYAMLRepository(store))),
		connect.WithInterceptors(cerr.NewConvertConnectErrorInterceptor()),
	))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestWorkReadsAnswersUntilAccepted(t *testing.T) {
	ctx := context.Background()
	url := newServer(t)
	ops := client.NewTaskClient(url, "", "ops")
	tk, err := ops.CreateTask(ctx, "pets", map[string]any{"image": "p-3.jpg"})
	require.NoError(t, err)

	stdin := strings.NewReader(`{"label": ""}` + "\n" + `{"label": "dog"}` + "\n")
	require.NoError(t, work(ctx, client.NewTaskClient(url, "", "alice"), client.RoleAnnotator, tk.ID, stdin))

	got, err := ops.GetTask(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "submitted", got.Status)
	assert.Equal(t, "alice", got.AnnotatorID)
	require.NotNil(t, got.AnnotatorEarningsCents)
	assert.Equal(t, int64(12), *got.AnnotatorEarningsCents)

	review := strings.NewReader(`{"decision":"maybe"} {"decision":"approve"} {"decision":"reject","rating":2,"feedback":"it is a cat"}`)
	require.NoError(t, work(ctx, client.NewTaskClient(url, "", "rita"), client.RoleReviewer, tk.ID, review))

	got, err = ops.GetTask(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "rejected", got.Status)
	assert.Equal(t, "it is a cat", got.ReviewFeedback)
	require.NotNil(t, got.ReviewerEarningsCents)
	assert.Equal(t, int64(5), *got.ReviewerEarningsCents)
}

func TestWorkReleasesOnEOF(t *testing.T) {
	ctx := context.Background()
	url := newServer(t)
	ops := client.NewTaskClient(url, "", "ops")
	tk, err := ops.CreateTask(ctx, "pets", nil)
	require.NoError(t, err)

	require.NoError(t, work(ctx, client.NewTaskClient(url, "", "alice"), client.RoleAnnotator, tk.ID, strings.NewReader("")))

	got, err := ops.GetTask(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	assert.Empty(t, got.AssignedTo)

	_, err = client.NewTaskClient(url, "", "bob").Open(ctx, client.RoleAnnotator, tk.ID, nil)
	require.NoError(t, err)
	err = work(ctx, client.NewTaskClient(url, "", "alice"), client.RoleAnnotator, tk.ID, strings.NewReader(""))
	assert.ErrorIs(t, err, client.ErrNotClaimed)
}
