package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/client"
	"github.com/kazz187/labelguild/internal/earnings"
	"github.com/kazz187/labelguild/internal/eventbus"
	"github.com/kazz187/labelguild/internal/expiration"
	"github.com/kazz187/labelguild/internal/lifecycle"
	"github.com/kazz187/labelguild/internal/project"
	projectrepo "github.com/kazz187/labelguild/internal/project/repositoryimpl"
	"github.com/kazz187/labelguild/internal/schema"
	"github.com/kazz187/labelguild/internal/session"
	taskrepo "github.com/kazz187/labelguild/internal/task/repositoryimpl"
	"github.com/kazz187/labelguild/internal/tasklog"
	tasklogrepo "github.com/kazz187/labelguild/internal/tasklog/repositoryimpl"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/storage"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var clock = fixedClock{now: time.Now()}

func newServer(t *testing.T) string {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	projects := projectrepo.NewYAMLRepository(store)

	tree := schema.Tree{Fields: []schema.Field{
		&schema.Choice{Base: schema.Base{ID: "label", Required: true}, Options: []schema.Option{{ID: "cat"}, {ID: "dog"}}},
	}}
	for _, p := range []*project.Project{
		{
			ID:            "pets",
			ReviewEnabled: true,
			MaxTaskTime:   600,
			AnnotatorPay:  earnings.Rate{Mode: earnings.ModePerTask, PerTask: 12},
			ReviewerPay:   earnings.Rate{Mode: earnings.ModePerTask, PerTask: 5},
			Schema:        tree,
		},
		{
			ID:                "sprint",
			MaxTaskTime:       3,
			ExtraTimeAfterMax: 2,
			Schema:            tree,
		},
	} {
		require.NoError(t, projects.Save(context.Background(), p))
	}

	tasks := taskrepo.NewYAMLRepository(store)
	svc := lifecycle.NewService(tasks, projects, eventbus.New())
	mux := http.NewServeMux()
	mux.Handle(apiv1.NewTaskServiceHandler(
		lifecycle.NewServer(svc, tasks, tasklog.NewServer(tasklogrepo.NewYAMLRepository(store))),
		connect.WithInterceptors(cerr.NewConvertConnectErrorInterceptor()),
	))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func ticks(ctx context.Context, w *client.Work, n int) expiration.Outcome {
	var out expiration.Outcome
	for range n {
		out = w.Tick(ctx)
	}
	return out
}

func TestAnnotateThenReview(t *testing.T) {
	ctx := context.Background()
	url := newServer(t)
	admin := client.NewTaskClient(url, "", "ops")
	alice := client.NewTaskClient(url, "", "alice")
	rita := client.NewTaskClient(url, "", "rita")

	tk, err := admin.CreateTask(ctx, "pets", map[string]any{"image": "p-17.jpg"})
	require.NoError(t, err)

	work, err := alice.Open(ctx, client.RoleAnnotator, tk.ID, clock)
	require.NoError(t, err)
	assert.Equal(t, "p-17.jpg", work.Schema.Payload["image"])
	require.Len(t, work.Schema.Schema.Fields, 1)

	_, err = client.NewTaskClient(url, "", "bob").Open(ctx, client.RoleAnnotator, tk.ID, clock)
	assert.ErrorIs(t, err, client.ErrNotClaimed)

	ticks(ctx, work, 7)
	require.NoError(t, work.Autosave(ctx))
	stored, err := admin.GetTask(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stored.AnnotatorTimeSpent)

	_, err = work.Approve(ctx, nil, 5, "")
	assert.True(t, cerr.IsCode(err, cerr.FailedPrecondition))

	_, err = work.Submit(ctx, map[string]any{"label": ""})
	require.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	assert.Equal(t, session.StateActive, work.State())

	ticks(ctx, work, 2)
	submitted, err := work.Submit(ctx, map[string]any{"label": "cat"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), submitted.EarningsCents)
	assert.Equal(t, int64(9), submitted.TimeSpent)
	assert.Equal(t, session.StateFinalized, work.State())

	review, err := rita.Open(ctx, client.RoleReviewer, tk.ID, clock)
	require.NoError(t, err)
	ticks(ctx, review, 4)
	rejected, err := review.Reject(ctx, 2, "it is a dog")
	require.NoError(t, err)
	assert.Equal(t, int64(5), rejected.EarningsCents)
	assert.Equal(t, "rejected", rejected.Task.Status)
	assert.Equal(t, int64(4), rejected.Task.ReviewerTimeSpent)
}

func TestSessionExpiresAndReports(t *testing.T) {
	ctx := context.Background()
	url := newServer(t)
	admin := client.NewTaskClient(url, "", "ops")
	tk, err := admin.CreateTask(ctx, "sprint", nil)
	require.NoError(t, err)

	var warned, expired []expiration.Outcome
	work, err := client.NewTaskClient(url, "", "alice").Open(ctx, client.RoleAnnotator, tk.ID, clock,
		session.WithOnWarn(func(o expiration.Outcome) { warned = append(warned, o) }),
		session.WithOnExpire(func(o expiration.Outcome, err error) {
			assert.NoError(t, err)
			expired = append(expired, o)
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, expiration.Warn, ticks(ctx, work, 3).Action)
	assert.Equal(t, expiration.Continue, work.Tick(ctx).Action)
	assert.Equal(t, expiration.Expire, work.Tick(ctx).Action)
	require.Len(t, warned, 1)
	assert.Equal(t, int64(2), warned[0].GraceSeconds)
	require.Len(t, expired, 1)
	assert.Equal(t, expiration.ReasonTask, expired[0].Reason)

	select {
	case <-work.Done():
	default:
		t.Fatal("session still open after expiring")
	}

	_, err = work.Submit(ctx, map[string]any{"label": "dog"})
	assert.True(t, cerr.IsCode(err, cerr.DeadlineExceeded))

	got, err := admin.GetTask(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, "task", got.LastExpireReason)
	assert.Equal(t, int32(1), got.ExpiredCount)
	assert.Equal(t, int64(5), got.AnnotatorTimeSpent)
}

func TestSkipThenResume(t *testing.T) {
	ctx := context.Background()
	url := newServer(t)
	admin := client.NewTaskClient(url, "", "ops")
	tk, err := admin.CreateTask(ctx, "pets", nil)
	require.NoError(t, err)

	first, err := client.NewTaskClient(url, "", "alice").Open(ctx, client.RoleAnnotator, tk.ID, clock)
	require.NoError(t, err)
	ticks(ctx, first, 4)
	require.NoError(t, first.Skip(ctx))
	assert.Equal(t, session.StateReleased, first.State())

	second, err := client.NewTaskClient(url, "", "bob").Open(ctx, client.RoleAnnotator, tk.ID, clock)
	require.NoError(t, err)
	assert.Equal(t, int64(4), second.Elapsed())
	assert.Equal(t, int64(4), second.LastPersisted())
}
