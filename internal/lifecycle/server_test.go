package lifecycle_test

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
	"github.com/kazz187/labelguild/internal/lifecycle"
	"github.com/kazz187/labelguild/internal/tasklog"
	logrepo "github.com/kazz187/labelguild/internal/tasklog/repositoryimpl"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/storage"
)

func newTestServer(t *testing.T, f *fixture) string {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	logs := tasklog.NewServer(logrepo.NewYAMLRepository(store))

	mux := http.NewServeMux()
	mux.Handle(apiv1.NewTaskServiceHandler(
		lifecycle.NewServer(f.svc, f.tasks, logs),
		connect.WithInterceptors(cerr.NewConvertConnectErrorInterceptor()),
	))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func clientAs(url, worker string) *apiv1.TaskServiceClient {
	return apiv1.NewTaskServiceClient(http.DefaultClient, url,
		connect.WithInterceptors(apiv1.NewCredentialsInterceptor("test-key", worker)))
}

func TestServerRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	url := newTestServer(t, f)
	alice := clientAs(url, "alice")
	bob := clientAs(url, "bob")

	created, err := alice.CreateTask(ctx, connect.NewRequest(&apiv1.CreateTaskRequest{
		ProjectID: "speech",
		Payload:   map[string]any{"audio": "clip-002.wav"},
	}))
	require.NoError(t, err)
	id := created.Msg.Task.ID
	assert.Equal(t, "pending", created.Msg.Task.Status)

	schemaResp, err := alice.GetTaskSchema(ctx, connect.NewRequest(&apiv1.GetTaskSchemaRequest{TaskID: id}))
	require.NoError(t, err)
	assert.Len(t, schemaResp.Msg.Schema.Fields, 2)
	assert.True(t, schemaResp.Msg.ReviewEnabled)
	assert.Equal(t, int64(3600), schemaResp.Msg.Limits.AbsoluteDuration)

	claimed, err := alice.ClaimTask(ctx, connect.NewRequest(&apiv1.ClaimTaskRequest{TaskID: id}))
	require.NoError(t, err)
	assert.True(t, claimed.Msg.Claimed)
	assert.Equal(t, int64(1800), claimed.Msg.Limits.MaxTime)
	assert.Equal(t, "alice", claimed.Msg.Task.AssignedTo)

	lost, err := bob.ClaimTask(ctx, connect.NewRequest(&apiv1.ClaimTaskRequest{TaskID: id}))
	require.NoError(t, err)
	assert.False(t, lost.Msg.Claimed)
	assert.Nil(t, lost.Msg.Task)

	_, err = clientAs(url, "").ClaimTask(ctx, connect.NewRequest(&apiv1.ClaimTaskRequest{TaskID: id}))
	assert.True(t, cerr.IsCode(err, cerr.Unauthenticated))

	saved, err := alice.UpdateTimer(ctx, connect.NewRequest(&apiv1.UpdateTimerRequest{TaskID: id, Seconds: 60}))
	require.NoError(t, err)
	assert.True(t, saved.Msg.Persisted)

	f.advance(95 * time.Second)
	_, err = alice.SubmitTask(ctx, connect.NewRequest(&apiv1.SubmitTaskRequest{
		TaskID:  id,
		Values:  map[string]any{"clarity": 3},
		Seconds: 95,
	}))
	require.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	violations := cerr.Violations(err)
	require.Len(t, violations, 1)
	assert.Equal(t, "transcript", violations[0].GetField().GetElements()[0].GetFieldName())

	_, err = bob.SubmitTask(ctx, connect.NewRequest(&apiv1.SubmitTaskRequest{TaskID: id, Values: completeValues(), Seconds: 95}))
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))

	submitted, err := alice.SubmitTask(ctx, connect.NewRequest(&apiv1.SubmitTaskRequest{TaskID: id, Values: completeValues(), Seconds: 95}))
	require.NoError(t, err)
	assert.Equal(t, int64(48), submitted.Msg.EarningsCents)
	assert.Equal(t, int64(95), submitted.Msg.TimeSpent)
	assert.Equal(t, "submitted", submitted.Msg.Task.Status)

	list, err := bob.ListTasks(ctx, connect.NewRequest(&apiv1.ListTasksRequest{Status: "submitted"}))
	require.NoError(t, err)
	assert.Equal(t, int32(1), list.Msg.Pagination.Total)

	_, err = bob.ListTasks(ctx, connect.NewRequest(&apiv1.ListTasksRequest{Status: "lost"}))
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	review, err := bob.ClaimReview(ctx, connect.NewRequest(&apiv1.ClaimReviewRequest{TaskID: id}))
	require.NoError(t, err)
	assert.True(t, review.Msg.Claimed)
	assert.Equal(t, int64(600), review.Msg.Limits.MaxTime)

	approved, err := bob.ApproveTask(ctx, connect.NewRequest(&apiv1.ApproveTaskRequest{TaskID: id, Rating: 4, Seconds: 30}))
	require.NoError(t, err)
	assert.Equal(t, int64(40), approved.Msg.EarningsCents)
	assert.Equal(t, "approved", approved.Msg.Task.Status)
}

func TestServerSubmitAfterDeadline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	url := newTestServer(t, f)
	alice := clientAs(url, "alice")

	tk := f.create(t)
	_, err := alice.ClaimTask(ctx, connect.NewRequest(&apiv1.ClaimTaskRequest{TaskID: tk.ID}))
	require.NoError(t, err)
	f.advance(2 * time.Hour)

	_, err = alice.SubmitTask(ctx, connect.NewRequest(&apiv1.SubmitTaskRequest{TaskID: tk.ID, Values: completeValues(), Seconds: 300}))
	require.True(t, cerr.IsCode(err, cerr.DeadlineExceeded))
	violations := cerr.Violations(err)
	require.Len(t, violations, 1)
	assert.Equal(t, "expired", violations[0].GetRuleId())
	assert.Equal(t, "absolute", violations[0].GetMessage())

	got, err := alice.GetTask(ctx, connect.NewRequest(&apiv1.GetTaskRequest{ID: tk.ID}))
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Msg.Task.Status)
	assert.Equal(t, "absolute", got.Msg.Task.LastExpireReason)
	assert.Nil(t, got.Msg.Task.AnnotatorEarningsCents)
}

func TestServerRequeue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	url := newTestServer(t, f)
	rita := clientAs(url, "rita")
	ops := clientAs(url, "ops")

	tk := f.submitted(t, "alice")
	_, err := rita.ClaimReview(ctx, connect.NewRequest(&apiv1.ClaimReviewRequest{TaskID: tk.ID}))
	require.NoError(t, err)
	_, err = rita.RejectTask(ctx, connect.NewRequest(&apiv1.RejectTaskRequest{TaskID: tk.ID, Feedback: "redo"}))
	require.NoError(t, err)

	requeued, err := ops.RequeueTask(ctx, connect.NewRequest(&apiv1.RequeueTaskRequest{TaskID: tk.ID}))
	require.NoError(t, err)
	assert.Equal(t, "rejected_requeued", requeued.Msg.Frozen.Status)
	assert.Equal(t, tk.ID, requeued.Msg.Task.ParentTaskID)
	assert.Equal(t, requeued.Msg.NewTaskID, requeued.Msg.Task.ID)

	children, err := ops.ListTasks(ctx, connect.NewRequest(&apiv1.ListTasksRequest{ParentTaskID: tk.ID}))
	require.NoError(t, err)
	require.Len(t, children.Msg.Tasks, 1)

	rated, err := ops.SubmitReviewerFeedback(ctx, connect.NewRequest(&apiv1.SubmitReviewerFeedbackRequest{TaskID: tk.ID, Rating: 2}))
	require.NoError(t, err)
	assert.Equal(t, "rejected_requeued", rated.Msg.Task.Status)
	assert.Equal(t, int32(2), rated.Msg.Task.ReviewerRating)

	_, err = ops.SubmitReviewerFeedback(ctx, connect.NewRequest(&apiv1.SubmitReviewerFeedbackRequest{TaskID: tk.ID, Rating: 4}))
	assert.True(t, cerr.IsCode(err, cerr.FailedPrecondition))
}
