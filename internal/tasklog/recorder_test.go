package tasklog_test

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/eventbus"
	"github.com/kazz187/labelguild/internal/tasklog"
	"github.com/kazz187/labelguild/internal/tasklog/repositoryimpl"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/storage"
)

func TestRecorder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := repositoryimpl.NewYAMLRepository(s)
	bus := eventbus.New()
	rec := tasklog.NewRecorder(bus, repo)

	done := make(chan struct{})
	go func() {
		rec.Start(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool {
		// the recorder subscribes asynchronously; publish until it sees one
		bus.PublishNew(apiv1.EventTypeTaskClaimed, "probe", "", map[string]string{apiv1.MetaActor: "alice"})
		page, err := repo.List(ctx, tasklog.Query{TaskID: "probe"})
		return err == nil && page.Total > 0
	}, 2*time.Second, 10*time.Millisecond)

	bus.PublishNew(apiv1.EventTypeTaskSubmitted, "T1", "", map[string]string{
		apiv1.MetaActor:    "alice",
		apiv1.MetaStatus:   "completed",
		apiv1.MetaSeconds:  "95",
		apiv1.MetaEarnings: "48",
	})
	bus.PublishNew(apiv1.EventTypeTaskApproved, "T1", "", map[string]string{
		apiv1.MetaActor:    "rita",
		apiv1.MetaRating:   "5",
		apiv1.MetaEarnings: "40",
	})

	require.Eventually(t, func() bool {
		page, err := repo.List(ctx, tasklog.Query{TaskID: "T1"})
		return err == nil && page.Total == 2
	}, 2*time.Second, 10*time.Millisecond)

	srv := tasklog.NewServer(repo)
	resp, err := srv.ListTaskLogs(ctx, connect.NewRequest(&apiv1.ListTaskLogsRequest{TaskID: "T1"}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Logs, 2)
	assert.Equal(t, "submitted by alice as completed, 95s, earned 48 cents", resp.Msg.Logs[0].Message)
	assert.Equal(t, "approved by rita with rating 5, earned 40 cents", resp.Msg.Logs[1].Message)
	assert.Equal(t, int32(2), resp.Msg.Pagination.Total)

	resp, err = srv.ListTaskLogs(ctx, connect.NewRequest(&apiv1.ListTaskLogsRequest{TaskID: "T1", Actor: "rita"}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Logs, 1)
	assert.Equal(t, string(apiv1.EventTypeTaskApproved), resp.Msg.Logs[0].Event)

	cancel()
	<-done
}

func TestRecordTwice(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	rec := tasklog.NewRecorder(eventbus.New(), repositoryimpl.NewYAMLRepository(s))

	ev := &apiv1.Event{ID: "01J0000000000000000000000A", Type: apiv1.EventTypeTaskClaimed, ResourceID: "T1", CreatedAt: time.Now()}
	require.NoError(t, rec.Record(ctx, ev))
	err = rec.Record(ctx, ev)
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))
}

func TestListTaskLogsRequiresTask(t *testing.T) {
	srv := tasklog.NewServer(nil)
	_, err := srv.ListTaskLogs(context.Background(), connect.NewRequest(&apiv1.ListTaskLogsRequest{}))
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
}

func TestQueryPaginate(t *testing.T) {
	logs := []*tasklog.TaskLog{
		{ID: "1", Event: string(apiv1.EventTypeTaskClaimed), Actor: "alice"},
		{ID: "2", Event: string(apiv1.EventTypeTaskSkipped), Actor: "alice"},
		{ID: "3", Event: string(apiv1.EventTypeTaskClaimed), Actor: "bob"},
		{ID: "4", Event: string(apiv1.EventTypeTaskSubmitted), Actor: "bob"},
		{ID: "5", Event: string(apiv1.EventTypeTaskApproved), Actor: "rita"},
	}
	tests := []struct {
		name  string
		query tasklog.Query
		ids   []string
		total int
	}{
		{name: "everything", ids: []string{"1", "2", "3", "4", "5"}, total: 5},
		{name: "window", query: tasklog.Query{Limit: 2, Offset: 1}, ids: []string{"2", "3"}, total: 5},
		{name: "offset past end", query: tasklog.Query{Offset: 9}, total: 5},
		{name: "actor", query: tasklog.Query{Actor: "bob"}, ids: []string{"3", "4"}, total: 2},
		{
			name:  "events",
			query: tasklog.Query{Events: []string{string(apiv1.EventTypeTaskClaimed)}, Limit: 1},
			ids:   []string{"1"},
			total: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := tt.query.Paginate(logs)
			var ids []string
			for _, l := range page.Logs {
				ids = append(ids, l.ID)
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.total, page.Total)
		})
	}
}
