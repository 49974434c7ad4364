package event

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
	"github.com/kazz187/labelguild/internal/eventbus"
)

func TestFilter(t *testing.T) {
	ev := &apiv1.Event{
		Type:       apiv1.EventTypeTaskClaimed,
		ResourceID: "T1",
		Metadata: map[string]string{
			apiv1.MetaProjectID: "pets",
			apiv1.MetaActor:     "alice",
		},
	}
	tests := []struct {
		name string
		req  apiv1.SubscribeEventsRequest
		want bool
	}{
		{name: "empty matches all", want: true},
		{name: "type", req: apiv1.SubscribeEventsRequest{EventTypes: []apiv1.EventType{apiv1.EventTypeTaskSkipped, apiv1.EventTypeTaskClaimed}}, want: true},
		{name: "other type", req: apiv1.SubscribeEventsRequest{EventTypes: []apiv1.EventType{apiv1.EventTypeTaskExpired}}},
		{name: "project", req: apiv1.SubscribeEventsRequest{ProjectID: "pets"}, want: true},
		{name: "other project", req: apiv1.SubscribeEventsRequest{ProjectID: "sprint"}},
		{name: "task", req: apiv1.SubscribeEventsRequest{TaskID: "T1"}, want: true},
		{name: "other task", req: apiv1.SubscribeEventsRequest{TaskID: "T2"}},
		{name: "actor", req: apiv1.SubscribeEventsRequest{Actor: "alice"}, want: true},
		{name: "other actor", req: apiv1.SubscribeEventsRequest{Actor: "bob"}},
		{name: "all fields", req: apiv1.SubscribeEventsRequest{ProjectID: "pets", TaskID: "T1", Actor: "alice"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newFilter(&tt.req).match(ev))
		})
	}
}

func TestSubscribeEventsStreamsMatches(t *testing.T) {
	bus := eventbus.New()
	mux := http.NewServeMux()
	mux.Handle(apiv1.NewEventServiceHandler(NewServer(bus)))
	ts := httptest.NewUnstartedServer(mux)
	ts.EnableHTTP2 = true
	ts.StartTLS()
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The subscription is registered once the handler runs, so keep
	// publishing until the stream sees a match.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		tick := time.NewTicker(20 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				bus.PublishNew(apiv1.EventTypeTaskClaimed, "T2", "", nil)
				bus.PublishNew(apiv1.EventTypeTaskClaimed, "T1", "", map[string]string{apiv1.MetaActor: "alice"})
			}
		}
	}()

	client := apiv1.NewEventServiceClient(ts.Client(), ts.URL)
	stream, err := client.SubscribeEvents(ctx, connect.NewRequest(&apiv1.SubscribeEventsRequest{TaskID: "T1"}))
	require.NoError(t, err)
	defer stream.Close()

	require.True(t, stream.Receive(), "stream error: %v", stream.Err())
	got := stream.Msg()
	assert.Equal(t, "T1", got.ResourceID)
	assert.Equal(t, "alice", got.Metadata[apiv1.MetaActor])
}
