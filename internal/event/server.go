package event

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/eventbus"
	"github.com/kazz187/labelguild/pkg/clog"
)

var _ apiv1.EventServiceHandler = (*Server)(nil)

// subscriberBuffer is per stream. Slow watchers lose events rather than
// stalling task operations.
const subscriberBuffer = 64

type Server struct {
	bus *eventbus.Bus
}

func NewServer(bus *eventbus.Bus) *Server {
	return &Server{bus: bus}
}

// SubscribeEvents streams task lifecycle events matching the request until
// the client goes away or the bus shuts the subscription down.
func (s *Server) SubscribeEvents(ctx context.Context, req *connect.Request[apiv1.SubscribeEventsRequest], stream *connect.ServerStream[apiv1.Event]) error {
	f := newFilter(req.Msg)
	if req.Msg.TaskID != "" {
		clog.AddTask(ctx, req.Msg.TaskID, req.Msg.Actor)
	}

	id, ch := s.bus.Subscribe(subscriberBuffer)
	defer s.bus.Unsubscribe(id)

	sent := 0
	for {
		select {
		case <-ctx.Done():
			slog.DebugContext(ctx, "event stream closed", "subscriber", id, "sent", sent)
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if !f.match(ev) {
				continue
			}
			if err := stream.Send(ev); err != nil {
				return err
			}
			sent++
		}
	}
}

type filter struct {
	types   map[apiv1.EventType]bool
	project string
	task    string
	actor   string
}

func newFilter(req *apiv1.SubscribeEventsRequest) filter {
	f := filter{
		project: req.ProjectID,
		task:    req.TaskID,
		actor:   req.Actor,
	}
	if len(req.EventTypes) > 0 {
		f.types = make(map[apiv1.EventType]bool, len(req.EventTypes))
		for _, t := range req.EventTypes {
			f.types[t] = true
		}
	}
	return f
}

func (f filter) match(ev *apiv1.Event) bool {
	if f.types != nil && !f.types[ev.Type] {
		return false
	}
	if f.project != "" && ev.Metadata[apiv1.MetaProjectID] != f.project {
		return false
	}
	if f.task != "" && ev.ResourceID != f.task {
		return false
	}
	if f.actor != "" && ev.Metadata[apiv1.MetaActor] != f.actor {
		return false
	}
	return true
}
