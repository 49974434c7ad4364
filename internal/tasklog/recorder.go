package tasklog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/eventbus"
)

// Recorder writes one TaskLog per lifecycle event published on the bus.
type Recorder struct {
	eventBus *eventbus.Bus
	repo     Repository
}

func NewRecorder(eventBus *eventbus.Bus, repo Repository) *Recorder {
	return &Recorder{eventBus: eventBus, repo: repo}
}

func (r *Recorder) Start(ctx context.Context) {
	subID, ch := r.eventBus.Subscribe(256, eventbus.Lossless())
	defer r.eventBus.Unsubscribe(subID)

	slog.Info("task log recorder started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("task log recorder stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := r.Record(ctx, event); err != nil {
				slog.Error("task log recorder: failed to record event", "event_id", event.ID, "type", event.Type, "error", err)
			}
		}
	}
}

// Record stores the log entry for event. The entry reuses the event id, so
// recording the same event twice fails instead of duplicating it.
func (r *Recorder) Record(ctx context.Context, event *apiv1.Event) error {
	return r.repo.Append(ctx, &TaskLog{
		ID:        event.ID,
		TaskID:    event.ResourceID,
		Event:     string(event.Type),
		Actor:     event.Metadata[apiv1.MetaActor],
		Message:   Describe(event),
		Metadata:  event.Metadata,
		CreatedAt: event.CreatedAt,
	})
}

// Describe renders an event as a single human readable line.
func Describe(event *apiv1.Event) string {
	m := event.Metadata
	actor := m[apiv1.MetaActor]
	switch event.Type {
	case apiv1.EventTypeTaskCreated:
		return fmt.Sprintf("created in project %s", m[apiv1.MetaProjectID])
	case apiv1.EventTypeTaskClaimed:
		return fmt.Sprintf("claimed by %s", actor)
	case apiv1.EventTypeTaskSkipped:
		return fmt.Sprintf("skipped by %s after %ss", actor, m[apiv1.MetaSeconds])
	case apiv1.EventTypeTaskExpired:
		return fmt.Sprintf("expired for %s (%s) after %ss", actor, m[apiv1.MetaReason], m[apiv1.MetaSeconds])
	case apiv1.EventTypeTaskSubmitted:
		return fmt.Sprintf("submitted by %s as %s, %ss, earned %s cents", actor, m[apiv1.MetaStatus], m[apiv1.MetaSeconds], m[apiv1.MetaEarnings])
	case apiv1.EventTypeReviewClaimed:
		return fmt.Sprintf("review claimed by %s", actor)
	case apiv1.EventTypeReviewSkipped:
		return fmt.Sprintf("review skipped by %s", actor)
	case apiv1.EventTypeReviewExpired:
		return fmt.Sprintf("review expired for %s (%s)", actor, m[apiv1.MetaReason])
	case apiv1.EventTypeTaskApproved:
		return fmt.Sprintf("approved by %s with rating %s, earned %s cents", actor, m[apiv1.MetaRating], m[apiv1.MetaEarnings])
	case apiv1.EventTypeTaskRejected:
		return fmt.Sprintf("rejected by %s, earned %s cents", actor, m[apiv1.MetaEarnings])
	case apiv1.EventTypeTaskRequeued:
		return fmt.Sprintf("requeued by %s as %s", actor, m[apiv1.MetaNewTaskID])
	case apiv1.EventTypeReviewerFeedbackSubmitted:
		return fmt.Sprintf("reviewer rated %s by %s", m[apiv1.MetaRating], actor)
	}
	return string(event.Type)
}
