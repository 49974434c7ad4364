package pushnotification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/eventbus"
	"github.com/kazz187/labelguild/internal/pushsubscription"
	"github.com/kazz187/labelguild/internal/task"
)

type Dispatcher struct {
	eventBus *eventbus.Bus
	sender   *Sender
}

func NewDispatcher(eventBus *eventbus.Bus, sender *Sender) *Dispatcher {
	return &Dispatcher{
		eventBus: eventBus,
		sender:   sender,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	subID, ch := d.eventBus.Subscribe(256)
	defer d.eventBus.Unsubscribe(subID)

	slog.Info("push notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("push notification dispatcher stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			topic, payload := Notification(event)
			if payload == nil {
				continue
			}
			d.sender.SendToTopic(ctx, topic, event.Metadata[apiv1.MetaActor], payload)
		}
	}
}

// Notification maps a lifecycle event to the topic and payload announced to
// workers. A nil payload means the event is not announced.
func Notification(event *apiv1.Event) (string, *NotificationPayload) {
	projectID := event.Metadata[apiv1.MetaProjectID]
	url := fmt.Sprintf("/projects/%s/tasks/%s", projectID, event.ResourceID)

	switch event.Type {
	case apiv1.EventTypeTaskSubmitted:
		if event.Metadata[apiv1.MetaStatus] != string(task.StatusSubmitted) {
			return "", nil
		}
		return pushsubscription.TopicReviewAvailable, &NotificationPayload{
			Title: "Review available",
			Body:  fmt.Sprintf("Task %s in %s is waiting for review", event.ResourceID, projectID),
			URL:   url,
			Tag:   event.ResourceID,
		}
	case apiv1.EventTypeTaskRequeued:
		newID := event.Metadata[apiv1.MetaNewTaskID]
		return pushsubscription.TopicWorkAvailable, &NotificationPayload{
			Title: "Task requeued",
			Body:  fmt.Sprintf("Task %s in %s was requeued for another attempt", newID, projectID),
			URL:   fmt.Sprintf("/projects/%s/tasks/%s", projectID, newID),
			Tag:   newID,
		}
	case apiv1.EventTypeTaskSkipped, apiv1.EventTypeTaskExpired:
		return pushsubscription.TopicWorkAvailable, &NotificationPayload{
			Title: "Task available",
			Body:  fmt.Sprintf("Task %s in %s is available again", event.ResourceID, projectID),
			URL:   url,
			Tag:   event.ResourceID,
		}
	case apiv1.EventTypeReviewSkipped, apiv1.EventTypeReviewExpired:
		return pushsubscription.TopicReviewAvailable, &NotificationPayload{
			Title: "Review available",
			Body:  fmt.Sprintf("Task %s in %s is waiting for review again", event.ResourceID, projectID),
			URL:   url,
			Tag:   event.ResourceID,
		}
	}
	return "", nil
}
