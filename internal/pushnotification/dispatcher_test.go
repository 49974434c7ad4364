package pushnotification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/pushnotification"
	"github.com/kazz187/labelguild/internal/pushsubscription"
)

func TestNotification(t *testing.T) {
	meta := func(kv ...string) map[string]string {
		m := map[string]string{apiv1.MetaProjectID: "audio"}
		for i := 0; i+1 < len(kv); i += 2 {
			m[kv[i]] = kv[i+1]
		}
		return m
	}

	tests := []struct {
		name      string
		event     *apiv1.Event
		wantTopic string
		wantURL   string
		announced bool
	}{
		{
			name:      "submitted for review",
			event:     &apiv1.Event{Type: apiv1.EventTypeTaskSubmitted, ResourceID: "T1", Metadata: meta(apiv1.MetaStatus, "submitted")},
			wantTopic: pushsubscription.TopicReviewAvailable,
			wantURL:   "/projects/audio/tasks/T1",
			announced: true,
		},
		{
			name:  "completed without review",
			event: &apiv1.Event{Type: apiv1.EventTypeTaskSubmitted, ResourceID: "T1", Metadata: meta(apiv1.MetaStatus, "completed")},
		},
		{
			name:      "requeued points at the new task",
			event:     &apiv1.Event{Type: apiv1.EventTypeTaskRequeued, ResourceID: "T1", Metadata: meta(apiv1.MetaNewTaskID, "T2")},
			wantTopic: pushsubscription.TopicWorkAvailable,
			wantURL:   "/projects/audio/tasks/T2",
			announced: true,
		},
		{
			name:      "expired claim",
			event:     &apiv1.Event{Type: apiv1.EventTypeTaskExpired, ResourceID: "T3", Metadata: meta()},
			wantTopic: pushsubscription.TopicWorkAvailable,
			wantURL:   "/projects/audio/tasks/T3",
			announced: true,
		},
		{
			name:      "skipped review",
			event:     &apiv1.Event{Type: apiv1.EventTypeReviewSkipped, ResourceID: "T4", Metadata: meta()},
			wantTopic: pushsubscription.TopicReviewAvailable,
			wantURL:   "/projects/audio/tasks/T4",
			announced: true,
		},
		{
			name:  "claims are not announced",
			event: &apiv1.Event{Type: apiv1.EventTypeTaskClaimed, ResourceID: "T1", Metadata: meta()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic, payload := pushnotification.Notification(tt.event)
			if !tt.announced {
				assert.Nil(t, payload)
				return
			}
			require.NotNil(t, payload)
			assert.Equal(t, tt.wantTopic, topic)
			assert.Equal(t, tt.wantURL, payload.URL)
		})
	}
}
