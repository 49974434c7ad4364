package pushsubscription

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"time"

	"github.com/kazz187/labelguild/pkg/cerr"
)

// Topics a subscription can listen to.
const (
	TopicWorkAvailable   = "work_available"
	TopicReviewAvailable = "review_available"
)

var Topics = []string{TopicWorkAvailable, TopicReviewAvailable}

// Subscription is a browser push endpoint registered by a worker. A push
// service hands out one endpoint per browser, so the endpoint identifies
// the subscription.
type Subscription struct {
	ID        string    `yaml:"id"`
	WorkerID  string    `yaml:"worker_id,omitempty"`
	Endpoint  string    `yaml:"endpoint"`
	P256dhKey string    `yaml:"p256dh_key"`
	AuthKey   string    `yaml:"auth_key"`
	Topics    []string  `yaml:"topics,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// IDFor derives the subscription id from its endpoint.
func IDFor(endpoint string) string {
	sum := sha256.Sum256([]byte(endpoint))
	return hex.EncodeToString(sum[:12])
}

// New builds a subscription for endpoint owned by workerID.
func New(workerID, endpoint, p256dh, auth string, topics []string, now time.Time) *Subscription {
	return &Subscription{
		ID:        IDFor(endpoint),
		WorkerID:  workerID,
		Endpoint:  endpoint,
		P256dhKey: p256dh,
		AuthKey:   auth,
		Topics:    topics,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate reports every missing key and unknown topic at once.
func (s *Subscription) Validate() error {
	e := cerr.NewError(cerr.InvalidArgument, "invalid push subscription", nil)
	required := []struct{ field, value string }{
		{"endpoint", s.Endpoint},
		{"p256dh_key", s.P256dhKey},
		{"auth_key", s.AuthKey},
	}
	for _, r := range required {
		if r.value == "" {
			e.AddFieldViolation(r.field, "required", r.field+" is required")
		}
	}
	for _, topic := range s.Topics {
		if !slices.Contains(Topics, topic) {
			e.AddFieldViolation("topics", "known_topic", "unknown topic "+topic)
		}
	}
	if len(e.Details) > 0 {
		return e
	}
	return nil
}

// Wants reports whether the subscription listens to topic. No topics means
// every topic.
func (s *Subscription) Wants(topic string) bool {
	return len(s.Topics) == 0 || slices.Contains(s.Topics, topic)
}

// Notifies reports whether a notification on topic reaches s. The worker
// whose action raised the notification is never told about it.
func (s *Subscription) Notifies(topic, actor string) bool {
	if actor != "" && s.WorkerID == actor {
		return false
	}
	return s.Wants(topic)
}
