package pushnotification

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sourcegraph/conc/pool"

	"github.com/kazz187/labelguild/internal/config"
	"github.com/kazz187/labelguild/internal/pushsubscription"
)

// maxConcurrentSends bounds the requests in flight to push services.
const maxConcurrentSends = 8

type NotificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

type Sender struct {
	vapidEnv   *config.VAPIDEnv
	repo       pushsubscription.Repository
	httpClient webpush.HTTPClient
}

type SenderOption func(*Sender)

// WithHTTPClient overrides the client used to reach push services.
func WithHTTPClient(c webpush.HTTPClient) SenderOption {
	return func(s *Sender) { s.httpClient = c }
}

func NewSender(vapidEnv *config.VAPIDEnv, repo pushsubscription.Repository, opts ...SenderOption) *Sender {
	s := &Sender{
		vapidEnv: vapidEnv,
		repo:     repo,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Sender) Configured() bool {
	return s.vapidEnv.VAPIDPrivateKey != "" && s.vapidEnv.VAPIDPublicKey != ""
}

// SendToTopic delivers payload to every subscription listening to topic,
// except the ones owned by actor.
func (s *Sender) SendToTopic(ctx context.Context, topic, actor string, payload *NotificationPayload) int {
	if !s.Configured() {
		slog.Warn("push notification: VAPID keys not configured, skipping")
		return 0
	}

	subs, err := s.repo.ListFor(ctx, topic, actor)
	if err != nil {
		slog.Error("push notification: failed to list subscriptions", "error", err)
		return 0
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("push notification: failed to marshal payload", "error", err)
		return 0
	}

	var sent atomic.Int32
	p := pool.New().WithMaxGoroutines(maxConcurrentSends)
	for _, sub := range subs {
		p.Go(func() {
			if s.sendToSubscription(ctx, sub, data) {
				sent.Add(1)
			}
		})
	}
	p.Wait()
	return int(sent.Load())
}

func (s *Sender) sendToSubscription(ctx context.Context, sub *pushsubscription.Subscription, data []byte) bool {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, data, wpSub, &webpush.Options{
		HTTPClient:      s.httpClient,
		VAPIDPublicKey:  s.vapidEnv.VAPIDPublicKey,
		VAPIDPrivateKey: s.vapidEnv.VAPIDPrivateKey,
		Subscriber:      s.vapidEnv.VAPIDContact,
		TTL:             3600,
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		slog.Error("push notification: failed to send", "endpoint", sub.Endpoint, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		slog.Info("push notification: subscription expired, removing", "endpoint", sub.Endpoint)
		if err := s.repo.Delete(ctx, sub.ID); err != nil {
			slog.Error("push notification: failed to delete expired subscription", "id", sub.ID, "error", err)
		}
		return false
	}

	if resp.StatusCode >= 400 {
		slog.Warn("push notification: unexpected status", "endpoint", sub.Endpoint, "status", resp.StatusCode)
		return false
	}
	return true
}
