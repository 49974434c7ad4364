package pushsubscription

import "context"

type Repository interface {
	// Save stores s under its endpoint, replacing an earlier registration
	// while keeping its creation time.
	Save(ctx context.Context, s *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	// ListFor returns the subscriptions a notification on topic raised by
	// actor reaches.
	ListFor(ctx context.Context, topic, actor string) ([]*Subscription, error)
	Delete(ctx context.Context, id string) error
}
