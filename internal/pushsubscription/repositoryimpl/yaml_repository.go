package repositoryimpl

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/labelguild/internal/pushsubscription"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/storage"
)

const prefix = "push_subscriptions"

// YAMLRepository keeps one YAML document per endpoint.
type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func key(id string) string {
	return fmt.Sprintf("%s/%s.yaml", prefix, id)
}

func (r *YAMLRepository) Save(ctx context.Context, s *pushsubscription.Subscription) error {
	s.ID = pushsubscription.IDFor(s.Endpoint)
	if prev, err := r.Get(ctx, s.ID); err == nil {
		s.CreatedAt = prev.CreatedAt
	} else if !cerr.IsCode(err, cerr.NotFound) {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal push subscription: %w", err))
	}
	if err := r.storage.Write(ctx, key(s.ID), data); err != nil {
		return cerr.WrapStorageWriteError("push_subscription", err)
	}
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*pushsubscription.Subscription, error) {
	data, err := r.storage.Read(ctx, key(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("push_subscription", err)
	}
	return decode(data)
}

func (r *YAMLRepository) ListFor(ctx context.Context, topic, actor string) ([]*pushsubscription.Subscription, error) {
	var out []*pushsubscription.Subscription
	err := storage.Walk(ctx, r.storage, prefix, func(path string, data []byte) error {
		s, err := decode(data)
		if err != nil {
			slog.WarnContext(ctx, "skipping corrupt push subscription", "path", path, "error", err)
			return nil
		}
		if s.Notifies(topic, actor) {
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, cerr.WrapStorageReadError("push_subscriptions", err)
	}
	return out, nil
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	if err := r.storage.Delete(ctx, key(id)); err != nil {
		return cerr.WrapStorageDeleteError("push_subscription", err)
	}
	return nil
}

func decode(data []byte) (*pushsubscription.Subscription, error) {
	var s pushsubscription.Subscription
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal push subscription: %w", err))
	}
	return &s, nil
}
