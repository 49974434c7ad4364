package pushnotification

import (
	"context"
	"time"

	"connectrpc.com/connect"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/config"
	"github.com/kazz187/labelguild/internal/pushsubscription"
	"github.com/kazz187/labelguild/pkg/cerr"
)

var _ apiv1.PushNotificationServiceHandler = (*Server)(nil)

type Server struct {
	vapidEnv *config.VAPIDEnv
	repo     pushsubscription.Repository
}

func NewServer(vapidEnv *config.VAPIDEnv, repo pushsubscription.Repository) *Server {
	return &Server{
		vapidEnv: vapidEnv,
		repo:     repo,
	}
}

func (s *Server) GetVapidPublicKey(_ context.Context, _ *connect.Request[apiv1.GetVapidPublicKeyRequest]) (*connect.Response[apiv1.GetVapidPublicKeyResponse], error) {
	if s.vapidEnv.VAPIDPublicKey == "" {
		return nil, cerr.NewError(cerr.FailedPrecondition, "VAPID keys not configured", nil).ConnectError()
	}
	return connect.NewResponse(&apiv1.GetVapidPublicKeyResponse{
		PublicKey: s.vapidEnv.VAPIDPublicKey,
	}), nil
}

func (s *Server) RegisterPushSubscription(ctx context.Context, req *connect.Request[apiv1.RegisterPushSubscriptionRequest]) (*connect.Response[apiv1.RegisterPushSubscriptionResponse], error) {
	sub := pushsubscription.New(
		apiv1.WorkerID(req.Header()),
		req.Msg.Endpoint,
		req.Msg.P256dhKey,
		req.Msg.AuthKey,
		req.Msg.Topics,
		time.Now(),
	)
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	// Re-registering an endpoint refreshes its keys, topics and owner.
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.RegisterPushSubscriptionResponse{ID: sub.ID}), nil
}

func (s *Server) UnregisterPushSubscription(ctx context.Context, req *connect.Request[apiv1.UnregisterPushSubscriptionRequest]) (*connect.Response[apiv1.UnregisterPushSubscriptionResponse], error) {
	if req.Msg.Endpoint == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "endpoint is required", nil).
			AddFieldViolation("endpoint", "required", "endpoint is required")
	}
	if err := s.repo.Delete(ctx, pushsubscription.IDFor(req.Msg.Endpoint)); err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.UnregisterPushSubscriptionResponse{}), nil
}
