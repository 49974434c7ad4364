package pushnotification_test

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/config"
	"github.com/kazz187/labelguild/internal/pushnotification"
	"github.com/kazz187/labelguild/internal/pushsubscription"
	"github.com/kazz187/labelguild/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/storage"
)

func register(worker string, msg *apiv1.RegisterPushSubscriptionRequest) *connect.Request[apiv1.RegisterPushSubscriptionRequest] {
	req := connect.NewRequest(msg)
	req.Header().Set(apiv1.WorkerHeader, worker)
	return req
}

func TestRegisterAndUnregister(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := repositoryimpl.NewYAMLRepository(store)
	srv := pushnotification.NewServer(&config.VAPIDEnv{}, repo)

	_, err = srv.GetVapidPublicKey(ctx, connect.NewRequest(&apiv1.GetVapidPublicKeyRequest{}))
	assert.True(t, cerr.IsCode(err, cerr.FailedPrecondition))

	_, err = srv.RegisterPushSubscription(ctx, register("alice", &apiv1.RegisterPushSubscriptionRequest{
		Endpoint: "https://push.example/a",
		Topics:   []string{"payday"},
	}))
	require.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	assert.Len(t, cerr.Violations(err), 3)

	first, err := srv.RegisterPushSubscription(ctx, register("alice", &apiv1.RegisterPushSubscriptionRequest{
		Endpoint:  "https://push.example/a",
		P256dhKey: "p",
		AuthKey:   "a",
	}))
	require.NoError(t, err)
	again, err := srv.RegisterPushSubscription(ctx, register("bob", &apiv1.RegisterPushSubscriptionRequest{
		Endpoint:  "https://push.example/a",
		P256dhKey: "p2",
		AuthKey:   "a2",
		Topics:    []string{pushsubscription.TopicReviewAvailable},
	}))
	require.NoError(t, err)
	assert.Equal(t, first.Msg.ID, again.Msg.ID)

	sub, err := repo.Get(ctx, again.Msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", sub.WorkerID)
	assert.Equal(t, []string{pushsubscription.TopicReviewAvailable}, sub.Topics)

	_, err = srv.UnregisterPushSubscription(ctx, connect.NewRequest(&apiv1.UnregisterPushSubscriptionRequest{Endpoint: "https://push.example/a"}))
	require.NoError(t, err)
	_, err = srv.UnregisterPushSubscription(ctx, connect.NewRequest(&apiv1.UnregisterPushSubscriptionRequest{Endpoint: "https://push.example/a"}))
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}
