package pushnotification_test

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/labelguild/internal/config"
	"github.com/kazz187/labelguild/internal/pushnotification"
	"github.com/kazz187/labelguild/internal/pushsubscription"
	"github.com/kazz187/labelguild/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/storage"
)

type recordingClient struct {
	mu        sync.Mutex
	endpoints []string
	status    map[string]int
}

func (c *recordingClient) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	endpoint := req.URL.String()
	c.endpoints = append(c.endpoints, endpoint)
	status := http.StatusCreated
	if s, ok := c.status[endpoint]; ok {
		status = s
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     make(http.Header),
	}, nil
}

func newSubscription(t *testing.T, worker, endpoint string, topics ...string) *pushsubscription.Subscription {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)
	return pushsubscription.New(
		worker,
		endpoint,
		base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		base64.RawURLEncoding.EncodeToString(auth),
		topics,
		time.Now(),
	)
}

func TestSendToTopic(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := repositoryimpl.NewYAMLRepository(store)

	subs := []*pushsubscription.Subscription{
		newSubscription(t, "rita", "https://push.example/rita", pushsubscription.TopicReviewAvailable),
		newSubscription(t, "alice", "https://push.example/alice"),
		newSubscription(t, "bob", "https://push.example/bob", pushsubscription.TopicWorkAvailable),
		newSubscription(t, "gone", "https://push.example/gone"),
	}
	for _, s := range subs {
		require.NoError(t, repo.Save(ctx, s))
	}

	private, public, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	client := &recordingClient{status: map[string]int{"https://push.example/gone": http.StatusGone}}
	sender := pushnotification.NewSender(&config.VAPIDEnv{
		VAPIDPublicKey:  public,
		VAPIDPrivateKey: private,
		VAPIDContact:    "mailto:ops@example.com",
	}, repo, pushnotification.WithHTTPClient(client))

	sent := sender.SendToTopic(ctx, pushsubscription.TopicReviewAvailable, "alice", &pushnotification.NotificationPayload{
		Title: "Review available",
		Body:  "T1",
	})

	assert.Equal(t, 1, sent)
	assert.ElementsMatch(t, []string{"https://push.example/rita", "https://push.example/gone"}, client.endpoints)

	_, err = repo.Get(ctx, pushsubscription.IDFor("https://push.example/gone"))
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	_, err = repo.Get(ctx, pushsubscription.IDFor("https://push.example/rita"))
	assert.NoError(t, err)
}

func TestSendToTopicWithoutKeys(t *testing.T) {
	client := &recordingClient{}
	sender := pushnotification.NewSender(&config.VAPIDEnv{}, nil, pushnotification.WithHTTPClient(client))

	sent := sender.SendToTopic(context.Background(), pushsubscription.TopicWorkAvailable, "", &pushnotification.NotificationPayload{Title: "x"})
	assert.Zero(t, sent)
	assert.Empty(t, client.endpoints)
}
