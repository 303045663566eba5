package notify

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zetarewards/recognition-api/internal/config"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

type fakeStore struct {
	mu     sync.Mutex
	subs   []models.PushSubscription
	pruned []string
	err    error
}

func (f *fakeStore) ListSubscriptions(_ context.Context) ([]models.PushSubscription, error) {
	return f.subs, f.err
}

func (f *fakeStore) DeleteSubscriptionByEndpoint(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruned = append(f.pruned, endpoint)
	return nil
}

type fakeSender struct {
	mu      sync.Mutex
	results map[string]error
	sent    []string
}

func (f *fakeSender) Send(_ context.Context, sub *models.PushSubscription, _ Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sub.Endpoint)
	return f.results[sub.Endpoint]
}

func TestDispatcher_Broadcast(t *testing.T) {
	store := &fakeStore{subs: []models.PushSubscription{
		{UserID: 1, Endpoint: "https://push.example/a"},
		{UserID: 2, Endpoint: "https://push.example/gone"},
		{UserID: 3, Endpoint: "https://push.example/broken"},
	}}
	sender := &fakeSender{results: map[string]error{
		"https://push.example/gone":   ErrExpired,
		"https://push.example/broken": errors.New("boom"),
	}}

	d := NewDispatcher(store, sender, logger.Nop())
	d.Broadcast(Message{Title: "New recognition", Body: "Eve received 40 points"})
	d.Wait()

	assert.Len(t, sender.sent, 3)
	assert.Equal(t, []string{"https://push.example/gone"}, store.pruned)
}

func TestDispatcher_DisabledWithoutSender(t *testing.T) {
	store := &fakeStore{subs: []models.PushSubscription{{Endpoint: "https://push.example/a"}}}

	d := NewDispatcher(store, nil, logger.Nop())
	d.Broadcast(Message{Title: "ignored"})
	d.Wait()

	assert.Empty(t, store.pruned)
}

func TestDispatcher_StoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	sender := &fakeSender{}

	d := NewDispatcher(store, sender, logger.Nop())
	d.Broadcast(Message{Title: "x"})
	d.Wait()

	assert.Empty(t, sender.sent)
}

func newSubscription(t *testing.T, endpoint string) *models.PushSubscription {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	return &models.PushSubscription{
		UserID:    1,
		Endpoint:  endpoint,
		P256dhKey: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		AuthKey:   base64.RawURLEncoding.EncodeToString(auth),
	}
}

func newSender(t *testing.T) *WebPushSender {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)

	return NewWebPushSender(&config.WebPushConfig{
		Enabled:         true,
		VAPIDPublicKey:  pub,
		VAPIDPrivateKey: priv,
		Subscriber:      "admin@example.com",
	})
}

func TestWebPushSender_Send(t *testing.T) {
	var gotTTL, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTTL = r.Header.Get("TTL")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	sender := newSender(t)
	err := sender.Send(context.Background(), newSubscription(t, server.URL), Message{Title: "hi", Body: "there"})
	require.NoError(t, err)

	assert.Equal(t, "86400", gotTTL)
	assert.Contains(t, gotAuth, "vapid")
	assert.NotEmpty(t, sender.VAPIDPublicKey())
}

func TestWebPushSender_Expired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	err := newSender(t).Send(context.Background(), newSubscription(t, server.URL), Message{Title: "hi"})
	assert.ErrorIs(t, err, ErrExpired)
}

func TestWebPushSender_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := newSender(t).Send(context.Background(), newSubscription(t, server.URL), Message{Title: "hi"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExpired)
	assert.Contains(t, err.Error(), "500")
}
