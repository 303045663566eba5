// Package notify delivers Web Push notifications to stored browser subscriptions.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/zetarewards/recognition-api/internal/config"
	"github.com/zetarewards/recognition-api/internal/models"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// Message is the JSON payload delivered to the service worker.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Sender delivers one message to one subscription.
type Sender interface {
	Send(ctx context.Context, sub *models.PushSubscription, msg Message) error
}

// WebPushSender sends VAPID-signed Web Push messages.
type WebPushSender struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        int
	httpClient *http.Client
}

// NewWebPushSender creates a sender from the VAPID settings.
func NewWebPushSender(cfg *config.WebPushConfig) *WebPushSender {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 86400
	}
	return &WebPushSender{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subscriber: cfg.Subscriber,
		ttl:        ttl,
		httpClient: http.DefaultClient,
	}
}

// VAPIDPublicKey returns the key browsers need to subscribe.
func (s *WebPushSender) VAPIDPublicKey() string {
	return s.publicKey
}

// Send encrypts and posts a message to the subscription's push service.
func (s *WebPushSender) Send(ctx context.Context, sub *models.PushSubscription, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		HTTPClient:      s.httpClient,
		Subscriber:      s.subscriber,
		TTL:             s.ttl,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}

	return nil
}
