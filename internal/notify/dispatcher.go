package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zetarewards/recognition-api/internal/metrics"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

const broadcastTimeout = 2 * time.Minute

// SubscriptionStore lists subscriptions and prunes expired ones.
type SubscriptionStore interface {
	ListSubscriptions(ctx context.Context) ([]models.PushSubscription, error)
	DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error
}

// Dispatcher broadcasts messages to every subscription in the background.
// Delivery is best effort: failures are logged and counted, never returned.
type Dispatcher struct {
	store  SubscriptionStore
	sender Sender
	log    *logger.Logger
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A nil sender disables push delivery.
func NewDispatcher(store SubscriptionStore, sender Sender, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		sender: sender,
		log:    log.Component("push"),
	}
}

// Broadcast starts delivering msg to all subscriptions and returns immediately.
func (d *Dispatcher) Broadcast(msg Message) {
	if d.sender == nil {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
		defer cancel()

		d.deliver(ctx, msg)
	}()
}

// Wait blocks until in-flight broadcasts finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	subs, err := d.store.ListSubscriptions(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("Failed to load push subscriptions")
		metrics.RecordPushFailed("store")
		return
	}

	sent := 0
	for i := range subs {
		sub := &subs[i]
		err := d.sender.Send(ctx, sub, msg)
		switch {
		case err == nil:
			sent++
			metrics.RecordPushSent()
		case errors.Is(err, ErrExpired):
			metrics.RecordPushFailed("expired")
			if err := d.store.DeleteSubscriptionByEndpoint(ctx, sub.Endpoint); err != nil {
				d.log.Warn().Err(err).Uint("user_id", sub.UserID).Msg("Failed to prune expired push subscription")
			} else {
				d.log.Info().Uint("user_id", sub.UserID).Msg("Pruned expired push subscription")
			}
		default:
			metrics.RecordPushFailed("send")
			d.log.Warn().Err(err).Uint("user_id", sub.UserID).Msg("Failed to send push notification")
		}
	}

	d.log.Debug().
		Int("subscriptions", len(subs)).
		Int("sent", sent).
		Str("title", msg.Title).
		Msg("Push broadcast finished")
}
