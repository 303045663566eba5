// Package inbox serves in-app notifications and push subscriptions.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

// DefaultLimit is the number of notifications returned per listing.
const DefaultLimit = 50

// Service handles notifications and push subscriptions.
type Service struct {
	notifications  *repository.NotificationRepository
	users          *repository.UserRepository
	vapidPublicKey string
	log            *logger.Logger
}

// NewService creates a new inbox service.
func NewService(notifications *repository.NotificationRepository, users *repository.UserRepository, vapidPublicKey string, log *logger.Logger) *Service {
	return &Service{
		notifications:  notifications,
		users:          users,
		vapidPublicKey: vapidPublicKey,
		log:            log.Component("inbox"),
	}
}

// List returns the caller's most recent notifications.
func (s *Service) List(ctx context.Context, caller authz.Identity, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	items, err := s.notifications.ListForRecipient(ctx, caller.ID, limit)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list notifications")
	}
	return items, nil
}

// MarkAllRead marks every notification of the caller as read.
func (s *Service) MarkAllRead(ctx context.Context, caller authz.Identity) error {
	if err := s.notifications.MarkRead(ctx, caller.ID); err != nil {
		return apperr.Internal(err, "failed to mark notifications read")
	}
	return nil
}

// RequestFromManager sends an employee's message to their manager.
func (s *Service) RequestFromManager(ctx context.Context, employee authz.Identity, message string) (*models.Notification, error) {
	if !employee.Can(authz.ResourceNotification, authz.ActionCreate) {
		return nil, apperr.Forbidden("role %q may not send requests", employee.Role)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.Validation("message is required")
	}

	user, err := s.users.GetByID(ctx, employee.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("user %d not found", employee.ID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load user")
	}
	if user.ManagerID == nil {
		return nil, apperr.Validation("no manager assigned")
	}

	n := &models.Notification{
		SenderID:    &user.ID,
		RecipientID: *user.ManagerID,
		Type:        models.NotificationEmployeeRequest,
		Message:     fmt.Sprintf("%s: %s", user.Name, message),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, apperr.Internal(err, "failed to send request")
	}

	s.log.Info().Uint("sender_id", user.ID).Uint("recipient_id", n.RecipientID).Msg("Employee request sent")
	return n, nil
}

// SubscriptionInput is a browser push subscription.
type SubscriptionInput struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Subscribe stores or refreshes a push subscription for the caller.
func (s *Service) Subscribe(ctx context.Context, caller authz.Identity, in SubscriptionInput) (*models.PushSubscription, error) {
	endpoint, err := url.Parse(in.Endpoint)
	if err != nil || endpoint.Scheme != "https" || endpoint.Host == "" {
		return nil, apperr.Validation("endpoint must be an https URL")
	}
	if in.Keys.P256dh == "" || in.Keys.Auth == "" {
		return nil, apperr.Validation("keys.p256dh and keys.auth are required")
	}

	sub := &models.PushSubscription{
		UserID:    caller.ID,
		Endpoint:  in.Endpoint,
		P256dhKey: in.Keys.P256dh,
		AuthKey:   in.Keys.Auth,
	}
	if err := s.notifications.UpsertSubscription(ctx, sub); err != nil {
		return nil, apperr.Internal(err, "failed to save push subscription")
	}
	return sub, nil
}

// Unsubscribe removes one of the caller's push subscriptions.
func (s *Service) Unsubscribe(ctx context.Context, caller authz.Identity, endpoint string) error {
	if endpoint == "" {
		return apperr.Validation("endpoint is required")
	}
	err := s.notifications.DeleteSubscription(ctx, caller.ID, endpoint)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("push subscription not found")
	}
	if err != nil {
		return apperr.Internal(err, "failed to remove push subscription")
	}
	return nil
}

// VAPIDPublicKey returns the application server key browsers subscribe with.
func (s *Service) VAPIDPublicKey() string {
	return s.vapidPublicKey
}
