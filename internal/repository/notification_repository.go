package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/zetarewards/recognition-api/internal/models"
)

// NotificationRepository handles in-app notifications and push subscriptions.
type NotificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create stores an in-app notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListForRecipient retrieves a user's notifications, newest first.
func (r *NotificationRepository) ListForRecipient(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	query := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %d: %w", recipientID, err)
	}
	return notifications, nil
}

// MarkRead marks all of a user's notifications as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read for user %d: %w", recipientID, err)
	}
	return nil
}

// UpsertSubscription stores a push subscription. A known endpoint is
// re-bound to the given user with fresh keys.
func (r *NotificationRepository) UpsertSubscription(ctx context.Context, sub *models.PushSubscription) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh_key", "auth_key"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}
	return nil
}

// DeleteSubscription removes a user's subscription for an endpoint.
func (r *NotificationRepository) DeleteSubscription(ctx context.Context, userID uint, endpoint string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&models.PushSubscription{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete push subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete push subscription: %w", ErrNotFound)
	}
	return nil
}

// DeleteSubscriptionByEndpoint removes a subscription regardless of owner.
// It is used to prune endpoints the push service reports as gone.
func (r *NotificationRepository) DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error {
	if err := r.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&models.PushSubscription{}).Error; err != nil {
		return fmt.Errorf("failed to prune push subscription: %w", err)
	}
	return nil
}

// ListSubscriptions retrieves every stored push subscription.
func (r *NotificationRepository) ListSubscriptions(ctx context.Context) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	return subs, nil
}
