package repository

import (
	"context"
	"fmt"

	"github.com/zetarewards/recognition-api/internal/models"
)

// AuditRepository handles audit log persistence.
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create stores an audit log entry.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// List retrieves audit logs joined with the acting user, newest first.
// Entries of deleted users keep a nil name and email.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Select("audit_logs.*, users.name AS name, users.email AS email").
		Joins("LEFT JOIN users ON users.id = audit_logs.user_id").
		Order("audit_logs.created_at DESC, audit_logs.id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.AuditEntry
	if err := query.Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return entries, nil
}
