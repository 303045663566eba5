// Package audit records who did what.
package audit

import (
	"context"

	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

// Actions written to the audit log.
const (
	ActionLogin              = "Login"
	ActionSignup             = "Signup"
	ActionBudgetTopUp        = "Budget Top Up"
	ActionPointsAssigned     = "Points Assigned"
	ActionRewardIssued       = "Reward Issued"
	ActionRedemptionRequest  = "Redemption Requested"
	ActionRedemptionResolved = "Redemption Resolved"
	ActionUserApproval       = "User Approval Changed"
	ActionUserUpdated        = "User Updated"
	ActionUserDeleted        = "User Deleted"
	ActionPasswordChanged    = "Password Changed"
	ActionCatalogChanged     = "Catalog Changed"
	ActionPostDeleted        = "Post Deleted"
)

// Repository persists audit entries.
type Repository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// Service records audit entries. Recording never fails the caller.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates a new audit service.
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Record stores an audit entry. Storage failures are logged and swallowed.
func (s *Service) Record(ctx context.Context, actorID uint, role, action, details string) {
	entry := &models.AuditLog{
		UserID:  actorID,
		Role:    role,
		Action:  action,
		Details: details,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Error().
			Err(err).
			Uint("user_id", actorID).
			Str("action", action).
			Msg("Failed to record audit log")
	}
}

// List returns the most recent audit entries with the acting user's name and email.
func (s *Service) List(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	entries, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list audit logs")
	}
	return entries, nil
}
