package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/mattermost"
	"github.com/zetarewards/recognition-api/internal/metrics"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/notify"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/internal/service/audit"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

const sideEffectTimeout = 30 * time.Second

// Auditor records audit entries.
type Auditor interface {
	Record(ctx context.Context, actorID uint, role, action, details string)
}

// Announcer posts recognitions to a team channel.
type Announcer interface {
	AnnounceRecognition(ctx context.Context, r mattermost.Recognition) error
}

// Broadcaster fans a push message out to subscribers without blocking.
type Broadcaster interface {
	Broadcast(msg notify.Message)
}

// Invalidator drops cached data derived from the ledger.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Hooks are the side effects run after a ledger change commits. Nil hooks are skipped.
type Hooks struct {
	Audit       Auditor
	Announcer   Announcer
	Push        Broadcaster
	Leaderboard Invalidator
}

// Service owns every mutation of budgets, pools, ledger entries and redemptions.
type Service struct {
	db            *repository.DB
	ledger        *repository.LedgerRepository
	users         *repository.UserRepository
	catalog       *repository.CatalogRepository
	posts         *repository.PostRepository
	notifications *repository.NotificationRepository
	hooks         Hooks
	log           *logger.Logger
	now           func() time.Time
	wg            sync.WaitGroup
}

// NewService creates a new ledger service.
func NewService(
	db *repository.DB,
	ledgerRepo *repository.LedgerRepository,
	userRepo *repository.UserRepository,
	catalogRepo *repository.CatalogRepository,
	postRepo *repository.PostRepository,
	notificationRepo *repository.NotificationRepository,
	hooks Hooks,
	log *logger.Logger,
) *Service {
	return &Service{
		db:            db,
		ledger:        ledgerRepo,
		users:         userRepo,
		catalog:       catalogRepo,
		posts:         postRepo,
		notifications: notificationRepo,
		hooks:         hooks,
		log:           log.Component("ledger"),
		now:           time.Now,
	}
}

// Wait blocks until background side effects started by the service finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

// TopUpBudget adds points to an admin's budget, creating it on first use.
func (s *Service) TopUpBudget(ctx context.Context, admin authz.Identity, points int64, pointValue *decimal.Decimal) (*models.AdminBudget, error) {
	if points <= 0 {
		return nil, apperr.Validation("points must be greater than zero")
	}
	if pointValue != nil && pointValue.IsNegative() {
		return nil, apperr.Validation("point value must not be negative")
	}

	budget, err := s.ledger.TopUpBudget(ctx, admin.ID, points, pointValue)
	if err != nil {
		return nil, apperr.Internal(err, "failed to top up budget")
	}

	s.record(ctx, admin, audit.ActionBudgetTopUp, fmt.Sprintf("Added %d points to budget", points))
	s.log.Info().
		Uint("admin_id", admin.ID).
		Int64("points", points).
		Int64("remaining", budget.RemainingPoints).
		Msg("Budget topped up")

	return budget, nil
}

// GetBudget returns an admin's budget.
func (s *Service) GetBudget(ctx context.Context, adminID uint) (*models.AdminBudget, error) {
	budget, err := s.ledger.GetBudget(ctx, adminID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("budget not found for admin %d", adminID).WithCode(apperr.CodeBudgetNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load budget")
	}
	return budget, nil
}

// Allocate moves points from an admin's budget into a new manager pool.
func (s *Service) Allocate(ctx context.Context, admin authz.Identity, managerID uint, points int64) (*models.ManagerPoints, error) {
	if points <= 0 {
		return nil, apperr.Validation("points must be greater than zero")
	}
	if err := s.requireManager(ctx, managerID); err != nil {
		return nil, err
	}

	pool := &models.ManagerPoints{ManagerID: managerID, PointsAssigned: points, RemainingPoints: points}
	err := s.db.Transaction(ctx, func(tx *repository.DB) error {
		ledger := s.ledger.WithTx(tx)

		if _, err := ledger.GetManagerPoints(ctx, managerID); err == nil {
			return apperr.Conflict("manager %d already has points assigned", managerID).WithCode(apperr.CodeAlreadyAssigned)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if err := s.debitBudget(ctx, ledger, admin.ID, points); err != nil {
			return err
		}

		if err := ledger.CreateManagerPoints(ctx, pool); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("manager %d already has points assigned", managerID).WithCode(apperr.CodeAlreadyAssigned)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("allocate", err, "failed to allocate points")
	}

	metrics.RecordPointsAllocated("initial", points)
	s.record(ctx, admin, audit.ActionPointsAssigned, fmt.Sprintf("Assigned %d points to manager %d", points, managerID))
	s.log.Info().
		Uint("admin_id", admin.ID).
		Uint("manager_id", managerID).
		Int64("points", points).
		Msg("Points allocated to manager")

	return pool, nil
}

// IncrementAllocation adds points from an admin's budget to an existing manager pool.
func (s *Service) IncrementAllocation(ctx context.Context, admin authz.Identity, managerID uint, points int64) (*models.ManagerPoints, error) {
	if points <= 0 {
		return nil, apperr.Validation("points must be greater than zero")
	}

	var pool *models.ManagerPoints
	err := s.db.Transaction(ctx, func(tx *repository.DB) error {
		ledger := s.ledger.WithTx(tx)

		if _, err := ledger.GetManagerPoints(ctx, managerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound("manager %d has no points assigned", managerID)
			}
			return err
		}

		if err := s.debitBudget(ctx, ledger, admin.ID, points); err != nil {
			return err
		}
		if err := ledger.CreditManagerPoints(ctx, managerID, points); err != nil {
			return err
		}

		var err error
		pool, err = ledger.GetManagerPoints(ctx, managerID)
		return err
	})
	if err != nil {
		return nil, s.fail("increment_allocation", err, "failed to increment allocation")
	}

	metrics.RecordPointsAllocated("increment", points)
	s.record(ctx, admin, audit.ActionPointsAssigned, fmt.Sprintf("Added %d points to manager %d", points, managerID))
	s.log.Info().
		Uint("admin_id", admin.ID).
		Uint("manager_id", managerID).
		Int64("points", points).
		Msg("Manager allocation incremented")

	return pool, nil
}

// debitBudget checks for a budget and debits it within the caller's transaction.
func (s *Service) debitBudget(ctx context.Context, ledger *repository.LedgerRepository, adminID uint, points int64) error {
	budget, err := ledger.GetBudget(ctx, adminID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("budget not found for admin %d", adminID).WithCode(apperr.CodeBudgetNotFound)
	}
	if err != nil {
		return err
	}

	insufficient := apperr.InsufficientBudget("budget has %d points remaining, %d requested", budget.RemainingPoints, points).
		WithCode(apperr.CodeInsufficientBudget)
	if points > budget.RemainingPoints {
		return insufficient
	}
	if err := ledger.DebitBudget(ctx, adminID, points); err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return insufficient
		}
		return err
	}
	return nil
}

func (s *Service) requireManager(ctx context.Context, managerID uint) error {
	manager, err := s.users.GetByID(ctx, managerID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("manager %d not found", managerID)
	}
	if err != nil {
		return apperr.Internal(err, "failed to load manager")
	}
	if manager.Role != models.RoleManager {
		return apperr.Validation("user %d is not a manager", managerID)
	}
	return nil
}

// IssueRequest describes a reward to issue.
type IssueRequest struct {
	ReceiverID uint
	Points     int64
	Reason     string
	ReasonID   *uint
	Caption    string
	ImageURL   *string
}

// IssueResult is the ledger entry and feed post created by an issuance.
type IssueResult struct {
	Entry models.RewardPoints `json:"entry"`
	Post  models.Post         `json:"post"`
}

// IssueReward grants points from the giver's pool to a receiver. The debit,
// the ledger entry and the derived post commit together or not at all.
func (s *Service) IssueReward(ctx context.Context, giver authz.Identity, req IssueRequest) (*IssueResult, error) {
	if !giver.Can(authz.ResourceIssuance, authz.ActionCreate) {
		return nil, apperr.Forbidden("role %q may not issue rewards", giver.Role)
	}
	if req.Points <= 0 {
		return nil, apperr.Validation("points must be greater than zero")
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" && req.ReasonID == nil {
		return nil, apperr.Validation("reason or reason_id is required")
	}
	if req.ReceiverID == giver.ID {
		return nil, apperr.Validation("cannot reward yourself")
	}

	giverUser, err := s.users.GetByID(ctx, giver.ID)
	if err != nil {
		return nil, s.lookupError(err, "giver", giver.ID)
	}
	receiver, err := s.users.GetByID(ctx, req.ReceiverID)
	if err != nil {
		return nil, s.lookupError(err, "receiver", req.ReceiverID)
	}
	if giver.Role == models.RoleManager && (receiver.ManagerID == nil || *receiver.ManagerID != giver.ID) {
		return nil, apperr.Forbidden("employee %d does not report to manager %d", receiver.ID, giver.ID)
	}

	reasonText, imageURL := req.Reason, req.ImageURL
	if req.ReasonID != nil {
		reason, err := s.catalog.GetReason(ctx, *req.ReasonID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Validation("reward reason %d does not exist", *req.ReasonID).WithCode(apperr.CodeInvalidReason)
		}
		if err != nil {
			return nil, apperr.Internal(err, "failed to load reward reason")
		}
		reasonText = reason.Reason
		if imageURL == nil {
			imageURL = reason.Img
		}
	}

	result := &IssueResult{}
	err = s.db.Transaction(ctx, func(tx *repository.DB) error {
		ledger := s.ledger.WithTx(tx)

		var debitErr error
		if giver.Role == models.RoleManager {
			debitErr = ledger.DebitManagerPoints(ctx, giver.ID, req.Points)
		} else {
			debitErr = ledger.DebitBudget(ctx, giver.ID, req.Points)
		}
		if errors.Is(debitErr, repository.ErrConditionFailed) {
			return apperr.InsufficientPoints("not enough points to issue %d", req.Points).WithCode(apperr.CodeInsufficientPoints)
		}
		if debitErr != nil {
			return debitErr
		}

		result.Entry = models.RewardPoints{
			GiverID:    giver.ID,
			ReceiverID: receiver.ID,
			Points:     req.Points,
			Reason:     reasonText,
			ReasonID:   req.ReasonID,
		}
		if err := ledger.CreateRewardPoints(ctx, &result.Entry); err != nil {
			return err
		}

		result.Post = models.Post{
			GiverID:        giver.ID,
			ReceiverID:     receiver.ID,
			Points:         req.Points,
			Reason:         reasonText,
			ImageURL:       imageURL,
			Caption:        req.Caption,
			RewardPointsID: &result.Entry.ID,
		}
		return s.posts.WithTx(tx).Create(ctx, &result.Post)
	})
	if err != nil {
		return nil, s.fail("issue_reward", err, "failed to issue reward")
	}

	metrics.RecordRewardIssued(giver.Role, req.Points)
	s.log.Info().
		Uint("giver_id", giver.ID).
		Uint("receiver_id", receiver.ID).
		Int64("points", req.Points).
		Uint("entry_id", result.Entry.ID).
		Msg("Reward issued")

	s.afterIssue(ctx, giver, giverUser, receiver, result)

	return result, nil
}

// afterIssue runs the post-commit side effects of an issuance. None of them
// can undo the ledger change.
func (s *Service) afterIssue(ctx context.Context, giver authz.Identity, giverUser, receiver *models.User, result *IssueResult) {
	entry := result.Entry
	s.record(ctx, giver, audit.ActionRewardIssued,
		fmt.Sprintf("Issued %d points to user %d for %q", entry.Points, receiver.ID, entry.Reason))

	s.notifyUser(ctx, &giver.ID, receiver.ID, models.NotificationRewardReceived,
		fmt.Sprintf("%s recognized you with %d points: %s", giverUser.Name, entry.Points, entry.Reason))

	if s.hooks.Leaderboard != nil {
		s.hooks.Leaderboard.Invalidate(ctx)
	}

	if s.hooks.Push != nil {
		s.hooks.Push.Broadcast(notify.Message{
			Title: "New recognition 🎉",
			Body:  fmt.Sprintf("%s recognized %s with %d points", giverUser.Name, receiver.Name, entry.Points),
			URL:   "/feed",
			Tag:   fmt.Sprintf("post-%d", result.Post.ID),
		})
	}

	if s.hooks.Announcer != nil {
		recognition := mattermost.Recognition{
			GiverName:    giverUser.Name,
			ReceiverName: receiver.Name,
			Points:       entry.Points,
			Reason:       entry.Reason,
			Caption:      result.Post.Caption,
		}
		if result.Post.ImageURL != nil {
			recognition.ImageURL = *result.Post.ImageURL
		}
		s.background(ctx, func(ctx context.Context) {
			if err := s.hooks.Announcer.AnnounceRecognition(ctx, recognition); err != nil {
				s.log.Warn().Err(err).Uint("entry_id", entry.ID).Msg("Failed to announce recognition")
			}
		})
	}
}

// RequestRedemption creates a pending redemption if the employee can cover it.
// The employee row is locked for the duration of the check so concurrent
// requests are evaluated one after another.
func (s *Service) RequestRedemption(ctx context.Context, employee authz.Identity, rewardID uint) (*models.Redemption, error) {
	if !employee.Can(authz.ResourceRedemption, authz.ActionCreate) {
		return nil, apperr.Forbidden("role %q may not redeem rewards", employee.Role)
	}

	reward, err := s.catalog.GetReward(ctx, rewardID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("reward %d not found", rewardID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load reward")
	}

	redemption := &models.Redemption{
		UserID:         employee.ID,
		RewardID:       &reward.ID,
		RewardTitle:    reward.Title,
		RequiredPoints: reward.PointsRequired,
		CategoryID:     reward.CategoryID,
		Status:         models.RedemptionPending,
		RequestedAt:    s.now(),
	}

	err = s.db.Transaction(ctx, func(tx *repository.DB) error {
		ledger := s.ledger.WithTx(tx)

		if _, err := ledger.LockUser(ctx, employee.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound("user %d not found", employee.ID)
			}
			return err
		}

		balance, err := s.totals(ctx, ledger, employee.ID)
		if err != nil {
			return err
		}
		if reward.PointsRequired > balance.Spendable {
			return apperr.InsufficientPoints("reward needs %d points, %d available", reward.PointsRequired, balance.Spendable).
				WithCode(apperr.CodeInsufficientPoints)
		}

		return ledger.CreateRedemption(ctx, redemption)
	})
	if err != nil {
		return nil, s.fail("request_redemption", err, "failed to request redemption")
	}

	metrics.RecordRedemptionRequested(redemption.RequiredPoints)
	s.record(ctx, employee, audit.ActionRedemptionRequest,
		fmt.Sprintf("Requested %q for %d points", redemption.RewardTitle, redemption.RequiredPoints))
	s.log.Info().
		Uint("user_id", employee.ID).
		Uint("redemption_id", redemption.ID).
		Int64("points", redemption.RequiredPoints).
		Msg("Redemption requested")

	return redemption, nil
}

// ResolveRedemption approves or declines a pending redemption exactly once.
func (s *Service) ResolveRedemption(ctx context.Context, admin authz.Identity, redemptionID uint, status, declineReason string) (*models.Redemption, error) {
	var reason *string
	switch status {
	case models.RedemptionApproved:
	case models.RedemptionDeclined:
		declineReason = strings.TrimSpace(declineReason)
		if declineReason == "" {
			return nil, apperr.Validation("decline reason is required")
		}
		reason = &declineReason
	default:
		return nil, apperr.Validation("status must be %q or %q", models.RedemptionApproved, models.RedemptionDeclined)
	}

	err := s.ledger.ResolveRedemption(ctx, redemptionID, status, reason, admin.ID, s.now())
	if errors.Is(err, repository.ErrConditionFailed) {
		existing, getErr := s.ledger.GetRedemption(ctx, redemptionID)
		if errors.Is(getErr, repository.ErrNotFound) {
			return nil, apperr.NotFound("redemption %d not found", redemptionID)
		}
		if getErr != nil {
			return nil, apperr.Internal(getErr, "failed to load redemption")
		}
		metrics.RecordLedgerRejection("resolve_redemption", string(apperr.KindConflict))
		return nil, apperr.Conflict("redemption %d is already %s", redemptionID, existing.Status).WithCode(apperr.CodeAlreadyResolved)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to resolve redemption")
	}

	redemption, err := s.ledger.GetRedemption(ctx, redemptionID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load redemption")
	}

	metrics.RecordRedemptionResolved(status)
	s.record(ctx, admin, audit.ActionRedemptionResolved, fmt.Sprintf("Redemption %d %s", redemptionID, status))

	message := fmt.Sprintf("Your redemption of %q was %s", redemption.RewardTitle, status)
	if reason != nil {
		message += ": " + *reason
	}
	s.notifyUser(ctx, &admin.ID, redemption.UserID, models.NotificationRedemptionResolved, message)

	s.log.Info().
		Uint("admin_id", admin.ID).
		Uint("redemption_id", redemptionID).
		Str("status", status).
		Msg("Redemption resolved")

	return redemption, nil
}

// Balance computes a user's balance from their ledger rows.
func (s *Service) Balance(ctx context.Context, userID uint) (Balance, error) {
	entries, err := s.ledger.ListRewardPointsByReceiver(ctx, userID)
	if err != nil {
		return Balance{}, apperr.Internal(err, "failed to load ledger entries")
	}
	redemptions, err := s.ledger.ListRedemptionsByUser(ctx, userID)
	if err != nil {
		return Balance{}, apperr.Internal(err, "failed to load redemptions")
	}
	return Compute(entries, redemptions, userID), nil
}

// History returns the ledger entries credited to a user, newest first.
func (s *Service) History(ctx context.Context, userID uint) ([]models.RewardPoints, error) {
	entries, err := s.ledger.ListRewardPointsByReceiver(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load ledger entries")
	}
	return entries, nil
}

// GivenHistory returns the ledger entries granted by a manager or admin, newest first.
func (s *Service) GivenHistory(ctx context.Context, giverID uint) ([]models.RewardPoints, error) {
	entries, err := s.ledger.ListRewardPointsByGiver(ctx, giverID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load issued rewards")
	}
	return entries, nil
}

// ListRedemptions lists redemptions of every user, optionally filtered by status.
func (s *Service) ListRedemptions(ctx context.Context, status string) ([]models.Redemption, error) {
	switch status {
	case "", models.RedemptionPending, models.RedemptionApproved, models.RedemptionDeclined:
	default:
		return nil, apperr.Validation("unknown status %q", status)
	}

	redemptions, err := s.ledger.ListRedemptions(ctx, status)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list redemptions")
	}
	return redemptions, nil
}

// ListUserRedemptions lists one user's redemptions.
func (s *Service) ListUserRedemptions(ctx context.Context, userID uint) ([]models.Redemption, error) {
	redemptions, err := s.ledger.ListRedemptionsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list redemptions")
	}
	return redemptions, nil
}

// ManagerSummary is a manager's pool position.
type ManagerSummary struct {
	AssignedPoints  int64 `json:"assigned_points"`
	RemainingPoints int64 `json:"remaining_points"`
}

// ManagerSummary returns a manager's pool, or zeros when none was allocated.
func (s *Service) ManagerSummary(ctx context.Context, managerID uint) (ManagerSummary, error) {
	pool, err := s.ledger.GetManagerPoints(ctx, managerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ManagerSummary{}, nil
	}
	if err != nil {
		return ManagerSummary{}, apperr.Internal(err, "failed to load manager points")
	}
	return ManagerSummary{AssignedPoints: pool.PointsAssigned, RemainingPoints: pool.RemainingPoints}, nil
}

// AdminSummary is an admin's budget position and the total handed to managers.
type AdminSummary struct {
	TotalPoints     int64           `json:"total_points"`
	RemainingPoints int64           `json:"remaining_points"`
	PointValue      decimal.Decimal `json:"point_value"`
	AssignedPoints  int64           `json:"assigned_points"`
}

// AdminSummary returns an admin's budget, or zeros when none exists.
func (s *Service) AdminSummary(ctx context.Context, adminID uint) (AdminSummary, error) {
	assigned, err := s.ledger.SumAssignedToManagers(ctx)
	if err != nil {
		return AdminSummary{}, apperr.Internal(err, "failed to sum manager allocations")
	}

	budget, err := s.ledger.GetBudget(ctx, adminID)
	if errors.Is(err, repository.ErrNotFound) {
		return AdminSummary{AssignedPoints: assigned}, nil
	}
	if err != nil {
		return AdminSummary{}, apperr.Internal(err, "failed to load budget")
	}

	return AdminSummary{
		TotalPoints:     budget.TotalPoints,
		RemainingPoints: budget.RemainingPoints,
		PointValue:      budget.PointValue,
		AssignedPoints:  assigned,
	}, nil
}

func (s *Service) totals(ctx context.Context, ledger *repository.LedgerRepository, userID uint) (Balance, error) {
	earned, err := ledger.SumEarned(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	redeemed, err := ledger.SumRedemptions(ctx, userID, models.RedemptionApproved)
	if err != nil {
		return Balance{}, err
	}
	pending, err := ledger.SumRedemptions(ctx, userID, models.RedemptionPending)
	if err != nil {
		return Balance{}, err
	}
	return Totals{Earned: earned, Redeemed: redeemed, Pending: pending}.Balance(), nil
}

// fail passes application errors through, counting business-rule rejections,
// and wraps anything else as internal.
func (s *Service) fail(operation string, err error, message string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Kind != apperr.KindInternal {
			metrics.RecordLedgerRejection(operation, string(appErr.Kind))
		}
		return appErr
	}
	s.log.Error().Err(err).Str("operation", operation).Msg("Ledger operation failed")
	return apperr.Internal(err, message)
}

func (s *Service) lookupError(err error, what string, id uint) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("%s %d not found", what, id)
	}
	return apperr.Internal(err, "failed to load "+what)
}

func (s *Service) record(ctx context.Context, actor authz.Identity, action, details string) {
	if s.hooks.Audit != nil {
		s.hooks.Audit.Record(ctx, actor.ID, actor.Role, action, details)
	}
}

func (s *Service) notifyUser(ctx context.Context, senderID *uint, recipientID uint, kind, message string) {
	n := &models.Notification{SenderID: senderID, RecipientID: recipientID, Type: kind, Message: message}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.log.Warn().Err(err).Uint("recipient_id", recipientID).Msg("Failed to store notification")
	}
}

// background runs fn after the request returns, detached from its cancellation.
func (s *Service) background(ctx context.Context, fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		fn(ctx)
	}()
}
