// Package leaderboard provides leaderboard and ranking services.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/cache"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

const (
	versionKey = "leaderboard:version"

	// DefaultCacheTTL bounds how stale a board can get if an invalidation is lost.
	DefaultCacheTTL = time.Minute
)

// Sort orders.
const (
	OrderName   = "name"
	OrderPoints = "points"
)

// StandingsRepository interface for ledger standings.
type StandingsRepository interface {
	ListManagerStandings(ctx context.Context) ([]repository.ManagerStanding, error)
	ListEmployeeStandings(ctx context.Context, managerID uint) ([]repository.EmployeeStanding, error)
	ListRewardPointsByReceiver(ctx context.Context, receiverID uint) ([]models.RewardPoints, error)
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Entry represents a single entry in a leaderboard.
type Entry struct {
	UserID         uint    `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	DepartmentName *string `json:"department_name,omitempty"`
	TotalPoints    int64   `json:"total_points"`
	Rank           int     `json:"rank"`
}

// Service handles leaderboard generation and user statistics.
type Service struct {
	standingsRepo StandingsRepository
	userRepo      UserRepository
	cache         cache.Cache
	ttl           time.Duration
	log           *logger.Logger
	now           func() time.Time
}

// NewService creates a new leaderboard service with concrete repository types.
func NewService(
	ledgerRepo *repository.LedgerRepository,
	userRepo *repository.UserRepository,
	c cache.Cache,
	ttl time.Duration,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(ledgerRepo, userRepo, c, ttl, log)
}

// NewServiceWithInterfaces creates a new leaderboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	standingsRepo StandingsRepository,
	userRepo UserRepository,
	c cache.Cache,
	ttl time.Duration,
	log *logger.Logger,
) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		standingsRepo: standingsRepo,
		userRepo:      userRepo,
		cache:         c,
		ttl:           ttl,
		log:           log,
		now:           time.Now,
	}
}

// GetManagersLeaderboard returns every manager with the points assigned to
// their pool, ordered by name.
func (s *Service) GetManagersLeaderboard(ctx context.Context) ([]Entry, error) {
	return s.cached(ctx, "managers", func() ([]Entry, error) {
		standings, err := s.standingsRepo.ListManagerStandings(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get manager standings: %w", err)
		}

		entries := make([]Entry, 0, len(standings))
		for _, m := range standings {
			entries = append(entries, Entry{
				UserID:         m.ID,
				Name:           m.Name,
				Email:          m.Email,
				DepartmentName: m.DepartmentName,
				TotalPoints:    m.TotalPoints,
			})
		}
		assignRanks(entries)
		sortLeaderboard(entries, OrderName)
		return entries, nil
	})
}

// GetTeamLeaderboard returns a manager's employees with the points each has
// earned, ordered by name. Managers may only see their own team.
func (s *Service) GetTeamLeaderboard(ctx context.Context, caller authz.Identity, managerID uint) ([]Entry, error) {
	if caller.Role == models.RoleManager && caller.ID != managerID {
		return nil, apperr.Forbidden("managers may only view their own team")
	}

	manager, err := s.userRepo.GetByID(ctx, managerID)
	if err != nil {
		return nil, notFoundOr(err, "manager", managerID)
	}
	if manager.Role != models.RoleManager {
		return nil, apperr.NotFound("manager %d not found", managerID)
	}

	entries, err := s.team(ctx, managerID)
	if err != nil {
		return nil, err
	}
	sortLeaderboard(entries, OrderName)
	return entries, nil
}

// GetPeerLeaderboard returns the employees sharing the caller's manager,
// the caller included, ranked by points earned.
func (s *Service) GetPeerLeaderboard(ctx context.Context, employee authz.Identity) ([]Entry, error) {
	user, err := s.userRepo.GetByID(ctx, employee.ID)
	if err != nil {
		return nil, notFoundOr(err, "user", employee.ID)
	}
	if user.ManagerID == nil {
		return nil, apperr.Validation("no manager assigned")
	}

	entries, err := s.team(ctx, *user.ManagerID)
	if err != nil {
		return nil, err
	}
	sortLeaderboard(entries, OrderPoints)
	return entries, nil
}

// GetUserRank returns the rank of an employee among their peers.
func (s *Service) GetUserRank(ctx context.Context, employee authz.Identity) (int, error) {
	leaderboard, err := s.GetPeerLeaderboard(ctx, employee)
	if err != nil {
		return 0, err
	}

	for _, entry := range leaderboard {
		if entry.UserID == employee.ID {
			return entry.Rank, nil
		}
	}

	// User not found in leaderboard
	return 0, fmt.Errorf("user not found in leaderboard")
}

// Invalidate drops every cached board by moving to a new cache generation.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Set(ctx, versionKey, uuid.NewString(), 0); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate leaderboard cache")
	}
}

func (s *Service) team(ctx context.Context, managerID uint) ([]Entry, error) {
	return s.cached(ctx, fmt.Sprintf("team:%d", managerID), func() ([]Entry, error) {
		standings, err := s.standingsRepo.ListEmployeeStandings(ctx, managerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get employee standings: %w", err)
		}

		entries := make([]Entry, 0, len(standings))
		for _, e := range standings {
			entries = append(entries, Entry{
				UserID:      e.ID,
				Name:        e.Name,
				Email:       e.Email,
				TotalPoints: e.TotalPoints,
			})
		}
		assignRanks(entries)
		return entries, nil
	})
}

// cached serves a board from the cache or builds and stores it. Cache
// failures degrade to building the board every time.
func (s *Service) cached(ctx context.Context, name string, build func() ([]Entry, error)) ([]Entry, error) {
	version, err := s.cache.Get(ctx, versionKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read leaderboard cache version")
	}
	key := fmt.Sprintf("leaderboard:%s:%s", version, name)

	var entries []Entry
	hit, err := cache.GetJSON(ctx, s.cache, key, &entries)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to read cached leaderboard")
	}
	if hit {
		return entries, nil
	}

	entries, err = build()
	if err != nil {
		return nil, apperr.Internal(err, "failed to build leaderboard")
	}
	if err := cache.SetJSON(ctx, s.cache, key, entries, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to cache leaderboard")
	}
	return entries, nil
}

// assignRanks ranks entries by total points, highest first. Ties share a rank
// and the next rank skips accordingly (1, 2, 2, 4).
func assignRanks(entries []Entry) {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return entries[order[a]].TotalPoints > entries[order[b]].TotalPoints
	})

	for pos, idx := range order {
		if pos > 0 && entries[idx].TotalPoints == entries[order[pos-1]].TotalPoints {
			entries[idx].Rank = entries[order[pos-1]].Rank
			continue
		}
		entries[idx].Rank = pos + 1
	}
}

// sortLeaderboard sorts leaderboard entries by the specified order.
func sortLeaderboard(entries []Entry, order string) {
	switch order {
	case OrderPoints:
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Rank != entries[j].Rank {
				return entries[i].Rank < entries[j].Rank
			}
			return entries[i].Name < entries[j].Name
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Name != entries[j].Name {
				return entries[i].Name < entries[j].Name
			}
			return entries[i].UserID < entries[j].UserID
		})
	}
}

func notFoundOr(err error, what string, id uint) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("%s %d not found", what, id)
	}
	return apperr.Internal(err, "failed to load "+what)
}
