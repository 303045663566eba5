package leaderboard

import (
	"context"
	"time"

	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/authz"
)

// Periods accepted by GetUserStats.
const (
	PeriodDay     = "day"
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodYear    = "year"
	PeriodAllTime = "all_time"
)

// UserStats summarizes the recognition an employee received over a period.
type UserStats struct {
	UserID           uint   `json:"user_id"`
	Name             string `json:"name"`
	Period           string `json:"period"`
	PointsEarned     int64  `json:"points_earned"`
	RecognitionCount int    `json:"recognition_count"`
	DistinctGivers   int    `json:"distinct_givers"`
	PeerRank         int    `json:"peer_rank"`
	PeerCount        int    `json:"peer_count"`
}

// GetUserStats returns recognition statistics for an employee.
func (s *Service) GetUserStats(ctx context.Context, employee authz.Identity, period string) (*UserStats, error) {
	if !validPeriod(period) {
		return nil, apperr.Validation("period must be one of day, week, month, year, all_time")
	}
	if period == "" {
		period = PeriodAllTime
	}

	user, err := s.userRepo.GetByID(ctx, employee.ID)
	if err != nil {
		return nil, notFoundOr(err, "user", employee.ID)
	}

	startDate, endDate := calculatePeriodRange(s.now(), period)

	entries, err := s.standingsRepo.ListRewardPointsByReceiver(ctx, employee.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to get recognition history")
	}

	stats := &UserStats{
		UserID: user.ID,
		Name:   user.Name,
		Period: period,
	}

	givers := make(map[uint]struct{})
	for _, e := range entries {
		if e.CreatedAt.Before(startDate) || e.CreatedAt.After(endDate) {
			continue
		}
		stats.PointsEarned += e.Points
		stats.RecognitionCount++
		givers[e.GiverID] = struct{}{}
	}
	stats.DistinctGivers = len(givers)

	// Peer rank is over all-time points and only exists for employees with a manager.
	if user.ManagerID != nil {
		peers, err := s.GetPeerLeaderboard(ctx, employee)
		if err != nil {
			s.log.Warn().Err(err).Uint("user_id", employee.ID).Msg("Failed to get peer rank")
		} else {
			stats.PeerCount = len(peers)
			for _, p := range peers {
				if p.UserID == employee.ID {
					stats.PeerRank = p.Rank
				}
			}
		}
	}

	return stats, nil
}

func validPeriod(period string) bool {
	switch period {
	case "", PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodAllTime:
		return true
	}
	return false
}

// calculatePeriodRange calculates the start and end dates for a given period.
func calculatePeriodRange(now time.Time, period string) (startDate, endDate time.Time) {
	endDate = now

	switch period {
	case PeriodDay:
		startDate = now.Add(-24 * time.Hour)
	case PeriodWeek:
		startDate = now.Add(-7 * 24 * time.Hour)
	case PeriodMonth:
		startDate = now.Add(-30 * 24 * time.Hour)
	case PeriodYear:
		startDate = now.Add(-365 * 24 * time.Hour)
	default:
		// All time: use a very old date
		startDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	return startDate, endDate
}
