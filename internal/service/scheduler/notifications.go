package scheduler

import (
	"github.com/zetarewards/recognition-api/internal/mattermost"
	"github.com/zetarewards/recognition-api/internal/models"
)

// buildPendingRedemptions transforms Redemption models into Mattermost PendingRedemption format.
func buildPendingRedemptions(redemptions []models.Redemption) []mattermost.PendingRedemption {
	pending := make([]mattermost.PendingRedemption, 0, len(redemptions))

	for _, r := range redemptions {
		// Already resolved between query and send
		if r.IsResolved() || r.RequestedAt.IsZero() {
			continue
		}

		name := r.UserName
		if name == "" {
			name = "unknown"
		}

		pending = append(pending, mattermost.PendingRedemption{
			ID:             r.ID,
			EmployeeName:   name,
			RewardTitle:    r.RewardTitle,
			RequiredPoints: r.RequiredPoints,
			RequestedAt:    r.RequestedAt,
		})
	}

	return pending
}
