// Package ledger implements budgets, allocations, reward issuance and redemptions.
package ledger

import "github.com/zetarewards/recognition-api/internal/models"

// Balance is an employee's derived point position. It is recomputed from the
// ledger on every read and never stored.
type Balance struct {
	Earned    int64 `json:"earned"`
	Redeemed  int64 `json:"redeemed"`
	Pending   int64 `json:"pending"`
	Available int64 `json:"available"`
	Spendable int64 `json:"spendable"`
}

// Totals are the raw sums a Balance is derived from.
type Totals struct {
	Earned   int64
	Redeemed int64
	Pending  int64
}

// Balance derives available and spendable points. Approved redemptions are
// deducted from available; pending ones are additionally held back from
// spendable so they cannot be double-spent before approval.
func (t Totals) Balance() Balance {
	available := t.Earned - t.Redeemed
	return Balance{
		Earned:    t.Earned,
		Redeemed:  t.Redeemed,
		Pending:   t.Pending,
		Available: available,
		Spendable: available - t.Pending,
	}
}

// Compute derives a user's balance from ledger entries and redemptions.
// Rows belonging to other users are ignored.
func Compute(entries []models.RewardPoints, redemptions []models.Redemption, userID uint) Balance {
	var t Totals
	for _, e := range entries {
		if e.ReceiverID == userID {
			t.Earned += e.Points
		}
	}
	for _, r := range redemptions {
		if r.UserID != userID {
			continue
		}
		switch r.Status {
		case models.RedemptionApproved:
			t.Redeemed += r.RequiredPoints
		case models.RedemptionPending:
			t.Pending += r.RequiredPoints
		}
	}
	return t.Balance()
}
