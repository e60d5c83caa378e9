package claim

import (
	"context"

	"github.com/shopspring/decimal"
)

// Totals are the whole-portfolio sums the dashboard leads with.
type Totals struct {
	ClaimCount  int64           `json:"claim_count"`
	TotalBilled decimal.Decimal `json:"total_billed"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
}

// StatusStats is one row of the per-status breakdown.
type StatusStats struct {
	Status      Status          `json:"status"`
	Count       int64           `json:"count"`
	TotalBilled decimal.Decimal `json:"total_billed"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
}

// InsurerStats is one row of the per-insurer breakdown.
type InsurerStats struct {
	InsurerName    string          `json:"insurer_name"`
	Count          int64           `json:"count"`
	TotalBilled    decimal.Decimal `json:"total_billed"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	AvgPaymentRate float64         `json:"avg_payment_rate"`
}

// StatsRepository is the read-only aggregation surface behind the dashboard.
// Every method recomputes from the current claim set; nothing is cached.
type StatsRepository interface {
	Totals(ctx context.Context) (*Totals, error)

	// StatusBreakdown groups claims by status, ordered by status.
	StatusBreakdown(ctx context.Context) ([]*StatusStats, error)

	// InsurerBreakdown groups claims by insurer, ordered by claim count
	// descending, limited to the top n insurers.
	InsurerBreakdown(ctx context.Context, n int) ([]*InsurerStats, error)

	// FlaggedClaimCount counts distinct claims with at least one active flag.
	FlaggedClaimCount(ctx context.Context) (int64, error)

	// AvgUnderpayment averages billed-paid over claims where paid < billed.
	// Returns zero when no claim is underpaid.
	AvgUnderpayment(ctx context.Context) (decimal.Decimal, error)

	// TopUnderpaid returns the n claims with the largest positive
	// billed-paid gap, largest first.
	TopUnderpaid(ctx context.Context, n int) ([]*Claim, error)
}
