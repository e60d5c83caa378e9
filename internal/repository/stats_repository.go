package repository

import (
	"context"
	"fmt"

	"github.com/clearhaven/claimdesk/internal/domain/claim"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatsRepository computes the dashboard aggregations with plain SQL over
// the current claim set. Nothing here is cached; every call hits the store.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Totals(ctx context.Context) (*claim.Totals, error) {
	var t claim.Totals
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)                        AS claim_count,
		       COALESCE(SUM(billed_amount), 0) AS total_billed,
		       COALESCE(SUM(paid_amount), 0)   AS total_paid
		FROM claims
	`).Scan(&t).Error
	if err != nil {
		return nil, fmt.Errorf("computing totals: %w", err)
	}
	return &t, nil
}

func (r *StatsRepository) StatusBreakdown(ctx context.Context) ([]*claim.StatusStats, error) {
	var stats []*claim.StatusStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT status,
		       COUNT(*)           AS count,
		       SUM(billed_amount) AS total_billed,
		       SUM(paid_amount)   AS total_paid
		FROM claims
		GROUP BY status
		ORDER BY status
	`).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("computing status breakdown: %w", err)
	}
	return stats, nil
}

func (r *StatsRepository) InsurerBreakdown(ctx context.Context, n int) ([]*claim.InsurerStats, error) {
	var stats []*claim.InsurerStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT insurer_name,
		       COUNT(*)           AS count,
		       SUM(billed_amount) AS total_billed,
		       SUM(paid_amount)   AS total_paid,
		       COALESCE(AVG(paid_amount) * 100 / NULLIF(AVG(billed_amount), 0), 0) AS avg_payment_rate
		FROM claims
		GROUP BY insurer_name
		ORDER BY count DESC, insurer_name
		LIMIT ?
	`, n).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("computing insurer breakdown: %w", err)
	}
	return stats, nil
}

func (r *StatsRepository) FlaggedClaimCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(DISTINCT claim_ref) FROM claim_flags WHERE is_active
	`).Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting flagged claims: %w", err)
	}
	return count, nil
}

func (r *StatsRepository) AvgUnderpayment(ctx context.Context) (decimal.Decimal, error) {
	var avg decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(AVG(billed_amount - paid_amount), 0)
		FROM claims
		WHERE billed_amount > paid_amount
	`).Scan(&avg).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("computing average underpayment: %w", err)
	}
	return avg, nil
}

func (r *StatsRepository) TopUnderpaid(ctx context.Context, n int) ([]*claim.Claim, error) {
	var claims []*claim.Claim
	err := r.db.WithContext(ctx).
		Where("billed_amount > paid_amount").
		Order("billed_amount - paid_amount DESC").
		Limit(n).
		Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("listing top underpaid claims: %w", err)
	}
	return claims, nil
}
