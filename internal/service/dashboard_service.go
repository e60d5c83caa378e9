package service

import (
	"context"
	"fmt"

	"github.com/clearhaven/claimdesk/internal/domain/annotation"
	"github.com/clearhaven/claimdesk/internal/domain/claim"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	topInsurers       = 10
	topUnderpaid      = 10
	recentAnnotations = 10
)

// Dashboard is the full aggregate view the dashboard page renders. Every
// field is recomputed from the current claim set on each request.
type Dashboard struct {
	TotalClaims       int64           `json:"total_claims"`
	TotalBilled       decimal.Decimal `json:"total_billed"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	TotalUnderpayment decimal.Decimal `json:"total_underpayment"`
	PaymentRate       float64         `json:"payment_rate"`

	StatusBreakdown []*claim.StatusStats  `json:"status_breakdown"`
	InsurerStats    []*claim.InsurerStats `json:"insurer_stats"`

	FlaggedClaims   int64           `json:"flagged_claims"`
	AvgUnderpayment decimal.Decimal `json:"avg_underpayment"`

	RecentFlags []*annotation.ClaimFlag `json:"recent_flags"`
	RecentNotes []*annotation.ClaimNote `json:"recent_notes"`

	TopUnderpaid []*UnderpaidClaim `json:"top_underpaid"`
}

// UnderpaidClaim pairs a claim with its computed payment fields for the
// top-underpaid table.
type UnderpaidClaim struct {
	*claim.Claim
	Derived claim.Derived `json:"derived"`
}

type DashboardService struct {
	stats   claim.StatsRepository
	annRepo annotation.Repository
	log     *zap.Logger
}

func NewDashboardService(stats claim.StatsRepository, annRepo annotation.Repository, log *zap.Logger) *DashboardService {
	return &DashboardService{stats: stats, annRepo: annRepo, log: log}
}

func (s *DashboardService) Build(ctx context.Context) (*Dashboard, error) {
	totals, err := s.stats.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading totals: %w", err)
	}

	statusBreakdown, err := s.stats.StatusBreakdown(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading status breakdown: %w", err)
	}

	insurerStats, err := s.stats.InsurerBreakdown(ctx, topInsurers)
	if err != nil {
		return nil, fmt.Errorf("loading insurer stats: %w", err)
	}

	flagged, err := s.stats.FlaggedClaimCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting flagged claims: %w", err)
	}

	avgUnderpayment, err := s.stats.AvgUnderpayment(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing average underpayment: %w", err)
	}

	recentFlags, err := s.annRepo.RecentFlags(ctx, recentAnnotations)
	if err != nil {
		return nil, fmt.Errorf("loading recent flags: %w", err)
	}

	recentNotes, err := s.annRepo.RecentNotes(ctx, recentAnnotations)
	if err != nil {
		return nil, fmt.Errorf("loading recent notes: %w", err)
	}

	underpaid, err := s.stats.TopUnderpaid(ctx, topUnderpaid)
	if err != nil {
		return nil, fmt.Errorf("loading top underpaid claims: %w", err)
	}
	top := make([]*UnderpaidClaim, 0, len(underpaid))
	for _, c := range underpaid {
		top = append(top, &UnderpaidClaim{Claim: c, Derived: c.Derived()})
	}

	// Derived from the sums rather than queried separately so the identity
	// total_billed - total_paid == total_underpayment holds exactly.
	totalUnderpayment := totals.TotalBilled.Sub(totals.TotalPaid)

	paymentRate := 0.0
	if totals.TotalBilled.IsPositive() {
		paymentRate, _ = totals.TotalPaid.
			Div(totals.TotalBilled).
			Mul(decimal.NewFromInt(100)).
			Float64()
	}

	return &Dashboard{
		TotalClaims:       totals.ClaimCount,
		TotalBilled:       totals.TotalBilled,
		TotalPaid:         totals.TotalPaid,
		TotalUnderpayment: totalUnderpayment,
		PaymentRate:       paymentRate,
		StatusBreakdown:   statusBreakdown,
		InsurerStats:      insurerStats,
		FlaggedClaims:     flagged,
		AvgUnderpayment:   avgUnderpayment,
		RecentFlags:       recentFlags,
		RecentNotes:       recentNotes,
		TopUnderpaid:      top,
	}, nil
}
