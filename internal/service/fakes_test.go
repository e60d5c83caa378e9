package service

import (
	"context"
	"strings"

	"github.com/clearhaven/claimdesk/internal/domain"
	"github.com/clearhaven/claimdesk/internal/domain/annotation"
	"github.com/clearhaven/claimdesk/internal/domain/claim"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory repository fakes shared across the service tests. None of them
// are safe for concurrent use.

type fakeClaimRepo struct {
	claims   []*claim.Claim
	lastList *claim.ListClaimsQuery
}

func (r *fakeClaimRepo) byClaimID(claimID string) (*claim.Claim, error) {
	for _, c := range r.claims {
		if c.ClaimID == claimID {
			return c, nil
		}
	}
	return nil, claim.ErrClaimNotFound
}

func (r *fakeClaimRepo) GetByClaimID(ctx context.Context, claimID string) (*claim.Claim, error) {
	return r.byClaimID(claimID)
}

func (r *fakeClaimRepo) GetByClaimIDWithDetail(ctx context.Context, claimID string) (*claim.Claim, error) {
	return r.byClaimID(claimID)
}

func (r *fakeClaimRepo) List(ctx context.Context, q *claim.ListClaimsQuery) (*claim.PagedClaims, error) {
	r.lastList = q
	return &claim.PagedClaims{
		Claims:     r.claims,
		TotalCount: int64(len(r.claims)),
		Page:       q.Page,
		PageSize:   q.PageSize,
	}, nil
}

func (r *fakeClaimRepo) Search(ctx context.Context, query string, limit int) ([]*claim.Claim, error) {
	var out []*claim.Claim
	for _, c := range r.claims {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(c.ClaimID), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(c.PatientName), strings.ToLower(query)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeClaimRepo) Insurers(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, c := range r.claims {
		if !seen[c.InsurerName] {
			seen[c.InsurerName] = true
			out = append(out, c.InsurerName)
		}
	}
	return out, nil
}

type fakeAnnotationRepo struct {
	flags []*annotation.ClaimFlag
	notes []*annotation.ClaimNote
}

func (r *fakeAnnotationRepo) GetFlag(ctx context.Context, claimRef, userID uuid.UUID, flagType annotation.FlagType) (*annotation.ClaimFlag, error) {
	for _, f := range r.flags {
		if f.ClaimRef == claimRef && f.UserID == userID && f.FlagType == flagType {
			return f, nil
		}
	}
	return nil, annotation.ErrFlagNotFound
}

func (r *fakeAnnotationRepo) GetFlagByID(ctx context.Context, id uuid.UUID) (*annotation.ClaimFlag, error) {
	for _, f := range r.flags {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, annotation.ErrFlagNotFound
}

func (r *fakeAnnotationRepo) CreateFlag(ctx context.Context, f *annotation.ClaimFlag) error {
	f.ID = uuid.New()
	r.flags = append(r.flags, f)
	return nil
}

func (r *fakeAnnotationRepo) UpdateFlag(ctx context.Context, f *annotation.ClaimFlag) error {
	for i, existing := range r.flags {
		if existing.ID == f.ID {
			r.flags[i] = f
			return nil
		}
	}
	return annotation.ErrFlagNotFound
}

func (r *fakeAnnotationRepo) FlagsForClaim(ctx context.Context, claimRef uuid.UUID) ([]*annotation.ClaimFlag, error) {
	var out []*annotation.ClaimFlag
	for _, f := range r.flags {
		if f.ClaimRef == claimRef {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeAnnotationRepo) RecentFlags(ctx context.Context, n int) ([]*annotation.ClaimFlag, error) {
	var out []*annotation.ClaimFlag
	for _, f := range r.flags {
		if len(out) == n {
			break
		}
		if f.IsActive {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeAnnotationRepo) CreateNote(ctx context.Context, note *annotation.ClaimNote) error {
	note.ID = uuid.New()
	r.notes = append(r.notes, note)
	return nil
}

func (r *fakeAnnotationRepo) NotesForClaim(ctx context.Context, claimRef uuid.UUID) ([]*annotation.ClaimNote, error) {
	var out []*annotation.ClaimNote
	for _, n := range r.notes {
		if n.ClaimRef == claimRef {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeAnnotationRepo) RecentNotes(ctx context.Context, n int) ([]*annotation.ClaimNote, error) {
	if len(r.notes) > n {
		return r.notes[:n], nil
	}
	return r.notes, nil
}

type fakeAuditRepo struct {
	entries []*domain.AuditLog
}

func (r *fakeAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

type fakeStatsRepo struct {
	totals          claim.Totals
	statusBreakdown []*claim.StatusStats
	insurerStats    []*claim.InsurerStats
	flaggedCount    int64
	avgUnderpayment decimal.Decimal
	topUnderpaid    []*claim.Claim
}

func (r *fakeStatsRepo) Totals(ctx context.Context) (*claim.Totals, error) {
	return &r.totals, nil
}

func (r *fakeStatsRepo) StatusBreakdown(ctx context.Context) ([]*claim.StatusStats, error) {
	return r.statusBreakdown, nil
}

func (r *fakeStatsRepo) InsurerBreakdown(ctx context.Context, n int) ([]*claim.InsurerStats, error) {
	if len(r.insurerStats) > n {
		return r.insurerStats[:n], nil
	}
	return r.insurerStats, nil
}

func (r *fakeStatsRepo) FlaggedClaimCount(ctx context.Context) (int64, error) {
	return r.flaggedCount, nil
}

func (r *fakeStatsRepo) AvgUnderpayment(ctx context.Context) (decimal.Decimal, error) {
	return r.avgUnderpayment, nil
}

func (r *fakeStatsRepo) TopUnderpaid(ctx context.Context, n int) ([]*claim.Claim, error) {
	if len(r.topUnderpaid) > n {
		return r.topUnderpaid[:n], nil
	}
	return r.topUnderpaid, nil
}
