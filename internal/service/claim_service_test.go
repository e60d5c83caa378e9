package service

import (
	"context"
	"testing"
	"time"

	"github.com/clearhaven/claimdesk/internal/domain/claim"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedClaim(claimID string, billed, paid string) *claim.Claim {
	b, _ := decimal.NewFromString(billed)
	p, _ := decimal.NewFromString(paid)
	return &claim.Claim{
		ID:            uuid.New(),
		ClaimID:       claimID,
		PatientName:   "Jane Doe",
		BilledAmount:  b,
		PaidAmount:    p,
		Status:        claim.StatusPaid,
		InsurerName:   "Acme Health",
		DischargeDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newClaimService(claims ...*claim.Claim) (*ClaimService, *fakeClaimRepo, *fakeAnnotationRepo) {
	claimRepo := &fakeClaimRepo{claims: claims}
	annRepo := &fakeAnnotationRepo{}
	return NewClaimService(claimRepo, annRepo, zap.NewNop()), claimRepo, annRepo
}

func TestGetClaim(t *testing.T) {
	c := seedClaim("C-001", "1000.00", "400.00")
	c.Detail = &claim.ClaimDetail{ClaimRef: c.ID, CPTCodes: "99213, 99214"}
	svc, _, _ := newClaimService(c)

	view, err := svc.GetClaim(context.Background(), "C-001")
	require.NoError(t, err)

	assert.Equal(t, "C-001", view.ClaimID)
	assert.Equal(t, []string{"99213", "99214"}, view.CPTCodes)
	assert.Equal(t, claim.SeverityHigh, view.Derived.Severity)
	assert.True(t, view.Derived.UnderpaymentAmount.Equal(decimal.RequireFromString("600.00")))
}

func TestGetClaimNotFound(t *testing.T) {
	svc, _, _ := newClaimService()

	_, err := svc.GetClaim(context.Background(), "C-404")
	assert.ErrorIs(t, err, claim.ErrClaimNotFound)
}

func TestListClaimsPaginationClamped(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{name: "defaults", page: 0, pageSize: 0, wantPage: 1, wantPageSize: defaultPageSize},
		{name: "negative page", page: -3, pageSize: 10, wantPage: 1, wantPageSize: 10},
		{name: "oversized page size", page: 2, pageSize: 5000, wantPage: 2, wantPageSize: defaultPageSize},
		{name: "in range", page: 3, pageSize: 50, wantPage: 3, wantPageSize: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newClaimService(seedClaim("C-001", "100.00", "100.00"))

			_, err := svc.ListClaims(context.Background(), &claim.ListClaimsQuery{
				Page:     tt.page,
				PageSize: tt.pageSize,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantPage, repo.lastList.Page)
			assert.Equal(t, tt.wantPageSize, repo.lastList.PageSize)
		})
	}
}

func TestListClaimsInvalidStatus(t *testing.T) {
	svc, _, _ := newClaimService()

	bad := claim.Status("Pending")
	_, err := svc.ListClaims(context.Background(), &claim.ListClaimsQuery{Status: &bad})

	var validErr *ValidationError
	require.ErrorAs(t, err, &validErr)
}

func TestSearchClaimsShortQueryReturnsNothing(t *testing.T) {
	svc, _, _ := newClaimService(seedClaim("C-001", "100.00", "100.00"))

	for _, q := range []string{"", "c", "  c  "} {
		results, err := svc.SearchClaims(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, results, "query %q", q)
	}
}

func TestSearchClaims(t *testing.T) {
	svc, _, _ := newClaimService(
		seedClaim("C-001", "100.00", "100.00"),
		seedClaim("C-002", "200.00", "200.00"),
		seedClaim("X-900", "300.00", "300.00"),
	)

	results, err := svc.SearchClaims(context.Background(), "C-0")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
