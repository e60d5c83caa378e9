package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/clearhaven/claimdesk/internal/domain/annotation"
	"github.com/clearhaven/claimdesk/internal/domain/claim"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	searchMinLength = 2
	searchLimit     = 10
)

type ClaimService struct {
	repo    claim.Repository
	annRepo annotation.Repository
	log     *zap.Logger
}

func NewClaimService(repo claim.Repository, annRepo annotation.Repository, log *zap.Logger) *ClaimService {
	return &ClaimService{repo: repo, annRepo: annRepo, log: log}
}

// ClaimView is one claim with its detail, annotations and computed payment
// fields, as returned by the detail endpoint.
type ClaimView struct {
	*claim.Claim
	Derived  claim.Derived           `json:"derived"`
	CPTCodes []string                `json:"cpt_codes"`
	Flags    []*annotation.ClaimFlag `json:"flags"`
	Notes    []*annotation.ClaimNote `json:"notes"`
}

func (s *ClaimService) GetClaim(ctx context.Context, claimID string) (*ClaimView, error) {
	c, err := s.repo.GetByClaimIDWithDetail(ctx, claimID)
	if err != nil {
		return nil, err
	}

	flags, err := s.annRepo.FlagsForClaim(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("loading flags: %w", err)
	}
	notes, err := s.annRepo.NotesForClaim(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("loading notes: %w", err)
	}

	view := &ClaimView{
		Claim:   c,
		Derived: c.Derived(),
		Flags:   flags,
		Notes:   notes,
	}
	if c.Detail != nil {
		view.CPTCodes = c.Detail.CPTCodeList()
	}
	return view, nil
}

func (s *ClaimService) ListClaims(ctx context.Context, q *claim.ListClaimsQuery) (*claim.PagedClaims, error) {
	if q.PageSize <= 0 || q.PageSize > maxPageSize {
		q.PageSize = defaultPageSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Status != nil && !q.Status.IsValid() {
		return nil, &ValidationError{Fields: []string{"status is invalid"}}
	}

	return s.repo.List(ctx, q)
}

// SearchClaims backs the typeahead search box. Queries shorter than two
// characters return no results rather than scanning the whole table.
func (s *ClaimService) SearchClaims(ctx context.Context, query string) ([]*claim.Claim, error) {
	query = strings.TrimSpace(query)
	if len(query) < searchMinLength {
		return []*claim.Claim{}, nil
	}
	return s.repo.Search(ctx, query, searchLimit)
}

// Insurers lists the distinct insurer names for the filter dropdown.
func (s *ClaimService) Insurers(ctx context.Context) ([]string, error) {
	return s.repo.Insurers(ctx)
}
