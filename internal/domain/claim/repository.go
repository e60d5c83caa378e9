package claim

import (
	"context"
)

type Repository interface {
	// GetByClaimID retrieves a claim by its external identifier.
	// Returns ErrClaimNotFound if absent.
	GetByClaimID(ctx context.Context, claimID string) (*Claim, error)

	// GetByClaimIDWithDetail retrieves a claim together with its 1:1 detail
	// record (Detail stays nil when no detail row exists).
	GetByClaimIDWithDetail(ctx context.Context, claimID string) (*Claim, error)

	// List returns a paginated, filtered list of claims ordered by
	// discharge date (newest first) then claim ID.
	List(ctx context.Context, q *ListClaimsQuery) (*PagedClaims, error)

	// Search returns up to limit claims matching a free-text query over
	// claim ID, patient name and insurer name.
	Search(ctx context.Context, query string, limit int) ([]*Claim, error)

	// Insurers returns the distinct insurer names, sorted, for filter UIs.
	Insurers(ctx context.Context) ([]string, error)
}
