package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/clearhaven/claimdesk/internal/domain/annotation"
	"github.com/clearhaven/claimdesk/internal/domain/claim"
	"gorm.io/gorm"
)

type ClaimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

func (r *ClaimRepository) GetByClaimID(ctx context.Context, claimID string) (*claim.Claim, error) {
	var c claim.Claim
	err := r.db.WithContext(ctx).Where("claim_id = ?", claimID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, claim.ErrClaimNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching claim %s: %w", claimID, err)
	}
	return &c, nil
}

func (r *ClaimRepository) GetByClaimIDWithDetail(ctx context.Context, claimID string) (*claim.Claim, error) {
	var c claim.Claim
	err := r.db.WithContext(ctx).
		Preload("Detail").
		Where("claim_id = ?", claimID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, claim.ErrClaimNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching claim %s: %w", claimID, err)
	}
	return &c, nil
}

func (r *ClaimRepository) List(ctx context.Context, q *claim.ListClaimsQuery) (*claim.PagedClaims, error) {
	query := r.db.WithContext(ctx).Model(&claim.Claim{})

	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where(
			"claim_id ILIKE ? OR patient_name ILIKE ? OR insurer_name ILIKE ?",
			pattern, pattern, pattern,
		)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}
	if q.Insurer != "" {
		query = query.Where("insurer_name = ?", q.Insurer)
	}
	if q.DateFrom != nil {
		query = query.Where("discharge_date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		query = query.Where("discharge_date <= ?", *q.DateTo)
	}
	if q.MinAmount != nil {
		query = query.Where("billed_amount >= ?", *q.MinAmount)
	}
	if q.MaxAmount != nil {
		query = query.Where("billed_amount <= ?", *q.MaxAmount)
	}
	if q.FlaggedOnly {
		query = query.Where("id IN (?)",
			r.db.Model(&annotation.ClaimFlag{}).
				Select("claim_ref").
				Where("is_active = ?", true),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting claims: %w", err)
	}

	var claims []*claim.Claim
	err := query.
		Preload("Detail").
		Order("discharge_date DESC, claim_id ASC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}

	totalPages := int((total + int64(q.PageSize) - 1) / int64(q.PageSize))

	return &claim.PagedClaims{
		Claims:     claims,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (r *ClaimRepository) Search(ctx context.Context, query string, limit int) ([]*claim.Claim, error) {
	pattern := "%" + query + "%"
	var claims []*claim.Claim
	err := r.db.WithContext(ctx).
		Where("claim_id ILIKE ? OR patient_name ILIKE ? OR insurer_name ILIKE ?",
			pattern, pattern, pattern).
		Order("discharge_date DESC, claim_id ASC").
		Limit(limit).
		Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("searching claims: %w", err)
	}
	return claims, nil
}

func (r *ClaimRepository) Insurers(ctx context.Context) ([]string, error) {
	var insurers []string
	err := r.db.WithContext(ctx).
		Model(&claim.Claim{}).
		Distinct("insurer_name").
		Order("insurer_name ASC").
		Pluck("insurer_name", &insurers).Error
	if err != nil {
		return nil, fmt.Errorf("listing insurers: %w", err)
	}
	return insurers, nil
}
