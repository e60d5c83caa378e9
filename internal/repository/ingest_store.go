package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/clearhaven/claimdesk/internal/domain"
	"github.com/clearhaven/claimdesk/internal/domain/claim"
	"github.com/clearhaven/claimdesk/internal/ingest"
	"gorm.io/gorm"
)

// IngestStore is the GORM-backed ingest.Store. It is constructed over a
// transaction handle so one import batch commits or rolls back as a unit.
type IngestStore struct {
	db *gorm.DB
}

func NewIngestStore(db *gorm.DB) *IngestStore {
	return &IngestStore{db: db}
}

func (s *IngestStore) PurgeAll(ctx context.Context) error {
	// Details go with their claims via the FK cascade.
	if err := s.db.WithContext(ctx).Exec("DELETE FROM claims").Error; err != nil {
		return fmt.Errorf("purging claims: %w", err)
	}
	return nil
}

func (s *IngestStore) FindClaim(ctx context.Context, claimID string) (*claim.Claim, error) {
	var c claim.Claim
	err := s.db.WithContext(ctx).Where("claim_id = ?", claimID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, claim.ErrClaimNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *IngestStore) CreateClaim(ctx context.Context, c *claim.Claim) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *IngestStore) UpdateClaim(ctx context.Context, c *claim.Claim) error {
	return s.db.WithContext(ctx).Save(c).Error
}

func (s *IngestStore) UpsertDetail(ctx context.Context, d *claim.ClaimDetail) (bool, error) {
	var existing claim.ClaimDetail
	err := s.db.WithContext(ctx).Where("claim_ref = ?", d.ClaimRef).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
			return false, err
		}
		return true, nil

	case err != nil:
		return false, err

	default:
		existing.DenialReason = d.DenialReason
		existing.CPTCodes = d.CPTCodes
		if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return false, err
		}
		return false, nil
	}
}

func (s *IngestStore) RecordUpload(ctx context.Context, up *domain.DataUpload) error {
	return s.db.WithContext(ctx).Create(up).Error
}

// ImportTx runs one import unit of work in a single database transaction:
// everything the importer touches commits together or not at all.
type ImportTx struct {
	db *gorm.DB
}

func NewImportTx(db *gorm.DB) *ImportTx {
	return &ImportTx{db: db}
}

func (t *ImportTx) Do(ctx context.Context, fn func(store ingest.Store) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewIngestStore(tx))
	})
}
