package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/clearhaven/claimdesk/internal/domain/annotation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnnotationRepository struct {
	db *gorm.DB
}

func NewAnnotationRepository(db *gorm.DB) *AnnotationRepository {
	return &AnnotationRepository{db: db}
}

func (r *AnnotationRepository) GetFlag(ctx context.Context, claimRef, userID uuid.UUID, flagType annotation.FlagType) (*annotation.ClaimFlag, error) {
	var f annotation.ClaimFlag
	err := r.db.WithContext(ctx).
		Where("claim_ref = ? AND user_id = ? AND flag_type = ?", claimRef, userID, flagType).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, annotation.ErrFlagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching flag: %w", err)
	}
	return &f, nil
}

func (r *AnnotationRepository) GetFlagByID(ctx context.Context, id uuid.UUID) (*annotation.ClaimFlag, error) {
	var f annotation.ClaimFlag
	err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, annotation.ErrFlagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching flag %s: %w", id, err)
	}
	return &f, nil
}

func (r *AnnotationRepository) CreateFlag(ctx context.Context, f *annotation.ClaimFlag) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("creating flag: %w", err)
	}
	return nil
}

func (r *AnnotationRepository) UpdateFlag(ctx context.Context, f *annotation.ClaimFlag) error {
	if err := r.db.WithContext(ctx).Save(f).Error; err != nil {
		return fmt.Errorf("updating flag: %w", err)
	}
	return nil
}

func (r *AnnotationRepository) FlagsForClaim(ctx context.Context, claimRef uuid.UUID) ([]*annotation.ClaimFlag, error) {
	var flags []*annotation.ClaimFlag
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("claim_ref = ?", claimRef).
		Order("created_at DESC").
		Find(&flags).Error
	if err != nil {
		return nil, fmt.Errorf("listing flags: %w", err)
	}
	return flags, nil
}

func (r *AnnotationRepository) RecentFlags(ctx context.Context, n int) ([]*annotation.ClaimFlag, error) {
	var flags []*annotation.ClaimFlag
	err := r.db.WithContext(ctx).
		Preload("Claim").
		Preload("User").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(n).
		Find(&flags).Error
	if err != nil {
		return nil, fmt.Errorf("listing recent flags: %w", err)
	}
	return flags, nil
}

func (r *AnnotationRepository) CreateNote(ctx context.Context, note *annotation.ClaimNote) error {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("creating note: %w", err)
	}
	return nil
}

func (r *AnnotationRepository) NotesForClaim(ctx context.Context, claimRef uuid.UUID) ([]*annotation.ClaimNote, error) {
	var notes []*annotation.ClaimNote
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("claim_ref = ?", claimRef).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return notes, nil
}

func (r *AnnotationRepository) RecentNotes(ctx context.Context, n int) ([]*annotation.ClaimNote, error) {
	var notes []*annotation.ClaimNote
	err := r.db.WithContext(ctx).
		Preload("Claim").
		Preload("User").
		Order("created_at DESC").
		Limit(n).
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("listing recent notes: %w", err)
	}
	return notes, nil
}
