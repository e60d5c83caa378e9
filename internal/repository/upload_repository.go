package repository

import (
	"context"
	"fmt"

	"github.com/clearhaven/claimdesk/internal/domain"
	"gorm.io/gorm"
)

type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(ctx context.Context, up *domain.DataUpload) error {
	if err := r.db.WithContext(ctx).Create(up).Error; err != nil {
		return fmt.Errorf("creating upload record: %w", err)
	}
	return nil
}

func (r *UploadRepository) Recent(ctx context.Context, n int) ([]*domain.DataUpload, error) {
	var uploads []*domain.DataUpload
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("uploaded_at DESC").
		Limit(n).
		Find(&uploads).Error
	if err != nil {
		return nil, fmt.Errorf("listing recent uploads: %w", err)
	}
	return uploads, nil
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("creating audit entry: %w", err)
	}
	return nil
}
