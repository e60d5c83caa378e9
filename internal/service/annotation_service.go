package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clearhaven/claimdesk/internal/domain/annotation"
	"github.com/clearhaven/claimdesk/internal/domain/claim"
	"github.com/clearhaven/claimdesk/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AnnotationService struct {
	repo      annotation.Repository
	claimRepo claim.Repository
	auditSvc  *AuditService
	metrics   *metrics.Collector
	log       *zap.Logger
}

func NewAnnotationService(
	repo annotation.Repository,
	claimRepo claim.Repository,
	auditSvc *AuditService,
	collector *metrics.Collector,
	log *zap.Logger,
) *AnnotationService {
	return &AnnotationService{
		repo:      repo,
		claimRepo: claimRepo,
		auditSvc:  auditSvc,
		metrics:   collector,
		log:       log,
	}
}

// AddFlag raises a flag on a claim. At most one flag exists per
// (claim, user, flag type): re-raising an existing one reactivates it and
// replaces its reason instead of creating a duplicate.
func (s *AnnotationService) AddFlag(
	ctx context.Context,
	claimID string,
	userID uuid.UUID,
	userRole string,
	flagType annotation.FlagType,
	reason string,
	ip string,
) (*annotation.ClaimFlag, error) {
	if !flagType.IsValid() {
		return nil, annotation.ErrInvalidFlagType
	}

	c, err := s.claimRepo.GetByClaimID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	flag, err := s.repo.GetFlag(ctx, c.ID, userID, flagType)
	switch {
	case errors.Is(err, annotation.ErrFlagNotFound):
		flag = &annotation.ClaimFlag{
			ClaimRef: c.ID,
			UserID:   userID,
			FlagType: flagType,
			Reason:   reason,
			IsActive: true,
		}
		if err := s.repo.CreateFlag(ctx, flag); err != nil {
			return nil, err
		}

	case err != nil:
		return nil, fmt.Errorf("checking existing flag: %w", err)

	default:
		flag.IsActive = true
		flag.Reason = reason
		if err := s.repo.UpdateFlag(ctx, flag); err != nil {
			return nil, err
		}
	}

	if s.metrics != nil {
		s.metrics.FlagsRaisedTotal.Inc()
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       userID,
		UserRole:     userRole,
		Action:       "create",
		ResourceType: "flag",
		ResourceID:   flag.ID.String(),
		IPAddress:    ip,
		Detail:       fmt.Sprintf("%s on claim %s", flagType, claimID),
	})

	return flag, nil
}

// RemoveFlag deactivates a flag. Reviewers may only remove their own flags;
// the row itself is kept so re-flagging reactivates rather than duplicates.
func (s *AnnotationService) RemoveFlag(ctx context.Context, flagID, userID uuid.UUID, userRole string, ip string) error {
	flag, err := s.repo.GetFlagByID(ctx, flagID)
	if err != nil {
		return err
	}

	if flag.UserID != userID {
		return ErrForbidden
	}

	flag.IsActive = false
	if err := s.repo.UpdateFlag(ctx, flag); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       userID,
		UserRole:     userRole,
		Action:       "delete",
		ResourceType: "flag",
		ResourceID:   flagID.String(),
		IPAddress:    ip,
	})

	return nil
}

func (s *AnnotationService) AddNote(
	ctx context.Context,
	claimID string,
	userID uuid.UUID,
	userRole string,
	text string,
	ip string,
) (*annotation.ClaimNote, error) {
	if strings.TrimSpace(text) == "" {
		return nil, annotation.ErrNoteRequired
	}

	c, err := s.claimRepo.GetByClaimID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	note := &annotation.ClaimNote{
		ClaimRef: c.ID,
		UserID:   userID,
		Note:     text,
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.NotesAddedTotal.Inc()
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       userID,
		UserRole:     userRole,
		Action:       "create",
		ResourceType: "note",
		ResourceID:   note.ID.String(),
		IPAddress:    ip,
		Detail:       "note on claim " + claimID,
	})

	return note, nil
}
