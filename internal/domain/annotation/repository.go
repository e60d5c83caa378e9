package annotation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// GetFlag retrieves an existing flag for the unique
	// (claim, user, flag type) triple. Returns ErrFlagNotFound if absent.
	GetFlag(ctx context.Context, claimRef, userID uuid.UUID, flagType FlagType) (*ClaimFlag, error)

	// GetFlagByID retrieves a flag by primary key.
	GetFlagByID(ctx context.Context, id uuid.UUID) (*ClaimFlag, error)

	// CreateFlag persists a new flag.
	CreateFlag(ctx context.Context, f *ClaimFlag) error

	// UpdateFlag saves changes to an existing flag (reason, active state).
	UpdateFlag(ctx context.Context, f *ClaimFlag) error

	// FlagsForClaim lists all flags on a claim, newest first, with users.
	FlagsForClaim(ctx context.Context, claimRef uuid.UUID) ([]*ClaimFlag, error)

	// RecentFlags lists the n most recent active flags with claim and user.
	RecentFlags(ctx context.Context, n int) ([]*ClaimFlag, error)

	// CreateNote persists a new note.
	CreateNote(ctx context.Context, note *ClaimNote) error

	// NotesForClaim lists all notes on a claim, newest first, with users.
	NotesForClaim(ctx context.Context, claimRef uuid.UUID) ([]*ClaimNote, error)

	// RecentNotes lists the n most recent notes with claim and user.
	RecentNotes(ctx context.Context, n int) ([]*ClaimNote, error)
}
