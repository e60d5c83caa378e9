package annotation

import "errors"

var (
	ErrFlagNotFound    = errors.New("flag not found")
	ErrInvalidFlagType = errors.New("invalid flag type")
	ErrNoteRequired    = errors.New("note text is required")
)
