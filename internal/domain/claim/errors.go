package claim

import "errors"

var (
	ErrClaimNotFound     = errors.New("claim not found")
	ErrClaimIDRequired   = errors.New("claim ID is required")
	ErrInvalidStatus     = errors.New("invalid claim status")
	ErrNegativeAmount    = errors.New("amounts must be non-negative")
	ErrPaidExceedsBilled = errors.New("paid amount cannot exceed billed amount")
)
