package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrAlreadyUsed: a unique value (email) is already taken
// - ErrInsufficient: a conditional decrement found too few units
// - ErrForbidden: resource exists but is owned by someone else
// - ErrOutOfRange: a conditional increment would exceed the stored range
// - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInsufficient = errors.New("insufficient")
	ErrForbidden    = errors.New("forbidden")
	ErrOutOfRange   = errors.New("out of range")
	ErrUnavailable  = errors.New("unavailable")
)
