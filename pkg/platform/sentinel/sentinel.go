package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: row or key does not exist
//   - ErrConflict: a uniqueness constraint would be violated
//   - ErrUnavailable: backing store or cache cannot be reached
//   - ErrInvalidState: the store was asked for something it cannot represent
//
// For validation failures use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
