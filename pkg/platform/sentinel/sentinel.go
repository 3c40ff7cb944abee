package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and the evidence service translates them into coded domain errors.
//
//   - ErrNotFound: record, revision, pack or explanation does not exist
//   - ErrConflict: a uniqueness constraint rejected the write (duplicate revision sequence, reused id)
//   - ErrInvalidState: the stored row is in a state that forbids the write (finalized record on Put/Delete)
//   - ErrStateMismatch: a compare-and-set observed a state other than the expected one
//   - ErrUnavailable: backing service temporarily unavailable (lock holder, broker)
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalidState  = errors.New("invalid state")
	ErrStateMismatch = errors.New("state mismatch")
	ErrUnavailable   = errors.New("unavailable")
)
