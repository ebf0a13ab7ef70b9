package migration

import (
	"errors"
	"fmt"
)

// Sentinel errors for migration state failures.
var (
	// ErrDrift indicates an applied migration's on-disk content no longer
	// matches the checksum recorded when it was applied.
	ErrDrift = errors.New("migration checksum drift")

	// ErrNothingToRollback indicates a rollback was requested with no
	// applied migrations remaining.
	ErrNothingToRollback = errors.New("nothing to roll back")

	// ErrMissingDownScript indicates the migration to roll back has no
	// down-script and is therefore irreversible.
	ErrMissingDownScript = errors.New("missing down-script")

	// ErrUnknownMigration indicates an applied migration whose source pair
	// can no longer be found on disk.
	ErrUnknownMigration = errors.New("migration files not found")
)

// DriftError reports a checksum mismatch for an already-applied migration:
// the file was edited after being applied.
type DriftError struct {
	ID       string
	Recorded string // checksum stored in the tracking table
	Actual   string // checksum of the file on disk
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("migration %s already applied but checksum changed (recorded %s, file %s)",
		e.ID, e.Recorded, e.Actual)
}

func (e *DriftError) Is(target error) bool { return target == ErrDrift }

// NewDriftError creates a DriftError naming both checksums.
func NewDriftError(id, recorded, actual string) *DriftError {
	return &DriftError{ID: id, Recorded: recorded, Actual: actual}
}

// StateError reports a rollback request the tracking table or filesystem
// cannot satisfy.
type StateError struct {
	ID  string // empty when no migration is involved
	Err error
}

func (e *StateError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("cannot roll back %s: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("cannot roll back: %v", e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

// NewStateError creates a StateError for the given migration id.
func NewStateError(id string, err error) *StateError {
	return &StateError{ID: id, Err: err}
}
