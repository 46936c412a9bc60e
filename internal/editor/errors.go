// Package editor implements the floor-plan editing engine: the draft
// entity model with change tagging, the pointer-gesture interaction
// state machine, the undo/redo command log, structural validation and
// the draft → approval → publish → version lifecycle.  The package holds
// everything in memory; durable storage and notification are reached
// through the narrow gateway interfaces declared in lifecycle.go.
package editor

import (
	"errors"
	"fmt"

	"github.com/iliyamo/restaurant-floor-plan/internal/geometry"
)

// ErrInsufficientSelection is re-exported from geometry so callers of
// align/distribute/combo operations can match one sentinel regardless of
// which layer rejected the selection.
var ErrInsufficientSelection = geometry.ErrInsufficientSelection

// ErrInvalidGeometry rejects shapes before any entity is created, such
// as a drawn section rectangle below the minimum size.
var ErrInvalidGeometry = errors.New("invalid geometry")

// ErrDraftLocked is returned by every mutating editor entry point while
// a pending approval request holds the draft read-only.
var ErrDraftLocked = errors.New("draft is locked pending approval")

// ErrEntityNotFound is returned when an operation references an id that
// matches neither a table nor a section of the draft.
var ErrEntityNotFound = errors.New("entity not found")

// ErrEntityDeleted guards soft-deleted entities against ordinary edits;
// a deleted entity can only be restored, never silently resurrected.
var ErrEntityDeleted = errors.New("entity is deleted")

// ErrNothingToPublish blocks a publish while the draft has zero changes.
var ErrNothingToPublish = errors.New("no changes to publish")

// ErrNoActiveDraft is returned when a draft-only operation runs while
// the floor is in the published state.
var ErrNoActiveDraft = errors.New("no active draft")

// ErrDraftInProgress is returned when entering edit mode while another
// editor already has the floor's draft open.
var ErrDraftInProgress = errors.New("draft already being edited")

// ErrVersionNotFound is returned by lifecycle operations referencing a
// version number the floor never published.
var ErrVersionNotFound = errors.New("version not found")

// PermissionError reports a capability check failure.  It always names
// the actor's role and the missing capability so the failure can be
// surfaced verbatim; permission failures are never silently ignored.
type PermissionError struct {
	Role       string
	Capability string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("role %s lacks capability %s", e.Role, e.Capability)
}

// ValidationError carries the structural issues that block a publish.
// It wraps the full validation result so handlers can return every
// issue, not just the first.
type ValidationError struct {
	Result Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("floor plan validation failed with %d issue(s)", len(e.Result.Errors))
}

// PersistenceError wraps a draft save/load failure.  It is retryable:
// the in-memory model stays authoritative no matter how the gateway
// call went.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("draft persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
