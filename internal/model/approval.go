package model

import "time"

// ApprovalStatus tracks the lifecycle of a publish approval request.
// Pending requests may transition to any of the three terminal-ish
// states; approved and rejected are terminal, changes_requested sends
// the draft back to its requester for another round.
type ApprovalStatus string

const (
	ApprovalPending          ApprovalStatus = "pending"
	ApprovalApproved         ApprovalStatus = "approved"
	ApprovalRejected         ApprovalStatus = "rejected"
	ApprovalChangesRequested ApprovalStatus = "changes_requested"
)

// ApprovalPriority signals how urgently the approver should act.
type ApprovalPriority string

const (
	PriorityNormal ApprovalPriority = "normal"
	PriorityUrgent ApprovalPriority = "urgent"
)

// ApprovalRequest is created when an actor without publish capability
// asks a capability holder to publish the current draft on their behalf.
// While a request is pending and LockDraft is set, the draft is read-only.
//
// Fields:
//  ID          – request identifier (UUID).
//  FloorID     – floor whose draft awaits approval.
//  RequesterID – user who asked for the publish.
//  ApproverID  – user expected to act on the request.
//  Status      – current approval status.
//  Message     – note from the requester to the approver.
//  Priority    – normal or urgent.
//  LockDraft   – when true, the draft rejects edits while pending.
//  Summary     – changes summary captured at request time.
//  Notes       – publish notes to apply if approved.
//  ResolvedBy  – user who resolved the request (0 while pending).
//  Resolution  – approver's comment on resolve.
//  CreatedAt   – creation timestamp.
//  ResolvedAt  – resolution timestamp (nil while pending).
type ApprovalRequest struct {
	ID          string           `json:"id"`
	FloorID     uint64           `json:"floor_id"`
	RequesterID uint64           `json:"requester_id"`
	ApproverID  uint64           `json:"approver_id"`
	Status      ApprovalStatus   `json:"status"`
	Message     string           `json:"message,omitempty"`
	Priority    ApprovalPriority `json:"priority"`
	LockDraft   bool             `json:"lock_draft"`
	Summary     ChangesSummary   `json:"summary"`
	Notes       string           `json:"notes,omitempty"`
	ResolvedBy  uint64           `json:"resolved_by,omitempty"`
	Resolution  string           `json:"resolution,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	ResolvedAt  *time.Time       `json:"resolved_at,omitempty"`
}

// ActivityEntry is one line in a floor's audit trail.  Entries are
// written by the lifecycle controller for every state transition and
// are never embedded into the entity model, only referenced.
//
// Fields:
//  ID        – primary key identifier.
//  FloorID   – floor the activity concerns.
//  ActorID   – user who performed the action.
//  Action    – short machine tag (draft.entered, floor.published, ...).
//  Details   – human-readable description.
//  Summary   – changes summary at the time of the action, when relevant.
//  CreatedAt – timestamp of the action.
type ActivityEntry struct {
	ID        uint64          `json:"id"`
	FloorID   uint64          `json:"floor_id"`
	ActorID   uint64          `json:"actor_id"`
	Action    string          `json:"action"`
	Details   string          `json:"details,omitempty"`
	Summary   *ChangesSummary `json:"summary,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
