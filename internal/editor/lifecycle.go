package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-floor-plan/internal/model"
	"github.com/iliyamo/restaurant-floor-plan/internal/permission"
)

// State is the lifecycle state of a floor's layout.
type State string

const (
	StatePublished       State = "published"
	StateDraft           State = "draft"
	StatePendingApproval State = "pending_approval" // draft locked behind an approval request
)

// ErrRollbackWindowExceeded is returned when a restore targets a
// version older than the actor's rollback window allows.
var ErrRollbackWindowExceeded = errors.New("version is outside the allowed rollback window")

// ErrNotRequester is returned when someone other than the requester
// tries to withdraw a pending approval request.
var ErrNotRequester = errors.New("only the requester may withdraw an approval request")

// DraftStore is the persistence gateway contract: best-effort save and
// load of a serialized draft blob keyed by floor id.  Failures are
// surfaced for retry and never fatal; the in-memory draft stays
// authoritative.
type DraftStore interface {
	SaveDraft(ctx context.Context, floorID uint64, blob SavedDraft) error
	LoadDraft(ctx context.Context, floorID uint64) (*SavedDraft, error)
	ClearDraft(ctx context.Context, floorID uint64) error
}

// VersionStore persists immutable version snapshots.  CreateVersion is
// the single atomic step of the publish pipeline: it either writes the
// whole version or fails without side effects.
type VersionStore interface {
	CreateVersion(ctx context.Context, v *model.Version) error
	GetVersion(ctx context.Context, floorID uint64, number int) (*model.Version, error)
}

// ApprovalStore persists approval requests.
type ApprovalStore interface {
	CreateApproval(ctx context.Context, req *model.ApprovalRequest) error
	UpdateApproval(ctx context.Context, req *model.ApprovalRequest) error
}

// ActivityRecorder appends entries to a floor's audit trail.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, entry *model.ActivityEntry) error
}

// Notifier dispatches events to interested parties.  Delivery is fire
// and forget; the lifecycle never blocks on it.
type Notifier interface {
	NotifyApprovalRequested(ctx context.Context, floor model.Floor, req *model.ApprovalRequest)
	NotifyApprovalResolved(ctx context.Context, floor model.Floor, req *model.ApprovalRequest)
	NotifyPublished(ctx context.Context, floor model.Floor, v *model.Version)
}

// Gateways bundles the external collaborators the lifecycle calls.  Any
// field may be nil; absent gateways degrade to no-ops, which keeps the
// engine testable without infrastructure.
type Gateways struct {
	Drafts    DraftStore
	Versions  VersionStore
	Approvals ApprovalStore
	Activity  ActivityRecorder
	Notify    Notifier
}

// Lifecycle owns one floor's layout state machine: the published
// baseline, the active editor while drafting, the pending approval
// request, and the version numbering.  Like the editor it is not safe
// for concurrent use; the session layer serializes access.
type Lifecycle struct {
	floor    model.Floor
	state    State
	baseline *Draft // content of the latest published version
	editor   *Editor
	preEdit  *Draft
	pending  *model.ApprovalRequest
	gw       Gateways
}

// NewLifecycle builds the controller from the floor record and the
// latest published version (nil for a floor that was never published).
func NewLifecycle(floor model.Floor, latest *model.Version, gw Gateways) *Lifecycle {
	var baseline *Draft
	if latest != nil {
		baseline = NewDraft(floor, latest.Tables, latest.Sections, latest.Combos)
		floor.CurrentVersion = latest.Number
	} else {
		baseline = NewDraft(floor, nil, nil, nil)
	}
	return &Lifecycle{floor: floor, state: StatePublished, baseline: baseline, gw: gw}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State { return l.state }

// Floor returns the floor record, including the current version number.
func (l *Lifecycle) Floor() model.Floor { return l.floor }

// Baseline returns the published content (read-only by convention).
func (l *Lifecycle) Baseline() *Draft { return l.baseline }

// PendingRequest returns the approval request in flight, if any.
func (l *Lifecycle) PendingRequest() *model.ApprovalRequest { return l.pending }

// Editor returns the active editor, or an error while published.
func (l *Lifecycle) Editor() (*Editor, error) {
	if l.editor == nil {
		return nil, ErrNoActiveDraft
	}
	return l.editor, nil
}

// SavedBlob fetches the persisted draft blob, used for the crash
// recovery prompt before entering edit mode.
func (l *Lifecycle) SavedBlob(ctx context.Context) (*SavedDraft, error) {
	if l.gw.Drafts == nil {
		return nil, nil
	}
	blob, err := l.gw.Drafts.LoadDraft(ctx, l.floor.ID)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	return blob, nil
}

// EnterEdit transitions Published → Draft.  It requires the edit
// capability, snapshots the pre-edit state for discard and impact
// reporting, and seeds the editor from the saved blob when resume is
// set (crash recovery) or from the published baseline otherwise.
func (l *Lifecycle) EnterEdit(ctx context.Context, actor permission.Actor, resume bool) (*Editor, error) {
	if l.state != StatePublished {
		return nil, ErrDraftInProgress
	}
	if !actor.Capabilities().CanEditDrafts {
		return nil, &PermissionError{Role: actor.Role, Capability: "canEditDrafts"}
	}

	draft := l.baseline.Clone()
	if resume {
		blob, err := l.SavedBlob(ctx)
		if err != nil {
			return nil, err
		}
		if blob != nil {
			draft = FromBlob(*blob)
		}
	}
	l.preEdit = l.baseline.Clone()
	l.editor = NewEditor(draft)
	l.state = StateDraft
	l.recordActivity(ctx, actor.ID, "draft.entered", "Started editing the floor plan", nil)
	return l.editor, nil
}

// SaveDraft persists the current draft blob.  A gateway failure is
// wrapped as a retryable PersistenceError and leaves editing untouched.
func (l *Lifecycle) SaveDraft(ctx context.Context) error {
	if l.editor == nil {
		return ErrNoActiveDraft
	}
	if l.gw.Drafts == nil {
		return nil
	}
	blob := l.editor.Draft().Blob(time.Now().UTC())
	if err := l.gw.Drafts.SaveDraft(ctx, l.floor.ID, blob); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// Discard abandons the draft: the entity model reverts to the pre-edit
// snapshot, history is cleared, the saved blob is dropped and the state
// returns to Published without creating a version.
func (l *Lifecycle) Discard(ctx context.Context, actor permission.Actor) error {
	if l.state != StateDraft {
		return ErrNoActiveDraft
	}
	l.baseline = l.preEdit
	l.editor = nil
	l.preEdit = nil
	l.state = StatePublished
	l.clearDraftBlob(ctx)
	l.recordActivity(ctx, actor.ID, "draft.discarded", "Discarded draft changes", nil)
	return nil
}

// PublishOptions parameterizes a publish attempt.  Approver fields are
// only consulted when the attempt routes to an approval request.
type PublishOptions struct {
	Notes      string                 `json:"notes,omitempty"`
	ApproverID uint64                 `json:"approver_id,omitempty"`
	Message    string                 `json:"message,omitempty"`
	Priority   model.ApprovalPriority `json:"priority,omitempty"`
	LockDraft  bool                   `json:"lock_draft,omitempty"`
}

// StageStatus reports one step of the staged publish pipeline.
type StageStatus struct {
	Stage string `json:"stage"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// PublishOutcome describes where a publish attempt landed: a new
// version, a routed approval request, or a validation block.
type PublishOutcome struct {
	State      State                  `json:"state"`
	Version    *model.Version         `json:"version,omitempty"`
	Request    *model.ApprovalRequest `json:"request,omitempty"`
	Validation *Result                `json:"validation,omitempty"`
	Stages     []StageStatus          `json:"stages,omitempty"`
}

// Publish attempts Draft → Published.  Without the publish capability
// the attempt routes to Draft → PendingApproval instead: an approval
// request is created, the approver is notified and, when requested, the
// draft is locked against further edits.  With the capability, the
// staged pipeline runs: validate → snapshot → update → finalize.
func (l *Lifecycle) Publish(ctx context.Context, actor permission.Actor, opts PublishOptions) (*PublishOutcome, error) {
	if l.state == StatePendingApproval {
		return nil, fmt.Errorf("an approval request is already pending")
	}
	if l.state != StateDraft || l.editor == nil {
		return nil, ErrNoActiveDraft
	}
	summary := l.editor.Draft().Summary()
	if summary.Total() == 0 {
		return nil, ErrNothingToPublish
	}

	caps := actor.Capabilities()
	if !caps.CanPublish {
		if !caps.CanEditDrafts {
			return nil, &PermissionError{Role: actor.Role, Capability: "canPublish"}
		}
		return l.routeToApproval(ctx, actor, opts, summary)
	}

	outcome := &PublishOutcome{}
	v, err := l.runPublishPipeline(ctx, actor.ID, opts.Notes, summary, outcome)
	if err != nil {
		return outcome, err
	}
	outcome.State = l.state
	outcome.Version = v
	return outcome, nil
}

// routeToApproval creates the pending approval request in place of a
// direct publish.
func (l *Lifecycle) routeToApproval(ctx context.Context, actor permission.Actor, opts PublishOptions, summary model.ChangesSummary) (*PublishOutcome, error) {
	priority := opts.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	req := &model.ApprovalRequest{
		ID:          uuid.NewString(),
		FloorID:     l.floor.ID,
		RequesterID: actor.ID,
		ApproverID:  opts.ApproverID,
		Status:      model.ApprovalPending,
		Message:     opts.Message,
		Priority:    priority,
		LockDraft:   opts.LockDraft,
		Summary:     summary,
		Notes:       opts.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	if l.gw.Approvals != nil {
		if err := l.gw.Approvals.CreateApproval(ctx, req); err != nil {
			return nil, fmt.Errorf("creating approval request: %w", err)
		}
	}
	l.pending = req
	l.state = StatePendingApproval
	if opts.LockDraft {
		l.editor.Lock()
	}
	if l.gw.Notify != nil {
		l.gw.Notify.NotifyApprovalRequested(ctx, l.floor, req)
	}
	l.recordActivity(ctx, actor.ID, "approval.requested",
		fmt.Sprintf("Requested publish approval (%s priority)", priority), &summary)
	return &PublishOutcome{State: l.state, Request: req}, nil
}

// runPublishPipeline executes validate → snapshot → update → finalize.
// Each stage either completes or the whole transition is abandoned with
// the draft intact; the version row is created in one atomic step after
// every prior stage succeeded, which keeps numbering gap-free.
func (l *Lifecycle) runPublishPipeline(ctx context.Context, publisherID uint64, notes string, summary model.ChangesSummary, outcome *PublishOutcome) (*model.Version, error) {
	stage := func(name string, ok bool, errMsg string) {
		outcome.Stages = append(outcome.Stages, StageStatus{Stage: name, OK: ok, Error: errMsg})
	}

	result := l.editor.Validate()
	if !result.IsValid {
		stage("validate", false, "floor plan has validation errors")
		outcome.State = l.state
		outcome.Validation = &result
		return nil, &ValidationError{Result: result}
	}
	stage("validate", true, "")

	snapshot := l.editor.Draft().Clone()
	snapshot.ClearTags()
	v := &model.Version{
		FloorID:     l.floor.ID,
		Number:      l.floor.CurrentVersion + 1,
		PublishedBy: publisherID,
		PublishedAt: time.Now().UTC(),
		Notes:       notes,
		Tables:      snapshot.Tables,
		Sections:    snapshot.Sections,
		Combos:      snapshot.Combos,
		Summary:     summary,
	}
	stage("snapshot", true, "")

	if l.gw.Versions != nil {
		if err := l.gw.Versions.CreateVersion(ctx, v); err != nil {
			stage("update", false, err.Error())
			outcome.State = l.state
			return nil, fmt.Errorf("storing version %d: %w", v.Number, err)
		}
	}
	stage("update", true, "")

	l.floor.CurrentVersion = v.Number
	l.baseline = NewDraft(l.floor, v.Tables, v.Sections, v.Combos)
	l.editor = nil
	l.preEdit = nil
	l.pending = nil
	l.state = StatePublished
	l.clearDraftBlob(ctx)
	if l.gw.Notify != nil {
		l.gw.Notify.NotifyPublished(ctx, l.floor, v)
	}
	l.recordActivity(ctx, publisherID, "floor.published",
		fmt.Sprintf("Published version %d", v.Number), &summary)
	stage("finalize", true, "")
	return v, nil
}

// Approve runs the publish pipeline on behalf of the requester.  It
// requires the publish capability; on success the request resolves as
// approved and the floor transitions to Published.
func (l *Lifecycle) Approve(ctx context.Context, actor permission.Actor, resolution string) (*PublishOutcome, error) {
	if l.state != StatePendingApproval || l.pending == nil {
		return nil, ErrNoActiveDraft
	}
	if !actor.Capabilities().CanPublish {
		return nil, &PermissionError{Role: actor.Role, Capability: "canPublish"}
	}
	req := l.pending

	l.editor.Unlock()
	outcome := &PublishOutcome{}
	l.state = StateDraft // pipeline publishes from the draft state
	v, err := l.runPublishPipeline(ctx, req.RequesterID, req.Notes, req.Summary, outcome)
	if err != nil {
		// Stay pending: the approver can request changes instead.
		l.state = StatePendingApproval
		if req.LockDraft {
			l.editor.Lock()
		}
		return outcome, err
	}
	l.resolveRequest(ctx, req, model.ApprovalApproved, actor.ID, resolution)
	outcome.State = l.state
	outcome.Version = v
	outcome.Request = req
	return outcome, nil
}

// Reject resolves the pending request as rejected and returns the
// floor to the Draft state with the lock lifted.
func (l *Lifecycle) Reject(ctx context.Context, actor permission.Actor, resolution string) error {
	return l.declineRequest(ctx, actor, model.ApprovalRejected, resolution, "approval.rejected")
}

// RequestChanges resolves the pending request as changes_requested and
// returns the floor to Draft so the requester can keep editing.
func (l *Lifecycle) RequestChanges(ctx context.Context, actor permission.Actor, resolution string) error {
	return l.declineRequest(ctx, actor, model.ApprovalChangesRequested, resolution, "approval.changes_requested")
}

func (l *Lifecycle) declineRequest(ctx context.Context, actor permission.Actor, status model.ApprovalStatus, resolution, activity string) error {
	if l.state != StatePendingApproval || l.pending == nil {
		return ErrNoActiveDraft
	}
	if !actor.Capabilities().CanPublish {
		return &PermissionError{Role: actor.Role, Capability: "canPublish"}
	}
	req := l.pending
	l.resolveRequest(ctx, req, status, actor.ID, resolution)
	l.pending = nil
	l.editor.Unlock()
	l.state = StateDraft
	l.recordActivity(ctx, actor.ID, activity, resolution, nil)
	return nil
}

// Withdraw cancels the pending request before the approver acts.  Only
// the requester may withdraw; the draft unlocks and stays editable.
func (l *Lifecycle) Withdraw(ctx context.Context, actor permission.Actor) error {
	if l.state != StatePendingApproval || l.pending == nil {
		return ErrNoActiveDraft
	}
	if actor.ID != l.pending.RequesterID {
		return ErrNotRequester
	}
	req := l.pending
	l.resolveRequest(ctx, req, model.ApprovalRejected, actor.ID, "withdrawn by requester")
	l.pending = nil
	l.editor.Unlock()
	l.state = StateDraft
	l.recordActivity(ctx, actor.ID, "approval.withdrawn", "Withdrew the approval request", nil)
	return nil
}

func (l *Lifecycle) resolveRequest(ctx context.Context, req *model.ApprovalRequest, status model.ApprovalStatus, byID uint64, resolution string) {
	now := time.Now().UTC()
	req.Status = status
	req.ResolvedBy = byID
	req.Resolution = resolution
	req.ResolvedAt = &now
	if l.gw.Approvals != nil {
		_ = l.gw.Approvals.UpdateApproval(ctx, req)
	}
	if l.gw.Notify != nil {
		l.gw.Notify.NotifyApprovalResolved(ctx, l.floor, req)
	}
}

// Restore publishes a verbatim copy of an older version as the new
// current baseline.  It requires the rollback capability, honors the
// role's rollback window, assigns version number current+1 and leaves
// every intervening version untouched.
func (l *Lifecycle) Restore(ctx context.Context, actor permission.Actor, number int) (*model.Version, error) {
	if l.state != StatePublished {
		return nil, ErrDraftInProgress
	}
	caps := actor.Capabilities()
	if !caps.CanRollback {
		return nil, &PermissionError{Role: actor.Role, Capability: "canRollback"}
	}
	if l.gw.Versions == nil {
		return nil, ErrVersionNotFound
	}
	src, err := l.gw.Versions.GetVersion(ctx, l.floor.ID, number)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, ErrVersionNotFound
	}
	if caps.RollbackDaysLimit > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -caps.RollbackDaysLimit)
		if src.PublishedAt.Before(cutoff) {
			return nil, ErrRollbackWindowExceeded
		}
	}

	content := NewDraft(l.floor, src.Tables, src.Sections, src.Combos)
	content.ClearTags()
	diff := CompareContent(l.baseline, content)
	v := &model.Version{
		FloorID:      l.floor.ID,
		Number:       l.floor.CurrentVersion + 1,
		PublishedBy:  actor.ID,
		PublishedAt:  time.Now().UTC(),
		Notes:        fmt.Sprintf("Restored from version %d", number),
		RestoredFrom: number,
		Tables:       content.Tables,
		Sections:     content.Sections,
		Combos:       content.Combos,
		Summary:      diffSummary(diff),
	}
	if err := l.gw.Versions.CreateVersion(ctx, v); err != nil {
		return nil, fmt.Errorf("storing restored version: %w", err)
	}
	l.floor.CurrentVersion = v.Number
	l.baseline = NewDraft(l.floor, v.Tables, v.Sections, v.Combos)
	summary := v.Summary
	l.recordActivity(ctx, actor.ID, "floor.restored",
		fmt.Sprintf("Restored version %d as version %d", number, v.Number), &summary)
	if l.gw.Notify != nil {
		l.gw.Notify.NotifyPublished(ctx, l.floor, v)
	}
	return v, nil
}

func (l *Lifecycle) clearDraftBlob(ctx context.Context) {
	if l.gw.Drafts != nil {
		// Best effort; a stale blob is harmless and overwritten next session.
		_ = l.gw.Drafts.ClearDraft(ctx, l.floor.ID)
	}
}

func (l *Lifecycle) recordActivity(ctx context.Context, actorID uint64, action, details string, summary *model.ChangesSummary) {
	if l.gw.Activity == nil {
		return
	}
	_ = l.gw.Activity.RecordActivity(ctx, &model.ActivityEntry{
		FloorID:   l.floor.ID,
		ActorID:   actorID,
		Action:    action,
		Details:   details,
		Summary:   summary,
		CreatedAt: time.Now().UTC(),
	})
}
