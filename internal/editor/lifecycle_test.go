package editor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-floor-plan/internal/editor"
	"github.com/iliyamo/restaurant-floor-plan/internal/geometry"
	"github.com/iliyamo/restaurant-floor-plan/internal/model"
	"github.com/iliyamo/restaurant-floor-plan/internal/permission"
)

// fakeGateways is an in-memory stand-in for the persistence and
// notification backends, with injectable failures.
type fakeGateways struct {
	versions   map[int]*model.Version
	draftBlob  *editor.SavedDraft
	approvals  []*model.ApprovalRequest
	activity   []*model.ActivityEntry
	published  []*model.Version
	requested  []*model.ApprovalRequest
	resolved   []*model.ApprovalRequest
	versionErr error
	draftErr   error
}

func newFakeGateways() *fakeGateways {
	return &fakeGateways{versions: map[int]*model.Version{}}
}

func (f *fakeGateways) SaveDraft(_ context.Context, _ uint64, blob editor.SavedDraft) error {
	if f.draftErr != nil {
		return f.draftErr
	}
	f.draftBlob = &blob
	return nil
}

func (f *fakeGateways) LoadDraft(_ context.Context, _ uint64) (*editor.SavedDraft, error) {
	return f.draftBlob, f.draftErr
}

func (f *fakeGateways) ClearDraft(_ context.Context, _ uint64) error {
	f.draftBlob = nil
	return nil
}

func (f *fakeGateways) CreateVersion(_ context.Context, v *model.Version) error {
	if f.versionErr != nil {
		return f.versionErr
	}
	f.versions[v.Number] = v
	return nil
}

func (f *fakeGateways) GetVersion(_ context.Context, _ uint64, number int) (*model.Version, error) {
	return f.versions[number], nil
}

func (f *fakeGateways) CreateApproval(_ context.Context, req *model.ApprovalRequest) error {
	f.approvals = append(f.approvals, req)
	return nil
}

func (f *fakeGateways) UpdateApproval(_ context.Context, _ *model.ApprovalRequest) error {
	return nil
}

func (f *fakeGateways) RecordActivity(_ context.Context, entry *model.ActivityEntry) error {
	f.activity = append(f.activity, entry)
	return nil
}

func (f *fakeGateways) NotifyApprovalRequested(_ context.Context, _ model.Floor, req *model.ApprovalRequest) {
	f.requested = append(f.requested, req)
}

func (f *fakeGateways) NotifyApprovalResolved(_ context.Context, _ model.Floor, req *model.ApprovalRequest) {
	f.resolved = append(f.resolved, req)
}

func (f *fakeGateways) NotifyPublished(_ context.Context, _ model.Floor, v *model.Version) {
	f.published = append(f.published, v)
}

func (f *fakeGateways) gateways() editor.Gateways {
	return editor.Gateways{Drafts: f, Versions: f, Approvals: f, Activity: f, Notify: f}
}

var (
	owner   = permission.Actor{ID: 1, Role: model.RoleOwner}
	manager = permission.Actor{ID: 2, Role: model.RoleManager}
	staff   = permission.Actor{ID: 3, Role: model.RoleStaff}
	viewer  = permission.Actor{ID: 4, Role: model.RoleViewer}
)

func newLifecycle(t *testing.T, fg *fakeGateways) *editor.Lifecycle {
	t.Helper()
	return editor.NewLifecycle(testFloor(), nil, fg.gateways())
}

func addOneTable(t *testing.T, ed *editor.Editor, name string, x float64) {
	t.Helper()
	_, err := ed.CreateTable(name, 4, model.ShapeRectangle, geometry.Rect{X: x, Y: 100, Width: 140, Height: 90})
	require.NoError(t, err)
}

func TestOwnerPublishCreatesVersion(t *testing.T) {
	fg := newFakeGateways()
	l := newLifecycle(t, fg)
	ctx := context.Background()

	ed, err := l.EnterEdit(ctx, owner, false)
	require.NoError(t, err)
	require.Equal(t, editor.StateDraft, l.State())
	addOneTable(t, ed, "T-1", 100)

	outcome, err := l.Publish(ctx, owner, editor.PublishOptions{Notes: "first layout"})
	require.NoError(t, err)
	require.Equal(t, editor.StatePublished, outcome.State)
	require.NotNil(t, outcome.Version)
	require.Equal(t, 1, outcome.Version.Number)
	require.Equal(t, "first layout", outcome.Version.Notes)
	require.Equal(t, 1, outcome.Version.Summary.Added)

	// Version content carries no draft tags.
	require.Equal(t, model.ChangeUnchanged, outcome.Version.Tables[0].Status)

	// The baseline advanced, every stage passed, the blob was cleared
	// and subscribers were told.
	require.Len(t, l.Baseline().Tables, 1)
	require.Equal(t, 1, l.Floor().CurrentVersion)
	for _, s := range outcome.Stages {
		require.True(t, s.OK, s.Stage)
	}
	require.Nil(t, fg.draftBlob)
	require.Len(t, fg.published, 1)
}

func TestPublishWithoutChangesIsBlocked(t *testing.T) {
	fg := newFakeGateways()
	l := newLifecycle(t, fg)
	ctx := context.Background()

	_, err := l.EnterEdit(ctx, owner, false)
	require.NoError(t, err)
	_, err = l.Publish(ctx, owner, editor.PublishOptions{})
	require.ErrorIs(t, err, editor.ErrNothingToPublish)
	require.Equal(t, editor.StateDraft, l.State())
}

func TestComboOnlyDraftPublishes(t *testing.T) {
	fg := newFakeGateways()
	base := &model.Version{
		FloorID: 1,
		Number:  1,
		Tables: []*model.Table{
			baselineTable("t1", "T-1", 100, 100),
			baselineTable("t2", "T-2", 500, 100),
		},
	}
	fg.versions[1] = base
	floor := testFloor()
	floor.CurrentVersion = 1
	l := editor.NewLifecycle(floor, base, fg.gateways())
	ctx := context.Background()

	ed, err := l.EnterEdit(ctx, owner, false)
	require.NoError(t, err)
	_, err = ed.CreateCombo("Banquet", []string{"t1", "t2"})
	require.NoError(t, err)

	// Grouping tables is a real edit: it counts toward the summary and
	// is publishable on its own.
	require.Equal(t, 1, ed.Draft().Summary().Total())
	out, err := l.Publish(ctx, owner, editor.PublishOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, out.Version.Number)
	require.Len(t, out.Version.Combos, 1)
	require.Equal(t, model.ChangeUnchanged, out.Version.Combos[0].Status)

	// Ungrouping a published combo is equally publishable.
	ed, err = l.EnterEdit(ctx, owner, false)
	require.NoError(t, err)
	require.NoError(t, ed.DeleteCombo(out.Version.Combos[0].ID))
	require.Equal(t, 1, ed.Draft().Summary().Deleted)
	out, err = l.Publish(ctx, owner, editor.PublishOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, out.Version.Number)
	require.Empty(t, out.Version.Combos)
}

func TestPublishValidationGate(t *testing.T) {
	fg := newFakeGateways()
	l := newLifecycle(t, fg)
	ctx := context.Background()

	ed, err := l.EnterEdit(ctx, owner, false)
	require.NoError(t, err)
	addOneTable(t, ed, "T-1", 240)
	addOneTable(t, ed, "T-2", 260) // overlaps T-1

	outcome, err := l.Publish(ctx, owner, editor.PublishOptions{})
	var verr *editor.ValidationError
	require.ErrorAs(t, err, &verr)
	require.NotNil(t, outcome.Validation)
	require.False(t, outcome.Validation.IsValid)

	// The draft survives the failed attempt for fixing.
	require.Equal(t, editor.StateDraft, l.State())
	require.Empty(t, fg.versions)
}

func TestPublishStoreFailureKeepsDraft(t *testing.T) {
	fg := newFakeGateways()
	fg.versionErr = errors.New("connection refused")
	l := newLifecycle(t, fg)
	ctx := context.Background()

	ed, err := l.EnterEdit(ctx, owner, false)
	require.NoError(t, err)
	addOneTable(t, ed, "T-1", 100)

	outcome, err := l.Publish(ctx, owner, editor.PublishOptions{})
	require.Error(t, err)
	require.Equal(t, editor.StateDraft, outcome.State)
	require.Equal(t, editor.StateDraft, l.State())
	require.Equal(t, 0, l.Floor().CurrentVersion)

	// Retry succeeds once the store is back.
	fg.versionErr = nil
	outcome, err = l.Publish(ctx, owner, editor.PublishOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, outcome.Version.Number)
}

func TestStaffPublishRoutesToApproval(t *testing.T) {
	fg := newFakeGateways()
	l := newLifecycle(t, fg)
	ctx := context.Background()

	ed, err := l.EnterEdit(ctx, staff, false)
	require.NoError(t, err)
	addOneTable(t, ed, "T-1", 100)

	outcome, err := l.Publish(ctx, staff, editor.PublishOptions{
		ApproverID: manager.ID,
		Message:    "new window table",
		Priority:   model.PriorityUrgent,
		LockDraft:  true,
	})
	require.NoError(t, err)
	require.Equal(t, editor.StatePendingApproval, outcome.State)
	require.Nil(t, outcome.Version)
	require.NotNil(t, outcome.Request)
	require.Equal(t, model.ApprovalPending, outcome.Request.Status)
	require.Equal(t, staff.ID, outcome.Request.RequesterID)
	require.Equal(t, 1, outcome.Request.Summary.Added)
	require.Len(t, fg.approvals, 1)
	require.Len(t, fg.requested, 1)

	// LockDraft froze the editor until the request resolves.
	require.ErrorIs(t, ed.Nudge(1, 0), editor.ErrDraftLocked)

	// A second attempt while pending is refused.
	_, err = l.Publish(ctx, staff, editor.PublishOptions{})
	require.Error(t, err)
}

func TestApprovePublishesOnBehalfOfRequester(t *testing.T) {
	fg := newFakeGateways()
	l := newLifecycle(t, fg)
	ctx := context.Background()

	ed, err := l.EnterEdit(ctx, staff, false)
	require.NoError(t, err)
	addOneTable(t, ed, "T-1", 100)
	_, err = l.Publish(ctx, staff, editor.PublishOptions{Notes: "please review", LockDraft: true})
	require.NoError(t, err)

	// A viewer cannot resolve the request.
	_, err = l.Approve(ctx, viewer, "lgtm")
	var perr *editor.PermissionError
	require.ErrorAs(t, err, &perr)

	outcome, err := l.Approve(ctx, manager, "looks good")
	require.NoError(t, err)
	require.Equal(t, editor.StatePublished, outcome.State)
	require.Equal(t, 1, outcome.Version.Number)
	// The version credits the requester, not the approver.
	require.Equal(t, staff.ID, outcome.Version.PublishedBy)
	require.Equal(t, model.ApprovalApproved, outcome.Request.Status)
	require.Equal(t, manager.ID, outcome.Request.ResolvedBy)
	require.Len(t, fg.resolved, 1)
	require.Nil(t, l.PendingRequest())
}

func TestRejectReturnsToDraftUnlocked(t *testing.T) {
	fg := newFakeGateways()
	l := newLifecycle(t, fg)
	ctx := context.Background()

	ed, err := l.EnterEdit(ctx, staff, false)
	require.NoError(t, err)
	addOneTable(t, ed, "T-1", 100)
	_, err = l.Publish(ctx, staff, editor.PublishOptions{LockDraft: true})
	require.NoError(t, err)

	require.NoError(t, l.Reject(ctx, manager, "too crowded"))
	require.Equal(t, editor.StateDraft, l.State())
	require.Nil(t, l.PendingRequest())
	require.Empty(t, fg.versions)

	// The requester can keep editing.
	ed.SelectOnly(ed.Draft().Tables[0].ID)
	require.NoError(t, ed.Nudge(1, 0))
}

func TestWithdrawRequiresRequester(t *testing.T) {
	fg := newFakeGateways()
	l := newLifecycle(t, fg)
	ctx := context.Background()

	ed, err := l.EnterEdit(ctx, staff, false)
	require.NoError(t, err)
	addOneTable(t, ed, "T-1", 100)
	_, err = l.Publish(ctx, staff, editor.PublishOptions{LockDraft: true})
	require.NoError(t, err)

	require.ErrorIs(t, l.Withdraw(ctx, manager), editor.ErrNotRequester)
	require.NoError(t, l.Withdraw(ctx, staff))
	require.Equal(t, editor.StateDraft, l.State())
	require.NoError(t, ed.Nudge(0, 0))
}

func TestDiscardRevertsToPreEditState(t *testing.T) {
	fg := newFakeGateways()
	l := newLifecycle(t, fg)
	ctx := context.Background()

	ed, err := l.EnterEdit(ctx, owner, false)
	require.NoError(t, err)
	addOneTable(t, ed, "T-1", 100)
	require.NoError(t, l.SaveDraft(ctx))
	require.NotNil(t, fg.draftBlob)

	require.NoError(t, l.Discard(ctx, owner))
	require.Equal(t, editor.StatePublished, l.State())
	require.Empty(t, l.Baseline().Tables)
	require.Nil(t, fg.draftBlob)
	_, err = l.Editor()
	require.ErrorIs(t, err, editor.ErrNoActiveDraft)
}

func TestEnterEditResumeSeedsFromSavedBlob(t *testing.T) {
	fg := newFakeGateways()
	ctx := context.Background()

	l := newLifecycle(t, fg)
	ed, err := l.EnterEdit(ctx, staff, false)
	require.NoError(t, err)
	addOneTable(t, ed, "T-1", 100)
	require.NoError(t, l.SaveDraft(ctx))

	// Simulate a crash: a fresh controller over the same backends.
	l2 := newLifecycle(t, fg)
	blob, err := l2.SavedBlob(ctx)
	require.NoError(t, err)
	require.NotNil(t, blob)
	require.Equal(t, 1, blob.Summary.Added)

	ed2, err := l2.EnterEdit(ctx, staff, true)
	require.NoError(t, err)
	require.Len(t, ed2.Draft().Tables, 1)
	require.Equal(t, model.ChangeAdded, ed2.Draft().Tables[0].Status)
}

func TestSaveDraftWrapsGatewayFailure(t *testing.T) {
	fg := newFakeGateways()
	l := newLifecycle(t, fg)
	ctx := context.Background()

	_, err := l.EnterEdit(ctx, owner, false)
	require.NoError(t, err)
	fg.draftErr = errors.New("redis down")
	err = l.SaveDraft(ctx)
	var perr *editor.PersistenceError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "save", perr.Op)
}

func TestViewerCannotEnterEdit(t *testing.T) {
	fg := newFakeGateways()
	l := newLifecycle(t, fg)

	_, err := l.EnterEdit(context.Background(), viewer, false)
	var perr *editor.PermissionError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, editor.StatePublished, l.State())
}

func TestVersionNumbersAreMonotonic(t *testing.T) {
	fg := newFakeGateways()
	l := newLifecycle(t, fg)
	ctx := context.Background()

	publish := func(name string, x float64) *model.Version {
		ed, err := l.EnterEdit(ctx, owner, false)
		require.NoError(t, err)
		addOneTable(t, ed, name, x)
		outcome, err := l.Publish(ctx, owner, editor.PublishOptions{})
		require.NoError(t, err)
		return outcome.Version
	}

	v1 := publish("T-1", 100)
	v2 := publish("T-2", 400)
	require.Equal(t, 1, v1.Number)
	require.Equal(t, 2, v2.Number)

	// Restoring creates version 3 copying version 1; nothing is rewritten.
	v3, err := l.Restore(ctx, owner, 1)
	require.NoError(t, err)
	require.Equal(t, 3, v3.Number)
	require.Equal(t, 1, v3.RestoredFrom)
	require.Len(t, v3.Tables, 1)
	require.Equal(t, 3, l.Floor().CurrentVersion)
	require.NotNil(t, fg.versions[2], "intervening versions stay intact")

	// The restored baseline matches version 1's content exactly.
	content := editor.NewDraft(l.Floor(), fg.versions[1].Tables, fg.versions[1].Sections, fg.versions[1].Combos)
	require.Empty(t, editor.CompareContent(l.Baseline(), content))
}

func TestRestoreHonorsRollbackWindow(t *testing.T) {
	fg := newFakeGateways()
	old := &model.Version{
		FloorID:     1,
		Number:      1,
		PublishedAt: time.Now().UTC().AddDate(0, 0, -40),
		Tables:      []*model.Table{baselineTable("t1", "T-1", 100, 100)},
	}
	fg.versions[1] = old
	l := editor.NewLifecycle(testFloor(), old, fg.gateways())
	ctx := context.Background()

	// Managers are limited to 30 days.
	_, err := l.Restore(ctx, manager, 1)
	require.ErrorIs(t, err, editor.ErrRollbackWindowExceeded)

	// Owners have no window.
	v, err := l.Restore(ctx, owner, 1)
	require.NoError(t, err)
	require.Equal(t, 2, v.Number)
}

func TestRestoreMissingVersion(t *testing.T) {
	fg := newFakeGateways()
	l := newLifecycle(t, fg)

	_, err := l.Restore(context.Background(), owner, 7)
	require.ErrorIs(t, err, editor.ErrVersionNotFound)
}

func TestRestoreBlockedWhileDrafting(t *testing.T) {
	fg := newFakeGateways()
	l := newLifecycle(t, fg)
	ctx := context.Background()

	_, err := l.EnterEdit(ctx, owner, false)
	require.NoError(t, err)
	_, err = l.Restore(ctx, owner, 1)
	require.ErrorIs(t, err, editor.ErrDraftInProgress)
}
