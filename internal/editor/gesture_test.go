package editor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-floor-plan/internal/editor"
	"github.com/iliyamo/restaurant-floor-plan/internal/model"
)

func twoTableSession(t *testing.T) *editor.Editor {
	t.Helper()
	d := editor.NewDraft(testFloor(), []*model.Table{
		baselineTable("t1", "T-1", 100, 100),
		baselineTable("t2", "T-2", 500, 100),
	}, nil, nil)
	return editor.NewEditor(d)
}

func TestDragCommitsOneSnappedAction(t *testing.T) {
	e := twoTableSession(t)

	require.NoError(t, e.PointerDown(editor.Pointer{X: 120, Y: 120}, editor.PointerDownOpts{TargetID: "t1"}))
	e.PointerMove(editor.Pointer{X: 173, Y: 146}, editor.MoveOpts{})
	e.PointerMove(editor.Pointer{X: 177, Y: 152}, editor.MoveOpts{})
	require.NoError(t, e.PointerUp(editor.Pointer{X: 177, Y: 152}))

	tb := e.Draft().TableByID("t1")
	// Delta (57,32) snaps to (60,30) on the default 10-unit grid.
	require.Equal(t, 160.0, tb.X)
	require.Equal(t, 130.0, tb.Y)
	require.Equal(t, model.ChangeModified, tb.Status)
	// The whole gesture is one action, not one per intermediate frame.
	require.Equal(t, 1, e.History().Len())
}

func TestDragMovesWholeSelection(t *testing.T) {
	e := twoTableSession(t)
	e.SelectOnly("t1")
	e.ToggleSelect("t2")

	require.NoError(t, e.PointerDown(editor.Pointer{X: 120, Y: 120}, editor.PointerDownOpts{TargetID: "t1"}))
	e.PointerMove(editor.Pointer{X: 160, Y: 120}, editor.MoveOpts{})
	require.NoError(t, e.PointerUp(editor.Pointer{X: 160, Y: 120}))

	require.Equal(t, 140.0, e.Draft().TableByID("t1").X)
	require.Equal(t, 540.0, e.Draft().TableByID("t2").X)
	require.Equal(t, 1, e.History().Len())
}

func TestDragGuidesAreViewStateOnly(t *testing.T) {
	e := twoTableSession(t)

	require.NoError(t, e.PointerDown(editor.Pointer{X: 120, Y: 120}, editor.PointerDownOpts{TargetID: "t1"}))
	// Bring t1's top edge within the guide threshold of t2's top edge.
	e.PointerMove(editor.Pointer{X: 120, Y: 122}, editor.MoveOpts{})
	require.NotEmpty(t, e.Guides())
	require.NoError(t, e.PointerUp(editor.Pointer{X: 120, Y: 122}))
	require.Empty(t, e.Guides())
}

func TestResizeClampsToMinimum(t *testing.T) {
	e := twoTableSession(t)

	require.NoError(t, e.PointerDown(editor.Pointer{X: 240, Y: 190}, editor.PointerDownOpts{TargetID: "t1", Handle: "se"}))
	e.PointerMove(editor.Pointer{X: 0, Y: 0}, editor.MoveOpts{})
	require.NoError(t, e.PointerUp(editor.Pointer{X: 0, Y: 0}))

	tb := e.Draft().TableByID("t1")
	require.Equal(t, model.MinTableWidth, tb.Width)
	require.Equal(t, model.MinTableHeight, tb.Height)
	// The anchored corner stays put.
	require.Equal(t, 100.0, tb.X)
	require.Equal(t, 100.0, tb.Y)
	require.Equal(t, 1, e.History().Len())
}

func TestResizeCircleStaysSquare(t *testing.T) {
	d := editor.NewDraft(testFloor(), []*model.Table{{
		ID: "c1", Name: "Round-1", Capacity: 4, Shape: model.ShapeCircle,
		X: 200, Y: 200, Width: 90, Height: 90, Status: model.ChangeUnchanged,
	}}, nil, nil)
	e := editor.NewEditor(d)

	require.NoError(t, e.PointerDown(editor.Pointer{X: 290, Y: 245}, editor.PointerDownOpts{TargetID: "c1", Handle: "e"}))
	e.PointerMove(editor.Pointer{X: 330, Y: 245}, editor.MoveOpts{})
	require.NoError(t, e.PointerUp(editor.Pointer{X: 330, Y: 245}))

	tb := e.Draft().TableByID("c1")
	require.Equal(t, tb.Width, tb.Height, "circles keep width == height")
	require.Equal(t, 130.0, tb.Width)
}

func TestResizeBackToOriginalRecordsNothing(t *testing.T) {
	e := twoTableSession(t)

	// Stretch the east edge out and pull it straight back.
	require.NoError(t, e.PointerDown(editor.Pointer{X: 240, Y: 145}, editor.PointerDownOpts{TargetID: "t1", Handle: "e"}))
	e.PointerMove(editor.Pointer{X: 280, Y: 145}, editor.MoveOpts{})
	e.PointerMove(editor.Pointer{X: 240, Y: 145}, editor.MoveOpts{})
	require.NoError(t, e.PointerUp(editor.Pointer{X: 240, Y: 145}))

	tb := e.Draft().TableByID("t1")
	require.Equal(t, 140.0, tb.Width)
	require.Equal(t, model.ChangeUnchanged, tb.Status)
	// A gesture that ends where it started is not an action.
	require.Equal(t, 0, e.History().Len())
}

func TestRotateSnapsToStep(t *testing.T) {
	e := twoTableSession(t)

	// t1 center is (170,145); pointer due right of center is 90 degrees.
	require.NoError(t, e.PointerDown(editor.Pointer{X: 170, Y: 80}, editor.PointerDownOpts{TargetID: "t1", Handle: "rotate"}))
	e.PointerMove(editor.Pointer{X: 270, Y: 149}, editor.MoveOpts{})
	require.NoError(t, e.PointerUp(editor.Pointer{X: 270, Y: 149}))

	tb := e.Draft().TableByID("t1")
	require.Equal(t, 90.0, tb.Rotation)
	require.Equal(t, 1, e.History().Len())
}

func TestRotateExactSkipsSnapping(t *testing.T) {
	e := twoTableSession(t)

	require.NoError(t, e.PointerDown(editor.Pointer{X: 170, Y: 80}, editor.PointerDownOpts{TargetID: "t1", Handle: "rotate"}))
	e.PointerMove(editor.Pointer{X: 270, Y: 145}, editor.MoveOpts{Exact: true})
	require.NoError(t, e.PointerUp(editor.Pointer{X: 270, Y: 145}))

	require.Equal(t, 90.0, e.Draft().TableByID("t1").Rotation)
}

func TestMarqueeSelectsFullyContainedOnly(t *testing.T) {
	e := twoTableSession(t)

	// Marquee covers t1 fully but only clips t2 (t2 spans x 500-640).
	require.NoError(t, e.PointerDown(editor.Pointer{X: 50, Y: 50}, editor.PointerDownOpts{}))
	e.PointerMove(editor.Pointer{X: 550, Y: 400}, editor.MoveOpts{})
	require.NoError(t, e.PointerUp(editor.Pointer{X: 550, Y: 400}))

	require.Equal(t, []string{"t1"}, e.SelectedIDs())
	// Selection is view state: nothing recorded.
	require.Equal(t, 0, e.History().Len())
}

func TestSectionDrawRejectsBelowMinimum(t *testing.T) {
	e := twoTableSession(t)
	require.NoError(t, e.SetTool(editor.ToolDrawSection))

	require.NoError(t, e.PointerDown(editor.Pointer{X: 700, Y: 500}, editor.PointerDownOpts{}))
	e.PointerMove(editor.Pointer{X: 740, Y: 540}, editor.MoveOpts{})
	err := e.PointerUp(editor.Pointer{X: 740, Y: 540})
	require.ErrorIs(t, err, editor.ErrInvalidGeometry)
	require.Empty(t, e.Draft().Sections)
	require.Equal(t, 0, e.History().Len())
}

func TestSectionDrawAssignsContainedTables(t *testing.T) {
	e := twoTableSession(t)
	require.NoError(t, e.SetTool(editor.ToolDrawSection))

	// 420x250 rectangle fully containing t1 (100,100 140x90) and a second
	// table moved inside first.
	require.NoError(t, e.Draft().UpdateTable("t2", func(tb *model.Table) { tb.X, tb.Y = 300, 120 }))
	require.NoError(t, e.PointerDown(editor.Pointer{X: 80, Y: 80}, editor.PointerDownOpts{}))
	e.PointerMove(editor.Pointer{X: 500, Y: 330}, editor.MoveOpts{})
	require.NoError(t, e.PointerUp(editor.Pointer{X: 500, Y: 330}))

	require.Len(t, e.Draft().Sections, 1)
	s := e.Draft().Sections[0]
	require.Equal(t, model.ChangeAdded, s.Status)
	require.Equal(t, s.ID, e.Draft().TableByID("t1").SectionID)
	require.Equal(t, s.ID, e.Draft().TableByID("t2").SectionID)
	require.Equal(t, model.ChangeModified, e.Draft().TableByID("t1").Status)
	// One action covers the section and both assignments.
	require.Equal(t, 1, e.History().Len())

	// Undoing removes the section and the assignments together.
	require.True(t, e.Undo())
	require.Empty(t, e.Draft().Sections)
	require.Equal(t, "", e.Draft().TableByID("t1").SectionID)
}

func TestPanTouchesOnlyViewState(t *testing.T) {
	e := twoTableSession(t)
	require.NoError(t, e.SetTool(editor.ToolPan))

	require.NoError(t, e.PointerDown(editor.Pointer{X: 0, Y: 0}, editor.PointerDownOpts{}))
	e.PointerMove(editor.Pointer{X: 35, Y: -12}, editor.MoveOpts{})
	require.NoError(t, e.PointerUp(editor.Pointer{X: 35, Y: -12}))

	vx, vy := e.View()
	require.Equal(t, 35.0, vx)
	require.Equal(t, -12.0, vy)
	require.Equal(t, 100.0, e.Draft().TableByID("t1").X)
	require.Equal(t, 0, e.History().Len())
}

func TestAddEntityToolPlacesTable(t *testing.T) {
	e := twoTableSession(t)
	require.NoError(t, e.SetTool(editor.ToolAddEntity))
	e.SetAddDefaults(editor.AddDefaults{Shape: model.ShapeCircle, Capacity: 2, Width: 80, Height: 80})

	require.NoError(t, e.PointerDown(editor.Pointer{X: 800, Y: 600}, editor.PointerDownOpts{}))

	require.Len(t, e.Draft().Tables, 3)
	placed := e.Draft().Tables[2]
	require.Equal(t, model.ChangeAdded, placed.Status)
	require.Equal(t, model.ShapeCircle, placed.Shape)
	require.Equal(t, placed.Width, placed.Height)
	require.Equal(t, 1, e.History().Len())
}

func TestLockedDraftRejectsEdits(t *testing.T) {
	e := twoTableSession(t)
	e.Lock()

	require.ErrorIs(t, e.Nudge(1, 0), editor.ErrDraftLocked)
	require.ErrorIs(t, e.Delete("t1"), editor.ErrDraftLocked)
	err := e.PointerDown(editor.Pointer{X: 120, Y: 120}, editor.PointerDownOpts{TargetID: "t1"})
	require.ErrorIs(t, err, editor.ErrDraftLocked)

	// The model is untouched and nothing was recorded.
	require.Equal(t, 100.0, e.Draft().TableByID("t1").X)
	require.Equal(t, 0, e.History().Len())

	e.Unlock()
	require.NoError(t, e.Nudge(1, 0))
}

func TestToolSwitchAbortsGesture(t *testing.T) {
	e := twoTableSession(t)

	require.NoError(t, e.PointerDown(editor.Pointer{X: 120, Y: 120}, editor.PointerDownOpts{TargetID: "t1"}))
	e.PointerMove(editor.Pointer{X: 220, Y: 120}, editor.MoveOpts{})
	require.Equal(t, 200.0, e.Draft().TableByID("t1").X) // transient

	require.NoError(t, e.SetTool(editor.ToolPan))
	// Aborted: position restored, nothing committed.
	require.Equal(t, 100.0, e.Draft().TableByID("t1").X)
	require.Equal(t, 0, e.History().Len())
}
