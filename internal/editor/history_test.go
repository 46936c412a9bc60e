package editor_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-floor-plan/internal/editor"
	"github.com/iliyamo/restaurant-floor-plan/internal/geometry"
	"github.com/iliyamo/restaurant-floor-plan/internal/model"
)

// newSession builds an editor over a draft with a single baseline table.
func newSession(t *testing.T) *editor.Editor {
	t.Helper()
	d := editor.NewDraft(testFloor(), []*model.Table{baselineTable("t1", "T-1", 100, 100)}, nil, nil)
	return editor.NewEditor(d)
}

func nudgeN(t *testing.T, e *editor.Editor, n int) {
	t.Helper()
	e.SelectOnly("t1")
	for i := 0; i < n; i++ {
		require.NoError(t, e.Nudge(1, 0))
	}
}

func TestUndoRedoAreInverses(t *testing.T) {
	e := newSession(t)

	// Record snapshots of the model after each committed action.
	states := []*editor.Draft{e.Draft().Clone()}
	e.SelectOnly("t1")
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Nudge(1, 1))
		states = append(states, e.Draft().Clone())
	}
	require.Equal(t, 5, e.History().Len())

	// Undo n then redo n returns to the pre-undo state for every n.
	for n := 1; n <= 5; n++ {
		for i := 0; i < n; i++ {
			require.True(t, e.Undo())
		}
		require.Equal(t, states[5-n].Tables, e.Draft().Tables, "after %d undos", n)
		for i := 0; i < n; i++ {
			require.True(t, e.Redo())
		}
		require.Equal(t, states[5].Tables, e.Draft().Tables, "after redoing %d", n)
	}
}

func TestRecordAfterUndoDiscardsRedoTail(t *testing.T) {
	e := newSession(t)
	nudgeN(t, e, 3)

	require.True(t, e.Undo())
	require.True(t, e.Undo())
	require.True(t, e.History().CanRedo())

	// A new action truncates the redo tail.
	require.NoError(t, e.Nudge(0, 1))
	require.False(t, e.History().CanRedo())
	require.Equal(t, 2, e.History().Len())
	require.False(t, e.Redo())
}

func TestUndoEmptyAndRedoAtEnd(t *testing.T) {
	e := newSession(t)
	require.False(t, e.Undo())
	require.False(t, e.Redo())

	nudgeN(t, e, 1)
	require.False(t, e.Redo()) // cursor already at the end
	require.True(t, e.Undo())
	require.False(t, e.Undo())
}

func TestUndoTo(t *testing.T) {
	e := newSession(t)
	nudgeN(t, e, 5)

	x := e.Draft().TableByID("t1").X
	require.Equal(t, 100.0+5*editor.DefaultGridSize, x)

	undone := e.UndoTo(1) // keep actions 0 and 1 applied
	require.Equal(t, 3, undone)
	require.Equal(t, 1, e.History().Cursor())
	require.Equal(t, 100.0+2*editor.DefaultGridSize, e.Draft().TableByID("t1").X)
}

func TestHistoryCapDropsOldest(t *testing.T) {
	e := newSession(t)
	e.SelectOnly("t1")
	for i := 0; i < editor.HistoryCap+10; i++ {
		dir := 1.0
		if i%2 == 1 {
			dir = -1
		}
		require.NoError(t, e.Nudge(dir, 0))
	}
	require.Equal(t, editor.HistoryCap, e.History().Len())
	require.Equal(t, editor.HistoryCap-1, e.History().Cursor())
}

func TestUndoRestoresDeletedEntity(t *testing.T) {
	e := newSession(t)
	require.NoError(t, e.Delete("t1"))
	require.Equal(t, model.ChangeDeleted, e.Draft().TableByID("t1").Status)

	require.True(t, e.Undo())
	require.Equal(t, model.ChangeUnchanged, e.Draft().TableByID("t1").Status)
}

func TestUndoRemovesCreatedEntity(t *testing.T) {
	e := newSession(t)
	created, err := e.CreateTable("T-9", 2, model.ShapeSquare, geometry.Rect{X: 600, Y: 600, Width: 80, Height: 80})
	require.NoError(t, err)
	require.NotNil(t, e.Draft().TableByID(created.ID))

	require.True(t, e.Undo())
	require.Nil(t, e.Draft().TableByID(created.ID))

	require.True(t, e.Redo())
	require.NotNil(t, e.Draft().TableByID(created.ID))
	require.Equal(t, model.ChangeAdded, e.Draft().TableByID(created.ID).Status)
}

func TestUndoDeleteRestoresCombo(t *testing.T) {
	d := editor.NewDraft(testFloor(), []*model.Table{
		baselineTable("t1", "T-1", 100, 100),
		baselineTable("t2", "T-2", 500, 100),
	}, nil, []*model.Combo{
		{ID: "c1", Name: "Banquet", TableIDs: []string{"t1", "t2"}, Status: model.ChangeUnchanged},
	})
	e := editor.NewEditor(d)

	// Deleting the table takes the combo down with it, in one action.
	require.NoError(t, e.Delete("t1"))
	require.Equal(t, model.ChangeDeleted, e.Draft().ComboByID("c1").Status)
	require.Equal(t, []string{"t2"}, e.Draft().ComboByID("c1").TableIDs)
	require.Equal(t, 1, e.History().Len())

	require.True(t, e.Undo())
	c := e.Draft().ComboByID("c1")
	require.NotNil(t, c)
	require.Equal(t, model.ChangeUnchanged, c.Status)
	require.Equal(t, []string{"t1", "t2"}, c.TableIDs)
	require.Equal(t, model.ChangeUnchanged, e.Draft().TableByID("t1").Status)

	require.True(t, e.Redo())
	require.Equal(t, model.ChangeDeleted, e.Draft().ComboByID("c1").Status)
	require.Equal(t, model.ChangeDeleted, e.Draft().TableByID("t1").Status)
}

func TestUndoDeleteRestoresSectionAssignments(t *testing.T) {
	tb := baselineTable("t1", "T-1", 20, 20)
	tb.SectionID = "s1"
	d := editor.NewDraft(testFloor(), []*model.Table{tb},
		[]*model.Section{{ID: "s1", Name: "Patio", X: 0, Y: 0, Width: 300, Height: 300,
			Visible: true, Status: model.ChangeUnchanged}}, nil)
	e := editor.NewEditor(d)

	require.NoError(t, e.Delete("s1"))
	require.Equal(t, "", e.Draft().TableByID("t1").SectionID)
	require.Equal(t, model.ChangeModified, e.Draft().TableByID("t1").Status)
	require.Equal(t, 1, e.History().Len())

	require.True(t, e.Undo())
	require.Equal(t, model.ChangeUnchanged, e.Draft().SectionByID("s1").Status)
	require.Equal(t, "s1", e.Draft().TableByID("t1").SectionID)
	require.Equal(t, model.ChangeUnchanged, e.Draft().TableByID("t1").Status)
}

func TestUndoDeleteComboAlone(t *testing.T) {
	d := editor.NewDraft(testFloor(), []*model.Table{
		baselineTable("t1", "T-1", 100, 100),
		baselineTable("t2", "T-2", 500, 100),
	}, nil, []*model.Combo{
		{ID: "c1", Name: "Banquet", TableIDs: []string{"t1", "t2"}, Status: model.ChangeUnchanged},
	})
	e := editor.NewEditor(d)

	require.NoError(t, e.DeleteCombo("c1"))
	require.Equal(t, model.ChangeDeleted, e.Draft().ComboByID("c1").Status)
	require.ErrorIs(t, e.DeleteCombo("c1"), editor.ErrEntityDeleted)

	require.True(t, e.Undo())
	require.Equal(t, model.ChangeUnchanged, e.Draft().ComboByID("c1").Status)
}

func TestHistoryClearedAtomically(t *testing.T) {
	e := newSession(t)
	nudgeN(t, e, 3)
	e.History().Clear()
	require.Equal(t, 0, e.History().Len())
	require.Equal(t, -1, e.History().Cursor())
	require.False(t, e.Undo())
}

func TestActionDescriptionsAggregate(t *testing.T) {
	d := editor.NewDraft(testFloor(), []*model.Table{
		baselineTable("t1", "T-1", 100, 100),
		baselineTable("t2", "T-2", 400, 100),
	}, nil, nil)
	e := editor.NewEditor(d)
	e.SelectOnly("t1")
	e.ToggleSelect("t2")
	require.NoError(t, e.Nudge(1, 0))

	// One aggregated action for the whole selection, not one per table.
	require.Equal(t, 1, e.History().Len())
	actions := e.History().List()
	require.Equal(t, fmt.Sprintf("Nudged %d table(s)", 2), actions[0].Description)
}
