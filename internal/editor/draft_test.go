package editor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-floor-plan/internal/editor"
	"github.com/iliyamo/restaurant-floor-plan/internal/model"
)

func testFloor() model.Floor {
	return model.Floor{ID: 1, OwnerID: 1, Name: "Main Dining", Width: 1200, Height: 800}
}

func baselineTable(id, name string, x, y float64) *model.Table {
	return &model.Table{
		ID: id, Name: name, Capacity: 4, Shape: model.ShapeRectangle,
		X: x, Y: y, Width: 140, Height: 90,
		Status: model.ChangeUnchanged,
	}
}

func TestChangeTagging(t *testing.T) {
	d := editor.NewDraft(testFloor(), []*model.Table{baselineTable("t1", "T-1", 0, 0)}, nil, nil)

	// Editing a published entity tags it modified.
	require.NoError(t, d.UpdateTable("t1", func(tb *model.Table) { tb.Capacity = 6 }))
	require.Equal(t, model.ChangeModified, d.TableByID("t1").Status)

	// A freshly added entity keeps its added tag through edits.
	d.AddTable(baselineTable("t2", "T-2", 400, 0))
	require.Equal(t, model.ChangeAdded, d.TableByID("t2").Status)
	require.NoError(t, d.UpdateTable("t2", func(tb *model.Table) { tb.Name = "T-2b" }))
	require.Equal(t, model.ChangeAdded, d.TableByID("t2").Status)

	summary := d.Summary()
	require.Equal(t, 1, summary.Added)
	require.Equal(t, 1, summary.Modified)
	require.Equal(t, 0, summary.Deleted)
}

func TestDeleteSemantics(t *testing.T) {
	d := editor.NewDraft(testFloor(), []*model.Table{baselineTable("t1", "T-1", 0, 0)}, nil, nil)
	d.AddTable(baselineTable("t2", "T-2", 400, 0))

	// Deleting a baseline entity soft-deletes it.
	require.NoError(t, d.Delete("t1"))
	require.NotNil(t, d.TableByID("t1"))
	require.Equal(t, model.ChangeDeleted, d.TableByID("t1").Status)
	require.Len(t, d.ActiveTables(), 1)

	// A deleted entity cannot be edited back to life.
	err := d.UpdateTable("t1", func(tb *model.Table) { tb.Capacity = 10 })
	require.ErrorIs(t, err, editor.ErrEntityDeleted)

	// Restore flips it to modified.
	require.NoError(t, d.Restore("t1"))
	require.Equal(t, model.ChangeModified, d.TableByID("t1").Status)

	// Deleting an added entity removes it outright.
	require.NoError(t, d.Delete("t2"))
	require.Nil(t, d.TableByID("t2"))
	require.Equal(t, 0, d.Summary().Added)
}

func TestDeleteTablePrunesCombos(t *testing.T) {
	d := editor.NewDraft(testFloor(), []*model.Table{
		baselineTable("t1", "T-1", 0, 0),
		baselineTable("t2", "T-2", 300, 0),
	}, nil, []*model.Combo{
		{ID: "c1", Name: "Banquet", TableIDs: []string{"t1", "t2"}, Status: model.ChangeUnchanged},
	})

	require.Equal(t, 8, d.ComboCapacity(d.ComboByID("c1")))
	require.NoError(t, d.Delete("t2"))
	// The published combo shrank below two members: soft-deleted, so the
	// ungrouping still counts as a publishable change.
	require.Equal(t, model.ChangeDeleted, d.ComboByID("c1").Status)
	require.Equal(t, 2, d.Summary().Deleted) // table + combo

	// After publish clears tags, the dead combo is gone for good.
	d.ClearTags()
	require.Nil(t, d.ComboByID("c1"))
}

func TestDeleteSectionUnassignsTables(t *testing.T) {
	tb := baselineTable("t1", "T-1", 20, 20)
	tb.SectionID = "s1"
	d := editor.NewDraft(testFloor(), []*model.Table{tb},
		[]*model.Section{{ID: "s1", Name: "Patio", X: 0, Y: 0, Width: 300, Height: 300,
			Visible: true, Status: model.ChangeUnchanged}}, nil)

	require.NoError(t, d.Delete("s1"))
	require.Equal(t, model.ChangeDeleted, d.SectionByID("s1").Status)
	require.Equal(t, "", d.TableByID("t1").SectionID)
	require.Equal(t, model.ChangeModified, d.TableByID("t1").Status)

	// No table survives publish pointing at a section that does not.
	d.ClearTags()
	require.Nil(t, d.SectionByID("s1"))
	require.Equal(t, "", d.TableByID("t1").SectionID)
}

func TestLocateVariant(t *testing.T) {
	d := editor.NewDraft(testFloor(),
		[]*model.Table{baselineTable("t1", "T-1", 0, 0)},
		[]*model.Section{{ID: "s1", Name: "Terrace", X: 0, Y: 0, Width: 300, Height: 300, Visible: true}},
		nil)

	ent, ok := d.Locate("t1")
	require.True(t, ok)
	require.Equal(t, editor.KindTable, ent.Kind)
	require.NotNil(t, ent.Table)

	ent, ok = d.Locate("s1")
	require.True(t, ok)
	require.Equal(t, editor.KindSection, ent.Kind)
	require.NotNil(t, ent.Section)

	_, ok = d.Locate("missing")
	require.False(t, ok)
}

func TestClearTagsDropsDeleted(t *testing.T) {
	d := editor.NewDraft(testFloor(), []*model.Table{
		baselineTable("t1", "T-1", 0, 0),
		baselineTable("t2", "T-2", 300, 0),
	}, nil, nil)
	require.NoError(t, d.UpdateTable("t1", func(tb *model.Table) { tb.Capacity = 8 }))
	require.NoError(t, d.Delete("t2"))

	d.ClearTags()
	require.Nil(t, d.TableByID("t2"))
	require.Equal(t, model.ChangeUnchanged, d.TableByID("t1").Status)
	require.Equal(t, 0, d.Summary().Total())
}

func TestCloneDoesNotAlias(t *testing.T) {
	d := editor.NewDraft(testFloor(), []*model.Table{baselineTable("t1", "T-1", 0, 0)}, nil, nil)
	cp := d.Clone()
	require.NoError(t, d.UpdateTable("t1", func(tb *model.Table) { tb.X = 500 }))
	require.Equal(t, 0.0, cp.TableByID("t1").X)
	require.Equal(t, model.ChangeUnchanged, cp.TableByID("t1").Status)
}
