package editor

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-floor-plan/internal/geometry"
	"github.com/iliyamo/restaurant-floor-plan/internal/model"
)

// ops.go holds the structured (non-gesture) edits the dashboard invokes
// from panels and context menus.  Every operation here behaves like a
// committed gesture: it validates, mutates through the draft, and
// records exactly one action.

// TablePatch is a partial update to a table's non-spatial fields.  Nil
// pointers leave the field untouched.
type TablePatch struct {
	Name      *string           `json:"name,omitempty"`
	Capacity  *int              `json:"capacity,omitempty"`
	Shape     *model.TableShape `json:"shape,omitempty"`
	SectionID *string           `json:"section_id,omitempty"`
	Tags      *[]string         `json:"tags,omitempty"`
}

// SectionPatch is a partial update to a section.
type SectionPatch struct {
	Name           *string  `json:"name,omitempty"`
	Color          *string  `json:"color,omitempty"`
	Visible        *bool    `json:"visible,omitempty"`
	DefaultStaffID *uint64  `json:"default_staff_id,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Order          *int     `json:"order,omitempty"`
}

// CreateTable places a table explicitly (panel "add table" as opposed
// to the add-entity click tool).  Dimensions clamp to the minimums and
// circles are forced square.
func (e *Editor) CreateTable(name string, capacity int, shape model.TableShape, rect geometry.Rect) (*model.Table, error) {
	if e.locked {
		return nil, ErrDraftLocked
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidGeometry)
	}
	rect.Width = math.Max(rect.Width, model.MinTableWidth)
	rect.Height = math.Max(rect.Height, model.MinTableHeight)
	if shape == model.ShapeCircle || shape == model.ShapeSquare {
		side := math.Max(rect.Width, rect.Height)
		rect.Width, rect.Height = side, side
	}
	if strings.TrimSpace(name) == "" {
		name = e.draft.nextTableName()
	}
	t := &model.Table{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Capacity: capacity,
		Shape:    shape,
		X:        geometry.SnapToGrid(rect.X, e.grid),
		Y:        geometry.SnapToGrid(rect.Y, e.grid),
		Width:    rect.Width,
		Height:   rect.Height,
	}
	e.draft.AddTable(t)
	e.history.Record(newAction("add-table",
		fmt.Sprintf("Added table %q", t.Name),
		[]Diff{{ID: t.ID, Before: Snapshot{}, After: snapTable(t)}}))
	return t, nil
}

// UpdateTable applies a patch to one table and records the action.
func (e *Editor) UpdateTable(id string, patch TablePatch) error {
	if e.locked {
		return ErrDraftLocked
	}
	t := e.draft.TableByID(id)
	if t == nil {
		return ErrEntityNotFound
	}
	before := snapTable(t)
	err := e.draft.UpdateTable(id, func(t *model.Table) {
		if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
			t.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Capacity != nil && *patch.Capacity > 0 {
			t.Capacity = *patch.Capacity
		}
		if patch.Shape != nil {
			t.Shape = *patch.Shape
			if t.Shape == model.ShapeCircle || t.Shape == model.ShapeSquare {
				side := math.Max(t.Width, t.Height)
				t.Width, t.Height = side, side
			}
		}
		if patch.SectionID != nil {
			t.SectionID = *patch.SectionID
		}
		if patch.Tags != nil {
			t.Tags = append([]string(nil), (*patch.Tags)...)
		}
	})
	if err != nil {
		return err
	}
	e.history.Record(newAction("update-table",
		fmt.Sprintf("Updated table %q", t.Name),
		[]Diff{{ID: id, Before: before, After: snapTable(t)}}))
	return nil
}

// UpdateSection applies a patch to one section and records the action.
func (e *Editor) UpdateSection(id string, patch SectionPatch) error {
	if e.locked {
		return ErrDraftLocked
	}
	s := e.draft.SectionByID(id)
	if s == nil {
		return ErrEntityNotFound
	}
	before := snapSection(s)
	err := e.draft.UpdateSection(id, func(s *model.Section) {
		if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
			s.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Color != nil {
			s.Color = *patch.Color
		}
		if patch.Visible != nil {
			s.Visible = *patch.Visible
		}
		if patch.DefaultStaffID != nil {
			s.DefaultStaffID = *patch.DefaultStaffID
		}
		if patch.Description != nil {
			s.Description = *patch.Description
		}
		if patch.Order != nil {
			s.Order = *patch.Order
		}
	})
	if err != nil {
		return err
	}
	e.history.Record(newAction("update-section",
		fmt.Sprintf("Updated section %q", s.Name),
		[]Diff{{ID: id, Before: before, After: snapSection(s)}}))
	return nil
}

// Delete removes a table or section by id, recording the soft-delete
// (or outright removal of a draft-added entity) as one action.  The
// action also captures every side effect — combos shrinking when a
// member table goes, tables losing their assignment when a section
// goes — so undo restores the whole state, not just the entity.
func (e *Editor) Delete(id string) error {
	if e.locked {
		return ErrDraftLocked
	}
	ent, ok := e.draft.Locate(id)
	if !ok {
		return ErrEntityNotFound
	}
	var diffs []Diff
	var touched []string // entity ids whose After side is filled post-delete
	var name string
	switch ent.Kind {
	case KindTable:
		name = ent.Table.Name
		diffs = append(diffs, Diff{ID: id, Before: snapTable(ent.Table)})
		touched = append(touched, id)
		for _, c := range e.draft.Combos {
			if c.Status == model.ChangeDeleted {
				continue
			}
			for _, tid := range c.TableIDs {
				if tid == id {
					diffs = append(diffs, Diff{ID: c.ID, Before: snapCombo(c)})
					touched = append(touched, c.ID)
					break
				}
			}
		}
	case KindSection:
		name = ent.Section.Name
		diffs = append(diffs, Diff{ID: id, Before: snapSection(ent.Section)})
		touched = append(touched, id)
		for _, t := range e.draft.Tables {
			if t.SectionID == id && t.Status != model.ChangeDeleted {
				diffs = append(diffs, Diff{ID: t.ID, Before: snapTable(t)})
				touched = append(touched, t.ID)
			}
		}
	}
	if err := e.draft.Delete(id); err != nil {
		return err
	}
	for i, tid := range touched {
		switch {
		case e.draft.TableByID(tid) != nil:
			diffs[i].After = snapTable(e.draft.TableByID(tid))
		case e.draft.SectionByID(tid) != nil:
			diffs[i].After = snapSection(e.draft.SectionByID(tid))
		case e.draft.ComboByID(tid) != nil:
			diffs[i].After = snapCombo(e.draft.ComboByID(tid))
		}
		// Entities removed outright keep an empty After snapshot.
	}
	delete(e.selection, id)
	e.history.Record(newAction("delete",
		fmt.Sprintf("Deleted %s %q", ent.Kind, name), diffs))
	return nil
}

// RestoreEntity brings a soft-deleted entity back, tagged modified.
func (e *Editor) RestoreEntity(id string) error {
	if e.locked {
		return ErrDraftLocked
	}
	ent, ok := e.draft.Locate(id)
	if !ok {
		return ErrEntityNotFound
	}
	var before Snapshot
	var name string
	switch ent.Kind {
	case KindTable:
		before = snapTable(ent.Table)
		name = ent.Table.Name
	case KindSection:
		before = snapSection(ent.Section)
		name = ent.Section.Name
	}
	if err := e.draft.Restore(id); err != nil {
		return err
	}
	var after Snapshot
	switch ent.Kind {
	case KindTable:
		after = snapTable(ent.Table)
	case KindSection:
		after = snapSection(ent.Section)
	}
	e.history.Record(newAction("restore",
		fmt.Sprintf("Restored %s %q", ent.Kind, name),
		[]Diff{{ID: id, Before: before, After: after}}))
	return nil
}

// CreateCombo groups two or more active tables into a bookable unit.
func (e *Editor) CreateCombo(name string, tableIDs []string) (*model.Combo, error) {
	if e.locked {
		return nil, ErrDraftLocked
	}
	if len(tableIDs) < 2 {
		return nil, ErrInsufficientSelection
	}
	seen := map[string]bool{}
	for _, id := range tableIDs {
		t := e.draft.TableByID(id)
		if t == nil || t.Status == model.ChangeDeleted {
			return nil, ErrEntityNotFound
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate table in combo", ErrInvalidGeometry)
		}
		seen[id] = true
	}
	c := &model.Combo{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		TableIDs: append([]string(nil), tableIDs...),
		Status:   model.ChangeAdded,
	}
	if c.Name == "" {
		c.Name = fmt.Sprintf("Combo %d", len(e.draft.Combos)+1)
	}
	e.draft.Combos = append(e.draft.Combos, c)
	e.history.Record(newAction("create-combo",
		fmt.Sprintf("Combined %d tables into %q", len(tableIDs), c.Name),
		[]Diff{{ID: c.ID, Before: Snapshot{}, After: snapCombo(c)}}))
	return c, nil
}

// DeleteCombo ungroups a combo.  Member tables are untouched.  A combo
// added this draft is removed outright; a published one is soft-deleted
// so the ungrouping counts as a publishable change.
func (e *Editor) DeleteCombo(id string) error {
	if e.locked {
		return ErrDraftLocked
	}
	c := e.draft.ComboByID(id)
	if c == nil {
		return ErrEntityNotFound
	}
	if c.Status == model.ChangeDeleted {
		return ErrEntityDeleted
	}
	before := snapCombo(c)
	if c.Status == model.ChangeAdded {
		e.draft.removeCombo(id)
	} else {
		c.Status = model.ChangeDeleted
	}
	e.history.Record(newAction("delete-combo",
		fmt.Sprintf("Removed combo %q", c.Name),
		[]Diff{{ID: id, Before: before, After: snapCombo(e.draft.ComboByID(id))}}))
	return nil
}

// Align lines the selection up on the given edge, as one action.
func (e *Editor) Align(edge geometry.AlignEdge) error {
	return e.arrange("align", fmt.Sprintf("Aligned %%d table(s) %s", edge),
		func(items []geometry.Item) ([]geometry.Placement, error) {
			return geometry.Align(items, edge)
		})
}

// Distribute spaces the selection evenly along the given axis, as one
// action.  Fewer than three selected tables is ErrInsufficientSelection.
func (e *Editor) Distribute(axis geometry.Axis) error {
	direction := "horizontally"
	if axis == geometry.Vertical {
		direction = "vertically"
	}
	return e.arrange("distribute", "Distributed %d table(s) "+direction,
		func(items []geometry.Item) ([]geometry.Placement, error) {
			return geometry.Distribute(items, axis)
		})
}

func (e *Editor) arrange(typ, descFmt string, compute func([]geometry.Item) ([]geometry.Placement, error)) error {
	if e.locked {
		return ErrDraftLocked
	}
	var items []geometry.Item
	for _, id := range e.SelectedIDs() {
		if t := e.draft.TableByID(id); t != nil && t.Status != model.ChangeDeleted {
			items = append(items, geometry.Item{ID: id, Rect: TableRect(t)})
		}
	}
	placements, err := compute(items)
	if err != nil {
		return err
	}
	var diffs []Diff
	for _, p := range placements {
		t := e.draft.TableByID(p.ID)
		if t == nil || (t.X == p.X && t.Y == p.Y) {
			continue
		}
		before := snapTable(t)
		t.X, t.Y = p.X, p.Y
		t.Status = markEdited(t.Status)
		diffs = append(diffs, Diff{ID: p.ID, Before: before, After: snapTable(t)})
	}
	if len(diffs) == 0 {
		return nil
	}
	e.history.Record(newAction(typ, fmt.Sprintf(descFmt, len(diffs)), diffs))
	return nil
}

// Validate runs the validation engine over the draft.
func (e *Editor) Validate() Result { return Validate(e.draft) }

// AutoFixOverlap resolves one overlap issue by shifting the second
// table right of the first by its width plus OverlapPadding, then
// returns the re-run validation result.
func (e *Editor) AutoFixOverlap(firstID, secondID string) (Result, error) {
	if e.locked {
		return Result{}, ErrDraftLocked
	}
	first := e.draft.TableByID(firstID)
	second := e.draft.TableByID(secondID)
	if first == nil || second == nil {
		return Result{}, ErrEntityNotFound
	}
	before := snapTable(second)
	err := e.draft.UpdateTable(secondID, func(t *model.Table) {
		t.X = first.X + first.Width + OverlapPadding
	})
	if err != nil {
		return Result{}, err
	}
	e.history.Record(newAction("auto-fix",
		fmt.Sprintf("Moved %q clear of %q", second.Name, first.Name),
		[]Diff{{ID: secondID, Before: before, After: snapTable(second)}}))
	return e.Validate(), nil
}

// Undo rolls back the last committed action.
func (e *Editor) Undo() bool {
	if e.locked {
		return false
	}
	e.abortGesture()
	return e.history.Undo(e.draft)
}

// Redo re-applies the next undone action.
func (e *Editor) Redo() bool {
	if e.locked {
		return false
	}
	e.abortGesture()
	return e.history.Redo(e.draft)
}

// UndoTo rolls the draft back so the action at index target is the last
// one applied.  Returns the number of actions undone.
func (e *Editor) UndoTo(target int) int {
	if e.locked {
		return 0
	}
	e.abortGesture()
	return e.history.UndoTo(e.draft, target)
}
