package editor

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-floor-plan/internal/model"
)

// HistoryCap bounds how many actions the log retains.  Once exceeded,
// the oldest actions drop silently.
const HistoryCap = 100

// Snapshot is one side of an entity diff: a deep copy of a table,
// section or combo, or empty when the entity did not exist on that side
// (an add has an empty before, a hard delete an empty after).
type Snapshot struct {
	Table   *model.Table   `json:"table,omitempty"`
	Section *model.Section `json:"section,omitempty"`
	Combo   *model.Combo   `json:"combo,omitempty"`
}

// Empty reports whether the snapshot captures "entity absent".
func (s Snapshot) Empty() bool { return s.Table == nil && s.Section == nil && s.Combo == nil }

// Diff records the before/after state of one entity inside an action.
// Snapshots are value copies taken at commit time, never references to
// the live model, so committed actions cannot alias later edits.
type Diff struct {
	ID     string   `json:"id"`
	Before Snapshot `json:"before"`
	After  Snapshot `json:"after"`
}

// Action is one committed, invertible edit.  A gesture produces exactly
// one action covering every entity it touched; undo applies the Before
// snapshots, redo the After snapshots.
type Action struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
	Diffs       []Diff    `json:"-"`
}

// newAction builds an action with a fresh id and timestamp.
func newAction(typ, description string, diffs []Diff) Action {
	return Action{
		ID:          uuid.NewString(),
		Type:        typ,
		Description: description,
		At:          time.Now().UTC(),
		Diffs:       diffs,
	}
}

// snapTable captures a table state, or an empty snapshot for nil.
func snapTable(t *model.Table) Snapshot {
	if t == nil {
		return Snapshot{}
	}
	return Snapshot{Table: t.Clone()}
}

// snapSection captures a section state, or an empty snapshot for nil.
func snapSection(s *model.Section) Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return Snapshot{Section: s.Clone()}
}

// snapCombo captures a combo state, or an empty snapshot for nil.
func snapCombo(c *model.Combo) Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{Combo: c.Clone()}
}

// apply writes one side of every diff back into the draft: an empty
// snapshot removes the entity, a populated one inserts or replaces it.
func (a Action) apply(d *Draft, forward bool) {
	for _, diff := range a.Diffs {
		snap := diff.Before
		if forward {
			snap = diff.After
		}
		applySnapshot(d, diff.ID, snap)
	}
}

func applySnapshot(d *Draft, id string, s Snapshot) {
	switch {
	case s.Table != nil:
		cp := s.Table.Clone()
		if existing := d.TableByID(id); existing != nil {
			*existing = *cp
		} else {
			d.Tables = append(d.Tables, cp)
		}
	case s.Section != nil:
		cp := s.Section.Clone()
		if existing := d.SectionByID(id); existing != nil {
			*existing = *cp
		} else {
			d.Sections = append(d.Sections, cp)
		}
	case s.Combo != nil:
		cp := s.Combo.Clone()
		if existing := d.ComboByID(id); existing != nil {
			*existing = *cp
		} else {
			d.Combos = append(d.Combos, cp)
		}
	default:
		// Absent on this side: remove whichever collection holds it.
		d.removeTable(id)
		d.removeSection(id)
		d.removeCombo(id)
	}
}

// History is the linear command log with a cursor at the last applied
// action (-1 when empty).  Recording after an undo discards the redo
// tail; the log never branches.
type History struct {
	actions []Action
	cursor  int
	cap     int
}

// NewHistory returns an empty log with the default retention cap.
func NewHistory() *History {
	return &History{cursor: -1, cap: HistoryCap}
}

// Record appends an already-applied action: it truncates everything
// after the cursor, appends, advances and enforces the cap by dropping
// the oldest entries.
func (h *History) Record(a Action) {
	h.actions = append(h.actions[:h.cursor+1], a)
	h.cursor = len(h.actions) - 1
	if len(h.actions) > h.cap {
		drop := len(h.actions) - h.cap
		h.actions = append([]Action(nil), h.actions[drop:]...)
		h.cursor -= drop
	}
}

// Undo inverts the action at the cursor and steps back.  It reports
// whether anything was undone.
func (h *History) Undo(d *Draft) bool {
	if h.cursor < 0 {
		return false
	}
	h.actions[h.cursor].apply(d, false)
	h.cursor--
	return true
}

// Redo re-applies the action after the cursor.  It reports whether
// anything was redone.
func (h *History) Redo(d *Draft) bool {
	if h.cursor >= len(h.actions)-1 {
		return false
	}
	h.cursor++
	h.actions[h.cursor].apply(d, true)
	return true
}

// UndoTo replays Undo until the cursor reaches target (so the action at
// target is the last one still applied; -1 undoes everything).  Returns
// the number of actions undone.
func (h *History) UndoTo(d *Draft, target int) int {
	n := 0
	for h.cursor > target {
		if !h.Undo(d) {
			break
		}
		n++
	}
	return n
}

// Clear drops the whole log atomically.  No action survives a lifecycle
// transition.
func (h *History) Clear() {
	h.actions = nil
	h.cursor = -1
}

// Len returns how many actions the log retains.
func (h *History) Len() int { return len(h.actions) }

// Cursor returns the index of the last applied action (-1 when none).
func (h *History) Cursor() int { return h.cursor }

// CanUndo reports whether an undo would do anything.
func (h *History) CanUndo() bool { return h.cursor >= 0 }

// CanRedo reports whether a redo would do anything.
func (h *History) CanRedo() bool { return h.cursor < len(h.actions)-1 }

// List returns the retained actions, oldest first, for the history
// panel.  Diffs are not serialized; only the descriptive fields travel.
func (h *History) List() []Action {
	return append([]Action(nil), h.actions...)
}
