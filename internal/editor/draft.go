package editor

import (
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-floor-plan/internal/geometry"
	"github.com/iliyamo/restaurant-floor-plan/internal/model"
)

// Draft is the mutable working copy of one floor layout.  It is owned
// exclusively by the session editing it; every mutation routes through
// the methods below so change tags stay consistent with the published
// baseline.  Slices keep entity order stable for rendering and JSON.
type Draft struct {
	Floor    model.Floor
	Tables   []*model.Table
	Sections []*model.Section
	Combos   []*model.Combo
}

// NewDraft deep-copies the given entities into a fresh draft.  Version
// snapshots hand their slices straight in; the copy guarantees the
// immutable version is never aliased by live edits.
func NewDraft(floor model.Floor, tables []*model.Table, sections []*model.Section, combos []*model.Combo) *Draft {
	d := &Draft{Floor: floor}
	for _, t := range tables {
		d.Tables = append(d.Tables, t.Clone())
	}
	for _, s := range sections {
		d.Sections = append(d.Sections, s.Clone())
	}
	for _, c := range combos {
		d.Combos = append(d.Combos, c.Clone())
	}
	return d
}

// Clone returns a deep copy of the whole draft.  Used for the pre-edit
// snapshot that backs discard and impact reporting.
func (d *Draft) Clone() *Draft {
	return NewDraft(d.Floor, d.Tables, d.Sections, d.Combos)
}

// EntityKind discriminates the tagged union returned by Locate.
type EntityKind string

const (
	KindTable   EntityKind = "table"
	KindSection EntityKind = "section"
)

// Entity is the discriminated variant for id lookups that may hit
// either a table or a section.  Exactly one of Table/Section is set.
type Entity struct {
	Kind    EntityKind
	Table   *model.Table
	Section *model.Section
}

// Locate finds the entity with the given id across both tables and
// sections.  Ids are unique across the two sets by construction (both
// are UUIDs), so the first hit wins.
func (d *Draft) Locate(id string) (Entity, bool) {
	if t := d.TableByID(id); t != nil {
		return Entity{Kind: KindTable, Table: t}, true
	}
	if s := d.SectionByID(id); s != nil {
		return Entity{Kind: KindSection, Section: s}, true
	}
	return Entity{}, false
}

// TableByID returns the table with the given id, deleted or not, or nil.
func (d *Draft) TableByID(id string) *model.Table {
	for _, t := range d.Tables {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// SectionByID returns the section with the given id, deleted or not, or nil.
func (d *Draft) SectionByID(id string) *model.Section {
	for _, s := range d.Sections {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// ComboByID returns the combo with the given id, or nil.
func (d *Draft) ComboByID(id string) *model.Combo {
	for _, c := range d.Combos {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ActiveTables returns all tables that are not soft-deleted.
func (d *Draft) ActiveTables() []*model.Table {
	out := make([]*model.Table, 0, len(d.Tables))
	for _, t := range d.Tables {
		if t.Status != model.ChangeDeleted {
			out = append(out, t)
		}
	}
	return out
}

// ActiveSections returns all sections that are not soft-deleted, in
// display order.
func (d *Draft) ActiveSections() []*model.Section {
	out := make([]*model.Section, 0, len(d.Sections))
	for _, s := range d.Sections {
		if s.Status != model.ChangeDeleted {
			out = append(out, s)
		}
	}
	return out
}

// Summary counts entities tagged added/modified/deleted across tables,
// sections and combos.  The lifecycle gates publishing on
// Summary().Total(), so every taggable entity kind must be counted here
// or its edits could never be published.
func (d *Draft) Summary() model.ChangesSummary {
	var s model.ChangesSummary
	count := func(st model.ChangeStatus) {
		switch st {
		case model.ChangeAdded:
			s.Added++
		case model.ChangeModified:
			s.Modified++
		case model.ChangeDeleted:
			s.Deleted++
		}
	}
	for _, t := range d.Tables {
		count(t.Status)
	}
	for _, sec := range d.Sections {
		count(sec.Status)
	}
	for _, c := range d.Combos {
		count(c.Status)
	}
	return s
}

// markEdited applies the tagging rule for a non-delete mutation: an
// entity freshly added this draft keeps its added tag, everything else
// becomes modified.  Callers must have rejected deleted entities first.
func markEdited(status model.ChangeStatus) model.ChangeStatus {
	if status == model.ChangeAdded {
		return model.ChangeAdded
	}
	return model.ChangeModified
}

// UpdateTable applies mutate to the table with the given id and re-tags
// it.  Editing a soft-deleted table is refused so a deleted entity can
// never be resurrected through an ordinary edit.
func (d *Draft) UpdateTable(id string, mutate func(*model.Table)) error {
	t := d.TableByID(id)
	if t == nil {
		return ErrEntityNotFound
	}
	if t.Status == model.ChangeDeleted {
		return ErrEntityDeleted
	}
	mutate(t)
	t.Status = markEdited(t.Status)
	return nil
}

// UpdateSection applies mutate to the section with the given id under
// the same tagging rules as UpdateTable.
func (d *Draft) UpdateSection(id string, mutate func(*model.Section)) error {
	s := d.SectionByID(id)
	if s == nil {
		return ErrEntityNotFound
	}
	if s.Status == model.ChangeDeleted {
		return ErrEntityDeleted
	}
	mutate(s)
	s.Status = markEdited(s.Status)
	return nil
}

// AddTable inserts a new table tagged added.
func (d *Draft) AddTable(t *model.Table) {
	t.Status = model.ChangeAdded
	d.Tables = append(d.Tables, t)
}

// AddSection inserts a new section tagged added.
func (d *Draft) AddSection(s *model.Section) {
	s.Status = model.ChangeAdded
	d.Sections = append(d.Sections, s)
}

// NextSectionOrder returns one past the highest display order currently
// on the floor, keeping order values unique.
func (d *Draft) NextSectionOrder() int {
	next := 0
	for _, s := range d.Sections {
		if s.Order >= next {
			next = s.Order + 1
		}
	}
	return next
}

// Delete removes the entity with the given id.  An entity added this
// draft never existed in the published baseline, so it is removed
// outright; anything else is soft-deleted and kept in the model for
// restore and diff views.  Deleting a table also removes it from any
// combos, and deleting a section unassigns its member tables.
func (d *Draft) Delete(id string) error {
	ent, ok := d.Locate(id)
	if !ok {
		return ErrEntityNotFound
	}
	switch ent.Kind {
	case KindTable:
		t := ent.Table
		if t.Status == model.ChangeDeleted {
			return ErrEntityDeleted
		}
		if t.Status == model.ChangeAdded {
			d.removeTable(id)
		} else {
			t.Status = model.ChangeDeleted
		}
		d.dropTableFromCombos(id)
	case KindSection:
		s := ent.Section
		if s.Status == model.ChangeDeleted {
			return ErrEntityDeleted
		}
		if s.Status == model.ChangeAdded {
			d.removeSection(id)
		} else {
			s.Status = model.ChangeDeleted
		}
		// Member tables must not keep referencing a section that will
		// vanish on publish; unassign them, mirroring the auto-assign
		// that happens when a section is drawn over them.
		for _, t := range d.Tables {
			if t.SectionID == id && t.Status != model.ChangeDeleted {
				t.SectionID = ""
				t.Status = markEdited(t.Status)
			}
		}
	}
	return nil
}

// Restore flips a soft-deleted entity back into the draft, tagged
// modified because it now differs from "gone" in the user's intent.
func (d *Draft) Restore(id string) error {
	ent, ok := d.Locate(id)
	if !ok {
		return ErrEntityNotFound
	}
	switch ent.Kind {
	case KindTable:
		if ent.Table.Status != model.ChangeDeleted {
			return nil
		}
		ent.Table.Status = model.ChangeModified
	case KindSection:
		if ent.Section.Status != model.ChangeDeleted {
			return nil
		}
		ent.Section.Status = model.ChangeModified
	}
	return nil
}

func (d *Draft) removeTable(id string) {
	for i, t := range d.Tables {
		if t.ID == id {
			d.Tables = append(d.Tables[:i], d.Tables[i+1:]...)
			return
		}
	}
}

func (d *Draft) removeSection(id string) {
	for i, s := range d.Sections {
		if s.ID == id {
			d.Sections = append(d.Sections[:i], d.Sections[i+1:]...)
			return
		}
	}
}

func (d *Draft) removeCombo(id string) {
	for i, c := range d.Combos {
		if c.ID == id {
			d.Combos = append(d.Combos[:i], d.Combos[i+1:]...)
			return
		}
	}
}

// dropTableFromCombos removes a deleted table from every combo.  A
// combo shrinking below two members dies with it: removed outright when
// it was added this draft, soft-deleted otherwise.  A combo that keeps
// enough members is re-tagged as modified membership.
func (d *Draft) dropTableFromCombos(tableID string) {
	var dead []string
	for _, c := range d.Combos {
		if c.Status == model.ChangeDeleted {
			continue
		}
		for i, tid := range c.TableIDs {
			if tid != tableID {
				continue
			}
			c.TableIDs = append(c.TableIDs[:i], c.TableIDs[i+1:]...)
			if len(c.TableIDs) < 2 {
				if c.Status == model.ChangeAdded {
					dead = append(dead, c.ID)
				} else {
					c.Status = model.ChangeDeleted
				}
			} else {
				c.Status = markEdited(c.Status)
			}
			break
		}
	}
	for _, id := range dead {
		d.removeCombo(id)
	}
}

// ComboCapacity recomputes a combo's total capacity from its member
// tables.  Deleted members contribute nothing.
func (d *Draft) ComboCapacity(c *model.Combo) int {
	total := 0
	for _, id := range c.TableIDs {
		if t := d.TableByID(id); t != nil && t.Status != model.ChangeDeleted {
			total += t.Capacity
		}
	}
	return total
}

// TableRect returns the table's axis-aligned bounding box.
func TableRect(t *model.Table) geometry.Rect {
	return geometry.Rect{X: t.X, Y: t.Y, Width: t.Width, Height: t.Height}
}

// SectionRect returns the section's rectangle.
func SectionRect(s *model.Section) geometry.Rect {
	return geometry.Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// ClearTags resets every surviving entity to unchanged and drops the
// soft-deleted ones.  Called by the lifecycle immediately after a
// version snapshot has been taken.
func (d *Draft) ClearTags() {
	tables := d.Tables[:0]
	for _, t := range d.Tables {
		if t.Status == model.ChangeDeleted {
			continue
		}
		t.Status = model.ChangeUnchanged
		tables = append(tables, t)
	}
	d.Tables = tables

	sections := d.Sections[:0]
	for _, s := range d.Sections {
		if s.Status == model.ChangeDeleted {
			continue
		}
		s.Status = model.ChangeUnchanged
		sections = append(sections, s)
	}
	d.Sections = sections

	combos := d.Combos[:0]
	for _, c := range d.Combos {
		if c.Status == model.ChangeDeleted {
			continue
		}
		c.Status = model.ChangeUnchanged
		combos = append(combos, c)
	}
	d.Combos = combos
}

// SavedDraft is the serialized blob handed to the persistence gateway.
// It carries everything needed to resume editing after a crash plus the
// summary shown in the recovery prompt.
type SavedDraft struct {
	Floor    model.Floor          `json:"floor"`
	Tables   []*model.Table       `json:"tables"`
	Sections []*model.Section     `json:"sections"`
	Combos   []*model.Combo       `json:"combos,omitempty"`
	Summary  model.ChangesSummary `json:"summary"`
	SavedAt  time.Time            `json:"saved_at"`
}

// Blob captures the draft into a SavedDraft, deep-copied so the blob
// does not alias the live model while it is being serialized.
func (d *Draft) Blob(now time.Time) SavedDraft {
	cp := d.Clone()
	return SavedDraft{
		Floor:    cp.Floor,
		Tables:   cp.Tables,
		Sections: cp.Sections,
		Combos:   cp.Combos,
		Summary:  d.Summary(),
		SavedAt:  now,
	}
}

// FromBlob reconstructs a draft from a saved blob.
func FromBlob(b SavedDraft) *Draft {
	return NewDraft(b.Floor, b.Tables, b.Sections, b.Combos)
}

// nextTableName produces the first free "T-n" display name.  Used when
// placing tables in add-entity mode.
func (d *Draft) nextTableName() string {
	taken := map[string]bool{}
	for _, t := range d.Tables {
		taken[strings.ToLower(t.Name)] = true
	}
	for n := 1; ; n++ {
		name := "T-" + strconv.Itoa(n)
		if !taken[strings.ToLower(name)] {
			return name
		}
	}
}
