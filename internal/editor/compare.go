package editor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/restaurant-floor-plan/internal/model"
)

// DiffEntry describes one entity difference between two layouts.
// Entities present only in the newer layout are added, present only in
// the older one are deleted, and present in both with differing fields
// are modified with a human-readable change description.
type DiffEntry struct {
	ID          string             `json:"id"`
	Kind        EntityKind         `json:"kind"`
	Name        string             `json:"name"`
	Change      model.ChangeStatus `json:"change"`
	Description string             `json:"description,omitempty"`
}

// CompareVersions diffs two immutable versions, oldest first.  It is a
// read-only projection used for both the side-by-side spatial render
// and the flat list view; it never touches lifecycle state.
func CompareVersions(a, b *model.Version) []DiffEntry {
	da := &Draft{Tables: a.Tables, Sections: a.Sections}
	db := &Draft{Tables: b.Tables, Sections: b.Sections}
	return CompareContent(da, db)
}

// CompareContent diffs two layouts (old, new) entity by entity.
func CompareContent(old, cur *Draft) []DiffEntry {
	var entries []DiffEntry

	oldTables := map[string]*model.Table{}
	for _, t := range old.ActiveTables() {
		oldTables[t.ID] = t
	}
	for _, t := range cur.ActiveTables() {
		prev, ok := oldTables[t.ID]
		if !ok {
			entries = append(entries, DiffEntry{ID: t.ID, Kind: KindTable, Name: t.Name, Change: model.ChangeAdded})
			continue
		}
		delete(oldTables, t.ID)
		if desc := describeTableChange(prev, t); desc != "" {
			entries = append(entries, DiffEntry{ID: t.ID, Kind: KindTable, Name: t.Name, Change: model.ChangeModified, Description: desc})
		}
	}
	for _, t := range oldTables {
		entries = append(entries, DiffEntry{ID: t.ID, Kind: KindTable, Name: t.Name, Change: model.ChangeDeleted})
	}

	oldSections := map[string]*model.Section{}
	for _, s := range old.ActiveSections() {
		oldSections[s.ID] = s
	}
	for _, s := range cur.ActiveSections() {
		prev, ok := oldSections[s.ID]
		if !ok {
			entries = append(entries, DiffEntry{ID: s.ID, Kind: KindSection, Name: s.Name, Change: model.ChangeAdded})
			continue
		}
		delete(oldSections, s.ID)
		if desc := describeSectionChange(prev, s); desc != "" {
			entries = append(entries, DiffEntry{ID: s.ID, Kind: KindSection, Name: s.Name, Change: model.ChangeModified, Description: desc})
		}
	}
	for _, s := range oldSections {
		entries = append(entries, DiffEntry{ID: s.ID, Kind: KindSection, Name: s.Name, Change: model.ChangeDeleted})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind < entries[j].Kind
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

func describeTableChange(a, b *model.Table) string {
	var parts []string
	if a.Name != b.Name {
		parts = append(parts, fmt.Sprintf("renamed %q to %q", a.Name, b.Name))
	}
	if a.Capacity != b.Capacity {
		parts = append(parts, fmt.Sprintf("capacity %d to %d", a.Capacity, b.Capacity))
	}
	if a.Shape != b.Shape {
		parts = append(parts, fmt.Sprintf("shape %s to %s", a.Shape, b.Shape))
	}
	if a.X != b.X || a.Y != b.Y {
		parts = append(parts, fmt.Sprintf("moved (%g,%g) to (%g,%g)", a.X, a.Y, b.X, b.Y))
	}
	if a.Width != b.Width || a.Height != b.Height {
		parts = append(parts, fmt.Sprintf("resized %gx%g to %gx%g", a.Width, a.Height, b.Width, b.Height))
	}
	if a.Rotation != b.Rotation {
		parts = append(parts, fmt.Sprintf("rotated %g° to %g°", a.Rotation, b.Rotation))
	}
	if a.SectionID != b.SectionID {
		parts = append(parts, "section assignment changed")
	}
	return strings.Join(parts, "; ")
}

func describeSectionChange(a, b *model.Section) string {
	var parts []string
	if a.Name != b.Name {
		parts = append(parts, fmt.Sprintf("renamed %q to %q", a.Name, b.Name))
	}
	if a.X != b.X || a.Y != b.Y || a.Width != b.Width || a.Height != b.Height {
		parts = append(parts, "zone rectangle changed")
	}
	if a.Color != b.Color {
		parts = append(parts, "color changed")
	}
	if a.Visible != b.Visible {
		parts = append(parts, fmt.Sprintf("visibility %t to %t", a.Visible, b.Visible))
	}
	if a.DefaultStaffID != b.DefaultStaffID {
		parts = append(parts, "default staff changed")
	}
	if a.Order != b.Order {
		parts = append(parts, fmt.Sprintf("order %d to %d", a.Order, b.Order))
	}
	return strings.Join(parts, "; ")
}

// diffSummary folds a diff list into added/modified/deleted counts.
func diffSummary(entries []DiffEntry) model.ChangesSummary {
	var s model.ChangesSummary
	for _, e := range entries {
		switch e.Change {
		case model.ChangeAdded:
			s.Added++
		case model.ChangeModified:
			s.Modified++
		case model.ChangeDeleted:
			s.Deleted++
		}
	}
	return s
}
