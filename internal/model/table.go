package model

// ChangeStatus tags an entity with its edit state relative to the last
// published version of its floor.  Tags are maintained by the editor's
// draft layer and cleared back to unchanged when a version is published.
type ChangeStatus string

const (
	ChangeUnchanged ChangeStatus = "unchanged" // identical to the published baseline
	ChangeAdded     ChangeStatus = "added"     // created in the current draft
	ChangeModified  ChangeStatus = "modified"  // edited in the current draft
	ChangeDeleted   ChangeStatus = "deleted"   // soft-deleted; dropped on publish
)

// TableShape enumerates the supported table footprints.  Circle tables
// keep Width == Height at all times; the editor enforces this on resize.
type TableShape string

const (
	ShapeRectangle TableShape = "rectangle"
	ShapeCircle    TableShape = "circle"
	ShapeSquare    TableShape = "square"
)

// Minimum table dimensions in layout units.  Resize gestures clamp to
// these values so a table can never collapse below a usable footprint.
const (
	MinTableWidth  float64 = 40
	MinTableHeight float64 = 40
)

// Table is a single dining table placed on a floor.  Coordinates are
// floor-local with the origin at the top-left corner; rotation is in
// degrees, normalized to [0,360).
//
// Fields:
//  ID        – identifier, unique across tables and sections of a floor.
//  Name      – display name shown on the floor plan (e.g. "T-12").
//  Capacity  – number of seats; always positive.
//  Shape     – rectangle, circle or square.
//  X, Y      – top-left corner of the bounding box.
//  Width     – bounding-box width (≥ MinTableWidth).
//  Height    – bounding-box height (≥ MinTableHeight).
//  Rotation  – clockwise rotation in degrees, [0,360).
//  SectionID – section this table belongs to ("" when unassigned).
//  Tags      – optional free-form labels (window, booth, ...).
//  Status    – change tag relative to the published baseline.
type Table struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Capacity  int          `json:"capacity"`
	Shape     TableShape   `json:"shape"`
	X         float64      `json:"x"`
	Y         float64      `json:"y"`
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
	Rotation  float64      `json:"rotation"`
	SectionID string       `json:"section_id,omitempty"`
	Tags      []string     `json:"tags,omitempty"`
	Status    ChangeStatus `json:"change_status"`
}

// Clone returns a deep copy of the table.  Action snapshots and version
// snapshots must never alias the live draft, so every capture goes
// through Clone.
func (t *Table) Clone() *Table {
	cp := *t
	if t.Tags != nil {
		cp.Tags = append([]string(nil), t.Tags...)
	}
	return &cp
}
