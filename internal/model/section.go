package model

// MinSectionSize is the smallest width and height a drawn section
// rectangle may have.  Smaller draw gestures are rejected before any
// entity is created.
const MinSectionSize float64 = 50

// Section is a named rectangular zone on a floor (e.g. "Terrace",
// "Smoking").  Tables fully contained in a section's rectangle at draw
// time are auto-assigned to it.
//
// Fields:
//  ID             – identifier, unique across tables and sections of a floor.
//  Name           – display name of the zone.
//  X, Y           – top-left corner of the zone rectangle.
//  Width, Height  – zone dimensions (≥ MinSectionSize each when created).
//  Color          – render color as a hex string (e.g. "#7c9f5a").
//  Visible        – whether the zone is drawn on the plan.
//  DefaultStaffID – user ID of the server assigned by default (0 = none).
//  Description    – optional free text.
//  Order          – display order; unique per floor for a stable sort.
//  Status         – change tag relative to the published baseline.
type Section struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	X              float64      `json:"x"`
	Y              float64      `json:"y"`
	Width          float64      `json:"width"`
	Height         float64      `json:"height"`
	Color          string       `json:"color"`
	Visible        bool         `json:"visible"`
	DefaultStaffID uint64       `json:"default_staff_id,omitempty"`
	Description    string       `json:"description,omitempty"`
	Order          int          `json:"order"`
	Status         ChangeStatus `json:"change_status"`
}

// Clone returns a deep copy of the section.
func (s *Section) Clone() *Section {
	cp := *s
	return &cp
}
