package model

import "time"

// Floor represents one dining floor of a restaurant.  A floor owns a set
// of tables and sections laid out in floor-local coordinates, and carries
// the dimensions that every placement is validated against.  This struct
// corresponds to a row in the `floors` table.
//
// Fields:
//  ID             – primary key identifier.
//  OwnerID        – user ID of the restaurant owner.
//  Name           – unique floor name per owner (e.g. "Main Dining", "Patio").
//  Width          – usable width of the floor in layout units (> 0).
//  Height         – usable height of the floor in layout units (> 0).
//  CurrentVersion – number of the latest published version (0 = never published).
//  CreatedAt      – timestamp when the floor was created.
//  UpdatedAt      – timestamp of last update.
type Floor struct {
	ID             uint64    // floors.id
	OwnerID        uint64    // floors.owner_id
	Name           string    // floors.name
	Width          float64   // floors.width
	Height         float64   // floors.height
	CurrentVersion int       // floors.current_version
	CreatedAt      time.Time // floors.created_at
	UpdatedAt      time.Time // floors.updated_at
}
