package model

import "time"

// ChangesSummary counts draft edits relative to the previously published
// version.  It gates the publish button (all zeros = nothing to publish)
// and is stored alongside each version and approval request.
type ChangesSummary struct {
	Added    int `json:"added"`
	Modified int `json:"modified"`
	Deleted  int `json:"deleted"`
}

// Total returns the number of edits of any kind.
func (s ChangesSummary) Total() int { return s.Added + s.Modified + s.Deleted }

// Version is an immutable published snapshot of a floor layout.  Version
// numbers start at 1 and increase by exactly one per publish or restore;
// once written a version is never mutated.  All entities in a snapshot
// carry ChangeUnchanged.
//
// Fields:
//  ID          – primary key identifier (versions.id).
//  FloorID     – floor this version belongs to.
//  Number      – monotonic version number, unique per floor.
//  PublishedBy – user ID of the publisher.
//  PublishedAt – timestamp of the publish.
//  Notes       – free-text release notes supplied at publish time.
//  RestoredFrom– number of the version this one was restored from (0 = regular publish).
//  Tables      – deep copy of all surviving tables at publish time.
//  Sections    – deep copy of all surviving sections at publish time.
//  Combos      – deep copy of all combos at publish time.
//  Summary     – edit counts relative to the prior version.
type Version struct {
	ID           uint64         `json:"id"`
	FloorID      uint64         `json:"floor_id"`
	Number       int            `json:"number"`
	PublishedBy  uint64         `json:"published_by"`
	PublishedAt  time.Time      `json:"published_at"`
	Notes        string         `json:"notes,omitempty"`
	RestoredFrom int            `json:"restored_from,omitempty"`
	Tables       []*Table       `json:"tables"`
	Sections     []*Section     `json:"sections"`
	Combos       []*Combo       `json:"combos,omitempty"`
	Summary      ChangesSummary `json:"summary"`
}
