package model

// Combo groups two or more tables that are pushed together and booked as
// one unit.  The combined capacity is never stored; it is recomputed from
// the member tables on read so it can never drift from the layout.
//
// Fields:
//  ID       – identifier of the combo.
//  Name     – display name (e.g. "Banquet 1").
//  TableIDs – ordered member table identifiers; always ≥ 2.
//  Status   – change tag relative to the published baseline, maintained
//             like the table and section tags so grouping edits count
//             toward a draft's publishable changes.
type Combo struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	TableIDs []string     `json:"table_ids"`
	Status   ChangeStatus `json:"change_status"`
}

// Clone returns a deep copy of the combo.
func (c *Combo) Clone() *Combo {
	cp := *c
	cp.TableIDs = append([]string(nil), c.TableIDs...)
	return &cp
}
