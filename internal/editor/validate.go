package editor

import (
	"fmt"
	"strings"

	"github.com/iliyamo/restaurant-floor-plan/internal/geometry"
)

// IssueType classifies a validation finding.
type IssueType string

const (
	IssueOverlap       IssueType = "overlap"
	IssueOutOfBounds   IssueType = "out_of_bounds"
	IssueDuplicateName IssueType = "duplicate_name"
)

// Issue is one structural problem found in the draft, with the ids of
// every participating entity so the UI can locate them.
type Issue struct {
	Type    IssueType `json:"type"`
	Message string    `json:"message"`
	IDs     []string  `json:"ids"`
}

// Result is the outcome of a validation run.  IsValid gates publishing;
// a draft may always be saved regardless of validity.
type Result struct {
	Errors  []Issue `json:"errors"`
	IsValid bool    `json:"is_valid"`
}

// OverlapPadding is the horizontal gap the overlap auto-fix leaves
// between the two tables it separates.
const OverlapPadding float64 = 20

// Validate runs every structural check over the non-deleted entities of
// the draft: pairwise bounding-box overlap (each pair reported once),
// per-table floor-bounds containment, and duplicate display names.
func Validate(d *Draft) Result {
	tables := d.ActiveTables()
	var issues []Issue

	for i := 0; i < len(tables); i++ {
		for j := i + 1; j < len(tables); j++ {
			if geometry.BoxesOverlap(TableRect(tables[i]), TableRect(tables[j])) {
				issues = append(issues, Issue{
					Type:    IssueOverlap,
					Message: fmt.Sprintf("tables %q and %q overlap", tables[i].Name, tables[j].Name),
					IDs:     []string{tables[i].ID, tables[j].ID},
				})
			}
		}
	}

	for _, t := range tables {
		if geometry.OutOfBounds(TableRect(t), d.Floor.Width, d.Floor.Height) {
			issues = append(issues, Issue{
				Type:    IssueOutOfBounds,
				Message: fmt.Sprintf("table %q extends outside the floor", t.Name),
				IDs:     []string{t.ID},
			})
		}
	}

	byName := map[string][]string{}
	for _, t := range tables {
		key := strings.ToLower(strings.TrimSpace(t.Name))
		byName[key] = append(byName[key], t.ID)
	}
	for name, ids := range byName {
		if len(ids) >= 2 {
			issues = append(issues, Issue{
				Type:    IssueDuplicateName,
				Message: fmt.Sprintf("%d tables share the name %q", len(ids), name),
				IDs:     ids,
			})
		}
	}

	return Result{Errors: issues, IsValid: len(issues) == 0}
}
