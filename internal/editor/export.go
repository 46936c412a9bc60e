package editor

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// ExportCSV writes a read-only CSV projection of the layout: one row
// per active table with its name, capacity, shape, section name,
// position and tags.
func ExportCSV(w io.Writer, d *Draft) error {
	sections := map[string]string{}
	for _, s := range d.ActiveSections() {
		sections[s.ID] = s.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "capacity", "shape", "section", "x", "y", "width", "height", "rotation", "tags"}); err != nil {
		return err
	}
	for _, t := range d.ActiveTables() {
		row := []string{
			t.Name,
			strconv.Itoa(t.Capacity),
			string(t.Shape),
			sections[t.SectionID],
			formatCoord(t.X),
			formatCoord(t.Y),
			formatCoord(t.Width),
			formatCoord(t.Height),
			formatCoord(t.Rotation),
			strings.Join(t.Tags, ";"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
