package geometry

import "sort"

// GuideThreshold is the distance within which two edges are considered
// aligned for live guide rendering.
const GuideThreshold float64 = 5

// Axis identifies the orientation of a guide line or an arrangement
// operation.
type Axis string

const (
	// Vertical guides mark coinciding left/center/right edges; vertical
	// arrangement spreads entities along the Y axis.
	Vertical Axis = "vertical"
	// Horizontal guides mark coinciding top/middle/bottom edges;
	// horizontal arrangement spreads entities along the X axis.
	Horizontal Axis = "horizontal"
)

// Guide is one alignment line to render while a drag is in flight.
// Guides are view-state only: they are recomputed on every pointer move
// and never persisted or recorded in history.
type Guide struct {
	Axis     Axis     `json:"axis"`
	Position float64  `json:"position"`
	IDs      []string `json:"ids"`
}

// Item pairs an entity identifier with its bounding rectangle for guide
// detection and arrangement.
type Item struct {
	ID   string
	Rect Rect
}

// DetectAlignmentGuides compares every moving/static pair and emits a
// vertical guide when their left, center or right edges are within
// threshold of each other, and a horizontal guide for top, middle and
// bottom edges.  Guides at the same axis and position are merged, with
// participant ids deduplicated, so each rendered line appears once.
func DetectAlignmentGuides(moving, static []Item, threshold float64) []Guide {
	if threshold <= 0 {
		threshold = GuideThreshold
	}
	type key struct {
		axis Axis
		pos  float64
	}
	found := map[key]map[string]bool{}
	note := func(axis Axis, pos float64, a, b string) {
		k := key{axis, pos}
		if found[k] == nil {
			found[k] = map[string]bool{}
		}
		found[k][a] = true
		found[k][b] = true
	}
	for _, m := range moving {
		for _, s := range static {
			if m.ID == s.ID {
				continue
			}
			mv := [3]float64{m.Rect.Left(), m.Rect.CenterX(), m.Rect.Right()}
			sv := [3]float64{s.Rect.Left(), s.Rect.CenterX(), s.Rect.Right()}
			for _, me := range mv {
				for _, se := range sv {
					if abs(me-se) <= threshold {
						note(Vertical, se, m.ID, s.ID)
					}
				}
			}
			mh := [3]float64{m.Rect.Top(), m.Rect.CenterY(), m.Rect.Bottom()}
			sh := [3]float64{s.Rect.Top(), s.Rect.CenterY(), s.Rect.Bottom()}
			for _, me := range mh {
				for _, se := range sh {
					if abs(me-se) <= threshold {
						note(Horizontal, se, m.ID, s.ID)
					}
				}
			}
		}
	}
	guides := make([]Guide, 0, len(found))
	for k, ids := range found {
		g := Guide{Axis: k.axis, Position: k.pos}
		for id := range ids {
			g.IDs = append(g.IDs, id)
		}
		sort.Strings(g.IDs)
		guides = append(guides, g)
	}
	sort.Slice(guides, func(i, j int) bool {
		if guides[i].Axis != guides[j].Axis {
			return guides[i].Axis < guides[j].Axis
		}
		return guides[i].Position < guides[j].Position
	})
	return guides
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
