package geometry

import (
	"errors"
	"sort"
)

// ErrInsufficientSelection is returned when an arrangement operation is
// invoked on fewer entities than it needs (two for align, three for
// distribute).  Callers treat it as a local no-op with user feedback.
var ErrInsufficientSelection = errors.New("insufficient selection")

// AlignEdge enumerates the edges a selection can be aligned on.
type AlignEdge string

const (
	AlignLeft    AlignEdge = "left"
	AlignCenterX AlignEdge = "center"
	AlignRight   AlignEdge = "right"
	AlignTop     AlignEdge = "top"
	AlignMiddleY AlignEdge = "middle"
	AlignBottom  AlignEdge = "bottom"
)

// Placement is a computed new position for one entity.  Arrangement
// functions return placements instead of mutating their inputs so the
// caller can route the change through its command layer.
type Placement struct {
	ID string
	X  float64
	Y  float64
}

// Distribute spaces three or more entities evenly along the given axis.
// The first and last entities (by leading edge) stay where they are; the
// interior ones are repositioned so the gaps between consecutive outer
// edges are all equal.  Fewer than three entities is an error.
func Distribute(items []Item, axis Axis) ([]Placement, error) {
	if len(items) < 3 {
		return nil, ErrInsufficientSelection
	}
	sorted := append([]Item(nil), items...)
	if axis == Horizontal {
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rect.X < sorted[j].Rect.X })
	} else {
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rect.Y < sorted[j].Rect.Y })
	}

	first, last := sorted[0], sorted[len(sorted)-1]
	var span, occupied float64
	if axis == Horizontal {
		span = last.Rect.Right() - first.Rect.Left()
	} else {
		span = last.Rect.Bottom() - first.Rect.Top()
	}
	for _, it := range sorted {
		if axis == Horizontal {
			occupied += it.Rect.Width
		} else {
			occupied += it.Rect.Height
		}
	}
	gap := (span - occupied) / float64(len(sorted)-1)

	placements := make([]Placement, 0, len(sorted))
	cursor := first.Rect.X
	if axis != Horizontal {
		cursor = first.Rect.Y
	}
	for _, it := range sorted {
		p := Placement{ID: it.ID, X: it.Rect.X, Y: it.Rect.Y}
		if axis == Horizontal {
			p.X = cursor
			cursor += it.Rect.Width + gap
		} else {
			p.Y = cursor
			cursor += it.Rect.Height + gap
		}
		placements = append(placements, p)
	}
	return placements, nil
}

// Align moves every entity so the chosen edge coincides across the
// selection: left aligns to the minimum left edge, right to the maximum
// right edge, center/middle to the average of the selection's centers.
// Fewer than two entities is an error.
func Align(items []Item, edge AlignEdge) ([]Placement, error) {
	if len(items) < 2 {
		return nil, ErrInsufficientSelection
	}
	var target float64
	switch edge {
	case AlignLeft:
		target = items[0].Rect.Left()
		for _, it := range items[1:] {
			target = min(target, it.Rect.Left())
		}
	case AlignRight:
		target = items[0].Rect.Right()
		for _, it := range items[1:] {
			target = max(target, it.Rect.Right())
		}
	case AlignTop:
		target = items[0].Rect.Top()
		for _, it := range items[1:] {
			target = min(target, it.Rect.Top())
		}
	case AlignBottom:
		target = items[0].Rect.Bottom()
		for _, it := range items[1:] {
			target = max(target, it.Rect.Bottom())
		}
	case AlignCenterX:
		for _, it := range items {
			target += it.Rect.CenterX()
		}
		target /= float64(len(items))
	case AlignMiddleY:
		for _, it := range items {
			target += it.Rect.CenterY()
		}
		target /= float64(len(items))
	default:
		return nil, errors.New("unknown align edge")
	}

	placements := make([]Placement, 0, len(items))
	for _, it := range items {
		p := Placement{ID: it.ID, X: it.Rect.X, Y: it.Rect.Y}
		switch edge {
		case AlignLeft:
			p.X = target
		case AlignRight:
			p.X = target - it.Rect.Width
		case AlignCenterX:
			p.X = target - it.Rect.Width/2
		case AlignTop:
			p.Y = target
		case AlignBottom:
			p.Y = target - it.Rect.Height
		case AlignMiddleY:
			p.Y = target - it.Rect.Height/2
		}
		placements = append(placements, p)
	}
	return placements, nil
}
