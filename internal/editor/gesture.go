package editor

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-floor-plan/internal/geometry"
	"github.com/iliyamo/restaurant-floor-plan/internal/model"
)

// ToolMode is the editor's active tool.  Modes are mutually exclusive;
// switching tools aborts any gesture in flight.
type ToolMode string

const (
	ToolSelect      ToolMode = "select"
	ToolPan         ToolMode = "pan"
	ToolAddEntity   ToolMode = "add-entity"
	ToolDrawSection ToolMode = "draw-section"
)

// DefaultGridSize is the snapping grid applied to drags, nudges and
// placements unless the session configures another one.
const DefaultGridSize float64 = 10

// Pointer is a pointer position in floor coordinates.
type Pointer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerDownOpts carries what the client knows about the press: which
// entity (if any) was hit, which handle of the selected table, and the
// modifier state.
type PointerDownOpts struct {
	TargetID string `json:"target_id,omitempty"` // entity under the pointer, "" for empty canvas
	Handle   string `json:"handle,omitempty"`    // nw,n,ne,e,se,s,sw,w or "rotate"
	Additive bool   `json:"additive,omitempty"`  // shift held: toggle selection instead of replacing
	Middle   bool   `json:"middle,omitempty"`    // middle button: transient pan in any mode
}

// MoveOpts carries per-move modifier state.
type MoveOpts struct {
	Exact bool `json:"exact,omitempty"` // suppress angle snapping while held
}

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDrag
	gestureResize
	gestureRotate
	gestureMarquee
	gestureSectionDraw
	gesturePan
)

// gestureState tracks one in-flight pointer gesture.  It holds clones
// of the entities as they were when the gesture started; the live draft
// is in a transient pre-commit state until PointerUp builds the action.
type gestureState struct {
	kind    gestureKind
	start   Pointer
	handle  string
	origins map[string]*model.Table // pre-gesture clones of affected tables
	rect    geometry.Rect           // marquee / section rectangle, normalized on release
	viewX   float64                 // view offset at pan start
	viewY   float64
	moved   bool
}

// AddDefaults configures what a click places while in add-entity mode.
type AddDefaults struct {
	Shape    model.TableShape `json:"shape"`
	Capacity int              `json:"capacity"`
	Width    float64          `json:"width"`
	Height   float64          `json:"height"`
}

// Editor combines the draft, the command log and the interaction state
// machine for one editing session.  It is not safe for concurrent use;
// the session layer serializes access, which realizes the engine's
// single-threaded event-loop model.
type Editor struct {
	draft     *Draft
	history   *History
	mode      ToolMode
	grid      float64
	selection map[string]bool
	viewX     float64
	viewY     float64
	locked    bool
	adding    AddDefaults
	gesture   gestureState
	guides    []geometry.Guide
	palette   int // rotating index into sectionColors
}

// sectionColors is the palette cycled through as sections are drawn.
var sectionColors = []string{"#7c9f5a", "#5a7c9f", "#9f5a7c", "#9f8a5a", "#5a9f96"}

// NewEditor wraps a draft in a fresh editing session with an empty
// history, select tool and default grid.
func NewEditor(d *Draft) *Editor {
	return &Editor{
		draft:     d,
		history:   NewHistory(),
		mode:      ToolSelect,
		grid:      DefaultGridSize,
		selection: map[string]bool{},
		adding:    AddDefaults{Shape: model.ShapeRectangle, Capacity: 4, Width: 140, Height: 90},
	}
}

// Draft exposes the live entity model for read paths (state rendering,
// validation, export).  Mutations must go through editor methods.
func (e *Editor) Draft() *Draft { return e.draft }

// History exposes the command log.
func (e *Editor) History() *History { return e.history }

// Mode returns the active tool.
func (e *Editor) Mode() ToolMode { return e.mode }

// View returns the current pan offset.  The offset is pure view state
// and never appears in the command log.
func (e *Editor) View() (x, y float64) { return e.viewX, e.viewY }

// Guides returns the alignment guides for the gesture in flight; empty
// outside of drags.
func (e *Editor) Guides() []geometry.Guide { return e.guides }

// SetGrid changes the snapping grid (zero disables snapping).
func (e *Editor) SetGrid(grid float64) { e.grid = grid }

// SetAddDefaults configures the entity placed by add-entity clicks.
func (e *Editor) SetAddDefaults(d AddDefaults) {
	if d.Shape == "" {
		d.Shape = model.ShapeRectangle
	}
	if d.Capacity <= 0 {
		d.Capacity = 4
	}
	if d.Width < model.MinTableWidth {
		d.Width = model.MinTableWidth
	}
	if d.Height < model.MinTableHeight {
		d.Height = model.MinTableHeight
	}
	if d.Shape != model.ShapeRectangle {
		// squares and circles keep a square bounding box
		side := math.Max(d.Width, d.Height)
		d.Width, d.Height = side, side
	}
	e.adding = d
}

// Lock makes every mutating entry point a no-op returning ErrDraftLocked.
// Used while a pending approval request holds the draft.
func (e *Editor) Lock() { e.locked = true }

// Unlock lifts the approval lock.
func (e *Editor) Unlock() { e.locked = false }

// Locked reports whether the draft is read-only.
func (e *Editor) Locked() bool { return e.locked }

// SetTool switches the active tool, aborting any gesture in flight by
// restoring the pre-gesture entity state.
func (e *Editor) SetTool(mode ToolMode) error {
	switch mode {
	case ToolSelect, ToolPan, ToolAddEntity, ToolDrawSection:
	default:
		return fmt.Errorf("unknown tool mode %q", mode)
	}
	e.abortGesture()
	e.mode = mode
	return nil
}

// SelectOnly replaces the selection with the single given table.
// Selection is view state: it is never recorded in history.
func (e *Editor) SelectOnly(id string) {
	e.selection = map[string]bool{}
	if t := e.draft.TableByID(id); t != nil && t.Status != model.ChangeDeleted {
		e.selection[id] = true
	}
}

// ToggleSelect adds or removes one table from the selection.
func (e *Editor) ToggleSelect(id string) {
	if e.selection[id] {
		delete(e.selection, id)
		return
	}
	if t := e.draft.TableByID(id); t != nil && t.Status != model.ChangeDeleted {
		e.selection[id] = true
	}
}

// ClearSelection empties the selection.
func (e *Editor) ClearSelection() { e.selection = map[string]bool{} }

// SelectedIDs returns the selected table ids in stable order.
func (e *Editor) SelectedIDs() []string {
	ids := make([]string, 0, len(e.selection))
	for id := range e.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PointerDown feeds a press into the state machine.  Depending on the
// tool mode and what was hit it starts a drag, resize, rotate, marquee,
// section draw or pan gesture, or places a new table immediately.
func (e *Editor) PointerDown(p Pointer, opts PointerDownOpts) error {
	e.abortGesture()

	// Middle button pans regardless of tool, touching view state only.
	if opts.Middle {
		e.gesture = gestureState{kind: gesturePan, start: p, viewX: e.viewX, viewY: e.viewY}
		return nil
	}

	switch e.mode {
	case ToolPan:
		e.gesture = gestureState{kind: gesturePan, start: p, viewX: e.viewX, viewY: e.viewY}
		return nil

	case ToolAddEntity:
		if e.locked {
			return ErrDraftLocked
		}
		return e.placeTable(p)

	case ToolDrawSection:
		if e.locked {
			return ErrDraftLocked
		}
		e.gesture = gestureState{kind: gestureSectionDraw, start: p, rect: geometry.Rect{X: p.X, Y: p.Y}}
		return nil

	case ToolSelect:
		// Rotation / resize handles act on the single selected table.
		if opts.Handle != "" && opts.TargetID != "" {
			if e.locked {
				return ErrDraftLocked
			}
			t := e.draft.TableByID(opts.TargetID)
			if t == nil || t.Status == model.ChangeDeleted {
				return ErrEntityNotFound
			}
			e.SelectOnly(t.ID)
			kind := gestureResize
			if opts.Handle == "rotate" {
				kind = gestureRotate
			}
			e.gesture = gestureState{
				kind:    kind,
				start:   p,
				handle:  opts.Handle,
				origins: map[string]*model.Table{t.ID: t.Clone()},
			}
			return nil
		}

		if opts.TargetID != "" {
			t := e.draft.TableByID(opts.TargetID)
			if t == nil || t.Status == model.ChangeDeleted {
				return ErrEntityNotFound
			}
			if opts.Additive {
				e.ToggleSelect(t.ID)
				return nil
			}
			if !e.selection[t.ID] {
				e.SelectOnly(t.ID)
			}
			if e.locked {
				return ErrDraftLocked
			}
			origins := map[string]*model.Table{}
			for id := range e.selection {
				if sel := e.draft.TableByID(id); sel != nil && sel.Status != model.ChangeDeleted {
					origins[id] = sel.Clone()
				}
			}
			e.gesture = gestureState{kind: gestureDrag, start: p, origins: origins}
			return nil
		}

		// Empty canvas: marquee selection, unless a modifier is held.
		if !opts.Additive {
			e.gesture = gestureState{kind: gestureMarquee, start: p, rect: geometry.Rect{X: p.X, Y: p.Y}}
			e.selection = map[string]bool{}
		}
		return nil
	}
	return nil
}

// PointerMove advances the gesture in flight.  Moves outside a gesture
// are ignored (hover is pure view state).
func (e *Editor) PointerMove(p Pointer, opts MoveOpts) {
	g := &e.gesture
	switch g.kind {
	case gestureDrag:
		dx := geometry.SnapToGrid(p.X-g.start.X, e.grid)
		dy := geometry.SnapToGrid(p.Y-g.start.Y, e.grid)
		for id, origin := range g.origins {
			if t := e.draft.TableByID(id); t != nil {
				t.X = origin.X + dx
				t.Y = origin.Y + dy
			}
		}
		g.moved = dx != 0 || dy != 0
		e.refreshGuides()

	case gestureResize:
		origin := g.origins[e.firstSelected()]
		if origin == nil {
			return
		}
		t := e.draft.TableByID(origin.ID)
		if t == nil {
			return
		}
		rect := resizeRect(TableRect(origin), g.handle, p.X-g.start.X, p.Y-g.start.Y, origin.Shape == model.ShapeCircle)
		t.X, t.Y, t.Width, t.Height = rect.X, rect.Y, rect.Width, rect.Height
		g.moved = true

	case gestureRotate:
		origin := g.origins[e.firstSelected()]
		if origin == nil {
			return
		}
		t := e.draft.TableByID(origin.ID)
		if t == nil {
			return
		}
		cx, cy := TableRect(origin).CenterX(), TableRect(origin).CenterY()
		// 0° points up; the handle sits above the table.
		deg := math.Atan2(p.X-cx, cy-p.Y) * 180 / math.Pi
		t.Rotation = geometry.SnapAngle(deg, opts.Exact)
		g.moved = true

	case gestureMarquee, gestureSectionDraw:
		g.rect = normalizedRect(g.start, p)

	case gesturePan:
		e.viewX = g.viewX + (p.X - g.start.X)
		e.viewY = g.viewY + (p.Y - g.start.Y)
	}
}

// PointerUp completes the gesture, committing at most one action to the
// history.  Marquee and pan never record anything.
func (e *Editor) PointerUp(p Pointer) error {
	g := e.gesture
	e.gesture = gestureState{}
	e.guides = nil

	switch g.kind {
	case gestureDrag:
		return e.commitTableGesture(g, "move", "Moved %d table(s)")

	case gestureResize:
		return e.commitTableGesture(g, "resize", "Resized %d table(s)")

	case gestureRotate:
		return e.commitTableGesture(g, "rotate", "Rotated %d table(s)")

	case gestureMarquee:
		e.selection = map[string]bool{}
		for _, t := range e.draft.ActiveTables() {
			if geometry.Contains(g.rect, TableRect(t)) {
				e.selection[t.ID] = true
			}
		}
		return nil

	case gestureSectionDraw:
		return e.commitSectionDraw(g.rect)
	}
	return nil
}

// Nudge moves the whole selection by one grid step per arrow press,
// committing a single aggregated action.
func (e *Editor) Nudge(dx, dy float64) error {
	if e.locked {
		return ErrDraftLocked
	}
	ids := e.SelectedIDs()
	if len(ids) == 0 {
		return nil
	}
	step := e.grid
	if step <= 0 {
		step = 1
	}
	var diffs []Diff
	for _, id := range ids {
		t := e.draft.TableByID(id)
		if t == nil || t.Status == model.ChangeDeleted {
			continue
		}
		before := snapTable(t)
		t.X = geometry.SnapToGrid(t.X+dx*step, e.grid)
		t.Y = geometry.SnapToGrid(t.Y+dy*step, e.grid)
		t.Status = markEdited(t.Status)
		diffs = append(diffs, Diff{ID: id, Before: before, After: snapTable(t)})
	}
	if len(diffs) == 0 {
		return nil
	}
	e.history.Record(newAction("nudge", fmt.Sprintf("Nudged %d table(s)", len(diffs)), diffs))
	return nil
}

// commitTableGesture finalizes a drag/resize/rotate: it re-tags every
// table that actually changed and records one aggregated action.
func (e *Editor) commitTableGesture(g gestureState, typ, descFmt string) error {
	if !g.moved {
		// Nothing changed; restore exact origins in case of rounding.
		for id, origin := range g.origins {
			if t := e.draft.TableByID(id); t != nil {
				*t = *origin.Clone()
			}
		}
		return nil
	}
	var diffs []Diff
	ids := make([]string, 0, len(g.origins))
	for id := range g.origins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		origin := g.origins[id]
		t := e.draft.TableByID(id)
		if t == nil {
			continue
		}
		if tableValue(t) == tableValue(origin) && equalTags(t.Tags, origin.Tags) {
			continue
		}
		t.Status = markEdited(origin.Status)
		diffs = append(diffs, Diff{ID: id, Before: snapTable(origin), After: snapTable(t)})
	}
	if len(diffs) == 0 {
		return nil
	}
	e.history.Record(newAction(typ, fmt.Sprintf(descFmt, len(diffs)), diffs))
	return nil
}

// placeTable creates a new table at the snapped pointer position using
// the add-entity defaults.
func (e *Editor) placeTable(p Pointer) error {
	t := &model.Table{
		ID:       uuid.NewString(),
		Name:     e.draft.nextTableName(),
		Capacity: e.adding.Capacity,
		Shape:    e.adding.Shape,
		X:        geometry.SnapToGrid(p.X-e.adding.Width/2, e.grid),
		Y:        geometry.SnapToGrid(p.Y-e.adding.Height/2, e.grid),
		Width:    e.adding.Width,
		Height:   e.adding.Height,
	}
	e.draft.AddTable(t)
	e.history.Record(newAction("add-table",
		fmt.Sprintf("Added table %q", t.Name),
		[]Diff{{ID: t.ID, Before: Snapshot{}, After: snapTable(t)}}))
	e.SelectOnly(t.ID)
	return nil
}

// commitSectionDraw validates the drawn rectangle, creates the section
// and auto-assigns every fully contained table, all in one action.
func (e *Editor) commitSectionDraw(rect geometry.Rect) error {
	if rect.Width < model.MinSectionSize || rect.Height < model.MinSectionSize {
		return fmt.Errorf("%w: section must be at least %gx%g", ErrInvalidGeometry, model.MinSectionSize, model.MinSectionSize)
	}
	s := &model.Section{
		ID:      uuid.NewString(),
		Name:    fmt.Sprintf("Section %d", e.draft.NextSectionOrder()+1),
		X:       rect.X,
		Y:       rect.Y,
		Width:   rect.Width,
		Height:  rect.Height,
		Color:   sectionColors[e.palette%len(sectionColors)],
		Visible: true,
		Order:   e.draft.NextSectionOrder(),
	}
	e.palette++
	e.draft.AddSection(s)

	diffs := []Diff{{ID: s.ID, Before: Snapshot{}, After: snapSection(s)}}
	assigned := 0
	for _, t := range e.draft.ActiveTables() {
		if !geometry.Contains(rect, TableRect(t)) || t.SectionID == s.ID {
			continue
		}
		before := snapTable(t)
		t.SectionID = s.ID
		t.Status = markEdited(t.Status)
		diffs = append(diffs, Diff{ID: t.ID, Before: before, After: snapTable(t)})
		assigned++
	}
	e.history.Record(newAction("draw-section",
		fmt.Sprintf("Drew section %q (%d table(s) assigned)", s.Name, assigned), diffs))
	return nil
}

// refreshGuides recomputes alignment guides between the dragged tables
// and every static active table.
func (e *Editor) refreshGuides() {
	var moving, static []geometry.Item
	for _, t := range e.draft.ActiveTables() {
		item := geometry.Item{ID: t.ID, Rect: TableRect(t)}
		if _, ok := e.gesture.origins[t.ID]; ok {
			moving = append(moving, item)
		} else {
			static = append(static, item)
		}
	}
	e.guides = geometry.DetectAlignmentGuides(moving, static, geometry.GuideThreshold)
}

// abortGesture restores pre-gesture state for any gesture in flight
// without recording anything.
func (e *Editor) abortGesture() {
	if e.gesture.kind == gestureNone {
		return
	}
	for id, origin := range e.gesture.origins {
		if t := e.draft.TableByID(id); t != nil {
			*t = *origin.Clone()
		}
	}
	e.gesture = gestureState{}
	e.guides = nil
}

func (e *Editor) firstSelected() string {
	for id := range e.gesture.origins {
		return id
	}
	return ""
}

// resizeRect derives the new bounding box for a handle drag.  Each
// handle constrains which edges move; minimum sizes clamp the result
// and circles keep width == height throughout.
func resizeRect(origin geometry.Rect, handle string, dx, dy float64, circle bool) geometry.Rect {
	left, top := origin.Left(), origin.Top()
	right, bottom := origin.Right(), origin.Bottom()

	switch handle {
	case "nw":
		left += dx
		top += dy
	case "n":
		top += dy
	case "ne":
		right += dx
		top += dy
	case "e":
		right += dx
	case "se":
		right += dx
		bottom += dy
	case "s":
		bottom += dy
	case "sw":
		left += dx
		bottom += dy
	case "w":
		left += dx
	}

	// Clamp against the fixed opposite edge so the box never inverts.
	if right-left < model.MinTableWidth {
		if handle == "nw" || handle == "w" || handle == "sw" {
			left = right - model.MinTableWidth
		} else {
			right = left + model.MinTableWidth
		}
	}
	if bottom-top < model.MinTableHeight {
		if handle == "nw" || handle == "n" || handle == "ne" {
			top = bottom - model.MinTableHeight
		} else {
			bottom = top + model.MinTableHeight
		}
	}

	rect := geometry.Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
	if circle {
		side := math.Max(rect.Width, rect.Height)
		// Grow away from the anchored corner.
		if handle == "nw" || handle == "w" || handle == "sw" {
			rect.X = right - side
		}
		if handle == "nw" || handle == "n" || handle == "ne" {
			rect.Y = bottom - side
		}
		rect.Width, rect.Height = side, side
	}
	return rect
}

// normalizedRect builds a rectangle from two corners dragged in any
// direction.
func normalizedRect(a, b Pointer) geometry.Rect {
	return geometry.Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// tableValue returns a comparable copy with the slice field zeroed, for
// change detection.
// tableKey is the comparable projection of a table used to decide
// whether a gesture changed anything.  Tags live in a slice and are
// compared separately by equalTags.
type tableKey struct {
	name      string
	capacity  int
	shape     model.TableShape
	x, y      float64
	width     float64
	height    float64
	rotation  float64
	sectionID string
	status    model.ChangeStatus
}

func tableValue(t *model.Table) tableKey {
	return tableKey{
		name:      t.Name,
		capacity:  t.Capacity,
		shape:     t.Shape,
		x:         t.X,
		y:         t.Y,
		width:     t.Width,
		height:    t.Height,
		rotation:  t.Rotation,
		sectionID: t.SectionID,
		status:    t.Status,
	}
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
