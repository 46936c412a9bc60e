package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-floor-plan/internal/editor"
	"github.com/iliyamo/restaurant-floor-plan/internal/geometry"
	"github.com/iliyamo/restaurant-floor-plan/internal/model"
	"github.com/iliyamo/restaurant-floor-plan/internal/session"
)

// EditorHandler exposes the editing session over HTTP.  Every request
// resolves the floor's session and runs against it under the session
// mutex, so handlers never see a half-applied gesture.
type EditorHandler struct {
	Sessions *session.Manager
}

func NewEditorHandler(m *session.Manager) *EditorHandler {
	if m == nil {
		panic("nil session manager passed to NewEditorHandler")
	}
	return &EditorHandler{Sessions: m}
}

func (h *EditorHandler) session(c echo.Context) (*session.Session, error) {
	id, err := paramUint64(c, "id")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid floor id")
	}
	return h.Sessions.Acquire(c.Request().Context(), id)
}

// lifecycleState renders the full session state the dashboard binds to.
func lifecycleState(lc *editor.Lifecycle) echo.Map {
	floor := lc.Floor()
	out := echo.Map{
		"state": lc.State(),
		"floor": echo.Map{
			"id":              floor.ID,
			"name":            floor.Name,
			"width":           floor.Width,
			"height":          floor.Height,
			"current_version": floor.CurrentVersion,
		},
	}
	if req := lc.PendingRequest(); req != nil {
		out["pending_request"] = req
	}

	ed, err := lc.Editor()
	if err != nil {
		b := lc.Baseline()
		out["published"] = echo.Map{
			"tables":   b.Tables,
			"sections": b.Sections,
			"combos":   b.Combos,
		}
		return out
	}

	d := ed.Draft()
	vx, vy := ed.View()
	out["draft"] = echo.Map{
		"tables":   d.Tables,
		"sections": d.Sections,
		"combos":   d.Combos,
		"summary":  d.Summary(),
	}
	out["selection"] = ed.SelectedIDs()
	out["tool"] = ed.Mode()
	out["view"] = echo.Map{"x": vx, "y": vy}
	out["guides"] = ed.Guides()
	out["locked"] = ed.Locked()
	out["history"] = echo.Map{
		"length":   ed.History().Len(),
		"cursor":   ed.History().Cursor(),
		"can_undo": ed.History().CanUndo(),
		"can_redo": ed.History().CanRedo(),
	}
	return out
}

// respondState is the common success response: the whole session state.
func (h *EditorHandler) respondState(c echo.Context, s *session.Session) error {
	var payload echo.Map
	_ = s.Do(func(lc *editor.Lifecycle) error {
		payload = lifecycleState(lc)
		return nil
	})
	return c.JSON(http.StatusOK, payload)
}

// ----- session lifecycle -----

type openReq struct {
	Resume bool `json:"resume"`
}

// Open enters edit mode.  Opening an already-open draft is idempotent
// and simply returns the current state.
func (h *EditorHandler) Open(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var req openReq
	_ = c.Bind(&req)

	err = s.Do(func(lc *editor.Lifecycle) error {
		_, err := lc.EnterEdit(c.Request().Context(), actor, req.Resume)
		if errors.Is(err, editor.ErrDraftInProgress) && lc.State() != editor.StatePublished {
			return nil // already editing; treat open as a no-op
		}
		return err
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	return h.respondState(c, s)
}

// State returns the current session state without side effects.
func (h *EditorHandler) State(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	return h.respondState(c, s)
}

// Recovery reports whether a saved draft blob exists, for the resume
// prompt shown before entering edit mode.
func (h *EditorHandler) Recovery(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var blob *editor.SavedDraft
	err = s.Do(func(lc *editor.Lifecycle) error {
		var err error
		blob, err = lc.SavedBlob(c.Request().Context())
		return err
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	if blob == nil {
		return c.JSON(http.StatusOK, echo.Map{"available": false})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"available": true,
		"saved_at":  blob.SavedAt,
		"summary":   blob.Summary,
	})
}

// Save persists the draft blob immediately.
func (h *EditorHandler) Save(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	err = s.Do(func(lc *editor.Lifecycle) error {
		return lc.SaveDraft(c.Request().Context())
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"saved": true})
}

// Discard abandons the draft and returns to the published state.
func (h *EditorHandler) Discard(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	err = s.Do(func(lc *editor.Lifecycle) error {
		return lc.Discard(c.Request().Context(), actor)
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	s.StopAutosave()
	return h.respondState(c, s)
}

// ----- pointer events and tools -----

type pointerEventReq struct {
	Phase    string  `json:"phase"` // down | move | up
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	TargetID string  `json:"target_id,omitempty"`
	Handle   string  `json:"handle,omitempty"`
	Additive bool    `json:"additive,omitempty"`
	Middle   bool    `json:"middle,omitempty"`
	Exact    bool    `json:"exact,omitempty"`
}

// Event feeds one pointer event into the gesture state machine.
func (h *EditorHandler) Event(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var req pointerEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		p := editor.Pointer{X: req.X, Y: req.Y}
		switch req.Phase {
		case "down":
			return ed.PointerDown(p, editor.PointerDownOpts{
				TargetID: req.TargetID,
				Handle:   req.Handle,
				Additive: req.Additive,
				Middle:   req.Middle,
			})
		case "move":
			ed.PointerMove(p, editor.MoveOpts{Exact: req.Exact})
			return nil
		case "up":
			return ed.PointerUp(p)
		}
		return echo.NewHTTPError(http.StatusBadRequest, "unknown event phase")
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	if req.Phase == "up" {
		s.MarkDirty()
	}
	return h.respondState(c, s)
}

type toolReq struct {
	Mode     editor.ToolMode     `json:"mode"`
	Grid     *float64            `json:"grid,omitempty"`
	Defaults *editor.AddDefaults `json:"defaults,omitempty"`
}

// Tool switches the active tool and optionally reconfigures the grid
// and the add-entity defaults.
func (h *EditorHandler) Tool(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var req toolReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		if req.Mode != "" {
			if err := ed.SetTool(req.Mode); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
		}
		if req.Grid != nil {
			ed.SetGrid(*req.Grid)
		}
		if req.Defaults != nil {
			ed.SetAddDefaults(*req.Defaults)
		}
		return nil
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	return h.respondState(c, s)
}

type selectReq struct {
	Mode string   `json:"mode"` // replace | toggle | clear
	IDs  []string `json:"ids,omitempty"`
}

// Select manipulates the selection outside of pointer gestures (list
// panel clicks, select-all buttons).
func (h *EditorHandler) Select(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var req selectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		switch req.Mode {
		case "clear":
			ed.ClearSelection()
		case "toggle":
			for _, id := range req.IDs {
				ed.ToggleSelect(id)
			}
		default: // replace
			ed.ClearSelection()
			for _, id := range req.IDs {
				ed.ToggleSelect(id)
			}
		}
		return nil
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	return h.respondState(c, s)
}

// ----- structured edits -----

type createTableReq struct {
	Name     string           `json:"name"`
	Capacity int              `json:"capacity"`
	Shape    model.TableShape `json:"shape"`
	X        float64          `json:"x"`
	Y        float64          `json:"y"`
	Width    float64          `json:"width"`
	Height   float64          `json:"height"`
}

// CreateTable places a table from the panel form.
func (h *EditorHandler) CreateTable(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var req createTableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Shape == "" {
		req.Shape = model.ShapeRectangle
	}
	var created *model.Table
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		created, err = ed.CreateTable(req.Name, req.Capacity, req.Shape,
			geometry.Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height})
		return err
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	s.MarkDirty()
	return c.JSON(http.StatusCreated, created)
}

// PatchTable applies a partial update to one table.
func (h *EditorHandler) PatchTable(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var patch editor.TablePatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		return ed.UpdateTable(c.Param("entityID"), patch)
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	s.MarkDirty()
	return h.respondState(c, s)
}

// PatchSection applies a partial update to one section.
func (h *EditorHandler) PatchSection(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var patch editor.SectionPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		return ed.UpdateSection(c.Param("entityID"), patch)
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	s.MarkDirty()
	return h.respondState(c, s)
}

// DeleteEntity soft-deletes a table or section (or drops it outright
// when it was added in this draft).
func (h *EditorHandler) DeleteEntity(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		return ed.Delete(c.Param("entityID"))
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	s.MarkDirty()
	return h.respondState(c, s)
}

// RestoreEntity brings a soft-deleted entity back.
func (h *EditorHandler) RestoreEntity(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		return ed.RestoreEntity(c.Param("entityID"))
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	s.MarkDirty()
	return h.respondState(c, s)
}

type createComboReq struct {
	Name     string   `json:"name"`
	TableIDs []string `json:"table_ids"`
}

// CreateCombo groups tables into a bookable unit.
func (h *EditorHandler) CreateCombo(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var req createComboReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var combo *model.Combo
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		combo, err = ed.CreateCombo(req.Name, req.TableIDs)
		return err
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	s.MarkDirty()
	return c.JSON(http.StatusCreated, combo)
}

// DeleteCombo ungroups a combo.
func (h *EditorHandler) DeleteCombo(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		return ed.DeleteCombo(c.Param("comboID"))
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	s.MarkDirty()
	return h.respondState(c, s)
}

type arrangeReq struct {
	Op   string `json:"op"`             // align | distribute
	Edge string `json:"edge,omitempty"` // align: left, center, right, top, middle, bottom
	Axis string `json:"axis,omitempty"` // distribute: horizontal | vertical
}

// Arrange aligns or distributes the current selection.
func (h *EditorHandler) Arrange(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var req arrangeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		switch req.Op {
		case "align":
			return ed.Align(geometry.AlignEdge(req.Edge))
		case "distribute":
			axis := geometry.Horizontal
			if req.Axis == "vertical" {
				axis = geometry.Vertical
			}
			return ed.Distribute(axis)
		}
		return echo.NewHTTPError(http.StatusBadRequest, "unknown arrange op")
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	s.MarkDirty()
	return h.respondState(c, s)
}

type nudgeReq struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Nudge moves the selection by grid steps (arrow keys).
func (h *EditorHandler) Nudge(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var req nudgeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		return ed.Nudge(req.DX, req.DY)
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	s.MarkDirty()
	return h.respondState(c, s)
}

// ----- history -----

// Undo rolls back one action.
func (h *EditorHandler) Undo(c echo.Context) error {
	return h.historyOp(c, func(ed *editor.Editor) { ed.Undo() })
}

// Redo re-applies one undone action.
func (h *EditorHandler) Redo(c echo.Context) error {
	return h.historyOp(c, func(ed *editor.Editor) { ed.Redo() })
}

type undoToReq struct {
	Index int `json:"index"`
}

// UndoTo rolls back to a specific point in the action list.
func (h *EditorHandler) UndoTo(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var req undoToReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		ed.UndoTo(req.Index)
		return nil
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	s.MarkDirty()
	return h.respondState(c, s)
}

func (h *EditorHandler) historyOp(c echo.Context, op func(*editor.Editor)) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		op(ed)
		return nil
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	s.MarkDirty()
	return h.respondState(c, s)
}

// Actions returns the visible history for the panel.
func (h *EditorHandler) Actions(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var (
		actions []editor.Action
		cursor  int
	)
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		actions = ed.History().List()
		cursor = ed.History().Cursor()
		return nil
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"actions": actions, "cursor": cursor})
}

// ----- validation -----

// Validate runs the validation engine on demand.
func (h *EditorHandler) Validate(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var result editor.Result
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		result = ed.Validate()
		return nil
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type autoFixReq struct {
	FirstID  string `json:"first_id"`
	SecondID string `json:"second_id"`
}

// AutoFix resolves one reported overlap and re-validates.
func (h *EditorHandler) AutoFix(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return writeEditorError(c, err)
	}
	var req autoFixReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var result editor.Result
	err = s.Do(func(lc *editor.Lifecycle) error {
		ed, err := lc.Editor()
		if err != nil {
			return err
		}
		result, err = ed.AutoFixOverlap(req.FirstID, req.SecondID)
		return err
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	s.MarkDirty()
	return c.JSON(http.StatusOK, result)
}
