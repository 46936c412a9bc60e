package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-floor-plan/internal/model"
	"github.com/iliyamo/restaurant-floor-plan/internal/repository"
	"github.com/iliyamo/restaurant-floor-plan/internal/session"
)

// FloorHandler covers floor CRUD.  Editing happens through the session
// endpoints; this handler only touches floor metadata.
type FloorHandler struct {
	Floors   *repository.FloorRepo
	Sessions *session.Manager
}

func NewFloorHandler(floors *repository.FloorRepo, sessions *session.Manager) *FloorHandler {
	return &FloorHandler{Floors: floors, Sessions: sessions}
}

type floorReq struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r *floorReq) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "width and height must be positive")
	}
	return nil
}

// Create registers a new floor owned by the caller.
func (h *FloorHandler) Create(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !actor.Capabilities().CanChangeSettings {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "role cannot create floors"})
	}
	var req floorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.normalize(); err != nil {
		return err
	}
	f := &model.Floor{
		OwnerID: actor.ID,
		Name:    req.Name,
		Width:   req.Width,
		Height:  req.Height,
	}
	if err := h.Floors.Create(c.Request().Context(), f); err != nil {
		return writeEditorError(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}

// List returns the caller's floors.  ?owner_id lets managers browse
// another owner's floors.
func (h *FloorHandler) List(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ownerID := actor.ID
	if raw := c.QueryParam("owner_id"); raw != "" {
		id, err := paramValueUint64(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid owner_id"})
		}
		ownerID = id
	}
	floors, err := h.Floors.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return writeEditorError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"floors": floors})
}

// Get returns one floor's metadata.
func (h *FloorHandler) Get(c echo.Context) error {
	id, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	f, err := h.Floors.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeEditorError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// UpdateMeta renames or resizes a floor.  Resizing does not touch the
// published layout; out-of-bounds tables surface on the next validate.
func (h *FloorHandler) UpdateMeta(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !actor.Capabilities().CanChangeSettings {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "role cannot change floor settings"})
	}
	id, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	var req floorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.normalize(); err != nil {
		return err
	}
	f, err := h.Floors.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeEditorError(c, err)
	}
	f.Name = req.Name
	f.Width = req.Width
	f.Height = req.Height
	if err := h.Floors.UpdateMeta(c.Request().Context(), f); err != nil {
		return writeEditorError(c, err)
	}
	// The session caches floor metadata; drop it so the next request
	// reloads the new dimensions.
	h.Sessions.Drop(id)
	return c.JSON(http.StatusOK, f)
}

// Delete removes a floor and everything under it.
func (h *FloorHandler) Delete(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !actor.Capabilities().CanDelete {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "role cannot delete floors"})
	}
	id, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	if err := h.Floors.Delete(c.Request().Context(), id); err != nil {
		return writeEditorError(c, err)
	}
	h.Sessions.Drop(id)
	return c.NoContent(http.StatusNoContent)
}
