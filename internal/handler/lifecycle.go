package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-floor-plan/internal/editor"
	"github.com/iliyamo/restaurant-floor-plan/internal/permission"
	"github.com/iliyamo/restaurant-floor-plan/internal/repository"
	"github.com/iliyamo/restaurant-floor-plan/internal/session"
)

// LifecycleHandler covers publishing, versions, approvals and the
// activity log.  Version reads go straight to the repository; anything
// that moves the draft state machine goes through the floor's session.
type LifecycleHandler struct {
	Floors    *repository.FloorRepo
	Versions  *repository.VersionRepo
	Approvals *repository.ApprovalRepo
	Activity  *repository.ActivityRepo
	Sessions  *session.Manager
}

func NewLifecycleHandler(floors *repository.FloorRepo, versions *repository.VersionRepo,
	approvals *repository.ApprovalRepo, activity *repository.ActivityRepo,
	sessions *session.Manager) *LifecycleHandler {
	return &LifecycleHandler{
		Floors:    floors,
		Versions:  versions,
		Approvals: approvals,
		Activity:  activity,
		Sessions:  sessions,
	}
}

// Publish snapshots the draft into a new version, or routes it to
// approval when the caller cannot publish directly.
func (h *LifecycleHandler) Publish(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	floorID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	s, err := h.Sessions.Acquire(c.Request().Context(), floorID)
	if err != nil {
		return writeEditorError(c, err)
	}
	var opts editor.PublishOptions
	if err := c.Bind(&opts); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var outcome *editor.PublishOutcome
	err = s.Do(func(lc *editor.Lifecycle) error {
		var err error
		outcome, err = lc.Publish(c.Request().Context(), actor, opts)
		return err
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	h.afterPublish(c, s, outcome)
	return c.JSON(http.StatusOK, outcome)
}

// afterPublish syncs the floors row and stops autosave once a version
// actually landed.  Best effort; the version row is the source of truth.
func (h *LifecycleHandler) afterPublish(c echo.Context, s *session.Session, outcome *editor.PublishOutcome) {
	if outcome == nil || outcome.Version == nil {
		return
	}
	s.StopAutosave()
	_ = h.Floors.SetCurrentVersion(c.Request().Context(), outcome.Version.FloorID, outcome.Version.Number)
}

// ----- versions -----

// ListVersions returns the floor's version history, newest first,
// without the layout payloads.
func (h *LifecycleHandler) ListVersions(c echo.Context) error {
	floorID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	versions, err := h.Versions.ListByFloor(c.Request().Context(), floorID, limit)
	if err != nil {
		return writeEditorError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"versions": versions})
}

// GetVersion returns one version with its full layout.
func (h *LifecycleHandler) GetVersion(c echo.Context) error {
	floorID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid version number"})
	}
	v, err := h.Versions.GetByNumber(c.Request().Context(), floorID, number)
	if err != nil {
		return writeEditorError(c, err)
	}
	if v == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "version not found"})
	}
	return c.JSON(http.StatusOK, v)
}

// CompareVersions diffs two published versions: ?from=2&to=5.
func (h *LifecycleHandler) CompareVersions(c echo.Context) error {
	floorID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	from, err1 := strconv.Atoi(c.QueryParam("from"))
	to, err2 := strconv.Atoi(c.QueryParam("to"))
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from and to version numbers are required"})
	}
	ctx := c.Request().Context()
	a, err := h.Versions.GetByNumber(ctx, floorID, from)
	if err != nil {
		return writeEditorError(c, err)
	}
	b, err := h.Versions.GetByNumber(ctx, floorID, to)
	if err != nil {
		return writeEditorError(c, err)
	}
	if a == nil || b == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "version not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"from":    a.Number,
		"to":      b.Number,
		"entries": editor.CompareVersions(a, b),
	})
}

// Restore republishes an old version as a new one.
func (h *LifecycleHandler) Restore(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	floorID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid version number"})
	}
	s, err := h.Sessions.Acquire(c.Request().Context(), floorID)
	if err != nil {
		return writeEditorError(c, err)
	}
	var outcome *editor.PublishOutcome
	err = s.Do(func(lc *editor.Lifecycle) error {
		v, err := lc.Restore(c.Request().Context(), actor, number)
		if err != nil {
			return err
		}
		outcome = &editor.PublishOutcome{State: lc.State(), Version: v}
		return nil
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	h.afterPublish(c, s, outcome)
	return c.JSON(http.StatusOK, outcome.Version)
}

// ----- approvals -----

type resolveReq struct {
	Resolution string `json:"resolution"`
}

// Approve publishes the pending request on behalf of its requester.
func (h *LifecycleHandler) Approve(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	floorID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	s, err := h.Sessions.Acquire(c.Request().Context(), floorID)
	if err != nil {
		return writeEditorError(c, err)
	}
	var req resolveReq
	_ = c.Bind(&req)
	var outcome *editor.PublishOutcome
	err = s.Do(func(lc *editor.Lifecycle) error {
		var err error
		outcome, err = lc.Approve(c.Request().Context(), actor, req.Resolution)
		return err
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	h.afterPublish(c, s, outcome)
	return c.JSON(http.StatusOK, outcome)
}

// Reject declines the pending request; the draft returns to editing.
func (h *LifecycleHandler) Reject(c echo.Context) error {
	return h.decline(c, func(lc *editor.Lifecycle, a permission.Actor, resolution string) error {
		return lc.Reject(c.Request().Context(), a, resolution)
	})
}

// RequestChanges declines with a changes-requested status.
func (h *LifecycleHandler) RequestChanges(c echo.Context) error {
	return h.decline(c, func(lc *editor.Lifecycle, a permission.Actor, resolution string) error {
		return lc.RequestChanges(c.Request().Context(), a, resolution)
	})
}

// Withdraw lets the requester pull their own request back.
func (h *LifecycleHandler) Withdraw(c echo.Context) error {
	return h.decline(c, func(lc *editor.Lifecycle, a permission.Actor, _ string) error {
		return lc.Withdraw(c.Request().Context(), a)
	})
}

func (h *LifecycleHandler) decline(c echo.Context, op func(*editor.Lifecycle, permission.Actor, string) error) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	floorID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	s, err := h.Sessions.Acquire(c.Request().Context(), floorID)
	if err != nil {
		return writeEditorError(c, err)
	}
	var req resolveReq
	_ = c.Bind(&req)
	err = s.Do(func(lc *editor.Lifecycle) error {
		return op(lc, actor, req.Resolution)
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	var payload echo.Map
	_ = s.Do(func(lc *editor.Lifecycle) error {
		payload = echo.Map{"state": lc.State()}
		return nil
	})
	return c.JSON(http.StatusOK, payload)
}

// byRequest resolves an approval request id to its floor and re-runs
// the floor-scoped handler, so /v1/approvals/:requestID/... verbs share
// one implementation with the floor routes.
func (h *LifecycleHandler) byRequest(c echo.Context, next echo.HandlerFunc) error {
	req, err := h.Approvals.GetByID(c.Request().Context(), c.Param("requestID"))
	if err != nil {
		return writeEditorError(c, err)
	}
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(req.FloorID, 10))
	return next(c)
}

func (h *LifecycleHandler) ApproveByRequest(c echo.Context) error {
	return h.byRequest(c, h.Approve)
}

func (h *LifecycleHandler) RejectByRequest(c echo.Context) error {
	return h.byRequest(c, h.Reject)
}

func (h *LifecycleHandler) RequestChangesByRequest(c echo.Context) error {
	return h.byRequest(c, h.RequestChanges)
}

func (h *LifecycleHandler) WithdrawByRequest(c echo.Context) error {
	return h.byRequest(c, h.Withdraw)
}

// ListApprovals returns a floor's approval requests, newest first.
func (h *LifecycleHandler) ListApprovals(c echo.Context) error {
	floorID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	reqs, err := h.Approvals.ListByFloor(c.Request().Context(), floorID, limit)
	if err != nil {
		return writeEditorError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"approvals": reqs})
}

// PendingApprovals returns requests waiting on the caller.
func (h *LifecycleHandler) PendingApprovals(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	reqs, err := h.Approvals.ListPendingForApprover(c.Request().Context(), actor.ID, limit)
	if err != nil {
		return writeEditorError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"approvals": reqs})
}

// ----- activity and export -----

// ListActivity returns the floor's activity log.
func (h *LifecycleHandler) ListActivity(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !actor.Capabilities().CanViewLogs {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "role cannot view activity"})
	}
	floorID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	entries, err := h.Activity.ListByFloor(c.Request().Context(), floorID, limit)
	if err != nil {
		return writeEditorError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"activity": entries})
}

// ExportCSV streams the current layout as CSV.  While a draft is open
// the draft is exported, otherwise the published baseline.
func (h *LifecycleHandler) ExportCSV(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !actor.Capabilities().CanExport {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "role cannot export"})
	}
	floorID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor id"})
	}
	s, err := h.Sessions.Acquire(c.Request().Context(), floorID)
	if err != nil {
		return writeEditorError(c, err)
	}
	var buf bytes.Buffer
	err = s.Do(func(lc *editor.Lifecycle) error {
		layout := lc.Baseline()
		if ed, err := lc.Editor(); err == nil {
			layout = ed.Draft()
		}
		return editor.ExportCSV(&buf, layout)
	})
	if err != nil {
		return writeEditorError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="floor-plan.csv"`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
