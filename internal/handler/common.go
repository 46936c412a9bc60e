package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel values used in getUserID
	"net/http"
	"strconv" // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/restaurant-floor-plan/internal/editor"
	"github.com/iliyamo/restaurant-floor-plan/internal/permission"
	"github.com/iliyamo/restaurant-floor-plan/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// currentActor builds the permission actor from the JWT claims the auth
// middleware stored in context.
func currentActor(c echo.Context) (permission.Actor, error) {
	uid, err := getUserID(c)
	if err != nil {
		return permission.Actor{}, err
	}
	role, _ := c.Get("role").(string)
	if role == "" {
		return permission.Actor{}, errors.New("missing role in context")
	}
	return permission.Actor{ID: uid, Role: role}, nil
}

// paramUint64 parses a numeric path parameter.
func paramUint64(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

func paramValueUint64(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 10, 64)
}

// writeEditorError translates engine and repository errors into HTTP
// responses.  Unknown errors fall through as 500.
func writeEditorError(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	var perm *editor.PermissionError
	if errors.As(err, &perm) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": perm.Error()})
	}
	var valErr *editor.ValidationError
	if errors.As(err, &valErr) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":      "floor plan has validation errors",
			"validation": valErr.Result,
		})
	}
	var persist *editor.PersistenceError
	if errors.As(err, &persist) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": persist.Error(), "retryable": true})
	}

	switch {
	case errors.Is(err, editor.ErrEntityNotFound),
		errors.Is(err, editor.ErrVersionNotFound),
		errors.Is(err, repository.ErrFloorNotFound),
		errors.Is(err, repository.ErrApprovalNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, editor.ErrDraftLocked):
		return c.JSON(http.StatusLocked, echo.Map{"error": err.Error()})
	case errors.Is(err, editor.ErrInvalidGeometry),
		errors.Is(err, editor.ErrInsufficientSelection):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, editor.ErrNotRequester),
		errors.Is(err, editor.ErrRollbackWindowExceeded),
		errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, editor.ErrNoActiveDraft),
		errors.Is(err, editor.ErrDraftInProgress),
		errors.Is(err, editor.ErrNothingToPublish),
		errors.Is(err, editor.ErrEntityDeleted),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrFloorNameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
