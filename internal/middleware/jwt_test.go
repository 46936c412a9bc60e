package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-floor-plan/internal/middleware"
	"github.com/iliyamo/restaurant-floor-plan/internal/model"
	"github.com/iliyamo/restaurant-floor-plan/internal/permission"
	"github.com/iliyamo/restaurant-floor-plan/internal/utils"
)

const testSecret = "test-secret"

func ping(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/ping", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, mw...)
	return e
}

func get(e *echo.Echo, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// withRole stands in for JWTAuth when only the role claim matters.
func withRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("role", role)
			return next(c)
		}
	}
}

func TestJWTAuthNormalizesClaims(t *testing.T) {
	var gotID, gotRole interface{}
	e := echo.New()
	e.GET("/ping", func(c echo.Context) error {
		gotID = c.Get("user_id")
		gotRole = c.Get("role")
		return c.NoContent(http.StatusOK)
	}, middleware.JWTAuth(testSecret))

	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleManager, 5)
	require.NoError(t, err)

	rec := get(e, tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	// The numeric sub claim arrives as float64; handlers must see uint64.
	require.Equal(t, uint64(42), gotID)
	require.Equal(t, model.RoleManager, gotRole)
}

func TestJWTAuthRejectsBadTokens(t *testing.T) {
	e := ping(middleware.JWTAuth(testSecret))

	require.Equal(t, http.StatusUnauthorized, get(e, "").Code)
	require.Equal(t, http.StatusUnauthorized, get(e, "not-a-jwt").Code)

	// Valid shape, wrong key.
	forged, err := utils.NewAccessToken("other-secret", 1, model.RoleOwner, 5)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, get(e, forged.Token).Code)

	// Signed correctly but missing the role claim.
	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 7,
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, get(e, noRole).Code)
}

func TestRequireRole(t *testing.T) {
	allowed := ping(withRole(model.RoleOwner), middleware.RequireRole(model.RoleOwner, model.RoleManager))
	require.Equal(t, http.StatusOK, get(allowed, "").Code)

	denied := ping(withRole(model.RoleStaff), middleware.RequireRole(model.RoleOwner, model.RoleManager))
	require.Equal(t, http.StatusForbidden, get(denied, "").Code)

	missing := ping(middleware.RequireRole(model.RoleOwner))
	require.Equal(t, http.StatusForbidden, get(missing, "").Code)
}

func TestRequireCapability(t *testing.T) {
	canEdit := func(p permission.Capabilities) bool { return p.CanEditDrafts }

	staff := ping(withRole(model.RoleStaff), middleware.RequireCapability(canEdit))
	require.Equal(t, http.StatusOK, get(staff, "").Code)

	viewer := ping(withRole(model.RoleViewer), middleware.RequireCapability(canEdit))
	require.Equal(t, http.StatusForbidden, get(viewer, "").Code)
}
