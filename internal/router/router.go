package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-floor-plan/internal/config"
	"github.com/iliyamo/restaurant-floor-plan/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/restaurant-floor-plan/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/iliyamo/restaurant-floor-plan/internal/model"
	"github.com/iliyamo/restaurant-floor-plan/internal/permission"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Register a POST endpoint to refresh access tokens at /v1/auth/refresh. This rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Register a POST endpoint to issue a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a refresh token in the body or a bearer token in
	// the Authorization header, so it does not sit behind the JWT middleware.
	g.POST("/logout", a.Logout)

	// Create another group for routes that require a valid access token.  All
	// handlers registered on this group will execute the JWTAuth middleware
	// before being invoked.
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Register a GET endpoint at /v1/me that returns the authenticated user's information.
	auth.GET("/me", a.Me)

	// Additionally map POST /v1/logout to the same handler so clients can
	// call either path with a valid refresh token in the body.
	e.POST("/v1/logout", a.Logout)
}

// RegisterFloorPlan registers the floor, editor and lifecycle endpoints.
// Everything here requires a valid access token; fine-grained permissions
// are enforced per handler through the role's capability set.  Version
// reads are immutable once written, which makes them the one place the
// Redis response cache is safe to apply.
func RegisterFloorPlan(e *echo.Echo,
	f *handler.FloorHandler, ed *handler.EditorHandler, lh *handler.LifecycleHandler,
	jwtSecret string, rdb *redis.Client) {

	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	// Every known role may reach these routes; handlers decide what each
	// role is actually allowed to do.
	g.Use(middleware.RequireRole(model.RoleOwner, model.RoleManager, model.RoleStaff, model.RoleViewer))

	// ----- floors -----
	g.POST("/floors", f.Create)
	g.GET("/floors", f.List)
	g.GET("/floors/:id", f.Get)
	g.PUT("/floors/:id", f.UpdateMeta)
	g.DELETE("/floors/:id", f.Delete)

	// ----- editing session -----
	// Viewers never get an editing session, so the whole surface sits
	// behind the draft-editing capability.
	s := g.Group("/floors/:id/editor", middleware.RequireCapability(func(p permission.Capabilities) bool {
		return p.CanEditDrafts
	}))
	s.POST("/session", ed.Open)
	s.GET("/session", ed.State)
	s.GET("/session/recovery", ed.Recovery)
	s.POST("/events", ed.Event)
	s.POST("/tool", ed.Tool)
	s.POST("/select", ed.Select)
	s.POST("/tables", ed.CreateTable)
	s.PATCH("/tables/:entityID", ed.PatchTable)
	s.PATCH("/sections/:entityID", ed.PatchSection)
	s.DELETE("/entities/:entityID", ed.DeleteEntity)
	s.POST("/entities/:entityID/restore", ed.RestoreEntity)
	s.POST("/combos", ed.CreateCombo)
	s.DELETE("/combos/:comboID", ed.DeleteCombo)
	s.POST("/arrange", ed.Arrange)
	s.POST("/nudge", ed.Nudge)
	s.POST("/undo", ed.Undo)
	s.POST("/redo", ed.Redo)
	s.POST("/undo-to", ed.UndoTo)
	s.GET("/actions", ed.Actions)
	s.POST("/validate", ed.Validate)
	s.POST("/autofix", ed.AutoFix)
	s.POST("/save", ed.Save)
	s.POST("/discard", ed.Discard)
	s.DELETE("/session", ed.Discard)

	// ----- publish, versions, approvals -----
	g.POST("/floors/:id/publish", lh.Publish)
	g.GET("/floors/:id/versions", lh.ListVersions)

	// A published version never changes, so its reads go through the
	// response cache.  Register the static compare path before the
	// parameterized one.
	cached := g.Group("", middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	cached.GET("/floors/:id/versions/compare", lh.CompareVersions)
	cached.GET("/floors/:id/versions/:number", lh.GetVersion)

	g.POST("/floors/:id/versions/:number/restore", lh.Restore)
	g.POST("/floors/:id/approval/approve", lh.Approve)
	g.POST("/floors/:id/approval/reject", lh.Reject)
	g.POST("/floors/:id/approval/request-changes", lh.RequestChanges)
	g.POST("/floors/:id/approval/withdraw", lh.Withdraw)
	g.GET("/floors/:id/approvals", lh.ListApprovals)
	g.GET("/approvals/pending", lh.PendingApprovals)

	// Resolution by request id; resolves the owning floor internally.
	g.POST("/approvals/:requestID/approve", lh.ApproveByRequest)
	g.POST("/approvals/:requestID/reject", lh.RejectByRequest)
	g.POST("/approvals/:requestID/request-changes", lh.RequestChangesByRequest)
	g.POST("/approvals/:requestID/withdraw", lh.WithdrawByRequest)

	// ----- activity and export -----
	g.GET("/floors/:id/activity", lh.ListActivity)
	g.GET("/floors/:id/export", lh.ExportCSV)
}
