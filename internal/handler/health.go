package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers load-balancer probes. It reports liveness only; a
// degraded Redis or MySQL connection does not fail the probe.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "ok",
		"service": "floor-plan-api",
	})
}
