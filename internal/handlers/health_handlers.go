package handlers

import (
	"net/http"
	"time"

	"attendhq/internal/caching"
	"attendhq/internal/repositories"

	"github.com/labstack/echo/v4"
)

// HealthCheck reports process liveness.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck verifies the database and cache are reachable. The cache
// being down degrades performance but not correctness, so it is reported
// without failing readiness.
func ReadinessCheck(db repositories.Database, cacheSvc caching.CacheService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		checks := map[string]string{"database": "ok", "cache": "ok"}
		status := http.StatusOK

		if _, err := db.Exec(ctx, "SELECT 1"); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := cacheSvc.Ping(ctx); err != nil {
			checks["cache"] = "degraded: " + err.Error()
		}

		return c.JSON(status, checks)
	}
}
