package restapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// health reports record-store and media-host connectivity, mirroring the
// startup checks. A down record store makes the service unusable, so only
// that case degrades the status code.
func (h *Handler) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := map[string]string{
		"database": "up",
		"media":    "up",
	}
	code := http.StatusOK

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		status["database"] = "down"
		code = http.StatusServiceUnavailable
	}
	if err := h.store.Ping(ctx); err != nil {
		status["media"] = "down"
	}
	return c.JSON(code, status)
}
