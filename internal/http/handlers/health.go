package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"
)

// HandleHealthz reports service and database health.
func (h *Handlers) HandleHealthz(c *echo.Context) error {
	if err := h.Store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":   "degraded",
			"database": "unreachable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "ok",
	})
}
