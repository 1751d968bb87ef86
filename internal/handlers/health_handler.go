package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v5"
)

type HealthHandler struct {
	// checkCache is nil when the cache is in-process or disabled.
	checkCache func(ctx context.Context) error
}

func NewHealthHandler(checkCache func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{checkCache: checkCache}
}

func (h *HealthHandler) Health(c echo.Context) error {
	cache := "ok"
	if h.checkCache != nil {
		if err := h.checkCache(c.Request().Context()); err != nil {
			cache = err.Error()
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"cache":  cache,
	})
}
