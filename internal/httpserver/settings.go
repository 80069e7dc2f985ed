package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/premstore/storebot/internal/logging"
	"github.com/premstore/storebot/internal/settings"
)

type SettingsHandler struct {
	Settings *settings.Service
}

func (h *SettingsHandler) GetSettings(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "settings.get")

	cfg, err := h.Settings.Get(ctx)
	if err != nil {
		return storeError(c, l, "get_settings_failed", err, "")
	}
	return c.JSON(http.StatusOK, cfg)
}

func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "settings.update")

	var req settings.UpdateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_settings_failed", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	cfg, err := h.Settings.Update(ctx, req)
	if err != nil {
		return storeError(c, l, "update_settings_failed", err, "")
	}

	l.Info("update_settings_success")
	return c.JSON(http.StatusOK, cfg)
}
