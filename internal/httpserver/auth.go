package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/premstore/storebot/internal/hash"
	"github.com/premstore/storebot/internal/logging"
	"github.com/premstore/storebot/internal/tokens"
)

type AuthHandler struct {
	PasswordHash string
	JWTSecret    []byte
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.login")

	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	if !hash.CheckPassword(h.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return errorResponse(c, http.StatusUnauthorized, "invalid credentials")
	}

	tok, err := tokens.NewAdminToken(h.JWTSecret)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot create token", "error", err)
		return errorResponse(c, http.StatusInternalServerError, "cannot create token")
	}

	l.Info("login_success")
	return c.JSON(http.StatusOK, echo.Map{"token": tok})
}
