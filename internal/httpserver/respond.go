package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/premstore/storebot/internal/storage"
	"github.com/premstore/storebot/internal/store"
)

// The admin UI expects every failure as {"error": message}.
func errorResponse(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

// storeError renders a store failure. notFoundMsg keeps the route's own
// wording for missing records; everything else derives from the error.
func storeError(c echo.Context, l *slog.Logger, event string, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, store.ErrValidation):
		msg := trimKind(err)
		l.Warn(event, "status", 400, "reason", msg)
		return errorResponse(c, http.StatusBadRequest, msg)
	case errors.Is(err, store.ErrNotFound):
		l.Warn(event, "status", 404, "reason", notFoundMsg, "error", err)
		return errorResponse(c, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, store.ErrConflict):
		msg := trimKind(err)
		l.Warn(event, "status", 409, "reason", msg)
		return errorResponse(c, http.StatusConflict, msg)
	case errors.Is(err, store.ErrInsufficientFunds):
		msg := trimKind(err)
		l.Warn(event, "status", 402, "reason", msg)
		return errorResponse(c, http.StatusPaymentRequired, msg)
	case errors.Is(err, storage.ErrUnavailable):
		l.Error(event, "status", 503, "error", err)
		return errorResponse(c, http.StatusServiceUnavailable, "storage unavailable")
	default:
		l.Error(event, "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}
}

// trimKind strips the taxonomy prefix so the payload reads like a sentence.
func trimKind(err error) string {
	msg := err.Error()
	for _, kind := range []error{store.ErrValidation, store.ErrNotFound, store.ErrConflict, store.ErrInsufficientFunds} {
		if p := kind.Error() + ": "; strings.HasPrefix(msg, p) {
			return strings.TrimPrefix(msg, p)
		}
	}
	return msg
}
