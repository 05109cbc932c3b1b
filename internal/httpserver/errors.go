package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_api/internal/service"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusUnprocessableEntity},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrLocked, http.StatusLocked},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrSearchUnavailable, http.StatusServiceUnavailable},
}

// failed logs err under event and turns it into the HTTP error the client sees.
func failed(l *slog.Logger, event string, err error) error {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			l.Warn(event, "status", s.status, "error", err)
			return echo.NewHTTPError(s.status, service.Message(err, http.StatusText(s.status)))
		}
	}
	l.Error(event, "status", http.StatusInternalServerError, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

func invalidBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", http.StatusUnprocessableEntity, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid body")
}

func pathID(c echo.Context, l *slog.Logger, event string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		l.Warn(event, "status", http.StatusUnprocessableEntity, "reason", "bad id", "id", c.Param("id"))
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, "id must be a positive integer")
	}
	return uint(id), nil
}
