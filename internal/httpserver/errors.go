package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/general_store/internal/service"
)

// fail maps a service error onto an HTTP error and logs it under event.
// Internal causes are logged, never returned to the client.
func fail(l *slog.Logger, event string, err error) error {
	var (
		fe *service.FieldError
		se *service.StockError
	)
	switch {
	case errors.As(err, &fe):
		l.Warn(event, "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"error": "validation", "field": fe.Field, "message": fe.Message,
		})
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"error": "validation", "message": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		l.Info(event, "status", 401, "reason", "invalid credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrUnauthenticated):
		l.Info(event, "status", 401, "reason", "unauthenticated", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	case errors.As(err, &se):
		l.Warn(event, "status", 409, "reason", "insufficient stock", "product_id", se.ProductID)
		return echo.NewHTTPError(http.StatusConflict, echo.Map{
			"error":      "insufficient_stock",
			"product_id": se.ProductID,
			"product":    se.Name,
			"requested":  se.Requested,
			"available":  se.Available,
		})
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "reason", "conflict", "error", err)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func badBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}

func idParam(c echo.Context, l *slog.Logger, event, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		l.Warn(event, "status", 400, "reason", name+" is not a uuid", "error", err)
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, name+" is not a uuid")
	}
	return id, nil
}

// optBool parses a tri-state query flag; empty means "not set".
func optBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	var v bool
	if err := echo.QueryParamsBinder(c).Bool(name, &v).BindError(); err != nil {
		return nil, err
	}
	return &v, nil
}
