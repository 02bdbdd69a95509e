package httpserver

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/convopulse/convopulse/internal/metrics"
	"github.com/convopulse/convopulse/internal/platform/correlation"
	apperrors "github.com/convopulse/convopulse/internal/platform/errors"
	"github.com/labstack/echo/v4"
)

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			structuredErr := apperrors.AsStructuredError(err)
			logError(c, structuredErr)
			metrics.HTTPErrorsTotal.WithLabelValues(string(structuredErr.Type)).Inc()

			if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

func logError(c echo.Context, err *apperrors.Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	switch err.Type {
	case apperrors.TypeValidation:
		slog.InfoContext(c.Request().Context(), "Validation error", attrs...)
	case apperrors.TypeNotFound:
		slog.InfoContext(c.Request().Context(), "Not found", attrs...)
	case apperrors.TypeConflict:
		slog.WarnContext(c.Request().Context(), "Conflict", attrs...)
	default:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(c.Request().Context(), "Internal error", attrs...)
	}
}
