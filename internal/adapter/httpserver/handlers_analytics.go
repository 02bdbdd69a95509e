package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	apperrors "github.com/convopulse/convopulse/internal/platform/errors"
	"github.com/labstack/echo/v4"
)

const (
	defaultTrendDays = 7
	maxTrendDays     = 365
)

func (s *Server) handleSummary(c echo.Context) error {
	summary, err := s.app.Summary(c.Request().Context())
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, summary); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDistribution(c echo.Context) error {
	distribution, err := s.app.Distribution(c.Request().Context())
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, distribution); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleTrends(c echo.Context) error {
	days := defaultTrendDays
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.ValidationError("days must be an integer").WithField("days", raw)
		}
		days = clampDays(parsed)
	}

	trend, err := s.app.Trends(c.Request().Context(), days)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, trend); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleSentimentReport(c echo.Context) error {
	report, err := s.app.SentimentReport(c.Request().Context())
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, report); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func clampDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > maxTrendDays {
		return maxTrendDays
	}
	return days
}
