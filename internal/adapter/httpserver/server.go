package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/convopulse/convopulse/internal/analytics"
	"github.com/convopulse/convopulse/internal/domain"
	"github.com/convopulse/convopulse/internal/platform/config"
	"github.com/labstack/echo/v4"
)

type appService interface {
	SubmitRating(ctx context.Context, draft domain.RatingDraft) (*domain.Rating, error)
	ListRatings(ctx context.Context, filter domain.ListFilter) ([]domain.Rating, error)
	GetRating(ctx context.Context, id int64) (*domain.Rating, error)
	DeleteRating(ctx context.Context, id int64) error
	ImportRatings(ctx context.Context, drafts []domain.RatingDraft) (int, error)
	ExportRatings(ctx context.Context) ([]domain.Rating, error)
	Summary(ctx context.Context) (*analytics.Summary, error)
	Distribution(ctx context.Context) (*analytics.Distribution, error)
	Trends(ctx context.Context, days int) (*analytics.Trend, error)
	SentimentReport(ctx context.Context) (*analytics.SentimentReport, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app          appService
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, app appService, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
