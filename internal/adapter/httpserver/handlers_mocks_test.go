package httpserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/convopulse/convopulse/internal/analytics"
	"github.com/convopulse/convopulse/internal/domain"
	"github.com/convopulse/convopulse/internal/platform/config"
	"github.com/labstack/echo/v4"
)

// --- Mock implementations ---

type mockAppService struct {
	submitRatingFn    func(ctx context.Context, draft domain.RatingDraft) (*domain.Rating, error)
	listRatingsFn     func(ctx context.Context, filter domain.ListFilter) ([]domain.Rating, error)
	getRatingFn       func(ctx context.Context, id int64) (*domain.Rating, error)
	deleteRatingFn    func(ctx context.Context, id int64) error
	importRatingsFn   func(ctx context.Context, drafts []domain.RatingDraft) (int, error)
	exportRatingsFn   func(ctx context.Context) ([]domain.Rating, error)
	summaryFn         func(ctx context.Context) (*analytics.Summary, error)
	distributionFn    func(ctx context.Context) (*analytics.Distribution, error)
	trendsFn          func(ctx context.Context, days int) (*analytics.Trend, error)
	sentimentReportFn func(ctx context.Context) (*analytics.SentimentReport, error)
}

func (m *mockAppService) SubmitRating(ctx context.Context, draft domain.RatingDraft) (*domain.Rating, error) {
	if m.submitRatingFn != nil {
		return m.submitRatingFn(ctx, draft)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) ListRatings(ctx context.Context, filter domain.ListFilter) ([]domain.Rating, error) {
	if m.listRatingsFn != nil {
		return m.listRatingsFn(ctx, filter)
	}
	return []domain.Rating{}, nil
}

func (m *mockAppService) GetRating(ctx context.Context, id int64) (*domain.Rating, error) {
	if m.getRatingFn != nil {
		return m.getRatingFn(ctx, id)
	}
	return nil, domain.ErrRatingNotFound
}

func (m *mockAppService) DeleteRating(ctx context.Context, id int64) error {
	if m.deleteRatingFn != nil {
		return m.deleteRatingFn(ctx, id)
	}
	return nil
}

func (m *mockAppService) ImportRatings(ctx context.Context, drafts []domain.RatingDraft) (int, error) {
	if m.importRatingsFn != nil {
		return m.importRatingsFn(ctx, drafts)
	}
	return len(drafts), nil
}

func (m *mockAppService) ExportRatings(ctx context.Context) ([]domain.Rating, error) {
	if m.exportRatingsFn != nil {
		return m.exportRatingsFn(ctx)
	}
	return []domain.Rating{}, nil
}

func (m *mockAppService) Summary(ctx context.Context) (*analytics.Summary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) Distribution(ctx context.Context) (*analytics.Distribution, error) {
	if m.distributionFn != nil {
		return m.distributionFn(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) Trends(ctx context.Context, days int) (*analytics.Trend, error) {
	if m.trendsFn != nil {
		return m.trendsFn(ctx, days)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) SentimentReport(ctx context.Context) (*analytics.SentimentReport, error) {
	if m.sentimentReportFn != nil {
		return m.sentimentReportFn(ctx)
	}
	return nil, errors.New("not implemented")
}

// --- Test helpers ---

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	srv := &Server{
		echo: echo.New(),
		config: &config.Config{
			Port:               "8080",
			RateLimitPerSecond: 1000,
			RateLimitBurst:     1000,
		},
		app:       app,
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	// Register routes so endpoints are available for testing
	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware()(handler)(c)
}

func sampleRating(id int64, stars int) domain.Rating {
	sentiments := map[int]domain.Sentiment{
		1: domain.SentimentNegative,
		2: domain.SentimentNegative,
		3: domain.SentimentNeutral,
		4: domain.SentimentPositive,
		5: domain.SentimentPositive,
	}
	return domain.Rating{
		ID:             id,
		ConversationID: "conv-1",
		Rating:         stars,
		Metadata:       map[string]any{},
		Timestamp:      time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
		Sentiment:      sentiments[stars],
	}
}
