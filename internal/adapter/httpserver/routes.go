package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(correlationMiddleware)
	s.echo.Use(ErrorHandlingMiddleware())

	writeLimiter := newRateLimiter(s.config.RateLimitPerSecond, s.config.RateLimitBurst)

	s.echo.GET("/", s.handleServiceInfo)

	s.echo.POST("/ratings", s.handleSubmitRating, writeLimiter)
	s.echo.GET("/ratings", s.handleListRatings)
	s.echo.GET("/ratings/:id", s.handleGetRating)
	s.echo.DELETE("/ratings/:id", s.handleDeleteRating, writeLimiter)

	s.echo.GET("/analytics/summary", s.handleSummary)
	s.echo.GET("/analytics/distribution", s.handleDistribution)
	s.echo.GET("/analytics/trends", s.handleTrends)
	s.echo.GET("/analytics/sentiment", s.handleSentimentReport)

	s.echo.GET("/export", s.handleExport)
	s.echo.POST("/import", s.handleImport, writeLimiter)

	s.registerHealthRoutes()

	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.Info("Request", attrs...)
			return nil
		},
	})
}
