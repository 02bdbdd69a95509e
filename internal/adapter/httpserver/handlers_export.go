package httpserver

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/convopulse/convopulse/internal/domain"
	"github.com/convopulse/convopulse/internal/metrics"
	apperrors "github.com/convopulse/convopulse/internal/platform/errors"
	"github.com/labstack/echo/v4"
)

var csvHeader = []string{"id", "conversation_id", "rating", "feedback", "user_id", "metadata", "timestamp", "sentiment"}

type importResponse struct {
	Message       string `json:"message"`
	ImportedCount int    `json:"imported_count"`
}

func (s *Server) handleExport(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		return apperrors.ValidationError("format must be json or csv").WithField("format", format)
	}

	ratings, err := s.app.ExportRatings(c.Request().Context())
	if err != nil {
		return err
	}

	metrics.ExportsTotal.WithLabelValues(format).Inc()

	if format == "csv" {
		return s.writeCSVExport(c, ratings)
	}

	if err := c.JSON(http.StatusOK, map[string]any{"ratings": ratings}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) writeCSVExport(c echo.Context, ratings []domain.Rating) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return apperrors.InternalError("failed to encode export", err)
	}
	for _, r := range ratings {
		row, err := csvRow(r)
		if err != nil {
			return apperrors.InternalError("failed to encode export", err).WithField("id", r.ID)
		}
		if err := w.Write(row); err != nil {
			return apperrors.InternalError("failed to encode export", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.InternalError("failed to encode export", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="ratings.csv"`)
	if err := c.Blob(http.StatusOK, "text/csv", buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send CSV response: %w", err)
	}
	return nil
}

func csvRow(r domain.Rating) ([]string, error) {
	metadata, err := json.Marshal(r.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	feedback := ""
	if r.Feedback != nil {
		feedback = *r.Feedback
	}
	userID := ""
	if r.UserID != nil {
		userID = *r.UserID
	}

	return []string{
		strconv.FormatInt(r.ID, 10),
		r.ConversationID,
		strconv.Itoa(r.Rating),
		feedback,
		userID,
		string(metadata),
		r.Timestamp.Format(time.RFC3339),
		string(r.Sentiment),
	}, nil
}

func (s *Server) handleImport(c echo.Context) error {
	var records []submitRatingRequest
	if err := c.Bind(&records); err != nil {
		return apperrors.ValidationError("request body must be an array of rating records")
	}

	// An empty array is a valid import of zero records, so an exported empty
	// dataset can be re-imported as-is.
	drafts := make([]domain.RatingDraft, len(records))
	for i, record := range records {
		drafts[i] = record.toDraft()
	}

	count, err := s.app.ImportRatings(c.Request().Context(), drafts)
	if err != nil {
		return err
	}

	response := importResponse{
		Message:       fmt.Sprintf("imported %d ratings", count),
		ImportedCount: count,
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
