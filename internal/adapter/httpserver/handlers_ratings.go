package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/convopulse/convopulse/internal/domain"
	apperrors "github.com/convopulse/convopulse/internal/platform/errors"
	"github.com/labstack/echo/v4"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type submitRatingRequest struct {
	ConversationID string         `json:"conversation_id"`
	Rating         int            `json:"rating"`
	Feedback       *string        `json:"feedback"`
	UserID         *string        `json:"user_id"`
	Metadata       map[string]any `json:"metadata"`
}

func (r submitRatingRequest) toDraft() domain.RatingDraft {
	return domain.RatingDraft{
		ConversationID: r.ConversationID,
		Rating:         r.Rating,
		Feedback:       r.Feedback,
		UserID:         r.UserID,
		Metadata:       r.Metadata,
	}
}

type listRatingsResponse struct {
	Count   int             `json:"count"`
	Ratings []domain.Rating `json:"ratings"`
}

func (s *Server) handleSubmitRating(c echo.Context) error {
	var req submitRatingRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	stored, err := s.app.SubmitRating(c.Request().Context(), req.toDraft())
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusCreated, stored); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListRatings(c echo.Context) error {
	filter := domain.ListFilter{Limit: defaultListLimit}

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.ValidationError("limit must be an integer").WithField("limit", raw)
		}
		filter.Limit = clampLimit(limit)
	}

	minRating, err := parseRatingBound(c, "min_rating")
	if err != nil {
		return err
	}
	maxRating, err := parseRatingBound(c, "max_rating")
	if err != nil {
		return err
	}
	// Inverted bounds are not an error; both filters apply and the match set
	// is simply empty.
	filter.MinRating = minRating
	filter.MaxRating = maxRating

	ratings, err := s.app.ListRatings(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	response := listRatingsResponse{Count: len(ratings), Ratings: ratings}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetRating(c echo.Context) error {
	id, err := parseRatingID(c)
	if err != nil {
		return err
	}

	rating, err := s.app.GetRating(c.Request().Context(), id)
	if errors.Is(err, domain.ErrRatingNotFound) {
		return apperrors.NotFoundError("rating not found").WithField("id", id)
	}
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, rating); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteRating(c echo.Context) error {
	id, err := parseRatingID(c)
	if err != nil {
		return err
	}

	err = s.app.DeleteRating(c.Request().Context(), id)
	if errors.Is(err, domain.ErrRatingNotFound) {
		return apperrors.NotFoundError("rating not found").WithField("id", id)
	}
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, map[string]string{"message": "rating deleted"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func parseRatingID(c echo.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.ValidationError("id must be an integer").WithField("id", raw)
	}
	return id, nil
}

func parseRatingBound(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.ValidationError(name + " must be an integer").WithField(name, raw)
	}
	if value < 1 || value > 5 {
		return nil, apperrors.ValidationError(name + " must be between 1 and 5").WithField(name, value)
	}
	return &value, nil
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
