package app

import (
	"context"
	"strconv"
	"strings"

	"github.com/convopulse/convopulse/internal/analytics"
	"github.com/convopulse/convopulse/internal/domain"
	"github.com/convopulse/convopulse/internal/metrics"
	"github.com/convopulse/convopulse/internal/platform/errors"
	"github.com/convopulse/convopulse/internal/sentiment"
	"github.com/jonboulle/clockwork"
)

// Service is the application layer, the only component that references both
// the record store and the analytics engine. It orchestrates all use cases.
type Service struct {
	store  domain.RatingRepository
	engine *analytics.Engine
	clock  clockwork.Clock
}

// NewService creates the application layer service.
func NewService(store domain.RatingRepository, engine *analytics.Engine, clock clockwork.Clock) *Service {
	return &Service{
		store:  store,
		engine: engine,
		clock:  clock,
	}
}

// SubmitRating validates a draft, stamps submission time and sentiment, and
// persists the record. Sentiment is derived exactly once, here.
func (s *Service) SubmitRating(ctx context.Context, draft domain.RatingDraft) (*domain.Rating, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	metadata := draft.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	feedback := ""
	if draft.Feedback != nil {
		feedback = *draft.Feedback
	}

	rating := &domain.Rating{
		ConversationID: draft.ConversationID,
		Rating:         draft.Rating,
		Feedback:       draft.Feedback,
		UserID:         draft.UserID,
		Metadata:       metadata,
		Timestamp:      s.clock.Now().UTC(),
		Sentiment:      sentiment.Classify(draft.Rating, feedback),
	}

	stored, err := s.store.Insert(ctx, rating)
	if err != nil {
		return nil, err
	}

	metrics.RatingsSubmittedTotal.WithLabelValues(strconv.Itoa(stored.Rating), string(stored.Sentiment)).Inc()
	return stored, nil
}

// ListRatings returns the newest ratings matching the filter.
func (s *Service) ListRatings(ctx context.Context, filter domain.ListFilter) ([]domain.Rating, error) {
	return s.store.List(ctx, filter)
}

// GetRating retrieves a single rating by id.
func (s *Service) GetRating(ctx context.Context, id int64) (*domain.Rating, error) {
	return s.store.GetByID(ctx, id)
}

// DeleteRating removes a rating by id.
func (s *Service) DeleteRating(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	metrics.RatingsDeletedTotal.Inc()
	return nil
}

// ImportRatings inserts drafts sequentially in the given order. The import is
// not atomic: on failure, earlier inserts stay committed and the returned count
// says how many made it in before the error.
func (s *Service) ImportRatings(ctx context.Context, drafts []domain.RatingDraft) (int, error) {
	imported := 0
	for i, draft := range drafts {
		if _, err := s.SubmitRating(ctx, draft); err != nil {
			metrics.ImportFailuresTotal.Inc()
			return imported, errors.AsStructuredError(err).
				WithField("record_index", i).
				WithField("imported_count", imported)
		}
		imported++
		metrics.RatingsImportedTotal.Inc()
	}
	return imported, nil
}

// ExportRatings returns every stored rating, newest first.
func (s *Service) ExportRatings(ctx context.Context) ([]domain.Rating, error) {
	return s.store.ListAll(ctx)
}

// Summary delegates to the analytics engine.
func (s *Service) Summary(ctx context.Context) (*analytics.Summary, error) {
	return s.engine.Summary(ctx)
}

// Distribution delegates to the analytics engine.
func (s *Service) Distribution(ctx context.Context) (*analytics.Distribution, error) {
	return s.engine.Distribution(ctx)
}

// Trends delegates to the analytics engine.
func (s *Service) Trends(ctx context.Context, days int) (*analytics.Trend, error) {
	return s.engine.Trends(ctx, days)
}

// SentimentReport delegates to the analytics engine.
func (s *Service) SentimentReport(ctx context.Context) (*analytics.SentimentReport, error) {
	return s.engine.SentimentReport(ctx)
}

func validateDraft(draft domain.RatingDraft) error {
	if strings.TrimSpace(draft.ConversationID) == "" {
		return errors.ValidationError("conversation_id is required").
			WithField("field", "conversation_id")
	}
	if draft.Rating < 1 || draft.Rating > 5 {
		return errors.ValidationError("rating must be between 1 and 5").
			WithField("field", "rating").
			WithField("value", draft.Rating)
	}
	return nil
}
