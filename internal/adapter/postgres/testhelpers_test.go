package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/convopulse/convopulse/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// insertTestRating persists a rating with defaults for testing and returns
// the stored record.
func insertTestRating(t *testing.T, pool *pgxpool.Pool, conversationID string, stars int, at time.Time) *domain.Rating {
	t.Helper()

	sentiment := domain.SentimentNegative
	switch {
	case stars >= 4:
		sentiment = domain.SentimentPositive
	case stars == 3:
		sentiment = domain.SentimentNeutral
	}

	repo := NewRatingRepo(pool)
	stored, err := repo.Insert(context.Background(), &domain.Rating{
		ConversationID: conversationID,
		Rating:         stars,
		Metadata:       map[string]any{},
		Timestamp:      at,
		Sentiment:      sentiment,
	})
	require.NoError(t, err)
	require.NotZero(t, stored.ID)

	return stored
}
