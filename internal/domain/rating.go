package domain

import (
	"context"
	"time"
)

// Rating is a single submitted conversation quality score. Records are
// immutable after insert; the only mutation the system knows is a hard
// delete by id.
type Rating struct {
	ID             int64          `json:"id"`
	ConversationID string         `json:"conversation_id"`
	Rating         int            `json:"rating"`
	Feedback       *string        `json:"feedback"`
	UserID         *string        `json:"user_id"`
	Metadata       map[string]any `json:"metadata"`
	Timestamp      time.Time      `json:"timestamp"`
	Sentiment      Sentiment      `json:"sentiment"`
}

// RatingDraft is a caller-supplied rating before the system assigns id,
// timestamp and sentiment.
type RatingDraft struct {
	ConversationID string
	Rating         int
	Feedback       *string
	UserID         *string
	Metadata       map[string]any
}

// ListFilter scopes a rating listing. Bounds are inclusive; nil means
// unbounded. Limit caps the number of returned records.
type ListFilter struct {
	Limit     int
	MinRating *int
	MaxRating *int
}

// RatingRepository is the persistence contract for rating records.
// Listings are ordered by timestamp descending (newest first).
type RatingRepository interface {
	Insert(ctx context.Context, rating *Rating) (*Rating, error)
	List(ctx context.Context, filter ListFilter) ([]Rating, error)
	GetByID(ctx context.Context, id int64) (*Rating, error)
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]Rating, error)
}
