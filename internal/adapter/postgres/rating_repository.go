package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/convopulse/convopulse/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ratingColumns must match the Scan order in scanRating.
const ratingColumns = `id, conversation_id, rating, feedback, user_id, metadata, created_at, sentiment`

// RatingRepo implements domain.RatingRepository backed by PostgreSQL.
type RatingRepo struct {
	pool *pgxpool.Pool
}

// NewRatingRepo creates a RatingRepo from the shared connection pool.
func NewRatingRepo(pool *pgxpool.Pool) *RatingRepo {
	return &RatingRepo{pool: pool}
}

func scanRating(row pgx.Row) (*domain.Rating, error) {
	var (
		rating       domain.Rating
		metadataJSON []byte
		sentiment    string
	)
	err := row.Scan(
		&rating.ID, &rating.ConversationID, &rating.Rating,
		&rating.Feedback, &rating.UserID, &metadataJSON,
		&rating.Timestamp, &sentiment,
	)
	if err != nil {
		return nil, err
	}

	rating.Sentiment = domain.Sentiment(sentiment)
	if err := json.Unmarshal(metadataJSON, &rating.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if rating.Metadata == nil {
		rating.Metadata = map[string]any{}
	}
	return &rating, nil
}

// Insert persists a fully-stamped rating (timestamp and sentiment already
// assigned) and returns the stored record with its generated id.
func (r *RatingRepo) Insert(ctx context.Context, rating *domain.Rating) (*domain.Rating, error) {
	metadata := rating.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	stored, err := scanRating(r.pool.QueryRow(ctx, `
		INSERT INTO ratings (conversation_id, rating, feedback, user_id, metadata, created_at, sentiment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+ratingColumns+`
	`, rating.ConversationID, rating.Rating, rating.Feedback, rating.UserID,
		metadataJSON, rating.Timestamp, string(rating.Sentiment)))
	if err != nil {
		return nil, fmt.Errorf("failed to insert rating: %w", err)
	}
	return stored, nil
}

// List returns ratings newest first, optionally bounded by inclusive rating
// filters, capped at filter.Limit records.
func (r *RatingRepo) List(ctx context.Context, filter domain.ListFilter) ([]domain.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings`
	args := make([]any, 0, 3)
	conds := make([]string, 0, 2)

	if filter.MinRating != nil {
		args = append(args, *filter.MinRating)
		conds = append(conds, fmt.Sprintf("rating >= $%d", len(args)))
	}
	if filter.MaxRating != nil {
		args = append(args, *filter.MaxRating)
		conds = append(conds, fmt.Sprintf("rating <= $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + conds[0]
		for _, cond := range conds[1:] {
			query += " AND " + cond
		}
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	return r.queryRatings(ctx, query, args...)
}

// GetByID returns a single rating or domain.ErrRatingNotFound.
func (r *RatingRepo) GetByID(ctx context.Context, id int64) (*domain.Rating, error) {
	rating, err := scanRating(r.pool.QueryRow(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRatingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return rating, nil
}

// Delete removes a rating by id, returning domain.ErrRatingNotFound if no
// row existed.
func (r *RatingRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ratings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRatingNotFound
	}
	return nil
}

// ListAll returns the entire record set newest first. Used by the analytics
// engine and export.
func (r *RatingRepo) ListAll(ctx context.Context) ([]domain.Rating, error) {
	return r.queryRatings(ctx, `SELECT `+ratingColumns+` FROM ratings ORDER BY created_at DESC`)
}

func (r *RatingRepo) queryRatings(ctx context.Context, query string, args ...any) ([]domain.Rating, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]domain.Rating, 0)
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, *rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ratings: %w", err)
	}
	return ratings, nil
}
