package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/convopulse/convopulse/internal/analytics"
	"github.com/convopulse/convopulse/internal/domain"
	platformerrors "github.com/convopulse/convopulse/internal/platform/errors"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockRatingRepo struct {
	insertFn  func(ctx context.Context, rating *domain.Rating) (*domain.Rating, error)
	listFn    func(ctx context.Context, filter domain.ListFilter) ([]domain.Rating, error)
	getByIDFn func(ctx context.Context, id int64) (*domain.Rating, error)
	deleteFn  func(ctx context.Context, id int64) error
	listAllFn func(ctx context.Context) ([]domain.Rating, error)
}

func (m *mockRatingRepo) Insert(ctx context.Context, rating *domain.Rating) (*domain.Rating, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, rating)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockRatingRepo) List(ctx context.Context, filter domain.ListFilter) ([]domain.Rating, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockRatingRepo) GetByID(ctx context.Context, id int64) (*domain.Rating, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockRatingRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockRatingRepo) ListAll(ctx context.Context) ([]domain.Rating, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, fmt.Errorf("not implemented")
}

func newTestService(repo *mockRatingRepo) (*Service, clockwork.Clock) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	engine := analytics.NewEngine(repo, clock)
	return NewService(repo, engine, clock), clock
}

func echoInsert(ctx context.Context, rating *domain.Rating) (*domain.Rating, error) {
	stored := *rating
	stored.ID = 1
	return &stored, nil
}

// --- SubmitRating ---

func TestSubmitRating_StampsTimestampAndSentiment(t *testing.T) {
	repo := &mockRatingRepo{insertFn: echoInsert}
	service, clock := newTestService(repo)

	feedback := "great answer"
	stored, err := service.SubmitRating(context.Background(), domain.RatingDraft{
		ConversationID: "conv-1",
		Rating:         5,
		Feedback:       &feedback,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ID)
	assert.Equal(t, domain.SentimentPositive, stored.Sentiment)
	assert.True(t, stored.Timestamp.Equal(clock.Now().UTC()))
	assert.Equal(t, map[string]any{}, stored.Metadata)
	require.NotNil(t, stored.Feedback)
	assert.Equal(t, "great answer", *stored.Feedback)
	assert.Nil(t, stored.UserID)
}

func TestSubmitRating_SentimentPerStarLevel(t *testing.T) {
	repo := &mockRatingRepo{insertFn: echoInsert}
	service, _ := newTestService(repo)

	expected := map[int]domain.Sentiment{
		1: domain.SentimentNegative,
		2: domain.SentimentNegative,
		3: domain.SentimentNeutral,
		4: domain.SentimentPositive,
		5: domain.SentimentPositive,
	}
	for stars, want := range expected {
		stored, err := service.SubmitRating(context.Background(), domain.RatingDraft{
			ConversationID: "conv-1",
			Rating:         stars,
		})
		require.NoError(t, err)
		assert.Equal(t, want, stored.Sentiment, "stars=%d", stars)
	}
}

func TestSubmitRating_MissingConversationID(t *testing.T) {
	service, _ := newTestService(&mockRatingRepo{})

	_, err := service.SubmitRating(context.Background(), domain.RatingDraft{
		ConversationID: "   ",
		Rating:         4,
	})

	require.Error(t, err)
	structured := platformerrors.AsStructuredError(err)
	require.NotNil(t, structured)
	assert.Equal(t, platformerrors.TypeValidation, structured.Type)
}

func TestSubmitRating_RatingOutOfRange(t *testing.T) {
	service, _ := newTestService(&mockRatingRepo{})

	for _, stars := range []int{0, 6, -1} {
		_, err := service.SubmitRating(context.Background(), domain.RatingDraft{
			ConversationID: "conv-1",
			Rating:         stars,
		})
		require.Error(t, err, "stars=%d", stars)
		structured := platformerrors.AsStructuredError(err)
		require.NotNil(t, structured)
		assert.Equal(t, platformerrors.TypeValidation, structured.Type)
	}
}

func TestSubmitRating_StoreError(t *testing.T) {
	storeErr := fmt.Errorf("connection reset")
	repo := &mockRatingRepo{
		insertFn: func(_ context.Context, _ *domain.Rating) (*domain.Rating, error) {
			return nil, storeErr
		},
	}
	service, _ := newTestService(repo)

	_, err := service.SubmitRating(context.Background(), domain.RatingDraft{
		ConversationID: "conv-1",
		Rating:         3,
	})
	assert.ErrorIs(t, err, storeErr)
}

// --- Passthrough operations ---

func TestListRatings_PassesFilterThrough(t *testing.T) {
	var gotFilter domain.ListFilter
	repo := &mockRatingRepo{
		listFn: func(_ context.Context, filter domain.ListFilter) ([]domain.Rating, error) {
			gotFilter = filter
			return []domain.Rating{}, nil
		},
	}
	service, _ := newTestService(repo)

	minRating := 2
	_, err := service.ListRatings(context.Background(), domain.ListFilter{Limit: 50, MinRating: &minRating})
	require.NoError(t, err)
	assert.Equal(t, 50, gotFilter.Limit)
	require.NotNil(t, gotFilter.MinRating)
	assert.Equal(t, 2, *gotFilter.MinRating)
}

func TestGetRating_NotFound(t *testing.T) {
	repo := &mockRatingRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.Rating, error) {
			return nil, domain.ErrRatingNotFound
		},
	}
	service, _ := newTestService(repo)

	_, err := service.GetRating(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrRatingNotFound)
}

func TestDeleteRating_Success(t *testing.T) {
	var deletedID int64
	repo := &mockRatingRepo{
		deleteFn: func(_ context.Context, id int64) error {
			deletedID = id
			return nil
		},
	}
	service, _ := newTestService(repo)

	require.NoError(t, service.DeleteRating(context.Background(), 7))
	assert.Equal(t, int64(7), deletedID)
}

func TestDeleteRating_NotFound(t *testing.T) {
	repo := &mockRatingRepo{
		deleteFn: func(_ context.Context, _ int64) error {
			return domain.ErrRatingNotFound
		},
	}
	service, _ := newTestService(repo)

	err := service.DeleteRating(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrRatingNotFound)
}

// --- ImportRatings ---

func TestImportRatings_AllSucceed(t *testing.T) {
	var inserted []string
	repo := &mockRatingRepo{
		insertFn: func(ctx context.Context, rating *domain.Rating) (*domain.Rating, error) {
			inserted = append(inserted, rating.ConversationID)
			return echoInsert(ctx, rating)
		},
	}
	service, _ := newTestService(repo)

	drafts := []domain.RatingDraft{
		{ConversationID: "conv-a", Rating: 5},
		{ConversationID: "conv-b", Rating: 3},
		{ConversationID: "conv-c", Rating: 1},
	}
	count, err := service.ImportRatings(context.Background(), drafts)

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, []string{"conv-a", "conv-b", "conv-c"}, inserted)
}

func TestImportRatings_StopsAtFirstFailure(t *testing.T) {
	calls := 0
	repo := &mockRatingRepo{
		insertFn: func(ctx context.Context, rating *domain.Rating) (*domain.Rating, error) {
			calls++
			if calls == 3 {
				return nil, fmt.Errorf("disk full")
			}
			return echoInsert(ctx, rating)
		},
	}
	service, _ := newTestService(repo)

	drafts := []domain.RatingDraft{
		{ConversationID: "conv-a", Rating: 5},
		{ConversationID: "conv-b", Rating: 4},
		{ConversationID: "conv-c", Rating: 3},
		{ConversationID: "conv-d", Rating: 2},
	}
	count, err := service.ImportRatings(context.Background(), drafts)

	require.Error(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 3, calls, "inserts after the failure must not run")

	structured := platformerrors.AsStructuredError(err)
	require.NotNil(t, structured)
	assert.Equal(t, 2, structured.Context["imported_count"])
	assert.Equal(t, 2, structured.Context["record_index"])
}

func TestImportRatings_InvalidDraftStopsBatch(t *testing.T) {
	repo := &mockRatingRepo{insertFn: echoInsert}
	service, _ := newTestService(repo)

	drafts := []domain.RatingDraft{
		{ConversationID: "conv-a", Rating: 5},
		{ConversationID: "conv-b", Rating: 9},
		{ConversationID: "conv-c", Rating: 3},
	}
	count, err := service.ImportRatings(context.Background(), drafts)

	require.Error(t, err)
	assert.Equal(t, 1, count)

	structured := platformerrors.AsStructuredError(err)
	require.NotNil(t, structured)
	assert.Equal(t, platformerrors.TypeValidation, structured.Type)
	assert.Equal(t, 1, structured.Context["record_index"])
}

func TestImportRatings_EmptyBatch(t *testing.T) {
	service, _ := newTestService(&mockRatingRepo{})

	count, err := service.ImportRatings(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// --- ExportRatings ---

func TestExportRatings_ReturnsFullSet(t *testing.T) {
	repo := &mockRatingRepo{
		listAllFn: func(_ context.Context) ([]domain.Rating, error) {
			return []domain.Rating{{ID: 2}, {ID: 1}}, nil
		},
	}
	service, _ := newTestService(repo)

	ratings, err := service.ExportRatings(context.Background())
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.Equal(t, int64(2), ratings[0].ID)
}

// --- Analytics delegation ---

func TestSummary_DelegatesToEngine(t *testing.T) {
	repo := &mockRatingRepo{
		listAllFn: func(_ context.Context) ([]domain.Rating, error) {
			return []domain.Rating{
				{Rating: 5, Sentiment: domain.SentimentPositive},
				{Rating: 1, Sentiment: domain.SentimentNegative},
			}, nil
		},
	}
	service, _ := newTestService(repo)

	summary, err := service.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalRatings)
	assert.Equal(t, 3.0, summary.AverageRating)
}
