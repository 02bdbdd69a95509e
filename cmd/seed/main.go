package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/convopulse/convopulse/internal/adapter/postgres"
	"github.com/convopulse/convopulse/internal/domain"
	"github.com/convopulse/convopulse/internal/sentiment"
)

// starWeights skews the synthetic data toward the friendly end, the way real
// rating data tends to look.
var starWeights = []struct {
	stars  int
	weight int
}{
	{5, 35},
	{4, 30},
	{3, 15},
	{2, 10},
	{1, 10},
}

var positiveFeedback = []string{
	"Solved my problem on the first try",
	"Fast and accurate, thank you",
	"Exactly the answer I needed",
	"Clear explanation, much appreciated",
	"Great follow-up questions",
}

var negativeFeedback = []string{
	"Did not understand my question",
	"Kept repeating the same answer",
	"Too slow to respond",
	"Gave me outdated information",
	"Had to escalate to a human anyway",
}

var channels = []string{"web", "mobile", "api"}

func main() {
	var (
		databaseURL = flag.String("database", os.Getenv("DATABASE_URL"), "Postgres URL (or set DATABASE_URL env)")
		count       = flag.Int("count", 200, "Number of ratings to generate")
		days        = flag.Int("days", 30, "Spread timestamps over the last N days")
		verbose     = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	if *databaseURL == "" {
		log.Fatal("Postgres URL required (--database or DATABASE_URL env)")
	}
	if *count < 1 {
		log.Fatal("--count must be positive")
	}
	if *days < 1 {
		log.Fatal("--days must be positive")
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	ctx := context.Background()

	pool, err := postgres.Connect(ctx, *databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	repo := postgres.NewRatingRepo(pool)
	start := time.Now()

	for i := 0; i < *count; i++ {
		rating := syntheticRating(*days)
		stored, err := repo.Insert(ctx, rating)
		if err != nil {
			log.Fatalf("Insert failed after %d ratings: %v", i, err)
		}
		slog.Debug("Inserted rating",
			"id", stored.ID,
			"stars", stored.Rating,
			"sentiment", stored.Sentiment)
	}

	slog.Info("Seed complete",
		"count", *count,
		"days", *days,
		"duration_ms", time.Since(start).Milliseconds())
}

func syntheticRating(days int) *domain.Rating {
	stars := weightedStars()

	feedback := feedbackFor(stars)
	var userID *string
	if rand.Intn(3) > 0 {
		id := "user-" + uuid.NewString()[:8]
		userID = &id
	}

	window := time.Duration(days) * 24 * time.Hour
	at := time.Now().UTC().Add(-time.Duration(rand.Int63n(int64(window))))

	feedbackText := ""
	if feedback != nil {
		feedbackText = *feedback
	}

	return &domain.Rating{
		ConversationID: "conv-" + uuid.NewString(),
		Rating:         stars,
		Feedback:       feedback,
		UserID:         userID,
		Metadata:       map[string]any{"channel": channels[rand.Intn(len(channels))], "seeded": true},
		Timestamp:      at,
		Sentiment:      sentiment.Classify(stars, feedbackText),
	}
}

func weightedStars() int {
	total := 0
	for _, w := range starWeights {
		total += w.weight
	}
	pick := rand.Intn(total)
	for _, w := range starWeights {
		pick -= w.weight
		if pick < 0 {
			return w.stars
		}
	}
	return 3
}

// feedbackFor leaves roughly half the records without feedback so the
// sentiment report's sampling has gaps to skip over.
func feedbackFor(stars int) *string {
	if rand.Intn(2) == 0 {
		return nil
	}
	var pool []string
	switch {
	case stars >= 4:
		pool = positiveFeedback
	case stars <= 2:
		pool = negativeFeedback
	default:
		return nil
	}
	text := pool[rand.Intn(len(pool))]
	return &text
}
