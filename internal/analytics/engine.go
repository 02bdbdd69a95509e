package analytics

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/convopulse/convopulse/internal/domain"
	"github.com/convopulse/convopulse/internal/metrics"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// trendThreshold is the minimum half-to-half mean difference before a trend
// counts as improving or declining.
const trendThreshold = 0.2

// Trend direction labels.
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendNoData           = "no_data"
	TrendInsufficientData = "insufficient_data"
)

// Summary is the all-time overview: mean rating plus per-level and
// per-sentiment counts. All buckets are present even at zero.
type Summary struct {
	TotalRatings       int            `json:"total_ratings"`
	AverageRating      float64        `json:"average_rating"`
	RatingDistribution map[string]int `json:"rating_distribution"`
	SentimentBreakdown map[string]int `json:"sentiment_breakdown"`
	TimePeriod         string         `json:"time_period"`
}

// DistributionBucket holds the count and share for one rating level.
type DistributionBucket struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribution breaks the full data set down by rating level. Percentages
// are rounded to one decimal place independently per bucket, so they need
// not sum to exactly 100.
type Distribution struct {
	TotalRatings int                           `json:"total_ratings"`
	Distribution map[string]DistributionBucket `json:"distribution"`
}

// Trend compares the newer and older halves of a recency window.
type Trend struct {
	PeriodDays    int     `json:"period_days"`
	TotalRatings  int     `json:"total_ratings"`
	AverageRating float64 `json:"average_rating"`
	Trend         string  `json:"trend"`
}

// SentimentReport aggregates sentiment counts and samples recent feedback
// from the positive and negative ends.
type SentimentReport struct {
	TotalRatings        int            `json:"total_ratings"`
	SentimentBreakdown  map[string]int `json:"sentiment_breakdown"`
	TopPositiveFeedback []string       `json:"top_positive_feedback"`
	TopNegativeFeedback []string       `json:"top_negative_feedback"`
}

const feedbackSampleSize = 5

// RecordSource is the slice of the record store the engine needs: a full
// scan ordered newest first.
type RecordSource interface {
	ListAll(ctx context.Context) ([]domain.Rating, error)
}

// Engine computes analytics views. It is stateless between calls; a
// singleflight group collapses concurrent identical recomputes but nothing
// survives past the request.
type Engine struct {
	source RecordSource
	clock  clockwork.Clock
	group  singleflight.Group
}

// NewEngine creates an analytics engine over the given record source.
func NewEngine(source RecordSource, clock clockwork.Clock) *Engine {
	return &Engine{source: source, clock: clock}
}

// Summary returns all-time statistics. An empty record set yields a
// zero-filled summary, not an error.
func (e *Engine) Summary(ctx context.Context) (*Summary, error) {
	v, err, _ := e.group.Do("summary", func() (any, error) {
		defer e.observe("summary", e.clock.Now())
		ratings, err := e.fetch(ctx, "summary")
		if err != nil {
			return nil, err
		}
		return summarize(ratings), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Summary), nil
}

// Distribution returns per-level counts and percentages over the full set.
func (e *Engine) Distribution(ctx context.Context) (*Distribution, error) {
	v, err, _ := e.group.Do("distribution", func() (any, error) {
		defer e.observe("distribution", e.clock.Now())
		ratings, err := e.fetch(ctx, "distribution")
		if err != nil {
			return nil, err
		}
		return distribute(ratings), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Distribution), nil
}

// Trends classifies the direction of ratings submitted in the last `days`
// days. The window lower bound is inclusive.
func (e *Engine) Trends(ctx context.Context, days int) (*Trend, error) {
	key := "trends:" + strconv.Itoa(days)
	v, err, _ := e.group.Do(key, func() (any, error) {
		defer e.observe("trends", e.clock.Now())
		ratings, err := e.fetch(ctx, "trends")
		if err != nil {
			return nil, err
		}
		cutoff := e.clock.Now().Add(-time.Duration(days) * 24 * time.Hour)
		return trendOf(ratings, days, cutoff), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Trend), nil
}

// SentimentReport returns sentiment counts plus up to five recent feedback
// texts from positive records and five from negative ones.
func (e *Engine) SentimentReport(ctx context.Context) (*SentimentReport, error) {
	v, err, _ := e.group.Do("sentiment", func() (any, error) {
		defer e.observe("sentiment", e.clock.Now())
		ratings, err := e.fetch(ctx, "sentiment")
		if err != nil {
			return nil, err
		}
		return sentimentReport(ratings), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*SentimentReport), nil
}

// fetch reads the full record set. Store failures are propagated unchanged.
func (e *Engine) fetch(ctx context.Context, operation string) ([]domain.Rating, error) {
	ratings, err := e.source.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings for %s: %w", operation, err)
	}
	return ratings, nil
}

func (e *Engine) observe(operation string, start time.Time) {
	metrics.AnalyticsComputeDuration.WithLabelValues(operation).Observe(e.clock.Since(start).Seconds())
}

func summarize(ratings []domain.Rating) *Summary {
	s := &Summary{
		RatingDistribution: emptyRatingBuckets(),
		SentimentBreakdown: emptySentimentBuckets(),
		TimePeriod:         "all_time",
	}
	if len(ratings) == 0 {
		return s
	}

	var sum int
	for _, r := range ratings {
		sum += r.Rating
		s.RatingDistribution[strconv.Itoa(r.Rating)]++
		s.SentimentBreakdown[string(r.Sentiment)]++
	}

	s.TotalRatings = len(ratings)
	s.AverageRating = round2(float64(sum) / float64(len(ratings)))
	return s
}

func distribute(ratings []domain.Rating) *Distribution {
	total := len(ratings)

	counts := [6]int{}
	for _, r := range ratings {
		if r.Rating >= 1 && r.Rating <= 5 {
			counts[r.Rating]++
		}
	}

	buckets := make(map[string]DistributionBucket, 5)
	for level := 1; level <= 5; level++ {
		bucket := DistributionBucket{Count: counts[level]}
		if total > 0 {
			bucket.Percentage = round1(float64(counts[level]) / float64(total) * 100)
		}
		buckets[fmt.Sprintf("%d_star", level)] = bucket
	}

	return &Distribution{TotalRatings: total, Distribution: buckets}
}

func trendOf(ratings []domain.Rating, days int, cutoff time.Time) *Trend {
	recent := make([]domain.Rating, 0, len(ratings))
	for _, r := range ratings {
		if !r.Timestamp.Before(cutoff) {
			recent = append(recent, r)
		}
	}

	result := &Trend{PeriodDays: days, TotalRatings: len(recent)}
	if len(recent) == 0 {
		result.Trend = TrendNoData
		return result
	}

	var sum int
	for _, r := range recent {
		sum += r.Rating
	}
	result.AverageRating = round2(float64(sum) / float64(len(recent)))

	// The source returns newest first, so the first half is the more recent
	// one. A single record leaves a zero-sized half; no comparison possible.
	mid := len(recent) / 2
	if mid == 0 {
		result.Trend = TrendInsufficientData
		return result
	}

	firstHalf := meanRating(recent[:mid])
	secondHalf := meanRating(recent[mid:])

	switch {
	case secondHalf > firstHalf+trendThreshold:
		result.Trend = TrendImproving
	case secondHalf < firstHalf-trendThreshold:
		result.Trend = TrendDeclining
	default:
		result.Trend = TrendStable
	}
	return result
}

func sentimentReport(ratings []domain.Rating) *SentimentReport {
	report := &SentimentReport{
		SentimentBreakdown:  emptySentimentBuckets(),
		TopPositiveFeedback: []string{},
		TopNegativeFeedback: []string{},
	}

	for _, r := range ratings {
		report.SentimentBreakdown[string(r.Sentiment)]++

		if r.Feedback == nil || *r.Feedback == "" {
			continue
		}
		switch r.Sentiment {
		case domain.SentimentPositive:
			if len(report.TopPositiveFeedback) < feedbackSampleSize {
				report.TopPositiveFeedback = append(report.TopPositiveFeedback, *r.Feedback)
			}
		case domain.SentimentNegative:
			if len(report.TopNegativeFeedback) < feedbackSampleSize {
				report.TopNegativeFeedback = append(report.TopNegativeFeedback, *r.Feedback)
			}
		}
	}

	report.TotalRatings = len(ratings)
	return report
}

func meanRating(ratings []domain.Rating) float64 {
	var sum int
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}

func emptyRatingBuckets() map[string]int {
	buckets := make(map[string]int, 5)
	for level := 1; level <= 5; level++ {
		buckets[strconv.Itoa(level)] = 0
	}
	return buckets
}

func emptySentimentBuckets() map[string]int {
	buckets := make(map[string]int, len(domain.Sentiments))
	for _, s := range domain.Sentiments {
		buckets[string(s)] = 0
	}
	return buckets
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
