// Package sentiment derives sentiment labels from numeric ratings.
package sentiment

import "github.com/convopulse/convopulse/internal/domain"

const (
	positiveThreshold = 4
	neutralRating     = 3
)

// Classify maps a 1-5 star rating to a sentiment label. The feedback text is
// accepted for interface symmetry but does not influence the result; it is
// reserved for a future text-based model without changing the signature.
// Ratings of 4 and above are positive, exactly 3 is neutral, 2 and below
// are negative.
func Classify(rating int, _ string) domain.Sentiment {
	switch {
	case rating >= positiveThreshold:
		return domain.SentimentPositive
	case rating == neutralRating:
		return domain.SentimentNeutral
	default:
		return domain.SentimentNegative
	}
}
