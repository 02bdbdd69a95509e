package domain

// Sentiment is the coarse three-way label derived from a rating at
// submission time. It is stored with the record and never recomputed.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Sentiments lists all labels in a stable order, used wherever every bucket
// must be present even when empty.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}
