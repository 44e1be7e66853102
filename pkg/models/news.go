package models

import "time"

// NewsSentiment is the classification label attached to a news item.
type NewsSentiment string

const (
	NewsPositive NewsSentiment = "positive"
	NewsNegative NewsSentiment = "negative"
	NewsNeutral  NewsSentiment = "neutral"
)

// NewsItem is a single headline relevant to a stock.
type NewsItem struct {
	Title       string        `json:"title"`
	Source      string        `json:"source,omitempty"`
	URL         string        `json:"url,omitempty"`
	Summary     string        `json:"summary,omitempty"`
	PublishedAt time.Time     `json:"published_at,omitempty"`
	Sentiment   NewsSentiment `json:"sentiment"`
}

// SentimentSnapshot tallies bullish, bearish and neutral mentions of a stock.
type SentimentSnapshot struct {
	Bullish int `json:"bullish"`
	Bearish int `json:"bearish"`
	Neutral int `json:"neutral"`
}

// Total returns the number of mentions.
func (s SentimentSnapshot) Total() int {
	return s.Bullish + s.Bearish + s.Neutral
}
