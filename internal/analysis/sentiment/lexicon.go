package sentiment

import (
	"math"
	"strings"

	"github.com/seenimoa/indiquant/pkg/models"
)

// ------------------------------------------------------------------
// Keyword-based headline classifier (offline, no LLM needed).
// It turns raw text into the bullish/bearish/neutral tallies the
// aggregator consumes.
// ------------------------------------------------------------------

type keyword struct {
	term   string
	weight float64
}

// Slices rather than maps so the summation order, and therefore the
// result, never changes between runs.
var bullishWords = []keyword{
	{"bullish", 0.7}, {"rally", 0.6}, {"surge", 0.7}, {"upbeat", 0.5},
	{"positive", 0.4}, {"growth", 0.4}, {"upgrade", 0.6}, {"outperform", 0.6},
	{"buy", 0.5}, {"strong", 0.4}, {"recovery", 0.5}, {"breakout", 0.6},
	{"record high", 0.7}, {"all-time high", 0.7}, {"beat", 0.5},
	{"exceeds", 0.5}, {"expansion", 0.4}, {"profit", 0.3},
	{"dividend", 0.4}, {"accumulate", 0.5}, {"order win", 0.6},
}

var bearishWords = []keyword{
	{"bearish", 0.7}, {"crash", 0.8}, {"plunge", 0.7}, {"slump", 0.6},
	{"negative", 0.4}, {"downgrade", 0.6}, {"underperform", 0.6},
	{"sell", 0.5}, {"weak", 0.4}, {"decline", 0.5}, {"loss", 0.4},
	{"selloff", 0.7}, {"fall", 0.4}, {"correction", 0.5},
	{"default", 0.7}, {"fraud", 0.8}, {"scam", 0.8}, {"investigation", 0.5},
	{"cut", 0.3}, {"miss", 0.5}, {"warning", 0.5}, {"concern", 0.3},
	{"sebi notice", 0.6}, {"pledge", 0.4},
}

// classifyThreshold is the net score a headline needs to count as
// positive or negative.
const classifyThreshold = 0.1

// ScoreHeadline returns a sentiment score for a single headline.
// Score ranges from -1.0 (very bearish) to +1.0 (very bullish).
func ScoreHeadline(headline string) (score float64, confidence float64) {
	lower := strings.ToLower(headline)

	bullScore := 0.0
	bearScore := 0.0
	matches := 0

	for _, k := range bullishWords {
		if strings.Contains(lower, k.term) {
			bullScore += k.weight
			matches++
		}
	}
	for _, k := range bearishWords {
		if strings.Contains(lower, k.term) {
			bearScore += k.weight
			matches++
		}
	}

	total := bullScore + bearScore
	if matches == 0 || total == 0 {
		return 0, 0.1 // no signal
	}

	score = (bullScore - bearScore) / total
	confidence = math.Min(float64(matches)*0.15+0.2, 0.85)
	return score, confidence
}

// Classify labels a piece of text positive, negative or neutral.
func Classify(text string) models.NewsSentiment {
	score, _ := ScoreHeadline(text)
	switch {
	case score > classifyThreshold:
		return models.NewsPositive
	case score < -classifyThreshold:
		return models.NewsNegative
	}
	return models.NewsNeutral
}

// ClassifyNews returns a copy of items with Sentiment filled from the title
// and summary. Items that already carry a label keep it.
func ClassifyNews(items []models.NewsItem) []models.NewsItem {
	out := make([]models.NewsItem, len(items))
	for i, it := range items {
		if it.Sentiment == "" {
			text := it.Title
			if it.Summary != "" {
				text += " " + it.Summary
			}
			it.Sentiment = Classify(text)
		}
		out[i] = it
	}
	return out
}

// Tally classifies each text and counts the labels.
func Tally(texts []string) models.SentimentSnapshot {
	var s models.SentimentSnapshot
	for _, t := range texts {
		switch Classify(t) {
		case models.NewsPositive:
			s.Bullish++
		case models.NewsNegative:
			s.Bearish++
		default:
			s.Neutral++
		}
	}
	return s
}
