// Package sentiment turns bullish/bearish mention counts and classified news
// items into the sentiment factor score.
package sentiment

import (
	"github.com/seenimoa/indiquant/internal/analysis/ladder"
	"github.com/seenimoa/indiquant/pkg/models"
)

const baseline = 50.0

var (
	bullishRatio = ladder.Ladder{Steps: []ladder.Step{
		ladder.Gt(0.7, 25, ""),
		ladder.Gt(0.5, 15, ""),
	}}
	bearishRatio = ladder.Ladder{Steps: []ladder.Step{
		ladder.Gt(0.7, -25, ""),
		ladder.Gt(0.5, -15, ""),
	}}
)

// Score computes the sentiment factor. Mentions move the score by up to
// ±25; classified news items add at most ±15 on top. With no data the
// score stays at 50.
func Score(s models.SentimentSnapshot, news []models.NewsItem) float64 {
	score := baseline

	if total := s.Total(); total > 0 {
		bull := float64(s.Bullish) / float64(total)
		bear := float64(s.Bearish) / float64(total)
		if d := bullishRatio.Delta(bull); d != 0 {
			score += d
		} else {
			score += bearishRatio.Delta(bear)
		}
	}

	score += NewsDelta(news)
	return ladder.Clamp100(score)
}

// NewsDelta compares positive and negative news counts.
func NewsDelta(news []models.NewsItem) float64 {
	var pos, neg int
	for _, n := range news {
		switch n.Sentiment {
		case models.NewsPositive:
			pos++
		case models.NewsNegative:
			neg++
		}
	}
	switch {
	case pos > neg*2:
		return 15
	case pos > neg:
		return 5
	case neg > pos*2:
		return -15
	case neg > pos:
		return -5
	}
	return 0
}
