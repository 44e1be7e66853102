package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/indiquant/internal/analysis/ladder"
	"github.com/seenimoa/indiquant/pkg/models"
)

// Confidence model constants.
const (
	disagreementSpan = 30.0 // factor std-dev that means no agreement at all
	confidenceFloor  = 40.0
	confidenceSlope  = 0.55
	confidenceCap    = 95.0
)

// Scores holds the four factor scores of one stock.
type Scores struct {
	Technical   float64
	Fundamental float64
	Sentiment   float64
	Risk        float64
}

func (s Scores) values() []float64 {
	return []float64{s.Technical, s.Fundamental, s.Sentiment, s.Risk}
}

// factorScores lists the scores in the order they are reported.
func (s Scores) factorScores() []models.FactorScore {
	return []models.FactorScore{
		{Name: models.FactorTechnical, Value: round1(s.Technical)},
		{Name: models.FactorFundamental, Value: round1(s.Fundamental)},
		{Name: models.FactorSentiment, Value: round1(s.Sentiment)},
		{Name: models.FactorRisk, Value: round1(s.Risk)},
	}
}

// Composite weights the four factor scores into one 0-100 score.
func Composite(s Scores, w Weights) float64 {
	return ladder.Clamp100(w.Technical*s.Technical +
		w.Fundamental*s.Fundamental +
		w.Sentiment*s.Sentiment +
		w.Risk*s.Risk)
}

// Classify maps a score to a signal. Thresholds are checked from the top
// down and the first one reached wins, so a higher score never yields a
// lower ranked signal.
func Classify(score float64, t Thresholds) models.Signal {
	switch {
	case score >= t.StrongBuy:
		return models.SignalStrongBuy
	case score >= t.Buy:
		return models.SignalBuy
	case score >= t.Hold:
		return models.SignalHold
	case score >= t.Sell:
		return models.SignalSell
	}
	return models.SignalAvoid
}

// Confidence measures how far the factor scores agree. Identical scores
// give 95; a population std-dev of 30 or more gives 40.
func Confidence(scores ...float64) float64 {
	if len(scores) == 0 {
		return confidenceFloor
	}
	std := stat.PopStdDev(scores, nil)
	if math.IsNaN(std) {
		return confidenceFloor
	}
	agreement := math.Max(0, 100-std/disagreementSpan*100)
	return math.Min(confidenceCap, confidenceFloor+confidenceSlope*agreement)
}
