package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/seenimoa/indiquant/internal/analysis/fundamental"
	"github.com/seenimoa/indiquant/pkg/models"
)

// Key factor scores. Their distance from 50 decides the ranking.
const (
	scoreRSIOversold    = 85
	scoreRSIOverbought  = 25
	scoreMACDBullish    = 70
	scoreMACDBearish    = 30
	scoreCheap          = 90
	scoreExpensive      = 20
	scoreStrongROE      = 85
	scoreWeakROE        = 25
	scoreDebtFree       = 90
	scoreHighDebt       = 20
	scoreLowVolatility  = 75
	scoreHighVolatility = 35
)

func positive(name, desc string, score float64) models.KeyFactor {
	return models.KeyFactor{Factor: name, Description: desc, Impact: models.ImpactPositive, Score: score}
}

func negative(name, desc string, score float64) models.KeyFactor {
	return models.KeyFactor{Factor: name, Description: desc, Impact: models.ImpactNegative, Score: score}
}

// KeyFactors picks the discrete drivers of a recommendation and returns at
// most limit of them, furthest from neutral first. Ties keep detection
// order: technical, valuation, profitability, leverage, volatility.
func KeyFactors(ti models.TechnicalIndicators, fb models.FundamentalBreakdown, f models.FundamentalSnapshot, rp models.RiskProfile, limit int) []models.KeyFactor {
	var out []models.KeyFactor

	if ti.RSI != nil {
		switch rsi := *ti.RSI; {
		case rsi < 30:
			out = append(out, positive("RSI Oversold",
				fmt.Sprintf("RSI at %.1f indicates oversold conditions", rsi), scoreRSIOversold))
		case rsi > 70:
			out = append(out, negative("RSI Overbought",
				fmt.Sprintf("RSI at %.1f indicates overbought conditions", rsi), scoreRSIOverbought))
		}
	}

	if ti.MACD != nil {
		switch ti.MACD.Trend {
		case "BULLISH":
			out = append(out, positive("MACD Bullish Crossover", "MACD showing positive momentum", scoreMACDBullish))
		case "BEARISH":
			out = append(out, negative("MACD Bearish Signal", "MACD showing negative momentum", scoreMACDBearish))
		}
	}

	switch fb.PEAssessment {
	case fundamental.SignificantlyUndervalued:
		out = append(out, positive("Attractive Valuation",
			fmt.Sprintf("P/E of %.1f well below industry average", f.PE), scoreCheap))
	case fundamental.SignificantlyOvervalued:
		out = append(out, negative("High Valuation",
			fmt.Sprintf("P/E of %.1f significantly above average", f.PE), scoreExpensive))
	}

	switch fb.ROEAssessment {
	case fundamental.ROEExcellent:
		out = append(out, positive("Strong Profitability",
			fmt.Sprintf("ROE of %.1f%% shows excellent returns", f.ROE), scoreStrongROE))
	case fundamental.ROEPoor:
		out = append(out, negative("Weak Profitability",
			fmt.Sprintf("ROE of %.1f%% is below acceptable levels", f.ROE), scoreWeakROE))
	}

	switch fb.DEAssessment {
	case fundamental.DebtFree:
		out = append(out, positive("Debt-Free Balance Sheet",
			"Company has minimal debt, strong financial position", scoreDebtFree))
	case fundamental.DebtHigh:
		out = append(out, negative("High Leverage Concern",
			fmt.Sprintf("D/E of %.2f poses financial risk", f.DebtEquity), scoreHighDebt))
	}

	switch rp.Level {
	case models.RiskLow:
		out = append(out, positive("Low Volatility",
			"Stable price movements reduce investment risk", scoreLowVolatility))
	case models.RiskHigh, models.RiskVeryHigh:
		out = append(out, negative("High Volatility",
			"Significant price swings increase investment risk", scoreHighVolatility))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Score-50) > math.Abs(out[j].Score-50)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Scenario phrases.
const (
	bullEarnings   = "Strong earnings momentum continues"
	bearEarnings   = "Earnings growth slows down"
	bullRerating   = "Valuation re-rating potential"
	bearValuation  = "High valuation limits upside"
	bearDefensive  = "Defensive traits limit downside"
	bearBalance    = "Balance sheet stress increases risk"
	bearOverbought = "Technical overbought conditions trigger correction"
	bullBreakout   = "Strong momentum pushes into breakout"
	bullOversold   = "Oversold bounce expected"
	bearMomentum   = "Negative momentum continues"
	bullDefault    = "Sector tailwinds improve sentiment"
	bearDefault    = "Market volatility impacts stock"
)

// BuildScenarios lists bull and bear case bullet points from the
// fundamental sub-scores and RSI. Each list holds at least one and at most
// limit entries. A missing RSI counts as neutral.
func BuildScenarios(fb models.FundamentalBreakdown, ti models.TechnicalIndicators, limit int) models.Scenarios {
	var bull, bear []string

	if fb.Growth > 70 {
		bull = append(bull, bullEarnings)
	} else {
		bear = append(bear, bearEarnings)
	}

	switch {
	case fb.Value > 70:
		bull = append(bull, bullRerating)
	case fb.Value < 40:
		bear = append(bear, bearValuation)
	}

	// Strong safety still shows up on the bear side: it caps the downside.
	switch {
	case fb.Safety > 80:
		bear = append(bear, bearDefensive)
	case fb.Safety < 40:
		bear = append(bear, bearBalance)
	}

	rsi := 50.0
	if ti.RSI != nil {
		rsi = *ti.RSI
	}
	switch {
	case rsi > 70:
		bear = append(bear, bearOverbought)
		bull = append(bull, bullBreakout)
	case rsi < 30:
		bull = append(bull, bullOversold)
		bear = append(bear, bearMomentum)
	}

	if len(bull) == 0 {
		bull = append(bull, bullDefault)
	}
	if len(bear) == 0 {
		bear = append(bear, bearDefault)
	}
	return models.Scenarios{Bull: capList(bull, limit), Bear: capList(bear, limit)}
}

func capList(s []string, limit int) []string {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
