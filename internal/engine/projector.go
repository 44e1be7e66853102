package engine

import (
	"github.com/shopspring/decimal"

	"github.com/seenimoa/indiquant/pkg/models"
)

// priceBand is the upside and downside multiplier applied to the current
// price.
type priceBand struct {
	up   decimal.Decimal
	down decimal.Decimal
}

func band(up, down string) priceBand {
	return priceBand{up: decimal.RequireFromString(up), down: decimal.RequireFromString(down)}
}

// riskBands widen with the risk level.
var riskBands = map[models.RiskLevel]priceBand{
	models.RiskLow:      band("1.15", "0.95"),
	models.RiskModerate: band("1.12", "0.93"),
	models.RiskHigh:     band("1.20", "0.88"),
	models.RiskVeryHigh: band("1.30", "0.80"),
}

// horizonRule describes one horizon. Without a fixed band the horizon uses the
// risk table.
type horizonRule struct {
	horizon   models.Horizon
	techShare float64
	fundShare float64
	fixed     *priceBand
	squareUp  bool
}

var (
	intradayBand  = band("1.02", "0.985")
	shortTermBand = band("1.08", "0.95")
)

var horizonRules = []horizonRule{
	{horizon: models.HorizonIntraday, techShare: 0.8, fundShare: 0.2, fixed: &intradayBand},
	{horizon: models.HorizonShortTerm, techShare: 0.6, fundShare: 0.4, fixed: &shortTermBand},
	{horizon: models.HorizonMediumTerm, techShare: 0.4, fundShare: 0.6},
	{horizon: models.HorizonLongTerm, techShare: 0.2, fundShare: 0.8, squareUp: true},
}

// Project re-weights the technical and fundamental scores for each horizon
// and derives target and stop-loss prices. Without a positive price it
// returns nil: a recommendation without a price carries no targets.
func Project(tech, fund, price float64, level models.RiskLevel, t Thresholds) []models.TimeframeProjection {
	if price <= 0 {
		return nil
	}

	risky, ok := riskBands[level]
	if !ok {
		risky = riskBands[models.RiskModerate]
	}
	p := decimal.NewFromFloat(price)

	out := make([]models.TimeframeProjection, 0, len(horizonRules))
	for _, r := range horizonRules {
		blended := r.techShare*tech + r.fundShare*fund

		b := risky
		if r.fixed != nil {
			b = *r.fixed
		}
		up := b.up
		if r.squareUp {
			up = up.Mul(up)
		}

		out = append(out, models.TimeframeProjection{
			Horizon:      r.horizon,
			BlendedScore: round1(blended),
			Signal:       Classify(blended, t),
			TargetPrice:  p.Mul(up).Round(2).InexactFloat64(),
			StopLoss:     p.Mul(b.down).Round(2).InexactFloat64(),
		})
	}
	return out
}

// round1 rounds a score for display.
func round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}
