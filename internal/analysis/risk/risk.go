// Package risk derives simplified price risk metrics (volatility, drawdown,
// parametric VaR and a volatility-implied beta) and the risk factor score.
//
// These are proxies for ranking stocks, not a production risk model. In
// particular Beta is inferred from the stock's own volatility rather than
// its covariance with an index.
package risk

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/indiquant/internal/analysis/ladder"
	"github.com/seenimoa/indiquant/pkg/models"
)

// Params configures the risk analyzer.
type Params struct {
	MinBars      int     // bars needed before any price metric is computed
	Window       int     // trailing returns used for volatility and VaR
	TradingDays  float64 // annualisation factor
	VaRZ         float64 // one-sided 95% z-score
	BetaPivot    float64 // volatility that maps to beta 1.0
	BetaScale    float64 // volatility points per unit of beta
	BetaMin      float64
	BetaMax      float64
	HighDebtRisk float64 // debt/equity above which the proxy says HIGH
	CashRichDE   float64 // debt/equity below which the proxy says LOW
}

// DefaultParams returns the standard settings.
func DefaultParams() Params {
	return Params{
		MinBars:      20,
		Window:       20,
		TradingDays:  252,
		VaRZ:         1.645,
		BetaPivot:    15,
		BetaScale:    20,
		BetaMin:      0.5,
		BetaMax:      2.0,
		HighDebtRisk: 1.5,
		CashRichDE:   0.1,
	}
}

const baseline = 50.0

type bucket struct {
	below float64
	level models.RiskLevel
	delta float64
}

// volatilityBuckets are checked in order; the last one catches everything.
var volatilityBuckets = []bucket{
	{15, models.RiskLow, 20},
	{25, models.RiskModerate, 10},
	{40, models.RiskHigh, -10},
	{math.Inf(1), models.RiskVeryHigh, -25},
}

// Result is the risk factor score and the profile behind it.
type Result struct {
	Score   float64
	Profile models.RiskProfile
}

// Analyze computes the risk profile from price history, falling back to a
// fundamentals proxy when there is not enough history for volatility.
func Analyze(candles []models.OHLCV, f models.FundamentalSnapshot, p Params) Result {
	var prof models.RiskProfile
	score := baseline

	closes := positiveCloses(candles)
	if len(closes) >= p.MinBars {
		dd := MaxDrawdown(closes)
		prof.MaxDrawdownPct = &dd

		returns := DailyReturns(closes)
		if len(returns) >= p.Window {
			mean, std := stat.PopMeanStdDev(returns[len(returns)-p.Window:], nil)
			vol := std * math.Sqrt(p.TradingDays)
			varPct := mean - p.VaRZ*std
			prof.VolatilityAnnualized = &vol
			prof.VaR95Pct = &varPct
		}

		beta := 1.0
		if prof.VolatilityAnnualized != nil {
			beta = ImpliedBeta(*prof.VolatilityAnnualized, p)
		}
		prof.Beta = &beta
	}

	if prof.VolatilityAnnualized != nil {
		level, delta := volatilityLevel(*prof.VolatilityAnnualized)
		prof.Level = level
		score += delta
	} else {
		level, delta := proxyLevel(f, p)
		prof.Level = level
		score += delta
	}

	return Result{Score: ladder.Clamp100(score), Profile: prof}
}

// DailyReturns returns percentage close-to-close changes.
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out = append(out, (closes[i]-closes[i-1])/closes[i-1]*100)
	}
	return out
}

// MaxDrawdown returns the largest peak-to-trough decline as a non-positive
// percentage.
func MaxDrawdown(closes []float64) float64 {
	if len(closes) == 0 {
		return 0
	}
	peak := closes[0]
	maxDD := 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if dd := (peak - c) / peak * 100; dd > maxDD {
			maxDD = dd
		}
	}
	if maxDD == 0 {
		return 0
	}
	return -maxDD
}

// ImpliedBeta maps annualised volatility to an approximate beta.
func ImpliedBeta(vol float64, p Params) float64 {
	return ladder.Clamp(1+(vol-p.BetaPivot)/p.BetaScale, p.BetaMin, p.BetaMax)
}

func volatilityLevel(vol float64) (models.RiskLevel, float64) {
	for _, b := range volatilityBuckets {
		if vol < b.below {
			return b.level, b.delta
		}
	}
	return models.RiskVeryHigh, -25
}

// proxyLevel judges risk from the balance sheet and size when price
// history is unavailable.
func proxyLevel(f models.FundamentalSnapshot, p Params) (models.RiskLevel, float64) {
	switch {
	case f.DebtEquity > p.HighDebtRisk:
		return models.RiskHigh, -15
	case f.Tier() == models.LargeCap:
		return models.RiskLow, 10
	case f.Tier() == models.PennyStock:
		return models.RiskVeryHigh, -20
	case f.DebtEquity > 0 && f.DebtEquity < p.CashRichDE:
		return models.RiskLow, 10
	}
	return models.RiskModerate, 0
}

// positiveCloses drops bars without a usable close.
func positiveCloses(candles []models.OHLCV) []float64 {
	closes := make([]float64, 0, len(candles))
	for _, c := range candles {
		if c.Close > 0 {
			closes = append(closes, c.Close)
		}
	}
	return closes
}
