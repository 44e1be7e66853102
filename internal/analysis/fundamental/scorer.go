// Package fundamental scores a company's valuation, growth, balance sheet
// safety and business quality from its reported ratios.
package fundamental

import (
	"github.com/seenimoa/indiquant/internal/analysis/ladder"
	"github.com/seenimoa/indiquant/pkg/models"
)

// Params holds the benchmarks and sub-score weights.
type Params struct {
	BenchmarkPE   float64
	BenchmarkPB   float64
	ValueWeight   float64
	GrowthWeight  float64
	SafetyWeight  float64
	QualityWeight float64
}

// DefaultParams benchmarks against the Nifty 50.
func DefaultParams() Params {
	return Params{
		BenchmarkPE:   22.5,
		BenchmarkPB:   3.2,
		ValueWeight:   0.30,
		GrowthWeight:  0.30,
		SafetyWeight:  0.20,
		QualityWeight: 0.20,
	}
}

const baseline = 50.0

// relativePE is applied to PE / benchmark PE.
var relativePE = ladder.Ladder{Steps: []ladder.Step{
	ladder.Lt(0.6, 30, ""),
	ladder.Lt(0.8, 20, ""),
	ladder.Lt(1.0, 10, ""),
	ladder.Gt(1.5, -20, ""),
	ladder.Gt(1.2, -10, ""),
}}

var (
	roeGrowth = ladder.Ladder{Steps: []ladder.Step{
		ladder.Gt(25, 25, ""),
		ladder.Gt(20, 20, ""),
		ladder.Gt(15, 10, ""),
		ladder.Lt(8, -15, ""),
	}}
	roceGrowth = ladder.Ladder{Steps: []ladder.Step{
		ladder.Gt(30, 20, ""),
		ladder.Gt(22, 15, ""),
		ladder.Gt(18, 10, ""),
		ladder.Lt(10, -10, ""),
	}}
	debtSafety = ladder.Ladder{Steps: []ladder.Step{
		ladder.Lt(0.1, 30, ""),
		ladder.Lt(0.3, 20, ""),
		ladder.Lt(1.0, 10, ""),
		ladder.Gt(2, -30, ""),
		ladder.Gt(1.5, -15, ""),
	}}
	dividendSafety = ladder.Ladder{Steps: []ladder.Step{
		ladder.Gt(2, 10, ""),
		ladder.Gt(1, 5, ""),
	}}
)

var capTierQuality = map[models.MarketCapTier]float64{
	models.LargeCap:   10,
	models.MidCap:     5,
	models.PennyStock: -10,
}

// Value scores valuation against the benchmark multiples. A non-positive
// PE or PB is unknown and contributes nothing.
func Value(f models.FundamentalSnapshot, p Params) float64 {
	score := baseline
	if f.PE > 0 && p.BenchmarkPE > 0 {
		score += relativePE.Delta(f.PE / p.BenchmarkPE)
	}
	if f.PB > 0 {
		score += pbLadder(p.BenchmarkPB).Delta(f.PB)
	}
	return ladder.Clamp100(score)
}

func pbLadder(benchmark float64) ladder.Ladder {
	return ladder.Ladder{Steps: []ladder.Step{
		ladder.Lt(1, 20, ""),
		ladder.Lt(0.8*benchmark, 10, ""),
		ladder.Gt(3*benchmark, -15, ""),
	}}
}

// Growth scores return ratios. A zero ROE or ROCE is unknown; negative
// returns are real and penalised.
func Growth(f models.FundamentalSnapshot) float64 {
	score := baseline
	if f.ROE != 0 {
		score += roeGrowth.Delta(f.ROE)
	}
	if f.ROCE != 0 {
		score += roceGrowth.Delta(f.ROCE)
	}
	return ladder.Clamp100(score)
}

// Safety scores leverage and dividend support. A non-positive debt/equity
// is unknown.
func Safety(f models.FundamentalSnapshot) float64 {
	score := baseline
	if f.DebtEquity > 0 {
		score += debtSafety.Delta(f.DebtEquity)
	}
	score += dividendSafety.Delta(f.DividendYield)
	return ladder.Clamp100(score)
}

// Quality rewards consistently high returns on capital and larger caps.
func Quality(f models.FundamentalSnapshot) float64 {
	score := baseline
	switch {
	case f.ROE > 15 && f.ROCE > 18:
		score += 25
	case f.ROE > 12 && f.ROCE > 15:
		score += 15
	case f.ROE < 0 || f.ROCE < 0:
		score -= 20
	}
	score += capTierQuality[f.Tier()]
	return ladder.Clamp100(score)
}

// Score computes all four sub-scores, the weighted overall score and the
// assessments used for key factors.
func Score(f models.FundamentalSnapshot, p Params) models.FundamentalBreakdown {
	b := models.FundamentalBreakdown{
		Value:   Value(f, p),
		Growth:  Growth(f),
		Safety:  Safety(f),
		Quality: Quality(f),
	}
	b.Overall = ladder.Clamp100(p.ValueWeight*b.Value +
		p.GrowthWeight*b.Growth +
		p.SafetyWeight*b.Safety +
		p.QualityWeight*b.Quality)
	b.PEAssessment = AssessPE(f.PE, p.BenchmarkPE)
	b.ROEAssessment = AssessROE(f.ROE)
	b.DEAssessment = AssessDebt(f.DebtEquity)
	return b
}
