package screener

import (
	fa "github.com/seenimoa/indiquant/internal/analysis/fundamental"
	"github.com/seenimoa/indiquant/pkg/models"
	"github.com/seenimoa/indiquant/pkg/utils"
)

// Category groups related screens.
type Category string

const (
	CategoryValue     Category = "Value"
	CategoryGrowth    Category = "Growth"
	CategoryQuality   Category = "Quality"
	CategorySafety    Category = "Safety"
	CategoryThematic  Category = "Thematic"
	CategoryTechnical Category = "Technical"
	CategorySignal    Category = "Signal"
)

// Fundamental ratios use zero for "unknown", so every upper bound also
// requires the value to be known.
func below(v, bound float64) bool { return v > 0 && v < bound }

func fundamental(fn func(f models.FundamentalSnapshot) bool) func(Candidate) bool {
	return func(c Candidate) bool {
		return c.Fundamentals != nil && fn(*c.Fundamentals)
	}
}

func scored(fn func(r *models.Recommendation) bool) func(Candidate) bool {
	return func(c Candidate) bool {
		return c.Recommendation != nil && fn(c.Recommendation)
	}
}

func inSector(c Candidate, sectors ...string) bool {
	s := utils.SectorFor(c.Ticker)
	for _, want := range sectors {
		if s == want {
			return true
		}
	}
	return false
}

var screens = []Screen{
	// Value
	{ID: "low_pe", Name: "Low P/E Stocks", Category: CategoryValue,
		Description: "Stocks trading at P/E ratio below 15",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return below(f.PE, 15) })},
	{ID: "low_pb", Name: "Low P/B Stocks (Book Value)", Category: CategoryValue,
		Description: "Stocks trading below book value (P/B < 1)",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return below(f.PB, 1) })},
	{ID: "low_pe_high_roe", Name: "Low PE + High ROE", Category: CategoryValue,
		Description: "Value with quality: PE < 20, ROE > 15%",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return below(f.PE, 20) && f.ROE > 15 })},
	{ID: "graham_number", Name: "Graham Number Undervalued", Category: CategoryValue,
		Description: "PE × PB < 22.5 (Benjamin Graham formula)",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return below(fa.GrahamMultiple(f.PE, f.PB), 22.5) })},
	{ID: "high_dividend_yield", Name: "High Dividend Yield (>2%)", Category: CategoryValue,
		Description: "Dividend yield above 2%",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.DividendYield > 2 })},
	{ID: "dividend_aristocrats", Name: "Dividend Aristocrats", Category: CategoryValue,
		Description: "Consistent dividend payers with yield > 1.5%",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.DividendYield > 1.5 && f.ROE > 12 })},
	{ID: "peg_undervalued", Name: "PEG Ratio < 1", Category: CategoryValue,
		Description: "Reasonable P/E backed by high ROE",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return below(f.PE, 25) && f.ROE > 18 })},
	{ID: "deep_value", Name: "Deep Value Picks", Category: CategoryValue,
		Description: "PE < 12, P/B < 1.5, Dividend > 1%",
		match: fundamental(func(f models.FundamentalSnapshot) bool {
			return below(f.PE, 12) && below(f.PB, 1.5) && f.DividendYield > 1
		})},
	{ID: "ev_ebitda_low", Name: "Low EV/EBITDA", Category: CategoryValue,
		Description: "Enterprise value attractive (PE < 15, low debt)",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return below(f.PE, 15) && below(f.DebtEquity, 0.5) })},
	{ID: "contrarian_value", Name: "Contrarian Value Play", Category: CategoryValue,
		Description: "Beaten down quality: PE < 15, ROCE > 10%",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return below(f.PE, 15) && f.ROCE > 10 })},

	// Growth
	{ID: "garp", Name: "Growth at Reasonable Price (GARP)", Category: CategoryGrowth,
		Description: "High growth with PE < 30: ROE > 20%, reasonable valuation",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.ROE > 20 && below(f.PE, 30) })},
	{ID: "high_roe", Name: "High ROE Champions", Category: CategoryGrowth,
		Description: "Return on Equity above 25%",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.ROE > 25 })},
	{ID: "high_roce", Name: "High ROCE Stars", Category: CategoryGrowth,
		Description: "Return on Capital Employed above 25%",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.ROCE > 25 })},
	{ID: "profit_growth", Name: "Profit Growth Leaders", Category: CategoryGrowth,
		Description: "High profitability: ROE > 18%, ROCE > 20%",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.ROE > 18 && f.ROCE > 20 })},
	{ID: "compounders", Name: "Quality Compounders", Category: CategoryGrowth,
		Description: "Consistent growers: ROE > 15%, low debt",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.ROE > 15 && below(f.DebtEquity, 0.5) })},
	{ID: "small_cap_growth", Name: "Small Cap Growth", Category: CategoryGrowth,
		Description: "Mid/Small cap with high growth metrics",
		match: fundamental(func(f models.FundamentalSnapshot) bool {
			t := f.Tier()
			return (t == models.MidCap || t == models.SmallCap) && f.ROE > 18
		})},
	{ID: "emerging_blue_chips", Name: "Emerging Blue Chips", Category: CategoryGrowth,
		Description: "Future large caps: Mid cap + High ROCE",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.Tier() == models.MidCap && f.ROCE > 20 })},
	{ID: "earnings_momentum", Name: "Earnings Momentum", Category: CategoryGrowth,
		Description: "Strong earnings power: ROE > 20%, low PE",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.ROE > 20 && below(f.PE, 35) })},

	// Quality
	{ID: "debt_free", Name: "Debt-Free Gems", Category: CategoryQuality,
		Description: "Zero or minimal debt (D/E < 0.1)",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return below(f.DebtEquity, 0.1) && f.ROE > 10 })},
	{ID: "cash_rich", Name: "Cash Rich Companies", Category: CategoryQuality,
		Description: "Net debt free with high profitability",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return below(f.DebtEquity, 0.05) && f.ROCE > 15 })},
	{ID: "consistent_dividend", Name: "Consistent Dividend Payers", Category: CategoryQuality,
		Description: "Regular dividends with sustainable payout",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.DividendYield > 0.5 && f.ROE > 12 })},
	{ID: "blue_chip", Name: "Blue Chip Stalwarts", Category: CategoryQuality,
		Description: "Large cap, high ROE, low debt",
		match: fundamental(func(f models.FundamentalSnapshot) bool {
			return f.Tier() == models.LargeCap && f.ROE > 15 && below(f.DebtEquity, 1)
		})},
	{ID: "moat_companies", Name: "Economic Moat", Category: CategoryQuality,
		Description: "Sustainable competitive advantage: High ROCE, consistent",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.ROCE > 20 && below(f.DebtEquity, 0.5) })},
	{ID: "management_quality", Name: "Management Quality", Category: CategoryQuality,
		Description: "High capital efficiency: ROCE > ROE",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.ROCE > f.ROE && f.ROCE > 15 })},
	{ID: "capital_efficient", Name: "Capital Efficient", Category: CategoryQuality,
		Description: "High returns on invested capital",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.ROCE > 18 && below(f.DebtEquity, 0.8) })},
	{ID: "profit_machines", Name: "Profit Machines", Category: CategoryQuality,
		Description: "ROE > 20%, ROCE > 25%, Low Debt",
		match: fundamental(func(f models.FundamentalSnapshot) bool {
			return f.ROE > 20 && f.ROCE > 25 && below(f.DebtEquity, 0.3)
		})},

	// Safety
	{ID: "low_beta", Name: "Low Beta Defensive", Category: CategorySafety,
		Description: "Less volatile than market",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.DividendYield > 1 && below(f.DebtEquity, 0.5) })},
	{ID: "recession_proof", Name: "Recession Proof", Category: CategorySafety,
		Description: "Defensive sectors, essential services",
		match: fundamental(func(f models.FundamentalSnapshot) bool {
			return f.ROCE > 15 && below(f.DebtEquity, 0.3) && f.DividendYield > 0.8
		})},
	{ID: "high_interest_coverage", Name: "High Interest Coverage", Category: CategorySafety,
		Description: "Strong ability to service debt",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return below(f.DebtEquity, 0.5) && f.ROCE > 12 })},
	{ID: "stable_earnings", Name: "Stable Earnings", Category: CategorySafety,
		Description: "Consistent profitability",
		match: fundamental(func(f models.FundamentalSnapshot) bool {
			return f.ROE > 12 && f.ROE < 30 && below(f.DebtEquity, 0.8)
		})},
	{ID: "low_volatility", Name: "Low Volatility Portfolio", Category: CategorySafety,
		Description: "Blue chips with stable returns",
		match:       fundamental(func(f models.FundamentalSnapshot) bool { return f.Tier() == models.LargeCap && f.DividendYield > 0.5 })},
	{ID: "safe_haven", Name: "Safe Haven Picks", Category: CategorySafety,
		Description: "Quality + Stability: Low debt, high ROCE, dividends",
		match: fundamental(func(f models.FundamentalSnapshot) bool {
			return below(f.DebtEquity, 0.2) && f.ROCE > 18 && f.DividendYield > 0.5
		})},

	// Thematic, by NSE sector membership
	{ID: "it_sector", Name: "IT Sector Champions", Category: CategoryThematic,
		Description: "Technology and IT services stocks",
		match: func(c Candidate) bool {
			return inSector(c, "IT") && fundamental(func(f models.FundamentalSnapshot) bool {
				return f.ROCE > 25 && below(f.DebtEquity, 0.2)
			})(c)
		}},
	{ID: "banking_finance", Name: "Banking & Finance", Category: CategoryThematic,
		Description: "Banks and NBFCs",
		match: func(c Candidate) bool {
			return inSector(c, "Banking", "NBFC", "Insurance") && fundamental(func(f models.FundamentalSnapshot) bool {
				return f.ROE > 12 && below(f.PB, 4)
			})(c)
		}},
	{ID: "fmcg_consumer", Name: "FMCG & Consumer", Category: CategoryThematic,
		Description: "Consumer staples and discretionary",
		match: func(c Candidate) bool {
			return inSector(c, "FMCG") && fundamental(func(f models.FundamentalSnapshot) bool {
				return f.ROCE > 20 && below(f.DebtEquity, 0.3)
			})(c)
		}},
	{ID: "infrastructure_play", Name: "Infrastructure Play", Category: CategoryThematic,
		Description: "Capex and infra beneficiaries",
		match: func(c Candidate) bool {
			return inSector(c, "Infra", "Capital Goods", "Cement", "Power") && fundamental(func(f models.FundamentalSnapshot) bool {
				return below(f.PB, 5) && below(f.DebtEquity, 1.5)
			})(c)
		}},

	// Technical, from computed indicators
	{ID: "rsi_oversold", Name: "RSI Oversold (<30)", Category: CategoryTechnical,
		Description: "Potential bounce candidates",
		match:       scored(func(r *models.Recommendation) bool { return r.Technical.RSI != nil && *r.Technical.RSI < 30 })},
	{ID: "rsi_overbought", Name: "RSI Overbought (>70)", Category: CategoryTechnical,
		Description: "Stretched after a strong run",
		match:       scored(func(r *models.Recommendation) bool { return r.Technical.RSI != nil && *r.Technical.RSI > 70 })},
	{ID: "macd_bullish", Name: "MACD Bullish Crossover", Category: CategoryTechnical,
		Description: "MACD above its signal line",
		match: scored(func(r *models.Recommendation) bool {
			m := r.Technical.MACD
			return m != nil && m.Histogram > 0
		})},
	{ID: "above_sma50", Name: "Trading Above 50-Day Average", Category: CategoryTechnical,
		Description: "Price holding above the 50-day SMA",
		match: scored(func(r *models.Recommendation) bool {
			t := r.Technical
			return t.SMA50 != nil && t.LastClose != nil && *t.LastClose > *t.SMA50
		})},
	{ID: "volume_surge", Name: "Volume Surge", Category: CategoryTechnical,
		Description: "Latest volume well above its average",
		match:       scored(func(r *models.Recommendation) bool { return r.Technical.VolumeSignal == "HIGH" })},

	// Signal, from the composite recommendation
	{ID: "strong_buys", Name: "Strong Buys", Category: CategorySignal,
		Description: "Composite signal STRONG_BUY",
		match:       scored(func(r *models.Recommendation) bool { return r.Signal == models.SignalStrongBuy })},
	{ID: "high_conviction", Name: "High Conviction Buys", Category: CategorySignal,
		Description: "BUY or better with confidence of 75% or more",
		match: scored(func(r *models.Recommendation) bool {
			return r.Signal.Rank() >= models.SignalBuy.Rank() && r.Confidence >= 75
		})},
	{ID: "low_risk_buys", Name: "Low Risk Buys", Category: CategorySignal,
		Description: "BUY or better with LOW risk",
		match: scored(func(r *models.Recommendation) bool {
			return r.Signal.Rank() >= models.SignalBuy.Rank() && r.Risk.Level == models.RiskLow
		})},
	{ID: "avoid_list", Name: "Avoid List", Category: CategorySignal,
		Description: "Composite signal SELL or AVOID",
		match: scored(func(r *models.Recommendation) bool {
			return r.Signal == models.SignalSell || r.Signal == models.SignalAvoid
		})},
}
