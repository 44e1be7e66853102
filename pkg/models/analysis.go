package models

import "time"

// Signal is the discrete recommendation label derived from a score.
type Signal string

const (
	SignalStrongBuy Signal = "STRONG_BUY"
	SignalBuy       Signal = "BUY"
	SignalHold      Signal = "HOLD"
	SignalSell      Signal = "SELL"
	SignalAvoid     Signal = "AVOID"
)

// Rank orders signals from AVOID (0) to STRONG_BUY (4). Unknown labels rank -1.
func (s Signal) Rank() int {
	switch s {
	case SignalAvoid:
		return 0
	case SignalSell:
		return 1
	case SignalHold:
		return 2
	case SignalBuy:
		return 3
	case SignalStrongBuy:
		return 4
	}
	return -1
}

// Label returns the human readable form, e.g. "Strong Buy".
func (s Signal) Label() string {
	switch s {
	case SignalStrongBuy:
		return "Strong Buy"
	case SignalBuy:
		return "Buy"
	case SignalHold:
		return "Hold"
	case SignalSell:
		return "Sell"
	case SignalAvoid:
		return "Avoid"
	}
	return string(s)
}

// RiskLevel buckets a stock's riskiness.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
)

// Horizon is an investment time horizon.
type Horizon string

const (
	HorizonIntraday   Horizon = "intraday"
	HorizonShortTerm  Horizon = "short_term"
	HorizonMediumTerm Horizon = "medium_term"
	HorizonLongTerm   Horizon = "long_term"
)

// Horizons lists all horizons in projection order.
var Horizons = []Horizon{HorizonIntraday, HorizonShortTerm, HorizonMediumTerm, HorizonLongTerm}

// Factor names.
const (
	FactorTechnical   = "technical"
	FactorFundamental = "fundamental"
	FactorSentiment   = "sentiment"
	FactorRisk        = "risk"
)

// FactorScore is one of the four 0-100 scores combined into the composite.
type FactorScore struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MACDData contains MACD indicator values.
type MACDData struct {
	MACDLine   float64 `json:"macd_line"`
	SignalLine float64 `json:"signal_line"`
	Histogram  float64 `json:"histogram"`
	Trend      string  `json:"trend"` // "BULLISH" or "BEARISH"
}

// BollingerData contains Bollinger Bands values.
type BollingerData struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// TechnicalIndicators holds the indicator values computed from a price
// series. Nil pointers mean the series was too short for that indicator.
type TechnicalIndicators struct {
	LastClose    *float64       `json:"last_close,omitempty"`
	RSI          *float64       `json:"rsi,omitempty"`
	RSISignal    string         `json:"rsi_signal,omitempty"`
	SMA20        *float64       `json:"sma_20,omitempty"`
	SMA20Signal  string         `json:"sma_20_signal,omitempty"`
	SMA50        *float64       `json:"sma_50,omitempty"`
	SMA50Signal  string         `json:"sma_50_signal,omitempty"`
	MACD         *MACDData      `json:"macd,omitempty"`
	Momentum10   *float64       `json:"momentum_10d,omitempty"`
	VolumeSignal string         `json:"volume_signal,omitempty"` // "HIGH", "LOW", "NORMAL"
	Bollinger    *BollingerData `json:"bollinger,omitempty"`
	ATR          *float64       `json:"atr,omitempty"`
}

// FundamentalBreakdown holds the four fundamental sub-scores and the
// assessments the key factor ranking is built from.
type FundamentalBreakdown struct {
	Value         float64 `json:"value"`
	Growth        float64 `json:"growth"`
	Safety        float64 `json:"safety"`
	Quality       float64 `json:"quality"`
	Overall       float64 `json:"overall"`
	PEAssessment  string  `json:"pe_assessment"`
	ROEAssessment string  `json:"roe_assessment"`
	DEAssessment  string  `json:"de_assessment"`
}

// RiskProfile summarises price risk. Metrics are nil when the price series
// was too short to compute them.
type RiskProfile struct {
	VolatilityAnnualized *float64  `json:"volatility_annualized,omitempty"` // percent
	MaxDrawdownPct       *float64  `json:"max_drawdown_pct,omitempty"`      // non-positive percent
	Beta                 *float64  `json:"beta,omitempty"`
	VaR95Pct             *float64  `json:"var_95_pct,omitempty"` // one-day percent
	Level                RiskLevel `json:"risk_level"`
}

// TimeframeProjection is the outlook for one horizon.
type TimeframeProjection struct {
	Horizon      Horizon `json:"horizon"`
	BlendedScore float64 `json:"blended_score"`
	Signal       Signal  `json:"signal"`
	TargetPrice  float64 `json:"target_price"`
	StopLoss     float64 `json:"stop_loss"`
}

// Impact is the direction a key factor pushes the recommendation.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
)

// KeyFactor is a discrete, human readable driver of a recommendation.
type KeyFactor struct {
	Factor      string  `json:"factor"`
	Description string  `json:"description"`
	Impact      Impact  `json:"impact"`
	Score       float64 `json:"score"`
}

// Scenarios lists up to three bull and three bear case bullet points.
type Scenarios struct {
	Bull []string `json:"bull"`
	Bear []string `json:"bear"`
}

// Recommendation is the full output for one stock. It is built fresh on
// every call and not modified afterwards.
type Recommendation struct {
	Ticker         string                `json:"ticker"`
	CurrentPrice   float64               `json:"current_price,omitempty"`
	CompositeScore float64               `json:"composite_score"` // one decimal; Signal is classified from this value
	Signal         Signal                `json:"signal"`
	Confidence     float64               `json:"confidence"`
	FactorScores   []FactorScore         `json:"factor_scores"`
	Technical      TechnicalIndicators   `json:"technical"`
	Fundamental    FundamentalBreakdown  `json:"fundamental"`
	Risk           RiskProfile           `json:"risk"`
	Timeframes     []TimeframeProjection `json:"timeframes,omitempty"`
	KeyFactors     []KeyFactor           `json:"key_factors"`
	Scenarios      Scenarios             `json:"scenarios"`
	Verdict        string                `json:"verdict,omitempty"`
	ActionSummary  string                `json:"action_summary,omitempty"`
	Rationale      string                `json:"rationale,omitempty"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// Factor returns the named factor score, or 0 and false.
func (r *Recommendation) Factor(name string) (float64, bool) {
	for _, f := range r.FactorScores {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

// Projection returns the projection for a horizon, or nil when the
// recommendation carries no price targets.
func (r *Recommendation) Projection(h Horizon) *TimeframeProjection {
	for i := range r.Timeframes {
		if r.Timeframes[i].Horizon == h {
			return &r.Timeframes[i]
		}
	}
	return nil
}

// StockInput is everything the engine needs to score one stock.
type StockInput struct {
	Ticker       string              `json:"ticker"`
	History      []OHLCV             `json:"history,omitempty"`
	Quote        *Quote              `json:"quote,omitempty"`
	Fundamentals FundamentalSnapshot `json:"fundamentals"`
	Sentiment    SentimentSnapshot   `json:"sentiment"`
	News         []NewsItem          `json:"news,omitempty"`
}

// CurrentPrice returns the quote price, or 0 when there is no quote.
func (in *StockInput) CurrentPrice() float64 {
	if in.Quote == nil {
		return 0
	}
	return in.Quote.LastPrice
}
