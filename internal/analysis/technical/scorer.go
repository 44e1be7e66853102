package technical

import (
	"github.com/seenimoa/indiquant/internal/analysis/ladder"
	"github.com/seenimoa/indiquant/pkg/models"
)

// Params configures the technical factor score.
type Params struct {
	MinBars        int // below this only the quote move is scored
	RSIPeriod      int
	SMAShort       int
	SMALong        int
	MACDFast       int
	MACDSlow       int
	MACDSignal     int
	MACDMinCloses  int
	MomentumPeriod int
	VolumeWindow   int
	VolumeSpike    float64 // latest/average ratio counted as HIGH
	VolumeDry      float64 // latest/average ratio counted as LOW
	BollingerLen   int
	ATRPeriod      int
}

// DefaultParams returns the standard indicator windows.
func DefaultParams() Params {
	return Params{
		MinBars:        5,
		RSIPeriod:      14,
		SMAShort:       20,
		SMALong:        50,
		MACDFast:       12,
		MACDSlow:       26,
		MACDSignal:     9,
		MACDMinCloses:  10,
		MomentumPeriod: 10,
		VolumeWindow:   10,
		VolumeSpike:    1.5,
		VolumeDry:      0.5,
		BollingerLen:   20,
		ATRPeriod:      14,
	}
}

// Baseline is the neutral score every factor starts from.
const Baseline = 50.0

var (
	rsiLadder = ladder.Ladder{
		Steps: []ladder.Step{
			ladder.Lt(30, 20, "OVERSOLD"),
			ladder.Lt(40, 10, "APPROACHING_OVERSOLD"),
			ladder.Gt(70, -20, "OVERBOUGHT"),
			ladder.Gt(60, -10, "APPROACHING_OVERBOUGHT"),
		},
		Default: "NEUTRAL",
	}

	momentumLadder = ladder.Ladder{Steps: []ladder.Step{
		ladder.Gt(5, 15, "STRONG_UP"),
		ladder.Gt(0, 5, "UP"),
		ladder.Lt(-5, -15, "STRONG_DOWN"),
		ladder.Lt(0, -5, "DOWN"),
	}}

	quoteChangeLadder = ladder.Ladder{Steps: []ladder.Step{
		ladder.Gt(2, 15, ""),
		ladder.Gt(0, 5, ""),
		ladder.Lt(-2, -15, ""),
		ladder.Lt(0, -5, ""),
	}}
)

// Result is the technical factor score with the indicators behind it.
type Result struct {
	Score      float64
	Indicators models.TechnicalIndicators
}

// Score computes the technical factor score from a price series and an
// optional quote. Every sub-signal is an independent additive term on a
// baseline of 50; the total is clamped to [0, 100].
func Score(candles []models.OHLCV, quote *models.Quote, p Params) Result {
	var res Result
	score := Baseline

	if len(candles) > 0 {
		last := candles[len(candles)-1].Close
		res.Indicators.LastClose = &last
	}

	if len(candles) < p.MinBars {
		if quote != nil {
			score += quoteChangeLadder.Delta(quote.ChangePct)
		}
		res.Score = ladder.Clamp100(score)
		return res
	}

	closes := extractCloses(candles)
	price := closes[len(closes)-1]
	ind := &res.Indicators

	if rsi, ok := RSI(closes, p.RSIPeriod); ok {
		delta, label := rsiLadder.Eval(rsi)
		score += delta
		ind.RSI = &rsi
		ind.RSISignal = label
	}

	if sma, ok := SMALatest(closes, p.SMAShort); ok {
		delta, label := aboveBelow(price, sma)
		score += delta
		ind.SMA20 = &sma
		ind.SMA20Signal = label
	}
	if sma, ok := SMALatest(closes, p.SMALong); ok {
		delta, label := aboveBelow(price, sma)
		score += delta
		ind.SMA50 = &sma
		ind.SMA50Signal = label
	}

	if m, ok := MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal, p.MACDMinCloses); ok {
		trend := "BEARISH"
		if m.Histogram > 0 {
			trend = "BULLISH"
			score += 10
		} else {
			score -= 10
		}
		ind.MACD = &models.MACDData{
			MACDLine:   m.MACD,
			SignalLine: m.Signal,
			Histogram:  m.Histogram,
			Trend:      trend,
		}
	}

	if mom, ok := Momentum(closes, p.MomentumPeriod); ok {
		score += momentumLadder.Delta(mom)
		ind.Momentum10 = &mom
	}

	if ratio, ok := VolumeRatio(candles, p.VolumeWindow); ok {
		switch {
		case ratio > p.VolumeSpike:
			ind.VolumeSignal = "HIGH"
			if dailyChange(closes, quote) > 0 {
				score += 5
			}
		case ratio < p.VolumeDry:
			ind.VolumeSignal = "LOW"
		default:
			ind.VolumeSignal = "NORMAL"
		}
	}

	if bb, ok := BollingerBands(closes, p.BollingerLen, 2); ok {
		ind.Bollinger = &bb
	}
	if atr, ok := ATR(candles, p.ATRPeriod); ok {
		ind.ATR = &atr
	}

	res.Score = ladder.Clamp100(score)
	return res
}

func aboveBelow(price, ma float64) (float64, string) {
	if price > ma {
		return 10, "ABOVE"
	}
	return -10, "BELOW"
}

// dailyChange prefers the quote's change and falls back to the last two
// closes.
func dailyChange(closes []float64, quote *models.Quote) float64 {
	if quote != nil {
		return quote.ChangePct
	}
	n := len(closes)
	if n < 2 {
		return 0
	}
	return closes[n-1] - closes[n-2]
}
