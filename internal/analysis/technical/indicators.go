// Package technical implements technical analysis indicators and the
// technical factor score for NSE stock price data. All functions operate on
// []models.OHLCV candle slices or their closing prices, oldest first.
package technical

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/seenimoa/indiquant/pkg/models"
)

// RSI calculates the Relative Strength Index over the trailing `period`
// price changes using simple averages. Returns false when fewer than
// period+1 closes are available. A window with no losses yields exactly 100.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 {
		period = 14
	}
	n := len(closes)
	if n < period+1 {
		return 0, false
	}

	var gain, loss float64
	for i := n - period; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// MACDResult holds a single MACD computation point.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD calculates the latest Moving Average Convergence Divergence point.
// Default parameters: fast=12, slow=26, signal=9. EMAs are seeded with the
// first close, so minCloses can be lower than the slow period.
func MACD(closes []float64, fast, slow, signal, minCloses int) (MACDResult, bool) {
	if fast <= 0 {
		fast = 12
	}
	if slow <= 0 {
		slow = 26
	}
	if signal <= 0 {
		signal = 9
	}
	if len(closes) == 0 || len(closes) < minCloses {
		return MACDResult{}, false
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine := EMA(macdLine, signal)

	last := len(closes) - 1
	return MACDResult{
		MACD:      macdLine[last],
		Signal:    signalLine[last],
		Histogram: macdLine[last] - signalLine[last],
	}, true
}

// Momentum returns the percentage change of the latest close against the
// close `period` bars earlier.
func Momentum(closes []float64, period int) (float64, bool) {
	n := len(closes)
	if period <= 0 || n < period+1 {
		return 0, false
	}
	base := closes[n-1-period]
	if base == 0 {
		return 0, false
	}
	return (closes[n-1] - base) / base * 100, true
}

// VolumeRatio returns latest volume divided by the average volume of the
// trailing window, which includes the latest bar.
func VolumeRatio(candles []models.OHLCV, window int) (float64, bool) {
	n := len(candles)
	if window <= 0 || n < window {
		return 0, false
	}
	var sum float64
	for _, c := range candles[n-window:] {
		sum += float64(c.Volume)
	}
	avgVol := sum / float64(window)
	if avgVol == 0 {
		return 0, false
	}
	return float64(candles[n-1].Volume) / avgVol, true
}

// BollingerBands returns the latest Bollinger Bands. Default: period=20,
// stddev multiplier=2.
func BollingerBands(closes []float64, period int, mult float64) (models.BollingerData, bool) {
	if period <= 0 {
		period = 20
	}
	if mult <= 0 {
		mult = 2
	}
	if len(closes) < period {
		return models.BollingerData{}, false
	}

	upper, middle, lower := talib.BBands(closes, period, mult, mult, talib.SMA)
	last := len(closes) - 1
	if math.IsNaN(upper[last]) {
		return models.BollingerData{}, false
	}
	return models.BollingerData{Upper: upper[last], Middle: middle[last], Lower: lower[last]}, true
}

// ATR calculates the latest Average True Range. Default period is 14.
func ATR(candles []models.OHLCV, period int) (float64, bool) {
	if period <= 0 {
		period = 14
	}
	if len(candles) < period+1 {
		return 0, false
	}

	high := make([]float64, len(candles))
	low := make([]float64, len(candles))
	closes := extractCloses(candles)
	for i, c := range candles {
		high[i] = c.High
		low[i] = c.Low
	}

	atr := talib.Atr(high, low, closes, period)
	v := atr[len(atr)-1]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// --- helper functions ---

func extractCloses(candles []models.OHLCV) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}
