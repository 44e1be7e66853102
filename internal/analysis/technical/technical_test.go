package technical

import (
	"math"
	"testing"
	"time"

	"github.com/seenimoa/indiquant/pkg/models"
)

// makeCandles generates synthetic OHLCV data for testing.
func makeCandles(n int, basePrice float64, trend float64) []models.OHLCV {
	candles := make([]models.OHLCV, n)
	price := basePrice
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		open := price
		close := open + trend
		high := open + 5
		low := open - 5
		if close > open {
			high = close + 3
		} else {
			low = close - 3
		}
		candles[i] = models.OHLCV{
			Timestamp: start.AddDate(0, 0, i),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    1000000,
		}
		price = close
	}
	return candles
}

// compounding returns n candles whose close rises by pct percent each bar.
func compounding(n int, base, pct float64) []models.OHLCV {
	candles := make([]models.OHLCV, n)
	price := base
	for i := range candles {
		candles[i] = models.OHLCV{Open: price, High: price * 1.005, Low: price * 0.995, Close: price, Volume: 500000}
		price *= 1 + pct/100
	}
	return candles
}

func TestRSIZeroLossesIsExactly100(t *testing.T) {
	closes := extractCloses(makeCandles(30, 100, 1.5))
	rsi, ok := RSI(closes, 14)
	if !ok {
		t.Fatal("RSI should be defined for 30 closes")
	}
	if rsi != 100 {
		t.Errorf("RSI with no losses: got %v, want exactly 100", rsi)
	}
}

func TestRSIAllLosses(t *testing.T) {
	closes := extractCloses(makeCandles(20, 200, -2))
	rsi, ok := RSI(closes, 14)
	if !ok || rsi != 0 {
		t.Errorf("RSI with no gains: got %v (ok=%v), want 0", rsi, ok)
	}
}

func TestRSIKnownValue(t *testing.T) {
	// 14 deltas: seven +2 and seven -1 → avgGain=1, avgLoss=0.5, RS=2.
	closes := make([]float64, 15)
	closes[0] = 100
	for i := 1; i < 15; i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] + 2
		} else {
			closes[i] = closes[i-1] - 1
		}
	}
	rsi, ok := RSI(closes, 14)
	if !ok {
		t.Fatal("RSI should be defined for 15 closes")
	}
	want := 100 - 100/3.0
	if math.Abs(rsi-want) > 1e-9 {
		t.Errorf("RSI: got %.6f, want %.6f", rsi, want)
	}
}

func TestRSIInsufficientData(t *testing.T) {
	if _, ok := RSI(extractCloses(makeCandles(14, 100, 1)), 14); ok {
		t.Error("RSI should be undefined for 14 closes")
	}
}

func TestSMALatest(t *testing.T) {
	v, ok := SMALatest([]float64{1, 2, 3, 4, 5}, 3)
	if !ok || v != 4 {
		t.Errorf("SMALatest: got %v (ok=%v), want 4", v, ok)
	}
	if _, ok := SMALatest([]float64{1, 2}, 3); ok {
		t.Error("SMALatest should be undefined for short data")
	}
}

func TestEMASeededWithFirstValue(t *testing.T) {
	ema := EMA([]float64{10, 10, 10, 20}, 3)
	if ema[0] != 10 || ema[2] != 10 {
		t.Errorf("EMA should hold the seed on flat data, got %v", ema)
	}
	if ema[3] != 15 {
		t.Errorf("EMA[3]: got %v, want 15 (k=0.5)", ema[3])
	}
}

func TestMACDUptrendHistogramPositive(t *testing.T) {
	m, ok := MACD(extractCloses(compounding(25, 100, 1)), 12, 26, 9, 10)
	if !ok {
		t.Fatal("MACD should be defined for 25 closes")
	}
	if m.Histogram <= 0 {
		t.Errorf("expected positive histogram in uptrend, got %.6f", m.Histogram)
	}
	if m.MACD <= 0 {
		t.Errorf("expected positive MACD line in uptrend, got %.6f", m.MACD)
	}
}

func TestMACDMinCloses(t *testing.T) {
	if _, ok := MACD(extractCloses(makeCandles(9, 100, 1)), 12, 26, 9, 10); ok {
		t.Error("MACD should be undefined below the minimum close count")
	}
}

func TestMomentum(t *testing.T) {
	closes := []float64{100, 1, 1, 1, 1, 1, 1, 1, 1, 1, 110}
	m, ok := Momentum(closes, 10)
	if !ok || math.Abs(m-10) > 1e-9 {
		t.Errorf("Momentum: got %v (ok=%v), want 10", m, ok)
	}
	if _, ok := Momentum(closes[:10], 10); ok {
		t.Error("Momentum should be undefined for 10 closes")
	}
	if _, ok := Momentum([]float64{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, 10); ok {
		t.Error("Momentum should be undefined against a zero base")
	}
}

func TestBollingerAndATR(t *testing.T) {
	candles := makeCandles(40, 100, 0.5)
	bb, ok := BollingerBands(extractCloses(candles), 20, 2)
	if !ok {
		t.Fatal("Bollinger should be defined for 40 closes")
	}
	if !(bb.Upper > bb.Middle && bb.Middle > bb.Lower) {
		t.Errorf("Bollinger bands out of order: %+v", bb)
	}
	atr, ok := ATR(candles, 14)
	if !ok || atr <= 0 {
		t.Errorf("ATR: got %v (ok=%v), want positive", atr, ok)
	}
	if _, ok := ATR(candles[:10], 14); ok {
		t.Error("ATR should be undefined for 10 candles")
	}
}

func TestScoreShortSeriesUsesQuote(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		name  string
		quote *models.Quote
		want  float64
	}{
		{"no quote", nil, 50},
		{"strong up", &models.Quote{LastPrice: 100, ChangePct: 3}, 65},
		{"mild up", &models.Quote{LastPrice: 100, ChangePct: 0.4}, 55},
		{"flat", &models.Quote{LastPrice: 100}, 50},
		{"mild down", &models.Quote{LastPrice: 100, ChangePct: -1}, 45},
		{"strong down", &models.Quote{LastPrice: 100, ChangePct: -4}, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(makeCandles(3, 100, 1), tt.quote, p)
			if got.Score != tt.want {
				t.Errorf("score: got %v, want %v", got.Score, tt.want)
			}
			if got.Indicators.RSI != nil || got.Indicators.MACD != nil {
				t.Error("short series must not produce indicators")
			}
		})
	}
}

func TestScoreEmptySeries(t *testing.T) {
	got := Score(nil, nil, DefaultParams())
	if got.Score != 50 {
		t.Errorf("empty series: got %v, want 50", got.Score)
	}
	if got.Indicators.LastClose != nil {
		t.Error("empty series must not report a last close")
	}
}

func TestScoreRisingSeries(t *testing.T) {
	got := Score(compounding(25, 100, 1), nil, DefaultParams())
	ind := got.Indicators

	if ind.RSI == nil || *ind.RSI != 100 {
		t.Fatalf("RSI: got %v, want 100", ind.RSI)
	}
	if ind.RSISignal != "OVERBOUGHT" {
		t.Errorf("RSISignal: got %q", ind.RSISignal)
	}
	if ind.MACD == nil || ind.MACD.Histogram <= 0 || ind.MACD.Trend != "BULLISH" {
		t.Errorf("MACD: got %+v, want bullish histogram", ind.MACD)
	}
	if ind.SMA20Signal != "ABOVE" {
		t.Errorf("SMA20Signal: got %q, want ABOVE", ind.SMA20Signal)
	}
	if ind.SMA50 != nil {
		t.Error("SMA50 should be absent for 25 bars")
	}
	// 50 - 20 (overbought) + 10 (SMA20) + 10 (MACD) + 15 (momentum)
	if math.Abs(got.Score-65) > 1e-9 {
		t.Errorf("score: got %v, want 65", got.Score)
	}
}

func TestScoreVolumeSpikeOnUpDay(t *testing.T) {
	flat := func(lastVolume int64) []models.OHLCV {
		candles := make([]models.OHLCV, 12)
		for i := range candles {
			candles[i] = models.OHLCV{Open: 100, High: 100, Low: 100, Close: 100, Volume: 1000}
		}
		candles[11].Close = 101
		candles[11].High = 101
		candles[11].Volume = lastVolume
		return candles
	}
	p := DefaultParams()
	normal := Score(flat(1000), nil, p)
	spike := Score(flat(5000), nil, p)

	if spike.Indicators.VolumeSignal != "HIGH" {
		t.Errorf("VolumeSignal: got %q, want HIGH", spike.Indicators.VolumeSignal)
	}
	if normal.Indicators.VolumeSignal != "NORMAL" {
		t.Errorf("VolumeSignal: got %q, want NORMAL", normal.Indicators.VolumeSignal)
	}
	if spike.Score-normal.Score != 5 {
		t.Errorf("volume spike bonus: got %v, want 5", spike.Score-normal.Score)
	}

	// A down quote cancels the bonus.
	down := Score(flat(5000), &models.Quote{LastPrice: 101, ChangePct: -0.5}, p)
	if down.Score != normal.Score {
		t.Errorf("spike on down day: got %v, want %v", down.Score, normal.Score)
	}
}

func TestScoreBounds(t *testing.T) {
	p := DefaultParams()
	series := [][]models.OHLCV{
		makeCandles(80, 100, 2),
		makeCandles(80, 500, -3),
		compounding(60, 50, -2),
		compounding(120, 10, 3),
	}
	for i, s := range series {
		got := Score(s, nil, p)
		if got.Score < 0 || got.Score > 100 {
			t.Errorf("series %d: score %v out of [0,100]", i, got.Score)
		}
	}
}
