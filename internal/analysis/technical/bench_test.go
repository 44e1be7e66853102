package technical

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/seenimoa/indiquant/pkg/models"
)

// randomWalk returns n daily bars drifting up from 1500 with a fixed seed.
func randomWalk(n int) []models.OHLCV {
	rng := rand.New(rand.NewSource(7))
	bars := make([]models.OHLCV, n)
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	last := 1500.0
	for i := range bars {
		next := last * (1 + (rng.Float64()-0.47)*0.03)
		bars[i] = models.OHLCV{
			Timestamp: day.AddDate(0, 0, i),
			Open:      last,
			High:      max(last, next) * (1 + rng.Float64()*0.01),
			Low:       min(last, next) * (1 - rng.Float64()*0.01),
			Close:     next,
			Volume:    200_000 + rng.Int63n(3_000_000),
		}
		last = next
	}
	return bars
}

func BenchmarkIndicators(b *testing.B) {
	bars := randomWalk(500)
	closes := extractCloses(bars)

	cases := map[string]func(){
		"SMA20":     func() { SMA(closes, 20) },
		"EMA26":     func() { EMA(closes, 26) },
		"RSI14":     func() { RSI(closes, 14) },
		"MACD":      func() { MACD(closes, 12, 26, 9, 10) },
		"Bollinger": func() { BollingerBands(closes, 20, 2) },
		"ATR14":     func() { ATR(bars, 14) },
		"Momentum":  func() { Momentum(closes, 20) },
		"Volume":    func() { VolumeRatio(bars, 20) },
	}
	for name, fn := range cases {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				fn()
			}
		})
	}
}

func BenchmarkScore(b *testing.B) {
	p := DefaultParams()
	for _, n := range []int{60, 250, 2000} {
		bars := randomWalk(n)
		b.Run(fmt.Sprintf("bars=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				Score(bars, nil, p)
			}
		})
	}
}
