package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/seenimoa/indiquant/internal/analysis/fundamental"
	"github.com/seenimoa/indiquant/internal/analysis/risk"
	"github.com/seenimoa/indiquant/internal/analysis/technical"
)

// Weights combines the four factor scores into the composite.
type Weights struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
	Sentiment   float64 `json:"sentiment"`
	Risk        float64 `json:"risk"`
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Technical + w.Fundamental + w.Sentiment + w.Risk
}

// Thresholds are the lower bounds of each signal. Anything below Sell is
// AVOID.
type Thresholds struct {
	StrongBuy float64 `json:"strong_buy"`
	Buy       float64 `json:"buy"`
	Hold      float64 `json:"hold"`
	Sell      float64 `json:"sell"`
}

// Config is the read-only configuration shared by every recommendation.
// It is passed by value and never modified after the Engine is built.
type Config struct {
	Weights       Weights
	Thresholds    Thresholds
	Technical     technical.Params
	Fundamental   fundamental.Params
	Risk          risk.Params
	MaxKeyFactors int
	MaxScenarios  int
}

// DefaultConfig returns the standard weights and thresholds.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Technical:   0.30,
			Fundamental: 0.35,
			Sentiment:   0.15,
			Risk:        0.20,
		},
		Thresholds: Thresholds{
			StrongBuy: 80,
			Buy:       65,
			Hold:      45,
			Sell:      30,
		},
		Technical:     technical.DefaultParams(),
		Fundamental:   fundamental.DefaultParams(),
		Risk:          risk.DefaultParams(),
		MaxKeyFactors: 6,
		MaxScenarios:  3,
	}
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("engine: invalid config")

// Validate checks that weights are non-negative and sum to 1 and that the
// signal thresholds strictly descend.
func (c Config) Validate() error {
	w := c.Weights
	for _, v := range []float64{w.Technical, w.Fundamental, w.Sentiment, w.Risk} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: negative factor weight %v", ErrInvalidConfig, v)
		}
	}
	if math.Abs(w.Sum()-1) > 1e-6 {
		return fmt.Errorf("%w: factor weights sum to %.4f, want 1", ErrInvalidConfig, w.Sum())
	}

	t := c.Thresholds
	if !(t.StrongBuy > t.Buy && t.Buy > t.Hold && t.Hold > t.Sell) {
		return fmt.Errorf("%w: signal thresholds must descend (got %v/%v/%v/%v)",
			ErrInvalidConfig, t.StrongBuy, t.Buy, t.Hold, t.Sell)
	}
	if t.Sell < 0 || t.StrongBuy > 100 {
		return fmt.Errorf("%w: signal thresholds must lie in [0, 100]", ErrInvalidConfig)
	}

	if c.MaxKeyFactors <= 0 || c.MaxScenarios <= 0 {
		return fmt.Errorf("%w: key factor and scenario limits must be positive", ErrInvalidConfig)
	}
	if c.Fundamental.BenchmarkPE <= 0 || c.Fundamental.BenchmarkPB <= 0 {
		return fmt.Errorf("%w: benchmarks must be positive", ErrInvalidConfig)
	}
	return nil
}
