// Package engine combines the technical, fundamental, sentiment and risk
// factor scores into one explainable recommendation per stock.
//
// The engine is a pure computation: it performs no I/O, holds no mutable
// state and returns identical output for identical input. The only clock
// read is the GeneratedAt stamp, which can be fixed with WithClock.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/indiquant/internal/analysis/fundamental"
	"github.com/seenimoa/indiquant/internal/analysis/risk"
	"github.com/seenimoa/indiquant/internal/analysis/sentiment"
	"github.com/seenimoa/indiquant/internal/analysis/technical"
	"github.com/seenimoa/indiquant/internal/narrative"
	"github.com/seenimoa/indiquant/pkg/models"
	"github.com/seenimoa/indiquant/pkg/utils"
)

// Input errors.
var (
	ErrNoTicker     = errors.New("engine: ticker is required")
	ErrInvalidInput = errors.New("engine: invalid input")
)

// Engine scores stocks against a fixed configuration. It is safe for
// concurrent use.
type Engine struct {
	cfg Config
	now func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock sets the clock used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New validates cfg and builds an Engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, now: utils.NowIST}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Recommend scores one stock. Missing data degrades toward neutral scores;
// only a missing ticker or non-finite / negative input values are errors.
func (e *Engine) Recommend(in *models.StockInput) (*models.Recommendation, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: nil input", ErrInvalidInput)
	}
	ticker := utils.NormalizeTicker(in.Ticker)
	if ticker == "" {
		return nil, ErrNoTicker
	}
	if err := validate(in); err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}

	cfg := e.cfg
	tech := technical.Score(in.History, in.Quote, cfg.Technical)
	fund := fundamental.Score(in.Fundamentals, cfg.Fundamental)
	sent := sentiment.Score(in.Sentiment, in.News)
	rsk := risk.Analyze(in.History, in.Fundamentals, cfg.Risk)

	scores := Scores{
		Technical:   tech.Score,
		Fundamental: fund.Overall,
		Sentiment:   sent,
		Risk:        rsk.Score,
	}
	composite := round1(Composite(scores, cfg.Weights))
	signal := Classify(composite, cfg.Thresholds)
	price := in.CurrentPrice()

	rec := &models.Recommendation{
		Ticker:         ticker,
		CurrentPrice:   price,
		CompositeScore: composite,
		Signal:         signal,
		Confidence:     round1(Confidence(scores.values()...)),
		FactorScores:   scores.factorScores(),
		Technical:      tech.Indicators,
		Fundamental:    fund,
		Risk:           rsk.Profile,
		Timeframes:     Project(tech.Score, fund.Overall, price, rsk.Profile.Level, cfg.Thresholds),
		KeyFactors:     KeyFactors(tech.Indicators, fund, in.Fundamentals, rsk.Profile, cfg.MaxKeyFactors),
		Scenarios:      BuildScenarios(fund, tech.Indicators, cfg.MaxScenarios),
		GeneratedAt:    e.now(),
	}
	rec.Verdict = narrative.Verdict(signal, composite, fund)
	rec.Rationale = narrative.Rationale(ticker, signal, rec.KeyFactors, in.Fundamentals, tech.Indicators.RSI)
	rec.ActionSummary = narrative.ActionSummary(signal, price, rec.Projection(models.HorizonMediumTerm))
	return rec, nil
}

// BatchResult is the outcome for one input of RecommendBatch.
type BatchResult struct {
	Ticker         string                 `json:"ticker"`
	Recommendation *models.Recommendation `json:"recommendation,omitempty"`
	Err            error                  `json:"-"`
}

// RecommendBatch scores inputs concurrently on at most workers goroutines.
// Results keep input order. A bad input only fails its own entry; the
// returned error is non-nil only when ctx is cancelled before all inputs
// were scheduled.
func (e *Engine) RecommendBatch(ctx context.Context, inputs []models.StockInput, workers int) ([]BatchResult, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]BatchResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range inputs {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			in := &inputs[i]
			rec, err := e.Recommend(in)
			results[i] = BatchResult{Ticker: utils.NormalizeTicker(in.Ticker), Recommendation: rec, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// validate rejects values no data source should produce.
func validate(in *models.StockInput) error {
	if q := in.Quote; q != nil {
		if !finite(q.LastPrice, q.ChangePct) || q.LastPrice < 0 {
			return fmt.Errorf("%w: quote %+v", ErrInvalidInput, *q)
		}
	}
	for i, b := range in.History {
		if !finite(b.Open, b.High, b.Low, b.Close) || b.Volume < 0 {
			return fmt.Errorf("%w: bar %d", ErrInvalidInput, i)
		}
	}
	f := in.Fundamentals
	if !finite(f.PE, f.PB, f.ROE, f.ROCE, f.DebtEquity, f.DividendYield) {
		return fmt.Errorf("%w: non-finite fundamentals", ErrInvalidInput)
	}
	s := in.Sentiment
	if s.Bullish < 0 || s.Bearish < 0 || s.Neutral < 0 {
		return fmt.Errorf("%w: negative sentiment count", ErrInvalidInput)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
