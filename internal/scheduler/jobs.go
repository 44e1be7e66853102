package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/indiquant/internal/narrative"
	"github.com/seenimoa/indiquant/pkg/models"
	"github.com/seenimoa/indiquant/pkg/utils"
)

// InputSource gathers the engine input for a ticker.
type InputSource interface {
	Assemble(ctx context.Context, ticker string) (*models.StockInput, error)
}

// Recommender scores one input.
type Recommender interface {
	Recommend(in *models.StockInput) (*models.Recommendation, error)
}

// Saver persists a recommendation.
type Saver interface {
	Save(ctx context.Context, rec *models.Recommendation) (string, error)
}

// Publisher pushes a fresh recommendation to live subscribers.
type Publisher interface {
	Publish(rec *models.Recommendation)
}

// WatchlistJob rescores every watchlist ticker: assemble input, run the
// engine, optionally rewrite the rationale, save and publish.
type WatchlistJob struct {
	Tickers   []string
	Inputs    InputSource
	Engine    Recommender
	Narrator  narrative.Narrator // optional
	Store     Saver              // optional
	Publisher Publisher          // optional
	Workers   int
	Log       zerolog.Logger
}

// Name implements Job.
func (j *WatchlistJob) Name() string { return "watchlist-rescore" }

// Run implements Job. One failing ticker does not stop the others; the
// joined per-ticker errors are returned.
func (j *WatchlistJob) Run(ctx context.Context) error {
	_, err := j.Rescore(ctx)
	return err
}

// Rescore runs the job and returns the recommendations produced, in
// watchlist order with failed tickers left out.
func (j *WatchlistJob) Rescore(ctx context.Context) ([]*models.Recommendation, error) {
	results := make([]*models.Recommendation, len(j.Tickers))
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	if j.Workers > 0 {
		g.SetLimit(j.Workers)
	}
	for i, ticker := range j.Tickers {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rec, err := j.one(gctx, ticker)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", ticker, err))
				mu.Unlock()
				return nil
			}
			results[i] = rec
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*models.Recommendation, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	j.Log.Info().
		Int("scored", len(out)).
		Int("failed", len(errs)).
		Msg("watchlist rescored")
	return out, errors.Join(errs...)
}

func (j *WatchlistJob) one(ctx context.Context, ticker string) (*models.Recommendation, error) {
	in, err := j.Inputs.Assemble(ctx, ticker)
	if err != nil {
		return nil, err
	}
	rec, err := j.Engine.Recommend(in)
	if err != nil {
		return nil, err
	}

	if j.Narrator != nil {
		enriched, err := narrative.Enrich(ctx, j.Narrator, rec)
		if err != nil {
			j.Log.Warn().Err(err).Str("ticker", rec.Ticker).Msg("keeping deterministic rationale")
		}
		rec = enriched
	}

	if j.Store != nil {
		if _, err := j.Store.Save(ctx, rec); err != nil {
			return nil, err
		}
	}
	if j.Publisher != nil {
		j.Publisher.Publish(rec)
	}
	j.Log.Debug().
		Str("ticker", rec.Ticker).
		Str("signal", string(rec.Signal)).
		Float64("composite", rec.CompositeScore).
		Msg("ticker rescored")
	return rec, nil
}

// Pruner deletes old recommendations.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, t time.Time) (int64, error)
}

// PruneJob removes recommendations older than the retention period.
type PruneJob struct {
	Store     Pruner
	Retention time.Duration
	Now       func() time.Time
}

// Name implements Job.
func (p *PruneJob) Name() string { return "prune-recommendations" }

// Run implements Job.
func (p *PruneJob) Run(ctx context.Context) error {
	if p.Retention <= 0 {
		return nil
	}
	now := utils.NowIST
	if p.Now != nil {
		now = p.Now
	}
	_, err := p.Store.DeleteOlderThan(ctx, now().Add(-p.Retention))
	return err
}

// tradingDayJob skips its inner job on NSE weekends and holidays.
type tradingDayJob struct {
	Job
	now func() time.Time
	log zerolog.Logger
}

// TradingDaysOnly wraps job so it runs only on NSE trading days. Cron
// weekday fields cannot express exchange holidays. A nil now uses the
// IST clock.
func TradingDaysOnly(job Job, now func() time.Time, log zerolog.Logger) Job {
	if now == nil {
		now = utils.NowIST
	}
	return &tradingDayJob{Job: job, now: now, log: log}
}

// Run implements Job.
func (t *tradingDayJob) Run(ctx context.Context) error {
	at := t.now()
	if !utils.IsTradingDay(at) {
		reason := "weekend"
		if name, ok := utils.Holiday(at); ok {
			reason = name
		}
		t.log.Info().Str("job", t.Name()).Str("reason", reason).Msg("market closed, job skipped")
		return nil
	}
	return t.Job.Run(ctx)
}
