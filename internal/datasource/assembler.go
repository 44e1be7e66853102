package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/indiquant/pkg/models"
	"github.com/seenimoa/indiquant/pkg/utils"
)

// HistoryLoader returns stored daily bars.
type HistoryLoader interface {
	Load(ticker string) ([]models.OHLCV, error)
}

// historySaver is implemented by loaders that can also keep fetched bars.
type historySaver interface {
	Save(ticker string, bars []models.OHLCV) error
}

// ChartSource returns live daily bars with a quote.
type ChartSource interface {
	GetChart(ctx context.Context, ticker, period string) (*Chart, error)
}

// RatioSource returns headline fundamental ratios.
type RatioSource interface {
	GetRatios(ctx context.Context, ticker string) (*Ratios, error)
}

// NewsSource returns classified headlines about a stock.
type NewsSource interface {
	GetStockNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error)
}

// Assembler gathers a complete engine input from whichever sources are
// configured. Any source may be nil.
type Assembler struct {
	History HistoryLoader
	Charts  ChartSource
	Ratios  RatioSource
	News    NewsSource
	Period  string // chart range, e.g. "6mo"
	MaxNews int
	Log     zerolog.Logger
}

// Assemble fetches bars, ratios and news concurrently. A failing source is
// logged and leaves its part of the input empty, which the engine scores as
// neutral. It errors only on a bad ticker, a cancelled context, or when no
// source returned anything.
func (a *Assembler) Assemble(ctx context.Context, ticker string) (*models.StockInput, error) {
	symbol := utils.NormalizeTicker(ticker)
	if !utils.ValidSymbol(symbol) {
		return nil, fmt.Errorf("%w: %q", ErrTickerNotFound, ticker)
	}

	var (
		mu     sync.Mutex
		in     = &models.StockInput{Ticker: symbol}
		ratios *Ratios
		got    int
	)
	log := a.Log.With().Str("ticker", symbol).Logger()
	skip := func(part string, err error) {
		log.Warn().Err(err).Str("part", part).Msg("input source skipped")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bars, quote, err := a.bars(gctx, symbol)
		if err != nil {
			skip("history", err)
			return nil
		}
		mu.Lock()
		in.History, in.Quote = bars, quote
		got++
		mu.Unlock()
		return nil
	})

	if a.Ratios != nil {
		g.Go(func() error {
			r, err := a.Ratios.GetRatios(gctx, symbol)
			if err != nil {
				skip("fundamentals", err)
				return nil
			}
			mu.Lock()
			ratios = r
			got++
			mu.Unlock()
			return nil
		})
	}

	if a.News != nil {
		g.Go(func() error {
			items, err := a.News.GetStockNews(gctx, symbol, a.MaxNews)
			if err != nil {
				skip("news", err)
				return nil
			}
			mu.Lock()
			in.News = items
			if len(items) > 0 {
				got++
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ratios != nil {
		in.Fundamentals = ratios.Fundamentals
		if in.Quote == nil && ratios.Price > 0 {
			in.Quote = &models.Quote{LastPrice: ratios.Price}
		}
	}
	if got == 0 {
		return nil, fmt.Errorf("%w: every source failed for %s", ErrNoData, symbol)
	}
	log.Debug().
		Int("bars", len(in.History)).
		Int("news", len(in.News)).
		Bool("quote", in.Quote != nil).
		Msg("input assembled")
	return in, nil
}

// bars fetches the live chart when one is configured and keeps the fetched
// bars when the loader can save them. Stored history is read only without a
// chart source or when the chart fetch fails.
func (a *Assembler) bars(ctx context.Context, symbol string) ([]models.OHLCV, *models.Quote, error) {
	var chartErr error
	if a.Charts != nil {
		c, err := a.Charts.GetChart(ctx, symbol, a.Period)
		switch {
		case err == nil && len(c.Bars) > 0:
			if w, ok := a.History.(historySaver); ok {
				if err := w.Save(symbol, c.Bars); err != nil {
					a.Log.Warn().Err(err).Str("ticker", symbol).Msg("could not keep fetched history")
				}
			}
			return c.Bars, c.Quote, nil
		case err == nil && a.History == nil:
			return c.Bars, c.Quote, nil
		case err == nil:
			chartErr = fmt.Errorf("%w: empty chart for %s", ErrNoData, symbol)
		default:
			chartErr = err
		}
		if a.History == nil || ctx.Err() != nil {
			return nil, nil, chartErr
		}
		a.Log.Debug().Err(chartErr).Str("ticker", symbol).Msg("live chart unavailable, reading stored history")
	}

	if a.History == nil {
		return nil, nil, fmt.Errorf("%w: no history for %s", ErrNoData, symbol)
	}
	bars, err := a.History.Load(symbol)
	if err == nil && len(bars) == 0 {
		err = fmt.Errorf("%w: empty history for %s", ErrNoData, symbol)
	}
	if err != nil {
		if chartErr != nil {
			return nil, nil, errors.Join(chartErr, err)
		}
		return nil, nil, err
	}
	return bars, quoteFromBars(bars), nil
}

// quoteFromBars uses the last close and its move over the prior close.
func quoteFromBars(bars []models.OHLCV) *models.Quote {
	last := bars[len(bars)-1].Close
	q := &models.Quote{LastPrice: last}
	if len(bars) >= 2 {
		if prev := bars[len(bars)-2].Close; prev > 0 {
			q.ChangePct = (last - prev) / prev * 100
		}
	}
	return q
}
