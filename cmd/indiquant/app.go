package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/indiquant/internal/datasource"
	"github.com/seenimoa/indiquant/internal/engine"
	"github.com/seenimoa/indiquant/internal/llm"
	"github.com/seenimoa/indiquant/internal/logger"
	"github.com/seenimoa/indiquant/internal/narrative"
	"github.com/seenimoa/indiquant/internal/store"
	"github.com/seenimoa/indiquant/pkg/models"
)

// app holds the components shared by the commands.
type app struct {
	log    zerolog.Logger
	engine *engine.Engine
}

func newApp() (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logger.SetGlobalLogger(log)

	eng, err := engine.New(cfg.EngineConfig())
	if err != nil {
		return nil, err
	}
	return &app{log: log, engine: eng}, nil
}

// assembler wires the live data sources. history, when non-nil, is scored
// as given instead of the live chart and the configured history directory.
func (a *app) assembler(history datasource.HistoryLoader) *datasource.Assembler {
	ds := cfg.DataSource
	ttl := time.Duration(ds.CacheTTL) * time.Second
	client := datasource.NewClient(time.Duration(ds.TimeoutSec)*time.Second, ds.RequestsPerSec)

	var charts datasource.ChartSource
	if history == nil {
		charts = datasource.NewYFinance(client, datasource.DefaultYahooURL, ttl)
		if ds.HistoryDir != "" {
			history = datasource.NewHistoryDir(ds.HistoryDir)
		}
	}
	return &datasource.Assembler{
		History: history,
		Charts:  charts,
		Ratios:  datasource.NewScreener(client, ds.ScreenerURL, ttl),
		News:    datasource.NewNews(client, cfg.News.Feeds, ttl, logger.Component(a.log, "news")),
		Period:  "1y",
		MaxNews: cfg.News.MaxItems,
		Log:     logger.Component(a.log, "assembler"),
	}
}

// narrator returns the Gemini narrator, or nil when narratives are off.
func (a *app) narrator(ctx context.Context) (narrative.Narrator, error) {
	n := cfg.Narrative
	if !n.Enabled {
		return nil, nil
	}
	gen, err := llm.NewGemini(ctx, n.GeminiKey,
		llm.WithGeminiModel(n.Model),
		llm.WithTemperature(float32(n.Temperature)),
	)
	if err != nil {
		return nil, err
	}
	a.log.Info().Str("model", gen.Model()).Msg("model-written rationales enabled")
	return llm.NewNarrator(gen, n.Timeout()), nil
}

func (a *app) openStore() (*store.Store, error) {
	return store.Open(cfg.Storage.Path, a.log)
}

func (a *app) workers() int {
	if cfg.Concurrency.Workers > 0 {
		return cfg.Concurrency.Workers
	}
	return 1
}

// barsFile serves one pre-loaded bar series for any ticker.
type barsFile []models.OHLCV

func (b barsFile) Load(string) ([]models.OHLCV, error) {
	if len(b) == 0 {
		return nil, datasource.ErrNoData
	}
	return b, nil
}
