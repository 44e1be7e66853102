package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/indiquant/internal/datasource"
	"github.com/seenimoa/indiquant/internal/engine"
	"github.com/seenimoa/indiquant/internal/narrative"
	"github.com/seenimoa/indiquant/internal/screener"
	"github.com/seenimoa/indiquant/internal/store"
	"github.com/seenimoa/indiquant/pkg/models"
	"github.com/seenimoa/indiquant/pkg/utils"
)

// maxBatch caps the inputs accepted by one batch or screen request.
const maxBatch = 100

// RecommendRequest is the body for POST /api/v1/recommend. It is a full
// engine input; with Fetch set, or when only a ticker is given, the input
// is gathered from the configured data sources instead.
type RecommendRequest struct {
	models.StockInput
	Fetch bool `json:"fetch,omitempty"`
}

func (r *RecommendRequest) empty() bool {
	in := r.StockInput
	return len(in.History) == 0 && in.Quote == nil &&
		in.Fundamentals == (models.FundamentalSnapshot{}) &&
		in.Sentiment.Total() == 0 && len(in.News) == 0
}

// BatchRequest is the body for POST /api/v1/recommend/batch.
type BatchRequest struct {
	Inputs  []models.StockInput `json:"inputs,omitempty"`
	Tickers []string            `json:"tickers,omitempty"`
}

// BatchItem is one entry of a batch response.
type BatchItem struct {
	Ticker         string                 `json:"ticker"`
	Recommendation *models.Recommendation `json:"recommendation,omitempty"`
	Error          string                 `json:"error,omitempty"`
}

// ScreenRequest is the body for POST /api/v1/screens/{name}. Candidates are
// used as given; Tickers are fetched and scored first. With neither, the
// latest stored recommendations are screened.
type ScreenRequest struct {
	Candidates []screener.Candidate `json:"candidates,omitempty"`
	Tickers    []string             `json:"tickers,omitempty"`
	Limit      int                  `json:"limit,omitempty"`
}

// ScreenResult is the response of POST /api/v1/screens/{name}.
type ScreenResult struct {
	Screen  screener.Screen  `json:"screen"`
	Matches []screener.Match `json:"matches"`
	Scanned int              `json:"scanned"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":        "ok",
			"version":       Version,
			"market_status": utils.MarketStatus(),
			"time_ist":      utils.NowIST().Format(time.RFC3339),
			"ws_clients":    s.wsHub.ClientCount(),
		},
	})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
	defer cancel()

	in := &req.StockInput
	if req.Fetch || req.empty() {
		if s.inputs == nil {
			if req.Fetch {
				writeError(w, http.StatusServiceUnavailable, "live data sources are not configured")
				return
			}
		} else {
			fetched, err := s.inputs.Assemble(ctx, req.Ticker)
			if err != nil {
				writeError(w, statusFor(err), err.Error())
				return
			}
			in = fetched
		}
	}

	rec, err := s.score(ctx, in)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rec})
}

func (s *Server) handleRecommendBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	n := len(req.Inputs) + len(req.Tickers)
	if n == 0 {
		writeError(w, http.StatusBadRequest, "inputs or tickers are required")
		return
	}
	if n > maxBatch {
		writeError(w, http.StatusBadRequest, "too many inputs (max "+strconv.Itoa(maxBatch)+")")
		return
	}
	if len(req.Tickers) > 0 && s.inputs == nil {
		writeError(w, http.StatusServiceUnavailable, "live data sources are not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	items := make([]BatchItem, 0, n)
	inputs := req.Inputs
	if len(req.Tickers) > 0 {
		fetched, failed := s.assembleAll(ctx, req.Tickers)
		inputs = append(inputs, fetched...)
		items = append(items, failed...)
	}

	results, err := s.engine.RecommendBatch(ctx, inputs, s.workers())
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}

	scored := s.finishAll(ctx, results)

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    append(scored, items...),
	})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "recommendation store is not configured")
		return
	}
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	rec, err := s.store.Latest(r.Context(), ticker)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rec})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "recommendation store is not configured")
		return
	}
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	recs, err := s.store.History(r.Context(), ticker, limit)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: recs})
}

func (s *Server) handleLatestAll(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "recommendation store is not configured")
		return
	}
	recs, err := s.store.LatestAll(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: recs})
}

func (s *Server) handleListScreens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"screens":     screener.Screens(),
			"by_category": screener.ByCategory(),
		},
	})
}

func (s *Server) handleRunScreen(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	sc, ok := screener.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown screen: "+name)
		return
	}

	var req ScreenRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if len(req.Candidates)+len(req.Tickers) > maxBatch {
		writeError(w, http.StatusBadRequest, "too many candidates (max "+strconv.Itoa(maxBatch)+")")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	cands := req.Candidates
	switch {
	case len(req.Tickers) > 0:
		if s.inputs == nil {
			writeError(w, http.StatusServiceUnavailable, "live data sources are not configured")
			return
		}
		cands = append(cands, s.candidatesFor(ctx, req.Tickers)...)
	case len(cands) == 0:
		if s.store == nil {
			writeError(w, http.StatusBadRequest, "candidates or tickers are required")
			return
		}
		recs, err := s.store.LatestAll(ctx)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		for _, rec := range recs {
			cands = append(cands, screener.Candidate{Ticker: rec.Ticker, Recommendation: rec.Recommendation})
		}
	}

	matches, err := screener.Run(sc.ID, cands, req.Limit)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if matches == nil {
		matches = []screener.Match{}
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ScreenResult{Screen: sc, Matches: matches, Scanned: len(cands)},
	})
}

// score runs the engine on one input and finishes the result.
func (s *Server) score(ctx context.Context, in *models.StockInput) (*models.Recommendation, error) {
	rec, err := s.engine.Recommend(in)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, rec), nil
}

// finish applies the optional narrator, then saves and broadcasts rec.
// Narrator and store failures are logged and never fail the request.
func (s *Server) finish(ctx context.Context, rec *models.Recommendation) *models.Recommendation {
	if s.narrator != nil {
		enriched, err := narrative.Enrich(ctx, s.narrator, rec)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", rec.Ticker).Msg("keeping deterministic rationale")
		}
		rec = enriched
	}
	if s.store != nil {
		if _, err := s.store.Save(ctx, rec); err != nil {
			s.log.Error().Err(err).Str("ticker", rec.Ticker).Msg("failed to save recommendation")
		}
	}
	s.wsHub.Publish(rec)
	return rec
}

// finishAll runs finish over the scored results concurrently, keeping the
// result order.
func (s *Server) finishAll(ctx context.Context, results []engine.BatchResult) []BatchItem {
	items := make([]BatchItem, len(results))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i, res := range results {
		items[i] = BatchItem{Ticker: res.Ticker}
		if res.Err != nil {
			items[i].Error = res.Err.Error()
			continue
		}
		g.Go(func() error {
			items[i].Recommendation = s.finish(gctx, res.Recommendation)
			return nil
		})
	}
	_ = g.Wait()
	return items
}

// assembleAll fetches inputs for tickers concurrently. Tickers that could
// not be fetched come back as failed batch items.
func (s *Server) assembleAll(ctx context.Context, tickers []string) ([]models.StockInput, []BatchItem) {
	inputs := make([]*models.StockInput, len(tickers))
	var (
		mu     sync.Mutex
		failed []BatchItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i, t := range tickers {
		g.Go(func() error {
			in, err := s.inputs.Assemble(gctx, t)
			if err != nil {
				mu.Lock()
				failed = append(failed, BatchItem{Ticker: utils.NormalizeTicker(t), Error: err.Error()})
				mu.Unlock()
				return nil
			}
			inputs[i] = in
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.StockInput, 0, len(inputs))
	for _, in := range inputs {
		if in != nil {
			out = append(out, *in)
		}
	}
	return out, failed
}

// candidatesFor fetches and scores tickers so that both fundamental and
// signal screens can run on them.
func (s *Server) candidatesFor(ctx context.Context, tickers []string) []screener.Candidate {
	inputs, failed := s.assembleAll(ctx, tickers)
	for _, f := range failed {
		s.log.Warn().Str("ticker", f.Ticker).Str("error", f.Error).Msg("skipping screen candidate")
	}

	cands := make([]screener.Candidate, 0, len(inputs))
	for i := range inputs {
		in := &inputs[i]
		c := screener.Candidate{Ticker: in.Ticker, Fundamentals: &in.Fundamentals}
		if rec, err := s.engine.Recommend(in); err == nil {
			c.Ticker = rec.Ticker
			c.Recommendation = rec
		}
		cands = append(cands, c)
	}
	return cands
}

func (s *Server) workers() int {
	if s.cfg.Concurrency.Workers > 0 {
		return s.cfg.Concurrency.Workers
	}
	return 4
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var httpErr *datasource.ErrHTTP
	switch {
	case errors.Is(err, engine.ErrNoTicker), errors.Is(err, engine.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound), errors.Is(err, screener.ErrUnknownScreen),
		errors.Is(err, datasource.ErrTickerNotFound):
		return http.StatusNotFound
	case errors.Is(err, datasource.ErrNoData), errors.As(err, &httpErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
