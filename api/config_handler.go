package api

import (
	"net/http"

	"github.com/seenimoa/indiquant/internal/config"
	"github.com/seenimoa/indiquant/internal/engine"
)

// ConfigResponse is the JSON body returned by GET /api/v1/config. Secrets
// are reported only through Keys, masked.
type ConfigResponse struct {
	Engine    engineView         `json:"engine"`
	Narrative narrativeView      `json:"narrative"`
	Scheduler schedulerView      `json:"scheduler"`
	News      newsView           `json:"news"`
	Workers   int                `json:"workers"`
	Keys      []config.KeyStatus `json:"keys"`
}

type engineView struct {
	Weights       engine.Weights    `json:"weights"`
	Thresholds    engine.Thresholds `json:"thresholds"`
	BenchmarkPE   float64           `json:"benchmark_pe"`
	BenchmarkPB   float64           `json:"benchmark_pb"`
	RSIPeriod     int               `json:"rsi_period"`
	RiskWindow    int               `json:"risk_window"`
	MaxKeyFactors int               `json:"max_key_factors"`
	MaxScenarios  int               `json:"max_scenarios"`
}

type narrativeView struct {
	Enabled bool   `json:"enabled"`
	Model   string `json:"model,omitempty"`
}

type schedulerView struct {
	Enabled   bool     `json:"enabled"`
	Spec      string   `json:"spec,omitempty"`
	Watchlist []string `json:"watchlist"`
}

type newsView struct {
	Feeds    int `json:"feeds"`
	MaxItems int `json:"max_items"`
}

// handleGetConfig returns the effective configuration of the running server.
// The engine section reflects the engine actually in use.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	ec := s.engine.Config()
	resp := ConfigResponse{
		Engine: engineView{
			Weights:       ec.Weights,
			Thresholds:    ec.Thresholds,
			BenchmarkPE:   ec.Fundamental.BenchmarkPE,
			BenchmarkPB:   ec.Fundamental.BenchmarkPB,
			RSIPeriod:     ec.Technical.RSIPeriod,
			RiskWindow:    ec.Risk.Window,
			MaxKeyFactors: ec.MaxKeyFactors,
			MaxScenarios:  ec.MaxScenarios,
		},
		Narrative: narrativeView{
			Enabled: s.narrator != nil,
			Model:   s.cfg.Narrative.Model,
		},
		Scheduler: schedulerView{
			Enabled:   s.cfg.Scheduler.Enabled,
			Spec:      s.cfg.Scheduler.Spec,
			Watchlist: s.cfg.Scheduler.Watchlist,
		},
		News: newsView{
			Feeds:    len(s.cfg.News.Feeds),
			MaxItems: s.cfg.News.MaxItems,
		},
		Workers: s.workers(),
		Keys:    config.CheckAPIKeys(s.cfg),
	}
	if resp.Scheduler.Watchlist == nil {
		resp.Scheduler.Watchlist = []string{}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}
