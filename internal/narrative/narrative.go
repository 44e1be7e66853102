// Package narrative turns a scored recommendation into the short verdict,
// rationale and action summary shown to users. Everything here is
// deterministic; model-written rationales plug in through Narrator.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/seenimoa/indiquant/pkg/models"
	"github.com/seenimoa/indiquant/pkg/utils"
)

// Narrator writes a free-text rationale for a finished recommendation.
// Implementations may call out to a model; callers must keep the
// deterministic rationale when Narrate fails.
type Narrator interface {
	Narrate(ctx context.Context, rec *models.Recommendation) (string, error)
}

// Verdict returns a two or three word label. Sub-score patterns take
// precedence over the plain signal label.
func Verdict(sig models.Signal, score float64, fb models.FundamentalBreakdown) string {
	switch {
	case fb.Quality > 70 && fb.Value > 60:
		return "Hidden Gem"
	case fb.Quality > 70 && fb.Growth > 70:
		return "Quality Compounder"
	case fb.Value < 40 && fb.Growth < 40:
		return "Value Trap"
	case sig == models.SignalStrongBuy && score > 80:
		return "Strong Momentum"
	case sig == models.SignalBuy && fb.Value > 80:
		return "Deep Value"
	case fb.Safety > 80 && fb.Quality > 70:
		return "Safe Haven"
	case fb.Growth > 80 && fb.Safety < 40:
		return "High Risk High Reward"
	}
	if sig == models.SignalHold {
		return "Hold & Watch"
	}
	return sig.Label()
}

var intros = map[models.Signal]string{
	models.SignalStrongBuy: "%s presents a compelling investment opportunity with multiple factors aligning positively.",
	models.SignalBuy:       "%s shows favorable characteristics warranting accumulation at current levels.",
	models.SignalHold:      "%s presents mixed signals suggesting maintaining existing positions.",
	models.SignalSell:      "%s shows concerning trends that warrant reducing exposure.",
	models.SignalAvoid:     "%s displays significant red flags across multiple factors.",
}

var closings = map[models.Signal]string{
	models.SignalStrongBuy: "Recommend aggressive accumulation for medium to long-term gains.",
	models.SignalBuy:       "Consider adding on dips with defined risk parameters.",
	models.SignalHold:      "Wait for clearer directional signals before taking action.",
	models.SignalSell:      "Consider booking profits and reducing position size.",
	models.SignalAvoid:     "Stay on sidelines until fundamentals or technicals improve significantly.",
}

// Rationale writes an analyst-style paragraph from the signal, the top key
// factors, RSI and headline valuation.
func Rationale(ticker string, sig models.Signal, factors []models.KeyFactor, f models.FundamentalSnapshot, rsi *float64) string {
	var parts []string

	if intro, ok := intros[sig]; ok {
		parts = append(parts, fmt.Sprintf(intro, ticker))
	} else {
		parts = append(parts, fmt.Sprintf("Analysis of %s:", ticker))
	}

	if s := factorNames(factors, models.ImpactPositive, 2); s != "" {
		parts = append(parts, fmt.Sprintf("Key strengths include %s.", s))
	}
	if s := factorNames(factors, models.ImpactNegative, 2); s != "" {
		parts = append(parts, fmt.Sprintf("Areas of concern: %s.", s))
	}

	if rsi != nil && (*rsi < 40 || *rsi > 60) {
		pressure := "selling"
		if *rsi < 40 {
			pressure = "buying"
		}
		parts = append(parts, fmt.Sprintf("Technical indicators (RSI: %.0f) suggest %s pressure.", *rsi, pressure))
	}

	if f.PE > 0 && f.ROE > 0 {
		parts = append(parts, fmt.Sprintf("Fundamentally, trading at %.1fx P/E with %.1f%% ROE.", f.PE, f.ROE))
	}

	if c := closings[sig]; c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, " ")
}

func factorNames(factors []models.KeyFactor, impact models.Impact, n int) string {
	var names []string
	for _, kf := range factors {
		if kf.Impact != impact {
			continue
		}
		names = append(names, strings.ToLower(kf.Factor))
		if len(names) == n {
			break
		}
	}
	return strings.Join(names, ", ")
}

// ActionSummary is a one-line trade plan built on the medium-term target
// and stop. Without a price it only states the signal.
func ActionSummary(sig models.Signal, price float64, medium *models.TimeframeProjection) string {
	label := strings.ReplaceAll(string(sig), "_", " ")
	if price <= 0 || medium == nil {
		return fmt.Sprintf("Signal: %s. Await price confirmation.", label)
	}

	target, stop := medium.TargetPrice, medium.StopLoss
	upside := (target - price) / price * 100
	risk := (price - stop) / price * 100

	switch sig {
	case models.SignalStrongBuy, models.SignalBuy:
		rr := 0.0
		if risk > 0 {
			rr = upside / risk
		}
		return fmt.Sprintf("%s at %s. Target: %s (+%.1f%%). SL: %s (-%.1f%%). Risk-Reward: %.1f:1",
			label, utils.FormatRupees(price), utils.FormatRupees(target), upside,
			utils.FormatRupees(stop), risk, rr)
	case models.SignalHold:
		return fmt.Sprintf("%s. Current: %s. Monitor for breakout above %s or breakdown below %s.",
			label, utils.FormatRupees(price), utils.FormatRupees(target), utils.FormatRupees(stop))
	}
	return fmt.Sprintf("%s. Consider exit above %s. Support at %s.",
		label, utils.FormatRupees(price), utils.FormatRupees(stop))
}

// Enrich returns a copy of rec carrying a rationale written by n. When n is
// nil or fails, rec itself is returned with the error, so the deterministic
// rationale always survives.
func Enrich(ctx context.Context, n Narrator, rec *models.Recommendation) (*models.Recommendation, error) {
	if n == nil || rec == nil {
		return rec, nil
	}
	text, err := n.Narrate(ctx, rec)
	if err != nil {
		return rec, err
	}
	out := *rec
	out.Rationale = text
	return &out, nil
}
