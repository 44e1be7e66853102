package narrative

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/indiquant/pkg/models"
)

func TestVerdict(t *testing.T) {
	tests := []struct {
		name  string
		sig   models.Signal
		score float64
		fb    models.FundamentalBreakdown
		want  string
	}{
		{"hidden gem", models.SignalBuy, 70, models.FundamentalBreakdown{Quality: 75, Value: 65}, "Hidden Gem"},
		{"compounder", models.SignalBuy, 70, models.FundamentalBreakdown{Quality: 75, Value: 50, Growth: 80}, "Quality Compounder"},
		{"value trap", models.SignalSell, 35, models.FundamentalBreakdown{Value: 30, Growth: 35}, "Value Trap"},
		{"momentum", models.SignalStrongBuy, 84, models.FundamentalBreakdown{Value: 50, Growth: 50}, "Strong Momentum"},
		{"deep value", models.SignalBuy, 70, models.FundamentalBreakdown{Value: 90, Growth: 50, Quality: 50}, "Deep Value"},
		{"safe haven", models.SignalHold, 60, models.FundamentalBreakdown{Safety: 90, Quality: 75, Value: 50, Growth: 50}, "Safe Haven"},
		{"high risk", models.SignalHold, 55, models.FundamentalBreakdown{Growth: 85, Safety: 30, Value: 50}, "High Risk High Reward"},
		{"hold", models.SignalHold, 50, models.FundamentalBreakdown{Value: 50, Growth: 50}, "Hold & Watch"},
		{"strong buy label", models.SignalStrongBuy, 80, models.FundamentalBreakdown{Value: 50, Growth: 50}, "Strong Buy"},
		{"avoid", models.SignalAvoid, 20, models.FundamentalBreakdown{Value: 50, Growth: 50}, "Avoid"},
		{"sell", models.SignalSell, 40, models.FundamentalBreakdown{Value: 50, Growth: 50}, "Sell"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Verdict(tt.sig, tt.score, tt.fb))
		})
	}
}

func TestRationaleBearish(t *testing.T) {
	rsi := 74.6
	factors := []models.KeyFactor{
		{Factor: "High Valuation", Impact: models.ImpactNegative, Score: 20},
		{Factor: "High Leverage Concern", Impact: models.ImpactNegative, Score: 20},
		{Factor: "RSI Overbought", Impact: models.ImpactNegative, Score: 25},
		{Factor: "MACD Bullish Crossover", Impact: models.ImpactPositive, Score: 70},
	}
	f := models.FundamentalSnapshot{PE: 58.24, ROE: 9.1}

	got := Rationale("ADANIENT", models.SignalSell, factors, f, &rsi)
	want := "ADANIENT shows concerning trends that warrant reducing exposure. " +
		"Key strengths include macd bullish crossover. " +
		"Areas of concern: high valuation, high leverage concern. " +
		"Technical indicators (RSI: 75) suggest selling pressure. " +
		"Fundamentally, trading at 58.2x P/E with 9.1% ROE. " +
		"Consider booking profits and reducing position size."
	assert.Equal(t, want, got)
}

func TestRationaleOversoldNoValuation(t *testing.T) {
	rsi := 28.0
	got := Rationale("IDEA", models.SignalAvoid, nil, models.FundamentalSnapshot{PE: -3, ROE: -40}, &rsi)
	assert.Equal(t, "IDEA displays significant red flags across multiple factors. "+
		"Technical indicators (RSI: 28) suggest buying pressure. "+
		"Stay on sidelines until fundamentals or technicals improve significantly.", got)
}

func TestActionSummary(t *testing.T) {
	medium := &models.TimeframeProjection{Horizon: models.HorizonMediumTerm, TargetPrice: 1120, StopLoss: 930}

	assert.Equal(t,
		"STRONG BUY at ₹1,000. Target: ₹1,120 (+12.0%). SL: ₹930 (-7.0%). Risk-Reward: 1.7:1",
		ActionSummary(models.SignalStrongBuy, 1000, medium))
	assert.Equal(t,
		"HOLD. Current: ₹1,000. Monitor for breakout above ₹1,120 or breakdown below ₹930.",
		ActionSummary(models.SignalHold, 1000, medium))
	assert.Equal(t,
		"SELL. Consider exit above ₹1,000. Support at ₹930.",
		ActionSummary(models.SignalSell, 1000, medium))
	assert.Equal(t,
		"Signal: STRONG BUY. Await price confirmation.",
		ActionSummary(models.SignalStrongBuy, 0, nil))
}

type stubNarrator struct {
	text string
	err  error
}

func (s stubNarrator) Narrate(context.Context, *models.Recommendation) (string, error) {
	return s.text, s.err
}

func TestEnrich(t *testing.T) {
	rec := &models.Recommendation{Ticker: "TCS", Rationale: "deterministic"}

	out, err := Enrich(context.Background(), stubNarrator{text: "from the model"}, rec)
	require.NoError(t, err)
	assert.Equal(t, "from the model", out.Rationale)
	assert.Equal(t, "deterministic", rec.Rationale, "input must not be modified")

	boom := errors.New("boom")
	out, err = Enrich(context.Background(), stubNarrator{err: boom}, rec)
	assert.ErrorIs(t, err, boom)
	assert.Same(t, rec, out)

	out, err = Enrich(context.Background(), nil, rec)
	assert.NoError(t, err)
	assert.Same(t, rec, out)
}
