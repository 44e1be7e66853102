package screener

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/indiquant/pkg/models"
)

func ptr(v float64) *float64 { return &v }

func candidates() []Candidate {
	tcs := models.FundamentalSnapshot{PE: 26.8, PB: 14.2, ROE: 51.5, ROCE: 64.3, DebtEquity: 0.08, DividendYield: 1.58, MarketCap: models.LargeCap}
	sbin := models.FundamentalSnapshot{PE: 10, PB: 1.4, ROE: 16, DividendYield: 2.1, MarketCap: models.LargeCap}
	zomato := models.FundamentalSnapshot{PB: 8, ROE: 2, ROCE: 3, DebtEquity: 0.05, MarketCap: models.MidCap}

	return []Candidate{
		{Ticker: "TCS", Fundamentals: &tcs, Recommendation: &models.Recommendation{
			Ticker: "TCS", Signal: models.SignalStrongBuy, CompositeScore: 82, Confidence: 80,
			Technical: models.TechnicalIndicators{RSI: ptr(72)},
			Risk:      models.RiskProfile{Level: models.RiskModerate},
		}},
		{Ticker: "SBIN", Fundamentals: &sbin, Recommendation: &models.Recommendation{
			Ticker: "SBIN", Signal: models.SignalBuy, CompositeScore: 68, Confidence: 76,
			Risk: models.RiskProfile{Level: models.RiskLow},
		}},
		{Ticker: "ZOMATO", Fundamentals: &zomato},
		{Ticker: "IDEA", Recommendation: &models.Recommendation{
			Ticker: "IDEA", Signal: models.SignalAvoid, CompositeScore: 22, Confidence: 60,
			Technical: models.TechnicalIndicators{RSI: ptr(25)},
			Risk:      models.RiskProfile{Level: models.RiskVeryHigh},
		}},
	}
}

func tickers(ms []Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Ticker
	}
	return out
}

func TestRunFundamentalScreens(t *testing.T) {
	tests := []struct {
		id   string
		want []string
	}{
		{"low_pe", []string{"SBIN"}},
		{"graham_number", []string{"SBIN"}},
		{"high_roe", []string{"TCS"}},
		{"debt_free", []string{"TCS"}},
		{"blue_chip", []string{"TCS"}},
		{"high_dividend_yield", []string{"SBIN"}},
		{"it_sector", []string{"TCS"}},
		{"banking_finance", []string{"SBIN"}},
		{"emerging_blue_chips", nil},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := Run(tt.id, candidates(), 0)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, tickers(got))
		})
	}
}

func TestRunScoresMatches(t *testing.T) {
	got, err := Run("low_pe", candidates(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 85.0, got[0].Score)
	assert.Equal(t, "High", got[0].ScoreLabel)
	assert.Equal(t, models.SignalBuy, got[0].Signal, "a matching recommendation is carried along")
	require.NotNil(t, got[0].Fundamentals)
	assert.Equal(t, 10.0, got[0].Fundamentals.PE)

	got, err = Run("high_roe", candidates(), 0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got[0].Score, "capped")
}

func TestRunSignalAndTechnicalScreens(t *testing.T) {
	tests := []struct {
		id   string
		want []string
	}{
		{"strong_buys", []string{"TCS"}},
		{"high_conviction", []string{"TCS", "SBIN"}},
		{"low_risk_buys", []string{"SBIN"}},
		{"avoid_list", []string{"IDEA"}},
		{"rsi_oversold", []string{"IDEA"}},
		{"rsi_overbought", []string{"TCS"}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := Run(tt.id, candidates(), 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tickers(got))
		})
	}

	got, err := Run("high_conviction", candidates(), 0)
	require.NoError(t, err)
	assert.Equal(t, 82.0, got[0].Score, "signal screens rank by composite score")
}

func TestRunLimitAndUnknown(t *testing.T) {
	got, err := Run("high_conviction", candidates(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"TCS"}, tickers(got))

	_, err = Run("no_such_screen", candidates(), 0)
	assert.ErrorIs(t, err, ErrUnknownScreen)
}

func TestScore(t *testing.T) {
	assert.Equal(t, 50.0, Score(models.FundamentalSnapshot{}, CategoryValue), "unknown ratios are neutral")
	assert.Equal(t, 30.0, Score(models.FundamentalSnapshot{DebtEquity: 2.5}, CategoryQuality))
	assert.Equal(t, 60.0, Score(models.FundamentalSnapshot{PE: 18}, CategoryValue))
	assert.Equal(t, 50.0, Score(models.FundamentalSnapshot{PE: 18}, CategoryGrowth))
	assert.Equal(t, 75.0, Score(models.FundamentalSnapshot{PE: 15, ROE: 19}, CategoryGrowth))
}

func TestScreensCatalogue(t *testing.T) {
	all := Screens()
	assert.Len(t, byID, len(screens), "screen IDs are unique")
	assert.Len(t, all, len(screens))
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		assert.True(t, prev.Category < cur.Category || (prev.Category == cur.Category && prev.Name <= cur.Name),
			"%s before %s", prev.ID, cur.ID)
	}

	cats := ByCategory()
	assert.Len(t, cats, 7)
	s, ok := Get("strong_buys")
	require.True(t, ok)
	assert.True(t, s.NeedsRecommendation())
	s, _ = Get("low_pe")
	assert.False(t, s.NeedsRecommendation())
}
