package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/indiquant/pkg/models"
)

var t0 = time.Date(2024, 4, 1, 15, 30, 0, 0, time.UTC)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func rec(ticker string, sig models.Signal, score float64, at time.Time) *models.Recommendation {
	return &models.Recommendation{
		Ticker:         ticker,
		Signal:         sig,
		CompositeScore: score,
		Confidence:     70,
		FactorScores:   []models.FactorScore{{Name: "technical", Value: score}},
		KeyFactors:     []models.KeyFactor{{Factor: "Strong Profitability", Impact: models.ImpactPositive, Score: 80}},
		Scenarios:      models.Scenarios{Bull: []string{"bull"}, Bear: []string{"bear"}},
		GeneratedAt:    at,
	}
}

func TestSaveAndLatest(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, rec("TCS", models.SignalHold, 55, t0))
	require.NoError(t, err)
	id, err := s.Save(ctx, rec("TCS", models.SignalBuy, 68.5, t0.Add(time.Hour)))
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err, "ids are UUIDs")

	got, err := s.Latest(ctx, "tcs.ns")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, models.SignalBuy, got.Signal)
	assert.Equal(t, 68.5, got.CompositeScore)
	assert.True(t, got.GeneratedAt.Equal(t0.Add(time.Hour)))
	assert.Equal(t, "Strong Profitability", got.KeyFactors[0].Factor)

	byID, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, got.Recommendation, byID.Recommendation)
}

func TestLatestNotFound(t *testing.T) {
	s := setupStore(t)
	_, err := s.Latest(context.Background(), "INFY")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRejectsEmpty(t *testing.T) {
	s := setupStore(t)
	_, err := s.Save(context.Background(), nil)
	assert.Error(t, err)
	_, err = s.Save(context.Background(), &models.Recommendation{})
	assert.Error(t, err)
}

func TestHistoryNewestFirstWithLimit(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := s.Save(ctx, rec("INFY", models.SignalHold, float64(50+i), t0.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	_, err := s.Save(ctx, rec("TCS", models.SignalBuy, 70, t0))
	require.NoError(t, err)

	hist, err := s.History(ctx, "INFY", 3)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, 54.0, hist[0].CompositeScore)
	assert.Equal(t, 53.0, hist[1].CompositeScore)
	assert.Equal(t, 52.0, hist[2].CompositeScore)

	all, err := s.History(ctx, "INFY", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := s.History(ctx, "WIPRO", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLatestAll(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	for _, r := range []*models.Recommendation{
		rec("TCS", models.SignalHold, 50, t0),
		rec("TCS", models.SignalBuy, 66, t0.Add(time.Hour)),
		rec("INFY", models.SignalSell, 35, t0),
		rec("INFY", models.SignalStrongBuy, 82, t0.Add(-time.Hour)),
	} {
		_, err := s.Save(ctx, r)
		require.NoError(t, err)
	}

	latest, err := s.LatestAll(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "INFY", latest[0].Ticker)
	assert.Equal(t, models.SignalSell, latest[0].Signal)
	assert.Equal(t, "TCS", latest[1].Ticker)
	assert.Equal(t, models.SignalBuy, latest[1].Signal)
}

func TestDeleteOlderThan(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := s.Save(ctx, rec("TCS", models.SignalHold, 50, t0.AddDate(0, 0, i)))
		require.NoError(t, err)
	}

	n, err := s.DeleteOlderThan(ctx, t0.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	hist, err := s.History(ctx, "TCS", 0)
	require.NoError(t, err)
	assert.Len(t, hist, 2)
}

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "indiquant.db")
	s, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	_, err = s.Save(context.Background(), rec("SBIN", models.SignalBuy, 67, t0))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Latest(context.Background(), "SBIN")
	require.NoError(t, err)
	assert.Equal(t, models.SignalBuy, got.Signal)
}
