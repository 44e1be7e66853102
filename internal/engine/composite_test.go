package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seenimoa/indiquant/pkg/models"
)

func TestClassifyThresholds(t *testing.T) {
	th := DefaultConfig().Thresholds
	tests := []struct {
		score float64
		want  models.Signal
	}{
		{100, models.SignalStrongBuy},
		{80, models.SignalStrongBuy},
		{79.99, models.SignalBuy},
		{65, models.SignalBuy},
		{64.9, models.SignalHold},
		{45, models.SignalHold},
		{44.9, models.SignalSell},
		{30, models.SignalSell},
		{29.9, models.SignalAvoid},
		{0, models.SignalAvoid},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score, th), "score %v", tt.score)
	}
}

func TestClassifyIsMonotonic(t *testing.T) {
	th := DefaultConfig().Thresholds
	prev := Classify(0, th).Rank()
	for s := 0.0; s <= 100; s += 0.25 {
		r := Classify(s, th).Rank()
		assert.GreaterOrEqual(t, r, prev, "score %v", s)
		prev = r
	}
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 95.0, Confidence(50, 50, 50, 50))
	assert.Equal(t, 40.0, Confidence(0, 0, 100, 100))
	assert.Equal(t, 40.0, Confidence())

	// std-dev 15 halves the agreement.
	assert.InDelta(t, 67.5, Confidence(35, 35, 65, 65), 1e-9)
}

func TestConfidenceBounds(t *testing.T) {
	for a := 0.0; a <= 100; a += 12.5 {
		for b := 0.0; b <= 100; b += 25 {
			c := Confidence(a, b, 100-a, 50)
			assert.GreaterOrEqual(t, c, 40.0)
			assert.LessOrEqual(t, c, 95.0)
		}
	}
}

func TestComposite(t *testing.T) {
	w := DefaultConfig().Weights
	assert.InDelta(t, 50.0, Composite(Scores{50, 50, 50, 50}, w), 1e-9)
	assert.InDelta(t, 100.0, Composite(Scores{100, 100, 100, 100}, w), 1e-9)
	assert.InDelta(t, 30.0, Composite(Scores{Technical: 100}, w), 1e-9)
	assert.InDelta(t, 35.0, Composite(Scores{Fundamental: 100}, w), 1e-9)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Thresholds.Buy = 85
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Weights = Weights{Technical: 1.2, Fundamental: -0.2}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.MaxKeyFactors = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
