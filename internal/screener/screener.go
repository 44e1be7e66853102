// Package screener runs predefined stock screens over fundamentals and
// stored recommendations.
package screener

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/seenimoa/indiquant/pkg/models"
)

// DefaultLimit caps the matches returned by Run.
const DefaultLimit = 20

// ErrUnknownScreen is returned for an ID that is not registered.
var ErrUnknownScreen = errors.New("screener: unknown screen")

// Screen is one predefined filter.
type Screen struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`

	match func(Candidate) bool
}

// NeedsRecommendation reports whether the screen reads a scored
// recommendation rather than raw fundamentals.
func (s Screen) NeedsRecommendation() bool {
	return s.Category == CategoryTechnical || s.Category == CategorySignal
}

// Candidate is one stock offered to a screen. Fundamental screens skip
// candidates without Fundamentals; technical and signal screens skip those
// without a Recommendation.
type Candidate struct {
	Ticker         string                      `json:"ticker"`
	Fundamentals   *models.FundamentalSnapshot `json:"fundamentals,omitempty"`
	Recommendation *models.Recommendation      `json:"recommendation,omitempty"`
}

// Match is a candidate that passed a screen.
type Match struct {
	Ticker       string                      `json:"ticker"`
	Score        float64                     `json:"score"`
	ScoreLabel   string                      `json:"score_label"`
	Fundamentals *models.FundamentalSnapshot `json:"fundamentals,omitempty"`
	Signal       models.Signal               `json:"signal,omitempty"`
	Confidence   float64                     `json:"confidence,omitempty"`
}

var byID = func() map[string]Screen {
	m := make(map[string]Screen, len(screens))
	for _, s := range screens {
		m[s.ID] = s
	}
	return m
}()

// Screens lists every screen sorted by category, then name.
func Screens() []Screen {
	out := make([]Screen, len(screens))
	copy(out, screens)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ByCategory groups the screens by category.
func ByCategory() map[Category][]Screen {
	out := make(map[Category][]Screen)
	for _, s := range Screens() {
		out[s.Category] = append(out[s.Category], s)
	}
	return out
}

// Get returns the screen with the given ID.
func Get(id string) (Screen, bool) {
	s, ok := byID[id]
	return s, ok
}

// Run applies screen id to the candidates and returns at most limit
// matches, best score first. A non-positive limit uses DefaultLimit.
func Run(id string, candidates []Candidate, limit int) ([]Match, error) {
	s, ok := byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScreen, id)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var matches []Match
	for _, c := range candidates {
		if !s.match(c) {
			continue
		}
		m := Match{Ticker: c.Ticker, Fundamentals: c.Fundamentals}
		if r := c.Recommendation; r != nil {
			m.Signal, m.Confidence = r.Signal, r.Confidence
		}
		if s.NeedsRecommendation() {
			m.Score = c.Recommendation.CompositeScore
		} else {
			m.Score = Score(*c.Fundamentals, s.Category)
		}
		m.ScoreLabel = scoreLabel(m.Score)
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Ticker < matches[j].Ticker
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Score rates how well a stock fits a screen category on a 0-100 scale.
// Unknown (zero) ratios neither add nor subtract.
func Score(f models.FundamentalSnapshot, c Category) float64 {
	score := 50.0

	switch {
	case f.ROE > 25:
		score += 20
	case f.ROE > 18:
		score += 15
	case f.ROE > 12:
		score += 10
	}

	switch {
	case f.ROCE > 25:
		score += 15
	case f.ROCE > 18:
		score += 10
	case f.ROCE > 12:
		score += 5
	}

	switch de := f.DebtEquity; {
	case de > 2:
		score -= 20
	case de > 1:
		score -= 10
	case de > 0 && de < 0.3:
		score += 10
	}

	switch c {
	case CategoryValue:
		switch {
		case below(f.PE, 15):
			score += 15
		case below(f.PE, 20):
			score += 10
		}
	case CategoryGrowth:
		if f.PE > 0 && f.ROE/math.Max(f.PE, 1) > 1 {
			score += 10
		}
	}

	switch {
	case f.DividendYield > 2:
		score += 10
	case f.DividendYield > 1:
		score += 5
	}

	return math.Min(100, math.Max(0, score))
}

func scoreLabel(score float64) string {
	switch {
	case score >= 75:
		return "High"
	case score >= 50:
		return "Medium"
	}
	return "Low"
}
