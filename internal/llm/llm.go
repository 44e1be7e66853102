// Package llm writes model-generated rationales for recommendations. It is
// an optional add-on: the engine produces a full deterministic rationale on
// its own and callers keep it whenever a model call fails.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/indiquant/pkg/models"
)

// Common errors returned by generators.
var (
	ErrNoAPIKey      = errors.New("llm: API key not configured")
	ErrEmptyResponse = errors.New("llm: empty response")
	ErrProviderDown  = errors.New("llm: provider unavailable")
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Narrator writes recommendation rationales with a Generator. It satisfies
// narrative.Narrator.
type Narrator struct {
	gen     Generator
	timeout time.Duration
}

// NewNarrator wraps gen. A non-positive timeout means no extra deadline.
func NewNarrator(gen Generator, timeout time.Duration) *Narrator {
	return &Narrator{gen: gen, timeout: timeout}
}

// Narrate asks the model for a rationale. The result is trimmed; an empty
// answer is an error so callers fall back to the deterministic text.
func (n *Narrator) Narrate(ctx context.Context, rec *models.Recommendation) (string, error) {
	if rec == nil {
		return "", errors.New("llm: nil recommendation")
	}
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	text, err := n.gen.Generate(ctx, SystemPrompt, RationalePrompt(rec))
	if err != nil {
		return "", fmt.Errorf("narrate %s: %w", rec.Ticker, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("narrate %s: %w", rec.Ticker, ErrEmptyResponse)
	}
	return text, nil
}
