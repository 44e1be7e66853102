package llm

import (
	"fmt"
	"strings"

	"github.com/seenimoa/indiquant/pkg/models"
	"github.com/seenimoa/indiquant/pkg/utils"
)

// SystemPrompt frames the model as an equity analyst explaining a score it
// did not compute.
const SystemPrompt = `You are a senior equity research analyst covering NSE (National Stock Exchange of India) stocks.

You are given the output of a quantitative multi-factor model. Explain it; do not re-score it.

## Guidelines
1. Never change the signal, scores, targets or stop-loss you are given
2. Use Indian conventions: ₹ prefix, Indian comma grouping (₹12,34,567), amounts in Crores/Lakhs
3. Mention at most three drivers, strongest first
4. Name the main risk to the call
5. When data is missing, say so instead of guessing
6. Write 3 to 5 plain sentences with no headings, bullet points or markdown`

// RationalePrompt renders a recommendation as the user turn.
func RationalePrompt(rec *models.Recommendation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Stock: %s (NSE)\n", rec.Ticker)
	if sector := utils.SectorFor(rec.Ticker); sector != "" {
		fmt.Fprintf(&b, "Sector: %s\n", sector)
		if peers := utils.SectorPeers(rec.Ticker); len(peers) > 0 {
			if len(peers) > 5 {
				peers = peers[:5]
			}
			fmt.Fprintf(&b, "Key Peers: %s\n", strings.Join(peers, ", "))
		}
	}
	if rec.CurrentPrice > 0 {
		fmt.Fprintf(&b, "Price: %s\n", utils.FormatINR(rec.CurrentPrice))
	}

	fmt.Fprintf(&b, "\nSignal: %s (composite %.1f/100, confidence %.0f%%)\n",
		rec.Signal, rec.CompositeScore, rec.Confidence)
	if rec.Verdict != "" {
		fmt.Fprintf(&b, "Verdict: %s\n", rec.Verdict)
	}

	b.WriteString("\nFactor scores:\n")
	for _, f := range rec.FactorScores {
		fmt.Fprintf(&b, "- %s: %.1f\n", f.Name, f.Value)
	}
	fmt.Fprintf(&b, "- risk level: %s\n", rec.Risk.Level)

	if len(rec.KeyFactors) > 0 {
		b.WriteString("\nKey factors:\n")
		for _, kf := range rec.KeyFactors {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", kf.Impact, kf.Factor, kf.Description)
		}
	}

	if m := rec.Projection(models.HorizonMediumTerm); m != nil {
		fmt.Fprintf(&b, "\nMedium-term plan: target %s, stop-loss %s (%s)\n",
			utils.FormatINR(m.TargetPrice), utils.FormatINR(m.StopLoss), m.Signal)
	}

	if len(rec.Scenarios.Bull) > 0 {
		fmt.Fprintf(&b, "\nBull case: %s\n", strings.Join(rec.Scenarios.Bull, "; "))
	}
	if len(rec.Scenarios.Bear) > 0 {
		fmt.Fprintf(&b, "Bear case: %s\n", strings.Join(rec.Scenarios.Bear, "; "))
	}

	b.WriteString("\nWrite the rationale.")
	return b.String()
}
