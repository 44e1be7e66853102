package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/indiquant/internal/datasource"
	"github.com/seenimoa/indiquant/internal/narrative"
	"github.com/seenimoa/indiquant/pkg/models"
	"github.com/seenimoa/indiquant/pkg/utils"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [ticker]",
	Short: "Score a stock and print the recommendation",
	Long: `Score one NSE stock. By default the input is gathered live: daily bars
from the history directory or Yahoo Finance, ratios from screener.in and
headlines from the configured RSS feeds.

Examples:
  indiquant recommend INFY
  indiquant recommend TCS --history data/TCS.parquet
  indiquant recommend --input reliance.json --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile, _ := cmd.Flags().GetString("input")
		historyFile, _ := cmd.Flags().GetString("history")
		asJSON, _ := cmd.Flags().GetBool("json")
		save, _ := cmd.Flags().GetBool("save")

		if len(args) == 0 && inputFile == "" {
			return fmt.Errorf("provide a ticker or --input")
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		var in *models.StockInput
		if inputFile != "" {
			in, err = readInput(inputFile)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				in.Ticker = args[0]
			}
		} else {
			var history datasource.HistoryLoader
			if historyFile != "" {
				bars, err := datasource.ReadBars(historyFile)
				if err != nil {
					return err
				}
				history = barsFile(bars)
			}
			in, err = a.assembler(history).Assemble(ctx, args[0])
			if err != nil {
				return err
			}
		}

		rec, err := a.engine.Recommend(in)
		if err != nil {
			return err
		}

		n, err := a.narrator(ctx)
		if err != nil {
			a.log.Warn().Err(err).Msg("narrator unavailable")
		}
		if n != nil {
			enriched, err := narrative.Enrich(ctx, n, rec)
			if err != nil {
				a.log.Warn().Err(err).Msg("keeping deterministic rationale")
			}
			rec = enriched
		}

		if save {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			id, err := st.Save(ctx, rec)
			if err != nil {
				return err
			}
			a.log.Info().Str("id", id).Str("ticker", rec.Ticker).Msg("recommendation saved")
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}
		printRecommendation(os.Stdout, rec)
		return nil
	},
}

func init() {
	recommendCmd.Flags().String("input", "", "score a JSON engine input file instead of fetching live data")
	recommendCmd.Flags().String("history", "", "daily bars file (.parquet or .json) to use as price history")
	recommendCmd.Flags().Bool("json", false, "print the full recommendation as JSON")
	recommendCmd.Flags().Bool("save", false, "save the recommendation to the store")
}

func readInput(path string) (*models.StockInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var in models.StockInput
	if err := json.NewDecoder(f).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &in, nil
}

func printRecommendation(w io.Writer, rec *models.Recommendation) {
	line := strings.Repeat("═", 60)
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "  %s  %s  (%s)\n", rec.Ticker, rec.Signal.Label(), rec.Verdict)
	if rec.CurrentPrice > 0 {
		fmt.Fprintf(w, "  Price: %s\n", utils.FormatINR(rec.CurrentPrice))
	}
	fmt.Fprintf(w, "  Composite: %.1f/100   Confidence: %.0f%%   Risk: %s\n",
		rec.CompositeScore, rec.Confidence, rec.Risk.Level)
	fmt.Fprintln(w, line)

	fmt.Fprintln(w, "  Factor scores:")
	for _, f := range rec.FactorScores {
		fmt.Fprintf(w, "    %-12s %5.1f\n", f.Name, f.Value)
	}

	if len(rec.Timeframes) > 0 {
		fmt.Fprintln(w, "\n  Projections:")
		for _, tf := range rec.Timeframes {
			fmt.Fprintf(w, "    %-12s %-11s target %-14s stop %-14s %s\n",
				tf.Horizon, tf.Signal, utils.FormatINR(tf.TargetPrice), utils.FormatINR(tf.StopLoss),
				upside(tf.TargetPrice, rec.CurrentPrice))
		}
	}

	if len(rec.KeyFactors) > 0 {
		fmt.Fprintln(w, "\n  Key factors:")
		for _, kf := range rec.KeyFactors {
			mark := "+"
			if kf.Impact == models.ImpactNegative {
				mark = "-"
			}
			fmt.Fprintf(w, "    %s %s: %s\n", mark, kf.Factor, kf.Description)
		}
	}

	fmt.Fprintln(w, "\n  Bull case:")
	for _, s := range rec.Scenarios.Bull {
		fmt.Fprintf(w, "    • %s\n", s)
	}
	fmt.Fprintln(w, "  Bear case:")
	for _, s := range rec.Scenarios.Bear {
		fmt.Fprintf(w, "    • %s\n", s)
	}

	fmt.Fprintf(w, "\n  %s\n\n  %s\n", rec.ActionSummary, rec.Rationale)
	fmt.Fprintln(w, line)
}

// upside formats the move from price to target, or nothing without a price.
func upside(target, price float64) string {
	if price <= 0 || target <= 0 {
		return ""
	}
	return utils.FormatPct((target - price) / price * 100)
}
