package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/indiquant/internal/screener"
	"github.com/seenimoa/indiquant/pkg/utils"
)

var screenCmd = &cobra.Command{
	Use:   "screen [name]",
	Short: "List screens or run one",
	Long: `Without a name, list the predefined screens by category. With a name,
run the screen over --tickers (default: the scheduler watchlist), fetching
and scoring each one, or over the latest stored recommendations with
--stored.

Examples:
  indiquant screen
  indiquant screen low_pe_high_roe --tickers INFY,TCS,WIPRO,HCLTECH
  indiquant screen strong_buys --stored`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			listScreens()
			return nil
		}
		sc, ok := screener.Get(args[0])
		if !ok {
			return fmt.Errorf("%w: %q (run 'indiquant screen' for the list)", screener.ErrUnknownScreen, args[0])
		}

		tickers, _ := cmd.Flags().GetStringSlice("tickers")
		stored, _ := cmd.Flags().GetBool("stored")
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()

		var cands []screener.Candidate
		if stored {
			cands, err = a.storedCandidates(ctx)
		} else {
			if len(tickers) == 0 {
				tickers = cfg.Scheduler.Watchlist
			}
			cands, err = a.liveCandidates(ctx, tickers)
		}
		if err != nil {
			return err
		}

		matches, err := screener.Run(sc.ID, cands, limit)
		if err != nil {
			return err
		}
		printMatches(sc, matches, len(cands))
		return nil
	},
}

func init() {
	screenCmd.Flags().StringSlice("tickers", nil, "comma-separated tickers to screen")
	screenCmd.Flags().Bool("stored", false, "screen the latest stored recommendations")
	screenCmd.Flags().Int("limit", screener.DefaultLimit, "maximum matches to show")
}

func (a *app) storedCandidates(ctx context.Context) ([]screener.Candidate, error) {
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	recs, err := st.LatestAll(ctx)
	if err != nil {
		return nil, err
	}
	cands := make([]screener.Candidate, len(recs))
	for i, r := range recs {
		cands[i] = screener.Candidate{Ticker: r.Ticker, Recommendation: r.Recommendation}
	}
	return cands, nil
}

// liveCandidates fetches and scores tickers concurrently. Tickers that
// cannot be fetched are logged and skipped.
func (a *app) liveCandidates(ctx context.Context, tickers []string) ([]screener.Candidate, error) {
	asm := a.assembler(nil)
	out := make([]*screener.Candidate, len(tickers))
	var mu sync.Mutex
	skipped := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers())
	for i, t := range tickers {
		g.Go(func() error {
			in, err := asm.Assemble(gctx, t)
			if err != nil {
				a.log.Warn().Err(err).Str("ticker", t).Msg("skipping")
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			c := &screener.Candidate{Ticker: in.Ticker, Fundamentals: &in.Fundamentals}
			if rec, err := a.engine.Recommend(in); err == nil {
				c.Recommendation = rec
			}
			out[i] = c
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cands := make([]screener.Candidate, 0, len(out))
	for _, c := range out {
		if c != nil {
			cands = append(cands, *c)
		}
	}
	if len(cands) == 0 && skipped > 0 {
		return nil, fmt.Errorf("no ticker could be fetched (%d skipped)", skipped)
	}
	return cands, nil
}

func listScreens() {
	groups := screener.ByCategory()
	for _, cat := range []screener.Category{
		screener.CategoryValue, screener.CategoryGrowth, screener.CategoryQuality,
		screener.CategorySafety, screener.CategoryThematic, screener.CategoryTechnical,
		screener.CategorySignal,
	} {
		screens := groups[cat]
		if len(screens) == 0 {
			continue
		}
		fmt.Printf("%s\n", cat)
		for _, s := range screens {
			fmt.Printf("  %-24s %s\n", s.ID, s.Description)
		}
		fmt.Println()
	}
}

func printMatches(sc screener.Screen, matches []screener.Match, scanned int) {
	fmt.Printf("%s: %d of %d stocks match\n", sc.Name, len(matches), scanned)
	if len(matches) == 0 {
		return
	}
	fmt.Println(strings.Repeat("─", 72))
	fmt.Printf("  %-12s %6s  %-7s %-11s %6s  %s\n", "TICKER", "SCORE", "FIT", "SIGNAL", "CONF", "SECTOR")
	for _, m := range matches {
		sector := utils.SectorFor(m.Ticker)
		if sector == "" {
			sector = "-"
		}
		signal := string(m.Signal)
		if signal == "" {
			signal = "-"
		}
		fmt.Printf("  %-12s %6.1f  %-7s %-11s %5.0f%%  %s\n",
			m.Ticker, m.Score, m.ScoreLabel, signal, m.Confidence, sector)
	}
}
