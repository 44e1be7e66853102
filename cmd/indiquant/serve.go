package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/indiquant/api"
	"github.com/seenimoa/indiquant/internal/logger"
	"github.com/seenimoa/indiquant/internal/scheduler"
	"github.com/seenimoa/indiquant/internal/store"
)

// pruneSpec runs retention cleanup nightly at 02:30 IST.
const pruneSpec = "0 30 2 * * *"

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server. When the scheduler is enabled the watchlist
is rescored on its cron spec and every fresh recommendation is pushed to
WebSocket clients on /ws.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := a.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		narrator, err := a.narrator(ctx)
		if err != nil {
			return err
		}
		asm := a.assembler(nil)

		srv, err := api.NewServer(cfg, api.Deps{
			Engine:   a.engine,
			Inputs:   asm,
			Store:    st,
			Narrator: narrator,
			Log:      a.log,
		})
		if err != nil {
			return err
		}

		if withScheduler, _ := cmd.Flags().GetBool("scheduler"); withScheduler || cfg.Scheduler.Enabled {
			sched, err := a.scheduler(st, &scheduler.WatchlistJob{
				Tickers:   cfg.Scheduler.Watchlist,
				Inputs:    asm,
				Engine:    a.engine,
				Narrator:  narrator,
				Store:     st,
				Publisher: srv.Hub(),
				Workers:   a.workers(),
				Log:       logger.Component(a.log, "watchlist"),
			})
			if err != nil {
				return err
			}
			sched.Start(ctx)
			defer sched.Stop()
		}

		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		return srv.ListenAndServe(ctx, cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "override the configured API port")
	serveCmd.Flags().Bool("scheduler", false, "run the watchlist scheduler even if disabled in config")
}

// --- Watch Command (scheduler only) ---

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rescore the watchlist on the configured schedule",
	Long: `Run the watchlist rescoring job without the HTTP server, saving every
recommendation to the store. With --once the job runs a single time and
the results are printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := a.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		narrator, err := a.narrator(ctx)
		if err != nil {
			return err
		}
		if tickers, _ := cmd.Flags().GetStringSlice("tickers"); len(tickers) > 0 {
			cfg.Scheduler.Watchlist = tickers
		}
		job := &scheduler.WatchlistJob{
			Tickers:  cfg.Scheduler.Watchlist,
			Inputs:   a.assembler(nil),
			Engine:   a.engine,
			Narrator: narrator,
			Store:    st,
			Workers:  a.workers(),
			Log:      logger.Component(a.log, "watchlist"),
		}

		if once, _ := cmd.Flags().GetBool("once"); once {
			recs, err := job.Rescore(ctx)
			for _, rec := range recs {
				fmt.Printf("%-12s %-11s %5.1f  %s\n", rec.Ticker, rec.Signal, rec.CompositeScore, rec.ActionSummary)
			}
			return err
		}

		sched, err := a.scheduler(st, job)
		if err != nil {
			return err
		}
		sched.Start(ctx)
		for _, next := range sched.Next() {
			a.log.Info().Time("next", next).Msg("scheduled")
		}
		<-ctx.Done()
		sched.Stop()
		return nil
	},
}

func init() {
	watchCmd.Flags().Bool("once", false, "rescore once and exit")
	watchCmd.Flags().StringSlice("tickers", nil, "override the configured watchlist")
}

// scheduler registers the watchlist job, skipped on exchange holidays, and
// the nightly retention job.
func (a *app) scheduler(st *store.Store, job *scheduler.WatchlistJob) (*scheduler.Scheduler, error) {
	if len(job.Tickers) == 0 {
		return nil, fmt.Errorf("scheduler: watchlist is empty")
	}
	sched := scheduler.New(a.log)
	if err := sched.AddJob(cfg.Scheduler.Spec, scheduler.TradingDaysOnly(job, nil, a.log)); err != nil {
		return nil, err
	}
	if cfg.Storage.RetentionDays > 0 {
		prune := &scheduler.PruneJob{
			Store:     st,
			Retention: time.Duration(cfg.Storage.RetentionDays) * 24 * time.Hour,
		}
		if err := sched.AddJob(pruneSpec, prune); err != nil {
			return nil, err
		}
	}
	return sched, nil
}
