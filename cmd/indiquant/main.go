// IndiQuant scores NSE stocks with a multi-factor model and serves the
// results over a CLI, an HTTP API and a WebSocket stream.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seenimoa/indiquant/api"
	"github.com/seenimoa/indiquant/internal/config"
	"github.com/seenimoa/indiquant/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "indiquant",
	Short: "IndiQuant: explainable multi-factor recommendations for NSE stocks",
	Long: `IndiQuant combines technical, fundamental, sentiment and risk scores
into one explainable BUY/HOLD/SELL recommendation per NSE stock, with
price targets across four horizons, key factors and bull/bear scenarios.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)

	api.Version = version
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("IndiQuant %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Config Command ---

var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"status"},
	Short:   "Show the effective configuration and validate it",
	RunE: func(cmd *cobra.Command, args []string) error {
		ec := cfg.EngineConfig()

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  IndiQuant — Configuration")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Market Status: %s\n", utils.MarketStatus())
		fmt.Printf("  Time (IST):    %s\n", utils.NowIST().Format("2006-01-02 15:04:05"))
		fmt.Println()

		fmt.Println("  Engine:")
		fmt.Printf("    Weights:       tech %.2f  fund %.2f  sent %.2f  risk %.2f\n",
			ec.Weights.Technical, ec.Weights.Fundamental, ec.Weights.Sentiment, ec.Weights.Risk)
		fmt.Printf("    Thresholds:    strong buy %.0f  buy %.0f  hold %.0f  sell %.0f\n",
			ec.Thresholds.StrongBuy, ec.Thresholds.Buy, ec.Thresholds.Hold, ec.Thresholds.Sell)
		fmt.Printf("    Benchmarks:    P/E %.1f  P/B %.1f\n", ec.Fundamental.BenchmarkPE, ec.Fundamental.BenchmarkPB)
		fmt.Println()

		fmt.Println("  Services:")
		fmt.Printf("    API Server:    %s\n", cfg.API.Addr())
		fmt.Printf("    Store:         %s (retention %d days)\n", cfg.Storage.Path, cfg.Storage.RetentionDays)
		fmt.Printf("    History dir:   %s\n", cfg.DataSource.HistoryDir)
		fmt.Printf("    News feeds:    %d\n", len(cfg.News.Feeds))
		fmt.Printf("    Narrative:     %v (model: %s)\n", cfg.Narrative.Enabled, cfg.Narrative.Model)
		fmt.Printf("    Scheduler:     %v (%s) watchlist %v\n", cfg.Scheduler.Enabled, cfg.Scheduler.Spec, cfg.Scheduler.Watchlist)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}
		fmt.Println("═══════════════════════════════════════")

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		fmt.Println("  Configuration OK")
		return nil
	},
}
