// Package config handles configuration loading for IndiQuant.
// It supports YAML config files, a .env file and environment variable
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/seenimoa/indiquant/internal/engine"
)

// Config represents the complete application configuration.
type Config struct {
	Engine      EngineConfig      `mapstructure:"engine"      yaml:"engine"`
	Logging     LoggingConfig     `mapstructure:"logging"     yaml:"logging"`
	API         APIConfig         `mapstructure:"api"         yaml:"api"`
	Storage     StorageConfig     `mapstructure:"storage"     yaml:"storage"`
	Narrative   NarrativeConfig   `mapstructure:"narrative"   yaml:"narrative"`
	DataSource  DataSourceConfig  `mapstructure:"datasource"  yaml:"datasource"`
	News        NewsConfig        `mapstructure:"news"        yaml:"news"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"   yaml:"scheduler"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
}

// EngineConfig holds the scoring weights, signal thresholds and benchmarks.
type EngineConfig struct {
	Weights       WeightsConfig   `mapstructure:"weights"         yaml:"weights"`
	Thresholds    ThresholdConfig `mapstructure:"thresholds"      yaml:"thresholds"`
	BenchmarkPE   float64         `mapstructure:"benchmark_pe"    yaml:"benchmark_pe"`
	BenchmarkPB   float64         `mapstructure:"benchmark_pb"    yaml:"benchmark_pb"`
	RSIPeriod     int             `mapstructure:"rsi_period"      yaml:"rsi_period"`
	RiskWindow    int             `mapstructure:"risk_window"     yaml:"risk_window"`
	MaxKeyFactors int             `mapstructure:"max_key_factors" yaml:"max_key_factors"`
	MaxScenarios  int             `mapstructure:"max_scenarios"   yaml:"max_scenarios"`
}

// WeightsConfig are the composite factor weights; they must sum to 1.
type WeightsConfig struct {
	Technical   float64 `mapstructure:"technical"   yaml:"technical"`
	Fundamental float64 `mapstructure:"fundamental" yaml:"fundamental"`
	Sentiment   float64 `mapstructure:"sentiment"   yaml:"sentiment"`
	Risk        float64 `mapstructure:"risk"        yaml:"risk"`
}

// ThresholdConfig are the lower bounds of each signal.
type ThresholdConfig struct {
	StrongBuy float64 `mapstructure:"strong_buy" yaml:"strong_buy"`
	Buy       float64 `mapstructure:"buy"        yaml:"buy"`
	Hold      float64 `mapstructure:"hold"       yaml:"hold"`
	Sell      float64 `mapstructure:"sell"       yaml:"sell"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns host:port.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// StorageConfig holds the recommendation store settings.
type StorageConfig struct {
	Path          string `mapstructure:"path"           yaml:"path"` // SQLite file, ":memory:" for tests
	RetentionDays int    `mapstructure:"retention_days" yaml:"retention_days"`
}

// NarrativeConfig holds the optional model-written rationale settings.
type NarrativeConfig struct {
	Enabled     bool    `mapstructure:"enabled"     yaml:"enabled"`
	GeminiKey   string  `mapstructure:"gemini_key"  yaml:"gemini_key"`
	Model       string  `mapstructure:"model"       yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	TimeoutSec  int     `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns the per-call deadline.
func (n NarrativeConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSec) * time.Second
}

// DataSourceConfig holds HTTP fetch settings shared by all data sources.
type DataSourceConfig struct {
	ScreenerURL    string  `mapstructure:"screener_url"     yaml:"screener_url"`
	CacheTTL       int     `mapstructure:"cache_ttl"        yaml:"cache_ttl"` // seconds
	RequestsPerSec float64 `mapstructure:"requests_per_sec" yaml:"requests_per_sec"`
	TimeoutSec     int     `mapstructure:"timeout_sec"      yaml:"timeout_sec"`
	HistoryDir     string  `mapstructure:"history_dir"      yaml:"history_dir"` // <TICKER>.parquet or <TICKER>.json bars
}

// NewsConfig lists the RSS feeds scanned for headlines.
type NewsConfig struct {
	Feeds    []string `mapstructure:"feeds"     yaml:"feeds"`
	MaxItems int      `mapstructure:"max_items" yaml:"max_items"`
}

// SchedulerConfig holds the watchlist rescoring job settings.
type SchedulerConfig struct {
	Enabled   bool     `mapstructure:"enabled"   yaml:"enabled"`
	Spec      string   `mapstructure:"spec"      yaml:"spec"` // cron spec with seconds field
	Watchlist []string `mapstructure:"watchlist" yaml:"watchlist"`
}

// ConcurrencyConfig bounds parallel work.
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.indiquant/config.yaml (home directory)
//  3. /etc/indiquant/config.yaml (system)
//
// A .env file in the working directory is loaded first when present.
// Environment variables override config file values.
// Format: INDIQUANT_<SECTION>_<KEY>, e.g., INDIQUANT_API_PORT
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".indiquant"))
	v.AddConfigPath("/etc/indiquant")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("INDIQUANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	d := engine.DefaultConfig()

	// Engine defaults
	v.SetDefault("engine.weights.technical", d.Weights.Technical)
	v.SetDefault("engine.weights.fundamental", d.Weights.Fundamental)
	v.SetDefault("engine.weights.sentiment", d.Weights.Sentiment)
	v.SetDefault("engine.weights.risk", d.Weights.Risk)
	v.SetDefault("engine.thresholds.strong_buy", d.Thresholds.StrongBuy)
	v.SetDefault("engine.thresholds.buy", d.Thresholds.Buy)
	v.SetDefault("engine.thresholds.hold", d.Thresholds.Hold)
	v.SetDefault("engine.thresholds.sell", d.Thresholds.Sell)
	v.SetDefault("engine.benchmark_pe", d.Fundamental.BenchmarkPE)
	v.SetDefault("engine.benchmark_pb", d.Fundamental.BenchmarkPB)
	v.SetDefault("engine.rsi_period", d.Technical.RSIPeriod)
	v.SetDefault("engine.risk_window", d.Risk.Window)
	v.SetDefault("engine.max_key_factors", d.MaxKeyFactors)
	v.SetDefault("engine.max_scenarios", d.MaxScenarios)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Storage defaults
	v.SetDefault("storage.path", filepath.Join(homeDir(), ".indiquant", "indiquant.db"))
	v.SetDefault("storage.retention_days", 90)

	// Narrative defaults (off unless a key is configured)
	v.SetDefault("narrative.enabled", false)
	v.SetDefault("narrative.model", "gemini-2.0-flash")
	v.SetDefault("narrative.temperature", 0.3)
	v.SetDefault("narrative.timeout_sec", 20)

	// Data source defaults
	v.SetDefault("datasource.screener_url", "https://www.screener.in")
	v.SetDefault("datasource.cache_ttl", 300) // 5 minutes
	v.SetDefault("datasource.requests_per_sec", 2.0)
	v.SetDefault("datasource.timeout_sec", 15)
	v.SetDefault("datasource.history_dir", "./data/history")

	// News defaults
	v.SetDefault("news.feeds", []string{
		"https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms",
		"https://www.moneycontrol.com/rss/marketreports.xml",
		"https://www.livemint.com/rss/markets",
	})
	v.SetDefault("news.max_items", 20)

	// Scheduler defaults: every 15 minutes during market hours, Mon-Fri.
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.spec", "0 */15 9-15 * * 1-5")
	v.SetDefault("scheduler.watchlist", []string{"RELIANCE", "TCS", "HDFCBANK", "INFY", "ICICIBANK"})

	// Concurrency defaults
	v.SetDefault("concurrency.workers", 4)
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The Google SDK variable names are honoured as a fallback.
func overrideFromEnv(cfg *Config) {
	for _, name := range []string{"INDIQUANT_NARRATIVE_GEMINI_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			cfg.Narrative.GeminiKey = key
			return
		}
	}
}

// EngineConfig converts the engine section into the immutable engine
// configuration. Unset fields keep the engine defaults.
func (c *Config) EngineConfig() engine.Config {
	out := engine.DefaultConfig()
	e := c.Engine

	if e.Weights != (WeightsConfig{}) {
		out.Weights = engine.Weights(e.Weights)
	}
	if e.Thresholds != (ThresholdConfig{}) {
		out.Thresholds = engine.Thresholds(e.Thresholds)
	}
	if e.BenchmarkPE > 0 {
		out.Fundamental.BenchmarkPE = e.BenchmarkPE
	}
	if e.BenchmarkPB > 0 {
		out.Fundamental.BenchmarkPB = e.BenchmarkPB
	}
	if e.RSIPeriod > 0 {
		out.Technical.RSIPeriod = e.RSIPeriod
	}
	if e.RiskWindow > 0 {
		out.Risk.Window = e.RiskWindow
		if out.Risk.MinBars < e.RiskWindow {
			out.Risk.MinBars = e.RiskWindow
		}
	}
	if e.MaxKeyFactors > 0 {
		out.MaxKeyFactors = e.MaxKeyFactors
	}
	if e.MaxScenarios > 0 {
		out.MaxScenarios = e.MaxScenarios
	}
	return out
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if err := c.EngineConfig().Validate(); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		return fmt.Errorf("config: unknown logging level %q", c.Logging.Level)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("config: api port %d out of range", c.API.Port)
	}
	if c.Concurrency.Workers < 0 {
		return fmt.Errorf("config: negative worker count %d", c.Concurrency.Workers)
	}
	if c.Narrative.Enabled && c.Narrative.GeminiKey == "" {
		return errors.New("config: narrative enabled but no Gemini key set")
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
