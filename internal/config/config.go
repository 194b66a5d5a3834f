package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"walletscore/internal/logging"
	"walletscore/internal/normalize"
	"walletscore/internal/scoring"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig        `mapstructure:"app"`
	Logging  logging.Config   `mapstructure:"logging"`
	Assets   normalize.Config `mapstructure:"assets"`
	Pipeline PipelineConfig   `mapstructure:"pipeline"`
	Scoring  scoring.Params   `mapstructure:"scoring"`
	Report   ReportConfig     `mapstructure:"report"`
	Database DatabaseConfig   `mapstructure:"database"`
	Watch    WatchConfig      `mapstructure:"watch"`
	Alerting AlertingConfig   `mapstructure:"alerting"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// PipelineConfig governs scoring-run parallelism.
type PipelineConfig struct {
	Workers int `mapstructure:"workers"`
}

// ReportConfig shapes the statistics report.
type ReportConfig struct {
	BucketSize int `mapstructure:"bucket_size"`
	TopN       int `mapstructure:"top_n"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity for the score sink.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// WatchConfig governs the periodic rescoring cadence.
type WatchConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToBucket   bool          `mapstructure:"align_to_bucket"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
	RunImmediately  bool          `mapstructure:"run_immediately"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
}

// AlertingConfig defines score-floor alerting and routing.
type AlertingConfig struct {
	Enabled    bool           `mapstructure:"enabled"`
	ScoreFloor float64        `mapstructure:"score_floor"`
	Channels   []string       `mapstructure:"channels"`
	Telegram   TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes Telegram delivery parameters.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WALLETSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "walletscore")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.enabled", false)
	v.SetDefault("logging.file.path", "logs/walletscore.log")
	v.SetDefault("logging.file.max_size_mb", 100)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age_days", 28)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("assets.default_decimals", 18)
	v.SetDefault("assets.decimals", map[string]int{
		"USDC":   6,
		"USDT":   6,
		"WBTC":   8,
		"WETH":   18,
		"WMATIC": 18,
		"DAI":    18,
	})

	v.SetDefault("pipeline.workers", 0)

	v.SetDefault("scoring.volume_max", 200.0)
	v.SetDefault("scoring.volume_log_span", 5.0)
	v.SetDefault("scoring.consistency_max", 200.0)
	v.SetDefault("scoring.diversification_max", 150.0)
	v.SetDefault("scoring.repayment_max", 200.0)
	v.SetDefault("scoring.leverage_max", 150.0)
	v.SetDefault("scoring.activity_rate", 10.0)
	v.SetDefault("scoring.activity_max", 50.0)
	v.SetDefault("scoring.asset_step", 20.0)
	v.SetDefault("scoring.asset_max", 100.0)
	v.SetDefault("scoring.risk_penalty_max", 200.0)
	v.SetDefault("scoring.score_min", 0.0)
	v.SetDefault("scoring.score_max", 1000.0)

	v.SetDefault("report.bucket_size", 100)
	v.SetDefault("report.top_n", 5)

	v.SetDefault("watch.interval", "15m")
	v.SetDefault("watch.align_to_bucket", true)
	v.SetDefault("watch.startup_delay", "0s")
	v.SetDefault("watch.run_immediately", true)
	v.SetDefault("watch.advisory_lock_key", 774100)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.score_floor", 300.0)
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Assets.DefaultDecimals < 0 {
		return fmt.Errorf("assets.default_decimals cannot be negative")
	}
	for symbol, dec := range c.Assets.Decimals {
		if dec < 0 {
			return fmt.Errorf("assets.decimals.%s cannot be negative", symbol)
		}
	}

	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("pipeline.workers cannot be negative")
	}

	if err := c.Scoring.Validate(); err != nil {
		return err
	}

	if c.Report.BucketSize <= 0 {
		return fmt.Errorf("report.bucket_size must be greater than zero")
	}
	if c.Report.TopN <= 0 {
		return fmt.Errorf("report.top_n must be greater than zero")
	}

	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than zero")
	}

	if c.Alerting.Enabled {
		if c.Alerting.ScoreFloor < c.Scoring.ScoreMin || c.Alerting.ScoreFloor > c.Scoring.ScoreMax {
			return fmt.Errorf("alerting.score_floor must lie within the score bounds")
		}
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required")
		}
	}

	return nil
}

// ResolveWorkers returns the CLI override, the configured worker count, or
// one worker per CPU, in that precedence order.
func (c *Config) ResolveWorkers(override int) int {
	if override > 0 {
		return override
	}
	if c.Pipeline.Workers > 0 {
		return c.Pipeline.Workers
	}
	return runtime.NumCPU()
}
