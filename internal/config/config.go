// Package config loads runtime settings from an optional YAML file with
// environment overrides. A .env file in the working directory is applied
// first, so local runs need no exported variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Addr          string   `mapstructure:"addr"`            // API bind address for serve mode
	LogDir        string   `mapstructure:"log_dir"`         // logs directory
	LogLevel      string   `mapstructure:"log_level"`       // debug|info|warn|error
	ReportPath    string   `mapstructure:"report_path"`     // default JSON report destination
	SuitePath     string   `mapstructure:"suite_path"`      // suite file for serve mode
	BaseURL       string   `mapstructure:"base_url"`        // base URL override for the configured suite
	TimeoutMS     int      `mapstructure:"timeout_ms"`      // default per-probe timeout
	IntervalMS    int      `mapstructure:"interval_ms"`     // serve-mode re-run interval, 0 disables
	PublicAPIKeys []string `mapstructure:"public_api_keys"` // read access to stored runs
	AdminAPIKeys  []string `mapstructure:"admin_api_keys"`  // trigger runs
	PublicRPM     int      `mapstructure:"public_rpm"`      // per-IP rate limit, 0 disables
	PublicBurst   int      `mapstructure:"public_burst"`
	WebhookURL    string   `mapstructure:"webhook_url"` // failure notifications
	MaxStoredRuns int      `mapstructure:"max_stored_runs"`
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// Load reads the config file at path (optional, empty means env-only)
// and applies APIPROBE_* environment overrides.
func Load(path string) (Config, error) {
	_ = godotenv.Load() // best effort; absence is fine

	v := viper.New()
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_level", "info")
	v.SetDefault("report_path", "report.json")
	v.SetDefault("timeout_ms", 10000)
	v.SetDefault("interval_ms", 0)
	v.SetDefault("public_rpm", 120)
	v.SetDefault("public_burst", 60)
	v.SetDefault("max_stored_runs", 100)

	v.SetEnvPrefix("APIPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about, so keys
	// without a default must be bound explicitly or env-only values are
	// lost at Unmarshal.
	for _, key := range []string{
		"suite_path", "base_url", "webhook_url",
		"public_api_keys", "admin_api_keys",
	} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.TimeoutMS <= 0 {
		return Config{}, fmt.Errorf("timeout_ms must be > 0, got %d", cfg.TimeoutMS)
	}
	return cfg, nil
}
