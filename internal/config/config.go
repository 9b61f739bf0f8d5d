// internal/config/config.go
package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr    string `mapstructure:"listen_addr"`
	PostgresURL   string `mapstructure:"postgres_url"`
	QuotesBaseURL string `mapstructure:"quotes_base_url"`

	Workers        int `mapstructure:"workers"`
	Retries        int `mapstructure:"retries"`
	RetryDelayMs   int `mapstructure:"retry_delay_ms"`
	FetchTimeoutMs int `mapstructure:"fetch_timeout_ms"`

	PollIntervalMs   int `mapstructure:"poll_interval_ms"`
	IdleIntervalMs   int `mapstructure:"idle_interval_ms"`
	ClosedIntervalMs int `mapstructure:"closed_interval_ms"`
	CycleTimeoutMs   int `mapstructure:"cycle_timeout_ms"`

	MarginDivisor float64 `mapstructure:"margin_divisor"`

	LogFile      string `mapstructure:"log_file"`
	DebugLogging bool   `mapstructure:"debug_logging"`
}

const (
	DefaultListenAddr     = ":8080"
	DefaultWorkers        = 20
	DefaultRetries        = 3
	DefaultRetryDelay     = 400
	DefaultFetchTimeout   = 5000
	DefaultPollInterval   = 3000
	DefaultIdleInterval   = 5000
	DefaultClosedInterval = 30000
	DefaultCycleTimeout   = 20000
	DefaultMarginDivisor  = 5
	DefaultLogFile        = "monitor.log"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"listen_addr":        DefaultListenAddr,
		"workers":            DefaultWorkers,
		"retries":            DefaultRetries,
		"retry_delay_ms":     DefaultRetryDelay,
		"fetch_timeout_ms":   DefaultFetchTimeout,
		"poll_interval_ms":   DefaultPollInterval,
		"idle_interval_ms":   DefaultIdleInterval,
		"closed_interval_ms": DefaultClosedInterval,
		"cycle_timeout_ms":   DefaultCycleTimeout,
		"margin_divisor":     DefaultMarginDivisor,
		"log_file":           DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.PostgresURL == "" {
		return errors.New("missing postgres_url in configuration")
	}
	if cfg.QuotesBaseURL == "" {
		return errors.New("missing quotes_base_url in configuration")
	}
	if err := validateURL(cfg.QuotesBaseURL); err != nil {
		return err
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.Workers <= 0 {
		return errors.New("invalid workers count")
	}
	if cfg.Retries <= 0 {
		return errors.New("invalid retries count")
	}
	if cfg.RetryDelayMs < 0 {
		return errors.New("invalid retry_delay_ms")
	}
	if cfg.FetchTimeoutMs <= 0 {
		return errors.New("invalid fetch_timeout_ms")
	}
	if cfg.PollIntervalMs <= 0 {
		return errors.New("invalid poll_interval_ms")
	}
	if cfg.IdleIntervalMs <= 0 {
		return errors.New("invalid idle_interval_ms")
	}
	if cfg.ClosedIntervalMs <= 0 {
		return errors.New("invalid closed_interval_ms")
	}
	if cfg.CycleTimeoutMs <= 0 {
		return errors.New("invalid cycle_timeout_ms")
	}
	if cfg.MarginDivisor <= 0 {
		return errors.New("invalid margin_divisor")
	}
	return nil
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid quotes_base_url format")
	}
	if !strings.HasPrefix(parsed.Scheme, "http") {
		return errors.New("quotes_base_url must use http or https")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("MONITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envPostgres := v.GetString("POSTGRES_URL"); envPostgres != "" {
		cfg.PostgresURL = envPostgres
	}
	if envQuotes := v.GetString("QUOTES_BASE_URL"); envQuotes != "" {
		cfg.QuotesBaseURL = envQuotes
	}
	if envAddr := v.GetString("LISTEN_ADDR"); envAddr != "" {
		cfg.ListenAddr = envAddr
	}
}

// Duration helpers for the millisecond-valued knobs.

func (c *Config) RetryDelay() time.Duration   { return time.Duration(c.RetryDelayMs) * time.Millisecond }
func (c *Config) FetchTimeout() time.Duration { return time.Duration(c.FetchTimeoutMs) * time.Millisecond }
func (c *Config) PollInterval() time.Duration { return time.Duration(c.PollIntervalMs) * time.Millisecond }
func (c *Config) IdleInterval() time.Duration { return time.Duration(c.IdleIntervalMs) * time.Millisecond }
func (c *Config) ClosedInterval() time.Duration {
	return time.Duration(c.ClosedIntervalMs) * time.Millisecond
}
func (c *Config) CycleTimeout() time.Duration { return time.Duration(c.CycleTimeoutMs) * time.Millisecond }
