package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Scraper   ScraperConfig   `yaml:"scraper"`
	Browser   BrowserConfig   `yaml:"browser"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	Retry     RetryConfig     `yaml:"retry"`
	Storage   StorageConfig   `yaml:"storage"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Health    HealthConfig    `yaml:"health"`
	Logging   LoggingConfig   `yaml:"logging"`
	Selectors Selectors       `yaml:"selectors"`
}

type ScraperConfig struct {
	BaseURL        string  `yaml:"base_url"`
	MinH2HMatches  int     `yaml:"min_h2h_matches"`  // H2H rows required for a complete record
	TargetOverOdds float64 `yaml:"target_over_odds"` // target over odds for line selection (default: 1.85)
}

type BrowserConfig struct {
	Headless     bool   `yaml:"headless"`
	WindowWidth  int    `yaml:"window_width"`
	WindowHeight int    `yaml:"window_height"`
	UserAgent    string `yaml:"user_agent"`
	UserDataDir  string `yaml:"user_data_dir"` // empty: a temp profile per run
}

type TimeoutConfig struct {
	PageLoadSeconds       int `yaml:"page_load_seconds"`
	ElementSeconds        int `yaml:"element_seconds"`
	DynamicContentSeconds int `yaml:"dynamic_content_seconds"`
}

func (t TimeoutConfig) PageLoad() time.Duration       { return time.Duration(t.PageLoadSeconds) * time.Second }
func (t TimeoutConfig) Element() time.Duration        { return time.Duration(t.ElementSeconds) * time.Second }
func (t TimeoutConfig) DynamicContent() time.Duration { return time.Duration(t.DynamicContentSeconds) * time.Second }

type RetryConfig struct {
	MaxRetries       int `yaml:"max_retries"`
	BaseDelaySeconds int `yaml:"base_delay_seconds"`
}

func (r RetryConfig) BaseDelay() time.Duration { return time.Duration(r.BaseDelaySeconds) * time.Second }

type StorageConfig struct {
	OutputDir string `yaml:"output_dir"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"` // empty: the relational mirror is disabled
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type HealthConfig struct {
	Port                     int `yaml:"port"` // 0: the health server is disabled
	ReadHeaderTimeoutSeconds int `yaml:"read_header_timeout_seconds"`
}

func (h HealthConfig) ReadHeaderTimeout() time.Duration {
	return time.Duration(h.ReadHeaderTimeoutSeconds) * time.Second
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty: console only
}

// Default returns the configuration used when a field is absent from the
// config file. Load unmarshals the file over this, so partial configs work.
func Default() *Config {
	return &Config{
		Scraper: ScraperConfig{
			BaseURL:        "https://www.flashscore.co.ke/basketball/",
			MinH2HMatches:  6,
			TargetOverOdds: 1.85,
		},
		Browser: BrowserConfig{
			Headless:     true,
			WindowWidth:  1920,
			WindowHeight: 1080,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Timeouts: TimeoutConfig{
			PageLoadSeconds:       30,
			ElementSeconds:        10,
			DynamicContentSeconds: 15,
		},
		Retry: RetryConfig{
			MaxRetries:       3,
			BaseDelaySeconds: 5,
		},
		Storage: StorageConfig{
			OutputDir: "output",
		},
		Health: HealthConfig{
			Port:                     8080,
			ReadHeaderTimeoutSeconds: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Selectors: DefaultSelectors(),
	}
}

func Load(configPath string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Scraper.BaseURL == "" {
		return fmt.Errorf("scraper.base_url is required")
	}
	if c.Scraper.MinH2HMatches <= 0 {
		return fmt.Errorf("scraper.min_h2h_matches must be positive, got %d", c.Scraper.MinH2HMatches)
	}
	if c.Scraper.TargetOverOdds <= 1.0 {
		return fmt.Errorf("scraper.target_over_odds must be above 1.0, got %v", c.Scraper.TargetOverOdds)
	}
	if c.Timeouts.PageLoadSeconds <= 0 || c.Timeouts.ElementSeconds <= 0 || c.Timeouts.DynamicContentSeconds <= 0 {
		return fmt.Errorf("all timeouts must be positive")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", c.Retry.MaxRetries)
	}
	if c.Storage.OutputDir == "" {
		return fmt.Errorf("storage.output_dir is required")
	}
	return c.Selectors.Validate()
}
