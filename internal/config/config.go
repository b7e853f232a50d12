package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file
const (
	EnvConfigPath      = "H2H_CONFIG"
	EnvFootballDataKey = "FOOTBALL_DATA_API_KEY"
	EnvOpenAIKey       = "OPENAI_API_KEY"
	EnvDbPath          = "H2H_DB_PATH"
	EnvLogLevel        = "H2H_LOG_LEVEL"
	EnvBrowser         = "H2H_BROWSER"
)

// Browser drivers understood by the scraper
const (
	BrowserPlaywright = "playwright"
	BrowserChromedp   = "chromedp"
	BrowserStatic     = "static"
)

// Config contains everything the tools need that isn't a command line argument
type Config struct {
	FootballData FootballDataConfig `yaml:"football_data"`
	OpenAI       OpenAIConfig       `yaml:"openai"`
	Scraper      ScraperConfig      `yaml:"scraper"`
	Parser       ParserConfig       `yaml:"parser"`

	DbPath   string `yaml:"db_path"`  // sqlite store for parsed fixtures and cached api responses
	CSVDir   string `yaml:"csv_dir"`  // where <team1>_<team2>_h2h.csv files go
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

type FootballDataConfig struct {
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"api_key"`
	RequestsPerMinute int           `yaml:"requests_per_minute"` // the free tier allows 10
	DaysBack          int           `yaml:"days_back"`           // window for recent form
	HeadToHeadLimit   int           `yaml:"head_to_head_limit"`
	CompetitionID     string        `yaml:"competition_id"` // 2021 is the Premier League
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	Timeout           time.Duration `yaml:"timeout"`
}

type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

type ScraperConfig struct {
	Browser      string        `yaml:"browser"`
	Headless     bool          `yaml:"headless"`
	Timeout      time.Duration `yaml:"timeout"`
	SettleDelay  time.Duration `yaml:"settle_delay"` // pause after each navigation for client side rendering
	SearchURL    string        `yaml:"search_url"`
	SearchSuffix string        `yaml:"search_suffix"`
	UserAgent    string        `yaml:"user_agent"`
}

type ParserConfig struct {
	ExtraCompetitions []string  `yaml:"extra_competitions"`
	Cutoff            time.Time `yaml:"cutoff"` // fixtures before this date are dropped
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return &Config{
		FootballData: FootballDataConfig{
			BaseURL:           "https://api.football-data.org/v4",
			RequestsPerMinute: 10,
			DaysBack:          90,
			HeadToHeadLimit:   60,
			CompetitionID:     "2021",
			CacheTTL:          6 * time.Hour,
			Timeout:           30 * time.Second,
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
		},
		Scraper: ScraperConfig{
			Browser:      BrowserPlaywright,
			Headless:     true,
			Timeout:      60 * time.Second,
			SettleDelay:  2 * time.Second,
			SearchURL:    "https://www.google.com/search",
			SearchSuffix: "sofascore",
			UserAgent:    "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		},
		Parser: ParserConfig{
			Cutoff: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		DbPath:   filepath.Join(home, ".h2h", "h2h.db"),
		CSVDir:   ".",
		LogLevel: "INFO",
		LogFile:  "/tmp/h2h.log",
	}
}

// Load builds the config from defaults, then the yaml file at path (or $H2H_CONFIG) if there is one,
// then the environment
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvFootballDataKey); v != "" {
		c.FootballData.APIKey = v
	}
	if v := os.Getenv(EnvOpenAIKey); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(EnvDbPath); v != "" {
		c.DbPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvBrowser); v != "" {
		c.Scraper.Browser = strings.ToLower(v)
	}
}

// Validate ensures all configuration values are within reasonable ranges
func (c *Config) Validate() error {
	if c.FootballData.BaseURL == "" {
		return fmt.Errorf("football_data.base_url must be set")
	}
	if c.FootballData.RequestsPerMinute < 1 {
		return fmt.Errorf("football_data.requests_per_minute must be at least 1, got: %d", c.FootballData.RequestsPerMinute)
	}
	if c.FootballData.DaysBack < 1 || c.FootballData.DaysBack > 365 {
		return fmt.Errorf("football_data.days_back should be between 1 and 365, got: %d", c.FootballData.DaysBack)
	}
	if c.FootballData.HeadToHeadLimit < 1 || c.FootballData.HeadToHeadLimit > 100 {
		return fmt.Errorf("football_data.head_to_head_limit should be between 1 and 100, got: %d", c.FootballData.HeadToHeadLimit)
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return fmt.Errorf("openai.temperature should be between 0 and 2, got: %f", c.OpenAI.Temperature)
	}
	switch c.Scraper.Browser {
	case BrowserPlaywright, BrowserChromedp, BrowserStatic:
	default:
		return fmt.Errorf("scraper.browser must be one of %s, %s or %s, got: %q", BrowserPlaywright, BrowserChromedp, BrowserStatic, c.Scraper.Browser)
	}
	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("scraper.timeout must be positive, got: %s", c.Scraper.Timeout)
	}
	if c.Parser.Cutoff.IsZero() {
		return fmt.Errorf("parser.cutoff must be set")
	}
	if c.Scraper.SettleDelay < 0 {
		return fmt.Errorf("scraper.settle_delay can't be negative, got: %s", c.Scraper.SettleDelay)
	}
	return nil
}
