package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"market-board/internal/model"
)

type Config struct {
	Runtime  RuntimeConfig  `yaml:"runtime"`
	Server   ServerConfig   `yaml:"server"`
	Network  NetworkConfig  `yaml:"network"`
	Sheet    SheetConfig    `yaml:"sheet"`
	News     NewsConfig     `yaml:"news"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type RuntimeConfig struct {
	Timezone string `yaml:"timezone"`
}

type ServerConfig struct {
	Addr              string   `yaml:"addr"`
	Title             string   `yaml:"title"`
	AllowOrigins      []string `yaml:"allow_origins"`
	MaxRefreshPerMin  int      `yaml:"max_refresh_per_minute"`
	ShutdownTimeoutMS int      `yaml:"shutdown_timeout_ms"`
}

type NetworkConfig struct {
	TimeoutMS    int    `yaml:"timeout_ms"`
	UserAgent    string `yaml:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

type SheetConfig struct {
	CSVURL          string   `yaml:"csv_url"`
	Columns         []string `yaml:"columns"`
	SortableColumns []string `yaml:"sortable_columns"`
	NumericColumns  []string `yaml:"numeric_columns"`
	PercentColumns  []string `yaml:"percent_columns"`
}

type NewsConfig struct {
	Enabled          *bool            `yaml:"enabled"`
	MaxItems         int              `yaml:"max_items"`
	DateShiftMinutes int              `yaml:"date_shift_minutes"`
	Providers        []ProviderConfig `yaml:"providers"`
}

// ProviderConfig describes one proxy attempt. Endpoint may contain {url},
// which is replaced by the query-escaped feed URL.
type ProviderConfig struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Endpoint string `yaml:"endpoint"`
	FeedURL  string `yaml:"feed_url"`
}

type ScheduleConfig struct {
	RefreshCron string `yaml:"refresh_cron"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

const (
	marketWatchRSS  = "https://www.marketwatch.com/rss/topstories"
	yahooFinanceRSS = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=^GSPC&region=US&lang=en-US"
	rss2jsonAPI     = "https://api.rss2json.com/v1/api.json?rss_url={url}"
	allOriginsAPI   = "https://api.allorigins.win/get?url={url}"
)

func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{Name: "rss2json", Kind: string(model.KindJSONItems), Endpoint: rss2jsonAPI, FeedURL: marketWatchRSS},
		{Name: "allorigins-marketwatch", Kind: string(model.KindJSONContents), Endpoint: allOriginsAPI, FeedURL: marketWatchRSS},
		{Name: "allorigins-yahoo", Kind: string(model.KindJSONContents), Endpoint: allOriginsAPI, FeedURL: yahooFinanceRSS},
	}
}

// Load reads path, expands environment references, applies overrides and
// defaults, then validates. A missing file yields the default config.
func Load(path string) (Config, error) {
	var cfg Config
	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(raw) > 0 {
		expanded := os.ExpandEnv(string(raw))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("SHEET_CSV_URL"); v != "" {
		cfg.Sheet.CSVURL = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Title == "" {
		c.Server.Title = "Leaderboard"
	}
	if c.Server.MaxRefreshPerMin == 0 {
		c.Server.MaxRefreshPerMin = 6
	}
	if c.Server.ShutdownTimeoutMS <= 0 {
		c.Server.ShutdownTimeoutMS = 5000
	}
	if c.Network.TimeoutMS <= 0 {
		c.Network.TimeoutMS = 6000
	}
	if c.Network.MaxBodyBytes <= 0 {
		c.Network.MaxBodyBytes = 2 << 20
	}
	if c.Network.UserAgent == "" {
		c.Network.UserAgent = "Mozilla/5.0 (compatible; market-board)"
	}
	if len(c.Sheet.NumericColumns) == 0 {
		c.Sheet.NumericColumns = []string{"Rank", "Region Rank", "Return %"}
	}
	if len(c.Sheet.PercentColumns) == 0 {
		c.Sheet.PercentColumns = []string{"Return %"}
	}
	if c.News.MaxItems <= 0 {
		c.News.MaxItems = 6
	}
	if len(c.News.Providers) == 0 {
		c.News.Providers = DefaultProviders()
	}
	if c.Runtime.Timezone == "" {
		c.Runtime.Timezone = "America/Los_Angeles"
	}
}

// Validate does not require the sheet URL: a missing URL is a page state,
// not a startup failure.
func (c Config) Validate() error {
	if c.Network.TimeoutMS <= 0 {
		return errors.New("network.timeout_ms must be > 0")
	}
	if c.News.MaxItems <= 0 {
		return errors.New("news.max_items must be > 0")
	}
	for i, p := range c.News.Providers {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("news.providers[%d].name required", i)
		}
		switch model.ResponseKind(strings.ToLower(p.Kind)) {
		case model.KindJSONItems, model.KindJSONContents, model.KindXML:
		default:
			return fmt.Errorf("news.providers[%d].kind %q unsupported", i, p.Kind)
		}
		if strings.TrimSpace(p.Endpoint) == "" {
			return fmt.Errorf("news.providers[%d].endpoint required", i)
		}
		if strings.Contains(p.Endpoint, "{url}") && strings.TrimSpace(p.FeedURL) == "" {
			return fmt.Errorf("news.providers[%d].feed_url required by endpoint", i)
		}
	}
	return nil
}

func (c Config) NewsEnabled() bool {
	return c.News.Enabled == nil || *c.News.Enabled
}

// Providers builds the ordered provider list with final request URLs.
func (c Config) Providers() []model.Provider {
	out := make([]model.Provider, 0, len(c.News.Providers))
	for _, p := range c.News.Providers {
		out = append(out, model.Provider{
			Name: p.Name,
			URL:  strings.ReplaceAll(p.Endpoint, "{url}", url.QueryEscape(p.FeedURL)),
			Kind: model.ResponseKind(strings.ToLower(p.Kind)),
		})
	}
	return out
}
