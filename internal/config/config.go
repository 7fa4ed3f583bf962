package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrMissingCredentials is wrapped by Validate when an API key a command
// needs is not set.
var ErrMissingCredentials = errors.New("missing credentials")

// Config holds the full application configuration.
type Config struct {
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Auth      AuthConfig      `yaml:"auth" mapstructure:"auth"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Scroll    ScrollConfig    `yaml:"scroll" mapstructure:"scroll"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Schedule  ScheduleConfig  `yaml:"schedule" mapstructure:"schedule"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// FirecrawlConfig holds Firecrawl API settings.
type FirecrawlConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// Timeout returns the per-request render timeout.
func (c FirecrawlConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// AuthConfig holds the job-board session.
type AuthConfig struct {
	SessionCookie string `yaml:"session_cookie" mapstructure:"session_cookie"`
	CookieName    string `yaml:"cookie_name" mapstructure:"cookie_name"`
}

// ScrapeConfig configures fetch retries and pacing.
type ScrapeConfig struct {
	MaxRetries     int     `yaml:"max_retries" mapstructure:"max_retries"`
	DelaySecs      float64 `yaml:"delay_secs" mapstructure:"delay_secs"`
	CompanyPauseMs int     `yaml:"company_pause_ms" mapstructure:"company_pause_ms"`
	JobsWaitMs     int     `yaml:"jobs_wait_ms" mapstructure:"jobs_wait_ms"`
}

// ScrollConfig tunes the infinite-scroll stop heuristic.
type ScrollConfig struct {
	MaxScrolls           int     `yaml:"max_scrolls" mapstructure:"max_scrolls"`
	PauseSecs            float64 `yaml:"pause_secs" mapstructure:"pause_secs"`
	InitialWaitSecs      float64 `yaml:"initial_wait_secs" mapstructure:"initial_wait_secs"`
	ContentCheckInterval int     `yaml:"content_check_interval" mapstructure:"content_check_interval"`
	MinNewContent        int     `yaml:"min_new_content" mapstructure:"min_new_content"`
	InterScrollMs        int     `yaml:"inter_scroll_ms" mapstructure:"inter_scroll_ms"`
}

// ExtractConfig configures LLM extraction retries.
type ExtractConfig struct {
	MaxRetries   int     `yaml:"max_retries" mapstructure:"max_retries"`
	DelaySecs    float64 `yaml:"delay_secs" mapstructure:"delay_secs"`
	MaxCompanies int     `yaml:"max_companies" mapstructure:"max_companies"`
}

// ExportConfig configures where and how results are written.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	Format    string `yaml:"format" mapstructure:"format"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// CacheConfig configures the rendered-page cache.
type CacheConfig struct {
	Driver    string `yaml:"driver" mapstructure:"driver"`
	RedisURL  string `yaml:"redis_url" mapstructure:"redis_url"`
	TTLHours  int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// TTL returns the cache lifetime. Zero disables caching.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// ScheduleConfig configures the watch command.
type ScheduleConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// legacyEnv maps bare environment variable names onto config keys so
// existing .env files keep working alongside JOBBOARD_* names.
var legacyEnv = map[string]string{
	"firecrawl.key":          "FIRECRAWL_API_KEY",
	"anthropic.key":          "ANTHROPIC_API_KEY",
	"auth.session_cookie":    "YC_SESSION_COOKIE",
	"scrape.delay_secs":      "SCRAPE_DELAY",
	"scrape.max_retries":     "MAX_RETRIES",
	"firecrawl.timeout_secs": "REQUEST_TIMEOUT",
	"export.output_dir":      "OUTPUT_DIR",
	"export.format":          "OUTPUT_FORMAT",
	"log.level":              "LOG_LEVEL",
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("JOBBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := "JOBBOARD_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", env)
		}
	}

	// Defaults
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("firecrawl.timeout_secs", 30)
	v.SetDefault("firecrawl.rate_limit", 0)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 8192)
	v.SetDefault("auth.cookie_name", "_yc_session")
	v.SetDefault("scrape.max_retries", 3)
	v.SetDefault("scrape.delay_secs", 1.0)
	v.SetDefault("scrape.company_pause_ms", 500)
	v.SetDefault("scrape.jobs_wait_ms", 2000)
	v.SetDefault("scroll.max_scrolls", 15)
	v.SetDefault("scroll.pause_secs", 3.0)
	v.SetDefault("scroll.initial_wait_secs", 3.0)
	v.SetDefault("scroll.content_check_interval", 3)
	v.SetDefault("scroll.min_new_content", 100)
	v.SetDefault("scroll.inter_scroll_ms", 500)
	v.SetDefault("extract.max_retries", 3)
	v.SetDefault("extract.delay_secs", 1.0)
	v.SetDefault("extract.max_companies", 0)
	v.SetDefault("export.output_dir", "./output")
	v.SetDefault("export.format", "json")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "jobboard.db")
	v.SetDefault("cache.driver", "store")
	v.SetDefault("cache.ttl_hours", 0)
	v.SetDefault("cache.key_prefix", "jobboard:page:")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("schedule.file", "searches.yaml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command needs are present. Mode is
// one of "scrape", "serve" or "store".
func (c *Config) Validate(mode string) error {
	var errs, creds []string

	switch mode {
	case "scrape", "serve":
		if c.Firecrawl.Key == "" {
			creds = append(creds, "firecrawl.key is required (FIRECRAWL_API_KEY)")
		}
		if c.Anthropic.Key == "" {
			creds = append(creds, "anthropic.key is required (ANTHROPIC_API_KEY)")
		}
		if c.Scroll.ContentCheckInterval <= 0 {
			errs = append(errs, "scroll.content_check_interval must be positive")
		}
		switch c.Export.Format {
		case "json", "csv", "xlsx":
		default:
			errs = append(errs, fmt.Sprintf("export.format %q must be json, csv or xlsx", c.Export.Format))
		}
	}
	if mode == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite or postgres", c.Store.Driver))
	}

	if len(creds) > 0 {
		return eris.Wrapf(ErrMissingCredentials, "config: %s", strings.Join(append(creds, errs...), "; "))
	}
	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
