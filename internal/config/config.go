package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type Config struct {
	// Output
	OutputDir string
	IndexFile string

	// Limits
	MaxJobs       int
	MaxEmptyPages int

	// Pacing
	MinDelay       time.Duration
	MaxDelay       time.Duration
	MaxRetries     int
	RequestTimeout time.Duration

	// Search defaults
	DefaultLocation string
	DefaultKeywords string

	// Proxy
	UseProxy bool
	ProxyURL string

	// Logging
	LogLevel string
	LogFile  string
	DebugDir string

	// Storage
	StorageBackend string
	PostgresDSN    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// Telegram
	TelegramToken      string
	TelegramChatID     int64
	CheckInterval      time.Duration
	MinNotifyRelevance int

	ProfileFile string
	Profile     Profile
}

// Load reads .env when present, then the environment, then the optional
// profile file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		// Defaults
		OutputDir:          "job_files",
		IndexFile:          "jobs_index.json",
		MaxJobs:            100,
		MaxEmptyPages:      3,
		MinDelay:           2 * time.Second,
		MaxDelay:           5 * time.Second,
		MaxRetries:         3,
		RequestTimeout:     30 * time.Second,
		DefaultLocation:    "Italy",
		DefaultKeywords:    "angular developer",
		LogLevel:           "info",
		StorageBackend:     StorageFile,
		CheckInterval:      time.Hour,
		MinNotifyRelevance: 3,
	}

	var err error

	cfg.OutputDir = envString("OUTPUT_DIR", cfg.OutputDir)
	cfg.IndexFile = envString("INDEX_FILE", cfg.IndexFile)

	if cfg.MaxJobs, err = envInt("MAX_JOBS_TO_SCRAPE", cfg.MaxJobs); err != nil {
		return nil, err
	}
	if cfg.MaxEmptyPages, err = envInt("MAX_EMPTY_PAGES", cfg.MaxEmptyPages); err != nil {
		return nil, err
	}
	if cfg.MinDelay, err = envDuration("MIN_DELAY", cfg.MinDelay); err != nil {
		return nil, err
	}
	if cfg.MaxDelay, err = envDuration("MAX_DELAY", cfg.MaxDelay); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = envInt("MAX_RETRIES", cfg.MaxRetries); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return nil, err
	}

	cfg.DefaultLocation = envString("DEFAULT_LOCATION", cfg.DefaultLocation)
	cfg.DefaultKeywords = envString("DEFAULT_KEYWORDS", cfg.DefaultKeywords)

	if cfg.UseProxy, err = envBool("USE_PROXY", false); err != nil {
		return nil, err
	}
	cfg.ProxyURL = os.Getenv("PROXY_URL")

	cfg.LogLevel = strings.ToLower(envString("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFile = os.Getenv("LOG_FILE")
	cfg.DebugDir = os.Getenv("DEBUG_DIR")

	cfg.StorageBackend = strings.ToLower(envString("STORAGE_BACKEND", cfg.StorageBackend))
	cfg.PostgresDSN = os.Getenv("POSTGRES_DSN")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if cfg.CheckInterval, err = envDuration("CHECK_INTERVAL", cfg.CheckInterval); err != nil {
		return nil, err
	}
	if cfg.MinNotifyRelevance, err = envInt("MIN_NOTIFY_RELEVANCE", cfg.MinNotifyRelevance); err != nil {
		return nil, err
	}

	cfg.ProfileFile = os.Getenv("PROFILE_FILE")
	if cfg.ProfileFile != "" {
		profile, err := LoadProfile(cfg.ProfileFile)
		if err != nil {
			return nil, err
		}
		cfg.Profile = *profile
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output dir is empty")
	}

	if c.MaxJobs < 1 || c.MaxJobs > 1000 {
		return fmt.Errorf("max jobs must be between 1 and 1000")
	}

	if c.MaxEmptyPages < 1 {
		return fmt.Errorf("max empty pages must be positive")
	}

	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		return fmt.Errorf("invalid delay range: %v..%v", c.MinDelay, c.MaxDelay)
	}

	if c.MaxRetries < 1 || c.MaxRetries > 10 {
		return fmt.Errorf("max retries must be between 1 and 10")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	if c.UseProxy && c.ProxyURL == "" {
		return fmt.Errorf("USE_PROXY is set but PROXY_URL is empty")
	}

	switch c.StorageBackend {
	case StorageFile:
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres DSN is empty")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// ValidateBot checks the settings only the Telegram bot needs.
func (c *Config) ValidateBot() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("telegram token is empty")
	}

	if c.CheckInterval < time.Minute {
		return fmt.Errorf("check interval too small: %v", c.CheckInterval)
	}

	return nil
}

// Proxy returns the proxy URL to use, or "" when proxying is off.
func (c *Config) Proxy() string {
	if !c.UseProxy {
		return ""
	}
	return c.ProxyURL
}

// Keywords returns the relevance keywords from the profile, or nil for the
// built-in list.
func (c *Config) Keywords() []string {
	return c.Profile.Keywords
}

// SearchKeywords and SearchLocation prefer the profile over env defaults.
func (c *Config) SearchKeywords() string {
	if c.Profile.Search.Keywords != "" {
		return c.Profile.Search.Keywords
	}
	return c.DefaultKeywords
}

func (c *Config) SearchLocation() string {
	if c.Profile.Search.Location != "" {
		return c.Profile.Search.Location
	}
	return c.DefaultLocation
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// envDuration accepts Go durations ("1m30s") and plain numbers of seconds.
func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}

	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}

	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is neither a duration nor seconds", key, v)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
