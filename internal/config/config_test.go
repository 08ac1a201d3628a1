package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "job_files", cfg.OutputDir)
	assert.Equal(t, "jobs_index.json", cfg.IndexFile)
	assert.Equal(t, 100, cfg.MaxJobs)
	assert.Equal(t, 3, cfg.MaxEmptyPages)
	assert.Equal(t, 2*time.Second, cfg.MinDelay)
	assert.Equal(t, 5*time.Second, cfg.MaxDelay)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "Italy", cfg.SearchLocation())
	assert.Equal(t, StorageFile, cfg.StorageBackend)
	assert.Equal(t, time.Hour, cfg.CheckInterval)
	assert.Equal(t, 3, cfg.MinNotifyRelevance)
	assert.Empty(t, cfg.Proxy())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("MAX_JOBS_TO_SCRAPE", "25")
	t.Setenv("MIN_DELAY", "1")
	t.Setenv("MAX_DELAY", "1500ms")
	t.Setenv("USE_PROXY", "true")
	t.Setenv("PROXY_URL", "http://proxy:8080")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/jobs")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.MaxJobs)
	assert.Equal(t, time.Second, cfg.MinDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.MaxDelay)
	assert.Equal(t, "http://proxy:8080", cfg.Proxy())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(-100123), cfg.TelegramChatID)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OUTPUT_DIR=from_dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("OUTPUT_DIR") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from_dotenv", cfg.OutputDir)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "MAX_JOBS_TO_SCRAPE", value: "lots"},
		{key: "MIN_DELAY", value: "soon"},
		{key: "USE_PROXY", value: "maybe"},
		{key: "TELEGRAM_CHAT_ID", value: "chat"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			OutputDir:      "out",
			MaxJobs:        10,
			MaxEmptyPages:  3,
			MinDelay:       time.Second,
			MaxDelay:       2 * time.Second,
			MaxRetries:     3,
			RequestTimeout: time.Second,
			LogLevel:       "info",
			StorageBackend: StorageFile,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "too many jobs", mutate: func(c *Config) { c.MaxJobs = 5000 }},
		{name: "inverted delays", mutate: func(c *Config) { c.MaxDelay = 0 }},
		{name: "no retries", mutate: func(c *Config) { c.MaxRetries = 0 }},
		{name: "proxy without url", mutate: func(c *Config) { c.UseProxy = true }},
		{name: "postgres without dsn", mutate: func(c *Config) { c.StorageBackend = StoragePostgres }},
		{name: "unknown backend", mutate: func(c *Config) { c.StorageBackend = "s3" }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidateBot(t *testing.T) {
	c := &Config{CheckInterval: time.Hour}
	assert.Error(t, c.ValidateBot())

	c.TelegramToken = "token"
	assert.NoError(t, c.ValidateBot())

	c.CheckInterval = time.Second
	assert.Error(t, c.ValidateBot())
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
keywords: [go, kubernetes]
user_agents:
  - custom-agent
selectors:
  Title:
    - h1.custom
search:
  keywords: golang developer
  location: Milan
  remote: true
  experience: [mid-senior]
`), 0o644))
	t.Setenv("PROFILE_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"go", "kubernetes"}, cfg.Keywords())
	assert.Equal(t, []string{"custom-agent"}, cfg.Profile.UserAgents)
	assert.Equal(t, []string{"h1.custom"}, cfg.Profile.Selectors["Title"])
	assert.Equal(t, "golang developer", cfg.SearchKeywords())
	assert.Equal(t, "Milan", cfg.SearchLocation())
	assert.True(t, cfg.Profile.Search.Remote)
	assert.Equal(t, []string{"mid-senior"}, cfg.Profile.Search.Experience)

	t.Setenv("PROFILE_FILE", filepath.Join(dir, "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
