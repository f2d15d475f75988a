package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/store"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Data.Format = "sqlite"
	cfg.Data.File = "books.db"
	cfg.Rates.Timeout = 3 * time.Second

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data", got.Data.Dir)
	assert.Equal(t, "sqlite", got.Data.Format)
	assert.Equal(t, "books.db", got.Data.File)
	assert.Equal(t, cfg.Rates.URL, got.Rates.URL)
	assert.Equal(t, "$.rates", got.Rates.Path)
	assert.Equal(t, 3*time.Second, got.Rates.Timeout)
	assert.Equal(t, "info", got.Log.Level)
	assert.Equal(t, dir, got.Root)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, "json", cfg.Data.Format)
	assert.Empty(t, cfg.Data.File)
	assert.Equal(t, "https://api.exchangerate-api.com/v4/latest/USD", cfg.Rates.URL)
	assert.Equal(t, "$.rates", cfg.Rates.Path)
	assert.Equal(t, 10*time.Second, cfg.Rates.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("data:\n  format: csv\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Data.Format)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, 10*time.Second, cfg.Rates.Timeout)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("data: [unclosed\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "dir: data")
	assert.Contains(t, contents, "format: json")
	assert.Contains(t, contents, "timeout: 10s")
	assert.Contains(t, contents, "level: info")
	assert.NotContains(t, contents, "root")
	assert.NotContains(t, contents, "file:")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errorString string
	}{
		{"empty dir", func(c *Config) { c.Data.Dir = "" }, "data.dir cannot be empty"},
		{"bad format", func(c *Config) { c.Data.Format = "xml" }, "invalid data.format 'xml'"},
		{"file with dir", func(c *Config) { c.Data.File = filepath.Join("a", "b.json") }, "must be a plain file name"},
		{"bad url", func(c *Config) { c.Rates.URL = "not a url" }, "invalid rates.url"},
		{"bad scheme", func(c *Config) { c.Rates.URL = "ftp://example.com/rates" }, "must be 'http' or 'https'"},
		{"bad path", func(c *Config) { c.Rates.Path = "rates" }, "invalid rates.path 'rates'"},
		{"zero timeout", func(c *Config) { c.Rates.Timeout = 0 }, "invalid rates.timeout"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "invalid log.level 'loud'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Data.Format = "xml"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.format")
	assert.Contains(t, err.Error(), "log.level")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TALLY_DATA_DIR", "/srv/ledger")
	t.Setenv("TALLY_DATA_FORMAT", "csv")
	t.Setenv("TALLY_DATA_FILE", "2025.csv")
	t.Setenv("TALLY_RATES_URL", "http://localhost:9999/rates")
	t.Setenv("TALLY_RATES_PATH", "$.data")
	t.Setenv("TALLY_RATES_TIMEOUT", "250ms")
	t.Setenv("TALLY_LOG_LEVEL", "debug")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "/srv/ledger", cfg.Data.Dir)
	assert.Equal(t, "csv", cfg.Data.Format)
	assert.Equal(t, "2025.csv", cfg.Data.File)
	assert.Equal(t, "http://localhost:9999/rates", cfg.Rates.URL)
	assert.Equal(t, "$.data", cfg.Rates.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Rates.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestApplyEnvBadTimeout(t *testing.T) {
	t.Setenv("TALLY_RATES_TIMEOUT", "soon")
	cfg := Default()
	assert.ErrorContains(t, cfg.ApplyEnv(), "TALLY_RATES_TIMEOUT")
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadEnv(dir), "missing .env is fine")

	// Register for cleanup before godotenv sets it.
	t.Setenv("TALLY_DATA_FORMAT", "")
	os.Unsetenv("TALLY_DATA_FORMAT")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TALLY_DATA_FORMAT=sqlite\n"), 0o644))
	require.NoError(t, LoadEnv(dir))

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "sqlite", cfg.Data.Format)
}

func TestDataPath(t *testing.T) {
	cfg := Default()
	cfg.Root = "/books"

	p, err := cfg.DataPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/books", "data", "ledger.json"), p)

	cfg.Data.Format = "sqlite"
	p, err = cfg.DataPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/books", "data", "ledger.db"), p)

	cfg.Data.File = "main.db"
	cfg.Data.Dir = "/var/tally"
	p, err = cfg.DataPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/tally", "main.db"), p)

	f, err := cfg.Format()
	require.NoError(t, err)
	assert.Equal(t, store.Relational, f)

	cfg.Data.Format = "xml"
	_, err = cfg.DataPath()
	assert.Error(t, err)
}
