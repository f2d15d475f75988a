package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/tally/internal/fx"
	"github.com/cleared-dev/tally/internal/logger"
	"github.com/cleared-dev/tally/internal/store"
)

// FileName is the config file written by "tally init".
const FileName = "tally.yaml"

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Data  DataConfig  `yaml:"data"`
	Rates RatesConfig `yaml:"rates"`
	Log   LogConfig   `yaml:"log"`

	// Root is the directory relative paths are resolved against. It is set
	// by Load and never written.
	Root string `yaml:"-"`
}

// DataConfig selects where and how the ledger is persisted.
type DataConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // json, csv or sqlite
	File   string `yaml:"file,omitempty"`
}

// RatesConfig points at the exchange rate service.
type RatesConfig struct {
	URL     string        `yaml:"url"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig controls console logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a tally.yaml file from disk. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Root = filepath.Dir(path)
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir:    "data",
			Format: store.StructuredText.String(),
		},
		Rates: RatesConfig{
			URL:     fx.DefaultURL,
			Path:    fx.DefaultPath,
			Timeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Root: ".",
	}
}

// LoadEnv loads a .env file from dir into the process environment if one
// exists. Variables already set are left alone.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from TALLY_* environment variables.
func (c *Config) ApplyEnv() error {
	c.Data.Dir = getEnv("TALLY_DATA_DIR", c.Data.Dir)
	c.Data.Format = getEnv("TALLY_DATA_FORMAT", c.Data.Format)
	c.Data.File = getEnv("TALLY_DATA_FILE", c.Data.File)
	c.Rates.URL = getEnv("TALLY_RATES_URL", c.Rates.URL)
	c.Rates.Path = getEnv("TALLY_RATES_PATH", c.Rates.Path)
	c.Log.Level = getEnv("TALLY_LOG_LEVEL", c.Log.Level)

	if v := os.Getenv("TALLY_RATES_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TALLY_RATES_TIMEOUT %q: %w", v, err)
		}
		c.Rates.Timeout = d
	}
	return nil
}

// Validate reports every invalid field in one error.
func (c *Config) Validate() error {
	var errs []string

	if c.Data.Dir == "" {
		errs = append(errs, "data.dir cannot be empty")
	}
	if _, err := store.ParseFormat(c.Data.Format); err != nil {
		errs = append(errs, fmt.Sprintf("invalid data.format '%s': must be one of json, csv, sqlite", c.Data.Format))
	}
	if strings.ContainsRune(c.Data.File, filepath.Separator) {
		errs = append(errs, fmt.Sprintf("invalid data.file '%s': must be a plain file name", c.Data.File))
	}

	if u, err := url.Parse(c.Rates.URL); err != nil || u.Host == "" {
		errs = append(errs, fmt.Sprintf("invalid rates.url '%s'", c.Rates.URL))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("invalid rates.url scheme '%s': must be 'http' or 'https'", u.Scheme))
	}
	if !strings.HasPrefix(c.Rates.Path, "$") {
		errs = append(errs, fmt.Sprintf("invalid rates.path '%s': must be a JSONPath starting with '$'", c.Rates.Path))
	}
	if c.Rates.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("invalid rates.timeout %v: must be positive", c.Rates.Timeout))
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log.level '%s'", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Format returns the configured persistence format.
func (c *Config) Format() (store.Format, error) {
	return store.ParseFormat(c.Data.Format)
}

// DataDir returns the data directory, resolved against Root.
func (c *Config) DataDir() string {
	if filepath.IsAbs(c.Data.Dir) {
		return c.Data.Dir
	}
	return filepath.Join(c.Root, c.Data.Dir)
}

// DataPath returns the storage target: data.file inside the data directory,
// or "ledger" plus the format's extension when no file is named.
func (c *Config) DataPath() (string, error) {
	f, err := c.Format()
	if err != nil {
		return "", err
	}
	name := c.Data.File
	if name == "" {
		name = "ledger" + f.Ext()
	}
	return filepath.Join(c.DataDir(), name), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
