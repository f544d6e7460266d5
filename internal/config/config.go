package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the config file.
const (
	EnvMaxCandidates = "RSCAN_MAX_CANDIDATES"
	EnvWalkWorkers   = "RSCAN_WALK_WORKERS"
	EnvWalkParallel  = "RSCAN_WALK_PARALLEL"
	EnvLogLevel      = "RSCAN_LOG_LEVEL"
	EnvLogFormat     = "RSCAN_LOG_FORMAT"
	EnvAddr          = "RSCAN_ADDR"
)

const maxWalkWorkers = 8

// Walk controls tree traversal.
type Walk struct {
	MaxCandidates int   `yaml:"max_candidates"`
	Workers       int   `yaml:"workers"`
	Parallel      bool  `yaml:"parallel"`
	MaxFileSize   int64 `yaml:"max_file_size"`
	GlobalIgnore  bool  `yaml:"global_ignore"`
}

// Name controls fuzzy name search.
type Name struct {
	BatchSize int `yaml:"batch_size"`
	MaxLimit  int `yaml:"max_limit"`
}

// Content controls content search.
type Content struct {
	BatchFiles        int `yaml:"batch_files"`
	MaxMatchesPerFile int `yaml:"max_matches_per_file"`
	MaxResults        int `yaml:"max_results"`
}

// Enumerate controls directory enumeration.
type Enumerate struct {
	PageSize   int           `yaml:"page_size"`
	ChunkSize  int           `yaml:"chunk_size"`
	ChunkDelay time.Duration `yaml:"chunk_delay"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Server configures the HTTP transport.
type Server struct {
	Addr string `yaml:"addr"`
}

// Config is the in-memory representation of config.yaml.
type Config struct {
	Walk      Walk      `yaml:"walk"`
	Name      Name      `yaml:"name"`
	Content   Content   `yaml:"content"`
	Enumerate Enumerate `yaml:"enumerate"`
	Log       Log       `yaml:"log"`
	Server    Server    `yaml:"server"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Walk: Walk{
			MaxCandidates: 10000,
			Workers:       4,
			Parallel:      false,
			MaxFileSize:   10 << 20,
			GlobalIgnore:  true,
		},
		Name: Name{
			BatchSize: 100,
			MaxLimit:  100,
		},
		Content: Content{
			BatchFiles:        10,
			MaxMatchesPerFile: 50,
			MaxResults:        1000,
		},
		Enumerate: Enumerate{
			PageSize:   100,
			ChunkSize:  100,
			ChunkDelay: 10 * time.Millisecond,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Server: Server{
			Addr: "127.0.0.1:7878",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/rscan/config.yaml, falling back to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "rscan", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "rscan", "config.yaml"), nil
}

// Load reads path on top of the defaults, applies environment overrides and
// validates the result. A missing file is not an error. An empty path selects
// DefaultPath.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("cannot read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok, err := parseEnvInt(EnvMaxCandidates); err != nil {
		return err
	} else if ok {
		c.Walk.MaxCandidates = v
	}
	if v, ok, err := parseEnvInt(EnvWalkWorkers); err != nil {
		return err
	} else if ok {
		c.Walk.Workers = v
	}
	if raw := strings.TrimSpace(os.Getenv(EnvWalkParallel)); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWalkParallel, err)
		}
		c.Walk.Parallel = v
	}
	if raw := strings.TrimSpace(os.Getenv(EnvLogLevel)); raw != "" {
		c.Log.Level = raw
	}
	if raw := strings.TrimSpace(os.Getenv(EnvLogFormat)); raw != "" {
		c.Log.Format = raw
	}
	if raw := strings.TrimSpace(os.Getenv(EnvAddr)); raw != "" {
		c.Server.Addr = raw
	}
	return nil
}

func parseEnvInt(key string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return v, true, nil
}

// Validate clamps the walker pool to [1, 8] and rejects non-positive sizes.
func (c *Config) Validate() error {
	if c.Walk.Workers < 1 {
		c.Walk.Workers = 1
	}
	if c.Walk.Workers > maxWalkWorkers {
		c.Walk.Workers = maxWalkWorkers
	}

	checks := []struct {
		name  string
		value int64
	}{
		{"walk.max_candidates", int64(c.Walk.MaxCandidates)},
		{"walk.max_file_size", c.Walk.MaxFileSize},
		{"name.batch_size", int64(c.Name.BatchSize)},
		{"name.max_limit", int64(c.Name.MaxLimit)},
		{"content.batch_files", int64(c.Content.BatchFiles)},
		{"content.max_matches_per_file", int64(c.Content.MaxMatchesPerFile)},
		{"content.max_results", int64(c.Content.MaxResults)},
		{"enumerate.page_size", int64(c.Enumerate.PageSize)},
		{"enumerate.chunk_size", int64(c.Enumerate.ChunkSize)},
	}
	for _, check := range checks {
		if check.value <= 0 {
			return fmt.Errorf("config: %s must be positive, got %d", check.name, check.value)
		}
	}
	if c.Enumerate.ChunkDelay < 0 {
		return fmt.Errorf("config: enumerate.chunk_delay must not be negative, got %s", c.Enumerate.ChunkDelay)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// WalkWorkers returns the worker count the walker should use: 1 unless
// parallel walking is enabled.
func (c Config) WalkWorkers() int {
	if !c.Walk.Parallel {
		return 1
	}
	return c.Walk.Workers
}
