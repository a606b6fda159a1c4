package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains data and log locations.
type Paths struct {
	DataDir        string `toml:"data_dir"`
	Database       string `toml:"database"`
	LogDir         string `toml:"log_dir"`
	MoviesFile     string `toml:"movies_file"`
	SimilarityFile string `toml:"similarity_file"`
}

// Server contains the HTTP API listener settings.
type Server struct {
	Bind     string `toml:"bind"`
	APIToken string `toml:"api_token"`
	// SessionIdleMinutes drops sessions untouched for this long; 0 keeps them.
	SessionIdleMinutes int `toml:"session_idle_minutes"`
}

// OMDb contains configuration for the metadata enrichment gateway.
type OMDb struct {
	APIKey                 string  `toml:"api_key"`
	BaseURL                string  `toml:"base_url"`
	TimeoutSeconds         int     `toml:"timeout_seconds"`
	PlaceholderPoster      string  `toml:"placeholder_poster"`
	RequestsPerSecond      float64 `toml:"requests_per_second"`
	Burst                  int     `toml:"burst"`
	BreakerFailures        int     `toml:"breaker_failures"`
	BreakerCooldownSeconds int     `toml:"breaker_cooldown_seconds"`
	PersistCache           bool    `toml:"persist_cache"`
}

// Ranking contains default result sizes and the self exclusion policy.
type Ranking struct {
	SimilarLimit  int    `toml:"similar_limit"`
	HybridLimit   int    `toml:"hybrid_limit"`
	MoodLimit     int    `toml:"mood_limit"`
	ChartLimit    int    `toml:"chart_limit"`
	SelfExclusion string `toml:"self_exclusion"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for CineMind.
//
// Configuration sections by subsystem:
//   - Paths: database, dataset import files, and log directory
//   - Server: HTTP API bind address and bearer token
//   - OMDb: metadata lookups, rate limiting, and circuit breaking
//   - Ranking: default result sizes per strategy
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Server  Server  `toml:"server"`
	OMDb    OMDb    `toml:"omdb"`
	Ranking Ranking `toml:"ranking"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cinemind.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, filepath.Dir(c.Paths.Database)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the daemon's single-instance lock file.
func (c *Config) LockPath() string {
	return c.Paths.Database + ".lock"
}

// LogPath returns the daemon log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "cinemind.log")
}

// PIDPath returns the file the running daemon records its process id in.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.DataDir, "cinemind.pid")
}

// SessionIdleTimeout returns how long an untouched session is kept.
func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.Server.SessionIdleMinutes) * time.Minute
}

// OMDbTimeout returns the per-lookup deadline.
func (c *Config) OMDbTimeout() time.Duration {
	return time.Duration(c.OMDb.TimeoutSeconds) * time.Second
}

// BreakerCooldown returns how long the metadata breaker stays open.
func (c *Config) BreakerCooldown() time.Duration {
	return time.Duration(c.OMDb.BreakerCooldownSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
