package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"cinemind/internal/config"
)

func TestLoadDefaultConfigUsesEnvAndExpandsPaths(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "env-key")
	t.Setenv("CINEMIND_API_TOKEN", "env-token")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "cinemind")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.Database != filepath.Join(wantData, "cinemind.db") {
		t.Fatalf("unexpected database path: %q", cfg.Paths.Database)
	}
	if cfg.Paths.MoviesFile != filepath.Join(wantData, "movies.csv") {
		t.Fatalf("unexpected movies file: %q", cfg.Paths.MoviesFile)
	}
	if cfg.LockPath() != cfg.Paths.Database+".lock" {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
	if cfg.Server.Bind != "127.0.0.1:7488" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	if cfg.OMDb.APIKey != "env-key" {
		t.Fatalf("expected OMDb key from env, got %q", cfg.OMDb.APIKey)
	}
	if cfg.Server.APIToken != "env-token" {
		t.Fatalf("expected API token from env, got %q", cfg.Server.APIToken)
	}
	if cfg.OMDbTimeout() != 5*time.Second {
		t.Fatalf("unexpected OMDb timeout: %s", cfg.OMDbTimeout())
	}
	if cfg.Ranking.SimilarLimit != 5 || cfg.Ranking.HybridLimit != 10 || cfg.Ranking.MoodLimit != 10 {
		t.Fatalf("unexpected ranking limits: %+v", cfg.Ranking)
	}
	if cfg.Ranking.SelfExclusion != "seed" {
		t.Fatalf("unexpected self exclusion: %q", cfg.Ranking.SelfExclusion)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "cinemind.toml")
	t.Setenv("OMDB_API_KEY", "")

	type payload struct {
		Paths struct {
			DataDir  string `toml:"data_dir"`
			Database string `toml:"database"`
		} `toml:"paths"`
		OMDb struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
		} `toml:"omdb"`
		Ranking struct {
			HybridLimit   int    `toml:"hybrid_limit"`
			SelfExclusion string `toml:"self_exclusion"`
		} `toml:"ranking"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.DataDir = tempDir
	custom.Paths.Database = "custom.db"
	custom.OMDb.APIKey = "abc123"
	custom.OMDb.BaseURL = "https://example.com/omdb/"
	custom.Ranking.HybridLimit = 20
	custom.Ranking.SelfExclusion = " First_Ranked "
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.Database != filepath.Join(tempDir, "custom.db") {
		t.Fatalf("expected database relative to data dir, got %q", cfg.Paths.Database)
	}
	if cfg.OMDb.APIKey != "abc123" {
		t.Fatalf("expected OMDb key from file, got %q", cfg.OMDb.APIKey)
	}
	if cfg.OMDb.BaseURL != "https://example.com/omdb/" {
		t.Fatalf("expected base url override, got %q", cfg.OMDb.BaseURL)
	}
	if cfg.Ranking.HybridLimit != 20 {
		t.Fatalf("expected hybrid limit 20, got %d", cfg.Ranking.HybridLimit)
	}
	if cfg.Ranking.SimilarLimit != 5 {
		t.Fatalf("expected default similar limit, got %d", cfg.Ranking.SimilarLimit)
	}
	if cfg.Ranking.SelfExclusion != "first_ranked" {
		t.Fatalf("expected normalized self exclusion, got %q", cfg.Ranking.SelfExclusion)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "cinemind.toml")
	if err := os.WriteFile(configPath, []byte("[omdb]\napi_kee = \"typo\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestConfigFileKeyWinsOverEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "cinemind.toml")
	if err := os.WriteFile(configPath, []byte("[omdb]\napi_key = \"file-key\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OMDB_API_KEY", "env-key")
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.OMDb.APIKey != "file-key" {
		t.Fatalf("expected file key, got %q", cfg.OMDb.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_omdb_api_key_here") {
		t.Fatalf("sample config missing placeholder OMDb key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "cinemind") {
		t.Fatalf("expected data dir to contain cinemind, got %q", cfg.Paths.DataDir)
	}
	if cfg.OMDb.TimeoutSeconds != 5 {
		t.Fatalf("expected 5 second timeout in sample, got %d", cfg.OMDb.TimeoutSeconds)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"zero timeout":      func(c *config.Config) { c.OMDb.TimeoutSeconds = 0 },
		"zero rate":         func(c *config.Config) { c.OMDb.RequestsPerSecond = 0 },
		"zero burst":        func(c *config.Config) { c.OMDb.Burst = 0 },
		"relative base url": func(c *config.Config) { c.OMDb.BaseURL = "omdbapi.com" },
		"zero breaker":      func(c *config.Config) { c.OMDb.BreakerFailures = 0 },
		"negative limit":    func(c *config.Config) { c.Ranking.MoodLimit = -1 },
		"unknown exclusion": func(c *config.Config) { c.Ranking.SelfExclusion = "random" },
		"unknown log level": func(c *config.Config) { c.Logging.Level = "verbose" },
		"missing database":  func(c *config.Config) { c.Paths.Database = "" },
		"missing bind":      func(c *config.Config) { c.Server.Bind = "" },
		"negative idle":     func(c *config.Config) { c.Server.SessionIdleMinutes = -5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.Database = "/tmp/cinemind.db"
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	cfg.Paths.Database = "/tmp/cinemind.db"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
