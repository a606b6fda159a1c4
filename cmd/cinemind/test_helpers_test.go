package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cinemind/internal/config"
	"cinemind/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

// setupCLITestEnv writes a config file pointing at temp directories. Sample
// dataset files are written to the configured import paths but not imported.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("OMDB_API_KEY", "")
	t.Setenv("CINEMIND_API_TOKEN", "")
	t.Setenv("NO_COLOR", "1")

	configPath := filepath.Join(homeDir, ".config", "cinemind", "config.toml")
	writeTestConfig(t, configPath, cfg)
	testsupport.WriteSampleFiles(t, cfg.Paths.MoviesFile, cfg.Paths.SimilarityFile)

	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\ndatabase = %q\nmovies_file = %q\nsimilarity_file = %q\n\n[server]\nbind = %q\n\n[omdb]\napi_key = \"\"\npersist_cache = false\n",
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.Database,
		cfg.Paths.MoviesFile,
		cfg.Paths.SimilarityFile,
		cfg.Server.Bind,
	)
	testsupport.WriteFile(t, path, content)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustImport(t *testing.T, env *cliTestEnv) {
	t.Helper()
	if _, _, err := runCLI(t, []string{"import"}, env.configPath); err != nil {
		t.Fatalf("import: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
