package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeOMDb()
	c.normalizeRanking()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.Database, err = c.dataFile(c.Paths.Database, defaultDatabaseName); err != nil {
		return fmt.Errorf("paths.database: %w", err)
	}
	if c.Paths.MoviesFile, err = c.dataFile(c.Paths.MoviesFile, defaultMoviesFileName); err != nil {
		return fmt.Errorf("paths.movies_file: %w", err)
	}
	if c.Paths.SimilarityFile, err = c.dataFile(c.Paths.SimilarityFile, defaultSimilarityFileName); err != nil {
		return fmt.Errorf("paths.similarity_file: %w", err)
	}
	return nil
}

// dataFile resolves value against DataDir, falling back to name when empty.
func (c *Config) dataFile(value, name string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return filepath.Join(c.Paths.DataDir, name), nil
	}
	if !strings.HasPrefix(value, "~") && !filepath.IsAbs(value) {
		value = filepath.Join(c.Paths.DataDir, value)
	}
	return expandPath(value)
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
	if c.Server.APIToken == "" {
		if value, ok := os.LookupEnv("CINEMIND_API_TOKEN"); ok {
			c.Server.APIToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeOMDb() {
	c.OMDb.APIKey = strings.TrimSpace(c.OMDb.APIKey)
	if c.OMDb.APIKey == "" {
		if value, ok := os.LookupEnv("OMDB_API_KEY"); ok {
			c.OMDb.APIKey = strings.TrimSpace(value)
		}
	}
	c.OMDb.BaseURL = strings.TrimSpace(c.OMDb.BaseURL)
	if c.OMDb.BaseURL == "" {
		c.OMDb.BaseURL = defaultOMDbBaseURL
	}
	c.OMDb.PlaceholderPoster = strings.TrimSpace(c.OMDb.PlaceholderPoster)
	if c.OMDb.PlaceholderPoster == "" {
		c.OMDb.PlaceholderPoster = defaultPlaceholderPoster
	}
}

func (c *Config) normalizeRanking() {
	c.Ranking.SelfExclusion = strings.ToLower(strings.TrimSpace(c.Ranking.SelfExclusion))
	if c.Ranking.SelfExclusion == "" {
		c.Ranking.SelfExclusion = defaultSelfExclusion
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
