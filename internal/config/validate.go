package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. A missing OMDb API key is not
// an error: metadata lookups then always return placeholder details.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOMDb(); err != nil {
		return err
	}
	if err := c.validateRanking(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.Database) == "" {
		return errors.New("paths.database must be set")
	}
	if strings.TrimSpace(c.Server.Bind) == "" {
		return errors.New("server.bind must be set")
	}
	if c.Server.SessionIdleMinutes < 0 {
		return errors.New("server.session_idle_minutes must not be negative")
	}
	return nil
}

func (c *Config) validateOMDb() error {
	parsed, err := url.Parse(c.OMDb.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("omdb.base_url %q must be an absolute URL", c.OMDb.BaseURL)
	}
	if err := ensurePositiveMap(map[string]int{
		"omdb.timeout_seconds":          c.OMDb.TimeoutSeconds,
		"omdb.burst":                    c.OMDb.Burst,
		"omdb.breaker_failures":         c.OMDb.BreakerFailures,
		"omdb.breaker_cooldown_seconds": c.OMDb.BreakerCooldownSeconds,
	}); err != nil {
		return err
	}
	if c.OMDb.RequestsPerSecond <= 0 {
		return errors.New("omdb.requests_per_second must be positive")
	}
	return nil
}

func (c *Config) validateRanking() error {
	if err := ensurePositiveMap(map[string]int{
		"ranking.similar_limit": c.Ranking.SimilarLimit,
		"ranking.hybrid_limit":  c.Ranking.HybridLimit,
		"ranking.mood_limit":    c.Ranking.MoodLimit,
		"ranking.chart_limit":   c.Ranking.ChartLimit,
	}); err != nil {
		return err
	}
	switch c.Ranking.SelfExclusion {
	case "seed", "first_ranked":
	default:
		return fmt.Errorf("ranking.self_exclusion must be \"seed\" or \"first_ranked\", got %q", c.Ranking.SelfExclusion)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
