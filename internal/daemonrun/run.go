package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"cinemind/internal/config"
	"cinemind/internal/daemon"
	"cinemind/internal/logging"
	"cinemind/internal/preflight"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the cinemind daemon and blocks until SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	logPath := cfg.LogPath()
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logConfigSnapshot(logger, cfg)
	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	rt, err := Bootstrap(signalCtx, cfg, logger)
	if err != nil {
		logger.Error("load dataset", logging.Error(err),
			logging.String(logging.FieldEventType, "dataset_load_failed"),
			logging.String(logging.FieldErrorHint, "run 'cinemind import' to load movies and similarity files"))
		return err
	}

	d, err := daemon.New(cfg, rt.Store, rt.Service, rt.Gateway, logger)
	if err != nil {
		_ = rt.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	checks := preflight.RunAll(signalCtx, cfg)
	d.SetChecks(checks)
	for _, failed := range preflight.Failed(checks) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", failed.Name),
			logging.String("detail", failed.Detail),
			logging.String(logging.FieldErrorHint, "run 'cinemind status' for details"),
			logging.String(logging.FieldImpact, "some features may be degraded"))
	}

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("cinemind daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("database", cfg.Paths.Database),
		logging.String("bind", cfg.Server.Bind),
		logging.Bool("api_token_set", strings.TrimSpace(cfg.Server.APIToken) != ""),
		logging.Bool("omdb_key_present", strings.TrimSpace(cfg.OMDb.APIKey) != ""),
		logging.Bool("persist_cache", cfg.OMDb.PersistCache),
		logging.String("self_exclusion", cfg.Ranking.SelfExclusion),
	)
}
