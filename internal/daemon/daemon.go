package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"cinemind/internal/api"
	"cinemind/internal/config"
	"cinemind/internal/logging"
	"cinemind/internal/metadata"
	"cinemind/internal/preflight"
	"cinemind/internal/store"
)

// Daemon serves the HTTP API and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	service *api.Service
	gateway *metadata.Gateway

	lockPath string
	lock     *flock.Flock
	server   *apiServer

	mu        sync.Mutex
	running   atomic.Bool
	startedAt time.Time
	checks    []preflight.Result
}

// New constructs a daemon with initialized dependencies. The store and
// gateway are optional; status reports omit what is missing.
func New(cfg *config.Config, st *store.Store, svc *api.Service, gateway *metadata.Gateway, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || svc == nil {
		return nil, errors.New("daemon requires config and recommendation service")
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		service:  svc,
		gateway:  gateway,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.server = newAPIServer(cfg.Server.Bind, cfg.Server.APIToken, d, logger)
	return d, nil
}

// Start acquires the daemon lock and starts the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another cinemind daemon instance is already running (lock %s)", d.lockPath)
	}

	if err := d.server.start(ctx); err != nil {
		_ = d.lock.Unlock()
		return err
	}

	d.mu.Lock()
	d.startedAt = time.Now().UTC()
	d.mu.Unlock()
	d.running.Store(true)
	d.logger.Info("cinemind daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.Addr()))
	return nil
}

// Stop shuts the API server down and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.server.stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no daemon is running"),
			logging.String(logging.FieldImpact, "next start may report another instance running"))
	}
	d.running.Store(false)
	d.logger.Info("cinemind daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the API listener address once started.
func (d *Daemon) Addr() string {
	return d.server.addr()
}

// SetChecks records the startup preflight results for status reports.
func (d *Daemon) SetChecks(results []preflight.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checks = results
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) api.StatusResponse {
	d.mu.Lock()
	startedAt := d.startedAt
	checks := d.checks
	d.mu.Unlock()

	engine := d.service.Engine()
	status := api.StatusResponse{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		StartedAt:     startedAt,
		DatabasePath:  d.cfg.Paths.Database,
		LockFilePath:  d.lockPath,
		Movies:        engine.Catalog().Len(),
		SelfExclusion: string(engine.SelfExclusion()),
		Sessions:      d.service.Sessions().Len(),
		Checks:        checks,
	}
	if d.gateway != nil {
		status.MetadataEnabled = d.gateway.Enabled()
		status.BreakerState = d.gateway.BreakerState()
		status.CachedDetails = d.gateway.CacheSize()
	}
	if d.store != nil {
		if stats, err := d.store.Stats(ctx); err == nil && stats.CachedDetails > status.CachedDetails {
			status.CachedDetails = stats.CachedDetails
		}
	}
	return status
}
