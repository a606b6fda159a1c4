package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"cinemind/internal/api"
	"cinemind/internal/config"
	"cinemind/internal/preflight"
	"cinemind/internal/store"
)

// ErrDaemonNotRunning indicates no daemon holds the instance lock.
var ErrDaemonNotRunning = errors.New("daemon not running")

// StopResult captures daemon stop/termination outcome.
type StopResult struct {
	PID        int
	ForcedKill bool
}

// IsRunning reports whether another process holds the daemon lock.
func IsRunning(lockPath string) (bool, error) {
	if strings.TrimSpace(lockPath) == "" {
		return false, fmt.Errorf("lock path is empty")
	}
	if _, err := os.Stat(lockPath); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe daemon lock: %w", err)
	}
	if locked {
		_ = lock.Unlock()
		return false, nil
	}
	return true, nil
}

// ReadPID returns the process id recorded in pidPath.
func ReadPID(pidPath string) (int, error) {
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return 0, fmt.Errorf("read daemon pid file %q: %w", pidPath, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %q", pidPath)
	}
	return pid, nil
}

// Stop sends SIGTERM to the daemon and waits up to gracePeriod for it to
// release the instance lock before killing it.
func Stop(cfg *config.Config, gracePeriod time.Duration) (StopResult, error) {
	if cfg == nil {
		return StopResult{}, errors.New("configuration not available")
	}
	running, err := IsRunning(cfg.LockPath())
	if err != nil {
		return StopResult{}, err
	}
	if !running {
		return StopResult{}, ErrDaemonNotRunning
	}
	pid, err := ReadPID(cfg.PIDPath())
	if err != nil {
		return StopResult{}, err
	}
	if pid == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return StopResult{}, fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return StopResult{}, fmt.Errorf("signal daemon process %d: %w", pid, err)
	}

	result := StopResult{PID: pid}
	if WaitForShutdown(cfg.LockPath(), gracePeriod) == nil {
		return result, nil
	}
	if err := proc.Kill(); err != nil {
		return result, fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	if err := os.Remove(cfg.PIDPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return result, fmt.Errorf("remove pid file: %w", err)
	}
	result.ForcedKill = true
	return result, nil
}

// WaitForShutdown polls the instance lock until it is released.
func WaitForShutdown(lockPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		running, err := IsRunning(lockPath)
		if err == nil && !running {
			return nil
		}
		if time.Now().After(deadline) {
			if err == nil {
				err = errors.New("daemon still running")
			}
			return fmt.Errorf("daemon did not stop: %w", err)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// BuildStatusSnapshot asks a running daemon for its status and falls back to
// reading the database and running preflight checks directly when none is
// reachable.
func BuildStatusSnapshot(ctx context.Context, cfg *config.Config) (api.StatusResponse, error) {
	if cfg == nil {
		return api.StatusResponse{}, errors.New("configuration not available")
	}
	if running, _ := IsRunning(cfg.LockPath()); running {
		queryCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		status, err := NewClient(cfg.Server.Bind, cfg.Server.APIToken).Status(queryCtx)
		if err == nil {
			return *status, nil
		}
	}

	status := api.StatusResponse{
		DatabasePath:  cfg.Paths.Database,
		LockFilePath:  cfg.LockPath(),
		SelfExclusion: cfg.Ranking.SelfExclusion,
	}
	status.MetadataEnabled = strings.TrimSpace(cfg.OMDb.APIKey) != ""
	if _, err := os.Stat(cfg.Paths.Database); err == nil {
		queryCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if st, openErr := store.Open(queryCtx, cfg.Paths.Database); openErr == nil {
			if stats, statsErr := st.Stats(queryCtx); statsErr == nil {
				status.Movies = stats.Movies
				status.CachedDetails = stats.CachedDetails
			}
			_ = st.Close()
		}
	}
	status.Checks = preflight.RunAll(ctx, cfg)
	return status, nil
}
