package daemonctl_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"cinemind/internal/api"
	"cinemind/internal/daemonctl"
	"cinemind/internal/testsupport"
)

func TestIsRunningTracksLockHolder(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "cinemind.db.lock")

	running, err := daemonctl.IsRunning(lockPath)
	if err != nil || running {
		t.Fatalf("missing lock file: running=%v err=%v", running, err)
	}

	holder := flock.New(lockPath)
	locked, err := holder.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock: locked=%v err=%v", locked, err)
	}
	if running, err := daemonctl.IsRunning(lockPath); err != nil || !running {
		t.Fatalf("held lock: running=%v err=%v", running, err)
	}

	if err := holder.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := daemonctl.WaitForShutdown(lockPath, time.Second); err != nil {
		t.Fatalf("WaitForShutdown: %v", err)
	}
}

func TestReadPID(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pid")
	testsupport.WriteFile(t, good, "4242\n")
	if pid, err := daemonctl.ReadPID(good); err != nil || pid != 4242 {
		t.Fatalf("ReadPID = %d, %v", pid, err)
	}

	bad := filepath.Join(dir, "bad.pid")
	testsupport.WriteFile(t, bad, "nope")
	if _, err := daemonctl.ReadPID(bad); err == nil {
		t.Fatal("expected error for malformed pid file")
	}
	if _, err := daemonctl.ReadPID(filepath.Join(dir, "missing.pid")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestStopWithoutDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := daemonctl.Stop(cfg, time.Second); !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestClientStatusSendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "unauthorized"})
			return
		}
		_ = json.NewEncoder(w).Encode(api.StatusResponse{Running: true, PID: 99, Movies: 6})
	}))
	defer srv.Close()

	status, err := daemonctl.NewClient(srv.URL, "secret").Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || status.PID != 99 || status.Movies != 6 {
		t.Fatalf("unexpected status %+v", status)
	}

	_, err = daemonctl.NewClient(srv.URL, "wrong").Status(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestClientDialsLoopbackForWildcardBind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(api.StatusResponse{Running: true})
	}))
	defer srv.Close()

	port := srv.URL[strings.LastIndex(srv.URL, ":")+1:]
	status, err := daemonctl.NewClient("0.0.0.0:"+port, "").Status(context.Background())
	if err != nil || !status.Running {
		t.Fatalf("Status via wildcard bind = %+v, %v", status, err)
	}
}

func TestBuildStatusSnapshotOffline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.MustSeedStore(t, st)

	status, err := daemonctl.BuildStatusSnapshot(context.Background(), cfg)
	if err != nil {
		t.Fatalf("BuildStatusSnapshot: %v", err)
	}
	if status.Running {
		t.Fatal("expected offline snapshot")
	}
	if status.Movies != len(testsupport.SampleMovies()) {
		t.Fatalf("movies = %d", status.Movies)
	}
	if len(status.Checks) == 0 {
		t.Fatal("expected preflight checks in offline snapshot")
	}
}
