package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"cinemind/internal/config"
	"cinemind/internal/services"
	"cinemind/internal/services/omdb"
	"cinemind/internal/store"
)

// probeTitle is looked up to confirm the OMDb key works.
const probeTitle = "Casablanca"

// CheckOMDb verifies that OMDb is reachable and the key is accepted.
// It uses a single attempt bounded by timeout.
func CheckOMDb(ctx context.Context, baseURL, apiKey string, timeout time.Duration) Result {
	const name = "OMDb"

	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled (no api key, placeholders only)"}
	}
	client, err := omdb.New(apiKey, baseURL, omdb.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err = client.FetchByTitle(checkCtx, probeTitle)
	var statusErr *omdb.StatusError
	switch {
	case err == nil, errors.Is(err, services.ErrNotFound):
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden):
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	case errors.As(err, &statusErr):
		return Result{Name: name, Detail: fmt.Sprintf("lookup failed (%d)", statusErr.StatusCode)}
	default:
		return Result{Name: name, Detail: summarizeNetworkError(err)}
	}
}

// CheckOMDbFromConfig evaluates OMDb status from config and connectivity.
func CheckOMDbFromConfig(ctx context.Context, cfg *config.Config) Result {
	if cfg == nil {
		return Result{Name: "OMDb", Detail: "Unknown"}
	}
	return CheckOMDb(ctx, cfg.OMDb.BaseURL, cfg.OMDb.APIKey, cfg.OMDbTimeout())
}

// CheckDatabase verifies that the database opens and holds a dataset.
func CheckDatabase(ctx context.Context, path string) Result {
	const name = "Database"

	st, err := store.Open(ctx, path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer st.Close()

	stats, err := st.Stats(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if stats.Movies == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (no dataset, run 'cinemind import')", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d movies, %d cached details)", path, stats.Movies, stats.CachedDetails)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFileReadable verifies that an import source file exists and is readable.
func CheckFileReadable(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

// summarizeNetworkError produces a human-readable summary for connectivity failures.
func summarizeNetworkError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "lookup timed out (OMDb unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "lookup timed out (OMDb unreachable)"
	}
	return err.Error()
}
