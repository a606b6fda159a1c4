package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"cinemind/internal/logging"
	"cinemind/internal/metrics"
)

// Defaults applied when the matching option is not supplied.
const (
	DefaultTimeout         = 5 * time.Second
	DefaultBreakerFailures = 5
	DefaultBreakerCooldown = 30 * time.Second
)

// Gateway enriches titles with Details. It is safe for concurrent use.
type Gateway struct {
	fetcher  Fetcher
	persist  Persister
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[Details]
	group    singleflight.Group
	timeout  time.Duration
	poster   string
	logger   *slog.Logger
	disabled bool

	breakerFailures uint32
	breakerCooldown time.Duration

	mu    sync.RWMutex
	cache map[string]Details
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithPersister adds a durable cache consulted after the in-memory one.
func WithPersister(p Persister) Option {
	return func(g *Gateway) { g.persist = p }
}

// WithRateLimit bounds remote calls to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(g *Gateway) {
		if rps > 0 && burst > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithBreaker opens the circuit after failures consecutive failures and keeps
// it open for cooldown.
func WithBreaker(failures int, cooldown time.Duration) Option {
	return func(g *Gateway) {
		if failures > 0 {
			g.breakerFailures = uint32(failures)
		}
		if cooldown > 0 {
			g.breakerCooldown = cooldown
		}
	}
}

// WithTimeout overrides the per-lookup deadline.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithPlaceholderPoster overrides the fallback poster URL.
func WithPlaceholderPoster(url string) Option {
	return func(g *Gateway) {
		if url = strings.TrimSpace(url); url != "" {
			g.poster = url
		}
	}
}

// WithLogger sets the gateway logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// New builds a gateway over fetcher. A nil fetcher yields a gateway that
// always answers with placeholders.
func New(fetcher Fetcher, opts ...Option) *Gateway {
	g := &Gateway{
		fetcher:         fetcher,
		limiter:         rate.NewLimiter(rate.Inf, 1),
		timeout:         DefaultTimeout,
		poster:          PlaceholderPoster,
		breakerFailures: DefaultBreakerFailures,
		breakerCooldown: DefaultBreakerCooldown,
		cache:           make(map[string]Details),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.NewComponentLogger(g.logger, "metadata")
	if fetcher == nil {
		g.disabled = true
		logging.WarnWithContext(g.logger, "metadata lookups disabled", "metadata_disabled",
			logging.String(logging.FieldErrorHint, ReasonDisabled.hint()),
			logging.String(logging.FieldImpact, "posters and details show placeholders"))
	}

	failures := g.breakerFailures
	g.breaker = gobreaker.NewCircuitBreaker[Details](gobreaker.Settings{
		Name:        "omdb",
		MaxRequests: 1,
		Timeout:     g.breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return !countsAsFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			attrs := []logging.Attr{
				logging.String("breaker", name),
				logging.String("from", from.String()),
				logging.String("to", to.String()),
			}
			if to == gobreaker.StateOpen {
				logging.WarnWithContext(g.logger, "metadata circuit opened", "metadata_breaker_open",
					append(attrs,
						logging.Duration("cooldown", g.breakerCooldown),
						logging.String(logging.FieldErrorHint, ReasonBreakerOpen.hint()),
						logging.String(logging.FieldImpact, "lookups answer with placeholders until the cooldown ends"))...)
				return
			}
			g.logger.Info("metadata circuit state changed", logging.Args(attrs...)...)
		},
	})
	return g
}

// Lookup returns details for title. It never fails: any error is logged,
// counted, and answered with placeholder details. Only successes are cached.
func (g *Gateway) Lookup(ctx context.Context, title string) Details {
	key := strings.TrimSpace(title)
	if key == "" {
		return g.fallback(ctx, title, ReasonInvalidTitle, fmt.Errorf("empty title"))
	}

	if details, ok := g.cached(key); ok {
		metrics.RecordMetadataLookup(metrics.SourceMemory)
		return details
	}
	if details, ok := g.persisted(ctx, key); ok {
		g.remember(key, details)
		metrics.RecordMetadataLookup(metrics.SourcePersist)
		return details
	}
	if g.disabled {
		g.logger.Debug("metadata lookup skipped", logging.Title(key), logging.String("reason", string(ReasonDisabled)))
		metrics.RecordMetadataLookup(metrics.SourceFallback)
		metrics.RecordMetadataFallback(string(ReasonDisabled))
		return FallbackWithPoster(g.poster)
	}

	ch := g.group.DoChan(key, func() (any, error) {
		return g.fetch(ctx, key)
	})
	select {
	case <-ctx.Done():
		return g.fallback(ctx, key, Classify(ctx.Err()), ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return g.fallback(ctx, key, Classify(res.Err), res.Err)
		}
		metrics.RecordMetadataLookup(metrics.SourceRemote)
		return res.Val.(Details)
	}
}

// fetch runs one remote lookup detached from the first caller's cancellation
// so collapsed callers are not failed by it.
func (g *Gateway) fetch(parent context.Context, title string) (Details, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), g.timeout)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		return Details{}, fmt.Errorf("%w: %w", errRateLimited, err)
	}

	start := time.Now()
	details, err := g.breaker.Execute(func() (Details, error) {
		return g.fetcher.Fetch(ctx, title)
	})
	if err != nil {
		return Details{}, err
	}
	details = details.Complete(g.poster)
	g.remember(title, details)
	if g.persist != nil {
		if err := g.persist.StoreDetails(ctx, title, details); err != nil {
			logging.WarnWithContext(logging.WithContext(parent, g.logger), "metadata cache write failed", "metadata_persist_failed",
				logging.Title(title),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check database permissions and free space"),
				logging.String(logging.FieldImpact, "details will be fetched again after restart"))
		}
	}
	g.logger.Debug("metadata fetched", logging.Title(title), logging.Duration("elapsed", time.Since(start)))
	return details, nil
}

func (g *Gateway) fallback(ctx context.Context, title string, reason Reason, err error) Details {
	metrics.RecordMetadataLookup(metrics.SourceFallback)
	metrics.RecordMetadataFallback(string(reason))
	logging.WarnWithContext(logging.WithContext(ctx, g.logger), "metadata lookup failed; using placeholder details", "metadata_fallback",
		logging.Title(title),
		logging.String("reason", string(reason)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, reason.hint()),
		logging.String(logging.FieldImpact, "poster and details show placeholders"))
	return FallbackWithPoster(g.poster)
}

func (g *Gateway) cached(title string) (Details, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	details, ok := g.cache[title]
	return details, ok
}

func (g *Gateway) remember(title string, details Details) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache[title] = details
}

func (g *Gateway) persisted(ctx context.Context, title string) (Details, bool) {
	if g.persist == nil {
		return Details{}, false
	}
	readCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	details, ok, err := g.persist.CachedDetails(readCtx, title)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, g.logger), "metadata cache read failed", "metadata_persist_read_failed",
			logging.Title(title),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the database file"),
			logging.String(logging.FieldImpact, "lookup falls through to OMDb"))
		return Details{}, false
	}
	if !ok {
		return Details{}, false
	}
	return details.Complete(g.poster), true
}

// CacheSize returns the number of titles held in memory.
func (g *Gateway) CacheSize() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cache)
}

// Enabled reports whether remote lookups are configured.
func (g *Gateway) Enabled() bool {
	return !g.disabled
}

// BreakerState reports the circuit breaker state ("closed", "open", "half-open").
func (g *Gateway) BreakerState() string {
	return g.breaker.State().String()
}
