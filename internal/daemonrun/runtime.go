package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"cinemind/internal/api"
	"cinemind/internal/catalog"
	"cinemind/internal/config"
	"cinemind/internal/logging"
	"cinemind/internal/metadata"
	"cinemind/internal/ranking"
	"cinemind/internal/services/omdb"
	"cinemind/internal/session"
	"cinemind/internal/similarity"
	"cinemind/internal/store"
)

// Runtime holds the loaded dataset and the services built on it. The CLI
// bootstraps one per command; the daemon keeps one for its lifetime.
type Runtime struct {
	Store   *store.Store
	Engine  *ranking.Engine
	Gateway *metadata.Gateway
	Service *api.Service
}

// Bootstrap opens the store, loads the dataset, and wires the ranking engine,
// metadata gateway, and recommendation service.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	st, err := store.Open(ctx, cfg.Paths.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	cat, matrix, err := st.Load(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	engine, err := NewEngine(cfg, cat, matrix)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	var persister metadata.Persister
	if cfg.OMDb.PersistCache {
		persister = st
	}
	gateway := NewGateway(cfg, persister, logger)

	logging.NewComponentLogger(logger, "runtime").Debug("dataset loaded",
		logging.Int("movies", cat.Len()),
		logging.String("self_exclusion", string(engine.SelfExclusion())),
		logging.Bool("metadata_enabled", gateway.Enabled()))

	return &Runtime{
		Store:   st,
		Engine:  engine,
		Gateway: gateway,
		Service: api.NewService(engine, gateway, session.NewRegistry(session.WithIdleTimeout(cfg.SessionIdleTimeout())), logger),
	}, nil
}

// Close releases the store.
func (r *Runtime) Close() error {
	if r == nil || r.Store == nil {
		return nil
	}
	return r.Store.Close()
}

// NewEngine builds a ranking engine with the configured limits and self
// exclusion policy.
func NewEngine(cfg *config.Config, cat *catalog.Catalog, matrix *similarity.Matrix) (*ranking.Engine, error) {
	policy, err := ranking.ParseSelfExclusion(cfg.Ranking.SelfExclusion)
	if err != nil {
		return nil, err
	}
	return ranking.New(cat, matrix,
		ranking.WithSelfExclusion(policy),
		ranking.WithLimits(ranking.Limits{
			Similar: cfg.Ranking.SimilarLimit,
			Hybrid:  cfg.Ranking.HybridLimit,
			Mood:    cfg.Ranking.MoodLimit,
			Chart:   cfg.Ranking.ChartLimit,
		}))
}

// NewGateway builds the metadata gateway. Without an API key the gateway
// serves placeholders only.
func NewGateway(cfg *config.Config, persister metadata.Persister, logger *slog.Logger) *metadata.Gateway {
	opts := []metadata.Option{
		metadata.WithLogger(logger),
		metadata.WithTimeout(cfg.OMDbTimeout()),
		metadata.WithRateLimit(cfg.OMDb.RequestsPerSecond, cfg.OMDb.Burst),
		metadata.WithBreaker(cfg.OMDb.BreakerFailures, cfg.BreakerCooldown()),
		metadata.WithPlaceholderPoster(cfg.OMDb.PlaceholderPoster),
	}
	if persister != nil {
		opts = append(opts, metadata.WithPersister(persister))
	}

	if strings.TrimSpace(cfg.OMDb.APIKey) == "" {
		return metadata.New(nil, opts...)
	}
	client, err := omdb.New(cfg.OMDb.APIKey, cfg.OMDb.BaseURL,
		omdb.WithHTTPClient(&http.Client{Timeout: cfg.OMDbTimeout()}))
	if err != nil {
		logging.WarnWithContext(logger, "omdb client unavailable", "omdb_client_init_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check omdb.api_key and omdb.base_url"),
			logging.String(logging.FieldImpact, "posters and details show placeholders"))
		return metadata.New(nil, opts...)
	}
	return metadata.New(metadata.NewOMDbFetcher(client), opts...)
}
