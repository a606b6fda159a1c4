package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"cinemind/internal/catalog"
	"cinemind/internal/logging"
	"cinemind/internal/metadata"
	"cinemind/internal/metrics"
	"cinemind/internal/ranking"
	"cinemind/internal/services"
	"cinemind/internal/session"
)

// enrichConcurrency bounds parallel gateway lookups per response.
const enrichConcurrency = 4

// Enricher abstracts the metadata gateway.
type Enricher interface {
	Lookup(ctx context.Context, title string) metadata.Details
}

// Service exposes ranking, enrichment, and session operations returning API DTOs.
type Service struct {
	engine   *ranking.Engine
	enricher Enricher
	sessions *session.Registry
	logger   *slog.Logger
}

// NewService constructs a Service. A nil enricher serves placeholder details.
func NewService(engine *ranking.Engine, enricher Enricher, sessions *session.Registry, logger *slog.Logger) *Service {
	if sessions == nil {
		sessions = session.NewRegistry()
	}
	return &Service{
		engine:   engine,
		enricher: enricher,
		sessions: sessions,
		logger:   logging.NewComponentLogger(logger, "api"),
	}
}

// Engine returns the ranking engine.
func (s *Service) Engine() *ranking.Engine {
	return s.engine
}

// Sessions returns the session registry.
func (s *Service) Sessions() *session.Registry {
	return s.sessions
}

// RecommendOptions tunes a recommendation call.
type RecommendOptions struct {
	// Limit is the result count; <= 0 selects the strategy default.
	Limit int
	// SessionID, when set, records the results in that session (created on
	// first use).
	SessionID string
	// Enrich attaches metadata details to every result.
	Enrich bool
}

// Recommend runs strategy for subject (a seed title, or a mood for
// StrategyMood).
func (s *Service) Recommend(ctx context.Context, strategy ranking.Strategy, subject string, opts RecommendOptions) (RecommendationResponse, error) {
	ctx = services.WithStrategy(ctx, string(strategy))
	if opts.SessionID != "" {
		ctx = services.WithSessionID(ctx, opts.SessionID)
	}
	logger := logging.WithContext(ctx, s.logger)
	start := time.Now()

	resp, moodMovies, err := s.rank(strategy, subject, opts.Limit)
	metrics.RecordRecommendation(string(strategy), outcomeFor(err), time.Since(start))
	if err != nil {
		logger.Info("recommendation rejected",
			logging.String("subject", subject),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err))
		return RecommendationResponse{}, err
	}

	if opts.SessionID != "" {
		state := s.sessions.Open(opts.SessionID)
		s.record(state, strategy, resp, moodMovies)
		resp.SessionID = state.ID()
	}
	if opts.Enrich {
		s.enrich(ctx, resp.Results)
	}

	logger.Info("recommendations ranked",
		logging.String("subject", subject),
		logging.Int("results", len(resp.Results)),
		logging.Duration("elapsed", time.Since(start)))
	return resp, nil
}

func (s *Service) rank(strategy ranking.Strategy, subject string, limit int) (RecommendationResponse, []catalog.Movie, error) {
	resp := RecommendationResponse{Strategy: string(strategy)}
	switch strategy {
	case ranking.StrategySimilar, ranking.StrategyHybrid:
		seed := strings.TrimSpace(subject)
		if seed == "" {
			return resp, nil, services.Wrap(services.ErrValidation, "api", "recommend", "title is required", nil)
		}
		var (
			results []ranking.Result
			err     error
		)
		if strategy == ranking.StrategySimilar {
			results, err = s.engine.PureSimilarity(seed, limit)
		} else {
			results, err = s.engine.Hybrid(seed, limit)
		}
		if err != nil {
			return resp, nil, err
		}
		resp.Seed = seed
		resp.Results = FromResults(s.engine.Catalog(), results)
	case ranking.StrategyMood:
		mood, err := ranking.ParseMood(subject)
		if err != nil {
			return resp, nil, err
		}
		movies, err := s.engine.Mood(mood, limit)
		if err != nil {
			return resp, nil, err
		}
		resp.Mood = string(mood)
		resp.Results = FromMovies(movies)
		return resp, movies, nil
	default:
		return resp, nil, services.Wrap(services.ErrValidation, "api", "recommend", fmt.Sprintf("unknown strategy %q", strategy), nil)
	}
	return resp, nil, nil
}

func (s *Service) record(state *session.State, strategy ranking.Strategy, resp RecommendationResponse, moodMovies []catalog.Movie) {
	switch strategy {
	case ranking.StrategySimilar:
		state.SetPage(session.PageRecommend)
		state.SetRecommended(TitlesOf(resp.Results))
	case ranking.StrategyHybrid:
		state.SetPage(session.PageHybrid)
		state.SetRecommended(TitlesOf(resp.Results))
	case ranking.StrategyMood:
		state.SetPage(session.PageMood)
		state.SelectMood(resp.Mood, moodMovies)
	}
}

// Chart returns a catalog-wide chart.
func (s *Service) Chart(ctx context.Context, kind string, n int, enrich bool) (ChartResponse, error) {
	chart, err := ranking.ParseChartKind(kind)
	if err != nil {
		return ChartResponse{}, err
	}
	movies, err := s.engine.Chart(chart, n)
	if err != nil {
		return ChartResponse{}, err
	}
	resp := ChartResponse{Kind: string(chart), Results: FromMovies(movies)}
	if enrich {
		s.enrich(ctx, resp.Results)
	}
	return resp, nil
}

// Movies searches catalog titles. An empty query lists the catalog in load order.
func (s *Service) Movies(query string, limit int) MoviesResponse {
	cat := s.engine.Catalog()
	movies := cat.Search(query, limit)
	out := make([]Movie, len(movies))
	for i, m := range movies {
		out[i] = FromMovie(m)
	}
	return MoviesResponse{Query: strings.TrimSpace(query), Total: cat.Len(), Movies: out}
}

// Moods lists every mood.
func (s *Service) Moods() MoodsResponse {
	return MoodsResponse{Moods: FromMoods(ranking.Moods())}
}

// Details returns enrichment details for a catalog title.
func (s *Service) Details(ctx context.Context, title string) (DetailsResponse, error) {
	idx, err := s.engine.Catalog().LookupIndexByTitle(title)
	if err != nil {
		return DetailsResponse{}, err
	}
	canonical := s.engine.Catalog().Title(idx)
	return DetailsResponse{Title: canonical, Details: s.lookup(ctx, canonical)}, nil
}

// CreateSession starts a new session.
func (s *Service) CreateSession() SessionResponse {
	state := s.sessions.Create()
	s.logger.Debug("session created", logging.String(logging.FieldSessionID, state.ID()))
	return SessionResponse{Session: state.Snapshot()}
}

// Session returns a snapshot of an existing session.
func (s *Service) Session(id string) (SessionResponse, error) {
	state, err := s.sessions.Get(id)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{Session: state.Snapshot()}, nil
}

// SetPage moves an existing session to page.
func (s *Service) SetPage(id, page string) (SessionResponse, error) {
	state, err := s.sessions.Get(id)
	if err != nil {
		return SessionResponse{}, err
	}
	parsed, err := session.ParsePage(page)
	if err != nil {
		return SessionResponse{}, err
	}
	state.SetPage(parsed)
	return SessionResponse{Session: state.Snapshot()}, nil
}

// Watchlist returns an existing session's watchlist.
func (s *Service) Watchlist(id string) (WatchlistResponse, error) {
	state, err := s.sessions.Get(id)
	if err != nil {
		return WatchlistResponse{}, err
	}
	return FromWatchlist(state), nil
}

// AddToWatchlist adds a catalog title to an existing session's watchlist.
// Adding a title already present is not an error; Added reports false.
func (s *Service) AddToWatchlist(ctx context.Context, id, title string) (WatchlistResponse, error) {
	state, err := s.sessions.Get(id)
	if err != nil {
		return WatchlistResponse{}, err
	}
	if strings.TrimSpace(title) == "" {
		return WatchlistResponse{}, services.Wrap(services.ErrValidation, "api", "watchlist", "title is required", nil)
	}
	idx, err := s.engine.Catalog().LookupIndexByTitle(title)
	if err != nil {
		return WatchlistResponse{}, err
	}
	added := state.AddToWatchlist(s.engine.Catalog().Title(idx))
	logging.WithContext(services.WithSessionID(ctx, state.ID()), s.logger).Debug("watchlist updated",
		logging.Title(title),
		logging.Bool("added", added))
	resp := FromWatchlist(state)
	resp.Added = &added
	return resp, nil
}

func (s *Service) enrich(ctx context.Context, movies []Movie) {
	var g errgroup.Group
	g.SetLimit(enrichConcurrency)
	for i := range movies {
		g.Go(func() error {
			details := s.lookup(ctx, movies[i].Title)
			movies[i].Details = &details
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) lookup(ctx context.Context, title string) metadata.Details {
	if s.enricher == nil {
		return metadata.Fallback()
	}
	return s.enricher.Lookup(ctx, title)
}

func outcomeFor(err error) string {
	switch services.Kind(err) {
	case "ok":
		return metrics.OutcomeOK
	case "not_found":
		return metrics.OutcomeNotFound
	case "validation":
		return metrics.OutcomeValidation
	default:
		return metrics.OutcomeError
	}
}
