package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cinemind/internal/api"
	"cinemind/internal/logging"
	"cinemind/internal/metrics"
	"cinemind/internal/ranking"
	"cinemind/internal/services"
)

// requestIDHeader carries the per-request correlation ID in both directions.
const requestIDHeader = "X-Request-ID"

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	service *api.Service
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind, token string, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:    strings.TrimSpace(bind),
		logger:  logging.NewComponentLogger(logger, "api-server"),
		daemon:  d,
		service: d.service,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", srv.handleStatus)
	mux.HandleFunc("GET /api/movies", srv.handleMovies)
	mux.HandleFunc("GET /api/movies/{title}/details", srv.handleDetails)
	mux.HandleFunc("GET /api/moods", srv.handleMoods)
	mux.HandleFunc("GET /api/recommendations/{strategy}", srv.handleRecommendations)
	mux.HandleFunc("GET /api/charts/{kind}", srv.handleChart)
	mux.HandleFunc("POST /api/sessions", srv.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", srv.handleSession)
	mux.HandleFunc("POST /api/sessions/{id}/page", srv.handleSetPage)
	mux.HandleFunc("GET /api/sessions/{id}/watchlist", srv.handleWatchlist)
	mux.HandleFunc("POST /api/sessions/{id}/watchlist", srv.handleAddToWatchlist)

	root := http.NewServeMux()
	root.Handle("/api/", authMiddleware(token, mux))
	root.Handle("GET /metrics", promhttp.Handler())

	srv.handler = srv.withRequestID(srv.instrument(root))
	return srv
}

// ServeHTTP exposes the full middleware chain for tests and embedding.
func (s *apiServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api listen: server.bind is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()
	if server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (s *apiServer) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(route, rec.status)
		logging.WithContext(r.Context(), s.logger).Debug("api request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("route", route),
			logging.Int("status", rec.status),
			logging.Duration("elapsed", time.Since(start)))
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.daemon.Status(r.Context()))
}

func (s *apiServer) handleMovies(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.service.Movies(r.URL.Query().Get("q"), limit))
}

func (s *apiServer) handleDetails(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.Details(r.Context(), r.PathValue("title"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *apiServer) handleMoods(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.service.Moods())
}

func (s *apiServer) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	strategy, err := ranking.ParseStrategy(r.PathValue("strategy"))
	if err != nil {
		s.writeServiceError(w, r, services.Wrap(services.ErrNotFound, "api", "recommend", err.Error(), nil))
		return
	}
	k, err := intParam(r, "k")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	query := r.URL.Query()
	subject := query.Get("title")
	if strategy == ranking.StrategyMood {
		subject = query.Get("mood")
	}
	resp, err := s.service.Recommend(r.Context(), strategy, subject, api.RecommendOptions{
		Limit:     k,
		SessionID: strings.TrimSpace(query.Get("session")),
		Enrich:    boolParam(r, "details"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *apiServer) handleChart(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "n")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp, err := s.service.Chart(r.Context(), r.PathValue("kind"), n, boolParam(r, "details"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *apiServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusCreated, s.service.CreateSession())
}

func (s *apiServer) handleSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.Session(r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *apiServer) handleSetPage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Page string `json:"page"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp, err := s.service.SetPage(r.PathValue("id"), body.Page)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *apiServer) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.Watchlist(r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *apiServer) handleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var body api.WatchlistRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	id := r.PathValue("id")
	resp, err := s.service.AddToWatchlist(services.WithSessionID(r.Context(), id), id, body.Title)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if resp.Added != nil && *resp.Added {
		status = http.StatusCreated
	}
	s.writeJSON(w, r, status, resp)
}

func intParam(r *http.Request, name string) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "api", "params", fmt.Sprintf("%s must be an integer", name), nil)
	}
	return n, nil
}

func boolParam(r *http.Request, name string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(name)))
	return err == nil && value
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return services.Wrap(services.ErrValidation, "api", "decode body", "invalid JSON body", err)
	}
	return nil
}

func statusFor(err error) int {
	switch services.Kind(err) {
	case "not_found":
		return http.StatusNotFound
	case "validation":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "api request failed", "api_request_failed",
			logging.String("path", r.URL.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check daemon logs for the failing component"))
	}
	s.writeJSON(w, r, status, api.ErrorResponse{Error: err.Error(), Kind: services.Kind(err)})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.WithContext(r.Context(), s.logger).Error("failed to encode response", logging.Error(err))
	}
}
