package api

import (
	"time"

	"cinemind/internal/metadata"
	"cinemind/internal/preflight"
	"cinemind/internal/session"
)

// Movie is a catalog row, optionally ranked and enriched.
type Movie struct {
	Rank        int               `json:"rank,omitempty"`
	Index       int               `json:"index"`
	Title       string            `json:"title"`
	Genres      []string          `json:"genres"`
	Popularity  float64           `json:"popularity"`
	VoteAverage float64           `json:"vote_average"`
	VoteCount   int64             `json:"vote_count"`
	Score       *float64          `json:"score,omitempty"`
	Details     *metadata.Details `json:"details,omitempty"`
}

// RecommendationResponse wraps one strategy's ranked results.
type RecommendationResponse struct {
	Strategy  string  `json:"strategy"`
	Seed      string  `json:"seed,omitempty"`
	Mood      string  `json:"mood,omitempty"`
	SessionID string  `json:"session_id,omitempty"`
	Results   []Movie `json:"results"`
}

// ChartResponse wraps a catalog-wide chart.
type ChartResponse struct {
	Kind    string  `json:"kind"`
	Results []Movie `json:"results"`
}

// MoviesResponse wraps a title search.
type MoviesResponse struct {
	Query  string  `json:"query,omitempty"`
	Total  int     `json:"total"`
	Movies []Movie `json:"movies"`
}

// Mood describes one mood and the genres it selects.
type Mood struct {
	Label  string   `json:"label"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// MoodsResponse lists every mood in display order.
type MoodsResponse struct {
	Moods []Mood `json:"moods"`
}

// DetailsResponse wraps enrichment details for one title.
type DetailsResponse struct {
	Title   string           `json:"title"`
	Details metadata.Details `json:"details"`
}

// SessionResponse wraps a session snapshot.
type SessionResponse struct {
	Session session.Snapshot `json:"session"`
}

// WatchlistResponse lists a session's watchlist.
type WatchlistResponse struct {
	SessionID string   `json:"session_id"`
	Titles    []string `json:"titles"`
	Added     *bool    `json:"added,omitempty"`
}

// WatchlistRequest is the body of a watchlist add.
type WatchlistRequest struct {
	Title string `json:"title"`
}

// StatusResponse aggregates daemon runtime information for API consumers.
type StatusResponse struct {
	Running         bool               `json:"running"`
	PID             int                `json:"pid"`
	StartedAt       time.Time          `json:"started_at"`
	DatabasePath    string             `json:"database_path"`
	LockFilePath    string             `json:"lock_file_path"`
	Movies          int                `json:"movies"`
	SelfExclusion   string             `json:"self_exclusion"`
	Sessions        int                `json:"sessions"`
	MetadataEnabled bool               `json:"metadata_enabled"`
	BreakerState    string             `json:"breaker_state"`
	CachedDetails   int                `json:"cached_details"`
	Checks          []preflight.Result `json:"checks,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
