package session

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"cinemind/internal/catalog"
	"cinemind/internal/services"
)

// Page identifies the view a session is on.
type Page string

const (
	PageRecommend Page = "recommend"
	PageHybrid    Page = "hybrid"
	PageTrending  Page = "trending"
	PageTopRated  Page = "top-rated"
	PagePopular   Page = "popular"
	PageMood      Page = "mood"
	PageWatchlist Page = "watchlist"
)

// Pages lists every page in menu order.
func Pages() []Page {
	return []Page{PageRecommend, PageHybrid, PageTrending, PageTopRated, PagePopular, PageMood, PageWatchlist}
}

// ParsePage validates a page name, ignoring case and "_" vs "-".
func ParsePage(value string) (Page, error) {
	normalized := Page(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "_", "-"))
	if slices.Contains(Pages(), normalized) {
		return normalized, nil
	}
	return "", services.Wrap(services.ErrValidation, "session", "page", fmt.Sprintf("unknown page %q", value), nil)
}

// State is one session's slots. The zero value is ready to use and reports
// PageRecommend until a page is set.
type State struct {
	id        string
	createdAt time.Time

	mu           sync.Mutex
	page         Page
	recommended  []string
	selectedMood string
	moodMovies   []catalog.Movie
	lastSeen     time.Time
	now          func() time.Time

	watchlist Watchlist
}

// Snapshot is a copy of a session's slots for rendering.
type Snapshot struct {
	ID           string          `json:"id"`
	Page         Page            `json:"page"`
	Watchlist    []string        `json:"watchlist"`
	Recommended  []string        `json:"recommended"`
	SelectedMood string          `json:"selected_mood,omitempty"`
	MoodMovies   []catalog.Movie `json:"mood_movies"`
	CreatedAt    time.Time       `json:"created_at"`
	LastSeen     time.Time       `json:"last_seen"`
}

// ID returns the session identifier.
func (s *State) ID() string {
	return s.id
}

// Page returns the current page.
func (s *State) Page() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == "" {
		return PageRecommend
	}
	return s.page
}

// SetPage switches the current page.
func (s *State) SetPage(page Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
	s.touch()
}

// Watchlist returns the session's watchlist. Use AddToWatchlist to add
// titles so the session counts as active.
func (s *State) Watchlist() *Watchlist {
	return &s.watchlist
}

// AddToWatchlist adds title to the watchlist and marks the session active.
// It reports whether the watchlist changed.
func (s *State) AddToWatchlist(title string) bool {
	added := s.watchlist.Add(title)
	s.mu.Lock()
	s.touch()
	s.mu.Unlock()
	return added
}

// LastSeen returns when the session was last used.
func (s *State) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Recommended returns the last recommendation list.
func (s *State) Recommended() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.recommended)
}

// SetRecommended replaces the last recommendation list.
func (s *State) SetRecommended(titles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommended = slices.Clone(titles)
	s.touch()
}

// SelectedMood returns the selected mood label, or "" if none.
func (s *State) SelectedMood() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedMood
}

// MoodMovies returns the movies recorded for the selected mood.
func (s *State) MoodMovies() []catalog.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.moodMovies)
}

// SelectMood records a mood and its ranked movies together.
func (s *State) SelectMood(mood string, movies []catalog.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedMood = mood
	s.moodMovies = slices.Clone(movies)
	s.touch()
}

// Snapshot copies every slot.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	page := s.page
	if page == "" {
		page = PageRecommend
	}
	snap := Snapshot{
		ID:           s.id,
		Page:         page,
		Recommended:  slices.Clone(s.recommended),
		SelectedMood: s.selectedMood,
		MoodMovies:   slices.Clone(s.moodMovies),
		CreatedAt:    s.createdAt,
		LastSeen:     s.lastSeen,
	}
	s.mu.Unlock()
	snap.Watchlist = s.watchlist.Contents()
	if snap.Recommended == nil {
		snap.Recommended = []string{}
	}
	if snap.MoodMovies == nil {
		snap.MoodMovies = []catalog.Movie{}
	}
	return snap
}

// touch must be called with mu held.
func (s *State) touch() {
	if s.now != nil {
		s.lastSeen = s.now()
		return
	}
	s.lastSeen = time.Now().UTC()
}

func (s *State) touchAt(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.After(s.lastSeen) {
		s.lastSeen = t
	}
}
