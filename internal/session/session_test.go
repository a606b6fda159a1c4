package session_test

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"cinemind/internal/catalog"
	"cinemind/internal/services"
	"cinemind/internal/session"
)

func TestWatchlistAddIsIdempotent(t *testing.T) {
	var w session.Watchlist
	if !w.Add("Heat") {
		t.Fatal("first add should report a change")
	}
	if !w.Add("Alien") {
		t.Fatal("second title should be added")
	}
	if w.Add("Heat") {
		t.Fatal("duplicate add should report no change")
	}
	if w.Add("   ") {
		t.Fatal("blank title should be ignored")
	}
	if got := w.Contents(); !slices.Equal(got, []string{"Heat", "Alien"}) {
		t.Fatalf("unexpected contents %v", got)
	}
	if w.Len() != 2 || !w.Contains("Alien") || w.Contains("Brazil") {
		t.Fatalf("unexpected membership: len=%d", w.Len())
	}
}

func TestWatchlistContentsIsCopy(t *testing.T) {
	var w session.Watchlist
	w.Add("Heat")
	contents := w.Contents()
	contents[0] = "mutated"
	if got := w.Contents(); got[0] != "Heat" {
		t.Fatalf("watchlist mutated through Contents: %v", got)
	}
}

func TestWatchlistConcurrentAdds(t *testing.T) {
	var w session.Watchlist
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Add("Heat")
		}()
	}
	wg.Wait()
	if w.Len() != 1 {
		t.Fatalf("expected single entry, got %d", w.Len())
	}
}

func TestStateDefaults(t *testing.T) {
	var s session.State
	if s.Page() != session.PageRecommend {
		t.Fatalf("expected default page recommend, got %q", s.Page())
	}
	snap := s.Snapshot()
	if snap.Recommended == nil || snap.MoodMovies == nil {
		t.Fatal("snapshot slots should be empty, not nil")
	}
	if snap.SelectedMood != "" || len(snap.Watchlist) != 0 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestStateSlots(t *testing.T) {
	registry := session.NewRegistry()
	s := registry.Create()
	s.SetPage(session.PageMood)
	s.SetRecommended([]string{"A", "B"})
	s.SelectMood("Happy 😊", []catalog.Movie{{Title: "Up"}})
	s.Watchlist().Add("Up")

	snap := s.Snapshot()
	if snap.ID != s.ID() || snap.Page != session.PageMood {
		t.Fatalf("unexpected snapshot header %+v", snap)
	}
	if !slices.Equal(snap.Recommended, []string{"A", "B"}) {
		t.Fatalf("unexpected recommended %v", snap.Recommended)
	}
	if snap.SelectedMood != "Happy 😊" || len(snap.MoodMovies) != 1 {
		t.Fatalf("unexpected mood slots %+v", snap)
	}
	if !slices.Equal(snap.Watchlist, []string{"Up"}) {
		t.Fatalf("unexpected watchlist %v", snap.Watchlist)
	}
	if snap.LastSeen.Before(snap.CreatedAt) {
		t.Fatal("last seen should not precede creation")
	}
}

func TestRegistry(t *testing.T) {
	registry := session.NewRegistry()
	a := registry.Create()
	b := registry.Create()
	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID(), b.ID())
	}
	got, err := registry.Get(a.ID())
	if err != nil || got != a {
		t.Fatalf("Get returned %v, %v", got, err)
	}
	if _, err := registry.Get("missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	opened := registry.Open("custom")
	if registry.Open("custom") != opened {
		t.Fatal("Open should return the existing session")
	}
	if registry.Len() != 3 {
		t.Fatalf("expected 3 sessions, got %d", registry.Len())
	}
	a.AddToWatchlist("Heat")
	if b.Watchlist().Len() != 0 {
		t.Fatal("sessions must not share watchlists")
	}
}

func TestParsePage(t *testing.T) {
	page, err := session.ParsePage("Top_Rated")
	if err != nil || page != session.PageTopRated {
		t.Fatalf("ParsePage = %q, %v", page, err)
	}
	if _, err := session.ParsePage("settings"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestRegistryExpiresIdleSessions(t *testing.T) {
	clock := newFakeClock()
	registry := session.NewRegistry(session.WithIdleTimeout(10*time.Minute), session.WithClock(clock.Now))
	s := registry.Create()

	clock.Advance(5 * time.Minute)
	if _, err := registry.Get(s.ID()); err != nil {
		t.Fatalf("Get within idle timeout: %v", err)
	}
	clock.Advance(9 * time.Minute)
	if _, err := registry.Get(s.ID()); err != nil {
		t.Fatalf("Get should refresh activity, got %v", err)
	}
	clock.Advance(11 * time.Minute)
	if _, err := registry.Get(s.ID()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
	if registry.Len() != 0 {
		t.Fatalf("expected expired session removed, len=%d", registry.Len())
	}
	if reopened := registry.Open(s.ID()); reopened == s || reopened.Watchlist().Len() != 0 {
		t.Fatal("Open after expiry should start a fresh session")
	}
}

func TestRegistrySweepsOnCreate(t *testing.T) {
	clock := newFakeClock()
	registry := session.NewRegistry(session.WithIdleTimeout(10*time.Minute), session.WithClock(clock.Now))
	for i := range 1000 {
		registry.Open(fmt.Sprintf("client-%d", i))
	}
	if registry.Len() != 1000 {
		t.Fatalf("expected 1000 sessions, got %d", registry.Len())
	}

	clock.Advance(11 * time.Minute)
	registry.Create()
	if registry.Len() != 1 {
		t.Fatalf("expected idle sessions swept on create, len=%d", registry.Len())
	}
}

func TestRegistryWatchlistAddKeepsSessionAlive(t *testing.T) {
	clock := newFakeClock()
	registry := session.NewRegistry(session.WithIdleTimeout(10*time.Minute), session.WithClock(clock.Now))
	s := registry.Create()

	clock.Advance(8 * time.Minute)
	if !s.AddToWatchlist("Heat") {
		t.Fatal("expected title to be added")
	}
	if got := s.LastSeen(); !got.Equal(clock.Now()) {
		t.Fatalf("last seen = %v, want %v", got, clock.Now())
	}
	clock.Advance(5 * time.Minute)
	if removed := registry.Sweep(); removed != 0 {
		t.Fatalf("active session swept (%d removed)", removed)
	}
	if _, err := registry.Get(s.ID()); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestRegistryZeroIdleTimeoutKeepsSessions(t *testing.T) {
	clock := newFakeClock()
	registry := session.NewRegistry(session.WithIdleTimeout(0), session.WithClock(clock.Now))
	s := registry.Create()
	clock.Advance(365 * 24 * time.Hour)
	if removed := registry.Sweep(); removed != 0 {
		t.Fatalf("expected no expiry, removed %d", removed)
	}
	if _, err := registry.Get(s.ID()); err != nil {
		t.Fatalf("Get: %v", err)
	}
}
