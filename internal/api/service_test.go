package api_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"cinemind/internal/api"
	"cinemind/internal/metadata"
	"cinemind/internal/metrics"
	"cinemind/internal/ranking"
	"cinemind/internal/services"
	"cinemind/internal/session"
	"cinemind/internal/testsupport"
)

type stubEnricher struct {
	calls atomic.Int32
}

func (s *stubEnricher) Lookup(_ context.Context, title string) metadata.Details {
	s.calls.Add(1)
	d := metadata.Fallback()
	d.Plot = "plot of " + title
	return d
}

func newService(t *testing.T) (*api.Service, *stubEnricher) {
	t.Helper()
	engine, err := ranking.New(testsupport.SampleCatalog(t), testsupport.SampleMatrix(t))
	if err != nil {
		t.Fatalf("ranking.New: %v", err)
	}
	enricher := &stubEnricher{}
	return api.NewService(engine, enricher, session.NewRegistry(), nil), enricher
}

func TestRecommendSimilarRecordsSession(t *testing.T) {
	svc, _ := newService(t)
	resp, err := svc.Recommend(context.Background(), ranking.StrategySimilar, "The Matrix",
		api.RecommendOptions{Limit: 2, SessionID: "abc"})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	titles := api.TitlesOf(resp.Results)
	if !slices.Equal(titles, []string{"Inception", "Heat"}) {
		t.Fatalf("titles = %v", titles)
	}
	if resp.Results[0].Rank != 1 || resp.Results[0].Score == nil || *resp.Results[0].Score != 0.85 {
		t.Fatalf("unexpected first result %+v", resp.Results[0])
	}
	if resp.SessionID != "abc" || resp.Seed != "The Matrix" {
		t.Fatalf("unexpected response header %+v", resp)
	}

	snap, err := svc.Session("abc")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if snap.Session.Page != session.PageRecommend || !slices.Equal(snap.Session.Recommended, titles) {
		t.Fatalf("session not updated: %+v", snap.Session)
	}
}

func TestRecommendMoodRecordsSelection(t *testing.T) {
	svc, _ := newService(t)
	resp, err := svc.Recommend(context.Background(), ranking.StrategyMood, "happy", api.RecommendOptions{SessionID: "s1"})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !slices.Equal(api.TitlesOf(resp.Results), []string{"Toy Story", "Paddington"}) {
		t.Fatalf("titles = %v", api.TitlesOf(resp.Results))
	}
	if resp.Results[0].Score != nil {
		t.Fatal("mood results should not carry scores")
	}
	snap, _ := svc.Session("s1")
	if snap.Session.SelectedMood != string(ranking.MoodHappy) || len(snap.Session.MoodMovies) != 2 || snap.Session.Page != session.PageMood {
		t.Fatalf("session not updated: %+v", snap.Session)
	}
}

func TestRecommendEnrichesInOrder(t *testing.T) {
	svc, enricher := newService(t)
	resp, err := svc.Recommend(context.Background(), ranking.StrategyHybrid, "Toy Story",
		api.RecommendOptions{Limit: 3, Enrich: true})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(resp.Results))
	}
	for _, m := range resp.Results {
		if m.Details == nil || m.Details.Plot != "plot of "+m.Title {
			t.Fatalf("result %q has details %+v", m.Title, m.Details)
		}
	}
	if enricher.calls.Load() != 3 {
		t.Fatalf("enricher called %d times, want 3", enricher.calls.Load())
	}
}

func TestRecommendErrors(t *testing.T) {
	svc, _ := newService(t)
	counter := metrics.RecommendationsTotal.WithLabelValues(string(ranking.StrategySimilar), metrics.OutcomeNotFound)
	before := testutil.ToFloat64(counter)

	if _, err := svc.Recommend(context.Background(), ranking.StrategySimilar, "Nope", api.RecommendOptions{}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Fatalf("not_found outcomes = %v, want %v", got, before+1)
	}
	if _, err := svc.Recommend(context.Background(), ranking.StrategyHybrid, "  ", api.RecommendOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Recommend(context.Background(), ranking.StrategyMood, "bored", api.RecommendOptions{}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for unknown mood, got %v", err)
	}
}

func TestChart(t *testing.T) {
	svc, _ := newService(t)
	resp, err := svc.Chart(context.Background(), "trending", 3, false)
	if err != nil {
		t.Fatalf("Chart: %v", err)
	}
	if !slices.Equal(api.TitlesOf(resp.Results), []string{"Inception", "The Matrix", "Toy Story"}) {
		t.Fatalf("titles = %v", api.TitlesOf(resp.Results))
	}
	if _, err := svc.Chart(context.Background(), "weekly", 3, false); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMoviesAndMoods(t *testing.T) {
	svc, _ := newService(t)
	resp := svc.Movies("the", 0)
	if resp.Total != 6 || !slices.Equal(api.TitlesOf(resp.Movies), []string{"The Matrix", "The Notebook"}) {
		t.Fatalf("unexpected search response %+v", resp)
	}
	moods := svc.Moods()
	if len(moods.Moods) != len(ranking.Moods()) || moods.Moods[0].Name != "Happy" {
		t.Fatalf("unexpected moods %+v", moods)
	}
}

func TestDetails(t *testing.T) {
	svc, _ := newService(t)
	resp, err := svc.Details(context.Background(), "  Heat ")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if resp.Title != "Heat" || resp.Details.Plot != "plot of Heat" {
		t.Fatalf("unexpected details %+v", resp)
	}
	if _, err := svc.Details(context.Background(), "Nope"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWatchlist(t *testing.T) {
	svc, _ := newService(t)
	id := svc.CreateSession().Session.ID

	first, err := svc.AddToWatchlist(context.Background(), id, "Heat")
	if err != nil || first.Added == nil || !*first.Added {
		t.Fatalf("first add = %+v, %v", first, err)
	}
	again, err := svc.AddToWatchlist(context.Background(), id, "Heat")
	if err != nil || again.Added == nil || *again.Added {
		t.Fatalf("second add = %+v, %v", again, err)
	}
	if _, err := svc.AddToWatchlist(context.Background(), id, "Inception"); err != nil {
		t.Fatalf("add Inception: %v", err)
	}

	list, err := svc.Watchlist(id)
	if err != nil {
		t.Fatalf("Watchlist: %v", err)
	}
	if !slices.Equal(list.Titles, []string{"Heat", "Inception"}) {
		t.Fatalf("titles = %v", list.Titles)
	}

	if _, err := svc.AddToWatchlist(context.Background(), id, "Nope"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for unknown title, got %v", err)
	}
	if _, err := svc.Watchlist("missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for unknown session, got %v", err)
	}
}

func TestSetPage(t *testing.T) {
	svc, _ := newService(t)
	id := svc.CreateSession().Session.ID
	resp, err := svc.SetPage(id, "top_rated")
	if err != nil {
		t.Fatalf("SetPage: %v", err)
	}
	if resp.Session.Page != session.PageTopRated {
		t.Fatalf("page = %q", resp.Session.Page)
	}
	if _, err := svc.SetPage(id, "nowhere"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecommendSessionsExpireWhenIdle(t *testing.T) {
	engine, err := ranking.New(testsupport.SampleCatalog(t), testsupport.SampleMatrix(t))
	if err != nil {
		t.Fatalf("ranking.New: %v", err)
	}
	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	registry := session.NewRegistry(session.WithIdleTimeout(time.Minute), session.WithClock(clock))
	svc := api.NewService(engine, nil, registry, nil)

	for i := range 500 {
		if _, err := svc.Recommend(context.Background(), ranking.StrategySimilar, "Heat",
			api.RecommendOptions{SessionID: fmt.Sprintf("client-%d", i)}); err != nil {
			t.Fatalf("Recommend: %v", err)
		}
	}
	if registry.Len() != 500 {
		t.Fatalf("expected 500 sessions, got %d", registry.Len())
	}

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()
	if _, err := svc.Recommend(context.Background(), ranking.StrategySimilar, "Heat",
		api.RecommendOptions{SessionID: "late"}); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if registry.Len() != 1 {
		t.Fatalf("expected idle sessions dropped, got %d", registry.Len())
	}
	if _, err := svc.Session("client-0"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}
