package daemonrun_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinemind/internal/daemonrun"
	"cinemind/internal/ranking"
	"cinemind/internal/services"
	"cinemind/internal/testsupport"
)

func TestBootstrapRequiresDataset(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := daemonrun.Bootstrap(context.Background(), cfg, nil); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for empty database, got %v", err)
	}
}

func TestBootstrapWiresConfiguredEngine(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Ranking.SelfExclusion = "first_ranked"
	cfg.Ranking.SimilarLimit = 3
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.MustSeedStore(t, st)

	rt, err := daemonrun.Bootstrap(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })

	if rt.Engine.SelfExclusion() != ranking.ExcludeFirstRanked {
		t.Fatalf("self exclusion = %q", rt.Engine.SelfExclusion())
	}
	results, err := rt.Engine.PureSimilarity("Heat", 0)
	if err != nil || len(results) != 3 {
		t.Fatalf("PureSimilarity = %v, %v; want 3 results", results, err)
	}
	if rt.Gateway.Enabled() {
		t.Fatal("expected gateway disabled without api key")
	}
}

func TestNewGatewayUsesOMDbAndPersists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Title":"Heat","Plot":"Thieves.","Director":"Michael Mann","Actors":"Al Pacino",
			"Runtime":"170 min","imdbRating":"8.3","Poster":"https://img/heat.jpg","Response":"True"}`))
	}))
	t.Cleanup(srv.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithOMDb(srv.URL, "key"))
	st := testsupport.MustOpenStore(t, cfg)
	gateway := daemonrun.NewGateway(cfg, st, nil)

	got := gateway.Lookup(context.Background(), "Heat")
	if got.Director != "Michael Mann" || got.Rating != "8.3" {
		t.Fatalf("unexpected details %+v", got)
	}
	persisted, ok, err := st.CachedDetails(context.Background(), "Heat")
	if err != nil || !ok || persisted != got {
		t.Fatalf("persisted = %+v ok=%v err=%v", persisted, ok, err)
	}

	fresh := daemonrun.NewGateway(cfg, st, nil)
	srv.Close()
	if again := fresh.Lookup(context.Background(), "Heat"); again != got {
		t.Fatalf("expected persisted details after restart, got %+v", again)
	}
}
