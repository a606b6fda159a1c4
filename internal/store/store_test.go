package store_test

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"path/filepath"
	"slices"
	"testing"

	_ "modernc.org/sqlite"

	"cinemind/internal/catalog"
	"cinemind/internal/metadata"
	"cinemind/internal/services"
	"cinemind/internal/similarity"
	"cinemind/internal/store"
	"cinemind/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	stats, err := st.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.SchemaVersion != 1 || stats.Movies != 0 || !stats.ImportedAt.IsZero() {
		t.Fatalf("unexpected stats for empty db: %+v", stats)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	_ = st.Close()

	db, err := sql.Open("sqlite", cfg.Paths.Database)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := store.Open(context.Background(), cfg.Paths.Database); !errors.Is(err, store.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestLoadWithoutDatasetIsNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	if _, _, err := st.Load(context.Background()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReplaceDatasetRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.MustSeedStore(t, st)

	cat, matrix, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != len(testsupport.SampleMovies()) || matrix.Size() != cat.Len() {
		t.Fatalf("loaded %d movies and %d×%d matrix", cat.Len(), matrix.Size(), matrix.Size())
	}
	for i, want := range testsupport.SampleMovies() {
		got, err := cat.Row(i)
		if err != nil {
			t.Fatalf("Row(%d): %v", i, err)
		}
		if got.Title != want.Title || !slices.Equal(got.Genres, want.Genres) || got.VoteCount != want.VoteCount {
			t.Fatalf("row %d = %+v, want %+v", i, got, want)
		}
	}
	for i, row := range testsupport.SampleRows() {
		got, err := matrix.Row(i)
		if err != nil {
			t.Fatalf("matrix.Row(%d): %v", i, err)
		}
		if !slices.Equal(got, row) {
			t.Fatalf("matrix row %d = %v, want %v", i, got, row)
		}
	}

	stats, err := st.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Movies != 6 || stats.SimilarityRows != 6 || stats.ImportedAt.IsZero() {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestReplaceDatasetSwapsContents(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.MustSeedStore(t, st)

	movies := []catalog.Movie{{Title: "Solo", Genres: nil, Popularity: 1, VoteAverage: 5, VoteCount: 1}}
	matrix, err := similarity.New([][]float64{{math.NaN()}})
	if err != nil {
		t.Fatalf("similarity.New: %v", err)
	}
	if err := st.ReplaceDataset(context.Background(), movies, matrix); err != nil {
		t.Fatalf("ReplaceDataset: %v", err)
	}

	cat, loaded, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 1 || cat.Title(0) != "Solo" {
		t.Fatalf("expected single Solo row, got %v", cat.AllTitles())
	}
	v, _ := loaded.At(0, 0)
	if !math.IsNaN(v) {
		t.Fatalf("expected NaN to survive the round trip, got %v", v)
	}
}

func TestReplaceDatasetRejectsSizeMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.MustSeedStore(t, st)

	matrix, _ := similarity.New([][]float64{{1}})
	err := st.ReplaceDataset(context.Background(), testsupport.SampleMovies(), matrix)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	cat, _, err := st.Load(context.Background())
	if err != nil || cat.Len() != 6 {
		t.Fatalf("expected previous dataset to survive, got len=%d err=%v", cat.Len(), err)
	}
}

func TestMetadataCache(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, ok, err := st.CachedDetails(ctx, "Heat"); err != nil || ok {
		t.Fatalf("expected cache miss, got ok=%v err=%v", ok, err)
	}

	details := metadata.Details{PosterURL: "https://img/heat.jpg", Plot: "Thieves.", Actors: "Al Pacino",
		Director: "Michael Mann", Runtime: "170 min", Rating: "8.3"}
	if err := st.StoreDetails(ctx, "Heat", details); err != nil {
		t.Fatalf("StoreDetails: %v", err)
	}
	details.Rating = "8.4"
	if err := st.StoreDetails(ctx, "Heat", details); err != nil {
		t.Fatalf("StoreDetails overwrite: %v", err)
	}

	got, ok, err := st.CachedDetails(ctx, "Heat")
	if err != nil || !ok {
		t.Fatalf("expected cache hit, got ok=%v err=%v", ok, err)
	}
	if got != details {
		t.Fatalf("cached = %+v, want %+v", got, details)
	}

	dropped, err := st.ClearDetails(ctx)
	if err != nil || dropped != 1 {
		t.Fatalf("ClearDetails = %d, %v; want 1, nil", dropped, err)
	}
}

func TestCacheSurvivesReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := filepath.Join(testsupport.BaseDir(cfg), "reopen.db")

	st, err := store.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.StoreDetails(context.Background(), "Heat", metadata.Fallback()); err != nil {
		t.Fatalf("StoreDetails: %v", err)
	}
	_ = st.Close()

	reopened, err := store.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	if _, ok, err := reopened.CachedDetails(context.Background(), "Heat"); err != nil || !ok {
		t.Fatalf("expected persisted entry, got ok=%v err=%v", ok, err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := store.Open(context.Background(), " "); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
