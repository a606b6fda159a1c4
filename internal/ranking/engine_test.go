package ranking_test

import (
	"errors"
	"math"
	"slices"
	"testing"

	"cinemind/internal/catalog"
	"cinemind/internal/ranking"
	"cinemind/internal/services"
	"cinemind/internal/similarity"
)

// exampleEngine builds the four-movie catalog S, A, B, C where row S of the
// matrix is [1.0, 0.9, 0.8, 0.3].
func exampleEngine(t *testing.T, opts ...ranking.Option) *ranking.Engine {
	t.Helper()
	cat, err := catalog.New([]catalog.Movie{
		{Title: "S", Genres: []string{"Drama"}, Popularity: 20, VoteAverage: 6.0, VoteCount: 40},
		{Title: "A", Genres: []string{"Comedy"}, Popularity: 100, VoteAverage: 8.0, VoteCount: 900},
		{Title: "B", Genres: []string{"Animation", "Family"}, Popularity: 50, VoteAverage: 9.0, VoteCount: 300},
		{Title: "C", Genres: []string{"Horror"}, Popularity: 10, VoteAverage: 5.0, VoteCount: 10},
	})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	matrix, err := similarity.New([][]float64{
		{1.0, 0.9, 0.8, 0.3},
		{0.9, 1.0, 0.5, 0.2},
		{0.8, 0.5, 1.0, 0.1},
		{0.3, 0.2, 0.1, 1.0},
	})
	if err != nil {
		t.Fatalf("similarity.New: %v", err)
	}
	engine, err := ranking.New(cat, matrix, opts...)
	if err != nil {
		t.Fatalf("ranking.New: %v", err)
	}
	return engine
}

func TestNewRejectsMismatchedMatrix(t *testing.T) {
	cat, _ := catalog.New([]catalog.Movie{{Title: "only"}})
	matrix, _ := similarity.New([][]float64{{1, 0}, {0, 1}})
	if _, err := ranking.New(cat, matrix); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ranking.New(nil, matrix); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestPureSimilarityExample(t *testing.T) {
	engine := exampleEngine(t)
	results, err := engine.PureSimilarity("S", 2)
	if err != nil {
		t.Fatalf("PureSimilarity returned error: %v", err)
	}
	if got := ranking.Titles(results); !slices.Equal(got, []string{"A", "B"}) {
		t.Fatalf("PureSimilarity(S, 2) = %v, want [A B]", got)
	}
	if results[0].Score != 0.9 || results[0].Index != 1 {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
}

func TestPureSimilarityReturnsAtMostNMinusOne(t *testing.T) {
	engine := exampleEngine(t)
	for _, seed := range engine.Catalog().AllTitles() {
		results, err := engine.PureSimilarity(seed, 10)
		if err != nil {
			t.Fatalf("PureSimilarity(%s): %v", seed, err)
		}
		if len(results) != 3 {
			t.Fatalf("seed %s: expected 3 results, got %d", seed, len(results))
		}
		seen := map[int]bool{}
		for _, r := range results {
			if r.Index < 0 || r.Index >= engine.Catalog().Len() {
				t.Fatalf("result index %d out of bounds", r.Index)
			}
			if seen[r.Index] {
				t.Fatalf("duplicate result %d", r.Index)
			}
			if r.Title == seed {
				t.Fatalf("seed %s recommended to itself", seed)
			}
			seen[r.Index] = true
		}
	}
}

func TestPureSimilarityDefaultLimit(t *testing.T) {
	movies := make([]catalog.Movie, 8)
	rows := make([][]float64, 8)
	for i := range movies {
		movies[i] = catalog.Movie{Title: string(rune('a' + i))}
		rows[i] = make([]float64, 8)
		for j := range rows[i] {
			rows[i][j] = 1 / float64(1+abs(i-j))
		}
	}
	cat, _ := catalog.New(movies)
	matrix, _ := similarity.New(rows)
	engine, err := ranking.New(cat, matrix)
	if err != nil {
		t.Fatalf("ranking.New: %v", err)
	}
	results, err := engine.PureSimilarity("a", 0)
	if err != nil {
		t.Fatalf("PureSimilarity returned error: %v", err)
	}
	if len(results) != ranking.DefaultSimilarLimit {
		t.Fatalf("expected default limit %d, got %d", ranking.DefaultSimilarLimit, len(results))
	}
}

func TestPureSimilarityUnknownSeed(t *testing.T) {
	engine := exampleEngine(t)
	if _, err := engine.PureSimilarity("Nope", 2); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := engine.Hybrid("Nope", 2); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTiesBreakByAscendingIndex(t *testing.T) {
	cat, _ := catalog.New([]catalog.Movie{{Title: "seed"}, {Title: "x"}, {Title: "y"}, {Title: "z"}})
	matrix, _ := similarity.New([][]float64{
		{1, 0.5, 0.5, 0.5},
		{0.5, 1, 0, 0},
		{0.5, 0, 1, 0},
		{0.5, 0, 0, 1},
	})
	engine, err := ranking.New(cat, matrix)
	if err != nil {
		t.Fatalf("ranking.New: %v", err)
	}
	results, err := engine.PureSimilarity("seed", 3)
	if err != nil {
		t.Fatalf("PureSimilarity returned error: %v", err)
	}
	if got := ranking.Titles(results); !slices.Equal(got, []string{"x", "y", "z"}) {
		t.Fatalf("expected ascending index tie-break, got %v", got)
	}
}

func TestSelfExclusionPolicies(t *testing.T) {
	// The seed ties with "x" for the top score, and "x" has the lower index.
	cat, _ := catalog.New([]catalog.Movie{{Title: "x"}, {Title: "seed"}, {Title: "y"}})
	matrix, _ := similarity.New([][]float64{
		{1, 1, 0.2},
		{1, 1, 0.4},
		{0.2, 0.4, 1},
	})

	bySeed, err := ranking.New(cat, matrix)
	if err != nil {
		t.Fatalf("ranking.New: %v", err)
	}
	results, _ := bySeed.PureSimilarity("seed", 5)
	if got := ranking.Titles(results); !slices.Equal(got, []string{"x", "y"}) {
		t.Fatalf("seed exclusion: got %v", got)
	}

	byPosition, err := ranking.New(cat, matrix, ranking.WithSelfExclusion(ranking.ExcludeFirstRanked))
	if err != nil {
		t.Fatalf("ranking.New: %v", err)
	}
	results, _ = byPosition.PureSimilarity("seed", 5)
	if got := ranking.Titles(results); !slices.Equal(got, []string{"seed", "y"}) {
		t.Fatalf("first-ranked exclusion: got %v", got)
	}
}

func TestParseSelfExclusion(t *testing.T) {
	for input, want := range map[string]ranking.SelfExclusion{
		"":             ranking.ExcludeSeed,
		"seed":         ranking.ExcludeSeed,
		"FIRST_RANKED": ranking.ExcludeFirstRanked,
	} {
		got, err := ranking.ParseSelfExclusion(input)
		if err != nil || got != want {
			t.Fatalf("ParseSelfExclusion(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ranking.ParseSelfExclusion("bogus"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWithLimits(t *testing.T) {
	engine := exampleEngine(t, ranking.WithLimits(ranking.Limits{Similar: 1, Hybrid: -3}))
	limits := engine.Limits()
	if limits.Similar != 1 || limits.Hybrid != ranking.DefaultHybridLimit {
		t.Fatalf("unexpected limits: %+v", limits)
	}
	results, _ := engine.PureSimilarity("S", 0)
	if len(results) != 1 {
		t.Fatalf("expected configured default of 1, got %d", len(results))
	}
}

func abs(v int) int {
	return int(math.Abs(float64(v)))
}
