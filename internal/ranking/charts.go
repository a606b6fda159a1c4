package ranking

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"cinemind/internal/catalog"
	"cinemind/internal/services"
)

// ChartKind names a catalog-wide ordering.
type ChartKind string

const (
	// ChartTrending orders by popularity.
	ChartTrending ChartKind = "trending"
	// ChartTopRated orders by vote average.
	ChartTopRated ChartKind = "top-rated"
	// ChartPopular orders by vote count.
	ChartPopular ChartKind = "popular"
)

// ChartKinds lists every chart in display order.
func ChartKinds() []ChartKind {
	return []ChartKind{ChartTrending, ChartTopRated, ChartPopular}
}

// ParseChartKind accepts a chart name, ignoring case and "_" vs "-".
func ParseChartKind(value string) (ChartKind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "_", "-")
	switch ChartKind(normalized) {
	case ChartTrending, ChartTopRated, ChartPopular:
		return ChartKind(normalized), nil
	case "toprated":
		return ChartTopRated, nil
	}
	return "", services.Wrap(services.ErrNotFound, "ranking", "chart", fmt.Sprintf("unknown chart %q", value), nil)
}

// Chart returns the top n movies of the whole catalog for kind. n <= 0
// selects the configured default.
func (e *Engine) Chart(kind ChartKind, n int) ([]catalog.Movie, error) {
	var compare func(a, b catalog.Movie) int
	switch kind {
	case ChartTrending:
		compare = func(a, b catalog.Movie) int { return cmp.Compare(b.Popularity, a.Popularity) }
	case ChartTopRated:
		compare = func(a, b catalog.Movie) int { return cmp.Compare(b.VoteAverage, a.VoteAverage) }
	case ChartPopular:
		compare = func(a, b catalog.Movie) int { return cmp.Compare(b.VoteCount, a.VoteCount) }
	default:
		return nil, services.Wrap(services.ErrNotFound, "ranking", "chart", fmt.Sprintf("unknown chart %q", kind), nil)
	}

	movies := make([]catalog.Movie, 0, e.catalog.Len())
	for _, movie := range e.catalog.Movies() {
		movies = append(movies, movie)
	}
	slices.SortStableFunc(movies, compare)

	n = limitOr(n, e.limits.Chart)
	if n < len(movies) {
		movies = movies[:n]
	}
	return movies, nil
}
