package catalog

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"cinemind/internal/services"
)

// MaxVoteAverage is the upper bound of the rating scale.
const MaxVoteAverage = 10.0

// ErrOutOfRange reports an index outside [0, Len()). Given the catalog
// invariants this indicates a programming error rather than bad user input.
var ErrOutOfRange = errors.New("catalog index out of range")

// Movie is a single catalog row.
type Movie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	Popularity  float64  `json:"popularity"`
	VoteAverage float64  `json:"vote_average"`
	VoteCount   int64    `json:"vote_count"`
}

// HasGenre reports whether the movie carries genre, ignoring case.
func (m Movie) HasGenre(genre string) bool {
	key := FoldGenre(genre)
	for _, g := range m.Genres {
		if FoldGenre(g) == key {
			return true
		}
	}
	return false
}

// Catalog is an immutable, indexed table of movies.
type Catalog struct {
	movies    []Movie
	genreKeys [][]string
	byTitle   map[string]int
}

// New validates rows and builds a catalog. IDs are reassigned from row
// position so they always match similarity matrix indices.
func New(movies []Movie) (*Catalog, error) {
	c := &Catalog{
		movies:    make([]Movie, len(movies)),
		genreKeys: make([][]string, len(movies)),
		byTitle:   make(map[string]int, len(movies)),
	}
	for i, movie := range movies {
		if err := validateMovie(i, movie); err != nil {
			return nil, err
		}
		movie.ID = i
		movie.Title = strings.TrimSpace(movie.Title)
		movie.Genres = normalizeGenres(movie.Genres)
		c.movies[i] = movie

		keys := make([]string, len(movie.Genres))
		for j, genre := range movie.Genres {
			keys[j] = FoldGenre(genre)
		}
		c.genreKeys[i] = keys

		if _, exists := c.byTitle[movie.Title]; !exists {
			c.byTitle[movie.Title] = i
		}
	}
	return c, nil
}

func validateMovie(row int, m Movie) error {
	if strings.TrimSpace(m.Title) == "" {
		return services.Wrap(services.ErrValidation, "catalog", "load", fmt.Sprintf("row %d: title is empty", row), nil)
	}
	if !finite(m.Popularity) || m.Popularity < 0 {
		return services.Wrap(services.ErrValidation, "catalog", "load", fmt.Sprintf("row %d (%s): popularity must be a finite non-negative number", row, m.Title), nil)
	}
	if !finite(m.VoteAverage) || m.VoteAverage < 0 || m.VoteAverage > MaxVoteAverage {
		return services.Wrap(services.ErrValidation, "catalog", "load", fmt.Sprintf("row %d (%s): vote_average must be within [0, %g]", row, m.Title, MaxVoteAverage), nil)
	}
	if m.VoteCount < 0 {
		return services.Wrap(services.ErrValidation, "catalog", "load", fmt.Sprintf("row %d (%s): vote_count must be non-negative", row, m.Title), nil)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func normalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	seen := make(map[string]struct{}, len(genres))
	for _, genre := range genres {
		genre = strings.TrimSpace(genre)
		if genre == "" {
			continue
		}
		key := FoldGenre(genre)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, genre)
	}
	return out
}

// FoldGenre returns the comparison key for a genre name.
func FoldGenre(genre string) string {
	return cases.Fold().String(strings.TrimSpace(genre))
}

// Len returns the number of rows.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.movies)
}

// LookupIndexByTitle resolves a title to its row index. Repeated titles
// resolve to the first row in load order.
func (c *Catalog) LookupIndexByTitle(title string) (int, error) {
	if c != nil {
		if idx, ok := c.byTitle[strings.TrimSpace(title)]; ok {
			return idx, nil
		}
	}
	return -1, services.Wrap(services.ErrNotFound, "catalog", "lookup", fmt.Sprintf("title %q", title), nil)
}

// Row returns the movie at index.
func (c *Catalog) Row(index int) (Movie, error) {
	if index < 0 || index >= c.Len() {
		return Movie{}, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, c.Len())
	}
	movie := c.movies[index]
	movie.Genres = slices.Clone(movie.Genres)
	return movie, nil
}

// Title returns the title at index, or an empty string when out of range.
func (c *Catalog) Title(index int) string {
	if index < 0 || index >= c.Len() {
		return ""
	}
	return c.movies[index].Title
}

// AllTitles returns every title in load order.
func (c *Catalog) AllTitles() []string {
	titles := make([]string, c.Len())
	for i := range titles {
		titles[i] = c.movies[i].Title
	}
	return titles
}

// Movies iterates rows in load order.
func (c *Catalog) Movies() iter.Seq2[int, Movie] {
	return func(yield func(int, Movie) bool) {
		for i := 0; i < c.Len(); i++ {
			movie := c.movies[i]
			movie.Genres = slices.Clone(movie.Genres)
			if !yield(i, movie) {
				return
			}
		}
	}
}

// MatchesAnyGenre reports whether the row at index carries at least one of the
// folded genre keys. Keys must come from FoldGenre.
func (c *Catalog) MatchesAnyGenre(index int, keys map[string]struct{}) bool {
	if index < 0 || index >= c.Len() || len(keys) == 0 {
		return false
	}
	for _, key := range c.genreKeys[index] {
		if _, ok := keys[key]; ok {
			return true
		}
	}
	return false
}

// Popularities returns the popularity column in row order.
func (c *Catalog) Popularities() []float64 {
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.movies[i].Popularity
	}
	return out
}

// VoteAverages returns the vote_average column in row order.
func (c *Catalog) VoteAverages() []float64 {
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.movies[i].VoteAverage
	}
	return out
}

// Search returns rows whose title contains query, ignoring case, in load
// order. An empty query matches everything. limit <= 0 means no limit.
func (c *Catalog) Search(query string, limit int) []Movie {
	needle := cases.Fold().String(strings.TrimSpace(query))
	var out []Movie
	for _, movie := range c.Movies() {
		if needle != "" && !strings.Contains(cases.Fold().String(movie.Title), needle) {
			continue
		}
		out = append(out, movie)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
