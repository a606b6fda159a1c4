package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"cinemind/internal/catalog"
	"cinemind/internal/similarity"
)

// SampleMovies returns a six-title catalog covering every mood genre except
// Thriller and Mystery.
func SampleMovies() []catalog.Movie {
	return []catalog.Movie{
		{Title: "The Matrix", Genres: []string{"Action", "Science Fiction"}, Popularity: 80, VoteAverage: 8.2, VoteCount: 20000},
		{Title: "Inception", Genres: []string{"Action", "Science Fiction", "Adventure"}, Popularity: 90, VoteAverage: 8.4, VoteCount: 30000},
		{Title: "Toy Story", Genres: []string{"Animation", "Comedy", "Family"}, Popularity: 60, VoteAverage: 7.9, VoteCount: 15000},
		{Title: "Heat", Genres: []string{"Action", "Crime", "Drama"}, Popularity: 40, VoteAverage: 7.9, VoteCount: 6000},
		{Title: "The Notebook", Genres: []string{"Romance", "Drama"}, Popularity: 30, VoteAverage: 7.9, VoteCount: 9000},
		{Title: "Paddington", Genres: []string{"Comedy", "Family"}, Popularity: 35, VoteAverage: 7.5, VoteCount: 2000},
	}
}

// SampleRows returns the symmetric similarity rows matching SampleMovies.
func SampleRows() [][]float64 {
	return [][]float64{
		{1.00, 0.85, 0.10, 0.40, 0.05, 0.08},
		{0.85, 1.00, 0.12, 0.35, 0.06, 0.09},
		{0.10, 0.12, 1.00, 0.05, 0.15, 0.70},
		{0.40, 0.35, 0.05, 1.00, 0.20, 0.04},
		{0.05, 0.06, 0.15, 0.20, 1.00, 0.18},
		{0.08, 0.09, 0.70, 0.04, 0.18, 1.00},
	}
}

// SampleMatrix builds the matrix for SampleRows.
func SampleMatrix(t testing.TB) *similarity.Matrix {
	t.Helper()
	matrix, err := similarity.New(SampleRows())
	if err != nil {
		t.Fatalf("similarity.New: %v", err)
	}
	return matrix
}

// SampleCatalog builds the catalog for SampleMovies.
func SampleCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(SampleMovies())
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat
}

// WriteSampleFiles writes the sample dataset as CSV to moviesPath and matrixPath.
func WriteSampleFiles(t testing.TB, moviesPath, matrixPath string) {
	t.Helper()

	var movies strings.Builder
	movies.WriteString("title,genres,popularity,vote_average,vote_count\n")
	for _, m := range SampleMovies() {
		movies.WriteString(strings.Join([]string{
			strconv.Quote(m.Title),
			strings.Join(m.Genres, "|"),
			strconv.FormatFloat(m.Popularity, 'f', -1, 64),
			strconv.FormatFloat(m.VoteAverage, 'f', -1, 64),
			strconv.FormatInt(m.VoteCount, 10),
		}, ","))
		movies.WriteString("\n")
	}
	WriteFile(t, moviesPath, movies.String())

	var matrix strings.Builder
	for _, row := range SampleRows() {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		matrix.WriteString(strings.Join(cells, ","))
		matrix.WriteString("\n")
	}
	WriteFile(t, matrixPath, matrix.String())
}

// WriteFile writes contents to path, creating parent directories.
func WriteFile(t testing.TB, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
