package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"cinemind/internal/catalog"
	"cinemind/internal/services"
)

var movieColumns = []string{"title", "genres", "popularity", "vote_average", "vote_count"}

// ReadMoviesCSV parses a movie table. Columns are matched by header name, so
// extra columns and any column order are accepted.
func ReadMoviesCSV(r io.Reader) ([]catalog.Movie, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, invalid("movies file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read movies header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var movies []catalog.Movie
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read movies line %d: %w", line, err)
		}
		movie, err := parseMovieRecord(record, index)
		if err != nil {
			return nil, invalid(fmt.Sprintf("line %d: %v", line, err))
		}
		movies = append(movies, movie)
	}
	return movies, nil
}

func columnIndex(header []string) (map[string]int, error) {
	fold := cases.Fold()
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := fold.String(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}
	for _, col := range movieColumns {
		if _, ok := index[col]; !ok {
			return nil, invalid(fmt.Sprintf("movies header missing %q column", col))
		}
	}
	return index, nil
}

func parseMovieRecord(record []string, index map[string]int) (catalog.Movie, error) {
	field := func(name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var movie catalog.Movie
	movie.Title = field("title")
	movie.Genres = ParseGenres(field("genres"))

	var err error
	if movie.Popularity, err = parseFloat(field("popularity")); err != nil {
		return movie, fmt.Errorf("popularity: %w", err)
	}
	if movie.VoteAverage, err = parseFloat(field("vote_average")); err != nil {
		return movie, fmt.Errorf("vote_average: %w", err)
	}
	if movie.VoteCount, err = parseCount(field("vote_count")); err != nil {
		return movie, fmt.Errorf("vote_count: %w", err)
	}
	return movie, nil
}

// ParseGenres splits a genres cell. A JSON array, a "|"-separated list, and
// a ","-separated list are all accepted; blanks are dropped.
func ParseGenres(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if strings.HasPrefix(value, "[") {
		var genres []string
		if err := json.Unmarshal([]byte(value), &genres); err == nil {
			return compact(genres)
		}
		var named []struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal([]byte(value), &named); err == nil {
			genres = make([]string, len(named))
			for i, g := range named {
				genres[i] = g.Name
			}
			return compact(genres)
		}
	}
	sep := ","
	if strings.Contains(value, "|") {
		sep = "|"
	}
	return compact(strings.Split(value, sep))
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseFloat(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%q is not a finite number", value)
	}
	return v, nil
}

// parseCount accepts an integer cell. Exporters that write counts as floats
// ("6000.0") are tolerated as long as the value is whole and fits in int64.
func parseCount(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}
	v, err := parseFloat(value)
	if err != nil {
		return 0, err
	}
	return wholeCount(v)
}

func wholeCount(v float64) (int64, error) {
	if math.IsInf(v, 0) || math.IsNaN(v) || v != math.Trunc(v) {
		return 0, fmt.Errorf("%v is not a whole number", v)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is itself out of range.
	if v >= math.MaxInt64 || v < math.MinInt64 {
		return 0, fmt.Errorf("%v is out of range", v)
	}
	return int64(v), nil
}

type jsonMovie struct {
	Title       string          `json:"title"`
	Genres      json.RawMessage `json:"genres"`
	Popularity  float64         `json:"popularity"`
	VoteAverage float64         `json:"vote_average"`
	VoteCount   float64         `json:"vote_count"`
}

// ReadMoviesJSON parses a JSON array of movie objects. Genres may be an array
// of strings, an array of {"name": ...} objects, or a delimited string.
func ReadMoviesJSON(r io.Reader) ([]catalog.Movie, error) {
	var rows []jsonMovie
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, invalid(fmt.Sprintf("decode movies json: %v", err))
	}
	movies := make([]catalog.Movie, len(rows))
	for i, row := range rows {
		count, err := wholeCount(row.VoteCount)
		if err != nil {
			return nil, invalid(fmt.Sprintf("movie %d: vote_count: %v", i+1, err))
		}
		genres := strings.TrimSpace(string(row.Genres))
		if unquoted, err := strconv.Unquote(genres); err == nil {
			genres = unquoted
		}
		if genres == "null" {
			genres = ""
		}
		movies[i] = catalog.Movie{
			Title:       row.Title,
			Genres:      ParseGenres(genres),
			Popularity:  row.Popularity,
			VoteAverage: row.VoteAverage,
			VoteCount:   count,
		}
	}
	return movies, nil
}

func invalid(msg string) error {
	return services.Wrap(services.ErrValidation, "dataset", "parse", msg, nil)
}
