package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cinemind/internal/catalog"
	"cinemind/internal/services"
	"cinemind/internal/similarity"
)

// Dataset is a parsed movie table with its similarity matrix.
type Dataset struct {
	Movies []catalog.Movie
	Matrix *similarity.Matrix
}

// ReadFiles parses moviesPath (CSV or JSON by extension) and matrixPath and
// checks that their sizes agree.
func ReadFiles(moviesPath, matrixPath string) (*Dataset, error) {
	movies, err := readFile(moviesPath, moviesReader(moviesPath))
	if err != nil {
		return nil, err
	}
	matrix, err := readFile(matrixPath, ReadMatrixCSV)
	if err != nil {
		return nil, err
	}
	if matrix.Size() != len(movies) {
		return nil, services.Wrap(services.ErrValidation, "dataset", "read",
			fmt.Sprintf("%s has %d rows but %s has %d movies", matrixPath, matrix.Size(), moviesPath, len(movies)), nil)
	}
	return &Dataset{Movies: movies, Matrix: matrix}, nil
}

func moviesReader(path string) func(io.Reader) ([]catalog.Movie, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadMoviesJSON
	}
	return ReadMoviesCSV
}

func readFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return zero, services.Wrap(services.ErrNotFound, "dataset", "read", fmt.Sprintf("%s does not exist", path), err)
		}
		return zero, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	value, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return value, nil
}
