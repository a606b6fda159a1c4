package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"cinemind/internal/catalog"
	"cinemind/internal/services"
	"cinemind/internal/similarity"
)

const metaImportedAt = "imported_at"

// ReplaceDataset swaps the stored catalog and matrix for movies and matrix in
// one transaction. The metadata cache is kept.
func (s *Store) ReplaceDataset(ctx context.Context, movies []catalog.Movie, matrix *similarity.Matrix) error {
	if _, err := catalog.New(movies); err != nil {
		return err
	}
	if matrix.Size() != len(movies) {
		return services.Wrap(services.ErrValidation, "store", "replace dataset",
			fmt.Sprintf("matrix size %d does not match %d movies", matrix.Size(), len(movies)), nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin dataset tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{"DELETE FROM movies", "DELETE FROM similarity_rows"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear dataset: %w", err)
		}
	}

	insertMovie, err := tx.PrepareContext(ctx,
		`INSERT INTO movies (idx, title, genres_json, popularity, vote_average, vote_count) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare movie insert: %w", err)
	}
	defer insertMovie.Close()
	for i, movie := range movies {
		genres := movie.Genres
		if genres == nil {
			genres = []string{}
		}
		genresJSON, err := json.Marshal(genres)
		if err != nil {
			return fmt.Errorf("marshal genres for %q: %w", movie.Title, err)
		}
		if _, err := insertMovie.ExecContext(ctx, i, movie.Title, string(genresJSON),
			movie.Popularity, movie.VoteAverage, movie.VoteCount); err != nil {
			return fmt.Errorf("insert movie %q: %w", movie.Title, err)
		}
	}

	insertRow, err := tx.PrepareContext(ctx, `INSERT INTO similarity_rows (idx, data) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare similarity insert: %w", err)
	}
	defer insertRow.Close()
	for i := range matrix.Size() {
		row, err := matrix.Row(i)
		if err != nil {
			return err
		}
		if _, err := insertRow.ExecContext(ctx, i, encodeRow(row)); err != nil {
			return fmt.Errorf("insert similarity row %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dataset_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaImportedAt, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("record import time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit dataset: %w", err)
	}
	return nil
}

// LoadCatalog reads the stored movies in index order.
func (s *Store) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, title, genres_json, popularity, vote_average, vote_count FROM movies ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	var movies []catalog.Movie
	for rows.Next() {
		var (
			movie      catalog.Movie
			genresJSON string
		)
		if err := rows.Scan(&movie.ID, &movie.Title, &genresJSON, &movie.Popularity, &movie.VoteAverage, &movie.VoteCount); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		if movie.ID != len(movies) {
			return nil, fmt.Errorf("movies table has a gap at index %d", len(movies))
		}
		if err := json.Unmarshal([]byte(genresJSON), &movie.Genres); err != nil {
			return nil, fmt.Errorf("decode genres for %q: %w", movie.Title, err)
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	if len(movies) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "store", "load catalog",
			"no dataset imported (run 'cinemind import')", nil)
	}
	return catalog.New(movies)
}

// LoadMatrix reads the stored n×n similarity matrix.
func (s *Store) LoadMatrix(ctx context.Context, n int) (*similarity.Matrix, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT idx, data FROM similarity_rows ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("query similarity rows: %w", err)
	}
	defer rows.Close()

	data := make([]float64, 0, n*n)
	count := 0
	for rows.Next() {
		var (
			idx  int
			blob []byte
		)
		if err := rows.Scan(&idx, &blob); err != nil {
			return nil, fmt.Errorf("scan similarity row: %w", err)
		}
		if idx != count {
			return nil, fmt.Errorf("similarity rows have a gap at index %d", count)
		}
		row, err := decodeRow(blob, n)
		if err != nil {
			return nil, fmt.Errorf("similarity row %d: %w", idx, err)
		}
		data = append(data, row...)
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similarity rows: %w", err)
	}
	if count != n {
		return nil, services.Wrap(services.ErrValidation, "store", "load matrix",
			fmt.Sprintf("found %d similarity rows, want %d", count, n), nil)
	}
	return similarity.NewDense(n, data)
}

// Load reads the catalog and its matching matrix.
func (s *Store) Load(ctx context.Context) (*catalog.Catalog, *similarity.Matrix, error) {
	cat, err := s.LoadCatalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	matrix, err := s.LoadMatrix(ctx, cat.Len())
	if err != nil {
		return nil, nil, err
	}
	return cat, matrix, nil
}

// ImportedAt returns when the dataset was last replaced. The zero time means
// nothing has been imported.
func (s *Store) ImportedAt(ctx context.Context) (time.Time, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM dataset_meta WHERE key = ?`, metaImportedAt).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read import time: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse import time: %w", err)
	}
	return ts, nil
}

func encodeRow(row []float64) []byte {
	buf := make([]byte, 8*len(row))
	for i, v := range row {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeRow(blob []byte, n int) ([]float64, error) {
	if len(blob) != 8*n {
		return nil, fmt.Errorf("blob has %d bytes, want %d", len(blob), 8*n)
	}
	row := make([]float64, n)
	for i := range row {
		row[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return row, nil
}
