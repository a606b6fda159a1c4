package store

import (
	"context"
	"fmt"
	"time"
)

// Stats summarizes database contents.
type Stats struct {
	Path           string    `json:"path"`
	SchemaVersion  int       `json:"schema_version"`
	Movies         int       `json:"movies"`
	SimilarityRows int       `json:"similarity_rows"`
	CachedDetails  int       `json:"cached_details"`
	ImportedAt     time.Time `json:"imported_at"`
}

// Stats returns row counts and the last import time.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path}
	version, err := s.SchemaVersion(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats.SchemaVersion = version

	counts := []struct {
		table string
		dst   *int
	}{
		{"movies", &stats.Movies},
		{"similarity_rows", &stats.SimilarityRows},
		{"metadata_cache", &stats.CachedDetails},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+c.table).Scan(c.dst); err != nil {
			return Stats{}, fmt.Errorf("count %s: %w", c.table, err)
		}
	}

	importedAt, err := s.ImportedAt(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats.ImportedAt = importedAt
	return stats, nil
}
