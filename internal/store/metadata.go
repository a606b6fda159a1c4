package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cinemind/internal/metadata"
)

// CachedDetails returns persisted enrichment details for title.
func (s *Store) CachedDetails(ctx context.Context, title string) (metadata.Details, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT details_json FROM metadata_cache WHERE title = ?`, strings.TrimSpace(title)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return metadata.Details{}, false, nil
	}
	if err != nil {
		return metadata.Details{}, false, fmt.Errorf("read cached details: %w", err)
	}
	var details metadata.Details
	if err := json.Unmarshal([]byte(payload), &details); err != nil {
		return metadata.Details{}, false, fmt.Errorf("decode cached details for %q: %w", title, err)
	}
	return details, true, nil
}

// StoreDetails persists enrichment details for title, replacing any previous entry.
func (s *Store) StoreDetails(ctx context.Context, title string, details metadata.Details) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO metadata_cache (title, details_json, fetched_at) VALUES (?, ?, ?)
         ON CONFLICT(title) DO UPDATE SET details_json = excluded.details_json, fetched_at = excluded.fetched_at`,
		strings.TrimSpace(title), string(payload), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store details: %w", err)
	}
	return nil
}

// ClearDetails removes every cached entry and reports how many were dropped.
func (s *Store) ClearDetails(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM metadata_cache`)
	if err != nil {
		return 0, fmt.Errorf("clear metadata cache: %w", err)
	}
	return res.RowsAffected()
}
