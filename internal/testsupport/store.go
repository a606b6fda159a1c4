package testsupport

import (
	"context"
	"testing"

	"cinemind/internal/config"
	"cinemind/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(context.Background(), cfg.Paths.Database)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// MustSeedStore replaces the store's dataset with the sample dataset.
func MustSeedStore(t testing.TB, st *store.Store) {
	t.Helper()

	if err := st.ReplaceDataset(context.Background(), SampleMovies(), SampleMatrix(t)); err != nil {
		t.Fatalf("store.ReplaceDataset: %v", err)
	}
}
