// Package store persists the movie catalog, the similarity matrix, and the
// metadata cache in a single SQLite database.
//
// The dataset is replaced wholesale by an import and read once at startup;
// the metadata cache is written through by the enrichment gateway. The
// schema is versioned and a mismatch is reported rather than migrated.
package store
