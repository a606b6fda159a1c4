// Package catalog holds the per-movie metadata table that every ranking
// strategy reads.
//
// A Catalog is built once from an ordered slice of Movie rows. Row positions
// become stable zero-based IDs that line up with the similarity matrix, and the
// table is read-only afterwards so it can be shared across goroutines without
// locking. Title lookup is deterministic: when titles repeat, the first row in
// load order wins.
package catalog
