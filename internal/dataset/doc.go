// Package dataset parses the offline-built movie table and similarity matrix
// that `cinemind import` loads into the store.
//
// Movies come as CSV (header title,genres,popularity,vote_average,vote_count)
// or as a JSON array of objects with the same keys. The matrix is a headerless
// CSV of N rows of N floats.
package dataset
