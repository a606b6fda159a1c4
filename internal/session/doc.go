// Package session holds per-user browsing state: the current page, the last
// recommendation list, the selected mood and its movies, and the watchlist.
//
// State values are independent of one another and each carries its own lock,
// so concurrent requests for different sessions never contend. Nothing in this
// package is persisted.
package session
