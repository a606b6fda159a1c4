// Package daemon coordinates the long-running CineMind process.
//
// It wires the recommendation service, the metadata gateway, and the store
// into a single lifecycle with flock-based locking to prevent multiple
// instances writing the metadata cache. The daemon owns the HTTP API server:
// routing, bearer authentication, request IDs, error mapping, and request
// metrics.
//
// Keep orchestration logic here: ranking and enrichment live in their own
// packages while the daemon focuses on startup, shutdown, and transport.
package daemon
