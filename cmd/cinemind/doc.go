// Package main hosts the CineMind CLI entrypoint and command graph.
//
// Query commands (recommend, charts, movies, moods, details) bootstrap the
// ranking engine straight from the database so they work without a running
// daemon. serve runs the HTTP API in the foreground; status and stop talk to
// it through the instance lock, pid file, and /api/status.
//
// Keep this package lean: add behavior to the internal packages first and
// surface it here through commands or flags.
package main
