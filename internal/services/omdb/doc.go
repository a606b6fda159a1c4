// Package omdb provides the minimal OMDb API client used by the metadata
// gateway.
//
// It exposes a single by-title lookup that requests the full plot. Failures are
// returned as classified errors (HTTP status, decode, not found) so the caller
// can decide how to degrade. The client never retries. Options allow tests to
// supply custom HTTP clients.
package omdb
