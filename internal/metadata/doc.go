// Package metadata implements the enrichment gateway that decorates movie
// titles with poster, plot, cast, director, runtime, and rating.
//
// Lookup never fails. Successful responses are cached for the life of the
// process (and optionally in the database); every failure mode is classified,
// logged, counted, and answered with placeholder details. Remote calls are
// collapsed per title, rate limited, guarded by a circuit breaker, and bounded
// by a fixed timeout. Nothing is retried.
package metadata
