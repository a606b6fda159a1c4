// Package logging assembles structured slog loggers and formatting helpers used
// across CineMind.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so API handlers and the metadata
// gateway automatically tag log lines with request IDs, session IDs, and the
// ranking strategy in play. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system.
package logging
