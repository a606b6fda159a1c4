// Package services defines shared utilities consumed by the ranking core, the
// HTTP API, and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request and session identifiers for logging
//     and tracing.
//   - Structured error markers plus the Wrap helper so callers can map
//     failures to user-visible outcomes (not found vs bad request vs outage).
//
// External service clients live in subpackages (see omdb).
package services
