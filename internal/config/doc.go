// Package config loads, normalizes, and validates CineMind configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OMDB_API_KEY. The Config type centralizes every knob the daemon and CLI need:
// where the catalog database lives, how the metadata gateway talks to OMDb,
// and how many results each ranking strategy returns.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
