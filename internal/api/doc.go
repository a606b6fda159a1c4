// Package api defines wire-format types and the service layer shared by the
// HTTP API and the CLI. It translates catalog rows, ranked results, session
// state, and enrichment details into transport-friendly DTOs.
//
// # Key Types
//
// Service: runs a ranking strategy, records the outcome in the caller's
// session, enriches results through the metadata gateway, and counts the
// request in metrics.
//
// RecommendationResponse: ranked titles with optional scores and details.
//
// StatusResponse: daemon state, dataset size, and gateway health.
//
// # Design Notes
//
// DTOs use snake_case JSON tags to match the stored catalog fields. Scores
// are omitted for mood and chart listings, which are ordered by catalog
// fields rather than a computed score. Enrichment runs concurrently with a
// small bound, since each lookup may wait up to the gateway timeout.
package api
