// Package preflight provides readiness checks for the filesystem paths,
// database, and OMDb connectivity that CineMind depends on.
//
// The daemon runs RunAll at startup and logs each failure; the CLI "cinemind
// status" command renders the same results as a table. A missing OMDb key is
// reported as disabled rather than failed, since the gateway degrades to
// placeholder details.
package preflight
