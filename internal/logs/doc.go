// Package logs reads the daemon log file for `cinemind logs`.
//
// Last returns the final lines of the file along with the byte offset where
// reading stopped; Follow picks up from that offset and streams complete lines
// as they are appended, restarting from the top when the file is truncated.
package logs
