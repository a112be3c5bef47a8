// Package logtail reads the tail of the client log and decodes its records.
//
// Read returns the last N lines of a file using a ring buffer, so a large
// log costs O(N) memory. Parse decodes a line written by slog's JSON handler
// into an Entry (time, level, message and the remaining attributes sorted by
// key); anything that is not a JSON record is kept verbatim as the message.
//
// Styling is left to the UI.
package logtail
