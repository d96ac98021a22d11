// Package logging provides concrete implementations of the songplays.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes prefixed lines to stderr (or any writer) with thread-safe output
//   - NullLogger: Discards all messages (useful for testing and library use)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
