// Package emit provides pluggable observability for node execution.
package emit

// Emitter receives observability events from workflow execution.
//
// Implementations should be:
//   - Non-blocking: never slow down node execution
//   - Thread-safe: independent nodes execute concurrently
//   - Resilient: an observability failure must not fail a node
//
// Emit must not panic; internal errors should be handled internally.
type Emitter interface {
	Emit(event Event)
}
