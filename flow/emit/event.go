package emit

// Event is an observability event emitted during node execution.
//
// Events cover node execution start/end, execution errors, run-all
// batches, and structural changes worth tracing. They flow to an Emitter
// which can log them, buffer them, or turn them into spans.
type Event struct {
	// WorkflowID identifies the workflow session that emitted this event.
	WorkflowID string

	// NodeID identifies which node the event concerns.
	// Empty for workflow-level events (run_all_start, workflow_cleared).
	NodeID string

	// Kind is the node kind, when the event concerns a node.
	Kind string

	// Msg names the event: "node_start", "node_end", "node_error",
	// "run_all_start", "run_all_end".
	Msg string

	// Meta contains additional structured data. Common keys:
	//   - "duration_ms": execution duration in milliseconds
	//   - "error": display message of a failed execution
	//   - "items": item count of a multi-item output
	//   - "generation": the execution's generation token
	//   - "stale": true when a commit was dropped as superseded
	Meta map[string]interface{}
}
