package flow

import "errors"

// ErrBusy is returned when a node execution is requested while a previous
// execution of the same node is still in flight.
var ErrBusy = errors.New("node execution already in flight")

// ErrNotExecutable is returned when a node's precondition gate fails:
// the node has no connected input and no local field that could produce
// meaningful output.
var ErrNotExecutable = errors.New("node has no input to execute with")

// GraphError represents a structural error from Workflow operations.
type GraphError struct {
	// Message is the human-readable error description.
	Message string

	// Code is a machine-readable error code for programmatic handling.
	Code string
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// NodeError wraps an error produced while executing a specific node.
type NodeError struct {
	// NodeID identifies which node produced this error.
	NodeID string

	// Message is the human-readable error description.
	Message string

	// Cause is the underlying error, when one exists.
	Cause error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	if e.NodeID != "" {
		return "node " + e.NodeID + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the underlying cause for error wrapping support.
func (e *NodeError) Unwrap() error {
	return e.Cause
}

// errorMessage converts a caught execution error into the display string
// written to a node's Error field.
func errorMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	msg := err.Error()
	if msg == "" {
		return "unknown error"
	}
	return msg
}
