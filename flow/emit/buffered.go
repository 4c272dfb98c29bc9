package emit

import "sync"

// BufferedEmitter stores events in memory, organized by workflow ID, and
// provides query capabilities for execution history analysis.
//
// Intended for development, testing, and monitoring views. Everything is
// kept in memory; long-lived sessions with heavy execution volume should
// clear consumed history periodically.
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event // workflowID -> events
}

// HistoryFilter selects events from a workflow's history. All set fields
// must match (AND logic); zero fields match everything.
type HistoryFilter struct {
	// NodeID filters by node (empty = no filter).
	NodeID string

	// Msg filters by event message (empty = no filter).
	Msg string
}

// NewBufferedEmitter creates an empty BufferedEmitter.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{events: make(map[string][]Event)}
}

// Emit stores the event. Safe for concurrent use.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[event.WorkflowID] = append(b.events[event.WorkflowID], event)
}

// History returns all events for a workflow in emission order.
// Returns an empty slice, never nil.
func (b *BufferedEmitter) History(workflowID string) []Event {
	return b.HistoryWithFilter(workflowID, HistoryFilter{})
}

// HistoryWithFilter returns the workflow's events matching the filter,
// in emission order. Returns an empty slice, never nil.
func (b *BufferedEmitter) HistoryWithFilter(workflowID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[workflowID]
	result := make([]Event, 0, len(events))
	for _, event := range events {
		if filter.NodeID != "" && event.NodeID != filter.NodeID {
			continue
		}
		if filter.Msg != "" && event.Msg != filter.Msg {
			continue
		}
		result = append(result, event)
	}
	return result
}

// Clear removes stored events for the workflow, or every workflow when
// workflowID is empty.
func (b *BufferedEmitter) Clear(workflowID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if workflowID == "" {
		b.events = make(map[string][]Event)
		return
	}
	delete(b.events, workflowID)
}
