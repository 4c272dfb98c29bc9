package flow

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dshills/nodecanvas-go/flow/client"
	"github.com/dshills/nodecanvas-go/flow/emit"
)

// BlobStore persists generated binary media (images, audio) and returns
// a stable reference recorded in NodeOutput.MediaRef.
type BlobStore interface {
	// Put stores the blob under a name hint and returns its reference.
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// Env is the execution environment handed to node handlers: every
// collaborator a handler may call lives here.
type Env struct {
	// Services is the external collaborator surface.
	Services client.Services

	// Blobs receives generated media. Nil when no media nodes are used.
	Blobs BlobStore
}

// Handler implements one node kind's execution behavior.
//
// A handler reads the node's data and connected input, calls exactly one
// collaborator concern, and returns the output to commit. It never writes
// node data itself; the Executor owns all write-backs.
type Handler interface {
	// Kind returns the node kind this handler executes.
	Kind() Kind

	// CanExecute is the precondition gate: whether the node, given its
	// data and connected input, can produce meaningful output. The UI
	// disables the trigger on false; the Executor re-checks it anyway.
	CanExecute(node Node, input ConnectedInput) bool

	// Execute performs the node's work and returns its output.
	// Errors are converted to the node's error display string by the
	// Executor; Execute must not write node state.
	Execute(ctx context.Context, env Env, node Node, input ConnectedInput) (*NodeOutput, error)
}

// ExecutorOptions configures an Executor. Zero values are valid: events
// are discarded, metrics are skipped, media nodes fail cleanly without a
// blob store.
type ExecutorOptions struct {
	// Emitter receives execution events. Nil discards them.
	Emitter emit.Emitter

	// Metrics records Prometheus metrics. Nil skips recording.
	Metrics *Metrics

	// Blobs stores generated media.
	Blobs BlobStore
}

// Executor drives node execution over one workflow session.
//
// It owns the per-node runners (busy flags), the handler registry, and
// all result write-backs. Execution follows one state machine for every
// kind: gate, resolve input, execute via handler, commit output or error.
//
// Errors never propagate past the node that produced them: a failed
// execution writes the node's error field and RunNode returns nil. The
// error return of RunNode is reserved for structural problems (unknown
// node, no handler, gate failure, node busy).
type Executor struct {
	wf       *Workflow
	services client.Services
	opts     ExecutorOptions

	mu       sync.Mutex
	handlers map[Kind]Handler
	runners  map[string]*Runner
}

// NewExecutor creates an Executor for the workflow. Register handlers
// before triggering executions.
func NewExecutor(wf *Workflow, services client.Services, opts ExecutorOptions) *Executor {
	return &Executor{
		wf:       wf,
		services: services,
		opts:     opts,
		handlers: make(map[Kind]Handler),
		runners:  make(map[string]*Runner),
	}
}

// Register installs a handler for its kind, replacing any previous one.
func (e *Executor) Register(h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[h.Kind()] = h
}

// RegisterAll installs a set of handlers.
func (e *Executor) RegisterAll(hs ...Handler) {
	for _, h := range hs {
		e.Register(h)
	}
}

// IsProcessing reports whether the node is currently executing.
func (e *Executor) IsProcessing(nodeID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.runners[nodeID]
	return ok && r.IsProcessing()
}

// runner returns the node's Runner, creating it on first use.
func (e *Executor) runner(nodeID string) *Runner {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.runners[nodeID]
	if !ok {
		r = &Runner{}
		e.runners[nodeID] = r
	}
	return r
}

// CanExecute evaluates the node's precondition gate without executing.
// Unknown nodes and kinds without a handler gate false.
func (e *Executor) CanExecute(nodeID string) bool {
	node, ok := e.wf.Node(nodeID)
	if !ok {
		return false
	}

	e.mu.Lock()
	h, ok := e.handlers[node.Kind]
	e.mu.Unlock()
	if !ok {
		return false
	}

	return h.CanExecute(node, e.wf.ConnectedInput(nodeID))
}

// RunNode executes a single node through its handler.
//
// Returns ErrBusy when the node is already executing, ErrNotExecutable
// when the gate fails (the node's data is left untouched, no collaborator
// is called), or a GraphError for unknown nodes and unregistered kinds.
// Collaborator failures are written to the node's error field and do NOT
// surface as a Go error here.
func (e *Executor) RunNode(ctx context.Context, nodeID string) error {
	node, ok := e.wf.Node(nodeID)
	if !ok {
		return &GraphError{Message: "node not found: " + nodeID, Code: "NODE_NOT_FOUND"}
	}

	e.mu.Lock()
	h, ok := e.handlers[node.Kind]
	e.mu.Unlock()
	if !ok {
		return &GraphError{Message: "no handler for kind: " + string(node.Kind), Code: "NO_HANDLER"}
	}

	input := e.wf.ConnectedInput(nodeID)
	if !h.CanExecute(node, input) {
		return ErrNotExecutable
	}

	r := e.runner(nodeID)
	if !r.TryBegin() {
		return ErrBusy
	}
	defer r.End()

	gen, err := e.wf.BeginExecution(nodeID)
	if err != nil {
		return err
	}

	e.emitEvent(nodeID, node.Kind, "node_start", map[string]interface{}{"generation": gen})
	e.opts.Metrics.ExecutionStarted()
	start := time.Now()

	env := Env{Services: e.services, Blobs: e.opts.Blobs}
	output, execErr := h.Execute(ctx, env, node, input)

	latency := time.Since(start)
	e.opts.Metrics.ExecutionFinished()

	if execErr != nil {
		msg := errorMessage(execErr)
		committed := e.wf.CommitError(nodeID, gen, msg)
		e.opts.Metrics.RecordExecution(node.Kind, commitStatus("error", committed), latency)
		e.emitEvent(nodeID, node.Kind, "node_error", map[string]interface{}{
			"error":       msg,
			"duration_ms": latency.Milliseconds(),
			"stale":       !committed,
		})
		return nil
	}

	committed := e.wf.CommitOutput(nodeID, gen, output)
	e.opts.Metrics.RecordExecution(node.Kind, commitStatus("success", committed), latency)
	e.emitEvent(nodeID, node.Kind, "node_end", map[string]interface{}{
		"duration_ms": latency.Milliseconds(),
		"items":       output.ItemCount(),
		"stale":       !committed,
	})
	return nil
}

func commitStatus(status string, committed bool) string {
	if !committed {
		return "stale"
	}
	return status
}

// RunAll batch-executes every executable node in dependency order.
//
// Nodes are grouped into topological levels over the current edges
// (insertion order within a level); each level is awaited before the
// next starts, so downstream nodes always see finished upstream output.
// Nodes whose gate fails are skipped silently, matching the single-node
// behavior of a disabled trigger. Per-node failures stay on their node.
//
// A cycle cannot arise through Connect (self-loops are rejected and both
// endpoints must exist), but Restore of a hand-edited document could hold
// one; the run then aborts before executing anything, with a CYCLE error
// naming the trapped nodes.
func (e *Executor) RunAll(ctx context.Context) error {
	e.emitEvent("", "", "run_all_start", nil)

	levels, trapped := e.topologicalLevels()
	if len(trapped) > 0 {
		e.emitEvent("", "", "run_all_end", map[string]interface{}{"trapped": trapped})
		return &GraphError{
			Message: "workflow contains a dependency cycle through nodes: " + strings.Join(trapped, ", "),
			Code:    "CYCLE",
		}
	}

	for _, level := range levels {
		if err := ctx.Err(); err != nil {
			return err
		}

		var wg sync.WaitGroup
		for _, nodeID := range level {
			if !e.CanExecute(nodeID) {
				continue
			}
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				// Gate and busy failures are per-node no-ops here.
				_ = e.RunNode(ctx, id)
			}(nodeID)
		}
		wg.Wait()
	}

	e.emitEvent("", "", "run_all_end", nil)
	return nil
}

// topologicalLevels computes Kahn levels over the current graph.
// The second return lists nodes trapped in a cycle, if any.
func (e *Executor) topologicalLevels() ([][]string, []string) {
	nodes := e.wf.Nodes()
	edges := e.wf.Edges()

	indegree := make(map[string]int, len(nodes))
	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		indegree[n.ID] = 0
		order = append(order, n.ID)
	}
	outgoing := make(map[string][]string, len(nodes))
	for _, edge := range edges {
		outgoing[edge.Source] = append(outgoing[edge.Source], edge.Target)
		indegree[edge.Target]++
	}

	levels := make([][]string, 0)
	remaining := len(nodes)
	done := make(map[string]bool, len(nodes))

	for remaining > 0 {
		level := make([]string, 0)
		for _, id := range order {
			if !done[id] && indegree[id] == 0 {
				level = append(level, id)
			}
		}
		if len(level) == 0 {
			break // cycle
		}

		for _, id := range level {
			done[id] = true
			remaining--
			for _, target := range outgoing[id] {
				indegree[target]--
			}
		}
		levels = append(levels, level)
	}

	trapped := make([]string, 0)
	for _, id := range order {
		if !done[id] {
			trapped = append(trapped, id)
		}
	}
	return levels, trapped
}

func (e *Executor) emitEvent(nodeID string, kind Kind, msg string, meta map[string]interface{}) {
	if e.opts.Emitter == nil {
		return
	}
	e.opts.Emitter.Emit(emit.Event{
		WorkflowID: e.wf.ID(),
		NodeID:     nodeID,
		Kind:       string(kind),
		Msg:        msg,
		Meta:       meta,
	})
}
