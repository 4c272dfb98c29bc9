package flow

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultEdgeLabel is the placeholder used by the connected-input snapshot
// when neither the edge nor the source node carries a label.
const DefaultEdgeLabel = "Input"

// Edge is a directed, optionally labeled connection from a producer node
// to a consumer node.
type Edge struct {
	// ID uniquely identifies the edge.
	ID string `json:"id"`

	// Source is the producer node ID.
	Source string `json:"source"`

	// Target is the consumer node ID.
	Target string `json:"target"`

	// Label disambiguates multiple inputs to the same target. Optional.
	Label string `json:"label,omitempty"`
}

// Document is the exportable workflow unit: everything needed to persist
// and restore a workflow session.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Workflow is the single source of truth for one open workflow session:
// the node list, the edge list, and the structural operations over them.
//
// All mutations go through Workflow methods, which hold the lock for the
// duration of the change so no partial write is ever observable. Result
// write-backs from asynchronous executions go through CommitOutput and
// CommitError, which drop stale commits via per-node generation tokens.
//
// Invariant: the edge list never contains an edge whose source or target
// is absent from the node list. DeleteNode cascades; Connect validates.
type Workflow struct {
	mu sync.RWMutex

	id        string
	name      string
	nodes     []Node
	edges     []Edge
	createdAt time.Time
	updatedAt time.Time

	// generations issues monotonically increasing execution tokens per
	// node. A commit whose token is older than the latest issued token for
	// its node is a no-op, so a superseded execution cannot overwrite a
	// newer result.
	generations map[string]uint64
}

// NewWorkflow creates an empty workflow with a fresh ID.
func NewWorkflow(name string) *Workflow {
	now := time.Now().UTC()
	return &Workflow{
		id:          uuid.NewString(),
		name:        name,
		nodes:       make([]Node, 0),
		edges:       make([]Edge, 0),
		createdAt:   now,
		updatedAt:   now,
		generations: make(map[string]uint64),
	}
}

// Restore rebuilds a workflow session from a persisted document.
//
// Edges referencing missing nodes are dropped rather than restored, so a
// corrupted document cannot break the structural invariant.
func Restore(doc Document) *Workflow {
	w := &Workflow{
		id:          doc.ID,
		name:        doc.Name,
		nodes:       append([]Node(nil), doc.Nodes...),
		edges:       make([]Edge, 0, len(doc.Edges)),
		createdAt:   doc.CreatedAt,
		updatedAt:   doc.UpdatedAt,
		generations: make(map[string]uint64),
	}

	present := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		present[n.ID] = true
	}
	for _, e := range doc.Edges {
		if present[e.Source] && present[e.Target] {
			w.edges = append(w.edges, e)
		}
	}
	return w
}

// ID returns the workflow identifier.
func (w *Workflow) ID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.id
}

// Name returns the workflow display name.
func (w *Workflow) Name() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.name
}

// Rename updates the workflow display name.
func (w *Workflow) Rename(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.name = name
	w.updatedAt = time.Now().UTC()
}

// NewNode creates a node of the given kind with default data at the given
// position, adds it, and returns its ID.
func (w *Workflow) NewNode(kind Kind, pos Position) (string, error) {
	node := Node{
		ID:       uuid.NewString(),
		Kind:     kind,
		Position: pos,
		Data:     defaultData(kind),
	}
	if err := w.AddNode(node); err != nil {
		return "", err
	}
	return node.ID, nil
}

// defaultData returns the kind-specific default data for a freshly
// created node.
func defaultData(kind Kind) NodeData {
	switch kind {
	case KindSearch:
		return NodeData{Mode: ModeSearch}
	case KindRepository:
		return NodeData{TopK: 5}
	default:
		return NodeData{}
	}
}

// AddNode registers a node in the graph.
//
// Returns a GraphError if the ID is empty, the kind is unknown, or a node
// with the same ID already exists.
func (w *Workflow) AddNode(node Node) error {
	if node.ID == "" {
		return &GraphError{Message: "node ID cannot be empty", Code: "EMPTY_ID"}
	}
	if !node.Kind.Valid() {
		return &GraphError{Message: "unknown node kind: " + string(node.Kind), Code: "UNKNOWN_KIND"}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.findNode(node.ID) >= 0 {
		return &GraphError{Message: "duplicate node ID: " + node.ID, Code: "DUPLICATE_NODE"}
	}

	w.nodes = append(w.nodes, node)
	w.updatedAt = time.Now().UTC()
	return nil
}

// Update applies fn to the node's data under the workflow lock.
//
// Because fn mutates the existing record in place, sibling fields it does
// not touch are preserved; there is no way to accidentally drop them with
// a partial overwrite.
func (w *Workflow) Update(nodeID string, fn func(*NodeData)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.findNode(nodeID)
	if i < 0 {
		return &GraphError{Message: "node not found: " + nodeID, Code: "NODE_NOT_FOUND"}
	}

	fn(&w.nodes[i].Data)
	w.updatedAt = time.Now().UTC()
	return nil
}

// MoveNode updates a node's canvas position.
func (w *Workflow) MoveNode(nodeID string, pos Position) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.findNode(nodeID)
	if i < 0 {
		return &GraphError{Message: "node not found: " + nodeID, Code: "NODE_NOT_FOUND"}
	}

	w.nodes[i].Position = pos
	w.updatedAt = time.Now().UTC()
	return nil
}

// ResizeNode sets a node's explicit size. Rejected for kinds that do not
// declare the Resizable capability.
func (w *Workflow) ResizeNode(nodeID string, size Size) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.findNode(nodeID)
	if i < 0 {
		return &GraphError{Message: "node not found: " + nodeID, Code: "NODE_NOT_FOUND"}
	}
	if !w.nodes[i].Kind.Capabilities().Resizable {
		return &GraphError{Message: "node kind is not resizable: " + string(w.nodes[i].Kind), Code: "NOT_RESIZABLE"}
	}

	w.nodes[i].Size = &size
	w.updatedAt = time.Now().UTC()
	return nil
}

// DeleteNode removes a node and every edge touching it.
func (w *Workflow) DeleteNode(nodeID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.findNode(nodeID)
	if i < 0 {
		return &GraphError{Message: "node not found: " + nodeID, Code: "NODE_NOT_FOUND"}
	}

	w.nodes = append(w.nodes[:i], w.nodes[i+1:]...)

	kept := w.edges[:0]
	for _, e := range w.edges {
		if e.Source != nodeID && e.Target != nodeID {
			kept = append(kept, e)
		}
	}
	w.edges = kept

	delete(w.generations, nodeID)
	w.updatedAt = time.Now().UTC()
	return nil
}

// Connect creates an edge from source to target.
//
// Validation: both endpoints must exist, must be distinct (self-loops are
// rejected here rather than tolerated downstream), the source must emit
// output, the target must accept input, and the exact edge must not
// already exist.
func (w *Workflow) Connect(sourceID, targetID, label string) (Edge, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if sourceID == targetID {
		return Edge{}, &GraphError{Message: "cannot connect a node to itself", Code: "SELF_LOOP"}
	}

	si := w.findNode(sourceID)
	if si < 0 {
		return Edge{}, &GraphError{Message: "source node not found: " + sourceID, Code: "NODE_NOT_FOUND"}
	}
	ti := w.findNode(targetID)
	if ti < 0 {
		return Edge{}, &GraphError{Message: "target node not found: " + targetID, Code: "NODE_NOT_FOUND"}
	}

	if !w.nodes[si].Kind.Capabilities().EmitsOutput {
		return Edge{}, &GraphError{Message: "source kind emits no output: " + string(w.nodes[si].Kind), Code: "NO_OUTPUT"}
	}
	if !w.nodes[ti].Kind.Capabilities().AcceptsInput {
		return Edge{}, &GraphError{Message: "target kind accepts no input: " + string(w.nodes[ti].Kind), Code: "NO_INPUT"}
	}

	for _, e := range w.edges {
		if e.Source == sourceID && e.Target == targetID {
			return Edge{}, &GraphError{Message: "edge already exists", Code: "DUPLICATE_EDGE"}
		}
	}

	edge := Edge{
		ID:     uuid.NewString(),
		Source: sourceID,
		Target: targetID,
		Label:  label,
	}
	w.edges = append(w.edges, edge)
	w.updatedAt = time.Now().UTC()
	return edge, nil
}

// DeleteConnection removes a single edge by ID.
func (w *Workflow) DeleteConnection(edgeID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, e := range w.edges {
		if e.ID == edgeID {
			w.edges = append(w.edges[:i], w.edges[i+1:]...)
			w.updatedAt = time.Now().UTC()
			return nil
		}
	}
	return &GraphError{Message: "edge not found: " + edgeID, Code: "EDGE_NOT_FOUND"}
}

// UpdateEdgeLabel relabels an edge.
func (w *Workflow) UpdateEdgeLabel(edgeID, label string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.edges {
		if w.edges[i].ID == edgeID {
			w.edges[i].Label = label
			w.updatedAt = time.Now().UTC()
			return nil
		}
	}
	return &GraphError{Message: "edge not found: " + edgeID, Code: "EDGE_NOT_FOUND"}
}

// Clear resets the workflow to an empty graph.
func (w *Workflow) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nodes = w.nodes[:0]
	w.edges = w.edges[:0]
	w.generations = make(map[string]uint64)
	w.updatedAt = time.Now().UTC()
}

// Node returns a copy of the node with the given ID.
func (w *Workflow) Node(nodeID string) (Node, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	i := w.findNode(nodeID)
	if i < 0 {
		return Node{}, false
	}
	return w.nodes[i], true
}

// Nodes returns a copy of the node list in insertion order.
func (w *Workflow) Nodes() []Node {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]Node(nil), w.nodes...)
}

// Edges returns a copy of the edge list in insertion order.
func (w *Workflow) Edges() []Edge {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]Edge(nil), w.edges...)
}

// Snapshot exports the workflow as a persistable document.
func (w *Workflow) Snapshot() Document {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return Document{
		ID:        w.id,
		Name:      w.name,
		Nodes:     append([]Node(nil), w.nodes...),
		Edges:     append([]Edge(nil), w.edges...),
		CreatedAt: w.createdAt,
		UpdatedAt: w.updatedAt,
	}
}

// BeginExecution stamps a new execution of the node and returns its
// generation token. Commits carrying an older token are dropped.
func (w *Workflow) BeginExecution(nodeID string) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.findNode(nodeID) < 0 {
		return 0, &GraphError{Message: "node not found: " + nodeID, Code: "NODE_NOT_FOUND"}
	}

	w.generations[nodeID]++
	return w.generations[nodeID], nil
}

// CommitOutput writes a successful execution result.
//
// Clears any prior error. ActiveTab is clamped to the new item range and
// reset to zero when the item count changed. Returns false when the commit
// was dropped because a newer execution has been stamped since.
func (w *Workflow) CommitOutput(nodeID string, gen uint64, output *NodeOutput) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.generations[nodeID] != gen {
		return false
	}
	i := w.findNode(nodeID)
	if i < 0 {
		return false
	}

	data := &w.nodes[i].Data
	prevCount := data.Output.ItemCount()
	data.Output = output
	data.Error = ""

	newCount := output.ItemCount()
	if newCount != prevCount || data.ActiveTab >= newCount || data.ActiveTab < 0 {
		data.ActiveTab = 0
	}

	w.updatedAt = time.Now().UTC()
	return true
}

// CommitError writes a failed execution's display message and clears any
// stale output that would otherwise still render. Returns false when the
// commit was dropped as stale.
func (w *Workflow) CommitError(nodeID string, gen uint64, message string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.generations[nodeID] != gen {
		return false
	}
	i := w.findNode(nodeID)
	if i < 0 {
		return false
	}

	data := &w.nodes[i].Data
	data.Error = message
	data.Output = nil
	data.ActiveTab = 0

	w.updatedAt = time.Now().UTC()
	return true
}

// SetActiveTab selects which output item a multi-output node displays,
// clamped to the valid range.
func (w *Workflow) SetActiveTab(nodeID string, tab int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.findNode(nodeID)
	if i < 0 {
		return &GraphError{Message: "node not found: " + nodeID, Code: "NODE_NOT_FOUND"}
	}

	data := &w.nodes[i].Data
	count := data.Output.ItemCount()
	if count == 0 {
		data.ActiveTab = 0
		return nil
	}
	if tab < 0 {
		tab = 0
	}
	if tab >= count {
		tab = count - 1
	}
	data.ActiveTab = tab
	return nil
}

// findNode returns the index of the node with the given ID, or -1.
// Callers must hold the lock.
func (w *Workflow) findNode(nodeID string) int {
	for i := range w.nodes {
		if w.nodes[i].ID == nodeID {
			return i
		}
	}
	return -1
}
