package flow

import "strings"

// Input is one resolved upstream payload item for a node: the item itself
// plus the label of the edge that delivered it.
//
// Label falls back from the edge's label to the source node's label to
// DefaultEdgeLabel, in that order.
type Input struct {
	// Label identifies which connection produced this item.
	Label string

	// Text is the item's pre-rendered text.
	Text string

	// Value is the item's structured value.
	Value any
}

// ConnectedInput is the on-demand snapshot of everything flowing into a
// node: the ordered per-item list plus the merged Data.
//
// It is computed, never persisted. Order is edge insertion order, then
// item order within each source's output. A source that has never executed
// (or produced an empty output) contributes nothing: absence, not an empty
// string.
type ConnectedInput struct {
	// Items is the flattened, labeled item list.
	Items []Input

	// Data is the merged payload across all sources.
	Data *Data[any]
}

// IsEmpty reports whether nothing reaches the node.
func (c ConnectedInput) IsEmpty() bool {
	return len(c.Items) == 0 && c.Data.IsEmpty()
}

// Text returns the combined text of all inputs using DefaultSeparator.
func (c ConnectedInput) Text() string {
	return DataText(c.Data)
}

// TextSep is Text with an explicit separator.
func (c ConnectedInput) TextSep(separator string) string {
	return DataTextSep(c.Data, separator)
}

// Labeled renders each input as a comment-headed block so a model can see
// which labeled connection produced which text:
//
//	// Search Results
//	first input text
//
//	// Notes
//	second input text
func (c ConnectedInput) Labeled() string {
	if len(c.Items) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(c.Items))
	for _, in := range c.Items {
		label := in.Label
		if label == "" {
			label = DefaultEdgeLabel
		}
		blocks = append(blocks, "// "+label+"\n"+strings.TrimSpace(in.Text))
	}
	return strings.Join(blocks, "\n\n")
}

// ConnectedData resolves the merged upstream payload for a node.
//
// Walks all edges whose target is the node, in insertion order, and
// concatenates each source's output items. Sources without output
// contribute nothing. A node with no incoming edges resolves to an empty
// Data (items slice present, zero length), never nil.
func (w *Workflow) ConnectedData(nodeID string) *Data[any] {
	return w.ConnectedInput(nodeID).Data
}

// ConnectedText resolves the merged upstream payload as combined text.
func (w *Workflow) ConnectedText(nodeID string) string {
	return DataText(w.ConnectedData(nodeID))
}

// ConnectedInput resolves the full labeled snapshot for a node.
func (w *Workflow) ConnectedInput(nodeID string) ConnectedInput {
	w.mu.RLock()
	defer w.mu.RUnlock()

	inputs := make([]Input, 0)
	items := make([]DataItem[any], 0)

	for _, e := range w.edges {
		if e.Target != nodeID {
			continue
		}

		si := w.findNode(e.Source)
		if si < 0 {
			continue // cannot happen while the structural invariant holds
		}
		source := &w.nodes[si]

		output := source.Data.Output
		if output == nil || output.Data.IsEmpty() {
			continue
		}

		label := e.Label
		if label == "" {
			label = source.Data.Label
		}

		if len(output.Data.Items) == 0 {
			// Text-only output: surface it as a single item.
			inputs = append(inputs, Input{Label: label, Text: output.Data.Text, Value: output.Data.Text})
			items = append(items, DataItem[any]{Value: output.Data.Text, Text: output.Data.Text})
			continue
		}

		for _, item := range output.Data.Items {
			inputs = append(inputs, Input{Label: label, Text: item.Text, Value: item.Value})
			items = append(items, item)
		}
	}

	return ConnectedInput{
		Items: inputs,
		Data:  &Data[any]{Items: items},
	}
}
