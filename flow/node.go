package flow

// Kind identifies a node type in the workflow graph.
//
// Each kind pairs a data shape (the per-kind fields of NodeData it reads),
// an execute handler registered with the Executor, and a capability
// declaration returned by Capabilities.
type Kind string

// Supported node kinds.
const (
	// KindPrompt sends its prompt plus connected text to a chat model.
	KindPrompt Kind = "prompt"

	// KindSearch covers three mutually exclusive behaviors selected by
	// NodeData.Mode: web search, long-form research, and URL fetching.
	KindSearch Kind = "search"

	// KindTranslate translates each connected item independently.
	KindTranslate Kind = "translate"

	// KindFile extracts plain text from an uploaded file.
	KindFile Kind = "file"

	// KindImage generates an image from a prompt.
	KindImage Kind = "image"

	// KindAudio synthesizes speech from text.
	KindAudio Kind = "audio"

	// KindCSV parses delimited text into rows locally (no collaborator).
	KindCSV Kind = "csv"

	// KindRepository runs a top-K similarity query against a vector index.
	KindRepository Kind = "repository"

	// KindCode asks a model for code via a forced tool call, then runs it
	// once per connected item.
	KindCode Kind = "code"

	// KindRewrite rewrites text with a requested tone and style.
	KindRewrite Kind = "rewrite"
)

// SearchMode selects the behavior of a search node.
type SearchMode string

// Search node modes.
const (
	ModeSearch   SearchMode = "search"
	ModeResearch SearchMode = "research"
	ModeFetch    SearchMode = "fetch"
)

// Position is a node's 2-D placement on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a node's explicit dimensions, when the user has resized it.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Capabilities declares what a node kind supports.
type Capabilities struct {
	// AcceptsInput reports whether edges may target nodes of this kind.
	AcceptsInput bool

	// EmitsOutput reports whether edges may originate from this kind.
	EmitsOutput bool

	// Resizable reports whether the node box may be resized.
	Resizable bool
}

// Capabilities returns the capability declaration for the kind.
// Unknown kinds get the zero Capabilities (no input, no output).
func (k Kind) Capabilities() Capabilities {
	switch k {
	case KindPrompt, KindSearch, KindTranslate, KindRepository, KindCode, KindRewrite:
		return Capabilities{AcceptsInput: true, EmitsOutput: true, Resizable: true}
	case KindImage, KindAudio:
		return Capabilities{AcceptsInput: true, EmitsOutput: true}
	case KindFile, KindCSV:
		return Capabilities{EmitsOutput: true, Resizable: true}
	default:
		return Capabilities{}
	}
}

// Valid reports whether k is one of the supported node kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPrompt, KindSearch, KindTranslate, KindFile, KindImage,
		KindAudio, KindCSV, KindRepository, KindCode, KindRewrite:
		return true
	}
	return false
}

// Node is one unit of the workflow graph: a typed, positioned box with its
// own data and execution behavior.
type Node struct {
	// ID uniquely identifies the node within its workflow.
	ID string `json:"id"`

	// Kind selects the node's data shape and execute handler.
	Kind Kind `json:"kind"`

	// Position is the node's canvas placement.
	Position Position `json:"position"`

	// Size is set only when the user has explicitly resized the node.
	Size *Size `json:"size,omitempty"`

	// Data holds the node's configuration and results.
	Data NodeData `json:"data"`
}

// NodeData is a node's mutable record: user-edited configuration fields
// plus execution results.
//
// Configuration fields are read per kind; fields irrelevant to a kind stay
// at their zero value. Result fields (Output, Error, ActiveTab) are written
// only through Workflow commit operations so that stale executions cannot
// clobber newer results.
type NodeData struct {
	// Label names the node and doubles as the fallback edge label for
	// consumers when an edge carries no label of its own.
	Label string `json:"label,omitempty"`

	// Prompt is the free-text instruction field. Its meaning is per kind:
	// the chat prompt (prompt), query or instructions (search, repository),
	// task description (code), fallback source text (rewrite, audio, image).
	Prompt string `json:"prompt,omitempty"`

	// Model is the collaborator model identifier to use, when the kind
	// calls a model-backed service.
	Model string `json:"model,omitempty"`

	// Mode selects the search node behavior.
	Mode SearchMode `json:"mode,omitempty"`

	// Domain optionally restricts web search results.
	Domain string `json:"domain,omitempty"`

	// TargetLang is the translation target language code.
	TargetLang string `json:"targetLang,omitempty"`

	// Tone and Style configure the rewrite node.
	Tone  string `json:"tone,omitempty"`
	Style string `json:"style,omitempty"`

	// RepositoryID selects the vector repository to query.
	RepositoryID string `json:"repositoryId,omitempty"`

	// TopK limits repository hits; zero means the handler default.
	TopK int `json:"topK,omitempty"`

	// Query is the repository node's direct, user-typed query.
	Query string `json:"query,omitempty"`

	// URL is the fetch-mode target when the node has no connections.
	URL string `json:"url,omitempty"`

	// FileName and FileData carry an uploaded file for file and csv nodes.
	FileName string `json:"fileName,omitempty"`
	FileData []byte `json:"fileData,omitempty"`

	// Output is the node's last successful result, nil before the first
	// successful execution.
	Output *NodeOutput `json:"output,omitempty"`

	// Error is the display message from the last failed execution, empty
	// after a success.
	Error string `json:"error,omitempty"`

	// ActiveTab indexes into Output items for multi-output nodes. Always
	// clamped to the valid range, reset to zero when the item count changes.
	ActiveTab int `json:"activeTab,omitempty"`
}

// OutputKind tags the variant held by a NodeOutput.
type OutputKind string

// Output variants.
const (
	// OutputText is a single block of text.
	OutputText OutputKind = "text"

	// OutputItems is an ordered multi-item result (search hits, translated
	// items, per-item code runs, repository hits, csv rows).
	OutputItems OutputKind = "items"

	// OutputImage references a generated image blob.
	OutputImage OutputKind = "image"

	// OutputAudio references a generated audio blob.
	OutputAudio OutputKind = "audio"
)

// NodeOutput is the canonical result record shared by every node kind.
//
// It replaces per-kind scalar fields (output text, image URL, audio URL,
// csv rows) with one tagged variant so consumers need a single accessor.
type NodeOutput struct {
	// Kind tags the variant.
	Kind OutputKind `json:"kind"`

	// Data carries the payload for text and items variants. Media variants
	// may also set it so downstream text consumers see a description.
	Data *Data[any] `json:"data,omitempty"`

	// MediaRef is the blob store reference for image and audio variants.
	MediaRef string `json:"mediaRef,omitempty"`
}

// DisplayText extracts the text rendering from any output variant.
// A nil output renders as the empty string.
func (o *NodeOutput) DisplayText() string {
	if o == nil {
		return ""
	}
	return DataText(o.Data)
}

// ItemCount returns the number of items in the output, zero for nil
// outputs and non-item variants.
func (o *NodeOutput) ItemCount() int {
	if o == nil || o.Data == nil {
		return 0
	}
	return len(o.Data.Items)
}

// TextOutput wraps a single text block as a NodeOutput.
func TextOutput(text string) *NodeOutput {
	return &NodeOutput{Kind: OutputText, Data: TextData(text)}
}

// ItemsOutput wraps a multi-item Data as a NodeOutput.
func ItemsOutput(data *Data[any]) *NodeOutput {
	return &NodeOutput{Kind: OutputItems, Data: data}
}
