// Package client defines the collaborator contract: the external services
// node execute handlers call for every network or heavy-compute operation.
package client

import "context"

// Message represents a single message in a model conversation.
type Message struct {
	// Role identifies the message sender. Use the Role* constants.
	Role string

	// Content contains the message text.
	Content string
}

// Standard role constants, aligned with the conventions of the major
// model providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToolSpec describes a tool the model may call. Schema follows JSON
// Schema and describes the expected input parameters.
type ToolSpec struct {
	Name        string
	Description string
	Schema      map[string]interface{}
}

// ToolCall is a structured tool invocation emitted by the model.
type ToolCall struct {
	// Name matches a ToolSpec.Name from the request.
	Name string

	// Input holds the call arguments, shaped by the ToolSpec schema.
	Input map[string]interface{}
}

// ChatRequest is a chat-completion request.
type ChatRequest struct {
	// Model is the provider model identifier. Empty selects the
	// provider's default.
	Model string

	// System holds optional system instructions.
	System string

	// Messages is the conversation so far.
	Messages []Message

	// Tools, when non-empty, are offered to the model.
	Tools []ToolSpec

	// ForceTool, when set, requires the model to answer with a call to
	// the named tool rather than free text.
	ForceTool string
}

// ChatResponse is a chat-completion result: assistant text and/or
// structured tool calls.
type ChatResponse struct {
	Text      string
	ToolCalls []ToolCall
}

// SearchResult is one ordered web search hit.
type SearchResult struct {
	Title   string `json:"title,omitempty"`
	Source  string `json:"source,omitempty"`
	Content string `json:"content"`
}

// RewriteRequest configures a tone/style rewrite.
type RewriteRequest struct {
	Model    string
	Text     string
	Language string
	Tone     string
	Style    string
}

// ImageRequest configures image generation.
type ImageRequest struct {
	Model  string
	Prompt string

	// ReferenceImages optionally conditions generation on prior images.
	ReferenceImages [][]byte
}

// ExecutionResult reports a code run. Failure is in-band: a failed run
// returns Success false with Error set, not a Go error. The error return
// of ExecuteCode is reserved for transport failures reaching the
// interpreter at all.
type ExecutionResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`
}

// SimilarityHit is one vector search match.
type SimilarityHit struct {
	// DocumentName names the source document of the matched chunk.
	DocumentName string

	// Text is the matched chunk text.
	Text string

	// Score is the cosine similarity in [0, 1].
	Score float64
}

// ModelInfo describes one available model.
type ModelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ChatService provides chat completion.
type ChatService interface {
	// Chat sends a conversation to the model and returns its response.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// SearchService provides web search, long-form research, and URL fetching.
type SearchService interface {
	// Search returns ordered results for the query. Domain, when
	// non-empty, restricts results to one site.
	Search(ctx context.Context, query, domain string) ([]SearchResult, error)

	// Research produces long-form text for free-text instructions.
	Research(ctx context.Context, instructions string) (string, error)

	// FetchURL retrieves a URL and returns its extracted text.
	FetchURL(ctx context.Context, url string) (string, error)
}

// TranslateService provides translation and tone/style rewriting.
type TranslateService interface {
	// Translate renders text into the target language. Rejects binary
	// input as unsupported.
	Translate(ctx context.Context, targetLang, text string) (string, error)

	// Rewrite rewrites text with the requested tone and style.
	Rewrite(ctx context.Context, req RewriteRequest) (string, error)
}

// MediaService generates binary media.
type MediaService interface {
	// GenerateImage renders a prompt into an image blob.
	GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error)

	// GenerateAudio synthesizes speech for the text.
	GenerateAudio(ctx context.Context, model, text string) ([]byte, error)
}

// DocumentService extracts text from files and embeds text.
type DocumentService interface {
	// ExtractText converts a file blob into plain text.
	ExtractText(ctx context.Context, name string, blob []byte) (string, error)

	// EmbedText returns the embedding vector for the text.
	EmbedText(ctx context.Context, model, text string) ([]float64, error)
}

// VectorService runs similarity queries against a named repository.
type VectorService interface {
	// QuerySimilar returns the top-K most similar chunks, best first.
	QuerySimilar(ctx context.Context, repositoryID, query string, topK int) ([]SimilarityHit, error)
}

// CodeService executes generated code.
type CodeService interface {
	// ExecuteCode runs code with the given packages available. Run
	// failures are reported in-band via ExecutionResult; the error return
	// is for transport failures only.
	ExecuteCode(ctx context.Context, code string, packages []string) (ExecutionResult, error)
}

// ModelCatalog lists available models by capability.
type ModelCatalog interface {
	// ListModels returns models supporting the capability tag
	// (e.g. "chat", "image", "audio", "embedding").
	ListModels(ctx context.Context, capability string) ([]ModelInfo, error)
}

// Services is the full collaborator surface an Executor hands to node
// handlers. Compose partial providers with Stack; use Mock in tests.
type Services interface {
	ChatService
	SearchService
	TranslateService
	MediaService
	DocumentService
	VectorService
	CodeService
	ModelCatalog
}
