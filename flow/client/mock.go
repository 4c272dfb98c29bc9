package client

import (
	"context"
	"fmt"
	"sync"
)

// Mock is a test implementation of Services.
//
// It records every call, returns scripted responses, and supports error
// injection, so node handlers can be verified without network access.
//
// Chat responses are consumed in order, repeating the last one once the
// script runs out (useful when a handler chats twice: query synthesis,
// then something else). All other operations return fixed values.
//
// Example:
//
//	mock := &client.Mock{
//	    ChatResponses: []client.ChatResponse{{Text: "hello"}},
//	    SearchResults: []client.SearchResult{{Title: "t", Content: "c"}},
//	}
//	// ... run handler ...
//	if mock.CallCount("search") != 1 {
//	    t.Fatal("expected one search call")
//	}
type Mock struct {
	// ChatResponses is the scripted sequence of chat replies.
	ChatResponses []ChatResponse

	// SearchResults is returned by every Search call.
	SearchResults []SearchResult

	// ResearchText is returned by Research.
	ResearchText string

	// FetchedText is returned by FetchURL.
	FetchedText string

	// TranslatePrefix prefixes translated text, making per-item
	// translation observable ("[de] original text").
	TranslatePrefix string

	// RewrittenText is returned by Rewrite.
	RewrittenText string

	// ImageBlob and AudioBlob are returned by the media operations.
	ImageBlob []byte
	AudioBlob []byte

	// ExtractedText is returned by ExtractText.
	ExtractedText string

	// Embedding is returned by EmbedText.
	Embedding []float64

	// Hits is returned by QuerySimilar.
	Hits []SimilarityHit

	// ExecResult is returned by ExecuteCode.
	ExecResult ExecutionResult

	// Models is returned by ListModels.
	Models []ModelInfo

	// Err, if set, is returned by every operation instead of a response.
	Err error

	mu        sync.Mutex
	calls     []MockCall
	chatIndex int
}

// MockCall records a single operation invocation.
type MockCall struct {
	// Op names the operation: "chat", "search", "research", "fetch",
	// "translate", "rewrite", "image", "audio", "extract", "embed",
	// "query_similar", "execute_code", "list_models".
	Op string

	// Args holds the operation inputs keyed by parameter name.
	Args map[string]any
}

func (m *Mock) record(op string, args map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Op: op, Args: args})
}

// Calls returns the recorded call history.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns how many times the named operation was invoked.
// An empty op counts all calls.
func (m *Mock) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if op == "" {
		return len(m.calls)
	}
	n := 0
	for _, c := range m.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset clears the call history and rewinds the chat script.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.chatIndex = 0
}

// Chat implements ChatService.
func (m *Mock) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if ctx.Err() != nil {
		return ChatResponse{}, ctx.Err()
	}
	m.record("chat", map[string]any{"request": req})

	if m.Err != nil {
		return ChatResponse{}, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ChatResponses) == 0 {
		return ChatResponse{}, nil
	}
	idx := m.chatIndex
	if idx >= len(m.ChatResponses) {
		idx = len(m.ChatResponses) - 1
	} else {
		m.chatIndex++
	}
	return m.ChatResponses[idx], nil
}

// Search implements SearchService.
func (m *Mock) Search(ctx context.Context, query, domain string) ([]SearchResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	m.record("search", map[string]any{"query": query, "domain": domain})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.SearchResults, nil
}

// Research implements SearchService.
func (m *Mock) Research(ctx context.Context, instructions string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	m.record("research", map[string]any{"instructions": instructions})
	if m.Err != nil {
		return "", m.Err
	}
	return m.ResearchText, nil
}

// FetchURL implements SearchService.
func (m *Mock) FetchURL(ctx context.Context, url string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	m.record("fetch", map[string]any{"url": url})
	if m.Err != nil {
		return "", m.Err
	}
	if m.FetchedText != "" {
		return m.FetchedText, nil
	}
	return "content of " + url, nil
}

// Translate implements TranslateService.
func (m *Mock) Translate(ctx context.Context, targetLang, text string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	m.record("translate", map[string]any{"targetLang": targetLang, "text": text})
	if m.Err != nil {
		return "", m.Err
	}
	prefix := m.TranslatePrefix
	if prefix == "" {
		prefix = fmt.Sprintf("[%s] ", targetLang)
	}
	return prefix + text, nil
}

// Rewrite implements TranslateService.
func (m *Mock) Rewrite(ctx context.Context, req RewriteRequest) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	m.record("rewrite", map[string]any{"request": req})
	if m.Err != nil {
		return "", m.Err
	}
	return m.RewrittenText, nil
}

// GenerateImage implements MediaService.
func (m *Mock) GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	m.record("image", map[string]any{"request": req})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.ImageBlob, nil
}

// GenerateAudio implements MediaService.
func (m *Mock) GenerateAudio(ctx context.Context, model, text string) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	m.record("audio", map[string]any{"model": model, "text": text})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.AudioBlob, nil
}

// ExtractText implements DocumentService.
func (m *Mock) ExtractText(ctx context.Context, name string, blob []byte) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	m.record("extract", map[string]any{"name": name, "size": len(blob)})
	if m.Err != nil {
		return "", m.Err
	}
	return m.ExtractedText, nil
}

// EmbedText implements DocumentService.
func (m *Mock) EmbedText(ctx context.Context, model, text string) ([]float64, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	m.record("embed", map[string]any{"model": model, "text": text})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Embedding, nil
}

// QuerySimilar implements VectorService.
func (m *Mock) QuerySimilar(ctx context.Context, repositoryID, query string, topK int) ([]SimilarityHit, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	m.record("query_similar", map[string]any{"repositoryId": repositoryID, "query": query, "topK": topK})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Hits, nil
}

// ExecuteCode implements CodeService.
func (m *Mock) ExecuteCode(ctx context.Context, code string, packages []string) (ExecutionResult, error) {
	if ctx.Err() != nil {
		return ExecutionResult{}, ctx.Err()
	}
	m.record("execute_code", map[string]any{"code": code, "packages": packages})
	if m.Err != nil {
		return ExecutionResult{}, m.Err
	}
	return m.ExecResult, nil
}

// ListModels implements ModelCatalog.
func (m *Mock) ListModels(ctx context.Context, capability string) ([]ModelInfo, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	m.record("list_models", map[string]any{"capability": capability})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Models, nil
}
