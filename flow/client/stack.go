package client

import "context"

// Stack composes partial providers into a full Services.
//
// Real deployments rarely get every concern from one provider: chat may
// come from Anthropic, media and embeddings from OpenAI, vector queries
// from an in-process index. Stack delegates each operation to the
// configured field and returns ErrUnsupported for concerns left nil.
//
// Example:
//
//	svc := &client.Stack{
//	    Chats:   anthropic.New(anthropicKey, ""),
//	    Media:   openaiSvc,
//	    Docs:    openaiSvc,
//	    Vectors: repoIndex,
//	}
type Stack struct {
	Chats      ChatService
	Searches   SearchService
	Translates TranslateService
	Media      MediaService
	Docs       DocumentService
	Vectors    VectorService
	Code       CodeService
	Catalog    ModelCatalog
}

// Chat implements ChatService.
func (s *Stack) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if s.Chats == nil {
		return ChatResponse{}, ErrUnsupported
	}
	return s.Chats.Chat(ctx, req)
}

// Search implements SearchService.
func (s *Stack) Search(ctx context.Context, query, domain string) ([]SearchResult, error) {
	if s.Searches == nil {
		return nil, ErrUnsupported
	}
	return s.Searches.Search(ctx, query, domain)
}

// Research implements SearchService.
func (s *Stack) Research(ctx context.Context, instructions string) (string, error) {
	if s.Searches == nil {
		return "", ErrUnsupported
	}
	return s.Searches.Research(ctx, instructions)
}

// FetchURL implements SearchService.
func (s *Stack) FetchURL(ctx context.Context, url string) (string, error) {
	if s.Searches == nil {
		return "", ErrUnsupported
	}
	return s.Searches.FetchURL(ctx, url)
}

// Translate implements TranslateService.
func (s *Stack) Translate(ctx context.Context, targetLang, text string) (string, error) {
	if s.Translates == nil {
		return "", ErrUnsupported
	}
	return s.Translates.Translate(ctx, targetLang, text)
}

// Rewrite implements TranslateService.
func (s *Stack) Rewrite(ctx context.Context, req RewriteRequest) (string, error) {
	if s.Translates == nil {
		return "", ErrUnsupported
	}
	return s.Translates.Rewrite(ctx, req)
}

// GenerateImage implements MediaService.
func (s *Stack) GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error) {
	if s.Media == nil {
		return nil, ErrUnsupported
	}
	return s.Media.GenerateImage(ctx, req)
}

// GenerateAudio implements MediaService.
func (s *Stack) GenerateAudio(ctx context.Context, model, text string) ([]byte, error) {
	if s.Media == nil {
		return nil, ErrUnsupported
	}
	return s.Media.GenerateAudio(ctx, model, text)
}

// ExtractText implements DocumentService.
func (s *Stack) ExtractText(ctx context.Context, name string, blob []byte) (string, error) {
	if s.Docs == nil {
		return "", ErrUnsupported
	}
	return s.Docs.ExtractText(ctx, name, blob)
}

// EmbedText implements DocumentService.
func (s *Stack) EmbedText(ctx context.Context, model, text string) ([]float64, error) {
	if s.Docs == nil {
		return nil, ErrUnsupported
	}
	return s.Docs.EmbedText(ctx, model, text)
}

// QuerySimilar implements VectorService.
func (s *Stack) QuerySimilar(ctx context.Context, repositoryID, query string, topK int) ([]SimilarityHit, error) {
	if s.Vectors == nil {
		return nil, ErrUnsupported
	}
	return s.Vectors.QuerySimilar(ctx, repositoryID, query, topK)
}

// ExecuteCode implements CodeService.
func (s *Stack) ExecuteCode(ctx context.Context, code string, packages []string) (ExecutionResult, error) {
	if s.Code == nil {
		return ExecutionResult{}, ErrUnsupported
	}
	return s.Code.ExecuteCode(ctx, code, packages)
}

// ListModels implements ModelCatalog.
func (s *Stack) ListModels(ctx context.Context, capability string) ([]ModelInfo, error) {
	if s.Catalog == nil {
		return nil, ErrUnsupported
	}
	return s.Catalog.ListModels(ctx, capability)
}
