// Package repository implements an in-process vector index over uploaded
// documents: paragraph chunking, embedding via the collaborator, and
// cosine top-K similarity queries.
//
// Index implements the VectorService contract consumed by repository
// nodes, so a workflow can query local document sets without an external
// vector database.
package repository

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/nodecanvas-go/flow/client"
)

// ErrRepositoryNotFound is returned when a repository ID has no documents.
var ErrRepositoryNotFound = errors.New("repository not found")

// maxChunkLen caps a single chunk. Paragraphs beyond this are split so
// no embedding request carries an unbounded payload.
const maxChunkLen = 1000

// Embedder is the slice of the collaborator contract the index needs.
type Embedder interface {
	EmbedText(ctx context.Context, model, text string) ([]float64, error)
}

type chunk struct {
	document string
	ord      int
	text     string
	vector   []float64
}

// Index is an in-memory vector index grouped by repository ID.
// Safe for concurrent use.
type Index struct {
	embedder Embedder
	model    string

	mu    sync.RWMutex
	repos map[string][]chunk
}

// NewIndex creates an Index embedding with the given model (empty selects
// the embedder's default).
func NewIndex(embedder Embedder, model string) *Index {
	return &Index{
		embedder: embedder,
		model:    model,
		repos:    make(map[string][]chunk),
	}
}

// AddDocument chunks the text, embeds every chunk, and adds it to the
// repository, creating the repository on first use. Returns the number of
// chunks indexed. Re-adding a document name replaces its prior chunks.
func (ix *Index) AddDocument(ctx context.Context, repositoryID, documentName, text string) (int, error) {
	parts := chunkText(text)
	if len(parts) == 0 {
		return 0, errors.New("document contains no indexable text")
	}

	chunks := make([]chunk, 0, len(parts))
	for i, part := range parts {
		vector, err := ix.embedder.EmbedText(ctx, ix.model, part)
		if err != nil {
			return 0, err
		}
		chunks = append(chunks, chunk{document: documentName, ord: i, text: part, vector: vector})
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	kept := removeDocument(ix.repos[repositoryID], documentName)
	ix.repos[repositoryID] = append(kept, chunks...)
	return len(chunks), nil
}

// RemoveDocument drops a document's chunks from the repository.
func (ix *Index) RemoveDocument(repositoryID, documentName string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if chunks, ok := ix.repos[repositoryID]; ok {
		ix.repos[repositoryID] = removeDocument(chunks, documentName)
	}
}

// Documents returns the distinct document names in the repository, in
// name order.
func (ix *Index) Documents(repositoryID string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, c := range ix.repos[repositoryID] {
		if !seen[c.document] {
			seen[c.document] = true
			names = append(names, c.document)
		}
	}
	sort.Strings(names)
	return names
}

// QuerySimilar embeds the query and returns the top-K most similar
// chunks, best first. Ties break by document name then chunk order so
// results are deterministic.
func (ix *Index) QuerySimilar(ctx context.Context, repositoryID, query string, topK int) ([]client.SimilarityHit, error) {
	ix.mu.RLock()
	chunks := ix.repos[repositoryID]
	ix.mu.RUnlock()

	if len(chunks) == 0 {
		return nil, ErrRepositoryNotFound
	}
	if topK <= 0 {
		topK = 5
	}

	queryVec, err := ix.embedder.EmbedText(ctx, ix.model, query)
	if err != nil {
		return nil, err
	}

	type scored struct {
		chunk
		score float64
	}
	hits := make([]scored, 0, len(chunks))
	for _, c := range chunks {
		hits = append(hits, scored{chunk: c, score: cosine(queryVec, c.vector)})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		if hits[i].document != hits[j].document {
			return hits[i].document < hits[j].document
		}
		return hits[i].ord < hits[j].ord
	})

	if topK > len(hits) {
		topK = len(hits)
	}
	out := make([]client.SimilarityHit, 0, topK)
	for _, h := range hits[:topK] {
		out = append(out, client.SimilarityHit{DocumentName: h.document, Text: h.text, Score: h.score})
	}
	return out, nil
}

func removeDocument(chunks []chunk, documentName string) []chunk {
	kept := make([]chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.document != documentName {
			kept = append(kept, c)
		}
	}
	return kept
}

// chunkText splits text on blank lines, one chunk per paragraph, so a
// hit points at the paragraph that matched rather than a merged block.
// Oversized paragraphs are split at maxChunkLen.
func chunkText(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	paragraphs := strings.Split(text, "\n\n")

	chunks := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		for len(p) > maxChunkLen {
			chunks = append(chunks, p[:maxChunkLen])
			p = p[maxChunkLen:]
		}
		chunks = append(chunks, p)
	}
	return chunks
}

// cosine computes cosine similarity, clamped to [0, 1]. Mismatched or
// zero-magnitude vectors score 0.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
