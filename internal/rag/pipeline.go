// Package rag implements the retrieval side of the assistant: document
// chunking, embedding, and the retrieval pipeline that turns a user query
// into grounded context chunks.
package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/surya16122114/immigration-ai-assistant/internal/knowledge"
	"github.com/surya16122114/immigration-ai-assistant/internal/log"
)

// ErrEmbedding reports a failed or malformed embedding call. Callers never
// receive a zero vector in place of a real embedding.
var ErrEmbedding = errors.New("rag: embedding failure")

// Embedder turns text into an embedding vector. Defined here, by the
// consumer; the production implementation wraps a Genkit embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PipelineStore is the slice of the chunk store the pipeline depends on.
// knowledge.Store satisfies it.
type PipelineStore interface {
	CreateChunk(ctx context.Context, chunk knowledge.Chunk) error
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]knowledge.Chunk, error)
	SearchByText(ctx context.Context, query string, limit int) ([]knowledge.Chunk, error)
}

// ContextChunk is a retrieved chunk projected for prompt assembly.
type ContextChunk struct {
	Content string
	Source  string
	URL     string
}

// Pipeline retrieves context for queries and ingests documents into the
// knowledge base.
type Pipeline struct {
	embedder Embedder
	store    PipelineStore
	logger   log.Logger
}

// NewPipeline creates a retrieval pipeline over the given embedder and store.
func NewPipeline(embedder Embedder, store PipelineStore, logger log.Logger) *Pipeline {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Pipeline{embedder: embedder, store: store, logger: logger}
}

// Retrieve returns up to k context chunks relevant to query, most similar
// first. Semantic search failures are not fatal: if embedding the query or
// the similarity search fails, or similarity search finds nothing, Retrieve
// falls back to case-insensitive substring search. The result may be empty;
// callers must handle zero context.
func (p *Pipeline) Retrieve(ctx context.Context, query string, k int) ([]ContextChunk, error) {
	chunks, err := p.semanticSearch(ctx, query, k)
	if err != nil {
		p.logger.Warn("semantic search failed, falling back to text search",
			"error", err)
		chunks = nil
	}

	if len(chunks) == 0 {
		chunks, err = p.store.SearchByText(ctx, query, k)
		if err != nil {
			return nil, fmt.Errorf("text search fallback: %w", err)
		}
	}

	return projectContext(chunks), nil
}

func (p *Pipeline) semanticSearch(ctx context.Context, query string, k int) ([]knowledge.Chunk, error) {
	embedding, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrEmbedding, err)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: embedder returned empty vector", ErrEmbedding)
	}

	return p.store.SearchByEmbedding(ctx, embedding, k)
}

// Ingest chunks content, embeds each chunk, and stores the results under
// documentID. Chunk ids are documentID plus the chunk index. The first
// embedding or persistence failure aborts the ingest.
func (p *Pipeline) Ingest(ctx context.Context, content, documentID string, metadata map[string]string) error {
	chunks := ChunkDocument(content, DefaultChunkSize, DefaultChunkOverlap)

	for i, chunk := range chunks {
		embedding, err := p.embedder.Embed(ctx, chunk)
		if err != nil {
			return fmt.Errorf("%w: embed chunk %d of %q: %v", ErrEmbedding, i, documentID, err)
		}
		if len(embedding) == 0 {
			return fmt.Errorf("%w: empty vector for chunk %d of %q", ErrEmbedding, i, documentID)
		}

		err = p.store.CreateChunk(ctx, knowledge.Chunk{
			ID:         fmt.Sprintf("%s_%d", documentID, i),
			DocumentID: documentID,
			Content:    chunk,
			Embedding:  embedding,
			Metadata:   metadata,
		})
		if err != nil {
			return fmt.Errorf("store chunk %d of %q: %w", i, documentID, err)
		}
	}

	p.logger.Info("document ingested", "document_id", documentID, "chunks", len(chunks))
	return nil
}

// projectContext maps stored chunks to prompt-ready context. A chunk with
// no source metadata is attributed to USCIS, the dominant source in the
// knowledge base.
func projectContext(chunks []knowledge.Chunk) []ContextChunk {
	out := make([]ContextChunk, 0, len(chunks))
	for _, c := range chunks {
		source := c.Metadata[knowledge.MetaSource]
		if source == "" {
			source = "USCIS"
		}
		out = append(out, ContextChunk{
			Content: c.Content,
			Source:  source,
			URL:     c.Metadata[knowledge.MetaURL],
		})
	}
	return out
}
