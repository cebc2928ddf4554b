// Package knowledge persists document chunks and serves similarity and
// substring searches over them. It is the storage layer behind the
// retrieval pipeline.
package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/surya16122114/immigration-ai-assistant/internal/log"
)

// Sentinel errors returned by the store. Callers branch on these with
// errors.Is; ErrDuplicateChunk wraps ErrPersistence so a single check on
// ErrPersistence covers both.
var (
	ErrPersistence    = errors.New("knowledge: persistence failure")
	ErrDuplicateChunk = fmt.Errorf("%w: duplicate chunk id", ErrPersistence)
	ErrInvalidChunk   = errors.New("knowledge: invalid chunk")
)

const uniqueViolation = "23505"

// Store provides access to the document_chunks table.
type Store struct {
	pool      *pgxpool.Pool
	dimension int
	logger    log.Logger
}

// NewStore creates a Store over the given pool. dimension is the embedding
// width enforced on writes and similarity queries; it must match the
// vector column width in the schema.
func NewStore(pool *pgxpool.Pool, dimension int, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{pool: pool, dimension: dimension, logger: logger}
}

// CreateChunk inserts a chunk. Inserting an id that already exists returns
// ErrDuplicateChunk; chunks with too-short content or a wrong-dimension
// embedding are rejected with ErrInvalidChunk before touching the database.
func (s *Store) CreateChunk(ctx context.Context, chunk Chunk) error {
	if chunk.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidChunk)
	}
	if len(chunk.Content) <= MinContentLength {
		return fmt.Errorf("%w: content length %d at or below minimum %d",
			ErrInvalidChunk, len(chunk.Content), MinContentLength)
	}
	if len(chunk.Embedding) != s.dimension {
		return fmt.Errorf("%w: embedding dimension %d, want %d",
			ErrInvalidChunk, len(chunk.Embedding), s.dimension)
	}

	metadata := chunk.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO document_chunks (id, document_id, content, embedding, metadata)
		VALUES ($1, $2, $3, $4, $5)`,
		chunk.ID, chunk.DocumentID, chunk.Content,
		pgvector.NewVector(chunk.Embedding), metadata,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %q", ErrDuplicateChunk, chunk.ID)
		}
		return fmt.Errorf("%w: insert chunk %q: %v", ErrPersistence, chunk.ID, err)
	}

	s.logger.Debug("chunk stored",
		"chunk_id", chunk.ID,
		"document_id", chunk.DocumentID,
		"content_length", len(chunk.Content))
	return nil
}

// SearchByEmbedding returns up to limit chunks ordered by cosine distance
// to the query vector, nearest first. Ties break on recency.
func (s *Store) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]Chunk, error) {
	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("%w: query dimension %d, want %d",
			ErrInvalidChunk, len(embedding), s.dimension)
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, document_id, content, metadata, created_at
		FROM document_chunks
		ORDER BY embedding <=> $1, created_at DESC
		LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity search: %v", ErrPersistence, err)
	}
	return scanChunks(rows)
}

// SearchByText returns up to limit chunks whose content contains the query
// as a case-insensitive substring, newest first. Used as the retrieval
// fallback when no embedding is available.
func (s *Store) SearchByText(ctx context.Context, query string, limit int) ([]Chunk, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, document_id, content, metadata, created_at
		FROM document_chunks
		WHERE content ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: text search: %v", ErrPersistence, err)
	}
	return scanChunks(rows)
}

// Count reports the number of stored chunks. The serve command uses it to
// decide whether the knowledge base needs seeding.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM document_chunks`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: count chunks: %v", ErrPersistence, err)
	}
	return n, nil
}

// DeleteDocument removes every chunk belonging to documentID and reports
// how many rows were deleted. Deleting an unknown document is not an error.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return 0, fmt.Errorf("%w: delete document %q: %v", ErrPersistence, documentID, err)
	}

	deleted := tag.RowsAffected()
	s.logger.Info("document chunks deleted", "document_id", documentID, "count", deleted)
	return deleted, nil
}

func scanChunks(rows pgx.Rows) ([]Chunk, error) {
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Content, &c.Metadata, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan chunk row: %v", ErrPersistence, err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate chunk rows: %v", ErrPersistence, err)
	}
	return chunks, nil
}
