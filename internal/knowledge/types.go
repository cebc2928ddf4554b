package knowledge

import "time"

// Metadata keys recognized on document chunks.
const (
	MetaSource      = "source"
	MetaURL         = "url"
	MetaCategory    = "category"
	MetaLastUpdated = "lastUpdated"
)

// MinContentLength is the minimum chunk content length accepted by the store.
// Anything at or below this is noise (headings, stray separators) and is
// filtered out during chunking as well.
const MinContentLength = 50

// Chunk is a bounded contiguous span of a source document, the unit of
// storage and retrieval. Chunks are immutable once stored.
type Chunk struct {
	ID         string            // Derived from (DocumentID, chunk index)
	DocumentID string            // Source document identifier
	Content    string            // Text span, trimmed
	Embedding  []float32         // Fixed-dimension embedding vector
	Metadata   map[string]string // At least "source"; optionally url, category, lastUpdated
	CreatedAt  time.Time         // Assigned at persistence time
}
