package rag

import "strings"

// Chunking defaults. A 1000-character window with 200 characters of overlap
// keeps each chunk well inside embedding-model token limits while preserving
// context across chunk borders.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200

	// boundaryFraction is how far into the window a sentence boundary must
	// sit before the window is allowed to shrink to it.
	boundaryFraction = 0.7

	// minChunkLength filters out fragments too short to be useful context,
	// stray headings and separators mostly.
	minChunkLength = 50
)

// ChunkDocument splits content into overlapping chunks suitable for
// embedding. The window advances by chunkSize-overlap each step; windows
// that do not reach the end of the document shrink to the last sentence
// terminator, newline, or space found past 70% of the window, whichever is
// furthest right, so chunks avoid mid-sentence cuts. Chunks are trimmed and
// anything of minChunkLength or shorter is dropped.
//
// Output is deterministic for a given input and parameters.
func ChunkDocument(content string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	// Keep the window advancing: the default overlap can still meet or
	// exceed a small chunkSize, so clamp to the default 5:1 ratio.
	if overlap >= chunkSize {
		overlap = chunkSize / 5
	}

	var chunks []string
	threshold := int(float64(chunkSize) * boundaryFraction)

	for start := 0; start < len(content); start += chunkSize - overlap {
		end := min(start+chunkSize, len(content))
		window := content[start:end]

		if end < len(content) {
			lastPeriod := strings.LastIndexByte(window, '.')
			lastNewline := strings.LastIndexByte(window, '\n')
			lastSpace := strings.LastIndexByte(window, ' ')

			boundary := max(lastPeriod, lastNewline, lastSpace)
			if boundary > threshold {
				window = window[:boundary+1]
			}
		}

		if chunk := strings.TrimSpace(window); len(chunk) > minChunkLength {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}
