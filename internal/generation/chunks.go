package generation

import "server/internal/domain"

// DefaultMaxChunks bounds the prompt context size.
const DefaultMaxChunks = 20

// SelectRepresentative downsamples chunks to at most max entries at an
// even stride across the document. The selection is deterministic and
// order-preserving: repeated calls over unchanged data pick the same
// indices, and a document at or under the bound passes through untouched.
func SelectRepresentative(chunks []domain.DocumentChunk, max int) []domain.DocumentChunk {
	if max <= 0 || len(chunks) <= max {
		return chunks
	}

	stride := len(chunks) / max
	selected := make([]domain.DocumentChunk, 0, max)
	for i := 0; i < max; i++ {
		idx := i * stride
		if idx >= len(chunks) {
			break
		}
		selected = append(selected, chunks[idx])
	}
	return selected
}
