package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// ChunkRepositoryPG reads document chunks written by the ingestion
// pipeline. The file name and chunk position live in the jsonb metadata
// column, so both the filter and the ordering go through it.
type ChunkRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewChunkRepository creates a new ChunkRepositoryPG.
func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepositoryPG {
	return &ChunkRepositoryPG{pool: pool}
}

// ListByFile returns every chunk of the named file in chunk-index order.
// The match is case-insensitive because bucket listings and ingestion
// may disagree on extension casing.
func (r *ChunkRepositoryPG) ListByFile(ctx context.Context, fileName string) ([]domain.DocumentChunk, error) {
	query := `
SELECT id, content, metadata->>'file_name', COALESCE((metadata->>'chunk_index')::int, 0)
FROM documents
WHERE metadata->>'file_name' ILIKE $1
ORDER BY COALESCE((metadata->>'chunk_index')::int, 0) ASC;
`
	rows, err := r.pool.Query(ctx, query, fileName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.DocumentChunk
	for rows.Next() {
		var c domain.DocumentChunk
		if err := rows.Scan(&c.ID, &c.Content, &c.FileName, &c.ChunkIndex); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
