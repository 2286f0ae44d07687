package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// GenerationRepositoryPG implements domain.GenerationRepository. The
// table is append-only; quota state is always derived from the rows.
type GenerationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewGenerationRepository creates a new GenerationRepositoryPG.
func NewGenerationRepository(pool *pgxpool.Pool) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{pool: pool}
}

// Insert appends one generation record.
func (r *GenerationRepositoryPG) Insert(ctx context.Context, rec *domain.GenerationRecord) error {
	query := `
INSERT INTO test_question_generations (id, user_id, pdf_name, generated_at)
VALUES ($1, $2, $3, $4);
`
	_, err := r.pool.Exec(ctx, query, rec.ID, rec.UserID, rec.PDFName, rec.GeneratedAt)
	return err
}

// CountSince counts a user's records at or after the window start.
func (r *GenerationRepositoryPG) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	row := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM test_question_generations
WHERE user_id = $1
  AND generated_at >= $2;
`, userID, since)

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// OldestSince returns the timestamp of the oldest in-window record, or
// domain.ErrNotFound when the window is empty.
func (r *GenerationRepositoryPG) OldestSince(ctx context.Context, userID string, since time.Time) (time.Time, error) {
	row := r.pool.QueryRow(ctx, `
SELECT MIN(generated_at)
FROM test_question_generations
WHERE user_id = $1
  AND generated_at >= $2;
`, userID, since)

	var oldest *time.Time
	if err := row.Scan(&oldest); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, domain.ErrNotFound
		}
		return time.Time{}, err
	}
	if oldest == nil {
		return time.Time{}, domain.ErrNotFound
	}
	return *oldest, nil
}

// ListSince returns a user's in-window records, newest first.
func (r *GenerationRepositoryPG) ListSince(ctx context.Context, userID string, since time.Time) ([]domain.GenerationRecord, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, pdf_name, generated_at
FROM test_question_generations
WHERE user_id = $1
  AND generated_at >= $2
ORDER BY generated_at DESC;
`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.GenerationRecord
	for rows.Next() {
		var rec domain.GenerationRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.PDFName, &rec.GeneratedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
