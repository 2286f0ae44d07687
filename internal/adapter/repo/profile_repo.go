package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

const uniqueViolationCode = "23505"

// ProfileRepositoryPG implements domain.ProfileRepository backed by
// PostgreSQL.
type ProfileRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepositoryPG.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepositoryPG {
	return &ProfileRepositoryPG{pool: pool}
}

// Create inserts a new profile with its password hash. A duplicate email
// maps to domain.ErrEmailTaken.
func (r *ProfileRepositoryPG) Create(ctx context.Context, profile *domain.UserProfile, passwordHash string) error {
	query := `
INSERT INTO user_profiles (id, email, password_hash, role, is_approved)
VALUES ($1, $2, $3, $4, $5);
`
	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.Email,
		passwordHash,
		profile.Role,
		profile.IsApproved,
	)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	return err
}

// GetByID fetches a profile by UUID.
func (r *ProfileRepositoryPG) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, email, role, is_approved, created_at FROM user_profiles WHERE id = $1`, id)
	return scanProfile(row)
}

// GetByEmail fetches a profile by email together with its password hash.
func (r *ProfileRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, string, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, email, role, is_approved, created_at, password_hash FROM user_profiles WHERE lower(email) = lower($1)`, email)

	var p domain.UserProfile
	var hash string
	if err := row.Scan(&p.ID, &p.Email, &p.Role, &p.IsApproved, &p.CreatedAt, &hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", err
	}
	return &p, hash, nil
}

// List returns every profile, newest first.
func (r *ProfileRepositoryPG) List(ctx context.Context) ([]domain.UserProfile, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, role, is_approved, created_at FROM user_profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.UserProfile
	for rows.Next() {
		var p domain.UserProfile
		if err := rows.Scan(&p.ID, &p.Email, &p.Role, &p.IsApproved, &p.CreatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// SetApproval flips the approval flag for a profile.
func (r *ProfileRepositoryPG) SetApproval(ctx context.Context, id string, approved bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE user_profiles SET is_approved = $2 WHERE id = $1`, id, approved)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a profile.
func (r *ProfileRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func scanProfile(row pgx.Row) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := row.Scan(&p.ID, &p.Email, &p.Role, &p.IsApproved, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
