package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"absensi/internal/store"
)

// Repository persists accounts, profiles and refresh tokens in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithProfile inserts the account and its mirrored profile in one
// transaction, so a profile can never exist without its account or vice versa.
func (r *Repository) CreateWithProfile(ctx context.Context, acct Account, profile Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts (id, email, password_hash)
		VALUES ($1, $2, $3)
	`, acct.ID, acct.Email, acct.PasswordHash)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert account: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (id, full_name, nim, role)
		VALUES ($1, $2, $3, $4)
	`, profile.ID, profile.FullName, profile.NIM, profile.Role)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	return tx.Commit()
}

// AccountByEmail returns the account for the email, or nil when absent.
func (r *Repository) AccountByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM accounts WHERE email = $1
	`, email)
	var acct Account
	if err := row.Scan(&acct.ID, &acct.Email, &acct.PasswordHash, &acct.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &acct, nil
}

// ProfileByID returns the profile for the account id, or nil when absent.
// Malformed ids count as absent rather than erroring inside Postgres.
func (r *Repository) ProfileByID(ctx context.Context, id string) (*Profile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, nim, role, created_at, updated_at
		FROM profiles WHERE id = $1
	`, id)
	var p Profile
	if err := row.Scan(&p.ID, &p.FullName, &p.NIM, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListProfilesByRole returns all profiles with the role, newest first.
func (r *Repository) ListProfilesByRole(ctx context.Context, role Role) ([]Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, full_name, nim, role, created_at, updated_at
		FROM profiles WHERE role = $1
		ORDER BY created_at DESC
	`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.FullName, &p.NIM, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// DeleteProfile removes a profile, constrained to the given role as an extra
// guard. Reports whether a row was deleted.
func (r *Repository) DeleteProfile(ctx context.Context, id string, role Role) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM profiles WHERE id = $1 AND role = $2
	`, id, role)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountByRole counts profiles with the role.
func (r *Repository) CountByRole(ctx context.Context, role Role) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles WHERE role = $1`, role).Scan(&n)
	return n, err
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Repository) SaveRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (account_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, accountID, token, expiresAt)
	return err
}

// RefreshTokenByValue returns the stored token row, or nil when unknown.
func (r *Repository) RefreshTokenByValue(ctx context.Context, token string) (*RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, token, expires_at, revoked
		FROM refresh_tokens WHERE token = $1
	`, token)
	var rt RefreshToken
	if err := row.Scan(&rt.ID, &rt.AccountID, &rt.Token, &rt.ExpiresAt, &rt.Revoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rt, nil
}

// RevokeRefreshToken marks a token revoked.
func (r *Repository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}
