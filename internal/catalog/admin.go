package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/akaza50z/libabbitak/internal/domain"
)

// AdminCount reports how many back-office accounts exist. Zero means the
// first-run setup flow is still open.
func (r *Repository) AdminCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count admin users: %w", err)
	}
	return count, nil
}

func (r *Repository) AdminByUsername(ctx context.Context, username string) (domain.AdminUser, error) {
	return r.queryAdmin(ctx, `SELECT id, username, password_hash FROM admin_users WHERE username = $1`, username)
}

// FirstAdmin returns the (single) back-office account.
func (r *Repository) FirstAdmin(ctx context.Context) (domain.AdminUser, error) {
	return r.queryAdmin(ctx, `SELECT id, username, password_hash FROM admin_users LIMIT 1`)
}

func (r *Repository) queryAdmin(ctx context.Context, query string, args ...interface{}) (domain.AdminUser, error) {
	var u domain.AdminUser
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AdminUser{}, ErrAdminNotFound
		}
		return domain.AdminUser{}, fmt.Errorf("failed to query admin user: %w", err)
	}
	return u, nil
}

func (r *Repository) CreateAdmin(ctx context.Context, username, passwordHash string) (domain.AdminUser, error) {
	u := domain.AdminUser{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_users (id, username, password_hash) VALUES ($1, $2, $3)`,
		u.ID, u.Username, u.PasswordHash,
	)
	if err != nil {
		return domain.AdminUser{}, fmt.Errorf("failed to insert admin user: %w", err)
	}
	return u, nil
}

// UpdateAdmin replaces the account's credentials. The username must stay
// unique across accounts.
func (r *Repository) UpdateAdmin(ctx context.Context, id, username, passwordHash string) error {
	existing, err := r.AdminByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrAdminNotFound) {
		return err
	}
	if err == nil && existing.ID != id {
		return ErrUsernameTaken
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE admin_users SET username = $1, password_hash = $2 WHERE id = $3`,
		username, passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update admin user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrAdminNotFound
	}
	return nil
}
