package repos

import (
	"context"

	"bubblebliss/internal/domain"

	"github.com/jmoiron/sqlx"
)

type AdminRepo struct{ DB *sqlx.DB }

func NewAdminRepo(db *sqlx.DB) *AdminRepo { return &AdminRepo{DB: db} }

func (r *AdminRepo) ByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := r.DB.GetContext(ctx, &u, `SELECT id,email,password_hash FROM admin_users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *AdminRepo) ByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := r.DB.GetContext(ctx, &u, `SELECT id,email,password_hash FROM admin_users WHERE id=?`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// EnsureAdmin inserts the admin when the email is new. An existing admin
// keeps its password.
func (r *AdminRepo) EnsureAdmin(ctx context.Context, email, hash string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO admin_users(email,password_hash)
		SELECT ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM admin_users WHERE LOWER(email)=LOWER(?))
	`, email, hash, email)
	return err
}
