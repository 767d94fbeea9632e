package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	appauth "github.com/nillpakhi2003-droid/habib-furniture/internal/application/auth"
	userdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/user"
)

type UserRepo struct {
	db *sql.DB
}

var _ appauth.Users = (*UserRepo)(nil)

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*userdomain.User, error) {
	var (
		u    userdomain.User
		role string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, phone, password_hash, role, created_at
		FROM users WHERE phone = $1`, phone,
	).Scan(&u.ID, &u.Name, &u.Phone, &u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, userdomain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Role = userdomain.Role(role)
	return &u, nil
}
