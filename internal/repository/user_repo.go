package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// UserDisplay holds the uploader fields resolved per feed item.
type UserDisplay struct {
	Username  string
	AvatarRef string
}

// FindDisplay returns a user's display name and avatar storage reference.
func (r *UserRepo) FindDisplay(ctx context.Context, userID string) (*UserDisplay, error) {
	var d UserDisplay
	var avatarRef *string
	err := r.pool.QueryRow(ctx, `
		SELECT username, avatar_url FROM users WHERE id = $1`,
		userID).Scan(&d.Username, &avatarRef)
	if err != nil {
		return nil, err
	}
	if avatarRef != nil {
		d.AvatarRef = *avatarRef
	}
	return &d, nil
}
