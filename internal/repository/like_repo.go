package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LikeRepo struct {
	pool *pgxpool.Pool
}

func NewLikeRepo(pool *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{pool: pool}
}

// Toggle flips the like state for (userID, videoID) and adjusts the counter
// atomically in one transaction. The GREATEST guard keeps the counter from
// ever going negative. Returns the new state and count.
func (r *LikeRepo) Toggle(ctx context.Context, userID, videoID string) (liked bool, count int, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		DELETE FROM video_likes WHERE user_id = $1 AND video_id = $2`,
		userID, videoID)
	if err != nil {
		return false, 0, err
	}

	if tag.RowsAffected() > 0 {
		// Unlike
		err = tx.QueryRow(ctx, `
			UPDATE videos SET like_count = GREATEST(like_count - 1, 0)
			WHERE id = $1
			RETURNING like_count`,
			videoID).Scan(&count)
		if err != nil {
			return false, 0, err
		}
		return false, count, tx.Commit(ctx)
	}

	// Like
	_, err = tx.Exec(ctx, `
		INSERT INTO video_likes (user_id, video_id) VALUES ($1, $2)
		ON CONFLICT (user_id, video_id) DO NOTHING`,
		userID, videoID)
	if err != nil {
		return false, 0, err
	}

	err = tx.QueryRow(ctx, `
		UPDATE videos SET like_count = like_count + 1
		WHERE id = $1
		RETURNING like_count`,
		videoID).Scan(&count)
	if err != nil {
		return false, 0, err
	}
	return true, count, tx.Commit(ctx)
}

// LikedSet returns which of the given videos the user has liked.
func (r *LikeRepo) LikedSet(ctx context.Context, userID string, videoIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool, len(videoIDs))
	if userID == "" || len(videoIDs) == 0 {
		return liked, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT video_id FROM video_likes
		WHERE user_id = $1 AND video_id = ANY($2::uuid[])`,
		userID, videoIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		liked[id] = true
	}
	return liked, rows.Err()
}
