package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brianleach11/popreel/internal/model"
)

type InteractionRepo struct {
	pool *pgxpool.Pool
}

func NewInteractionRepo(pool *pgxpool.Pool) *InteractionRepo {
	return &InteractionRepo{pool: pool}
}

// InsertBatch appends scored interactions to the analytics log and notifies
// the trending worker once per affected video. The log is append-only:
// weighted scores are never updated after this write.
func (r *InteractionRepo) InsertBatch(ctx context.Context, scored []model.ScoredInteraction) error {
	if len(scored) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, s := range scored {
		_, err = tx.Exec(ctx, `
			INSERT INTO interactions
				(user_id, video_id, view_duration, liked, commented, shared, observed_at, weighted_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			s.UserID, s.VideoID, s.ViewDuration, s.Liked, s.Commented, s.Shared,
			s.ObservedAt, s.WeightedScore)
		if err != nil {
			return err
		}
	}

	// One notification per distinct video, not per event
	notified := make(map[string]struct{}, len(scored))
	for _, s := range scored {
		if _, done := notified[s.VideoID]; done {
			continue
		}
		notified[s.VideoID] = struct{}{}
		_, err = tx.Exec(ctx, `SELECT pg_notify('interaction_changes', $1)`, s.VideoID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ScoreAt is one logged interaction's contribution for aggregation.
type ScoreAt struct {
	Score      float64
	ObservedAt time.Time
}

// ListForVideo returns all logged scores with their original timestamps for
// full trending recomputation.
func (r *InteractionRepo) ListForVideo(ctx context.Context, videoID string) ([]ScoreAt, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weighted_score, observed_at
		FROM interactions
		WHERE video_id = $1`,
		videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []ScoreAt
	for rows.Next() {
		var s ScoreAt
		if err := rows.Scan(&s.Score, &s.ObservedAt); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// ListForVideoSince returns the logged scores observed after the given
// instant, for incremental trending updates.
func (r *InteractionRepo) ListForVideoSince(ctx context.Context, videoID string, since time.Time) ([]ScoreAt, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weighted_score, observed_at
		FROM interactions
		WHERE video_id = $1 AND observed_at > $2`,
		videoID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []ScoreAt
	for rows.Next() {
		var s ScoreAt
		if err := rows.Scan(&s.Score, &s.ObservedAt); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// VideosWithInteractions returns the distinct video IDs that have at least
// one logged interaction. Used by the periodic full-recompute pass.
func (r *InteractionRepo) VideosWithInteractions(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT video_id FROM interactions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
