package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brianleach11/popreel/internal/model"
)

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

const videoColumns = `id, user_id, title, description, file_url, duration, status,
	       trending_score, like_count, eligible_since, created_at`

func scanVideo(row pgx.Row) (*model.Video, error) {
	var v model.Video
	err := row.Scan(
		&v.ID, &v.UserID, &v.Title, &v.Description, &v.FileURL, &v.Duration,
		&v.Status, &v.TrendingScore, &v.LikeCount, &v.EligibleSince, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// InsertProcessing creates a new ranking record in the processing state.
// Every upload starts here; only the ingestion pipeline advances status.
func (r *VideoRepo) InsertProcessing(ctx context.Context, v *model.Video) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO videos (id, user_id, title, description, file_url, duration, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'processing')`,
		v.ID, v.UserID, v.Title, v.Description, v.FileURL, v.Duration)
	return err
}

// MarkReady transitions processing → ready, storing the embedding and
// eligibility timestamp. The WHERE clause enforces the one-way status
// machine: a blocked record can never become ready.
func (r *VideoRepo) MarkReady(ctx context.Context, videoID string, embedding []float32) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE videos
		SET status = 'ready', embedding = $2, eligible_since = NOW()
		WHERE id = $1 AND status = 'processing'`,
		videoID, embedding)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("video %s is not in processing state", videoID)
	}
	return nil
}

// MarkBlocked transitions processing → blocked with the moderation reasons.
func (r *VideoRepo) MarkBlocked(ctx context.Context, videoID string, reasons []string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE videos
		SET status = 'blocked', blocked_reasons = $2
		WHERE id = $1 AND status = 'processing'`,
		videoID, reasons)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("video %s is not in processing state", videoID)
	}
	return nil
}

// FindByID returns a single video regardless of status.
func (r *VideoRepo) FindByID(ctx context.Context, videoID string) (*model.Video, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+videoColumns+` FROM videos WHERE id = $1`, videoID)
	return scanVideo(row)
}

// FindReadyByID returns a single eligible video.
func (r *VideoRepo) FindReadyByID(ctx context.Context, videoID string) (*model.Video, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+videoColumns+` FROM videos WHERE id = $1 AND status = 'ready'`, videoID)
	return scanVideo(row)
}

// ListTrending returns eligible videos ordered by trending score descending,
// ties broken by most recent eligibility. Standard offset pagination.
func (r *VideoRepo) ListTrending(ctx context.Context, limit, offset int) ([]model.Video, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE status = 'ready'
		ORDER BY trending_score DESC, eligible_since DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

// ListExploratory returns eligible videos in a randomized-within-trending
// order so lower-ranked content surfaces. The shuffle is fresh on every
// call; exploratory pages are intentionally not stable.
func (r *VideoRepo) ListExploratory(ctx context.Context, limit, offset int) ([]model.Video, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE status = 'ready'
		ORDER BY random() * trending_score DESC, created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

// ListReadyOrdered returns the eligible subset of the given IDs in exactly
// the order the IDs were supplied. This preserves the recommendation
// service's ranking instead of creation or trending order.
func (r *VideoRepo) ListReadyOrdered(ctx context.Context, videoIDs []string) ([]model.Video, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE status = 'ready' AND id = ANY($1::uuid[])
		ORDER BY array_position($1::uuid[], id)`,
		videoIDs)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

// GetDurations returns the stored duration for each known video among the
// given IDs. Unknown IDs are simply absent from the result.
func (r *VideoRepo) GetDurations(ctx context.Context, videoIDs []string) (map[string]float64, error) {
	if len(videoIDs) == 0 {
		return map[string]float64{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, duration FROM videos WHERE id = ANY($1::uuid[])`,
		videoIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	durations := make(map[string]float64, len(videoIDs))
	for rows.Next() {
		var id string
		var duration float64
		if err := rows.Scan(&id, &duration); err != nil {
			return nil, err
		}
		durations[id] = duration
	}
	return durations, rows.Err()
}

// SetTrendingScore overwrites the trending score (full-recompute-wins).
func (r *VideoRepo) SetTrendingScore(ctx context.Context, videoID string, score float64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE videos SET trending_score = $2 WHERE id = $1`,
		videoID, score)
	return err
}

// AddTrendingDelta adds an incremental contribution to the trending score.
// The add is commutative so racing batches converge regardless of order;
// the periodic full recompute corrects any decay drift.
func (r *VideoRepo) AddTrendingDelta(ctx context.Context, videoID string, delta float64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE videos SET trending_score = GREATEST(trending_score + $2, 0)
		WHERE id = $1`,
		videoID, delta)
	return err
}

// DeleteOwned removes a video if it belongs to the given user.
// Returns pgx.ErrNoRows when no such owned video exists.
func (r *VideoRepo) DeleteOwned(ctx context.Context, videoID, userID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM videos WHERE id = $1 AND user_id = $2`,
		videoID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetStats returns corpus counts by status and the current top trending videos.
func (r *VideoRepo) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	stats := &model.StatsResponse{ByStatus: make(map[string]int)}

	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM videos GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.TotalVideos += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT user_id) FROM interactions`).Scan(&stats.TotalViewers)
	if err != nil {
		return nil, err
	}

	topRows, err := r.pool.Query(ctx, `
		SELECT id, title, trending_score
		FROM videos
		WHERE status = 'ready'
		ORDER BY trending_score DESC, eligible_since DESC
		LIMIT 10`)
	if err != nil {
		return nil, err
	}
	defer topRows.Close()
	for topRows.Next() {
		var e model.TrendingEntry
		if err := topRows.Scan(&e.VideoID, &e.Title, &e.TrendingScore); err != nil {
			return nil, err
		}
		stats.TopTrending = append(stats.TopTrending, e)
	}
	return stats, topRows.Err()
}

func collectVideos(rows pgx.Rows) ([]model.Video, error) {
	defer rows.Close()
	var videos []model.Video
	for rows.Next() {
		var v model.Video
		err := rows.Scan(
			&v.ID, &v.UserID, &v.Title, &v.Description, &v.FileURL, &v.Duration,
			&v.Status, &v.TrendingScore, &v.LikeCount, &v.EligibleSince, &v.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
