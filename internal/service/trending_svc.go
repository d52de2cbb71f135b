package service

import (
	"context"
	"math"
	"time"

	"github.com/Brianleach11/popreel/internal/repository"
	"github.com/Brianleach11/popreel/pkg/clock"
)

// Trending decays much faster than the per-interaction score: 20% per day
// versus 5% per week. The two schedules are layered deliberately — each
// logged score already carries its write-time weekly decay, and the
// aggregator re-weights it by recency.
const dailyDecayFactor = 0.8

// TrendingService recomputes the per-video trending score from the
// interaction log. It supports full recomputation (the authoritative
// mode, run periodically) and incremental deltas (applied by the worker
// between full passes). Both converge on the same sum of decayed terms:
// a delta is just the full formula restricted to the new interactions,
// and the commutative add makes arrival order irrelevant. The periodic
// full pass overwrites any drift the running sum accumulates as old
// contributions decay (full-recompute-wins).
type TrendingService struct {
	videos       *repository.VideoRepo
	interactions *repository.InteractionRepo
	clock        clock.Clock
}

func NewTrendingService(videos *repository.VideoRepo, interactions *repository.InteractionRepo, clk clock.Clock) *TrendingService {
	return &TrendingService{videos: videos, interactions: interactions, clock: clk}
}

// Recalculate performs the full recomputation for one video and stores
// the result, overwriting any incrementally accumulated value.
func (s *TrendingService) Recalculate(ctx context.Context, videoID string) error {
	scores, err := s.interactions.ListForVideo(ctx, videoID)
	if err != nil {
		return err
	}
	total := ComputeTrendingScore(scores, s.clock.Now())
	return s.videos.SetTrendingScore(ctx, videoID, total)
}

// ApplyDelta adds the decayed contribution of newly scored interactions
// to the stored trending value.
func (s *TrendingService) ApplyDelta(ctx context.Context, videoID string, scored []repository.ScoreAt) error {
	now := s.clock.Now()
	var delta float64
	for _, sc := range scored {
		delta += decayedContribution(sc.Score, sc.ObservedAt, now)
	}
	if delta == 0 {
		return nil
	}
	return s.videos.AddTrendingDelta(ctx, videoID, delta)
}

// ComputeTrendingScore evaluates Σ score_i * 0.8^daysSince_i at the given
// instant. Pure; shared by the full recompute and its tests.
func ComputeTrendingScore(scores []repository.ScoreAt, now time.Time) float64 {
	var total float64
	for _, s := range scores {
		total += decayedContribution(s.Score, s.ObservedAt, now)
	}
	return total
}

func decayedContribution(score float64, observedAt, now time.Time) float64 {
	daysSince := now.Sub(observedAt).Hours() / 24
	return score * math.Pow(dailyDecayFactor, daysSince)
}
