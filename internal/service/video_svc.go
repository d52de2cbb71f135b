package service

import (
	"context"
	"fmt"

	"github.com/Brianleach11/popreel/internal/middleware"
	"github.com/Brianleach11/popreel/internal/model"
	"github.com/Brianleach11/popreel/internal/repository"
)

// VideoService handles like toggles, owner deletes and corpus stats.
type VideoService struct {
	videos *repository.VideoRepo
	likes  *repository.LikeRepo
	cache  *CacheService
}

func NewVideoService(videos *repository.VideoRepo, likes *repository.LikeRepo, cache *CacheService) *VideoService {
	return &VideoService{videos: videos, likes: likes, cache: cache}
}

// ToggleLike flips the viewer's like state for a video. Idempotent per
// (viewer, video): toggling twice restores the original state and count.
func (s *VideoService) ToggleLike(ctx context.Context, userID, videoID string) (*model.LikeResponse, error) {
	// Likes only apply to eligible videos
	if _, err := s.videos.FindReadyByID(ctx, videoID); err != nil {
		return nil, err
	}

	liked, count, err := s.likes.Toggle(ctx, userID, videoID)
	if err != nil {
		return nil, fmt.Errorf("%w: toggle like: %w", model.ErrPersistence, err)
	}

	if err := s.cache.InvalidateVideo(ctx, videoID); err != nil {
		middleware.Logger.Warn().Err(err).Str("video_id", videoID).Msg("cache invalidate failed")
	}

	return &model.LikeResponse{VideoID: videoID, Liked: liked, LikeCount: count}, nil
}

// Delete removes a video owned by the caller. The storage object itself
// belongs to the external store; its cleanup is best-effort downstream.
func (s *VideoService) Delete(ctx context.Context, userID, videoID string) error {
	if err := s.videos.DeleteOwned(ctx, videoID, userID); err != nil {
		return err
	}

	if err := s.cache.InvalidateVideo(ctx, videoID); err != nil {
		middleware.Logger.Warn().Err(err).Str("video_id", videoID).Msg("cache invalidate failed")
	}
	return nil
}

// GetStats returns aggregate corpus statistics.
func (s *VideoService) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	return s.videos.GetStats(ctx)
}
