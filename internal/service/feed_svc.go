package service

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Brianleach11/popreel/internal/middleware"
	"github.com/Brianleach11/popreel/internal/model"
	"github.com/Brianleach11/popreel/internal/repository"
)

// Recommender is the external recommendation service: an ordered list of
// video IDs, or empty/error to signal "no personalization available".
type Recommender interface {
	Recommend(ctx context.Context, userID string, limit, offset int) ([]string, error)
}

// URLSigner mints ephemeral signed playback URLs for storage references.
type URLSigner interface {
	SignedURL(ctx context.Context, objectRef string) (string, error)
}

// Narrow store views so tier logic is testable without a database.
type videoStore interface {
	ListTrending(ctx context.Context, limit, offset int) ([]model.Video, error)
	ListExploratory(ctx context.Context, limit, offset int) ([]model.Video, error)
	ListReadyOrdered(ctx context.Context, videoIDs []string) ([]model.Video, error)
	FindReadyByID(ctx context.Context, videoID string) (*model.Video, error)
}

type likeStore interface {
	LikedSet(ctx context.Context, userID string, videoIDs []string) (map[string]bool, error)
}

type userStore interface {
	FindDisplay(ctx context.Context, userID string) (*repository.UserDisplay, error)
}

// FeedService assembles ordered feed pages through the tiered fallback
// chain: personalized → trending → exploratory is never a chain, only
// personalized falls back (to trending). Output order is fixed per tier
// and never changed by auxiliary resolution.
type FeedService struct {
	videos      videoStore
	likes       likeStore
	users       userStore
	recommender Recommender
	signer      URLSigner
	cache       *CacheService
}

func NewFeedService(
	videos *repository.VideoRepo,
	likes *repository.LikeRepo,
	users *repository.UserRepo,
	recommender Recommender,
	signer URLSigner,
	cache *CacheService,
) *FeedService {
	return &FeedService{
		videos:      videos,
		likes:       likes,
		users:       users,
		recommender: recommender,
		signer:      signer,
		cache:       cache,
	}
}

// GetFeed returns one ordered page for the request. Hard failures are
// limited to the ranking store itself; recommendation outages silently
// become the trending tier and per-video auxiliary failures are absorbed.
func (s *FeedService) GetFeed(ctx context.Context, req model.FeedRequest) (*model.FeedResponse, error) {
	offset := (req.Page - 1) * req.PageSize

	var (
		videos   []model.Video
		fellBack bool
		err      error
	)

	switch selectTier(req.Mode, req.UserID != "") {
	case tierPersonalized:
		videos, fellBack, err = s.personalizedTier(ctx, req.UserID, req.PageSize, offset)
	case tierExploratory:
		videos, err = s.videos.ListExploratory(ctx, req.PageSize, offset)
		if err != nil {
			err = fmt.Errorf("%w: list exploratory: %w", model.ErrPersistence, err)
		}
	default:
		return s.trendingTier(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	page, err := s.composePage(ctx, req.UserID, videos, req.PageSize)
	if err != nil {
		return nil, err
	}
	page.FellBack = fellBack
	return page, nil
}

// tier is the selected feed-assembly strategy for one request.
type tier int

const (
	tierTrending tier = iota
	tierPersonalized
	tierExploratory
)

// selectTier applies the mode rules: no viewer identity always means
// trending, regardless of the requested mode.
func selectTier(mode model.FeedMode, authenticated bool) tier {
	if !authenticated {
		return tierTrending
	}
	switch mode {
	case model.ModePersonalized:
		return tierPersonalized
	case model.ModeExploratory:
		return tierExploratory
	default:
		return tierTrending
	}
}

// personalizedTier asks the recommendation service for ranked candidates
// and fetches the eligible subset in exactly the returned order. Service
// failure or an empty candidate list falls through to the trending tier —
// never an error to the caller.
func (s *FeedService) personalizedTier(ctx context.Context, userID string, limit, offset int) ([]model.Video, bool, error) {
	ids, err := s.recommender.Recommend(ctx, userID, limit, offset)
	if err != nil {
		middleware.Logger.Warn().Err(err).Msg("recommender unavailable, falling back to trending")
		videos, err := s.videos.ListTrending(ctx, limit, offset)
		if err != nil {
			return nil, true, fmt.Errorf("%w: list trending: %w", model.ErrPersistence, err)
		}
		return videos, true, nil
	}
	if len(ids) == 0 {
		videos, err := s.videos.ListTrending(ctx, limit, offset)
		if err != nil {
			return nil, true, fmt.Errorf("%w: list trending: %w", model.ErrPersistence, err)
		}
		return videos, true, nil
	}

	videos, err := s.videos.ListReadyOrdered(ctx, ids)
	if err != nil {
		return nil, false, fmt.Errorf("%w: list recommended: %w", model.ErrPersistence, err)
	}
	return videos, false, nil
}

// trendingTier serves the trending ordering, with a short-TTL cache for
// anonymous pages (authenticated pages carry per-viewer like state and
// are assembled fresh).
func (s *FeedService) trendingTier(ctx context.Context, req model.FeedRequest) (*model.FeedResponse, error) {
	if req.UserID == "" {
		if data, err := s.cache.GetTrendingPage(ctx, req.Page, req.PageSize); err == nil && data != nil {
			var cached model.FeedResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	videos, err := s.videos.ListTrending(ctx, req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: list trending: %w", model.ErrPersistence, err)
	}

	page, err := s.composePage(ctx, req.UserID, videos, req.PageSize)
	if err != nil {
		return nil, err
	}

	if req.UserID == "" {
		if err := s.cache.SetTrendingPage(ctx, req.Page, req.PageSize, page); err != nil {
			middleware.Logger.Warn().Err(err).Msg("trending page cache write failed")
		}
	}
	return page, nil
}

// composePage resolves presentation auxiliaries for every video on the
// page concurrently, recombines them by original index and computes
// hasMore. A failed auxiliary omits that field for that one video only.
func (s *FeedService) composePage(ctx context.Context, viewerID string, videos []model.Video, pageSize int) (*model.FeedResponse, error) {
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}

	// Like state is one batched query; on failure every video simply
	// shows unliked.
	liked, err := s.likes.LikedSet(ctx, viewerID, ids)
	if err != nil {
		middleware.Logger.Warn().Err(err).Msg("like-state lookup failed")
		liked = map[string]bool{}
	}

	responses := make([]model.VideoResponse, len(videos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, v := range videos {
		g.Go(func() error {
			responses[i] = s.resolveVideo(gctx, v, liked[v.ID])
			return nil
		})
	}
	// Goroutines never return errors; partial failures degrade per video.
	_ = g.Wait()

	return &model.FeedResponse{
		Videos:  responses,
		HasMore: len(videos) == pageSize,
	}, nil
}

// resolveVideo builds one response item. Each auxiliary failure is logged
// and leaves its field at the zero value.
func (s *FeedService) resolveVideo(ctx context.Context, v model.Video, viewerHasLiked bool) model.VideoResponse {
	resp := model.VideoResponse{
		ID:             v.ID,
		Title:          v.Title,
		Description:    v.Description,
		LikeCount:      v.LikeCount,
		ViewerHasLiked: viewerHasLiked,
		TrendingScore:  v.TrendingScore,
		CreatedAt:      v.CreatedAt,
	}

	if url, err := s.signer.SignedURL(ctx, v.FileURL); err != nil {
		middleware.Logger.Warn().Err(err).Str("video_id", v.ID).Msg("playback URL signing failed")
	} else {
		resp.PlaybackURL = url
	}

	display, err := s.users.FindDisplay(ctx, v.UserID)
	if err != nil {
		middleware.Logger.Warn().Err(err).Str("video_id", v.ID).Msg("uploader lookup failed")
		return resp
	}
	resp.Username = display.Username
	if display.AvatarRef != "" {
		if url, err := s.signer.SignedURL(ctx, display.AvatarRef); err == nil {
			resp.AvatarURL = url
		}
	}
	return resp
}

// GetVideo returns a single eligible video with auxiliaries resolved.
// Anonymous lookups are served cache-aside; authenticated ones carry
// per-viewer like state and are assembled fresh.
func (s *FeedService) GetVideo(ctx context.Context, viewerID, videoID string) (*model.VideoResponse, error) {
	if viewerID == "" {
		if data, err := s.cache.GetVideo(ctx, videoID); err == nil && data != nil {
			var cached model.VideoResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	video, err := s.videos.FindReadyByID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	liked, err := s.likes.LikedSet(ctx, viewerID, []string{videoID})
	if err != nil {
		liked = map[string]bool{}
	}
	resp := s.resolveVideo(ctx, *video, liked[videoID])

	if viewerID == "" {
		if err := s.cache.SetVideo(ctx, videoID, resp); err != nil {
			middleware.Logger.Warn().Err(err).Str("video_id", videoID).Msg("video cache write failed")
		}
	}
	return &resp, nil
}
