package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Brianleach11/popreel/internal/model"
	"github.com/Brianleach11/popreel/internal/repository"
)

type fakeVideoStore struct {
	trending    []model.Video
	exploratory []model.Video
	byID        map[string]model.Video

	trendingErr   error
	trendingCalls int
}

func (f *fakeVideoStore) ListTrending(_ context.Context, limit, offset int) ([]model.Video, error) {
	f.trendingCalls++
	if f.trendingErr != nil {
		return nil, f.trendingErr
	}
	return pageOf(f.trending, limit, offset), nil
}

func (f *fakeVideoStore) ListExploratory(_ context.Context, limit, offset int) ([]model.Video, error) {
	return pageOf(f.exploratory, limit, offset), nil
}

func (f *fakeVideoStore) ListReadyOrdered(_ context.Context, videoIDs []string) ([]model.Video, error) {
	var out []model.Video
	for _, id := range videoIDs {
		if v, ok := f.byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVideoStore) FindReadyByID(_ context.Context, videoID string) (*model.Video, error) {
	if v, ok := f.byID[videoID]; ok {
		return &v, nil
	}
	return nil, errors.New("not found")
}

func pageOf(videos []model.Video, limit, offset int) []model.Video {
	if offset >= len(videos) {
		return nil
	}
	end := offset + limit
	if end > len(videos) {
		end = len(videos)
	}
	return videos[offset:end]
}

type fakeLikeStore struct {
	liked map[string]bool
	err   error
}

func (f *fakeLikeStore) LikedSet(_ context.Context, _ string, _ []string) (map[string]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.liked, nil
}

type fakeUserStore struct{}

func (fakeUserStore) FindDisplay(_ context.Context, userID string) (*repository.UserDisplay, error) {
	return &repository.UserDisplay{Username: "u-" + userID}, nil
}

type fakeRecommender struct {
	ids []string
	err error
}

func (f *fakeRecommender) Recommend(_ context.Context, _ string, _, _ int) ([]string, error) {
	return f.ids, f.err
}

type fakeSigner struct {
	err error
}

func (f *fakeSigner) SignedURL(_ context.Context, objectRef string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "signed://" + objectRef, nil
}

func testVideos(ids ...string) ([]model.Video, map[string]model.Video) {
	created := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	list := make([]model.Video, len(ids))
	byID := make(map[string]model.Video, len(ids))
	for i, id := range ids {
		v := model.Video{ID: id, UserID: "uploader", Title: "t-" + id, FileURL: "obj/" + id, Status: model.StatusReady, CreatedAt: created}
		list[i] = v
		byID[id] = v
	}
	return list, byID
}

func newTestFeedService(store *fakeVideoStore, rec *fakeRecommender, likes *fakeLikeStore) *FeedService {
	if likes == nil {
		likes = &fakeLikeStore{liked: map[string]bool{}}
	}
	return &FeedService{
		videos:      store,
		likes:       likes,
		users:       fakeUserStore{},
		recommender: rec,
		signer:      &fakeSigner{},
		cache:       &CacheService{},
	}
}

func TestSelectTier(t *testing.T) {
	tests := []struct {
		name          string
		mode          model.FeedMode
		authenticated bool
		want          tier
	}{
		{"anonymous personalized forced to trending", model.ModePersonalized, false, tierTrending},
		{"anonymous exploratory forced to trending", model.ModeExploratory, false, tierTrending},
		{"authenticated personalized", model.ModePersonalized, true, tierPersonalized},
		{"authenticated trending", model.ModeTrending, true, tierTrending},
		{"authenticated exploratory", model.ModeExploratory, true, tierExploratory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := selectTier(tt.mode, tt.authenticated); got != tt.want {
				t.Errorf("selectTier = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetFeed_PersonalizedPreservesRecommenderOrder(t *testing.T) {
	_, byID := testVideos("a", "b", "c", "d")
	store := &fakeVideoStore{byID: byID}
	rec := &fakeRecommender{ids: []string{"c", "a", "d"}}
	svc := newTestFeedService(store, rec, nil)

	feed, err := svc.GetFeed(context.Background(), model.FeedRequest{
		UserID: "viewer", Mode: model.ModePersonalized, Page: 1, PageSize: 20,
	})
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if feed.FellBack {
		t.Error("healthy recommender marked as fallback")
	}
	gotOrder := make([]string, len(feed.Videos))
	for i, v := range feed.Videos {
		gotOrder[i] = v.ID
	}
	want := []string{"c", "a", "d"}
	for i := range want {
		if gotOrder[i] != want[i] {
			t.Fatalf("order = %v, want %v", gotOrder, want)
		}
	}
}

func TestGetFeed_RecommenderFailureFallsBackToTrending(t *testing.T) {
	trending, byID := testVideos("t1", "t2")
	store := &fakeVideoStore{trending: trending, byID: byID}
	rec := &fakeRecommender{err: errors.New("connection refused")}
	svc := newTestFeedService(store, rec, nil)

	feed, err := svc.GetFeed(context.Background(), model.FeedRequest{
		UserID: "viewer", Mode: model.ModePersonalized, Page: 1, PageSize: 20,
	})
	if err != nil {
		t.Fatalf("fallback must not surface the recommender error: %v", err)
	}
	if !feed.FellBack {
		t.Error("fallback not flagged")
	}
	if len(feed.Videos) != 2 || feed.Videos[0].ID != "t1" {
		t.Errorf("fallback did not serve the trending ordering: %+v", feed.Videos)
	}
	if store.trendingCalls != 1 {
		t.Errorf("trending queried %d times, want 1", store.trendingCalls)
	}
}

func TestGetFeed_FallbackStoreFailureIsPersistenceError(t *testing.T) {
	store := &fakeVideoStore{trendingErr: errors.New("db down")}
	rec := &fakeRecommender{err: errors.New("connection refused")}
	svc := newTestFeedService(store, rec, nil)

	_, err := svc.GetFeed(context.Background(), model.FeedRequest{
		UserID: "viewer", Mode: model.ModePersonalized, Page: 1, PageSize: 20,
	})
	if !errors.Is(err, model.ErrPersistence) {
		t.Errorf("fallback store error = %v, want ErrPersistence", err)
	}
}

func TestGetFeed_EmptyRecommendationsFallBack(t *testing.T) {
	trending, byID := testVideos("t1")
	store := &fakeVideoStore{trending: trending, byID: byID}
	rec := &fakeRecommender{ids: nil}
	svc := newTestFeedService(store, rec, nil)

	feed, err := svc.GetFeed(context.Background(), model.FeedRequest{
		UserID: "viewer", Mode: model.ModePersonalized, Page: 1, PageSize: 20,
	})
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if !feed.FellBack {
		t.Error("empty candidate list not treated as fallback")
	}
	if len(feed.Videos) != 1 {
		t.Errorf("got %d videos, want 1", len(feed.Videos))
	}
}

func TestGetFeed_HasMore(t *testing.T) {
	trending, byID := testVideos("a", "b", "c", "d", "e")
	store := &fakeVideoStore{trending: trending, byID: byID}
	svc := newTestFeedService(store, &fakeRecommender{}, nil)

	// Full page → more may exist
	feed, err := svc.GetFeed(context.Background(), model.FeedRequest{Mode: model.ModeTrending, Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if !feed.HasMore {
		t.Error("full page should report hasMore")
	}

	// Short page → exhausted
	feed, err = svc.GetFeed(context.Background(), model.FeedRequest{Mode: model.ModeTrending, Page: 3, PageSize: 2})
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if feed.HasMore {
		t.Error("short page should not report hasMore")
	}
	if len(feed.Videos) != 1 {
		t.Errorf("page 3 has %d videos, want 1", len(feed.Videos))
	}
}

func TestGetFeed_LikeStateFailureDegradesToUnliked(t *testing.T) {
	trending, byID := testVideos("a", "b")
	store := &fakeVideoStore{trending: trending, byID: byID}
	likes := &fakeLikeStore{err: errors.New("db down")}
	svc := newTestFeedService(store, &fakeRecommender{}, likes)

	feed, err := svc.GetFeed(context.Background(), model.FeedRequest{
		UserID: "viewer", Mode: model.ModeTrending, Page: 1, PageSize: 20,
	})
	if err != nil {
		t.Fatalf("like-state failure must not fail the page: %v", err)
	}
	for _, v := range feed.Videos {
		if v.ViewerHasLiked {
			t.Errorf("video %s marked liked despite lookup failure", v.ID)
		}
	}
}

func TestGetFeed_SignerFailureOmitsPlaybackURL(t *testing.T) {
	trending, byID := testVideos("a")
	store := &fakeVideoStore{trending: trending, byID: byID}
	svc := newTestFeedService(store, &fakeRecommender{}, nil)
	svc.signer = &fakeSigner{err: errors.New("signer down")}

	feed, err := svc.GetFeed(context.Background(), model.FeedRequest{Mode: model.ModeTrending, Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("signer failure must not fail the page: %v", err)
	}
	if feed.Videos[0].PlaybackURL != "" {
		t.Errorf("playback URL = %q, want empty", feed.Videos[0].PlaybackURL)
	}
	if feed.Videos[0].ID != "a" {
		t.Errorf("video dropped instead of degraded")
	}
}

func TestGetFeed_ViewerLikeStateCarried(t *testing.T) {
	trending, byID := testVideos("a", "b")
	store := &fakeVideoStore{trending: trending, byID: byID}
	likes := &fakeLikeStore{liked: map[string]bool{"b": true}}
	svc := newTestFeedService(store, &fakeRecommender{}, likes)

	feed, err := svc.GetFeed(context.Background(), model.FeedRequest{
		UserID: "viewer", Mode: model.ModeTrending, Page: 1, PageSize: 20,
	})
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if feed.Videos[0].ViewerHasLiked || !feed.Videos[1].ViewerHasLiked {
		t.Errorf("like state wrong: %+v", feed.Videos)
	}
}
