package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs. Trending pages are short-lived because the worker refreshes
// scores continuously; video responses live slightly longer.
const (
	TrendingPageTTL = 30 * time.Second
	VideoCacheTTL   = 5 * time.Minute
)

// CacheService provides a Redis cache-aside layer for trending feed pages
// and single-video lookups. Personalized and exploratory pages are never
// cached: one is per-viewer, the other reshuffles on every call.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or
// connection fails, it returns a CacheService with a nil client (cache
// operations become no-ops).
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Println("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, caching disabled: %v", redisURL, err)
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, caching disabled: %v", err)
		return &CacheService{}
	}

	log.Println("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetTrendingPage retrieves a cached trending page. Returns nil if not
// cached or cache is disabled.
func (c *CacheService) GetTrendingPage(ctx context.Context, page, pageSize int) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, trendingPageKey(page, pageSize)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetTrendingPage stores a trending page in cache.
func (c *CacheService) SetTrendingPage(ctx context.Context, page, pageSize int, data any) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, trendingPageKey(page, pageSize), b, TrendingPageTTL).Err()
}

// InvalidateTrendingPages drops all cached trending pages.
func (c *CacheService) InvalidateTrendingPages(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, "feed:trending:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// GetVideo retrieves a cached video response. Returns nil if not cached.
func (c *CacheService) GetVideo(ctx context.Context, videoID string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, videoKey(videoID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetVideo stores a video response in cache.
func (c *CacheService) SetVideo(ctx context.Context, videoID string, data any) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, videoKey(videoID), b, VideoCacheTTL).Err()
}

// InvalidateVideo removes a video from cache (called after likes, deletes
// and trending updates).
func (c *CacheService) InvalidateVideo(ctx context.Context, videoID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, videoKey(videoID)).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func trendingPageKey(page, pageSize int) string {
	return fmt.Sprintf("feed:trending:%d:%d", page, pageSize)
}

func videoKey(videoID string) string {
	return fmt.Sprintf("video:%s", videoID)
}
