package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
)

// RecommenderClient calls the external recommendation service for an
// ordered list of candidate video IDs. Failures here are always
// fallback-capable: the feed assembler degrades to the trending tier.
type RecommenderClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]string]
}

func NewRecommenderClient(baseURL string, timeout time.Duration) *RecommenderClient {
	breaker := gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:    "recommender",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &RecommenderClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

// Recommend returns ranked video IDs for a viewer. An empty slice means
// "no personalization available" and is not an error. The caller must
// preserve the returned order.
func (c *RecommenderClient) Recommend(ctx context.Context, userID string, limit, offset int) ([]string, error) {
	return c.breaker.Execute(func() ([]string, error) {
		q := url.Values{}
		q.Set("user_id", userID)
		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.baseURL+"/api/recommendations?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("recommender returned status %d", resp.StatusCode)
		}

		var body struct {
			VideoIDs []string `json:"videoIds"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decode recommender response: %w", err)
		}
		return body.VideoIDs, nil
	})
}
