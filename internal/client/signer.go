package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// SignerClient resolves object-storage references into ephemeral signed
// playback URLs. Signing failures are per-item: the feed assembler omits
// the URL for that one video and continues.
type SignerClient struct {
	baseURL string
	http    *http.Client
}

func NewSignerClient(baseURL string, timeout time.Duration) *SignerClient {
	return &SignerClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SignedURL returns a time-limited playback URL for the given object ref.
func (c *SignerClient) SignedURL(ctx context.Context, objectRef string) (string, error) {
	q := url.Values{}
	q.Set("object", objectRef)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/sign?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("signer returned status %d", resp.StatusCode)
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode signer response: %w", err)
	}
	return body.URL, nil
}
