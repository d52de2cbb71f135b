package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Brianleach11/popreel/internal/model"
)

// AnnotatorClient calls the external video-intelligence service that
// produces entity labels, text detections and per-frame explicit-content
// likelihoods for an uploaded media object.
type AnnotatorClient struct {
	baseURL string
	http    *http.Client
}

func NewAnnotatorClient(baseURL string, timeout time.Duration) *AnnotatorClient {
	return &AnnotatorClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Annotate runs label, text and explicit-content detection on the media
// object referenced by mediaRef.
func (c *AnnotatorClient) Annotate(ctx context.Context, mediaRef string) (*model.VideoAnnotations, error) {
	payload, err := json.Marshal(map[string]string{"mediaRef": mediaRef})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/annotate", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("annotator returned status %d", resp.StatusCode)
	}

	var annotations model.VideoAnnotations
	if err := json.NewDecoder(resp.Body).Decode(&annotations); err != nil {
		return nil, fmt.Errorf("decode annotator response: %w", err)
	}
	return &annotations, nil
}
