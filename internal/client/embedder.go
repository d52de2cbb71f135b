package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EmbedderClient calls the external embedding service. An embedder failure
// is fatal to that upload's ingestion: the record stays in processing.
type EmbedderClient struct {
	baseURL string
	dim     int
	http    *http.Client
}

func NewEmbedderClient(baseURL string, dim int, timeout time.Duration) *EmbedderClient {
	return &EmbedderClient{
		baseURL: baseURL,
		dim:     dim,
		http:    &http.Client{Timeout: timeout},
	}
}

// Embed converts a text blob into a fixed-length vector.
func (c *EmbedderClient) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(map[string]string{"input": text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/embeddings", bytes.NewReader(payload))
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
		return nil, fmt.Errorf("embedder returned status %d", resp.StatusCode)
	}

	var body struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode embedder response: %w", err)
	}
	if len(body.Embedding) != c.dim {
		return nil, fmt.Errorf("embedder returned %d dimensions, want %d", len(body.Embedding), c.dim)
	}
	return body.Embedding, nil
}
