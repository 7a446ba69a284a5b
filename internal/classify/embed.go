// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package classify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/eventus/internal/metrics"
)

// embedClient calls the embedding upstream. Batches go out as a single
// request; the response must return one vector per input in order.
type embedClient struct {
	baseURL string
	apiKey  string
	model   string

	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func newEmbedClient(cfg Config) *embedClient {
	timeout := time.Duration(cfg.TimeoutSeconds * float64(time.Second))
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &embedClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.EmbeddingModel,
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "embedding",
			MaxRequests: 2,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (c *embedClient) healthy() bool {
	return c.breaker.State() != gobreaker.StateOpen
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// embedMany embeds the batch in one call, preserving input order.
func (c *embedClient) embedMany(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	start := time.Now()
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, c.baseURL+"/embeddings", body)
	})
	metrics.ClassifyDuration.WithLabelValues("embedding").Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.ClassifyErrors.WithLabelValues("embedding", "breaker").Inc()
		} else {
			metrics.ClassifyErrors.WithLabelValues("embedding", "http").Inc()
		}
		return nil, err
	}

	var resp embedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		metrics.ClassifyErrors.WithLabelValues("embedding", "parse").Inc()
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embed response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embed response index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// post issues the request with the shared linear-backoff retry policy.
func (c *embedClient) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * backoffUnit):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return data, nil
		}
		lastErr = fmt.Errorf("upstream status %d", resp.StatusCode)
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("embedding request failed after %d attempts: %w", maxAttempts, lastErr)
}
