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
	"golang.org/x/time/rate"

	"github.com/tomtom215/eventus/internal/logging"
	"github.com/tomtom215/eventus/internal/metrics"
	"github.com/tomtom215/eventus/internal/models"
)

// upstream retry policy: 3 attempts with attempt*250ms linear backoff.
const (
	maxAttempts = 3
	backoffUnit = 250 * time.Millisecond
)

// llmClient calls the chat-completion upstream for tag and category
// classification. All requests run at temperature 0 and demand strict
// JSON back.
type llmClient struct {
	baseURL string
	apiKey  string
	model   string
	maxSugg int
	debug   bool

	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	limiter *rate.Limiter
}

func newLLMClient(cfg Config) *llmClient {
	timeout := time.Duration(cfg.TimeoutSeconds * float64(time.Second))
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 4
	}
	return &llmClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.LLMModel,
		maxSugg: cfg.MaxSuggestions,
		debug:   cfg.Debug,
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "llm",
			MaxRequests: 2,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (c *llmClient) healthy() bool {
	return c.breaker.State() != gobreaker.StateOpen
}

// chat request/response wire shapes (OpenAI-compatible).
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
	ResponseFmt *respFormat   `json:"response_format,omitempty"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete sends one chat completion through the limiter, breaker and
// retry loop and returns the raw assistant content.
func (c *llmClient) complete(ctx context.Context, system, user string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFmt: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	start := time.Now()
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, c.baseURL+"/chat/completions", body)
	})
	metrics.ClassifyDuration.WithLabelValues("llm").Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.ClassifyErrors.WithLabelValues("llm", "breaker").Inc()
		} else {
			metrics.ClassifyErrors.WithLabelValues("llm", "http").Inc()
		}
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		metrics.ClassifyErrors.WithLabelValues("llm", "parse").Inc()
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// post issues the request with linear-backoff retries. Only transport
// errors and 5xx/429 statuses retry; other statuses fail immediately.
func (c *llmClient) post(ctx context.Context, url string, body []byte) ([]byte, error) {
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
	return nil, fmt.Errorf("llm request failed after %d attempts: %w", maxAttempts, lastErr)
}

// classifyTags requests up to maxSugg tag candidates across the five
// facets. A malformed response degrades to an empty candidate list.
func (c *llmClient) classifyTags(ctx context.Context, title, description string) ([]models.TagCandidate, error) {
	content, err := c.complete(ctx, tagSystemPrompt, tagUserPrompt(title, description, c.maxSugg))
	if err != nil {
		return nil, err
	}

	candidates, perr := parseTagResponse(content)
	if perr != nil {
		// Parse errors degrade silently; the event just goes untagged.
		logging.Ctx(ctx).Warn().Err(perr).Str("title", title).Msg("Unparseable tag classification, dropping")
		metrics.ClassifyErrors.WithLabelValues("llm", "parse").Inc()
		return nil, nil
	}
	if c.debug {
		logging.Ctx(ctx).Debug().
			Str("title", title).
			Int("candidates", len(candidates)).
			Msg("Tag classification")
	}
	return candidates, nil
}

// CategoryRequest describes a series awaiting category placement and
// the host's existing categories.
type CategoryRequest struct {
	SeriesTitle string
	Description string
	Existing    []ExistingCategory
}

// ExistingCategory is one reuse candidate shown to the classifier.
type ExistingCategory struct {
	Name         string
	SampleTitles []string
}

// CategoryDecision is the classifier's placement verdict.
type CategoryDecision struct {
	Name   string
	Action string // "use-existing" or "create-new"
	Reason string
}

// classifyCategory requests a category placement. A malformed response
// returns nil, nil so callers leave the series uncategorized.
func (c *llmClient) classifyCategory(ctx context.Context, req CategoryRequest) (*CategoryDecision, error) {
	content, err := c.complete(ctx, categorySystemPrompt, categoryUserPrompt(req))
	if err != nil {
		return nil, err
	}

	decision, perr := parseCategoryResponse(content)
	if perr != nil {
		logging.Ctx(ctx).Warn().Err(perr).Str("series", req.SeriesTitle).Msg("Unparseable category classification, dropping")
		metrics.ClassifyErrors.WithLabelValues("llm", "parse").Inc()
		return nil, nil
	}
	return decision, nil
}
