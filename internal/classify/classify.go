// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package classify is the gateway to the LLM tag classifier and the
// embedding model. Both upstreams sit behind a circuit breaker; LLM
// calls also pass a client-side rate limiter. LLM parse failures
// degrade to empty candidate lists and never surface as errors.
package classify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/slug"
)

// Input is the composite classification request the orchestrator issues
// per event.
type Input struct {
	Title       string
	Description string
	// Vector carries a previously stored embedding when the caller
	// wants to keep it instead of re-embedding.
	Vector []float64
}

// Metadata reports which upstreams a classification actually used.
type Metadata struct {
	LLMUsed        bool `json:"llmUsed"`
	EmbeddingsUsed bool `json:"embeddingsUsed"`
	Reused         bool `json:"reused,omitempty"`
}

// Result is the composite classification outcome.
type Result struct {
	Tags       []string
	Candidates []models.TagCandidate
	Vector     []float64
	Metadata   Metadata
}

// Gateway bundles the two upstream clients.
type Gateway struct {
	llm   *llmClient
	embed *embedClient
	dim   int
	debug bool
}

// Config configures the gateway. BaseURL and APIKey are shared by both
// upstreams; EmbeddingDim is the fixed deployment dimension.
type Config struct {
	BaseURL        string
	APIKey         string
	LLMModel       string
	EmbeddingModel string
	EmbeddingDim   int
	MaxSuggestions int
	TimeoutSeconds float64
	RequestsPerSec float64
	Debug          bool
}

// New creates a gateway from config.
func New(cfg Config) *Gateway {
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = 15
	}
	return &Gateway{
		llm:   newLLMClient(cfg),
		embed: newEmbedClient(cfg),
		dim:   cfg.EmbeddingDim,
		debug: cfg.Debug,
	}
}

// ClassifyTags asks the LLM for tag candidates ordered by descending
// confidence. Parse failures yield an empty list, nil error.
func (g *Gateway) ClassifyTags(ctx context.Context, title, description string) ([]models.TagCandidate, error) {
	return g.llm.classifyTags(ctx, title, description)
}

// ClassifyCategory asks the LLM to place a series into a host category.
func (g *Gateway) ClassifyCategory(ctx context.Context, req CategoryRequest) (*CategoryDecision, error) {
	return g.llm.classifyCategory(ctx, req)
}

// Embed returns the embedding for one text.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := g.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedMany embeds a batch in one upstream call. Every returned vector
// has the deployment dimension.
func (g *Gateway) EmbedMany(ctx context.Context, texts []string) ([][]float64, error) {
	vecs, err := g.embed.embedMany(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i, v := range vecs {
		if len(v) != g.dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, want %d", i, len(v), g.dim)
		}
	}
	return vecs, nil
}

// Classify runs tag classification and, when candidates survive the
// slug filter, embeds the enriched text. A pre-supplied vector skips
// the embedding call.
func (g *Gateway) Classify(ctx context.Context, in Input) (*Result, error) {
	candidates, err := g.ClassifyTags(ctx, in.Title, in.Description)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Candidates: candidates,
		Tags:       TagsFromCandidates(candidates),
		Metadata:   Metadata{LLMUsed: true},
	}

	if in.Vector != nil {
		result.Vector = in.Vector
		return result, nil
	}
	if len(result.Tags) == 0 {
		return result, nil
	}

	vec, err := g.Embed(ctx, EnrichedText(in.Title, in.Description, result.Tags))
	if err != nil {
		return nil, err
	}
	result.Vector = vec
	result.Metadata.EmbeddingsUsed = true
	return result, nil
}

// Healthy reports whether both breakers are closed.
func (g *Gateway) Healthy() bool {
	return g.llm.healthy() && g.embed.healthy()
}

// TagsFromCandidates orders candidates by descending confidence,
// slugifies, stop-word-filters and de-duplicates, preserving that
// confidence order.
func TagsFromCandidates(candidates []models.TagCandidate) []string {
	ordered := make([]models.TagCandidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})

	seen := make(map[string]struct{}, len(ordered))
	tags := make([]string, 0, len(ordered))
	for _, c := range ordered {
		t := slug.Slugify(c.Tag)
		if t == "" || slug.IsStopWord(t) {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

// EnrichedText builds the embedding input from title, description and
// the tag list.
func EnrichedText(title, description string, tags []string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	if description != "" {
		b.WriteString(description)
		b.WriteString("\n")
	}
	b.WriteString("\nRelated topics: ")
	b.WriteString(strings.Join(tags, ", "))
	return b.String()
}
