// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package classify

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventus/internal/models"
)

// tagResponse is the strict JSON shape the tag prompt demands.
type tagResponse struct {
	Tags []struct {
		Label      string  `json:"label"`
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	} `json:"tags"`
}

// categoryResponse is the strict JSON shape the category prompt demands.
type categoryResponse struct {
	Category struct {
		Name   string `json:"name"`
		Action string `json:"action"`
		Reason string `json:"reason"`
	} `json:"category"`
}

// stripFences removes a markdown code fence if the model wrapped its
// JSON in one despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseTagResponse decodes the classifier output into candidates with
// clamped confidences. Candidates with empty labels are dropped.
func parseTagResponse(content string) ([]models.TagCandidate, error) {
	var resp tagResponse
	if err := json.Unmarshal([]byte(stripFences(content)), &resp); err != nil {
		return nil, fmt.Errorf("parse tag response: %w", err)
	}

	candidates := make([]models.TagCandidate, 0, len(resp.Tags))
	for _, t := range resp.Tags {
		if strings.TrimSpace(t.Label) == "" {
			continue
		}
		conf := t.Confidence
		if conf < 0 {
			conf = 0
		}
		if conf > 1 {
			conf = 1
		}
		candidates = append(candidates, models.TagCandidate{
			Tag:        t.Label,
			Confidence: conf,
			Rationale:  t.Category,
			Source:     "llm",
		})
	}
	return candidates, nil
}

// parseCategoryResponse decodes the category classifier output.
func parseCategoryResponse(content string) (*CategoryDecision, error) {
	var resp categoryResponse
	if err := json.Unmarshal([]byte(stripFences(content)), &resp); err != nil {
		return nil, fmt.Errorf("parse category response: %w", err)
	}
	name := strings.TrimSpace(resp.Category.Name)
	if name == "" {
		return nil, fmt.Errorf("category response has empty name")
	}
	action := resp.Category.Action
	if action != "use-existing" && action != "create-new" {
		return nil, fmt.Errorf("category response has unknown action %q", action)
	}
	return &CategoryDecision{
		Name:   name,
		Action: action,
		Reason: resp.Category.Reason,
	}, nil
}
