// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package classify

import (
	"fmt"
	"strings"
)

// tagSystemPrompt steers the tag classifier. The five facets keep the
// suggestion set broad enough for topic, audience and vibe matching.
const tagSystemPrompt = `You label community events with tags. ` +
	`Respond with strict JSON only, shaped {"tags":[{"label":"...","category":"...","confidence":0.0}]}. ` +
	`Labels are nouns or noun phrases. Cover five facets: the specific topic, ` +
	`the activity type, a broader category, the audience, and the vibe. ` +
	`Confidence is a number between 0 and 1. No prose outside the JSON.`

func tagUserPrompt(title, description string, maxSuggestions int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest up to %d tags for this event.\n\nTitle: %s\n", maxSuggestions, title)
	if description != "" {
		fmt.Fprintf(&b, "Description: %s\n", description)
	}
	return b.String()
}

// categorySystemPrompt steers the series-to-category classifier.
const categorySystemPrompt = `You organize a host's event series into user-friendly categories. ` +
	`Respond with strict JSON only, shaped {"category":{"name":"...","action":"use-existing|create-new","reason":"..."}}. ` +
	`Strongly prefer reusing an existing category when one fits. ` +
	`New category names are 2-4 words. For instructional programming, ` +
	`prefer names that make the class subject explicit. No prose outside the JSON.`

func categoryUserPrompt(req CategoryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Place this event series into a category.\n\nSeries: %s\n", req.SeriesTitle)
	if req.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", req.Description)
	}
	if len(req.Existing) == 0 {
		b.WriteString("\nThe host has no categories yet.\n")
		return b.String()
	}
	b.WriteString("\nExisting categories:\n")
	for _, c := range req.Existing {
		samples := c.SampleTitles
		if len(samples) > 5 {
			samples = samples[:5]
		}
		fmt.Fprintf(&b, "- %s (e.g. %s)\n", c.Name, strings.Join(samples, "; "))
	}
	return b.String()
}
