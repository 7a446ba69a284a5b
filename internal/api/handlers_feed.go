// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/eventus/internal/feed"
	"github.com/tomtom215/eventus/internal/slug"
)

// feed query bounds.
const (
	maxFeedDays = 31
	maxFeedTags = 10
	maxPageSize = 50
)

// Feed serves GET /feed.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	q := feed.Query{
		UserID:    r.URL.Query().Get("userId"),
		PageToken: r.URL.Query().Get("pageToken"),
		Days:      1,
	}

	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			// Bare dates are accepted too.
			start, err = time.Parse("2006-01-02", raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Validation failed", "start must be RFC3339 or YYYY-MM-DD")
				return
			}
		}
		q.Start = start
	}

	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 || days > maxFeedDays {
			writeError(w, http.StatusBadRequest, "Validation failed", "days must be between 1 and 31")
			return
		}
		q.Days = days
	}

	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > maxPageSize {
			writeError(w, http.StatusBadRequest, "Validation failed", "pageSize must be between 1 and 50")
			return
		}
		q.PageSize = size
	}

	if raw := r.URL.Query().Get("tags"); raw != "" {
		parts := strings.Split(raw, ",")
		if len(parts) > maxFeedTags {
			writeError(w, http.StatusBadRequest, "Validation failed", "at most 10 tags may be requested")
			return
		}
		for _, p := range parts {
			if t := slug.Slugify(strings.TrimSpace(p)); t != "" {
				q.Tags = append(q.Tags, t)
			}
		}
	}

	page, err := h.feed.Fetch(r.Context(), q)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
