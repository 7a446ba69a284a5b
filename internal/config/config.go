// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package config loads and validates the Eventus configuration using
// koanf: struct defaults, then an optional YAML file, then EVENTUS_
// environment variables, each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Classify ClassifyConfig `koanf:"classify"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Feed     FeedConfig     `koanf:"feed"`
	Logging  LoggingConfig  `koanf:"logging"`

	// DisplayTimezone resolves all day boundaries (feed windows, today
	// view, ingest chunks).
	DisplayTimezone string `koanf:"display_timezone"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr        string        `koanf:"addr"`
	APIKey      string        `koanf:"api_key"`
	CORSOrigins []string      `koanf:"cors_origins"`
	RateLimit   int           `koanf:"rate_limit"` // requests/min per IP
	Timeout     time.Duration `koanf:"timeout"`
}

// StoreConfig configures the BadgerDB document store.
type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// ClassifyConfig configures the LLM and embedding upstreams.
type ClassifyConfig struct {
	LLMBaseURL     string        `koanf:"llm_base_url"`
	LLMAPIKey      string        `koanf:"llm_api_key"`
	LLMModel       string        `koanf:"llm_model"`
	EmbeddingModel string        `koanf:"embedding_model"`
	EmbeddingDim   int           `koanf:"embedding_dim"`
	MaxSuggestions int           `koanf:"max_suggestions"`
	Timeout        time.Duration `koanf:"timeout"`
	RequestsPerSec float64       `koanf:"requests_per_sec"`
	Debug          bool          `koanf:"debug"`
}

// SourceConfig declares one calendar source to ingest.
type SourceConfig struct {
	ID       string `koanf:"id"`
	Kind     string `koanf:"kind"` // "calendar-feed" or "mock"
	URL      string `koanf:"url"`
	Label    string `koanf:"label"`
	TimeZone string `koanf:"time_zone"`
	// ChunkDays overrides the kind default (7 for calendar-feed, 15 for
	// mock).
	ChunkDays int `koanf:"chunk_days"`
}

// IngestConfig configures the scheduler and source set.
type IngestConfig struct {
	Sources       []SourceConfig `koanf:"sources"`
	Interval      time.Duration  `koanf:"interval"`
	LookbackDays  int            `koanf:"lookback_days"`
	LookaheadDays int            `koanf:"lookahead_days"`
	TagBlocklist  []string       `koanf:"tag_blocklist"`
}

// FeedWeights are the six ranking signal weights. They must sum to 1.
type FeedWeights struct {
	Topic       float64 `koanf:"topic"`
	ContentType float64 `koanf:"content_type"`
	Time        float64 `koanf:"time"`
	Style       float64 `koanf:"style"`
	Recency     float64 `koanf:"recency"`
	Popularity  float64 `koanf:"popularity"`
}

// FeedConfig configures the ranker and pagination bounds.
type FeedConfig struct {
	Weights         FeedWeights   `koanf:"weights"`
	ExploitRatio    float64       `koanf:"exploit_ratio"`
	DefaultPageSize int           `koanf:"default_page_size"`
	MaxPageSize     int           `koanf:"max_page_size"`
	CandidateTTL    time.Duration `koanf:"candidate_ttl"`
}

// LoggingConfig mirrors logging.Config for the koanf layer.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Validate checks invariants that must hold before startup. Violations
// are fatal: the process must not come up half-configured.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.APIKey == "" {
		errs = append(errs, errors.New("server.api_key is required"))
	}
	if c.Classify.LLMAPIKey == "" {
		errs = append(errs, errors.New("classify.llm_api_key is required"))
	}
	if c.Classify.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("classify.embedding_dim must be positive, got %d", c.Classify.EmbeddingDim))
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("display_timezone: %w", err))
	}

	w := c.Feed.Weights
	sum := w.Topic + w.ContentType + w.Time + w.Style + w.Recency + w.Popularity
	if math.Abs(sum-1.0) > 1e-9 {
		errs = append(errs, fmt.Errorf("feed.weights must sum to 1.0, got %.6f", sum))
	}
	if c.Feed.ExploitRatio < 0 || c.Feed.ExploitRatio > 1 {
		errs = append(errs, fmt.Errorf("feed.exploit_ratio must be in [0,1], got %f", c.Feed.ExploitRatio))
	}

	for i, s := range c.Ingest.Sources {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("ingest.sources[%d].id is required", i))
		}
		if s.Kind == "calendar-feed" && s.URL == "" {
			errs = append(errs, fmt.Errorf("ingest.sources[%d].url is required for calendar-feed", i))
		}
	}

	return errors.Join(errs...)
}

// Location resolves the display time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.DisplayTimezone)
}
