// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Server.APIKey = "test-key"
	cfg.Classify.LLMAPIKey = "llm-key"
	cfg.Store.InMemory = true
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_MissingKeys(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing api key", func(c *Config) { c.Server.APIKey = "" }, "server.api_key"},
		{"missing llm key", func(c *Config) { c.Classify.LLMAPIKey = "" }, "classify.llm_api_key"},
		{"bad embedding dim", func(c *Config) { c.Classify.EmbeddingDim = 0 }, "embedding_dim"},
		{"bad timezone", func(c *Config) { c.DisplayTimezone = "Mars/Olympus" }, "display_timezone"},
		{"weights off", func(c *Config) { c.Feed.Weights.Topic = 0.9 }, "feed.weights"},
		{"exploit ratio", func(c *Config) { c.Feed.ExploitRatio = 1.5 }, "exploit_ratio"},
		{"source without id", func(c *Config) {
			c.Ingest.Sources = []SourceConfig{{Kind: "mock"}}
		}, "sources[0].id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"EVENTUS_SERVER__API_KEY", "server.api_key"},
		{"EVENTUS_CLASSIFY__LLM_API_KEY", "classify.llm_api_key"},
		{"EVENTUS_DISPLAY_TIMEZONE", "display_timezone"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("default weights should validate: %v", err)
	}
}
