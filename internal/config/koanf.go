// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/eventus/config.yaml",
	"/etc/eventus/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix is the prefix for environment overrides, e.g.
// EVENTUS_SERVER__API_KEY maps to server.api_key.
const envPrefix = "EVENTUS_"

// defaultConfig returns a Config with every default applied. File and
// env layers override these values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8196",
			APIKey:      "",
			CORSOrigins: []string{"*"},
			RateLimit:   300,
			Timeout:     60 * time.Second,
		},
		Store: StoreConfig{
			Path: "/data/eventus",
		},
		Classify: ClassifyConfig{
			LLMBaseURL:     "https://api.openai.com/v1",
			LLMModel:       "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			EmbeddingDim:   768,
			MaxSuggestions: 15,
			Timeout:        30 * time.Second,
			RequestsPerSec: 4,
		},
		Ingest: IngestConfig{
			Interval:      30 * time.Minute,
			LookbackDays:  1,
			LookaheadDays: 30,
		},
		Feed: FeedConfig{
			Weights: FeedWeights{
				Topic:       0.40,
				ContentType: 0.25,
				Time:        0.15,
				Style:       0.10,
				Recency:     0.05,
				Popularity:  0.05,
			},
			ExploitRatio:    0.8,
			DefaultPageSize: 20,
			MaxPageSize:     50,
			CandidateTTL:    60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		DisplayTimezone: "America/Los_Angeles",
	}
}

// Load builds the configuration: defaults, then the first config file
// found (if any), then EVENTUS_ environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// findConfigFile returns the config file to use, or "" for none.
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps EVENTUS_SECTION__KEY to section.key. Double
// underscores nest; single underscores stay inside one key, so
// EVENTUS_CLASSIFY__LLM_API_KEY becomes classify.llm_api_key.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
