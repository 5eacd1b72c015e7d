// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates the gotbot CLI configuration from
// ~/.gotbot/gotbot.yaml, creating a commented default file on first run.
// The API key is never stored in the file; it comes from the environment
// or container secrets.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// GotbotConfig is the root configuration.
type GotbotConfig struct {
	Provider ProviderConfig `yaml:"provider"`
	Engine   EngineConfig   `yaml:"engine"`
	Memory   MemoryConfig   `yaml:"memory"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ProviderConfig selects and tunes the model endpoint.
type ProviderConfig struct {
	// BaseURL is an OpenAI-compatible chat completions endpoint.
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`

	// Model is the model identifier sent with every request.
	Model string `yaml:"model"`

	// Temperature for generation.
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`

	// MaxTokens caps each generated thought.
	MaxTokens int `yaml:"max_tokens" validate:"gte=0,lte=65536"`

	// SystemPrompt is the assistant persona.
	SystemPrompt string `yaml:"system_prompt"`
}

// EngineConfig tunes the reasoning driver.
type EngineConfig struct {
	// MaxIterations is the per-message generator call budget.
	MaxIterations int `yaml:"max_iterations" validate:"gte=1,lte=32"`

	// Branching enables thought-tree exploration.
	Branching bool `yaml:"branching"`

	// MaxBranches bounds children per tree node.
	MaxBranches int `yaml:"max_branches" validate:"gte=1,lte=8"`

	// PruneThreshold is the tree's low-score cutoff.
	PruneThreshold float64 `yaml:"prune_threshold" validate:"gte=0,lte=1"`
}

// MemoryConfig tunes conversation memory.
type MemoryConfig struct {
	// ShortTermCapacity is the recent-exchange window size.
	ShortTermCapacity int `yaml:"short_term_capacity" validate:"gte=1,lte=200"`

	// Path is the long-term archive directory. Supports ~ expansion.
	Path string `yaml:"path"`

	// TopK bounds how many past exchanges feed the prompt context.
	TopK int `yaml:"top_k" validate:"gte=1,lte=20"`

	// MinSimilarity filters weak retrieval matches.
	MinSimilarity float64 `yaml:"min_similarity" validate:"gte=0,lte=1"`
}

// LoggingConfig tunes structured logging.
type LoggingConfig struct {
	// Level is the minimum log level.
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Dir enables file logging when set. Supports ~ expansion.
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() GotbotConfig {
	return GotbotConfig{
		Provider: ProviderConfig{
			Temperature: 0.7,
			MaxTokens:   1024,
		},
		Engine: EngineConfig{
			MaxIterations:  4,
			MaxBranches:    3,
			PruneThreshold: 0.3,
		},
		Memory: MemoryConfig{
			ShortTermCapacity: 20,
			Path:              "~/.gotbot/memory",
			TopK:              3,
			MinSimilarity:     0.1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration against its struct tags.
func (c *GotbotConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
