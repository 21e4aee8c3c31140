// Copyright 2025 Veldt Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Devices accepted by the generator backend selector.
const (
	DeviceAuto = "auto"
	DeviceCPU  = "cpu"
	DeviceGPU  = "gpu"
)

// Defaults for local OpenAI-compatible services.
const (
	DefaultHost           = "http://localhost:11434/v1"
	DefaultEmbeddingModel = "e5-large-v2"
)

// DefaultGeneratorModels is the default candidate preference list for
// query refinement.
var DefaultGeneratorModels = []string{
	"phi3:mini",
	"llama3.1:8b",
}

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// GeneratorHost is the base URL for the text generation service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	GeneratorHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "e5-large-v2", "text-embedding-3-small"
	EmbeddingModel string

	// GeneratorModels is the ordered preference list of candidate models for
	// query refinement. The first candidate the backend can actually serve
	// wins. Local model locations should come before remote identifiers.
	// An empty list disables generation; refinement then always falls back.
	GeneratorModels []string

	// Device selects the generation backend placement: "auto", "cpu" or
	// "gpu". It is a deployment hint and never changes generation semantics.
	// Default: "auto"
	Device string

	// MaxNewTokens bounds the length of a generated refinement.
	// Default: 48
	MaxNewTokens int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithGeneratorHost sets the generator service host URL.
func WithGeneratorHost(host string) ConfigOption {
	return func(c *Config) {
		c.GeneratorHost = host
	}
}

// WithHost sets both embedding and generator hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.GeneratorHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithGeneratorModels sets the ordered candidate list for text generation.
func WithGeneratorModels(models ...string) ConfigOption {
	return func(c *Config) {
		c.GeneratorModels = models
	}
}

// WithDevice sets the generation backend placement hint.
func WithDevice(device string) ConfigOption {
	return func(c *Config) {
		c.Device = device
	}
}

// WithMaxNewTokens bounds the length of generated refinements.
func WithMaxNewTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxNewTokens = n
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and generation use the same host.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:   DefaultHost,
		GeneratorHost:   DefaultHost,
		EmbeddingModel:  DefaultEmbeddingModel,
		GeneratorModels: append([]string(nil), DefaultGeneratorModels...),
		Device:          DeviceAuto,
		MaxNewTokens:    48,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434/v1"),
//	    ai.WithEmbeddingModel("text-embedding-3-small"),
//	    ai.WithGeneratorModels("phi3:mini"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.GeneratorHost != "" && !strings.HasSuffix(c.GeneratorHost, "/v1") {
		c.GeneratorHost = strings.TrimSuffix(c.GeneratorHost, "/")
		c.GeneratorHost = c.GeneratorHost + "/v1"
	}
	if c.Device == "" {
		c.Device = DeviceAuto
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if len(c.GeneratorModels) > 0 && c.GeneratorHost == "" {
		return errors.New("ai config: GeneratorHost is required when generator models are configured")
	}
	switch c.Device {
	case DeviceAuto, DeviceCPU, DeviceGPU:
	default:
		return fmt.Errorf("ai config: Device must be one of %q, %q, %q", DeviceAuto, DeviceCPU, DeviceGPU)
	}
	if c.MaxNewTokens < 1 || c.MaxNewTokens > 512 {
		return errors.New("ai config: MaxNewTokens must be between 1 and 512")
	}
	return nil
}
