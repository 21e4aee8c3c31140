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

package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/veldtlabs/wikivec/ai"
)

// ErrNoGeneratorAvailable is returned when none of the configured candidate
// models can serve a generation request.
var ErrNoGeneratorAvailable = errors.New("no text generation model available")

// Generator implements ai.TextGenerator against OpenAI-compatible chat APIs.
//
// It walks the configured candidate model list in order and sticks with the
// first model that successfully serves a request. Availability can only be
// observed by calling the service, so selection happens lazily on the first
// Generate call rather than at construction time. The device hint is a
// placement preference for the serving side; it does not alter the prompt,
// the sampling parameters, or the produced text.
type Generator struct {
	host         string
	candidates   []string
	device       string
	maxNewTokens int
	logger       *slog.Logger

	mu         sync.Mutex
	active     llms.Model
	activeName string
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Generator{
		host:         config.GeneratorHost,
		candidates:   config.GeneratorModels,
		device:       config.Device,
		maxNewTokens: config.MaxNewTokens,
		logger:       slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a text generator using the provided configuration.
//
// Returns ai.TextGenerator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.TextGenerator, error) {
	return newGenerator(config)
}

// Generate returns the completion for prompt from the first available
// candidate model. Once a candidate has served a request successfully it is
// reused for all subsequent calls.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active != nil {
		return g.generateWith(ctx, g.active, g.activeName, prompt)
	}

	if len(g.candidates) == 0 {
		return "", ErrNoGeneratorAvailable
	}

	var lastErr error
	for _, name := range g.candidates {
		client, err := openai.New(
			openai.WithBaseURL(g.host),
			openai.WithToken("none"),
			openai.WithModel(name),
		)
		if err != nil {
			g.logger.Debug("candidate model client construction failed", "model", name, "err", err)
			lastErr = err
			continue
		}

		text, err := g.generateWith(ctx, client, name, prompt)
		if err != nil {
			g.logger.Debug("candidate model unavailable", "model", name, "err", err)
			lastErr = err
			continue
		}

		g.active = client
		g.activeName = name
		g.logger.Info("selected generation model", "model", name, "device", g.device)
		return text, nil
	}

	return "", errors.Join(ErrNoGeneratorAvailable, lastErr)
}

func (g *Generator) generateWith(ctx context.Context, client llms.Model, name, prompt string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	response, err := client.GenerateContent(ctx, content,
		llms.WithTemperature(0.7),
		llms.WithTopP(0.9),
		llms.WithMaxTokens(g.maxNewTokens),
	)
	if err != nil {
		return "", err
	}

	if len(response.Choices) < 1 {
		g.logger.Debug("no choices returned from model", "model", name)
		return "", nil
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}
