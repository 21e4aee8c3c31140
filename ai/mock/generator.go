package mock

import (
	"context"
	"errors"
)

// ErrGeneratorUnavailable is the default error returned by a failing mock generator.
var ErrGeneratorUnavailable = errors.New("mock generator unavailable")

// MockGenerator is a test double for ai.TextGenerator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, the mock echoes the prompt's last line back, which is enough
	// for refinement tests that only assert on plumbing.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	// Fail makes every Generate call return ErrGeneratorUnavailable,
	// simulating the no-model-available case.
	Fail bool

	callCount int
}

// NewMockGenerator creates a mock generator with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns a canned completion or the injected behavior's output.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.callCount++

	if m.Fail {
		return "", ErrGeneratorUnavailable
	}

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}

	return "wireless network configuration troubleshooting", nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.GenerateFunc = nil
	m.Fail = false
}
