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

package refine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtlabs/wikivec/ai/mock"
)

func TestRefiner(t *testing.T) {
	ctx := context.Background()

	t.Run("expands the query through the generator", func(t *testing.T) {
		generator := mock.NewMockGenerator()
		generator.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			assert.Contains(t, prompt, "wifi broken")
			return "wireless network configuration NetworkManager iwctl troubleshooting", nil
		}

		refiner := NewRefiner(generator)
		got := refiner.Refine(ctx, "wifi broken")
		assert.Equal(t, "wireless network configuration NetworkManager iwctl troubleshooting", got)
	})

	t.Run("generator failure returns the raw query exactly", func(t *testing.T) {
		generator := mock.NewMockGenerator()
		generator.Fail = true

		refiner := NewRefiner(generator)
		got := refiner.Refine(ctx, "wifi broken")
		assert.Equal(t, "wifi broken", got)
	})

	t.Run("empty generator output returns the raw query", func(t *testing.T) {
		generator := mock.NewMockGenerator()
		generator.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			return "   \n\n  ", nil
		}

		refiner := NewRefiner(generator)
		assert.Equal(t, "pacman mirrors slow", refiner.Refine(ctx, "pacman mirrors slow"))
	})

	t.Run("disabled refiner passes queries through without calling the generator", func(t *testing.T) {
		generator := mock.NewMockGenerator()
		refiner := NewRefiner(generator, WithEnabled(false))

		assert.Equal(t, "wifi broken", refiner.Refine(ctx, "wifi broken"))
		assert.Equal(t, 0, generator.CallCount())
		assert.False(t, refiner.Enabled())
	})

	t.Run("nil generator passes queries through", func(t *testing.T) {
		refiner := NewRefiner(nil)
		assert.Equal(t, "wifi broken", refiner.Refine(ctx, "wifi broken"))
		assert.False(t, refiner.Enabled())
	})

	t.Run("blank query is not sent to the generator", func(t *testing.T) {
		generator := mock.NewMockGenerator()
		refiner := NewRefiner(generator)

		assert.Equal(t, "   ", refiner.Refine(ctx, "   "))
		assert.Equal(t, 0, generator.CallCount())
	})
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain keywords pass through",
			raw:  "wireless network configuration iwctl",
			want: "wireless network configuration iwctl",
		},
		{
			name: "label prefix is stripped",
			raw:  "Search query: systemd boot troubleshooting",
			want: "systemd boot troubleshooting",
		},
		{
			name: "surrounding quotes are stripped",
			raw:  `"pacman keyring update"`,
			want: "pacman keyring update",
		},
		{
			name: "only the first non-empty line is kept",
			raw:  "\nxorg display configuration\nHere is why I chose these terms:",
			want: "xorg display configuration",
		},
		{
			name: "repeated words are removed",
			raw:  "network Network configuration network bridge",
			want: "network configuration bridge",
		},
		{
			name: "whitespace-only output is rejected",
			raw:  "  \n\t\n",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanResponse(tt.raw))
		})
	}

	t.Run("long output is capped at a word boundary", func(t *testing.T) {
		raw := ""
		for i := 0; i < 100; i++ {
			raw += "keyword" + string(rune('a'+i%26)) + " "
		}
		got := cleanResponse(raw)
		require.NotEmpty(t, got)
		assert.LessOrEqual(t, len(got), maxRefinedLen)
		assert.False(t, strings.HasSuffix(got, " "))
	})
}
