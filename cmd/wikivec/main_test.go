package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/veldtlabs/wikivec/core"
	"github.com/veldtlabs/wikivec/index"
)

func buildApp() *cli.App {
	return &cli.App{
		Name: "wikivec",
		Commands: []*cli.Command{
			{
				Name:   "build",
				Action: buildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db", Aliases: []string{"d"}},
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}},
					&cli.StringFlag{Name: "index", Required: true},
					&cli.StringFlag{Name: "embedding-host", Value: "http://localhost:11434/v1"},
					&cli.StringFlag{Name: "embedding-model", Value: "e5-large-v2"},
					&cli.IntFlag{Name: "batch-size", Value: index.DefaultBatchSize},
					&cli.IntFlag{Name: "max-retries", Value: index.DefaultMaxRetries},
					&cli.DurationFlag{Name: "retry-delay"},
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}},
					&cli.StringFlag{Name: "device", Value: "auto"},
				},
			},
		},
	}
}

func TestBuildCommandValidation(t *testing.T) {
	app := buildApp()

	t.Run("requires exactly one document source", func(t *testing.T) {
		err := app.Run([]string{"wikivec", "build", "--index", filepath.Join(t.TempDir(), "wiki")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--db or --input")

		err = app.Run([]string{"wikivec", "build",
			"--index", filepath.Join(t.TempDir(), "wiki"),
			"--db", "/tmp/corpus", "--input", "/tmp/pages"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--db or --input")
	})

	t.Run("existing artifacts abort the build without force", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "wiki")
		saveTestArtifacts(t, base)

		err := app.Run([]string{"wikivec", "build", "--index", base, "--input", "/tmp/pages"})
		require.Error(t, err)
		assert.ErrorIs(t, err, index.ErrArtifactsExist)
		assert.Contains(t, err.Error(), index.IndexPath(base))
		assert.Contains(t, err.Error(), index.MetaPath(base))
	})
}

func saveTestArtifacts(t *testing.T, base string) {
	t.Helper()

	ix, err := index.NewFlatIndex(2)
	require.NoError(t, err)
	require.NoError(t, ix.Add([][]float32{{1, 0}, {0, 1}}))

	art := &index.Artifacts{
		Index: ix,
		Chunks: []core.Chunk{
			{Id: 1, Text: "first", Level: core.ChunkLevelSmall, Type: core.ChunkTypeSection},
			{Id: 2, Text: "second", Level: core.ChunkLevelMedium, Type: core.ChunkTypeSection},
		},
		PassagePrefix: index.DefaultPassagePrefix,
		QueryPrefix:   index.DefaultQueryPrefix,
	}
	require.NoError(t, index.NewStore().Save(base, art, false))
}

func TestStatsCommand(t *testing.T) {
	base := filepath.Join(t.TempDir(), "wiki")
	saveTestArtifacts(t, base)

	app := &cli.App{
		Name: "wikivec",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "index", Required: true},
				},
			},
		},
	}

	t.Run("prints stats for a valid pair", func(t *testing.T) {
		err := app.Run([]string{"wikivec", "stats", "--index", base})
		assert.NoError(t, err)
	})

	t.Run("missing artifacts fail", func(t *testing.T) {
		err := app.Run([]string{"wikivec", "stats", "--index", filepath.Join(t.TempDir(), "missing")})
		require.Error(t, err)
		assert.ErrorIs(t, err, index.ErrArtifactsNotFound)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 100))
	assert.Equal(t, "full text stays", truncate("full text stays", 0))

	long := "The quick brown fox jumps over the lazy dog."
	got := truncate(long, 20)
	assert.LessOrEqual(t, len(got), 23)
	assert.Contains(t, got, "...")
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"INFO", false},
		{"verbose", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			set := flag.NewFlagSet("test", flag.ContinueOnError)
			set.String("log-level", tt.level, "")
			c := cli.NewContext(&cli.App{}, set, nil)

			err := setupLogger(c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMain(m *testing.M) {
	// Quiet logger for command tests.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
	os.Exit(m.Run())
}
