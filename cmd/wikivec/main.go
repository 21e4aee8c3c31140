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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/veldtlabs/wikivec/ai"
	"github.com/veldtlabs/wikivec/ai/openai"
	"github.com/veldtlabs/wikivec/chunking"
	"github.com/veldtlabs/wikivec/core"
	"github.com/veldtlabs/wikivec/index"
	"github.com/veldtlabs/wikivec/ingest"
	"github.com/veldtlabs/wikivec/refine"
	"github.com/veldtlabs/wikivec/search"
	"github.com/veldtlabs/wikivec/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "wikivec",
		Usage: "Semantic search over Arch Wiki documentation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Load scraped wiki pages into the corpus database",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to corpus database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "JSON page file or directory of page files",
						Required: true,
					},
				},
			},
			{
				Name:   "build",
				Usage:  "Chunk the corpus, embed all chunks and write the index artifacts",
				Action: buildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to corpus database directory",
					},
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Build directly from a JSON page file or directory instead of the corpus database",
					},
					&cli.StringFlag{
						Name:     "index",
						Usage:    "Base path of the index artifacts (writes <base>.index and <base>.meta)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: ai.DefaultHost,
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: ai.DefaultEmbeddingModel,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed in each batch",
						Value: index.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: index.DefaultMaxRetries,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite existing index artifacts",
					},
					&cli.StringFlag{
						Name:  "device",
						Usage: "Compute device hint for the model services (auto, cpu, gpu)",
						Value: ai.DeviceAuto,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the index with a natural-language query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(generatorFlags(),
					&cli.StringFlag{
						Name:     "index",
						Usage:    "Base path of the index artifacts",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: ai.DefaultHost,
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: ai.DefaultEmbeddingModel,
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results to return",
						Value:   search.DefaultTopK,
					},
					&cli.BoolFlag{
						Name:  "refine",
						Usage: "Expand the query with the generator before searching",
						Value: true,
					},
					&cli.IntFlag{
						Name:  "max-content",
						Usage: "Truncate result content to this many characters (0 = full text)",
						Value: 240,
					},
					&cli.BoolFlag{
						Name:  "expand",
						Usage: "Print the parent section of each match",
					},
				),
			},
			{
				Name:   "refine",
				Usage:  "Show how the generator would expand a query, without searching",
				Action: refineCommand,
				Flags: append(generatorFlags(),
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query to refine",
						Required: true,
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Print size and shape of the index artifacts",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "index",
						Usage:    "Base path of the index artifacts",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// generatorFlags are shared by every command that may call the text
// generation service.
func generatorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "generator-host",
			Usage: "Text generation service host URL",
			Value: ai.DefaultHost,
		},
		&cli.StringSliceFlag{
			Name:  "generator-models",
			Usage: "Candidate generation models, tried in order until one responds",
			Value: cli.NewStringSlice(ai.DefaultGeneratorModels...),
		},
		&cli.StringFlag{
			Name:  "device",
			Usage: "Compute device hint for the model services (auto, cpu, gpu)",
			Value: ai.DeviceAuto,
		},
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open corpus database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create document repository: %w", err)
	}
	defer repo.Close()

	ingester, err := ingest.NewIngester(repo)
	if err != nil {
		return err
	}

	n, err := ingester.IngestPath(ctx, c.String("input"))
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	total, err := repo.CountDocuments(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Ingested %d documents (%d total in corpus)\n", n, total)
	return nil
}

func buildCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	inputPath := c.String("input")
	if (dbPath == "") == (inputPath == "") {
		return fmt.Errorf("exactly one of --db or --input is required")
	}

	base := c.String("index")
	if !c.Bool("force") && index.Exists(base) {
		return fmt.Errorf("%w: %s and %s (use --force to overwrite)",
			index.ErrArtifactsExist, index.IndexPath(base), index.MetaPath(base))
	}

	docs, err := loadBuildDocuments(ctx, dbPath, inputPath)
	if err != nil {
		return err
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithDevice(c.String("device")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	chunker, err := chunking.NewChunker()
	if err != nil {
		return err
	}
	chunks, err := chunker.ChunkCorpus(ctx, docs)
	if err != nil {
		return fmt.Errorf("chunking failed: %w", err)
	}

	builder, err := index.NewBuilder(embedder,
		index.WithBatchSize(c.Int("batch-size")),
		index.WithMaxRetries(c.Int("max-retries")),
		index.WithRetryDelay(c.Duration("retry-delay")),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Documents: %d\n", len(docs))
	fmt.Fprintf(os.Stderr, "Chunks: %d\n", len(chunks))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	ix, err := builder.Build(ctx, chunks)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	art := &index.Artifacts{
		Index:         ix,
		Chunks:        chunks,
		PassagePrefix: builder.PassagePrefix(),
		QueryPrefix:   builder.QueryPrefix(),
	}
	if err := index.NewStore().Save(base, art, c.Bool("force")); err != nil {
		return fmt.Errorf("failed to save index artifacts: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Wrote %s and %s (%d vectors, dimension %d)\n",
		index.IndexPath(base), index.MetaPath(base), ix.Ntotal(), ix.Dim())
	return nil
}

// loadBuildDocuments sources documents from the corpus database or
// directly from page dump files.
func loadBuildDocuments(ctx context.Context, dbPath, inputPath string) ([]*core.Document, error) {
	if inputPath != "" {
		return ingest.LoadPath(inputPath)
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		return nil, fmt.Errorf("failed to create document repository: %w", err)
	}
	defer repo.Close()

	return repo.ListDocuments(ctx)
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query argument is required")
	}

	art, err := index.NewStore().Load(c.String("index"))
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGeneratorHost(c.String("generator-host")),
		ai.WithGeneratorModels(c.StringSlice("generator-models")...),
		ai.WithDevice(c.String("device")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	opts := []search.Option{}
	if c.Bool("refine") && len(aiConfig.GeneratorModels) > 0 {
		generator, err := openai.NewGenerator(aiConfig)
		if err != nil {
			return fmt.Errorf("failed to create generator: %w", err)
		}
		opts = append(opts, search.WithRefiner(refine.NewRefiner(generator)))
	}

	searcher, err := search.NewSearcher(art, embedder, opts...)
	if err != nil {
		return err
	}

	results, err := searcher.Search(ctx, query, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printResults(searcher, results, c.Int("max-content"), c.Bool("expand"))
	return nil
}

func printResults(searcher *search.Searcher, results []core.SearchResult, maxContent int, expand bool) {
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}

	for _, r := range results {
		fmt.Printf("%d. [%.4f] %s", r.Rank, r.Score, r.Chunk.SourceTitle)
		if r.Chunk.SectionHeading != "" {
			fmt.Printf(" / %s", r.Chunk.SectionHeading)
		}
		fmt.Printf(" (%s)\n", r.Chunk.Level)
		if r.Chunk.SourceURL != "" {
			fmt.Printf("   %s\n", r.Chunk.SourceURL)
		}
		fmt.Printf("   %s\n", truncate(r.Chunk.Text, maxContent))
		if expand {
			if parent := searcher.Parent(r.Chunk); parent != nil {
				fmt.Printf("   context (%s): %s\n", parent.Level, truncate(parent.Text, maxContent))
			}
		}
		fmt.Println()
	}
}

func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return strings.TrimSpace(text[:limit]) + "..."
}

func refineCommand(c *cli.Context) error {
	ctx := context.Background()

	aiConfig := ai.NewConfig(
		ai.WithGeneratorHost(c.String("generator-host")),
		ai.WithGeneratorModels(c.StringSlice("generator-models")...),
		ai.WithDevice(c.String("device")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	generator, err := openai.NewGenerator(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	query := c.String("query")
	refined := refine.NewRefiner(generator).Refine(ctx, query)

	fmt.Printf("Original: %s\n", query)
	fmt.Printf("Refined:  %s\n", refined)
	if refined == query {
		fmt.Println("(query unchanged: refinement unavailable or produced no usable output)")
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	art, err := index.NewStore().Load(c.String("index"))
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	levels := map[core.ChunkLevel]int{}
	for _, chunk := range art.Chunks {
		levels[chunk.Level]++
	}

	fmt.Printf("Vectors:   %d\n", art.Index.Ntotal())
	fmt.Printf("Chunks:    %d\n", len(art.Chunks))
	fmt.Printf("Dimension: %d\n", art.Index.Dim())
	fmt.Printf("Levels:    small=%d medium=%d large=%d\n",
		levels[core.ChunkLevelSmall], levels[core.ChunkLevelMedium], levels[core.ChunkLevelLarge])
	fmt.Printf("Prefixes:  passage=%q query=%q\n", art.PassagePrefix, art.QueryPrefix)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
