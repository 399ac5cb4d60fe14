// Copyright 2025 Helixion Health
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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/helixion/conceptmap"
	"github.com/helixion/conceptmap/ai"
	"github.com/helixion/conceptmap/core"
	"github.com/helixion/conceptmap/lookup"
	"github.com/helixion/conceptmap/semantic"
	"github.com/helixion/conceptmap/vocab"
)

func main() {
	app := &cli.App{
		Name:  "conceptmap",
		Usage: "Resolve free-text medical terms to standardized vocabulary concepts",
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
				Name:   "init",
				Usage:  "Build the vocabulary store from tabular source dumps",
				Action: initCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "concepts",
						Usage:    "Path to the concept table (TSV)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "synonyms",
						Usage: "Path to the concept synonym table (TSV)",
					},
					&cli.StringFlag{
						Name:  "relationships",
						Usage: "Path to the concept relationship table (TSV)",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Drop and rebuild an already-built store",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Resolve a single term",
				ArgsUsage: "<query terms>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "domain",
						Usage: "Restrict to one clinical domain (Condition, Drug, ...)",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of candidates to return",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "no-semantic",
						Usage: "Disable the semantic tier",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit the full result as JSON",
					},
					embeddingHostFlag(),
					embeddingModelFlag(),
				},
			},
			{
				Name:   "batch",
				Usage:  "Resolve terms read one per line, emitting JSON lines",
				Action: batchCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Input file with one query per line (default stdin)",
					},
					&cli.StringFlag{
						Name:  "domain",
						Usage: "Restrict to one clinical domain",
					},
					&cli.BoolFlag{
						Name:  "no-semantic",
						Usage: "Disable the semantic tier",
					},
					embeddingHostFlag(),
					embeddingModelFlag(),
				},
			},
			{
				Name:   "build-index",
				Usage:  "Embed the vocabulary and build the semantic index artifact",
				Action: buildIndexCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "domain",
						Usage: "Restrict the index to one clinical domain",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Concurrent embedding workers",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Texts per embedding request",
						Value: 64,
					},
					embeddingHostFlag(),
					embeddingModelFlag(),
				},
			},
			{
				Name:   "stats",
				Usage:  "Print per-table row counts",
				Action: statsCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
			{
				Name:   "doctor",
				Usage:  "Check store health and run canary queries",
				Action: doctorCommand,
				Flags: []cli.Flag{
					dbFlag(),
					embeddingHostFlag(),
					embeddingModelFlag(),
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to the vocabulary store directory",
		Required: true,
	}
}

func embeddingHostFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "embedding-host",
		Usage: "Embedding service host URL",
		Value: "http://localhost:11434/v1",
	}
}

func embeddingModelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "embedding-model",
		Usage: "Embedding model name",
		Value: "embeddinggemma",
	}
}

func openEngine(c *cli.Context) (*conceptmap.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	return conceptmap.New(c.String("db"), conceptmap.WithAIConfig(aiConfig))
}

func initCommand(c *cli.Context) error {
	engine, err := conceptmap.New(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer engine.Close()

	src := vocab.Source{
		Concepts:      c.String("concepts"),
		Synonyms:      c.String("synonyms"),
		Relationships: c.String("relationships"),
	}

	stats, err := engine.LoadVocabulary(context.Background(), src, c.Bool("force"))
	if err != nil {
		return fmt.Errorf("vocabulary load failed: %w", err)
	}

	fmt.Printf("Concepts:       %d\n", stats.Concepts)
	fmt.Printf("Synonyms:       %d\n", stats.Synonyms)
	fmt.Printf("Search entries: %d\n", stats.SearchEntries)
	fmt.Printf("Maps-To edges:  %d\n", stats.MapsToEdges)
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("query terms are required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	engine, err := openEngine(c)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer engine.Close()

	opts := []lookup.QueryOption{lookup.WithTopK(c.Int("top-k"))}
	if domain := c.String("domain"); domain != "" {
		opts = append(opts, lookup.WithDomain(domain))
	}
	if c.Bool("no-semantic") {
		opts = append(opts, lookup.WithoutSemantic())
	}

	result, err := engine.Lookup(context.Background(), query, opts...)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if c.Bool("json") {
		return json.NewEncoder(os.Stdout).Encode(result)
	}
	printResult(result)
	return nil
}

func printResult(result *core.LookupResult) {
	if result.BestMatch == nil {
		fmt.Printf("No match for %q\n", result.Query)
		for _, w := range result.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		return
	}

	best := result.BestMatch
	fmt.Printf("Query: %q (%.1fms)\n", result.Query, result.SearchTimeMs)
	fmt.Printf("Best:  %s\n", matchLine(best))
	if id, ok := best.AnalyticsID(); ok {
		fmt.Printf("       analytics concept id %d\n", id)
	} else {
		fmt.Printf("       no standard mapping, not usable for analytics\n")
	}
	if len(result.Candidates) > 0 {
		fmt.Println("Candidates:")
		for _, m := range result.Candidates {
			fmt.Printf("  %s\n", matchLine(m))
		}
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

func matchLine(m *core.ConceptMatch) string {
	line := fmt.Sprintf("%d %s [%s/%s] %.3f %s",
		m.ConceptID, m.Name, m.Domain, m.Vocabulary, m.Confidence, m.MatchType)
	if m.ResolutionStatus == core.ResolutionMappedToStandard {
		line += fmt.Sprintf(" -> %d %s", m.StandardID, m.StandardName)
	}
	return line
}

func batchCommand(c *cli.Context) error {
	var in io.Reader = os.Stdin
	if path := c.String("input"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	var queries []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			queries = append(queries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read queries: %w", err)
	}
	if len(queries) == 0 {
		return fmt.Errorf("no queries to resolve")
	}

	engine, err := openEngine(c)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer engine.Close()

	var opts []lookup.QueryOption
	if domain := c.String("domain"); domain != "" {
		opts = append(opts, lookup.WithDomain(domain))
	}
	if c.Bool("no-semantic") {
		opts = append(opts, lookup.WithoutSemantic())
	}

	batch, err := engine.LookupMany(context.Background(), queries, opts...)
	if err != nil {
		return fmt.Errorf("batch lookup failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, result := range batch.Results {
		if err := enc.Encode(result); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "%d/%d resolved in %.1fms\n", batch.Successful, batch.Total, batch.TimeMs)
	return nil
}

func buildIndexCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer engine.Close()

	err = engine.BuildSemanticIndex(context.Background(), c.String("domain"),
		semantic.WithPoolSize(c.Int("pool-size")),
		semantic.WithBatchSize(c.Int("batch-size")),
		semantic.WithProgressWriter(os.Stderr),
	)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	engine, err := conceptmap.New(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer engine.Close()

	stats, err := engine.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	fmt.Printf("Concepts:       %d\n", stats.Concepts)
	fmt.Printf("Synonyms:       %d\n", stats.Synonyms)
	fmt.Printf("Search entries: %d\n", stats.SearchEntries)
	fmt.Printf("Maps-To edges:  %d\n", stats.MapsToEdges)
	return nil
}

// canaryQueries exercise the exact, variant, and fuzzy paths against any
// reasonably complete clinical vocabulary.
var canaryQueries = []string{
	"myocardial infarction",
	"heart attack",
	"MI",
	"type 2 diabetes",
	"aspirin",
}

func doctorCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := openEngine(c)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer engine.Close()

	built, err := engine.Store().Initialized(ctx)
	if err != nil {
		return fmt.Errorf("failed to check initialization: %w", err)
	}
	if !built {
		fmt.Println("store: NOT INITIALIZED (run 'conceptmap init')")
		return nil
	}
	fmt.Println("store: initialized")

	stats, err := engine.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	fmt.Printf("tables: %d concepts, %d synonyms, %d search entries, %d maps-to edges\n",
		stats.Concepts, stats.Synonyms, stats.SearchEntries, stats.MapsToEdges)

	if engine.SemanticIndexReady() {
		fmt.Println("semantic index: available")
	} else {
		fmt.Println("semantic index: not built (run 'conceptmap build-index')")
	}

	fmt.Println("canary queries:")
	for _, query := range canaryQueries {
		result, err := engine.Lookup(ctx, query, lookup.WithoutSemantic())
		if err != nil {
			return fmt.Errorf("canary %q failed: %w", query, err)
		}
		if result.BestMatch != nil {
			fmt.Printf("  %-24q -> %d %q (%.2f, %s)\n", query,
				result.BestMatch.ConceptID, result.BestMatch.Name,
				result.BestMatch.Confidence, result.BestMatch.MatchType)
		} else {
			fmt.Printf("  %-24q -> no match\n", query)
		}
	}
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
