package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kkarrenn/searchcore/internal/config"
	"github.com/kkarrenn/searchcore/internal/engine"
	"github.com/kkarrenn/searchcore/internal/ingest"
)

// runIngest implements the `searchcore ingest` subcommand: the one-time
// bulk corpus ingestion path (spec.md §1), distinct from the steady-state
// single-document index_document operation exposed over MCP/HTTP.
// Grounded on local-kb-index-builder/main.go's two-phase
// fetch-then-index flow, reshaped around *ingest.WalkDirectory and
// *ingest.FetchSource instead of a standalone script.
func runIngest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	dataDir := fs.String("data-dir", ".", "searchcore data root (indexes/, barrels/, embeddings/)")
	dir := fs.String("dir", "", "flat directory of documents to index directly")
	sourcesFile := fs.String("sources", "", "JSON file of ingest.Source entries to fetch before indexing")
	fetchDir := fs.String("fetch-dir", "", "directory to write fetched documents into before indexing (required with -sources)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*dataDir)
	if err != nil {
		return fmt.Errorf("ingest: load config: %w", err)
	}
	e, err := engine.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ingest: open engine: %w", err)
	}

	if *sourcesFile != "" {
		if *fetchDir == "" {
			return fmt.Errorf("ingest: -fetch-dir is required with -sources")
		}
		sources, err := loadSources(*sourcesFile)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(*fetchDir, 0o755); err != nil {
			return fmt.Errorf("ingest: create fetch dir: %w", err)
		}
		for _, src := range sources {
			log.Printf("ingest: fetching source %q (%s)", src.Name, src.Type)
			if err := ingest.FetchSource(src, *fetchDir); err != nil {
				log.Printf("ingest: fetch %q failed: %v", src.Name, err)
			}
		}
		stats, err := ingest.WalkDirectory(e, *fetchDir)
		if err != nil {
			return fmt.Errorf("ingest: walk fetched dir: %w", err)
		}
		log.Printf("ingest: indexed %d, skipped %d, errors %d", stats.Indexed, stats.Skipped, len(stats.Errors))
	}

	if *dir != "" {
		stats, err := ingest.WalkDirectory(e, *dir)
		if err != nil {
			return fmt.Errorf("ingest: walk %s: %w", *dir, err)
		}
		log.Printf("ingest: indexed %d, skipped %d, errors %d", stats.Indexed, stats.Skipped, len(stats.Errors))
	}

	return nil
}

func loadSources(path string) ([]ingest.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read sources file: %w", err)
	}
	var sources []ingest.Source
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("ingest: parse sources file: %w", err)
	}
	return sources, nil
}
