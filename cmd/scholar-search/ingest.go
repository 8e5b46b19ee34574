// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-search/internal/corpus"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <records.json>",
	Short: "Load raw article records into the corpus store",
	Long: `Ingest reads a JSON array of raw article records (as produced by the
acquire command) and loads it into the corpus database, normalizing authors
and affiliations into their own tables. Re-ingesting a file updates
existing articles in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening records file: %w", err)
	}
	defer f.Close()

	store, err := corpus.NewStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), f, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed ingestion", summary.Failed)
	}
	return nil
}
