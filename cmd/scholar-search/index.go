// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-search/internal/corpus"
	"github.com/pdiddy/scholar-search/internal/embedding"
	"github.com/pdiddy/scholar-search/internal/vecindex"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build and inspect the vector index artifacts",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Embed the corpus and write all index artifacts",
	Long: `Build embeds every article with an abstract once per index kind and
writes the artifacts. Each artifact is replaced atomically, so a running
query process keeps serving from the previous build until it reloads.`,
	RunE: runIndexBuild,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which index artifacts exist and when they were built",
	RunE:  runIndexStatus,
}

func init() {
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	store, err := corpus.NewStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	articles, err := store.FetchAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}
	if len(articles) == 0 {
		return fmt.Errorf("corpus is empty; run ingest first")
	}

	provider, err := embedding.New(cfg.Embedding)
	if err != nil {
		return err
	}

	builder := vecindex.NewBuilder(provider, cfg.Index, cfg.Embedding.PrimaryModel)
	return builder.Build(cmd.Context(), articles, os.Stdout)
}

func runIndexStatus(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	dir := cfg.Index.IndexDir
	if dir == "" {
		dir = "data/index"
	}

	fmt.Printf("%-12s  %-8s  %-6s  %-20s  %s\n", "Index", "Rows", "Dim", "Model", "Built")
	for _, kind := range vecindex.Kinds {
		m, err := vecindex.ReadManifest(dir, kind)
		if err != nil {
			fmt.Printf("%-12s  absent\n", kind)
			continue
		}
		fmt.Printf("%-12s  %-8d  %-6d  %-20s  %s\n",
			kind, m.Rows, m.Dim, m.Model, m.BuiltAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
