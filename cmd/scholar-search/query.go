// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-search/internal/corpus"
	"github.com/pdiddy/scholar-search/internal/embedding"
	"github.com/pdiddy/scholar-search/internal/engine"
)

var queryCmd = &cobra.Command{
	Use:   "query [text...]",
	Short: "Search the corpus with a natural-language query",
	Long: `Query parses the text for entities (authors, institutions, countries,
publication years), picks the best-suited vector index, and returns ranked
results. When no vector index can serve the query, keyword search over the
relational store answers instead.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().Int("page", 1, "result page (1-based)")
	queryCmd.Flags().Bool("json", false, "output the full response as JSON")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("provide query text")
	}
	page, _ := cmd.Flags().GetInt("page")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg := pipelineConfig()

	store, err := corpus.NewStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	provider, err := embedding.New(cfg.Embedding)
	if err != nil {
		return err
	}

	eng := engine.New(store, provider, cfg.Query, cfg.Index, os.Stderr)
	if err := eng.Reload(cmd.Context()); err != nil {
		return err
	}

	resp, err := eng.Search(cmd.Context(), engine.Request{Query: text, Page: page})
	if err != nil {
		return err
	}

	if asJSON {
		return engine.FormatJSON(resp, os.Stdout)
	}
	engine.FormatTable(resp, os.Stdout)
	return nil
}
