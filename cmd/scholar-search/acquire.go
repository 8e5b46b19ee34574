// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-search/internal/corpus"
	"github.com/pdiddy/scholar-search/internal/scopus"
)

var acquireCmd = &cobra.Command{
	Use:   "acquire",
	Short: "Fetch article metadata from the Scopus API",
	Long: `Acquire runs a Scopus search and writes the matching article records as
a JSON array, the input format for the ingest command. With --year-from,
the search runs once per publication year so every year gets its own
--max-results quota. Requires a Scopus API key (config scopus.api_key or
secret file scopus-api-key).`,
	RunE: runAcquire,
}

func init() {
	acquireCmd.Flags().String("query", "", "Scopus search query (required)")
	acquireCmd.Flags().Int("max-results", 100, "maximum number of records to fetch (per year with --year-from)")
	acquireCmd.Flags().Int("year-from", 0, "first publication year for year-by-year collection")
	acquireCmd.Flags().Int("year-to", 0, "last publication year (defaults to --year-from)")
	acquireCmd.Flags().String("out", "", "output file (default stdout)")

	rootCmd.AddCommand(acquireCmd)
}

func runAcquire(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	if query == "" {
		return fmt.Errorf("provide a search query with --query")
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	yearFrom, _ := cmd.Flags().GetInt("year-from")
	yearTo, _ := cmd.Flags().GetInt("year-to")
	outPath, _ := cmd.Flags().GetString("out")

	cfg := pipelineConfig()
	client := scopus.NewClient(cfg.Scopus, os.Stderr)

	var records []corpus.RawRecord
	var err error
	if yearFrom > 0 {
		if yearTo == 0 {
			yearTo = yearFrom
		}
		records, err = client.SearchYears(cmd.Context(), query, yearFrom, yearTo, maxResults)
	} else {
		records, err = client.Search(cmd.Context(), query, maxResults)
	}
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no records matched the query")
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := scopus.WriteRecords(out, records); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %d records\n", len(records))
	return nil
}
