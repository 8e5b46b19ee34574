// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scopus acquires article metadata from the Elsevier Scopus Search
// API and converts it into the raw record format the corpus ingester
// consumes.
package scopus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/scholar-search/internal/corpus"
	"github.com/pdiddy/scholar-search/internal/httputil"
	"github.com/pdiddy/scholar-search/pkg/types"
)

// searchAPIBase is the Scopus search endpoint. Declared as a var so tests
// can substitute an httptest server.
var searchAPIBase = "https://api.elsevier.com/content/search/scopus"

// maxPageSize is the largest page Scopus serves to standard API keys.
const maxPageSize = 25

// Client fetches article metadata from Scopus.
type Client struct {
	http *http.Client
	cfg  types.ScopusConfig
	out  io.Writer
}

// NewClient returns a Scopus client. Progress and warnings go to out.
func NewClient(cfg types.ScopusConfig, out io.Writer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if cfg.PageSize <= 0 || cfg.PageSize > maxPageSize {
		cfg.PageSize = maxPageSize
	}
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = time.Second
	}
	if out == nil {
		out = io.Discard
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		cfg:  cfg,
		out:  out,
	}
}

// searchResponse mirrors the fields we need from the Scopus search reply.
type searchResponse struct {
	Results struct {
		TotalResults string        `json:"opensearch:totalResults"`
		Entries      []searchEntry `json:"entry"`
	} `json:"search-results"`
}

type searchEntry struct {
	Identifier      string `json:"dc:identifier"`
	Title           string `json:"dc:title"`
	Description     string `json:"dc:description"`
	CoverDate       string `json:"prism:coverDate"`
	PublicationName string `json:"prism:publicationName"`
	DOI             string `json:"prism:doi"`
	AuthKeywords    string `json:"authkeywords"`
	Authors         []struct {
		AuthID   string `json:"authid"`
		AuthName string `json:"authname"`
		Initials string `json:"initials"`
		Surname  string `json:"surname"`
		ORCID    string `json:"orcid"`
	} `json:"author"`
	Affiliations []struct {
		AfID      string `json:"afid"`
		AffilName string `json:"affilname"`
		Country   string `json:"affiliation-country"`
	} `json:"affiliation"`
}

// Search runs a Scopus query and returns up to maxResults raw records,
// paging through the API with the configured delay between requests.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]corpus.RawRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("scopus API key not configured")
	}
	if maxResults <= 0 {
		maxResults = 100
	}

	var records []corpus.RawRecord
	for start := 0; len(records) < maxResults; start += c.cfg.PageSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				return records, ctx.Err()
			case <-time.After(c.cfg.RequestDelay):
			}
		}

		page, total, err := c.fetchPage(ctx, query, start, min(c.cfg.PageSize, maxResults-len(records)))
		if err != nil {
			return records, err
		}
		records = append(records, page...)
		fmt.Fprintf(c.out, "fetched %d of %d records\n", len(records), total)

		if len(page) == 0 || start+c.cfg.PageSize >= total {
			break
		}
	}
	return records, nil
}

// SearchYears runs the query once per publication year from fromYear
// through toYear, constraining each pass with the PUBYEAR clause. Each year
// gets its own maxPerYear quota, so a heavily published recent year cannot
// crowd the older ones out of the corpus.
func (c *Client) SearchYears(ctx context.Context, query string, fromYear, toYear, maxPerYear int) ([]corpus.RawRecord, error) {
	if fromYear > toYear {
		return nil, fmt.Errorf("year range %d-%d is inverted", fromYear, toYear)
	}

	var records []corpus.RawRecord
	for year := fromYear; year <= toYear; year++ {
		fmt.Fprintf(c.out, "collecting year %d\n", year)
		yearQuery := fmt.Sprintf("%s AND PUBYEAR IS %d", query, year)
		page, err := c.Search(ctx, yearQuery, maxPerYear)
		if err != nil {
			return records, fmt.Errorf("year %d: %w", year, err)
		}
		records = append(records, page...)
	}
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, query string, start, count int) ([]corpus.RawRecord, int, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("start", strconv.Itoa(start))
	params.Set("count", strconv.Itoa(count))
	params.Set("view", "COMPLETE")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-ELS-APIKey", c.cfg.APIKey)
	if c.cfg.InstToken != "" {
		req.Header.Set("X-ELS-Insttoken", c.cfg.InstToken)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("scopus search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("scopus search returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, 0, fmt.Errorf("parsing search response: %w", err)
	}

	total, _ := strconv.Atoi(sr.Results.TotalResults)
	records := make([]corpus.RawRecord, 0, len(sr.Results.Entries))
	for _, entry := range sr.Results.Entries {
		rec, err := convertEntry(entry)
		if err != nil {
			fmt.Fprintf(c.out, "warning: skipping record: %v\n", err)
			continue
		}
		records = append(records, rec)
	}
	return records, total, nil
}

// convertEntry maps one search entry to a raw record. Scopus identifiers
// arrive as "SCOPUS_ID:85012345678"; the prefix is stripped.
func convertEntry(entry searchEntry) (corpus.RawRecord, error) {
	id := strings.TrimPrefix(entry.Identifier, "SCOPUS_ID:")
	if id == "" {
		return corpus.RawRecord{}, fmt.Errorf("entry has no identifier")
	}

	rec := corpus.RawRecord{
		ID:              id,
		Title:           entry.Title,
		Abstract:        entry.Description,
		CoverDate:       entry.CoverDate,
		PublicationName: entry.PublicationName,
		DOI:             entry.DOI,
		Keywords:        normalizeKeywords(entry.AuthKeywords),
	}
	for _, a := range entry.Authors {
		rec.Authors = append(rec.Authors, corpus.RawAuthor{
			AuthorID:      a.AuthID,
			PreferredName: a.AuthName,
			Initials:      a.Initials,
			Surname:       a.Surname,
			ORCID:         a.ORCID,
		})
	}
	for _, af := range entry.Affiliations {
		if af.AffilName == "" {
			continue
		}
		rec.Affiliations = append(rec.Affiliations, corpus.RawAffiliation{
			AffiliationID:   af.AfID,
			InstitutionName: af.AffilName,
			Country:         af.Country,
		})
	}
	return rec, nil
}

// normalizeKeywords rewrites the Scopus " | " keyword separator to the
// "; " form the corpus stores.
func normalizeKeywords(s string) string {
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "|")
	var keywords []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	return strings.Join(keywords, "; ")
}

// WriteRecords writes records as an indented JSON array, the interchange
// format between acquisition and ingestion.
func WriteRecords(w io.Writer, records []corpus.RawRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
