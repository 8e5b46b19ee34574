// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scopus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-search/pkg/types"
)

func testConfig() types.ScopusConfig {
	return types.ScopusConfig{
		HTTPConfig:   types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "scholar-search/test"},
		APIKey:       "test-key",
		InstToken:    "test-token",
		PageSize:     2,
		RequestDelay: time.Millisecond,
	}
}

func entryJSON(id, title string) string {
	return fmt.Sprintf(`{
		"dc:identifier": "SCOPUS_ID:%s",
		"dc:title": %q,
		"dc:description": "An abstract.",
		"prism:coverDate": "2023-05-17",
		"prism:publicationName": "Nature Physics",
		"prism:doi": "10.1000/x",
		"authkeywords": "quantum computing | error correction",
		"author": [{"authid": "a1", "authname": "John Smith", "initials": "J.", "surname": "Smith"}],
		"affiliation": [{"afid": "f1", "affilname": "Harvard University", "affiliation-country": "United States"}]
	}`, id, title)
}

func pageJSON(total int, entries ...string) string {
	body := `{"search-results": {"opensearch:totalResults": "` + strconv.Itoa(total) + `", "entry": [`
	for i, e := range entries {
		if i > 0 {
			body += ","
		}
		body += e
	}
	return body + `]}}`
}

func TestSearchSinglePage(t *testing.T) {
	var gotReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		io.WriteString(w, pageJSON(1, entryJSON("85001", "Quantum Error Correction at Scale")))
	}))
	defer ts.Close()

	old := searchAPIBase
	searchAPIBase = ts.URL
	defer func() { searchAPIBase = old }()

	client := NewClient(testConfig(), io.Discard)
	records, err := client.Search(context.Background(), "quantum", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "test-key", gotReq.Header.Get("X-ELS-APIKey"))
	assert.Equal(t, "test-token", gotReq.Header.Get("X-ELS-Insttoken"))
	assert.Equal(t, "application/json", gotReq.Header.Get("Accept"))
	assert.Equal(t, "quantum", gotReq.URL.Query().Get("query"))
	assert.Equal(t, "COMPLETE", gotReq.URL.Query().Get("view"))
	assert.Equal(t, "0", gotReq.URL.Query().Get("start"))

	rec := records[0]
	assert.Equal(t, "85001", rec.ID, "SCOPUS_ID prefix should be stripped")
	assert.Equal(t, "Quantum Error Correction at Scale", rec.Title)
	assert.Equal(t, "An abstract.", rec.Abstract)
	assert.Equal(t, "2023-05-17", rec.CoverDate)
	assert.Equal(t, "quantum computing; error correction", rec.Keywords)
	require.Len(t, rec.Authors, 1)
	assert.Equal(t, "John Smith", rec.Authors[0].PreferredName)
	require.Len(t, rec.Affiliations, 1)
	assert.Equal(t, "Harvard University", rec.Affiliations[0].InstitutionName)
	assert.Equal(t, "United States", rec.Affiliations[0].Country)
}

func TestSearchPagesThroughResults(t *testing.T) {
	var starts []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("start")
		starts = append(starts, start)
		if start == "0" {
			io.WriteString(w, pageJSON(3, entryJSON("1", "First"), entryJSON("2", "Second")))
			return
		}
		io.WriteString(w, pageJSON(3, entryJSON("3", "Third")))
	}))
	defer ts.Close()

	old := searchAPIBase
	searchAPIBase = ts.URL
	defer func() { searchAPIBase = old }()

	client := NewClient(testConfig(), io.Discard)
	records, err := client.Search(context.Background(), "quantum", 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "2"}, starts)
	require.Len(t, records, 3)
	assert.Equal(t, "3", records[2].ID)
}

func TestSearchStopsAtMaxResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, pageJSON(100, entryJSON("1", "First"), entryJSON("2", "Second")))
	}))
	defer ts.Close()

	old := searchAPIBase
	searchAPIBase = ts.URL
	defer func() { searchAPIBase = old }()

	client := NewClient(testConfig(), io.Discard)
	records, err := client.Search(context.Background(), "quantum", 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSearchYearsAddsPubyearClause(t *testing.T) {
	var queries []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		queries = append(queries, q)
		if q == "quantum AND PUBYEAR IS 2021" {
			io.WriteString(w, pageJSON(1, entryJSON("21", "From 2021")))
			return
		}
		io.WriteString(w, pageJSON(1, entryJSON("22", "From 2022")))
	}))
	defer ts.Close()

	old := searchAPIBase
	searchAPIBase = ts.URL
	defer func() { searchAPIBase = old }()

	client := NewClient(testConfig(), io.Discard)
	records, err := client.SearchYears(context.Background(), "quantum", 2021, 2022, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"quantum AND PUBYEAR IS 2021",
		"quantum AND PUBYEAR IS 2022",
	}, queries)
	require.Len(t, records, 2)
	assert.Equal(t, "21", records[0].ID)
	assert.Equal(t, "22", records[1].ID)
}

func TestSearchYearsRejectsInvertedRange(t *testing.T) {
	client := NewClient(testConfig(), io.Discard)
	_, err := client.SearchYears(context.Background(), "quantum", 2023, 2020, 10)
	assert.ErrorContains(t, err, "inverted")
}

func TestSearchValidation(t *testing.T) {
	client := NewClient(testConfig(), io.Discard)
	_, err := client.Search(context.Background(), "   ", 10)
	assert.ErrorContains(t, err, "empty search query")

	cfg := testConfig()
	cfg.APIKey = ""
	client = NewClient(cfg, io.Discard)
	_, err = client.Search(context.Background(), "quantum", 10)
	assert.ErrorContains(t, err, "API key")
}

func TestSearchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	old := searchAPIBase
	searchAPIBase = ts.URL
	defer func() { searchAPIBase = old }()

	client := NewClient(testConfig(), io.Discard)
	_, err := client.Search(context.Background(), "quantum", 10)
	assert.ErrorContains(t, err, "HTTP 401")
}

func TestSkipsEntriesWithoutIdentifier(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, pageJSON(2, `{"dc:title": "No ID"}`, entryJSON("42", "Valid")))
	}))
	defer ts.Close()

	old := searchAPIBase
	searchAPIBase = ts.URL
	defer func() { searchAPIBase = old }()

	client := NewClient(testConfig(), io.Discard)
	records, err := client.Search(context.Background(), "quantum", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "42", records[0].ID)
}
