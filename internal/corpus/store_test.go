// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/pdiddy/scholar-search/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StorageConfig{DBPath: filepath.Join(t.TempDir(), "corpus.db")})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecords() []RawRecord {
	return []RawRecord{
		{
			ID:              "1001",
			Title:           "Quantum Error Correction at Scale",
			Abstract:        "We demonstrate quantum error correction on a superconducting processor.",
			CoverDate:       "2023-05-17",
			PublicationName: "Nature Physics",
			DOI:             "10.1000/qec.2023",
			Keywords:        "quantum computing; error correction",
			Authors: []RawAuthor{
				{AuthorID: "a1", PreferredName: "John Smith"},
				{AuthorID: "a2", Initials: "W.", Surname: "Zhang"},
			},
			Affiliations: []RawAffiliation{
				{AffiliationID: "f1", InstitutionName: "Harvard University", Country: "United States"},
			},
		},
		{
			ID:        "1002",
			Title:     "Deep Learning for Protein Folding",
			Abstract:  "A neural approach to protein structure prediction.",
			CoverDate: "2022-01-03",
			Keywords:  "machine learning; proteins",
			Authors: []RawAuthor{
				{AuthorID: "a3", PreferredName: "Wei Zhang"},
			},
			Affiliations: []RawAffiliation{
				{AffiliationID: "f2", InstitutionName: "MIT", Country: "United States"},
			},
		},
		{
			ID:        "1003",
			Title:     "Hippocampal Memory Consolidation",
			Abstract:  "Sleep-dependent consolidation in the hippocampus.",
			CoverDate: "2021-09-30",
			Authors: []RawAuthor{
				{AuthorID: "a4", PreferredName: "Mary Jones"},
			},
			Affiliations: []RawAffiliation{
				{AffiliationID: "f3", InstitutionName: "University of Oxford", Country: "United Kingdom"},
			},
		},
	}
}

func ingestSample(t *testing.T, s *Store, records []RawRecord) IngestSummary {
	t.Helper()
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshaling records: %v", err)
	}
	summary, err := s.Ingest(context.Background(), bytes.NewReader(data), io.Discard)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	return summary
}

func TestIngestAndLookup(t *testing.T) {
	s := newTestStore(t)
	summary := ingestSample(t, s, sampleRecords())

	if summary.Articles != 3 || summary.Duplicates != 0 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Fatalf("Count = %d, want 3", n)
	}

	a, err := s.ArticleByID(context.Background(), "1001")
	if err != nil {
		t.Fatalf("ArticleByID: %v", err)
	}
	if a.Title != "Quantum Error Correction at Scale" {
		t.Errorf("Title = %q", a.Title)
	}
	if a.Year != 2023 {
		t.Errorf("Year = %d, want 2023", a.Year)
	}
	if len(a.Authors) != 2 || a.Authors[0] != "John Smith" || a.Authors[1] != "W. Zhang" {
		t.Errorf("Authors = %v", a.Authors)
	}
	if len(a.Institutions) != 1 || a.Institutions[0] != "Harvard University" {
		t.Errorf("Institutions = %v", a.Institutions)
	}
	if len(a.Countries) != 1 || a.Countries[0] != "United States" {
		t.Errorf("Countries = %v", a.Countries)
	}
	if len(a.Keywords) != 2 || a.Keywords[0] != "quantum computing" {
		t.Errorf("Keywords = %v", a.Keywords)
	}
	if a.PublicationName != "Nature Physics" || a.DOI != "10.1000/qec.2023" {
		t.Errorf("venue = %q doi = %q", a.PublicationName, a.DOI)
	}

	_, err = s.ArticleByID(context.Background(), "9999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id error = %v, want ErrNotFound", err)
	}
}

func TestIngestDuplicatesWithinRun(t *testing.T) {
	s := newTestStore(t)
	records := sampleRecords()
	records = append(records, records[0])

	summary := ingestSample(t, s, records)
	if summary.Articles != 3 || summary.Duplicates != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestReingestUpdatesInPlace(t *testing.T) {
	s := newTestStore(t)
	ingestSample(t, s, sampleRecords())

	updated := sampleRecords()[:1]
	updated[0].Title = "Quantum Error Correction at Scale, Revisited"
	ingestSample(t, s, updated)

	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Fatalf("Count after re-ingest = %d, want 3", n)
	}

	a, err := s.ArticleByID(context.Background(), "1001")
	if err != nil {
		t.Fatalf("ArticleByID: %v", err)
	}
	if a.Title != "Quantum Error Correction at Scale, Revisited" {
		t.Errorf("Title not updated: %q", a.Title)
	}
	if len(a.Authors) != 2 {
		t.Errorf("Authors duplicated on re-ingest: %v", a.Authors)
	}
}

func TestArticlesByIDs(t *testing.T) {
	s := newTestStore(t)
	ingestSample(t, s, sampleRecords())

	got, err := s.ArticlesByIDs(context.Background(), []string{"1001", "1003", "9999"})
	if err != nil {
		t.Fatalf("ArticlesByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d articles, want 2", len(got))
	}
	if _, ok := got["9999"]; ok {
		t.Error("unknown id should be absent from result")
	}
}

func TestKeywordSearch(t *testing.T) {
	s := newTestStore(t)
	ingestSample(t, s, sampleRecords())

	tests := []struct {
		name    string
		query   string
		wantIDs map[string]bool
	}{
		{
			name:    "title term",
			query:   "quantum",
			wantIDs: map[string]bool{"1001": true},
		},
		{
			name:    "abstract term",
			query:   "hippocampus",
			wantIDs: map[string]bool{"1003": true},
		},
		{
			name:    "OR semantics surface partial matches",
			query:   "quantum proteins",
			wantIDs: map[string]bool{"1001": true, "1002": true},
		},
		{
			name:    "punctuation does not break matching",
			query:   `"quantum" OR (error)`,
			wantIDs: map[string]bool{"1001": true},
		},
		{
			name:    "no matches",
			query:   "astrophysics",
			wantIDs: map[string]bool{},
		},
		{
			name:    "empty query",
			query:   "   ",
			wantIDs: map[string]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := s.KeywordSearch(context.Background(), tt.query, 10)
			if err != nil {
				t.Fatalf("KeywordSearch: %v", err)
			}
			if len(ids) != len(tt.wantIDs) {
				t.Fatalf("got %v, want ids %v", ids, tt.wantIDs)
			}
			for _, id := range ids {
				if !tt.wantIDs[id] {
					t.Errorf("unexpected id %s in %v", id, ids)
				}
			}
		})
	}
}

func TestLoadDictionary(t *testing.T) {
	s := newTestStore(t)
	ingestSample(t, s, sampleRecords())

	d, err := s.LoadDictionary(context.Background())
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}

	if got := d.Authors["john smith"]; got != "John Smith" {
		t.Errorf(`Authors["john smith"] = %q`, got)
	}
	if got := d.Institutions["harvard university"]; got != "Harvard University" {
		t.Errorf(`Institutions["harvard university"] = %q`, got)
	}
	if got := d.Countries["united kingdom"]; got != "United Kingdom" {
		t.Errorf(`Countries["united kingdom"] = %q`, got)
	}
	if d.Size() == 0 {
		t.Error("Size = 0")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Harvard University", "harvard university"},
		{"  O'Brien,  J.-P. ", "o brien j p"},
		{"MACHINE learning!!!", "machine learning"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
