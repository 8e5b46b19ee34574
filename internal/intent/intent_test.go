// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intent

import (
	"testing"
	"time"

	"github.com/pdiddy/scholar-search/internal/corpus"
)

func testDictionary() *corpus.Dictionary {
	return &corpus.Dictionary{
		Authors: map[string]string{
			"john smith": "John Smith",
			"wei zhang":  "Wei Zhang",
			"mary jones": "Mary Jones",
		},
		Institutions: map[string]string{
			"harvard university":   "Harvard University",
			"mit":                  "MIT",
			"university of oxford": "University of Oxford",
		},
		Countries: map[string]string{
			"united states":  "United States",
			"united kingdom": "United Kingdom",
			"china":          "China",
		},
	}
}

func testExtractor() *Extractor {
	return &Extractor{
		MinYear: 1900,
		Now:     func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) },
	}
}

func displays(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Display
	}
	return out
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name             string
		query            string
		wantKind         Kind
		wantYears        []int
		wantAuthors      []string
		wantInstitutions []string
		wantCountries    []string
		wantTopic        string
	}{
		{
			name:             "institution and year combine",
			query:            "machine learning papers from Harvard in 2023",
			wantKind:         KindCombined,
			wantYears:        []int{2023},
			wantInstitutions: []string{"Harvard University"},
			wantTopic:        "machine learning papers",
		},
		{
			name:        "author by full name",
			query:       "papers by John Smith",
			wantKind:    KindAuthor,
			wantAuthors: []string{"John Smith"},
			wantTopic:   "papers",
		},
		{
			name:        "author by surname",
			query:       "research by Zhang",
			wantKind:    KindAuthor,
			wantAuthors: []string{"Wei Zhang"},
			wantTopic:   "research",
		},
		{
			name:             "single institution",
			query:            "papers from Harvard University",
			wantKind:         KindInstitution,
			wantInstitutions: []string{"Harvard University"},
			wantTopic:        "papers",
		},
		{
			name:          "country adjective synonym",
			query:         "Chinese research on deep learning",
			wantKind:      KindGeographic,
			wantCountries: []string{"China"},
			wantTopic:     "research on deep learning",
		},
		{
			name:      "year only",
			query:     "papers from 2023",
			wantKind:  KindYearFiltered,
			wantYears: []int{2023},
			wantTopic: "papers",
		},
		{
			name:      "two years",
			query:     "studies from 2018 2022",
			wantKind:  KindYearFiltered,
			wantYears: []int{2018, 2022},
			wantTopic: "studies",
		},
		{
			name:      "pure semantic",
			query:     "quantum error correction",
			wantKind:  KindSemantic,
			wantTopic: "quantum error correction",
		},
		{
			name:      "unknown entity keeps full text as topic",
			query:     "articles from Nowhereland",
			wantKind:  KindSemantic,
			wantTopic: "articles from Nowhereland",
		},
		{
			name:      "unmatched preposition stays in topic",
			query:     "research from Nowhereland",
			wantKind:  KindSemantic,
			wantTopic: "research from Nowhereland",
		},
		{
			name:             "standalone preposition survives entity removal",
			query:            "effects of caffeine in trials at Harvard University",
			wantKind:         KindInstitution,
			wantInstitutions: []string{"Harvard University"},
			wantTopic:        "effects of caffeine in trials",
		},
		{
			name:      "fully consumed query keeps raw topic",
			query:     "2023",
			wantKind:  KindYearFiltered,
			wantYears: []int{2023},
			wantTopic: "2023",
		},
		{
			name:      "out of range number is not a year",
			query:     "paper 1850 analysis",
			wantKind:  KindSemantic,
			wantTopic: "paper 1850 analysis",
		},
	}

	e := testExtractor()
	dict := testDictionary()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := e.Extract(tt.query, dict)

			if it.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", it.Kind, tt.wantKind)
			}
			if len(it.Years) != len(tt.wantYears) {
				t.Errorf("Years = %v, want %v", it.Years, tt.wantYears)
			} else {
				for i, y := range tt.wantYears {
					if it.Years[i] != y {
						t.Errorf("Years = %v, want %v", it.Years, tt.wantYears)
						break
					}
				}
			}
			checkMatches(t, "Authors", it.Authors, tt.wantAuthors)
			checkMatches(t, "Institutions", it.Institutions, tt.wantInstitutions)
			checkMatches(t, "Countries", it.Countries, tt.wantCountries)
			if it.Topic != tt.wantTopic {
				t.Errorf("Topic = %q, want %q", it.Topic, tt.wantTopic)
			}
			if len(it.Topic) > len(it.RawText) {
				t.Errorf("Topic %q longer than raw %q", it.Topic, it.RawText)
			}
		})
	}
}

func checkMatches(t *testing.T, field string, got []Match, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s = %v, want %v", field, displays(got), want)
		return
	}
	for i, w := range want {
		if got[i].Display != w {
			t.Errorf("%s = %v, want %v", field, displays(got), want)
			return
		}
	}
}

func TestExtractRecentWindow(t *testing.T) {
	e := testExtractor()
	it := e.Extract("recent papers from MIT", testDictionary())

	if it.Kind != KindCombined {
		t.Errorf("Kind = %s, want %s", it.Kind, KindCombined)
	}
	if it.YearFrom != 2024 || it.YearTo != 2026 {
		t.Errorf("window = %d-%d, want 2024-2026", it.YearFrom, it.YearTo)
	}
	for year, want := range map[int]bool{2023: false, 2024: true, 2026: true, 2027: false} {
		if got := it.MatchesYear(year); got != want {
			t.Errorf("MatchesYear(%d) = %v, want %v", year, got, want)
		}
	}
}

func TestExtractEmptyQuery(t *testing.T) {
	e := testExtractor()
	it := e.Extract("   ", testDictionary())

	if it.Kind != KindSemantic {
		t.Errorf("Kind = %s, want %s", it.Kind, KindSemantic)
	}
	if it.HasYear() || len(it.Authors)+len(it.Institutions)+len(it.Countries) != 0 {
		t.Errorf("expected empty intent, got %+v", it)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	e := testExtractor()
	dict := testDictionary()

	first := e.Extract("papers from Harvard in 2023 by Smith", dict)
	for i := 0; i < 10; i++ {
		again := e.Extract("papers from Harvard in 2023 by Smith", dict)
		if again.Kind != first.Kind || again.Topic != first.Topic ||
			len(again.Authors) != len(first.Authors) ||
			len(again.Institutions) != len(first.Institutions) {
			t.Fatalf("extraction not deterministic: %+v vs %+v", again, first)
		}
	}
}

func TestDescribe(t *testing.T) {
	e := testExtractor()
	dict := testDictionary()

	if got := e.Extract("anything at all", dict).Describe(); got != "no entities detected" {
		t.Errorf("Describe = %q", got)
	}
	got := e.Extract("Harvard papers from 2023", dict).Describe()
	if got == "no entities detected" {
		t.Errorf("Describe = %q, want entity summary", got)
	}
}
