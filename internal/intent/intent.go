// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intent turns raw query text into a structured search intent by
// matching tokens against the corpus entity dictionary, and maps each
// intent onto a vector-index search plan.
//
// Extraction is deliberately permissive: a bare surname matches every
// author carrying it, and a single institution word matches every
// institution containing it. The ranker disambiguates by score, so false
// positives cost a boost at worst.
package intent

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/scholar-search/internal/corpus"
	"github.com/pdiddy/scholar-search/pkg/types"
)

// Kind classifies what a query is asking for.
type Kind string

const (
	KindAuthor       Kind = "author-search"
	KindInstitution  Kind = "institution-search"
	KindGeographic   Kind = "geographic-search"
	KindYearFiltered Kind = "year-filtered-search"
	KindCombined     Kind = "combined"
	KindSemantic     Kind = "semantic-search"
)

// Match is one detected entity: the dictionary display form and the
// normalized form used for comparisons.
type Match struct {
	Display string
	Norm    string
}

// Intent is the structured reading of one query. It is built fresh per
// request and never persisted.
type Intent struct {
	// RawText is the query as received.
	RawText string

	// Years holds every distinct publication year detected in the text.
	Years []int

	// YearFrom and YearTo hold a trailing window implied by relative
	// terms such as "recent". Zero when no window applies.
	YearFrom int
	YearTo   int

	// Authors, Institutions, and Countries hold the dictionary matches.
	Authors      []Match
	Institutions []Match
	Countries    []Match

	// Topic is the query text with matched entity spans removed. When
	// removal consumes everything, Topic falls back to the full raw text
	// so over-aggressive matching cannot leave nothing to embed.
	Topic string

	// Kind is the classified intent.
	Kind Kind
}

// HasYear reports whether any year or year window was detected.
func (it Intent) HasYear() bool {
	return len(it.Years) > 0 || it.YearFrom > 0
}

// MatchesYear reports whether an article year satisfies the detected years
// or window.
func (it Intent) MatchesYear(year int) bool {
	for _, y := range it.Years {
		if y == year {
			return true
		}
	}
	if it.YearFrom > 0 && year >= it.YearFrom && year <= it.YearTo {
		return true
	}
	return false
}

// Describe returns a short human-readable summary of the detected entities,
// used in result explanations.
func (it Intent) Describe() string {
	var parts []string
	for _, y := range it.Years {
		parts = append(parts, fmt.Sprintf("year %d", y))
	}
	if it.YearFrom > 0 {
		parts = append(parts, fmt.Sprintf("years %d-%d", it.YearFrom, it.YearTo))
	}
	for _, m := range it.Authors {
		parts = append(parts, fmt.Sprintf("author %q", m.Display))
	}
	for _, m := range it.Institutions {
		parts = append(parts, fmt.Sprintf("institution %q", m.Display))
	}
	for _, m := range it.Countries {
		parts = append(parts, fmt.Sprintf("country %q", m.Display))
	}
	if len(parts) == 0 {
		return "no entities detected"
	}
	return "detected " + strings.Join(parts, ", ")
}

// prepositions are connective words dropped alongside the entity span they
// introduce, so "papers from 2023" leaves "papers" as the topic.
var prepositions = map[string]bool{
	"from": true, "in": true, "at": true, "by": true,
	"during": true, "since": true, "after": true,
}

// relativeYearTerms map recency vocabulary to a trailing window size.
var relativeYearTerms = map[string]int{
	"recent": 3, "latest": 3, "newest": 3,
}

// Extractor detects structured entities in query text. Extraction always
// succeeds; an empty intent is a valid outcome.
type Extractor struct {
	// MinYear is the lowest token accepted as a publication year.
	MinYear int

	// Now supplies the clock for the year upper bound and relative
	// windows. Tests pin it.
	Now func() time.Time
}

// NewExtractor returns an extractor configured from cfg.
func NewExtractor(cfg types.QueryConfig) *Extractor {
	minYear := cfg.MinYear
	if minYear <= 0 {
		minYear = 1900
	}
	return &Extractor{MinYear: minYear, Now: time.Now}
}

// Extract parses raw against the dictionary and returns the structured
// intent.
func (e *Extractor) Extract(raw string, dict *corpus.Dictionary) Intent {
	it := Intent{RawText: raw, Kind: KindSemantic}

	tokens := strings.Fields(corpus.Normalize(raw))
	if len(tokens) == 0 {
		it.Topic = raw
		return it
	}
	consumed := make([]bool, len(tokens))

	e.extractYears(tokens, consumed, &it)
	it.Authors = matchDictionary(tokens, consumed, dict.Authors, nil)
	it.Institutions = matchDictionary(tokens, consumed, dict.Institutions, genericInstitutionTokens)
	it.Countries = matchCountries(tokens, consumed, dict.Countries)

	it.Topic = residualTopic(raw, tokens, consumed)
	it.Kind = classify(it)
	return it
}

func (e *Extractor) extractYears(tokens []string, consumed []bool, it *Intent) {
	now := e.Now()
	maxYear := now.Year() + 1

	for i, tok := range tokens {
		if window, ok := relativeYearTerms[tok]; ok {
			it.YearFrom = now.Year() - window + 1
			it.YearTo = now.Year()
			consumed[i] = true
			continue
		}
		if len(tok) != 4 {
			continue
		}
		year, err := strconv.Atoi(tok)
		if err != nil || year < e.MinYear || year > maxYear {
			continue
		}
		if !containsInt(it.Years, year) {
			it.Years = append(it.Years, year)
		}
		consumed[i] = true
		consumePreposition(tokens, consumed, i)
	}
	sort.Ints(it.Years)
}

// genericInstitutionTokens never count as partial evidence on their own;
// otherwise "university" would match every university in the corpus.
var genericInstitutionTokens = map[string]bool{
	"university": true, "institute": true, "institut": true, "college": true,
	"school": true, "center": true, "centre": true, "department": true,
	"laboratory": true, "academy": true, "hospital": true, "national": true,
	"state": true, "technology": true, "research": true, "sciences": true,
}

// matchDictionary collects every dictionary entry present in the token
// stream. An entry matches when its full token sequence appears
// contiguously. A multi-word entry also matches when one of its distinctive
// words of four or more characters appears as a standalone token, which is
// what lets "harvard" find "Harvard University" and "smith" find every
// Smith. Matching runs in two phases so the result does not depend on map
// iteration order: full sequences first, then partials against the tokens
// the sequences left unconsumed.
func matchDictionary(tokens []string, consumed []bool, dict map[string]string, skipPartial map[string]bool) []Match {
	var matches []Match
	matched := make(map[string]bool)

	for norm, display := range dict {
		entryTokens := strings.Fields(norm)
		if len(entryTokens) == 0 {
			continue
		}
		if pos := findSequence(tokens, entryTokens); pos >= 0 {
			matches = append(matches, Match{Display: display, Norm: norm})
			matched[norm] = true
			for j := pos; j < pos+len(entryTokens); j++ {
				consumed[j] = true
			}
			consumePreposition(tokens, consumed, pos)
		}
	}

	// Partial matches share the phase-one snapshot, so two entries with a
	// common surname both match the same token.
	snapshot := make([]bool, len(consumed))
	copy(snapshot, consumed)

	for norm, display := range dict {
		if matched[norm] {
			continue
		}
		entryTokens := strings.Fields(norm)
		if len(entryTokens) < 2 {
			continue
		}
		for _, et := range entryTokens {
			if len(et) < 4 || skipPartial[et] {
				continue
			}
			pos := -1
			for i, tok := range tokens {
				if tok == et && !snapshot[i] {
					pos = i
					break
				}
			}
			if pos >= 0 {
				matches = append(matches, Match{Display: display, Norm: norm})
				consumed[pos] = true
				consumePreposition(tokens, consumed, pos)
				break
			}
		}
	}

	// Map iteration order is random; keep output deterministic.
	sort.Slice(matches, func(i, j int) bool { return matches[i].Norm < matches[j].Norm })
	return matches
}

// genericCountryTokens are country-name words too common to identify a
// country alone ("united", "south").
var genericCountryTokens = map[string]bool{
	"united": true, "south": true, "north": true, "new": true,
	"republic": true, "islands": true,
}

// matchCountries matches country names like any other dictionary, then
// resolves adjective synonyms ("chinese" → "china") against the same set.
func matchCountries(tokens []string, consumed []bool, countries map[string]string) []Match {
	matches := matchDictionary(tokens, consumed, countries, genericCountryTokens)

	for i, tok := range tokens {
		canonical, ok := countrySynonyms[tok]
		if !ok {
			continue
		}
		display, known := countries[canonical]
		if !known {
			continue
		}
		already := false
		for _, m := range matches {
			if m.Norm == canonical {
				already = true
				break
			}
		}
		if !already {
			matches = append(matches, Match{Display: display, Norm: canonical})
		}
		consumed[i] = true
		consumePreposition(tokens, consumed, i)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Norm < matches[j].Norm })
	return matches
}

// residualTopic joins the unconsumed tokens. A preposition is only dropped
// when it was consumed as part of an entity span; one standing on its own
// stays in the topic. When nothing was consumed, or everything was, the
// topic is the raw text itself.
func residualTopic(raw string, tokens []string, consumed []bool) string {
	var rest []string
	for i, tok := range tokens {
		if !consumed[i] {
			rest = append(rest, tok)
		}
	}
	if len(rest) == 0 || len(rest) == len(tokens) {
		return strings.TrimSpace(raw)
	}
	return strings.Join(rest, " ")
}

// classify derives the intent kind. Two or more entity classes make a
// combined intent; single-class intents follow author > institution >
// geographic > year precedence; no entities means pure semantic search.
func classify(it Intent) Kind {
	classes := 0
	for _, present := range []bool{
		len(it.Authors) > 0,
		len(it.Institutions) > 0,
		len(it.Countries) > 0,
		it.HasYear(),
	} {
		if present {
			classes++
		}
	}

	switch {
	case classes >= 2:
		return KindCombined
	case len(it.Authors) > 0:
		return KindAuthor
	case len(it.Institutions) > 0:
		return KindInstitution
	case len(it.Countries) > 0:
		return KindGeographic
	case it.HasYear():
		return KindYearFiltered
	default:
		return KindSemantic
	}
}

func consumePreposition(tokens []string, consumed []bool, pos int) {
	if pos > 0 && prepositions[tokens[pos-1]] {
		consumed[pos-1] = true
	}
}

func findSequence(tokens, seq []string) int {
	for i := 0; i+len(seq) <= len(tokens); i++ {
		match := true
		for j, s := range seq {
			if tokens[i+j] != s {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func containsInt(list []int, v int) bool {
	for _, have := range list {
		if have == v {
			return true
		}
	}
	return false
}
