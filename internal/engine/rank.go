// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/scholar-search/internal/corpus"
	"github.com/pdiddy/scholar-search/internal/intent"
)

// boostAmount is the flat increment per verified entity match. Boosts are
// additive, so an article matching the year, the author, and the
// institution gains three increments.
const boostAmount = 0.05

// rank deduplicates candidates, applies verified entity boosts, and sorts.
// Ordering is fully deterministic: final score, then publication year
// (newer first), then article id.
func rank(cands []candidate, it intent.Intent) []Result {
	best := make(map[string]candidate)
	for _, c := range cands {
		if have, ok := best[c.article.ID]; !ok || c.score > have.score {
			best[c.article.ID] = c
		}
	}

	results := make([]Result, 0, len(best))
	for _, c := range best {
		boosts := applyBoosts(c, it)
		final := c.score
		for _, b := range boosts {
			final += b.Amount
		}
		results = append(results, Result{
			Article:     c.article,
			Score:       c.score,
			Boosts:      boosts,
			Final:       final,
			Source:      c.source,
			Index:       c.index,
			Explanation: explain(c, boosts),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Final != results[j].Final {
			return results[i].Final > results[j].Final
		}
		if results[i].Article.Year != results[j].Article.Year {
			return results[i].Article.Year > results[j].Article.Year
		}
		return results[i].Article.ID < results[j].Article.ID
	})
	return results
}

// applyBoosts verifies each detected entity against the article itself and
// grants a boost per verified class. Verification compares normalized
// forms, so a dictionary match on a name variant never boosts an article
// that does not actually carry the entity.
func applyBoosts(c candidate, it intent.Intent) []Boost {
	var boosts []Boost

	if it.HasYear() && it.MatchesYear(c.article.Year) {
		boosts = append(boosts, Boost{
			Reason: fmt.Sprintf("publication year %d matches", c.article.Year),
			Amount: boostAmount,
		})
	}
	if m, ok := anyFieldMatch(c.article.Authors, it.Authors); ok {
		boosts = append(boosts, Boost{
			Reason: fmt.Sprintf("author %q matches", m.Display),
			Amount: boostAmount,
		})
	}
	if m, ok := anyFieldMatch(c.article.Institutions, it.Institutions); ok {
		boosts = append(boosts, Boost{
			Reason: fmt.Sprintf("institution %q matches", m.Display),
			Amount: boostAmount,
		})
	}
	if m, ok := anyFieldMatch(c.article.Countries, it.Countries); ok {
		boosts = append(boosts, Boost{
			Reason: fmt.Sprintf("country %q matches", m.Display),
			Amount: boostAmount,
		})
	}
	return boosts
}

// anyFieldMatch reports the first intent match whose normalized form equals
// a normalized article field value.
func anyFieldMatch(values []string, matches []intent.Match) (intent.Match, bool) {
	for _, m := range matches {
		for _, v := range values {
			if corpus.Normalize(v) == m.Norm {
				return m, true
			}
		}
	}
	return intent.Match{}, false
}

func explain(c candidate, boosts []Boost) string {
	var b strings.Builder
	if c.source == "vector" {
		fmt.Fprintf(&b, "%s index similarity %.2f", c.index, c.score)
	} else {
		fmt.Fprintf(&b, "keyword match score %.2f", c.score)
	}
	for _, boost := range boosts {
		fmt.Fprintf(&b, "; +%.2f %s", boost.Amount, boost.Reason)
	}
	return b.String()
}
