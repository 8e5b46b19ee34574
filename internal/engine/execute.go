// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/scholar-search/internal/corpus"
	"github.com/pdiddy/scholar-search/internal/intent"
	"github.com/pdiddy/scholar-search/internal/vecindex"
	"github.com/pdiddy/scholar-search/pkg/types"
)

// Score bands. Vector hits below minVectorScore are discarded as noise, and
// relational matches are capped below that floor, so any surviving vector
// hit outranks every relational one on raw score.
const (
	minVectorScore      = 0.5
	relationalScoreCap  = 0.45
	relationalScoreBase = 0.30
)

// minOverfetch keeps the candidate pool large enough for re-ranking even
// with small page sizes.
const minOverfetch = 20

// candidate is one scored article before ranking.
type candidate struct {
	article types.Article
	score   float64
	source  string
	index   vecindex.Kind
}

// collect gathers candidates following the plan: primary index, then
// secondary, then relational keyword search. A soft deadline cuts the
// remaining vector attempts and degrades to the relational path, which is a
// bounded SQL query. A failing vector search is treated like an empty one;
// it is logged and the next fallback runs, so only a failure of the final
// relational pass propagates to the caller.
func (e *Engine) collect(ctx context.Context, snap *Snapshot, it intent.Intent, plan intent.Plan, start time.Time) ([]candidate, bool, error) {
	k := e.cfg.PageSize * e.cfg.OverfetchFactor
	if k < minOverfetch {
		k = minOverfetch
	}

	// A relational-mandatory plan means no vector index could serve the
	// intent, which is already a degraded answer.
	degraded := plan.RelationalMandatory
	if !plan.RelationalMandatory {
		vec, modelDegraded, err := e.embedder.Embed(ctx, it.Topic)
		if err != nil {
			fmt.Fprintf(e.out, "warning: embedding failed, using relational search: %v\n", err)
			degraded = true
		} else {
			degraded = modelDegraded

			cands, err := e.vectorSearch(ctx, snap, plan.Primary, vec, k, it, plan.YearPostFilter)
			if err != nil {
				fmt.Fprintf(e.out, "warning: vector search failed, trying fallback: %v\n", err)
				degraded = true
				cands = nil
			}
			if len(cands) == 0 && plan.Secondary != "" && !e.pastDeadline(start) {
				cands, err = e.vectorSearch(ctx, snap, plan.Secondary, vec, k, it, plan.YearPostFilter)
				if err != nil {
					fmt.Fprintf(e.out, "warning: vector search failed, trying fallback: %v\n", err)
					degraded = true
					cands = nil
				}
			}
			if len(cands) > 0 {
				return cands, degraded, nil
			}
			// Vector search was attempted and came up empty; the
			// relational pass below is the fallback.
			degraded = true
		}
	}

	cands, err := e.relationalSearch(ctx, it, plan, k)
	if err != nil {
		return nil, false, err
	}
	return cands, degraded, nil
}

// vectorSearch runs one index, filters by score floor and year, and
// hydrates the hits from the store. Hits referencing articles absent from
// the store indicate a stale index; they are logged and skipped rather than
// failing the query.
func (e *Engine) vectorSearch(ctx context.Context, snap *Snapshot, kind vecindex.Kind, vec []float32, k int, it intent.Intent, yearFilter bool) ([]candidate, error) {
	ix := snap.Indexes.Get(kind)
	if ix == nil {
		return nil, nil
	}

	hits, err := ix.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("searching %s index: %w", kind, err)
	}

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Score >= minVectorScore {
			ids = append(ids, h.ArticleID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	articles, err := e.store.ArticlesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrating %s hits: %w", kind, err)
	}

	var cands []candidate
	for _, h := range hits {
		if h.Score < minVectorScore {
			continue
		}
		a, ok := articles[h.ArticleID]
		if !ok {
			fmt.Fprintf(e.out, "warning: %s index references missing article %s, skipping\n", kind, h.ArticleID)
			continue
		}
		if yearFilter && !it.MatchesYear(a.Year) {
			continue
		}
		cands = append(cands, candidate{article: a, score: h.Score, source: "vector", index: kind})
	}
	return cands, nil
}

// relationalSearch runs the FTS keyword fallback over the full raw query so
// entity terms participate in matching, then assigns synthetic scores from
// which fields the query terms actually hit.
func (e *Engine) relationalSearch(ctx context.Context, it intent.Intent, plan intent.Plan, k int) ([]candidate, error) {
	ids, err := e.store.KeywordSearch(ctx, it.RawText, k)
	if err != nil {
		return nil, fmt.Errorf("relational search: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	articles, err := e.store.ArticlesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrating relational matches: %w", err)
	}

	tokens := strings.Fields(corpus.Normalize(it.RawText))
	var cands []candidate
	for _, id := range ids {
		a, ok := articles[id]
		if !ok {
			continue
		}
		if plan.YearPostFilter && !it.MatchesYear(a.Year) {
			continue
		}
		cands = append(cands, candidate{
			article: a,
			score:   syntheticScore(a, tokens),
			source:  "relational",
		})
	}
	return cands, nil
}

// syntheticScore approximates relevance for a keyword match by the fields
// the query terms appear in. Title matches score highest, then keywords,
// then abstract. The result never reaches the vector score floor.
func syntheticScore(a types.Article, tokens []string) float64 {
	title := corpus.Normalize(a.Title)
	keywords := corpus.Normalize(strings.Join(a.Keywords, " "))
	abstract := corpus.Normalize(a.Abstract)

	score := relationalScoreBase
	for _, tok := range tokens {
		switch {
		case containsWord(title, tok):
			if score < relationalScoreCap {
				score = relationalScoreCap
			}
		case containsWord(keywords, tok):
			if score < 0.40 {
				score = 0.40
			}
		case containsWord(abstract, tok):
			if score < 0.35 {
				score = 0.35
			}
		}
	}
	return score
}

func containsWord(text, word string) bool {
	return strings.Contains(" "+text+" ", " "+word+" ")
}

func (e *Engine) pastDeadline(start time.Time) bool {
	return e.cfg.SoftDeadline > 0 && time.Since(start) > e.cfg.SoftDeadline
}
