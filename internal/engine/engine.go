// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine runs the query pipeline: intent extraction, strategy
// selection, nearest-neighbor search with fallbacks, ranking, and paging.
// The engine serves from an immutable snapshot of the entity dictionary and
// the index set, swapped atomically on reload, so searches never observe a
// half-loaded state.
package engine

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pdiddy/scholar-search/internal/corpus"
	"github.com/pdiddy/scholar-search/internal/intent"
	"github.com/pdiddy/scholar-search/internal/vecindex"
	"github.com/pdiddy/scholar-search/pkg/types"
)

var (
	// ErrEmptyQuery is returned for queries that are empty or whitespace.
	ErrEmptyQuery = fmt.Errorf("query is empty")

	// ErrSearchUnavailable is returned when no snapshot has been loaded yet.
	ErrSearchUnavailable = fmt.Errorf("search unavailable: no snapshot loaded")
)

// Embedder is the slice of the embedding provider the engine needs. The
// returned vector must be L2-normalized; degraded reports a fallback-model
// embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) (vec []float32, degraded bool, err error)
}

// Snapshot is one consistent view of the searchable state.
type Snapshot struct {
	Dict    *corpus.Dictionary
	Indexes *vecindex.Set
}

// Request is one search request. Page is 1-based; zero means the first page.
type Request struct {
	Query string
	Page  int
}

// Boost is one applied score boost with its reason.
type Boost struct {
	Reason string  `json:"reason"`
	Amount float64 `json:"amount"`
}

// Result is one ranked search result.
type Result struct {
	Article types.Article `json:"article"`

	// Score is the raw similarity for vector hits, or the synthetic
	// relevance score for relational matches.
	Score float64 `json:"score"`

	// Boosts lists the entity-match boosts applied on top of Score.
	Boosts []Boost `json:"boosts,omitempty"`

	// Final is Score plus the sum of Boosts; results sort on it.
	Final float64 `json:"final"`

	// Source is "vector" or "relational".
	Source string `json:"source"`

	// Index names the vector index that produced the hit, empty for
	// relational matches.
	Index vecindex.Kind `json:"index,omitempty"`

	// Explanation summarizes why the result ranked where it did.
	Explanation string `json:"explanation"`
}

// Response is the outcome of one search.
type Response struct {
	Query    string        `json:"query"`
	Intent   intent.Intent `json:"intent"`
	Plan     intent.Plan   `json:"plan"`
	Results  []Result      `json:"results"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`

	// Degraded is true when a fallback was taken anywhere in the
	// pipeline: fallback embedding model, relational fallback, or a soft
	// deadline cut.
	Degraded bool `json:"degraded"`

	// NoMatch is true when both search paths produced nothing.
	NoMatch bool `json:"no_match"`

	Elapsed time.Duration `json:"elapsed"`
}

// Engine executes search requests. Safe for concurrent use; Reload may run
// concurrently with Search.
type Engine struct {
	store     *corpus.Store
	embedder  Embedder
	extractor *intent.Extractor
	cfg       types.QueryConfig
	indexDir  string
	out       io.Writer

	snap atomic.Pointer[Snapshot]
}

// New returns an engine over the given store and embedder. Call Reload
// before the first Search. Diagnostics go to out.
func New(store *corpus.Store, embedder Embedder, cfg types.QueryConfig, indexCfg types.IndexConfig, out io.Writer) *Engine {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.OverfetchFactor <= 0 {
		cfg.OverfetchFactor = 4
	}
	indexDir := indexCfg.IndexDir
	if indexDir == "" {
		indexDir = "data/index"
	}
	if out == nil {
		out = io.Discard
	}
	return &Engine{
		store:     store,
		embedder:  embedder,
		extractor: intent.NewExtractor(cfg),
		cfg:       cfg,
		indexDir:  indexDir,
		out:       out,
	}
}

// Reload builds a fresh snapshot from the store and the on-disk index
// artifacts and swaps it in. In-flight searches keep the snapshot they
// started with.
func (e *Engine) Reload(ctx context.Context) error {
	dict, err := e.store.LoadDictionary(ctx)
	if err != nil {
		return fmt.Errorf("loading entity dictionary: %w", err)
	}
	set, err := vecindex.LoadSet(e.indexDir, e.out)
	if err != nil {
		return fmt.Errorf("loading index set: %w", err)
	}
	e.snap.Store(&Snapshot{Dict: dict, Indexes: set})
	fmt.Fprintf(e.out, "snapshot loaded: %d dictionary entries, %d indexes\n", dict.Size(), set.Len())
	return nil
}

// SetSnapshot installs a snapshot directly. Tests use this to skip disk.
func (e *Engine) SetSnapshot(snap *Snapshot) {
	e.snap.Store(snap)
}

// Search runs the full pipeline for one request. Identical requests against
// the same snapshot return identical responses.
func (e *Engine) Search(ctx context.Context, req Request) (*Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrSearchUnavailable
	}

	start := time.Now()
	it := e.extractor.Extract(query, snap.Dict)
	plan := intent.Select(it, snap.Indexes.Available)

	cands, degraded, err := e.collect(ctx, snap, it, plan, start)
	if err != nil {
		return nil, err
	}

	ranked := rank(cands, it)

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := e.cfg.PageSize

	resp := &Response{
		Query:    query,
		Intent:   it,
		Plan:     plan,
		Results:  paginate(ranked, page, pageSize),
		Total:    len(ranked),
		Page:     page,
		PageSize: pageSize,
		Degraded: degraded,
		NoMatch:  len(ranked) == 0,
		Elapsed:  time.Since(start),
	}
	return resp, nil
}

// paginate returns the 1-based page of the given size. Pages past the end
// are empty, not an error.
func paginate(results []Result, page, pageSize int) []Result {
	start := (page - 1) * pageSize
	if start >= len(results) {
		return nil
	}
	end := start + pageSize
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}
