// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vecindex

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/pdiddy/scholar-search/pkg/types"
)

// Embedder is the slice of the embedding provider the builder needs.
// Returned vectors must be L2-normalized; degraded reports whether the
// fallback model produced them.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) (vecs [][]float32, degraded bool, err error)
}

// Builder constructs all five index artifacts from the article corpus.
// Embedding calls run on a bounded worker pool since model inference
// dominates build time.
type Builder struct {
	embedder  Embedder
	dir       string
	model     string
	poolSize  int
	batchSize int
}

// NewBuilder returns a builder writing artifacts under cfg.IndexDir.
// The model name is recorded in each manifest.
func NewBuilder(embedder Embedder, cfg types.IndexConfig, model string) *Builder {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = runtime.NumCPU() / 2
	}
	if poolSize < 1 {
		poolSize = 1
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 8
	}
	dir := cfg.IndexDir
	if dir == "" {
		dir = "data/index"
	}
	return &Builder{
		embedder:  embedder,
		dir:       dir,
		model:     model,
		poolSize:  poolSize,
		batchSize: batchSize,
	}
}

// Build embeds the corpus once per index kind and writes the artifacts.
// Articles without an abstract are excluded, matching what the search
// indexes are for: finding articles by their text. Build replaces artifacts
// atomically, so an engine serving queries from a previous build keeps
// working until it reloads.
func (b *Builder) Build(ctx context.Context, articles []types.Article, w io.Writer) error {
	indexable := articles[:0:0]
	for _, a := range articles {
		if a.Abstract != "" {
			indexable = append(indexable, a)
		}
	}
	if len(indexable) == 0 {
		return fmt.Errorf("no indexable articles: every article is missing an abstract")
	}
	fmt.Fprintf(w, "indexing %d of %d articles\n", len(indexable), len(articles))

	for _, kind := range Kinds {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var texts []string
		var ids []string
		for _, a := range indexable {
			text := ComposeText(a, kind)
			if text == "" {
				continue
			}
			texts = append(texts, text)
			ids = append(ids, a.ID)
		}
		if len(texts) == 0 {
			fmt.Fprintf(w, "skipped %s: no text to embed\n", kind)
			continue
		}

		vectors, degraded, err := b.embedAll(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding %s texts: %w", kind, err)
		}
		if degraded {
			fmt.Fprintf(w, "warning: %s index built with fallback embedding model\n", kind)
		}

		ix, err := NewIndex(kind, vectors, ids)
		if err != nil {
			return fmt.Errorf("building %s index: %w", kind, err)
		}
		if err := WriteArtifact(b.dir, ix, b.model); err != nil {
			return fmt.Errorf("persisting %s index: %w", kind, err)
		}
		fmt.Fprintf(w, "built %s index: %d rows, %d dimensions\n", kind, ix.Len(), ix.Dim())
	}

	return nil
}

// embedAll splits texts into batches and embeds them concurrently on an
// ants pool, preserving input order in the result.
func (b *Builder) embedAll(ctx context.Context, texts []string) ([][]float32, bool, error) {
	pool, err := ants.NewPool(b.poolSize)
	if err != nil {
		return nil, false, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	vectors := make([][]float32, len(texts))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		degraded bool
	)

	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed || ctx.Err() != nil {
				return
			}

			batch, wasDegraded, err := b.embedder.EmbedBatch(ctx, texts[start:end])
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if len(batch) != end-start {
				if firstErr == nil {
					firstErr = fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), end-start)
				}
				return
			}
			degraded = degraded || wasDegraded
			copy(vectors[start:end], batch)
		})
		if submitErr != nil {
			wg.Done()
			return nil, false, fmt.Errorf("submitting embedding batch: %w", submitErr)
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, false, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	return vectors, degraded, nil
}

// ComposeText builds the embedding text for one article and index kind,
// mirroring how each index was designed: content is title + abstract,
// metadata adds keywords and authors, institution leads with affiliations,
// full carries everything, combined is the title + abstract + keywords
// middle ground.
func ComposeText(a types.Article, kind Kind) string {
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	switch kind {
	case KindContent:
		add(sentence(a.Title))
		add(a.Abstract)
	case KindMetadata:
		add(sentence(a.Title))
		add(sentence(a.Abstract))
		add(labeled("Keywords", a.Keywords))
		add(labeled("Authors", a.Authors))
	case KindInstitution:
		add(labeled("Institutions", a.Institutions))
		add(labeled("Countries", a.Countries))
		if a.Title != "" {
			add("Title: " + a.Title)
		}
	case KindFull:
		add(sentence(a.Title))
		add(sentence(a.Abstract))
		add(labeled("Keywords", a.Keywords))
		add(labeled("Authors", a.Authors))
		add(labeled("Institutions", a.Institutions))
		add(labeled("Countries", a.Countries))
	case KindCombined:
		add(sentence(a.Title))
		add(sentence(a.Abstract))
		add(labeled("Keywords", a.Keywords))
	}

	return strings.Join(parts, " ")
}

func sentence(s string) string {
	if s == "" {
		return ""
	}
	return s + "."
}

func labeled(label string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	return label + ": " + strings.Join(values, "; ") + "."
}
