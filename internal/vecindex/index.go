// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vecindex implements the nearest-neighbor index set: five flat
// inner-product indexes over normalized article embeddings, persisted as
// binary artifacts and read-only at query time.
package vecindex

import (
	"fmt"
	"sort"
)

// Kind identifies one of the specialized indexes. Each kind embeds a
// different slice of the article record.
type Kind string

const (
	// KindContent indexes title + abstract, the primary semantic index.
	KindContent Kind = "content"

	// KindMetadata indexes title + abstract + keywords + authors.
	KindMetadata Kind = "metadata"

	// KindInstitution indexes institution names and countries with the
	// title for context.
	KindInstitution Kind = "institution"

	// KindFull indexes all available text fields.
	KindFull Kind = "full"

	// KindCombined indexes title + abstract + keywords and serves as the
	// shared substitute when a specialized index is unavailable.
	KindCombined Kind = "combined"
)

// Kinds lists every index kind in build order.
var Kinds = []Kind{KindContent, KindMetadata, KindInstitution, KindFull, KindCombined}

// Valid reports whether k names a known index kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Hit is one nearest-neighbor match: the article id behind an index row and
// a similarity score mapped into [0, 1].
type Hit struct {
	ArticleID string
	Score     float64
}

// Index is a flat inner-product index over L2-normalized vectors. It is
// immutable after construction, so concurrent searches need no locking.
type Index struct {
	kind    Kind
	dim     int
	vectors [][]float32
	ids     []string
}

// NewIndex constructs an index from parallel vector and id slices. Vectors
// are expected to be L2-normalized already; dim is taken from the first row.
func NewIndex(kind Kind, vectors [][]float32, ids []string) (*Index, error) {
	if len(vectors) != len(ids) {
		return nil, fmt.Errorf("vector count %d does not match id count %d", len(vectors), len(ids))
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty index for kind %s", kind)
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("row %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return &Index{kind: kind, dim: dim, vectors: vectors, ids: ids}, nil
}

// Kind returns the index kind.
func (ix *Index) Kind() Kind { return ix.kind }

// Len returns the number of rows in the index.
func (ix *Index) Len() int { return len(ix.ids) }

// Dim returns the vector dimensionality.
func (ix *Index) Dim() int { return ix.dim }

// Search returns the k nearest rows to the query vector by inner product.
// With normalized vectors the inner product is the cosine similarity; it is
// mapped from [-1, 1] into [0, 1] so callers compare scores on one scale.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), ix.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	hits := make([]Hit, 0, len(ix.ids))
	for i, v := range ix.vectors {
		cos := dotProduct(query, v)
		hits = append(hits, Hit{ArticleID: ix.ids[i], Score: mapScore(cos)})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ArticleID < hits[j].ArticleID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// mapScore maps a cosine similarity from [-1, 1] into [0, 1].
func mapScore(cos float32) float64 {
	s := (float64(cos) + 1) / 2
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// dotProduct computes the inner product of two equal-length vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
