// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mock provides a deterministic embedding provider for tests.
package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// Embedder generates deterministic unit vectors from text hashes, so tests
// get repeatable similarities without a model endpoint. Texts sharing more
// leading tokens do not embed closer together; tests that need controlled
// similarity should set EmbedFunc.
type Embedder struct {
	// Dim is the vector dimensionality (default 16).
	Dim int

	// Degraded is returned as the degraded flag on every call.
	Degraded bool

	// EmbedFunc overrides the default behavior when set.
	EmbedFunc func(ctx context.Context, texts []string) ([][]float32, bool, error)

	calls int
}

// EmbedBatch returns one deterministic vector per text.
func (m *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, bool, error) {
	m.calls++
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, texts)
	}

	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = m.vector(text)
	}
	return vecs, m.Degraded, nil
}

// Embed returns the deterministic vector for a single text.
func (m *Embedder) Embed(ctx context.Context, text string) ([]float32, bool, error) {
	vecs, degraded, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, degraded, err
	}
	return vecs[0], degraded, nil
}

// Calls returns the number of embedding calls made.
func (m *Embedder) Calls() int { return m.calls }

func (m *Embedder) vector(text string) []float32 {
	dim := m.Dim
	if dim <= 0 {
		dim = 16
	}

	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	v := make([]float32, dim)
	var sum float64
	for i := range v {
		seed = seed*6364136223846793005 + 1442695040888963407
		v[i] = float32(int64(seed>>33)%1000) / 1000
		sum += float64(v[i]) * float64(v[i])
	}
	if sum > 0 {
		norm := float32(math.Sqrt(sum))
		for i := range v {
			v[i] /= norm
		}
	}
	return v
}
