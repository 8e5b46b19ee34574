// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding wraps a primary scientific-text embedding model with a
// general-purpose fallback model behind one provider. Callers get a vector
// plus a degraded flag instead of an error path: a primary failure retries
// the fallback transparently, and only both models failing surfaces an error.
package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pdiddy/scholar-search/pkg/types"
)

// Provider computes L2-normalized text embeddings with a primary/fallback
// model pair. The underlying clients are not assumed safe for concurrent
// inference, so a mutex serializes the inference call itself; callers may
// still run the rest of their pipelines in parallel.
type Provider struct {
	mu       sync.Mutex
	primary  embeddings.Embedder
	fallback embeddings.Embedder
}

// New builds a provider from two OpenAI-compatible embedding clients
// against cfg.Host. Local endpoints that need no key get a placeholder
// token.
func New(cfg types.EmbeddingConfig) (*Provider, error) {
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}

	primary, err := newEmbedder(cfg.Host, token, cfg.PrimaryModel)
	if err != nil {
		return nil, fmt.Errorf("creating primary embedder: %w", err)
	}
	fallback, err := newEmbedder(cfg.Host, token, cfg.FallbackModel)
	if err != nil {
		return nil, fmt.Errorf("creating fallback embedder: %w", err)
	}

	return &Provider{primary: primary, fallback: fallback}, nil
}

// NewFromEmbedders builds a provider from pre-constructed embedders.
// Tests use this to inject failing or deterministic models.
func NewFromEmbedders(primary, fallback embeddings.Embedder) *Provider {
	return &Provider{primary: primary, fallback: fallback}
}

func newEmbedder(host, token, model string) (embeddings.Embedder, error) {
	client, err := openai.New(
		openai.WithBaseURL(host),
		openai.WithToken(token),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
}

// Embed returns the embedding for a single text. degraded is true when the
// primary model failed and the fallback produced the vector.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, bool, error) {
	vecs, degraded, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, false, err
	}
	if len(vecs) == 0 {
		return nil, degraded, fmt.Errorf("embedder returned no vector")
	}
	return vecs[0], degraded, nil
}

// EmbedBatch returns embeddings for texts in input order, L2-normalized so
// inner products are cosine similarities.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, bool, error) {
	vecs, err := p.infer(ctx, p.primary, texts)
	if err == nil {
		return vecs, false, nil
	}
	primaryErr := err

	vecs, err = p.infer(ctx, p.fallback, texts)
	if err != nil {
		return nil, false, fmt.Errorf("primary model failed (%v); fallback model failed: %w", primaryErr, err)
	}
	return vecs, true, nil
}

func (p *Provider) infer(ctx context.Context, e embeddings.Embedder, texts []string) ([][]float32, error) {
	p.mu.Lock()
	vecs, err := e.EmbedDocuments(ctx, texts)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}
	for _, v := range vecs {
		NormalizeL2(v)
	}
	return vecs, nil
}

// NormalizeL2 scales v to unit length in place. Zero vectors are left as-is.
func NormalizeL2(v []float32) {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}
