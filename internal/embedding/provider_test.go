// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
)

// fakeModel implements the langchaingo embeddings.Embedder interface with a
// fixed vector or a fixed error.
type fakeModel struct {
	vec   []float32
	err   error
	calls int
}

func (f *fakeModel) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vecs := make([][]float32, len(texts))
	for i := range vecs {
		vecs[i] = append([]float32(nil), f.vec...)
	}
	return vecs, nil
}

func (f *fakeModel) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func TestEmbedUsesPrimary(t *testing.T) {
	primary := &fakeModel{vec: []float32{3, 4}}
	fallback := &fakeModel{vec: []float32{1, 0}}
	p := NewFromEmbedders(primary, fallback)

	vec, degraded, err := p.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if degraded {
		t.Error("degraded = true with healthy primary")
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times", fallback.calls)
	}
	// [3,4] normalizes to [0.6, 0.8].
	if math.Abs(float64(vec[0])-0.6) > 1e-6 || math.Abs(float64(vec[1])-0.8) > 1e-6 {
		t.Errorf("vec = %v, want [0.6 0.8]", vec)
	}
}

func TestEmbedFallsBackOnPrimaryFailure(t *testing.T) {
	primary := &fakeModel{err: fmt.Errorf("model offline")}
	fallback := &fakeModel{vec: []float32{0, 2}}
	p := NewFromEmbedders(primary, fallback)

	vec, degraded, err := p.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !degraded {
		t.Error("degraded = false after fallback")
	}
	if math.Abs(float64(vec[1])-1.0) > 1e-6 {
		t.Errorf("vec = %v, want unit vector", vec)
	}
}

func TestEmbedBothModelsFail(t *testing.T) {
	p := NewFromEmbedders(
		&fakeModel{err: fmt.Errorf("primary down")},
		&fakeModel{err: fmt.Errorf("fallback down")},
	)

	_, _, err := p.Embed(context.Background(), "some text")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "primary down") || !strings.Contains(err.Error(), "fallback down") {
		t.Errorf("error should name both failures: %v", err)
	}
}

func TestEmbedBatchPreservesOrderAndCount(t *testing.T) {
	p := NewFromEmbedders(&fakeModel{vec: []float32{1, 0}}, &fakeModel{vec: []float32{0, 1}})

	vecs, degraded, err := p.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if degraded {
		t.Error("degraded = true")
	}
	if len(vecs) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vecs))
	}
}

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 0, 4}
	NormalizeL2(v)
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("norm^2 = %f, want 1", sum)
	}

	zero := []float32{0, 0}
	NormalizeL2(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}
