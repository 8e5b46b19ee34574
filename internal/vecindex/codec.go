// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vecindex

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"go.yaml.in/yaml/v3"
)

// artifactVersion is bumped when the on-disk layout changes.
const artifactVersion = 1

// Manifest describes a persisted index artifact. It is written as a YAML
// sidecar next to the binary file so operators can inspect builds without
// decoding them.
type Manifest struct {
	Kind    Kind      `yaml:"kind"`
	Rows    int       `yaml:"rows"`
	Dim     int       `yaml:"dim"`
	Model   string    `yaml:"model"`
	BuiltAt time.Time `yaml:"built_at"`
}

// ArtifactPath returns the binary artifact path for a kind under dir.
func ArtifactPath(dir string, kind Kind) string {
	return filepath.Join(dir, string(kind)+".vec")
}

// ManifestPath returns the manifest sidecar path for a kind under dir.
func ManifestPath(dir string, kind Kind) string {
	return filepath.Join(dir, string(kind)+".yaml")
}

// marshalIndex encodes the index rows into a single buffer: a version tag,
// the dimension and row count, then per row the article id and raw floats.
func marshalIndex(ix *Index) []byte {
	size := varint.Int.Size(artifactVersion) + varint.Int.Size(ix.dim) + varint.Int.Size(len(ix.ids))
	for i, id := range ix.ids {
		size += ord.String.Size(id)
		for _, f := range ix.vectors[i] {
			size += raw.Float32.Size(f)
		}
	}

	bs := make([]byte, size)
	n := varint.Int.Marshal(artifactVersion, bs)
	n += varint.Int.Marshal(ix.dim, bs[n:])
	n += varint.Int.Marshal(len(ix.ids), bs[n:])
	for i, id := range ix.ids {
		n += ord.String.Marshal(id, bs[n:])
		for _, f := range ix.vectors[i] {
			n += raw.Float32.Marshal(f, bs[n:])
		}
	}
	return bs
}

// unmarshalIndex decodes an artifact buffer back into an Index.
func unmarshalIndex(kind Kind, bs []byte) (*Index, error) {
	version, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != artifactVersion {
		return nil, fmt.Errorf("unsupported artifact version %d", version)
	}

	dim, m, err := varint.Int.Unmarshal(bs[n:])
	if err != nil {
		return nil, fmt.Errorf("reading dimension: %w", err)
	}
	n += m
	count, m, err := varint.Int.Unmarshal(bs[n:])
	if err != nil {
		return nil, fmt.Errorf("reading row count: %w", err)
	}
	n += m
	if dim <= 0 || count <= 0 {
		return nil, fmt.Errorf("invalid artifact header: dim=%d rows=%d", dim, count)
	}

	ids := make([]string, count)
	vectors := make([][]float32, count)
	for i := 0; i < count; i++ {
		id, m, err := ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, fmt.Errorf("reading id at row %d: %w", i, err)
		}
		n += m

		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			f, m, err := raw.Float32.Unmarshal(bs[n:])
			if err != nil {
				return nil, fmt.Errorf("reading vector at row %d: %w", i, err)
			}
			n += m
			vec[j] = f
		}
		ids[i] = id
		vectors[i] = vec
	}

	return NewIndex(kind, vectors, ids)
}

// WriteArtifact persists the index and its manifest under dir. The binary
// file is written to a temp path and renamed so readers never observe a
// partial artifact.
func WriteArtifact(dir string, ix *Index, model string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	path := ArtifactPath(dir, ix.kind)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, marshalIndex(ix), 0o644); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing artifact: %w", err)
	}

	manifest := Manifest{
		Kind:    ix.kind,
		Rows:    ix.Len(),
		Dim:     ix.dim,
		Model:   model,
		BuiltAt: time.Now().UTC(),
	}
	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(ManifestPath(dir, ix.kind), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadArtifact loads a persisted index of the given kind from dir.
func ReadArtifact(dir string, kind Kind) (*Index, error) {
	bs, err := os.ReadFile(ArtifactPath(dir, kind))
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	ix, err := unmarshalIndex(kind, bs)
	if err != nil {
		return nil, fmt.Errorf("decoding %s artifact: %w", kind, err)
	}
	return ix, nil
}

// ReadManifest loads the manifest sidecar for a kind from dir.
func ReadManifest(dir string, kind Kind) (Manifest, error) {
	data, err := os.ReadFile(ManifestPath(dir, kind))
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}
