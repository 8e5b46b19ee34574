// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vecindex

import (
	"fmt"
	"io"
	"os"
)

// Set holds whichever indexes could be loaded from disk. Missing or corrupt
// artifacts leave their kind unavailable; queries fall back per plan instead
// of failing. A Set is immutable after LoadSet and safe for concurrent reads.
type Set struct {
	indexes map[Kind]*Index
}

// NewSet builds a set from already-constructed indexes, mainly for tests
// and for the builder's post-build verification.
func NewSet(indexes ...*Index) *Set {
	s := &Set{indexes: make(map[Kind]*Index, len(indexes))}
	for _, ix := range indexes {
		if ix != nil {
			s.indexes[ix.kind] = ix
		}
	}
	return s
}

// LoadSet reads every index artifact present under dir. A kind whose
// artifact is missing is skipped silently; one that exists but fails to
// decode is reported on w and skipped, since the remaining indexes are
// still usable.
func LoadSet(dir string, w io.Writer) (*Set, error) {
	s := &Set{indexes: make(map[Kind]*Index, len(Kinds))}

	for _, kind := range Kinds {
		if _, err := os.Stat(ArtifactPath(dir, kind)); err != nil {
			continue
		}
		ix, err := ReadArtifact(dir, kind)
		if err != nil {
			fmt.Fprintf(w, "warning: index %s unavailable: %v\n", kind, err)
			continue
		}
		s.indexes[kind] = ix
	}

	return s, nil
}

// Available reports whether the given index kind is loaded.
func (s *Set) Available(kind Kind) bool {
	_, ok := s.indexes[kind]
	return ok
}

// Get returns the index for kind, or nil when unavailable.
func (s *Set) Get(kind Kind) *Index {
	return s.indexes[kind]
}

// Len returns the number of loaded indexes.
func (s *Set) Len() int { return len(s.indexes) }
