// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scholar-search pipeline.
package types

// Article is an immutable bibliographic record loaded from the corpus store.
// The query pipeline only ever reads articles; ingestion creates them once.
type Article struct {
	// ID is the unique corpus identifier (the Scopus ID for ingested records).
	ID string `json:"id" yaml:"id"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the article abstract, possibly empty.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists author full names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Institutions lists affiliated institution names in source order.
	Institutions []string `json:"institutions" yaml:"institutions"`

	// Countries lists affiliation countries in source order.
	Countries []string `json:"countries" yaml:"countries"`

	// Year is the publication year, zero when unknown.
	Year int `json:"year" yaml:"year"`

	// Keywords holds the author-supplied keywords.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// DOI is the digital object identifier, possibly empty.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// PublicationName is the journal or venue name.
	PublicationName string `json:"publication_name,omitempty" yaml:"publication_name,omitempty"`
}

// HasYear reports whether the article carries a known publication year.
func (a Article) HasYear() bool { return a.Year > 0 }
