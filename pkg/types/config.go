// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scholar-search/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// StorageConfig holds settings for the corpus SQLite store.
type StorageConfig struct {
	// DBPath is the path to the corpus database file (default "data/corpus.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// EmbeddingConfig holds settings for the embedding provider.
type EmbeddingConfig struct {
	// Host is the base URL of an OpenAI-compatible embedding endpoint.
	Host string `json:"host" yaml:"host"`

	// PrimaryModel is the scientific-text embedding model tried first
	// (e.g. "allenai-specter").
	PrimaryModel string `json:"primary_model" yaml:"primary_model"`

	// FallbackModel is the general-purpose model used when the primary
	// fails (e.g. "all-minilm-l6-v2").
	FallbackModel string `json:"fallback_model" yaml:"fallback_model"`

	// APIKey authenticates against the embedding endpoint. Local
	// endpoints that need no key accept any non-empty value.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// IndexConfig holds settings for the vector index set and its builder.
type IndexConfig struct {
	// IndexDir is the directory holding index artifacts (default "data/index").
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// PoolSize is the embedding worker pool size for index builds.
	// Zero means half the CPU count, minimum one.
	PoolSize int `json:"pool_size" yaml:"pool_size"`

	// BatchSize is the number of texts embedded per provider call (default 8).
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// QueryConfig holds settings for the query pipeline.
type QueryConfig struct {
	// PageSize is the default number of results per page (default 10).
	PageSize int `json:"page_size" yaml:"page_size"`

	// OverfetchFactor multiplies the page size to get the nearest-neighbor
	// candidate count, leaving room for re-ranking and dedup (default 4).
	OverfetchFactor int `json:"overfetch_factor" yaml:"overfetch_factor"`

	// MinYear bounds year detection in query text (default 1900).
	MinYear int `json:"min_year" yaml:"min_year"`

	// SoftDeadline bounds total pipeline latency. Exceeding it degrades
	// the query to the relational fallback path instead of failing
	// (default 10s, zero disables).
	SoftDeadline time.Duration `json:"soft_deadline" yaml:"soft_deadline"`
}

// ScopusConfig holds settings for the Scopus acquisition client.
type ScopusConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the Elsevier developer API key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// InstToken is the optional institutional token.
	InstToken string `json:"inst_token,omitempty" yaml:"inst_token,omitempty"`

	// PageSize is the number of records per search request (Scopus caps at 25).
	PageSize int `json:"page_size" yaml:"page_size"`

	// RequestDelay is the pause between consecutive API calls (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	Index     IndexConfig     `json:"index" yaml:"index"`
	Query     QueryConfig     `json:"query" yaml:"query"`
	Scopus    ScopusConfig    `json:"scopus" yaml:"scopus"`
}
