// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-search/pkg/types"
)

const defaultUserAgent = "scholar-search/0.1"

// pipelineConfig assembles the full configuration from the viper config
// file and environment, with API keys falling back to loaded secrets.
// Unset values keep their zero; each stage applies its own defaults.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Storage: types.StorageConfig{
			DBPath: viper.GetString("storage.db_path"),
		},
		Embedding: types.EmbeddingConfig{
			Host:          viper.GetString("embedding.host"),
			PrimaryModel:  viper.GetString("embedding.primary_model"),
			FallbackModel: viper.GetString("embedding.fallback_model"),
			APIKey:        viper.GetString("embedding.api_key"),
		},
		Index: types.IndexConfig{
			IndexDir:  viper.GetString("index.index_dir"),
			PoolSize:  viper.GetInt("index.pool_size"),
			BatchSize: viper.GetInt("index.batch_size"),
		},
		Query: types.QueryConfig{
			PageSize:        viper.GetInt("query.page_size"),
			OverfetchFactor: viper.GetInt("query.overfetch_factor"),
			MinYear:         viper.GetInt("query.min_year"),
			SoftDeadline:    viper.GetDuration("query.soft_deadline"),
		},
		Scopus: types.ScopusConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("scopus.timeout"),
				UserAgent: defaultUserAgent,
			},
			APIKey:       viper.GetString("scopus.api_key"),
			InstToken:    viper.GetString("scopus.inst_token"),
			PageSize:     viper.GetInt("scopus.page_size"),
			RequestDelay: viper.GetDuration("scopus.request_delay"),
		},
	}

	if cfg.Embedding.Host == "" {
		cfg.Embedding.Host = "http://localhost:8080/v1"
	}
	if cfg.Embedding.PrimaryModel == "" {
		cfg.Embedding.PrimaryModel = "allenai-specter"
	}
	if cfg.Embedding.FallbackModel == "" {
		cfg.Embedding.FallbackModel = "all-minilm-l6-v2"
	}
	if cfg.Query.SoftDeadline == 0 {
		cfg.Query.SoftDeadline = 10 * time.Second
	}

	if cfg.Scopus.APIKey == "" {
		cfg.Scopus.APIKey = loadedSecrets["scopus-api-key"]
	}
	if cfg.Scopus.InstToken == "" {
		cfg.Scopus.InstToken = loadedSecrets["scopus-inst-token"]
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = loadedSecrets["embedding-api-key"]
	}

	return cfg
}
