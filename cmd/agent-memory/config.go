// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/agent-memory/internal/embedding"
	"github.com/pdiddy/agent-memory/internal/logging"
	"github.com/pdiddy/agent-memory/internal/retrieval"
	"github.com/pdiddy/agent-memory/internal/secrets"
	"github.com/pdiddy/agent-memory/pkg/types"
)

// openAIKeyEnv is consulted when neither the config nor .secrets/ holds a key.
const openAIKeyEnv = "OPENAI_API_KEY"

func setDefaults(v *viper.Viper) {
	v.SetDefault("embedding.provider", string(types.ProviderNone))
	v.SetDefault("embedding.model", embedding.DefaultModel)
	v.SetDefault("embedding.dimensions", types.EmbeddingDimensions)
	v.SetDefault("embedding.cache_size", 1024)
	v.SetDefault("embedding.timeout", 30*time.Second)
	v.SetDefault("embedding.base_url", "")
	v.SetDefault("embedding.api_key", "")

	v.SetDefault("memory.driver", string(types.DriverSQLite))
	v.SetDefault("memory.data_dir", "data")
	v.SetDefault("memory.threshold", retrieval.DefaultThreshold)
	v.SetDefault("memory.limit", retrieval.DefaultLimit)

	v.SetDefault("search.gateway_url", "")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.timeout", 15*time.Second)

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatConsole)
}

// loadConfig reads the typed configuration from v. Keys resolve in viper's
// order: flag, environment (AGENT_MEMORY_*), config file, default.
func loadConfig(v *viper.Viper) types.Config {
	userAgent := "agent-memory/" + version

	return types.Config{
		Embedding: types.EmbeddingConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("embedding.timeout"),
				UserAgent: userAgent,
			},
			Provider:   types.EmbeddingProvider(v.GetString("embedding.provider")),
			Model:      v.GetString("embedding.model"),
			APIKey:     v.GetString("embedding.api_key"),
			BaseURL:    v.GetString("embedding.base_url"),
			Dimensions: v.GetInt("embedding.dimensions"),
			CacheSize:  v.GetInt64("embedding.cache_size"),
		},
		Memory: types.MemoryConfig{
			Driver:    types.StoreDriver(v.GetString("memory.driver")),
			DataDir:   v.GetString("memory.data_dir"),
			Threshold: v.GetFloat64("memory.threshold"),
			Limit:     v.GetInt("memory.limit"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("search.timeout"),
				UserAgent: userAgent,
			},
			GatewayURL: v.GetString("search.gateway_url"),
			MaxResults: v.GetInt("search.max_results"),
		},
		Server: types.ServerConfig{
			Addr: v.GetString("server.addr"),
		},
		Log: types.LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
}

// applySecrets fills credentials missing from cfg from the loaded secrets
// and the environment.
func applySecrets(cfg *types.Config, s map[string]string) {
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = secrets.Lookup(s, secrets.OpenAIAPIKey, openAIKeyEnv)
	}
}
