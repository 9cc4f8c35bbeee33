package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "agent-memory/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EmbeddingProvider identifies the backend used on the embedding primary path.
type EmbeddingProvider string

const (
	// ProviderNone uses only the deterministic hash embedding.
	ProviderNone   EmbeddingProvider = "none"
	ProviderOpenAI EmbeddingProvider = "openai"
	ProviderOllama EmbeddingProvider = "ollama"
)

// EmbeddingConfig holds settings for the embedding generator.
type EmbeddingConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the primary path: none, openai, or ollama.
	Provider EmbeddingProvider `json:"provider" yaml:"provider"`

	// Model is the provider model identifier (default "text-embedding-3-small").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the provider. Empty disables the openai provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Dimensions is the requested vector length (default 384).
	Dimensions int `json:"dimensions" yaml:"dimensions"`

	// CacheSize is the number of provider vectors kept in memory. Zero disables the cache.
	CacheSize int64 `json:"cache_size" yaml:"cache_size"`
}

// StoreDriver selects the memory store backend.
type StoreDriver string

const (
	DriverSQLite  StoreDriver = "sqlite"
	DriverChromem StoreDriver = "chromem"
)

// MemoryConfig holds settings for the memory store and retrieval.
type MemoryConfig struct {
	// Driver selects the backend: sqlite or chromem.
	Driver StoreDriver `json:"driver" yaml:"driver"`

	// DataDir is the directory holding the database files.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Threshold is the exclusive minimum similarity for retrieval (default 0.6).
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// Limit is the maximum number of retrieval results (default 5).
	Limit int `json:"limit" yaml:"limit"`
}

// SearchConfig holds settings for the researcher's search source.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// GatewayURL points at a search gateway. Empty uses the canned source.
	GatewayURL string `json:"gateway_url,omitempty" yaml:"gateway_url,omitempty"`

	// MaxResults is the number of results requested from the gateway (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServerConfig holds settings for the HTTP service.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format"`
}

// Config groups all component configurations.
type Config struct {
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	Memory    MemoryConfig    `json:"memory" yaml:"memory"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Log       LogConfig       `json:"log" yaml:"log"`
}
