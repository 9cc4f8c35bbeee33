// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding maps text to fixed-length unit vectors. A configured
// provider is tried first; any provider failure falls back to a
// deterministic hash-seeded embedding, so callers never see an error.
package embedding

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/agent-memory/internal/logging"
	"github.com/pdiddy/agent-memory/pkg/types"
)

// DefaultModel is the provider model requested when none is configured.
const DefaultModel = "text-embedding-3-small"

// Provider is a backend that embeds a batch of texts. Implementations
// return one vector per input text, in input order.
type Provider interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([]types.Embedding, error)
}

// Generator produces embeddings of length types.EmbeddingDimensions.
type Generator struct {
	provider Provider
}

// New returns a Generator using provider on the primary path. A nil
// provider always uses the deterministic fallback.
func New(provider Provider) *Generator {
	return &Generator{provider: provider}
}

// NewFromConfig builds the provider selected by cfg and returns a
// Generator around it. The openai provider is only enabled when an API
// key is present.
func NewFromConfig(cfg types.EmbeddingConfig) (*Generator, error) {
	if cfg.Dimensions != 0 && cfg.Dimensions != types.EmbeddingDimensions {
		return nil, fmt.Errorf("unsupported embedding dimensions %d: must be %d", cfg.Dimensions, types.EmbeddingDimensions)
	}

	var provider Provider
	switch cfg.Provider {
	case "", types.ProviderNone:
	case types.ProviderOpenAI:
		if cfg.APIKey != "" {
			provider = NewOpenAIProvider(cfg)
		}
	case types.ProviderOllama:
		provider = NewOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q: use none, openai, or ollama", cfg.Provider)
	}

	if provider != nil && cfg.CacheSize > 0 {
		cached, err := NewCachedProvider(provider, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		provider = cached
	}

	return New(provider), nil
}

// ProviderName returns the active provider name, or "deterministic".
func (g *Generator) ProviderName() string {
	if g.provider == nil {
		return "deterministic"
	}
	return g.provider.Name()
}

// Embed returns the embedding for text.
func (g *Generator) Embed(ctx context.Context, text string) types.Embedding {
	return g.EmbedBatch(ctx, []string{text})[0]
}

// EmbedBatch returns one embedding per text, preserving input order. If
// the provider fails or returns malformed vectors, every text in the
// batch is embedded with Deterministic instead.
func (g *Generator) EmbedBatch(ctx context.Context, texts []string) []types.Embedding {
	if len(texts) == 0 {
		return []types.Embedding{}
	}

	if g.provider != nil {
		vecs, err := g.provider.Embed(ctx, texts)
		if err == nil {
			err = validate(vecs, len(texts))
		}
		if err == nil {
			return vecs
		}
		logging.From(ctx).Warn("embedding provider failed, using deterministic fallback",
			"provider", g.provider.Name(), "texts", len(texts), "error", err)
	}

	out := make([]types.Embedding, len(texts))
	for i, text := range texts {
		out[i] = Deterministic(text)
	}
	return out
}

// Close releases provider resources, if any.
func (g *Generator) Close() error {
	if c, ok := g.provider.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func validate(vecs []types.Embedding, want int) error {
	if len(vecs) != want {
		return fmt.Errorf("provider returned %d vectors for %d texts", len(vecs), want)
	}
	for i, v := range vecs {
		if len(v) != types.EmbeddingDimensions {
			return fmt.Errorf("vector %d has %d dimensions, want %d", i, len(v), types.EmbeddingDimensions)
		}
	}
	return nil
}
