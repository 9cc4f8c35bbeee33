// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/ristretto"

	"github.com/pdiddy/agent-memory/pkg/types"
)

// CachedProvider keeps provider vectors in a ristretto cache keyed by
// provider name and text, so repeated queries skip the remote call.
type CachedProvider struct {
	inner Provider
	cache *ristretto.Cache
}

// NewCachedProvider wraps inner with a cache holding up to size vectors.
func NewCachedProvider(inner Provider, size int64) (*CachedProvider, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: size * 10,
		MaxCost:     size,
		BufferItems: 64,

		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}
	return &CachedProvider{inner: inner, cache: cache}, nil
}

// Name returns the wrapped provider's name.
func (c *CachedProvider) Name() string { return c.inner.Name() }

// Embed serves cached vectors and forwards only the misses to the wrapped
// provider, in their original relative order.
func (c *CachedProvider) Embed(ctx context.Context, texts []string) ([]types.Embedding, error) {
	out := make([]types.Embedding, len(texts))
	var (
		missTexts []string
		missIdx   []int
	)
	for i, text := range texts {
		if v, ok := c.cache.Get(c.key(text)); ok {
			out[i] = slices.Clone(v.(types.Embedding))
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("provider returned %d vectors for %d texts", len(vecs), len(missTexts))
	}

	for j, v := range vecs {
		out[missIdx[j]] = v
		c.cache.Set(c.key(missTexts[j]), slices.Clone(v), 1)
	}
	c.cache.Wait()
	return out, nil
}

// Close stops the cache's background goroutines.
func (c *CachedProvider) Close() error {
	c.cache.Close()
	return nil
}

func (c *CachedProvider) key(text string) string {
	return c.inner.Name() + "\x00" + text
}
