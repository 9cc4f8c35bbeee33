// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/agent-memory/pkg/types"
)

// unit returns a 2-d unit vector at angle theta (radians).
func unit(theta float64) types.Embedding {
	return types.Embedding{math.Cos(theta), math.Sin(theta)}
}

// withSimilarity returns an item whose cosine against unit(0) is s.
func withSimilarity(id string, s float64) types.ResearchItem {
	return types.ResearchItem{ID: id, Query: id, Embedding: unit(math.Acos(s))}
}

func ids(results []types.RetrievalResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Item.ID
	}
	return out
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b types.Embedding
		want float64
	}{
		{"identical", types.Embedding{1, 2, 3}, types.Embedding{1, 2, 3}, 1},
		{"opposite", types.Embedding{1, 0}, types.Embedding{-1, 0}, -1},
		{"orthogonal", types.Embedding{1, 0}, types.Embedding{0, 1}, 0},
		{"scale invariant", types.Embedding{1, 1}, types.Embedding{5, 5}, 1},
		{"zero query", types.Embedding{0, 0}, types.Embedding{1, 0}, 0},
		{"zero item", types.Embedding{1, 0}, types.Embedding{0, 0}, 0},
		{"length mismatch", types.Embedding{1, 0}, types.Embedding{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-12)
		})
	}
}

func TestCosineStaysInRange(t *testing.T) {
	for n := 1; n <= 64; n++ {
		v := make(types.Embedding, n*6)
		neg := make(types.Embedding, len(v))
		for i := range v {
			v[i] = math.Sin(float64(n*31+i*7)) / float64(i+1)
			neg[i] = -3 * v[i]
		}
		self := Cosine(v, v)
		assert.LessOrEqual(t, self, 1.0, "n=%d", n)
		assert.InDelta(t, 1.0, self, 1e-12, "n=%d", n)
		opposite := Cosine(v, neg)
		assert.GreaterOrEqual(t, opposite, -1.0, "n=%d", n)
		assert.InDelta(t, -1.0, opposite, 1e-12, "n=%d", n)
	}
}

func TestRankThresholdIsExclusive(t *testing.T) {
	query := unit(0)
	exact := withSimilarity("exact", 0.6)
	threshold := Cosine(query, exact.Embedding)
	corpus := []types.ResearchItem{
		exact,
		withSimilarity("above", 0.9),
		withSimilarity("below", 0.2),
	}

	results := Rank(query, corpus, threshold, DefaultLimit)

	require.Len(t, results, 1)
	assert.Equal(t, "above", results[0].Item.ID)
	for _, r := range results {
		assert.Greater(t, r.Score, threshold)
	}
}

func TestRankOrderAndLimit(t *testing.T) {
	corpus := []types.ResearchItem{
		withSimilarity("a", 0.70),
		withSimilarity("b", 0.95),
		withSimilarity("c", 0.10),
		withSimilarity("d", 0.80),
		withSimilarity("e", 0.65),
		withSimilarity("f", 0.90),
		withSimilarity("g", 0.99),
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"default limit", DefaultLimit, []string{"g", "b", "f", "d", "a"}},
		{"limit two", 2, []string{"g", "b"}},
		{"limit larger than hits", 10, []string{"g", "b", "f", "d", "a", "e"}},
		{"non-positive limit keeps all hits", 0, []string{"g", "b", "f", "d", "a", "e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := Rank(unit(0), corpus, DefaultThreshold, tt.limit)
			assert.Equal(t, tt.want, ids(results))
			for i := 1; i < len(results); i++ {
				assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
			}
		})
	}
}

func TestRankTiesKeepCreationOrder(t *testing.T) {
	var corpus []types.ResearchItem
	for i := 0; i < 4; i++ {
		corpus = append(corpus, types.ResearchItem{
			ID:        fmt.Sprintf("item-%d", i),
			Embedding: types.Embedding{3, 4},
		})
	}
	corpus = append(corpus, withSimilarity("best", 1))

	results := Rank(types.Embedding{3, 4}, corpus, DefaultThreshold, 3)

	assert.Equal(t, []string{"item-0", "item-1", "item-2"}, ids(results))
}

func TestRankEmptyCorpus(t *testing.T) {
	results := Rank(unit(0), nil, DefaultThreshold, DefaultLimit)
	assert.Empty(t, results)
	assert.False(t, MemoryUsed(results))
}

func TestRankZeroQueryMatchesNothing(t *testing.T) {
	corpus := []types.ResearchItem{withSimilarity("a", 1)}
	assert.Empty(t, Rank(types.Embedding{0, 0}, corpus, DefaultThreshold, DefaultLimit))
}

func TestMemoryUsed(t *testing.T) {
	self := withSimilarity("self", 1)
	other := withSimilarity("other", 0.9)

	selfOnly := Rank(unit(0), []types.ResearchItem{self}, DefaultThreshold, DefaultLimit)
	require.Len(t, selfOnly, 1)
	assert.InDelta(t, 1.0, selfOnly[0].Score, 1e-12)
	assert.False(t, MemoryUsed(selfOnly))

	withPrior := Rank(unit(0), []types.ResearchItem{other, self}, DefaultThreshold, DefaultLimit)
	require.Len(t, withPrior, 2)
	assert.Equal(t, "self", withPrior[0].Item.ID)
	assert.True(t, MemoryUsed(withPrior))
}
