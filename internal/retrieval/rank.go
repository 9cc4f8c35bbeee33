// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval ranks stored research items against a query embedding
// by cosine similarity.
package retrieval

import (
	"math"
	"slices"

	"github.com/pdiddy/agent-memory/pkg/types"
)

const (
	// DefaultThreshold is the exclusive minimum similarity for a hit.
	DefaultThreshold = 0.6

	// DefaultLimit is the maximum number of hits returned.
	DefaultLimit = 5
)

// Cosine returns dot(a, b) / (|a| * |b|) clamped to [-1, 1]. Vectors of
// different length, empty vectors and zero-norm vectors have similarity 0.
func Cosine(a, b types.Embedding) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return max(-1, min(1, dot/denom))
}

// Rank scores every item of corpus against query, keeps those scoring
// strictly above threshold, and returns at most limit results ordered by
// descending score. Equal scores keep corpus order, so a corpus given in
// creation order breaks ties oldest first. A non-positive limit returns
// all hits.
//
// Rank is a full scan: O(len(corpus)) per call.
func Rank(query types.Embedding, corpus []types.ResearchItem, threshold float64, limit int) []types.RetrievalResult {
	results := make([]types.RetrievalResult, 0, len(corpus))
	for _, item := range corpus {
		score := Cosine(query, item.Embedding)
		if !(score > threshold) {
			continue
		}
		results = append(results, types.RetrievalResult{Item: item, Score: score})
	}

	slices.SortStableFunc(results, func(a, b types.RetrievalResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// MemoryUsed reports whether results hold more than the self-match written
// for the current query.
func MemoryUsed(results []types.RetrievalResult) bool {
	return len(results) > 1
}
