// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/pdiddy/agent-memory/pkg/types"
)

// Keywords are the domain terms boosted by the deterministic embedding.
// Order matters: keyword i boosts the slice starting at (i*keywordStride) mod D.
var Keywords = []string{
	"docker", "compose", "container", "agent", "database", "surreal",
	"memory", "search", "query", "ai", "system", "service",
}

const (
	keywordStride = 30
	keywordWidth  = 5
	keywordBoost  = 0.1
)

// Deterministic derives a unit-length embedding purely from text. The
// first four bytes of the SHA-256 digest seed a PCG generator that draws
// D standard-normal samples; the vector is normalized, boosted on the
// slices of any Keywords the lowercased text contains, and normalized
// again. Equal text always yields an identical vector.
func Deterministic(text string) types.Embedding {
	vec := baseVector(text)
	normalize(vec)
	applyKeywordBoost(vec, text)
	normalize(vec)
	return vec
}

// baseVector returns the raw, unnormalized normal samples for text.
func baseVector(text string) types.Embedding {
	sum := sha256.Sum256([]byte(text))
	seed := binary.BigEndian.Uint32(sum[:4])
	rng := rand.New(rand.NewPCG(uint64(seed), 0))

	vec := make(types.Embedding, types.EmbeddingDimensions)
	for i := range vec {
		vec[i] = rng.NormFloat64()
	}
	return vec
}

func applyKeywordBoost(vec types.Embedding, text string) {
	lower := strings.ToLower(text)
	for i, word := range Keywords {
		if !strings.Contains(lower, word) {
			continue
		}
		start := (i * keywordStride) % len(vec)
		end := min(start+keywordWidth, len(vec))
		for j := start; j < end; j++ {
			vec[j] += keywordBoost
		}
	}
}

// normalize scales vec to unit length in place. A zero vector is left as is.
func normalize(vec types.Embedding) {
	norm := Norm(vec)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] /= norm
	}
}

// Norm returns the Euclidean norm of vec.
func Norm(vec types.Embedding) float64 {
	var sq float64
	for _, v := range vec {
		sq += v * v
	}
	return math.Sqrt(sq)
}
