// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// EmbeddingDimensions is the fixed vector length D used by every embedding
// path and stored with every ResearchItem.
const EmbeddingDimensions = 384

// Embedding is a fixed-length vector representing text for similarity
// comparison. Generated embeddings have unit norm; the zero vector is
// permitted when normalization is impossible.
type Embedding []float64

// Agent role identifiers recorded on stored items and journal entries.
const (
	AgentSystem     = "system"
	AgentAuditor    = "auditor"
	AgentResearcher = "researcher"
	AgentAnalyst    = "analyst"
)

// SourceWebSearch tags items produced by the researcher's search step.
const SourceWebSearch = "web_search"

// ResearchItem is one stored research finding. It is created exactly once
// per query by the researcher and never updated or deleted.
type ResearchItem struct {
	// ID is opaque and assigned by the store on creation.
	ID string `json:"id" yaml:"id"`

	// AgentID is the role that produced the item.
	AgentID string `json:"agent_id" yaml:"agent_id"`

	// Query is the user query the findings answer.
	Query string `json:"query" yaml:"query"`

	// Findings is the research text.
	Findings string `json:"findings" yaml:"findings"`

	// Embedding is the vector used for similarity retrieval.
	Embedding Embedding `json:"embedding,omitempty" yaml:"embedding,omitempty"`

	// Source tags where the findings came from (e.g. "web_search").
	Source string `json:"source" yaml:"source"`

	// Confidence is a value between 0.0 and 1.0.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// CreatedAt is set by the store on creation.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// RetrievalResult is a ResearchItem with the similarity score attached at
// query time. The score is never persisted.
type RetrievalResult struct {
	Item  ResearchItem `json:"item" yaml:"item"`
	Score float64      `json:"score" yaml:"score"`
}

// Answer is the result of routing one query through the agents.
type Answer struct {
	// Conclusion is the synthesized text returned to the user.
	Conclusion string `json:"conclusion"`

	// MemoryUsed reports genuine prior-knowledge overlap beyond the self-match.
	MemoryUsed bool `json:"memory_used"`

	// RelatedCount is the number of retrieval results, self-match included.
	RelatedCount int `json:"related_count"`

	// ResearchCount is the number of findings produced for this query.
	ResearchCount int `json:"research_count"`

	// ResearchID is the ID of the item written for this query.
	ResearchID string `json:"research_id"`
}
