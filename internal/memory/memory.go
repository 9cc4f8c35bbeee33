// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package memory persists ResearchItems and answers similarity queries over
// them. Two backends are available: a SQLite database that also holds the
// agent journal tables, and a chromem-go persistent collection.
package memory

import (
	"context"
	"fmt"

	"github.com/pdiddy/agent-memory/pkg/types"
)

// Store is an append-only collection of research items.
type Store interface {
	// Create appends item and returns it with ID and CreatedAt assigned.
	Create(ctx context.Context, item types.ResearchItem) (types.ResearchItem, error)

	// Query returns items whose cosine similarity to embedding is strictly
	// greater than threshold, ordered by score descending with ties in
	// creation order, truncated to limit. A limit of zero or less returns
	// every match.
	Query(ctx context.Context, embedding types.Embedding, threshold float64, limit int) ([]types.RetrievalResult, error)

	// Items returns every stored item in creation order.
	Items(ctx context.Context) ([]types.ResearchItem, error)

	Close() error
}

// Journal records the agents' audit trail next to the research items.
type Journal interface {
	RecordActivity(ctx context.Context, a types.Activity) error
	RecordCollaboration(ctx context.Context, from, to, topic string) error
	SaveAnalysis(ctx context.Context, a types.Analysis) (types.Analysis, error)
	SaveConversation(ctx context.Context, m types.Message) error
	Stats(ctx context.Context) (types.Stats, error)
}

// Backend is a Store that also keeps the journal.
type Backend interface {
	Store
	Journal
}

// Open constructs the backend selected by cfg.Driver. An empty driver
// selects SQLite. The caller owns the returned handle and must Close it.
func Open(cfg types.MemoryConfig) (Backend, error) {
	switch cfg.Driver {
	case "", types.DriverSQLite:
		return OpenSQLite(cfg.DataDir)
	case types.DriverChromem:
		return OpenChromem(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown memory driver %q", cfg.Driver)
	}
}
