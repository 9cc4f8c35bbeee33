// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agents routes a query through the auditor, researcher and analyst
// roles: the researcher stores a finding with its embedding, the analyst
// retrieves related memory and builds the conclusion.
package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"

	"github.com/pdiddy/agent-memory/internal/conclusion"
	"github.com/pdiddy/agent-memory/internal/logging"
	"github.com/pdiddy/agent-memory/internal/retrieval"
	"github.com/pdiddy/agent-memory/pkg/types"
)

var (
	// ErrStore marks a failed create or query against the memory store.
	ErrStore = errors.New("memory store failure")

	// ErrSearch marks a failed search for the current finding.
	ErrSearch = errors.New("search failure")
)

// Confidence recorded on stored research and analyses.
const (
	ResearchConfidence = 0.85
	AnalysisConfidence = 0.9
)

// Store is the part of the memory store the pipeline needs.
type Store interface {
	Create(ctx context.Context, item types.ResearchItem) (types.ResearchItem, error)
	Query(ctx context.Context, embedding types.Embedding, threshold float64, limit int) ([]types.RetrievalResult, error)
}

// Journal receives the audit trail of a query.
type Journal interface {
	RecordActivity(ctx context.Context, a types.Activity) error
	RecordCollaboration(ctx context.Context, from, to, topic string) error
	SaveAnalysis(ctx context.Context, a types.Analysis) (types.Analysis, error)
}

// Searcher supplies the current finding for a query.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Embedder maps text to an embedding. It must not fail.
type Embedder interface {
	Embed(ctx context.Context, text string) types.Embedding
}

// System runs queries against an explicitly supplied store.
type System struct {
	store     Store
	journal   Journal
	searcher  Searcher
	embedder  Embedder
	threshold float64
	limit     int
}

// DefaultConfig returns a MemoryConfig carrying the retrieval defaults.
func DefaultConfig() types.MemoryConfig {
	return types.MemoryConfig{
		Threshold: retrieval.DefaultThreshold,
		Limit:     retrieval.DefaultLimit,
	}
}

// New builds a System. A nil journal discards the audit trail. The
// threshold in cfg is used as given, zero included; a non-positive limit
// selects retrieval.DefaultLimit.
func New(store Store, embedder Embedder, searcher Searcher, journal Journal, cfg types.MemoryConfig) *System {
	if journal == nil {
		journal = discardJournal{}
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = retrieval.DefaultLimit
	}
	return &System{
		store:     store,
		journal:   journal,
		searcher:  searcher,
		embedder:  embedder,
		threshold: cfg.Threshold,
		limit:     limit,
	}
}

type sessionKey struct{}

// WithSession returns a context whose queries are journaled under sessionID.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// research is what the researcher hands to the analyst.
type research struct {
	item     types.ResearchItem
	findings []string
}

// Answer processes one query. The researcher's record is written before
// the analyst's retrieval, so the results always include the self-match.
// Store failures abort the query with an error wrapping ErrStore; journal
// failures are logged and ignored. An empty query is processed like any
// other.
func (s *System) Answer(ctx context.Context, query string) (types.Answer, error) {
	logger := logging.From(ctx)

	details := map[string]any{"query": query}
	if id := sessionFrom(ctx); id != "" {
		details["session_id"] = id
	}
	s.record(ctx, types.AgentSystem, types.ActionQueryReceived, details)

	logger.Info("auditor delegating research task", "query", query)
	s.record(ctx, types.AgentAuditor, types.ActionDelegatingTask, map[string]any{
		"to":    types.AgentResearcher,
		"query": query,
	})

	res, err := s.research(ctx, query)
	if err != nil {
		return types.Answer{}, err
	}

	ans, err := s.analyze(ctx, query, res)
	if err != nil {
		return types.Answer{}, err
	}

	s.record(ctx, types.AgentAuditor, types.ActionTaskCompleted, map[string]any{
		"query":          query,
		"research_count": ans.ResearchCount,
		"memory_used":    ans.MemoryUsed,
	})
	return ans, nil
}

func (s *System) research(ctx context.Context, query string) (research, error) {
	logger := logging.From(ctx)
	logger.Info("researcher searching", "query", query)
	s.record(ctx, types.AgentResearcher, types.ActionSearchStarted, map[string]any{"query": query})

	finding, err := s.searcher.Search(ctx, query)
	if err != nil {
		logger.Error("search failed", "query", query, "error", err)
		return research{}, goerr.Wrap(fmt.Errorf("%w: %w", ErrSearch, err),
			"researcher could not produce findings", goerr.V("query", query))
	}

	item, err := s.store.Create(ctx, types.ResearchItem{
		AgentID:    types.AgentResearcher,
		Query:      query,
		Findings:   finding,
		Embedding:  s.embedder.Embed(ctx, query),
		Source:     types.SourceWebSearch,
		Confidence: ResearchConfidence,
	})
	if err != nil {
		logger.Error("storing research failed", "query", query, "error", err)
		return research{}, goerr.Wrap(fmt.Errorf("%w: %w", ErrStore, err),
			"researcher could not store findings", goerr.V("query", query))
	}
	logger.Info("researcher stored findings", "research_id", item.ID)

	if err := s.journal.RecordCollaboration(ctx, types.AgentResearcher, types.AgentAnalyst, query); err != nil {
		logger.Warn("journal write failed", "kind", "collaboration", "error", err)
	}
	s.record(ctx, types.AgentResearcher, types.ActionSearchCompleted, map[string]any{
		"query":       query,
		"research_id": item.ID,
	})

	return research{item: item, findings: []string{finding}}, nil
}

func (s *System) analyze(ctx context.Context, query string, res research) (types.Answer, error) {
	logger := logging.From(ctx)
	logger.Info("analyst retrieving memory", "query", query)
	s.record(ctx, types.AgentAnalyst, types.ActionAnalysisStarted, map[string]any{"query": query})

	related, err := s.store.Query(ctx, s.embedder.Embed(ctx, query), s.threshold, s.limit)
	if err != nil {
		logger.Error("memory query failed", "query", query, "error", err)
		return types.Answer{}, goerr.Wrap(fmt.Errorf("%w: %w", ErrStore, err),
			"analyst could not query memory",
			goerr.V("query", query),
			goerr.V("threshold", s.threshold),
			goerr.V("limit", s.limit))
	}

	memoryUsed := retrieval.MemoryUsed(related)
	text := conclusion.Build(query, res.findings[0], related)
	logger.Info("analyst built conclusion", "related_count", len(related), "memory_used", memoryUsed)

	relatedIDs := make([]string, len(related))
	for i, r := range related {
		relatedIDs[i] = r.Item.ID
	}
	if _, err := s.journal.SaveAnalysis(ctx, types.Analysis{
		AgentID:         types.AgentAnalyst,
		Topic:           query,
		Content:         text,
		Confidence:      AnalysisConfidence,
		RelatedResearch: relatedIDs,
	}); err != nil {
		logger.Warn("journal write failed", "kind", "analysis", "error", err)
	}

	s.record(ctx, types.AgentAnalyst, types.ActionAnalysisCompleted, map[string]any{
		"query":         query,
		"memory_used":   memoryUsed,
		"related_count": len(related),
	})

	return types.Answer{
		Conclusion:    text,
		MemoryUsed:    memoryUsed,
		RelatedCount:  len(related),
		ResearchCount: len(res.findings),
		ResearchID:    res.item.ID,
	}, nil
}

// record writes one activity entry, logging instead of failing.
func (s *System) record(ctx context.Context, agentID, action string, details map[string]any) {
	err := s.journal.RecordActivity(ctx, types.Activity{
		AgentID: agentID,
		Action:  action,
		Details: details,
	})
	if err != nil {
		logging.From(ctx).Warn("journal write failed",
			slog.String("kind", "activity"),
			slog.String("action", action),
			slog.Any("error", err))
	}
}

type discardJournal struct{}

func (discardJournal) RecordActivity(context.Context, types.Activity) error { return nil }

func (discardJournal) RecordCollaboration(context.Context, string, string, string) error {
	return nil
}

func (discardJournal) SaveAnalysis(_ context.Context, a types.Analysis) (types.Analysis, error) {
	return a, nil
}
