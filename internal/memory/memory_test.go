// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/agent-memory/internal/embedding"
	"github.com/pdiddy/agent-memory/internal/retrieval"
	"github.com/pdiddy/agent-memory/pkg/types"
)

// --- test helpers ---

// vec returns a D-length embedding whose leading components are vals.
func vec(vals ...float64) types.Embedding {
	v := make(types.Embedding, types.EmbeddingDimensions)
	copy(v, vals)
	return v
}

func research(query string, emb types.Embedding) types.ResearchItem {
	return types.ResearchItem{
		AgentID:    types.AgentResearcher,
		Query:      query,
		Findings:   "findings for " + query,
		Embedding:  emb,
		Source:     types.SourceWebSearch,
		Confidence: 0.85,
	}
}

func openBackends(t *testing.T) map[string]Backend {
	t.Helper()

	sq, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	ch, err := OpenChromem(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { ch.Close() })

	return map[string]Backend{"sqlite": sq, "chromem": ch}
}

func seed(t *testing.T, s Store, items ...types.ResearchItem) []types.ResearchItem {
	t.Helper()
	out := make([]types.ResearchItem, len(items))
	for i, it := range items {
		created, err := s.Create(context.Background(), it)
		require.NoError(t, err)
		out[i] = created
	}
	return out
}

func ids(results []types.RetrievalResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Item.ID
	}
	return out
}

// --- Store contract, both backends ---

func TestCreateAssignsIDAndTime(t *testing.T) {
	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			in := research("q", vec(1))
			in.ID = "caller-supplied"

			got, err := b.Create(context.Background(), in)
			require.NoError(t, err)

			assert.NotEmpty(t, got.ID)
			assert.NotEqual(t, "caller-supplied", got.ID)
			assert.False(t, got.CreatedAt.IsZero())
			assert.Equal(t, in.Query, got.Query)
			assert.Equal(t, in.Embedding, got.Embedding)
		})
	}
}

func TestQuerySelfMatch(t *testing.T) {
	query := "What is Docker Compose?"
	emb := embedding.Deterministic(query)

	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			created := seed(t, b, research(query, emb))

			results, err := b.Query(context.Background(), emb, retrieval.DefaultThreshold, retrieval.DefaultLimit)
			require.NoError(t, err)
			require.Len(t, results, 1)

			assert.Equal(t, created[0].ID, results[0].Item.ID)
			assert.InDelta(t, 1.0, results[0].Score, 1e-12)
			assert.Equal(t, query, results[0].Item.Query)
			assert.Equal(t, emb, results[0].Item.Embedding)
			assert.False(t, retrieval.MemoryUsed(results))
		})
	}
}

func TestQueryEmptyStore(t *testing.T) {
	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			results, err := b.Query(context.Background(), vec(1), 0.6, 5)
			require.NoError(t, err)
			assert.NotNil(t, results)
			assert.Empty(t, results)
		})
	}
}

func TestQueryMatchesRank(t *testing.T) {
	corpus := []types.ResearchItem{
		research("exact", vec(1, 0)),
		research("close", vec(0.9, 0.1)),
		research("tie-a", vec(0.7, 0.7)),
		research("tie-b", vec(0.7, 0.7)),
		research("orthogonal", vec(0, 1)),
		research("opposite", vec(-1, 0)),
		research("docker", embedding.Deterministic("docker compose")),
		research("unrelated", embedding.Deterministic("totally unrelated topic")),
	}
	query := vec(1, 0)

	tests := []struct {
		name      string
		threshold float64
		limit     int
	}{
		{name: "defaults", threshold: 0.6, limit: 5},
		{name: "limit one", threshold: 0.6, limit: 1},
		{name: "zero threshold", threshold: 0, limit: 10},
		{name: "everything", threshold: -1.5, limit: 0},
		{name: "nothing passes", threshold: 1, limit: 5},
	}

	for name, b := range openBackends(t) {
		stored := seed(t, b, corpus...)

		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				got, err := b.Query(context.Background(), query, tt.threshold, tt.limit)
				require.NoError(t, err)

				want := retrieval.Rank(query, stored, tt.threshold, tt.limit)
				require.Equal(t, ids(want), ids(got))
				for i := range want {
					assert.InDelta(t, want[i].Score, got[i].Score, 1e-12)
				}
			})
		}
	}
}

func TestQueryTiesKeepCreationOrder(t *testing.T) {
	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			stored := seed(t, b,
				research("first", vec(0.5, 0.5)),
				research("second", vec(0.5, 0.5)),
				research("third", vec(0.5, 0.5)),
			)

			got, err := b.Query(context.Background(), vec(1, 1), 0.6, 5)
			require.NoError(t, err)
			assert.Equal(t, []string{stored[0].ID, stored[1].ID, stored[2].ID}, ids(got))
		})
	}
}

func TestItemsCreationOrder(t *testing.T) {
	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			stored := seed(t, b,
				research("a", vec(0, 1)),
				research("b", vec(1, 0)),
				research("c", vec(1, 1)),
			)

			items, err := b.Items(context.Background())
			require.NoError(t, err)
			require.Len(t, items, 3)
			for i := range stored {
				assert.Equal(t, stored[i].ID, items[i].ID)
				assert.Equal(t, stored[i].Findings, items[i].Findings)
				assert.Equal(t, stored[i].Confidence, items[i].Confidence)
				assert.True(t, stored[i].CreatedAt.Equal(items[i].CreatedAt))
			}
		})
	}
}

func TestReopenKeepsItems(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		dir := t.TempDir()
		s, err := OpenSQLite(dir)
		require.NoError(t, err)
		created := seed(t, s, research("persisted", vec(1)))
		require.NoError(t, s.Close())

		s, err = OpenSQLite(dir)
		require.NoError(t, err)
		defer s.Close()

		items, err := s.Items(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, created[0].ID, items[0].ID)
	})

	t.Run("chromem", func(t *testing.T) {
		dir := t.TempDir()
		s, err := OpenChromem(dir)
		require.NoError(t, err)
		first := seed(t, s, research("persisted", vec(1)))
		require.NoError(t, s.Close())

		s, err = OpenChromem(dir)
		require.NoError(t, err)
		second := seed(t, s, research("after reopen", vec(1)))

		items, err := s.Items(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, first[0].ID, items[0].ID)
		assert.Equal(t, second[0].ID, items[1].ID)
	})
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	b, err := Open(types.MemoryConfig{DataDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, b)
	require.NoError(t, b.Close())
	assert.FileExists(t, filepath.Join(dir, dbFile))

	b, err = Open(types.MemoryConfig{Driver: types.DriverChromem, DataDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &ChromemStore{}, b)
	require.NoError(t, b.Close())

	_, err = Open(types.MemoryConfig{Driver: "surreal", DataDir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown memory driver")
}

// --- SQLite journal ---

func TestSQLiteJournal(t *testing.T) {
	s, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	seed(t, s, research("q", vec(1)))

	require.NoError(t, s.RecordActivity(ctx, types.Activity{
		AgentID: types.AgentSystem,
		Action:  types.ActionQueryReceived,
		Details: map[string]any{"query": "q"},
	}))
	require.NoError(t, s.RecordActivity(ctx, types.Activity{
		AgentID: types.AgentAuditor,
		Action:  types.ActionDelegatingTask,
	}))
	require.NoError(t, s.RecordCollaboration(ctx, types.AgentResearcher, types.AgentAnalyst, "q"))

	saved, err := s.SaveAnalysis(ctx, types.Analysis{
		AgentID:         types.AgentAnalyst,
		Topic:           "q",
		Content:         "conclusion",
		Confidence:      0.9,
		RelatedResearch: []string{"r1", "r2"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	require.NoError(t, s.SaveConversation(ctx, types.Message{SessionID: "s1", Role: types.RoleUser, Content: "q"}))
	require.NoError(t, s.SaveConversation(ctx, types.Message{SessionID: "s2", Role: types.RoleUser, Content: "other"}))
	require.NoError(t, s.SaveConversation(ctx, types.Message{SessionID: "s1", Role: types.RoleAssistant, Content: "a"}))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.Stats{TotalResearch: 1, TotalMemories: 1, TotalMessages: 3, TotalActivities: 2}, st)

	msgs, err := s.Conversation(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, types.RoleUser, msgs[0].Role)
	assert.Equal(t, types.RoleAssistant, msgs[1].Role)

	analyses, err := s.Analyses(ctx)
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, saved.ID, analyses[0].ID)
	assert.Equal(t, []string{"r1", "r2"}, analyses[0].RelatedResearch)
	assert.Equal(t, 0.9, analyses[0].Confidence)

	var details string
	require.NoError(t, s.db.QueryRow(
		`SELECT details FROM agent_activity WHERE action = ?`, types.ActionQueryReceived,
	).Scan(&details))
	assert.JSONEq(t, `{"query":"q"}`, details)

	var from, to string
	require.NoError(t, s.db.QueryRow(`SELECT from_agent, to_agent FROM collaboration`).Scan(&from, &to))
	assert.Equal(t, types.AgentResearcher, from)
	assert.Equal(t, types.AgentAnalyst, to)
}

func TestAnalysesRejectsCorruptRelatedResearch(t *testing.T) {
	s, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agent_memory (id, agent_id, topic, content, confidence, related_research, created_at)
		 VALUES ('a1', 'analyst', 'q', 'c', 0.9, '["r1",', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)

	analyses, err := s.Analyses(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a1")
	assert.Nil(t, analyses)
}

func TestCosineSimilarityFunction(t *testing.T) {
	a := encodeEmbedding(vec(1, 0))
	b := encodeEmbedding(vec(1, 1))

	assert.InDelta(t, retrieval.Cosine(vec(1, 0), vec(1, 1)), cosineSimilarity(a, b), 1e-15)
	assert.Zero(t, cosineSimilarity([]byte{1, 2, 3}, b))
	assert.Zero(t, cosineSimilarity(nil, b))

	_, err := decodeEmbedding([]byte{1, 2, 3})
	assert.Error(t, err)
}

// --- chromem journal ---

func TestChromemStats(t *testing.T) {
	s, err := OpenChromem(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	seed(t, s, research("a", vec(1)), research("b", vec(0, 1)))
	require.NoError(t, s.RecordActivity(ctx, types.Activity{AgentID: types.AgentSystem, Action: types.ActionQueryReceived}))
	require.NoError(t, s.RecordCollaboration(ctx, types.AgentResearcher, types.AgentAnalyst, "a"))
	a, err := s.SaveAnalysis(ctx, types.Analysis{AgentID: types.AgentAnalyst, Topic: "a"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	require.NoError(t, s.SaveConversation(ctx, types.Message{SessionID: "s", Role: types.RoleUser}))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.Stats{TotalResearch: 2, TotalMemories: 1, TotalMessages: 1, TotalActivities: 1}, st)
}

// --- export ---

func TestExport(t *testing.T) {
	s, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	stored := seed(t, s, research("first", vec(1)), research("second", vec(0, 1)))
	outDir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path, err := Export(ctx, s, outDir, FormatYAML)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(outDir, "export.yaml"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "embedding")

		var entries []ExportEntry
		require.NoError(t, yaml.Unmarshal(data, &entries))
		require.Len(t, entries, 2)
		assert.Equal(t, stored[0].ID, entries[0].ID)
		assert.Equal(t, "second", entries[1].Query)
	})

	t.Run("json", func(t *testing.T) {
		path, err := Export(ctx, s, outDir, FormatJSON)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "embedding")

		var entries []ExportEntry
		require.NoError(t, json.Unmarshal(data, &entries))
		require.Len(t, entries, 2)
		assert.Equal(t, stored[1].ID, entries[1].ID)
		assert.Equal(t, types.SourceWebSearch, entries[0].Source)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := Export(ctx, s, outDir, "csv")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown export format")
	})
}

func TestExportEmptyStore(t *testing.T) {
	s, err := OpenChromem(t.TempDir())
	require.NoError(t, err)
	outDir := t.TempDir()

	path, err := ExportJSON(context.Background(), s, outDir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}
