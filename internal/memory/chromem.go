// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package memory

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"github.com/pdiddy/agent-memory/internal/retrieval"
	"github.com/pdiddy/agent-memory/pkg/types"
)

const (
	chromemDir        = "chromem"
	chromemCollection = "research"
)

// Metadata keys of a research document.
const (
	metaSeq        = "seq"
	metaAgentID    = "agent_id"
	metaQuery      = "query"
	metaSource     = "source"
	metaConfidence = "confidence"
	metaCreatedAt  = "created_at"
	metaEmbedding  = "embedding"
)

var errNoEmbedding = errors.New("research documents must carry an embedding")

// ChromemStore keeps research items in a persistent chromem-go collection
// under dataDir/chromem. chromem holds float32 vectors, so the exact float64
// embedding travels in the document metadata and scoring goes through
// retrieval.Rank. The journal is a LogJournal.
type ChromemStore struct {
	LogJournal

	db  *chromem.DB
	col *chromem.Collection
	dir string

	mu  sync.Mutex
	seq int
}

// OpenChromem opens or creates the persistent collection under dataDir.
func OpenChromem(dataDir string) (*ChromemStore, error) {
	if dataDir == "" {
		dataDir = "data"
	}

	db, err := chromem.NewPersistentDB(filepath.Join(dataDir, chromemDir), false)
	if err != nil {
		return nil, fmt.Errorf("opening chromem database: %w", err)
	}

	col, err := db.GetOrCreateCollection(chromemCollection, nil,
		func(context.Context, string) ([]float32, error) { return nil, errNoEmbedding })
	if err != nil {
		return nil, fmt.Errorf("opening collection %s: %w", chromemCollection, err)
	}

	return &ChromemStore{db: db, col: col, dir: dataDir, seq: col.Count()}, nil
}

// Dir returns the data directory holding the collection.
func (s *ChromemStore) Dir() string { return s.dir }

// Close is a no-op; chromem persists each document as it is added.
func (s *ChromemStore) Close() error { return nil }

// Create adds item as a document with a fresh ID and creation time.
func (s *ChromemStore) Create(ctx context.Context, item types.ResearchItem) (types.ResearchItem, error) {
	item.ID = uuid.NewString()
	item.CreatedAt = time.Now().UTC()

	vec := make([]float32, len(item.Embedding))
	for i, f := range item.Embedding {
		vec[i] = float32(f)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := chromem.Document{
		ID:      item.ID,
		Content: item.Findings,
		Metadata: map[string]string{
			metaSeq:        strconv.Itoa(s.seq),
			metaAgentID:    item.AgentID,
			metaQuery:      item.Query,
			metaSource:     item.Source,
			metaConfidence: strconv.FormatFloat(item.Confidence, 'g', -1, 64),
			metaCreatedAt:  item.CreatedAt.Format(time.RFC3339Nano),
			metaEmbedding:  base64.StdEncoding.EncodeToString(encodeEmbedding(item.Embedding)),
		},
		Embedding: vec,
	}
	if err := s.col.AddDocument(ctx, doc); err != nil {
		return types.ResearchItem{}, fmt.Errorf("adding research document: %w", err)
	}
	s.seq++

	return item, nil
}

// Query ranks every stored item against embedding with retrieval.Rank.
func (s *ChromemStore) Query(ctx context.Context, embedding types.Embedding, threshold float64, limit int) ([]types.RetrievalResult, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return nil, err
	}
	results := retrieval.Rank(embedding, items, threshold, limit)
	if results == nil {
		results = []types.RetrievalResult{}
	}
	return results, nil
}

// Items returns every stored item in creation order.
func (s *ChromemStore) Items(ctx context.Context) ([]types.ResearchItem, error) {
	n := s.col.Count()
	if n == 0 {
		return nil, nil
	}

	// chromem has no listing call; a query for all n documents returns
	// each one once, in similarity order.
	probe := make([]float32, types.EmbeddingDimensions)
	probe[0] = 1
	docs, err := s.col.QueryEmbedding(ctx, probe, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("listing research documents: %w", err)
	}

	type seqItem struct {
		seq  int
		item types.ResearchItem
	}
	all := make([]seqItem, 0, len(docs))
	for _, d := range docs {
		item, seq, err := itemFromDocument(d)
		if err != nil {
			return nil, err
		}
		all = append(all, seqItem{seq: seq, item: item})
	}
	slices.SortFunc(all, func(a, b seqItem) int { return a.seq - b.seq })

	items := make([]types.ResearchItem, len(all))
	for i, si := range all {
		items[i] = si.item
	}
	return items, nil
}

// Stats reports the collection size alongside the journal counts.
func (s *ChromemStore) Stats(ctx context.Context) (types.Stats, error) {
	st, err := s.LogJournal.Stats(ctx)
	if err != nil {
		return types.Stats{}, err
	}
	st.TotalResearch = s.col.Count()
	return st, nil
}

func itemFromDocument(d chromem.Result) (types.ResearchItem, int, error) {
	seq, err := strconv.Atoi(d.Metadata[metaSeq])
	if err != nil {
		return types.ResearchItem{}, 0, fmt.Errorf("document %s: parsing seq: %w", d.ID, err)
	}
	raw, err := base64.StdEncoding.DecodeString(d.Metadata[metaEmbedding])
	if err != nil {
		return types.ResearchItem{}, 0, fmt.Errorf("document %s: decoding embedding: %w", d.ID, err)
	}
	emb, err := decodeEmbedding(raw)
	if err != nil {
		return types.ResearchItem{}, 0, fmt.Errorf("document %s: %w", d.ID, err)
	}
	conf, _ := strconv.ParseFloat(d.Metadata[metaConfidence], 64)
	createdAt, _ := time.Parse(time.RFC3339Nano, d.Metadata[metaCreatedAt])

	return types.ResearchItem{
		ID:         d.ID,
		AgentID:    d.Metadata[metaAgentID],
		Query:      d.Metadata[metaQuery],
		Findings:   d.Content,
		Embedding:  emb,
		Source:     d.Metadata[metaSource],
		Confidence: conf,
		CreatedAt:  createdAt,
	}, seq, nil
}
