// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/pdiddy/agent-memory/internal/retrieval"
	"github.com/pdiddy/agent-memory/pkg/types"
)

const (
	dbFile     = "agent-memory.db"
	driverName = "sqlite3_agent_memory"
)

var registerOnce sync.Once

// registerDriver installs a sqlite3 driver whose connections carry the
// cosine_similarity(a, b) function over float64 embedding blobs.
func registerDriver() {
	registerOnce.Do(func() {
		sql.Register(driverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("cosine_similarity", cosineSimilarity, true)
			},
		})
	})
}

// cosineSimilarity scores two encoded embeddings. Malformed blobs score 0.
func cosineSimilarity(a, b []byte) float64 {
	va, err := decodeEmbedding(a)
	if err != nil {
		return 0
	}
	vb, err := decodeEmbedding(b)
	if err != nil {
		return 0
	}
	return retrieval.Cosine(va, vb)
}

// SQLiteStore keeps research items and the agent journal in one SQLite
// database at dataDir/agent-memory.db.
type SQLiteStore struct {
	db  *sql.DB
	dir string
	now func() time.Time
}

// OpenSQLite opens or creates the database under dataDir and creates the
// schema if it does not exist.
func OpenSQLite(dataDir string) (*SQLiteStore, error) {
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	registerDriver()

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open(driverName, dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{
		db:  db,
		dir: dataDir,
		now: func() time.Time { return time.Now().UTC() },
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Dir returns the data directory holding the database file.
func (s *SQLiteStore) Dir() string { return s.dir }

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS research (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			agent_id TEXT NOT NULL,
			query TEXT NOT NULL,
			findings TEXT NOT NULL,
			embedding BLOB NOT NULL,
			source TEXT,
			confidence REAL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS agent_memory (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			agent_id TEXT NOT NULL,
			topic TEXT NOT NULL,
			content TEXT NOT NULL,
			confidence REAL,
			related_research TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS agent_activity (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			agent_id TEXT NOT NULL,
			action TEXT NOT NULL,
			details TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_agent_activity_agent ON agent_activity(agent_id)`,
		`CREATE TABLE IF NOT EXISTS collaboration (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			from_agent TEXT NOT NULL,
			to_agent TEXT NOT NULL,
			topic TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS conversation (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversation_session ON conversation(session_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Create inserts item with a fresh ID and creation time. The insert is a
// single statement, so each record is created atomically.
func (s *SQLiteStore) Create(ctx context.Context, item types.ResearchItem) (types.ResearchItem, error) {
	item.ID = uuid.NewString()
	item.CreatedAt = s.now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO research (id, agent_id, query, findings, embedding, source, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.AgentID, item.Query, item.Findings,
		encodeEmbedding(item.Embedding), item.Source, item.Confidence,
		item.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return types.ResearchItem{}, fmt.Errorf("inserting research item: %w", err)
	}
	return item, nil
}

// Query runs the similarity filter inside SQLite using cosine_similarity,
// which shares its arithmetic with retrieval.Cosine.
func (s *SQLiteStore) Query(ctx context.Context, embedding types.Embedding, threshold float64, limit int) ([]types.RetrievalResult, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, query, findings, embedding, source, confidence, created_at, score
		FROM (
			SELECT seq, id, agent_id, query, findings, embedding, source, confidence, created_at,
				cosine_similarity(embedding, ?) AS score
			FROM research
		)
		WHERE score > ?
		ORDER BY score DESC, seq ASC
		LIMIT ?`,
		encodeEmbedding(embedding), threshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying research: %w", err)
	}
	defer rows.Close()

	results := []types.RetrievalResult{}
	for rows.Next() {
		var r types.RetrievalResult
		if err := scanResearch(rows, &r.Item, &r.Score); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Items returns every research item in creation order.
func (s *SQLiteStore) Items(ctx context.Context) ([]types.ResearchItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, query, findings, embedding, source, confidence, created_at
		FROM research ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing research: %w", err)
	}
	defer rows.Close()

	var items []types.ResearchItem
	for rows.Next() {
		var item types.ResearchItem
		if err := scanResearch(rows, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// scanResearch reads one research row into item, followed by any extra
// destinations selected after created_at.
func scanResearch(rows *sql.Rows, item *types.ResearchItem, extra ...any) error {
	var (
		blob      []byte
		source    sql.NullString
		conf      sql.NullFloat64
		createdAt string
	)
	dest := append([]any{
		&item.ID, &item.AgentID, &item.Query, &item.Findings,
		&blob, &source, &conf, &createdAt,
	}, extra...)
	if err := rows.Scan(dest...); err != nil {
		return fmt.Errorf("scanning row: %w", err)
	}

	emb, err := decodeEmbedding(blob)
	if err != nil {
		return fmt.Errorf("decoding embedding of %s: %w", item.ID, err)
	}
	item.Embedding = emb
	item.Source = source.String
	item.Confidence = conf.Float64
	item.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return nil
}

// RecordActivity appends an audit entry. Details are stored as JSON.
func (s *SQLiteStore) RecordActivity(ctx context.Context, a types.Activity) error {
	details, err := json.Marshal(a.Details)
	if err != nil {
		return fmt.Errorf("marshaling activity details: %w", err)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agent_activity (agent_id, action, details, created_at) VALUES (?, ?, ?, ?)`,
		a.AgentID, a.Action, string(details), a.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

// RecordCollaboration records that from handed topic to to.
func (s *SQLiteStore) RecordCollaboration(ctx context.Context, from, to, topic string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collaboration (from_agent, to_agent, topic, created_at) VALUES (?, ?, ?, ?)`,
		from, to, topic, s.now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting collaboration: %w", err)
	}
	return nil
}

// SaveAnalysis stores an analyst conclusion and returns it with ID and
// CreatedAt assigned.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, a types.Analysis) (types.Analysis, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = s.now()
	if a.RelatedResearch == nil {
		a.RelatedResearch = []string{}
	}
	related, err := json.Marshal(a.RelatedResearch)
	if err != nil {
		return types.Analysis{}, fmt.Errorf("marshaling related research: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agent_memory (id, agent_id, topic, content, confidence, related_research, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.AgentID, a.Topic, a.Content, a.Confidence, string(related),
		a.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return types.Analysis{}, fmt.Errorf("inserting analysis: %w", err)
	}
	return a, nil
}

// Analyses returns stored analyst conclusions in creation order.
func (s *SQLiteStore) Analyses(ctx context.Context) ([]types.Analysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, topic, content, confidence, related_research, created_at
		FROM agent_memory ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	var out []types.Analysis
	for rows.Next() {
		var (
			a         types.Analysis
			conf      sql.NullFloat64
			related   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.AgentID, &a.Topic, &a.Content, &conf, &related, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		a.Confidence = conf.Float64
		if related.Valid {
			if err := json.Unmarshal([]byte(related.String), &a.RelatedResearch); err != nil {
				return nil, fmt.Errorf("decoding related research of analysis %s: %w", a.ID, err)
			}
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveConversation appends one conversation turn.
func (s *SQLiteStore) SaveConversation(ctx context.Context, m types.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		m.SessionID, m.Role, m.Content, m.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting conversation: %w", err)
	}
	return nil
}

// Conversation returns the turns of sessionID in the order they were saved.
func (s *SQLiteStore) Conversation(ctx context.Context, sessionID string) ([]types.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, role, content, created_at FROM conversation
		WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	defer rows.Close()

	var out []types.Message
	for rows.Next() {
		var (
			m         types.Message
			createdAt string
		)
		if err := rows.Scan(&m.SessionID, &m.Role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Stats returns the row counts of the memory tables.
func (s *SQLiteStore) Stats(ctx context.Context) (types.Stats, error) {
	var st types.Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT count(*) FROM research),
			(SELECT count(*) FROM agent_memory),
			(SELECT count(*) FROM conversation),
			(SELECT count(*) FROM agent_activity)`,
	).Scan(&st.TotalResearch, &st.TotalMemories, &st.TotalMessages, &st.TotalActivities)
	if err != nil {
		return types.Stats{}, fmt.Errorf("counting rows: %w", err)
	}
	return st, nil
}
