package ingest

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/graph"
	_ "modernc.org/sqlite"
)

// SQLiteWriter writes a bin snapshot: bin metadata, one row per mob with
// its raw record, the bin items, and one mob_refs row per outgoing edge.
type SQLiteWriter struct {
	db        *sql.DB
	tx        *sql.Tx
	stmtMob   *sql.Stmt
	stmtRef   *sql.Stmt
	stmtItem  *sql.Stmt
	batchSize int
	count     int
	position  int
	mu        sync.Mutex
}

// NewSQLiteWriter creates a new writer and initializes the schema.
func NewSQLiteWriter(dbPath string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Performance tuning for bulk insert
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS bin (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	CREATE TABLE IF NOT EXISTS mobs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		mob_type INTEGER NOT NULL,
		usage_code INTEGER NOT NULL,
		record JSON NOT NULL
	);
	CREATE TABLE IF NOT EXISTS items (
		position INTEGER PRIMARY KEY,
		mob_id TEXT NOT NULL,
		user_placed INTEGER NOT NULL,
		x INTEGER DEFAULT 0,
		y INTEGER DEFAULT 0,
		keyframe INTEGER DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS mob_refs (
		mob_id TEXT,
		target_id TEXT,
		PRIMARY KEY (mob_id, target_id)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &SQLiteWriter{
		db:        db,
		batchSize: 10000,
	}

	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return w, nil
}

func (w *SQLiteWriter) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return err
	}
	w.stmtMob, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO mobs (id, name, mob_type, usage_code, record)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	w.stmtRef, err = w.tx.Prepare(`INSERT OR IGNORE INTO mob_refs (mob_id, target_id) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	w.stmtItem, err = w.tx.Prepare(`
		INSERT INTO items (position, mob_id, user_placed, x, y, keyframe)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	return err
}

func (w *SQLiteWriter) commitTx() error {
	for _, stmt := range []*sql.Stmt{w.stmtMob, w.stmtRef, w.stmtItem} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	return w.tx.Commit()
}

// rollover commits every batchSize rows. Must be called with w.mu held.
func (w *SQLiteWriter) rollover() error {
	w.count++
	if w.count < w.batchSize {
		return nil
	}
	w.count = 0
	if err := w.commitTx(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return w.beginTx()
}

// SetMeta records a bin-level value (name, version, display_mode).
func (w *SQLiteWriter) SetMeta(key, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.tx.Exec("INSERT OR REPLACE INTO bin (key, value) VALUES (?, ?)", key, value)
	return err
}

// AddMob writes m with its raw export record.
func (w *SQLiteWriter) AddMob(m *avb.Mob, record []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.stmtMob.Exec(string(m.ID), m.Name, m.MobTypeID, m.UsageCode, string(record)); err != nil {
		return fmt.Errorf("insert mob %s: %w", m.ID, err)
	}
	for _, target := range graph.Targets(m) {
		if _, err := w.stmtRef.Exec(string(m.ID), string(target)); err != nil {
			return fmt.Errorf("insert ref %s -> %s: %w", m.ID, target, err)
		}
	}
	return w.rollover()
}

// AddItem appends a bin item. Items keep the order they are added in.
func (w *SQLiteWriter) AddItem(r ItemRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	placed := 0
	if r.UserPlaced {
		placed = 1
	}
	if _, err := w.stmtItem.Exec(w.position, string(r.MobID), placed, r.X, r.Y, r.Keyframe); err != nil {
		return fmt.Errorf("insert item %s: %w", r.MobID, err)
	}
	w.position++
	return w.rollover()
}

func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.commitTx(); err != nil {
		_ = w.db.Close()
		return err
	}

	// Create indices after bulk load for speed
	if _, err := w.db.Exec(`CREATE INDEX IF NOT EXISTS idx_refs_target ON mob_refs(target_id)`); err != nil {
		_ = w.db.Close()
		return fmt.Errorf("create index: %w", err)
	}

	return w.db.Close()
}
