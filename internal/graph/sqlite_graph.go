package graph

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/classify"
	_ "modernc.org/sqlite"
)

// RecordDecoder turns a stored mob record back into a mob.
type RecordDecoder func(record []byte) (*avb.Mob, error)

// SQLiteGraph implements Graph by querying a bin snapshot directly.
// No ingestion step: mob rows are decoded on first lookup and kept in the
// caller's RecordCache.
//
// Snapshot tables: mobs(id, name, mob_type, usage_code, record) and
// mob_refs(mob_id, target_id).
type SQLiteGraph struct {
	db     *sql.DB
	dbPath string
	decode RecordDecoder
	cache  *RecordCache
}

// OpenSQLiteGraph opens a snapshot read-only. cache may be nil.
func OpenSQLiteGraph(dbPath string, decode RecordDecoder, cache *RecordCache) (*SQLiteGraph, error) {
	db, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// One connection, kept for the graph's lifetime: the graph keeps reading
	// the file it opened even after a rebuild replaces the path.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)

	var n int
	if err := db.QueryRow("SELECT count(*) FROM mobs").Scan(&n); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite %s: not a bin snapshot: %w", dbPath, err)
	}
	if cache == nil {
		cache = NewRecordCache(0)
	}
	return &SQLiteGraph{db: db, dbPath: dbPath, decode: decode, cache: cache}, nil
}

func (g *SQLiteGraph) FindByID(id avb.MobID) (*avb.Mob, error) {
	if m, ok := g.cache.Get(id); ok {
		return m, nil
	}
	var record []byte
	err := g.db.QueryRow("SELECT record FROM mobs WHERE id = ?", string(id)).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query mob %s: %w", id, err)
	}
	m, err := g.decode(record)
	if err != nil {
		return nil, fmt.Errorf("decode mob %s: %w", id, err)
	}
	g.cache.Put(id, m)
	return m, nil
}

func (g *SQLiteGraph) Mobs() ([]avb.MobID, error) {
	return g.queryIDs("SELECT id FROM mobs ORDER BY rowid")
}

func (g *SQLiteGraph) Referrers(id avb.MobID) ([]avb.MobID, error) {
	return g.queryIDs("SELECT mob_id FROM mob_refs WHERE target_id = ? ORDER BY rowid", string(id))
}

// ByRole implements RoleIndex from the stored type and usage codes, so
// records of other roles are never decoded.
func (g *SQLiteGraph) ByRole(role classify.Role) ([]avb.MobID, error) {
	rows, err := g.db.Query("SELECT id, mob_type, usage_code FROM mobs ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", g.dbPath, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []avb.MobID
	for rows.Next() {
		var (
			id      string
			mobType int
			usage   int
		)
		if err := rows.Scan(&id, &mobType, &usage); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if r, err := classify.RoleOf(classify.MobType(mobType), classify.MobUsage(usage)); err == nil && r == role {
			ids = append(ids, avb.MobID(id))
		}
	}
	return ids, rows.Err()
}

func (g *SQLiteGraph) queryIDs(query string, args ...any) ([]avb.MobID, error) {
	rows, err := g.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", g.dbPath, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []avb.MobID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		ids = append(ids, avb.MobID(id))
	}
	return ids, rows.Err()
}

// Meta reads a key from the snapshot's bin table.
func (g *SQLiteGraph) Meta(key string) (string, bool, error) {
	var v string
	err := g.db.QueryRow("SELECT value FROM bin WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query bin %s: %w", key, err)
	}
	return v, true, nil
}

// DB exposes the snapshot connection for readers of the other tables.
func (g *SQLiteGraph) DB() *sql.DB { return g.db }

func (g *SQLiteGraph) Close() error {
	return g.db.Close()
}
