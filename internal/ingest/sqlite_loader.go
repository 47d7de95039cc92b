package ingest

import (
	"fmt"
	"log/slog"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/bin"
	"github.com/agentic-research/avbmatch/internal/graph"
)

// LoadSnapshot opens a SQLite bin snapshot. Mobs are decoded lazily; only
// the mobs placed as items are read up front.
func LoadSnapshot(dbPath string, opts Options) (*bin.Bin, error) {
	g, err := graph.OpenSQLiteGraph(dbPath, DecodeRecord, opts.Cache)
	if err != nil {
		return nil, err
	}
	b, err := loadSnapshot(g)
	if err != nil {
		_ = g.Close()
		return nil, fmt.Errorf("%s: %w", dbPath, err)
	}
	return b, nil
}

func loadSnapshot(g *graph.SQLiteGraph) (*bin.Bin, error) {
	b := &bin.Bin{Mobs: g}
	meta := map[string]*string{"name": &b.Name, "version": &b.Version}
	for key, dst := range meta {
		v, _, err := g.Meta(key)
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	mode, _, err := g.Meta("display_mode")
	if err != nil {
		return nil, err
	}
	if b.DisplayMode, err = bin.ParseDisplayMode(mode); err != nil {
		return nil, err
	}

	records, err := readItems(g)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		it, err := r.Resolve(g)
		if err != nil {
			slog.Warn("Skipping bin item", "bin", b.Name, "error", err)
			continue
		}
		b.Items = append(b.Items, it)
	}
	return b, nil
}

func readItems(g *graph.SQLiteGraph) ([]ItemRecord, error) {
	rows, err := g.DB().Query("SELECT mob_id, user_placed, x, y, keyframe FROM items ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var records []ItemRecord
	for rows.Next() {
		var (
			id     string
			placed int
			r      ItemRecord
		)
		if err := rows.Scan(&id, &placed, &r.X, &r.Y, &r.Keyframe); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.MobID = avb.MobID(id)
		r.UserPlaced = placed != 0
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}
