package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/bin"
	"github.com/agentic-research/avbmatch/internal/graph"
	"github.com/ohler55/ojg/oj"
)

const (
	DefaultMobSelector  = "$.mobs[*]"
	DefaultItemSelector = "$.items[*]"
)

// Options controls how bins are opened.
type Options struct {
	// MobSelector and ItemSelector pick records out of a JSON export.
	MobSelector  string
	ItemSelector string
	// Cache holds decoded mobs of snapshot bins. Nil disables caching.
	Cache *graph.RecordCache
}

func (o Options) withDefaults() Options {
	if o.MobSelector == "" {
		o.MobSelector = DefaultMobSelector
	}
	if o.ItemSelector == "" {
		o.ItemSelector = DefaultItemSelector
	}
	return o
}

// Export is a parsed bin export whose mobs have not been decoded yet.
type Export struct {
	Name        string
	Version     string
	DisplayMode string
	Mobs        []any
	Items       []any
}

// ParseExport parses a JSON bin export and selects its mob and item records.
func ParseExport(data []byte, opts Options) (*Export, error) {
	opts = opts.withDefaults()
	root, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse bin json: %w", err)
	}

	e := &Export{}
	if o, ok := root.(map[string]any); ok {
		e.Name = str(o, "name")
		e.Version = str(o, "version")
		e.DisplayMode = str(o, "display_mode")
	}

	walker := NewJsonWalker()
	if e.Mobs, err = walker.Query(root, opts.MobSelector); err != nil {
		return nil, err
	}
	if e.Items, err = walker.Query(root, opts.ItemSelector); err != nil {
		return nil, err
	}
	return e, nil
}

// ReadExport reads and parses a JSON export file. The bin is named after the
// file when the export carries no name.
func ReadExport(path string, opts Options) (*Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	e, err := ParseExport(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if e.Name == "" {
		e.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return e, nil
}

// Bin decodes every mob into an in-memory bin.
func (e *Export) Bin() (*bin.Bin, error) {
	mode, err := bin.ParseDisplayMode(e.DisplayMode)
	if err != nil {
		return nil, err
	}
	store := graph.NewMemoryStore()
	b := &bin.Bin{Name: e.Name, Version: e.Version, DisplayMode: mode, Mobs: store}

	for _, raw := range e.Mobs {
		m, err := DecodeMob(raw)
		if err != nil {
			return nil, err
		}
		store.AddMob(m)
	}

	if len(e.Items) == 0 {
		// Partial exports carry no item list; every mob counts as placed.
		ids, _ := store.Mobs()
		for _, id := range ids {
			m, _ := store.FindByID(id)
			b.Items = append(b.Items, avb.BinItem{Mob: m, UserPlaced: true})
		}
		return b, nil
	}
	for _, raw := range e.Items {
		it, err := decodeItem(raw, store)
		if err != nil {
			slog.Warn("Skipping bin item", "bin", e.Name, "error", err)
			continue
		}
		b.Items = append(b.Items, it)
	}
	return b, nil
}

// ItemRecord is a bin item as stored, before its mob is resolved.
type ItemRecord struct {
	MobID      avb.MobID
	UserPlaced bool
	X, Y       int
	Keyframe   int64
}

func parseItem(v any) (ItemRecord, error) {
	o, err := object(v, "item")
	if err != nil {
		return ItemRecord{}, err
	}
	r := ItemRecord{MobID: avb.MobID(str(o, "mob_id"))}
	r.UserPlaced, _ = o["user_placed"].(bool)
	x, err := integer(o, "x")
	if err != nil {
		return ItemRecord{}, err
	}
	y, err := integer(o, "y")
	if err != nil {
		return ItemRecord{}, err
	}
	if r.Keyframe, err = integer(o, "keyframe"); err != nil {
		return ItemRecord{}, err
	}
	r.X, r.Y = int(x), int(y)
	return r, nil
}

// Resolve looks the item's mob up in table.
func (r ItemRecord) Resolve(table avb.MobTable) (avb.BinItem, error) {
	m, err := table.FindByID(r.MobID)
	if err != nil {
		return avb.BinItem{}, fmt.Errorf("item %s: %w", r.MobID, err)
	}
	return avb.BinItem{Mob: m, UserPlaced: r.UserPlaced, X: r.X, Y: r.Y, Keyframe: r.Keyframe}, nil
}

func decodeItem(v any, table avb.MobTable) (avb.BinItem, error) {
	r, err := parseItem(v)
	if err != nil {
		return avb.BinItem{}, err
	}
	return r.Resolve(table)
}

// LoadExport opens a JSON export as an in-memory bin.
func LoadExport(path string, opts Options) (*bin.Bin, error) {
	e, err := ReadExport(path, opts)
	if err != nil {
		return nil, err
	}
	b, err := e.Bin()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("Loaded bin export", "path", path, "mobs", len(e.Mobs), "items", len(b.Items))
	return b, nil
}
