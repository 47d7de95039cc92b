package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/avbmatch/internal/bin"
	"github.com/ohler55/ojg/oj"
)

var ErrUnsupportedFormat = errors.New("unsupported bin format")

// Open opens a bin by extension: .json exports load into memory, .db
// snapshots are read lazily.
func Open(path string, opts Options) (*bin.Bin, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadExport(path, opts)
	case ".db", ".sqlite":
		return LoadSnapshot(path, opts)
	case ".avb":
		return nil, fmt.Errorf("%w: %s: export the bin to JSON first", ErrUnsupportedFormat, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Build snapshots a JSON export into a fresh SQLite database at dbPath.
// Every mob is decoded first, so a snapshot never holds a malformed record.
func Build(jsonPath, dbPath string, opts Options) (err error) {
	e, err := ReadExport(jsonPath, opts)
	if err != nil {
		return err
	}
	if err := os.Remove(dbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	w, err := NewSQLiteWriter(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	for key, value := range map[string]string{"name": e.Name, "version": e.Version, "display_mode": e.DisplayMode} {
		if err := w.SetMeta(key, value); err != nil {
			return err
		}
	}
	placed := make([]ItemRecord, 0, len(e.Mobs))
	for _, raw := range e.Mobs {
		m, err := DecodeMob(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", jsonPath, err)
		}
		if err := w.AddMob(m, []byte(oj.JSON(raw))); err != nil {
			return err
		}
		placed = append(placed, ItemRecord{MobID: m.ID, UserPlaced: true})
	}
	if len(e.Items) == 0 {
		for _, r := range placed {
			if err := w.AddItem(r); err != nil {
				return err
			}
		}
	}
	for _, raw := range e.Items {
		r, err := parseItem(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", jsonPath, err)
		}
		if err := w.AddItem(r); err != nil {
			return err
		}
	}
	slog.Info("Built bin snapshot", "bin", e.Name, "path", dbPath, "mobs", len(e.Mobs), "items", len(e.Items))
	return nil
}
