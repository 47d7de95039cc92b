// Package config loads avbmatch settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/agentic-research/avbmatch/internal/bin"
	"github.com/agentic-research/avbmatch/internal/graph"
	"github.com/agentic-research/avbmatch/internal/ingest"
	"github.com/agentic-research/avbmatch/internal/report"
	"github.com/agentic-research/avbmatch/internal/sourceref"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config holds every setting. Unset attributes keep their defaults.
//
//	max_hops              = 256
//	mob_selector          = "$.mobs[*]"
//	item_selector         = "$.items[*]"
//	head_leader           = "8:00"
//	tail_leader           = "3:23"
//	trt_adjust            = "0:00"
//	sort_by               = "name"
//	allow_reference_clips = false
//	workers               = 4
//	record_cache_size     = 1024
type Config struct {
	MaxHops             int    `hcl:"max_hops,optional"`
	MobSelector         string `hcl:"mob_selector,optional"`
	ItemSelector        string `hcl:"item_selector,optional"`
	HeadLeader          string `hcl:"head_leader,optional"`
	TailLeader          string `hcl:"tail_leader,optional"`
	TRTAdjust           string `hcl:"trt_adjust,optional"`
	SortBy              string `hcl:"sort_by,optional"`
	AllowReferenceClips bool   `hcl:"allow_reference_clips,optional"`
	Workers             int    `hcl:"workers,optional"`
	RecordCacheSize     int    `hcl:"record_cache_size,optional"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxHops:         sourceref.DefaultMaxHops,
		MobSelector:     ingest.DefaultMobSelector,
		ItemSelector:    ingest.DefaultItemSelector,
		HeadLeader:      report.DefaultHeadLeader,
		TailLeader:      report.DefaultTailLeader,
		SortBy:          bin.ByName.String(),
		Workers:         4,
		RecordCacheSize: 1024,
	}
}

// DefaultPath is ~/.agentic-research/avbmatch/avbmatch.hcl.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".agentic-research", "avbmatch", "avbmatch.hcl"), nil
}

// Load reads the config file at path over the defaults. When path is empty
// the default path is used, and a missing file there is not an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return Default(), nil
		}
	}

	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.MaxHops <= 0 {
		return fmt.Errorf("max_hops must be positive, got %d", c.MaxHops)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.RecordCacheSize < 0 {
		return fmt.Errorf("record_cache_size must not be negative, got %d", c.RecordCacheSize)
	}
	if _, err := bin.ParseSorting(c.SortBy); err != nil {
		return err
	}
	return nil
}

// Sorting is the parsed sort_by column.
func (c Config) Sorting() bin.Sorting {
	s, err := bin.ParseSorting(c.SortBy)
	if err != nil {
		return bin.ByName
	}
	return s
}

// IngestOptions returns the bin loader settings, with a fresh record cache.
func (c Config) IngestOptions() ingest.Options {
	return ingest.Options{
		MobSelector:  c.MobSelector,
		ItemSelector: c.ItemSelector,
		Cache:        graph.NewRecordCache(c.RecordCacheSize),
	}
}

// ReportOptions returns the TRT settings.
func (c Config) ReportOptions() report.Options {
	return report.Options{
		Leaders:          report.Leaders{Head: c.HeadLeader, Tail: c.TailLeader},
		SortBy:           c.Sorting(),
		Adjust:           c.TRTAdjust,
		IncludeReference: c.AllowReferenceClips,
		Workers:          c.Workers,
	}
}
