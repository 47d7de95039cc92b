package report

import (
	"context"
	"log/slog"
	"slices"

	"github.com/agentic-research/avbmatch/internal/bin"
	"github.com/agentic-research/avbmatch/internal/timecode"
	"golang.org/x/sync/errgroup"
)

// Opener opens the bin at path.
type Opener func(path string) (*bin.Bin, error)

// Options controls a TRT report.
type Options struct {
	Leaders Leaders
	SortBy  bin.Sorting
	// Adjust is added to the total running time (end credits and the like).
	Adjust           string
	IncludeReference bool
	// Workers bounds how many bins are read at once. Zero means 4.
	Workers int
}

// Reel is the latest sequence found in one bin.
type Reel struct {
	Path string
	Info ReelInfo
}

// Skipped is a bin that produced no reel.
type Skipped struct {
	Path string
	Err  error
}

// TRT is a total running time report over a set of reel bins.
type TRT struct {
	Reels   []Reel
	Skipped []Skipped
	Adjust  timecode.Timecode
}

// Total is the sum of every reel's adjusted duration plus the adjustment,
// counted at the rate of the first reel and never negative.
func (t *TRT) Total() timecode.Timecode {
	if len(t.Reels) == 0 {
		return timecode.New(max(t.Adjust.Frame, 0), t.Adjust.Rate)
	}
	rate := t.Reels[0].Info.Total.Rate
	var frames int64
	for _, r := range t.Reels {
		frames += r.Info.DurationAdjusted().Resample(rate).Frame
	}
	frames += t.Adjust.Resample(rate).Frame
	return timecode.New(max(frames, 0), rate)
}

// BuildTRT reads the latest sequence of every bin in parallel. Bins that
// cannot be read are logged and listed as skipped; reels come back sorted
// by sequence name.
func BuildTRT(ctx context.Context, paths []string, open Opener, opts Options) (*TRT, error) {
	if opts.SortBy == 0 {
		opts.SortBy = bin.ByName
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	reels := make([]*Reel, len(paths))
	errs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reel, err := readReel(path, open, opts)
			if err != nil {
				errs[i] = err
				return nil
			}
			reels[i] = reel
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &TRT{}
	for i, path := range paths {
		if errs[i] != nil {
			slog.Warn("Skipping bin", "path", path, "error", errs[i])
			report.Skipped = append(report.Skipped, Skipped{Path: path, Err: errs[i]})
			continue
		}
		report.Reels = append(report.Reels, *reels[i])
	}
	slices.SortStableFunc(report.Reels, func(a, b Reel) int {
		return bin.HumanCompare(a.Info.Name, b.Info.Name)
	})

	if opts.Adjust != "" {
		rate := int64(24)
		if len(report.Reels) > 0 {
			rate = report.Reels[0].Info.Total.Rate
		}
		adjust, err := timecode.Parse(opts.Adjust, rate)
		if err != nil {
			return nil, err
		}
		report.Adjust = adjust
	}
	return report, nil
}

func readReel(path string, open Opener, opts Options) (*Reel, error) {
	b, err := open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()

	seq, err := LatestTimeline(b, opts.SortBy, opts.IncludeReference)
	if err != nil {
		return nil, err
	}
	info, err := ReelInfoOf(seq, opts.Leaders)
	if err != nil {
		return nil, err
	}
	return &Reel{Path: path, Info: info}, nil
}
