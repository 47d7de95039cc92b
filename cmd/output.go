package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/bin"
	"github.com/agentic-research/avbmatch/internal/sourceref"
	"github.com/agentic-research/avbmatch/internal/timecode"
	"github.com/agentic-research/avbmatch/internal/timeline"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
}

// findMob looks a mob up by id, falling back to the first visible mob
// with that exact name.
func findMob(b *bin.Bin, ref string) (*avb.Mob, error) {
	m, err := b.FindByID(avb.MobID(ref))
	if err == nil {
		return m, nil
	}
	for _, it := range b.Items {
		if it.Mob != nil && it.Mob.Name == ref {
			return it.Mob, nil
		}
	}
	return nil, fmt.Errorf("mob %q: %w", ref, err)
}

// selectTrack picks a track by label, or the primary track.
func selectTrack(m *avb.Mob, label string) (*avb.Track, error) {
	if label == "" {
		return timeline.PrimaryTrack(m)
	}
	t, ok := timeline.TrackByLabel(m, label)
	if !ok {
		return nil, fmt.Errorf("%s has no track %s (has %s)", m.Name, label, timeline.TrackLabels(m.Tracks))
	}
	return t, nil
}

// offsetOption reads --offset as frames ("120") or timecode ("00:00:05:00")
// counted at the track's rate.
func offsetOption(s string, t *avb.Track) (sourceref.Option, error) {
	if !strings.ContainsAny(s, ":;") {
		tc, err := timecode.Parse(s, 1)
		if err != nil {
			return nil, fmt.Errorf("offset: %w", err)
		}
		return sourceref.WithOffset(tc.Frame), nil
	}
	tc, err := timecode.Parse(s, t.EditRate().Nominal())
	if err != nil {
		return nil, fmt.Errorf("offset: %w", err)
	}
	return sourceref.WithTimecodeOffset(tc), nil
}
