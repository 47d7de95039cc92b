package report

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/bin"
	"github.com/agentic-research/avbmatch/internal/classify"
	"github.com/agentic-research/avbmatch/internal/matchback"
	"github.com/agentic-research/avbmatch/internal/timecode"
	"github.com/agentic-research/avbmatch/internal/timeline"
)

var ErrNoContinuityTrack = errors.New("no continuity track")

// ContinuityEntry is one scene in a continuity list.
type ContinuityEntry struct {
	Name     string            `json:"name"`
	Duration timecode.Timecode `json:"duration"`
	Comments string            `json:"comments"`
}

// ContinuitySheet is the continuity list of one sequence.
type ContinuitySheet struct {
	Sequence string            `json:"sequence"`
	Entries  []ContinuityEntry `json:"entries"`
}

// IsContinuitySequence reports whether a sequence holds a continuity list:
// its name ends in "continuity", in any case.
func IsContinuitySequence(m *avb.Mob) bool {
	return strings.HasSuffix(strings.ToLower(m.Name), "continuity")
}

// ContinuityTrack is the highest-index picture track of a sequence.
func ContinuityTrack(seq *avb.Mob) (*avb.Track, error) {
	var best *avb.Track
	for t := range timeline.TracksOf(seq, timeline.OfKind(avb.MediaPicture)) {
		if best == nil || t.Index > best.Index {
			best = t
		}
	}
	if best == nil || best.Component == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoContinuityTrack, seq.Name)
	}
	return best, nil
}

// Continuity lists the clips cut into a continuity sequence's top picture
// track, each matched back to its master clip. Clips that do not lead to a
// master clip are skipped.
func Continuity(table avb.MobTable, seq *avb.Mob, opts ...matchback.Option) (ContinuitySheet, error) {
	sheet := ContinuitySheet{Sequence: seq.Name}
	track, err := ContinuityTrack(seq)
	if err != nil {
		return sheet, err
	}

	components := []avb.Component{track.Component}
	if s, ok := track.Component.(*avb.Sequence); ok {
		components = innerComponents(s)
	}

	rate := seq.Rate.Nominal()
	for _, c := range components {
		if _, ok := c.(*avb.SourceClip); !ok {
			continue
		}
		end, err := matchback.ToMasterClip(table, c, opts...)
		if err != nil {
			return sheet, err
		}
		mc, ok := end.(*avb.Mob)
		if !ok || !classify.IsMasterClip(mc) {
			slog.Debug("Skipping continuity clip", "sequence", seq.Name, "reached", fmt.Sprintf("%T", end))
			continue
		}
		comments, ok := mc.Attrs.User().String("Comments")
		if !ok {
			comments = "-"
		}
		sheet.Entries = append(sheet.Entries, ContinuityEntry{
			Name:     mc.Name,
			Duration: timecode.New(c.Length(), rate),
			Comments: comments,
		})
	}
	return sheet, nil
}

// innerComponents drops the filler that brackets every sequence.
func innerComponents(s *avb.Sequence) []avb.Component {
	if len(s.Components) < 2 {
		return s.Components
	}
	return s.Components[1 : len(s.Components)-1]
}

// ContinuityForBin builds a sheet for every continuity sequence in a bin,
// in name order. Sequences that fail are logged and skipped.
func ContinuityForBin(b *bin.Bin, includeReference bool, opts ...matchback.Option) []ContinuitySheet {
	seqs := b.Filter(includeReference, func(m *avb.Mob) bool {
		return classify.IsTimeline(m) && IsContinuitySequence(m)
	})
	slices.SortStableFunc(seqs, func(x, y *avb.Mob) int { return bin.HumanCompare(x.Name, y.Name) })

	var sheets []ContinuitySheet
	for _, seq := range seqs {
		sheet, err := Continuity(b, seq, opts...)
		if err != nil {
			slog.Warn("Skipping "+seq.Name, "error", err)
			continue
		}
		sheets = append(sheets, sheet)
	}
	return sheets
}
