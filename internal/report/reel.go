// Package report builds the reel summaries editors ask for: running times
// with leaders removed, LFOA footage, and continuity lists.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/bin"
	"github.com/agentic-research/avbmatch/internal/timecode"
)

var ErrNoTimelines = errors.New("no sequences found in bin")

const (
	DefaultHeadLeader = "8:00"
	DefaultTailLeader = "3:23"

	// ReelNumberColumn is the bin column holding the reel number.
	ReelNumberColumn = "Reel #"

	framesPerFoot = 16
)

// Leaders are the head and tail slate durations removed from a reel's
// running time, as timecode strings.
type Leaders struct {
	Head string
	Tail string
}

func (l Leaders) withDefaults() Leaders {
	if l.Head == "" {
		l.Head = DefaultHeadLeader
	}
	if l.Tail == "" {
		l.Tail = DefaultTailLeader
	}
	return l
}

// ReelInfo summarizes one reel's sequence.
type ReelInfo struct {
	Name       string
	ReelNumber string
	Modified   time.Time
	Total      timecode.Timecode
	Head       timecode.Timecode
	Tail       timecode.Timecode
}

// ReelInfoOf reads a sequence's running time. Leaders are counted at the
// sequence's nominal rate.
func ReelInfoOf(seq *avb.Mob, leaders Leaders) (ReelInfo, error) {
	leaders = leaders.withDefaults()
	rate := seq.Rate.Nominal()
	head, err := timecode.Parse(leaders.Head, rate)
	if err != nil {
		return ReelInfo{}, fmt.Errorf("head leader: %w", err)
	}
	tail, err := timecode.Parse(leaders.Tail, rate)
	if err != nil {
		return ReelInfo{}, fmt.Errorf("tail leader: %w", err)
	}
	info := ReelInfo{
		Name:     seq.Name,
		Modified: seq.LastModified,
		Total:    timecode.New(seq.Len, rate),
		Head:     head,
		Tail:     tail,
	}
	info.ReelNumber, _ = seq.Attrs.User().String(ReelNumberColumn)
	return info, nil
}

// DurationAdjusted is the running time of active picture, without leaders.
func (r ReelInfo) DurationAdjusted() timecode.Timecode {
	return timecode.New(max(r.Total.Frame-r.Head.Frame-r.Tail.Frame, 0), r.Total.Rate)
}

// LFOA is the last frame of action in 35mm 4-perf footage, "feet+frames".
func (r ReelInfo) LFOA() string {
	frame := max(r.Total.Frame-r.Tail.Frame-1, 0)
	return fmt.Sprintf("%d+%02d", frame/framesPerFoot, frame%framesPerFoot)
}

// LatestTimeline picks the most current sequence in a bin: the first one
// when timelines are sorted by the given column, descending.
func LatestTimeline(b *bin.Bin, by bin.Sorting, includeReference bool) (*avb.Mob, error) {
	timelines := b.Timelines(includeReference)
	if len(timelines) == 0 {
		return nil, ErrNoTimelines
	}
	bin.Sort(timelines, by, true)
	return timelines[0], nil
}
