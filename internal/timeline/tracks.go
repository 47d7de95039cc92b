// Package timeline provides read-only accessors over a composition's tracks:
// filtering, display labels and the timecode track.
package timeline

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/timecode"
)

var (
	ErrNoTimecodeTrack      = errors.New("no timecode track")
	ErrTimecodeRateMismatch = errors.New("timecode rate does not match composition rate")
	ErrNoPrimaryTrack       = errors.New("no primary track")
)

// TrackFilter narrows TracksOf.
type TrackFilter func(*avb.Track) bool

// OfKind keeps tracks of one media kind.
func OfKind(kind avb.MediaKind) TrackFilter {
	return func(t *avb.Track) bool { return t.Kind == kind }
}

// AtIndex keeps tracks with the given index.
func AtIndex(index int) TrackFilter {
	return func(t *avb.Track) bool { return t.Index == index }
}

// TracksOf yields the tracks of g that pass every filter, in the
// composition's native order.
func TracksOf(g avb.Grouped, filters ...TrackFilter) iter.Seq[*avb.Track] {
	return func(yield func(*avb.Track) bool) {
		for _, t := range g.GroupTracks() {
			if !matches(t, filters) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// FirstTrack returns the first track of g passing every filter.
func FirstTrack(g avb.Grouped, filters ...TrackFilter) (*avb.Track, bool) {
	for t := range TracksOf(g, filters...) {
		return t, true
	}
	return nil, false
}

func matches(t *avb.Track, filters []TrackFilter) bool {
	for _, f := range filters {
		if !f(t) {
			return false
		}
	}
	return true
}

// PrimaryTrack is the foremost picture or sound track, used for source and
// codec info.
func PrimaryTrack(m *avb.Mob) (*avb.Track, error) {
	for _, t := range m.Tracks {
		if t.Kind == avb.MediaPicture || t.Kind == avb.MediaSound {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoPrimaryTrack, m.Name)
}

// KindLabel is the short label of a media kind.
func KindLabel(kind avb.MediaKind) string {
	switch kind {
	case avb.MediaPicture:
		return "V"
	case avb.MediaSound:
		return "A"
	case avb.MediaTimecode:
		return "TC"
	case avb.MediaEdgecode:
		return "EC"
	}
	return string(kind)
}

// TrackLabel formats a track as V1, A2, TC1 ...
func TrackLabel(t *avb.Track) string {
	label := KindLabel(t.Kind)
	if t.Index > 0 {
		label += strconv.Itoa(t.Index)
	}
	return label
}

var labelOrder = []avb.MediaKind{
	avb.MediaPicture, avb.MediaSound, avb.MediaData, avb.MediaTimecode, avb.MediaEdgecode,
}

// TrackLabels summarizes tracks grouped by kind with contiguous indices
// compressed into ranges: "V1-2 A1-3,5-7 TC1".
func TrackLabels(tracks []*avb.Track) string {
	byKind := make(map[avb.MediaKind][]int)
	order := slices.Clone(labelOrder)
	for _, t := range tracks {
		if _, ok := byKind[t.Kind]; !ok && !slices.Contains(order, t.Kind) {
			order = append(order, t.Kind)
		}
		byKind[t.Kind] = append(byKind[t.Kind], t.Index)
	}

	var groups []string
	for _, kind := range order {
		indices, ok := byKind[kind]
		if !ok {
			continue
		}
		groups = append(groups, KindLabel(kind)+formatRanges(indices))
	}
	return strings.Join(groups, " ")
}

func formatRanges(indices []int) string {
	indices = slices.Clone(indices)
	slices.Sort(indices)
	indices = slices.Compact(indices)

	var (
		parts  []string
		groups [][]int
	)
	for _, idx := range indices {
		if idx <= 0 {
			continue
		}
		if n := len(groups); n > 0 && groups[n-1][len(groups[n-1])-1]+1 == idx {
			groups[n-1] = append(groups[n-1], idx)
			continue
		}
		groups = append(groups, []int{idx})
	}
	for _, g := range groups {
		if len(g) == 1 {
			parts = append(parts, strconv.Itoa(g[0]))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", g[0], g[len(g)-1]))
		}
	}
	return strings.Join(parts, ",")
}

// TimecodeRangeOf reads the start timecode and duration of a composition
// from its TC1 track.
func TimecodeRangeOf(m *avb.Mob) (timecode.Range, error) {
	track, ok := FirstTrack(m, OfKind(avb.MediaTimecode), AtIndex(1))
	if !ok || track.Component == nil {
		return timecode.Range{}, fmt.Errorf("%w: %s", ErrNoTimecodeTrack, m.Name)
	}

	component := track.Component
	if seq, ok := component.(*avb.Sequence); ok {
		component, _, _ = seq.ComponentAt(0)
	}
	tc, ok := component.(*avb.Timecode)
	if !ok {
		return timecode.Range{}, fmt.Errorf("%w: %s: TC1 holds %T", ErrNoTimecodeTrack, m.Name, component)
	}

	rate := m.Rate.Nominal()
	if tc.Rate.Nominal() != rate {
		return timecode.Range{}, fmt.Errorf("%w: %s: timecode %s, composition %s",
			ErrTimecodeRateMismatch, m.Name, tc.Rate, m.Rate)
	}

	return timecode.Range{Start: timecode.New(tc.Start, rate), Duration: m.Len}, nil
}

// TrackByLabel finds a track by its label ("V1", "a2", "TC1"), ignoring case.
func TrackByLabel(g avb.Grouped, label string) (*avb.Track, bool) {
	for _, t := range g.GroupTracks() {
		if strings.EqualFold(TrackLabel(t), label) {
			return t, true
		}
	}
	return nil, false
}
