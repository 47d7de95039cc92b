// Package sourceref resolves a clip back to the source media it derives from.
//
// Resolution alternates between two steps: peeling structural wrapping off a
// component inside one mob (ResolveBaseComponent), and following a
// SourceClip's mob id to the matching track of the referenced mob. The
// resulting chain runs from the most derived clip to the root source mob.
package sourceref

import (
	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/timecode"
)

// Resolution is the leaf found under a component and the offset into it.
// Ambiguous is set when a wrapper offered several candidate tracks and no
// rule picks one; Leaf is then the wrapper itself.
type Resolution struct {
	Leaf      avb.Component
	Offset    timecode.Timecode
	Ambiguous bool
}

// normalize expresses offset at c's nominal rate.
func normalize(offset timecode.Timecode, c avb.Component) timecode.Timecode {
	rate := c.EditRate().Nominal()
	if rate <= 0 || rate == offset.Rate {
		return offset
	}
	if offset.Rate <= 0 {
		return timecode.New(offset.Frame, rate)
	}
	return offset.Resample(rate)
}

// ResolveBaseComponent strips sequences, single-track effects and essence
// groups, selectors and tracks from c, returning the first leaf at offset.
// It never follows a SourceClip to another mob.
func ResolveBaseComponent(c avb.Component, offset timecode.Timecode) Resolution {
	for {
		offset = normalize(offset, c)

		switch v := c.(type) {
		case *avb.Sequence:
			sub, start, ok := v.ComponentAt(offset.Frame)
			if !ok {
				return Resolution{Leaf: v, Offset: offset}
			}
			offset = offset.Sub(start)
			c = sub

		case *avb.TrackEffect:
			if len(v.Tracks) != 1 {
				return Resolution{Leaf: v, Offset: offset, Ambiguous: true}
			}
			c = v.Tracks[0]

		case *avb.EssenceGroup:
			if len(v.Tracks) != 1 {
				return Resolution{Leaf: v, Offset: offset, Ambiguous: true}
			}
			c = v.Tracks[0]

		case *avb.Selector:
			track, ok := v.SelectedTrack()
			if !ok {
				return Resolution{Leaf: v, Offset: offset, Ambiguous: true}
			}
			c = track

		case *avb.Track:
			if v.Component == nil {
				return Resolution{Leaf: v, Offset: offset}
			}
			c = v.Component

		case *avb.SourceClip, *avb.Filler, *avb.Timecode,
			*avb.TrackGroup, *avb.TransitionEffect, *avb.Mob:
			return Resolution{Leaf: v, Offset: offset}

		default:
			return Resolution{Leaf: c, Offset: offset}
		}
	}
}
