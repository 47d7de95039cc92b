// Package matchback answers "what is this clip, really?" with a single mob
// or clip, walking the same structure as sourceref one node at a time.
package matchback

import (
	"errors"
	"fmt"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/classify"
	"github.com/agentic-research/avbmatch/internal/sourceref"
	"github.com/agentic-research/avbmatch/internal/timeline"
)

// ErrSequenceShape is returned when a sequence holds more than one piece of
// content between its bracketing fillers.
var ErrSequenceShape = errors.New("sequence is not a single bracketed component")

type options struct {
	kind    avb.MediaKind
	maxHops int
}

type Option func(*options)

// WithMediaKind picks which track of a mob or track group to follow.
// Defaults to picture.
func WithMediaKind(kind avb.MediaKind) Option {
	return func(o *options) { o.kind = kind }
}

// WithMaxHops bounds the number of mob dereferences.
func WithMaxHops(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxHops = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{kind: avb.MediaPicture, maxHops: sourceref.DefaultMaxHops}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Step applies one matchback rule to c. ok is false when no rule applies,
// which ends a walk without error.
func Step(table avb.MobTable, c avb.Component, opts ...Option) (next avb.Component, ok bool, err error) {
	return step(table, c, newOptions(opts))
}

func step(table avb.MobTable, c avb.Component, o options) (avb.Component, bool, error) {
	switch v := c.(type) {
	case *avb.Mob:
		t, ok := timeline.FirstTrack(v, timeline.OfKind(o.kind))
		if !ok {
			return nil, false, nil
		}
		return t, true, nil

	case *avb.Selector:
		t, ok := v.SelectedTrack()
		if !ok {
			return nil, false, nil
		}
		return t, true, nil

	case *avb.TrackGroup:
		return singleTrack(v, o.kind)
	case *avb.TrackEffect:
		return singleTrack(v, o.kind)
	case *avb.EssenceGroup:
		return singleTrack(v, o.kind)

	case *avb.Track:
		if v.Component == nil {
			return nil, false, nil
		}
		return v.Component, true, nil

	case *avb.SourceClip:
		if v.IsNullReference() {
			return nil, false, nil
		}
		m, err := table.FindByID(v.MobID)
		if errors.Is(err, avb.ErrMobNotFound) || (err == nil && m == nil) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("find mob %s: %w", v.MobID, err)
		}
		return m, true, nil

	case *avb.Sequence:
		if len(v.Components) != 3 {
			return nil, false, fmt.Errorf("%w: %d components", ErrSequenceShape, len(v.Components))
		}
		return v.Components[1], true, nil
	}
	return nil, false, nil
}

func singleTrack(g avb.Grouped, kind avb.MediaKind) (avb.Component, bool, error) {
	var found *avb.Track
	for t := range timeline.TracksOf(g, timeline.OfKind(kind)) {
		if found != nil {
			return nil, false, nil
		}
		found = t
	}
	if found == nil {
		return nil, false, nil
	}
	return found, true, nil
}

// walk steps from c until done reports true or no rule applies, and returns
// the last node reached.
func walk(table avb.MobTable, c avb.Component, o options, done func(avb.Component) bool) (avb.Component, error) {
	hops := 0
	for !done(c) {
		next, ok, err := step(table, c, o)
		if err != nil {
			return c, err
		}
		if !ok {
			return c, nil
		}
		if m, isMob := next.(*avb.Mob); isMob {
			hops++
			if hops > o.maxHops {
				return c, fmt.Errorf("%w: more than %d hops at %q", sourceref.ErrMatchbackTooDeep, o.maxHops, m.Name)
			}
		}
		c = next
	}
	return c, nil
}

func isMasterClip(c avb.Component) bool {
	m, ok := c.(*avb.Mob)
	return ok && classify.Is(m, classify.RoleMasterClip)
}

// ToMasterClip walks c back to its master clip. When the walk ends early
// the last node reached is returned instead; callers must check.
func ToMasterClip(table avb.MobTable, c avb.Component, opts ...Option) (avb.Component, error) {
	return walk(table, c, newOptions(opts), isMasterClip)
}

// ToSourceMob walks c as far as it goes and returns the last source mob
// passed on the way, or nil if there was none.
func ToSourceMob(table avb.MobTable, c avb.Component, opts ...Option) (*avb.Mob, error) {
	var last *avb.Mob
	_, err := walk(table, c, newOptions(opts), func(c avb.Component) bool {
		if m, ok := c.(*avb.Mob); ok && classify.Is(m, classify.RoleSourceMob) {
			last = m
		}
		return false
	})
	return last, err
}

// ToSourceClip walks c until it reaches a source clip. c itself counts.
func ToSourceClip(table avb.MobTable, c avb.Component, opts ...Option) (*avb.SourceClip, bool, error) {
	end, err := walk(table, c, newOptions(opts), func(c avb.Component) bool {
		_, ok := c.(*avb.SourceClip)
		return ok
	})
	if err != nil {
		return nil, false, err
	}
	clip, ok := end.(*avb.SourceClip)
	return clip, ok, nil
}
