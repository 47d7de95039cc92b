package sourceref

import (
	"errors"
	"fmt"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/timecode"
)

// DefaultMaxHops bounds a chain. Well-formed bins stay under ten hops.
const DefaultMaxHops = 256

var ErrMatchbackTooDeep = errors.New("matchback too deep")

// Reference is one link of a source reference chain: a clip, the mob and
// track it points at, and the offset into the clip.
type Reference struct {
	Clip   *avb.SourceClip
	Mob    *avb.Mob
	Track  *avb.Track
	Offset timecode.Timecode
}

// TargetOffset is the position inside the referenced track.
func (r Reference) TargetOffset() timecode.Timecode {
	return r.Offset.Add(r.Clip.StartTime)
}

// StopReason records why a chain ended. Ending is not an error.
type StopReason int

const (
	StopNone StopReason = iota
	// StopLeaf: the leaf is some other non-clip component.
	StopLeaf
	StopFiller
	StopNullReference
	StopMissingMob
	StopMissingTrack
	StopAmbiguous
	// StopError: Err() is set.
	StopError
)

func (s StopReason) String() string {
	switch s {
	case StopNone:
		return "running"
	case StopLeaf:
		return "leaf"
	case StopFiller:
		return "filler"
	case StopNullReference:
		return "null reference"
	case StopMissingMob:
		return "missing mob"
	case StopMissingTrack:
		return "missing track"
	case StopAmbiguous:
		return "ambiguous wrapper"
	case StopError:
		return "error"
	}
	return fmt.Sprintf("StopReason(%d)", int(s))
}

type options struct {
	offset    timecode.Timecode
	hasOffset bool
	maxHops   int
}

// Option configures References.
type Option func(*options)

// WithOffset starts resolution frames into the component, counted at the
// component's own rate.
func WithOffset(frames int64) Option {
	return func(o *options) {
		o.offset = timecode.New(frames, 0)
		o.hasOffset = true
	}
}

// WithTimecodeOffset starts resolution at tc, resampled as needed.
func WithTimecodeOffset(tc timecode.Timecode) Option {
	return func(o *options) {
		o.offset = tc
		o.hasOffset = true
	}
}

// WithMaxHops overrides DefaultMaxHops. Values below one are ignored.
func WithMaxHops(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxHops = n
		}
	}
}

// Chain walks a source reference chain lazily. Use it like sql.Rows:
//
//	chain := sourceref.References(bin, track)
//	for chain.Next() {
//		ref := chain.Reference()
//	}
//	if err := chain.Err(); err != nil { ... }
//
// A chain cannot be restarted; call References again.
type Chain struct {
	table   avb.MobTable
	cur     Resolution
	ref     Reference
	pending bool
	hops    int
	maxHops int
	keep    func(Reference) (bool, error)
	stop    StopReason
	err     error
}

// References starts the chain of source references under c.
func References(table avb.MobTable, c avb.Component, opts ...Option) *Chain {
	o := options{maxHops: DefaultMaxHops}
	for _, opt := range opts {
		opt(&o)
	}
	offset := o.offset
	if !o.hasOffset || offset.Rate <= 0 {
		offset = timecode.New(offset.Frame, c.EditRate().Nominal())
	}
	return &Chain{
		table:   table,
		cur:     ResolveBaseComponent(c, offset),
		maxHops: o.maxHops,
	}
}

// Next advances to the next reference, reporting false when the chain ends.
func (c *Chain) Next() bool {
	for c.advance() {
		if c.keep == nil {
			return true
		}
		ok, err := c.keep(c.ref)
		if err != nil {
			c.fail(err)
			return false
		}
		if ok {
			return true
		}
	}
	return false
}

func (c *Chain) advance() bool {
	if c.stop != StopNone {
		return false
	}
	if c.pending {
		c.pending = false
		c.cur = ResolveBaseComponent(c.ref.Track, c.ref.TargetOffset())
	}

	clip, ok := c.cur.Leaf.(*avb.SourceClip)
	if !ok {
		switch {
		case c.cur.Ambiguous:
			c.stop = StopAmbiguous
		case isFiller(c.cur.Leaf):
			c.stop = StopFiller
		default:
			c.stop = StopLeaf
		}
		return false
	}
	if clip.IsNullReference() {
		c.stop = StopNullReference
		return false
	}

	mob, err := c.table.FindByID(clip.MobID)
	if errors.Is(err, avb.ErrMobNotFound) || (err == nil && mob == nil) {
		c.stop = StopMissingMob
		return false
	}
	if err != nil {
		c.fail(fmt.Errorf("find mob %s: %w", clip.MobID, err))
		return false
	}
	track, ok := mob.Track(clip.Kind, clip.TrackID)
	if !ok {
		c.stop = StopMissingTrack
		return false
	}

	c.hops++
	if c.hops > c.maxHops {
		c.fail(fmt.Errorf("%w: more than %d hops at %q", ErrMatchbackTooDeep, c.maxHops, mob.Name))
		return false
	}

	c.ref = Reference{Clip: clip, Mob: mob, Track: track, Offset: c.cur.Offset}
	c.pending = true
	return true
}

func (c *Chain) fail(err error) {
	c.err = err
	c.stop = StopError
}

func isFiller(comp avb.Component) bool {
	_, ok := comp.(*avb.Filler)
	return ok
}

// Reference returns the current link.
func (c *Chain) Reference() Reference { return c.ref }

// Err returns the error that ended the chain, if any.
func (c *Chain) Err() error { return c.err }

// Stop reports why the chain ended, or StopNone while it is still running.
func (c *Chain) Stop() StopReason { return c.stop }

// Hops is the number of references followed so far.
func (c *Chain) Hops() int { return c.hops }

// Collect drains a chain.
func Collect(c *Chain) ([]Reference, error) {
	var refs []Reference
	for c.Next() {
		refs = append(refs, c.Reference())
	}
	return refs, c.Err()
}

// First returns the first reference of a chain, if any.
func First(c *Chain) (Reference, bool, error) {
	if c.Next() {
		return c.Reference(), true, nil
	}
	return Reference{}, false, c.Err()
}

// FileReferences yields only references whose target is file essence.
func FileReferences(table avb.MobTable, c avb.Component, opts ...Option) *Chain {
	chain := References(table, c, opts...)
	chain.keep = func(r Reference) (bool, error) {
		role, ok, err := sourceRoleIfSourceMob(r.Mob)
		return ok && role == Essence, err
	}
	return chain
}

// PhysicalReferences yields only references whose target is a physical
// source: tape, film, soundroll or imported file.
func PhysicalReferences(table avb.MobTable, c avb.Component, opts ...Option) *Chain {
	chain := References(table, c, opts...)
	chain.keep = func(r Reference) (bool, error) {
		role, ok, err := sourceRoleIfSourceMob(r.Mob)
		return ok && role != Essence, err
	}
	return chain
}
