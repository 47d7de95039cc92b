package sourceref

import (
	"errors"
	"fmt"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/timecode"
	"github.com/agentic-research/avbmatch/internal/timeline"
)

var ErrNoPhysicalSource = errors.New("no physical source")

// Lineage summarizes where a composition's primary track comes from.
type Lineage struct {
	Essence  *avb.Mob
	Physical *avb.Mob
	Refs     []Reference
	Stop     StopReason
}

// LineageOf walks the primary track of m and picks out the first file
// essence and the first physical source along the chain.
func LineageOf(table avb.MobTable, m *avb.Mob, opts ...Option) (Lineage, error) {
	track, err := timeline.PrimaryTrack(m)
	if err != nil {
		return Lineage{}, err
	}
	chain := References(table, track, opts...)
	var l Lineage
	for chain.Next() {
		ref := chain.Reference()
		l.Refs = append(l.Refs, ref)

		role, ok, err := sourceRoleIfSourceMob(ref.Mob)
		if err != nil {
			return l, err
		}
		switch {
		case !ok:
		case role == Essence && l.Essence == nil:
			l.Essence = ref.Mob
		case role != Essence && l.Physical == nil:
			l.Physical = ref.Mob
		}
	}
	l.Stop = chain.Stop()
	return l, chain.Err()
}

// LinkType classifies the lineage's linkage.
func (l Lineage) LinkType() (LinkType, error) {
	if l.Essence == nil {
		return 0, fmt.Errorf("%w: no file essence in chain", ErrNotEssence)
	}
	return LinkTypeOf(l.Essence, l.Physical)
}

func firstPhysical(table avb.MobTable, m *avb.Mob, opts ...Option) (*avb.Mob, error) {
	track, err := timeline.PrimaryTrack(m)
	if err != nil {
		return nil, err
	}
	ref, ok, err := First(PhysicalReferences(table, track, opts...))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoPhysicalSource, m.Name)
	}
	return ref.Mob, nil
}

// PhysicalSourceName is the name of the first physical source (the tape or
// reel name) behind m's primary track.
func PhysicalSourceName(table avb.MobTable, m *avb.Mob, opts ...Option) (string, error) {
	src, err := firstPhysical(table, m, opts...)
	if err != nil {
		return "", err
	}
	return src.Name, nil
}

// PhysicalSourceType is the role of the first physical source behind m.
func PhysicalSourceType(table avb.MobTable, m *avb.Mob, opts ...Option) (SourceMobRole, error) {
	src, err := firstPhysical(table, m, opts...)
	if err != nil {
		return 0, err
	}
	return RoleOfSourceMob(src)
}

// HasPhysicalSource reports whether m's primary track reaches a physical source.
func HasPhysicalSource(table avb.MobTable, m *avb.Mob, opts ...Option) (bool, error) {
	_, err := firstPhysical(table, m, opts...)
	if errors.Is(err, ErrNoPhysicalSource) {
		return false, nil
	}
	return err == nil, err
}

// SourceTimecodeRange finds the source timecode of m: the first mob along
// its primary track's chain with a TC1 track supplies the start, and m's
// length the duration.
func SourceTimecodeRange(table avb.MobTable, m *avb.Mob, opts ...Option) (timecode.Range, error) {
	track, err := timeline.PrimaryTrack(m)
	if err != nil {
		return timecode.Range{}, err
	}
	chain := References(table, track, opts...)
	for chain.Next() {
		ref := chain.Reference()
		tcTrack, ok := timeline.FirstTrack(ref.Mob, timeline.OfKind(avb.MediaTimecode), timeline.AtIndex(1))
		if !ok {
			continue
		}
		res := ResolveBaseComponent(tcTrack, ref.TargetOffset())
		tc, ok := res.Leaf.(*avb.Timecode)
		if !ok {
			continue
		}
		start := timecode.New(tc.Start, res.Offset.Rate).Add(res.Offset.Frame)
		return timecode.Range{Start: start, Duration: m.Len}, nil
	}
	if err := chain.Err(); err != nil {
		return timecode.Range{}, err
	}
	return timecode.Range{}, fmt.Errorf("%w: no source timecode for %q", timeline.ErrNoTimecodeTrack, m.Name)
}
