// Package describe turns mobs, reference chains and matchback results into
// flat records for the command line and the tool server.
package describe

import (
	"errors"
	"fmt"
	"time"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/classify"
	"github.com/agentic-research/avbmatch/internal/matchback"
	"github.com/agentic-research/avbmatch/internal/sourceref"
	"github.com/agentic-research/avbmatch/internal/timecode"
	"github.com/agentic-research/avbmatch/internal/timeline"
)

// Mob is a one-line summary of a mob.
type Mob struct {
	ID       string    `json:"mob_id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	Tracks   string    `json:"tracks"`
	EditRate string    `json:"edit_rate"`
	Length   int64     `json:"length"`
	Duration string    `json:"duration"`
	Created  time.Time `json:"created,omitzero"`
	Modified time.Time `json:"modified,omitzero"`
}

// MobOf summarizes m.
func MobOf(m *avb.Mob) Mob {
	return Mob{
		ID:       m.ID.String(),
		Name:     m.Name,
		Role:     roleSlug(m),
		Tracks:   timeline.TrackLabels(m.Tracks),
		EditRate: m.Rate.String(),
		Length:   m.Len,
		Duration: timecode.New(m.Len, m.Rate.Nominal()).String(),
		Created:  m.CreationTime,
		Modified: m.LastModified,
	}
}

func roleSlug(m *avb.Mob) string {
	role, err := classify.Classify(m)
	if err != nil {
		return "unknown"
	}
	return role.Slug()
}

// Filter selects which references a chain reports.
type Filter int

const (
	AllReferences Filter = iota
	FileReferences
	PhysicalReferences
)

func (f Filter) String() string {
	switch f {
	case FileReferences:
		return "file"
	case PhysicalReferences:
		return "physical"
	}
	return "all"
}

func ParseFilter(s string) (Filter, error) {
	for _, f := range []Filter{AllReferences, FileReferences, PhysicalReferences} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown filter %q (want all, file or physical)", s)
}

// Link is one hop of a reference chain.
type Link struct {
	Hop          int    `json:"hop"`
	MobID        string `json:"mob_id"`
	MobName      string `json:"mob_name"`
	Role         string `json:"role"`
	SourceRole   string `json:"source_role,omitempty"`
	Track        string `json:"track"`
	StartTime    int64  `json:"start_time"`
	Offset       int64  `json:"offset"`
	TargetOffset int64  `json:"target_offset"`
	// Timecode is the target position in the mob's own timecode, when it
	// has a TC1 track at its edit rate.
	Timecode string `json:"timecode,omitempty"`
}

// LinkOf describes a reference as hop n.
func LinkOf(n int, ref sourceref.Reference) Link {
	target := ref.TargetOffset()
	l := Link{
		Hop:          n,
		MobID:        ref.Mob.ID.String(),
		MobName:      ref.Mob.Name,
		Role:         roleSlug(ref.Mob),
		Track:        timeline.TrackLabel(ref.Track),
		StartTime:    ref.Clip.StartTime,
		Offset:       ref.Offset.Frame,
		TargetOffset: target.Frame,
	}
	if role, err := sourceref.RoleOfSourceMob(ref.Mob); err == nil {
		l.SourceRole = role.String()
	}
	if tc, err := timeline.TimecodeRangeOf(ref.Mob); err == nil {
		l.Timecode = tc.Start.Add(target.Frame).String()
	}
	return l
}

// Chain is a walked reference chain and the reason it ended.
type Chain struct {
	Links []Link `json:"links"`
	Stop  string `json:"stop"`
}

// ChainOf walks the references under c.
func ChainOf(table avb.MobTable, c avb.Component, filter Filter, opts ...sourceref.Option) (Chain, error) {
	var chain *sourceref.Chain
	switch filter {
	case FileReferences:
		chain = sourceref.FileReferences(table, c, opts...)
	case PhysicalReferences:
		chain = sourceref.PhysicalReferences(table, c, opts...)
	default:
		chain = sourceref.References(table, c, opts...)
	}

	out := Chain{Links: []Link{}}
	for chain.Next() {
		out.Links = append(out.Links, LinkOf(len(out.Links)+1, chain.Reference()))
	}
	out.Stop = chain.Stop().String()
	return out, chain.Err()
}

// Matchback collects what an editor asks of a clip: its master clip, the
// source mob behind it, and the physical source and timecode it came from.
type Matchback struct {
	Mob            Mob    `json:"mob"`
	MasterClip     *Mob   `json:"master_clip,omitempty"`
	SourceMob      *Mob   `json:"source_mob,omitempty"`
	PhysicalSource string `json:"physical_source,omitempty"`
	PhysicalType   string `json:"physical_type,omitempty"`
	LinkType       string `json:"link_type,omitempty"`
	SourceTimecode string `json:"source_timecode,omitempty"`
	SourceEnd      string `json:"source_end,omitempty"`
}

// MatchbackOf matches m back as far as its chain allows. Missing pieces
// (no master clip, no physical source, no timecode) are left empty.
func MatchbackOf(table avb.MobTable, m *avb.Mob, maxHops int) (Matchback, error) {
	out := Matchback{Mob: MobOf(m)}
	hops := matchback.WithMaxHops(maxHops)

	end, err := matchback.ToMasterClip(table, m, hops)
	switch {
	case err == nil:
		if mc, ok := end.(*avb.Mob); ok && classify.IsMasterClip(mc) {
			s := MobOf(mc)
			out.MasterClip = &s
		}
	case !isAbsent(err):
		return out, err
	}

	src, err := matchback.ToSourceMob(table, m, hops)
	switch {
	case err == nil:
		if src != nil {
			s := MobOf(src)
			out.SourceMob = &s
		}
	case !isAbsent(err):
		return out, err
	}

	opts := []sourceref.Option{sourceref.WithMaxHops(maxHops)}
	name, err := sourceref.PhysicalSourceName(table, m, opts...)
	switch {
	case err == nil:
		out.PhysicalSource = name
		if role, err := sourceref.PhysicalSourceType(table, m, opts...); err == nil {
			out.PhysicalType = role.String()
		}
	case !isAbsent(err):
		return out, err
	}

	if lineage, err := sourceref.LineageOf(table, m, opts...); err == nil && lineage.Essence != nil {
		if lt, err := lineage.LinkType(); err == nil {
			out.LinkType = lt.String()
		}
	}

	tc, err := sourceref.SourceTimecodeRange(table, m, opts...)
	switch {
	case err == nil:
		out.SourceTimecode = tc.Start.String()
		out.SourceEnd = tc.End().String()
	case !isAbsent(err):
		return out, err
	}
	return out, nil
}

// isAbsent reports errors that only mean the chain lacks a piece.
func isAbsent(err error) bool {
	return errors.Is(err, sourceref.ErrNoPhysicalSource) ||
		errors.Is(err, matchback.ErrSequenceShape) ||
		errors.Is(err, timeline.ErrNoTimecodeTrack) ||
		errors.Is(err, timeline.ErrNoPrimaryTrack) ||
		errors.Is(err, timeline.ErrTimecodeRateMismatch)
}
