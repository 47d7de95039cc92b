// Package avb is the read-only object model of an opened Avid bin: mobs,
// their tracks, and the component tree each track carries.
//
// Values are produced by a bin loader and are never mutated afterwards.
// Mob references are kept as ids and resolved against the bin's mob table,
// never as pointers, since targets may be missing.
package avb

import (
	"errors"
	"strings"
	"time"
)

// ErrMobNotFound is returned by a MobTable for ids it does not hold.
var ErrMobNotFound = errors.New("mob not found")

// MobTable resolves mob ids within a single bin.
type MobTable interface {
	FindByID(id MobID) (*Mob, error)
}

// MobID identifies a mob within one bin. It is opaque and comparable.
type MobID string

// IsZero reports whether the id is the "no reference" sentinel: empty or all zeros.
func (id MobID) IsZero() bool {
	s := strings.Trim(string(id), "0-:. ")
	return s == ""
}

func (id MobID) String() string { return string(id) }

// MediaKind is a track's media type.
type MediaKind string

const (
	MediaPicture  MediaKind = "picture"
	MediaSound    MediaKind = "sound"
	MediaTimecode MediaKind = "timecode"
	MediaEdgecode MediaKind = "edgecode"
	MediaData     MediaKind = "data"
)

// Mob is a composition node: master mob, source mob or composition mob.
type Mob struct {
	ID           MobID
	Name         string
	Rate         EditRate
	Len          int64
	MobTypeID    int
	UsageCode    int
	Attrs        Attributes
	Descriptor   *Descriptor
	Tracks       []*Track
	CreationTime time.Time
	LastModified time.Time
}

func (m *Mob) Length() int64          { return m.Len }
func (m *Mob) EditRate() EditRate     { return m.Rate }
func (m *Mob) Attributes() Attributes { return m.Attrs }
func (m *Mob) GroupTracks() []*Track  { return m.Tracks }
func (*Mob) isComponent()             {}

// Track returns the track of the given kind and index.
func (m *Mob) Track(kind MediaKind, index int) (*Track, bool) {
	for _, t := range m.Tracks {
		if t.Kind == kind && t.Index == index {
			return t, true
		}
	}
	return nil, false
}

// Track belongs to one mob (or track group) and holds at most one component.
// Index is 1-based within its media kind; 0 means the track has no index.
type Track struct {
	Kind      MediaKind
	Index     int
	Component Component
}

// HasComponent reports whether the track carries a component. Some
// precompute placeholder tracks do not.
func (t *Track) HasComponent() bool { return t.Component != nil }

func (t *Track) Length() int64 {
	if t.Component == nil {
		return 0
	}
	return t.Component.Length()
}

func (t *Track) EditRate() EditRate {
	if t.Component == nil {
		return EditRate{}
	}
	return t.Component.EditRate()
}

func (t *Track) Attributes() Attributes { return nil }
func (*Track) isComponent()             {}

// BinItem pairs a mob with its placement in the bin window.
type BinItem struct {
	Mob        *Mob
	UserPlaced bool
	X, Y       int
	Keyframe   int64
}
