package avb

// Component is the closed set of nodes a track can hold:
// *Sequence, *SourceClip, *Filler, *Timecode, *TrackGroup, *TrackEffect,
// *TransitionEffect, *Selector, *EssenceGroup, and *Track / *Mob when a
// track or composition is walked as a node.
type Component interface {
	Length() int64
	EditRate() EditRate
	Attributes() Attributes
	isComponent()
}

// Grouped is implemented by components that own tracks.
type Grouped interface {
	Component
	GroupTracks() []*Track
}

// ComponentBase carries the fields every leaf and group component shares.
type ComponentBase struct {
	Len   int64
	Rate  EditRate
	Kind  MediaKind
	Attrs Attributes
}

func (c *ComponentBase) Length() int64          { return c.Len }
func (c *ComponentBase) EditRate() EditRate     { return c.Rate }
func (c *ComponentBase) Attributes() Attributes { return c.Attrs }
func (c *ComponentBase) MediaKind() MediaKind   { return c.Kind }
func (*ComponentBase) isComponent()             {}

// Sequence is an ordered run of components, bracketed by zero-length fillers.
type Sequence struct {
	ComponentBase
	Components []Component
}

// ComponentAt returns the component covering frame and the frame at which it
// starts within the sequence. Transitions overlap their neighbours and are
// never returned; ties go to the later component so that zero-length
// components are stepped over. A frame before zero selects the first
// non-transition component.
func (s *Sequence) ComponentAt(frame int64) (Component, int64, bool) {
	var (
		found Component
		start int64
		pos   int64
	)
	for _, c := range s.Components {
		if _, ok := c.(*TransitionEffect); ok {
			pos -= c.Length()
			continue
		}
		if found == nil || pos <= frame {
			found, start = c, pos
		}
		if pos > frame {
			break
		}
		pos += c.Length()
	}
	return found, start, found != nil
}

// SourceClip references a span of another mob's track, starting at StartTime.
type SourceClip struct {
	ComponentBase
	MobID     MobID
	TrackID   int
	StartTime int64
}

// IsNullReference reports whether the clip points nowhere.
func (c *SourceClip) IsNullReference() bool {
	return c.TrackID == 0 || c.MobID.IsZero()
}

type Filler struct {
	ComponentBase
}

// Timecode is a timecode track segment; Start is counted at FPS.
type Timecode struct {
	ComponentBase
	Start int64
	FPS   int
	Drop  bool
}

// TrackGroup is a component holding nested tracks.
type TrackGroup struct {
	ComponentBase
	Tracks []*Track
}

func (g *TrackGroup) GroupTracks() []*Track { return g.Tracks }

// TrackEffect wraps its input tracks (PVOL, color effects ...).
type TrackEffect struct {
	TrackGroup
}

// TransitionEffect overlaps the components on either side of it in a sequence.
type TransitionEffect struct {
	TrackGroup
	CutPoint int64
}

// Selector is a multicam group clip: several angle tracks, one selected.
type Selector struct {
	TrackGroup
	Selected int
}

// SelectedTrack returns the active angle.
func (s *Selector) SelectedTrack() (*Track, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Tracks) {
		return nil, false
	}
	return s.Tracks[s.Selected], true
}

// EssenceGroup offers alternative essence for the same material.
type EssenceGroup struct {
	TrackGroup
}
