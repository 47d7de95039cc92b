package sourceref

import (
	"errors"

	"github.com/agentic-research/avbmatch/internal/avb"
)

// table is a map-backed mob table for tests.
type table map[avb.MobID]*avb.Mob

func (t table) FindByID(id avb.MobID) (*avb.Mob, error) {
	if m, ok := t[id]; ok {
		return m, nil
	}
	return nil, avb.ErrMobNotFound
}

func (t table) add(mobs ...*avb.Mob) table {
	for _, m := range mobs {
		t[m.ID] = m
	}
	return t
}

// brokenTable fails every lookup with an I/O-style error.
type brokenTable struct{}

func (brokenTable) FindByID(avb.MobID) (*avb.Mob, error) {
	return nil, errors.New("disk on fire")
}

func base(length, rate int64) avb.ComponentBase {
	return avb.ComponentBase{Len: length, Rate: avb.Rate(rate), Kind: avb.MediaPicture}
}

func clip(target avb.MobID, trackID int, start, length int64) *avb.SourceClip {
	return &avb.SourceClip{ComponentBase: base(length, 24), MobID: target, TrackID: trackID, StartTime: start}
}

func filler(length int64) *avb.Filler {
	return &avb.Filler{ComponentBase: base(length, 24)}
}

// seq brackets components with zero-length fillers, as bins always do.
func seq(cs ...avb.Component) *avb.Sequence {
	var length int64
	for _, c := range cs {
		length += c.Length()
	}
	all := append([]avb.Component{filler(0)}, cs...)
	all = append(all, filler(0))
	return &avb.Sequence{ComponentBase: base(length, 24), Components: all}
}

func v1(c avb.Component) *avb.Track {
	return &avb.Track{Kind: avb.MediaPicture, Index: 1, Component: c}
}

func masterClip(id avb.MobID, c avb.Component) *avb.Mob {
	return &avb.Mob{ID: id, Name: string(id), Rate: avb.Rate(24), Len: c.Length(), MobTypeID: 2, Tracks: []*avb.Track{v1(c)}}
}

func sourceMob(id avb.MobID, kind int, c avb.Component) *avb.Mob {
	return &avb.Mob{
		ID: id, Name: string(id), Rate: avb.Rate(24), Len: c.Length(), MobTypeID: 3,
		Descriptor: &avb.Descriptor{Class: descriptorClass(kind), MobKind: kind},
		Tracks:     []*avb.Track{v1(c)},
	}
}

func descriptorClass(kind int) avb.DescriptorClass {
	switch kind {
	case 1:
		return avb.DescriptorMediaFile
	case 2:
		return avb.DescriptorTape
	case 3:
		return avb.DescriptorFilm
	case 4:
		return avb.DescriptorSoundroll
	}
	return avb.DescriptorImport
}

// nullClip ends a chain: track id 0 is the "no reference" sentinel.
func nullClip(length int64) *avb.SourceClip {
	return clip("", 0, 0, length)
}
