package timeline

import (
	"slices"
	"testing"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func track(kind avb.MediaKind, index int) *avb.Track {
	return &avb.Track{Kind: kind, Index: index}
}

func TestTrackLabel(t *testing.T) {
	assert.Equal(t, "V1", TrackLabel(track(avb.MediaPicture, 1)))
	assert.Equal(t, "A12", TrackLabel(track(avb.MediaSound, 12)))
	assert.Equal(t, "TC1", TrackLabel(track(avb.MediaTimecode, 1)))
	assert.Equal(t, "EC1", TrackLabel(track(avb.MediaEdgecode, 1)))
	assert.Equal(t, "data2", TrackLabel(track(avb.MediaData, 2)))
	assert.Equal(t, "V", TrackLabel(track(avb.MediaPicture, 0)))
}

func TestTrackLabels(t *testing.T) {
	tracks := []*avb.Track{
		track(avb.MediaPicture, 1), track(avb.MediaPicture, 2),
		track(avb.MediaSound, 1), track(avb.MediaSound, 2), track(avb.MediaSound, 3),
		track(avb.MediaSound, 5), track(avb.MediaSound, 6), track(avb.MediaSound, 7),
	}
	assert.Equal(t, "V1-2 A1-3,5-7", TrackLabels(tracks))
}

func TestTrackLabels_FixedKindOrder(t *testing.T) {
	tracks := []*avb.Track{
		track(avb.MediaEdgecode, 1),
		track(avb.MediaTimecode, 1),
		track(avb.MediaSound, 4), track(avb.MediaSound, 2),
		track(avb.MediaData, 1),
		track(avb.MediaPicture, 1),
	}
	assert.Equal(t, "V1 A2,4 data1 TC1 EC1", TrackLabels(tracks))
	assert.Equal(t, "", TrackLabels(nil))
}

func TestTracksOf(t *testing.T) {
	mob := &avb.Mob{Tracks: []*avb.Track{
		track(avb.MediaSound, 2), track(avb.MediaPicture, 1), track(avb.MediaSound, 1),
	}}

	all := slices.Collect(TracksOf(mob))
	assert.Len(t, all, 3)

	sound := slices.Collect(TracksOf(mob, OfKind(avb.MediaSound)))
	require.Len(t, sound, 2)
	assert.Equal(t, 2, sound[0].Index, "native order is kept")

	a1 := slices.Collect(TracksOf(mob, OfKind(avb.MediaSound), AtIndex(1)))
	require.Len(t, a1, 1)
	assert.Equal(t, 1, a1[0].Index)

	_, ok := FirstTrack(mob, OfKind(avb.MediaTimecode))
	assert.False(t, ok)
}

func TestPrimaryTrack(t *testing.T) {
	mob := &avb.Mob{Name: "clip", Tracks: []*avb.Track{track(avb.MediaTimecode, 1), track(avb.MediaSound, 1)}}
	tr, err := PrimaryTrack(mob)
	require.NoError(t, err)
	assert.Equal(t, avb.MediaSound, tr.Kind)

	_, err = PrimaryTrack(&avb.Mob{Tracks: []*avb.Track{track(avb.MediaTimecode, 1)}})
	assert.ErrorIs(t, err, ErrNoPrimaryTrack)
}

func tcMob(rate int64, tcRate int64, wrap bool) *avb.Mob {
	var c avb.Component = &avb.Timecode{
		ComponentBase: avb.ComponentBase{Len: 1000, Rate: avb.Rate(tcRate), Kind: avb.MediaTimecode},
		Start:         86400,
		FPS:           int(tcRate),
	}
	if wrap {
		c = &avb.Sequence{
			ComponentBase: avb.ComponentBase{Len: 1000, Rate: avb.Rate(tcRate)},
			Components: []avb.Component{
				&avb.Filler{ComponentBase: avb.ComponentBase{Rate: avb.Rate(tcRate)}},
				c,
				&avb.Filler{ComponentBase: avb.ComponentBase{Rate: avb.Rate(tcRate)}},
			},
		}
	}
	return &avb.Mob{
		Name: "tape", Rate: avb.Rate(rate), Len: 240,
		Tracks: []*avb.Track{{Kind: avb.MediaTimecode, Index: 1, Component: c}},
	}
}

func TestTimecodeRangeOf(t *testing.T) {
	for _, wrap := range []bool{false, true} {
		r, err := TimecodeRangeOf(tcMob(24, 24, wrap))
		require.NoError(t, err)
		assert.Equal(t, "01:00:00:00", r.Start.String())
		assert.Equal(t, int64(240), r.Duration)
		assert.Equal(t, "01:00:10:00", r.End().String())
	}
}

func TestTimecodeRangeOf_Errors(t *testing.T) {
	_, err := TimecodeRangeOf(tcMob(24, 30, false))
	assert.ErrorIs(t, err, ErrTimecodeRateMismatch)

	_, err = TimecodeRangeOf(&avb.Mob{Name: "no tc", Tracks: []*avb.Track{track(avb.MediaPicture, 1)}})
	assert.ErrorIs(t, err, ErrNoTimecodeTrack)

	notTC := &avb.Mob{Name: "filler", Rate: avb.Rate(24), Tracks: []*avb.Track{{
		Kind: avb.MediaTimecode, Index: 1,
		Component: &avb.Filler{ComponentBase: avb.ComponentBase{Rate: avb.Rate(24)}},
	}}}
	_, err = TimecodeRangeOf(notTC)
	assert.ErrorIs(t, err, ErrNoTimecodeTrack)
}

func TestTrackByLabel(t *testing.T) {
	m := &avb.Mob{Tracks: []*avb.Track{
		track(avb.MediaTimecode, 1), track(avb.MediaPicture, 1), track(avb.MediaSound, 2),
	}}

	got, ok := TrackByLabel(m, "a2")
	require.True(t, ok)
	assert.Same(t, m.Tracks[2], got)

	got, ok = TrackByLabel(m, "TC1")
	require.True(t, ok)
	assert.Same(t, m.Tracks[0], got)

	_, ok = TrackByLabel(m, "V2")
	assert.False(t, ok)
}
