package sourceref

import (
	"testing"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferences_ThreeHopsThenSentinel(t *testing.T) {
	mobs := table{}.add(
		masterClip("m2", clip("m3", 1, 0, 100)),
		masterClip("m3", nullClip(100)),
	)
	mobs.add(&avb.Mob{ID: "m1", MobTypeID: 2, Tracks: []*avb.Track{v1(clip("m2", 1, 0, 100))}})

	start := clip("m1", 1, 0, 100)
	chain := References(mobs, start)

	refs, err := Collect(chain)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, avb.MobID("m1"), refs[0].Mob.ID)
	assert.Equal(t, avb.MobID("m2"), refs[1].Mob.ID)
	assert.Equal(t, avb.MobID("m3"), refs[2].Mob.ID)

	assert.False(t, chain.Next(), "exhausted chains stay exhausted")
	assert.NoError(t, chain.Err())
	assert.Equal(t, StopNullReference, chain.Stop())
	assert.Equal(t, 3, chain.Hops())
}

func TestReferences_EndToEnd(t *testing.T) {
	tapeClip := clip("tapeB", 1, 500, 100)
	mobs := table{}.add(
		sourceMob("sourceA", 1, tapeClip),
		sourceMob("tapeB", 2, nullClip(10000)),
	)
	first := clip("sourceA", 1, 0, 100)
	master := masterClip("master", seq(first))
	mobs.add(master)

	refs, err := Collect(References(mobs, master.Tracks[0]))
	require.NoError(t, err)
	require.Len(t, refs, 2)

	assert.Same(t, first, refs[0].Clip)
	assert.Equal(t, avb.MobID("sourceA"), refs[0].Mob.ID)
	assert.Equal(t, int64(0), refs[0].Offset.Frame)
	assert.Equal(t, int64(0), refs[0].TargetOffset().Frame)

	assert.Same(t, tapeClip, refs[1].Clip)
	assert.Equal(t, avb.MobID("tapeB"), refs[1].Mob.ID)
	assert.Equal(t, int64(500), refs[1].TargetOffset().Frame)

	physical, err := Collect(PhysicalReferences(mobs, master.Tracks[0]))
	require.NoError(t, err)
	require.Len(t, physical, 1)
	assert.Same(t, tapeClip, physical[0].Clip)

	role, err := RoleOfSourceMob(mobs["tapeB"])
	require.NoError(t, err)
	assert.Equal(t, Tape, role)
}

func TestReferences_OffsetsAccumulate(t *testing.T) {
	mobs := table{}.add(
		sourceMob("tape", 2, nullClip(100000)),
		sourceMob("essence", 1, seq(filler(10), clip("tape", 1, 1000, 500))),
	)
	master := masterClip("master", seq(filler(40), clip("essence", 1, 20, 100)))

	refs, err := Collect(References(mobs, master.Tracks[0], WithOffset(45)))
	require.NoError(t, err)
	require.Len(t, refs, 2)

	// 45 into the master is 5 into the first clip, 25 into the essence track
	assert.Equal(t, int64(5), refs[0].Offset.Frame)
	assert.Equal(t, int64(25), refs[0].TargetOffset().Frame)
	// 25 into the essence sequence is 15 into its clip, 1015 on tape
	assert.Equal(t, int64(15), refs[1].Offset.Frame)
	assert.Equal(t, int64(1015), refs[1].TargetOffset().Frame)
}

func TestReferences_RoleFilters(t *testing.T) {
	mobs := table{}.add(
		sourceMob("essence", 1, clip("tape", 1, 0, 100)),
		sourceMob("tape", 2, clip("film", 1, 0, 100)),
		sourceMob("film", 3, nullClip(100)),
	)
	start := clip("essence", 1, 0, 100)

	files, err := Collect(FileReferences(mobs, start))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, avb.MobID("essence"), files[0].Mob.ID)

	physical, err := Collect(PhysicalReferences(mobs, start))
	require.NoError(t, err)
	require.Len(t, physical, 2)
	assert.Equal(t, avb.MobID("tape"), physical[0].Mob.ID)
	assert.Equal(t, avb.MobID("film"), physical[1].Mob.ID)
}

func TestReferences_FilterSkipsNonSourceMobs(t *testing.T) {
	mobs := table{}.add(
		masterClip("master", clip("essence", 1, 0, 100)),
		sourceMob("essence", 1, nullClip(100)),
	)
	files, err := Collect(FileReferences(mobs, clip("master", 1, 0, 100)))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, avb.MobID("essence"), files[0].Mob.ID)
}

func TestReferences_FilterSurfacesDescriptorErrors(t *testing.T) {
	broken := sourceMob("essence", 1, nullClip(100))
	broken.Descriptor = nil
	mobs := table{}.add(broken)

	chain := FileReferences(mobs, clip("essence", 1, 0, 100))
	assert.False(t, chain.Next())
	assert.ErrorIs(t, chain.Err(), ErrNotASourceMob)
	assert.Equal(t, StopError, chain.Stop())
}

func TestReferences_CycleIsBounded(t *testing.T) {
	mobs := table{}.add(
		masterClip("a", clip("b", 1, 0, 100)),
		masterClip("b", clip("a", 1, 0, 100)),
	)

	chain := References(mobs, clip("a", 1, 0, 100), WithMaxHops(10))
	refs, err := Collect(chain)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMatchbackTooDeep)
	assert.Len(t, refs, 10)
	assert.Equal(t, StopError, chain.Stop())

	_, err = Collect(References(mobs, clip("a", 1, 0, 100)))
	assert.ErrorIs(t, err, ErrMatchbackTooDeep)
}

func TestReferences_Terminations(t *testing.T) {
	t.Run("filler", func(t *testing.T) {
		chain := References(table{}, seq(filler(100)))
		assert.False(t, chain.Next())
		assert.NoError(t, chain.Err())
		assert.Equal(t, StopFiller, chain.Stop())
	})

	t.Run("missing mob", func(t *testing.T) {
		chain := References(table{}, clip("nowhere", 1, 0, 100))
		assert.False(t, chain.Next())
		assert.NoError(t, chain.Err())
		assert.Equal(t, StopMissingMob, chain.Stop())
	})

	t.Run("missing track", func(t *testing.T) {
		mobs := table{}.add(masterClip("m", nullClip(10)))
		chain := References(mobs, clip("m", 2, 0, 100))
		assert.False(t, chain.Next())
		assert.Equal(t, StopMissingTrack, chain.Stop())
	})

	t.Run("null mob id", func(t *testing.T) {
		chain := References(table{}, clip("00000000-0000", 1, 0, 100))
		assert.False(t, chain.Next())
		assert.Equal(t, StopNullReference, chain.Stop())
	})

	t.Run("ambiguous wrapper", func(t *testing.T) {
		fx := &avb.TrackEffect{TrackGroup: avb.TrackGroup{
			ComponentBase: base(100, 24),
			Tracks:        []*avb.Track{v1(clip("a", 1, 0, 100)), v1(clip("b", 1, 0, 100))},
		}}
		chain := References(table{}, fx)
		assert.False(t, chain.Next())
		assert.NoError(t, chain.Err())
		assert.Equal(t, StopAmbiguous, chain.Stop())
	})

	t.Run("empty target track", func(t *testing.T) {
		placeholder := &avb.Mob{ID: "p", MobTypeID: 2, Tracks: []*avb.Track{{Kind: avb.MediaPicture, Index: 1}}}
		refs, err := Collect(References(table{}.add(placeholder), clip("p", 1, 0, 100)))
		require.NoError(t, err)
		assert.Len(t, refs, 1)
	})

	t.Run("lookup failure", func(t *testing.T) {
		chain := References(brokenTable{}, clip("a", 1, 0, 100))
		assert.False(t, chain.Next())
		assert.ErrorContains(t, chain.Err(), "disk on fire")
	})
}

func TestFirst(t *testing.T) {
	mobs := table{}.add(sourceMob("tape", 2, nullClip(100)))
	ref, ok, err := First(References(mobs, clip("tape", 1, 0, 100)))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, avb.MobID("tape"), ref.Mob.ID)

	_, ok, err = First(References(mobs, filler(5)))
	require.NoError(t, err)
	assert.False(t, ok)
}
