package graph

import (
	"testing"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clip(target avb.MobID) *avb.SourceClip {
	return &avb.SourceClip{ComponentBase: avb.ComponentBase{Len: 10, Rate: avb.Rate(24), Kind: avb.MediaPicture}, MobID: target, TrackID: 1}
}

func mob(id avb.MobID, mobType int, cs ...avb.Component) *avb.Mob {
	m := &avb.Mob{ID: id, Name: string(id), MobTypeID: mobType}
	for i, c := range cs {
		m.Tracks = append(m.Tracks, &avb.Track{Kind: avb.MediaPicture, Index: i + 1, Component: c})
	}
	return m
}

func TestMemoryStore_FindByID(t *testing.T) {
	store := NewMemoryStore()
	store.AddMob(mob("a", 2))

	m, err := store.FindByID("a")
	require.NoError(t, err)
	assert.Equal(t, "a", m.Name)

	_, err = store.FindByID("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, avb.ErrMobNotFound)
}

func TestMemoryStore_MobsKeepsBinOrder(t *testing.T) {
	store := NewMemoryStore()
	for _, id := range []avb.MobID{"c", "a", "b"} {
		store.AddMob(mob(id, 3))
	}
	store.AddMob(mob("a", 2))

	ids, err := store.Mobs()
	require.NoError(t, err)
	assert.Equal(t, []avb.MobID{"c", "a", "b"}, ids)
	assert.Equal(t, 3, store.Len())
}

func TestMemoryStore_ByRole(t *testing.T) {
	store := NewMemoryStore()
	store.AddMob(mob("seq", 1))
	store.AddMob(mob("mc1", 2))
	store.AddMob(mob("src", 3))
	store.AddMob(mob("mc2", 2))
	store.AddMob(&avb.Mob{ID: "odd", MobTypeID: 7})

	byRole := func(role classify.Role) []avb.MobID {
		ids, err := store.ByRole(role)
		require.NoError(t, err)
		return ids
	}

	assert.Equal(t, []avb.MobID{"mc1", "mc2"}, byRole(classify.RoleMasterClip))
	assert.Equal(t, []avb.MobID{"seq"}, byRole(classify.RoleTimeline))
	assert.Empty(t, byRole(classify.RoleSubclip))
	assert.Empty(t, byRole(classify.RoleUnknown), "unrecognized mobs are not indexed")

	// reclassified on replace, keeping bin order
	store.AddMob(mob("mc2", 3))
	assert.Equal(t, []avb.MobID{"mc1"}, byRole(classify.RoleMasterClip))
	assert.Equal(t, []avb.MobID{"src", "mc2"}, byRole(classify.RoleSourceMob))
}

func TestMemoryStore_Referrers(t *testing.T) {
	store := NewMemoryStore()
	store.AddMob(mob("src", 3))
	store.AddMob(mob("mc", 2, clip("src")))
	seq := &avb.Sequence{Components: []avb.Component{clip("mc"), clip("src"), clip("mc")}}
	store.AddMob(mob("timeline", 1, seq))

	refs, err := store.Referrers("src")
	require.NoError(t, err)
	assert.Equal(t, []avb.MobID{"mc", "timeline"}, refs)

	refs, err = store.Referrers("mc")
	require.NoError(t, err)
	assert.Equal(t, []avb.MobID{"timeline"}, refs)

	refs, err = store.Referrers("timeline")
	require.NoError(t, err)
	assert.Empty(t, refs)

	store.AddMob(mob("mc", 2))
	refs, err = store.Referrers("src")
	require.NoError(t, err)
	assert.Equal(t, []avb.MobID{"timeline"}, refs)
}

func TestTargets(t *testing.T) {
	sel := &avb.Selector{TrackGroup: avb.TrackGroup{Tracks: []*avb.Track{
		{Kind: avb.MediaPicture, Index: 1, Component: clip("cam-a")},
		{Kind: avb.MediaPicture, Index: 2, Component: clip("cam-b")},
	}}}
	null := &avb.SourceClip{}
	seq := &avb.Sequence{Components: []avb.Component{null, sel, clip("cam-a"), &avb.Filler{}}}

	assert.Equal(t, []avb.MobID{"cam-a", "cam-b"}, Targets(mob("group", 1, seq)))
	assert.Empty(t, Targets(mob("empty", 1)))
}

func TestRecordCache_FIFO(t *testing.T) {
	c := NewRecordCache(2)
	c.Put("a", mob("a", 2))
	c.Put("b", mob("b", 2))
	c.Put("a", mob("a", 3))
	c.Put("c", mob("c", 2))

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry is evicted first")
	m, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, "b", m.Name)
	assert.Equal(t, 2, c.Len())

	off := NewRecordCache(0)
	off.Put("a", mob("a", 2))
	assert.Equal(t, 0, off.Len())
}

func TestHotSwapGraph(t *testing.T) {
	first := NewMemoryStore()
	first.AddMob(mob("a", 2))
	second := NewMemoryStore()
	second.AddMob(mob("b", 2))

	h := NewHotSwapGraph(first)
	_, err := h.FindByID("a")
	require.NoError(t, err)

	require.NoError(t, h.Swap(second))
	_, err = h.FindByID("a")
	assert.ErrorIs(t, err, ErrNotFound)
	ids, err := h.Mobs()
	require.NoError(t, err)
	assert.Equal(t, []avb.MobID{"b"}, ids)
}

// closeCounter is a mob table that records being closed.
type closeCounter struct {
	*MemoryStore
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestHotSwapGraph_AcquireDefersClose(t *testing.T) {
	first := &closeCounter{MemoryStore: NewMemoryStore()}
	first.AddMob(mob("a", 2))
	second := &closeCounter{MemoryStore: NewMemoryStore()}

	h := NewHotSwapGraph(first)
	held, release := h.Acquire()
	_, releaseOther := h.Acquire()

	require.NoError(t, h.Swap(second))
	assert.Equal(t, 0, first.closed, "still held")

	m, err := held.FindByID("a")
	require.NoError(t, err, "a held graph keeps answering after a swap")
	assert.Equal(t, "a", m.Name)
	_, err = h.FindByID("a")
	assert.ErrorIs(t, err, ErrNotFound, "new lookups see the new graph")

	require.NoError(t, release())
	require.NoError(t, release())
	assert.Equal(t, 0, first.closed)
	require.NoError(t, releaseOther())
	assert.Equal(t, 1, first.closed, "closed once the last reader is done")

	_, releaseSecond := h.Acquire()
	require.NoError(t, releaseSecond())
	assert.Equal(t, 0, second.closed, "the current graph is never closed on release")

	require.NoError(t, h.Swap(NewMemoryStore()))
	assert.Equal(t, 1, second.closed, "unheld graphs close on swap")
}
