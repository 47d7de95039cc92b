package ingest

import (
	"path/filepath"
	"testing"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/bin"
	"github.com/agentic-research/avbmatch/internal/graph"
	"github.com/agentic-research/avbmatch/internal/matchback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFixture(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "reel1.db")
	require.NoError(t, Build(fixture, dbPath, Options{}))
	return dbPath
}

func TestBuild_LoadSnapshot(t *testing.T) {
	dbPath := buildFixture(t)
	cache := graph.NewRecordCache(16)

	b, err := LoadSnapshot(dbPath, Options{Cache: cache})
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	assert.Equal(t, "Reel 1", b.Name)
	assert.Equal(t, "1", b.Version)
	assert.Equal(t, bin.FrameView, b.DisplayMode)
	require.Len(t, b.Items, 10)
	assert.False(t, b.Items[0].UserPlaced)
	assert.Equal(t, "Reel 1 v2", b.Items[7].Mob.Name)
	assert.Equal(t, int64(12), b.Items[7].Keyframe)
	// Only the item mobs were read.
	assert.Equal(t, 10, cache.Len())

	ids, err := b.Mobs.Mobs()
	require.NoError(t, err)
	assert.Len(t, ids, 10)
	assert.Equal(t, avb.MobID("tape-a001"), ids[0])
}

func TestSnapshot_MatchesExport(t *testing.T) {
	dbPath := buildFixture(t)

	mem, err := LoadExport(fixture, Options{})
	require.NoError(t, err)
	snap, err := LoadSnapshot(dbPath, Options{})
	require.NoError(t, err)
	defer func() { _ = snap.Close() }()

	for _, id := range []avb.MobID{"seq-r1-v2", "sub-a001c003", "mc-b002c001"} {
		want, err := mem.FindByID(id)
		require.NoError(t, err)
		got, err := snap.FindByID(id)
		require.NoError(t, err)
		assert.Equal(t, want, got, "mob %s", id)
	}

	_, err = snap.FindByID("mxf-a001c003-a1")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestSnapshot_Referrers(t *testing.T) {
	dbPath := buildFixture(t)
	b, err := LoadSnapshot(dbPath, Options{})
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	refs, err := b.Mobs.Referrers("mc-a001c003")
	require.NoError(t, err)
	assert.ElementsMatch(t, []avb.MobID{"sub-a001c003", "seq-r1-v2", "seq-r1-v10", "seq-r1-cont"}, refs)

	refs, err = b.Mobs.Referrers("seq-r1-v2")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestSnapshot_Matchback(t *testing.T) {
	dbPath := buildFixture(t)
	b, err := LoadSnapshot(dbPath, Options{})
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	sub, err := b.FindByID("sub-a001c003")
	require.NoError(t, err)

	mc, err := matchback.ToMasterClip(b, sub)
	require.NoError(t, err)
	require.IsType(t, &avb.Mob{}, mc)
	assert.Equal(t, "A001C003", mc.(*avb.Mob).Name)

	src, err := matchback.ToSourceMob(b, sub)
	require.NoError(t, err)
	require.NotNil(t, src)
	assert.Equal(t, "A001", src.Name)
}

func TestBuild_Errors(t *testing.T) {
	dir := t.TempDir()
	err := Build(filepath.Join(dir, "missing.json"), filepath.Join(dir, "out.db"), Options{})
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"mobs": [{"mob_id": "a", "name": "Broken", "tracks": [{"component": {"class": "scope"}}]}]}`)
	err = Build(bad, filepath.Join(dir, "bad.db"), Options{})
	require.ErrorIs(t, err, ErrUnknownComponentClass)
}

func TestBuild_Overwrites(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "out.db")

	first := filepath.Join(dir, "first.json")
	writeFile(t, first, `{"name": "First", "mobs": [{"mob_id": "a", "name": "A", "mob_type_id": 2, "tracks": []}]}`)
	second := filepath.Join(dir, "second.json")
	writeFile(t, second, `{"name": "Second", "mobs": [{"mob_id": "b", "name": "B", "mob_type_id": 2, "tracks": []}]}`)

	require.NoError(t, Build(first, dbPath, Options{}))
	require.NoError(t, Build(second, dbPath, Options{}))

	b, err := LoadSnapshot(dbPath, Options{})
	require.NoError(t, err)
	defer func() { _ = b.Close() }()
	assert.Equal(t, "Second", b.Name)
	require.Len(t, b.Items, 1)
	assert.Equal(t, "B", b.Items[0].Mob.Name)
	_, err = b.FindByID("a")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}
