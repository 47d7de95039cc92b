package bin

import (
	"testing"
	"time"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/classify"
	"github.com/agentic-research/avbmatch/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBin() *Bin {
	store := graph.NewMemoryStore()
	mobs := []*avb.Mob{
		{ID: "seq1", Name: "Reel 10", MobTypeID: 1},
		{ID: "seq2", Name: "Reel 9", MobTypeID: 1},
		{ID: "mc", Name: "A001C003", MobTypeID: 2},
		{ID: "sub", Name: "sub", MobTypeID: 1, UsageCode: 2},
		{ID: "ref", Name: "Reel 1 (ref)", MobTypeID: 1},
	}
	b := &Bin{Name: "Reels", Mobs: store}
	for _, m := range mobs {
		store.AddMob(m)
		b.Items = append(b.Items, avb.BinItem{Mob: m, UserPlaced: m.ID != "ref"})
	}
	return b
}

func names(mobs []*avb.Mob) []string {
	var out []string
	for _, m := range mobs {
		out = append(out, m.Name)
	}
	return out
}

func TestBin_FindByID(t *testing.T) {
	b := testBin()
	m, err := b.FindByID("mc")
	require.NoError(t, err)
	assert.Equal(t, "A001C003", m.Name)

	_, err = b.FindByID("nope")
	assert.ErrorIs(t, err, avb.ErrMobNotFound)
	assert.NoError(t, b.Close())
}

func TestBin_Timelines(t *testing.T) {
	b := testBin()
	assert.Equal(t, []string{"Reel 10", "Reel 9"}, names(b.Timelines(false)))
	assert.Equal(t, []string{"Reel 10", "Reel 9", "Reel 1 (ref)"}, names(b.Timelines(true)))
}

func TestBin_ByRole(t *testing.T) {
	b := testBin()
	assert.Equal(t, []string{"A001C003"}, names(b.ByRole(classify.RoleMasterClip, false)))
	assert.Equal(t, []string{"sub"}, names(b.ByRole(classify.RoleSubclip, false)))
	assert.Len(t, b.Visible(false), 4)
	assert.Len(t, b.Visible(true), 5)
}

// pinnedRoles answers every role query with the same ids.
type pinnedRoles struct {
	*graph.MemoryStore
	ids []avb.MobID
}

func (p pinnedRoles) ByRole(classify.Role) ([]avb.MobID, error) { return p.ids, nil }

func TestBin_ByRoleUsesRoleIndex(t *testing.T) {
	b := testBin()
	store := b.Mobs.(*graph.MemoryStore)

	b.Mobs = pinnedRoles{MemoryStore: store, ids: []avb.MobID{"ref", "mc", "seq2"}}
	assert.Equal(t, []string{"Reel 9", "A001C003"}, names(b.ByRole(classify.RoleTimeline, false)),
		"index members, in item order, hidden items dropped")
	assert.Equal(t, []string{"Reel 9", "A001C003", "Reel 1 (ref)"}, names(b.ByRole(classify.RoleTimeline, true)))

	// graphs without an index fall back to classifying items
	b.Mobs = graph.NewHotSwapGraph(store)
	assert.Equal(t, []string{"Reel 10", "Reel 9"}, names(b.ByRole(classify.RoleTimeline, false)))
}

func TestHumanCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"Reel 9", "Reel 10", -1},
		{"reel 2", "Reel 2", 0},
		{"Reel 2 v3", "Reel 2 v12", -1},
		{"Reel 02", "Reel 1", 1},
		{"abc", "abd", -1},
		{"Reel", "Reel 1", -1},
		{"10", "a", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanCompare(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, -tt.want, HumanCompare(tt.b, tt.a), "%q vs %q", tt.b, tt.a)
	}
}

func TestSort(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mobs := []*avb.Mob{
		{Name: "Reel 10", CreationTime: now, LastModified: now.Add(time.Hour)},
		{Name: "Reel 9", CreationTime: now.Add(time.Minute), LastModified: now},
		{Name: "reel 1", CreationTime: now.Add(-time.Minute), LastModified: now.Add(2 * time.Hour)},
	}

	Sort(mobs, ByName, false)
	assert.Equal(t, []string{"reel 1", "Reel 9", "Reel 10"}, names(mobs))

	Sort(mobs, ByName, true)
	assert.Equal(t, []string{"Reel 10", "Reel 9", "reel 1"}, names(mobs))

	Sort(mobs, ByDateCreated, false)
	assert.Equal(t, []string{"reel 1", "Reel 10", "Reel 9"}, names(mobs))

	Sort(mobs, ByDateModified, true)
	assert.Equal(t, []string{"reel 1", "Reel 10", "Reel 9"}, names(mobs))
}

func TestParse(t *testing.T) {
	s, err := ParseSorting("modified")
	require.NoError(t, err)
	assert.Equal(t, ByDateModified, s)
	_, err = ParseSorting("size")
	assert.Error(t, err)

	m, err := ParseDisplayMode("Script")
	require.NoError(t, err)
	assert.Equal(t, ScriptView, m)
	assert.Equal(t, "Frame", FrameView.String())
}
