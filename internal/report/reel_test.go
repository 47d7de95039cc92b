package report

import (
	"testing"
	"time"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/bin"
	"github.com/agentic-research/avbmatch/internal/ingest"
	"github.com/agentic-research/avbmatch/internal/timecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = "../ingest/testdata/reel1.json"

func openFixture(t *testing.T) *bin.Bin {
	t.Helper()
	b, err := ingest.Open(fixture, ingest.Options{})
	require.NoError(t, err)
	return b
}

func TestReelInfo(t *testing.T) {
	seq := &avb.Mob{
		Name:         "Reel 2 v4",
		Rate:         avb.Rate(24),
		Len:          437,
		LastModified: time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
		Attrs:        avb.Attributes{"_USER": map[string]any{"Reel #": "2"}},
	}
	info, err := ReelInfoOf(seq, Leaders{})
	require.NoError(t, err)

	assert.Equal(t, "Reel 2 v4", info.Name)
	assert.Equal(t, "2", info.ReelNumber)
	assert.Equal(t, int64(192), info.Head.Frame)
	assert.Equal(t, int64(95), info.Tail.Frame)
	assert.Equal(t, timecode.New(150, 24), info.DurationAdjusted())
	// 437 - 95 - 1 = 341 frames = 21 feet 5 frames
	assert.Equal(t, "21+05", info.LFOA())
}

func TestReelInfo_ShortReel(t *testing.T) {
	seq := &avb.Mob{Name: "Stub", Rate: avb.Rate(24), Len: 10}
	info, err := ReelInfoOf(seq, Leaders{Head: "1:00", Tail: "1:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.DurationAdjusted().Frame)
	assert.Equal(t, "0+00", info.LFOA())

	_, err = ReelInfoOf(seq, Leaders{Head: "eight"})
	require.ErrorIs(t, err, timecode.ErrInvalidTimecode)
}

func TestLatestTimeline(t *testing.T) {
	b := openFixture(t)

	latest, err := LatestTimeline(b, bin.ByName, false)
	require.NoError(t, err)
	assert.Equal(t, "Reel 1 v10", latest.Name)

	latest, err = LatestTimeline(b, bin.ByDateModified, false)
	require.NoError(t, err)
	assert.Equal(t, "Reel 1 v10", latest.Name)

	_, err = LatestTimeline(&bin.Bin{}, bin.ByName, false)
	require.ErrorIs(t, err, ErrNoTimelines)
}
