// Package bin is an opened bin: its mob table plus the items placed in the
// bin window.
package bin

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/classify"
	"github.com/agentic-research/avbmatch/internal/graph"
)

// DisplayMode is the bin window's view mode.
type DisplayMode int

const (
	ListView DisplayMode = iota
	FrameView
	ScriptView
)

func (m DisplayMode) String() string {
	switch m {
	case ListView:
		return "List"
	case FrameView:
		return "Frame"
	case ScriptView:
		return "Script"
	}
	return fmt.Sprintf("DisplayMode(%d)", int(m))
}

// ParseDisplayMode accepts "list", "frame" or "script" in any case, or the
// numeric mode.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(s) {
	case "", "0", "list":
		return ListView, nil
	case "1", "frame":
		return FrameView, nil
	case "2", "script":
		return ScriptView, nil
	}
	return 0, fmt.Errorf("unknown display mode %q", s)
}

// Bin holds one bin's content. Mob ids resolve only within the bin.
type Bin struct {
	Name        string
	Version     string
	DisplayMode DisplayMode
	Mobs        graph.Graph
	Items       []avb.BinItem
}

// FindByID implements avb.MobTable.
func (b *Bin) FindByID(id avb.MobID) (*avb.Mob, error) {
	return b.Mobs.FindByID(id)
}

// Close releases the mob table if it holds resources.
func (b *Bin) Close() error {
	if c, ok := b.Mobs.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Visible returns the items the bin window shows: user-placed items, plus
// reference clips when includeReference is set.
func (b *Bin) Visible(includeReference bool) []avb.BinItem {
	out := make([]avb.BinItem, 0, len(b.Items))
	for _, it := range b.Items {
		if it.UserPlaced || includeReference {
			out = append(out, it)
		}
	}
	return out
}

// Filter filters the visible items' mobs with keep.
func (b *Bin) Filter(includeReference bool, keep func(*avb.Mob) bool) []*avb.Mob {
	var out []*avb.Mob
	for _, it := range b.Visible(includeReference) {
		if it.Mob != nil && keep(it.Mob) {
			out = append(out, it.Mob)
		}
	}
	return out
}

// Timelines returns the top-level sequences in the bin.
func (b *Bin) Timelines(includeReference bool) []*avb.Mob {
	return b.Filter(includeReference, classify.IsTimeline)
}

// ByRole returns the visible mobs classified as role, in item order. Mobs
// with unrecognized codes are never returned. The mob table's role index
// is used when it has one; otherwise each item is classified.
func (b *Bin) ByRole(role classify.Role, includeReference bool) []*avb.Mob {
	idx, ok := b.Mobs.(graph.RoleIndex)
	if !ok {
		return b.byClassifying(role, includeReference)
	}
	ids, err := idx.ByRole(role)
	if err != nil {
		return b.byClassifying(role, includeReference)
	}
	members := make(map[avb.MobID]struct{}, len(ids))
	for _, id := range ids {
		members[id] = struct{}{}
	}
	return b.Filter(includeReference, func(m *avb.Mob) bool {
		_, ok := members[m.ID]
		return ok
	})
}

func (b *Bin) byClassifying(role classify.Role, includeReference bool) []*avb.Mob {
	return b.Filter(includeReference, func(m *avb.Mob) bool {
		return classify.Is(m, role)
	})
}
