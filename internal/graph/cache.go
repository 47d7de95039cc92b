package graph

import (
	"sync"

	"github.com/agentic-research/avbmatch/internal/avb"
)

// RecordCache is a FIFO-evicting bounded cache of decoded mobs.
// One cache may be shared by several graphs only if their mob ids are
// disjoint; mob ids are unique per bin, not globally.
type RecordCache struct {
	mu      sync.Mutex
	entries map[avb.MobID]*avb.Mob
	keys    []avb.MobID
	maxSize int
}

// NewRecordCache returns a cache holding at most maxSize mobs.
// A size below one disables caching.
func NewRecordCache(maxSize int) *RecordCache {
	if maxSize < 0 {
		maxSize = 0
	}
	return &RecordCache{
		entries: make(map[avb.MobID]*avb.Mob, maxSize),
		keys:    make([]avb.MobID, 0, maxSize),
		maxSize: maxSize,
	}
}

func (c *RecordCache) Get(id avb.MobID) (*avb.Mob, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.entries[id]
	return m, ok
}

func (c *RecordCache) Put(id avb.MobID, m *avb.Mob) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxSize == 0 {
		return
	}
	if _, ok := c.entries[id]; ok {
		c.entries[id] = m
		return
	}
	if len(c.entries) >= c.maxSize {
		evict := c.keys[0]
		c.keys = c.keys[1:]
		delete(c.entries, evict)
	}
	c.entries[id] = m
	c.keys = append(c.keys, id)
}

func (c *RecordCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
