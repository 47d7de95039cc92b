package graph

import (
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/classify"
)

// ErrNotFound is returned for mob ids the graph does not hold. It is the
// same value as avb.ErrMobNotFound, so resolvers treat it as a dead end.
var ErrNotFound = avb.ErrMobNotFound

// Graph is the mob table of one opened bin.
// This allows us to swap the backend (Memory -> SQLite).
type Graph interface {
	FindByID(id avb.MobID) (*avb.Mob, error)
	// Mobs lists every mob id in bin order.
	Mobs() ([]avb.MobID, error)
	// Referrers lists the mobs holding a source clip that points at id.
	Referrers(id avb.MobID) ([]avb.MobID, error)
}

// RoleIndex is implemented by graphs that can list mobs by role without
// classifying every mob.
type RoleIndex interface {
	// ByRole lists the ids of mobs classified as role, in bin order.
	// Unrecognized mobs are never listed.
	ByRole(role classify.Role) ([]avb.MobID, error)
}

// -----------------------------------------------------------------------------
// In-memory mob table with roaring indexes
// -----------------------------------------------------------------------------

type MemoryStore struct {
	mu    sync.RWMutex
	mobs  map[avb.MobID]*avb.Mob
	order []avb.MobID

	// Roaring bitmap indexes over dense internal ids.
	// roles: classified role → mobs; referrers: target mob → mobs pointing at it.
	nodeIntID   map[avb.MobID]uint32
	intToNodeID []avb.MobID
	nextIntID   uint32
	roles       map[classify.Role]*roaring.Bitmap
	referrers   map[avb.MobID]*roaring.Bitmap
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mobs:      make(map[avb.MobID]*avb.Mob),
		nodeIntID: make(map[avb.MobID]uint32),
		roles:     make(map[classify.Role]*roaring.Bitmap),
		referrers: make(map[avb.MobID]*roaring.Bitmap),
	}
}

// AddMob adds m to the store, replacing any mob with the same id.
func (s *MemoryStore) AddMob(m *avb.Mob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.mobs[m.ID]; ok {
		s.unindex(old)
	} else {
		s.order = append(s.order, m.ID)
	}
	s.mobs[m.ID] = m
	s.index(m)
}

// intID assigns an internal bitmap id. Must be called with s.mu held.
func (s *MemoryStore) intID(id avb.MobID) uint32 {
	n, ok := s.nodeIntID[id]
	if !ok {
		n = s.nextIntID
		s.nextIntID++
		s.nodeIntID[id] = n
		s.intToNodeID = append(s.intToNodeID, id)
	}
	return n
}

func (s *MemoryStore) index(m *avb.Mob) {
	n := s.intID(m.ID)

	if role, err := classify.Classify(m); err == nil {
		bm, ok := s.roles[role]
		if !ok {
			bm = roaring.New()
			s.roles[role] = bm
		}
		bm.Add(n)
	}

	for _, target := range Targets(m) {
		bm, ok := s.referrers[target]
		if !ok {
			bm = roaring.New()
			s.referrers[target] = bm
		}
		bm.Add(n)
	}
}

func (s *MemoryStore) unindex(m *avb.Mob) {
	n := s.nodeIntID[m.ID]
	for _, bm := range s.roles {
		bm.Remove(n)
	}
	for _, target := range Targets(m) {
		if bm, ok := s.referrers[target]; ok {
			bm.Remove(n)
		}
	}
}

func (s *MemoryStore) FindByID(id avb.MobID) (*avb.Mob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m, nil
}

func (s *MemoryStore) Mobs() ([]avb.MobID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order), nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mobs)
}

func (s *MemoryStore) Referrers(id avb.MobID) ([]avb.MobID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.referrers[id]), nil
}

// ByRole implements RoleIndex from the role bitmaps.
func (s *MemoryStore) ByRole(role classify.Role) ([]avb.MobID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.roles[role]), nil
}

// collect maps a bitmap back to mob ids. Must be called with s.mu held.
func (s *MemoryStore) collect(bm *roaring.Bitmap) []avb.MobID {
	if bm == nil {
		return nil
	}
	out := make([]avb.MobID, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, s.intToNodeID[it.Next()])
	}
	return out
}

// Targets lists the distinct mob ids m's source clips point at.
func Targets(m *avb.Mob) []avb.MobID {
	seen := make(map[avb.MobID]struct{})
	var out []avb.MobID
	var walk func(c avb.Component)
	walk = func(c avb.Component) {
		switch v := c.(type) {
		case *avb.SourceClip:
			if v.IsNullReference() {
				return
			}
			if _, ok := seen[v.MobID]; !ok {
				seen[v.MobID] = struct{}{}
				out = append(out, v.MobID)
			}
		case *avb.Sequence:
			for _, sub := range v.Components {
				walk(sub)
			}
		case *avb.Track:
			if v.Component != nil {
				walk(v.Component)
			}
		case avb.Grouped:
			for _, t := range v.GroupTracks() {
				walk(t)
			}
		}
	}
	walk(m)
	return out
}
