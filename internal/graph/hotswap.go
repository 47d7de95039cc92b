package graph

import (
	"io"
	"sync"

	"github.com/agentic-research/avbmatch/internal/avb"
)

// generation is one graph served by a HotSwapGraph and the readers
// still holding it.
type generation struct {
	graph   Graph
	readers int
	retired bool
}

// HotSwapGraph is a thread-safe wrapper that allows swapping the underlying
// graph, e.g. when a bin is reopened while being served. A graph swapped out
// while readers hold it through Acquire is closed when the last one releases.
type HotSwapGraph struct {
	mu      sync.Mutex
	current *generation
}

func NewHotSwapGraph(initial Graph) *HotSwapGraph {
	return &HotSwapGraph{current: &generation{graph: initial}}
}

// Swap replaces the current graph. The old one is closed, if it is a
// Closer, once no reader holds it.
func (h *HotSwapGraph) Swap(newGraph Graph) error {
	h.mu.Lock()
	old := h.current
	h.current = &generation{graph: newGraph}
	old.retired = true
	closeNow := old.readers == 0 && old.graph != newGraph
	h.mu.Unlock()
	if closeNow {
		return closeGraph(old.graph)
	}
	return nil
}

// Acquire pins the current graph. It stays open across swaps until release
// is called; release is safe to call more than once and returns the error
// from closing a retired graph.
func (h *HotSwapGraph) Acquire() (Graph, func() error) {
	h.mu.Lock()
	gen := h.current
	gen.readers++
	h.mu.Unlock()

	var once sync.Once
	release := func() error {
		var err error
		once.Do(func() {
			h.mu.Lock()
			gen.readers--
			closeNow := gen.retired && gen.readers == 0 && gen.graph != h.current.graph
			h.mu.Unlock()
			if closeNow {
				err = closeGraph(gen.graph)
			}
		})
		return err
	}
	return gen.graph, release
}

func closeGraph(g Graph) error {
	if closer, ok := g.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (h *HotSwapGraph) Current() Graph {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current.graph
}

// FindByID delegates to current graph.
func (h *HotSwapGraph) FindByID(id avb.MobID) (*avb.Mob, error) {
	return h.Current().FindByID(id)
}

// Mobs delegates to current graph.
func (h *HotSwapGraph) Mobs() ([]avb.MobID, error) {
	return h.Current().Mobs()
}

// Referrers delegates to current graph.
func (h *HotSwapGraph) Referrers(id avb.MobID) ([]avb.MobID, error) {
	return h.Current().Referrers(id)
}
