package layout

import (
	"quill/pkg/geom"
)

// LayoutCache carries layout state from one frame to the next. The zero
// value is an empty cache; a nil *LayoutCache disables caching.
//
// A cache is not safe for concurrent use. It is replaced as a whole at the
// end of a successful LayoutDocument call and left untouched when the call
// fails.
type LayoutCache struct {
	tree      *LayoutTree
	positions map[int]geom.LogicalPosition
	viewport  geom.LogicalSize
	settings  settings
	counters  map[CounterKey]int
	scrollIDs map[scrollKey]uint64
	nextID    uint64
	frames    int
}

// NewLayoutCache creates an empty cache.
func NewLayoutCache() *LayoutCache {
	return &LayoutCache{}
}

// Tree returns the tree of the last successful frame, nil before the first.
func (c *LayoutCache) Tree() *LayoutTree {
	if c == nil {
		return nil
	}
	return c.tree
}

// Viewport is the viewport size of the last successful frame.
func (c *LayoutCache) Viewport() geom.LogicalSize {
	if c == nil {
		return geom.LogicalSize{}
	}
	return c.viewport
}

// Frames counts the successful frames laid out with this cache.
func (c *LayoutCache) Frames() int {
	if c == nil {
		return 0
	}
	return c.frames
}

// Reset drops all cached state. Scroll IDs keep counting up, so IDs handed
// out before the reset are never reused.
func (c *LayoutCache) Reset() {
	next := c.nextID
	*c = LayoutCache{nextID: next}
}

// FloatingContext returns the floats a block formatting context root placed
// in the last frame, nil if it placed none.
func (c *LayoutCache) FloatingContext(idx int) *FloatingContext {
	n := c.Tree().Node(idx)
	if n == nil {
		return nil
	}
	return n.memo.out.Floats
}

// scrollKey identifies a scroll container across frames: the k-th scroll
// container with a given node data hash, in document order.
type scrollKey struct {
	hash       uint64
	occurrence int
}

// assignScrollIDs hands out stable IDs to the scroll containers of the
// current tree. Keys seen in the previous frame keep their ID, new keys draw
// from the cache's counter. It returns the ID map of the frame and the new
// table for the cache.
func (le *layoutEngine) assignScrollIDs(c *LayoutCache) (map[int]uint64, map[scrollKey]uint64, uint64) {
	var prev map[scrollKey]uint64
	var next uint64
	if c != nil {
		prev, next = c.scrollIDs, c.nextID
	}
	ids := make(map[int]uint64)
	table := make(map[scrollKey]uint64)
	seen := make(map[uint64]int)
	le.tree.Walk(func(idx int) bool {
		if !le.isScrollContainer(idx) {
			return true
		}
		h := le.node(idx).NodeDataHash
		key := scrollKey{hash: h, occurrence: seen[h]}
		seen[h]++
		id, ok := prev[key]
		if !ok {
			next++
			id = next
		}
		ids[idx] = id
		table[key] = id
		return true
	})
	return ids, table, next
}

// commit replaces the cache contents with the state of a finished frame.
func (c *LayoutCache) commit(le *layoutEngine, res *LayoutResult, table map[scrollKey]uint64, next uint64) {
	if c == nil {
		return
	}
	c.tree = le.tree
	c.positions = res.Positions
	c.viewport = le.viewport
	c.settings = le.cfg.settings()
	c.counters = res.Counters
	c.scrollIDs = table
	c.nextID = next
	c.frames++
}
