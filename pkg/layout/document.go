package layout

import (
	"fmt"
	"image"
	"math"
	"sort"

	"quill/pkg/dom"
	"quill/pkg/geom"
)

// LayoutResult is the geometry of one frame, read by painters.
type LayoutResult struct {
	Tree *LayoutTree
	// Positions holds the absolute border-box origin of every laid out box.
	Positions map[int]geom.LogicalPosition
	// ScrollIDs are stable across frames for the same scroll container.
	ScrollIDs map[int]uint64
	Counters  map[CounterKey]int
	// Iterations is the number of layout passes the scrollbar settlement
	// needed.
	Iterations int
	// PageCount is the number of pages in paged mode, 0 otherwise.
	PageCount int
	// Roots are the layout roots reconciliation found for this frame.
	Roots []int
	// Floats maps block formatting context roots to the floats they placed.
	Floats map[int]*FloatingContext
}

// UsedSize returns the border-box size of a node, false if it was not laid
// out.
func (r *LayoutResult) UsedSize(idx int) (geom.LogicalSize, bool) {
	n := r.Tree.Node(idx)
	if n == nil || !n.HasUsedSize {
		return geom.LogicalSize{}, false
	}
	return n.UsedSize, true
}

// BoxProps returns the resolved margins, borders and paddings of a node.
func (r *LayoutResult) BoxProps(idx int) geom.BoxProps {
	if n := r.Tree.Node(idx); n != nil {
		return n.BoxProps
	}
	return geom.BoxProps{}
}

// ScrollbarInfo returns the scrollbars a node shows.
func (r *LayoutResult) ScrollbarInfo(idx int) ScrollbarInfo {
	if n := r.Tree.Node(idx); n != nil {
		return n.Scrollbars
	}
	return ScrollbarInfo{}
}

// MarkerText returns the text of a ::marker box, or of the marker of a list
// item.
func (r *LayoutResult) MarkerText(idx int) string {
	n := r.Tree.Node(idx)
	if n == nil {
		return ""
	}
	if n.Pseudo != dom.PseudoMarker {
		if idx = r.Tree.PseudoOf(idx, dom.PseudoMarker); idx < 0 {
			return ""
		}
		n = r.Tree.Node(idx)
	}
	return n.Text
}

// Rect returns the absolute border box of a node.
func (r *LayoutResult) Rect(idx int) geom.LogicalRect {
	size, _ := r.UsedSize(idx)
	return geom.LogicalRect{Origin: r.Positions[idx], Size: size}
}

// ContentOrigin returns the absolute origin of the content box of a node,
// the reference of its text runs.
func (r *LayoutResult) ContentOrigin(idx int) geom.LogicalPosition {
	n := r.Tree.Node(idx)
	if n == nil {
		return geom.LogicalPosition{}
	}
	return r.Positions[idx].Add(n.BoxProps.ContentOffset()).Add(n.contentShift)
}

// CounterValues lists the counters recorded on a node, sorted by name.
func (r *LayoutResult) CounterValues(idx int) []CounterKey {
	var keys []CounterKey
	for k := range r.Counters {
		if k.Node == idx {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys
}

// settings are the options that invalidate a cached frame when changed.
type settings struct {
	scrollbarThickness float64
	pageHeight         float64
	defaultFontSize    float64
}

func (c config) settings() settings {
	return settings{
		scrollbarThickness: c.scrollbarThickness,
		pageHeight:         c.pageHeight,
		defaultFontSize:    c.defaultFontSize,
	}
}

// LayoutDocument lays out a styled dom in a viewport. With a cache from the
// previous frame only the subtrees affected by changes are laid out again.
//
// The returned error is a *LayoutError. For SettlementNotConverged the
// result of the last pass is returned along with it. On any error the cache
// is left unchanged.
func LayoutDocument(d dom.StyledDom, viewport image.Rectangle, cache *LayoutCache, sink DebugSink, opts ...Option) (*LayoutResult, error) {
	if d == nil {
		return nil, invalidTree(-1, "no document")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	vp := geom.LogicalSize{Width: float64(viewport.Dx()), Height: float64(viewport.Dy())}
	le := newEngine(d, cfg, sink, vp)
	t, err := le.buildTree()
	if err != nil {
		tracer().Errorf("layout: %v", err)
		return nil, err
	}
	res := &LayoutResult{
		Tree:      t,
		Positions: map[int]geom.LogicalPosition{},
		ScrollIDs: map[int]uint64{},
		Counters:  map[CounterKey]int{},
	}
	if t.Len() == 0 {
		_, table, next := le.assignScrollIDs(cache)
		cache.commit(le, res, table, next)
		return res, nil
	}

	// Reconciliation against the previous frame.
	old := cache.Tree()
	if old != nil && cache.settings != cfg.settings() {
		old = nil
	}
	full := old == nil || vp != cache.Viewport()
	rec := le.reconcile(old)
	count := t.Len()
	le.visited = make([]bool, count)
	le.intrinsicChanged = make([]bool, count)
	if old != nil {
		le.intrinsicDirty = make([]bool, count)
		le.markIntrinsicDirty(rec.dirty)
		le.markIntrinsicDirty(rec.structural)
	}

	// Marker and generated text must exist before anything is measured.
	counters, changed := le.evaluateCounters()
	le.markIntrinsicDirty(changed)
	le.computeIntrinsicSizes()

	roots := le.layoutRoots(append(append([]int(nil), rec.dirty...), changed...), rec.structural, full)
	for _, r := range roots {
		le.invalidateMemo(r)
	}
	res.Roots = roots

	var settleErr error
	for {
		res.Iterations++
		if res.Iterations == 1 {
			le.relayoutRoots(roots)
		} else {
			le.layoutRoot()
		}
		le.propagatePositions()
		grown := le.settleScrollbars()
		if len(grown) == 0 {
			break
		}
		le.debug(DebugSettlement, -1, "pass %d: %d scroll containers gained scrollbars", res.Iterations, len(grown))
		if res.Iterations >= cfg.maxIterations {
			settleErr = &LayoutError{
				Kind: SettlementNotConverged,
				Node: grown[0],
				Err:  fmt.Errorf("scrollbars still changing after %d passes", res.Iterations),
			}
			break
		}
		le.intrinsicDirty = make([]bool, count)
		le.markIntrinsicDirty(grown)
		le.computeIntrinsicSizes()
	}

	res.Positions = le.positions
	res.Counters = counters
	res.Floats = le.floatContexts()
	ids, table, next := le.assignScrollIDs(cache)
	res.ScrollIDs = ids
	if cfg.paged() {
		res.PageCount = le.countPages()
	}
	tracer().Infof("layout: frame with %d boxes, %d roots, %d passes", count, len(roots), res.Iterations)
	if settleErr != nil {
		tracer().Errorf("%v", settleErr)
		return res, settleErr
	}
	cache.commit(le, res, table, next)
	return res, nil
}

// floatContexts collects the non-empty float contexts of the frame, placed
// in this frame or carried with an unchanged subtree.
func (le *layoutEngine) floatContexts() map[int]*FloatingContext {
	out := make(map[int]*FloatingContext)
	for idx, fc := range le.floats {
		if !fc.IsEmpty() {
			out[idx] = fc
		}
	}
	for idx := range le.tree.Nodes {
		if _, ok := out[idx]; ok {
			continue
		}
		if fc := le.tree.Nodes[idx].memo.out.Floats; !fc.IsEmpty() {
			out[idx] = fc
		}
	}
	return out
}

// countPages returns the number of pages the laid out boxes reach into.
func (le *layoutEngine) countPages() int {
	bottom := 0.0
	for idx, p := range le.positions {
		n := le.node(idx)
		if n.HasUsedSize {
			bottom = math.Max(bottom, p.Y+n.UsedSize.Height)
		}
	}
	pages := int(math.Ceil(bottom/le.cfg.pageHeight - 1e-9))
	if pages < 1 {
		pages = 1
	}
	return pages
}
