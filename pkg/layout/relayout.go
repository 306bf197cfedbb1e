package layout

import (
	"math"

	"quill/pkg/css"
	"quill/pkg/geom"
)

// relayoutRoots lays out the layout roots of a frame. A root is laid out on
// its own when its size change can be absorbed by shifting the block flow
// around it; otherwise the work escalates to its formatting-context
// ancestor, up to the tree root.
func (le *layoutEngine) relayoutRoots(roots []int) {
	done := make(map[int]bool)
	covered := func(idx int) bool {
		for i := idx; i >= 0; i = le.tree.Nodes[i].Parent {
			if done[i] {
				return true
			}
		}
		return false
	}
	for _, r := range roots {
		for !covered(r) {
			if r == le.tree.Root {
				le.layoutRoot()
				return
			}
			if le.relayoutIsolated(r) {
				done[r] = true
				break
			}
			up := le.tree.nearestIndependent(r)
			le.debug(DebugReconcile, r, "escalating layout root to #%d", up)
			tracer().Debugf("layout: escalate #%d -> #%d", r, up)
			r = up
		}
	}
}

// relayoutIsolated lays out r again under the constraints of its last
// layout and moves everything after it in the enclosing block flows by the
// change of its block size. It returns false when r must be laid out by an
// ancestor instead.
func (le *layoutEngine) relayoutIsolated(r int) bool {
	if le.cfg.paged() || !le.isolatable(r) {
		return false
	}
	n := le.node(r)
	wm := n.memo.c.WritingMode
	chain, stop, ok := le.growthChain(r, wm)
	if !ok {
		return false
	}
	oldSize, oldBP, oldBaseline := n.UsedSize, n.BoxProps, n.memo.out.Baseline

	out := le.layoutNode(r, n.memo.c, nil)

	newCross, oldCross := out.Size.Cross(wm), oldSize.Cross(wm)
	if !sameFloat(out.Size.Main(wm), oldSize.Main(wm)) || n.BoxProps != oldBP {
		return false
	}
	if oldCross <= 0 || newCross <= 0 {
		return false
	}
	delta := newCross - oldCross
	if !sameFloat(out.Baseline, oldBaseline) || (math.IsNaN(out.Baseline) && delta != 0) {
		return false
	}
	le.invalidateMemo(n.Parent)
	if delta != 0 {
		le.shiftFollowing(r, chain, stop, delta)
	}
	le.debug(DebugReconcile, r, "relaid in isolation, block size %.2f -> %.2f", oldCross, newCross)
	return true
}

// isolatable checks the conditions on r itself: an in-flow block-level box
// of a block flow that has been laid out before.
func (le *layoutEngine) isolatable(r int) bool {
	n := le.node(r)
	if r == le.tree.Root || n.Parent < 0 || !n.HasUsedSize || n.memo.out.Positions == nil {
		return false
	}
	if n.FC.OutOfFlow || n.Float != css.FloatNone || le.isOutsideMarker(r) {
		return false
	}
	if !le.blockFlow(n.Parent) || le.node(n.Parent).Mode != n.memo.c.WritingMode {
		return false
	}
	for a := n.Parent; a >= 0; a = le.node(a).Parent {
		if le.intrinsicChanged != nil && le.intrinsicChanged[a] && le.contentSized(a) {
			return false
		}
	}
	return true
}

// growthChain collects the ancestors of r whose block size follows r's:
// auto-sized block flow containers that do not scroll, ending with the first
// one of definite size (stop) or the tree root (stop = -1).
func (le *layoutEngine) growthChain(r int, wm geom.WritingMode) (chain []int, stop int, ok bool) {
	for a := le.node(r).Parent; a >= 0; a = le.node(a).Parent {
		an := le.node(a)
		// Scrollbars of a container are decided afresh only when it is laid
		// out itself.
		if !le.blockFlow(a) || an.Mode != wm || !le.floatFree(a) || le.isScrollContainer(a) {
			return nil, -1, false
		}
		chain = append(chain, a)
		auto, fixed := le.blockSizing(a)
		switch {
		case fixed:
			if p := an.Parent; p >= 0 && !le.blockFlow(p) {
				return nil, -1, false
			}
			return chain, a, true
		case !auto:
			return nil, -1, false
		}
		if p := an.Parent; p >= 0 && !le.blockFlow(p) {
			return nil, -1, false
		}
	}
	return chain, -1, true
}

// shiftFollowing moves the block-flow siblings after r, and after each
// growing ancestor, by delta along the block axis and grows the ancestors up
// to stop.
func (le *layoutEngine) shiftFollowing(r int, chain []int, stop int, delta float64) {
	c := r
	for _, a := range chain {
		an := le.node(a)
		wm := an.Mode
		shift := geom.PosFromMainCross(wm, 0, delta)
		after := false
		for _, ch := range an.Children {
			if ch == c {
				after = true
				continue
			}
			if !after {
				continue
			}
			cn := le.node(ch)
			if cn.FC.OutOfFlow {
				cn.StaticPosition = cn.StaticPosition.Add(shift)
				continue
			}
			cn.RelativePosition = cn.RelativePosition.Add(shift)
		}
		an.contentCross += delta
		if a != stop {
			an.UsedSize = an.UsedSize.WithCross(wm, an.UsedSize.Cross(wm)+delta)
		}
		an.OverflowSize = an.OverflowSize.WithCross(wm, le.flowExtent(a))
		le.debug(DebugPositionCalculation, a, "block flow after #%d shifted by %.2f", c, delta)
		c = a
		if a == stop {
			return
		}
	}
}

// flowExtent is the block-axis overflow of a block flow container: its
// content extent or the farthest border box of an in-flow child.
func (le *layoutEngine) flowExtent(a int) float64 {
	an := le.node(a)
	wm := an.Mode
	inline := an.BoxProps.InnerSize(an.UsedSize, wm).Main(wm) - an.Scrollbars.Reserved().MainSum(wm)
	extent := an.contentCross
	for _, ch := range an.Children {
		cn := le.node(ch)
		if cn.FC.OutOfFlow || cn.Float != css.FloatNone || le.isOutsideMarker(ch) || le.isEmptyBlock(ch, inline) {
			continue
		}
		extent = math.Max(extent, cn.RelativePosition.Cross(wm)+cn.UsedSize.Cross(wm))
	}
	return extent
}

// blockFlow reports a block container whose children stack as block-level
// boxes.
func (le *layoutEngine) blockFlow(idx int) bool {
	n := le.node(idx)
	return n.FC.Kind == BlockContext && !n.inlineRoot && !n.inlineBox && !n.isReplaced
}

// floatFree reports that the block formatting context idx belongs to placed
// no floats in the last frame.
func (le *layoutEngine) floatFree(idx int) bool {
	root := idx
	if !le.node(idx).FC.Independent && idx != le.tree.Root {
		root = le.tree.nearestIndependent(idx)
	}
	return le.node(root).memo.out.Floats.IsEmpty()
}

// blockSizing classifies the block-axis size of idx: auto without min/max
// constraints, or a fixed length. Anything else is neither.
func (le *layoutEngine) blockSizing(idx int) (auto, fixed bool) {
	sizeK, minK, maxK := css.PropHeight, css.PropMinHeight, css.PropMaxHeight
	if le.node(idx).Mode.IsVertical() {
		sizeK, minK, maxK = css.PropWidth, css.PropMinWidth, css.PropMaxWidth
	}
	l, set := le.lengthOf(idx, sizeK).Get()
	if set {
		if l.IsPercent() || l.IsIntrinsicKeyword() {
			return false, false
		}
		return false, true
	}
	if m, set := le.lengthOf(idx, minK).Get(); set {
		if v, ok := le.resolve(idx, minK, nan); m.IsPercent() || (ok && v > 0) {
			return false, false
		}
	}
	if _, set := le.lengthOf(idx, maxK).Get(); set {
		return false, false
	}
	return true, false
}

// contentSized reports boxes whose inline size follows their intrinsic
// sizes.
func (le *layoutEngine) contentSized(idx int) bool {
	n := le.node(idx)
	if n.Float != css.FloatNone || n.FC.OutOfFlow || n.Display.IsInlineLevel() || n.FC.Kind == TableContext {
		return true
	}
	if le.intrinsicKeyword(idx, !n.Mode.IsVertical()) {
		return true
	}
	if n.Parent >= 0 {
		switch p := le.node(n.Parent); {
		case p.FC.Kind == FlexContext, p.FC.Kind == GridContext, p.FC.Kind == TableRowContext, p.inlineRoot:
			return true
		}
	}
	return false
}

// sameFloat compares sizes, treating two NaNs as equal.
func sameFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) < 1e-9
}
