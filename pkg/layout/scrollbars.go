package layout

import (
	"math"

	"quill/pkg/css"
	"quill/pkg/geom"
)

// overflowEpsilon keeps sub-pixel overflow from rounding errors from
// producing scrollbars.
const overflowEpsilon = 1.0

// forcedScrollbars are the bars a node shows regardless of content:
// overflow: scroll on an axis.
func (le *layoutEngine) forcedScrollbars(idx int) ScrollbarInfo {
	if le.cfg.paged() {
		return ScrollbarInfo{}
	}
	x, y := le.overflow(idx)
	sb := ScrollbarInfo{Horizontal: x == css.OverflowScroll, Vertical: y == css.OverflowScroll}
	if sb.Horizontal || sb.Vertical {
		sb.Thickness = le.cfg.scrollbarThickness
	}
	return sb
}

// resetScrollbars drops the latched state of idx when it is laid out under
// new constraints, so that its scrollbars are decided afresh.
func (le *layoutEngine) resetScrollbars(idx int) {
	le.node(idx).Scrollbars = le.forcedScrollbars(idx)
}

// requiredScrollbars decides from the content overflow of idx which bars it
// needs. Overflow is compared with the content box it was measured in, so a
// new bar that narrows the inline axis is only taken into account after the
// content has been laid out again. A new bar across the block axis leaves
// the inline size unchanged, so the block axis is checked again at once.
func (le *layoutEngine) requiredScrollbars(idx int) ScrollbarInfo {
	need := le.forcedScrollbars(idx)
	n := le.node(idx)
	if le.cfg.paged() || !n.HasUsedSize {
		return need
	}
	x, y := le.overflow(idx)
	if x != css.OverflowAuto && y != css.OverflowAuto {
		return need
	}
	bp := n.BoxProps
	cur := n.Scrollbars.Reserved()
	// Content box the overflow was measured in.
	w := n.UsedSize.Width - bp.Border.Horizontal() - bp.Padding.Horizontal() - cur.Horizontal()
	h := n.UsedSize.Height - bp.Border.Vertical() - bp.Padding.Vertical() - cur.Vertical()
	t := le.cfg.scrollbarThickness
	ow, oh := n.OverflowSize.Width, n.OverflowSize.Height
	overflows := func(extent, avail float64) bool {
		return extent > math.Max(0, avail)+overflowEpsilon
	}
	if x == css.OverflowAuto && overflows(ow, w) {
		need.Horizontal = true
	}
	if y == css.OverflowAuto && overflows(oh, h) {
		need.Vertical = true
	}
	if n.Mode.IsVertical() {
		if need.Vertical && cur.Right == 0 && x == css.OverflowAuto && overflows(ow, w-t) {
			need.Horizontal = true
		}
	} else {
		if need.Horizontal && cur.Bottom == 0 && y == css.OverflowAuto && overflows(oh, h-t) {
			need.Vertical = true
		}
		if need.Vertical && cur.Right == 0 && x == css.OverflowAuto && overflows(le.fixedInlineExtent(idx), w-t) {
			need.Horizontal = true
		}
	}
	if need.Horizontal || need.Vertical {
		need.Thickness = t
	}
	return need
}

// fixedInlineExtent is the widest margin box of the in-flow block children
// of idx whose width and margins do not depend on the width of idx. Such a
// child keeps its extent in a narrower content box.
func (le *layoutEngine) fixedInlineExtent(idx int) float64 {
	if !le.blockFlow(idx) {
		return 0
	}
	extent := 0.0
	for _, ch := range le.node(idx).Children {
		cn := le.node(ch)
		if cn.FC.OutOfFlow || cn.Float != css.FloatNone || le.isOutsideMarker(ch) || !cn.HasUsedSize {
			continue
		}
		if le.marginDependsOnWidth(ch, css.PropMarginLeft) || le.marginDependsOnWidth(ch, css.PropMarginRight) {
			continue
		}
		sz := le.sizeProps(ch, true, nan, cn.BoxProps)
		if !isDefinite(sz.size) || math.Abs(geom.Clamp(sz.size, sz.min, sz.max)-cn.UsedSize.Width) > 1e-6 {
			continue
		}
		m := cn.BoxProps.Margin
		extent = math.Max(extent, m.Left+cn.UsedSize.Width+m.Right)
	}
	return extent
}

// marginDependsOnWidth reports an auto or percentage margin.
func (le *layoutEngine) marginDependsOnWidth(idx int, kind css.PropertyKind) bool {
	m := le.lengthOf(idx, kind)
	l, ok := m.Get()
	return m.IsAuto() || ok && l.IsPercent()
}

// settleScrollbars latches the scrollbars every scroll container needs
// after a pass. It returns the containers that gained a bar they did not
// reserve before; each requires another pass. Bars are never removed here.
func (le *layoutEngine) settleScrollbars() []int {
	if le.cfg.paged() {
		return nil
	}
	var grown []int
	for idx := range le.tree.Nodes {
		if !le.isScrollContainer(idx) || !le.node(idx).HasUsedSize {
			continue
		}
		n := le.node(idx)
		need := le.requiredScrollbars(idx)
		if n.Scrollbars.Covers(need) {
			continue
		}
		merged := n.Scrollbars.Union(need)
		le.debug(DebugScrollbarChange, idx, "scrollbars %s -> %s", n.Scrollbars, merged)
		tracer().Debugf("layout: #%d scrollbars %s -> %s", idx, n.Scrollbars, merged)
		n.Scrollbars = merged
		// Latched for the rest of the frame.
		le.visited[idx] = true
		le.invalidateMemo(idx)
		grown = append(grown, idx)
	}
	return grown
}
