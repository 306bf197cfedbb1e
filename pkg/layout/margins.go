package layout

import (
	"math"

	"quill/pkg/css"
	"quill/pkg/dom"
	"quill/pkg/geom"
)

// marginSum accumulates adjoining margins: the largest positive and the most
// negative one. Their sum is the collapsed margin.
type marginSum struct {
	pos, neg float64
}

func (m marginSum) add(v float64) marginSum {
	if v > m.pos {
		m.pos = v
	}
	if v < m.neg {
		m.neg = v
	}
	return m
}

func (m marginSum) merge(o marginSum) marginSum {
	return marginSum{pos: math.Max(m.pos, o.pos), neg: math.Min(m.neg, o.neg)}
}

func (m marginSum) value() float64 { return m.pos + m.neg }

// inFlowBlock reports children taking part in block flow: not floated, not
// out of flow and not an outside marker.
func (le *layoutEngine) inFlowBlock(idx int) bool {
	n := le.node(idx)
	return !n.FC.OutOfFlow && n.Float == css.FloatNone && !le.isOutsideMarker(idx)
}

func (le *layoutEngine) isOutsideMarker(idx int) bool {
	n := le.node(idx)
	if n.Pseudo != dom.PseudoMarker || n.Parent < 0 {
		return false
	}
	return keywordOf(le, n.Parent, css.PropListStylePosition, css.ListStyleOutside) == css.ListStyleOutside
}

// collapsesWithChildren reports a block container whose margins adjoin the
// margins of its in-flow children.
func (le *layoutEngine) collapsesWithChildren(idx int) bool {
	n := le.node(idx)
	return idx != le.tree.Root && !n.FC.Independent && !n.isReplaced && !n.inlineRoot &&
		n.FC.Kind == BlockContext
}

// canCollapseTop reports whether the top margin of the first in-flow child
// collapses with the top margin of idx.
func (le *layoutEngine) canCollapseTop(idx int, bp geom.BoxProps) bool {
	wm := le.node(idx).Mode
	return le.collapsesWithChildren(idx) &&
		bp.Border.CrossStart(wm) == 0 && bp.Padding.CrossStart(wm) == 0
}

// canCollapseBottom reports whether the bottom margin of the last in-flow
// child collapses with the bottom margin of idx.
func (le *layoutEngine) canCollapseBottom(idx int, bp geom.BoxProps) bool {
	n := le.node(idx)
	wm := n.Mode
	if !le.collapsesWithChildren(idx) || bp.Border.CrossEnd(wm) != 0 || bp.Padding.CrossEnd(wm) != 0 {
		return false
	}
	horizontal := !wm.IsVertical()
	k := css.PropHeight
	if !horizontal {
		k = css.PropWidth
	}
	_, set := le.lengthOf(idx, k).Get()
	return !set
}

// isEmptyBlock reports a box whose top and bottom margins collapse through
// it: no block-axis border or padding, zero height and no in-flow content
// other than boxes of the same kind.
func (le *layoutEngine) isEmptyBlock(idx int, cbInline float64) bool {
	n := le.node(idx)
	if !le.collapsesWithChildren(idx) {
		return false
	}
	wm := n.Mode
	bp := le.resolveBoxProps(idx, cbInline)
	if bp.Border.CrossSum(wm) != 0 || bp.Padding.CrossSum(wm) != 0 {
		return false
	}
	hk, mk := css.PropHeight, css.PropMinHeight
	if wm.IsVertical() {
		hk, mk = css.PropWidth, css.PropMinWidth
	}
	if v, ok := le.resolve(idx, hk, nan); ok && v > 0 {
		return false
	}
	if v, ok := le.resolve(idx, mk, nan); ok && v > 0 {
		return false
	}
	inner := cbInline - bp.Margin.MainSum(wm) - bp.Border.MainSum(wm) - bp.Padding.MainSum(wm)
	for _, c := range n.Children {
		if le.inFlowBlock(c) && !le.isEmptyBlock(c, inner) {
			return false
		}
	}
	return true
}

// collapsedTop is the set of margins that collapse with the top margin of
// idx: its own, plus the chain through its first in-flow children.
func (le *layoutEngine) collapsedTop(idx int, cbInline float64) marginSum {
	n := le.node(idx)
	wm := n.Mode
	bp := le.resolveBoxProps(idx, cbInline)
	m := marginSum{}.add(bp.Margin.CrossStart(wm))
	if !le.canCollapseTop(idx, bp) {
		return m
	}
	inner := cbInline - bp.Margin.MainSum(wm) - bp.Border.MainSum(wm) - bp.Padding.MainSum(wm)
	for _, c := range n.Children {
		if !le.inFlowBlock(c) {
			continue
		}
		if keywordOf(le, c, css.PropClear, css.ClearNone) != css.ClearNone {
			break
		}
		m = m.merge(le.collapsedTop(c, inner))
		if !le.isEmptyBlock(c, inner) {
			break
		}
		cbp := le.resolveBoxProps(c, inner)
		m = m.add(cbp.Margin.CrossEnd(le.node(c).Mode))
	}
	return m
}
