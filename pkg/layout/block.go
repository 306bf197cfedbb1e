package layout

import (
	"math"

	"quill/pkg/css"
	"quill/pkg/geom"
)

// layoutBlock stacks the in-flow children of idx along the block axis,
// collapsing adjoining margins, placing floats and clearing them, and
// recording static positions of out-of-flow children. c describes the
// content box of idx.
func (le *layoutEngine) layoutBlock(idx int, c LayoutConstraints, bfc *bfcState) contentResult {
	n := le.node(idx)
	wm := c.WritingMode
	inline := c.AvailableSize.Main(wm)
	res := emptyContent()

	atTop := le.canCollapseTop(idx, n.BoxProps)
	var cursor, maxMain, maxCross float64
	var pending marginSum
	next := func() float64 {
		if atTop {
			return cursor
		}
		return cursor + pending.value()
	}
	extend := func(r geom.LogicalRect) {
		maxMain = math.Max(maxMain, r.Origin.X+r.Size.Width)
		maxCross = math.Max(maxCross, r.Origin.Y+r.Size.Height)
	}

	for _, child := range n.Children {
		cn := le.node(child)
		switch {
		case cn.FC.OutOfFlow:
			cn.StaticPosition = geom.PosFromMainCross(wm, 0, next())
			continue
		case le.isOutsideMarker(child):
			continue
		case cn.Float != css.FloatNone:
			extend(le.layoutFloat(child, c, bfc, next()))
			continue
		}

		cbp := le.resolveBoxProps(child, inline)
		top := le.collapsedTop(child, inline)
		clear := keywordOf(le, child, css.PropClear, css.ClearNone)
		if clear != css.ClearNone {
			atTop = false
		}
		if le.isEmptyBlock(child, inline) && clear == css.ClearNone {
			pending = pending.merge(top)
			y := next()
			out := le.layoutChild(child, c, bfc, y)
			cn.RelativePosition = geom.PosFromMainCross(wm, out.x, y)
			pending = pending.merge(out.marginBottom)
			continue
		}

		var y float64
		if atTop {
			y = cursor
		} else {
			y = cursor + pending.merge(top).value()
		}
		if clear != css.ClearNone {
			cleared := bfc.floats.Clearance(clear, bfc.cross+y) - bfc.cross
			y = math.Max(y, cleared)
		}
		if le.cfg.paged() {
			y = le.breakBefore(child, bfc, y)
		}
		out := le.layoutChild(child, c, bfc, y)
		if le.cfg.paged() {
			if moved := le.avoidBreak(child, bfc, y, out.Size.Cross(wm)); moved != y {
				y = moved
				out = le.layoutChild(child, c, bfc, y)
			}
		}
		cn.RelativePosition = geom.PosFromMainCross(wm, out.x, y)
		cursor = y + out.Size.Cross(wm)
		pending = out.marginBottom
		atTop = false
		if math.IsNaN(res.baseline) && !math.IsNaN(out.Baseline) {
			res.baseline = y + out.Baseline
		}
		extend(geom.Rect(out.x, y, out.Size.Main(wm)+cbp.Margin.MainEnd(wm), out.Size.Cross(wm)))
		if le.cfg.paged() && keywordOf(le, child, css.PropBreakAfter, css.BreakAuto) == css.BreakPage {
			cursor = le.nextPageLocal(bfc, cursor)
			pending = marginSum{}
		}
	}

	if le.canCollapseBottom(idx, n.BoxProps) {
		res.cross = cursor
		res.marginBottom = pending
	} else if atTop {
		res.cross = cursor
	} else {
		res.cross = cursor + pending.value()
	}
	res.overflow = geom.SizeFromMainCross(wm, maxMain, math.Max(maxCross, res.cross))
	return res
}

// childPlacement is the output of a block-level child together with the
// inline offset it was placed at.
type childPlacement struct {
	LayoutOutput
	x float64
}

// layoutChild lays out a block-level child at block offset y. Boxes that
// establish a formatting context avoid the floats of the enclosing BFC; auto
// inline margins center or push the box inside the remaining space.
func (le *layoutEngine) layoutChild(child int, c LayoutConstraints, bfc *bfcState, y float64) childPlacement {
	wm := c.WritingMode
	inline := c.AvailableSize.Main(wm)
	cn := le.node(child)
	avail, offset := inline, 0.0
	if cn.FC.Independent && !bfc.floats.IsEmpty() {
		start, end := bfc.floats.AvailableInlineSize(bfc.cross+y, 0, bfc.main, bfc.main+inline)
		offset, avail = start-bfc.main, math.Max(0, end-start)
	}
	cc := LayoutConstraints{
		AvailableSize:       c.AvailableSize.WithMain(wm, avail),
		WritingMode:         wm,
		TextAlign:           c.TextAlign,
		ContainingBlockSize: c.ContainingBlockSize,
		ForcedSize:          nanSize(),
	}
	cbp := le.resolveBoxProps(child, inline)
	w, _, _ := le.usedSizeForNode(child, cc, cbp)
	x := offset + cbp.Margin.MainStart(wm)
	if free := avail - w - cbp.Margin.MainSum(wm); free > 0 {
		am := le.autoMargins(child)
		switch {
		case am.mainStart(wm) && am.mainEnd(wm):
			x += free / 2
		case am.mainStart(wm):
			x += free
		}
	}
	out := le.layoutNode(child, cc, bfc.at(x, y))
	return childPlacement{LayoutOutput: out, x: x}
}

// layoutFloat lays out a floated child whose top may not be above local
// block offset y, records it in the BFC and returns its margin box relative
// to the content box of the container.
func (le *layoutEngine) layoutFloat(child int, c LayoutConstraints, bfc *bfcState, y float64) geom.LogicalRect {
	wm := c.WritingMode
	inline := c.AvailableSize.Main(wm)
	cn := le.node(child)
	if clear := keywordOf(le, child, css.PropClear, css.ClearNone); clear != css.ClearNone {
		y = math.Max(y, bfc.floats.Clearance(clear, bfc.cross+y)-bfc.cross)
	}
	cc := LayoutConstraints{
		AvailableSize:       c.AvailableSize,
		WritingMode:         wm,
		TextAlign:           c.TextAlign,
		ContainingBlockSize: c.ContainingBlockSize,
		ForcedSize:          nanSize(),
	}
	out := le.layoutNode(child, cc, bfc.at(0, y))
	m := cn.BoxProps.Margin
	mw := out.Size.Main(wm) + m.MainSum(wm)
	mh := out.Size.Cross(wm) + m.CrossSum(wm)
	pos := bfc.floats.Place(child, cn.Float, mw, mh, bfc.cross+y, bfc.main, bfc.main+inline)
	lm, lc := pos.X-bfc.main, pos.Y-bfc.cross
	cn.RelativePosition = geom.PosFromMainCross(wm, lm+m.MainStart(wm), lc+m.CrossStart(wm))
	le.debug(DebugPositionCalculation, child, "float %s placed at (%.1f, %.1f)", cn.Float, lm, lc)
	return geom.Rect(lm, lc, mw, mh)
}

// nextPageLocal returns the local block offset of the first page boundary
// after y, or y when y already sits on a boundary.
func (le *layoutEngine) nextPageLocal(bfc *bfcState, y float64) float64 {
	ph := le.cfg.pageHeight
	abs := bfc.absCross(y)
	rem := math.Mod(abs, ph)
	if rem < 1e-6 || ph-rem < 1e-6 {
		return y
	}
	return y + ph - rem
}

// breakBefore honors break-before: page.
func (le *layoutEngine) breakBefore(child int, bfc *bfcState, y float64) float64 {
	if keywordOf(le, child, css.PropBreakBefore, css.BreakAuto) != css.BreakPage {
		return y
	}
	if bfc.absCross(y) < 1e-6 {
		return y
	}
	return le.nextPageLocal(bfc, y)
}

// avoidBreak moves an unbreakable box that straddles a page boundary to the
// next page. Boxes taller than a page stay.
func (le *layoutEngine) avoidBreak(child int, bfc *bfcState, y, size float64) float64 {
	cn := le.node(child)
	monolithic := cn.isReplaced || cn.Display.IsInlineLevel() ||
		keywordOf(le, child, css.PropBreakInside, css.BreakAuto) == css.BreakAvoid
	ph := le.cfg.pageHeight
	if !monolithic || size > ph || size <= 0 {
		return y
	}
	abs := bfc.absCross(y)
	if math.Floor(abs/ph+1e-9) == math.Floor((abs+size-1e-6)/ph) {
		return y
	}
	return le.nextPageLocal(bfc, y)
}
