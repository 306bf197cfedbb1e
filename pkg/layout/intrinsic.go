package layout

import (
	"math"

	"quill/pkg/css"
	"quill/pkg/geom"
)

// computeIntrinsicSizes recomputes the min- and max-content inline sizes of
// every node marked intrinsic-dirty, children before parents.
func (le *layoutEngine) computeIntrinsicSizes() {
	count := 0
	le.tree.PostOrder(func(idx int) {
		if le.intrinsicDirty != nil && !le.intrinsicDirty[idx] {
			return
		}
		n := le.node(idx)
		prev := n.Intrinsic
		n.Intrinsic = le.computeMinMax(idx)
		if le.intrinsicChanged != nil && n.Intrinsic != prev {
			le.intrinsicChanged[idx] = true
		}
		count++
	})
	tracer().Debugf("layout: intrinsic sizes for %d nodes", count)
}

// contribution is the outer (margin-box) intrinsic size of a child.
func (le *layoutEngine) contribution(child int, wm geom.WritingMode) IntrinsicSizes {
	cn := le.node(child)
	m := le.resolveBoxProps(child, nan).Margin.MainSum(wm)
	return IntrinsicSizes{MinContent: cn.Intrinsic.MinContent + m, MaxContent: cn.Intrinsic.MaxContent + m}
}

// computeMinMax returns the border-box intrinsic inline sizes of one node.
// Children must be up to date.
func (le *layoutEngine) computeMinMax(idx int) IntrinsicSizes {
	n := le.node(idx)
	horizontal := !n.Mode.IsVertical()
	bp := le.resolveBoxProps(idx, nan)
	isz := le.sizeProps(idx, horizontal, nan, bp)
	if !n.isReplaced && isDefinite(isz.size) && !le.intrinsicKeyword(idx, horizontal) {
		return IntrinsicSizes{MinContent: isz.size, MaxContent: isz.size}
	}
	in := le.contentMinMax(idx)
	if n.isReplaced || n.inlineBox {
		return in
	}
	in.MinContent = geom.NonNegative(isz.clamp(in.MinContent))
	in.MaxContent = math.Max(in.MinContent, geom.NonNegative(isz.clamp(in.MaxContent)))
	return in
}

// contentMinMax returns the border-box intrinsic inline sizes a node gets
// from its contents, ignoring its own width and min/max constraints.
func (le *layoutEngine) contentMinMax(idx int) IntrinsicSizes {
	n := le.node(idx)
	wm := n.Mode
	bp := le.resolveBoxProps(idx, nan)
	var in IntrinsicSizes
	switch {
	case n.isReplaced:
		bsz := le.sizeProps(idx, wm.IsVertical(), nan, bp)
		v := le.replacedInline(idx, bp, bsz, nan)
		return IntrinsicSizes{MinContent: v, MaxContent: v}
	case n.inlineBox:
		// Measured as part of their inline formatting context root.
		return IntrinsicSizes{}
	case n.FC.Kind == FlexContext:
		in = le.flexMinMax(idx)
	case n.FC.Kind == GridContext:
		in = le.gridMinMax(idx)
	case n.FC.Kind == TableContext:
		in.MinContent, in.MaxContent = le.tableMinMax(idx)
	case n.inlineRoot:
		in = le.measureInline(idx)
	default:
		in = le.blockMinMax(idx)
	}
	extra := bp.Border.MainSum(wm) + bp.Padding.MainSum(wm) + n.Scrollbars.Reserved().MainSum(wm)
	in.MinContent += extra
	in.MaxContent += extra
	return in
}

// blockMinMax stacks in-flow children: the widest child wins. Consecutive
// floats sit side by side at max-content.
func (le *layoutEngine) blockMinMax(idx int) IntrinsicSizes {
	n := le.node(idx)
	var in IntrinsicSizes
	floats := 0.0
	for _, ch := range n.Children {
		cn := le.node(ch)
		if cn.FC.OutOfFlow || le.isOutsideMarker(ch) {
			continue
		}
		c := le.contribution(ch, n.Mode)
		in.MinContent = math.Max(in.MinContent, c.MinContent)
		if cn.Float != css.FloatNone {
			if keywordOf(le, ch, css.PropClear, css.ClearNone) != css.ClearNone {
				floats = 0
			}
			floats += c.MaxContent
			in.MaxContent = math.Max(in.MaxContent, floats)
			continue
		}
		floats = 0
		in.MaxContent = math.Max(in.MaxContent, c.MaxContent)
	}
	return in
}

// flexMinMax sums item contributions along a row main axis (min-content too
// when the container does not wrap); a column container takes the widest
// item.
func (le *layoutEngine) flexMinMax(idx int) IntrinsicSizes {
	n := le.node(idx)
	column := keywordOf(le, idx, css.PropFlexDirection, css.FlexRow).IsColumn()
	wrap := keywordOf(le, idx, css.PropFlexWrap, css.FlexNowrap) != css.FlexNowrap
	gap := le.resolveOr(idx, css.PropColumnGap, nan, 0)
	var in IntrinsicSizes
	items := 0
	for _, ch := range n.Children {
		if le.node(ch).FC.OutOfFlow {
			continue
		}
		c := le.contribution(ch, n.Mode)
		switch {
		case column:
			in.MinContent = math.Max(in.MinContent, c.MinContent)
			in.MaxContent = math.Max(in.MaxContent, c.MaxContent)
		case wrap:
			in.MinContent = math.Max(in.MinContent, c.MinContent)
			in.MaxContent += c.MaxContent
		default:
			in.MinContent += c.MinContent
			in.MaxContent += c.MaxContent
		}
		items++
	}
	if !column && items > 1 {
		gaps := gap * float64(items-1)
		in.MaxContent += gaps
		if !wrap {
			in.MinContent += gaps
		}
	}
	return in
}

// gridMinMax places the items and sums per-column contributions. Fixed
// tracks count with their size.
func (le *layoutEngine) gridMinMax(idx int) IntrinsicSizes {
	g := &gridContainer{
		le:       le,
		idx:      idx,
		wm:       le.node(idx).Mode,
		inline:   nan,
		block:    nan,
		occupied: make(map[[2]int]bool),
	}
	g.colGap = le.resolveOr(idx, css.PropColumnGap, nan, 0)
	auto := css.TrackSize{Min: css.Breadth{Kind: css.BreadthAuto}, Max: css.Breadth{Kind: css.BreadthAuto}}
	g.autoCol = styleOf[css.TrackSize](le, idx, css.PropGridAutoColumns).Or(auto)
	g.autoRow = auto
	for _, ts := range styleOf[css.TrackList](le, idx, css.PropGridTemplateColumns).Or(nil) {
		g.cols = append(g.cols, &gridTrack{size: ts})
	}
	for _, ts := range styleOf[css.TrackList](le, idx, css.PropGridTemplateRows).Or(nil) {
		g.rows = append(g.rows, &gridTrack{size: ts})
	}
	g.placeItems()
	lo := make([]float64, len(g.cols))
	hi := make([]float64, len(g.cols))
	for k, t := range g.cols {
		if v, ok := g.breadth(t.size.Min, nan); ok {
			lo[k], hi[k] = v, v
		}
		if v, ok := g.breadth(t.size.Max, nan); ok {
			hi[k] = math.Max(lo[k], v)
		}
	}
	for _, it := range g.items {
		c := le.contribution(it.idx, g.wm)
		n := float64(it.area.colSpan)
		gaps := g.colGap * (n - 1)
		for k := it.area.col; k < it.area.col+it.area.colSpan; k++ {
			lo[k] = math.Max(lo[k], (c.MinContent-gaps)/n)
			hi[k] = math.Max(hi[k], (c.MaxContent-gaps)/n)
		}
	}
	var in IntrinsicSizes
	for k := range g.cols {
		in.MinContent += lo[k]
		in.MaxContent += math.Max(lo[k], hi[k])
	}
	if len(g.cols) > 1 {
		gaps := g.colGap * float64(len(g.cols)-1)
		in.MinContent += gaps
		in.MaxContent += gaps
	}
	return in
}

// intrinsicKeyword reports width (or height) set to min-content, max-content
// or fit-content, which depend on the sizes being computed.
func (le *layoutEngine) intrinsicKeyword(idx int, horizontal bool) bool {
	k := css.PropWidth
	if !horizontal {
		k = css.PropHeight
	}
	l, ok := le.lengthOf(idx, k).Get()
	return ok && l.IsIntrinsicKeyword()
}
