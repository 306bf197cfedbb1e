package layout

import (
	"math"
	"sort"

	"quill/pkg/css"
	"quill/pkg/geom"
)

// flexAxes maps flex main/cross coordinates to the container's writing
// mode. A row container's main axis is its inline axis.
type flexAxes struct {
	wm  geom.WritingMode
	row bool
}

func (a flexAxes) main(s geom.LogicalSize) float64 {
	if a.row {
		return s.Main(a.wm)
	}
	return s.Cross(a.wm)
}

func (a flexAxes) cross(s geom.LogicalSize) float64 {
	if a.row {
		return s.Cross(a.wm)
	}
	return s.Main(a.wm)
}

func (a flexAxes) size(main, cross float64) geom.LogicalSize {
	if a.row {
		return geom.SizeFromMainCross(a.wm, main, cross)
	}
	return geom.SizeFromMainCross(a.wm, cross, main)
}

func (a flexAxes) pos(main, cross float64) geom.LogicalPosition {
	if a.row {
		return geom.PosFromMainCross(a.wm, main, cross)
	}
	return geom.PosFromMainCross(a.wm, cross, main)
}

// edges returns main-start, main-end, cross-start and cross-end.
func (a flexAxes) edges(e geom.Edges) (ms, me, cs, ce float64) {
	if a.row {
		return e.MainStart(a.wm), e.MainEnd(a.wm), e.CrossStart(a.wm), e.CrossEnd(a.wm)
	}
	return e.CrossStart(a.wm), e.CrossEnd(a.wm), e.MainStart(a.wm), e.MainEnd(a.wm)
}

func (a flexAxes) autoEdges(am autoEdges) (ms, me, cs, ce bool) {
	if a.row {
		return am.mainStart(a.wm), am.mainEnd(a.wm), am.crossStart(a.wm), am.crossEnd(a.wm)
	}
	return am.crossStart(a.wm), am.crossEnd(a.wm), am.mainStart(a.wm), am.mainEnd(a.wm)
}

// mainIsWidth reports whether the main axis is physically horizontal.
func (a flexAxes) mainIsWidth() bool { return a.row != a.wm.IsVertical() }

type flexItem struct {
	idx                        int
	order                      int
	grow, shrink               float64
	base, hypo, target         float64 // border-box main sizes
	minMain, maxMain           float64
	frozen                     bool
	mStart, mEnd, cStart, cEnd float64
	autoMS, autoME             bool
	autoCS, autoCE             bool
	crossSize                  axisSize
	cross                      float64 // border-box cross size
	align                      css.Align
	mainPos, crossPos          float64
}

func (it *flexItem) outerMain(v float64) float64 { return v + it.mStart + it.mEnd }
func (it *flexItem) outerCross() float64         { return it.cross + it.cStart + it.cEnd }

type flexLine struct {
	items    []*flexItem
	cross    float64
	crossPos float64
	used     float64
}

type flexContainer struct {
	le           *layoutEngine
	idx          int
	ax           flexAxes
	direction    css.FlexDirection
	wrap         css.FlexWrap
	justify      css.Distribute
	alignItems   css.Align
	alignContent css.Distribute
	innerMain    float64 // NaN when indefinite
	innerCross   float64
	cbInline     float64
	mainGap      float64
	crossGap     float64
	items        []*flexItem
	lines        []*flexLine
}

// layoutFlex implements the flex layout algorithm for the items of idx: base
// sizes, line breaking, resolution of flexible lengths, cross sizing with
// stretch, and main/cross alignment.
func (le *layoutEngine) layoutFlex(idx int, c LayoutConstraints) contentResult {
	wm := c.WritingMode
	direction := keywordOf(le, idx, css.PropFlexDirection, css.FlexRow)
	ax := flexAxes{wm: wm, row: !direction.IsColumn()}
	fc := &flexContainer{
		le:           le,
		idx:          idx,
		ax:           ax,
		direction:    direction,
		wrap:         keywordOf(le, idx, css.PropFlexWrap, css.FlexNowrap),
		justify:      keywordOf(le, idx, css.PropJustifyContent, css.DistributeNormal),
		alignItems:   keywordOf(le, idx, css.PropAlignItems, css.AlignNormal),
		alignContent: keywordOf(le, idx, css.PropAlignContent, css.DistributeNormal),
		innerMain:    ax.main(c.AvailableSize),
		innerCross:   ax.cross(c.AvailableSize),
		cbInline:     c.AvailableSize.Main(wm),
	}
	colGap := le.resolveOr(idx, css.PropColumnGap, fc.cbInline, 0)
	rowGap := le.resolveOr(idx, css.PropRowGap, c.AvailableSize.Cross(wm), 0)
	fc.mainGap, fc.crossGap = colGap, rowGap
	if !ax.row {
		fc.mainGap, fc.crossGap = rowGap, colGap
	}

	fc.createFlexItems()
	fc.sortFlexItemsByOrder()
	fc.createFlexLines()
	for _, ln := range fc.lines {
		fc.resolveFlexibleLengths(ln)
	}
	fc.determineCrossSizes()
	fc.alignCrossAxis()
	fc.distributeMainAxis()
	return fc.result()
}

func (fc *flexContainer) createFlexItems() {
	le := fc.le
	ax := fc.ax
	for _, ch := range le.node(fc.idx).Children {
		cn := le.node(ch)
		if cn.FC.OutOfFlow {
			cn.StaticPosition = geom.LogicalPosition{}
			continue
		}
		it := &flexItem{
			idx:    ch,
			order:  styleOf[int](le, ch, css.PropOrder).Or(0),
			grow:   styleOf[float64](le, ch, css.PropFlexGrow).Or(0),
			shrink: styleOf[float64](le, ch, css.PropFlexShrink).Or(1),
		}
		bp := le.resolveBoxProps(ch, fc.cbInline)
		cn.BoxProps = bp
		it.mStart, it.mEnd, it.cStart, it.cEnd = ax.edges(bp.Margin)
		it.autoMS, it.autoME, it.autoCS, it.autoCE = ax.autoEdges(le.autoMargins(ch))
		mainSz := le.sizeProps(ch, ax.mainIsWidth(), fc.innerMain, bp)
		it.crossSize = le.sizeProps(ch, !ax.mainIsWidth(), fc.innerCross, bp)
		it.maxMain = mainSz.max

		base := nan
		if l, ok := le.lengthOf(ch, css.PropFlexBasis).Get(); ok && !l.IsIntrinsicKeyword() {
			if v, ok := l.Resolve(le.resolveContext(ch, fc.innerMain)); ok {
				extra := 0.0
				if le.boxSizing(ch) == css.ContentBox {
					bs, be, _, _ := ax.edges(bp.Border)
					ps, pe, _, _ := ax.edges(bp.Padding)
					extra = bs + be + ps + pe
				}
				base = math.Max(0, v+extra)
			}
		}
		if !isDefinite(base) && isDefinite(mainSz.size) {
			base = mainSz.size
		}
		if !isDefinite(base) {
			base = fc.contentMain(it, false)
		}
		it.base = base

		minK := css.PropMinWidth
		if !ax.mainIsWidth() {
			minK = css.PropMinHeight
		}
		it.minMain = mainSz.min
		if _, set := le.lengthOf(ch, minK).Get(); !set && !le.isScrollContainer(ch) {
			auto := fc.contentMain(it, true)
			if isDefinite(mainSz.size) {
				auto = math.Min(auto, mainSz.size)
			}
			if isDefinite(it.maxMain) {
				auto = math.Min(auto, it.maxMain)
			}
			it.minMain = auto
		}
		it.hypo = geom.Clamp(it.base, it.minMain, it.maxMain)
		fc.items = append(fc.items, it)
	}
}

// contentMain is the content-based main size of an item: its min- or
// max-content inline size for rows, its laid out block size for columns.
// The min-content size comes from the contents alone, a specified width or
// height does not raise it.
func (fc *flexContainer) contentMain(it *flexItem, min bool) float64 {
	le := fc.le
	cn := le.node(it.idx)
	if fc.ax.row {
		if min {
			return le.contentMinMax(it.idx).MinContent
		}
		return cn.Intrinsic.MaxContent
	}
	avail := fc.ax.size(nan, fc.innerCross-it.cStart-it.cEnd)
	out := le.layoutNode(it.idx, LayoutConstraints{
		AvailableSize:       avail,
		WritingMode:         fc.ax.wm,
		ContainingBlockSize: fc.ax.size(fc.innerMain, fc.innerCross),
		ForcedSize:          nanSize(),
	}, nil)
	if min && !cn.isReplaced {
		wm := cn.Mode
		return cn.contentCross + cn.BoxProps.Border.CrossSum(wm) + cn.BoxProps.Padding.CrossSum(wm) +
			cn.Scrollbars.Reserved().CrossSum(wm)
	}
	return fc.ax.main(out.Size)
}

func (fc *flexContainer) sortFlexItemsByOrder() {
	sort.SliceStable(fc.items, func(i, j int) bool {
		return fc.items[i].order < fc.items[j].order
	})
}

func (fc *flexContainer) createFlexLines() {
	if fc.wrap == css.FlexNowrap || !isDefinite(fc.innerMain) {
		if len(fc.items) > 0 {
			fc.lines = []*flexLine{{items: fc.items}}
		}
		return
	}
	var cur *flexLine
	used := 0.0
	for _, it := range fc.items {
		w := it.outerMain(it.hypo)
		if cur != nil && len(cur.items) > 0 && used+fc.mainGap+w > fc.innerMain+1e-6 {
			cur = nil
		}
		if cur == nil {
			cur = &flexLine{}
			fc.lines = append(fc.lines, cur)
			used = 0
		} else {
			used += fc.mainGap
		}
		cur.items = append(cur.items, it)
		used += w
	}
}

// resolveFlexibleLengths distributes free space among the items of a line,
// freezing items that violate their min/max constraints.
func (fc *flexContainer) resolveFlexibleLengths(ln *flexLine) {
	gaps := fc.mainGap * float64(len(ln.items)-1)
	if !isDefinite(fc.innerMain) {
		for _, it := range ln.items {
			it.target = it.hypo
		}
		return
	}
	sumHypo := gaps
	for _, it := range ln.items {
		sumHypo += it.outerMain(it.hypo)
	}
	growing := sumHypo < fc.innerMain
	for _, it := range ln.items {
		it.frozen = false
		it.target = it.base
		factor := it.shrink
		if growing {
			factor = it.grow
		}
		if factor == 0 || (growing && it.base > it.hypo) || (!growing && it.base < it.hypo) {
			it.target = it.hypo
			it.frozen = true
		}
	}
	free := func() float64 {
		f := fc.innerMain - gaps
		for _, it := range ln.items {
			if it.frozen {
				f -= it.outerMain(it.target)
			} else {
				f -= it.outerMain(it.base)
			}
		}
		return f
	}
	initial := free()
	for iter := 0; iter <= len(ln.items); iter++ {
		var unfrozen []*flexItem
		sumFlex := 0.0
		for _, it := range ln.items {
			if !it.frozen {
				unfrozen = append(unfrozen, it)
				if growing {
					sumFlex += it.grow
				} else {
					sumFlex += it.shrink
				}
			}
		}
		if len(unfrozen) == 0 {
			break
		}
		remaining := free()
		if sumFlex < 1 && math.Abs(initial*sumFlex) < math.Abs(remaining) {
			remaining = initial * sumFlex
		}
		if growing {
			for _, it := range unfrozen {
				if sumFlex > 0 {
					it.target = it.base + remaining*it.grow/sumFlex
				}
			}
		} else {
			sumScaled := 0.0
			for _, it := range unfrozen {
				sumScaled += it.shrink * it.base
			}
			for _, it := range unfrozen {
				if sumScaled > 0 {
					it.target = it.base + remaining*(it.shrink*it.base)/sumScaled
				}
			}
		}
		total := 0.0
		viol := make(map[*flexItem]float64, len(unfrozen))
		for _, it := range unfrozen {
			clamped := math.Max(0, geom.Clamp(it.target, it.minMain, it.maxMain))
			viol[it] = clamped - it.target
			total += clamped - it.target
			it.target = clamped
		}
		for _, it := range unfrozen {
			switch {
			case math.Abs(total) < 1e-9:
				it.frozen = true
			case total > 0 && viol[it] > 0:
				it.frozen = true
			case total < 0 && viol[it] < 0:
				it.frozen = true
			}
		}
	}
}

// layoutItem lays out an item at its target main size and the given cross
// size (NaN to size from content).
func (fc *flexContainer) layoutItem(it *flexItem, cross float64) LayoutOutput {
	ax := fc.ax
	return fc.le.layoutNode(it.idx, LayoutConstraints{
		AvailableSize:       ax.size(it.outerMain(it.target), fc.innerCross),
		WritingMode:         ax.wm,
		ContainingBlockSize: ax.size(fc.innerMain, fc.innerCross),
		ForcedSize:          ax.size(it.target, cross),
	}, nil)
}

func (fc *flexContainer) itemAlign(it *flexItem) css.Align {
	a := keywordOf(fc.le, it.idx, css.PropAlignSelf, css.AlignAuto)
	if a == css.AlignAuto {
		a = fc.alignItems
	}
	if a == css.AlignNormal {
		a = css.AlignStretch
	}
	return a
}

// determineCrossSizes computes hypothetical cross sizes, line cross sizes
// (with align-content) and applies stretch.
func (fc *flexContainer) determineCrossSizes() {
	for _, ln := range fc.lines {
		for _, it := range ln.items {
			it.align = fc.itemAlign(it)
			if isDefinite(it.crossSize.size) {
				it.cross = it.crossSize.size
			} else {
				it.cross = fc.ax.cross(fc.layoutItem(it, nan).Size)
			}
			ln.cross = math.Max(ln.cross, it.outerCross())
		}
	}
	if len(fc.lines) == 1 && isDefinite(fc.innerCross) {
		fc.lines[0].cross = fc.innerCross
	}
	total := fc.crossGap * float64(len(fc.lines)-1)
	for _, ln := range fc.lines {
		total += ln.cross
	}
	free := 0.0
	if isDefinite(fc.innerCross) {
		free = fc.innerCross - total
	}
	start, between := 0.0, 0.0
	if len(fc.lines) > 1 {
		switch fc.alignContent {
		case css.DistributeNormal, css.DistributeStretch:
			if free > 0 {
				for _, ln := range fc.lines {
					ln.cross += free / float64(len(fc.lines))
				}
			}
		default:
			start, between = distribute(fc.alignContent, free, len(fc.lines))
		}
	}
	pos := start
	for _, ln := range fc.lines {
		ln.crossPos = pos
		pos += ln.cross + fc.crossGap + between
	}
	if fc.wrap == css.FlexWrapReverse {
		extent := pos - fc.crossGap - between
		if isDefinite(fc.innerCross) {
			extent = math.Max(extent, fc.innerCross)
		}
		for _, ln := range fc.lines {
			ln.crossPos = extent - ln.crossPos - ln.cross
		}
	}
	for _, ln := range fc.lines {
		for _, it := range ln.items {
			if it.align == css.AlignStretch && !isDefinite(it.crossSize.size) && !it.autoCS && !it.autoCE {
				it.cross = math.Max(0, it.crossSize.clamp(ln.cross-it.cStart-it.cEnd))
			}
			fc.layoutItem(it, it.cross)
		}
	}
}

// distribute returns the leading offset and extra spacing for justify-content
// and align-content values other than stretch.
func distribute(d css.Distribute, free float64, n int) (start, between float64) {
	switch d {
	case css.DistributeFlexEnd, css.DistributeEnd:
		return free, 0
	case css.DistributeCenter:
		return free / 2, 0
	case css.DistributeSpaceBetween:
		if free <= 0 || n < 2 {
			return 0, 0
		}
		return 0, free / float64(n-1)
	case css.DistributeSpaceAround:
		if free <= 0 {
			return free / 2, 0
		}
		return free / float64(n) / 2, free / float64(n)
	case css.DistributeSpaceEvenly:
		if free <= 0 {
			return free / 2, 0
		}
		return free / float64(n+1), free / float64(n+1)
	}
	return 0, 0
}

func (fc *flexContainer) alignCrossAxis() {
	for _, ln := range fc.lines {
		for _, it := range ln.items {
			free := ln.cross - it.outerCross()
			off := 0.0
			switch {
			case it.autoCS && it.autoCE:
				off = math.Max(0, free) / 2
			case it.autoCS:
				off = math.Max(0, free)
			case it.autoCE:
			case it.align == css.AlignFlexEnd || it.align == css.AlignEnd:
				off = free
			case it.align == css.AlignCenter:
				off = free / 2
			}
			it.crossPos = ln.crossPos + off + it.cStart
		}
	}
}

func (fc *flexContainer) distributeMainAxis() {
	le := fc.le
	for _, ln := range fc.lines {
		used := fc.mainGap * float64(len(ln.items)-1)
		autos := 0
		for _, it := range ln.items {
			used += it.outerMain(it.target)
			if it.autoMS {
				autos++
			}
			if it.autoME {
				autos++
			}
		}
		ln.used = used
		extent := used
		if isDefinite(fc.innerMain) {
			extent = fc.innerMain
		}
		free := extent - used
		var start, between, perAuto float64
		if free > 0 && autos > 0 {
			perAuto = free / float64(autos)
		} else {
			start, between = distribute(fc.justify, free, len(ln.items))
		}
		pos := start
		for _, it := range ln.items {
			if it.autoMS {
				pos += perAuto
			}
			pos += it.mStart
			it.mainPos = pos
			pos += it.target + it.mEnd + fc.mainGap + between
			if it.autoME {
				pos += perAuto
			}
			if fc.direction.IsReverse() {
				it.mainPos = extent - it.mainPos - it.target
			}
			le.node(it.idx).RelativePosition = fc.ax.pos(it.mainPos, it.crossPos)
		}
	}
}

func (fc *flexContainer) result() contentResult {
	res := emptyContent()
	var mainExt, crossExt, totalCross float64
	for i, ln := range fc.lines {
		mainExt = math.Max(mainExt, ln.used)
		if i > 0 {
			totalCross += fc.crossGap
		}
		totalCross += ln.cross
		for _, it := range ln.items {
			mainExt = math.Max(mainExt, it.mainPos+it.target+it.mEnd)
			crossExt = math.Max(crossExt, it.crossPos+it.cross+it.cEnd)
		}
	}
	for _, ln := range fc.lines {
		crossExt = math.Max(crossExt, ln.crossPos+ln.cross)
	}
	if fc.ax.row {
		res.cross = totalCross
	} else {
		res.cross = mainExt
		if len(fc.lines) > 0 {
			res.cross = fc.lines[0].used
			for _, ln := range fc.lines {
				res.cross = math.Max(res.cross, ln.used)
			}
		}
	}
	res.overflow = fc.ax.size(mainExt, crossExt)
	return res
}
