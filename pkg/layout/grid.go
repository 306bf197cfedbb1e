package layout

import (
	"math"

	"quill/pkg/css"
	"quill/pkg/geom"
)

// gridTrack is one row or column with its sizing function and the base
// size and growth limit of the track sizing algorithm.
type gridTrack struct {
	size    css.TrackSize
	base    float64
	limit   float64 // +Inf until resolved
	maxWant float64 // largest max-content contribution, used for fr tracks
	offset  float64
}

func (t *gridTrack) flexible() bool { return t.size.Max.Kind == css.BreadthFr }

// gridArea is the placement of one item: zero-based start line and span on
// each axis.
type gridArea struct {
	col, row         int
	colSpan, rowSpan int
}

type gridItem struct {
	idx  int
	area gridArea
	bp   geom.BoxProps
}

type gridContainer struct {
	le       *layoutEngine
	idx      int
	wm       geom.WritingMode
	inline   float64 // content-box inline size
	block    float64 // NaN when indefinite
	colGap   float64
	rowGap   float64
	cols     []*gridTrack
	rows     []*gridTrack
	autoCol  css.TrackSize
	autoRow  css.TrackSize
	items    []*gridItem
	occupied map[[2]int]bool
}

// layoutGrid places the children of idx into the explicit and implicit grid,
// sizes the columns and then the rows, and aligns each item inside its area.
func (le *layoutEngine) layoutGrid(idx int, c LayoutConstraints) contentResult {
	wm := c.WritingMode
	g := &gridContainer{
		le:       le,
		idx:      idx,
		wm:       wm,
		inline:   c.AvailableSize.Main(wm),
		block:    c.AvailableSize.Cross(wm),
		occupied: make(map[[2]int]bool),
	}
	g.colGap = le.resolveOr(idx, css.PropColumnGap, g.inline, 0)
	g.rowGap = le.resolveOr(idx, css.PropRowGap, g.block, 0)
	auto := css.TrackSize{Min: css.Breadth{Kind: css.BreadthAuto}, Max: css.Breadth{Kind: css.BreadthAuto}}
	g.autoCol = styleOf[css.TrackSize](le, idx, css.PropGridAutoColumns).Or(auto)
	g.autoRow = styleOf[css.TrackSize](le, idx, css.PropGridAutoRows).Or(auto)
	for _, ts := range styleOf[css.TrackList](le, idx, css.PropGridTemplateColumns).Or(nil) {
		g.cols = append(g.cols, &gridTrack{size: ts})
	}
	for _, ts := range styleOf[css.TrackList](le, idx, css.PropGridTemplateRows).Or(nil) {
		g.rows = append(g.rows, &gridTrack{size: ts})
	}

	g.placeItems()
	g.sizeTracks(g.cols, g.inline, g.colGap, true)
	g.sizeTracks(g.rows, g.block, g.rowGap, false)
	colExt := g.assignOffsets(g.cols, g.colGap)
	rowExt := g.assignOffsets(g.rows, g.rowGap)
	for _, it := range g.items {
		g.alignItem(it)
	}
	for _, ch := range le.node(idx).Children {
		if le.node(ch).FC.OutOfFlow {
			le.node(ch).StaticPosition = geom.LogicalPosition{}
		}
	}

	res := emptyContent()
	res.cross = rowExt
	res.overflow = geom.SizeFromMainCross(wm, colExt, rowExt)
	return res
}

// resolveLine turns a start/end pair into a zero-based start and a span.
// ok is false when the start is auto.
func resolveLine(start, end css.GridLine, explicit int) (pos, span int, ok bool) {
	line := func(l int) int {
		if l < 0 {
			return explicit + 1 + l
		}
		return l - 1
	}
	span = 1
	switch {
	case start.Line != 0 && end.Line != 0:
		a, b := line(start.Line), line(end.Line)
		if b < a {
			a, b = b, a
		}
		return max(0, a), max(1, b-a), true
	case start.Line != 0:
		if end.Span > 0 {
			span = end.Span
		}
		return max(0, line(start.Line)), span, true
	case end.Line != 0:
		if start.Span > 0 {
			span = start.Span
		}
		return max(0, line(end.Line)-span), span, true
	}
	if start.Span > 0 {
		span = start.Span
	} else if end.Span > 0 {
		span = end.Span
	}
	return 0, span, false
}

func (g *gridContainer) fits(a gridArea) bool {
	for r := a.row; r < a.row+a.rowSpan; r++ {
		for c := a.col; c < a.col+a.colSpan; c++ {
			if g.occupied[[2]int{r, c}] {
				return false
			}
		}
	}
	return true
}

func (g *gridContainer) occupy(a gridArea) {
	for r := a.row; r < a.row+a.rowSpan; r++ {
		for c := a.col; c < a.col+a.colSpan; c++ {
			g.occupied[[2]int{r, c}] = true
		}
	}
}

// placeItems runs grid item placement: items with a definite row and column
// first, then the remaining ones in document order following
// grid-auto-flow, with a sparse cursor.
func (g *gridContainer) placeItems() {
	le := g.le
	flow := keywordOf(le, g.idx, css.PropGridAutoFlow, css.GridFlowRow)
	explicitCols, explicitRows := len(g.cols), len(g.rows)
	type pending struct {
		it                 *gridItem
		colFixed, rowFixed bool
	}
	var rest []pending
	for _, ch := range le.node(g.idx).Children {
		if le.node(ch).FC.OutOfFlow {
			continue
		}
		gl := func(k css.PropertyKind) css.GridLine { return styleOf[css.GridLine](le, ch, k).Or(css.GridLine{}) }
		it := &gridItem{idx: ch}
		var colOK, rowOK bool
		it.area.col, it.area.colSpan, colOK = resolveLine(gl(css.PropGridColumnStart), gl(css.PropGridColumnEnd), explicitCols)
		it.area.row, it.area.rowSpan, rowOK = resolveLine(gl(css.PropGridRowStart), gl(css.PropGridRowEnd), explicitRows)
		g.items = append(g.items, it)
		if colOK && rowOK {
			g.occupy(it.area)
			continue
		}
		rest = append(rest, pending{it: it, colFixed: colOK, rowFixed: rowOK})
	}

	columns := max(1, explicitCols)
	rowsLimit := max(1, explicitRows)
	for _, it := range g.items {
		columns = max(columns, it.area.col+it.area.colSpan)
	}
	var cr, cc int // cursor
	for _, p := range rest {
		a := &p.it.area
		switch {
		case flow == css.GridFlowRow && p.rowFixed:
			for a.col = 0; !g.fits(*a); a.col++ {
			}
		case flow == css.GridFlowColumn && p.colFixed:
			for a.row = 0; !g.fits(*a); a.row++ {
			}
		case flow == css.GridFlowRow:
			if p.colFixed {
				if a.col < cc {
					cr++
				}
				for a.row = cr; !g.fits(*a); a.row++ {
				}
				cr, cc = a.row, a.col
				break
			}
			a.colSpan = min(a.colSpan, columns)
			for {
				if cc+a.colSpan > columns {
					cc, cr = 0, cr+1
				}
				a.row, a.col = cr, cc
				if g.fits(*a) {
					break
				}
				cc++
			}
			cc += a.colSpan
		default:
			if p.rowFixed {
				if a.row < cr {
					cc++
				}
				for a.col = cc; !g.fits(*a); a.col++ {
				}
				cr, cc = a.row, a.col
				break
			}
			a.rowSpan = min(a.rowSpan, rowsLimit)
			for {
				if cr+a.rowSpan > rowsLimit {
					cr, cc = 0, cc+1
				}
				a.row, a.col = cr, cc
				if g.fits(*a) {
					break
				}
				cr++
			}
			cr += a.rowSpan
		}
		g.occupy(*a)
	}

	for _, it := range g.items {
		for len(g.cols) < it.area.col+it.area.colSpan {
			g.cols = append(g.cols, &gridTrack{size: g.autoCol})
		}
		for len(g.rows) < it.area.row+it.area.rowSpan {
			g.rows = append(g.rows, &gridTrack{size: g.autoRow})
		}
		it.bp = le.resolveBoxProps(it.idx, g.inline)
		le.node(it.idx).BoxProps = it.bp
	}
}

func (g *gridContainer) span(tracks []*gridTrack, start, n int, gap float64) float64 {
	s := gap * float64(n-1)
	for _, t := range tracks[start : start+n] {
		s += t.base
	}
	return s
}

// contributions returns the min- and max-content contributions of an item
// on one axis, margins included.
func (g *gridContainer) contributions(it *gridItem, columns bool) (minC, maxC float64) {
	le := g.le
	n := le.node(it.idx)
	if columns {
		m := it.bp.Margin.MainSum(g.wm)
		return n.Intrinsic.MinContent + m, n.Intrinsic.MaxContent + m
	}
	w := g.span(g.cols, it.area.col, it.area.colSpan, g.colGap)
	out := le.layoutNode(it.idx, LayoutConstraints{
		AvailableSize:       geom.SizeFromMainCross(g.wm, w, nan),
		WritingMode:         g.wm,
		ContainingBlockSize: geom.SizeFromMainCross(g.wm, w, g.block),
		ForcedSize:          nanSize(),
	}, nil)
	h := out.Size.Cross(g.wm) + it.bp.Margin.CrossSum(g.wm)
	return h, h
}

func (g *gridContainer) breadth(b css.Breadth, avail float64) (float64, bool) {
	if b.Kind != css.BreadthLength {
		return 0, false
	}
	v, ok := b.Length.Resolve(g.le.resolveContext(g.idx, avail))
	return v, ok
}

// sizeTracks runs the track sizing algorithm on one axis: fixed sizes,
// intrinsic contributions, growth to the limits and fr distribution.
func (g *gridContainer) sizeTracks(tracks []*gridTrack, avail, gap float64, columns bool) {
	for _, t := range tracks {
		t.base, t.limit, t.maxWant = 0, math.Inf(1), 0
		if v, ok := g.breadth(t.size.Min, avail); ok {
			t.base = v
		}
		if v, ok := g.breadth(t.size.Max, avail); ok {
			t.limit = math.Max(v, t.base)
		}
	}

	// Items spanning one track first, then wider items distribute what the
	// spanned tracks lack.
	for pass := 0; pass < 2; pass++ {
		for _, it := range g.items {
			start, n := it.area.row, it.area.rowSpan
			if columns {
				start, n = it.area.col, it.area.colSpan
			}
			if (pass == 0) != (n == 1) {
				continue
			}
			minC, maxC := g.contributions(it, columns)
			spanned := tracks[start : start+n]
			if n == 1 {
				t := spanned[0]
				switch t.size.Min.Kind {
				case css.BreadthAuto, css.BreadthMinContent:
					t.base = math.Max(t.base, minC)
				case css.BreadthMaxContent:
					t.base = math.Max(t.base, maxC)
				}
				switch t.size.Max.Kind {
				case css.BreadthAuto, css.BreadthMaxContent:
					t.limit = maxFinite(t.limit, maxC)
				case css.BreadthMinContent:
					t.limit = maxFinite(t.limit, minC)
				case css.BreadthFr:
					t.maxWant = math.Max(t.maxWant, maxC)
				}
				continue
			}
			var intrinsic []*gridTrack
			have := gap * float64(n-1)
			for _, t := range spanned {
				have += t.base
				if !t.flexible() && t.size.Min.IsIntrinsic() {
					intrinsic = append(intrinsic, t)
				}
			}
			if extra := minC - have; extra > 0 && len(intrinsic) > 0 {
				for _, t := range intrinsic {
					t.base += extra / float64(len(intrinsic))
				}
			}
		}
	}
	for _, t := range tracks {
		if math.IsInf(t.limit, 1) || t.flexible() {
			t.limit = math.Max(t.base, t.maxWant)
			if !t.flexible() && math.IsInf(t.limit, 1) {
				t.limit = t.base
			}
		}
		t.limit = math.Max(t.limit, t.base)
	}

	used := func() float64 {
		s := gap * float64(max(0, len(tracks)-1))
		for _, t := range tracks {
			s += t.base
		}
		return s
	}

	// Maximize tracks towards their growth limits.
	free := math.Inf(1)
	if isDefinite(avail) {
		free = avail - used()
	}
	for free > 1e-9 {
		var growable []*gridTrack
		for _, t := range tracks {
			if !t.flexible() && t.base < t.limit-1e-9 {
				growable = append(growable, t)
			}
		}
		if len(growable) == 0 {
			break
		}
		share := free / float64(len(growable))
		for _, t := range growable {
			d := math.Min(share, t.limit-t.base)
			t.base += d
			free -= d
		}
	}

	g.expandFlexible(tracks, avail, gap)

	// Stretch auto tracks into leftover space.
	if isDefinite(avail) {
		if left := avail - used(); left > 1e-9 {
			var autos []*gridTrack
			for _, t := range tracks {
				if t.size.Max.Kind == css.BreadthAuto {
					autos = append(autos, t)
				}
			}
			for _, t := range autos {
				t.base += left / float64(len(autos))
			}
		}
	}
}

func maxFinite(limit, v float64) float64 {
	if math.IsInf(limit, 1) {
		return v
	}
	return math.Max(limit, v)
}

// expandFlexible finds the size of one fr and applies it to the flexible
// tracks. With an indefinite space the fr size is taken from the tracks'
// max-content contributions.
func (g *gridContainer) expandFlexible(tracks []*gridTrack, avail, gap float64) {
	var flex []*gridTrack
	for _, t := range tracks {
		if t.flexible() {
			flex = append(flex, t)
		}
	}
	if len(flex) == 0 {
		return
	}
	var frSize float64
	if isDefinite(avail) {
		inflexible := make(map[*gridTrack]bool)
		for range flex {
			leftover := avail - gap*float64(len(tracks)-1)
			sumFr := 0.0
			for _, t := range tracks {
				if t.flexible() && !inflexible[t] {
					sumFr += t.size.Max.Fr
				} else {
					leftover -= t.base
				}
			}
			if sumFr < 1 {
				sumFr = 1
			}
			frSize = math.Max(0, leftover/sumFr)
			again := false
			for _, t := range flex {
				if !inflexible[t] && t.size.Max.Fr*frSize < t.base {
					inflexible[t] = true
					again = true
				}
			}
			if !again {
				break
			}
		}
	} else {
		for _, t := range flex {
			fr := t.size.Max.Fr
			if fr > 1 {
				frSize = math.Max(frSize, t.maxWant/fr)
			} else {
				frSize = math.Max(frSize, t.maxWant*fr)
			}
		}
	}
	for _, t := range flex {
		t.base = math.Max(t.base, t.size.Max.Fr*frSize)
	}
}

// assignOffsets lays tracks end to end and returns the total extent.
func (g *gridContainer) assignOffsets(tracks []*gridTrack, gap float64) float64 {
	pos := 0.0
	for i, t := range tracks {
		if i > 0 {
			pos += gap
		}
		t.offset = pos
		pos += t.base
	}
	return pos
}

func (g *gridContainer) selfAlign(idx int, self, items css.PropertyKind) css.Align {
	a := keywordOf(g.le, idx, self, css.AlignAuto)
	if a == css.AlignAuto {
		a = keywordOf(g.le, g.idx, items, css.AlignNormal)
	}
	if a == css.AlignNormal {
		a = css.AlignStretch
	}
	return a
}

func alignOffset(a css.Align, free float64) float64 {
	switch a {
	case css.AlignEnd, css.AlignFlexEnd:
		return free
	case css.AlignCenter:
		return free / 2
	}
	return 0
}

// alignItem lays out an item in its grid area and positions it according to
// justify-self and align-self.
func (g *gridContainer) alignItem(it *gridItem) {
	le := g.le
	wm := g.wm
	a := it.area
	x := g.cols[a.col].offset
	y := g.rows[a.row].offset
	w := g.span(g.cols, a.col, a.colSpan, g.colGap)
	h := g.span(g.rows, a.row, a.rowSpan, g.rowGap)
	m := it.bp.Margin
	am := le.autoMargins(it.idx)
	justify := g.selfAlign(it.idx, css.PropJustifySelf, css.PropJustifyItems)
	align := g.selfAlign(it.idx, css.PropAlignSelf, css.PropAlignItems)

	inline := nan
	horizontal := !wm.IsVertical()
	isz := le.sizeProps(it.idx, horizontal, w, it.bp)
	bsz := le.sizeProps(it.idx, !horizontal, h, it.bp)
	if !isDefinite(isz.size) && !le.node(it.idx).isReplaced {
		if justify == css.AlignStretch && !am.mainStart(wm) && !am.mainEnd(wm) {
			inline = isz.clamp(math.Max(0, w-m.MainSum(wm)))
		} else {
			inline = isz.clamp(fitContent(le.node(it.idx).Intrinsic, w-m.MainSum(wm)))
		}
	}
	block := nan
	if !isDefinite(bsz.size) && align == css.AlignStretch && !am.crossStart(wm) && !am.crossEnd(wm) {
		block = bsz.clamp(math.Max(0, h-m.CrossSum(wm)))
	}
	out := le.layoutNode(it.idx, LayoutConstraints{
		AvailableSize:       geom.SizeFromMainCross(wm, w, h),
		WritingMode:         wm,
		ContainingBlockSize: geom.SizeFromMainCross(wm, w, h),
		ForcedSize:          geom.SizeFromMainCross(wm, inline, block),
	}, nil)

	freeI := w - out.Size.Main(wm) - m.MainSum(wm)
	freeB := h - out.Size.Cross(wm) - m.CrossSum(wm)
	var dx, dy float64
	switch {
	case am.mainStart(wm) && am.mainEnd(wm):
		dx = math.Max(0, freeI) / 2
	case am.mainStart(wm):
		dx = math.Max(0, freeI)
	case am.mainEnd(wm):
	default:
		dx = alignOffset(justify, freeI)
	}
	switch {
	case am.crossStart(wm) && am.crossEnd(wm):
		dy = math.Max(0, freeB) / 2
	case am.crossStart(wm):
		dy = math.Max(0, freeB)
	case am.crossEnd(wm):
	default:
		dy = alignOffset(align, freeB)
	}
	le.node(it.idx).RelativePosition = geom.PosFromMainCross(wm,
		x+dx+m.MainStart(wm), y+dy+m.CrossStart(wm))
}
