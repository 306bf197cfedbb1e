package layout

import (
	"math"
	"strings"

	"quill/pkg/css"
	"quill/pkg/dom"
	"quill/pkg/geom"
	"quill/pkg/text"
)

type itemKind uint8

const (
	itemText itemKind = iota
	itemGenerated
	itemOpen
	itemClose
	itemAtomic
	itemFloat
	itemBreak
	itemOutOfFlow
)

// inlineItem is one entry of the flattened content of an inline formatting
// context root.
type inlineItem struct {
	kind      itemKind
	node      int        // box, -1 for text
	styleNode int        // box whose style applies
	dom       dom.NodeId // text node for itemText
}

type pieceKind uint8

const (
	pieceText pieceKind = iota
	pieceOpen
	pieceClose
	pieceAtomic
	pieceFloat
	pieceBreak
	pieceOutOfFlow
)

// piece is an unbreakable fragment of inline content. Breaks are allowed
// after pieces with breakAfter set.
type piece struct {
	kind       pieceKind
	node       int        // box; the style node for text
	dom        dom.NodeId // text source
	text       string
	font       text.FontKey
	width      float64 // advance including trailing white space
	minWidth   float64 // min-content contribution of atomics and floats
	trailing   float64 // hanging white space at the end
	height     float64 // line height, or margin-box block size of an atomic
	ascent     float64
	spaces     int // justification opportunities
	breakAfter bool
}

func (p *piece) standalone() bool {
	return p.kind == pieceBreak || p.kind == pieceFloat || p.kind == pieceOutOfFlow
}

func (p *piece) hasContent() bool {
	return p.kind == pieceText || p.kind == pieceAtomic
}

// shape shapes s in the font of idx.
func (le *layoutEngine) shape(idx int, s string, avail float64) (text.ShapedLine, error) {
	return le.cfg.text.ShapeLine(le.fontKey(idx), s, avail)
}

// textFailure reports a failed text layout call. The text is treated as
// zero-sized and the pass continues.
func (le *layoutEngine) textFailure(idx int, err error) {
	lerr := &LayoutError{Kind: TextLayoutFailed, Node: idx, Err: err}
	tracer().Errorf("%v", lerr)
	le.debug(DebugWarning, idx, "%v", lerr)
}

// metrics returns the line height and ascent of the font of idx, with the
// half-leading of an explicit line-height applied.
func (le *layoutEngine) metrics(idx int) (height, ascent float64) {
	sl, err := le.shape(idx, " ", math.Inf(1))
	if err != nil {
		le.textFailure(idx, err)
		return 0, 0
	}
	height, ascent = sl.Height, sl.Ascent
	if lh, ok := le.lineHeight(idx); ok {
		ascent += (lh - height) / 2
		height = lh
	}
	return height, ascent
}

// pieceBuilder turns the items of an inline formatting context root into
// pieces. In measure mode atomics contribute their intrinsic sizes instead
// of being laid out.
type pieceBuilder struct {
	le       *layoutEngine
	root     int
	cbInline float64
	avail    float64
	measure  bool
	pieces   []piece
	space    bool // the previous text ended in collapsible white space
}

func (pb *pieceBuilder) build() []piece {
	le := pb.le
	for _, it := range le.node(pb.root).items {
		switch it.kind {
		case itemText:
			pb.text(it.styleNode, it.dom, le.dom.NodeType(it.dom).Text)
		case itemGenerated:
			pb.text(it.styleNode, le.owner(it.node), le.node(it.node).Text)
		case itemOpen, itemClose:
			pb.edge(it)
		case itemAtomic:
			pb.atomic(it.node)
		case itemFloat:
			pb.float(it.node)
		case itemBreak:
			pb.pieces = append(pb.pieces, piece{kind: pieceBreak, node: it.node})
			pb.space = true
		case itemOutOfFlow:
			pb.pieces = append(pb.pieces, piece{kind: pieceOutOfFlow, node: it.node})
		}
	}
	return pb.pieces
}

func (pb *pieceBuilder) text(styleNode int, src dom.NodeId, s string) {
	ws := keywordOf(pb.le, styleNode, css.PropWhiteSpace, css.WhiteSpaceNormal)
	if !ws.Preserves() {
		s = text.CollapseWhiteSpace(s)
		if pb.space {
			s = strings.TrimPrefix(s, " ")
		}
		if s == "" {
			return
		}
		pb.space = strings.HasSuffix(s, " ")
		pb.segment(styleNode, src, s, ws)
		return
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\t", "        ")
	for i, ln := range strings.Split(s, "\n") {
		if i > 0 {
			pb.pieces = append(pb.pieces, piece{kind: pieceBreak, node: -1})
		}
		if ln != "" {
			pb.segment(styleNode, src, ln, ws)
		}
	}
	pb.space = false
}

// segment shapes s and splits it at its break opportunities.
func (pb *pieceBuilder) segment(styleNode int, src dom.NodeId, s string, ws css.WhiteSpace) {
	le := pb.le
	font := le.fontKey(styleNode)
	sl, err := le.cfg.text.ShapeLine(font, s, pb.avail)
	if err != nil {
		le.textFailure(styleNode, err)
		return
	}
	height, ascent := sl.Height, sl.Ascent
	if lh, ok := le.lineHeight(styleNode); ok {
		ascent += (lh - height) / 2
		height = lh
	}
	var bounds []int
	if ws.Wraps() {
		bounds = append(bounds, sl.BreakPoints...)
	}
	bounds = append(bounds, len(sl.Glyphs))
	hang := ws != css.WhiteSpacePre
	start := 0
	for _, end := range bounds {
		if end <= start || end > len(sl.Glyphs) {
			continue
		}
		gs := sl.Glyphs[start:end]
		to := len(s)
		if end < len(sl.Glyphs) {
			to = sl.Glyphs[end].Offset
		}
		p := piece{
			kind: pieceText, node: styleNode, dom: src, font: font,
			text: s[gs[0].Offset:to], height: height, ascent: ascent,
		}
		for _, g := range gs {
			p.width += g.Advance
			if g.Rune == ' ' {
				p.spaces++
			}
		}
		if hang {
			for i := len(gs) - 1; i >= 0 && text.IsCollapsibleSpace(gs[i].Rune); i-- {
				p.trailing += gs[i].Advance
			}
		}
		p.minWidth = p.width - p.trailing
		p.breakAfter = ws.Wraps() && (end < len(sl.Glyphs) || strings.HasSuffix(p.text, " "))
		pb.pieces = append(pb.pieces, p)
		start = end
	}
}

// edge adds the inline-start or inline-end edge of an inline box.
func (pb *pieceBuilder) edge(it inlineItem) {
	le := pb.le
	wm := le.node(pb.root).Mode
	bp := le.resolveBoxProps(it.node, pb.cbInline)
	le.node(it.node).BoxProps = bp
	p := piece{kind: pieceOpen, node: it.node}
	if it.kind == itemOpen {
		p.width = bp.Margin.MainStart(wm) + bp.Border.MainStart(wm) + bp.Padding.MainStart(wm)
	} else {
		p.kind = pieceClose
		p.width = bp.Margin.MainEnd(wm) + bp.Border.MainEnd(wm) + bp.Padding.MainEnd(wm)
		// keep a preceding break opportunity after the box edge
		if k := len(pb.pieces); k > 0 && pb.pieces[k-1].breakAfter {
			pb.pieces[k-1].breakAfter = false
			p.breakAfter = true
		}
	}
	p.minWidth = p.width
	pb.pieces = append(pb.pieces, p)
}

func (pb *pieceBuilder) atomic(idx int) {
	le := pb.le
	wm := le.node(pb.root).Mode
	cn := le.node(idx)
	p := piece{kind: pieceAtomic, node: idx, breakAfter: true}
	if pb.measure {
		m := le.resolveBoxProps(idx, nan).Margin.MainSum(wm)
		p.width = cn.Intrinsic.MaxContent + m
		p.minWidth = cn.Intrinsic.MinContent + m
	} else {
		avail := geom.SizeFromMainCross(wm, pb.avail, nan)
		out := le.layoutNode(idx, LayoutConstraints{
			AvailableSize:       avail,
			WritingMode:         wm,
			ContainingBlockSize: avail,
			ForcedSize:          nanSize(),
		}, nil)
		m := cn.BoxProps.Margin
		p.width = out.Size.Main(wm) + m.MainSum(wm)
		p.minWidth = p.width
		p.height = out.Size.Cross(wm) + m.CrossSum(wm)
		p.ascent = p.height
	}
	if k := len(pb.pieces); k > 0 {
		pb.pieces[k-1].breakAfter = true
	}
	pb.space = false
	pb.pieces = append(pb.pieces, p)
}

func (pb *pieceBuilder) float(idx int) {
	p := piece{kind: pieceFloat, node: idx}
	if pb.measure {
		le := pb.le
		wm := le.node(pb.root).Mode
		cn := le.node(idx)
		m := le.resolveBoxProps(idx, nan).Margin.MainSum(wm)
		p.width = cn.Intrinsic.MaxContent + m
		p.minWidth = cn.Intrinsic.MinContent + m
	}
	pb.pieces = append(pb.pieces, p)
}

// unitEnd returns the exclusive end of the unbreakable unit starting at i.
func unitEnd(ps []piece, i int) int {
	if ps[i].standalone() {
		return i + 1
	}
	j := i
	for j < len(ps) && !ps[j].standalone() {
		j++
		if ps[j-1].breakAfter {
			break
		}
	}
	return j
}

// unitWidth sums a unit and returns the hanging white space at its end,
// looking through trailing box edges.
func unitWidth(ps []piece) (width, trailing float64) {
	for _, p := range ps {
		width += p.width
	}
	for k := len(ps) - 1; k >= 0; k-- {
		if ps[k].kind == pieceClose {
			continue
		}
		if ps[k].kind == pieceText {
			trailing = ps[k].trailing
		}
		break
	}
	return width, trailing
}

type lineFrag struct {
	piece int
	x     float64 // inline offset in the content box of the root
	width float64 // including justification
}

type lineBox struct {
	frags    []lineFrag
	top      float64
	height   float64
	baseline float64 // from top
	start    float64 // band start
	avail    float64 // band width
	used     float64
	content  bool
	forced   bool
}

// inlineLayout is the state of laying out one inline formatting context.
type inlineLayout struct {
	le       *layoutEngine
	root     int
	c        LayoutConstraints
	bfc      *bfcState
	inline   float64
	pieces   []piece
	strutH   float64
	strutA   float64
	y        float64
	cur      lineBox
	open     bool
	lines    []lineBox
	deferred []int
	floats   []geom.LogicalRect
}

// layoutInline lays out the inline content of idx into line boxes. The
// lines avoid the floats of the enclosing block formatting context.
func (le *layoutEngine) layoutInline(idx int, c LayoutConstraints, bfc *bfcState) contentResult {
	wm := c.WritingMode
	inline := c.AvailableSize.Main(wm)
	pb := &pieceBuilder{le: le, root: idx, cbInline: inline, avail: inline, space: true}
	il := &inlineLayout{le: le, root: idx, c: c, bfc: bfc, inline: inline, pieces: pb.build()}
	il.strutH, il.strutA = le.metrics(idx)
	il.run()
	return il.finish()
}

func (il *inlineLayout) startLine() {
	il.cur = lineBox{top: il.y}
	il.band()
	il.open = true
}

func (il *inlineLayout) band() {
	b := il.bfc
	s, end := b.floats.AvailableInlineSize(b.cross+il.cur.top, il.strutH, b.main, b.main+il.inline)
	il.cur.start = s - b.main
	il.cur.avail = math.Max(0, end-s)
}

// canDescend reports an empty line narrowed by floats that end further
// down.
func (il *inlineLayout) canDescend() bool {
	if il.cur.avail >= il.inline-1e-6 {
		return false
	}
	_, ok := il.bfc.floats.nextBottom(il.bfc.cross + il.cur.top)
	return ok
}

func (il *inlineLayout) descend() {
	next, _ := il.bfc.floats.nextBottom(il.bfc.cross + il.cur.top)
	il.y = next - il.bfc.cross
	il.cur.top = il.y
	il.band()
}

func (il *inlineLayout) appendFrag(k int) {
	if !il.open {
		il.startLine()
	}
	p := &il.pieces[k]
	il.cur.frags = append(il.cur.frags, lineFrag{piece: k})
	il.cur.used += p.width
	if p.hasContent() {
		il.cur.content = true
	}
}

func (il *inlineLayout) run() {
	ps := il.pieces
	for i := 0; i < len(ps); {
		switch ps[i].kind {
		case pieceBreak:
			il.closeLine(true)
			i++
			continue
		case pieceFloat:
			if !il.open || !il.cur.content {
				il.placeFloat(i)
			} else {
				il.deferred = append(il.deferred, i)
			}
			i++
			continue
		case pieceOutOfFlow:
			il.appendFrag(i)
			i++
			continue
		}
		j := unitEnd(ps, i)
		w, trail := unitWidth(ps[i:j])
		for {
			if !il.open {
				il.startLine()
			}
			if il.cur.used+w-trail <= il.cur.avail+1e-6 {
				break
			}
			if il.cur.content {
				il.closeLine(false)
				continue
			}
			if !il.canDescend() {
				break
			}
			il.descend()
		}
		for k := i; k < j; k++ {
			il.appendFrag(k)
		}
		i = j
	}
	if il.open && len(il.cur.frags) > 0 {
		il.closeLine(true)
	}
	for _, k := range il.deferred {
		il.placeFloat(k)
	}
	il.deferred = nil
}

func (il *inlineLayout) placeFloat(k int) {
	node := il.pieces[k].node
	r := il.le.layoutFloat(node, il.c, il.bfc, il.y)
	il.floats = append(il.floats, r)
	if il.open {
		il.band()
	}
}

// closeLine finishes the current line: vertical metrics, alignment and the
// inline offsets of its fragments.
func (il *inlineLayout) closeLine(forced bool) {
	if !il.open {
		il.startLine()
	}
	ln := &il.cur
	ln.forced = forced
	asc, desc := il.strutA, il.strutH-il.strutA
	lastContent := -1
	for fi, f := range ln.frags {
		p := &il.pieces[f.piece]
		if !p.hasContent() {
			continue
		}
		asc = math.Max(asc, p.ascent)
		desc = math.Max(desc, p.height-p.ascent)
		lastContent = fi
	}
	if ln.content || forced {
		ln.baseline = asc
		ln.height = asc + desc
	}

	trail := 0.0
	for k := len(ln.frags) - 1; k >= 0; k-- {
		p := &il.pieces[ln.frags[k].piece]
		if p.kind == pieceText {
			trail = p.trailing
			break
		}
		if p.kind == pieceAtomic {
			break
		}
	}
	free := ln.avail - (ln.used - trail)
	offset, extra := 0.0, 0.0
	switch il.c.TextAlign {
	case css.TextAlignCenter:
		offset = free / 2
	case css.TextAlignRight, css.TextAlignEnd:
		offset = free
	case css.TextAlignJustify:
		if n := il.justifiable(lastContent); !forced && n > 0 && free > 0 {
			extra = free / float64(n)
		}
	}
	if free < 0 && il.c.TextAlign != css.TextAlignJustify {
		offset = 0
	}
	x := ln.start + offset
	for fi := range ln.frags {
		f := &ln.frags[fi]
		p := &il.pieces[f.piece]
		f.x = x
		f.width = p.width
		if extra > 0 && p.kind == pieceText {
			n := p.spaces
			if fi == lastContent {
				n -= trailingSpaces(p.text)
			}
			f.width += extra * float64(n)
		}
		x += f.width
	}
	il.lines = append(il.lines, *ln)
	il.y += ln.height
	il.open = false
	il.cur = lineBox{}
	for _, k := range il.deferred {
		il.placeFloat(k)
	}
	il.deferred = nil
}

func (il *inlineLayout) justifiable(last int) int {
	n := 0
	for fi, f := range il.cur.frags {
		p := &il.pieces[f.piece]
		if p.kind != pieceText {
			continue
		}
		n += p.spaces
		if fi == last {
			n -= trailingSpaces(p.text)
		}
	}
	return n
}

func trailingSpaces(s string) int {
	return len(s) - len(strings.TrimRight(s, " "))
}

// spanFrag is the extent of an inline box on one line.
type spanFrag struct {
	node       int
	start, end float64
	top, bot   float64
}

// finish converts lines into positions, text runs and inline box rects.
func (il *inlineLayout) finish() contentResult {
	le := il.le
	root := le.node(il.root)
	wm := il.c.WritingMode
	res := emptyContent()
	root.Runs = root.Runs[:0]

	rects := map[int]geom.LogicalRect{}     // inline boxes, root content coords
	atoms := map[int]geom.LogicalPosition{} // border-box origins of atomics
	statics := map[int]geom.LogicalPosition{}
	fonts := map[int][2]float64{}
	spanMetrics := func(node int) (float64, float64) {
		if m, ok := fonts[node]; ok {
			return m[0], m[1]
		}
		sl, err := le.shape(node, " ", math.Inf(1))
		if err != nil {
			le.textFailure(node, err)
		}
		fonts[node] = [2]float64{sl.Height, sl.Ascent}
		return sl.Height, sl.Ascent
	}
	addRect := func(node int, r geom.LogicalRect) {
		if old, ok := rects[node]; ok {
			r = old.Union(r)
		}
		rects[node] = r
	}

	var maxMain, maxCross float64
	var open []int
	for li, ln := range il.lines {
		if li == 0 && ln.height > 0 {
			res.baseline = ln.top + ln.baseline
		}
		baseline := ln.top + ln.baseline
		frags := map[int]*spanFrag{}
		lineEnd := ln.start
		begin := func(node int, x float64) {
			h, a := spanMetrics(node)
			bp := le.node(node).BoxProps
			top := baseline - a
			frags[node] = &spanFrag{
				node: node, start: x, end: x,
				top: top - bp.Border.CrossStart(wm) - bp.Padding.CrossStart(wm),
				bot: top + h + bp.Border.CrossEnd(wm) + bp.Padding.CrossEnd(wm),
			}
		}
		for _, s := range open {
			begin(s, ln.start)
		}
		var runText strings.Builder
		var run *TextRun
		flush := func() {
			if run != nil {
				run.Text = runText.String()
				root.Runs = append(root.Runs, *run)
				run = nil
				runText.Reset()
			}
		}
		for _, f := range ln.frags {
			p := &il.pieces[f.piece]
			lineEnd = math.Max(lineEnd, f.x+f.width)
			switch p.kind {
			case pieceText:
				r := geom.Rect(f.x, baseline-p.ascent, f.width, p.height)
				if run != nil && run.Node == p.dom && run.Font == p.font {
					run.Rect = run.Rect.Union(r)
				} else {
					flush()
					run = &TextRun{Node: p.dom, Rect: r, Font: p.font}
				}
				runText.WriteString(p.text)
			case pieceOpen:
				flush()
				m := le.node(p.node).BoxProps.Margin.MainStart(wm)
				begin(p.node, f.x+m)
				open = append(open, p.node)
			case pieceClose:
				flush()
				if sf, ok := frags[p.node]; ok {
					sf.end = f.x + f.width - le.node(p.node).BoxProps.Margin.MainEnd(wm)
					addRect(p.node, geom.Rect(sf.start, sf.top, sf.end-sf.start, sf.bot-sf.top))
					delete(frags, p.node)
				}
				for k := len(open) - 1; k >= 0; k-- {
					if open[k] == p.node {
						open = append(open[:k], open[k+1:]...)
						break
					}
				}
			case pieceAtomic:
				flush()
				m := le.node(p.node).BoxProps.Margin
				atoms[p.node] = geom.LogicalPosition{
					X: f.x + m.MainStart(wm),
					Y: baseline - p.height + m.CrossStart(wm),
				}
				maxCross = math.Max(maxCross, baseline)
			case pieceOutOfFlow:
				statics[p.node] = geom.LogicalPosition{X: f.x, Y: ln.top}
			}
		}
		flush()
		for _, s := range open {
			if sf, ok := frags[s]; ok {
				sf.end = lineEnd
				addRect(s, geom.Rect(sf.start, sf.top, sf.end-sf.start, sf.bot-sf.top))
			}
		}
		maxMain = math.Max(maxMain, lineEnd)
		maxCross = math.Max(maxCross, ln.top+ln.height)
	}
	res.cross = il.y
	for _, r := range il.floats {
		maxMain = math.Max(maxMain, r.MaxX())
		maxCross = math.Max(maxCross, r.MaxY())
	}
	for _, r := range rects {
		maxMain = math.Max(maxMain, r.MaxX())
		maxCross = math.Max(maxCross, r.MaxY())
	}
	res.overflow = geom.SizeFromMainCross(wm, maxMain, math.Max(maxCross, res.cross))

	// content origin of a box in root coordinates
	origin := func(parent int) geom.LogicalPosition {
		if parent == il.root {
			return geom.LogicalPosition{}
		}
		r := rects[parent]
		bp := le.node(parent).BoxProps
		return geom.LogicalPosition{
			X: r.Origin.X + bp.Border.MainStart(wm) + bp.Padding.MainStart(wm),
			Y: r.Origin.Y + bp.Border.CrossStart(wm) + bp.Padding.CrossStart(wm),
		}
	}
	phys := func(p geom.LogicalPosition) geom.LogicalPosition {
		return geom.PosFromMainCross(wm, p.X, p.Y)
	}
	for node, r := range rects {
		n := le.node(node)
		n.RelativePosition = phys(r.Origin.Sub(origin(n.Parent)))
		n.UsedSize = geom.SizeFromMainCross(wm, r.Size.Width, r.Size.Height)
		n.HasUsedSize = true
		n.OverflowSize = n.UsedSize
	}
	for node, p := range atoms {
		le.node(node).RelativePosition = phys(p.Sub(origin(le.node(node).Parent)))
	}
	for node, p := range statics {
		le.node(node).StaticPosition = phys(p.Sub(origin(le.node(node).Parent)))
	}
	for _, k := range il.floatPieces() {
		n := le.node(k)
		if n.Parent != il.root {
			local := geom.LogicalPosition{X: n.RelativePosition.Main(wm), Y: n.RelativePosition.Cross(wm)}
			n.RelativePosition = phys(local.Sub(origin(n.Parent)))
		}
	}
	if wm.IsVertical() {
		for i := range root.Runs {
			r := root.Runs[i].Rect
			root.Runs[i].Rect = geom.LogicalRect{
				Origin: phys(r.Origin),
				Size:   geom.SizeFromMainCross(wm, r.Size.Width, r.Size.Height),
			}
		}
	}
	for i := range le.tree.Nodes[il.root].items {
		it := le.tree.Nodes[il.root].items[i]
		if it.kind == itemOpen || it.kind == itemClose {
			if _, ok := rects[it.node]; !ok {
				n := le.node(it.node)
				n.UsedSize = geom.LogicalSize{}
				n.HasUsedSize = true
			}
		}
	}
	return res
}

// floatPieces lists the floats of the line content.
func (il *inlineLayout) floatPieces() []int {
	var out []int
	for _, p := range il.pieces {
		if p.kind == pieceFloat {
			out = append(out, p.node)
		}
	}
	return out
}

// measureInline returns the content-box min-content and max-content inline
// sizes of an inline formatting context root.
func (le *layoutEngine) measureInline(idx int) IntrinsicSizes {
	if font, s, ok := le.plainText(idx); ok {
		in, err := le.cfg.text.MeasureIntrinsic(font, s)
		if err != nil {
			le.textFailure(idx, err)
			return IntrinsicSizes{}
		}
		return IntrinsicSizes{MinContent: in.MinContentWidth, MaxContent: in.MaxContentWidth}
	}
	pb := &pieceBuilder{le: le, root: idx, cbInline: nan, avail: math.Inf(1), measure: true, space: true}
	ps := pb.build()
	var in IntrinsicSizes
	line := 0.0
	lineTrail := 0.0
	endLine := func() {
		in.MaxContent = math.Max(in.MaxContent, line-lineTrail)
		line, lineTrail = 0, 0
	}
	for i := 0; i < len(ps); {
		switch ps[i].kind {
		case pieceBreak:
			endLine()
			i++
			continue
		case pieceFloat:
			in.MinContent = math.Max(in.MinContent, ps[i].minWidth)
			line += ps[i].width
			i++
			continue
		case pieceOutOfFlow:
			i++
			continue
		}
		j := unitEnd(ps, i)
		w, trail := unitWidth(ps[i:j])
		min := 0.0
		for _, p := range ps[i:j] {
			if p.kind == pieceAtomic {
				min += p.minWidth
			} else {
				min += p.width
			}
		}
		in.MinContent = math.Max(in.MinContent, min-trail)
		line += w
		lineTrail = trail
		i = j
	}
	endLine()
	return in
}

// plainText reports an inline formatting context holding nothing but
// normally wrapping text in one style, returned collapsed.
func (le *layoutEngine) plainText(idx int) (text.FontKey, string, bool) {
	n := le.node(idx)
	var b strings.Builder
	style := -1
	for _, it := range n.items {
		if it.kind != itemText {
			return text.FontKey{}, "", false
		}
		if style >= 0 && it.styleNode != style {
			return text.FontKey{}, "", false
		}
		style = it.styleNode
		b.WriteString(le.dom.NodeType(it.dom).Text)
	}
	if style < 0 || keywordOf(le, style, css.PropWhiteSpace, css.WhiteSpaceNormal) != css.WhiteSpaceNormal {
		return text.FontKey{}, "", false
	}
	s := strings.TrimSpace(text.CollapseWhiteSpace(b.String()))
	return le.fontKey(style), s, true
}
