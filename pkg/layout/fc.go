package layout

import (
	"math"

	"quill/pkg/css"
	"quill/pkg/geom"
)

// LayoutOutput is what a formatting-context algorithm reports for one box.
type LayoutOutput struct {
	// Positions maps each in-flow child to its border-box origin relative to
	// the content box of the box.
	Positions    map[int]geom.LogicalPosition
	Size         geom.LogicalSize // border box
	OverflowSize geom.LogicalSize
	// Floats is set for block formatting context roots that placed floats.
	Floats   *FloatingContext
	Baseline float64 // first baseline from the border-box top, NaN if none

	marginBottom    marginSum
	collapseThrough bool
}

// contentResult is the outcome of laying out the children of a box.
type contentResult struct {
	cross        float64          // block-axis extent of the content
	overflow     geom.LogicalSize // physical extent relative to the content box
	marginBottom marginSum        // trailing margins collapsing through the bottom edge
	baseline     float64          // relative to the content-box top
}

func emptyContent() contentResult { return contentResult{baseline: nan} }

// memoEntry caches the output of the last layout of a node under the
// constraints it was computed for.
type memoEntry struct {
	valid bool
	key   constraintKey
	c     LayoutConstraints
	out   LayoutOutput
}

func (le *layoutEngine) memoUsable(idx int) bool {
	return !le.cfg.paged() && le.node(idx).FC.Independent
}

// invalidateMemo drops the memo of idx and its ancestors.
func (le *layoutEngine) invalidateMemo(idx int) {
	for i := idx; i >= 0; i = le.tree.Nodes[i].Parent {
		le.tree.Nodes[i].memo.valid = false
	}
}

// layoutNode lays out idx and its subtree under c and stores the used size.
// bfc is the state of the block formatting context idx participates in,
// positioned at idx's border-box origin; nil for a fresh context.
func (le *layoutEngine) layoutNode(idx int, c LayoutConstraints, bfc *bfcState) LayoutOutput {
	n := le.node(idx)
	key := c.key(n.Scrollbars)
	if !le.visited[idx] {
		le.visited[idx] = true
		if !(n.memo.valid && n.memo.key == key) {
			le.resetScrollbars(idx)
			key = c.key(n.Scrollbars)
		}
	}
	if le.memoUsable(idx) && n.memo.valid && n.memo.key == key {
		if n.memo.out.Floats != nil {
			le.floats[idx] = n.memo.out.Floats
		}
		return n.memo.out
	}

	wm := n.Mode
	bp := le.resolveBoxProps(idx, c.ContainingBlockSize.Main(c.WritingMode))
	n.BoxProps = bp
	inline, block, bsz := le.usedSizeForNode(idx, c, bp)
	reserve := n.Scrollbars.Reserved()
	bpInline := bp.Border.MainSum(wm) + bp.Padding.MainSum(wm) + reserve.MainSum(wm)
	bpBlock := bp.Border.CrossSum(wm) + bp.Padding.CrossSum(wm) + reserve.CrossSum(wm)
	innerInline := math.Max(0, inline-bpInline)
	innerBlock := nan
	if isDefinite(block) {
		innerBlock = math.Max(0, block-bpBlock)
	}
	innerSize := geom.SizeFromMainCross(wm, innerInline, innerBlock)
	inner := LayoutConstraints{
		AvailableSize:       innerSize,
		WritingMode:         wm,
		TextAlign:           keywordOf(le, idx, css.PropTextAlign, css.TextAlignStart),
		ContainingBlockSize: innerSize,
		ForcedSize:          nanSize(),
	}

	off := bp.ContentOffset()
	var cb *bfcState
	if n.FC.Independent || bfc == nil {
		page := off.Cross(wm)
		if bfc != nil {
			page += bfc.absCross(0)
		}
		cb = newBFC(idx, page)
	} else {
		cb = bfc.at(off.Main(wm), off.Cross(wm))
	}

	res := emptyContent()
	switch {
	case n.isReplaced:
	case n.FC.Kind == FlexContext:
		res = le.layoutFlex(idx, inner)
	case n.FC.Kind == GridContext:
		res = le.layoutGrid(idx, inner)
	case n.FC.Kind == TableContext:
		res = le.layoutTable(idx, inner)
	case n.inlineRoot:
		res = le.layoutInline(idx, inner, cb)
	default:
		res = le.layoutBlock(idx, inner, cb)
	}
	out := LayoutOutput{Baseline: nan}
	if cb.root == idx && !cb.floats.IsEmpty() {
		bottom := cb.floats.Bottom()
		res.cross = math.Max(res.cross, bottom)
		res.overflow = res.overflow.WithCross(wm, math.Max(res.overflow.Cross(wm), bottom))
		le.floats[idx] = cb.floats
		out.Floats = cb.floats
	}
	if !isDefinite(block) {
		block = finalBlockSize(res.cross+bpBlock, bsz)
	}
	le.placeOutsideMarker(idx)

	n.UsedSize = geom.SizeFromMainCross(wm, inline, block)
	n.HasUsedSize = true
	n.OverflowSize = res.overflow
	n.contentCross = res.cross
	out.Size = n.UsedSize
	out.OverflowSize = res.overflow
	if !math.IsNaN(res.baseline) {
		out.Baseline = res.baseline + off.Cross(wm)
	}
	out.marginBottom = marginSum{}.add(bp.Margin.CrossEnd(wm))
	if le.canCollapseBottom(idx, bp) {
		out.marginBottom = out.marginBottom.merge(res.marginBottom)
	}
	out.collapseThrough = le.isEmptyBlock(idx, c.ContainingBlockSize.Main(c.WritingMode))
	out.Positions = make(map[int]geom.LogicalPosition, len(n.Children))
	for _, ch := range n.Children {
		if !le.node(ch).FC.OutOfFlow {
			out.Positions[ch] = le.node(ch).RelativePosition
		}
	}
	if le.memoUsable(idx) {
		n.memo = memoEntry{valid: true, key: key, c: c, out: out}
	}
	return out
}

// layoutRoot lays out the tree root against the viewport. The root's margins
// offset it inside the initial containing block.
func (le *layoutEngine) layoutRoot() {
	root := le.tree.Root
	n := le.node(root)
	c := LayoutConstraints{
		AvailableSize:       le.viewport,
		WritingMode:         n.Mode,
		TextAlign:           css.TextAlignStart,
		ContainingBlockSize: le.viewport,
		ForcedSize:          nanSize(),
	}
	le.layoutNode(root, c, nil)
	n.RelativePosition = geom.LogicalPosition{X: n.BoxProps.Margin.Left, Y: n.BoxProps.Margin.Top}
}

// placeOutsideMarker hangs an outside ::marker in the inline-start margin of
// its list item, aligned with the first line.
func (le *layoutEngine) placeOutsideMarker(idx int) {
	n := le.node(idx)
	if len(n.Children) == 0 || !le.isOutsideMarker(n.Children[0]) {
		return
	}
	m := n.Children[0]
	mn := le.node(m)
	wm := n.Mode
	sl, err := le.shape(m, mn.Text, math.Inf(1))
	if err != nil {
		le.textFailure(m, err)
	}
	h := sl.Height
	if lh, ok := le.lineHeight(m); ok {
		h = lh
	}
	mn.BoxProps = geom.BoxProps{}
	mn.UsedSize = geom.SizeFromMainCross(wm, sl.Width, h)
	mn.HasUsedSize = true
	mn.RelativePosition = geom.PosFromMainCross(wm, -sl.Width, 0)
	mn.Runs = []TextRun{{
		Node: n.DomNode,
		Text: mn.Text,
		Rect: geom.LogicalRect{Size: mn.UsedSize},
		Font: le.fontKey(m),
	}}
}
