package layout

import (
	"math"

	"quill/pkg/css"
	"quill/pkg/geom"
)

var nan = math.NaN()

func isDefinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// AvailableKind is how the available inline size is to be understood.
type AvailableKind uint8

const (
	Definite AvailableKind = iota
	MinContent
	MaxContent
)

// LayoutConstraints are the inputs of a formatting-context algorithm for
// one box. Sizes are physical; NaN marks an indefinite axis.
type LayoutConstraints struct {
	AvailableSize       geom.LogicalSize // space for the margin box
	WritingMode         geom.WritingMode // of the containing block
	TextAlign           css.TextAlign
	ContainingBlockSize geom.LogicalSize
	WidthKind           AvailableKind
	ForcedSize          geom.LogicalSize // border-box size imposed by flex, grid or table; NaN when free
}

func nanSize() geom.LogicalSize { return geom.LogicalSize{Width: nan, Height: nan} }

// constraintKey is the comparable form of LayoutConstraints used by the
// layout memo.
type constraintKey struct {
	aw, ah, cw, ch, fw, fh float64
	wm                     geom.WritingMode
	align                  css.TextAlign
	kind                   AvailableKind
	sb                     ScrollbarInfo
}

func keyFloat(v float64) float64 {
	if math.IsNaN(v) {
		return -1
	}
	return v
}

func (c LayoutConstraints) key(sb ScrollbarInfo) constraintKey {
	return constraintKey{
		aw: keyFloat(c.AvailableSize.Width), ah: keyFloat(c.AvailableSize.Height),
		cw: keyFloat(c.ContainingBlockSize.Width), ch: keyFloat(c.ContainingBlockSize.Height),
		fw: keyFloat(c.ForcedSize.Width), fh: keyFloat(c.ForcedSize.Height),
		wm: c.WritingMode, align: c.TextAlign, kind: c.WidthKind, sb: sb,
	}
}

// autoEdges flags `auto` margins.
type autoEdges struct {
	Top, Right, Bottom, Left bool
}

func (a autoEdges) mainStart(wm geom.WritingMode) bool {
	if wm.IsVertical() {
		return a.Top
	}
	return a.Left
}

func (a autoEdges) mainEnd(wm geom.WritingMode) bool {
	if wm.IsVertical() {
		return a.Bottom
	}
	return a.Right
}

func (a autoEdges) crossStart(wm geom.WritingMode) bool {
	if wm.IsVertical() {
		return a.Left
	}
	return a.Top
}

func (a autoEdges) crossEnd(wm geom.WritingMode) bool {
	if wm.IsVertical() {
		return a.Right
	}
	return a.Bottom
}

func (le *layoutEngine) autoMargins(idx int) autoEdges {
	return autoEdges{
		Top:    le.lengthOf(idx, css.PropMarginTop).IsAuto(),
		Right:  le.lengthOf(idx, css.PropMarginRight).IsAuto(),
		Bottom: le.lengthOf(idx, css.PropMarginBottom).IsAuto(),
		Left:   le.lengthOf(idx, css.PropMarginLeft).IsAuto(),
	}
}

// resolveBoxProps resolves margin, border and padding. Percentages refer to
// the inline size of the containing block; auto margins resolve to zero and
// are handled by the formatting context.
func (le *layoutEngine) resolveBoxProps(idx int, cbInline float64) geom.BoxProps {
	r := func(kind css.PropertyKind) float64 {
		return geom.Finite(le.resolveOr(idx, kind, cbInline, 0))
	}
	nn := func(kind css.PropertyKind) float64 { return geom.NonNegative(r(kind)) }
	return geom.BoxProps{
		Margin: geom.Edges{
			Top: r(css.PropMarginTop), Right: r(css.PropMarginRight),
			Bottom: r(css.PropMarginBottom), Left: r(css.PropMarginLeft),
		},
		Border: geom.Edges{
			Top: nn(css.PropBorderTopWidth), Right: nn(css.PropBorderRightWidth),
			Bottom: nn(css.PropBorderBottomWidth), Left: nn(css.PropBorderLeftWidth),
		},
		Padding: geom.Edges{
			Top: nn(css.PropPaddingTop), Right: nn(css.PropPaddingRight),
			Bottom: nn(css.PropPaddingBottom), Left: nn(css.PropPaddingLeft),
		},
	}
}

// axisSize is the border-box sizing of one axis: the specified size (NaN
// for auto) and the min/max bounds (max NaN for none).
type axisSize struct {
	size, min, max float64
}

func (a axisSize) clamp(v float64) float64 {
	return geom.Clamp(v, a.min, a.max)
}

// sizeProps returns the width or height triple of idx, converted to border
// box, with percentages resolved against cb (NaN: indefinite).
func (le *layoutEngine) sizeProps(idx int, horizontal bool, cb float64, bp geom.BoxProps) axisSize {
	sizeK, minK, maxK := css.PropWidth, css.PropMinWidth, css.PropMaxWidth
	extra := bp.Border.Horizontal() + bp.Padding.Horizontal()
	if !horizontal {
		sizeK, minK, maxK = css.PropHeight, css.PropMinHeight, css.PropMaxHeight
		extra = bp.Border.Vertical() + bp.Padding.Vertical()
	}
	if le.boxSizing(idx) == css.BorderBox {
		extra = 0
	}
	n := le.node(idx)
	a := axisSize{size: nan, min: 0, max: nan}
	if l, ok := le.lengthOf(idx, sizeK).Get(); ok {
		switch {
		case l.IsIntrinsicKeyword() && horizontal == !n.Mode.IsVertical():
			switch l.Unit {
			case css.UnitMinContent:
				a.size = n.Intrinsic.MinContent
			case css.UnitMaxContent:
				a.size = n.Intrinsic.MaxContent
			}
		default:
			if v, ok := l.Resolve(le.resolveContext(idx, cb)); ok {
				a.size = math.Max(0, v+extra)
			}
		}
	}
	if v, ok := le.resolve(idx, minK, cb); ok {
		a.min = math.Max(0, v+extra)
	}
	if v, ok := le.resolve(idx, maxK, cb); ok {
		a.max = math.Max(0, v+extra)
	}
	if isDefinite(a.size) {
		a.size = a.clamp(a.size)
	}
	return a
}

// shrinkToFit reports boxes whose auto inline size is the fit-content size
// rather than the available space.
func (le *layoutEngine) shrinkToFit(idx int) bool {
	n := le.node(idx)
	if n.Float != css.FloatNone || n.FC.OutOfFlow {
		return true
	}
	switch n.Display {
	case css.DisplayInlineBlock, css.DisplayInlineFlex, css.DisplayInlineGrid,
		css.DisplayTable, css.DisplayInlineTable:
		return true
	}
	if l, ok := le.lengthOf(idx, css.PropWidth).Get(); ok && l.Unit == css.UnitFitContent {
		return true
	}
	return false
}

// fitContent is min(max(min-content, available), max-content).
func fitContent(in IntrinsicSizes, avail float64) float64 {
	if !isDefinite(avail) {
		return in.MaxContent
	}
	return math.Min(math.Max(in.MinContent, avail), in.MaxContent)
}

// usedSizeForNode resolves the border-box size of idx before its content is
// laid out. The inline size is always definite; the block size is NaN when
// it depends on content.
func (le *layoutEngine) usedSizeForNode(idx int, c LayoutConstraints, bp geom.BoxProps) (inline, block float64, bsz axisSize) {
	n := le.node(idx)
	wm := n.Mode
	horizontal := !wm.IsVertical()
	cbInline := c.ContainingBlockSize.Main(wm)
	cbBlock := c.ContainingBlockSize.Cross(wm)
	isz := le.sizeProps(idx, horizontal, cbInline, bp)
	bsz = le.sizeProps(idx, !horizontal, cbBlock, bp)
	availInline := c.AvailableSize.Main(wm)
	if !isDefinite(availInline) {
		availInline = le.viewport.Main(wm)
	}
	margins := bp.Margin.MainSum(wm)

	inline = c.ForcedSize.Main(wm)
	switch {
	case isDefinite(inline):
	case isDefinite(isz.size):
		inline = isz.size
	case n.isReplaced:
		inline = le.replacedInline(idx, bp, bsz, cbBlock)
	case c.WidthKind == MinContent:
		inline = n.Intrinsic.MinContent
	case c.WidthKind == MaxContent:
		inline = n.Intrinsic.MaxContent
	case le.shrinkToFit(idx):
		inline = fitContent(n.Intrinsic, availInline-margins)
	default:
		inline = availInline - margins
	}
	inline = geom.NonNegative(isz.clamp(inline))

	block = c.ForcedSize.Cross(wm)
	switch {
	case isDefinite(block):
	case isDefinite(bsz.size):
		block = bsz.size
	case n.isReplaced:
		block = le.replacedBlock(idx, bp, inline)
	default:
		block = nan
	}
	if isDefinite(block) {
		block = geom.NonNegative(block)
	}
	return inline, block, bsz
}

// replacedInline is the auto inline size of an image: natural size, or
// scaled by the aspect ratio when the block size is given.
func (le *layoutEngine) replacedInline(idx int, bp geom.BoxProps, bsz axisSize, cbBlock float64) float64 {
	n := le.node(idx)
	nw, nh := n.replaced.Width, n.replaced.Height
	wm := n.Mode
	bpInline := bp.Border.MainSum(wm) + bp.Padding.MainSum(wm)
	bpBlock := bp.Border.CrossSum(wm) + bp.Padding.CrossSum(wm)
	natInline, natBlock := nw, nh
	if wm.IsVertical() {
		natInline, natBlock = nh, nw
	}
	if isDefinite(bsz.size) && natBlock > 0 {
		return (bsz.size-bpBlock)*natInline/natBlock + bpInline
	}
	return natInline + bpInline
}

func (le *layoutEngine) replacedBlock(idx int, bp geom.BoxProps, inline float64) float64 {
	n := le.node(idx)
	nw, nh := n.replaced.Width, n.replaced.Height
	wm := n.Mode
	bpInline := bp.Border.MainSum(wm) + bp.Padding.MainSum(wm)
	bpBlock := bp.Border.CrossSum(wm) + bp.Padding.CrossSum(wm)
	natInline, natBlock := nw, nh
	if wm.IsVertical() {
		natInline, natBlock = nh, nw
	}
	if natInline > 0 {
		return (inline-bpInline)*natBlock/natInline + bpBlock
	}
	return natBlock + bpBlock
}

// finalBlockSize applies min/max to the content-based block size. The
// min-height floor is kept even when content is smaller.
func finalBlockSize(content float64, bsz axisSize) float64 {
	return geom.NonNegative(bsz.clamp(content))
}
