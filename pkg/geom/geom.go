// Package geom holds the plain geometry aggregates shared by the layout core:
// positions, sizes, rectangles, four-sided edges and box properties.
//
// All values are CSS pixels. Axis-agnostic accessors (Main/Cross) map the
// inline axis of a writing mode to "main" and the block axis to "cross", so
// formatting-context code can be written once for horizontal and vertical
// writing modes.
package geom

import "math"

// WritingMode selects the orientation of the inline and block axes.
type WritingMode uint8

const (
	HorizontalTb WritingMode = iota // inline axis horizontal, blocks stack top to bottom
	VerticalRl                      // inline axis vertical; treated like VerticalLr for block progression
	VerticalLr                      // inline axis vertical, blocks stack left to right
)

// IsVertical reports whether the inline axis runs vertically.
func (wm WritingMode) IsVertical() bool {
	return wm == VerticalRl || wm == VerticalLr
}

func (wm WritingMode) String() string {
	switch wm {
	case VerticalRl:
		return "vertical-rl"
	case VerticalLr:
		return "vertical-lr"
	}
	return "horizontal-tb"
}

// LogicalPosition is a point, or a displacement vector, in CSS pixels.
type LogicalPosition struct {
	X, Y float64
}

// Add translates p by vector v.
func (p LogicalPosition) Add(v LogicalPosition) LogicalPosition {
	return LogicalPosition{X: p.X + v.X, Y: p.Y + v.Y}
}

// Sub returns the vector from v to p.
func (p LogicalPosition) Sub(v LogicalPosition) LogicalPosition {
	return LogicalPosition{X: p.X - v.X, Y: p.Y - v.Y}
}

// Main returns the inline-axis coordinate.
func (p LogicalPosition) Main(wm WritingMode) float64 {
	if wm.IsVertical() {
		return p.Y
	}
	return p.X
}

// Cross returns the block-axis coordinate.
func (p LogicalPosition) Cross(wm WritingMode) float64 {
	if wm.IsVertical() {
		return p.X
	}
	return p.Y
}

// PosFromMainCross builds a position from inline/block coordinates.
func PosFromMainCross(wm WritingMode, main, cross float64) LogicalPosition {
	if wm.IsVertical() {
		return LogicalPosition{X: cross, Y: main}
	}
	return LogicalPosition{X: main, Y: cross}
}

// LogicalSize is a width/height pair in CSS pixels.
type LogicalSize struct {
	Width, Height float64
}

// Main returns the inline-axis extent.
func (s LogicalSize) Main(wm WritingMode) float64 {
	if wm.IsVertical() {
		return s.Height
	}
	return s.Width
}

// Cross returns the block-axis extent.
func (s LogicalSize) Cross(wm WritingMode) float64 {
	if wm.IsVertical() {
		return s.Width
	}
	return s.Height
}

// WithMain returns a copy of s with the inline-axis extent replaced.
func (s LogicalSize) WithMain(wm WritingMode, v float64) LogicalSize {
	if wm.IsVertical() {
		s.Height = v
	} else {
		s.Width = v
	}
	return s
}

// WithCross returns a copy of s with the block-axis extent replaced.
func (s LogicalSize) WithCross(wm WritingMode, v float64) LogicalSize {
	if wm.IsVertical() {
		s.Width = v
	} else {
		s.Height = v
	}
	return s
}

// SizeFromMainCross builds a size from inline/block extents.
func SizeFromMainCross(wm WritingMode, main, cross float64) LogicalSize {
	if wm.IsVertical() {
		return LogicalSize{Width: cross, Height: main}
	}
	return LogicalSize{Width: main, Height: cross}
}

// LogicalRect is an axis-aligned rectangle.
type LogicalRect struct {
	Origin LogicalPosition
	Size   LogicalSize
}

// Rect is a shorthand constructor.
func Rect(x, y, w, h float64) LogicalRect {
	return LogicalRect{Origin: LogicalPosition{X: x, Y: y}, Size: LogicalSize{Width: w, Height: h}}
}

func (r LogicalRect) MaxX() float64 { return r.Origin.X + r.Size.Width }
func (r LogicalRect) MaxY() float64 { return r.Origin.Y + r.Size.Height }

// Translate moves the rectangle by v.
func (r LogicalRect) Translate(v LogicalPosition) LogicalRect {
	r.Origin = r.Origin.Add(v)
	return r
}

// Union returns the smallest rectangle containing both r and o. An empty
// rectangle (zero size at the origin) does not extend the union.
func (r LogicalRect) Union(o LogicalRect) LogicalRect {
	if r.IsZero() {
		return o
	}
	if o.IsZero() {
		return r
	}
	x0 := math.Min(r.Origin.X, o.Origin.X)
	y0 := math.Min(r.Origin.Y, o.Origin.Y)
	x1 := math.Max(r.MaxX(), o.MaxX())
	y1 := math.Max(r.MaxY(), o.MaxY())
	return Rect(x0, y0, x1-x0, y1-y0)
}

// IsZero reports whether r is the zero rectangle.
func (r LogicalRect) IsZero() bool {
	return r == LogicalRect{}
}

// Contains reports whether p lies inside r (max edges exclusive).
func (r LogicalRect) Contains(p LogicalPosition) bool {
	return p.X >= r.Origin.X && p.X < r.MaxX() && p.Y >= r.Origin.Y && p.Y < r.MaxY()
}

// Edges is a four-sided quad, used for margin, border and padding.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Uniform returns edges with the same value on every side.
func Uniform(v float64) Edges {
	return Edges{Top: v, Right: v, Bottom: v, Left: v}
}

// MainStart is the edge at the start of the inline axis.
func (e Edges) MainStart(wm WritingMode) float64 {
	if wm.IsVertical() {
		return e.Top
	}
	return e.Left
}

// MainEnd is the edge at the end of the inline axis.
func (e Edges) MainEnd(wm WritingMode) float64 {
	if wm.IsVertical() {
		return e.Bottom
	}
	return e.Right
}

// CrossStart is the edge at the start of the block axis.
func (e Edges) CrossStart(wm WritingMode) float64 {
	if wm.IsVertical() {
		return e.Left
	}
	return e.Top
}

// CrossEnd is the edge at the end of the block axis.
func (e Edges) CrossEnd(wm WritingMode) float64 {
	if wm.IsVertical() {
		return e.Right
	}
	return e.Bottom
}

// MainSum is the total along the inline axis.
func (e Edges) MainSum(wm WritingMode) float64 {
	return e.MainStart(wm) + e.MainEnd(wm)
}

// CrossSum is the total along the block axis.
func (e Edges) CrossSum(wm WritingMode) float64 {
	return e.CrossStart(wm) + e.CrossEnd(wm)
}

// Horizontal is Left+Right regardless of writing mode.
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Vertical is Top+Bottom regardless of writing mode.
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// Add sums two quads side by side.
func (e Edges) Add(o Edges) Edges {
	return Edges{Top: e.Top + o.Top, Right: e.Right + o.Right, Bottom: e.Bottom + o.Bottom, Left: e.Left + o.Left}
}

// Sanitized replaces NaN and infinite sides with zero.
func (e Edges) Sanitized() Edges {
	return Edges{Top: Finite(e.Top), Right: Finite(e.Right), Bottom: Finite(e.Bottom), Left: Finite(e.Left)}
}

// BoxProps are the resolved margin, border and padding of a box.
type BoxProps struct {
	Margin, Border, Padding Edges
}

// InnerSize subtracts border and padding from the border-box size outer.
// Both axes are clamped at zero.
func (b BoxProps) InnerSize(outer LogicalSize, wm WritingMode) LogicalSize {
	bp := b.Border.Add(b.Padding)
	main := NonNegative(outer.Main(wm) - bp.MainSum(wm))
	cross := NonNegative(outer.Cross(wm) - bp.CrossSum(wm))
	return SizeFromMainCross(wm, main, cross)
}

// OuterSize adds border and padding to a content-box size.
func (b BoxProps) OuterSize(inner LogicalSize) LogicalSize {
	bp := b.Border.Add(b.Padding)
	return LogicalSize{Width: inner.Width + bp.Horizontal(), Height: inner.Height + bp.Vertical()}
}

// MarginBoxSize adds margins to a border-box size.
func (b BoxProps) MarginBoxSize(borderBox LogicalSize) LogicalSize {
	return LogicalSize{
		Width:  borderBox.Width + b.Margin.Horizontal(),
		Height: borderBox.Height + b.Margin.Vertical(),
	}
}

// ContentOffset is the vector from the border-box origin to the content-box origin.
func (b BoxProps) ContentOffset() LogicalPosition {
	return LogicalPosition{X: b.Border.Left + b.Padding.Left, Y: b.Border.Top + b.Padding.Top}
}

// PaddingOffset is the vector from the border-box origin to the padding-box origin.
func (b BoxProps) PaddingOffset() LogicalPosition {
	return LogicalPosition{X: b.Border.Left, Y: b.Border.Top}
}

// Finite maps NaN and ±Inf to zero.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NonNegative clamps v to [0, +Inf); NaN becomes zero.
func NonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// Clamp applies the CSS min/max rule: max(min, min(v, max)). A NaN max or min
// is ignored.
func Clamp(v, lo, hi float64) float64 {
	if !math.IsNaN(hi) && v > hi {
		v = hi
	}
	if !math.IsNaN(lo) && v < lo {
		v = lo
	}
	return v
}
