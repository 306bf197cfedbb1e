package layout

import (
	"math"

	"quill/pkg/css"
	"quill/pkg/geom"
)

// Exclusion is the margin box of a placed float, in the logical coordinates
// of its block formatting context root's content box (X inline, Y block).
type Exclusion struct {
	Side css.Float
	Rect geom.LogicalRect
	Node int
}

// FloatingContext holds the floats of one block formatting context.
type FloatingContext struct {
	exclusions []Exclusion
	lastTop    float64
}

// NewFloatingContext creates an empty floating context.
func NewFloatingContext() *FloatingContext {
	return &FloatingContext{}
}

// IsEmpty returns true if no float has been placed.
func (fc *FloatingContext) IsEmpty() bool {
	return fc == nil || len(fc.exclusions) == 0
}

// Exclusions returns the placed floats in placement order.
func (fc *FloatingContext) Exclusions() []Exclusion {
	if fc == nil {
		return nil
	}
	return fc.exclusions
}

// Clone returns an independent copy.
func (fc *FloatingContext) Clone() *FloatingContext {
	if fc == nil {
		return nil
	}
	c := &FloatingContext{lastTop: fc.lastTop}
	c.exclusions = append([]Exclusion(nil), fc.exclusions...)
	return c
}

// remap returns a copy whose float nodes are renamed through m. Floats of
// nodes missing from m are dropped.
func (fc *FloatingContext) remap(m map[int]int) *FloatingContext {
	if fc == nil {
		return nil
	}
	c := &FloatingContext{lastTop: fc.lastTop}
	for _, ex := range fc.exclusions {
		if to, ok := m[ex.Node]; ok {
			ex.Node = to
			c.exclusions = append(c.exclusions, ex)
		}
	}
	return c
}

// AvailableInlineSize returns the band [start, end) of [left, right] not
// covered by floats intersecting the block range [y, y+height).
func (fc *FloatingContext) AvailableInlineSize(y, height, left, right float64) (start, end float64) {
	start, end = left, right
	if fc == nil {
		return
	}
	if height <= 0 {
		// a zero-height band still meets floats that start at y
		height = 1e-6
	}
	for _, ex := range fc.exclusions {
		if ex.Rect.MaxY() <= y || ex.Rect.Origin.Y >= y+height {
			continue
		}
		if ex.Rect.Size.Height <= 0 {
			continue
		}
		switch ex.Side {
		case css.FloatLeft:
			start = math.Max(start, ex.Rect.MaxX())
		case css.FloatRight:
			end = math.Min(end, ex.Rect.Origin.X)
		}
	}
	return
}

// nextBottom returns the smallest float bottom below y, false if none.
func (fc *FloatingContext) nextBottom(y float64) (float64, bool) {
	next, found := math.Inf(1), false
	for _, ex := range fc.Exclusions() {
		if b := ex.Rect.MaxY(); b > y && b < next {
			next, found = b, true
		}
	}
	return next, found
}

// Place finds the position of a float margin box of the given size: the
// highest position at or below minY where it fits beside earlier floats,
// pushed to the left or right edge of [left, right]. The float is recorded
// and its margin-box origin returned.
func (fc *FloatingContext) Place(node int, side css.Float, width, height, minY, left, right float64) geom.LogicalPosition {
	y := math.Max(minY, fc.lastTop)
	var x float64
	for {
		start, end := fc.AvailableInlineSize(y, height, left, right)
		fits := end-start >= width-1e-9
		if !fits && start == left && end == right {
			// nothing to wait for; the float overflows
			fits = true
		}
		if fits {
			if side == css.FloatRight {
				x = end - width
			} else {
				x = start
			}
			break
		}
		next, ok := fc.nextBottom(y)
		if !ok {
			x = start
			if side == css.FloatRight {
				x = end - width
			}
			break
		}
		y = next
	}
	rect := geom.Rect(x, y, width, height)
	fc.exclusions = append(fc.exclusions, Exclusion{Side: side, Rect: rect, Node: node})
	fc.lastTop = y
	return rect.Origin
}

// Clearance returns the block position a box with the given clear value
// must be moved to, or y when no float needs clearing.
func (fc *FloatingContext) Clearance(clear css.Clear, y float64) float64 {
	if clear == css.ClearNone {
		return y
	}
	for _, ex := range fc.Exclusions() {
		match := clear == css.ClearBoth ||
			(clear == css.ClearLeft && ex.Side == css.FloatLeft) ||
			(clear == css.ClearRight && ex.Side == css.FloatRight)
		if match && ex.Rect.MaxY() > y {
			y = ex.Rect.MaxY()
		}
	}
	return y
}

// Bottom is the lowest float margin edge, zero when empty.
func (fc *FloatingContext) Bottom() float64 {
	b := 0.0
	for _, ex := range fc.Exclusions() {
		b = math.Max(b, ex.Rect.MaxY())
	}
	return b
}

// bfcState locates a box's content box inside the block formatting context
// whose floats it shares.
type bfcState struct {
	floats *FloatingContext
	root   int
	main   float64 // content-box origin relative to the BFC root content box
	cross  float64
	page   float64 // block offset of the BFC root content box on the page canvas
}

func newBFC(root int, page float64) *bfcState {
	return &bfcState{floats: NewFloatingContext(), root: root, page: page}
}

// at returns the state for a box whose origin is offset by (main, cross).
func (b *bfcState) at(main, cross float64) *bfcState {
	c := *b
	c.main += main
	c.cross += cross
	return &c
}

// absCross is the page-canvas block offset of a local block position.
func (b *bfcState) absCross(y float64) float64 {
	return b.page + b.cross + y
}
