package layout

import (
	"math"

	"quill/pkg/css"
	"quill/pkg/geom"
)

// containingBlock returns the absolute padding box that an out-of-flow box
// is positioned against: the nearest positioned ancestor for absolute
// boxes, the viewport for fixed ones and when no ancestor is positioned.
func (le *layoutEngine) containingBlock(idx int) geom.LogicalRect {
	viewport := geom.LogicalRect{Size: le.viewport}
	if le.node(idx).Position == css.PositionFixed {
		return viewport
	}
	for p := le.node(idx).Parent; p >= 0; p = le.node(p).Parent {
		pn := le.node(p)
		if pn.Position == css.PositionStatic {
			continue
		}
		b := pn.BoxProps.Border
		sb := pn.Scrollbars.Reserved()
		origin := le.positions[p].Add(geom.LogicalPosition{X: b.Left, Y: b.Top})
		size := geom.LogicalSize{
			Width:  math.Max(0, pn.UsedSize.Width-b.Horizontal()-sb.Horizontal()),
			Height: math.Max(0, pn.UsedSize.Height-b.Vertical()-sb.Vertical()),
		}
		return geom.LogicalRect{Origin: origin, Size: size}
	}
	return viewport
}

// offsets are the resolved inset properties of a positioned box; NaN for
// auto.
type offsets struct {
	top, right, bottom, left float64
}

func (le *layoutEngine) insets(idx int, cb geom.LogicalSize) offsets {
	get := func(k css.PropertyKind, base float64) float64 {
		if v, ok := le.resolve(idx, k, base); ok {
			return v
		}
		return nan
	}
	return offsets{
		top:    get(css.PropTop, cb.Height),
		right:  get(css.PropRight, cb.Width),
		bottom: get(css.PropBottom, cb.Height),
		left:   get(css.PropLeft, cb.Width),
	}
}

// placeOutOfFlow sizes and positions an absolutely or fixed positioned box
// against its containing block. Sides whose insets are auto fall back to
// the static position; auto margins center the box between two insets.
func (le *layoutEngine) placeOutOfFlow(idx int) {
	n := le.node(idx)
	cb := le.containingBlock(idx)
	in := le.insets(idx, cb.Size)
	var origin geom.LogicalPosition
	if n.Parent >= 0 {
		origin = le.contentOrigin(n.Parent)
	}
	static := origin.Add(n.StaticPosition)

	bp := le.resolveBoxProps(idx, cb.Size.Width)
	avail := cb.Size
	if isDefinite(in.left) {
		avail.Width -= in.left
	}
	if isDefinite(in.right) {
		avail.Width -= in.right
	}
	if isDefinite(in.top) {
		avail.Height -= in.top
	}
	if isDefinite(in.bottom) {
		avail.Height -= in.bottom
	}
	avail.Width = math.Max(0, avail.Width)
	avail.Height = math.Max(0, avail.Height)

	forced := nanSize()
	_, wSet := le.lengthOf(idx, css.PropWidth).Get()
	_, hSet := le.lengthOf(idx, css.PropHeight).Get()
	if isDefinite(in.left) && isDefinite(in.right) && !wSet && !n.isReplaced {
		forced.Width = math.Max(0, avail.Width-bp.Margin.Horizontal())
	}
	if isDefinite(in.top) && isDefinite(in.bottom) && !hSet && !n.isReplaced {
		forced.Height = math.Max(0, avail.Height-bp.Margin.Vertical())
	}
	out := le.layoutNode(idx, LayoutConstraints{
		AvailableSize:       avail,
		WritingMode:         n.Mode,
		TextAlign:           css.TextAlignStart,
		ContainingBlockSize: cb.Size,
		ForcedSize:          forced,
	}, nil)
	w, h := out.Size.Width, out.Size.Height
	m := bp.Margin
	am := le.autoMargins(idx)

	var x, y float64
	switch {
	case isDefinite(in.left) && isDefinite(in.right):
		free := cb.Size.Width - in.left - in.right - w - m.Horizontal()
		ml := m.Left
		switch {
		case am.Left && am.Right:
			ml = math.Max(0, free) / 2
		case am.Left:
			ml = math.Max(0, free)
		}
		x = cb.Origin.X + in.left + ml
	case isDefinite(in.left):
		x = cb.Origin.X + in.left + m.Left
	case isDefinite(in.right):
		x = cb.Origin.X + cb.Size.Width - in.right - m.Right - w
	default:
		x = static.X + m.Left
	}
	switch {
	case isDefinite(in.top) && isDefinite(in.bottom):
		free := cb.Size.Height - in.top - in.bottom - h - m.Vertical()
		mt := m.Top
		switch {
		case am.Top && am.Bottom:
			mt = math.Max(0, free) / 2
		case am.Top:
			mt = math.Max(0, free)
		}
		y = cb.Origin.Y + in.top + mt
	case isDefinite(in.top):
		y = cb.Origin.Y + in.top + m.Top
	case isDefinite(in.bottom):
		y = cb.Origin.Y + cb.Size.Height - in.bottom - m.Bottom - h
	default:
		y = static.Y + m.Top
	}
	pos := geom.LogicalPosition{X: x, Y: y}
	n.RelativePosition = pos.Sub(origin)
	le.positions[idx] = pos
}
