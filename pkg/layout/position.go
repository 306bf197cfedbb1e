package layout

import (
	"quill/pkg/css"
	"quill/pkg/geom"
)

// contentOrigin is the absolute origin of the content box of idx, where the
// relative positions of its children start.
func (le *layoutEngine) contentOrigin(idx int) geom.LogicalPosition {
	n := le.node(idx)
	return le.positions[idx].Add(n.BoxProps.ContentOffset()).Add(n.contentShift)
}

// relativeOffset is the shift of a position: relative box. left wins over
// right and top over bottom; percentages refer to the parent's content box.
func (le *layoutEngine) relativeOffset(idx int) geom.LogicalPosition {
	n := le.node(idx)
	if n.Position != css.PositionRelative && n.Position != css.PositionSticky {
		return geom.LogicalPosition{}
	}
	var cb geom.LogicalSize
	if n.Parent >= 0 {
		p := le.node(n.Parent)
		cb = p.BoxProps.InnerSize(p.UsedSize, p.Mode)
	} else {
		cb = le.viewport
	}
	var off geom.LogicalPosition
	if v, ok := le.resolve(idx, css.PropLeft, cb.Width); ok {
		off.X = v
	} else if v, ok := le.resolve(idx, css.PropRight, cb.Width); ok {
		off.X = -v
	}
	if v, ok := le.resolve(idx, css.PropTop, cb.Height); ok {
		off.Y = v
	} else if v, ok := le.resolve(idx, css.PropBottom, cb.Height); ok {
		off.Y = -v
	}
	return off
}

// propagatePositions converts relative positions into absolute ones, top
// down in document order. Out-of-flow boxes are queued and placed once
// everything around them has a position; their subtrees follow.
func (le *layoutEngine) propagatePositions() {
	le.positions = make(map[int]geom.LogicalPosition, le.tree.Len())
	root := le.tree.Root
	le.positions[root] = le.node(root).RelativePosition.Add(le.relativeOffset(root))
	var queue []int
	var walk func(idx int)
	walk = func(idx int) {
		origin := le.contentOrigin(idx)
		for _, ch := range le.node(idx).Children {
			cn := le.node(ch)
			if cn.FC.OutOfFlow {
				queue = append(queue, ch)
				continue
			}
			le.positions[ch] = origin.Add(cn.RelativePosition).Add(le.relativeOffset(ch))
			walk(ch)
		}
	}
	walk(root)
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		le.placeOutOfFlow(idx)
		le.debug(DebugPositionCalculation, idx, "out-of-flow at %v", le.positions[idx])
		walk(idx)
	}
}
