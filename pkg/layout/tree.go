package layout

import (
	"fmt"
	"math"

	"quill/pkg/css"
	"quill/pkg/dom"
	"quill/pkg/geom"
	"quill/pkg/text"
)

// ContextKind selects the algorithm that lays out a node's children.
type ContextKind uint8

const (
	BlockContext ContextKind = iota
	InlineContext
	FlexContext
	GridContext
	TableContext
	TableRowGroupContext
	TableRowContext
	TableCellContext
)

func (k ContextKind) String() string {
	switch k {
	case InlineContext:
		return "inline"
	case FlexContext:
		return "flex"
	case GridContext:
		return "grid"
	case TableContext:
		return "table"
	case TableRowGroupContext:
		return "table-row-group"
	case TableRowContext:
		return "table-row"
	case TableCellContext:
		return "table-cell"
	}
	return "block"
}

// FormattingContext tags a layout node with its layout algorithm.
// Independent is set when the node establishes a formatting context of its
// own (a BFC root, a flex/grid/table container, an atomic inline, ...).
// OutOfFlow marks absolutely and fixed positioned boxes, which are skipped by
// their parent's algorithm and placed afterwards.
type FormattingContext struct {
	Kind        ContextKind
	Independent bool
	OutOfFlow   bool
}

func (fc FormattingContext) String() string {
	s := fc.Kind.String()
	if fc.Independent {
		s += "+fc"
	}
	if fc.OutOfFlow {
		s += "+oof"
	}
	return s
}

// AnonymousKind classifies boxes without a dom node.
type AnonymousKind uint8

const (
	NotAnonymous AnonymousKind = iota
	AnonymousBlock
	AnonymousTableRow
	AnonymousTableCell
)

// IntrinsicSizes are the border-box min-content and max-content inline sizes.
type IntrinsicSizes struct {
	MinContent float64
	MaxContent float64
}

// ScrollbarInfo is the latched scrollbar state of a scroll container.
type ScrollbarInfo struct {
	Horizontal bool
	Vertical   bool
	Thickness  float64
}

// Union merges presence monotonically.
func (s ScrollbarInfo) Union(o ScrollbarInfo) ScrollbarInfo {
	r := ScrollbarInfo{
		Horizontal: s.Horizontal || o.Horizontal,
		Vertical:   s.Vertical || o.Vertical,
		Thickness:  math.Max(s.Thickness, o.Thickness),
	}
	return r
}

// Covers reports whether s has every scrollbar o has.
func (s ScrollbarInfo) Covers(o ScrollbarInfo) bool {
	return (s.Horizontal || !o.Horizontal) && (s.Vertical || !o.Vertical)
}

// Reserved is the space taken from the padding box: a vertical bar on the
// right, a horizontal bar at the bottom.
func (s ScrollbarInfo) Reserved() geom.Edges {
	var e geom.Edges
	if s.Vertical {
		e.Right = s.Thickness
	}
	if s.Horizontal {
		e.Bottom = s.Thickness
	}
	return e
}

func (s ScrollbarInfo) String() string {
	switch {
	case s.Horizontal && s.Vertical:
		return "both"
	case s.Horizontal:
		return "horizontal"
	case s.Vertical:
		return "vertical"
	}
	return "none"
}

// TextRun is a painted piece of text on one line, relative to the content
// box of the inline formatting context root that owns it.
type TextRun struct {
	Node dom.NodeId // text node, or the owner of generated content
	Text string
	Rect geom.LogicalRect
	Font text.FontKey
}

// LayoutNode is one box of the layout tree.
type LayoutNode struct {
	DomNode   dom.NodeId // dom.NoNode for anonymous boxes
	Parent    int        // -1 for the root
	Children  []int
	Anonymous AnonymousKind
	Pseudo    dom.PseudoKind
	FC        FormattingContext
	Display   css.Display
	Position  css.Position
	Float     css.Float
	Mode      geom.WritingMode

	BoxProps         geom.BoxProps
	Intrinsic        IntrinsicSizes
	UsedSize         geom.LogicalSize // border box
	HasUsedSize      bool
	RelativePosition geom.LogicalPosition // border-box origin relative to the parent's content box
	StaticPosition   geom.LogicalPosition // for out-of-flow boxes, same reference
	Scrollbars       ScrollbarInfo
	OverflowSize     geom.LogicalSize // extent of in-flow content, relative to the content box

	NodeDataHash uint64
	SubtreeHash  uint64

	// Text is the generated content of ::marker, ::before and ::after.
	Text string
	// Runs holds the line fragments of an inline formatting context root.
	Runs []TextRun

	inlineRoot bool // lays out its children as an inline formatting context
	inlineBox  bool // non-atomic inline box placed by its IFC root
	replaced   dom.ImageRef
	isReplaced bool
	content    css.Content
	// contentShift moves the content of a table cell for vertical-align.
	contentShift geom.LogicalPosition
	contentCross float64 // block-axis extent of the laid out content
	items        []inlineItem

	memo memoEntry
}

// IsAnonymous reports a box without a dom node.
func (n *LayoutNode) IsAnonymous() bool { return n.DomNode == dom.NoNode }

// LayoutTree is the arena of layout nodes. Indices are stable for the
// lifetime of the tree.
type LayoutTree struct {
	Nodes []LayoutNode
	Root  int
}

// Len is the number of nodes.
func (t *LayoutTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

// Node returns the node at idx, or nil for an out-of-range index.
func (t *LayoutTree) Node(idx int) *LayoutNode {
	if t == nil || idx < 0 || idx >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[idx]
}

// Walk visits the tree in document order (pre-order). Returning false from
// fn skips the node's subtree.
func (t *LayoutTree) Walk(fn func(idx int) bool) {
	if t.Len() == 0 {
		return
	}
	var walk func(int)
	walk = func(idx int) {
		if !fn(idx) {
			return
		}
		for _, c := range t.Nodes[idx].Children {
			walk(c)
		}
	}
	walk(t.Root)
}

// PostOrder visits children before their parent.
func (t *LayoutTree) PostOrder(fn func(idx int)) {
	if t.Len() == 0 {
		return
	}
	var walk func(int)
	walk = func(idx int) {
		for _, c := range t.Nodes[idx].Children {
			walk(c)
		}
		fn(idx)
	}
	walk(t.Root)
}

// FindDom returns the first box generated for dom node id, -1 if none.
func (t *LayoutTree) FindDom(id dom.NodeId) int {
	for i := range t.Nodes {
		if t.Nodes[i].DomNode == id && t.Nodes[i].Pseudo == dom.PseudoNone {
			return i
		}
	}
	return -1
}

// PseudoOf returns the pseudo-element child of kind p of idx, -1 if none.
func (t *LayoutTree) PseudoOf(idx int, p dom.PseudoKind) int {
	n := t.Node(idx)
	if n == nil {
		return -1
	}
	for _, c := range n.Children {
		if t.Nodes[c].Pseudo == p {
			return c
		}
	}
	return -1
}

// IsAncestor reports whether a is a strict ancestor of idx.
func (t *LayoutTree) IsAncestor(a, idx int) bool {
	for p := t.Nodes[idx].Parent; p >= 0; p = t.Nodes[p].Parent {
		if p == a {
			return true
		}
	}
	return false
}

// Label is a short human readable name of a node.
func (t *LayoutTree) Label(idx int) string {
	n := t.Node(idx)
	if n == nil {
		return "?"
	}
	switch {
	case n.Pseudo != dom.PseudoNone:
		return n.Pseudo.String()
	case n.Anonymous == AnonymousBlock:
		return "(anonymous block)"
	case n.Anonymous == AnonymousTableRow:
		return "(anonymous row)"
	case n.Anonymous == AnonymousTableCell:
		return "(anonymous cell)"
	}
	return fmt.Sprintf("node %d", n.DomNode)
}

// nearestIndependent returns the nearest strict ancestor of idx that
// establishes a formatting context, or the root.
func (t *LayoutTree) nearestIndependent(idx int) int {
	for p := t.Nodes[idx].Parent; p >= 0; p = t.Nodes[p].Parent {
		if t.Nodes[p].FC.Independent || p == t.Root {
			return p
		}
	}
	return t.Root
}
