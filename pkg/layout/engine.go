package layout

import (
	"math"

	"quill/pkg/css"
	"quill/pkg/dom"
	"quill/pkg/geom"
	"quill/pkg/text"
)

// engine carries the state of one layout pass. It is created per
// LayoutDocument call and never shared.
type layoutEngine struct {
	cfg      config
	dom      dom.StyledDom
	pseudo   dom.PseudoStyler
	spans    dom.CellSpanner
	hasher   dom.StyleHasher
	tree     *LayoutTree
	sink     DebugSink
	viewport geom.LogicalSize

	intrinsicDirty   []bool
	intrinsicChanged []bool
	visited          []bool // laid out at least once this frame
	fontSizes        []float64
	floats           map[int]*FloatingContext // BFC root -> floats placed this pass
	positions        map[int]geom.LogicalPosition
	pageCount        int
}

func newEngine(d dom.StyledDom, cfg config, sink DebugSink, viewport geom.LogicalSize) *layoutEngine {
	le := &layoutEngine{cfg: cfg, dom: d, sink: sink, viewport: viewport}
	le.pseudo, _ = d.(dom.PseudoStyler)
	le.spans, _ = d.(dom.CellSpanner)
	le.hasher, _ = d.(dom.StyleHasher)
	return le
}

// setTree installs the tree the engine works on and resets per-node caches.
func (le *layoutEngine) setTree(t *LayoutTree) {
	le.tree = t
	le.fontSizes = make([]float64, t.Len())
	for i := range le.fontSizes {
		le.fontSizes[i] = math.NaN()
	}
	le.floats = make(map[int]*FloatingContext)
}

func (le *layoutEngine) node(idx int) *LayoutNode { return &le.tree.Nodes[idx] }

// owner returns the dom node whose style governs idx: its own node, or for
// pseudo-elements and anonymous boxes the nearest ancestor's.
func (le *layoutEngine) owner(idx int) dom.NodeId {
	for i := idx; i >= 0; i = le.tree.Nodes[i].Parent {
		if d := le.tree.Nodes[i].DomNode; d != dom.NoNode {
			return d
		}
	}
	return dom.NoNode
}

// value returns the computed value of a property for a layout node.
func (le *layoutEngine) value(idx int, kind css.PropertyKind) css.Value {
	n := &le.tree.Nodes[idx]
	var v css.Value
	switch {
	case n.DomNode != dom.NoNode:
		v = le.dom.Style(n.DomNode, kind)
	case n.Pseudo != dom.PseudoNone:
		ok := false
		if le.pseudo != nil && n.Parent >= 0 {
			v, ok = le.pseudo.PseudoStyle(le.owner(n.Parent), n.Pseudo, kind)
		}
		if !ok {
			v = css.InitialValue
			if kind.Inherited() {
				v = css.InheritValue
			}
		}
	default:
		v = css.InitialValue
		if kind.Inherited() {
			v = css.InheritValue
		}
	}
	if v.Kind == css.Inherit {
		if n.Parent < 0 {
			return css.InitialValue
		}
		return le.value(n.Parent, kind)
	}
	return v
}

// styleOf reads a typed property. Payloads of an unexpected type fall back
// to the initial value with a warning.
func styleOf[T any](le *layoutEngine, idx int, kind css.PropertyKind) css.MultiValue[T] {
	m, err := css.Typed[T](le.value(idx, kind))
	if err != nil {
		le.warn(idx, "%s: %v, using initial value", kind, err)
	}
	return m
}

func keywordOf[T any](le *layoutEngine, idx int, kind css.PropertyKind, def T) T {
	return styleOf[T](le, idx, kind).Or(def)
}

func (le *layoutEngine) lengthOf(idx int, kind css.PropertyKind) css.MultiValue[css.Length] {
	return styleOf[css.Length](le, idx, kind)
}

func (le *layoutEngine) resolveContext(idx int, base float64) css.ResolveContext {
	return css.ResolveContext{
		PercentBase:  base,
		FontSize:     le.fontSize(idx),
		RootFontSize: le.fontSize(le.tree.Root),
		Viewport:     le.viewport,
	}
}

// resolve returns the pixel value of a length property, false for auto,
// initial, intrinsic keywords and percentages of an indefinite base.
func (le *layoutEngine) resolve(idx int, kind css.PropertyKind, base float64) (float64, bool) {
	l, ok := le.lengthOf(idx, kind).Get()
	if !ok {
		return 0, false
	}
	return l.Resolve(le.resolveContext(idx, base))
}

// resolveOr is resolve with a default.
func (le *layoutEngine) resolveOr(idx int, kind css.PropertyKind, base, def float64) float64 {
	if v, ok := le.resolve(idx, kind, base); ok {
		return v
	}
	return def
}

// fontSize returns the computed font size in pixels.
func (le *layoutEngine) fontSize(idx int) float64 {
	if idx < 0 {
		return le.cfg.defaultFontSize
	}
	if fs := le.fontSizes[idx]; !math.IsNaN(fs) {
		return fs
	}
	parent := le.cfg.defaultFontSize
	n := &le.tree.Nodes[idx]
	if n.Parent >= 0 {
		parent = le.fontSize(n.Parent)
	}
	fs := parent
	v := le.value(idx, css.PropFontSize)
	inherited := n.Parent >= 0 && sameValue(v, le.value(n.Parent, css.PropFontSize))
	if l, ok := le.lengthOf(idx, css.PropFontSize).Get(); ok && !inherited {
		ctx := css.ResolveContext{PercentBase: parent, FontSize: parent, RootFontSize: le.cfg.defaultFontSize, Viewport: le.viewport}
		if r, ok := l.Resolve(ctx); ok && r >= 0 {
			fs = r
		}
	}
	le.fontSizes[idx] = fs
	return fs
}

func sameValue(a, b css.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	la, okA := a.Data().(css.Length)
	lb, okB := b.Data().(css.Length)
	return okA && okB && la == lb
}

// lineHeight returns an explicit line-height, false for `normal`.
func (le *layoutEngine) lineHeight(idx int) (float64, bool) {
	l, ok := le.lengthOf(idx, css.PropLineHeight).Get()
	if !ok {
		return 0, false
	}
	fs := le.fontSize(idx)
	if l.Unit == css.UnitNumber {
		return l.Value * fs, true
	}
	return l.Resolve(css.ResolveContext{PercentBase: fs, FontSize: fs, RootFontSize: le.fontSize(le.tree.Root), Viewport: le.viewport})
}

func (le *layoutEngine) fontKey(idx int) text.FontKey {
	return text.FontKey{
		Family: styleOf[string](le, idx, css.PropFontFamily).Or("sans-serif"),
		Size:   le.fontSize(idx),
		Weight: styleOf[int](le, idx, css.PropFontWeight).Or(400),
		Italic: keywordOf(le, idx, css.PropFontStyle, css.FontStyleNormal) == css.FontStyleItalic,
	}
}

func (le *layoutEngine) overflow(idx int) (x, y css.Overflow) {
	return keywordOf(le, idx, css.PropOverflowX, css.OverflowVisible),
		keywordOf(le, idx, css.PropOverflowY, css.OverflowVisible)
}

// isScrollContainer reports overflow auto or scroll on either axis.
func (le *layoutEngine) isScrollContainer(idx int) bool {
	x, y := le.overflow(idx)
	return x.IsScrollable() || y.IsScrollable()
}

func (le *layoutEngine) boxSizing(idx int) css.BoxSizing {
	return keywordOf(le, idx, css.PropBoxSizing, css.ContentBox)
}

// styleFingerprint hashes everything about a node's style that can change
// its layout. Inherited properties are hashed by computed value so that a
// change on an ancestor reaches the descendants.
func (le *layoutEngine) styleFingerprint(idx int) uint64 {
	h := newHasher()
	n := &le.tree.Nodes[idx]
	if n.DomNode != dom.NoNode && le.hasher != nil {
		h.u64(le.hasher.StyleHash(n.DomNode))
		for k := css.PropertyKind(0); int(k) < css.PropertyCount; k++ {
			if k.Inherited() {
				h.str(le.value(idx, k).String())
			}
		}
		return h.sum()
	}
	for k := css.PropertyKind(0); int(k) < css.PropertyCount; k++ {
		h.str(le.value(idx, k).String())
	}
	return h.sum()
}
