package dom

import (
	"fmt"

	"quill/pkg/css"
)

type docNode struct {
	typ      NodeType
	parent   NodeId
	children []NodeId
	style    *css.Style
	state    NodeState
	pseudo   map[PseudoKind]*css.Style
	colspan  int
	rowspan  int
}

// Document is an arena-backed StyledDom. Styles are stored as declared
// values; Style resolves inheritance on lookup.
type Document struct {
	nodes []docNode
	root  NodeId
}

var _ StyledDom = (*Document)(nil)
var _ PseudoStyler = (*Document)(nil)
var _ CellSpanner = (*Document)(nil)
var _ StyleHasher = (*Document)(nil)

func NewDocument() *Document {
	return &Document{root: NoNode}
}

func (d *Document) NodeCount() int { return len(d.nodes) }

func (d *Document) Root() NodeId { return d.root }

func (d *Document) valid(id NodeId) bool {
	return id >= 0 && int(id) < len(d.nodes)
}

func (d *Document) ChildrenOf(id NodeId) []NodeId {
	if !d.valid(id) {
		return nil
	}
	return d.nodes[id].children
}

// Parent returns the parent of id, NoNode for the root or detached nodes.
func (d *Document) Parent(id NodeId) NodeId {
	if !d.valid(id) {
		return NoNode
	}
	return d.nodes[id].parent
}

func (d *Document) NodeType(id NodeId) NodeType {
	if !d.valid(id) {
		return NodeType{}
	}
	return d.nodes[id].typ
}

func (d *Document) NodeState(id NodeId) NodeState {
	if !d.valid(id) {
		return 0
	}
	return d.nodes[id].state
}

// Style returns the computed value: the declared value, or for unset
// inherited properties and explicit `inherit`, the parent's computed value.
func (d *Document) Style(id NodeId, kind css.PropertyKind) css.Value {
	for d.valid(id) {
		n := &d.nodes[id]
		if n.typ.Kind == TextNode {
			id = n.parent
			continue
		}
		v := n.style.Get(kind)
		switch {
		case v.Kind == css.Inherit:
		case v.Kind == css.Initial && !n.style.Has(kind) && kind.Inherited():
		default:
			return v
		}
		id = n.parent
	}
	return css.InitialValue
}

// DeclaredStyle exposes the declared style of a node for editing.
func (d *Document) DeclaredStyle(id NodeId) *css.Style {
	if !d.valid(id) {
		return nil
	}
	return d.nodes[id].style
}

func (d *Document) PseudoStyle(id NodeId, pseudo PseudoKind, kind css.PropertyKind) (css.Value, bool) {
	if !d.valid(id) {
		return css.InitialValue, false
	}
	ps, ok := d.nodes[id].pseudo[pseudo]
	if !ok {
		return css.InitialValue, false
	}
	v := ps.Get(kind)
	if v.Kind == css.Inherit || (!ps.Has(kind) && kind.Inherited()) {
		return d.Style(id, kind), true
	}
	return v, true
}

func (d *Document) CellSpan(id NodeId) (int, int) {
	if !d.valid(id) {
		return 1, 1
	}
	n := d.nodes[id]
	return max(n.colspan, 1), max(n.rowspan, 1)
}

// StyleHash fingerprints the declared and pseudo styles of a node.
func (d *Document) StyleHash(id NodeId) uint64 {
	if !d.valid(id) {
		return 0
	}
	n := d.nodes[id]
	h := n.style.Hash()
	for _, k := range []PseudoKind{PseudoMarker, PseudoBefore, PseudoAfter} {
		if ps, ok := n.pseudo[k]; ok {
			h = h*31 + ps.Hash() + uint64(k)
		}
	}
	return h*31 + uint64(n.colspan)<<8 + uint64(n.rowspan)
}

func (d *Document) add(parent NodeId, n docNode) NodeId {
	id := NodeId(len(d.nodes))
	n.parent = parent
	if n.style == nil {
		n.style = css.NewStyle()
	}
	d.nodes = append(d.nodes, n)
	if parent == NoNode {
		if d.root == NoNode {
			d.root = id
		}
	} else if d.valid(parent) {
		d.nodes[parent].children = append(d.nodes[parent].children, id)
	}
	return id
}

// AddElement appends an element below parent (NoNode creates the root).
// The tag's user-agent defaults are applied underneath style.
func (d *Document) AddElement(parent NodeId, tag string, style *css.Style) NodeId {
	s := UserAgentStyle(tag)
	s.Merge(style)
	return d.add(parent, docNode{typ: NodeType{Kind: ElementNode, Tag: tag}, style: s})
}

// AddText appends a text node.
func (d *Document) AddText(parent NodeId, text string) NodeId {
	return d.add(parent, docNode{typ: NodeType{Kind: TextNode, Text: text}})
}

// AddImage appends a replaced image element.
func (d *Document) AddImage(parent NodeId, img ImageRef, style *css.Style) NodeId {
	s := UserAgentStyle("img")
	s.Merge(style)
	return d.add(parent, docNode{typ: NodeType{Kind: ImageNode, Tag: "img", Image: img}, style: s})
}

// AddTexture appends a GL texture placeholder.
func (d *Document) AddTexture(parent NodeId, tex ImageRef, style *css.Style) NodeId {
	s := UserAgentStyle("img")
	s.Merge(style)
	return d.add(parent, docNode{typ: NodeType{Kind: TextureNode, Tag: "texture", Image: tex}, style: s})
}

// SetStyle replaces one declared property.
func (d *Document) SetStyle(id NodeId, kind css.PropertyKind, v css.Value) {
	if d.valid(id) {
		d.nodes[id].style.Set(kind, v)
	}
}

// SetDeclarations parses decl and applies it on top of the node's style.
func (d *Document) SetDeclarations(id NodeId, decl string) error {
	if !d.valid(id) {
		return fmt.Errorf("dom: no node %d", id)
	}
	return d.nodes[id].style.AddDeclarations(decl)
}

// SetPseudoStyle attaches a ::marker, ::before or ::after style.
func (d *Document) SetPseudoStyle(id NodeId, pseudo PseudoKind, style *css.Style) {
	if !d.valid(id) {
		return
	}
	n := &d.nodes[id]
	if n.pseudo == nil {
		n.pseudo = make(map[PseudoKind]*css.Style)
	}
	n.pseudo[pseudo] = style
}

func (d *Document) SetState(id NodeId, state NodeState) {
	if d.valid(id) {
		d.nodes[id].state = state
	}
}

// SetText replaces the content of a text node.
func (d *Document) SetText(id NodeId, text string) {
	if d.valid(id) && d.nodes[id].typ.Kind == TextNode {
		d.nodes[id].typ.Text = text
	}
}

// SetCellSpan records colspan/rowspan for a table cell.
func (d *Document) SetCellSpan(id NodeId, cols, rows int) {
	if d.valid(id) {
		d.nodes[id].colspan, d.nodes[id].rowspan = cols, rows
	}
}

// RemoveChild detaches child from parent. The node stays in the arena but is
// no longer reachable from the root.
func (d *Document) RemoveChild(parent, child NodeId) {
	if !d.valid(parent) {
		return
	}
	kids := d.nodes[parent].children
	for i, c := range kids {
		if c == child {
			d.nodes[parent].children = append(kids[:i:i], kids[i+1:]...)
			d.nodes[child].parent = NoNode
			return
		}
	}
}

// MoveChild moves child to position index among parent's children.
func (d *Document) MoveChild(parent, child NodeId, index int) {
	d.RemoveChild(parent, child)
	if !d.valid(parent) || !d.valid(child) {
		return
	}
	kids := d.nodes[parent].children
	index = min(max(index, 0), len(kids))
	kids = append(kids[:index:index], append([]NodeId{child}, kids[index:]...)...)
	d.nodes[parent].children = kids
	d.nodes[child].parent = parent
}

// Clone returns a deep copy; edits to the copy do not affect d.
func (d *Document) Clone() *Document {
	c := &Document{root: d.root, nodes: make([]docNode, len(d.nodes))}
	for i, n := range d.nodes {
		n.children = append([]NodeId(nil), n.children...)
		n.style = n.style.Clone()
		if n.pseudo != nil {
			ps := make(map[PseudoKind]*css.Style, len(n.pseudo))
			for k, v := range n.pseudo {
				ps[k] = v.Clone()
			}
			n.pseudo = ps
		}
		c.nodes[i] = n
	}
	return c
}

// FindByTag returns the ids of all reachable elements with the given tag in
// document order.
func (d *Document) FindByTag(tag string) []NodeId {
	var out []NodeId
	var walk func(NodeId)
	walk = func(id NodeId) {
		if d.nodes[id].typ.Kind != TextNode && d.nodes[id].typ.Tag == tag {
			out = append(out, id)
		}
		for _, c := range d.nodes[id].children {
			walk(c)
		}
	}
	if d.valid(d.root) {
		walk(d.root)
	}
	return out
}
