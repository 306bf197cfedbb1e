package layout

import (
	"strings"

	"quill/pkg/css"
	"quill/pkg/dom"
	"quill/pkg/geom"
)

// entry is a child of a box under construction: either a generated box or
// a dom text node, which folds into the inline content of its container.
type entry struct {
	box  int
	text dom.NodeId
}

func boxEntry(idx int) entry        { return entry{box: idx, text: dom.NoNode} }
func textEntry(id dom.NodeId) entry { return entry{box: -1, text: id} }
func (en entry) isText() bool       { return en.box < 0 }

// builder generates the layout tree for a styled dom: one box per element,
// ::marker/::before/::after boxes, and anonymous boxes where the box tree
// skips levels.
type builder struct {
	le      *layoutEngine
	seen    []bool
	entries map[int][]entry // inline boxes keep their entries until the IFC root flattens them
	texts   map[int][]string
}

// buildTree builds a fresh layout tree from the engine's dom and installs it
// on the engine.
func (le *layoutEngine) buildTree() (*LayoutTree, error) {
	t := &LayoutTree{Root: -1}
	le.setTree(t)
	count := le.dom.NodeCount()
	if count == 0 {
		return t, nil
	}
	root := le.dom.Root()
	if root < 0 || int(root) >= count {
		return nil, invalidTree(int(root), "root out of range [0,%d)", count)
	}
	if le.dom.NodeType(root).Kind != dom.ElementNode {
		return nil, invalidTree(int(root), "root is not an element")
	}
	b := &builder{
		le:      le,
		seen:    make([]bool, count),
		entries: make(map[int][]entry),
		texts:   make(map[int][]string),
	}
	boxes, err := b.element(-1, root)
	if err != nil {
		return nil, err
	}
	if len(boxes) == 0 {
		return t, nil
	}
	t.Root = boxes[0]
	b.hashTree()
	tracer().Debugf("built layout tree with %d boxes for %d dom nodes", t.Len(), count)
	return t, nil
}

func (b *builder) tree() *LayoutTree { return b.le.tree }

func (b *builder) add(n LayoutNode) int {
	t := b.tree()
	t.Nodes = append(t.Nodes, n)
	b.le.fontSizes = append(b.le.fontSizes, nan)
	return len(t.Nodes) - 1
}

// structural reads display, position or float. These decide box generation,
// so a value the core cannot interpret aborts the pass.
func structural[T any](b *builder, parent int, id dom.NodeId, kind css.PropertyKind) (T, error) {
	v := b.le.dom.Style(id, kind)
	if v.Kind == css.Inherit && parent >= 0 {
		v = b.le.value(parent, kind)
	}
	m, err := css.Typed[T](v)
	if err != nil {
		return m.Val, &LayoutError{Kind: UnknownProperty, Node: int(id), Err: err}
	}
	return m.Val, nil
}

func (b *builder) children(id dom.NodeId) ([]dom.NodeId, error) {
	kids := b.le.dom.ChildrenOf(id)
	count := b.le.dom.NodeCount()
	for _, c := range kids {
		if c < 0 || int(c) >= count {
			return nil, invalidTree(int(id), "child %d out of range [0,%d)", c, count)
		}
	}
	return kids, nil
}

// element generates the boxes for dom element id. It returns no box for
// display:none and the children's boxes for display:contents.
func (b *builder) element(parent int, id dom.NodeId) ([]int, error) {
	if b.seen[id] {
		return nil, invalidTree(int(id), "node reached twice (cycle or shared child)")
	}
	b.seen[id] = true
	typ := b.le.dom.NodeType(id)
	display, err := structural[css.Display](b, parent, id, css.PropDisplay)
	if err != nil {
		return nil, err
	}
	position, err := structural[css.Position](b, parent, id, css.PropPosition)
	if err != nil {
		return nil, err
	}
	float, err := structural[css.Float](b, parent, id, css.PropFloat)
	if err != nil {
		return nil, err
	}
	switch display {
	case css.DisplayNone, css.DisplayTableColumn, css.DisplayTableColumnGroup:
		b.markSeen(id)
		return nil, nil
	case css.DisplayContents:
		if parent < 0 {
			display = css.DisplayBlock
			break
		}
		var out []int
		kids, err := b.children(id)
		if err != nil {
			return nil, err
		}
		for _, c := range kids {
			if b.le.dom.NodeType(c).Kind == dom.TextNode {
				b.seen[c] = true
				continue
			}
			boxes, err := b.element(parent, c)
			if err != nil {
				return nil, err
			}
			out = append(out, boxes...)
		}
		return out, nil
	}

	oof := position == css.PositionAbsolute || position == css.PositionFixed
	if oof {
		float = css.FloatNone
	}
	parentKind := ContextKind(255)
	parentMode := geom.HorizontalTb
	if parent >= 0 {
		parentKind = b.tree().Nodes[parent].FC.Kind
		parentMode = b.tree().Nodes[parent].Mode
	}
	flexOrGridItem := parentKind == FlexContext || parentKind == GridContext
	if parent < 0 || oof || float != css.FloatNone || flexOrGridItem {
		display = blockify(display)
	}

	n := LayoutNode{
		DomNode:  id,
		Parent:   parent,
		Display:  display,
		Position: position,
		Float:    float,
	}
	n.FC.OutOfFlow = oof
	idx := b.add(n)
	node := func() *LayoutNode { return &b.tree().Nodes[idx] }
	node().Mode = keywordOf(b.le, idx, css.PropWritingMode, geom.HorizontalTb)

	fc := &node().FC
	switch display {
	case css.DisplayFlex, css.DisplayInlineFlex:
		fc.Kind, fc.Independent = FlexContext, true
	case css.DisplayGrid, css.DisplayInlineGrid:
		fc.Kind, fc.Independent = GridContext, true
	case css.DisplayTable, css.DisplayInlineTable:
		fc.Kind, fc.Independent = TableContext, true
	case css.DisplayTableRowGroup, css.DisplayTableHeaderGroup, css.DisplayTableFooterGroup:
		fc.Kind = TableRowGroupContext
	case css.DisplayTableRow:
		fc.Kind = TableRowContext
	case css.DisplayTableCell:
		fc.Kind, fc.Independent = TableCellContext, true
	case css.DisplayInline:
		fc.Kind = InlineContext
		node().inlineBox = !typ.IsReplaced()
	default:
		fc.Kind = BlockContext
	}
	ox, oy := b.le.overflow(idx)
	if parent < 0 || oof || float != css.FloatNone || flexOrGridItem ||
		display == css.DisplayInlineBlock || display == css.DisplayTableCaption ||
		ox != css.OverflowVisible || oy != css.OverflowVisible ||
		node().Mode != parentMode {
		fc.Independent = true
	}

	if typ.IsReplaced() {
		n := node()
		n.isReplaced = true
		n.replaced = typ.Image
		n.inlineBox = false
		n.FC.Kind = BlockContext
		n.FC.Independent = true
		b.markSeen(id)
		return []int{idx}, nil
	}

	var ents []entry
	if display == css.DisplayListItem {
		if m := b.marker(idx); m >= 0 {
			ents = append(ents, boxEntry(m))
		}
	}
	if p := b.generated(idx, dom.PseudoBefore); p >= 0 {
		ents = append(ents, boxEntry(p))
	}
	kids, err := b.children(id)
	if err != nil {
		return nil, err
	}
	for _, c := range kids {
		if b.le.dom.NodeType(c).Kind == dom.TextNode {
			if b.seen[c] {
				return nil, invalidTree(int(c), "text node reached twice")
			}
			b.seen[c] = true
			ents = append(ents, textEntry(c))
			b.texts[idx] = append(b.texts[idx], b.le.dom.NodeType(c).Text)
			continue
		}
		boxes, err := b.element(idx, c)
		if err != nil {
			return nil, err
		}
		for _, bx := range boxes {
			b.tree().Nodes[bx].Parent = idx
			ents = append(ents, boxEntry(bx))
		}
	}
	if p := b.generated(idx, dom.PseudoAfter); p >= 0 {
		ents = append(ents, boxEntry(p))
	}
	b.arrange(idx, ents)
	return []int{idx}, nil
}

// markSeen marks a skipped subtree as visited so cycles through it are
// still detected.
func (b *builder) markSeen(id dom.NodeId) {
	for _, c := range b.le.dom.ChildrenOf(id) {
		if c >= 0 && int(c) < len(b.seen) && !b.seen[c] {
			b.seen[c] = true
			b.markSeen(c)
		}
	}
}

func blockify(d css.Display) css.Display {
	switch d {
	case css.DisplayInline, css.DisplayInlineBlock:
		return css.DisplayBlock
	case css.DisplayInlineFlex:
		return css.DisplayFlex
	case css.DisplayInlineGrid:
		return css.DisplayGrid
	case css.DisplayInlineTable:
		return css.DisplayTable
	}
	return d
}

// marker creates the ::marker box of a list item.
func (b *builder) marker(li int) int {
	idx := b.add(LayoutNode{
		DomNode: dom.NoNode,
		Parent:  li,
		Pseudo:  dom.PseudoMarker,
		Display: css.DisplayInline,
		Mode:    b.tree().Nodes[li].Mode,
		FC:      FormattingContext{Kind: InlineContext},
	})
	b.tree().Nodes[idx].inlineBox = true
	return idx
}

// generated creates a ::before or ::after box when the pseudo style has
// non-empty content.
func (b *builder) generated(owner int, p dom.PseudoKind) int {
	if b.le.pseudo == nil {
		return -1
	}
	id := b.tree().Nodes[owner].DomNode
	v, ok := b.le.pseudo.PseudoStyle(id, p, css.PropContent)
	if !ok {
		return -1
	}
	content, _ := v.Data().(css.Content)
	if len(content) == 0 {
		return -1
	}
	display := css.DisplayInline
	if dv, ok := b.le.pseudo.PseudoStyle(id, p, css.PropDisplay); ok {
		if d, ok := dv.Data().(css.Display); ok {
			display = d
		}
	}
	if display == css.DisplayNone {
		return -1
	}
	pk := b.tree().Nodes[owner].FC.Kind
	item := pk == FlexContext || pk == GridContext
	if item {
		display = blockify(display)
	}
	idx := b.add(LayoutNode{
		DomNode: dom.NoNode,
		Parent:  owner,
		Pseudo:  p,
		Display: display,
		Mode:    b.tree().Nodes[owner].Mode,
		content: content,
	})
	n := &b.tree().Nodes[idx]
	if display == css.DisplayInline {
		n.FC.Kind = InlineContext
		n.inlineBox = true
	} else {
		n.FC = FormattingContext{Kind: InlineContext, Independent: item || display == css.DisplayInlineBlock}
		n.inlineRoot = true
		n.items = []inlineItem{{kind: itemGenerated, node: idx, styleNode: idx}}
	}
	return idx
}

// anonymous appends an anonymous box of kind k under parent.
func (b *builder) anonymous(parent int, k AnonymousKind) int {
	n := LayoutNode{
		DomNode:   dom.NoNode,
		Parent:    parent,
		Anonymous: k,
		Mode:      b.tree().Nodes[parent].Mode,
	}
	switch k {
	case AnonymousTableRow:
		n.Display = css.DisplayTableRow
		n.FC.Kind = TableRowContext
	case AnonymousTableCell:
		n.Display = css.DisplayTableCell
		n.FC = FormattingContext{Kind: TableCellContext, Independent: true}
	default:
		n.Display = css.DisplayBlock
		n.FC.Kind = BlockContext
		if pk := b.tree().Nodes[parent].FC.Kind; pk == FlexContext || pk == GridContext {
			n.FC.Independent = true
		}
	}
	return b.add(n)
}

func (b *builder) adopt(parent int, ents []entry) {
	for _, en := range ents {
		if !en.isText() {
			b.tree().Nodes[en.box].Parent = parent
		}
	}
}

// arrange distributes the entries of idx according to its container type.
func (b *builder) arrange(idx int, ents []entry) {
	n := &b.tree().Nodes[idx]
	switch {
	case n.inlineBox:
		if b.hasBlockLevel(ents) {
			// block-in-inline: the inline box becomes a block container
			n.inlineBox = false
			n.Display = css.DisplayBlock
			n.FC.Kind = BlockContext
			b.arrangeBlock(idx, ents)
			return
		}
		b.entries[idx] = ents
		n.Children = boxesOf(ents)
	case n.FC.Kind == FlexContext || n.FC.Kind == GridContext:
		b.arrangeItems(idx, ents)
	case n.FC.Kind == TableContext:
		b.arrangeTable(idx, ents)
	case n.FC.Kind == TableRowGroupContext:
		b.arrangeRowGroup(idx, ents)
	case n.FC.Kind == TableRowContext:
		b.arrangeRow(idx, ents)
	default:
		b.arrangeBlock(idx, ents)
	}
}

func boxesOf(ents []entry) []int {
	var out []int
	for _, en := range ents {
		if !en.isText() {
			out = append(out, en.box)
		}
	}
	return out
}

// isNeutral reports floats, out-of-flow boxes and outside markers. They do
// not decide between inline and block content.
func (b *builder) isNeutral(en entry) bool {
	if en.isText() {
		return false
	}
	n := &b.tree().Nodes[en.box]
	return n.FC.OutOfFlow || n.Float != css.FloatNone || b.isOutsideMarker(en.box)
}

func (b *builder) isInlineLevel(en entry) bool {
	if en.isText() {
		return true
	}
	if b.isNeutral(en) {
		return false
	}
	return b.tree().Nodes[en.box].Display.IsInlineLevel()
}

func (b *builder) hasBlockLevel(ents []entry) bool {
	for _, en := range ents {
		if !en.isText() && !b.isNeutral(en) && !b.isInlineLevel(en) {
			return true
		}
	}
	return false
}

func (b *builder) isOutsideMarker(idx int) bool {
	return b.le.isOutsideMarker(idx)
}

func (b *builder) whitespaceOnly(ents []entry) bool {
	for _, en := range ents {
		if !en.isText() {
			return false
		}
		if strings.TrimSpace(b.le.dom.NodeType(en.text).Text) != "" {
			return false
		}
	}
	return true
}

// arrangeBlock lays out a block container's entries: all inline content
// makes it an inline formatting context root; mixed content gets its inline
// runs wrapped into anonymous blocks.
func (b *builder) arrangeBlock(idx int, ents []entry) {
	n := &b.tree().Nodes[idx]
	if !b.hasBlockLevel(ents) {
		hasInline := false
		for _, en := range ents {
			if b.isInlineLevel(en) {
				hasInline = true
				break
			}
		}
		n.Children = boxesOf(ents)
		if hasInline && !b.whitespaceOnlyInline(ents) {
			n.inlineRoot = true
			if n.FC.Kind == BlockContext {
				n.FC.Kind = InlineContext
			}
			b.tree().Nodes[idx].items = b.flatten(idx, idx, ents)
		}
		return
	}
	var children []int
	var run []entry
	flush := func() {
		if len(run) == 0 {
			return
		}
		if b.whitespaceOnlyInline(run) {
			for _, en := range run {
				if !en.isText() {
					children = append(children, en.box)
				}
			}
			run = nil
			return
		}
		anon := b.anonymous(idx, AnonymousBlock)
		b.adopt(anon, run)
		an := &b.tree().Nodes[anon]
		an.Children = boxesOf(run)
		an.inlineRoot = true
		an.FC.Kind = InlineContext
		an.items = b.flatten(anon, idx, run)
		b.texts[anon] = b.runTexts(run)
		children = append(children, anon)
		run = nil
	}
	for _, en := range ents {
		switch {
		case b.isInlineLevel(en):
			run = append(run, en)
		case b.isNeutral(en) && len(run) > 0 && !b.isOutsideMarker(en.box):
			run = append(run, en)
		default:
			flush()
			children = append(children, en.box)
		}
	}
	flush()
	b.tree().Nodes[idx].Children = children
}

// whitespaceOnlyInline is true for runs with nothing but collapsible white
// space and neutral boxes.
func (b *builder) whitespaceOnlyInline(ents []entry) bool {
	for _, en := range ents {
		if en.isText() {
			if strings.TrimSpace(b.le.dom.NodeType(en.text).Text) != "" {
				return false
			}
			continue
		}
		if b.isInlineLevel(en) {
			return false
		}
	}
	return true
}

func (b *builder) runTexts(ents []entry) []string {
	var out []string
	for _, en := range ents {
		if en.isText() {
			out = append(out, b.le.dom.NodeType(en.text).Text)
		}
	}
	return out
}

// arrangeItems wraps text runs of flex and grid containers into anonymous
// block items.
func (b *builder) arrangeItems(idx int, ents []entry) {
	var children []int
	var run []entry
	flush := func() {
		if len(run) == 0 || b.whitespaceOnly(run) {
			run = nil
			return
		}
		anon := b.anonymous(idx, AnonymousBlock)
		an := &b.tree().Nodes[anon]
		an.inlineRoot = true
		an.FC.Kind = InlineContext
		an.items = b.flatten(anon, idx, run)
		b.texts[anon] = b.runTexts(run)
		children = append(children, anon)
		run = nil
	}
	for _, en := range ents {
		if en.isText() {
			run = append(run, en)
			continue
		}
		flush()
		children = append(children, en.box)
	}
	flush()
	b.tree().Nodes[idx].Children = children
}

func (b *builder) isCell(en entry) bool {
	return !en.isText() && b.tree().Nodes[en.box].FC.Kind == TableCellContext
}

func (b *builder) isRow(en entry) bool {
	return !en.isText() && b.tree().Nodes[en.box].FC.Kind == TableRowContext
}

func (b *builder) isRowGroupOrCaption(en entry) bool {
	if en.isText() {
		return false
	}
	n := &b.tree().Nodes[en.box]
	return n.FC.Kind == TableRowGroupContext || n.Display == css.DisplayTableCaption || n.FC.OutOfFlow
}

// wrapCell puts non-cell content into an anonymous cell under parent.
func (b *builder) wrapCell(parent int, ents []entry) int {
	cell := b.anonymous(parent, AnonymousTableCell)
	b.adopt(cell, ents)
	b.arrangeBlock(cell, ents)
	return cell
}

// wrapRow groups cells (and stray content) into an anonymous row.
func (b *builder) wrapRow(parent int, ents []entry) int {
	row := b.anonymous(parent, AnonymousTableRow)
	b.adopt(row, ents)
	b.arrangeRow(row, ents)
	return row
}

func (b *builder) arrangeTable(idx int, ents []entry) {
	var children []int
	var pending []entry
	flush := func() {
		if len(pending) == 0 || b.whitespaceOnly(pending) {
			pending = nil
			return
		}
		children = append(children, b.wrapRow(idx, pending))
		pending = nil
	}
	for _, en := range ents {
		if b.isRow(en) || b.isRowGroupOrCaption(en) {
			flush()
			children = append(children, en.box)
			continue
		}
		pending = append(pending, en)
	}
	flush()
	b.tree().Nodes[idx].Children = children
}

func (b *builder) arrangeRowGroup(idx int, ents []entry) {
	var children []int
	var pending []entry
	flush := func() {
		if len(pending) == 0 || b.whitespaceOnly(pending) {
			pending = nil
			return
		}
		children = append(children, b.wrapRow(idx, pending))
		pending = nil
	}
	for _, en := range ents {
		if b.isRow(en) {
			flush()
			children = append(children, en.box)
			continue
		}
		pending = append(pending, en)
	}
	flush()
	b.tree().Nodes[idx].Children = children
}

func (b *builder) arrangeRow(idx int, ents []entry) {
	var children []int
	var pending []entry
	flush := func() {
		if len(pending) == 0 || b.whitespaceOnly(pending) {
			pending = nil
			return
		}
		children = append(children, b.wrapCell(idx, pending))
		pending = nil
	}
	for _, en := range ents {
		if b.isCell(en) {
			flush()
			children = append(children, en.box)
			continue
		}
		pending = append(pending, en)
	}
	flush()
	b.tree().Nodes[idx].Children = children
}

// flatten turns entries into the item list of an inline formatting context
// root. styleNode is the box whose style applies to the entries' text.
func (b *builder) flatten(root, styleNode int, ents []entry) []inlineItem {
	var items []inlineItem
	var walk func(styleNode int, ents []entry)
	walk = func(styleNode int, ents []entry) {
		for _, en := range ents {
			if en.isText() {
				items = append(items, inlineItem{
					kind:      itemText,
					node:      -1,
					styleNode: styleNode,
					dom:       en.text,
				})
				continue
			}
			n := &b.tree().Nodes[en.box]
			switch {
			case n.FC.OutOfFlow:
				items = append(items, inlineItem{kind: itemOutOfFlow, node: en.box, styleNode: en.box})
			case n.Float != css.FloatNone:
				items = append(items, inlineItem{kind: itemFloat, node: en.box, styleNode: en.box})
			case b.isOutsideMarker(en.box):
			case n.inlineBox && n.Pseudo != dom.PseudoNone:
				items = append(items,
					inlineItem{kind: itemOpen, node: en.box, styleNode: en.box},
					inlineItem{kind: itemGenerated, node: en.box, styleNode: en.box},
					inlineItem{kind: itemClose, node: en.box, styleNode: en.box})
			case n.inlineBox:
				if n.DomNode != dom.NoNode && b.le.dom.NodeType(n.DomNode).Tag == "br" {
					items = append(items, inlineItem{kind: itemBreak, node: en.box, styleNode: en.box})
					continue
				}
				items = append(items, inlineItem{kind: itemOpen, node: en.box, styleNode: en.box})
				walk(en.box, b.entries[en.box])
				items = append(items, inlineItem{kind: itemClose, node: en.box, styleNode: en.box})
			default:
				items = append(items, inlineItem{kind: itemAtomic, node: en.box, styleNode: en.box})
			}
		}
	}
	walk(styleNode, ents)
	return items
}

// hashTree computes node data hashes and subtree hashes bottom-up.
func (b *builder) hashTree() {
	t := b.tree()
	t.PostOrder(func(idx int) {
		n := &t.Nodes[idx]
		h := newHasher()
		h.u64(uint64(n.Anonymous)<<8 | uint64(n.Pseudo))
		if n.DomNode != dom.NoNode {
			typ := b.le.dom.NodeType(n.DomNode)
			h.u64(uint64(typ.Kind))
			h.str(typ.Tag)
			h.u64(typ.Image.Handle)
			h.f64(typ.Image.Width)
			h.f64(typ.Image.Height)
			h.u64(uint64(b.le.dom.NodeState(n.DomNode)))
			if b.le.spans != nil && n.FC.Kind == TableCellContext {
				c, r := b.le.spans.CellSpan(n.DomNode)
				h.u64(uint64(c)<<32 | uint64(r))
			}
		}
		h.str(n.content.String())
		h.u64(b.le.styleFingerprint(idx))
		for _, s := range b.texts[idx] {
			h.str(s)
		}
		n.NodeDataHash = h.sum()
		sh := newHasher()
		sh.u64(n.NodeDataHash)
		for _, c := range n.Children {
			sh.u64(t.Nodes[c].SubtreeHash)
		}
		n.SubtreeHash = sh.sum()
	})
}
