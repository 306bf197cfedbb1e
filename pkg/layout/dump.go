package layout

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"quill/pkg/dom"
	"quill/pkg/geom"
)

// Dump renders the tree as an indented outline: index, label, formatting
// context, absolute position (when known) and used size.
func (t *LayoutTree) Dump(positions map[int]geom.LogicalPosition) string {
	if t.Len() == 0 {
		return "(empty layout tree)\n"
	}
	p := treeprint.New()
	p.SetValue(t.describe(t.Root, positions))
	t.dumpChildren(p, t.Root, positions)
	return p.String()
}

func (t *LayoutTree) dumpChildren(p treeprint.Tree, idx int, positions map[int]geom.LogicalPosition) {
	for _, c := range t.Nodes[idx].Children {
		if len(t.Nodes[c].Children) == 0 {
			p.AddNode(t.describe(c, positions))
			continue
		}
		t.dumpChildren(p.AddBranch(t.describe(c, positions)), c, positions)
	}
}

func (t *LayoutTree) describe(idx int, positions map[int]geom.LogicalPosition) string {
	n := &t.Nodes[idx]
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s [%s]", idx, t.Label(idx), n.FC)
	if pos, ok := positions[idx]; ok {
		fmt.Fprintf(&b, " @(%.2f,%.2f)", pos.X, pos.Y)
	}
	if n.HasUsedSize {
		fmt.Fprintf(&b, " %.2fx%.2f", n.UsedSize.Width, n.UsedSize.Height)
	}
	if n.Scrollbars.Horizontal || n.Scrollbars.Vertical {
		fmt.Fprintf(&b, " scrollbars=%s", n.Scrollbars)
	}
	if n.Pseudo != dom.PseudoNone && n.Text != "" {
		fmt.Fprintf(&b, " %q", n.Text)
	}
	return b.String()
}

// Dump renders the tree of the result with absolute positions.
func (r *LayoutResult) Dump() string {
	return r.Tree.Dump(r.Positions)
}
