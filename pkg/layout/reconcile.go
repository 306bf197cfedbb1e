package layout

import (
	"sort"

	"quill/pkg/geom"
)

// reconciliation is the outcome of diffing a freshly built tree against the
// tree of the previous frame.
type reconciliation struct {
	dirty      []int // new or changed nodes
	structural []int // nodes whose children were added, removed or reordered
	oldToNew   map[int]int
	matched    int
}

// reconcile pairs the nodes of the engine's (new) tree with those of old,
// carries the layout state of unchanged nodes over and reports the rest.
// Children are paired by node data hash, in order, preferring the same
// index.
func (le *layoutEngine) reconcile(old *LayoutTree) *reconciliation {
	r := &reconciliation{oldToNew: make(map[int]int)}
	if le.tree.Len() == 0 {
		return r
	}
	if old.Len() == 0 {
		le.tree.Walk(func(idx int) bool {
			r.dirty = append(r.dirty, idx)
			return true
		})
		return r
	}
	var pair func(ni, oi int)
	pair = func(ni, oi int) {
		nn := le.node(ni)
		var on *LayoutNode
		if oi >= 0 {
			on = &old.Nodes[oi]
		}
		if on == nil || on.NodeDataHash != nn.NodeDataHash {
			r.dirty = append(r.dirty, ni)
		} else {
			r.oldToNew[oi] = ni
			r.matched++
			carryState(nn, on)
		}
		var oldKids []int
		if on != nil {
			oldKids = on.Children
		}
		match, fallback := matchChildren(le.tree, old, nn.Children, oldKids)
		changed := on != nil && len(nn.Children) != len(oldKids)
		for k, ch := range nn.Children {
			if on != nil && (match[k] < 0 || k >= len(oldKids) || match[k] != oldKids[k]) {
				changed = true
			}
			pair(ch, fallback[k])
		}
		if changed {
			r.structural = append(r.structural, ni)
			le.debug(DebugReconcile, ni, "children changed (%d -> %d)", len(oldKids), len(nn.Children))
		}
	}
	pair(le.tree.Root, old.Root)
	le.remapState(r.oldToNew)
	tracer().Debugf("layout: reconciled %d nodes, %d dirty, %d structural",
		le.tree.Len(), len(r.dirty), len(r.structural))
	return r
}

// matchChildren pairs each new child with an unused old child of equal node
// data hash, -1 if none. The old child at the same index wins; otherwise
// the first candidate after the previous match. fallback additionally gives
// unmatched children the unused old child at their index, so that the
// subtree of a changed node is still diffed.
func matchChildren(nt, ot *LayoutTree, kids, oldKids []int) (match, fallback []int) {
	match = make([]int, len(kids))
	used := make([]bool, len(oldKids))
	next := 0
	for k, ch := range kids {
		match[k] = -1
		h := nt.Nodes[ch].NodeDataHash
		if k < len(oldKids) && !used[k] && ot.Nodes[oldKids[k]].NodeDataHash == h {
			match[k] = oldKids[k]
			used[k] = true
			next = k + 1
			continue
		}
		for j := next; j < len(oldKids); j++ {
			if !used[j] && ot.Nodes[oldKids[j]].NodeDataHash == h {
				match[k] = oldKids[j]
				used[j] = true
				next = j + 1
				break
			}
		}
	}
	fallback = append([]int(nil), match...)
	for k := range fallback {
		if fallback[k] < 0 && k < len(oldKids) && !used[k] {
			fallback[k] = oldKids[k]
			used[k] = true
		}
	}
	return match, fallback
}

// carryState copies the results of the last layout of an unchanged node.
func carryState(nn, on *LayoutNode) {
	nn.BoxProps = on.BoxProps
	nn.Intrinsic = on.Intrinsic
	nn.UsedSize = on.UsedSize
	nn.HasUsedSize = on.HasUsedSize
	nn.RelativePosition = on.RelativePosition
	nn.StaticPosition = on.StaticPosition
	nn.Scrollbars = on.Scrollbars
	nn.OverflowSize = on.OverflowSize
	nn.Text = on.Text
	nn.Runs = append([]TextRun(nil), on.Runs...)
	nn.contentShift = on.contentShift
	nn.contentCross = on.contentCross
	nn.memo = on.memo
}

// remapState renames the old child indices held in carried memos.
func (le *layoutEngine) remapState(oldToNew map[int]int) {
	for i := range le.tree.Nodes {
		m := &le.tree.Nodes[i].memo
		if m.out.Positions != nil {
			pos := make(map[int]geom.LogicalPosition, len(m.out.Positions))
			for oi, p := range m.out.Positions {
				if ni, ok := oldToNew[oi]; ok {
					pos[ni] = p
				}
			}
			m.out.Positions = pos
		}
		m.out.Floats = m.out.Floats.remap(oldToNew)
	}
}

// layoutRoots turns the changes of a frame into the set of subtrees to lay
// out again. A changed node relays out from its nearest formatting-context
// ancestor, a structural change from the parent itself when it establishes
// one. Roots inside other roots are pruned.
func (le *layoutEngine) layoutRoots(changed, structural []int, full bool) []int {
	t := le.tree
	if t.Len() == 0 {
		return nil
	}
	set := make(map[int]bool)
	if full {
		set[t.Root] = true
	}
	for _, idx := range changed {
		if idx == t.Root {
			set[idx] = true
			continue
		}
		set[t.nearestIndependent(idx)] = true
	}
	for _, idx := range structural {
		if n := t.Node(idx); n.FC.Independent || idx == t.Root {
			set[idx] = true
			continue
		}
		set[t.nearestIndependent(idx)] = true
	}
	var roots []int
	for idx := range set {
		covered := false
		for p := t.Nodes[idx].Parent; p >= 0; p = t.Nodes[p].Parent {
			if set[p] {
				covered = true
				break
			}
		}
		if !covered {
			roots = append(roots, idx)
		}
	}
	sort.Ints(roots)
	for _, idx := range roots {
		le.debug(DebugReconcile, idx, "layout root %s", t.Label(idx))
	}
	return roots
}

// markIntrinsicDirty flags nodes and their ancestors for the intrinsic pass.
func (le *layoutEngine) markIntrinsicDirty(nodes []int) {
	if le.intrinsicDirty == nil {
		return
	}
	for _, idx := range nodes {
		for i := idx; i >= 0 && !le.intrinsicDirty[i]; i = le.tree.Nodes[i].Parent {
			le.intrinsicDirty[i] = true
		}
	}
}
