package layout

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/pkg/css"
	"quill/pkg/dom"
	"quill/pkg/geom"
)

const propertyRuns = 40

// docGen produces random styled documents from a small vocabulary of block,
// inline, flex, float, scroll and list content. Lengths are multiples of 10
// so that tests can pick values the generator never uses.
type docGen struct {
	rnd *rand.Rand
}

func newDocGen(seed int64) *docGen {
	return &docGen{rnd: rand.New(rand.NewSource(seed))}
}

func (g *docGen) pick(n int) int { return g.rnd.Intn(n) }

func (g *docGen) length(lo, hi int) string {
	return fmt.Sprintf("%dpx", (lo+g.pick((hi-lo)/10+1)*10)/10*10)
}

func (g *docGen) words(n int) string {
	vocab := []string{"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing", "elit"}
	ws := make([]string, n)
	for i := range ws {
		ws[i] = vocab[g.pick(len(vocab))]
	}
	return strings.Join(ws, " ")
}

func (g *docGen) boxDecl() string {
	var decl []string
	if g.pick(2) == 0 {
		decl = append(decl, "height: "+g.length(10, 120))
	}
	if g.pick(3) == 0 {
		decl = append(decl, "width: "+g.length(50, 400))
	}
	if g.pick(4) == 0 {
		decl = append(decl, "margin: "+g.length(0, 20))
	}
	if g.pick(4) == 0 {
		decl = append(decl, "padding: "+g.length(0, 20))
	}
	if g.pick(5) == 0 {
		decl = append(decl, "min-height: "+g.length(10, 60))
	}
	if g.pick(5) == 0 {
		decl = append(decl, "max-width: "+g.length(400, 600))
	}
	return strings.Join(decl, "; ")
}

func (g *docGen) block(depth int) dom.Spec {
	if depth >= 3 {
		return dom.El("p", g.boxDecl(), dom.Text(g.words(1+g.pick(12))))
	}
	switch g.pick(8) {
	case 0:
		return dom.El("p", "", dom.Text(g.words(1+g.pick(30))))
	case 1:
		var items []dom.Spec
		for i := 0; i < 2+g.pick(2); i++ {
			items = append(items, dom.El("div", fmt.Sprintf("flex: %d; height: %s", 1+g.pick(3), g.length(10, 50))))
		}
		return dom.El("div", "display: flex; width: "+g.length(200, 500), items...)
	case 2:
		return dom.El("div", "overflow: auto; height: "+g.length(40, 120), g.children(depth+1)...)
	case 3:
		return dom.El("div", "overflow: hidden", g.children(depth+1)...)
	case 4:
		side := []string{"left", "right"}[g.pick(2)]
		return dom.El("div", "",
			dom.El("div", fmt.Sprintf("float: %s; width: %s; height: %s", side, g.length(30, 150), g.length(20, 80))),
			dom.El("p", "", dom.Text(g.words(5+g.pick(30)))),
		)
	case 5:
		var lis []dom.Spec
		for i := 0; i < 1+g.pick(4); i++ {
			lis = append(lis, dom.El("li", "", dom.Text(g.words(1+g.pick(4)))))
		}
		return dom.El("ol", "", lis...)
	default:
		return dom.El("div", g.boxDecl(), g.children(depth+1)...)
	}
}

func (g *docGen) children(depth int) []dom.Spec {
	n := 1 + g.pick(3)
	kids := make([]dom.Spec, n)
	for i := range kids {
		kids[i] = g.block(depth)
	}
	return kids
}

func (g *docGen) document() *dom.Document {
	return dom.MustBuild(dom.El("body", "", g.children(0)...))
}

// elements lists the reachable element ids of d below the root in document
// order.
func elements(d *dom.Document) (elems, texts []dom.NodeId) {
	var walk func(id dom.NodeId)
	walk = func(id dom.NodeId) {
		for _, c := range d.ChildrenOf(id) {
			if d.NodeType(c).Kind == dom.TextNode {
				texts = append(texts, c)
				continue
			}
			elems = append(elems, c)
			walk(c)
		}
	}
	walk(d.Root())
	return elems, texts
}

// mutate applies one random edit to d.
func (g *docGen) mutate(t *testing.T, d *dom.Document) string {
	elems, texts := elements(d)
	if len(elems) == 0 {
		_, err := d.Append(d.Root(), g.block(2))
		require.NoError(t, err)
		return "appended to empty root"
	}
	switch g.pick(6) {
	case 0:
		id := elems[g.pick(len(elems))]
		require.NoError(t, d.SetDeclarations(id, "height: "+g.length(10, 200)))
		return fmt.Sprintf("height of %d", id)
	case 1:
		if len(texts) > 0 {
			id := texts[g.pick(len(texts))]
			d.SetText(id, g.words(1+g.pick(40)))
			return fmt.Sprintf("text of %d", id)
		}
		fallthrough
	case 2:
		id := elems[g.pick(len(elems))]
		d.RemoveChild(d.Parent(id), id)
		return fmt.Sprintf("removed %d", id)
	case 3:
		parent := d.Root()
		if g.pick(2) == 0 {
			parent = elems[g.pick(len(elems))]
		}
		_, err := d.Append(parent, g.block(2))
		require.NoError(t, err)
		return fmt.Sprintf("appended to %d", parent)
	case 4:
		id := elems[g.pick(len(elems))]
		d.MoveChild(d.Parent(id), id, 0)
		return fmt.Sprintf("moved %d to front", id)
	default:
		id := elems[g.pick(len(elems))]
		require.NoError(t, d.SetDeclarations(id, "width: "+g.length(60, 300)))
		return fmt.Sprintf("width of %d", id)
	}
}

func usedSizes(r *LayoutResult) map[int]geom.LogicalSize {
	sizes := make(map[int]geom.LogicalSize)
	for i := range r.Tree.Nodes {
		if s, ok := r.UsedSize(i); ok {
			sizes[i] = s
		}
	}
	return sizes
}

func TestPropertyDeterminism(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quill.layout")
	defer teardown()
	//
	for seed := int64(0); seed < propertyRuns; seed++ {
		d := newDocGen(seed).document()
		a, errA := LayoutDocument(d, viewport800, NewLayoutCache(), nil, monospace20)
		b, errB := LayoutDocument(d, viewport800, NewLayoutCache(), nil, monospace20)
		require.Equal(t, errA, errB, "seed %d", seed)
		require.Empty(t, cmp.Diff(a.Positions, b.Positions), "seed %d", seed)
		require.Empty(t, cmp.Diff(usedSizes(a), usedSizes(b)), "seed %d", seed)
	}
}

func TestPropertyCacheEquivalence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quill.layout")
	defer teardown()
	//
	for seed := int64(0); seed < propertyRuns; seed++ {
		g := newDocGen(seed)
		d := g.document()
		cache := NewLayoutCache()
		_, err := LayoutDocument(d, viewport800, cache, nil, monospace20)
		require.NoError(t, err, "seed %d", seed)
		for step := 0; step < 3; step++ {
			next := d.Clone()
			edit := g.mutate(t, next)
			fresh, err := LayoutDocument(next, viewport800, nil, nil, monospace20)
			require.NoError(t, err, "seed %d %s", seed, edit)
			cached, err := LayoutDocument(next, viewport800, cache, nil, monospace20)
			require.NoError(t, err, "seed %d %s", seed, edit)
			require.Empty(t, cmp.Diff(fresh.Positions, cached.Positions, approx),
				"seed %d step %d (%s) positions", seed, step, edit)
			require.Empty(t, cmp.Diff(usedSizes(fresh), usedSizes(cached), approx),
				"seed %d step %d (%s) sizes", seed, step, edit)
			require.Equal(t, fresh.Counters, cached.Counters, "seed %d step %d (%s)", seed, step, edit)
			d = next
		}
	}
}

func TestPropertyReconcileMinimality(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quill.layout")
	defer teardown()
	//
	for seed := int64(0); seed < propertyRuns; seed++ {
		g := newDocGen(seed)
		d := g.document()
		cache := NewLayoutCache()
		first, err := LayoutDocument(d, viewport800, cache, nil, monospace20)
		require.NoError(t, err)

		var blocks []dom.NodeId
		elems, _ := elements(d)
		for _, id := range elems {
			if idx := first.Tree.FindDom(id); idx >= 0 && first.Tree.Node(idx).Display == css.DisplayBlock {
				blocks = append(blocks, id)
			}
		}
		if len(blocks) == 0 {
			continue
		}
		id := blocks[g.pick(len(blocks))]
		next := d.Clone()
		require.NoError(t, next.SetDeclarations(id, "height: 337px"))
		r, err := LayoutDocument(next, viewport800, cache, nil, monospace20)
		require.NoError(t, err)
		x := r.Tree.FindDom(id)
		assert.Equal(t, []int{r.Tree.nearestIndependent(x)}, r.Roots, "seed %d, node %d", seed, id)
	}
}

func TestReconcileMinimalityInsideOwnFormattingContext(t *testing.T) {
	d := dom.MustBuild(dom.El("body", "",
		dom.El("header", "height: 40px"),
		dom.El("div", "overflow: hidden; height: 200px",
			dom.El("section", "height: 10px"),
			dom.El("section", "height: 20px"),
		),
		dom.El("footer", "height: 40px"),
	))
	cache := NewLayoutCache()
	first, err := LayoutDocument(d, viewport800, cache, nil, monospace20)
	require.NoError(t, err)
	footer := first.Tree.FindDom(d.FindByTag("footer")[0])
	footerPos := first.Positions[footer]

	next := d.Clone()
	leaf := next.FindByTag("section")[1]
	require.NoError(t, next.SetDeclarations(leaf, "height: 25px"))
	log := &DebugLog{}
	r, err := LayoutDocument(next, viewport800, cache, log, monospace20)
	require.NoError(t, err)
	div := r.Tree.FindDom(next.FindByTag("div")[0])
	assert.Equal(t, []int{div}, r.Roots)
	assert.NotEmpty(t, log.Filter(DebugReconcile))
	assert.Equal(t, footerPos, r.Positions[footer], "fixed-height container absorbs the change")
	assert.Equal(t, 2, cache.Frames())
}

func TestIsolatedRelayoutShiftsFollowingSiblings(t *testing.T) {
	spec := dom.El("body", "",
		dom.El("div", "overflow: hidden",
			dom.El("p", "", dom.Text("short")),
			dom.El("section", "height: 30px"),
		),
		dom.El("footer", "height: 40px"),
	)
	d := dom.MustBuild(spec)
	cache := NewLayoutCache()
	_, err := LayoutDocument(d, viewport800, cache, nil, monospace20)
	require.NoError(t, err)

	next := d.Clone()
	_, texts := elements(next)
	next.SetText(texts[0], strings.Repeat("word ", 300))
	log := &DebugLog{}
	cached, err := LayoutDocument(next, viewport800, cache, log, monospace20)
	require.NoError(t, err)
	div := cached.Tree.FindDom(next.FindByTag("div")[0])
	assert.Equal(t, []int{div}, cached.Roots)
	fresh, err := LayoutDocument(next, viewport800, nil, nil, monospace20)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(fresh.Positions, cached.Positions, approx))
	assert.Empty(t, cmp.Diff(usedSizes(fresh), usedSizes(cached), approx))

	footer := fresh.Tree.FindDom(next.FindByTag("footer")[0])
	p := fresh.Tree.FindDom(next.FindByTag("p")[0])
	psize, _ := fresh.UsedSize(p)
	assert.Greater(t, psize.Height, 20.0)
	assert.InDelta(t, psize.Height+30, cached.Positions[footer].Y, approxDelta)
	root := cached.Tree.Root
	assert.InDelta(t, psize.Height+70, cached.Tree.Node(root).OverflowSize.Height, approxDelta)
}

func TestPropertyScrollbarMonotonicity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quill.layout")
	defer teardown()
	//
	for seed := int64(0); seed < propertyRuns; seed++ {
		d := newDocGen(seed).document()
		var prev *LayoutResult
		for k := 1; k <= 3; k++ {
			r, err := LayoutDocument(d, viewport800, nil, nil, monospace20, WithMaxSettlementIterations(k))
			if err != nil {
				require.ErrorIs(t, err, ErrSettlementNotConverged, "seed %d", seed)
				require.NotNil(t, r)
			}
			if prev != nil {
				for i := range r.Tree.Nodes {
					assert.True(t, r.ScrollbarInfo(i).Covers(prev.ScrollbarInfo(i)),
						"seed %d node %d pass %d: %s after %s", seed, i, k, r.ScrollbarInfo(i), prev.ScrollbarInfo(i))
				}
			}
			prev = r
		}
	}
}

func TestSettlementNotConvergedKeepsCache(t *testing.T) {
	d := dom.MustBuild(dom.El("body", "",
		dom.El("div", "width: 300px; height: 300px; overflow: auto",
			dom.El("section", "width: 280px; height: 320px"),
		),
	))
	cache := NewLayoutCache()
	r, err := LayoutDocument(d, viewport800, cache, nil, monospace20, WithMaxSettlementIterations(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSettlementNotConverged)
	require.NotNil(t, r)
	assert.Equal(t, 1, r.Iterations)
	div := r.Tree.FindDom(d.FindByTag("div")[0])
	assert.True(t, r.ScrollbarInfo(div).Vertical, "latched bars are reported")
	assert.Nil(t, cache.Tree())
	assert.Zero(t, cache.Frames())
}

func TestPropertyConstraintRespect(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quill.layout")
	defer teardown()
	//
	pxOf := func(d *dom.Document, id dom.NodeId, kind css.PropertyKind) (float64, bool) {
		m, err := css.Typed[css.Length](d.Style(id, kind))
		if err != nil {
			return 0, false
		}
		l, ok := m.Get()
		if !ok || l.Unit != css.UnitPx {
			return 0, false
		}
		return l.Value, true
	}
	for seed := int64(0); seed < propertyRuns; seed++ {
		d := newDocGen(seed).document()
		r, err := LayoutDocument(d, viewport800, nil, nil, monospace20)
		require.NoError(t, err)
		elems, _ := elements(d)
		for _, id := range elems {
			idx := r.Tree.FindDom(id)
			size, ok := r.UsedSize(idx)
			if !ok {
				continue
			}
			bp := r.BoxProps(idx)
			edgesW := bp.Border.Horizontal() + bp.Padding.Horizontal()
			edgesH := bp.Border.Vertical() + bp.Padding.Vertical()
			if v, ok := pxOf(d, id, css.PropMinWidth); ok {
				assert.GreaterOrEqual(t, size.Width+1e-6, v+edgesW, "seed %d node %d min-width", seed, id)
			}
			if v, ok := pxOf(d, id, css.PropMaxWidth); ok {
				assert.LessOrEqual(t, size.Width, v+edgesW+1e-6, "seed %d node %d max-width", seed, id)
			}
			if v, ok := pxOf(d, id, css.PropMinHeight); ok {
				assert.GreaterOrEqual(t, size.Height+1e-6, v+edgesH, "seed %d node %d min-height", seed, id)
			}
		}
	}
}

func TestConstraintRespectInFlexShrink(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "display: flex; width: 200px",
			dom.El("section", "width: 150px; min-width: 120px; height: 10px"),
			dom.El("section", "width: 150px; height: 10px"),
		),
	))
	a := boxOf(t, d, r, "section", 0)
	b := boxOf(t, d, r, "section", 1)
	sa, _ := r.UsedSize(a)
	sb, _ := r.UsedSize(b)
	assert.InDelta(t, 120, sa.Width, approxDelta)
	assert.InDelta(t, 80, sb.Width, approxDelta)
}

func TestPropertyCounterScoping(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quill.layout")
	defer teardown()
	//
	g := newDocGen(7)
	for run := 0; run < propertyRuns; run++ {
		before := 1 + g.pick(6)
		var first []dom.Spec
		for i := 0; i < before; i++ {
			first = append(first, dom.El("p", "counter-increment: item"))
		}
		d, r := layoutSpec(t, dom.El("body", "",
			dom.El("section", "counter-reset: item", first...),
			dom.El("section", "counter-reset: item 10",
				dom.El("p", "counter-increment: item"),
				dom.El("p", "counter-increment: item 5"),
			),
		))
		ps := d.FindByTag("p")
		require.Len(t, ps, before+2)
		for i := 0; i < before; i++ {
			idx := r.Tree.FindDom(ps[i])
			assert.Equal(t, i+1, r.Counters[CounterKey{Node: idx, Name: "item"}])
		}
		second := []int{r.Tree.FindDom(ps[before]), r.Tree.FindDom(ps[before+1])}
		assert.Equal(t, 11, r.Counters[CounterKey{Node: second[0], Name: "item"}])
		assert.Equal(t, 16, r.Counters[CounterKey{Node: second[1], Name: "item"}])
		body := r.Tree.Root
		_, live := r.Counters[CounterKey{Node: body, Name: "item"}]
		assert.False(t, live, "scope ends with the section")
	}
}

func TestNestedListCounters(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("ol", "",
			dom.El("li", "", dom.Text("a")),
			dom.El("li", "",
				dom.El("ol", "list-style-type: lower-roman",
					dom.El("li", "", dom.Text("b1")),
					dom.El("li", "", dom.Text("b2")),
				),
			),
			dom.El("li", "", dom.Text("c")),
		),
	))
	var texts []string
	for i := range d.FindByTag("li") {
		texts = append(texts, r.MarkerText(boxOf(t, d, r, "li", i)))
	}
	assert.Equal(t, []string{"1.", "2.", "i.", "ii.", "3."}, texts)
}

func TestPropertyFloatExclusion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quill.layout")
	defer teardown()
	//
	g := newDocGen(11)
	for run := 0; run < propertyRuns; run++ {
		lw, lh := 30+10*g.pick(10), 20+10*g.pick(8)
		rw, rh := 30+10*g.pick(8), 20+10*g.pick(8)
		const width = 400.0
		d, r := layoutSpec(t, dom.El("body", "",
			dom.El("div", fmt.Sprintf("width: %gpx", width),
				dom.El("aside", fmt.Sprintf("float: left; width: %dpx; height: %dpx", lw, lh)),
				dom.El("nav", fmt.Sprintf("float: right; width: %dpx; height: %dpx", rw, rh)),
				dom.El("p", "", dom.Text(g.words(20+g.pick(60)))),
			),
		))
		p := boxOf(t, d, r, "p", 0)
		runs := r.Tree.Node(p).Runs
		require.NotEmpty(t, runs)
		for _, run := range runs {
			top, bottom := run.Rect.Origin.Y, run.Rect.MaxY()
			left, right := 0.0, width
			if top < float64(lh) && bottom > 0 {
				left = float64(lw)
			}
			if top < float64(rh) && bottom > 0 {
				right = width - float64(rw)
			}
			end := run.Rect.MaxX() - 8*float64(trailingSpaces(run.Text))
			assert.GreaterOrEqual(t, run.Rect.Origin.X+1e-6, left, "run %q at y=%g", run.Text, top)
			assert.LessOrEqual(t, end, right+1e-6, "run %q at y=%g", run.Text, top)
		}
	}
}
