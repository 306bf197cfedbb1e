package layout

import (
	"fmt"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/pkg/dom"
	"quill/pkg/geom"
	"quill/pkg/text"
)

var (
	viewport800  = image.Rect(0, 0, 800, 600)
	monospace20  = WithTextLayout(text.Monospace{Advance: 8, LineHeight: 20})
	approx       = cmpopts.EquateApprox(0, 1e-6)
	approxDelta  = 0.01
	twentyA      = "aaaaaaaaaaaaaaaaaaaa"
	twentyB      = "bbbbbbbbbbbbbbbbbbbb"
	twentyC      = "cccccccccccccccccccc"
	threeLongish = twentyA + " " + twentyB + " " + twentyC
)

// layoutSpec lays out spec in an 800x600 viewport without a cache.
func layoutSpec(t *testing.T, spec dom.Spec, opts ...Option) (*dom.Document, *LayoutResult) {
	t.Helper()
	d := dom.MustBuild(spec)
	r, err := LayoutDocument(d, viewport800, nil, nil, append([]Option{monospace20}, opts...)...)
	require.NoError(t, err)
	return d, r
}

// boxOf finds the principal box of the n-th element with tag.
func boxOf(t *testing.T, d *dom.Document, r *LayoutResult, tag string, n int) int {
	t.Helper()
	ids := d.FindByTag(tag)
	require.Greater(t, len(ids), n, "no <%s> #%d", tag, n)
	idx := r.Tree.FindDom(ids[n])
	require.GreaterOrEqual(t, idx, 0, "<%s> #%d has no box", tag, n)
	return idx
}

func assertPos(t *testing.T, want geom.LogicalPosition, got geom.LogicalPosition, msg string) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, approxDelta, "%s x", msg)
	assert.InDelta(t, want.Y, got.Y, approxDelta, "%s y", msg)
}

func TestBlockStack(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quill.layout")
	defer teardown()
	//
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "height: 100px"),
		dom.El("div", "height: 200px"),
		dom.El("div", "height: 50px"),
	))
	heights := []float64{100, 200, 50}
	ys := []float64{0, 100, 300}
	for i := range heights {
		idx := boxOf(t, d, r, "div", i)
		assertPos(t, geom.LogicalPosition{X: 0, Y: ys[i]}, r.Positions[idx], "div")
		size, ok := r.UsedSize(idx)
		require.True(t, ok)
		assert.InDelta(t, heights[i], size.Height, approxDelta)
		assert.InDelta(t, 800, size.Width, approxDelta)
	}
	root := r.Tree.Root
	assert.InDelta(t, 350, r.Tree.Node(root).OverflowSize.Height, approxDelta)
	assert.Equal(t, 1, r.Iterations)
}

func TestAutoHeightFromContent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quill.layout")
	defer teardown()
	//
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "width: 200px",
			dom.El("p", "", dom.Text(threeLongish)),
		),
	))
	div := boxOf(t, d, r, "div", 0)
	p := boxOf(t, d, r, "p", 0)
	assertPos(t, geom.LogicalPosition{}, r.Positions[div], "div")
	size, _ := r.UsedSize(div)
	assert.InDelta(t, 60, size.Height, approxDelta)
	assert.InDelta(t, 200, size.Width, approxDelta)
	psize, _ := r.UsedSize(p)
	inner := r.BoxProps(p).InnerSize(psize, geom.HorizontalTb)
	assert.InDelta(t, 60, inner.Height, approxDelta)
	runs := r.Tree.Node(p).Runs
	require.Len(t, runs, 3, "one run per word")
	for i, run := range runs {
		assert.InDelta(t, float64(i)*20, run.Rect.Origin.Y, approxDelta)
		assert.LessOrEqual(t, run.Rect.MaxX(), 200.0)
	}
}

func TestFlexRowWithGrow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quill.layout")
	defer teardown()
	//
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "display: flex; width: 400px; height: 100px",
			dom.El("section", "flex: 1; min-width: 50px"),
			dom.El("aside", "flex: 2"),
		),
	))
	a := boxOf(t, d, r, "section", 0)
	b := boxOf(t, d, r, "aside", 0)
	sa, _ := r.UsedSize(a)
	sb, _ := r.UsedSize(b)
	assert.InDelta(t, 133.33, sa.Width, approxDelta)
	assert.InDelta(t, 266.67, sb.Width, approxDelta)
	assert.InDelta(t, 100, sa.Height, approxDelta, "items stretch")
	assert.InDelta(t, 100, sb.Height, approxDelta, "items stretch")
	assertPos(t, geom.LogicalPosition{}, r.Positions[a], "A")
	assertPos(t, geom.LogicalPosition{X: 133.33}, r.Positions[b], "B")
}

func TestScrollbarSettlement(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quill.layout")
	defer teardown()
	//
	log := &DebugLog{}
	d := dom.MustBuild(dom.El("body", "",
		dom.El("div", "width: 300px; height: 300px; overflow: auto",
			dom.El("section", "width: 280px; height: 320px"),
		),
	))
	r, err := LayoutDocument(d, viewport800, nil, log, monospace20)
	require.NoError(t, err)
	div := boxOf(t, d, r, "div", 0)
	sb := r.ScrollbarInfo(div)
	assert.True(t, sb.Vertical)
	assert.False(t, sb.Horizontal)
	assert.Equal(t, 16.0, sb.Thickness)
	assert.Equal(t, 2, r.Iterations)

	size, _ := r.UsedSize(div)
	assert.InDelta(t, 300, size.Width, approxDelta, "scrollbars take space from the inside")
	section := boxOf(t, d, r, "section", 0)
	ssize, _ := r.UsedSize(section)
	assert.InDelta(t, 280, ssize.Width, approxDelta)

	changes := log.Filter(DebugScrollbarChange)
	require.Len(t, changes, 1)
	assert.Equal(t, div, changes[0].Node)
	assert.NotZero(t, r.ScrollIDs[div])
}

func TestScrollbarSettlementWithAutoWidthContent(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "width: 300px; height: 300px; overflow: auto",
			dom.El("p", "height: 320px"),
		),
	))
	div := boxOf(t, d, r, "div", 0)
	sb := r.ScrollbarInfo(div)
	assert.True(t, sb.Vertical)
	assert.False(t, sb.Horizontal, "content that fills the narrowed box does not overflow")
	assert.Equal(t, 2, r.Iterations)
	p, _ := r.UsedSize(boxOf(t, d, r, "p", 0))
	assert.InDelta(t, 284, p.Width, approxDelta)
}

func TestScrollbarSettlementFixedWidthOverflowsNarrowedBox(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "width: 300px; height: 300px; overflow: auto",
			dom.El("section", "width: 290px; height: 320px"),
		),
	))
	sb := r.ScrollbarInfo(boxOf(t, d, r, "div", 0))
	assert.True(t, sb.Vertical)
	assert.True(t, sb.Horizontal)
	assert.Equal(t, 2, r.Iterations)
}

func TestScrollbarSettlementHorizontalBarShortensBlockAxis(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "width: 300px; height: 300px; overflow: auto",
			dom.El("section", "width: 400px; height: 290px"),
		),
	))
	sb := r.ScrollbarInfo(boxOf(t, d, r, "div", 0))
	assert.True(t, sb.Horizontal)
	assert.True(t, sb.Vertical)
	assert.Equal(t, 2, r.Iterations)
}

func TestOrderedListCounters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quill.layout")
	defer teardown()
	//
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("ol", "list-style-type: decimal",
			dom.El("li", ""), dom.El("li", ""), dom.El("li", ""),
		),
	))
	for i := 0; i < 3; i++ {
		li := boxOf(t, d, r, "li", i)
		marker := r.Tree.PseudoOf(li, dom.PseudoMarker)
		require.GreaterOrEqual(t, marker, 0)
		assert.Equal(t, i+1, r.Counters[CounterKey{Node: marker, Name: "list-item"}])
		assert.Equal(t, i+1, r.Counters[CounterKey{Node: li, Name: "list-item"}])
		want := []string{"1.", "2.", "3."}[i]
		assert.Equal(t, want, r.MarkerText(li))
		assert.Equal(t, want, r.MarkerText(marker))
	}
}

func TestAbsolutelyPositionedChild(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quill.layout")
	defer teardown()
	//
	build := func(before float64) (*dom.Document, *LayoutResult) {
		return layoutSpec(t, dom.El("body", "",
			dom.El("header", "height: 50px"),
			dom.El("div", "position: relative; margin-left: 50px; border: 10px solid black; width: 180px; height: 180px",
				dom.El("p", "height: "+px(before)),
				dom.El("span", "position: absolute; top: 10px; left: 20px; width: 10px; height: 10px"),
			),
		))
	}
	for _, before := range []float64{0, 120, 500} {
		d, r := build(before)
		div := boxOf(t, d, r, "div", 0)
		assertPos(t, geom.LogicalPosition{X: 50, Y: 50}, r.Positions[div], "relative parent")
		size, _ := r.UsedSize(div)
		assert.InDelta(t, 200, size.Width, approxDelta)
		// Offsets resolve against the padding box, inside the border.
		span := boxOf(t, d, r, "span", 0)
		assertPos(t, geom.LogicalPosition{X: 80, Y: 70}, r.Positions[span], "absolute child")
		size, _ = r.UsedSize(span)
		assert.InDelta(t, 10, size.Width, approxDelta)
		assert.True(t, r.Tree.Node(span).FC.OutOfFlow)
	}
}

func TestAbsolutelyPositionedChildOfBorderlessParent(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("header", "height: 50px"),
		dom.El("div", "position: relative; margin-left: 50px; width: 200px; height: 200px",
			dom.El("span", "position: absolute; top: 10px; left: 20px; width: 10px; height: 10px"),
		),
	))
	assertPos(t, geom.LogicalPosition{X: 50, Y: 50}, r.Positions[boxOf(t, d, r, "div", 0)], "relative parent")
	assertPos(t, geom.LogicalPosition{X: 70, Y: 60}, r.Positions[boxOf(t, d, r, "span", 0)], "absolute child")
}

func px(v float64) string {
	return fmt.Sprintf("%gpx", v)
}
