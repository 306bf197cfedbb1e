package layout

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/pkg/css"
	"quill/pkg/dom"
	"quill/pkg/text"
)

func TestLayoutDocumentErrors(t *testing.T) {
	_, err := LayoutDocument(nil, viewport800, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidTree)

	d := dom.MustBuild(dom.El("body", "", dom.El("div", "")))
	div := d.FindByTag("div")[0]
	d.SetStyle(div, css.PropDisplay, css.ExactValue(css.Px(3)))
	cache := NewLayoutCache()
	_, err = LayoutDocument(d, viewport800, cache, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProperty)
	assert.False(t, errors.Is(err, ErrInvalidTree))
	var le *LayoutError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, int(div), le.Node)
	assert.Contains(t, le.Error(), "unknown property")
	assert.Nil(t, cache.Tree(), "failed frames are not cached")
}

func TestEmptyDocument(t *testing.T) {
	r, err := LayoutDocument(dom.NewDocument(), viewport800, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, r.Tree.Len())
	assert.Empty(t, r.Positions)
	assert.Equal(t, "(empty layout tree)\n", r.Dump())
}

type failingText struct{}

func (failingText) ShapeLine(text.FontKey, string, float64) (text.ShapedLine, error) {
	return text.ShapedLine{}, text.ErrNoFace
}

func (failingText) MeasureIntrinsic(text.FontKey, string) (text.Intrinsic, error) {
	return text.Intrinsic{}, text.ErrNoFace
}

func TestTextLayoutFailureIsAWarning(t *testing.T) {
	d := dom.MustBuild(dom.El("body", "",
		dom.El("p", "", dom.Text("unshapeable")),
		dom.El("div", "height: 10px"),
	))
	log := &DebugLog{}
	r, err := LayoutDocument(d, viewport800, nil, log, WithTextLayout(failingText{}))
	require.NoError(t, err)
	var failures int
	for _, w := range log.Filter(DebugWarning) {
		if strings.Contains(w.Message, "text layout failed") {
			failures++
		}
	}
	assert.NotZero(t, failures)
	p, _ := r.UsedSize(r.Tree.FindDom(d.FindByTag("p")[0]))
	assert.Zero(t, p.Height, "unshaped text is zero-sized")
	div := r.Tree.FindDom(d.FindByTag("div")[0])
	assert.Zero(t, r.Positions[div].Y)
}

func TestNilSinkAndNilCache(t *testing.T) {
	var cache *LayoutCache
	assert.Nil(t, cache.Tree())
	assert.Zero(t, cache.Frames())
	assert.Nil(t, cache.FloatingContext(0))
	d := dom.MustBuild(dom.El("body", "", dom.El("div", "height: 10px")))
	r, err := LayoutDocument(d, viewport800, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{r.Tree.Root}, r.Roots)
}

func TestUnchangedFrameReusesEverything(t *testing.T) {
	d := dom.MustBuild(dom.El("body", "",
		dom.El("div", "overflow: hidden", dom.El("p", "", dom.Text("some text"))),
		dom.El("section", "height: 10px"),
	))
	cache := NewLayoutCache()
	first, err := LayoutDocument(d, viewport800, cache, nil, monospace20)
	require.NoError(t, err)
	second, err := LayoutDocument(d.Clone(), viewport800, cache, nil, monospace20)
	require.NoError(t, err)
	assert.Empty(t, second.Roots)
	assert.Empty(t, cmp.Diff(first.Positions, second.Positions))
	assert.Equal(t, 2, cache.Frames())
}

func TestViewportChangeRelaysOutEverything(t *testing.T) {
	d := dom.MustBuild(dom.El("body", "",
		dom.El("div", "width: 50%; height: 10px"),
	))
	cache := NewLayoutCache()
	_, err := LayoutDocument(d, viewport800, cache, nil, monospace20)
	require.NoError(t, err)
	r, err := LayoutDocument(d, image.Rect(0, 0, 400, 300), cache, nil, monospace20)
	require.NoError(t, err)
	assert.Equal(t, []int{r.Tree.Root}, r.Roots)
	size, _ := r.UsedSize(r.Tree.FindDom(d.FindByTag("div")[0]))
	assert.InDelta(t, 200, size.Width, approxDelta)
}

func TestSettingsChangeDropsCachedTree(t *testing.T) {
	d := dom.MustBuild(dom.El("body", "",
		dom.El("div", "width: 100px; height: 50px; overflow: auto", dom.El("p", "height: 80px")),
	))
	cache := NewLayoutCache()
	_, err := LayoutDocument(d, viewport800, cache, nil, monospace20)
	require.NoError(t, err)
	r, err := LayoutDocument(d, viewport800, cache, nil, monospace20, WithScrollbarThickness(8))
	require.NoError(t, err)
	assert.Equal(t, []int{r.Tree.Root}, r.Roots)
	div := r.Tree.FindDom(d.FindByTag("div")[0])
	assert.Equal(t, 8.0, r.ScrollbarInfo(div).Thickness)
	p, _ := r.UsedSize(r.Tree.FindDom(d.FindByTag("p")[0]))
	assert.InDelta(t, 92, p.Width, approxDelta)
}

func TestStructuralChangeMakesParentALayoutRoot(t *testing.T) {
	d := dom.MustBuild(dom.El("body", "",
		dom.El("div", "display: flex; width: 300px",
			dom.El("section", "flex: 1; height: 10px"),
			dom.El("aside", "flex: 1; height: 10px"),
		),
		dom.El("footer", "height: 10px"),
	))
	cache := NewLayoutCache()
	_, err := LayoutDocument(d, viewport800, cache, nil, monospace20)
	require.NoError(t, err)

	next := d.Clone()
	flex := next.FindByTag("div")[0]
	_, err = next.Append(flex, dom.El("nav", "flex: 1; height: 10px"))
	require.NoError(t, err)
	log := &DebugLog{}
	r, err := LayoutDocument(next, viewport800, cache, log, monospace20)
	require.NoError(t, err)
	container := r.Tree.FindDom(flex)
	assert.Equal(t, []int{container}, r.Roots)
	for _, tag := range []string{"section", "aside", "nav"} {
		size, _ := r.UsedSize(r.Tree.FindDom(next.FindByTag(tag)[0]))
		assert.InDelta(t, 100, size.Width, approxDelta, tag)
	}
	var structural bool
	for _, m := range log.Filter(DebugReconcile) {
		if m.Node == container && strings.Contains(m.Message, "children changed") {
			structural = true
		}
	}
	assert.True(t, structural)
}

func TestReorderIsStructural(t *testing.T) {
	d := dom.MustBuild(dom.El("body", "",
		dom.El("div", "height: 10px"),
		dom.El("section", "height: 20px"),
	))
	cache := NewLayoutCache()
	_, err := LayoutDocument(d, viewport800, cache, nil, monospace20)
	require.NoError(t, err)

	next := d.Clone()
	next.MoveChild(next.Root(), next.FindByTag("section")[0], 0)
	r, err := LayoutDocument(next, viewport800, cache, nil, monospace20)
	require.NoError(t, err)
	assert.Equal(t, []int{r.Tree.Root}, r.Roots)
	div := r.Tree.FindDom(next.FindByTag("div")[0])
	assert.InDelta(t, 20, r.Positions[div].Y, approxDelta)
}

func TestMatchChildrenPrefersSameIndex(t *testing.T) {
	mk := func(hashes ...uint64) (*LayoutTree, []int) {
		tree := &LayoutTree{}
		var kids []int
		for _, h := range hashes {
			tree.Nodes = append(tree.Nodes, LayoutNode{NodeDataHash: h, Parent: -1})
			kids = append(kids, len(tree.Nodes)-1)
		}
		return tree, kids
	}
	ot, oldKids := mk(1, 2, 2, 3)
	nt, kids := mk(2, 2, 9, 3)
	match, fallback := matchChildren(nt, ot, kids, oldKids)
	assert.Equal(t, []int{1, 2, -1, 3}, match)
	assert.Equal(t, match, fallback, "the old child at the same index is taken")

	nt, kids = mk(5, 2)
	match, fallback = matchChildren(nt, ot, kids, oldKids[:2])
	assert.Equal(t, []int{-1, 1}, match)
	assert.Equal(t, []int{0, 1}, fallback, "unmatched child diffs against the unused old child")

	nt, kids = mk(3, 1)
	match, _ = matchChildren(nt, ot, kids, oldKids)
	assert.Equal(t, []int{3, -1}, match, "matches only move forward")
}

func TestScrollIDsAreStable(t *testing.T) {
	spec := dom.El("body", "",
		dom.El("div", "height: 50px; overflow: auto", dom.El("p", "height: 100px")),
		dom.El("section", "height: 50px; overflow: auto"),
	)
	d := dom.MustBuild(spec)
	cache := NewLayoutCache()
	first, err := LayoutDocument(d, viewport800, cache, nil, monospace20)
	require.NoError(t, err)
	div := first.Tree.FindDom(d.FindByTag("div")[0])
	section := first.Tree.FindDom(d.FindByTag("section")[0])
	require.Len(t, first.ScrollIDs, 2)
	assert.NotEqual(t, first.ScrollIDs[div], first.ScrollIDs[section])

	next := d.Clone()
	_, err = next.Append(next.Root(), dom.El("aside", "overflow: scroll"))
	require.NoError(t, err)
	require.NoError(t, next.SetDeclarations(next.FindByTag("p")[0], "height: 200px"))
	second, err := LayoutDocument(next, viewport800, cache, nil, monospace20)
	require.NoError(t, err)
	assert.Equal(t, first.ScrollIDs[div], second.ScrollIDs[second.Tree.FindDom(next.FindByTag("div")[0])])
	assert.Equal(t, first.ScrollIDs[section], second.ScrollIDs[second.Tree.FindDom(next.FindByTag("section")[0])])
	aside := second.ScrollIDs[second.Tree.FindDom(next.FindByTag("aside")[0])]
	assert.NotZero(t, aside)
	assert.NotContains(t, []uint64{first.ScrollIDs[div], first.ScrollIDs[section]}, aside)

	cache.Reset()
	assert.Nil(t, cache.Tree())
	third, err := LayoutDocument(d, viewport800, cache, nil, monospace20)
	require.NoError(t, err)
	for _, id := range third.ScrollIDs {
		assert.Greater(t, id, aside, "ids are not reused after a reset")
	}
}

func TestCounterChangeRelaysOutMarkers(t *testing.T) {
	d := dom.MustBuild(dom.El("body", "",
		dom.El("ol", "",
			dom.El("li", "", dom.Text("a")),
			dom.El("li", "", dom.Text("b")),
		),
	))
	cache := NewLayoutCache()
	_, err := LayoutDocument(d, viewport800, cache, nil, monospace20)
	require.NoError(t, err)

	next := d.Clone()
	ol := next.FindByTag("ol")[0]
	_, err = next.Append(ol, dom.El("li", "", dom.Text("c")))
	require.NoError(t, err)
	next.MoveChild(ol, next.FindByTag("li")[2], 0)
	r, err := LayoutDocument(next, viewport800, cache, nil, monospace20)
	require.NoError(t, err)
	var texts []string
	for _, li := range next.FindByTag("li") {
		texts = append(texts, r.MarkerText(r.Tree.FindDom(li)))
	}
	assert.Equal(t, []string{"1.", "2.", "3."}, texts)
	fresh, err := LayoutDocument(next, viewport800, nil, nil, monospace20)
	require.NoError(t, err)
	assert.Equal(t, fresh.Counters, r.Counters)
}

func TestDump(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("ol", "", dom.El("li", "", dom.Text("item"))),
		dom.El("div", "height: 50px; overflow: scroll"),
	))
	out := r.Dump()
	assert.Contains(t, out, "#0 node 0 [block")
	assert.Contains(t, out, `::marker`)
	assert.Contains(t, out, `"1."`)
	assert.Contains(t, out, "scrollbars=both")
	assert.Contains(t, out, "800.00x")
	li := r.Tree.FindDom(d.FindByTag("li")[0])
	assert.Contains(t, out, r.Tree.describe(li, r.Positions))
}
