package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/pkg/dom"
	"quill/pkg/geom"
)

func TestBuilderWrapsMixedContentInAnonymousBlocks(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "",
			dom.Text("hello"),
			dom.El("p", "height: 10px"),
			dom.Text("world"),
		),
	))
	div := boxOf(t, d, r, "div", 0)
	kids := r.Tree.Node(div).Children
	require.Len(t, kids, 3)
	assert.Equal(t, AnonymousBlock, r.Tree.Node(kids[0]).Anonymous)
	assert.True(t, r.Tree.Node(kids[0]).IsAnonymous())
	assert.False(t, r.Tree.Node(kids[1]).IsAnonymous())
	assert.Equal(t, AnonymousBlock, r.Tree.Node(kids[2]).Anonymous)

	size, _ := r.UsedSize(div)
	assert.InDelta(t, 50, size.Height, approxDelta, "two lines of text and the paragraph")
	assertPos(t, geom.LogicalPosition{Y: 30}, r.Positions[kids[2]], "second anonymous block")
}

func TestBuilderSkipsDisplayNone(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "display: none; height: 100px", dom.El("p", "height: 10px")),
		dom.El("section", "height: 10px"),
	))
	assert.Equal(t, -1, r.Tree.FindDom(d.FindByTag("div")[0]))
	assert.Equal(t, -1, r.Tree.FindDom(d.FindByTag("p")[0]))
	section := boxOf(t, d, r, "section", 0)
	assertPos(t, geom.LogicalPosition{}, r.Positions[section], "section")
}

func TestGeneratedContent(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("p", "", dom.Text("text")).
			WithPseudo(dom.PseudoBefore, `content: "> "`).
			WithPseudo(dom.PseudoAfter, `content: "!"`),
	))
	p := boxOf(t, d, r, "p", 0)
	before := r.Tree.PseudoOf(p, dom.PseudoBefore)
	after := r.Tree.PseudoOf(p, dom.PseudoAfter)
	require.GreaterOrEqual(t, before, 0)
	require.GreaterOrEqual(t, after, 0)
	assert.Equal(t, "> ", r.Tree.Node(before).Text)
	assert.Equal(t, "!", r.Tree.Node(after).Text)
	kids := r.Tree.Node(p).Children
	assert.Equal(t, before, kids[0])
	assert.Equal(t, after, kids[len(kids)-1])

	var line string
	for _, run := range r.Tree.Node(p).Runs {
		line += run.Text
	}
	assert.Equal(t, "> text!", line)
}

func TestSiblingMarginsCollapse(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "height: 50px; margin-bottom: 20px"),
		dom.El("div", "height: 50px; margin-top: 30px"),
	))
	second := boxOf(t, d, r, "div", 1)
	assertPos(t, geom.LogicalPosition{Y: 80}, r.Positions[second], "second div")
}

func TestPercentageAndBoxSizing(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "width: 50%; padding: 10px; height: 20px"),
		dom.El("section", "width: 50%; padding: 10px; box-sizing: border-box; height: 20px"),
	))
	div, _ := r.UsedSize(boxOf(t, d, r, "div", 0))
	section, _ := r.UsedSize(boxOf(t, d, r, "section", 0))
	assert.InDelta(t, 420, div.Width, approxDelta)
	assert.InDelta(t, 40, div.Height, approxDelta)
	assert.InDelta(t, 400, section.Width, approxDelta)
	assert.InDelta(t, 20, section.Height, approxDelta)
}

func TestFloatShrinksToFit(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "float: left", dom.Text("hello world")),
		dom.El("p", "", dom.Text("beside")),
	))
	div := boxOf(t, d, r, "div", 0)
	size, _ := r.UsedSize(div)
	assert.InDelta(t, 88, size.Width, approxDelta)
	assert.InDelta(t, 20, size.Height, approxDelta)
	assert.NotEmpty(t, r.Floats[r.Tree.Root].Exclusions())

	p := boxOf(t, d, r, "p", 0)
	runs := r.Tree.Node(p).Runs
	require.Len(t, runs, 1)
	assert.InDelta(t, 88, runs[0].Rect.Origin.X, approxDelta, "text flows beside the float")
}

func TestTextAlignCenter(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("p", "width: 200px; text-align: center", dom.Text("abcd")),
	))
	runs := r.Tree.Node(boxOf(t, d, r, "p", 0)).Runs
	require.Len(t, runs, 1)
	assert.InDelta(t, 84, runs[0].Rect.Origin.X, approxDelta)
	assert.InDelta(t, 32, runs[0].Rect.Size.Width, approxDelta)
}

func TestGridColumns(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "display: grid; width: 400px; grid-template-columns: 100px 1fr; column-gap: 20px",
			dom.El("section", "height: 30px"),
			dom.El("aside", "height: 50px"),
			dom.El("nav", "height: 10px"),
		),
	))
	a := boxOf(t, d, r, "section", 0)
	b := boxOf(t, d, r, "aside", 0)
	c := boxOf(t, d, r, "nav", 0)
	sa, _ := r.UsedSize(a)
	sb, _ := r.UsedSize(b)
	assert.InDelta(t, 100, sa.Width, approxDelta)
	assert.InDelta(t, 280, sb.Width, approxDelta)
	assertPos(t, geom.LogicalPosition{}, r.Positions[a], "first item")
	assertPos(t, geom.LogicalPosition{X: 120}, r.Positions[b], "second item")
	assertPos(t, geom.LogicalPosition{Y: 50}, r.Positions[c], "item in the implicit second row")
	assert.Equal(t, GridContext, r.Tree.Node(boxOf(t, d, r, "div", 0)).FC.Kind)
}

func TestFixedTableLayout(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("table", "table-layout: fixed; width: 300px",
			dom.El("tr", "",
				dom.El("td", "width: 100px; height: 40px"),
				dom.El("td", "", dom.Text("cell")),
			),
		),
	))
	first := boxOf(t, d, r, "td", 0)
	second := boxOf(t, d, r, "td", 1)
	s1, _ := r.UsedSize(first)
	s2, _ := r.UsedSize(second)
	assert.InDelta(t, 100, s1.Width, approxDelta)
	assert.InDelta(t, 200, s2.Width, approxDelta)
	assert.InDelta(t, 40, s2.Height, approxDelta, "cells stretch to the row")
	assertPos(t, geom.LogicalPosition{X: 100}, r.Positions[second], "second cell")
	table, _ := r.UsedSize(boxOf(t, d, r, "table", 0))
	assert.InDelta(t, 40, table.Height, approxDelta)
}

func TestTableWrapsStrayCells(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("table", "", dom.El("td", "", dom.Text("x"))),
	))
	td := boxOf(t, d, r, "td", 0)
	row := r.Tree.Node(td).Parent
	assert.Equal(t, AnonymousTableRow, r.Tree.Node(row).Anonymous)
}

func TestPagedMedia(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "height: 500px"),
		dom.El("div", "height: 500px; overflow: scroll"),
		dom.El("div", "height: 500px"),
	), WithPagedMedia(600))
	assert.Equal(t, 3, r.PageCount)
	assert.Equal(t, 1, r.Iterations)
	scroller := boxOf(t, d, r, "div", 1)
	assert.Equal(t, ScrollbarInfo{}, r.ScrollbarInfo(scroller), "no scrollbars on paper")
}

func TestScreenModeHasNoPages(t *testing.T) {
	_, r := layoutSpec(t, dom.El("body", "", dom.El("div", "height: 5000px")))
	assert.Zero(t, r.PageCount)
}

func TestForcedScrollbarsReserveSpace(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "width: 200px; height: 100px; overflow: scroll",
			dom.El("section", "height: 10px"),
		),
	), WithScrollbarThickness(10))
	div := boxOf(t, d, r, "div", 0)
	assert.Equal(t, ScrollbarInfo{Horizontal: true, Vertical: true, Thickness: 10}, r.ScrollbarInfo(div))
	section, _ := r.UsedSize(boxOf(t, d, r, "section", 0))
	assert.InDelta(t, 190, section.Width, approxDelta)
	assert.Equal(t, 1, r.Iterations)
}

func TestFlexShrinkDefiniteItems(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "display: flex; width: 200px",
			dom.El("section", "width: 150px; height: 10px"),
			dom.El("section", "width: 150px; height: 10px"),
		),
	))
	for i := 0; i < 2; i++ {
		size, _ := r.UsedSize(boxOf(t, d, r, "section", i))
		assert.InDelta(t, 100, size.Width, approxDelta, "section %d", i)
	}
}

func TestFlexShrinkStopsAtContentMinimum(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "display: flex; width: 200px",
			dom.El("section", "width: 150px", dom.Text(twentyA)),
			dom.El("aside", "width: 150px; height: 10px"),
		),
	))
	section, _ := r.UsedSize(boxOf(t, d, r, "section", 0))
	aside, _ := r.UsedSize(boxOf(t, d, r, "aside", 0))
	assert.InDelta(t, 150, section.Width, approxDelta, "an unbreakable word keeps the specified width")
	assert.InDelta(t, 50, aside.Width, approxDelta)
}

func TestFlexColumnShrinkDefiniteItems(t *testing.T) {
	d, r := layoutSpec(t, dom.El("body", "",
		dom.El("div", "display: flex; flex-direction: column; width: 100px; height: 100px",
			dom.El("section", "height: 100px"),
			dom.El("section", "height: 100px"),
		),
	))
	for i := 0; i < 2; i++ {
		size, _ := r.UsedSize(boxOf(t, d, r, "section", i))
		assert.InDelta(t, 50, size.Height, approxDelta, "section %d", i)
	}
}
