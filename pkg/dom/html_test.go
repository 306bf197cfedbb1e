package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/pkg/css"
)

func TestParseHTML_BodyIsRoot(t *testing.T) {
	d, err := ParseHTMLString(`<html><head><title>x</title></head><body>
		<div>one</div>
		<p>two <span>three</span></p>
	</body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "body", d.NodeType(d.Root()).Tag)
	kids := d.ChildrenOf(d.Root())
	require.Len(t, kids, 2, "whitespace-only text is dropped")
	assert.Equal(t, "div", d.NodeType(kids[0]).Tag)
	pKids := d.ChildrenOf(kids[1])
	require.Len(t, pKids, 2)
	assert.Equal(t, "two ", d.NodeType(pKids[0]).Text)
}

func TestParseHTML_Cascade(t *testing.T) {
	d, err := ParseHTMLString(`<style>
		div { width: 10px; height: 5px }
		.wide { width: 50px }
		#main { width: 70px }
		div.imp { height: 1px !important }
		li::marker { color: red }
	</style>
	<body>
		<div id="main" class="wide imp" style="height: 9px"></div>
		<div class="wide"></div>
		<ul><li>x</li></ul>
	</body>`)
	require.NoError(t, err)
	divs := d.FindByTag("div")
	require.Len(t, divs, 2)
	assert.Equal(t, css.ExactValue(css.Px(70)), d.Style(divs[0], css.PropWidth), "id beats class")
	assert.Equal(t, css.ExactValue(css.Px(1)), d.Style(divs[0], css.PropHeight), "important beats inline")
	assert.Equal(t, css.ExactValue(css.Px(50)), d.Style(divs[1], css.PropWidth))
	assert.Equal(t, css.ExactValue(css.Px(5)), d.Style(divs[1], css.PropHeight))

	li := d.FindByTag("li")[0]
	v, ok := d.PseudoStyle(li, PseudoMarker, css.PropColor)
	assert.True(t, ok)
	assert.Equal(t, css.ExactValue(css.Color{R: 255, A: 255}), v)
}

func TestParseHTML_ImagesAndSpans(t *testing.T) {
	d, err := ParseHTMLString(`<body><img src="a.png" width="40" height="30">
		<table><tr><td colspan="3">x</td></tr></table></body>`)
	require.NoError(t, err)
	img := d.FindByTag("img")[0]
	nt := d.NodeType(img)
	assert.Equal(t, ImageNode, nt.Kind)
	assert.Equal(t, 40.0, nt.Image.Width)
	assert.Equal(t, 30.0, nt.Image.Height)
	assert.NotZero(t, nt.Image.Handle)
	cols, _ := d.CellSpan(d.FindByTag("td")[0])
	assert.Equal(t, 3, cols)
	// the parser inserts tbody
	assert.Len(t, d.FindByTag("tbody"), 1)
}
