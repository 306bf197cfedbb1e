package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/pkg/css"
)

func TestBuild_TreeShape(t *testing.T) {
	d := MustBuild(El("body", "",
		El("div", "height: 10px", Text("hello")),
		Img(20, 30, "width: 5px"),
	))
	require.Equal(t, 4, d.NodeCount())
	root := d.Root()
	assert.Equal(t, "body", d.NodeType(root).Tag)
	kids := d.ChildrenOf(root)
	require.Len(t, kids, 2)
	assert.Equal(t, TextNode, d.NodeType(d.ChildrenOf(kids[0])[0]).Kind)
	assert.Equal(t, ImageRef{Width: 20, Height: 30}, d.NodeType(kids[1]).Image)
	assert.Equal(t, root, d.Parent(kids[0]))
}

func TestBuild_InvalidDeclarationFails(t *testing.T) {
	_, err := Build(El("div", "display: sideways"))
	assert.Error(t, err)
}

func TestStyle_UserAgentDefaults(t *testing.T) {
	d := MustBuild(El("body", "", El("span", ""), El("li", ""), El("ol", "")))
	kids := d.ChildrenOf(d.Root())
	assert.Equal(t, css.ExactValue(css.DisplayBlock), d.Style(d.Root(), css.PropDisplay))
	assert.Equal(t, css.Initial, d.Style(kids[0], css.PropDisplay).Kind)
	assert.Equal(t, css.ExactValue(css.DisplayListItem), d.Style(kids[1], css.PropDisplay))
	ops, err := css.Typed[css.CounterOps](d.Style(kids[2], css.PropCounterReset))
	require.NoError(t, err)
	assert.True(t, ops.Val.Has("list-item"))
}

func TestStyle_Inheritance(t *testing.T) {
	d := MustBuild(El("body", "text-align: center; width: 100px",
		El("div", "", El("p", "text-align: inherit")),
		El("div", "width: inherit"),
	))
	kids := d.ChildrenOf(d.Root())
	p := d.ChildrenOf(kids[0])[0]
	assert.Equal(t, css.ExactValue(css.TextAlignCenter), d.Style(kids[0], css.PropTextAlign), "inherited by default")
	assert.Equal(t, css.ExactValue(css.TextAlignCenter), d.Style(p, css.PropTextAlign))
	assert.Equal(t, css.Initial, d.Style(kids[0], css.PropWidth).Kind, "width does not inherit")
	assert.Equal(t, css.ExactValue(css.Px(100)), d.Style(kids[1], css.PropWidth))
}

func TestMutation_CloneIsIndependent(t *testing.T) {
	d := MustBuild(El("body", "", El("div", "height: 10px", Text("a"))))
	c := d.Clone()
	div := d.ChildrenOf(d.Root())[0]
	txt := d.ChildrenOf(div)[0]
	c.SetStyle(div, css.PropHeight, css.ExactValue(css.Px(20)))
	c.SetText(txt, "b")
	c.SetState(div, StateHover)
	assert.Equal(t, css.ExactValue(css.Px(10)), d.Style(div, css.PropHeight))
	assert.Equal(t, "a", d.NodeType(txt).Text)
	assert.Equal(t, NodeState(0), d.NodeState(div))
	assert.True(t, c.NodeState(div).Has(StateHover))
	assert.NotEqual(t, d.StyleHash(div), c.StyleHash(div))
}

func TestMutation_RemoveAndMove(t *testing.T) {
	d := MustBuild(El("body", "", El("a", ""), El("b", ""), El("c", "")))
	kids := append([]NodeId(nil), d.ChildrenOf(d.Root())...)
	d.MoveChild(d.Root(), kids[2], 0)
	assert.Equal(t, []NodeId{kids[2], kids[0], kids[1]}, d.ChildrenOf(d.Root()))
	d.RemoveChild(d.Root(), kids[0])
	assert.Equal(t, []NodeId{kids[2], kids[1]}, d.ChildrenOf(d.Root()))
	assert.Equal(t, NoNode, d.Parent(kids[0]))
}

func TestPseudoStyles(t *testing.T) {
	d := MustBuild(El("body", "text-align: right",
		El("p", "").WithPseudo(PseudoBefore, `content: "> "; width: 5px`),
	))
	p := d.ChildrenOf(d.Root())[0]
	v, ok := d.PseudoStyle(p, PseudoBefore, css.PropWidth)
	assert.True(t, ok)
	assert.Equal(t, css.ExactValue(css.Px(5)), v)
	v, ok = d.PseudoStyle(p, PseudoBefore, css.PropTextAlign)
	assert.True(t, ok)
	assert.Equal(t, css.ExactValue(css.TextAlignRight), v, "pseudo inherits from its element")
	_, ok = d.PseudoStyle(p, PseudoAfter, css.PropWidth)
	assert.False(t, ok)
}

func TestCellSpan(t *testing.T) {
	d := MustBuild(El("table", "", El("tr", "", El("td", "").WithSpan(2, 0))))
	td := d.FindByTag("td")[0]
	cols, rows := d.CellSpan(td)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 1, rows)
}
