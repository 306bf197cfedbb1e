package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeclarations_SingleProperty(t *testing.T) {
	style, err := ParseDeclarations("width: 100px")
	require.NoError(t, err)
	w, err := Typed[Length](style.Get(PropWidth))
	require.NoError(t, err)
	assert.Equal(t, Exact, w.Kind)
	assert.Equal(t, Px(100), w.Val)
}

func TestParseDeclarations_MultipleProperties(t *testing.T) {
	style, err := ParseDeclarations("display: flex; height: 50%; position: relative;")
	require.NoError(t, err)
	assert.Equal(t, ExactValue(DisplayFlex), style.Get(PropDisplay))
	assert.Equal(t, ExactValue(Percent(50)), style.Get(PropHeight))
	assert.Equal(t, ExactValue(PositionRelative), style.Get(PropPosition))
}

func TestParseDeclarations_UnsetIsInitial(t *testing.T) {
	style := MustParse("width: 10px")
	assert.Equal(t, Initial, style.Get(PropHeight).Kind)
	assert.False(t, style.Has(PropHeight))
}

func TestParseDeclarations_GlobalKeywords(t *testing.T) {
	style := MustParse("width: auto; text-align: inherit; max-width: none")
	assert.Equal(t, Auto, style.Get(PropWidth).Kind)
	assert.Equal(t, Inherit, style.Get(PropTextAlign).Kind)
	assert.Equal(t, Initial, style.Get(PropMaxWidth).Kind)
}

func TestParseDeclarations_InvalidDeclarationsAreSkipped(t *testing.T) {
	style, err := ParseDeclarations("width: 10px; display: bogus; frobnicate: 3")
	require.Error(t, err)
	assert.Equal(t, ExactValue(Px(10)), style.Get(PropWidth))
	assert.False(t, style.Has(PropDisplay))
}

func TestMarginShorthand(t *testing.T) {
	tests := []struct {
		in         string
		t, r, b, l Value
	}{
		{"10px", ExactValue(Px(10)), ExactValue(Px(10)), ExactValue(Px(10)), ExactValue(Px(10))},
		{"1px 2px", ExactValue(Px(1)), ExactValue(Px(2)), ExactValue(Px(1)), ExactValue(Px(2))},
		{"1px auto 3px", ExactValue(Px(1)), AutoValue, ExactValue(Px(3)), AutoValue},
		{"1px 2px 3px 4px", ExactValue(Px(1)), ExactValue(Px(2)), ExactValue(Px(3)), ExactValue(Px(4))},
	}
	for _, tc := range tests {
		s := MustParse("margin: " + tc.in)
		assert.Equal(t, tc.t, s.Get(PropMarginTop), tc.in)
		assert.Equal(t, tc.r, s.Get(PropMarginRight), tc.in)
		assert.Equal(t, tc.b, s.Get(PropMarginBottom), tc.in)
		assert.Equal(t, tc.l, s.Get(PropMarginLeft), tc.in)
	}
}

func TestBorderShorthand(t *testing.T) {
	s := MustParse("border: 2px solid #ff0000")
	for _, k := range []PropertyKind{PropBorderTopWidth, PropBorderRightWidth, PropBorderBottomWidth, PropBorderLeftWidth} {
		assert.Equal(t, ExactValue(Px(2)), s.Get(k), k.String())
	}
	assert.Equal(t, ExactValue(Color{255, 0, 0, 255}), s.Get(PropBorderColor))

	s = MustParse("border-left: thick dotted")
	assert.Equal(t, ExactValue(Px(5)), s.Get(PropBorderLeftWidth))
	assert.False(t, s.Has(PropBorderTopWidth))
}

func TestFlexShorthand(t *testing.T) {
	tests := []struct {
		in           string
		grow, shrink float64
		basis        Value
	}{
		{"1", 1, 1, ExactValue(Percent(0))},
		{"2", 2, 1, ExactValue(Percent(0))},
		{"none", 0, 0, AutoValue},
		{"auto", 1, 1, AutoValue},
		{"2 3 100px", 2, 3, ExactValue(Px(100))},
		{"1 30%", 1, 1, ExactValue(Percent(30))},
	}
	for _, tc := range tests {
		s := MustParse("flex: " + tc.in)
		assert.Equal(t, ExactValue(tc.grow), s.Get(PropFlexGrow), tc.in)
		assert.Equal(t, ExactValue(tc.shrink), s.Get(PropFlexShrink), tc.in)
		assert.Equal(t, tc.basis, s.Get(PropFlexBasis), tc.in)
	}
}

func TestOverflowAndGapShorthands(t *testing.T) {
	s := MustParse("overflow: hidden auto; gap: 4px 8px")
	assert.Equal(t, ExactValue(OverflowHidden), s.Get(PropOverflowX))
	assert.Equal(t, ExactValue(OverflowAuto), s.Get(PropOverflowY))
	assert.Equal(t, ExactValue(Px(4)), s.Get(PropRowGap))
	assert.Equal(t, ExactValue(Px(8)), s.Get(PropColumnGap))

	s = MustParse("overflow: scroll")
	assert.Equal(t, ExactValue(OverflowScroll), s.Get(PropOverflowX))
	assert.Equal(t, ExactValue(OverflowScroll), s.Get(PropOverflowY))
}

func TestGridPlacementShorthand(t *testing.T) {
	s := MustParse("grid-column: 1 / span 2; grid-row: 3")
	assert.Equal(t, ExactValue(GridLine{Line: 1}), s.Get(PropGridColumnStart))
	assert.Equal(t, ExactValue(GridLine{Span: 2}), s.Get(PropGridColumnEnd))
	assert.Equal(t, ExactValue(GridLine{Line: 3}), s.Get(PropGridRowStart))
	assert.False(t, s.Has(PropGridRowEnd))
}

func TestListStyleShorthand(t *testing.T) {
	s := MustParse("list-style: upper-roman inside")
	assert.Equal(t, ExactValue(ListStyleUpperRoman), s.Get(PropListStyleType))
	assert.Equal(t, ExactValue(ListStyleInside), s.Get(PropListStylePosition))
}

func TestStyleHash_StableAndSensitive(t *testing.T) {
	a := MustParse("width: 10px; display: block")
	b := MustParse("display: block; width: 10px")
	c := MustParse("display: block; width: 11px")
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
	assert.Equal(t, a.Hash(), a.Clone().Hash())
}

func TestParseColor(t *testing.T) {
	tests := map[string]Color{
		"red":              {255, 0, 0, 255},
		"#00f":             {0, 0, 255, 255},
		"#102030":          {16, 32, 48, 255},
		"rgb(1, 2, 3)":     {1, 2, 3, 255},
		"rgba(1, 2, 3, 0)": {1, 2, 3, 0},
	}
	for in, want := range tests {
		got, ok := ParseColor(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseColor("nope")
	assert.False(t, ok)
}
