package css

import (
	"errors"
	"math"
	"testing"

	"quill/pkg/geom"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTyped_MatchingPayload(t *testing.T) {
	m, err := Typed[Display](ExactValue(DisplayGrid))
	require.NoError(t, err)
	d, ok := m.Get()
	assert.True(t, ok)
	assert.Equal(t, DisplayGrid, d)
}

func TestTyped_NonExactKinds(t *testing.T) {
	for _, v := range []Value{AutoValue, InitialValue, InheritValue} {
		m, err := Typed[Length](v)
		require.NoError(t, err)
		assert.Equal(t, v.Kind, m.Kind)
		assert.Equal(t, Px(7), m.Or(Px(7)))
	}
}

func TestTyped_MismatchedPayload(t *testing.T) {
	_, err := Typed[Display](ExactValue("block"))
	assert.True(t, errors.Is(err, ErrUnexpectedType))
}

func TestLengthResolve(t *testing.T) {
	ctx := ResolveContext{PercentBase: 200, FontSize: 10, RootFontSize: 16, Viewport: geom.LogicalSize{Width: 800, Height: 600}}
	tests := []struct {
		l    Length
		want float64
	}{
		{Px(12), 12},
		{Percent(25), 50},
		{Length{2, UnitEm}, 20},
		{Length{2, UnitRem}, 32},
		{Length{10, UnitVw}, 80},
		{Length{10, UnitVh}, 60},
	}
	for _, tc := range tests {
		got, ok := tc.l.Resolve(ctx)
		assert.True(t, ok, tc.l.String())
		assert.InDelta(t, tc.want, got, 1e-9, tc.l.String())
	}
	_, ok := Percent(50).Resolve(ResolveContext{PercentBase: math.NaN()})
	assert.False(t, ok, "percent against indefinite basis")
	_, ok = Length{Unit: UnitMinContent}.Resolve(ctx)
	assert.False(t, ok)
}

func TestParseLength(t *testing.T) {
	tests := map[string]Length{
		"10px":        Px(10),
		"0":           Px(0),
		"12.5%":       Percent(12.5),
		"1.5em":       {1.5, UnitEm},
		"2rem":        {2, UnitRem},
		"max-content": {Unit: UnitMaxContent},
	}
	for in, want := range tests {
		got, err := ParseLength(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLength("ten")
	assert.Error(t, err)
}

func TestLineHeightAcceptsNumbers(t *testing.T) {
	v, err := ParseValue(PropLineHeight, "1.5")
	require.NoError(t, err)
	assert.Equal(t, ExactValue(Length{1.5, UnitNumber}), v)
}

func TestPropertyNames(t *testing.T) {
	for k := PropertyKind(0); int(k) < PropertyCount; k++ {
		got, ok := PropertyByName(k.String())
		assert.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	assert.True(t, PropFontSize.Inherited())
	assert.False(t, PropWidth.Inherited())
}
