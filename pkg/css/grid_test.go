package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrackList(t *testing.T) {
	l, err := ParseTrackList("100px repeat(2, 1fr) minmax(50px, auto)")
	require.NoError(t, err)
	require.Len(t, l, 4)
	assert.Equal(t, TrackSize{Min: Breadth{Length: Px(100)}, Max: Breadth{Length: Px(100)}}, l[0])
	assert.Equal(t, BreadthFr, l[1].Max.Kind)
	assert.Equal(t, BreadthAuto, l[1].Min.Kind)
	assert.Equal(t, l[1], l[2])
	assert.Equal(t, Px(50), l[3].Min.Length)
	assert.Equal(t, BreadthAuto, l[3].Max.Kind)
	assert.Equal(t, "100px 1fr 1fr minmax(50px,auto)", l.String())
}

func TestParseTrackList_Errors(t *testing.T) {
	for _, in := range []string{"repeat(x, 1fr)", "minmax(10px)", "1fr)", "-1fr"} {
		_, err := ParseTrackList(in)
		assert.Error(t, err, in)
	}
}

func TestParseGridLine(t *testing.T) {
	g, err := ParseGridLine("span 3")
	require.NoError(t, err)
	assert.Equal(t, GridLine{Span: 3}, g)
	g, err = ParseGridLine("-1")
	require.NoError(t, err)
	assert.Equal(t, GridLine{Line: -1}, g)
	g, err = ParseGridLine("auto")
	require.NoError(t, err)
	assert.True(t, g.IsAuto())
}

func TestParseCounterOps(t *testing.T) {
	ops, err := ParseCounterOps("chapter section 2", 1)
	require.NoError(t, err)
	assert.Equal(t, CounterOps{{"chapter", 1}, {"section", 2}}, ops)
	ops, err = ParseCounterOps("none", 0)
	require.NoError(t, err)
	assert.Empty(t, ops)
	assert.True(t, CounterOps{{"list-item", 0}}.Has("list-item"))
}

func TestParseContent(t *testing.T) {
	c, err := ParseContent(`"Chapter " counter(chapter, upper-roman) ": "`)
	require.NoError(t, err)
	require.Len(t, c, 3)
	assert.Equal(t, "Chapter ", c[0].Text)
	assert.Equal(t, "chapter", c[1].Counter)
	assert.Equal(t, ListStyleUpperRoman, c[1].Style)
	assert.Equal(t, ": ", c[2].Text)
}
