// Package text is the text layout collaborator of the layout core: it
// shapes runs into glyphs with advances and reports break opportunities and
// intrinsic widths. Line breaking against per-line available widths is done
// by the inline formatting context.
package text

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'quill.text'.
func tracer() tracing.Trace {
	return tracing.Select("quill.text")
}

// FontKey selects a font face.
type FontKey struct {
	Family string
	Size   float64
	Weight int
	Italic bool
}

func (k FontKey) String() string {
	style := ""
	if k.Italic {
		style = " italic"
	}
	return fmt.Sprintf("%s %gpx %d%s", k.Family, k.Size, k.Weight, style)
}

// Glyph is one shaped glyph.
type Glyph struct {
	Rune    rune
	Offset  int // byte offset into the shaped string
	Advance float64
}

// ShapedLine is the result of shaping a run.
type ShapedLine struct {
	Glyphs []Glyph
	Width  float64
	Height float64 // line height
	Ascent float64
	// BreakPoints are glyph indices before which a soft wrap is allowed.
	BreakPoints []int
}

// Intrinsic holds the content-based widths of a run.
type Intrinsic struct {
	MinContentWidth float64 // widest unbreakable segment
	MaxContentWidth float64 // width without wrapping
}

// Layout is the text layout interface consumed by the layout core.
type Layout interface {
	// ShapeLine shapes s. availableMain is the inline space the caller
	// intends to fill first; implementations may use it for shaping
	// decisions but must return glyphs for the whole string.
	ShapeLine(font FontKey, s string, availableMain float64) (ShapedLine, error)
	MeasureIntrinsic(font FontKey, s string) (Intrinsic, error)
}

// ErrNoFace is returned when no face can be found for a FontKey.
var ErrNoFace = errors.New("text: no font face")

// IntrinsicFromShaped derives min/max-content widths from a shaped run,
// ignoring trailing whitespace at break points.
func IntrinsicFromShaped(sl ShapedLine, s string) Intrinsic {
	in := Intrinsic{MaxContentWidth: sl.Width}
	start := 0
	bps := make([]int, 0, len(sl.BreakPoints)+1)
	bps = append(append(bps, sl.BreakPoints...), len(sl.Glyphs))
	for _, end := range bps {
		w := segmentWidth(sl.Glyphs[start:end], s)
		if w > in.MinContentWidth {
			in.MinContentWidth = w
		}
		start = end
	}
	return in
}

// segmentWidth sums advances without trailing spaces.
func segmentWidth(glyphs []Glyph, s string) float64 {
	end := len(glyphs)
	for end > 0 && IsCollapsibleSpace(glyphs[end-1].Rune) {
		end--
	}
	w := 0.0
	for _, g := range glyphs[:end] {
		w += g.Advance
	}
	return w
}
