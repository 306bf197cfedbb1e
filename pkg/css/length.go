package css

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"quill/pkg/geom"
)

// Unit of a Length.
type Unit uint8

const (
	UnitPx Unit = iota
	UnitPercent
	UnitEm
	UnitRem
	UnitVw
	UnitVh
	UnitNumber // unitless, e.g. line-height: 1.5
	UnitMinContent
	UnitMaxContent
	UnitFitContent
)

var unitSuffixes = []struct {
	suffix string
	unit   Unit
}{
	{"px", UnitPx}, {"%", UnitPercent}, {"rem", UnitRem}, {"em", UnitEm},
	{"vw", UnitVw}, {"vh", UnitVh},
}

// Length is a dimension with its unit.
type Length struct {
	Value float64
	Unit  Unit
}

// Px is a pixel length.
func Px(v float64) Length { return Length{Value: v, Unit: UnitPx} }

// Percent is a percentage length (0-100).
func Percent(v float64) Length { return Length{Value: v, Unit: UnitPercent} }

func (l Length) String() string {
	switch l.Unit {
	case UnitPercent:
		return strconv.FormatFloat(l.Value, 'g', -1, 64) + "%"
	case UnitNumber:
		return strconv.FormatFloat(l.Value, 'g', -1, 64)
	case UnitMinContent:
		return "min-content"
	case UnitMaxContent:
		return "max-content"
	case UnitFitContent:
		return "fit-content"
	}
	for _, s := range unitSuffixes {
		if s.unit == l.Unit {
			return strconv.FormatFloat(l.Value, 'g', -1, 64) + s.suffix
		}
	}
	return "?"
}

// IsIntrinsicKeyword reports min-content, max-content and fit-content.
func (l Length) IsIntrinsicKeyword() bool {
	return l.Unit == UnitMinContent || l.Unit == UnitMaxContent || l.Unit == UnitFitContent
}

// IsPercent reports a percentage.
func (l Length) IsPercent() bool { return l.Unit == UnitPercent }

// ResolveContext carries the bases lengths resolve against. PercentBase is
// NaN when the percentage basis is indefinite.
type ResolveContext struct {
	PercentBase  float64
	FontSize     float64
	RootFontSize float64
	Viewport     geom.LogicalSize
}

// Resolve converts l to pixels. It reports false for intrinsic keywords and
// for percentages against an indefinite basis.
func (l Length) Resolve(ctx ResolveContext) (float64, bool) {
	var v float64
	switch l.Unit {
	case UnitPx:
		v = l.Value
	case UnitPercent:
		if math.IsNaN(ctx.PercentBase) || math.IsInf(ctx.PercentBase, 0) {
			return 0, false
		}
		v = ctx.PercentBase * l.Value / 100
	case UnitEm:
		v = l.Value * ctx.FontSize
	case UnitRem:
		v = l.Value * ctx.RootFontSize
	case UnitVw:
		v = l.Value * ctx.Viewport.Width / 100
	case UnitVh:
		v = l.Value * ctx.Viewport.Height / 100
	case UnitNumber:
		v = l.Value
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseLength parses "10px", "50%", "1.5em", "0", a bare number, or one of
// the intrinsic sizing keywords.
func ParseLength(s string) (Length, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return Length{}, fmt.Errorf("css: empty length")
	case "min-content":
		return Length{Unit: UnitMinContent}, nil
	case "max-content":
		return Length{Unit: UnitMaxContent}, nil
	case "fit-content":
		return Length{Unit: UnitFitContent}, nil
	}
	for _, u := range unitSuffixes {
		if strings.HasSuffix(s, u.suffix) {
			num := strings.TrimSuffix(s, u.suffix)
			v, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return Length{}, fmt.Errorf("css: invalid length %q: %w", s, err)
			}
			return Length{Value: v, Unit: u.unit}, nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Length{}, fmt.Errorf("css: invalid length %q: %w", s, err)
	}
	// unitless numbers are pixels for lengths; callers that accept numbers
	// (line-height) convert
	return Px(v), nil
}
