package text

// Monospace is a deterministic Layout where every rune has the same
// advance. It is used by tests and as a fallback when no fonts are
// configured.
type Monospace struct {
	Advance    float64
	LineHeight float64
}

var _ Layout = Monospace{}

func (m Monospace) ShapeLine(font FontKey, s string, availableMain float64) (ShapedLine, error) {
	runes := make([]rune, 0, len(s))
	sl := ShapedLine{Height: m.LineHeight, Ascent: m.LineHeight * 0.8}
	for off, r := range s {
		runes = append(runes, r)
		sl.Glyphs = append(sl.Glyphs, Glyph{Rune: r, Offset: off, Advance: m.Advance})
	}
	sl.Width = float64(len(runes)) * m.Advance
	sl.BreakPoints = BreakOpportunities(runes)
	return sl, nil
}

func (m Monospace) MeasureIntrinsic(font FontKey, s string) (Intrinsic, error) {
	sl, _ := m.ShapeLine(font, s, 0)
	return IntrinsicFromShaped(sl, s), nil
}
