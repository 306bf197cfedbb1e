package text

import (
	"fmt"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FontFiles maps font variants to TrueType/OpenType files.
type FontFiles struct {
	Regular    string
	Bold       string
	Italic     string
	BoldItalic string
	Monospace  string
}

// Path returns the file for the given key, falling back to Regular.
func (ff FontFiles) Path(key FontKey) string {
	bold := key.Weight >= 600
	if key.Family == "monospace" && ff.Monospace != "" {
		return ff.Monospace
	}
	if bold && key.Italic && ff.BoldItalic != "" {
		return ff.BoldItalic
	}
	if bold && ff.Bold != "" {
		return ff.Bold
	}
	if key.Italic && ff.Italic != "" {
		return ff.Italic
	}
	return ff.Regular
}

// FaceLayout shapes text with golang.org/x/image font faces. Faces are
// loaded per (path, size) and cached. Without font files every key maps to
// basicfont.Face7x13, scaled to the requested size.
type FaceLayout struct {
	Files FontFiles

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	path string
	size float64
}

var _ Layout = (*FaceLayout)(nil)

// NewFaceLayout creates a layout using the given font files.
func NewFaceLayout(files FontFiles) *FaceLayout {
	return &FaceLayout{Files: files, faces: make(map[faceKey]font.Face)}
}

func (fl *FaceLayout) face(key FontKey) (font.Face, float64, error) {
	path := fl.Files.Path(key)
	if path == "" {
		scale := 1.0
		if key.Size > 0 {
			scale = key.Size / 13
		}
		return basicfont.Face7x13, scale, nil
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fk := faceKey{path: path, size: key.Size}
	if f, ok := fl.faces[fk]; ok {
		return f, 1, nil
	}
	f, err := gg.LoadFontFace(path, key.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrNoFace, key, err)
	}
	fl.faces[fk] = f
	return f, 1, nil
}

func (fl *FaceLayout) ShapeLine(key FontKey, s string, availableMain float64) (ShapedLine, error) {
	f, scale, err := fl.face(key)
	if err != nil {
		return ShapedLine{}, err
	}
	m := f.Metrics()
	sl := ShapedLine{
		Height: toFloat(m.Height) * scale,
		Ascent: toFloat(m.Ascent) * scale,
	}
	var runes []rune
	prev := rune(-1)
	for off, r := range s {
		adv, ok := f.GlyphAdvance(r)
		if !ok {
			adv, _ = f.GlyphAdvance('?')
		}
		if prev >= 0 {
			adv += f.Kern(prev, r)
		}
		a := toFloat(adv) * scale
		sl.Glyphs = append(sl.Glyphs, Glyph{Rune: r, Offset: off, Advance: a})
		sl.Width += a
		runes = append(runes, r)
		prev = r
	}
	sl.BreakPoints = BreakOpportunities(runes)
	return sl, nil
}

func (fl *FaceLayout) MeasureIntrinsic(key FontKey, s string) (Intrinsic, error) {
	sl, err := fl.ShapeLine(key, s, 0)
	if err != nil {
		return Intrinsic{}, err
	}
	return IntrinsicFromShaped(sl, s), nil
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
