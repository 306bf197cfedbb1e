package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/pkg/dom"
	"quill/pkg/images"
	"quill/pkg/layout"
	"quill/pkg/text"
)

func layoutHTML(t *testing.T, src string, opts ...layout.Option) (*dom.Document, *layout.LayoutResult) {
	t.Helper()
	d, err := dom.ParseHTMLString(src)
	require.NoError(t, err)
	opts = append(opts, layout.WithTextLayout(text.Monospace{Advance: 8, LineHeight: 20}))
	r, err := layout.LayoutDocument(d, image.Rect(0, 0, 200, 150), nil, nil, opts...)
	require.NoError(t, err)
	return d, r
}

func rgba(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func TestRenderBackgroundAndBorder(t *testing.T) {
	d, r := layoutHTML(t, `<body style="margin: 0">
		<div style="width: 100px; height: 50px; background-color: red; border: 5px solid blue"></div>
	</body>`)
	rr := NewRenderer(200, 150, text.FontFiles{})
	rr.Render(d, r)
	img := rr.Image()

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, rgba(img.At(50, 30)), "background")
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, rgba(img.At(2, 30)), "left border")
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgba(img.At(150, 100)), "canvas")
}

func TestRenderScrollbarTrack(t *testing.T) {
	d, r := layoutHTML(t, `<body style="margin: 0">
		<div style="width: 100px; height: 50px; overflow: scroll"></div>
	</body>`, layout.WithScrollbarThickness(10))
	rr := NewRenderer(200, 150, text.FontFiles{})
	rr.Render(d, r)
	img := rr.Image()

	assert.Equal(t, color.RGBA{200, 200, 200, 255}, rgba(img.At(95, 10)), "vertical track")
	assert.Equal(t, color.RGBA{200, 200, 200, 255}, rgba(img.At(20, 45)), "horizontal track")
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgba(img.At(20, 10)), "content")
}

func TestRenderTextInk(t *testing.T) {
	d, r := layoutHTML(t, `<body style="margin: 0; color: green"><p>HHHH</p></body>`)
	rr := NewRenderer(200, 150, text.FontFiles{})
	rr.Render(d, r)
	img := rr.Image()

	var ink bool
	for x := 0; x < 32 && !ink; x++ {
		for y := 0; y < 20; y++ {
			if c := rgba(img.At(x, y)); c.G > 0 && c.R < 100 && c.B < 100 {
				ink = true
				break
			}
		}
	}
	assert.True(t, ink, "expected green glyph pixels in the first line")
}

func TestRenderImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 255
		if i%4 == 1 || i%4 == 2 {
			src.Pix[i] = 0
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	store := images.NewStore("")
	d, err := dom.ParseHTMLWithImages(strings.NewReader(
		`<body style="margin: 0"><img src="`+uri+`" width="40" height="20"></body>`), store)
	require.NoError(t, err)
	r, err := layout.LayoutDocument(d, image.Rect(0, 0, 200, 150), nil, nil)
	require.NoError(t, err)

	rr := NewRenderer(200, 150, text.FontFiles{})
	rr.SetImages(store)
	rr.Render(d, r)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, rgba(rr.Image().At(30, 10)), "scaled image")
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgba(rr.Image().At(60, 10)), "beside the image")
}

func TestEncodePNG(t *testing.T) {
	rr := NewRenderer(20, 10, text.FontFiles{})
	rr.Render(nil, nil)
	var buf bytes.Buffer
	require.NoError(t, rr.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())
}
