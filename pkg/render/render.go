// Package render paints a laid out frame into an RGBA image with gg.
//
// The painter reads only the geometry of a layout.LayoutResult plus the
// colors of the styled dom. It is a debugging aid for the layout core, not
// a full CSS painter. Backgrounds, solid borders, images, text runs, list
// markers and scrollbar tracks are drawn, nothing else.
package render

import (
	"fmt"
	"image"
	"io"
	"sort"

	"github.com/fogleman/gg"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"quill/pkg/css"
	"quill/pkg/dom"
	"quill/pkg/layout"
	"quill/pkg/text"
)

// tracer traces with key 'quill.render'.
func tracer() tracing.Trace {
	return tracing.Select("quill.render")
}

var (
	black         = css.Color{R: 0, G: 0, B: 0, A: 255}
	white         = css.Color{R: 255, G: 255, B: 255, A: 255}
	scrollbarGray = css.Color{R: 200, G: 200, B: 200, A: 255}
)

// ImageSource supplies decoded images by their dom handle.
type ImageSource interface {
	Image(handle uint64) (image.Image, bool)
}

// Renderer owns a gg drawing context of a fixed size.
type Renderer struct {
	context *gg.Context
	files   text.FontFiles
	faces   map[text.FontKey]font.Face
	images  ImageSource
}

// NewRenderer creates a renderer for a width x height canvas. Text is drawn
// with the faces in files; without files every run uses basicfont.
func NewRenderer(width, height int, files text.FontFiles) *Renderer {
	return &Renderer{
		context: gg.NewContext(width, height),
		files:   files,
		faces:   make(map[text.FontKey]font.Face),
	}
}

// SetImages sets the source of replaced element pixels. Without one images
// are painted as gray boxes.
func (r *Renderer) SetImages(src ImageSource) {
	r.images = src
}

// frame bundles what one Render call reads.
type frame struct {
	doc    dom.StyledDom
	result *layout.LayoutResult
}

// Render clears the canvas and paints every box of res.
func (r *Renderer) Render(doc dom.StyledDom, res *layout.LayoutResult) {
	r.setColor(white)
	r.context.Clear()
	if res == nil || res.Tree.Len() == 0 {
		return
	}
	f := frame{doc: doc, result: res}
	boxes := r.collectBoxes(f)
	r.sortByPaintOrder(f, boxes)
	for _, idx := range boxes {
		r.drawBox(f, idx)
	}
	tracer().Debugf("painted %d boxes", len(boxes))
}

// collectBoxes flattens the layout tree into document order.
func (r *Renderer) collectBoxes(f frame) []int {
	boxes := make([]int, 0, f.result.Tree.Len())
	f.result.Tree.Walk(func(idx int) bool {
		if _, ok := f.result.UsedSize(idx); !ok {
			return false
		}
		boxes = append(boxes, idx)
		return true
	})
	return boxes
}

// paintLevel orders boxes with equal z-index: blocks, then floats, then
// positioned boxes.
func paintLevel(n *layout.LayoutNode) int {
	switch {
	case n.Position != css.PositionStatic:
		return 2
	case n.Float != css.FloatNone:
		return 1
	}
	return 0
}

func (r *Renderer) zIndex(f frame, idx int) int {
	n := f.result.Tree.Node(idx)
	if n.IsAnonymous() || n.Position == css.PositionStatic {
		return 0
	}
	v, err := css.Typed[int](f.doc.Style(n.DomNode, css.PropZIndex))
	if err != nil {
		return 0
	}
	return v.Or(0)
}

func (r *Renderer) sortByPaintOrder(f frame, boxes []int) {
	sort.SliceStable(boxes, func(i, j int) bool {
		zi, zj := r.zIndex(f, boxes[i]), r.zIndex(f, boxes[j])
		if zi != zj {
			return zi < zj
		}
		return paintLevel(f.result.Tree.Node(boxes[i])) < paintLevel(f.result.Tree.Node(boxes[j]))
	})
}

func (r *Renderer) drawBox(f frame, idx int) {
	rect := f.result.Rect(idx)
	bp := f.result.BoxProps(idx)

	// Background covers the padding box.
	if bg, ok := r.ownColor(f, idx, css.PropBackgroundColor); ok && bg.A > 0 {
		p := rect.Origin.Add(bp.PaddingOffset())
		w := rect.Size.Width - bp.Border.Horizontal()
		h := rect.Size.Height - bp.Border.Vertical()
		if w > 0 && h > 0 {
			r.setColor(bg)
			r.context.DrawRectangle(p.X, p.Y, w, h)
			r.context.Fill()
		}
	}
	r.drawBorder(f, idx)
	r.drawImage(f, idx)
	r.drawText(f, idx)
	if sb := f.result.ScrollbarInfo(idx); sb.Horizontal || sb.Vertical {
		r.drawScrollbars(f, idx, sb)
	}
}

// drawBorder paints each side as a filled rectangle. Corners belong to the
// horizontal sides.
func (r *Renderer) drawBorder(f frame, idx int) {
	b := f.result.BoxProps(idx).Border
	if b.Top <= 0 && b.Right <= 0 && b.Bottom <= 0 && b.Left <= 0 {
		return
	}
	c, ok := r.ownColor(f, idx, css.PropBorderColor)
	if !ok {
		c = r.currentColor(f, idx)
	}
	if c.A == 0 {
		return
	}
	rect := f.result.Rect(idx)
	x, y := rect.Origin.X, rect.Origin.Y
	w, h := rect.Size.Width, rect.Size.Height
	r.setColor(c)
	if b.Top > 0 {
		r.context.DrawRectangle(x, y, w, b.Top)
	}
	if b.Bottom > 0 {
		r.context.DrawRectangle(x, y+h-b.Bottom, w, b.Bottom)
	}
	if b.Left > 0 {
		r.context.DrawRectangle(x, y+b.Top, b.Left, h-b.Top-b.Bottom)
	}
	if b.Right > 0 {
		r.context.DrawRectangle(x+w-b.Right, y+b.Top, b.Right, h-b.Top-b.Bottom)
	}
	r.context.Fill()
}

// drawImage scales an image into the content box of a replaced element.
func (r *Renderer) drawImage(f frame, idx int) {
	n := f.result.Tree.Node(idx)
	if n.IsAnonymous() || n.Pseudo != dom.PseudoNone {
		return
	}
	nt := f.doc.NodeType(n.DomNode)
	if nt.Kind != dom.ImageNode {
		return
	}
	origin := f.result.ContentOrigin(idx)
	size := n.BoxProps.InnerSize(n.UsedSize, n.Mode)
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	var img image.Image
	if r.images != nil {
		img, _ = r.images.Image(nt.Image.Handle)
	}
	if img == nil {
		r.setColor(scrollbarGray)
		r.context.DrawRectangle(origin.X, origin.Y, size.Width, size.Height)
		r.context.Fill()
		return
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	r.context.Push()
	r.context.Translate(origin.X, origin.Y)
	r.context.Scale(size.Width/float64(b.Dx()), size.Height/float64(b.Dy()))
	r.context.DrawImage(img, -b.Min.X, -b.Min.Y)
	r.context.Pop()
}

// drawText paints the line fragments of an inline formatting context root.
// Runs are relative to its content box.
func (r *Renderer) drawText(f frame, idx int) {
	n := f.result.Tree.Node(idx)
	if len(n.Runs) == 0 {
		return
	}
	origin := f.result.ContentOrigin(idx)
	for _, run := range n.Runs {
		if run.Text == "" {
			continue
		}
		face := r.face(run.Font)
		r.context.SetFontFace(face)
		r.setColor(r.runColor(f, idx, run))
		ascent := float64(face.Metrics().Ascent.Round())
		x := origin.X + run.Rect.Origin.X
		y := origin.Y + run.Rect.Origin.Y
		r.context.DrawString(run.Text, x, y+ascent)
	}
}

// drawScrollbars paints the tracks inside the border box of a scroll
// container.
func (r *Renderer) drawScrollbars(f frame, idx int, sb layout.ScrollbarInfo) {
	rect := f.result.Rect(idx)
	b := f.result.BoxProps(idx).Border
	left, top := rect.Origin.X+b.Left, rect.Origin.Y+b.Top
	right := rect.MaxX() - b.Right
	bottom := rect.MaxY() - b.Bottom
	r.setColor(scrollbarGray)
	if sb.Vertical {
		r.context.DrawRectangle(right-sb.Thickness, top, sb.Thickness, bottom-top)
	}
	if sb.Horizontal {
		w := right - left
		if sb.Vertical {
			w -= sb.Thickness
		}
		r.context.DrawRectangle(left, bottom-sb.Thickness, w, sb.Thickness)
	}
	r.context.Fill()
}

// face returns the font face for key. Faces that cannot be loaded fall back
// to basicfont.
func (r *Renderer) face(key text.FontKey) font.Face {
	if f, ok := r.faces[key]; ok {
		return f
	}
	var face font.Face = basicfont.Face7x13
	if path := r.files.Path(key); path != "" && key.Size > 0 {
		loaded, err := gg.LoadFontFace(path, key.Size)
		if err != nil {
			tracer().Errorf("font %s: %v", key, err)
		} else {
			face = loaded
		}
	}
	r.faces[key] = face
	return face
}

// ownColor reads a non-inherited color property of the dom node of idx.
func (r *Renderer) ownColor(f frame, idx int, kind css.PropertyKind) (css.Color, bool) {
	n := f.result.Tree.Node(idx)
	if n.IsAnonymous() {
		return css.Color{}, false
	}
	v, err := css.Typed[css.Color](f.doc.Style(n.DomNode, kind))
	if err != nil {
		return css.Color{}, false
	}
	return v.Get()
}

// currentColor resolves the inherited color property by walking up the
// layout tree.
func (r *Renderer) currentColor(f frame, idx int) css.Color {
	for ; idx >= 0; idx = f.result.Tree.Node(idx).Parent {
		if c, ok := r.ownColor(f, idx, css.PropColor); ok {
			return c
		}
	}
	return black
}

// runColor is the color of the element owning a run. Text nodes take the
// color of their parent.
func (r *Renderer) runColor(f frame, idx int, run layout.TextRun) css.Color {
	if run.Node != dom.NoNode && f.doc.NodeType(run.Node).Kind == dom.ElementNode {
		if owner := f.result.Tree.FindDom(run.Node); owner >= 0 {
			return r.currentColor(f, owner)
		}
	}
	return r.currentColor(f, idx)
}

func (r *Renderer) setColor(c css.Color) {
	r.context.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
}

// Image returns the canvas.
func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

// SavePNG writes the canvas to a PNG file.
func (r *Renderer) SavePNG(filename string) error {
	if err := r.context.SavePNG(filename); err != nil {
		return fmt.Errorf("render: save %s: %w", filename, err)
	}
	return nil
}

// EncodePNG writes the canvas as PNG to w.
func (r *Renderer) EncodePNG(w io.Writer) error {
	return r.context.EncodePNG(w)
}
