package dom

import (
	"fmt"
	"hash/fnv"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ImageResolver supplies the natural size of images referenced by <img src>.
type ImageResolver interface {
	ImageSize(src string) (width, height float64, ok bool)
}

// ParseHTML loads an HTML document. The <body> element becomes the root;
// <style> elements are collected into stylesheets and cascaded onto the
// elements. Whitespace-only text nodes are dropped.
func ParseHTML(r io.Reader) (*Document, error) {
	return ParseHTMLWithImages(r, nil)
}

// ParseHTMLWithImages is ParseHTML with natural image sizes taken from
// images for <img> elements that lack width or height attributes.
func ParseHTMLWithImages(r io.Reader, images ImageResolver) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse html: %w", err)
	}
	var sheets []*Stylesheet
	var body *html.Node
	var scan func(*html.Node)
	scan = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "style":
				var b strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						b.WriteString(c.Data)
					}
				}
				sheet, err := ParseStylesheet(b.String())
				if err != nil {
					tracer().Errorf("%v", err)
				} else {
					sheets = append(sheets, sheet)
				}
			case "body":
				if body == nil {
					body = n
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			scan(c)
		}
	}
	scan(root)
	if body == nil {
		return nil, fmt.Errorf("dom: document has no body")
	}
	d := NewDocument()
	l := loader{doc: d, sheets: sheets, images: images}
	l.convert(NoNode, body)
	tracer().Debugf("loaded html document with %d nodes", d.NodeCount())
	return d, nil
}

// ParseHTMLString is ParseHTML on a string.
func ParseHTMLString(s string) (*Document, error) {
	return ParseHTML(strings.NewReader(s))
}

type loader struct {
	doc    *Document
	sheets []*Stylesheet
	images ImageResolver
}

func (l *loader) convert(parent NodeId, n *html.Node) {
	d := l.doc
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return
		}
		d.AddText(parent, n.Data)
		return
	case html.ElementNode:
	default:
		return
	}
	if hiddenTags[n.Data] {
		return
	}
	style, pseudo := computeStyles(n, l.sheets)
	var id NodeId
	if n.Data == "img" {
		img := l.image(n)
		id = d.add(parent, docNode{typ: NodeType{Kind: ImageNode, Tag: "img", Image: img}, style: style})
	} else {
		id = d.add(parent, docNode{typ: NodeType{Kind: ElementNode, Tag: n.Data}, style: style})
	}
	for p, ps := range pseudo {
		d.SetPseudoStyle(id, p, ps)
	}
	if n.Data == "td" || n.Data == "th" {
		d.SetCellSpan(id, int(attrFloat(n, "colspan")), int(attrFloat(n, "rowspan")))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		l.convert(id, c)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func attrFloat(n *html.Node, key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(attr(n, key), "px"), 64)
	if err != nil {
		return 0
	}
	return v
}

// image builds the reference of an <img>, loading it through the resolver.
// A single missing dimension is derived from the aspect ratio of the
// natural size.
func (l *loader) image(n *html.Node) ImageRef {
	src := attr(n, "src")
	img := ImageRef{
		Width:  attrFloat(n, "width"),
		Height: attrFloat(n, "height"),
		Handle: ImageHandle(src),
	}
	if l.images == nil || src == "" {
		return img
	}
	w, h, ok := l.images.ImageSize(src)
	if !ok || w <= 0 || h <= 0 || (img.Width > 0 && img.Height > 0) {
		return img
	}
	switch {
	case img.Width > 0:
		img.Height = img.Width * h / w
	case img.Height > 0:
		img.Width = img.Height * w / h
	default:
		img.Width, img.Height = w, h
	}
	return img
}

// ImageHandle is the handle an image source is stored under.
func ImageHandle(src string) uint64 {
	if src == "" {
		return 0
	}
	h := fnv.New64a()
	io.WriteString(h, src)
	return h.Sum64()
}
