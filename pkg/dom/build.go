package dom

import (
	"fmt"

	"quill/pkg/css"
)

// Spec describes a subtree for Build. Use El, Text, Img and Texture to
// create specs.
type Spec struct {
	kind     NodeKind
	tag      string
	decl     string
	text     string
	image    ImageRef
	children []Spec
	pseudo   map[PseudoKind]string
	colspan  int
	rowspan  int
}

// El is an element with inline declarations and children.
func El(tag, decl string, children ...Spec) Spec {
	return Spec{kind: ElementNode, tag: tag, decl: decl, children: children}
}

// Text is a text node.
func Text(s string) Spec {
	return Spec{kind: TextNode, text: s}
}

// Img is an image with the given natural size.
func Img(w, h float64, decl string) Spec {
	return Spec{kind: ImageNode, tag: "img", decl: decl, image: ImageRef{Width: w, Height: h}}
}

// Texture is a GL texture placeholder with the given natural size.
func Texture(handle uint64, w, h float64, decl string) Spec {
	return Spec{kind: TextureNode, tag: "texture", decl: decl, image: ImageRef{Handle: handle, Width: w, Height: h}}
}

// WithPseudo attaches declarations for ::before, ::after or ::marker.
func (s Spec) WithPseudo(p PseudoKind, decl string) Spec {
	m := make(map[PseudoKind]string, len(s.pseudo)+1)
	for k, v := range s.pseudo {
		m[k] = v
	}
	m[p] = decl
	s.pseudo = m
	return s
}

// WithSpan sets colspan and rowspan of a table cell.
func (s Spec) WithSpan(cols, rows int) Spec {
	s.colspan, s.rowspan = cols, rows
	return s
}

// Build materializes spec as a new Document whose root is the spec root.
func Build(spec Spec) (*Document, error) {
	d := NewDocument()
	if _, err := d.Append(NoNode, spec); err != nil {
		return nil, err
	}
	return d, nil
}

// MustBuild is Build for literal specs in tests and examples.
func MustBuild(spec Spec) *Document {
	d, err := Build(spec)
	if err != nil {
		panic(err)
	}
	return d
}

// Append materializes spec below parent and returns the new subtree root.
func (d *Document) Append(parent NodeId, spec Spec) (NodeId, error) {
	var style *css.Style
	if spec.kind != TextNode {
		s, err := css.ParseDeclarations(spec.decl)
		if err != nil {
			return NoNode, fmt.Errorf("dom: <%s style=%q>: %w", spec.tag, spec.decl, err)
		}
		style = s
	}
	var id NodeId
	switch spec.kind {
	case TextNode:
		return d.AddText(parent, spec.text), nil
	case ImageNode:
		id = d.AddImage(parent, spec.image, style)
	case TextureNode:
		id = d.AddTexture(parent, spec.image, style)
	default:
		id = d.AddElement(parent, spec.tag, style)
	}
	for p, decl := range spec.pseudo {
		ps, err := css.ParseDeclarations(decl)
		if err != nil {
			return NoNode, fmt.Errorf("dom: <%s>%s: %w", spec.tag, p, err)
		}
		d.SetPseudoStyle(id, p, ps)
	}
	if spec.colspan > 0 || spec.rowspan > 0 {
		d.SetCellSpan(id, spec.colspan, spec.rowspan)
	}
	for _, c := range spec.children {
		if _, err := d.Append(id, c); err != nil {
			return NoNode, err
		}
	}
	return id, nil
}
