package main

import (
	"io"

	"gopkg.in/yaml.v3"

	"quill/pkg/dom"
	"quill/pkg/layout"
)

// frameGeometry is the YAML export of one frame.
type frameGeometry struct {
	Iterations int          `yaml:"iterations"`
	Pages      int          `yaml:"pages,omitempty"`
	Roots      []int        `yaml:"layout_roots,flow"`
	Root       *boxGeometry `yaml:"root,omitempty"`
}

type boxGeometry struct {
	Index      int            `yaml:"index"`
	Box        string         `yaml:"box"`
	Context    string         `yaml:"context,omitempty"`
	Rect       [4]float64     `yaml:"rect,flow"` // x, y, width, height
	Scrollbars string         `yaml:"scrollbars,omitempty"`
	ScrollID   uint64         `yaml:"scroll_id,omitempty"`
	Marker     string         `yaml:"marker,omitempty"`
	Counters   map[string]int `yaml:"counters,omitempty"`
	Lines      []string       `yaml:"lines,omitempty"`
	Children   []*boxGeometry `yaml:"children,omitempty"`
}

func exportGeometry(doc dom.StyledDom, r *layout.LayoutResult) *frameGeometry {
	g := &frameGeometry{Iterations: r.Iterations, Pages: r.PageCount, Roots: r.Roots}
	if r.Tree.Len() > 0 {
		g.Root = exportBox(doc, r, r.Tree.Root)
	}
	return g
}

func exportBox(doc dom.StyledDom, r *layout.LayoutResult, idx int) *boxGeometry {
	n := r.Tree.Node(idx)
	rect := r.Rect(idx)
	b := &boxGeometry{
		Index: idx,
		Box:   boxName(doc, r, idx),
		Rect:  [4]float64{rect.Origin.X, rect.Origin.Y, rect.Size.Width, rect.Size.Height},
	}
	if n.FC.Independent {
		b.Context = n.FC.Kind.String()
	}
	if sb := r.ScrollbarInfo(idx); sb.Horizontal || sb.Vertical {
		b.Scrollbars = sb.String()
	}
	b.ScrollID = r.ScrollIDs[idx]
	if n.Pseudo == dom.PseudoMarker {
		b.Marker = n.Text
	}
	for _, k := range r.CounterValues(idx) {
		if b.Counters == nil {
			b.Counters = make(map[string]int)
		}
		b.Counters[k.Name] = r.Counters[k]
	}
	for _, run := range n.Runs {
		b.Lines = append(b.Lines, run.Text)
	}
	for _, ch := range n.Children {
		b.Children = append(b.Children, exportBox(doc, r, ch))
	}
	return b
}

// boxName prefers the element tag over the generic node label.
func boxName(doc dom.StyledDom, r *layout.LayoutResult, idx int) string {
	n := r.Tree.Node(idx)
	if n.IsAnonymous() || n.Pseudo != dom.PseudoNone {
		return r.Tree.Label(idx)
	}
	if nt := doc.NodeType(n.DomNode); nt.Tag != "" {
		return nt.Tag
	}
	return r.Tree.Label(idx)
}

func writeYAML(w io.Writer, g *frameGeometry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g); err != nil {
		return err
	}
	return enc.Close()
}
