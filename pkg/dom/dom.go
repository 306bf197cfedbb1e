// Package dom defines the styled document the layout core consumes and an
// in-memory implementation of it.
//
// The layout core only sees the StyledDom interface: a dense arena of
// NodeIds with a node type, a per-property computed value and a
// styled-node state. Document implements it and can be populated from
// HTML (ParseHTML) or programmatically (Build, AddElement, ...).
package dom

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"quill/pkg/css"
)

// tracer traces with key 'quill.dom'.
func tracer() tracing.Trace {
	return tracing.Select("quill.dom")
}

// NodeId addresses a node of a StyledDom. Ids are dense, starting at zero.
type NodeId int

// NoNode marks an absent node reference.
const NoNode NodeId = -1

// NodeKind discriminates NodeType.
type NodeKind uint8

const (
	ElementNode NodeKind = iota
	TextNode
	ImageNode
	TextureNode // GL texture placeholder
)

// ImageRef is an opaque handle plus the natural size of the image or texture.
type ImageRef struct {
	Handle        uint64
	Width, Height float64
}

// NodeType is the content of a node.
type NodeType struct {
	Kind  NodeKind
	Tag   string   // element tag name, lower case
	Text  string   // TextNode content
	Image ImageRef // ImageNode and TextureNode
}

func (t NodeType) String() string {
	switch t.Kind {
	case TextNode:
		return fmt.Sprintf("#text(%q)", t.Text)
	case ImageNode:
		return fmt.Sprintf("img(%gx%g)", t.Image.Width, t.Image.Height)
	case TextureNode:
		return fmt.Sprintf("texture(%gx%g)", t.Image.Width, t.Image.Height)
	}
	return t.Tag
}

// IsReplaced reports image and texture nodes.
func (t NodeType) IsReplaced() bool {
	return t.Kind == ImageNode || t.Kind == TextureNode
}

// NodeState holds the dynamic interaction bits that take part in dirty
// detection.
type NodeState uint8

const (
	StateHover NodeState = 1 << iota
	StateActive
	StateFocus
	StateChecked
	StateDisabled
	StateVisited
)

// Has tests for a state bit.
func (s NodeState) Has(bit NodeState) bool { return s&bit != 0 }

// PseudoKind names a generated pseudo-element.
type PseudoKind uint8

const (
	PseudoNone PseudoKind = iota
	PseudoMarker
	PseudoBefore
	PseudoAfter
)

func (p PseudoKind) String() string {
	switch p {
	case PseudoMarker:
		return "::marker"
	case PseudoBefore:
		return "::before"
	case PseudoAfter:
		return "::after"
	}
	return ""
}

// StyledDom is the read-only view the layout core consumes.
type StyledDom interface {
	NodeCount() int
	Root() NodeId
	ChildrenOf(id NodeId) []NodeId
	NodeType(id NodeId) NodeType
	// Style returns the computed value of a property. Implementations may
	// return Inherit; the consumer resolves it against the parent.
	Style(id NodeId, kind css.PropertyKind) css.Value
	NodeState(id NodeId) NodeState
}

// PseudoStyler is implemented by doms that carry ::before, ::after and
// ::marker styles. ok is false when no rule targets that pseudo-element.
type PseudoStyler interface {
	PseudoStyle(id NodeId, pseudo PseudoKind, kind css.PropertyKind) (v css.Value, ok bool)
}

// CellSpanner is implemented by doms that know colspan/rowspan of table
// cells. Values below one are treated as one.
type CellSpanner interface {
	CellSpan(id NodeId) (cols, rows int)
}

// StyleHasher lets a dom supply a precomputed style fingerprint so the
// layout core need not query every property for hashing.
type StyleHasher interface {
	StyleHash(id NodeId) uint64
}
