package layout

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a LayoutError.
type ErrorKind uint8

const (
	InvalidTree ErrorKind = iota + 1
	UnknownProperty
	TextLayoutFailed
	SettlementNotConverged
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidTree:
		return "invalid tree"
	case UnknownProperty:
		return "unknown property"
	case TextLayoutFailed:
		return "text layout failed"
	case SettlementNotConverged:
		return "scrollbar settlement did not converge"
	}
	return "layout error"
}

// LayoutError is the error type returned by LayoutDocument. Node is the dom
// node id (or layout index, for settlement) the error refers to, -1 if none.
type LayoutError struct {
	Kind ErrorKind
	Node int
	Err  error
}

func (le *LayoutError) Error() string {
	msg := "layout: " + le.Kind.String()
	if le.Node >= 0 {
		msg = fmt.Sprintf("%s (node %d)", msg, le.Node)
	}
	if le.Err != nil {
		msg += ": " + le.Err.Error()
	}
	return msg
}

func (le *LayoutError) Unwrap() error { return le.Err }

// Is matches another *LayoutError of the same kind, so the sentinels below
// work with errors.Is.
func (le *LayoutError) Is(target error) bool {
	var t *LayoutError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == le.Kind
}

var (
	ErrInvalidTree            = &LayoutError{Kind: InvalidTree, Node: -1}
	ErrUnknownProperty        = &LayoutError{Kind: UnknownProperty, Node: -1}
	ErrTextLayoutFailed       = &LayoutError{Kind: TextLayoutFailed, Node: -1}
	ErrSettlementNotConverged = &LayoutError{Kind: SettlementNotConverged, Node: -1}
)

func invalidTree(node int, format string, args ...any) *LayoutError {
	return &LayoutError{Kind: InvalidTree, Node: node, Err: fmt.Errorf(format, args...)}
}
