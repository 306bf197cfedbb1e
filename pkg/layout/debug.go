package layout

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'quill.layout'.
func tracer() tracing.Trace {
	return tracing.Select("quill.layout")
}

// DebugMessageKind tags a LayoutDebugMessage.
type DebugMessageKind uint8

const (
	DebugReconcile DebugMessageKind = iota
	DebugPositionCalculation
	DebugScrollbarChange
	DebugCounterEvaluation
	DebugSettlement
	DebugWarning
)

func (k DebugMessageKind) String() string {
	switch k {
	case DebugReconcile:
		return "reconcile"
	case DebugPositionCalculation:
		return "position"
	case DebugScrollbarChange:
		return "scrollbar"
	case DebugCounterEvaluation:
		return "counter"
	case DebugSettlement:
		return "settlement"
	case DebugWarning:
		return "warning"
	}
	return "?"
}

// LayoutDebugMessage is one record pushed to a DebugSink. Node is a layout
// index, or -1.
type LayoutDebugMessage struct {
	Kind    DebugMessageKind
	Node    int
	Message string
}

func (m LayoutDebugMessage) String() string {
	if m.Node < 0 {
		return fmt.Sprintf("[%s] %s", m.Kind, m.Message)
	}
	return fmt.Sprintf("[%s] #%d %s", m.Kind, m.Node, m.Message)
}

// DebugSink collects debug messages during a layout pass. A nil sink is
// allowed and skips message formatting altogether.
type DebugSink interface {
	Push(LayoutDebugMessage)
}

// DebugLog is a DebugSink that keeps every message in order.
type DebugLog struct {
	Messages []LayoutDebugMessage
}

func (l *DebugLog) Push(m LayoutDebugMessage) {
	l.Messages = append(l.Messages, m)
}

// Filter returns the messages of one kind.
func (l *DebugLog) Filter(kind DebugMessageKind) []LayoutDebugMessage {
	var out []LayoutDebugMessage
	for _, m := range l.Messages {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func (le *layoutEngine) debug(kind DebugMessageKind, node int, format string, args ...any) {
	if le.sink == nil {
		return
	}
	le.sink.Push(LayoutDebugMessage{Kind: kind, Node: node, Message: fmt.Sprintf(format, args...)})
}

func (le *layoutEngine) warn(node int, format string, args ...any) {
	tracer().Infof("layout warning at #%d: "+format, append([]any{node}, args...)...)
	le.debug(DebugWarning, node, format, args...)
}
