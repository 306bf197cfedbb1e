package css

import (
	"fmt"
	"strconv"
	"strings"
)

// BreadthKind classifies one side of a grid track sizing function.
type BreadthKind uint8

const (
	BreadthLength BreadthKind = iota
	BreadthFr
	BreadthAuto
	BreadthMinContent
	BreadthMaxContent
)

// Breadth is a track sizing function endpoint.
type Breadth struct {
	Kind   BreadthKind
	Length Length
	Fr     float64
}

func (b Breadth) String() string {
	switch b.Kind {
	case BreadthFr:
		return strconv.FormatFloat(b.Fr, 'g', -1, 64) + "fr"
	case BreadthAuto:
		return "auto"
	case BreadthMinContent:
		return "min-content"
	case BreadthMaxContent:
		return "max-content"
	}
	return b.Length.String()
}

// IsIntrinsic is true for auto, min-content and max-content.
func (b Breadth) IsIntrinsic() bool {
	return b.Kind == BreadthAuto || b.Kind == BreadthMinContent || b.Kind == BreadthMaxContent
}

// TrackSize is minmax(Min, Max). A plain track repeats the same breadth,
// except a flexible track whose minimum is auto.
type TrackSize struct {
	Min, Max Breadth
}

func (t TrackSize) String() string {
	if t.Min == t.Max {
		return t.Min.String()
	}
	if t.Max.Kind == BreadthFr && t.Min.Kind == BreadthAuto {
		return t.Max.String()
	}
	return "minmax(" + t.Min.String() + "," + t.Max.String() + ")"
}

// AutoTrack is the initial value of grid-auto-rows/columns.
var AutoTrack = TrackSize{Min: Breadth{Kind: BreadthAuto}, Max: Breadth{Kind: BreadthAuto}}

// TrackList is an explicit track listing with repeat() expanded.
type TrackList []TrackSize

func (l TrackList) String() string {
	parts := make([]string, len(l))
	for i, t := range l {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// ParseTrackList parses grid-template-rows/columns values such as
// "100px 1fr", "repeat(3, 1fr)" or "minmax(50px, auto) 2fr".
func ParseTrackList(s string) (TrackList, error) {
	tokens, err := splitTopLevel(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	var list TrackList
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "repeat(") {
			inner := strings.TrimSuffix(strings.TrimPrefix(tok, "repeat("), ")")
			count, rest, ok := strings.Cut(inner, ",")
			if !ok {
				return nil, fmt.Errorf("css: malformed repeat %q", tok)
			}
			n, err := strconv.Atoi(strings.TrimSpace(count))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("css: invalid repeat count in %q", tok)
			}
			sub, err := ParseTrackList(rest)
			if err != nil {
				return nil, err
			}
			for i := 0; i < n; i++ {
				list = append(list, sub...)
			}
			continue
		}
		t, err := ParseTrackSize(tok)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, nil
}

// ParseTrackSize parses a single track sizing function.
func ParseTrackSize(s string) (TrackSize, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "minmax(") {
		inner := strings.TrimSuffix(strings.TrimPrefix(s, "minmax("), ")")
		a, b, ok := strings.Cut(inner, ",")
		if !ok {
			return TrackSize{}, fmt.Errorf("css: malformed minmax %q", s)
		}
		lo, err := parseBreadth(a)
		if err != nil {
			return TrackSize{}, err
		}
		hi, err := parseBreadth(b)
		if err != nil {
			return TrackSize{}, err
		}
		return TrackSize{Min: lo, Max: hi}, nil
	}
	b, err := parseBreadth(s)
	if err != nil {
		return TrackSize{}, err
	}
	if b.Kind == BreadthFr {
		return TrackSize{Min: Breadth{Kind: BreadthAuto}, Max: b}, nil
	}
	return TrackSize{Min: b, Max: b}, nil
}

func parseBreadth(s string) (Breadth, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "auto":
		return Breadth{Kind: BreadthAuto}, nil
	case "min-content":
		return Breadth{Kind: BreadthMinContent}, nil
	case "max-content":
		return Breadth{Kind: BreadthMaxContent}, nil
	}
	if strings.HasSuffix(s, "fr") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "fr"), 64)
		if err != nil || v < 0 {
			return Breadth{}, fmt.Errorf("css: invalid flex breadth %q", s)
		}
		return Breadth{Kind: BreadthFr, Fr: v}, nil
	}
	l, err := ParseLength(s)
	if err != nil {
		return Breadth{}, err
	}
	return Breadth{Kind: BreadthLength, Length: l}, nil
}

// splitTopLevel splits on whitespace outside parentheses.
func splitTopLevel(s string) ([]string, error) {
	var out []string
	depth, start := 0, -1
	for i, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("css: unbalanced parentheses in %q", s)
			}
		case (r == ' ' || r == '\t' || r == '\n') && depth == 0:
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("css: unbalanced parentheses in %q", s)
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out, nil
}

// GridLine is one end of a grid-row/grid-column placement. Line is 1-based;
// zero means auto. Span > 0 means "span N".
type GridLine struct {
	Line int
	Span int
}

// IsAuto reports an auto placement.
func (g GridLine) IsAuto() bool { return g.Line == 0 && g.Span == 0 }

func (g GridLine) String() string {
	switch {
	case g.Span > 0:
		return "span " + strconv.Itoa(g.Span)
	case g.Line != 0:
		return strconv.Itoa(g.Line)
	}
	return "auto"
}

// ParseGridLine parses "auto", "3", "-1" or "span 2".
func ParseGridLine(s string) (GridLine, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "auto" || s == "" {
		return GridLine{}, nil
	}
	if strings.HasPrefix(s, "span") {
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(s, "span")))
		if err != nil || n < 1 {
			return GridLine{}, fmt.Errorf("css: invalid grid span %q", s)
		}
		return GridLine{Span: n}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return GridLine{}, fmt.Errorf("css: invalid grid line %q", s)
	}
	return GridLine{Line: n}, nil
}

// CounterOp is one (name, value) pair of counter-reset or counter-increment.
type CounterOp struct {
	Name  string
	Value int
}

// CounterOps is an ordered counter-reset/counter-increment list.
type CounterOps []CounterOp

func (c CounterOps) String() string {
	if len(c) == 0 {
		return "none"
	}
	parts := make([]string, 0, 2*len(c))
	for _, op := range c {
		parts = append(parts, op.Name, strconv.Itoa(op.Value))
	}
	return strings.Join(parts, " ")
}

// Has reports whether the list names counter n.
func (c CounterOps) Has(n string) bool {
	for _, op := range c {
		if op.Name == n {
			return true
		}
	}
	return false
}

// ParseCounterOps parses "none", "item", "item 3 other -1". def is the
// value for names without an explicit integer.
func ParseCounterOps(s string, def int) (CounterOps, error) {
	fields := strings.Fields(s)
	if len(fields) == 1 && strings.EqualFold(fields[0], "none") {
		return CounterOps{}, nil
	}
	var ops CounterOps
	for i := 0; i < len(fields); i++ {
		name := fields[i]
		if _, err := strconv.Atoi(name); err == nil {
			return nil, fmt.Errorf("css: counter name expected, got %q", name)
		}
		op := CounterOp{Name: name, Value: def}
		if i+1 < len(fields) {
			if v, err := strconv.Atoi(fields[i+1]); err == nil {
				op.Value = v
				i++
			}
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// ContentPart is a literal string or a counter reference in `content`.
type ContentPart struct {
	Text    string
	Counter string // non-empty for counter(name)
	Style   ListStyleType
}

// Content is a parsed `content` value.
type Content []ContentPart

func (c Content) String() string {
	var b strings.Builder
	for i, p := range c {
		if i > 0 {
			b.WriteByte(' ')
		}
		if p.Counter != "" {
			fmt.Fprintf(&b, "counter(%s, %s)", p.Counter, p.Style)
		} else {
			b.WriteString(strconv.Quote(p.Text))
		}
	}
	return b.String()
}

// ParseContent parses a sequence of quoted strings and counter(name[, style])
// functions. "none" and "normal" yield an empty Content.
func ParseContent(s string) (Content, error) {
	s = strings.TrimSpace(s)
	if s == "none" || s == "normal" {
		return Content{}, nil
	}
	var out Content
	for len(s) > 0 {
		switch {
		case s[0] == '"' || s[0] == '\'':
			q := s[0]
			end := strings.IndexByte(s[1:], q)
			if end < 0 {
				return nil, fmt.Errorf("css: unterminated string in content")
			}
			out = append(out, ContentPart{Text: s[1 : end+1]})
			s = s[end+2:]
		case strings.HasPrefix(s, "counter("):
			end := strings.IndexByte(s, ')')
			if end < 0 {
				return nil, fmt.Errorf("css: unterminated counter() in content")
			}
			args := strings.Split(s[len("counter("):end], ",")
			part := ContentPart{Counter: strings.TrimSpace(args[0]), Style: ListStyleDecimal}
			if len(args) > 1 {
				st, ok := listStyleTypeKeywords[strings.TrimSpace(args[1])]
				if !ok {
					return nil, fmt.Errorf("css: unknown counter style %q", args[1])
				}
				part.Style = st
			}
			out = append(out, part)
			s = s[end+1:]
		default:
			return nil, fmt.Errorf("css: unsupported content token %q", s)
		}
		s = strings.TrimSpace(s)
	}
	return out, nil
}
