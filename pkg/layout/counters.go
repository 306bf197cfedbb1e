package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"quill/pkg/css"
	"quill/pkg/dom"
)

// CounterKey addresses one counter value in a LayoutResult.
type CounterKey struct {
	Node int
	Name string
}

const listItemCounter = "list-item"

// counterScopes is the state of the counter walk: a stack of values per
// counter name.
type counterScopes map[string][]int

func (s counterScopes) reset(name string, v int) {
	s[name] = append(s[name], v)
}

func (s counterScopes) increment(name string, v int) bool {
	st := s[name]
	if len(st) == 0 {
		return false
	}
	st[len(st)-1] += v
	return true
}

func (s counterScopes) pop(name string) {
	if st := s[name]; len(st) > 0 {
		s[name] = st[:len(st)-1]
	}
}

func (s counterScopes) value(name string) int {
	if st := s[name]; len(st) > 0 {
		return st[len(st)-1]
	}
	return 0
}

// evaluateCounters walks the tree in document order, records the value of
// every live counter on every node and generates the text of markers and
// counter() content. It returns the nodes whose generated text changed.
func (le *layoutEngine) evaluateCounters() (map[CounterKey]int, []int) {
	values := make(map[CounterKey]int)
	scopes := make(counterScopes)
	opened := make(map[int][]string)
	var changed []int

	setText := func(idx int, s string) {
		n := le.node(idx)
		if n.Text != s {
			n.Text = s
			changed = append(changed, idx)
		}
	}

	var walk func(idx int)
	walk = func(idx int) {
		n := le.node(idx)
		if n.Pseudo != dom.PseudoMarker {
			for _, op := range styleOf[css.CounterOps](le, idx, css.PropCounterReset).Or(nil) {
				scopes.reset(op.Name, op.Value)
				opened[idx] = append(opened[idx], op.Name)
			}
			incs := styleOf[css.CounterOps](le, idx, css.PropCounterIncrement).Or(nil)
			if n.Display == css.DisplayListItem && !n.IsAnonymous() && !incs.Has(listItemCounter) {
				incs = append(append(css.CounterOps{}, incs...), css.CounterOp{Name: listItemCounter, Value: 1})
			}
			for _, op := range incs {
				if !scopes.increment(op.Name, op.Value) {
					// A counter used without a reset is instantiated on the
					// parent, so following siblings share it.
					owner := idx
					if n.Parent >= 0 {
						owner = n.Parent
					}
					scopes.reset(op.Name, op.Value)
					opened[owner] = append(opened[owner], op.Name)
				}
			}
		}
		names := make([]string, 0, len(scopes))
		for name, st := range scopes {
			if len(st) > 0 {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			values[CounterKey{Node: idx, Name: name}] = scopes.value(name)
		}

		switch {
		case n.Pseudo == dom.PseudoMarker && n.Parent >= 0:
			style := keywordOf(le, n.Parent, css.PropListStyleType, css.ListStyleDisc)
			s := markerText(style, scopes.value(listItemCounter))
			le.debug(DebugCounterEvaluation, idx, "marker %q (%s=%d)", s, listItemCounter, scopes.value(listItemCounter))
			setText(idx, s)
		case len(n.content) > 0:
			var b strings.Builder
			for _, part := range n.content {
				if part.Counter == "" {
					b.WriteString(part.Text)
					continue
				}
				b.WriteString(formatCounter(part.Style, scopes.value(part.Counter)))
			}
			setText(idx, b.String())
		}

		for _, c := range n.Children {
			walk(c)
		}
		for _, name := range opened[idx] {
			scopes.pop(name)
		}
		delete(opened, idx)
	}
	walk(le.tree.Root)
	return values, changed
}

// markerText is the text of a ::marker: "N." for numbering styles, a glyph
// for bullets.
func markerText(style css.ListStyleType, v int) string {
	switch style {
	case css.ListStyleNone:
		return ""
	case css.ListStyleDisc, css.ListStyleCircle, css.ListStyleSquare:
		return formatCounter(style, v)
	}
	return formatCounter(style, v) + "."
}

// formatCounter renders a counter value in a list-style-type.
func formatCounter(style css.ListStyleType, v int) string {
	switch style {
	case css.ListStyleNone:
		return ""
	case css.ListStyleDisc:
		return "•"
	case css.ListStyleCircle:
		return "◦"
	case css.ListStyleSquare:
		return "▪"
	case css.ListStyleDecimalLeadingZero:
		if v >= 0 && v < 10 {
			return "0" + strconv.Itoa(v)
		}
		return strconv.Itoa(v)
	case css.ListStyleLowerAlpha:
		return alphabetic(v, "abcdefghijklmnopqrstuvwxyz")
	case css.ListStyleUpperAlpha:
		return alphabetic(v, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	case css.ListStyleLowerGreek:
		return alphabetic(v, "αβγδεζηθικλμνξοπρστυφχψω")
	case css.ListStyleLowerRoman:
		return strings.ToLower(roman(v))
	case css.ListStyleUpperRoman:
		return roman(v)
	}
	return strconv.Itoa(v)
}

// alphabetic is the bijective base-n numbering a, b, ..., z, aa, ab, ...
// Values below one fall back to decimal.
func alphabetic(v int, alphabet string) string {
	if v < 1 {
		return strconv.Itoa(v)
	}
	letters := []rune(alphabet)
	n := len(letters)
	var out []rune
	for v > 0 {
		v--
		out = append([]rune{letters[v%n]}, out...)
		v /= n
	}
	return string(out)
}

var romanDigits = []struct {
	v int
	s string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// roman covers 1..3999 and falls back to decimal outside that range.
func roman(v int) string {
	if v < 1 || v > 3999 {
		return strconv.Itoa(v)
	}
	var b strings.Builder
	for _, d := range romanDigits {
		for v >= d.v {
			b.WriteString(d.s)
			v -= d.v
		}
	}
	return b.String()
}

func (k CounterKey) String() string { return fmt.Sprintf("#%d/%s", k.Node, k.Name) }
