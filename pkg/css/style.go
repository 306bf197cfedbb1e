package css

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/parser"
)

// Style maps property kinds to values. Missing kinds are Initial.
type Style struct {
	Properties map[PropertyKind]Value
}

func NewStyle() *Style {
	return &Style{Properties: make(map[PropertyKind]Value)}
}

// Get returns the value for kind, Initial if unset.
func (s *Style) Get(kind PropertyKind) Value {
	if s == nil {
		return InitialValue
	}
	return s.Properties[kind]
}

// Has reports whether kind was set explicitly.
func (s *Style) Has(kind PropertyKind) bool {
	if s == nil {
		return false
	}
	_, ok := s.Properties[kind]
	return ok
}

func (s *Style) Set(kind PropertyKind, v Value) {
	s.Properties[kind] = v
}

// SetExact stores a concrete payload.
func (s *Style) SetExact(kind PropertyKind, v any) {
	s.Properties[kind] = ExactValue(v)
}

// Delete removes an explicit value.
func (s *Style) Delete(kind PropertyKind) {
	delete(s.Properties, kind)
}

// Clone returns a shallow copy; payloads are treated as immutable.
func (s *Style) Clone() *Style {
	c := NewStyle()
	if s == nil {
		return c
	}
	for k, v := range s.Properties {
		c.Properties[k] = v
	}
	return c
}

// Merge copies every property of o into s, overwriting.
func (s *Style) Merge(o *Style) {
	if o == nil {
		return
	}
	for k, v := range o.Properties {
		s.Properties[k] = v
	}
}

// Hash fingerprints the style. Properties are visited in kind order so the
// result does not depend on map iteration.
func (s *Style) Hash() uint64 {
	h := fnv.New64a()
	if s == nil {
		return h.Sum64()
	}
	var buf [2]byte
	for k := PropertyKind(0); k < propertyCount; k++ {
		v, ok := s.Properties[k]
		if !ok {
			continue
		}
		buf[0], buf[1] = byte(k), byte(k>>8)
		h.Write(buf[:])
		h.Write([]byte{byte(v.Kind)})
		if v.Kind == Exact {
			fmt.Fprintf(h, "%T:%v;", v.data, v.data)
		}
	}
	return h.Sum64()
}

func (s *Style) String() string {
	var b strings.Builder
	for k := PropertyKind(0); k < propertyCount; k++ {
		if v, ok := s.Properties[k]; ok {
			fmt.Fprintf(&b, "%s: %s; ", k, v)
		}
	}
	return strings.TrimSpace(b.String())
}

// ParseDeclarations parses a declaration block such as the contents of a
// style attribute ("width: 100px; margin: 0 auto"). Shorthands are expanded.
// Declarations with unknown properties or invalid values are skipped and
// reported in the returned error, which wraps every problem found; the
// Style always holds the valid declarations.
func ParseDeclarations(text string) (*Style, error) {
	style := NewStyle()
	err := style.AddDeclarations(text)
	return style, err
}

// AddDeclarations parses text and applies it on top of s.
func (s *Style) AddDeclarations(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !strings.HasSuffix(text, ";") && !strings.HasSuffix(text, "}") {
		text += ";"
	}
	decls, err := parser.ParseDeclarations(text)
	if err != nil {
		return fmt.Errorf("css: parse declarations: %w", err)
	}
	var problems []string
	for _, d := range decls {
		if err := s.SetDeclaration(d.Property, d.Value); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("css: %d invalid declaration(s): %s", len(problems), strings.Join(problems, "; "))
	}
	return nil
}

// MustParse is ParseDeclarations for literals known to be valid.
func MustParse(text string) *Style {
	s, err := ParseDeclarations(text)
	if err != nil {
		panic(err)
	}
	return s
}

// SetDeclaration applies one property: value pair, expanding shorthands.
func (s *Style) SetDeclaration(property, value string) error {
	property = strings.ToLower(strings.TrimSpace(property))
	value = strings.TrimSpace(value)
	switch property {
	case "margin", "padding":
		return s.expandBox(property+"-%s", value)
	case "border-width":
		return s.expandBox("border-%s-width", value)
	case "border":
		return s.expandBorder("", value)
	case "border-top", "border-right", "border-bottom", "border-left":
		return s.expandBorder(strings.TrimPrefix(property, "border-"), value)
	case "overflow":
		parts := strings.Fields(value)
		if len(parts) == 0 || len(parts) > 2 {
			return fmt.Errorf("css: invalid overflow %q", value)
		}
		y := parts[len(parts)-1]
		return s.setAll(map[string]string{"overflow-x": parts[0], "overflow-y": y})
	case "flex":
		return s.expandFlex(value)
	case "flex-flow":
		for _, p := range strings.Fields(value) {
			if _, ok := flexDirectionKeywords[p]; ok {
				if err := s.setLonghand("flex-direction", p); err != nil {
					return err
				}
			} else if err := s.setLonghand("flex-wrap", p); err != nil {
				return err
			}
		}
		return nil
	case "gap", "grid-gap":
		parts := strings.Fields(value)
		if len(parts) == 0 || len(parts) > 2 {
			return fmt.Errorf("css: invalid gap %q", value)
		}
		return s.setAll(map[string]string{"row-gap": parts[0], "column-gap": parts[len(parts)-1]})
	case "grid-row", "grid-column":
		start, end, hasEnd := strings.Cut(value, "/")
		m := map[string]string{property + "-start": strings.TrimSpace(start)}
		if hasEnd {
			m[property+"-end"] = strings.TrimSpace(end)
		}
		return s.setAll(m)
	case "list-style":
		for _, p := range strings.Fields(strings.ToLower(value)) {
			if _, ok := listStylePositionKeywords[p]; ok {
				if err := s.setLonghand("list-style-position", p); err != nil {
					return err
				}
			} else if err := s.setLonghand("list-style-type", p); err != nil {
				return err
			}
		}
		return nil
	case "background":
		if _, ok := ParseColor(value); ok {
			return s.setLonghand("background-color", value)
		}
		return nil
	case "page-break-before", "page-break-after", "page-break-inside":
		return s.setLonghand(strings.TrimPrefix(property, "page-"), value)
	}
	return s.setLonghand(property, value)
}

func (s *Style) setLonghand(property, value string) error {
	kind, ok := PropertyByName(property)
	if !ok {
		return fmt.Errorf("css: unknown property %q", property)
	}
	v, err := ParseValue(kind, value)
	if err != nil {
		return err
	}
	s.Properties[kind] = v
	return nil
}

func (s *Style) setAll(m map[string]string) error {
	for _, p := range sortedKeys(m) {
		if err := s.setLonghand(p, m[p]); err != nil {
			return err
		}
	}
	return nil
}

// expandBox handles 1-4 value box shorthands: all, v h, t h b, t r b l.
func (s *Style) expandBox(pattern, value string) error {
	parts := strings.Fields(value)
	var t, r, b, l string
	switch len(parts) {
	case 1:
		t, r, b, l = parts[0], parts[0], parts[0], parts[0]
	case 2:
		t, r, b, l = parts[0], parts[1], parts[0], parts[1]
	case 3:
		t, r, b, l = parts[0], parts[1], parts[2], parts[1]
	case 4:
		t, r, b, l = parts[0], parts[1], parts[2], parts[3]
	default:
		return fmt.Errorf("css: invalid box shorthand %q", value)
	}
	return s.setAll(map[string]string{
		fmt.Sprintf(pattern, "top"):    t,
		fmt.Sprintf(pattern, "right"):  r,
		fmt.Sprintf(pattern, "bottom"): b,
		fmt.Sprintf(pattern, "left"):   l,
	})
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "solid": true, "dotted": true, "dashed": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// expandBorder handles "border: 1px solid black" and the per-side forms.
// Style keywords are accepted and ignored; `none` zeroes the width.
func (s *Style) expandBorder(side, value string) error {
	sides := []string{"top", "right", "bottom", "left"}
	if side != "" {
		sides = []string{side}
	}
	for _, part := range strings.Fields(strings.ToLower(value)) {
		switch {
		case part == "none" || part == "hidden":
			for _, sd := range sides {
				s.SetExact(mustKind("border-"+sd+"-width"), Px(0))
			}
		case borderStyles[part]:
		case isBorderWidth(part):
			for _, sd := range sides {
				if err := s.setLonghand("border-"+sd+"-width", part); err != nil {
					return err
				}
			}
		default:
			if err := s.setLonghand("border-color", part); err != nil {
				return err
			}
		}
	}
	return nil
}

func isBorderWidth(p string) bool {
	if p == "thin" || p == "medium" || p == "thick" {
		return true
	}
	_, err := ParseLength(p)
	return err == nil
}

// expandFlex implements the flex shorthand, including the none/auto and
// single-number forms (`flex: 1` is 1 1 0%).
func (s *Style) expandFlex(value string) error {
	parts := strings.Fields(strings.ToLower(value))
	grow, shrink, basis := "0", "1", "auto"
	switch {
	case len(parts) == 1 && parts[0] == "none":
		grow, shrink, basis = "0", "0", "auto"
	case len(parts) == 1 && parts[0] == "auto":
		grow, shrink, basis = "1", "1", "auto"
	case len(parts) >= 1 && len(parts) <= 3:
		var nums []string
		basis = ""
		for _, p := range parts {
			if _, err := strconv.ParseFloat(p, 64); err == nil && len(nums) < 2 {
				nums = append(nums, p)
			} else {
				basis = p
			}
		}
		if len(nums) > 0 {
			grow = nums[0]
		}
		if len(nums) > 1 {
			shrink = nums[1]
		}
		if basis == "" {
			basis = "0%"
		}
	default:
		return fmt.Errorf("css: invalid flex %q", value)
	}
	return s.setAll(map[string]string{"flex-grow": grow, "flex-shrink": shrink, "flex-basis": basis})
}

func mustKind(name string) PropertyKind {
	k, ok := PropertyByName(name)
	if !ok {
		panic("css: unknown property " + name)
	}
	return k
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
