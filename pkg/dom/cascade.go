package dom

import (
	"fmt"
	"sort"

	"github.com/andybalholm/cascadia"
	dcss "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"

	"quill/pkg/css"
)

type styleRule struct {
	sel         cascadia.Sel
	specificity cascadia.Specificity
	order       int
	pseudo      PseudoKind
	normal      *css.Style
	important   *css.Style
}

// Stylesheet is a parsed list of qualified rules ready for matching.
// At-rules are ignored.
type Stylesheet struct {
	rules []styleRule
}

var pseudoByName = map[string]PseudoKind{
	"":       PseudoNone,
	"marker": PseudoMarker,
	"before": PseudoBefore,
	"after":  PseudoAfter,
}

// ParseStylesheet parses CSS text. Selectors cascadia cannot compile and
// declarations css cannot interpret are skipped and traced.
func ParseStylesheet(text string) (*Stylesheet, error) {
	sheet, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("dom: parse stylesheet: %w", err)
	}
	out := &Stylesheet{}
	order := 0
	for _, r := range sheet.Rules {
		if r.Kind != dcss.QualifiedRule {
			tracer().Debugf("skipping at-rule %s", r.Name)
			continue
		}
		normal, important := css.NewStyle(), css.NewStyle()
		for _, decl := range r.Declarations {
			target := normal
			if decl.Important {
				target = important
			}
			if err := target.SetDeclaration(decl.Property, decl.Value); err != nil {
				tracer().Infof("stylesheet: %v", err)
			}
		}
		for _, selText := range r.Selectors {
			sel, err := cascadia.ParseWithPseudoElement(selText)
			if err != nil {
				tracer().Infof("stylesheet: selector %q: %v", selText, err)
				continue
			}
			pseudo, ok := pseudoByName[sel.PseudoElement()]
			if !ok {
				continue
			}
			out.rules = append(out.rules, styleRule{
				sel:         sel,
				specificity: sel.Specificity(),
				order:       order,
				pseudo:      pseudo,
				normal:      normal,
				important:   important,
			})
			order++
		}
	}
	return out, nil
}

// computeStyles cascades user-agent defaults, matching rules in specificity
// order, the inline style attribute, and finally !important declarations.
func computeStyles(n *html.Node, sheets []*Stylesheet) (*css.Style, map[PseudoKind]*css.Style) {
	var matched []styleRule
	for _, sheet := range sheets {
		for _, r := range sheet.rules {
			if r.sel.Match(n) {
				matched = append(matched, r)
			}
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].specificity != matched[j].specificity {
			return matched[i].specificity.Less(matched[j].specificity)
		}
		return matched[i].order < matched[j].order
	})

	style := UserAgentStyle(n.Data)
	var pseudo map[PseudoKind]*css.Style
	target := func(p PseudoKind) *css.Style {
		if p == PseudoNone {
			return style
		}
		if pseudo == nil {
			pseudo = make(map[PseudoKind]*css.Style)
		}
		if pseudo[p] == nil {
			pseudo[p] = css.NewStyle()
		}
		return pseudo[p]
	}
	for _, r := range matched {
		target(r.pseudo).Merge(r.normal)
	}
	for _, a := range n.Attr {
		if a.Key == "style" {
			if err := style.AddDeclarations(a.Val); err != nil {
				tracer().Infof("<%s style>: %v", n.Data, err)
			}
		}
	}
	for _, r := range matched {
		target(r.pseudo).Merge(r.important)
	}
	return style, pseudo
}
