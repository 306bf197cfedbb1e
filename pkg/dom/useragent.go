package dom

import "quill/pkg/css"

var blockTags = map[string]bool{
	"html": true, "body": true, "div": true, "p": true, "section": true, "article": true,
	"header": true, "footer": true, "main": true, "nav": true, "aside": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "blockquote": true, "pre": true, "figure": true,
	"form": true, "dl": true, "dt": true, "dd": true, "hr": true, "address": true,
}

var hiddenTags = map[string]bool{
	"head": true, "script": true, "style": true, "title": true, "meta": true,
	"link": true, "template": true, "noscript": true,
}

var tableTags = map[string]css.Display{
	"table":    css.DisplayTable,
	"thead":    css.DisplayTableHeaderGroup,
	"tbody":    css.DisplayTableRowGroup,
	"tfoot":    css.DisplayTableFooterGroup,
	"tr":       css.DisplayTableRow,
	"td":       css.DisplayTableCell,
	"th":       css.DisplayTableCell,
	"col":      css.DisplayTableColumn,
	"colgroup": css.DisplayTableColumnGroup,
	"caption":  css.DisplayTableCaption,
}

// UserAgentStyle returns the default declarations for an element tag. Only
// properties that change box generation are set; margins and fonts stay at
// their initial values.
func UserAgentStyle(tag string) *css.Style {
	s := css.NewStyle()
	switch {
	case hiddenTags[tag]:
		s.SetExact(css.PropDisplay, css.DisplayNone)
	case tag == "li":
		s.SetExact(css.PropDisplay, css.DisplayListItem)
	case blockTags[tag]:
		s.SetExact(css.PropDisplay, css.DisplayBlock)
	case tag == "img":
		s.SetExact(css.PropDisplay, css.DisplayInline)
	default:
		if d, ok := tableTags[tag]; ok {
			s.SetExact(css.PropDisplay, d)
		}
	}
	switch tag {
	case "ol":
		s.SetExact(css.PropCounterReset, css.CounterOps{{Name: "list-item", Value: 0}})
		s.SetExact(css.PropListStyleType, css.ListStyleDecimal)
	case "ul":
		s.SetExact(css.PropCounterReset, css.CounterOps{{Name: "list-item", Value: 0}})
		s.SetExact(css.PropListStyleType, css.ListStyleDisc)
	case "pre":
		s.SetExact(css.PropWhiteSpace, css.WhiteSpacePre)
	case "th":
		s.SetExact(css.PropTextAlign, css.TextAlignCenter)
		s.SetExact(css.PropFontWeight, 700)
	case "b", "strong":
		s.SetExact(css.PropFontWeight, 700)
	case "i", "em":
		s.SetExact(css.PropFontStyle, css.FontStyleItalic)
	}
	return s
}
