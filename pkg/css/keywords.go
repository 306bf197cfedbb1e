package css

import "quill/pkg/geom"

// Display is the outer/inner display type of a box.
type Display uint8

const (
	DisplayInline Display = iota // initial value
	DisplayBlock
	DisplayInlineBlock
	DisplayListItem
	DisplayFlex
	DisplayInlineFlex
	DisplayGrid
	DisplayInlineGrid
	DisplayTable
	DisplayInlineTable
	DisplayTableRowGroup
	DisplayTableHeaderGroup
	DisplayTableFooterGroup
	DisplayTableRow
	DisplayTableCell
	DisplayTableColumn
	DisplayTableColumnGroup
	DisplayTableCaption
	DisplayNone
	DisplayContents
)

var displayKeywords = map[string]Display{
	"inline":             DisplayInline,
	"block":              DisplayBlock,
	"inline-block":       DisplayInlineBlock,
	"list-item":          DisplayListItem,
	"flex":               DisplayFlex,
	"inline-flex":        DisplayInlineFlex,
	"grid":               DisplayGrid,
	"inline-grid":        DisplayInlineGrid,
	"table":              DisplayTable,
	"inline-table":       DisplayInlineTable,
	"table-row-group":    DisplayTableRowGroup,
	"table-header-group": DisplayTableHeaderGroup,
	"table-footer-group": DisplayTableFooterGroup,
	"table-row":          DisplayTableRow,
	"table-cell":         DisplayTableCell,
	"table-column":       DisplayTableColumn,
	"table-column-group": DisplayTableColumnGroup,
	"table-caption":      DisplayTableCaption,
	"none":               DisplayNone,
	"contents":           DisplayContents,
}

func (d Display) String() string { return keywordName(displayKeywords, d) }

// IsInlineLevel reports whether the box participates in an inline formatting
// context of its parent.
func (d Display) IsInlineLevel() bool {
	switch d {
	case DisplayInline, DisplayInlineBlock, DisplayInlineFlex, DisplayInlineGrid, DisplayInlineTable:
		return true
	}
	return false
}

// IsTablePart reports the internal table display types.
func (d Display) IsTablePart() bool {
	switch d {
	case DisplayTableRowGroup, DisplayTableHeaderGroup, DisplayTableFooterGroup,
		DisplayTableRow, DisplayTableCell, DisplayTableColumn, DisplayTableColumnGroup,
		DisplayTableCaption:
		return true
	}
	return false
}

// IsRowGroup covers header, body and footer groups.
func (d Display) IsRowGroup() bool {
	return d == DisplayTableRowGroup || d == DisplayTableHeaderGroup || d == DisplayTableFooterGroup
}

// Position is the positioning scheme.
type Position uint8

const (
	PositionStatic Position = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
	PositionSticky
)

var positionKeywords = map[string]Position{
	"static":   PositionStatic,
	"relative": PositionRelative,
	"absolute": PositionAbsolute,
	"fixed":    PositionFixed,
	"sticky":   PositionSticky,
}

func (p Position) String() string { return keywordName(positionKeywords, p) }

// IsOutOfFlow is true for absolute and fixed boxes.
func (p Position) IsOutOfFlow() bool {
	return p == PositionAbsolute || p == PositionFixed
}

// Float side.
type Float uint8

const (
	FloatNone Float = iota
	FloatLeft
	FloatRight
)

var floatKeywords = map[string]Float{"none": FloatNone, "left": FloatLeft, "right": FloatRight}

func (f Float) String() string { return keywordName(floatKeywords, f) }

// Clear side.
type Clear uint8

const (
	ClearNone Clear = iota
	ClearLeft
	ClearRight
	ClearBoth
)

var clearKeywords = map[string]Clear{"none": ClearNone, "left": ClearLeft, "right": ClearRight, "both": ClearBoth}

func (c Clear) String() string { return keywordName(clearKeywords, c) }

// BoxSizing selects which box width/height apply to.
type BoxSizing uint8

const (
	ContentBox BoxSizing = iota
	BorderBox
)

var boxSizingKeywords = map[string]BoxSizing{"content-box": ContentBox, "border-box": BorderBox}

func (b BoxSizing) String() string { return keywordName(boxSizingKeywords, b) }

var writingModeKeywords = map[string]geom.WritingMode{
	"horizontal-tb": geom.HorizontalTb,
	"vertical-rl":   geom.VerticalRl,
	"vertical-lr":   geom.VerticalLr,
}

// Overflow is the per-axis overflow behaviour.
type Overflow uint8

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowClip
	OverflowScroll
	OverflowAuto
)

var overflowKeywords = map[string]Overflow{
	"visible": OverflowVisible,
	"hidden":  OverflowHidden,
	"clip":    OverflowClip,
	"scroll":  OverflowScroll,
	"auto":    OverflowAuto,
}

func (o Overflow) String() string { return keywordName(overflowKeywords, o) }

// IsScrollable is true when the axis can show a scrollbar.
func (o Overflow) IsScrollable() bool {
	return o == OverflowScroll || o == OverflowAuto
}

// TextAlign is the inline-axis alignment of line content.
type TextAlign uint8

const (
	TextAlignStart TextAlign = iota
	TextAlignEnd
	TextAlignLeft
	TextAlignRight
	TextAlignCenter
	TextAlignJustify
)

var textAlignKeywords = map[string]TextAlign{
	"start":   TextAlignStart,
	"end":     TextAlignEnd,
	"left":    TextAlignLeft,
	"right":   TextAlignRight,
	"center":  TextAlignCenter,
	"justify": TextAlignJustify,
}

func (a TextAlign) String() string { return keywordName(textAlignKeywords, a) }

// WhiteSpace controls collapsing and wrapping.
type WhiteSpace uint8

const (
	WhiteSpaceNormal WhiteSpace = iota
	WhiteSpaceNowrap
	WhiteSpacePre
	WhiteSpacePreWrap
)

var whiteSpaceKeywords = map[string]WhiteSpace{
	"normal":   WhiteSpaceNormal,
	"nowrap":   WhiteSpaceNowrap,
	"pre":      WhiteSpacePre,
	"pre-wrap": WhiteSpacePreWrap,
}

func (w WhiteSpace) String() string { return keywordName(whiteSpaceKeywords, w) }

// Wraps reports whether lines may break at soft opportunities.
func (w WhiteSpace) Wraps() bool { return w == WhiteSpaceNormal || w == WhiteSpacePreWrap }

// Preserves reports whether spaces and newlines are kept.
func (w WhiteSpace) Preserves() bool { return w == WhiteSpacePre || w == WhiteSpacePreWrap }

// FontStyle is normal or italic.
type FontStyle uint8

const (
	FontStyleNormal FontStyle = iota
	FontStyleItalic
)

var fontStyleKeywords = map[string]FontStyle{"normal": FontStyleNormal, "italic": FontStyleItalic, "oblique": FontStyleItalic}

func (f FontStyle) String() string { return keywordName(fontStyleKeywords, f) }

// VerticalAlign is used for table cells and inline atoms.
type VerticalAlign uint8

const (
	VerticalAlignBaseline VerticalAlign = iota
	VerticalAlignTop
	VerticalAlignMiddle
	VerticalAlignBottom
)

var verticalAlignKeywords = map[string]VerticalAlign{
	"baseline": VerticalAlignBaseline,
	"top":      VerticalAlignTop,
	"middle":   VerticalAlignMiddle,
	"bottom":   VerticalAlignBottom,
}

func (v VerticalAlign) String() string { return keywordName(verticalAlignKeywords, v) }

// FlexDirection sets the main axis of a flex container.
type FlexDirection uint8

const (
	FlexRow FlexDirection = iota
	FlexRowReverse
	FlexColumn
	FlexColumnReverse
)

var flexDirectionKeywords = map[string]FlexDirection{
	"row":            FlexRow,
	"row-reverse":    FlexRowReverse,
	"column":         FlexColumn,
	"column-reverse": FlexColumnReverse,
}

func (d FlexDirection) String() string { return keywordName(flexDirectionKeywords, d) }

// IsColumn reports a block-axis main axis.
func (d FlexDirection) IsColumn() bool { return d == FlexColumn || d == FlexColumnReverse }

// IsReverse reports a reversed main axis.
func (d FlexDirection) IsReverse() bool { return d == FlexRowReverse || d == FlexColumnReverse }

// FlexWrap controls single- vs multi-line flex containers.
type FlexWrap uint8

const (
	FlexNowrap FlexWrap = iota
	FlexWrapOn
	FlexWrapReverse
)

var flexWrapKeywords = map[string]FlexWrap{"nowrap": FlexNowrap, "wrap": FlexWrapOn, "wrap-reverse": FlexWrapReverse}

func (w FlexWrap) String() string { return keywordName(flexWrapKeywords, w) }

// Distribute is used by justify-content and align-content.
type Distribute uint8

const (
	DistributeNormal Distribute = iota
	DistributeFlexStart
	DistributeFlexEnd
	DistributeStart
	DistributeEnd
	DistributeCenter
	DistributeSpaceBetween
	DistributeSpaceAround
	DistributeSpaceEvenly
	DistributeStretch
)

var distributeKeywords = map[string]Distribute{
	"normal":        DistributeNormal,
	"flex-start":    DistributeFlexStart,
	"flex-end":      DistributeFlexEnd,
	"start":         DistributeStart,
	"end":           DistributeEnd,
	"center":        DistributeCenter,
	"space-between": DistributeSpaceBetween,
	"space-around":  DistributeSpaceAround,
	"space-evenly":  DistributeSpaceEvenly,
	"stretch":       DistributeStretch,
}

func (d Distribute) String() string { return keywordName(distributeKeywords, d) }

// Align is used by align-items, align-self, justify-items and justify-self.
type Align uint8

const (
	AlignAuto Align = iota
	AlignNormal
	AlignStretch
	AlignFlexStart
	AlignFlexEnd
	AlignStart
	AlignEnd
	AlignCenter
	AlignBaseline
)

var alignKeywords = map[string]Align{
	"auto":       AlignAuto,
	"normal":     AlignNormal,
	"stretch":    AlignStretch,
	"flex-start": AlignFlexStart,
	"flex-end":   AlignFlexEnd,
	"start":      AlignStart,
	"end":        AlignEnd,
	"center":     AlignCenter,
	"baseline":   AlignBaseline,
	"self-start": AlignStart,
	"self-end":   AlignEnd,
}

func (a Align) String() string { return keywordName(alignKeywords, a) }

// GridAutoFlow is the auto-placement direction.
type GridAutoFlow uint8

const (
	GridFlowRow GridAutoFlow = iota
	GridFlowColumn
)

var gridAutoFlowKeywords = map[string]GridAutoFlow{"row": GridFlowRow, "column": GridFlowColumn}

func (g GridAutoFlow) String() string { return keywordName(gridAutoFlowKeywords, g) }

// TableLayout selects the column width algorithm.
type TableLayout uint8

const (
	TableLayoutAuto TableLayout = iota
	TableLayoutFixed
)

var tableLayoutKeywords = map[string]TableLayout{"auto": TableLayoutAuto, "fixed": TableLayoutFixed}

func (t TableLayout) String() string { return keywordName(tableLayoutKeywords, t) }

// ListStyleType is the marker formatting scheme.
type ListStyleType uint8

const (
	ListStyleDisc ListStyleType = iota
	ListStyleCircle
	ListStyleSquare
	ListStyleDecimal
	ListStyleDecimalLeadingZero
	ListStyleLowerAlpha
	ListStyleUpperAlpha
	ListStyleLowerRoman
	ListStyleUpperRoman
	ListStyleLowerGreek
	ListStyleNone
)

var listStyleTypeKeywords = map[string]ListStyleType{
	"disc":                 ListStyleDisc,
	"circle":               ListStyleCircle,
	"square":               ListStyleSquare,
	"decimal":              ListStyleDecimal,
	"decimal-leading-zero": ListStyleDecimalLeadingZero,
	"lower-alpha":          ListStyleLowerAlpha,
	"lower-latin":          ListStyleLowerAlpha,
	"upper-alpha":          ListStyleUpperAlpha,
	"upper-latin":          ListStyleUpperAlpha,
	"lower-roman":          ListStyleLowerRoman,
	"upper-roman":          ListStyleUpperRoman,
	"lower-greek":          ListStyleLowerGreek,
	"none":                 ListStyleNone,
}

func (l ListStyleType) String() string { return keywordName(listStyleTypeKeywords, l) }

// ListStylePosition places the marker inside or outside the principal box.
type ListStylePosition uint8

const (
	ListStyleOutside ListStylePosition = iota
	ListStyleInside
)

var listStylePositionKeywords = map[string]ListStylePosition{"outside": ListStyleOutside, "inside": ListStyleInside}

func (l ListStylePosition) String() string { return keywordName(listStylePositionKeywords, l) }

// Break is the value of break-before / break-after.
type Break uint8

const (
	BreakAuto Break = iota
	BreakPage
	BreakAvoid
)

var breakKeywords = map[string]Break{"auto": BreakAuto, "page": BreakPage, "avoid": BreakAvoid}

func (b Break) String() string { return keywordName(breakKeywords, b) }

// keywordName reverse-looks-up the canonical keyword. Aliases resolve to the
// lexically smallest name so the result is stable.
func keywordName[T comparable](table map[string]T, v T) string {
	name := ""
	for k, t := range table {
		if t == v && (name == "" || k < name) {
			name = k
		}
	}
	if name == "" {
		return "<invalid>"
	}
	return name
}
