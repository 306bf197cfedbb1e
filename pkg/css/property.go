package css

// PropertyKind identifies a CSS property the layout core consults.
type PropertyKind uint16

const (
	PropDisplay PropertyKind = iota
	PropPosition
	PropFloat
	PropClear
	PropBoxSizing
	PropWritingMode

	PropWidth
	PropMinWidth
	PropMaxWidth
	PropHeight
	PropMinHeight
	PropMaxHeight

	PropMarginTop
	PropMarginRight
	PropMarginBottom
	PropMarginLeft
	PropPaddingTop
	PropPaddingRight
	PropPaddingBottom
	PropPaddingLeft
	PropBorderTopWidth
	PropBorderRightWidth
	PropBorderBottomWidth
	PropBorderLeftWidth

	PropTop
	PropRight
	PropBottom
	PropLeft

	PropOverflowX
	PropOverflowY

	PropTextAlign
	PropWhiteSpace
	PropFontSize
	PropLineHeight
	PropFontFamily
	PropFontWeight
	PropFontStyle
	PropVerticalAlign

	PropFlexDirection
	PropFlexWrap
	PropFlexGrow
	PropFlexShrink
	PropFlexBasis
	PropOrder
	PropJustifyContent
	PropAlignItems
	PropAlignSelf
	PropAlignContent
	PropRowGap
	PropColumnGap

	PropGridTemplateColumns
	PropGridTemplateRows
	PropGridAutoColumns
	PropGridAutoRows
	PropGridAutoFlow
	PropGridColumnStart
	PropGridColumnEnd
	PropGridRowStart
	PropGridRowEnd
	PropJustifyItems
	PropJustifySelf

	PropTableLayout
	PropBorderSpacing

	PropCounterReset
	PropCounterIncrement
	PropListStyleType
	PropListStylePosition
	PropContent

	PropBreakBefore
	PropBreakAfter
	PropBreakInside

	PropZIndex
	PropColor
	PropBackgroundColor
	PropBorderColor

	propertyCount
)

// PropertyCount is the number of known property kinds.
const PropertyCount = int(propertyCount)

var propertyNames = [...]string{
	PropDisplay:             "display",
	PropPosition:            "position",
	PropFloat:               "float",
	PropClear:               "clear",
	PropBoxSizing:           "box-sizing",
	PropWritingMode:         "writing-mode",
	PropWidth:               "width",
	PropMinWidth:            "min-width",
	PropMaxWidth:            "max-width",
	PropHeight:              "height",
	PropMinHeight:           "min-height",
	PropMaxHeight:           "max-height",
	PropMarginTop:           "margin-top",
	PropMarginRight:         "margin-right",
	PropMarginBottom:        "margin-bottom",
	PropMarginLeft:          "margin-left",
	PropPaddingTop:          "padding-top",
	PropPaddingRight:        "padding-right",
	PropPaddingBottom:       "padding-bottom",
	PropPaddingLeft:         "padding-left",
	PropBorderTopWidth:      "border-top-width",
	PropBorderRightWidth:    "border-right-width",
	PropBorderBottomWidth:   "border-bottom-width",
	PropBorderLeftWidth:     "border-left-width",
	PropTop:                 "top",
	PropRight:               "right",
	PropBottom:              "bottom",
	PropLeft:                "left",
	PropOverflowX:           "overflow-x",
	PropOverflowY:           "overflow-y",
	PropTextAlign:           "text-align",
	PropWhiteSpace:          "white-space",
	PropFontSize:            "font-size",
	PropLineHeight:          "line-height",
	PropFontFamily:          "font-family",
	PropFontWeight:          "font-weight",
	PropFontStyle:           "font-style",
	PropVerticalAlign:       "vertical-align",
	PropFlexDirection:       "flex-direction",
	PropFlexWrap:            "flex-wrap",
	PropFlexGrow:            "flex-grow",
	PropFlexShrink:          "flex-shrink",
	PropFlexBasis:           "flex-basis",
	PropOrder:               "order",
	PropJustifyContent:      "justify-content",
	PropAlignItems:          "align-items",
	PropAlignSelf:           "align-self",
	PropAlignContent:        "align-content",
	PropRowGap:              "row-gap",
	PropColumnGap:           "column-gap",
	PropGridTemplateColumns: "grid-template-columns",
	PropGridTemplateRows:    "grid-template-rows",
	PropGridAutoColumns:     "grid-auto-columns",
	PropGridAutoRows:        "grid-auto-rows",
	PropGridAutoFlow:        "grid-auto-flow",
	PropGridColumnStart:     "grid-column-start",
	PropGridColumnEnd:       "grid-column-end",
	PropGridRowStart:        "grid-row-start",
	PropGridRowEnd:          "grid-row-end",
	PropJustifyItems:        "justify-items",
	PropJustifySelf:         "justify-self",
	PropTableLayout:         "table-layout",
	PropBorderSpacing:       "border-spacing",
	PropCounterReset:        "counter-reset",
	PropCounterIncrement:    "counter-increment",
	PropListStyleType:       "list-style-type",
	PropListStylePosition:   "list-style-position",
	PropContent:             "content",
	PropBreakBefore:         "break-before",
	PropBreakAfter:          "break-after",
	PropBreakInside:         "break-inside",
	PropZIndex:              "z-index",
	PropColor:               "color",
	PropBackgroundColor:     "background-color",
	PropBorderColor:         "border-color",
}

var propertiesByName map[string]PropertyKind

func init() {
	propertiesByName = make(map[string]PropertyKind, len(propertyNames))
	for k, name := range propertyNames {
		propertiesByName[name] = PropertyKind(k)
	}
}

func (k PropertyKind) String() string {
	if int(k) < len(propertyNames) {
		return propertyNames[k]
	}
	return "<unknown property>"
}

// PropertyByName looks up a longhand property by its CSS name.
func PropertyByName(name string) (PropertyKind, bool) {
	k, ok := propertiesByName[name]
	return k, ok
}

// Inherited reports whether a property inherits by default.
func (k PropertyKind) Inherited() bool {
	switch k {
	case PropWritingMode, PropTextAlign, PropWhiteSpace, PropFontSize, PropLineHeight,
		PropFontFamily, PropFontWeight, PropFontStyle, PropListStyleType,
		PropListStylePosition, PropColor, PropBorderSpacing:
		return true
	}
	return false
}
