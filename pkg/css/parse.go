package css

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseValue parses the textual value of a longhand property.
func ParseValue(kind PropertyKind, raw string) (Value, error) {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	switch lower {
	case "inherit":
		return InheritValue, nil
	case "initial", "unset":
		return InitialValue, nil
	}
	switch kind {
	case PropDisplay:
		return keyword(displayKeywords, kind, lower)
	case PropPosition:
		return keyword(positionKeywords, kind, lower)
	case PropFloat:
		return keyword(floatKeywords, kind, lower)
	case PropClear:
		return keyword(clearKeywords, kind, lower)
	case PropBoxSizing:
		return keyword(boxSizingKeywords, kind, lower)
	case PropWritingMode:
		return keyword(writingModeKeywords, kind, lower)
	case PropOverflowX, PropOverflowY:
		return keyword(overflowKeywords, kind, lower)
	case PropTextAlign:
		return keyword(textAlignKeywords, kind, lower)
	case PropWhiteSpace:
		return keyword(whiteSpaceKeywords, kind, lower)
	case PropFontStyle:
		return keyword(fontStyleKeywords, kind, lower)
	case PropVerticalAlign:
		return keyword(verticalAlignKeywords, kind, lower)
	case PropFlexDirection:
		return keyword(flexDirectionKeywords, kind, lower)
	case PropFlexWrap:
		return keyword(flexWrapKeywords, kind, lower)
	case PropJustifyContent, PropAlignContent:
		return keyword(distributeKeywords, kind, lower)
	case PropAlignItems, PropAlignSelf, PropJustifyItems, PropJustifySelf:
		return keyword(alignKeywords, kind, lower)
	case PropGridAutoFlow:
		return keyword(gridAutoFlowKeywords, kind, lower)
	case PropTableLayout:
		return keyword(tableLayoutKeywords, kind, lower)
	case PropListStyleType:
		return keyword(listStyleTypeKeywords, kind, lower)
	case PropListStylePosition:
		return keyword(listStylePositionKeywords, kind, lower)
	case PropBreakBefore, PropBreakAfter, PropBreakInside:
		return keyword(breakKeywords, kind, lower)

	case PropWidth, PropHeight, PropMinWidth, PropMinHeight,
		PropMarginTop, PropMarginRight, PropMarginBottom, PropMarginLeft,
		PropTop, PropRight, PropBottom, PropLeft, PropFlexBasis:
		if lower == "auto" || (kind == PropFlexBasis && lower == "content") {
			return AutoValue, nil
		}
		return length(kind, lower)
	case PropMaxWidth, PropMaxHeight:
		if lower == "none" {
			return InitialValue, nil
		}
		return length(kind, lower)
	case PropPaddingTop, PropPaddingRight, PropPaddingBottom, PropPaddingLeft, PropBorderSpacing:
		return length(kind, lower)
	case PropBorderTopWidth, PropBorderRightWidth, PropBorderBottomWidth, PropBorderLeftWidth:
		switch lower {
		case "thin":
			return ExactValue(Px(1)), nil
		case "medium":
			return ExactValue(Px(3)), nil
		case "thick":
			return ExactValue(Px(5)), nil
		}
		return length(kind, lower)
	case PropRowGap, PropColumnGap:
		if lower == "normal" {
			return InitialValue, nil
		}
		return length(kind, lower)
	case PropFontSize:
		return length(kind, lower)
	case PropLineHeight:
		if lower == "normal" {
			return InitialValue, nil
		}
		if v, err := strconv.ParseFloat(lower, 64); err == nil {
			return ExactValue(Length{Value: v, Unit: UnitNumber}), nil
		}
		return length(kind, lower)

	case PropFlexGrow, PropFlexShrink:
		v, err := strconv.ParseFloat(lower, 64)
		if err != nil || v < 0 {
			return Value{}, invalid(kind, s)
		}
		return ExactValue(v), nil
	case PropOrder:
		return integer(kind, lower)
	case PropZIndex:
		if lower == "auto" {
			return AutoValue, nil
		}
		return integer(kind, lower)
	case PropFontWeight:
		switch lower {
		case "normal":
			return ExactValue(400), nil
		case "bold":
			return ExactValue(700), nil
		}
		return integer(kind, lower)
	case PropFontFamily:
		return ExactValue(strings.Trim(s, `"'`)), nil

	case PropGridTemplateColumns, PropGridTemplateRows:
		if lower == "none" {
			return InitialValue, nil
		}
		l, err := ParseTrackList(lower)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", kind, err)
		}
		return ExactValue(l), nil
	case PropGridAutoColumns, PropGridAutoRows:
		t, err := ParseTrackSize(lower)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", kind, err)
		}
		return ExactValue(t), nil
	case PropGridColumnStart, PropGridColumnEnd, PropGridRowStart, PropGridRowEnd:
		if lower == "auto" {
			return AutoValue, nil
		}
		g, err := ParseGridLine(lower)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", kind, err)
		}
		return ExactValue(g), nil

	case PropCounterReset, PropCounterIncrement:
		def := 0
		if kind == PropCounterIncrement {
			def = 1
		}
		ops, err := ParseCounterOps(s, def)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", kind, err)
		}
		return ExactValue(ops), nil
	case PropContent:
		c, err := ParseContent(s)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", kind, err)
		}
		return ExactValue(c), nil

	case PropColor, PropBackgroundColor, PropBorderColor:
		c, ok := ParseColor(lower)
		if !ok {
			return Value{}, invalid(kind, s)
		}
		return ExactValue(c), nil
	}
	return Value{}, fmt.Errorf("css: no parser for %s", kind)
}

func keyword[T any](table map[string]T, kind PropertyKind, s string) (Value, error) {
	v, ok := table[s]
	if !ok {
		return Value{}, invalid(kind, s)
	}
	return ExactValue(v), nil
}

func length(kind PropertyKind, s string) (Value, error) {
	l, err := ParseLength(s)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", kind, err)
	}
	return ExactValue(l), nil
}

func integer(kind PropertyKind, s string) (Value, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return Value{}, invalid(kind, s)
	}
	return ExactValue(n), nil
}

func invalid(kind PropertyKind, s string) error {
	return fmt.Errorf("css: invalid value %q for %s", s, kind)
}
