package css

import (
	"errors"
	"fmt"
)

// ValueKind discriminates a property value.
type ValueKind uint8

const (
	Initial ValueKind = iota // property not set, or set to `initial`
	Auto
	Inherit
	Exact
)

func (k ValueKind) String() string {
	switch k {
	case Auto:
		return "auto"
	case Inherit:
		return "inherit"
	case Exact:
		return "exact"
	}
	return "initial"
}

// Value is an untyped property value as stored in a Style. The zero Value
// is Initial.
type Value struct {
	Kind ValueKind
	data any
}

// ErrUnexpectedType is returned when a value holds a payload of a type the
// caller did not ask for.
var ErrUnexpectedType = errors.New("css: unexpected value type")

var (
	AutoValue    = Value{Kind: Auto}
	InitialValue = Value{Kind: Initial}
	InheritValue = Value{Kind: Inherit}
)

// ExactValue wraps a concrete payload.
func ExactValue(v any) Value {
	return Value{Kind: Exact, data: v}
}

// Data returns the raw payload of an Exact value, nil otherwise.
func (v Value) Data() any {
	return v.data
}

// IsExact is true for values carrying a payload.
func (v Value) IsExact() bool {
	return v.Kind == Exact
}

func (v Value) String() string {
	if v.Kind == Exact {
		return fmt.Sprintf("%v", v.data)
	}
	return v.Kind.String()
}

// MultiValue is the typed view of a Value.
type MultiValue[T any] struct {
	Kind ValueKind
	Val  T
}

// IsAuto reports an `auto` value.
func (m MultiValue[T]) IsAuto() bool { return m.Kind == Auto }

// Get returns the payload and whether it is present.
func (m MultiValue[T]) Get() (T, bool) {
	return m.Val, m.Kind == Exact
}

// Or returns the payload, or def if the value is not Exact.
func (m MultiValue[T]) Or(def T) T {
	if m.Kind == Exact {
		return m.Val
	}
	return def
}

// Typed converts v to a typed MultiValue. An Exact payload of another type
// yields ErrUnexpectedType.
func Typed[T any](v Value) (MultiValue[T], error) {
	var m MultiValue[T]
	m.Kind = v.Kind
	if v.Kind != Exact {
		return m, nil
	}
	t, ok := v.data.(T)
	if !ok {
		var zero T
		return MultiValue[T]{Kind: Initial}, fmt.Errorf("%w: have %T, want %T", ErrUnexpectedType, v.data, zero)
	}
	m.Val = t
	return m, nil
}
