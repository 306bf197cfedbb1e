package layout

import (
	"testing"

	"quill/pkg/css"
	"quill/pkg/geom"
)

func TestFloatingContext_Empty(t *testing.T) {
	fc := NewFloatingContext()

	if !fc.IsEmpty() {
		t.Error("Expected new floating context to be empty")
	}
	start, end := fc.AvailableInlineSize(0, 100, 0, 400)
	if start != 0 || end != 400 {
		t.Errorf("Expected (0, 400) for empty context, got (%f, %f)", start, end)
	}
	var nilFC *FloatingContext
	if !nilFC.IsEmpty() || nilFC.Bottom() != 0 {
		t.Error("A nil context behaves as empty")
	}
}

func TestFloatingContext_SingleLeftFloat(t *testing.T) {
	fc := NewFloatingContext()

	pos := fc.Place(1, css.FloatLeft, 100, 50, 0, 0, 400)
	if pos != (geom.LogicalPosition{}) {
		t.Errorf("Expected left float at origin, got %v", pos)
	}

	// Query in the middle of the float
	start, end := fc.AvailableInlineSize(25, 10, 0, 400)
	if start != 100 || end != 400 {
		t.Errorf("Expected (100, 400) beside left float, got (%f, %f)", start, end)
	}
	// Below the float
	start, end = fc.AvailableInlineSize(60, 10, 0, 400)
	if start != 0 || end != 400 {
		t.Errorf("Expected (0, 400) below float, got (%f, %f)", start, end)
	}
}

func TestFloatingContext_LeftAndRightFloats(t *testing.T) {
	fc := NewFloatingContext()
	fc.Place(1, css.FloatLeft, 100, 50, 0, 0, 400)
	pos := fc.Place(2, css.FloatRight, 80, 60, 0, 0, 400)
	if pos.X != 320 || pos.Y != 0 {
		t.Errorf("Expected right float at (320, 0), got %v", pos)
	}

	start, end := fc.AvailableInlineSize(30, 10, 0, 400)
	if start != 100 || end != 320 {
		t.Errorf("Expected (100, 320) between floats, got (%f, %f)", start, end)
	}
	start, end = fc.AvailableInlineSize(55, 5, 0, 400)
	if start != 0 || end != 320 {
		t.Errorf("Expected (0, 320) beside the right float only, got (%f, %f)", start, end)
	}
	if b := fc.Bottom(); b != 60 {
		t.Errorf("Expected bottom 60, got %f", b)
	}
}

func TestFloatingContext_StackedLeftFloats(t *testing.T) {
	fc := NewFloatingContext()
	fc.Place(1, css.FloatLeft, 100, 50, 0, 0, 400)
	pos := fc.Place(2, css.FloatLeft, 150, 30, 0, 0, 400)
	if pos.X != 100 || pos.Y != 0 {
		t.Errorf("Expected second float beside the first at (100, 0), got %v", pos)
	}

	// A float that does not fit beside the others moves down to the first
	// float bottom that makes room.
	pos = fc.Place(3, css.FloatLeft, 200, 10, 0, 0, 400)
	if pos.X != 100 || pos.Y != 30 {
		t.Errorf("Expected third float at (100, 30), got %v", pos)
	}
	start, _ := fc.AvailableInlineSize(20, 10, 0, 400)
	if start != 250 {
		t.Errorf("Expected start 250 beside two floats, got %f", start)
	}
}

func TestFloatingContext_NoFloatAboveEarlierFloat(t *testing.T) {
	fc := NewFloatingContext()
	fc.Place(1, css.FloatLeft, 100, 50, 40, 0, 400)
	pos := fc.Place(2, css.FloatRight, 50, 50, 0, 0, 400)
	if pos.Y != 40 {
		t.Errorf("A later float may not be placed above an earlier one, got y=%f", pos.Y)
	}
}

func TestFloatingContext_Clearance(t *testing.T) {
	fc := NewFloatingContext()
	fc.Place(1, css.FloatLeft, 100, 50, 0, 0, 400)
	fc.Place(2, css.FloatRight, 100, 80, 0, 0, 400)

	cases := []struct {
		clear css.Clear
		want  float64
	}{
		{css.ClearNone, 10},
		{css.ClearLeft, 50},
		{css.ClearRight, 80},
		{css.ClearBoth, 80},
	}
	for _, c := range cases {
		if got := fc.Clearance(c.clear, 10); got != c.want {
			t.Errorf("clear %v: expected %f, got %f", c.clear, c.want, got)
		}
	}
	if got := fc.Clearance(css.ClearBoth, 100); got != 100 {
		t.Errorf("Clearance below all floats must not move the box, got %f", got)
	}
}

func TestFloatingContext_CloneAndRemap(t *testing.T) {
	fc := NewFloatingContext()
	fc.Place(3, css.FloatLeft, 100, 50, 0, 0, 400)
	fc.Place(4, css.FloatRight, 100, 50, 0, 0, 400)

	c := fc.Clone()
	c.Place(5, css.FloatLeft, 10, 10, 0, 0, 400)
	if len(fc.Exclusions()) != 2 {
		t.Error("Placing into a clone must not change the original")
	}

	r := fc.remap(map[int]int{3: 7})
	ex := r.Exclusions()
	if len(ex) != 1 || ex[0].Node != 7 {
		t.Errorf("Expected only the float of node 3, renamed to 7, got %v", ex)
	}
}
