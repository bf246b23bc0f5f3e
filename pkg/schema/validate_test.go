package schema

import (
	"errors"
	"testing"
)

func float(v float64) *float64 { return &v }

func TestFieldValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		field Field
		ok    bool
	}{
		{"text", Field{Key: "symbol", Kind: KindText}, true},
		{"grid without children", Field{Kind: KindGrid}, false},
		{"conditional without children", Field{Kind: KindConditional, VisibleWhen: "a"}, false},
		{"grid with key", Field{Key: "x", Kind: KindGrid, Children: []Field{{Key: "a", Kind: KindText}}}, false},
		{"leaf with children", Field{Key: "x", Kind: KindNumber, Children: []Field{{Key: "a", Kind: KindText}}}, false},
		{"leaf without key", Field{Kind: KindNumber}, false},
		{"select without options", Field{Key: "tf", Kind: KindSelect}, false},
		{"select duplicate options", Field{Key: "tf", Kind: KindSelect, Options: []Option{{Value: "1m"}, {Value: "1m"}}}, false},
		{"array without element", Field{Key: "xs", Kind: KindArray}, false},
		{"array of numbers", Field{Key: "xs", Kind: KindArray, ArrayElement: ElementNumber}, true},
		{"negative step", Field{Key: "n", Kind: KindNumber, Numeric: &NumericConstraints{Step: float(-1)}}, false},
		{"min above max", Field{Key: "n", Kind: KindNumber, Numeric: &NumericConstraints{Min: float(5), Max: float(1)}}, false},
		{"unknown kind", Field{Key: "slider", Kind: "slider"}, true},
		{"missing kind", Field{Key: "x"}, false},
		{"bad rule", Field{Key: "x", Kind: KindText, VisibleWhen: "a ="}, false},
		{"nested invalid", Field{Kind: KindGrid, Children: []Field{{Kind: KindGrid}}}, false},
	}
	for _, tc := range cases {
		err := tc.field.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%s: expected error", tc.name)
			}
			if !errors.Is(err, ErrInvalidField) {
				t.Fatalf("%s: expected ErrInvalidField, got %v", tc.name, err)
			}
		}
	}
}

func TestSectionValidateRejectsDuplicateBinding(t *testing.T) {
	t.Parallel()

	sec := Section{Title: "params", Fields: []Field{
		{Key: "window", Kind: KindNumber},
		{Kind: KindGrid, Children: []Field{{Key: "window", Kind: KindNumber}}},
	}}
	if err := sec.Validate(); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}

func TestNumericIntegral(t *testing.T) {
	t.Parallel()

	var absent *NumericConstraints
	if !absent.Integral() {
		t.Fatalf("nil constraints should be integral")
	}
	if !(&NumericConstraints{Step: float(1)}).Integral() {
		t.Fatalf("step 1 should be integral")
	}
	if (&NumericConstraints{Step: float(0.001)}).Integral() {
		t.Fatalf("step 0.001 should allow decimals")
	}
}
