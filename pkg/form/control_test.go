package form

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-strategy-wizard/pkg/schema"
	"github.com/goliatone/go-strategy-wizard/pkg/visibility"
)

func arrayControl(t *testing.T, element schema.ElementKind, value []any, patches *[]Patch) *Control {
	t.Helper()
	in := NewInterpreter()
	field := schema.Field{Key: "periods", Kind: schema.KindArray, ArrayElement: element}
	return in.Interpret(field, map[string]any{"periods": value}, visibility.Context{}, "parameters", func(p Patch) {
		*patches = append(*patches, p)
	})
}

func TestArrayAppendDefaults(t *testing.T) {
	var patches []Patch
	numbers := arrayControl(t, schema.ElementNumber, []any{3.0}, &patches)
	if err := numbers.Append(); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if diff := cmp.Diff([]any{3.0, 0.0}, numbers.Items()); diff != "" {
		t.Fatalf("number append mismatch (-want +got):\n%s", diff)
	}

	strings := arrayControl(t, schema.ElementString, nil, &patches)
	if err := strings.Append(); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if diff := cmp.Diff([]any{""}, strings.Items()); diff != "" {
		t.Fatalf("string append mismatch (-want +got):\n%s", diff)
	}
	if len(patches) != 2 {
		t.Fatalf("expected 2 patches, got %d", len(patches))
	}
}

func TestArrayAppendThenRemoveKeepsOrder(t *testing.T) {
	var patches []Patch
	ctrl := arrayControl(t, schema.ElementNumber, []any{3.0, 5.0, 20.0}, &patches)

	if err := ctrl.Append(); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := ctrl.Remove(3); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if diff := cmp.Diff([]any{3.0, 5.0, 20.0}, ctrl.Items()); diff != "" {
		t.Fatalf("append/remove changed order (-want +got):\n%s", diff)
	}

	if err := ctrl.Remove(0); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if diff := cmp.Diff([]any{5.0, 20.0}, ctrl.Items()); diff != "" {
		t.Fatalf("remove did not shift (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Patch{"periods": []any{5.0, 20.0}}, patches[len(patches)-1]); diff != "" {
		t.Fatalf("last patch mismatch (-want +got):\n%s", diff)
	}

	if err := ctrl.Remove(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestArrayUpdate(t *testing.T) {
	var patches []Patch
	ctrl := arrayControl(t, schema.ElementNumber, []any{3.0, 5.0}, &patches)

	if err := ctrl.UpdateText(1, "50"); err != nil {
		t.Fatalf("UpdateText: %v", err)
	}
	if err := ctrl.UpdateText(0, "x"); !errors.Is(err, ErrInvalidNumber) {
		t.Fatalf("expected ErrInvalidNumber, got %v", err)
	}
	if err := ctrl.Update(0, "x"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if diff := cmp.Diff([]any{3.0, 50.0}, ctrl.Items()); diff != "" {
		t.Fatalf("update mismatch (-want +got):\n%s", diff)
	}
	if len(patches) != 1 {
		t.Fatalf("rejected updates must not emit, got %d patches", len(patches))
	}
}

func TestArraySetTextParsesList(t *testing.T) {
	var patches []Patch
	ctrl := arrayControl(t, schema.ElementString, []any{"15m"}, &patches)
	if err := ctrl.SetText("15m, 1h ,4h"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if diff := cmp.Diff([]any{"15m", "1h", "4h"}, ctrl.Items()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if ctrl.Text() != "15m, 1h, 4h" {
		t.Fatalf("unexpected text %q", ctrl.Text())
	}
}

func TestItemsIsACopy(t *testing.T) {
	var patches []Patch
	ctrl := arrayControl(t, schema.ElementNumber, []any{1.0}, &patches)
	items := ctrl.Items()
	items[0] = 99.0
	if ctrl.Items()[0] != 1.0 {
		t.Fatalf("Items exposed internal storage")
	}
}

func TestStructuralControlIsNotEditable(t *testing.T) {
	in := NewInterpreter()
	grid := in.Interpret(schema.Field{Kind: schema.KindGrid, Children: []schema.Field{{Key: "a", Kind: schema.KindText}}}, map[string]any{"a": "x"}, visibility.Context{}, "s", nil)
	if err := grid.Set("y"); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("expected ErrNotEditable, got %v", err)
	}
	if len(grid.Children) != 1 || grid.Children[0].Path != "s.a" || grid.Children[0].Value != "x" {
		t.Fatalf("unexpected grid children: %#v", grid.Children)
	}
}
