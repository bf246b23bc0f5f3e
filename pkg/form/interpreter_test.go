package form

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-strategy-wizard/pkg/schema"
	"github.com/goliatone/go-strategy-wizard/pkg/visibility"
)

func step(v float64) *schema.NumericConstraints { return &schema.NumericConstraints{Step: &v} }

func kalmanSection() schema.Section {
	return schema.Section{
		Title: "Parameters",
		Fields: []schema.Field{
			{Kind: schema.KindGrid, Columns: 2, Children: []schema.Field{
				{Key: "timeframe", Kind: schema.KindSelect, Options: []schema.Option{{Value: "1m"}, {Value: "15m"}}},
				{Key: "kalmanType", Kind: schema.KindSelect, Options: []schema.Option{{Value: "persistent"}, {Value: "window"}, {Value: "decay"}}},
			}},
			{Key: "window", Kind: schema.KindNumber, VisibleWhen: `parameters.kalmanType == "window"`},
			{Kind: schema.KindConditional, Label: "Decay", VisibleWhen: `parameters.kalmanType == "decay"`, Children: []schema.Field{
				{Kind: schema.KindGrid, Columns: 3, Children: []schema.Field{
					{Key: "decay_x", Kind: schema.KindNumber, Numeric: step(0.01)},
				}},
			}},
		},
	}
}

type recorder struct {
	calls []map[string]any
	name  string
}

func (r *recorder) section(name string, slice map[string]any) {
	r.name = name
	r.calls = append(r.calls, slice)
}

func (r *recorder) last() map[string]any {
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func scopeFor(params map[string]any) visibility.Context {
	return visibility.Context{Config: map[string]any{"parameters": params}}
}

func TestBindSectionStructuralChangesMergeIntoSlice(t *testing.T) {
	in := NewInterpreter()
	params := map[string]any{"timeframe": "15m", "kalmanType": "persistent", "Q": 0.01}
	rec := &recorder{}

	view := in.BindSection(kalmanSection(), "parameters", params, scopeFor(params), rec.section)
	ctrl, ok := view.Control("parameters.timeframe")
	if !ok {
		t.Fatalf("timeframe control missing")
	}
	if err := ctrl.SetText("1m"); err != nil {
		t.Fatalf("SetText: %v", err)
	}

	want := map[string]any{"timeframe": "1m", "kalmanType": "persistent", "Q": 0.01}
	if diff := cmp.Diff(want, rec.last()); diff != "" {
		t.Fatalf("slice mismatch (-want +got):\n%s", diff)
	}
	if rec.name != "parameters" {
		t.Fatalf("expected section name parameters, got %q", rec.name)
	}
	if _, leaked := rec.last()[""]; leaked {
		t.Fatalf("structural change leaked under empty key")
	}
	if params["timeframe"] != "15m" {
		t.Fatalf("input slice mutated: %#v", params)
	}
}

func TestConditionalVisibilityRetainsHiddenValues(t *testing.T) {
	in := NewInterpreter()
	params := map[string]any{"timeframe": "15m", "kalmanType": "decay", "decay_x": 0.5, "window": 30.0}

	render := func(p map[string]any) (*SectionView, *recorder) {
		rec := &recorder{}
		return in.BindSection(kalmanSection(), "parameters", p, scopeFor(p), rec.section), rec
	}

	view, _ := render(params)
	if _, ok := view.Control("parameters.decay_x"); !ok {
		t.Fatalf("decay_x should be visible for decay type")
	}
	if _, ok := view.Control("parameters.window"); ok {
		t.Fatalf("window should be hidden for decay type")
	}

	rec := &recorder{}
	view = in.BindSection(kalmanSection(), "parameters", params, scopeFor(params), rec.section)
	kind, _ := view.Control("parameters.kalmanType")
	if err := kind.SetText("persistent"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	params = rec.last()

	view, _ = render(params)
	if _, ok := view.Control("parameters.decay_x"); ok {
		t.Fatalf("decay_x should be hidden for persistent type")
	}
	if params["decay_x"] != 0.5 || params["window"] != 30.0 {
		t.Fatalf("hidden values changed: %#v", params)
	}

	params["kalmanType"] = "decay"
	view, _ = render(params)
	ctrl, ok := view.Control("parameters.decay_x")
	if !ok {
		t.Fatalf("decay_x should be visible again")
	}
	if ctrl.Value != 0.5 {
		t.Fatalf("expected retained decay_x 0.5, got %#v", ctrl.Value)
	}
}

func TestHiddenFieldNeverEmits(t *testing.T) {
	in := NewInterpreter()
	field := schema.Field{Key: "window", Kind: schema.KindNumber, VisibleWhen: `parameters.kalmanType == "window"`}
	called := false
	ctrl := in.Interpret(field, map[string]any{}, scopeFor(map[string]any{"kalmanType": "persistent"}), "parameters", func(Patch) { called = true })
	if ctrl != nil {
		t.Fatalf("expected hidden field to render nothing")
	}
	if called {
		t.Fatalf("hidden field invoked onChange")
	}
}

func TestUnknownKindRendersDiagnostic(t *testing.T) {
	in := NewInterpreter()
	ctrl := in.Interpret(schema.Field{Key: "speed", Kind: "slider"}, map[string]any{"speed": 3.0}, visibility.Context{}, "parameters", nil)
	if ctrl == nil {
		t.Fatalf("expected diagnostic control")
	}
	if !strings.Contains(ctrl.Diagnostic, `unsupported field kind "slider"`) {
		t.Fatalf("unexpected diagnostic %q", ctrl.Diagnostic)
	}
	if err := ctrl.Set(1.0); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("expected ErrNotEditable, got %v", err)
	}
	if got := Leaves([]*Control{ctrl}); len(got) != 1 {
		t.Fatalf("diagnostic should appear in leaves")
	}
}

func TestRuleErrorRendersDiagnostic(t *testing.T) {
	in := NewInterpreter()
	ctrl := in.Interpret(schema.Field{Key: "x", Kind: schema.KindText, VisibleWhen: "a ="}, nil, visibility.Context{}, "", nil)
	if ctrl == nil || ctrl.Diagnostic == "" {
		t.Fatalf("expected diagnostic for malformed rule, got %#v", ctrl)
	}
}

func TestNumberInputPolicy(t *testing.T) {
	in := NewInterpreter()
	var patches []Patch
	onChange := func(p Patch) { patches = append(patches, p) }

	whole := in.Interpret(schema.Field{Key: "maxBars", Kind: schema.KindNumber}, map[string]any{"maxBars": 6.0}, visibility.Context{}, "logics", onChange)
	for _, raw := range []string{"", "  ", "abc", "NaN", "Inf", "2.5"} {
		if err := whole.SetText(raw); !errors.Is(err, ErrInvalidNumber) {
			t.Fatalf("SetText(%q): expected ErrInvalidNumber, got %v", raw, err)
		}
	}
	if len(patches) != 0 {
		t.Fatalf("rejected input must not emit, got %v", patches)
	}
	if whole.Value != 6.0 {
		t.Fatalf("rejected input changed value to %#v", whole.Value)
	}

	if err := whole.SetText(" 12 "); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if diff := cmp.Diff([]Patch{{"maxBars": 12.0}}, patches); diff != "" {
		t.Fatalf("patch mismatch (-want +got):\n%s", diff)
	}

	min, max := 0.0, 1.0
	frac := in.Interpret(schema.Field{Key: "decay_x", Kind: schema.KindNumber, Numeric: &schema.NumericConstraints{Step: step(0.01).Step, Min: &min, Max: &max}}, nil, visibility.Context{}, "parameters", onChange)
	if err := frac.SetText("0.98"); err != nil {
		t.Fatalf("SetText fractional: %v", err)
	}
	if err := frac.SetText("1.5"); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if err := frac.Set(-1.0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange from Set, got %v", err)
	}
	if frac.Text() != "0.98" {
		t.Fatalf("unexpected text %q", frac.Text())
	}
}

func TestSelectOutOfEnumIsUnselected(t *testing.T) {
	in := NewInterpreter()
	field := schema.Field{Key: "timeframe", Kind: schema.KindSelect, Options: []schema.Option{{Value: "1m"}, {Value: "15m"}}}

	ctrl := in.Interpret(field, map[string]any{"timeframe": "3h"}, visibility.Context{}, "parameters", nil)
	if _, ok := ctrl.Selected(); ok {
		t.Fatalf("expected out-of-enum value to be unselected")
	}
	if ctrl.SelectedIndex() != -1 {
		t.Fatalf("expected index -1, got %d", ctrl.SelectedIndex())
	}
	if ctrl.Value != "3h" {
		t.Fatalf("out-of-enum value should be kept, got %#v", ctrl.Value)
	}
	if err := ctrl.SetText("2h"); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}

	ctrl = in.Interpret(field, map[string]any{"timeframe": "15m"}, visibility.Context{}, "parameters", nil)
	if ctrl.SelectedIndex() != 1 {
		t.Fatalf("expected index 1, got %d", ctrl.SelectedIndex())
	}
}

func TestToggle(t *testing.T) {
	in := NewInterpreter()
	var got Patch
	ctrl := in.Interpret(schema.Field{Key: "partialUpdate", Kind: schema.KindToggle}, map[string]any{}, visibility.Context{}, "parameters", func(p Patch) { got = p })
	if ctrl.Checked() {
		t.Fatalf("missing toggle should be off")
	}
	if err := ctrl.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if diff := cmp.Diff(Patch{"partialUpdate": true}, got); diff != "" {
		t.Fatalf("patch mismatch (-want +got):\n%s", diff)
	}
	if err := ctrl.SetText("false"); err != nil || ctrl.Checked() {
		t.Fatalf("SetText false: %v checked=%v", err, ctrl.Checked())
	}
}

func TestWithEvaluatorDecidesVisibility(t *testing.T) {
	var asked []string
	in := NewInterpreter(WithEvaluator(visibility.EvaluatorFunc(func(path, rule string, _ visibility.Context) (bool, error) {
		asked = append(asked, path)
		if rule == "broken" {
			return false, errors.New("boom")
		}
		return rule == "show", nil
	})))
	noop := func(Patch) {}
	parent := map[string]any{"window": 30.0}

	if c := in.Interpret(schema.Field{Key: "window", Kind: schema.KindNumber, VisibleWhen: "show"}, parent, visibility.Context{}, "parameters", noop); c == nil {
		t.Fatalf("expected visible control")
	}
	if c := in.Interpret(schema.Field{Key: "window", Kind: schema.KindNumber, VisibleWhen: "hide"}, parent, visibility.Context{}, "parameters", noop); c != nil {
		t.Fatalf("expected hidden control, got %+v", c)
	}
	c := in.Interpret(schema.Field{Key: "window", Kind: schema.KindNumber, VisibleWhen: "broken"}, parent, visibility.Context{}, "parameters", noop)
	if c == nil || !strings.Contains(c.Diagnostic, "boom") {
		t.Fatalf("expected diagnostic control, got %+v", c)
	}
	if diff := cmp.Diff([]string{"parameters.window", "parameters.window", "parameters.window"}, asked); diff != "" {
		t.Fatalf("evaluated paths mismatch (-want +got):\n%s", diff)
	}
}
