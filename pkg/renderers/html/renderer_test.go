package html

import (
	"strings"
	"testing"

	"github.com/goliatone/go-strategy-wizard/pkg/form"
	"github.com/goliatone/go-strategy-wizard/pkg/render"
	"github.com/goliatone/go-strategy-wizard/pkg/simulation"
	"github.com/goliatone/go-strategy-wizard/pkg/strategy"
	"github.com/goliatone/go-strategy-wizard/pkg/testsupport"
	"github.com/goliatone/go-strategy-wizard/pkg/wizard"
)

func renderPage(t *testing.T, store *wizard.Store) string {
	t.Helper()
	page, err := render.BuildPage(store.Snapshot(), strategy.DefaultRegistry(), form.NewInterpreter())
	if err != nil {
		t.Fatalf("BuildPage: %v", err)
	}
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := r.Render(testsupport.Context(), page)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, html)
		}
	}
}

func TestRenderDataStep(t *testing.T) {
	t.Parallel()

	out := renderPage(t, wizard.NewStore())
	assertContains(t, out,
		`<title>Strategy simulator · Data configuration</title>`,
		`action="/data"`,
		`name="data.market"`,
		`<option value="crypto" selected>Crypto</option>`,
		`name="data.startDate" value=""`,
		`placeholder="2024-01-01"`,
		`aria-current="step"`,
		`value="next" class="primary" disabled`,
		`<svg`,
	)
	if strings.Contains(out, `name="parameters.`) {
		t.Fatalf("strategy fields must not render on the data step")
	}
}

func TestRenderStrategyStepArraysAndDescription(t *testing.T) {
	t.Parallel()

	store := testsupport.StoreAt(t, wizard.StepStrategy)
	out := renderPage(t, store)

	assertContains(t, out,
		`action="/strategy"`,
		`<option value="ma" selected>`,
		`<input type="number" name="parameters.periods.0" value="3" step="1"`,
		`name="parameters.periods.2" value="20"`,
		`value="add:parameters.periods"`,
		`value="remove:parameters.periods.1"`,
		`class="field-help strategy-description"`,
		`name="common.watcherHistoryHours" value="48" step="1" min="1"`,
		`<input type="hidden" name="common.trendFilterEnabled" value="false">`,
	)
	if strings.Contains(out, `step="any"`) {
		t.Fatalf("whole-number array items must not accept fractions")
	}
}

func TestRenderKalmanWindowError(t *testing.T) {
	t.Parallel()

	store := testsupport.StoreAt(t, wizard.StepStrategy, wizard.WithInitialStrategy(strategy.KeyKalman1st))
	if err := store.ApplyStrategySection("parameters", map[string]any{"kalmanType": "window"}); err != nil {
		t.Fatalf("ApplyStrategySection: %v", err)
	}

	out := renderPage(t, store)
	assertContains(t, out,
		`name="parameters.window"`,
		`window is required for the window kalman type`,
		`aria-invalid="true"`,
		`value="next" class="primary" disabled`,
	)
}

func TestRenderExecutionStep(t *testing.T) {
	t.Parallel()

	store := testsupport.StoreAt(t, wizard.StepExecution)

	out := renderPage(t, store)
	assertContains(t, out,
		`Configuration summary`,
		`<td>Start date</td><td>2024-01-01</td>`,
		`<td>Strategy</td><td>Strategy</td><td>Moving Average (MA)</td>`,
		`action="/submit"`,
		`Run simulation`,
	)
	if strings.Contains(out, `class="primary" disabled>Run simulation`) {
		t.Fatalf("submit must be enabled on the execution step")
	}

	if _, err := store.Submit(testsupport.Context(), testsupport.Accepting("sim-42")); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	out = renderPage(t, store)
	assertContains(t, out, `<code>sim-42</code> is queued`, `href="/simulation/results"`)
}

func TestRenderDiagnosticControl(t *testing.T) {
	t.Parallel()

	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	components := &componentRenderer{engine: r.engine}
	out, err := components.control(&form.Control{Kind: "slider", Key: "speed", Path: "parameters.speed"})
	if err != nil {
		t.Fatalf("control: %v", err)
	}
	assertContains(t, out, `field-diagnostic`, `unsupported field kind`)
}

func TestRenderResults(t *testing.T) {
	t.Parallel()

	r, err := New(WithActions(Actions{Home: "/wizard/"}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := r.RenderResults(testsupport.Context(), render.Page{Title: "Sim"})
	if err != nil {
		t.Fatalf("RenderResults: %v", err)
	}
	assertContains(t, string(out), `No simulation has been started yet`, `href="/wizard/"`)

	out, err = r.RenderResults(testsupport.Context(), render.Page{
		Title:  "Sim",
		Result: &simulation.Result{ID: "sim-7", Status: "queued", RequestID: "req-9"},
	})
	if err != nil {
		t.Fatalf("RenderResults: %v", err)
	}
	assertContains(t, string(out), `<code>sim-7</code>`, `<code>req-9</code>`)
}

func TestSanitizeDescription(t *testing.T) {
	t.Parallel()

	got := sanitizeDescription(`<script>alert(1)</script><b>Bold</b> text`)
	if got != "<b>Bold</b> text" {
		t.Fatalf("unexpected sanitized description %q", got)
	}
	if sanitizeDescription("   ") != "" {
		t.Fatalf("blank descriptions should stay empty")
	}
}

func TestIconMarkup(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"chart", "bolt", "trend", "target", "database", "gear"} {
		if !strings.HasPrefix(iconMarkup(token), "<svg") {
			t.Fatalf("icon %q did not render an svg", token)
		}
	}
	if iconMarkup("unknown") != "" {
		t.Fatalf("unknown tokens must render nothing")
	}
	custom := iconMarkup(`<svg onload="steal()"><script>alert(1)</script><path d="M0 0"></path></svg>`)
	if strings.Contains(custom, "onload") || strings.Contains(custom, "script") {
		t.Fatalf("custom icon was not sanitized: %q", custom)
	}
	if !strings.Contains(custom, `<path d="M0 0">`) {
		t.Fatalf("custom icon lost its path: %q", custom)
	}
}

func TestThemeVariantOverridesTokens(t *testing.T) {
	t.Parallel()

	r, err := New(WithTheme(DefaultTheme(), "dark"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	assertContains(t, r.stylesheet, ":root {", "--background: #15181e;", "--accent: #2f6fed;")

	base, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	assertContains(t, base.stylesheet, "--background: #f6f7f9;")
}

func TestThemeUnknownVariant(t *testing.T) {
	t.Parallel()

	if _, err := New(WithTheme(DefaultTheme(), "solarized")); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}
