package text

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-strategy-wizard/pkg/form"
	"github.com/goliatone/go-strategy-wizard/pkg/render"
	"github.com/goliatone/go-strategy-wizard/pkg/strategy"
	"github.com/goliatone/go-strategy-wizard/pkg/wizard"
)

func build(t *testing.T, store *wizard.Store) render.Page {
	t.Helper()
	page, err := render.BuildPage(store.Snapshot(), strategy.DefaultRegistry(), form.NewInterpreter())
	if err != nil {
		t.Fatalf("BuildPage: %v", err)
	}
	return page
}

func TestStepProgress(t *testing.T) {
	t.Parallel()

	got := StepProgress(wizard.Steps(wizard.StepStrategy))
	want := "[✓] Data configuration > [*2] Strategy configuration > [3] Simulation run"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("progress mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderDataPreview(t *testing.T) {
	t.Parallel()

	out, err := New().Render(context.Background(), build(t, wizard.NewStore()))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, fragment := range []string{
		"== Data configuration ==",
		"  Market: Crypto\n",
		"  Symbol: BTC/USDT\n",
		"  Start date: -\n",
		"Cannot continue:",
	} {
		if !strings.Contains(string(out), fragment) {
			t.Fatalf("expected %q in\n%s", fragment, out)
		}
	}
}

func TestRenderSummaryOnExecutionStep(t *testing.T) {
	t.Parallel()

	store := wizard.NewStore(wizard.WithData(wizard.DataConfig{
		Market: "crypto", Symbol: "ETH/USDT", Timeframe: "1h", StartDate: "2024-01-01", EndDate: "2024-02-01",
	}))
	for i := 0; i < 2; i++ {
		if err := store.NextStep(); err != nil {
			t.Fatalf("NextStep: %v", err)
		}
	}

	out, err := New().Render(context.Background(), build(t, store))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, fragment := range []string{"CONFIGURATION SUMMARY", "ETH/USDT", "Moving Average (MA)", "3, 5, 20"} {
		if !strings.Contains(string(out), fragment) {
			t.Fatalf("expected %q in\n%s", fragment, out)
		}
	}
}

func TestRenderStrategyPreviewShowsArraysAndErrors(t *testing.T) {
	t.Parallel()

	store := wizard.NewStore(wizard.WithData(wizard.DataConfig{StartDate: "2024-01-01", EndDate: "2024-02-01"}))
	if err := store.NextStep(); err != nil {
		t.Fatalf("NextStep: %v", err)
	}
	if err := store.ApplyStrategySection("logics", map[string]any{"maxBars": 0.0}); err != nil {
		t.Fatalf("ApplyStrategySection: %v", err)
	}

	out, err := New().Render(context.Background(), build(t, store))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, fragment := range []string{"Strategy: Moving Average (MA)", "[3, 5, 20]", "    ! must be at least 1"} {
		if !strings.Contains(string(out), fragment) {
			t.Fatalf("expected %q in\n%s", fragment, out)
		}
	}
}
