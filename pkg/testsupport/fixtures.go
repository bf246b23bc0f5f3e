// Package testsupport holds fixtures shared by the wizard's front-end and
// transport tests.
package testsupport

import (
	"context"
	"net/http"
	"testing"

	"github.com/goliatone/go-strategy-wizard/pkg/simulation"
	"github.com/goliatone/go-strategy-wizard/pkg/wizard"
)

// Dates used to satisfy the data step.
const (
	StartDate = "2024-01-01"
	EndDate   = "2024-06-01"
)

// SubmitterFunc adapts a function to wizard.Submitter.
type SubmitterFunc func(ctx context.Context, p simulation.Payload) (simulation.Result, error)

func (fn SubmitterFunc) Submit(ctx context.Context, p simulation.Payload) (simulation.Result, error) {
	return fn(ctx, p)
}

// Accepting answers every submission with 202 and id.
func Accepting(id string) SubmitterFunc {
	return func(context.Context, simulation.Payload) (simulation.Result, error) {
		return simulation.Result{StatusCode: http.StatusAccepted, ID: id, Status: "queued", RequestID: "req-1"}, nil
	}
}

// Failing answers every submission with err.
func Failing(err error) SubmitterFunc {
	return func(context.Context, simulation.Payload) (simulation.Result, error) {
		return simulation.Result{}, err
	}
}

// StoreAt returns a store advanced to step with the fixture dates filled in.
func StoreAt(t *testing.T, step wizard.Step, opts ...wizard.StoreOption) *wizard.Store {
	t.Helper()

	store := wizard.NewStore(opts...)
	if step <= wizard.StepData {
		return store
	}
	if err := store.SetDataField("startDate", StartDate); err != nil {
		t.Fatalf("set start date: %v", err)
	}
	if err := store.SetDataField("endDate", EndDate); err != nil {
		t.Fatalf("set end date: %v", err)
	}
	for store.Step() < step {
		if err := store.NextStep(); err != nil {
			t.Fatalf("advance to step %d: %v", step, err)
		}
	}
	return store
}

// Payload is a contract-valid RSI request.
func Payload() simulation.Payload {
	return simulation.Payload{
		Data: simulation.Data{Market: "crypto", Symbol: "BTC/USDT", Timeframe: "1m", StartDate: StartDate, EndDate: EndDate},
		Strategy: simulation.Strategy{
			Key:        "rsi",
			Parameters: map[string]any{"timeframe": "15m", "period": 14},
			Logics:     map[string]any{"tpPct": 0.01, "slPct": 0.01, "maxBarsTimeframe": "15m", "maxBars": 6},
			Common:     map[string]any{"priceCheckingTimeframe": "1m", "chartTimeframe": "15m", "trendFilterEnabled": false, "watcherHistoryHours": 48},
		},
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
