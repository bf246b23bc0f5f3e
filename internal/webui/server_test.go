package webui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-strategy-wizard/internal/metrics"
	"github.com/goliatone/go-strategy-wizard/pkg/simulation"
	"github.com/goliatone/go-strategy-wizard/pkg/strategy"
	"github.com/goliatone/go-strategy-wizard/pkg/testsupport"
	"github.com/goliatone/go-strategy-wizard/pkg/wizard"
)

var accepted = testsupport.Accepting("sim-42")

func newTestServer(t *testing.T, step wizard.Step, sub wizard.Submitter, opts ...Option) (*wizard.Store, http.Handler) {
	t.Helper()
	store := testsupport.StoreAt(t, step)
	srv, err := New(store, sub, opts...)
	require.NoError(t, err)
	return store, srv.Handler()
}

func do(h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndexRendersDataStep(t *testing.T) {
	_, h := newTestServer(t, wizard.StepData, accepted)

	rec := do(h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	body := rec.Body.String()
	assert.Contains(t, body, `name="data.symbol"`)
	assert.Contains(t, body, `action="/data"`)
}

func TestDataStepSaveAndAdvance(t *testing.T) {
	store, h := newTestServer(t, wizard.StepData, accepted)

	rec := do(h, http.MethodPost, "/data", url.Values{
		"data.market":    {"forex"},
		"data.symbol":    {"EUR/USD"},
		"data.timeframe": {"1h"},
		"data.startDate": {"2024-01-01"},
		"data.endDate":   {"2024-06-01"},
		"op":             {"next"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	assert.Equal(t, wizard.StepStrategy, store.Step())
	assert.Equal(t, wizard.DataConfig{
		Market:    "forex",
		Symbol:    "EUR/USD",
		Timeframe: "1h",
		StartDate: "2024-01-01",
		EndDate:   "2024-06-01",
	}, store.Data())
}

func TestDataStepNextWithoutDatesStays(t *testing.T) {
	store, h := newTestServer(t, wizard.StepData, accepted)

	rec := do(h, http.MethodPost, "/data", url.Values{
		"data.symbol": {"ETH/USDT"},
		"op":          {"next"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "start and end dates are required")
	assert.Equal(t, wizard.StepData, store.Step())
	assert.Equal(t, "ETH/USDT", store.Data().Symbol)
}

func TestDataStepRejectsUnknownOption(t *testing.T) {
	store, h := newTestServer(t, wizard.StepData, accepted)

	rec := do(h, http.MethodPost, "/data", url.Values{"data.market": {"bonds"}, "op": {"save"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid option")
	assert.Equal(t, "crypto", store.Data().Market)
}

func TestStrategyStepInvalidNumberIsInline(t *testing.T) {
	store, h := newTestServer(t, wizard.StepStrategy, accepted)

	rec := do(h, http.MethodPost, "/strategy", url.Values{
		"logics.maxBars": {"abc"},
		"logics.tpPct":   {"0.02"},
		"op":             {"save"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "is not a number")
	assert.Equal(t, 6, store.Strategy().Settings().MaxBars)
	assert.Equal(t, 0.02, store.Strategy().Settings().TPPct)
}

func TestStrategyKeyChangeResetsSections(t *testing.T) {
	store, h := newTestServer(t, wizard.StepStrategy, accepted)

	rec := do(h, http.MethodPost, "/strategy", url.Values{
		"strategy.key":   {"rsi"},
		"logics.maxBars": {"99"},
		"op":             {"save"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, strategy.KeyRSI, store.StrategyKey())
	assert.Equal(t, 6, store.Strategy().Settings().MaxBars)
}

func TestStrategyKeyRejectsUnknown(t *testing.T) {
	store, h := newTestServer(t, wizard.StepStrategy, accepted)

	rec := do(h, http.MethodPost, "/strategy", url.Values{"strategy.key": {"macd"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, strategy.KeyMovingAverage, store.StrategyKey())
}

func TestStrategyArrayOperations(t *testing.T) {
	store, h := newTestServer(t, wizard.StepStrategy, accepted)

	periods := func() []int {
		return store.Strategy().(strategy.MovingAverage).Parameters.Periods
	}

	rec := do(h, http.MethodPost, "/strategy", url.Values{
		"parameters.periods.0": {"3"},
		"parameters.periods.1": {"5"},
		"parameters.periods.2": {"50"},
		"op":                   {"remove:parameters.periods.0"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []int{5, 50}, periods())

	rec = do(h, http.MethodPost, "/strategy", url.Values{
		"parameters.periods.0": {"5"},
		"parameters.periods.1": {"50"},
		"op":                   {"add:parameters.periods"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []int{5, 50, 0}, periods())

	rec = do(h, http.MethodPost, "/strategy", url.Values{
		"parameters.periods.0": {"5"},
		"parameters.periods.1": {"x"},
		"op":                   {"save"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []int{5, 50, 0}, periods())

	rec = do(h, http.MethodPost, "/strategy", url.Values{"op": {"add:parameters.nope"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStrategyRevealedFieldAppliedInSamePost(t *testing.T) {
	store, h := newTestServer(t, wizard.StepStrategy, accepted)
	require.NoError(t, store.SetStrategyKey(strategy.KeyKalman1st))

	rec := do(h, http.MethodPost, "/strategy", url.Values{
		"parameters.kalmanType":     {"window"},
		"parameters.window":         {"30"},
		"common.trendFilterEnabled": {"false", "true"},
		"op":                        {"next"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	k := store.Strategy().(strategy.Kalman)
	assert.Equal(t, strategy.KalmanWindow, k.Parameters.KalmanType)
	require.NotNil(t, k.Parameters.Window)
	assert.Equal(t, 30, *k.Parameters.Window)
	assert.True(t, store.Common().TrendFilterEnabled)
	assert.Equal(t, wizard.StepExecution, store.Step())
}

func TestStrategyNextBlockedByValidation(t *testing.T) {
	store, h := newTestServer(t, wizard.StepStrategy, accepted)
	require.NoError(t, store.SetStrategyKey(strategy.KeyKalman1st))

	rec := do(h, http.MethodPost, "/strategy", url.Values{
		"parameters.kalmanType": {"window"},
		"op":                    {"next"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "window is required for the window kalman type")
	assert.Equal(t, wizard.StepStrategy, store.Step())
}

func TestPostToCompletedStepRedirects(t *testing.T) {
	store, h := newTestServer(t, wizard.StepStrategy, accepted)

	rec := do(h, http.MethodPost, "/data", url.Values{"data.symbol": {"X"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "BTC/USDT", store.Data().Symbol)
}

func TestSubmitSuccessRedirectsToResults(t *testing.T) {
	_, h := newTestServer(t, wizard.StepExecution, accepted)

	rec := do(h, http.MethodPost, "/submit", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/simulation/results", rec.Header().Get("Location"))

	rec = do(h, http.MethodGet, "/simulation/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sim-42")
}

func TestSubmitFailureShowsBanner(t *testing.T) {
	failing := testsupport.Failing(errors.New("backend down"))
	store, h := newTestServer(t, wizard.StepExecution, failing)

	rec := do(h, http.MethodPost, "/submit", url.Values{})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to start the simulation. Details: backend down")
	assert.True(t, store.SubmitEnabled())
	assert.Equal(t, wizard.StepExecution, store.Step())
}

func TestSubmitWhileInFlightConflicts(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	blocking := testsupport.SubmitterFunc(func(ctx context.Context, p simulation.Payload) (simulation.Result, error) {
		close(started)
		<-release
		return accepted(ctx, p)
	})
	_, h := newTestServer(t, wizard.StepExecution, blocking)

	done := make(chan int, 1)
	go func() {
		done <- do(h, http.MethodPost, "/submit", url.Values{}).Code
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("submission did not start")
	}

	rec := do(h, http.MethodPost, "/submit", url.Values{})
	assert.Equal(t, http.StatusConflict, rec.Code)

	page := do(h, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, page, "Starting simulation…")

	close(release)
	assert.Equal(t, http.StatusSeeOther, <-done)
}

func TestSubmitBeforeExecutionRedirects(t *testing.T) {
	_, h := newTestServer(t, wizard.StepData, accepted)
	rec := do(h, http.MethodPost, "/submit", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestResultsWithoutSubmissionRedirects(t *testing.T) {
	_, h := newTestServer(t, wizard.StepData, accepted)
	rec := do(h, http.MethodGet, "/simulation/results", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	_, h := newTestServer(t, wizard.StepData, accepted, WithMetrics(metrics.New()))

	rec := do(h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	do(h, http.MethodGet, "/", nil)
	rec = do(h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `strategy_wizard_http_requests_total{code="200",route="/"} 1`)
}

func TestMethodNotAllowed(t *testing.T) {
	_, h := newTestServer(t, wizard.StepData, accepted)
	rec := do(h, http.MethodGet, "/data", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNewRequiresSubmitter(t *testing.T) {
	_, err := New(wizard.NewStore(), nil)
	assert.Error(t, err)
}
