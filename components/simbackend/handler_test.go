package simbackend

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-strategy-wizard/pkg/simulation"
	"github.com/goliatone/go-strategy-wizard/pkg/testsupport"
)

func postJSON(t *testing.T, h http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/simulations", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewHandler_AcceptsValidPayload(t *testing.T) {
	var acceptedID string
	h := NewHandler(
		WithIDGenerator(func() string { return "sim-1" }),
		WithOnAccept(func(id string, body map[string]any) { acceptedID = id }),
	)

	rec := postJSON(t, h, testsupport.Payload())
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}
	var payload acceptedResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.ID != "sim-1" || payload.Status != StatusQueued {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	if acceptedID != "sim-1" {
		t.Fatalf("expected accept hook to see sim-1, got %q", acceptedID)
	}
}

func TestNewHandler_RejectsContractViolation(t *testing.T) {
	p := testsupport.Payload()
	p.Data.Market = "bonds"

	rec := postJSON(t, NewHandler(), p)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	var problem problemResponse
	if err := json.NewDecoder(rec.Body).Decode(&problem); err != nil {
		t.Fatalf("failed to decode problem: %v", err)
	}
	if !strings.Contains(problem.Error, "violates contract") {
		t.Fatalf("unexpected problem: %q", problem.Error)
	}
}

func TestNewHandler_RejectsNonJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/simulations", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	NewHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestNewHandler_ForcedFailure(t *testing.T) {
	rec := postJSON(t, NewHandler(WithFailStatus(http.StatusServiceUnavailable)), testsupport.Payload())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestNewOptions_ClampsFailStatus(t *testing.T) {
	opts := NewOptions(WithFailStatus(200), WithRoutePath(""), WithMaxBodyBytes(-1))
	if opts.FailStatus != http.StatusInternalServerError {
		t.Fatalf("expected fail status 500, got %d", opts.FailStatus)
	}
	if opts.RoutePath != simulation.SimulationsPath {
		t.Fatalf("expected default route, got %q", opts.RoutePath)
	}
	if opts.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Fatalf("expected default body limit, got %d", opts.MaxBodyBytes)
	}
}

func TestNewHandler_GuardRejects(t *testing.T) {
	h := NewHandler(WithGuard(func(r *http.Request) error {
		return StatusError{Code: http.StatusUnauthorized}
	}))
	rec := postJSON(t, h, testsupport.Payload())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestNewHandler_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/simulations", nil)
	rec := httptest.NewRecorder()
	NewHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("unexpected Allow header: %q", allow)
	}
}

func TestNewHandler_BodyTooLarge(t *testing.T) {
	rec := postJSON(t, NewHandler(WithMaxBodyBytes(16)), testsupport.Payload())
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rec.Code)
	}
}

func TestClientAgainstMockBackend(t *testing.T) {
	srv := httptest.NewServer(NewHandler(WithIDGenerator(func() string { return "sim-9" })))
	defer srv.Close()

	client := simulation.NewClient(srv.URL+"/simulations", simulation.WithDelay(0))
	res, err := client.Submit(testsupport.Context(), testsupport.Payload())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.StatusCode != http.StatusAccepted || res.ID != "sim-9" || res.Status != StatusQueued {
		t.Fatalf("unexpected result: %#v", res)
	}

	failing := httptest.NewServer(NewHandler(WithFailStatus(http.StatusBadGateway)))
	defer failing.Close()

	_, err = simulation.NewClient(failing.URL, simulation.WithDelay(0)).Submit(testsupport.Context(), testsupport.Payload())
	var statusErr *simulation.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode() != http.StatusBadGateway {
		t.Fatalf("expected 502 status error, got %v", err)
	}
}
