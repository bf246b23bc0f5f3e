package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() Payload {
	return Payload{
		Data: Data{Market: "crypto", Symbol: "BTC/USDT", Timeframe: "1m", StartDate: "2024-01-01", EndDate: "2024-06-01"},
		Strategy: Strategy{
			Key:        "ma",
			Parameters: map[string]any{"timeframes": []any{"15m"}, "periods": []any{3.0, 5.0, 20.0}},
			Logics:     map[string]any{"tpPct": 0.01, "slPct": 0.01, "maxBarsTimeframe": "15m", "maxBars": 6.0},
			Common:     map[string]any{"priceCheckingTimeframe": "1m", "chartTimeframe": "15m", "trendFilterEnabled": false, "watcherHistoryHours": 48.0},
		},
	}
}

func TestClientSubmitSuccess(t *testing.T) {
	var received map[string]any
	var requestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		requestID = r.Header.Get(RequestIDHeader)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"id":"sim-1","status":"queued"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithDelay(0))
	res, err := client.Submit(context.Background(), samplePayload())
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "sim-1", res.ID)
	assert.Equal(t, "queued", res.Status)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, requestID, res.RequestID)

	data := received["data"].(map[string]any)
	assert.Equal(t, "BTC/USDT", data["symbol"])
	assert.Equal(t, "ma", received["strategy"].(map[string]any)["key"])
}

func TestClientSubmitStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, WithDelay(0)).Submit(context.Background(), samplePayload())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 500, statusErr.StatusCode())
	assert.Equal(t, "backend request failed: 500 Internal Server Error", err.Error())
}

func TestClientSubmitNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, WithDelay(0)).Submit(context.Background(), samplePayload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulation: request")
}

func TestClientDelayHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewClient(srv.URL, WithDelay(time.Hour)).Submit(ctx, samplePayload())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClientRejectsPayloadOutsideContract(t *testing.T) {
	contract, err := BundledContract()
	require.NoError(t, err)

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := samplePayload()
	p.Data.Market = "futures"
	_, err = NewClient(srv.URL, WithDelay(0), WithContract(contract)).Submit(context.Background(), p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrContractViolation))
	assert.False(t, called)
}

func TestClientSubmitAcceptsNonObjectBody(t *testing.T) {
	for name, body := range map[string]string{
		"array":    `["sim-1"]`,
		"string":   `"queued"`,
		"not json": `accepted`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			res, err := NewClient(srv.URL, WithDelay(0)).Submit(context.Background(), samplePayload())
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, res.StatusCode)
			assert.Empty(t, res.ID)
			assert.Nil(t, res.Body)
		})
	}
}

func TestClientTimeoutSurvivesHTTPClientOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL,
		WithDelay(0),
		WithTimeout(50*time.Millisecond),
		WithHTTPClient(&http.Client{}),
	)
	start := time.Now()
	_, err := client.Submit(context.Background(), samplePayload())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}
