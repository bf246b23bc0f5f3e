package simbackend

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-strategy-wizard/pkg/simulation"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// StatusQueued is the only status a fresh simulation reports.
const StatusQueued = "queued"

type acceptedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type problemResponse struct {
	Error string `json:"error"`
}

// Handler builds a handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return HandlerWithOptions(opts)
}

// HandlerWithOptions builds a handler from a pre-constructed Options value.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		log := opts.Logger.With(zap.String("request_id", r.Header.Get(simulation.RequestIDHeader)))

		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes))
		if err != nil {
			writeProblem(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}

		if !wait(r, opts.Delay) {
			return
		}

		if opts.FailStatus != 0 {
			log.Info("mock backend forcing failure", zap.Int("status", opts.FailStatus))
			writeProblem(w, opts.FailStatus, http.StatusText(opts.FailStatus))
			return
		}

		contract := opts.Contract
		if contract == nil {
			contract, err = simulation.BundledContract()
			if err != nil {
				log.Error("mock backend contract unavailable", zap.Error(err))
				writeProblem(w, http.StatusInternalServerError, "contract unavailable")
				return
			}
		}
		if err := contract.ValidateBody(raw); err != nil {
			log.Info("mock backend rejected body", zap.Error(err))
			writeProblem(w, http.StatusBadRequest, err.Error())
			return
		}

		id := opts.NewID()
		log.Info("mock backend queued simulation", zap.String("id", id))
		writeJSON(w, http.StatusAccepted, acceptedResponse{ID: id, Status: StatusQueued})

		if opts.OnAccept != nil {
			var body map[string]any
			if err := json.Unmarshal(raw, &body); err == nil {
				opts.OnAccept(id, body)
			}
		}
	})
}

func wait(r *http.Request, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-r.Context().Done():
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, problemResponse{Error: msg})
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}
