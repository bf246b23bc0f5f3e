package webui

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/goliatone/go-strategy-wizard/internal/metrics"
	"github.com/goliatone/go-strategy-wizard/pkg/form"
	"github.com/goliatone/go-strategy-wizard/pkg/renderers/html"
	"github.com/goliatone/go-strategy-wizard/pkg/strategy"
	"github.com/goliatone/go-strategy-wizard/pkg/wizard"
)

// Server routes browser requests to one wizard store.
type Server struct {
	store       *wizard.Store
	submitter   wizard.Submitter
	registry    *strategy.Registry
	interpreter *form.Interpreter
	renderer    *html.Renderer
	metrics     *metrics.Recorder
	logger      *zap.Logger
	title       string

	// edits serialises form application so two tabs cannot interleave
	// partial section updates.
	edits sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics counts requests and exposes GET /metrics.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithRegistry(reg *strategy.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

func WithInterpreter(in *form.Interpreter) Option {
	return func(s *Server) {
		if in != nil {
			s.interpreter = in
		}
	}
}

// WithRenderer overrides the embedded HTML templates.
func WithRenderer(r *html.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.renderer = r
		}
	}
}

func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// New builds a server. submitter is required.
func New(store *wizard.Store, submitter wizard.Submitter, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("webui: store is required")
	}
	if submitter == nil {
		return nil, fmt.Errorf("webui: submitter is required")
	}
	s := &Server{
		store:     store,
		submitter: submitter,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.registry == nil {
		s.registry = strategy.DefaultRegistry()
	}
	if s.interpreter == nil {
		s.interpreter = form.NewInterpreter(form.WithLogger(s.logger))
	}
	if s.renderer == nil {
		r, err := html.New()
		if err != nil {
			return nil, fmt.Errorf("webui: %w", err)
		}
		s.renderer = r
	}
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.instrument)

	actions := html.DefaultActions()
	r.HandleFunc(actions.Home, s.handleIndex).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(actions.Data, s.handleData).Methods(http.MethodPost)
	r.HandleFunc(actions.Strategy, s.handleStrategy).Methods(http.MethodPost)
	r.HandleFunc(actions.Submit, s.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc(actions.Results, s.handleResults).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	return r
}
