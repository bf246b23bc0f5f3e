package webui

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-strategy-wizard/pkg/render"
	"github.com/goliatone/go-strategy-wizard/pkg/renderers/html"
	"github.com/goliatone/go-strategy-wizard/pkg/strategy"
	"github.com/goliatone/go-strategy-wizard/pkg/wizard"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	s.handleStepForm(w, r, wizard.StepData, nil)
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	s.handleStepForm(w, r, wizard.StepStrategy, s.changeStrategy)
}

// changeStrategy switches strategies when the posted key differs from the
// current one. The rest of the form described the old strategy and is
// dropped.
func (s *Server) changeStrategy(w http.ResponseWriter, r *http.Request) bool {
	raw := strings.TrimSpace(r.PostForm.Get("strategy.key"))
	if raw == "" || raw == string(s.store.StrategyKey()) {
		return false
	}
	key, err := strategy.ParseKey(raw)
	if err != nil {
		s.renderPage(w, r, http.StatusUnprocessableEntity,
			render.WithFieldErrors(map[string][]string{"strategy.key": {err.Error()}}))
		return true
	}
	if err := s.store.SetStrategyKey(key); err != nil {
		s.renderPage(w, r, http.StatusInternalServerError, render.WithFormErrors(err.Error()))
		return true
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return true
}

// handleStepForm applies the posted fields of step, then runs the posted
// operation. Field errors re-render the page with 422; otherwise the browser
// is redirected home.
func (s *Server) handleStepForm(w http.ResponseWriter, r *http.Request, step wizard.Step, before func(http.ResponseWriter, *http.Request) bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	s.edits.Lock()
	defer s.edits.Unlock()

	if s.store.Step() != step {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if before != nil && before(w, r) {
		return
	}

	applier := newFormApplier(s, r.PostForm)
	if err := applier.apply(); err != nil {
		s.logger.Warn("form apply failed", zap.Error(err))
		s.renderPage(w, r, http.StatusUnprocessableEntity,
			render.WithFieldErrors(applier.errors), render.WithFormErrors(err.Error()))
		return
	}
	if len(applier.errors) > 0 {
		s.renderPage(w, r, http.StatusUnprocessableEntity, render.WithFieldErrors(applier.errors))
		return
	}

	op := strings.TrimSpace(r.PostForm.Get("op"))
	switch {
	case op == "" || op == opSave:
	case op == opNext:
		if err := s.store.NextStep(); err != nil {
			if errors.Is(err, wizard.ErrStepIncomplete) {
				s.renderPage(w, r, http.StatusUnprocessableEntity)
				return
			}
			s.renderPage(w, r, http.StatusConflict, render.WithFormErrors(err.Error()))
			return
		}
	case strings.HasPrefix(op, opAdd), strings.HasPrefix(op, opRemove):
		if err := applier.arrayOp(op); err != nil {
			s.renderPage(w, r, http.StatusBadRequest, render.WithFormErrors(err.Error()))
			return
		}
		if len(applier.errors) > 0 {
			s.renderPage(w, r, http.StatusUnprocessableEntity, render.WithFieldErrors(applier.errors))
			return
		}
	default:
		s.renderPage(w, r, http.StatusBadRequest, render.WithFormErrors("unknown operation "+op))
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if s.store.Submitting() {
		http.Error(w, "a simulation is already starting", http.StatusConflict)
		return
	}

	_, err := s.store.Submit(r.Context(), s.submitter)
	switch {
	case err == nil:
		http.Redirect(w, r, html.DefaultActions().Results, http.StatusSeeOther)
	case errors.Is(err, wizard.ErrSubmissionInFlight):
		http.Error(w, "a simulation is already starting", http.StatusConflict)
	case errors.Is(err, wizard.ErrNotReady):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		// LastError carries the failure into the page banner.
		s.renderPage(w, r, http.StatusBadGateway)
	}
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.store.Result(); !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	page, err := s.buildPage()
	if err != nil {
		s.fail(w, err)
		return
	}
	out, err := s.renderer.RenderResults(r.Context(), page)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.write(w, http.StatusOK, out)
}

func (s *Server) buildPage(opts ...render.PageOption) (render.Page, error) {
	if s.title != "" {
		opts = append([]render.PageOption{render.WithTitle(s.title)}, opts...)
	}
	return render.BuildPage(s.store.Snapshot(), s.registry, s.interpreter, opts...)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, opts ...render.PageOption) {
	page, err := s.buildPage(opts...)
	if err != nil {
		s.fail(w, err)
		return
	}
	out, err := s.renderer.Render(r.Context(), page)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.write(w, status, out)
}

func (s *Server) write(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("write response", zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error("render page", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
