package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/goliatone/go-strategy-wizard/pkg/form"
	"github.com/goliatone/go-strategy-wizard/pkg/render"
	"github.com/goliatone/go-strategy-wizard/pkg/renderers/text"
	"github.com/goliatone/go-strategy-wizard/pkg/schema"
	"github.com/goliatone/go-strategy-wizard/pkg/simulation"
	"github.com/goliatone/go-strategy-wizard/pkg/strategy"
	"github.com/goliatone/go-strategy-wizard/pkg/wizard"
)

const (
	arrayDone   = "Done"
	arrayAdd    = "Add item"
	arrayEdit   = "Edit item"
	arrayRemove = "Remove item"

	confirmRun   = "Run the simulation?"
	confirmRetry = "Retry?"
)

// Session walks one wizard store through its three steps on a terminal.
type Session struct {
	store       *wizard.Store
	submitter   wizard.Submitter
	driver      PromptDriver
	registry    *strategy.Registry
	interpreter *form.Interpreter
	out         io.Writer
	theme       Theme
	logger      *zap.Logger
	spinner     bool
	summary     *text.Renderer

	applyErr error
}

// NewSession prepares a terminal session over store. Submissions go through
// submitter.
func NewSession(store *wizard.Store, submitter wizard.Submitter, opts ...Option) *Session {
	s := &Session{
		store:     store,
		submitter: submitter,
		out:       os.Stdout,
		theme:     DefaultTheme(),
		logger:    zap.NewNop(),
		spinner:   true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(s.out)
	}
	if s.registry == nil {
		s.registry = strategy.DefaultRegistry()
	}
	if s.interpreter == nil {
		s.interpreter = form.NewInterpreter(form.WithLogger(s.logger))
	}
	s.summary = text.New()
	return s
}

// Run prompts until the simulation starts, the user declines to retry a
// failed submission, or input is aborted.
func (s *Session) Run(ctx context.Context) (simulation.Result, error) {
	if s.submitter == nil {
		return simulation.Result{}, ErrNoSubmitter
	}
	for {
		if err := ctx.Err(); err != nil {
			return simulation.Result{}, err
		}
		var err error
		switch s.store.Step() {
		case wizard.StepData:
			err = s.runFormStep(ctx, nil)
		case wizard.StepStrategy:
			err = s.runFormStep(ctx, s.promptStrategy)
		default:
			return s.runExecution(ctx)
		}
		if err != nil {
			return simulation.Result{}, err
		}
	}
}

// runFormStep prompts every visible field of the current step and then tries
// to advance. A failed gate is reported and the step starts over.
func (s *Session) runFormStep(ctx context.Context, before func(context.Context) error) error {
	page, err := s.page()
	if err != nil {
		return err
	}
	s.header(page)

	if before != nil {
		if err := before(ctx); err != nil {
			return err
		}
	}
	if err := s.promptSections(ctx); err != nil {
		return err
	}

	from := s.store.Step()
	if err := s.store.NextStep(); err != nil {
		if !errors.Is(err, wizard.ErrStepIncomplete) {
			return err
		}
		fmt.Fprintln(s.out, s.theme.Banner(err.Error()))
		fmt.Fprintln(s.out)
		return nil
	}
	s.logger.Debug("tui step completed", zap.Int("step", int(from)))
	return nil
}

func (s *Session) promptStrategy(ctx context.Context) error {
	page, err := s.page()
	if err != nil {
		return err
	}

	labels := make([]string, len(page.Strategies))
	descriptions := make([]string, len(page.Strategies))
	current := 0
	for i, opt := range page.Strategies {
		labels[i] = opt.Label
		descriptions[i] = opt.Description
		if opt.Selected {
			current = i
		}
	}

	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      "Strategy",
		Options:      labels,
		Descriptions: descriptions,
		DefaultIndex: current,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(page.Strategies) {
		idx = current
	}
	key, err := strategy.ParseKey(page.Strategies[idx].Key)
	if err != nil {
		return err
	}
	if err := s.store.SetStrategyKey(key); err != nil {
		return err
	}
	if desc := page.Strategies[idx].Description; desc != "" {
		fmt.Fprintln(s.out, s.theme.Help.Render(desc))
	}
	return nil
}

// promptSections asks for one control at a time, rebuilding the page after
// every answer so fields revealed by a visibility rule are asked too.
func (s *Session) promptSections(ctx context.Context) error {
	done := make(map[string]bool)
	lastSection := ""
	for {
		page, err := s.page()
		if err != nil {
			return err
		}
		view, next, key := nextControl(page, done)
		if next == nil {
			return nil
		}
		done[key] = true

		if view.Title != lastSection {
			fmt.Fprintln(s.out, s.theme.Section.Render(view.Title))
			lastSection = view.Title
		}
		if err := s.promptControl(ctx, next, page.Errors.For(next.Path)); err != nil {
			return err
		}
	}
}

// nextControl returns the first leaf not yet prompted and the key it is
// tracked under.
func nextControl(page render.Page, done map[string]bool) (*form.SectionView, *form.Control, string) {
	for _, view := range page.Views() {
		if view == nil {
			continue
		}
		for _, c := range form.Leaves(view.Controls) {
			key := c.Path
			if c.Diagnostic != "" {
				key = "diagnostic:" + c.Path
			}
			if !done[key] {
				return view, c, key
			}
		}
	}
	return nil, nil, ""
}

func (s *Session) promptControl(ctx context.Context, c *form.Control, errs []string) error {
	if c.Diagnostic != "" {
		return s.driver.Info(ctx, s.theme.Help.Render("⚠ "+c.Diagnostic))
	}
	if len(errs) > 0 {
		if err := s.driver.Info(ctx, s.theme.Banner(errs...)); err != nil {
			return err
		}
	}

	label := c.Label
	if label == "" {
		label = c.Key
	}

	switch c.Kind {
	case schema.KindSelect:
		labels := make([]string, len(c.Options))
		descriptions := make([]string, len(c.Options))
		for i, opt := range c.Options {
			labels[i] = opt.Label
			descriptions[i] = opt.Description
		}
		for {
			idx, err := s.driver.Select(ctx, SelectConfig{
				Message:      label,
				Options:      labels,
				Descriptions: descriptions,
				DefaultIndex: c.SelectedIndex(),
				Help:         c.Description,
			})
			if err != nil {
				return err
			}
			if idx < 0 || idx >= len(c.Options) {
				if err := s.driver.Info(ctx, s.theme.Banner("pick one of the listed options")); err != nil {
					return err
				}
				continue
			}
			return s.commit(c.Set(c.Options[idx].Value))
		}
	case schema.KindToggle:
		checked, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: label,
			Default: c.Checked(),
			Help:    c.Description,
		})
		if err != nil {
			return err
		}
		return s.commit(c.Set(checked))
	case schema.KindArray:
		return s.editArray(ctx, c, label)
	default:
		for {
			raw, err := s.driver.Input(ctx, InputConfig{
				Message: label,
				Default: c.Text(),
				Help:    c.Description,
			})
			if err != nil {
				return err
			}
			if err := c.SetText(raw); err != nil {
				if err := s.driver.Info(ctx, s.theme.Banner(err.Error())); err != nil {
					return err
				}
				continue
			}
			return s.commit(nil)
		}
	}
}

// editArray offers add, edit and remove until the user picks Done.
func (s *Session) editArray(ctx context.Context, c *form.Control, label string) error {
	for {
		items := c.Items()
		actions := []string{arrayDone, arrayAdd}
		if len(items) > 0 {
			actions = append(actions, arrayEdit, arrayRemove)
		}
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message: fmt.Sprintf("%s [%s]", label, c.Text()),
			Options: actions,
			Help:    c.Description,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(actions) {
			continue
		}

		var editErr error
		switch actions[idx] {
		case arrayDone:
			return nil
		case arrayAdd:
			raw, err := s.driver.Input(ctx, InputConfig{Message: "New item", Default: c.Placeholder})
			if err != nil {
				return err
			}
			if editErr = c.Append(); editErr == nil {
				if editErr = c.UpdateText(len(items), raw); editErr != nil {
					_ = c.Remove(len(items))
				}
			}
		case arrayEdit:
			i, err := s.pickItem(ctx, items, "Edit which item?")
			if err != nil {
				return err
			}
			raw, err := s.driver.Input(ctx, InputConfig{
				Message: fmt.Sprintf("Item %d", i+1),
				Default: form.FormatValue(items[i]),
			})
			if err != nil {
				return err
			}
			editErr = c.UpdateText(i, raw)
		case arrayRemove:
			i, err := s.pickItem(ctx, items, "Remove which item?")
			if err != nil {
				return err
			}
			editErr = c.Remove(i)
		}

		if editErr != nil {
			if err := s.driver.Info(ctx, s.theme.Banner(editErr.Error())); err != nil {
				return err
			}
		}
		if err := s.commit(nil); err != nil {
			return err
		}
	}
}

func (s *Session) pickItem(ctx context.Context, items []any, message string) (int, error) {
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = fmt.Sprintf("%d: %s", i+1, form.FormatValue(item))
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: message, Options: labels})
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(items) {
		return 0, fmt.Errorf("%w: item %d", form.ErrIndexOutOfRange, idx)
	}
	return idx, nil
}

// commit returns the edit error, or the first error raised while the store
// applied the edit.
func (s *Session) commit(err error) error {
	applyErr := s.applyErr
	s.applyErr = nil
	if err != nil {
		return err
	}
	return applyErr
}

func (s *Session) apply(name string, slice map[string]any) {
	var err error
	if name == render.SectionData {
		err = s.store.ApplyData(slice)
	} else {
		err = s.store.ApplyStrategySection(name, slice)
	}
	if err != nil && s.applyErr == nil {
		s.applyErr = err
	}
}

func (s *Session) page() (render.Page, error) {
	return render.BuildPage(s.store.Snapshot(), s.registry, s.interpreter, render.WithSectionChange(s.apply))
}

func (s *Session) header(page render.Page) {
	fmt.Fprintln(s.out, s.theme.Title.Render(page.Title))
	fmt.Fprintln(s.out, s.theme.Progress(page.Steps))
	fmt.Fprintln(s.out)
}

func (s *Session) runExecution(ctx context.Context) (simulation.Result, error) {
	page, err := s.page()
	if err != nil {
		return simulation.Result{}, err
	}
	s.header(page)
	fmt.Fprintln(s.out, s.summary.Summary(page.Summary))

	run, err := s.driver.Confirm(ctx, ConfirmConfig{Message: confirmRun, Default: true})
	if err != nil {
		return simulation.Result{}, err
	}
	if !run {
		return simulation.Result{}, ErrAborted
	}

	for {
		res, err := s.submit(ctx)
		if err == nil {
			fmt.Fprintln(s.out, s.theme.Success.Render(fmt.Sprintf("Simulation %s is %s", res.ID, res.Status)))
			return res, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return simulation.Result{}, err
		}

		fmt.Fprintln(s.out, s.theme.Banner(s.store.LastError()))
		retry, promptErr := s.driver.Confirm(ctx, ConfirmConfig{Message: confirmRetry, Default: true})
		if promptErr != nil {
			return simulation.Result{}, promptErr
		}
		if !retry {
			return simulation.Result{}, err
		}
	}
}

func (s *Session) submit(ctx context.Context) (simulation.Result, error) {
	if !s.spinner {
		return s.store.Submit(ctx, s.submitter)
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetDescription("Starting simulation"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	stop := make(chan struct{})
	spun := make(chan struct{})
	go func() {
		defer close(spun)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	res, err := s.store.Submit(ctx, s.submitter)
	close(stop)
	<-spun
	_ = bar.Finish()
	return res, err
}
