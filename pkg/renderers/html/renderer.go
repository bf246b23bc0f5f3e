package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-strategy-wizard/pkg/render"
)

const (
	pageTemplate    = "templates/page.html"
	resultsTemplate = "templates/results.html"
)

// Actions are the form targets and links the templates point at.
type Actions struct {
	Home     string
	Data     string
	Strategy string
	Submit   string
	Results  string
}

// DefaultActions match the routes served by the web front end.
func DefaultActions() Actions {
	return Actions{
		Home:     "/",
		Data:     "/data",
		Strategy: "/strategy",
		Submit:   "/submit",
		Results:  "/simulation/results",
	}
}

type Option func(*config)

type config struct {
	templates  fs.FS
	actions    Actions
	stylesheet string
	theme      *theme.Manifest
	variant    string
}

// WithTemplatesFS supplies an alternate template bundle. It must contain the
// same file names as TemplatesFS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templates = os.DirFS(path)
		}
	}
}

// WithActions overrides the form targets, for example when the wizard is
// mounted below a prefix.
func WithActions(actions Actions) Option {
	return func(cfg *config) {
		cfg.actions = actions
	}
}

// WithStylesheet replaces the inline stylesheet.
func WithStylesheet(css string) Option {
	return func(cfg *config) {
		cfg.stylesheet = css
	}
}

// WithTheme replaces the palette. An empty variant uses the base tokens.
func WithTheme(manifest *theme.Manifest, variant string) Option {
	return func(cfg *config) {
		if manifest != nil {
			cfg.theme = manifest
		}
		cfg.variant = variant
	}
}

// Renderer draws wizard pages as HTML documents.
type Renderer struct {
	engine     *engine
	actions    Actions
	stylesheet string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templates:  TemplatesFS(),
		actions:    DefaultActions(),
		stylesheet: embeddedStylesheet,
		theme:      DefaultTheme(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	eng, err := newEngine(cfg.templates)
	if err != nil {
		return nil, err
	}
	vars, err := palette(cfg.theme, cfg.variant)
	if err != nil {
		return nil, err
	}
	return &Renderer{engine: eng, actions: cfg.actions, stylesheet: rootRule(vars) + cfg.stylesheet}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws the wizard screen for page.Step.
func (r *Renderer) Render(ctx context.Context, page render.Page) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	components := &componentRenderer{engine: r.engine, errors: page.Errors}
	var sections []sectionView
	for _, view := range page.Views() {
		section, err := components.section(view)
		if err != nil {
			return nil, fmt.Errorf("html: %w", err)
		}
		sections = append(sections, section)
	}

	data := r.baseContext(page)
	data.Update(pongo2.Context{
		"stepTitle":           page.StepTitle,
		"step":                int(page.Step),
		"steps":               page.Steps,
		"sections":            sections,
		"strategies":          page.Strategies,
		"strategyDescription": sanitizeDescription(page.Strategy.Description),
		"summary":             page.Summary,
		"banner":              page.Banner(),
		"stepError":           page.StepError,
		"canAdvance":          page.CanAdvance,
		"canAdvanceData":      page.CanAdvanceData,
		"submitEnabled":       page.SubmitEnabled,
		"submitting":          page.Submitting,
	})

	out, err := r.engine.render(pageTemplate, data)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// RenderResults draws the page shown after a successful submission.
func (r *Renderer) RenderResults(ctx context.Context, page render.Page) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := r.engine.render(resultsTemplate, r.baseContext(page))
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func (r *Renderer) baseContext(page render.Page) pongo2.Context {
	data := pongo2.Context{
		"title":      page.Title,
		"stylesheet": r.stylesheet,
		"actions": map[string]string{
			"home":     r.actions.Home,
			"data":     r.actions.Data,
			"strategy": r.actions.Strategy,
			"submit":   r.actions.Submit,
			"results":  r.actions.Results,
		},
	}
	if page.Result != nil {
		data["result"] = *page.Result
	}
	return data
}
