package render

import (
	"fmt"

	"github.com/goliatone/go-strategy-wizard/pkg/form"
	"github.com/goliatone/go-strategy-wizard/pkg/schema"
	"github.com/goliatone/go-strategy-wizard/pkg/simulation"
	"github.com/goliatone/go-strategy-wizard/pkg/strategy"
	"github.com/goliatone/go-strategy-wizard/pkg/visibility"
	"github.com/goliatone/go-strategy-wizard/pkg/wizard"
)

// DefaultTitle heads every page unless WithTitle overrides it.
const DefaultTitle = "Strategy simulator"

// Section names used as control path prefixes.
const (
	SectionData       = "data"
	SectionParameters = "parameters"
	SectionLogics     = "logics"
	SectionCommon     = "common"
)

// StrategyOption is one entry of the strategy selector.
type StrategyOption struct {
	Key         string
	Label       string
	Description string
	Selected    bool
}

// SummaryRow is one line of the configuration summary.
type SummaryRow struct {
	Section string
	Label   string
	Path    string
	Value   string
}

// Page is everything a front end needs to draw the current wizard screen.
// Section views are bound to the snapshot the page was built from.
type Page struct {
	Title     string
	Step      wizard.Step
	StepTitle string
	Steps     []wizard.StepInfo

	Data       *form.SectionView
	Strategies []StrategyOption
	Strategy   StrategyOption
	Parameters *form.SectionView
	Logics     *form.SectionView
	Common     *form.SectionView

	Summary []SummaryRow

	CanAdvance     bool
	CanAdvanceData bool
	StepError      string
	Submitting     bool
	SubmitEnabled  bool
	Errors         ErrorMapping
	Result         *simulation.Result
}

// Views returns the section views shown on the current step in render order.
func (p Page) Views() []*form.SectionView {
	switch p.Step {
	case wizard.StepData:
		return []*form.SectionView{p.Data}
	case wizard.StepStrategy:
		return []*form.SectionView{p.Parameters, p.Logics, p.Common}
	default:
		return nil
	}
}

// AllViews returns every bound section view.
func (p Page) AllViews() []*form.SectionView {
	return []*form.SectionView{p.Data, p.Parameters, p.Logics, p.Common}
}

// Control finds a visible control by path across all sections.
func (p Page) Control(path string) (*form.Control, bool) {
	for _, view := range p.AllViews() {
		if view == nil {
			continue
		}
		if c, ok := view.Control(path); ok {
			return c, true
		}
	}
	return nil, false
}

// Banner is the page-level error text, empty when there is none.
func (p Page) Banner() []string {
	return p.Errors.Form
}

// PageOption customises BuildPage.
type PageOption func(*pageConfig)

type pageConfig struct {
	title       string
	fieldErrors map[string][]string
	formErrors  []string
	onChange    form.SectionChangeFunc
}

// WithTitle overrides DefaultTitle.
func WithTitle(title string) PageOption {
	return func(cfg *pageConfig) {
		if title != "" {
			cfg.title = title
		}
	}
}

// WithFieldErrors attaches messages keyed by control path or request path.
func WithFieldErrors(errs map[string][]string) PageOption {
	return func(cfg *pageConfig) {
		for path, messages := range errs {
			cfg.fieldErrors[path] = append(cfg.fieldErrors[path], messages...)
		}
	}
}

// WithFormErrors adds page-level messages.
func WithFormErrors(messages ...string) PageOption {
	return func(cfg *pageConfig) {
		cfg.formErrors = append(cfg.formErrors, messages...)
	}
}

// WithSectionChange makes the page's controls editable: every edit reports
// the section name and its updated slice to fn.
func WithSectionChange(fn form.SectionChangeFunc) PageOption {
	return func(cfg *pageConfig) {
		cfg.onChange = fn
	}
}

// BuildPage interprets every section against snap. Visibility rules see the
// strategy tree as their configuration and the data tree under "data.".
// On the strategy step, validation failures of the current configuration are
// attached to the offending controls.
func BuildPage(snap wizard.Snapshot, reg *strategy.Registry, in *form.Interpreter, opts ...PageOption) (Page, error) {
	if reg == nil || in == nil {
		return Page{}, fmt.Errorf("render: registry and interpreter are required")
	}
	cfg := &pageConfig{
		title:       DefaultTitle,
		fieldErrors: make(map[string][]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	st, err := reg.Schema(snap.StrategyKey)
	if err != nil {
		return Page{}, fmt.Errorf("render: %w", err)
	}

	scope := visibility.Context{Config: snap.StrategyTree, Data: snap.DataTree}
	bind := func(section schema.Section, name string, slice map[string]any) *form.SectionView {
		return in.BindSection(section, name, slice, scope, cfg.onChange)
	}

	page := Page{
		Title:          cfg.title,
		Step:           snap.Step,
		StepTitle:      snap.Step.Title(),
		Steps:          snap.Steps,
		Data:           bind(reg.DataSection(), SectionData, snap.DataTree),
		Parameters:     bind(st.Parameters, SectionParameters, subtree(snap.StrategyTree, SectionParameters)),
		Logics:         bind(st.Logics, SectionLogics, subtree(snap.StrategyTree, SectionLogics)),
		Common:         bind(reg.CommonSection(), SectionCommon, subtree(snap.StrategyTree, SectionCommon)),
		CanAdvance:     snap.CanAdvance,
		CanAdvanceData: snap.Data.CanAdvance(),
		StepError:      snap.StepError,
		Submitting:     snap.Submitting,
		SubmitEnabled:  snap.SubmitEnabled,
		Result:         snap.Result,
	}

	for _, opt := range reg.Options() {
		entry := StrategyOption{
			Key:         string(opt.Key),
			Label:       opt.Label,
			Description: opt.Description,
			Selected:    opt.Key == snap.StrategyKey,
		}
		if entry.Selected {
			page.Strategy = entry
		}
		page.Strategies = append(page.Strategies, entry)
	}

	if snap.Step == wizard.StepStrategy {
		for path, messages := range strategyErrors(snap) {
			cfg.fieldErrors[path] = append(cfg.fieldErrors[path], messages...)
		}
	}

	page.Errors = MapErrors(page.AllViews(), cfg.fieldErrors)
	formErrors := cfg.formErrors
	if snap.LastError != "" {
		formErrors = append(formErrors, snap.LastError)
	}
	page.Errors.Form = MergeFormErrors(page.Errors.Form, formErrors...)
	page.Summary = buildSummary(page)
	return page, nil
}

func strategyErrors(snap wizard.Snapshot) map[string][]string {
	out := make(map[string][]string)
	if cfg, err := strategy.FromTree(snap.StrategyKey, snap.StrategyTree); err == nil {
		for path, messages := range strategy.FieldErrors(strategy.Validate(cfg)) {
			out[path] = append(out[path], messages...)
		}
	}
	if common, err := strategy.CommonFromTree(subtree(snap.StrategyTree, SectionCommon)); err == nil {
		for path, messages := range strategy.FieldErrors(strategy.ValidateCommon(common)) {
			out[path] = append(out[path], messages...)
		}
	}
	return out
}

func subtree(tree map[string]any, key string) map[string]any {
	sub, _ := tree[key].(map[string]any)
	return sub
}

func buildSummary(page Page) []SummaryRow {
	var rows []SummaryRow
	appendView := func(view *form.SectionView) {
		if view == nil {
			return
		}
		for _, c := range form.Leaves(view.Controls) {
			if !c.Editable() {
				continue
			}
			rows = append(rows, SummaryRow{
				Section: view.Title,
				Label:   controlLabel(c),
				Path:    c.Path,
				Value:   DisplayValue(c),
			})
		}
	}

	appendView(page.Data)
	rows = append(rows, SummaryRow{
		Section: "Strategy",
		Label:   "Strategy",
		Path:    "strategy.key",
		Value:   page.Strategy.Label,
	})
	appendView(page.Parameters)
	appendView(page.Logics)
	appendView(page.Common)
	return rows
}

func controlLabel(c *form.Control) string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}

// DisplayValue formats a control value for read-only output. Selects show
// the option label; toggles show Yes or No.
func DisplayValue(c *form.Control) string {
	switch c.Kind {
	case schema.KindSelect:
		if opt, ok := c.Selected(); ok && opt.Label != "" {
			return opt.Label
		}
	case schema.KindToggle:
		if c.Checked() {
			return "Yes"
		}
		return "No"
	}
	return c.Text()
}
