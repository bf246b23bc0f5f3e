package text

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	prettytext "github.com/jedib0t/go-pretty/v6/text"

	"github.com/goliatone/go-strategy-wizard/pkg/form"
	"github.com/goliatone/go-strategy-wizard/pkg/render"
	"github.com/goliatone/go-strategy-wizard/pkg/schema"
	"github.com/goliatone/go-strategy-wizard/pkg/wizard"
)

// Renderer draws pages for terminals and logs.
type Renderer struct {
	style table.Style
}

var _ render.Renderer = (*Renderer)(nil)

type Option func(*Renderer)

// WithTableStyle overrides the rounded summary table style.
func WithTableStyle(style table.Style) Option {
	return func(r *Renderer) {
		r.style = style
	}
}

func New(opts ...Option) *Renderer {
	r := &Renderer{style: table.StyleRounded}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "text"
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render writes the step progress, any errors, and either the current step's
// fields or, on the execution step, the summary table.
func (r *Renderer) Render(ctx context.Context, page render.Page) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(page.Title)
	b.WriteString("\n")
	b.WriteString(StepProgress(page.Steps))
	b.WriteString("\n\n")

	for _, message := range page.Banner() {
		fmt.Fprintf(&b, "! %s\n", message)
	}

	switch page.Step {
	case wizard.StepExecution:
		b.WriteString(r.Summary(page.Summary))
		b.WriteString("\n")
		if page.Result != nil {
			fmt.Fprintf(&b, "\nSimulation %s is %s\n", page.Result.ID, page.Result.Status)
		}
	default:
		if page.Step == wizard.StepStrategy {
			fmt.Fprintf(&b, "Strategy: %s\n", page.Strategy.Label)
			if page.Strategy.Description != "" {
				fmt.Fprintf(&b, "  %s\n", page.Strategy.Description)
			}
			b.WriteString("\n")
		}
		for _, view := range page.Views() {
			writeSection(&b, view, page.Errors)
		}
		if page.StepError != "" {
			fmt.Fprintf(&b, "Cannot continue: %s\n", page.StepError)
		}
	}
	return []byte(b.String()), nil
}

// StepProgress renders "[✓] 1 Data configuration > [2] Strategy …".
func StepProgress(steps []wizard.StepInfo) string {
	parts := make([]string, 0, len(steps))
	for _, s := range steps {
		marker := fmt.Sprintf("%d", s.Number)
		switch {
		case s.Completed:
			marker = "✓"
		case s.Active:
			marker = fmt.Sprintf("*%d", s.Number)
		}
		parts = append(parts, fmt.Sprintf("[%s] %s", marker, s.Title))
	}
	return strings.Join(parts, " > ")
}

// Summary renders rows as a two column table, one block per section.
func (r *Renderer) Summary(rows []render.SummaryRow) string {
	t := table.NewWriter()
	t.SetTitle("CONFIGURATION SUMMARY")
	t.SetStyle(r.style)

	section := ""
	for i, row := range rows {
		if i > 0 && row.Section != section {
			t.AppendSeparator()
		}
		section = row.Section
		t.AppendRow(table.Row{row.Label, row.Value})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, Align: prettytext.AlignLeft},
		{Number: 2, WidthMin: 20, WidthMax: 48, Align: prettytext.AlignLeft},
	})
	return t.Render()
}

func writeSection(b *strings.Builder, view *form.SectionView, errs render.ErrorMapping) {
	if view == nil {
		return
	}
	fmt.Fprintf(b, "== %s ==\n", view.Title)
	for _, c := range form.Leaves(view.Controls) {
		if c.Diagnostic != "" {
			fmt.Fprintf(b, "  ? %s\n", c.Diagnostic)
			continue
		}
		label := c.Label
		if label == "" {
			label = c.Key
		}
		value := render.DisplayValue(c)
		if c.Kind == schema.KindArray {
			value = "[" + value + "]"
		}
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(b, "  %s: %s\n", label, value)
		for _, message := range errs.For(c.Path) {
			fmt.Fprintf(b, "    ! %s\n", message)
		}
	}
	b.WriteString("\n")
}
