package html

import (
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-strategy-wizard/pkg/form"
	"github.com/goliatone/go-strategy-wizard/pkg/render"
	"github.com/goliatone/go-strategy-wizard/pkg/schema"
)

const componentDir = "templates/components/"

// componentTemplates maps a control kind to its template. Kinds without an
// entry render through the diagnostic component.
var componentTemplates = map[schema.Kind]string{
	schema.KindText:        componentDir + "text.html",
	schema.KindNumber:      componentDir + "number.html",
	schema.KindSelect:      componentDir + "select.html",
	schema.KindToggle:      componentDir + "toggle.html",
	schema.KindArray:       componentDir + "array.html",
	schema.KindGrid:        componentDir + "grid.html",
	schema.KindConditional: componentDir + "conditional.html",
}

const diagnosticTemplate = componentDir + "diagnostic.html"

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type itemView struct {
	Index int
	Name  string
	Value string
}

// fieldView is the template-facing shape of one control.
type fieldView struct {
	Kind        string
	Name        string
	ID          string
	Label       string
	Description string
	Placeholder string
	Value       string
	Checked     bool
	Options     []optionView
	Unselected  bool
	Items       []itemView
	InputType   string
	Step        string
	Min         string
	Max         string
	Columns     int
	Children    string
	Diagnostic  string
	Errors      []string
}

// sectionView is the template-facing shape of one section.
type sectionView struct {
	Name   string
	Title  string
	Icon   string
	Fields string
}

type componentRenderer struct {
	engine *engine
	errors render.ErrorMapping
}

func (r *componentRenderer) section(view *form.SectionView) (sectionView, error) {
	if view == nil {
		return sectionView{}, nil
	}
	fields, err := r.controls(view.Controls)
	if err != nil {
		return sectionView{}, fmt.Errorf("section %q: %w", view.Name, err)
	}
	return sectionView{
		Name:   view.Name,
		Title:  view.Title,
		Icon:   iconMarkup(view.Icon),
		Fields: fields,
	}, nil
}

func (r *componentRenderer) controls(controls []*form.Control) (string, error) {
	var b strings.Builder
	for _, c := range controls {
		out, err := r.control(c)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

func (r *componentRenderer) control(c *form.Control) (string, error) {
	name := diagnosticTemplate
	if c.Diagnostic == "" {
		if tpl, ok := componentTemplates[c.Kind]; ok {
			name = tpl
		}
	}

	view := fieldView{
		Kind:        string(c.Kind),
		Name:        c.Path,
		ID:          domID(c.Path),
		Label:       c.Label,
		Description: sanitizeDescription(c.Description),
		Placeholder: c.Placeholder,
		Value:       c.Text(),
		Checked:     c.Checked(),
		Columns:     c.Columns,
		Diagnostic:  c.Diagnostic,
		Errors:      r.errors.For(c.Path),
	}
	if name == diagnosticTemplate && view.Diagnostic == "" {
		view.Diagnostic = fmt.Sprintf("unsupported field kind %q", c.Kind)
	}
	if view.Label == "" {
		view.Label = c.Key
	}

	switch c.Kind {
	case schema.KindSelect:
		view.Unselected = c.SelectedIndex() < 0
		for _, opt := range c.Options {
			view.Options = append(view.Options, optionView{
				Value:    opt.Value,
				Label:    opt.Label,
				Selected: c.Value == opt.Value,
			})
		}
	case schema.KindNumber:
		view.Step, view.Min, view.Max = numericAttrs(c.Numeric)
	case schema.KindArray:
		view.InputType = "text"
		if c.Element == schema.ElementNumber {
			view.InputType = "number"
			view.Step, view.Min, view.Max = numericAttrs(c.Numeric)
		}
		for i, item := range c.Items() {
			view.Items = append(view.Items, itemView{
				Index: i,
				Name:  c.ItemPath(i),
				Value: form.FormatValue(item),
			})
		}
	case schema.KindGrid, schema.KindConditional:
		children, err := r.controls(c.Children)
		if err != nil {
			return "", err
		}
		view.Children = children
	}

	out, err := r.engine.render(name, pongo2.Context{"field": view})
	if err != nil {
		return "", fmt.Errorf("render %s control %q: %w", c.Kind, c.Path, err)
	}
	return out, nil
}

func numericAttrs(n *schema.NumericConstraints) (step, min, max string) {
	step = "1"
	if n == nil {
		return step, "", ""
	}
	if n.Step != nil {
		step = form.FormatNumber(*n.Step)
	}
	if n.Min != nil {
		min = form.FormatNumber(*n.Min)
	}
	if n.Max != nil {
		max = form.FormatNumber(*n.Max)
	}
	return step, min, max
}
