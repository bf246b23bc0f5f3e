package webui

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-strategy-wizard/pkg/form"
	"github.com/goliatone/go-strategy-wizard/pkg/render"
	"github.com/goliatone/go-strategy-wizard/pkg/schema"
)

// maxApplyPasses bounds how often a request is re-applied to pick up fields
// that earlier values made visible.
const maxApplyPasses = 4

// Form operations carried by the submit button.
const (
	opSave   = "save"
	opNext   = "next"
	opAdd    = "add:"
	opRemove = "remove:"
)

// formApplier writes posted values into the store through freshly built
// pages, collecting per-path error messages.
type formApplier struct {
	server  *Server
	values  url.Values
	applied map[string]bool
	errors  map[string][]string
	failure error
}

func newFormApplier(s *Server, values url.Values) *formApplier {
	return &formApplier{
		server:  s,
		values:  values,
		applied: make(map[string]bool),
		errors:  make(map[string][]string),
	}
}

func (a *formApplier) page() (render.Page, error) {
	return render.BuildPage(a.server.store.Snapshot(), a.server.registry, a.server.interpreter,
		render.WithSectionChange(a.onSectionChange))
}

func (a *formApplier) onSectionChange(name string, slice map[string]any) {
	var err error
	if name == render.SectionData {
		err = a.server.store.ApplyData(slice)
	} else {
		err = a.server.store.ApplyStrategySection(name, slice)
	}
	if err != nil && a.failure == nil {
		a.failure = err
	}
}

func (a *formApplier) addError(path string, err error) {
	a.errors[path] = append(a.errors[path], err.Error())
}

// apply sets every posted control visible on the current step. Values that
// reveal further fields are followed by another pass.
func (a *formApplier) apply() error {
	for pass := 0; pass < maxApplyPasses; pass++ {
		page, err := a.page()
		if err != nil {
			return err
		}
		changed := false
		for _, view := range page.Views() {
			if view == nil {
				continue
			}
			for _, c := range form.Leaves(view.Controls) {
				if a.applied[c.Path] || !c.Editable() {
					continue
				}
				if a.applyControl(c) {
					a.applied[c.Path] = true
					changed = true
				}
			}
		}
		if a.failure != nil {
			return a.failure
		}
		if !changed {
			return nil
		}
	}
	return nil
}

// applyControl reports whether the form carried a value for c.
func (a *formApplier) applyControl(c *form.Control) bool {
	if c.Kind == schema.KindArray {
		raws, ok := arrayValues(a.values, c.Path)
		if !ok {
			return false
		}
		items := make([]any, 0, len(raws))
		for i, raw := range raws {
			if c.Element == schema.ElementNumber {
				n, err := form.ParseNumber(raw, c.Numeric)
				if err != nil {
					a.addError(c.ItemPath(i), err)
					continue
				}
				items = append(items, n)
				continue
			}
			items = append(items, strings.TrimSpace(raw))
		}
		if len(items) != len(raws) {
			return true
		}
		if err := c.Set(items); err != nil {
			a.addError(c.Path, err)
		}
		return true
	}

	posted, ok := a.values[c.Path]
	if !ok || len(posted) == 0 {
		return false
	}
	// Toggles post a hidden "false" followed by the checkbox when checked.
	raw := posted[len(posted)-1]
	if err := c.SetText(raw); err != nil {
		a.addError(c.Path, err)
	}
	return true
}

// arrayValues collects path.0, path.1, … in index order.
func arrayValues(values url.Values, path string) ([]string, bool) {
	prefix := path + "."
	type item struct {
		index int
		value string
	}
	var items []item
	for key, vals := range values {
		if !strings.HasPrefix(key, prefix) || len(vals) == 0 {
			continue
		}
		i, err := strconv.Atoi(strings.TrimPrefix(key, prefix))
		if err != nil || i < 0 {
			continue
		}
		items = append(items, item{index: i, value: vals[len(vals)-1]})
	}
	if len(items) == 0 {
		return nil, false
	}
	sort.Slice(items, func(i, j int) bool { return items[i].index < items[j].index })
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.value
	}
	return out, true
}

// arrayOp runs an add:<path> or remove:<path>.<i> operation.
func (a *formApplier) arrayOp(op string) error {
	page, err := a.page()
	if err != nil {
		return err
	}

	var (
		path  string
		index = -1
	)
	switch {
	case strings.HasPrefix(op, opAdd):
		path = strings.TrimPrefix(op, opAdd)
	case strings.HasPrefix(op, opRemove):
		target := strings.TrimPrefix(op, opRemove)
		dot := strings.LastIndex(target, ".")
		if dot <= 0 {
			return fmt.Errorf("webui: malformed operation %q", op)
		}
		i, err := strconv.Atoi(target[dot+1:])
		if err != nil {
			return fmt.Errorf("webui: malformed operation %q", op)
		}
		path, index = target[:dot], i
	default:
		return fmt.Errorf("webui: unknown operation %q", op)
	}

	c, ok := page.Control(path)
	if !ok || c.Kind != schema.KindArray {
		return fmt.Errorf("webui: no array field %q", path)
	}
	if index < 0 {
		err = c.Append()
	} else {
		err = c.Remove(index)
	}
	if err != nil {
		a.addError(path, err)
		return nil
	}
	return a.failure
}
