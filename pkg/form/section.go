package form

import (
	"sync"

	"github.com/goliatone/go-strategy-wizard/pkg/schema"
	"github.com/goliatone/go-strategy-wizard/pkg/visibility"
)

// SectionChangeFunc receives the section name and the whole updated slice.
type SectionChangeFunc func(name string, slice map[string]any)

// SectionView is a section bound to one named slice of the configuration.
type SectionView struct {
	Name     string
	Title    string
	Icon     string
	Controls []*Control

	mu    sync.Mutex
	slice map[string]any
}

// Slice returns a copy of the slice including edits made through the view.
func (v *SectionView) Slice() map[string]any {
	v.mu.Lock()
	defer v.mu.Unlock()
	return CloneTree(v.slice)
}

// Control finds a visible control by dotted path.
func (v *SectionView) Control(path string) (*Control, bool) {
	var found *Control
	Walk(v.Controls, func(c *Control) bool {
		if c.Path == path && c.Key != "" {
			found = c
			return false
		}
		return true
	})
	return found, found != nil
}

// BindSection renders section against slice, the current value of
// configuration[name]. Every edit is merged into the slice and reported with
// the section name. Structural fields produce patches keyed by their children,
// so their values land directly in the slice.
func (in *Interpreter) BindSection(section schema.Section, name string, slice map[string]any, scope visibility.Context, onChange SectionChangeFunc) *SectionView {
	view := &SectionView{
		Name:  name,
		Title: section.Title,
		Icon:  section.Icon,
		slice: CloneTree(slice),
	}
	if view.slice == nil {
		view.slice = make(map[string]any)
	}

	apply := func(patch Patch) {
		view.mu.Lock()
		view.slice = Merge(view.slice, patch)
		next := CloneTree(view.slice)
		view.mu.Unlock()
		if onChange != nil {
			onChange(name, next)
		}
	}

	view.Controls = in.InterpretAll(section.Fields, view.slice, scope, name, apply)
	return view
}

// Walk visits controls depth first in render order until fn returns false.
func Walk(controls []*Control, fn func(*Control) bool) bool {
	for _, c := range controls {
		if !fn(c) {
			return false
		}
		if !Walk(c.Children, fn) {
			return false
		}
	}
	return true
}

// Leaves flattens visible value-bearing and diagnostic controls in render
// order, skipping grid and conditional wrappers.
func Leaves(controls []*Control) []*Control {
	var out []*Control
	Walk(controls, func(c *Control) bool {
		if c.Diagnostic != "" || !c.Kind.Structural() {
			out = append(out, c)
		}
		return true
	})
	return out
}
