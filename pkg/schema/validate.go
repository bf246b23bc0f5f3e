package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-strategy-wizard/pkg/visibility/expr"
)

// ErrInvalidField is returned for descriptors that break the field invariants.
var ErrInvalidField = errors.New("schema: invalid field")

// Validate checks the field and its subtree.
func (f Field) Validate() error {
	return f.validate(f.Key)
}

func (f Field) validate(path string) error {
	if path == "" {
		path = "<" + string(f.Kind) + ">"
	}
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w %s: %s", ErrInvalidField, path, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(string(f.Kind)) == "" {
		return fail("kind is required")
	}
	if f.VisibleWhen != "" {
		if _, err := expr.Compile(f.VisibleWhen); err != nil {
			return fail("visibleWhen: %v", err)
		}
	}

	if f.Kind.Structural() {
		if len(f.Children) == 0 {
			return fail("%s requires children", f.Kind)
		}
		if !f.Structural() {
			return fail("%s must not bind a key", f.Kind)
		}
		for i, child := range f.Children {
			childPath := child.Key
			if childPath == "" {
				childPath = fmt.Sprintf("%s[%d]", path, i)
			}
			if err := child.validate(childPath); err != nil {
				return err
			}
		}
		return nil
	}

	if len(f.Children) > 0 {
		return fail("%s must not have children", f.Kind)
	}
	if !f.Kind.Known() {
		return nil
	}
	if f.Structural() {
		return fail("%s requires a key", f.Kind)
	}

	switch f.Kind {
	case KindSelect:
		if len(f.Options) == 0 {
			return fail("select requires options")
		}
		seen := make(map[string]struct{}, len(f.Options))
		for _, opt := range f.Options {
			if _, dup := seen[opt.Value]; dup {
				return fail("duplicate option %q", opt.Value)
			}
			seen[opt.Value] = struct{}{}
		}
	case KindArray:
		if f.ArrayElement != ElementString && f.ArrayElement != ElementNumber {
			return fail("array requires element kind string or number, got %q", f.ArrayElement)
		}
	}

	if n := f.Numeric; n != nil {
		if n.Step != nil && *n.Step <= 0 {
			return fail("step must be positive")
		}
		if n.Min != nil && n.Max != nil && *n.Min > *n.Max {
			return fail("min %v exceeds max %v", *n.Min, *n.Max)
		}
	}
	return nil
}

// Validate checks every field and rejects keys bound twice to the same slice.
// Structural children bind to their parent's object, so their keys share the
// section namespace.
func (s Section) Validate() error {
	seen := make(map[string]struct{})
	var walk func(fields []Field) error
	walk = func(fields []Field) error {
		for _, field := range fields {
			if field.Structural() {
				if err := walk(field.Children); err != nil {
					return err
				}
				continue
			}
			if _, dup := seen[field.Key]; dup {
				return fmt.Errorf("%w %s: key bound twice in section %q", ErrInvalidField, field.Key, s.Title)
			}
			seen[field.Key] = struct{}{}
		}
		return nil
	}

	for _, field := range s.Fields {
		if err := field.Validate(); err != nil {
			return fmt.Errorf("section %q: %w", s.Title, err)
		}
	}
	return walk(s.Fields)
}

// Keys lists the value keys bound by the section in render order.
func (s Section) Keys() []string {
	var out []string
	var walk func(fields []Field)
	walk = func(fields []Field) {
		for _, field := range fields {
			if field.Structural() {
				walk(field.Children)
				continue
			}
			out = append(out, field.Key)
		}
	}
	walk(s.Fields)
	return out
}
