package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-strategy-wizard/pkg/schema"
)

// Control is one rendered field. Leaf controls carry the current value and
// edit operations; grid and conditional controls carry children. A non-empty
// Diagnostic marks a field that could not be rendered.
type Control struct {
	Kind        schema.Kind
	Key         string
	Path        string
	Label       string
	Description string
	Placeholder string
	Options     []schema.Option
	Element     schema.ElementKind
	Numeric     *schema.NumericConstraints
	Columns     int
	Value       any
	Children    []*Control
	Diagnostic  string

	onChange ChangeFunc
}

// Editable reports whether the control binds a value.
func (c *Control) Editable() bool {
	return c != nil && c.Diagnostic == "" && c.Kind.Known() && !c.Kind.Structural()
}

// Set replaces the control's value and emits a patch. Numbers are checked
// against min/max; other kinds only check the Go type.
func (c *Control) Set(value any) error {
	if !c.Editable() {
		return fmt.Errorf("%w: %s", ErrNotEditable, c.describe())
	}
	normalised, err := c.normalise(value)
	if err != nil {
		return err
	}
	c.emit(normalised)
	return nil
}

// SetText parses raw input for the control's kind and sets it.
func (c *Control) SetText(raw string) error {
	if !c.Editable() {
		return fmt.Errorf("%w: %s", ErrNotEditable, c.describe())
	}
	switch c.Kind {
	case schema.KindNumber:
		n, err := ParseNumber(raw, c.Numeric)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Path, err)
		}
		c.emit(n)
	case schema.KindSelect:
		value := strings.TrimSpace(raw)
		if _, ok := c.option(value); !ok {
			return fmt.Errorf("%w: %s: %q", ErrInvalidOption, c.Path, raw)
		}
		c.emit(value)
	case schema.KindToggle:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: %s: %q is not a boolean", ErrInvalidValue, c.Path, raw)
		}
		c.emit(b)
	case schema.KindArray:
		items, err := c.parseItems(raw)
		if err != nil {
			return err
		}
		c.emit(items)
	default:
		c.emit(raw)
	}
	return nil
}

// Text formats the current value for display and as an input default.
func (c *Control) Text() string {
	if c == nil {
		return ""
	}
	return FormatValue(c.Value)
}

// Selected returns the option matching the current value. A value outside
// the options is reported as unselected.
func (c *Control) Selected() (schema.Option, bool) {
	s, _ := c.Value.(string)
	return c.option(s)
}

// SelectedIndex returns the index of the current option or -1.
func (c *Control) SelectedIndex() int {
	s, ok := c.Value.(string)
	if !ok {
		return -1
	}
	for i, opt := range c.Options {
		if opt.Value == s {
			return i
		}
	}
	return -1
}

// Checked reports the toggle state. Missing values are off.
func (c *Control) Checked() bool {
	b, _ := c.Value.(bool)
	return b
}

// Toggle flips a toggle control.
func (c *Control) Toggle() error {
	if c.Kind != schema.KindToggle {
		return fmt.Errorf("%w: %s is not a toggle", ErrInvalidValue, c.Path)
	}
	return c.Set(!c.Checked())
}

// Items returns a copy of the array elements.
func (c *Control) Items() []any {
	items, _ := c.Value.([]any)
	return append([]any(nil), items...)
}

// ItemPath is the dotted path of element i.
func (c *Control) ItemPath(i int) string {
	return c.Path + "." + strconv.Itoa(i)
}

// Append adds the element kind's zero value: 0 for numbers, "" for strings.
func (c *Control) Append() error {
	if err := c.requireArray(); err != nil {
		return err
	}
	var zero any = ""
	if c.Element == schema.ElementNumber {
		zero = 0.0
	}
	c.emit(append(c.Items(), zero))
	return nil
}

// Remove drops element i; later elements shift down by one.
func (c *Control) Remove(i int) error {
	if err := c.requireArray(); err != nil {
		return err
	}
	items := c.Items()
	if i < 0 || i >= len(items) {
		return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, c.Path, i)
	}
	c.emit(append(items[:i], items[i+1:]...))
	return nil
}

// Update replaces element i with a typed value.
func (c *Control) Update(i int, value any) error {
	if err := c.requireArray(); err != nil {
		return err
	}
	items := c.Items()
	if i < 0 || i >= len(items) {
		return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, c.Path, i)
	}
	element, err := c.normaliseElement(value)
	if err != nil {
		return err
	}
	items[i] = element
	c.emit(items)
	return nil
}

// UpdateText parses raw as an element and replaces element i.
func (c *Control) UpdateText(i int, raw string) error {
	if err := c.requireArray(); err != nil {
		return err
	}
	element, err := c.parseElement(raw)
	if err != nil {
		return err
	}
	return c.Update(i, element)
}

func (c *Control) emit(value any) {
	c.Value = value
	c.onChange(Patch{c.Key: cloneValue(value)})
}

func (c *Control) requireArray() error {
	if !c.Editable() {
		return fmt.Errorf("%w: %s", ErrNotEditable, c.describe())
	}
	if c.Kind != schema.KindArray {
		return fmt.Errorf("%w: %s is not an array", ErrInvalidValue, c.Path)
	}
	return nil
}

func (c *Control) normalise(value any) (any, error) {
	switch c.Kind {
	case schema.KindNumber:
		n, ok := toNumber(value)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a number, got %T", ErrInvalidValue, c.Path, value)
		}
		if err := checkRange(n, c.Numeric); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Path, err)
		}
		return n, nil
	case schema.KindToggle:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a boolean, got %T", ErrInvalidValue, c.Path, value)
		}
		return b, nil
	case schema.KindText, schema.KindSelect:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidValue, c.Path, value)
		}
		return s, nil
	case schema.KindArray:
		var raw []any
		switch v := value.(type) {
		case []any:
			raw = v
		case []string:
			for _, s := range v {
				raw = append(raw, s)
			}
		case []float64:
			for _, f := range v {
				raw = append(raw, f)
			}
		default:
			return nil, fmt.Errorf("%w: %s expects a list, got %T", ErrInvalidValue, c.Path, value)
		}
		out := make([]any, 0, len(raw))
		for _, item := range raw {
			element, err := c.normaliseElement(item)
			if err != nil {
				return nil, err
			}
			out = append(out, element)
		}
		return out, nil
	}
	return value, nil
}

func (c *Control) normaliseElement(value any) (any, error) {
	if c.Element == schema.ElementNumber {
		n, ok := toNumber(value)
		if !ok {
			return nil, fmt.Errorf("%w: %s elements are numbers, got %T", ErrInvalidValue, c.Path, value)
		}
		return n, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s elements are strings, got %T", ErrInvalidValue, c.Path, value)
	}
	return s, nil
}

func (c *Control) parseElement(raw string) (any, error) {
	if c.Element == schema.ElementNumber {
		n, err := ParseNumber(raw, c.Numeric)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Path, err)
		}
		return n, nil
	}
	return strings.TrimSpace(raw), nil
}

// parseItems reads a comma separated list. Blank input clears the array.
func (c *Control) parseItems(raw string) ([]any, error) {
	out := []any{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	for _, part := range strings.Split(raw, ",") {
		element, err := c.parseElement(part)
		if err != nil {
			return nil, err
		}
		out = append(out, element)
	}
	return out, nil
}

func (c *Control) option(value string) (schema.Option, bool) {
	for _, opt := range c.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return schema.Option{}, false
}

func (c *Control) describe() string {
	if c == nil {
		return "<nil control>"
	}
	if c.Path != "" {
		return c.Path
	}
	return "<" + string(c.Kind) + ">"
}

// FormatValue renders a tree value as display text. Arrays are joined with
// ", " and numbers use FormatNumber.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, ", ")
	}
	if n, ok := toNumber(value); ok {
		return FormatNumber(n)
	}
	return fmt.Sprint(value)
}
