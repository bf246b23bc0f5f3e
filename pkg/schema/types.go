package schema

import "strings"

// Kind names the control a Field renders as.
type Kind string

const (
	KindText        Kind = "text"
	KindNumber      Kind = "number"
	KindSelect      Kind = "select"
	KindArray       Kind = "array"
	KindToggle      Kind = "toggle"
	KindGrid        Kind = "grid"
	KindConditional Kind = "conditional"
)

// Known reports whether k is one of the supported kinds. Unknown kinds still
// load; the interpreter surfaces them as inline diagnostics.
func (k Kind) Known() bool {
	switch k {
	case KindText, KindNumber, KindSelect, KindArray, KindToggle, KindGrid, KindConditional:
		return true
	}
	return false
}

// Structural reports whether k only lays out children.
func (k Kind) Structural() bool {
	return k == KindGrid || k == KindConditional
}

// ElementKind is the scalar type stored in an array field.
type ElementKind string

const (
	ElementString ElementKind = "string"
	ElementNumber ElementKind = "number"
)

// Option is a single select choice.
type Option struct {
	Value       string `json:"value" yaml:"value"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// NumericConstraints mirrors HTML number input attributes. A nil Step means
// whole numbers only.
type NumericConstraints struct {
	Step *float64 `json:"step,omitempty" yaml:"step,omitempty"`
	Min  *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max  *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Integral reports whether only whole numbers are accepted.
func (n *NumericConstraints) Integral() bool {
	if n == nil || n.Step == nil {
		return true
	}
	step := *n.Step
	return step == float64(int64(step)) && step != 0
}

// Field describes one configurable value, or a structural node grouping
// other fields when Key is empty.
type Field struct {
	Key          string              `json:"key" yaml:"key"`
	Label        string              `json:"label,omitempty" yaml:"label,omitempty"`
	Description  string              `json:"description,omitempty" yaml:"description,omitempty"`
	Placeholder  string              `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Kind         Kind                `json:"kind" yaml:"kind"`
	Options      []Option            `json:"options,omitempty" yaml:"options,omitempty"`
	ArrayElement ElementKind         `json:"element,omitempty" yaml:"element,omitempty"`
	Numeric      *NumericConstraints `json:"numeric,omitempty" yaml:"numeric,omitempty"`
	Columns      int                 `json:"columns,omitempty" yaml:"columns,omitempty"`
	Children     []Field             `json:"fields,omitempty" yaml:"fields,omitempty"`
	VisibleWhen  string              `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"`
}

// Structural reports whether the field binds no value of its own.
func (f Field) Structural() bool {
	return strings.TrimSpace(f.Key) == ""
}

// Option returns the option whose value matches.
func (f Field) Option(value string) (Option, bool) {
	for _, opt := range f.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

// Section groups the top-level fields of one configuration slice.
type Section struct {
	Title  string  `json:"title" yaml:"title"`
	Icon   string  `json:"icon,omitempty" yaml:"icon,omitempty"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// StrategySchema pairs the parameter and logic sections of one strategy.
type StrategySchema struct {
	Key         string  `json:"key" yaml:"key"`
	Label       string  `json:"label" yaml:"label"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  Section `json:"parameters" yaml:"parameters"`
	Logics      Section `json:"logics" yaml:"logics"`
}

// Store holds the parsed schema documents. Treat it as immutable once
// LoadFS returns.
type Store struct {
	sections   map[string]Section
	strategies map[string]StrategySchema
	order      []string
}

// Section returns a named standalone section such as "data" or "common".
func (s *Store) Section(name string) (Section, bool) {
	if s == nil {
		return Section{}, false
	}
	sec, ok := s.sections[name]
	return sec, ok
}

// Strategy returns the schema registered under key.
func (s *Store) Strategy(key string) (StrategySchema, bool) {
	if s == nil {
		return StrategySchema{}, false
	}
	st, ok := s.strategies[key]
	return st, ok
}

// Strategies lists strategy schemas in declaration order.
func (s *Store) Strategies() []StrategySchema {
	if s == nil {
		return nil
	}
	out := make([]StrategySchema, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.strategies[key])
	}
	return out
}

// Empty reports whether the store holds no schemas.
func (s *Store) Empty() bool {
	return s == nil || (len(s.sections) == 0 && len(s.strategies) == 0)
}
