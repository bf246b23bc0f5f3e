package form

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-strategy-wizard/pkg/schema"
	"github.com/goliatone/go-strategy-wizard/pkg/visibility"
	"github.com/goliatone/go-strategy-wizard/pkg/visibility/expr"
)

// Patch is a shallow update to the object a field binds into.
type Patch map[string]any

// ChangeFunc receives the patch produced by an edit.
type ChangeFunc func(Patch)

// Interpreter turns field descriptors into controls bound to a value object.
// It holds no per-form state and is safe for concurrent use.
type Interpreter struct {
	evaluator visibility.Evaluator
	logger    *zap.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithEvaluator overrides the visibility evaluator.
func WithEvaluator(e visibility.Evaluator) Option {
	return func(in *Interpreter) {
		if e != nil {
			in.evaluator = e
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(in *Interpreter) {
		if l != nil {
			in.logger = l
		}
	}
}

// NewInterpreter returns an Interpreter using the expr evaluator.
func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{
		evaluator: expr.New(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Interpret renders field against parent, the object the field binds into.
// path is the dotted location of parent. Visibility rules see the whole
// configuration through scope.
//
// It returns nil when the field's visibleWhen rule is false: the subtree
// renders nothing and can never call onChange, so hidden values stay as they
// are. Structural fields bind their children to parent and forward the
// children's patches unchanged.
func (in *Interpreter) Interpret(field schema.Field, parent map[string]any, scope visibility.Context, path string, onChange ChangeFunc) *Control {
	if onChange == nil {
		onChange = func(Patch) {}
	}

	ctrl := &Control{
		Kind:        field.Kind,
		Key:         field.Key,
		Path:        joinPath(path, field.Key),
		Label:       field.Label,
		Description: field.Description,
		Placeholder: field.Placeholder,
		Options:     field.Options,
		Element:     field.ArrayElement,
		Numeric:     field.Numeric,
		Columns:     field.Columns,
		onChange:    onChange,
	}

	if field.VisibleWhen != "" {
		visible, err := in.evaluator.Eval(ctrl.Path, field.VisibleWhen, scope)
		if err != nil {
			in.logger.Warn("visibility rule failed",
				zap.String("path", ctrl.Path),
				zap.String("rule", field.VisibleWhen),
				zap.Error(err),
			)
			ctrl.Diagnostic = fmt.Sprintf("visibility rule failed: %v", err)
			return ctrl
		}
		if !visible {
			return nil
		}
	}

	if !field.Kind.Known() {
		in.logger.Warn("unsupported field kind",
			zap.String("path", ctrl.Path),
			zap.String("kind", string(field.Kind)),
		)
		ctrl.Diagnostic = fmt.Sprintf("unsupported field kind %q", field.Kind)
		return ctrl
	}

	if field.Kind.Structural() {
		for _, child := range field.Children {
			if c := in.Interpret(child, parent, scope, path, onChange); c != nil {
				ctrl.Children = append(ctrl.Children, c)
			}
		}
		return ctrl
	}

	if parent != nil {
		ctrl.Value = cloneValue(parent[field.Key])
	}
	return ctrl
}

// InterpretAll renders fields in order and drops hidden ones.
func (in *Interpreter) InterpretAll(fields []schema.Field, parent map[string]any, scope visibility.Context, path string, onChange ChangeFunc) []*Control {
	var out []*Control
	for _, field := range fields {
		if c := in.Interpret(field, parent, scope, path, onChange); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func joinPath(prefix, key string) string {
	switch {
	case key == "":
		return prefix
	case prefix == "":
		return key
	default:
		return prefix + "." + key
	}
}
