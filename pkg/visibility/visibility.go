package visibility

// Evaluator decides whether a schema field is shown for the current wizard
// configuration. fieldPath identifies the field being evaluated (useful in
// diagnostics) and rule is the field's visibleWhen expression.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Context carries the full configuration a rule may inspect. Config holds the
// strategy value tree ({key, parameters, logics, common}); Data holds the
// market/data configuration and is addressed with the `data.` prefix so rules
// can depend on cross-section state.
type Context struct {
	Config map[string]any
	Data   map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}
