package strategy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-strategy-wizard/pkg/form"
	"github.com/goliatone/go-strategy-wizard/pkg/schema"
	"github.com/goliatone/go-strategy-wizard/pkg/visibility/expr"
)

// ErrUnknownReference is returned when a visibleWhen rule reads a path that
// the configuration never holds.
var ErrUnknownReference = errors.New("strategy: visibility rule references an unknown path")

// checkRuleReferences resolves every identifier of every visibleWhen rule
// against the default configuration of each strategy. Identifiers prefixed
// with "data." must name a field of the data section.
func (r *Registry) checkRuleReferences() error {
	data := make(map[string]any)
	for _, key := range leafKeys(r.data.Fields) {
		data[key] = nil
	}

	common, err := CommonToTree(DefaultCommon())
	if err != nil {
		return err
	}

	for _, key := range keys {
		cfg, err := Default(key)
		if err != nil {
			return err
		}
		tree, err := ToTree(cfg)
		if err != nil {
			return err
		}
		tree["common"] = common
		scope := map[string]any{"config": tree, "data": data}

		st := r.MustSchema(key)
		for _, fields := range [][]schema.Field{st.Parameters.Fields, st.Logics.Fields, r.common.Fields, r.data.Fields} {
			if err := checkFields(fields, scope, key); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkFields(fields []schema.Field, scope map[string]any, key Key) error {
	for _, f := range fields {
		if f.VisibleWhen != "" {
			rule, err := expr.Compile(f.VisibleWhen)
			if err != nil {
				return fmt.Errorf("strategy: %s field %q: %w", key, f.Key, err)
			}
			for _, ident := range rule.Identifiers() {
				if _, ok := form.GetPath(scope, scopePath(ident)); !ok {
					return fmt.Errorf("%w: %s field %q reads %q", ErrUnknownReference, key, f.Key, ident)
				}
			}
		}
		if err := checkFields(f.Children, scope, key); err != nil {
			return err
		}
	}
	return nil
}

// scopePath maps a rule identifier onto the scope built by
// checkRuleReferences.
func scopePath(ident string) string {
	if strings.HasPrefix(ident, "data.") {
		return ident
	}
	return "config." + ident
}

func leafKeys(fields []schema.Field) []string {
	var out []string
	for _, f := range fields {
		if f.Structural() {
			out = append(out, leafKeys(f.Children)...)
			continue
		}
		out = append(out, f.Key)
	}
	return out
}
