package strategy

import (
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/goliatone/go-strategy-wizard/pkg/schema"
)

// Option is one entry of the strategy selector.
type Option struct {
	Key         Key
	Label       string
	Description string
}

// Registry maps strategy keys to their form schemas and defaults.
type Registry struct {
	store   *schema.Store
	options []Option
	data    schema.Section
	common  schema.Section
}

// NewRegistry wraps store. Every supported key must have a schema and the
// store must provide "data" and "common" sections.
func NewRegistry(store *schema.Store) (*Registry, error) {
	if store == nil {
		return nil, fmt.Errorf("strategy: schema store is required")
	}

	reg := &Registry{store: store}
	for _, key := range keys {
		st, ok := store.Strategy(string(key))
		if !ok {
			return nil, fmt.Errorf("strategy: no schema registered for %q", key)
		}
		reg.options = append(reg.options, Option{Key: key, Label: st.Label, Description: st.Description})
	}

	extra := lo.Filter(store.Strategies(), func(st schema.StrategySchema, _ int) bool {
		return !Key(st.Key).Valid()
	})
	if len(extra) > 0 {
		return nil, fmt.Errorf("%w %q: schema has no typed configuration", ErrUnknownStrategy, extra[0].Key)
	}

	var ok bool
	if reg.data, ok = store.Section("data"); !ok {
		return nil, fmt.Errorf("strategy: schema store has no data section")
	}
	if reg.common, ok = store.Section("common"); !ok {
		return nil, fmt.Errorf("strategy: schema store has no common section")
	}
	if err := reg.checkRuleReferences(); err != nil {
		return nil, err
	}
	return reg, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the registry built from the embedded schemas. The
// embedded files ship with the binary, so a load failure panics.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		store, err := schema.LoadFS(schema.EmbeddedFS())
		if err != nil {
			panic(err)
		}
		reg, err := NewRegistry(store)
		if err != nil {
			panic(err)
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// Schema returns the form schema for key.
func (r *Registry) Schema(key Key) (schema.StrategySchema, error) {
	st, ok := r.store.Strategy(string(key))
	if !ok {
		return schema.StrategySchema{}, fmt.Errorf("%w %q", ErrUnknownStrategy, key)
	}
	return st, nil
}

// MustSchema panics for keys outside the supported set.
func (r *Registry) MustSchema(key Key) schema.StrategySchema {
	st, err := r.Schema(key)
	if err != nil {
		panic(err)
	}
	return st
}

// Default returns the default configuration for key.
func (r *Registry) Default(key Key) (Config, error) {
	return Default(key)
}

// Options lists the selector entries in order.
func (r *Registry) Options() []Option {
	return append([]Option(nil), r.options...)
}

// Option returns the selector entry for key.
func (r *Registry) Option(key Key) (Option, bool) {
	return lo.Find(r.options, func(opt Option) bool { return opt.Key == key })
}

// DataSection is the market/data form.
func (r *Registry) DataSection() schema.Section {
	return r.data
}

// CommonSection is the form for settings shared by every strategy.
func (r *Registry) CommonSection() schema.Section {
	return r.common
}
