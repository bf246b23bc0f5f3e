package simbackend

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Component bundles the mock handler, its configuration and routing helpers.
type Component struct {
	opts Options
}

// New constructs a new component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	opts := NewOptions(fns...)
	return &Component{opts: opts}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

func (c *Component) Handler() http.Handler {
	if c == nil {
		return Handler()
	}
	return HandlerWithOptions(c.opts)
}

// RegisterRoutes registers the component handler under basePath on router.
func (c *Component) RegisterRoutes(router *mux.Router, basePath string) (string, error) {
	if c == nil {
		return RegisterRoutes(router, basePath)
	}
	return RegisterRoutesWithOptions(router, basePath, c.opts)
}
