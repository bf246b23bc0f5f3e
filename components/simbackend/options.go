package simbackend

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-strategy-wizard/pkg/simulation"
)

// DefaultMaxBodyBytes bounds the request body.
const DefaultMaxBodyBytes = 1 << 20

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath    string
	FailStatus   int
	Delay        time.Duration
	MaxBodyBytes int64
	Guard        GuardFunc
	Contract     *simulation.Contract
	Logger       *zap.Logger
	NewID        func() string
	OnAccept     func(id string, body map[string]any)
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:    simulation.SimulationsPath,
		MaxBodyBytes: DefaultMaxBodyBytes,
		Logger:       zap.NewNop(),
		NewID:        uuid.NewString,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = simulation.SimulationsPath
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.FailStatus != 0 && (opts.FailStatus < 400 || opts.FailStatus > 599) {
		opts.FailStatus = http.StatusInternalServerError
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

// WithFailStatus makes every request fail with status. Zero accepts again;
// values outside 4xx/5xx become 500.
func WithFailStatus(status int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.FailStatus = status
	}
}

// WithDelay holds each response for d before answering.
func WithDelay(d time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Delay = d
	}
}

func WithMaxBodyBytes(n int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = n
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithContract overrides the bundled contract used to validate bodies.
func WithContract(contract *simulation.Contract) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Contract = contract
	}
}

func WithLogger(l *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = l
	}
}

func WithIDGenerator(fn func() string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.NewID = fn
	}
}

// WithOnAccept is called with every accepted body after the response is
// decided.
func WithOnAccept(fn func(id string, body map[string]any)) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.OnAccept = fn
	}
}
