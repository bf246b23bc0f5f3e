package strategy

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("strategy: invalid configuration")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// FieldError is a validation failure bound to the dotted path of one value,
// for example "parameters.window".
type FieldError struct {
	Path    string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// Validate checks cfg for values a simulation run cannot use. Fields revealed
// by the selected Kalman type must be filled in.
func Validate(cfg Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: no strategy selected", ErrInvalidConfig)
	}
	if !cfg.Key().Valid() {
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, ErrUnknownStrategy, cfg.Key())
	}
	if err := validatorInstance().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, cfg.Key(), err)
	}

	k, ok := cfg.(Kalman)
	if !ok {
		return nil
	}
	p := k.Parameters
	switch p.KalmanType {
	case KalmanWindow:
		if p.Window == nil {
			return kalmanError(k.Order, "parameters.window", "window is required for the window kalman type")
		}
	case KalmanDecay:
		missing := ""
		switch {
		case p.DecayX == nil:
			missing = "decay_x"
		case p.DecayP == nil:
			missing = "decay_P"
		case p.DecayQ == nil:
			missing = "decay_Q"
		}
		if missing != "" {
			return kalmanError(k.Order, "parameters."+missing, "decay coefficients are required for the decay kalman type")
		}
	}
	if k.Order.HigherOrder() && p.PredictionHorizon == nil {
		return kalmanError(k.Order, "parameters.predictionHorizon", "predictionHorizon is required")
	}
	return nil
}

func kalmanError(order Key, path, msg string) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, order, &FieldError{Path: path, Message: msg})
}

// ValidateCommon checks the common settings.
func ValidateCommon(c Common) error {
	if err := validatorInstance().Struct(c); err != nil {
		return fmt.Errorf("%w: common: %w", ErrInvalidConfig, err)
	}
	return nil
}

// FieldErrors extracts path-keyed messages from an error returned by Validate
// or ValidateCommon. Paths are relative to the strategy tree, so common
// settings appear under "common.". Errors without a path yield nil.
func FieldErrors(err error) map[string][]string {
	if err == nil {
		return nil
	}
	out := make(map[string][]string)

	var fe *FieldError
	if errors.As(err, &fe) {
		out[fe.Path] = append(out[fe.Path], fe.Message)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, ve := range verrs {
			path := namespacePath(ve.Namespace())
			out[path] = append(out[path], describeTag(ve))
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// namespacePath turns "MovingAverage.parameters.periods[0]" into
// "parameters.periods[0]" and "Common.chartTimeframe" into
// "common.chartTimeframe".
func namespacePath(ns string) string {
	root, rest, found := strings.Cut(ns, ".")
	if !found {
		return ns
	}
	if root == "Common" {
		return "common." + rest
	}
	return rest
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("needs at least %s entries", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fmt.Sprintf("failed the %s check", fe.Tag())
	}
}
