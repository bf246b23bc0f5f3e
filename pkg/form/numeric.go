package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-strategy-wizard/pkg/schema"
)

// Input limits. Exponents beyond float64 range never name a usable value.
const (
	maxNumberLength = 64
	maxExponent     = 400
)

// ParseNumber converts user input into a number honouring the constraints.
// Empty input, anything that is not a finite decimal and fractions under an
// integral step fail with ErrInvalidNumber; bounds violations fail with
// ErrOutOfRange. Input is never silently coerced to zero.
func ParseNumber(raw string, constraints *schema.NumericConstraints) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: value is required", ErrInvalidNumber)
	}
	if len(trimmed) > maxNumberLength {
		return 0, fmt.Errorf("%w: value is too long", ErrInvalidNumber)
	}
	if i := strings.IndexAny(trimmed, "eE"); i >= 0 {
		exp, err := strconv.Atoi(trimmed[i+1:])
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidNumber, raw)
		}
		if exp > maxExponent || exp < -maxExponent {
			return 0, fmt.Errorf("%w: %q is not a finite number", ErrInvalidNumber, raw)
		}
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidNumber, raw)
	}
	if constraints.Integral() && !d.IsInteger() {
		return 0, fmt.Errorf("%w: %q must be a whole number", ErrInvalidNumber, raw)
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %q is not a finite number", ErrInvalidNumber, raw)
	}
	if err := checkRange(f, constraints); err != nil {
		return 0, err
	}
	return f, nil
}

// FormatNumber renders n without trailing zeros or exponent noise.
func FormatNumber(n float64) string {
	return decimal.NewFromFloat(n).String()
}

func checkRange(f float64, constraints *schema.NumericConstraints) error {
	if constraints == nil {
		return nil
	}
	if constraints.Min != nil && f < *constraints.Min {
		return fmt.Errorf("%w: %s is below the minimum %s", ErrOutOfRange, FormatNumber(f), FormatNumber(*constraints.Min))
	}
	if constraints.Max != nil && f > *constraints.Max {
		return fmt.Errorf("%w: %s is above the maximum %s", ErrOutOfRange, FormatNumber(f), FormatNumber(*constraints.Max))
	}
	return nil
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case decimal.Decimal:
		f, _ := v.Float64()
		return f, true
	}
	return 0, false
}
