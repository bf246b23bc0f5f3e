package strategy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStrategy is returned when a strategy identifier is outside the
// supported set.
var ErrUnknownStrategy = errors.New("strategy: unknown strategy")

// Key identifies one of the supported strategies.
type Key string

const (
	KeyMovingAverage  Key = "ma"
	KeyBollingerBands Key = "bb"
	KeyRSI            Key = "rsi"
	KeyADX            Key = "adx"
	KeyKalman1st      Key = "kalman1st"
	KeyKalman2nd      Key = "kalman2nd"
	KeyKalman3rd      Key = "kalman3rd"
)

var keys = []Key{
	KeyMovingAverage,
	KeyBollingerBands,
	KeyRSI,
	KeyADX,
	KeyKalman1st,
	KeyKalman2nd,
	KeyKalman3rd,
}

// Keys lists every strategy key in selector order.
func Keys() []Key {
	return append([]Key(nil), keys...)
}

// ParseKey validates raw against the supported keys.
func ParseKey(raw string) (Key, error) {
	key := Key(strings.TrimSpace(raw))
	if !key.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownStrategy, raw)
	}
	return key, nil
}

// Valid reports whether k is a supported key.
func (k Key) Valid() bool {
	for _, candidate := range keys {
		if candidate == k {
			return true
		}
	}
	return false
}

// Kalman reports whether k selects one of the Kalman filter variants.
func (k Key) Kalman() bool {
	return k == KeyKalman1st || k == KeyKalman2nd || k == KeyKalman3rd
}

// HigherOrder reports whether k is a Kalman variant with prediction settings.
func (k Key) HigherOrder() bool {
	return k == KeyKalman2nd || k == KeyKalman3rd
}

func (k Key) String() string {
	return string(k)
}
