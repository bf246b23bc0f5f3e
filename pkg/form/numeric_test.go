package form

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-strategy-wizard/pkg/schema"
)

func TestParseNumberRejectsHugeExponents(t *testing.T) {
	inputs := []string{
		"1e5000000",
		"1e20000000",
		"1e-20000000",
		"2.5E+999999999",
		strings.Repeat("9", maxNumberLength+1),
	}
	for _, raw := range inputs {
		start := time.Now()
		if _, err := ParseNumber(raw, nil); !errors.Is(err, ErrInvalidNumber) {
			t.Fatalf("ParseNumber(%q): expected ErrInvalidNumber, got %v", raw, err)
		}
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Fatalf("ParseNumber(%q) took %s", raw, elapsed)
		}
	}
}

func TestParseNumberAcceptsExponents(t *testing.T) {
	step := 0.01
	got, err := ParseNumber("1.5e-2", &schema.NumericConstraints{Step: &step})
	if err != nil {
		t.Fatalf("ParseNumber: %v", err)
	}
	if got != 0.015 {
		t.Fatalf("expected 0.015, got %v", got)
	}
	if got, err := ParseNumber("2E1", nil); err != nil || got != 20 {
		t.Fatalf("expected 20, got %v, %v", got, err)
	}
}
