package logging

import "testing"

func TestNewAcceptsKnownLevelsAndFormats(t *testing.T) {
	for _, tc := range []struct{ level, format string }{
		{"info", "console"},
		{"debug", "json"},
		{"warn", ""},
		{"ERROR", "JSON"},
	} {
		logger, err := New(tc.level, tc.format)
		if err != nil {
			t.Fatalf("New(%q, %q): %v", tc.level, tc.format, err)
		}
		if logger == nil {
			t.Fatalf("New(%q, %q) returned nil logger", tc.level, tc.format)
		}
	}
}

func TestNewRejectsUnknownInput(t *testing.T) {
	if _, err := New("loud", "json"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
