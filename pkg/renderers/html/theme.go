package html

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// DefaultThemeName names the bundled palette.
const DefaultThemeName = "strategy-wizard"

// DefaultTheme is the bundled palette with a "dark" variant.
func DefaultTheme() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"background": "#f6f7f9",
			"surface":    "#ffffff",
			"text":       "#1f2430",
			"muted":      "#5c6370",
			"border":     "#eceef2",
			"accent":     "#2f6fed",
			"success":    "#2e9e5b",
			"danger":     "#c23030",
			"warning":    "#a15c00",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"background": "#15181e",
					"surface":    "#1f2430",
					"text":       "#e6e8ec",
					"muted":      "#9aa1ad",
					"border":     "#2c3240",
				},
			},
		},
	}
}

// palette resolves manifest tokens for variant into CSS custom properties.
func palette(manifest *theme.Manifest, variant string) (map[string]string, error) {
	if manifest == nil {
		return nil, nil
	}
	if manifest.Name == "" {
		return nil, errors.New("html: theme manifest has no name")
	}

	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	if variant != "" {
		v, ok := manifest.Variants[variant]
		if !ok {
			return nil, fmt.Errorf("html: theme %q has no variant %q", manifest.Name, variant)
		}
		for key, value := range v.Tokens {
			tokens[key] = value
		}
	}

	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		vars["--"+key] = value
	}
	return vars, nil
}

// rootRule renders vars as a :root block with stable ordering.
func rootRule(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root {")
	for _, name := range names {
		fmt.Fprintf(&b, " %s: %s;", name, vars[name])
	}
	b.WriteString(" }\n")
	return b.String()
}
