package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html templates/components/*.html
var embeddedTemplates embed.FS

//go:embed assets/wizard.css
var embeddedStylesheet string

// TemplatesFS exposes the bundled templates so callers can copy and
// override them with WithTemplatesFS.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
