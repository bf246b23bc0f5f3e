package html

import (
	"strings"
	"sync"
)

const svgOpen = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="20" height="20" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true" class="section-icon">`

var iconPaths = map[string]string{
	"chart":    `<line x1="4" y1="20" x2="20" y2="20"></line><rect x="6" y="10" width="3" height="8"></rect><rect x="11" y="6" width="3" height="12"></rect><rect x="16" y="13" width="3" height="5"></rect>`,
	"bolt":     `<polygon points="13 2 3 14 12 14 11 22 21 10 12 10 13 2"></polygon>`,
	"trend":    `<polyline points="3 17 9 11 13 15 21 7"></polyline><polyline points="15 7 21 7 21 13"></polyline>`,
	"target":   `<circle cx="12" cy="12" r="9"></circle><circle cx="12" cy="12" r="5"></circle><circle cx="12" cy="12" r="1"></circle>`,
	"database": `<ellipse cx="12" cy="5" rx="8" ry="3"></ellipse><path d="M4 5v14c0 1.7 3.6 3 8 3s8-1.3 8-3V5"></path><path d="M4 12c0 1.7 3.6 3 8 3s8-1.3 8-3"></path>`,
	"gear":     `<circle cx="12" cy="12" r="3"></circle><path d="M12 2v3M12 19v3M2 12h3M19 12h3M4.9 4.9l2.1 2.1M17 17l2.1 2.1M4.9 19.1L7 17M17 7l2.1-2.1"></path>`,
}

var (
	iconsOnce sync.Once
	icons     map[string]string
)

// iconMarkup returns sanitized SVG markup for a section icon token, or "" for
// unknown tokens. Custom markup passed as the token itself is sanitized too.
func iconMarkup(token string) string {
	iconsOnce.Do(func() {
		icons = make(map[string]string, len(iconPaths))
		for name, body := range iconPaths {
			icons[name] = sanitizeIconMarkup(svgOpen + body + `</svg>`)
		}
	})
	token = strings.TrimSpace(token)
	if strings.HasPrefix(token, "<svg") {
		return sanitizeIconMarkup(token)
	}
	return icons[token]
}
