package render

import "context"

// Renderer turns a Page into bytes for one front end (HTML, plain text).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page Page) ([]byte, error)
}
