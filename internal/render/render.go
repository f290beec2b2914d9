// Package render implements the render collaborator: a headless-browser
// fetch used when the Fetch Engine classifies a page as needs_render.
// Renderer is kept as a narrow interface so the real browser engine stays
// swappable and opaque.
package render

import (
	"context"
	"time"

	"github.com/webtool-dev/webtool/internal/docmodel"
)

// Options configures one render call.
type Options struct {
	TimeoutMS      int
	WaitSelector   string
	Screenshot     bool
	ScreenshotPath string
	UserAgent      string
}

// Renderer obtains a Document by driving a browser rather than issuing a
// bare HTTP request.
type Renderer interface {
	Render(ctx context.Context, url string, opts Options) (docmodel.Document, error)
}

func defaultTimeout(opts Options) time.Duration {
	if opts.TimeoutMS <= 0 {
		return 30 * time.Second
	}
	return time.Duration(opts.TimeoutMS) * time.Millisecond
}
