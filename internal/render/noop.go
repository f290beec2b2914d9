package render

import (
	"context"
	"fmt"

	"github.com/webtool-dev/webtool/internal/docmodel"
)

// NoopRenderer is injected in offline environments and tests that have no
// browser binary available. It always fails with a needs_render-preserving
// error so the caller's classification survives unchanged instead of being
// silently downgraded to a fabricated success.
type NoopRenderer struct{}

func (NoopRenderer) Render(_ context.Context, url string, _ Options) (docmodel.Document, error) {
	return docmodel.Document{}, fmt.Errorf("render: no browser engine configured, %s still needs_render", url)
}
