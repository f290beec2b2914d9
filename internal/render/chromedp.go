package render

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/webtool-dev/webtool/internal/cache"
	"github.com/webtool-dev/webtool/internal/docmodel"
)

// ChromedpRenderer drives a real (or externally-managed headless) Chrome
// instance: chromedp.Run with Navigate, WaitReady, and OuterHTML, extended
// here with an optional screenshot capture and an optional caller-supplied
// allocator context. The CLI leaves AllocatorContext nil, so each render
// starts its own Chrome.
type ChromedpRenderer struct {
	// AllocatorContext, if set, is used as the parent context for chromedp's
	// browser context (e.g. chromedp.NewExecAllocator with a remote
	// debugging address). When nil, a fresh local Chrome context is created
	// per call.
	AllocatorContext context.Context
	ScreenshotDir     string
	// Cache persists the rendered HTML the same way the Fetch Engine
	// persists fetched bodies, so extract can be handed a BodyPath instead
	// of every renderer re-running chromedp.
	Cache *cache.Cache
}

func (c *ChromedpRenderer) Render(ctx context.Context, url string, opts Options) (docmodel.Document, error) {
	parent := c.AllocatorContext
	if parent == nil {
		parent = ctx
	}
	browserCtx, cancel := chromedp.NewContext(parent)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, defaultTimeout(opts))
	defer cancelTimeout()

	waitSelector := opts.WaitSelector
	if waitSelector == "" {
		waitSelector = "body"
	}

	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady(waitSelector, chromedp.ByQuery),
	}

	var html string
	tasks = append(tasks, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	var screenshotBytes []byte
	if opts.Screenshot {
		tasks = append(tasks, chromedp.CaptureScreenshot(&screenshotBytes))
	}

	if err := chromedp.Run(timeoutCtx, tasks); err != nil {
		return docmodel.Document{}, fmt.Errorf("render %s: %w", url, err)
	}

	doc := docmodel.Document{
		URL:         url,
		FetchedAt:   time.Now().UTC(),
		FetchMethod: docmodel.FetchMethodBrowser,
		Artifact: &docmodel.Artifact{
			ContentType: "text/html",
			BodyBytes:   int64(len(html)),
		},
		Render: &docmodel.RenderInfo{
			WaitStrategyUsed: waitSelector,
		},
	}

	if c.Cache != nil {
		fp := cache.Fingerprint(http.MethodGet, url, nil, "")
		meta := cache.Meta{URL: url, Method: http.MethodGet, ContentType: "text/html"}
		if path, err := c.Cache.Store(fp, []byte(html), meta); err == nil {
			doc.Artifact.BodyPath = path
		}
	}

	if opts.Screenshot && len(screenshotBytes) > 0 {
		path, err := c.saveScreenshot(url, screenshotBytes)
		if err == nil {
			doc.Render.ScreenshotPath = path
		}
	}

	return doc, nil
}

func (c *ChromedpRenderer) saveScreenshot(url string, data []byte) (string, error) {
	dir := c.ScreenshotDir
	if dir == "" {
		dir = os.TempDir()
	}
	name := strings.NewReplacer("://", "_", "/", "_", ":", "_", "?", "_").Replace(url) + ".png"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
