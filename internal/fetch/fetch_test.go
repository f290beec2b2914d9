package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/webtool-dev/webtool/internal/cache"
	"github.com/webtool-dev/webtool/internal/docmodel"
)

func TestEngine_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>hello world, this is real page content.</body></html>"))
	}))
	defer srv.Close()

	e := &Engine{}
	res, err := e.Fetch(context.Background(), srv.URL, Options{DetectBlocks: true})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.Classification != docmodel.ClassOK {
		t.Fatalf("expected ok, got %s (%s)", res.Classification, res.Reason)
	}
	if res.Document.HTTP.Status != 200 {
		t.Fatalf("expected 200, got %d", res.Document.HTTP.Status)
	}
}

func TestEngine_ClassifiesBlockedStatuses(t *testing.T) {
	t.Parallel()
	for _, status := range []int{401, 403, 429} {
		status := status
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		e := &Engine{}
		res, err := e.Fetch(context.Background(), srv.URL, Options{DetectBlocks: true})
		srv.Close()
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if res.Classification != docmodel.ClassBlocked {
			t.Fatalf("status %d: expected blocked, got %s", status, res.Classification)
		}
	}
}

func TestEngine_ClassifiesNotFound(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	e := &Engine{}
	res, err := e.Fetch(context.Background(), srv.URL, Options{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.Classification != docmodel.ClassNotFound {
		t.Fatalf("expected not_found, got %s", res.Classification)
	}
}

func TestEngine_ClassifiesTransportErrorOn5xx(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	e := &Engine{}
	res, err := e.Fetch(context.Background(), srv.URL, Options{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.Classification != docmodel.ClassTransportError {
		t.Fatalf("expected transport_error, got %s", res.Classification)
	}
}

func TestEngine_NeedsRenderOnJSOnlyBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><script src="app.js"></script></body></html>`))
	}))
	defer srv.Close()

	e := &Engine{}
	res, err := e.Fetch(context.Background(), srv.URL, Options{DetectBlocks: true})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.Classification != docmodel.ClassNeedsRender {
		t.Fatalf("expected needs_render, got %s (%s)", res.Classification, res.Reason)
	}
	if len(res.NextSteps) == 0 {
		t.Fatalf("expected next_steps for needs_render")
	}
}

func TestEngine_NeedsRenderOnInterstitialPattern(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>Checking your browser before accessing the site...</body></html>`))
	}))
	defer srv.Close()

	e := &Engine{}
	res, err := e.Fetch(context.Background(), srv.URL, Options{DetectBlocks: true})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.Classification != docmodel.ClassNeedsRender {
		t.Fatalf("expected needs_render, got %s", res.Classification)
	}
}

func TestEngine_DetectBlocksDisabled(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><script src="app.js"></script></body></html>`))
	}))
	defer srv.Close()

	e := &Engine{}
	res, err := e.Fetch(context.Background(), srv.URL, Options{DetectBlocks: false})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.Classification != docmodel.ClassOK {
		t.Fatalf("expected ok with detect-blocks disabled, got %s", res.Classification)
	}
}

func TestEngine_RejectsForbiddenHeader(t *testing.T) {
	t.Parallel()
	e := &Engine{}
	_, err := e.Fetch(context.Background(), "https://example.com", Options{Headers: map[string]string{"Cookie": "x=1"}})
	if err == nil {
		t.Fatalf("expected error for forbidden header")
	}
}

func TestEngine_RejectsNonHTTPScheme(t *testing.T) {
	t.Parallel()
	e := &Engine{}
	_, err := e.Fetch(context.Background(), "ftp://example.com/file", Options{})
	if err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
}

func TestEngine_RedirectLimit(t *testing.T) {
	t.Parallel()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/", http.StatusFound)
	}))
	defer srv.Close()

	e := &Engine{}
	res, err := e.Fetch(context.Background(), srv.URL, Options{FollowRedirects: true, RedirectMaxHops: 2})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.Document.HTTP.Status != http.StatusFound {
		t.Fatalf("expected the loop to stop at the redirect cap, got status %d", res.Document.HTTP.Status)
	}
}

func TestEngine_ContentTypeSniffHTML(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("<!DOCTYPE html><html><body>plain declared, html actual</body></html>"))
	}))
	defer srv.Close()

	e := &Engine{}
	res, err := e.Fetch(context.Background(), srv.URL, Options{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.Document.Artifact.ContentType != "text/html" {
		t.Fatalf("expected sniffed text/html, got %q", res.Document.Artifact.ContentType)
	}
}

func TestEngine_CacheHitPreservesHTTPInfo(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>cached content</body></html>"))
	}))
	defer srv.Close()

	e := &Engine{Cache: &cache.Cache{Dir: t.TempDir()}}
	first, err := e.Fetch(context.Background(), srv.URL, Options{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if first.Document.HTTP == nil || first.Document.HTTP.Status != 200 {
		t.Fatalf("expected populated http on first fetch, got %+v", first.Document.HTTP)
	}

	second, err := e.Fetch(context.Background(), srv.URL, Options{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if second.Document.HTTP == nil || second.Document.HTTP.Status != first.Document.HTTP.Status {
		t.Fatalf("expected cache hit to preserve http.status, got %+v", second.Document.HTTP)
	}
}

func TestEngine_MaxConcurrentBoundsInFlight(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	e := &Engine{MaxConcurrent: 2}
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := e.Fetch(context.Background(), srv.URL, Options{})
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatalf("fetch: %v", err)
		}
	}
}
