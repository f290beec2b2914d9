// Package fetch implements the Fetch Engine: a single bounded HTTP request
// per call, body truncation at max-bytes, block/JS-only/content-type
// classification, and next_steps suggestions. Timeout, redirect cap, and a
// concurrency gate classify the outcome of any http(s) request without
// retrying it itself.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/webtool-dev/webtool/internal/cache"
	"github.com/webtool-dev/webtool/internal/docmodel"
)

// forbiddenHeaders may not be set by a caller.
var forbiddenHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
}

// Options configures a single Fetch call.
type Options struct {
	Headers         map[string]string
	UserAgent       string
	MaxBytes        int64
	TimeoutMS       int
	FollowRedirects bool
	RedirectMaxHops int
	DetectBlocks    bool
	Fresh           bool // bypass cache lookup, still store the result
	NoCache         bool // bypass cache entirely, lookup and store
	DoNotPersist    bool // privileged browsing: store ephemerally if at all
}

const defaultMaxBytes = 10 * 1024 * 1024
const defaultRedirectMaxHops = 10

// Engine is the Fetch Engine: a thin wrapper over *http.Client that never
// retries on its own and encodes every outcome into a docmodel.FetchResult
// instead of an error.
type Engine struct {
	HTTPClient *http.Client
	Cache      *cache.Cache
	MaxConcurrent int

	limiter     chan struct{}
	limiterOnce sync.Once
}

func (e *Engine) acquire() {
	if e.MaxConcurrent <= 0 {
		return
	}
	e.limiterOnce.Do(func() {
		e.limiter = make(chan struct{}, e.MaxConcurrent)
	})
	e.limiter <- struct{}{}
}

func (e *Engine) release() {
	if e.MaxConcurrent <= 0 || e.limiter == nil {
		return
	}
	<-e.limiter
}

// Fetch issues a single request for rawURL per opts, classifies the outcome,
// and returns a FetchResult. It never returns an error for expected network
// conditions — only for programmer errors:
// an invalid URL, a non-http(s) scheme, or a forbidden header.
func (e *Engine) Fetch(ctx context.Context, rawURL string, opts Options) (docmodel.FetchResult, error) {
	for name := range opts.Headers {
		if forbiddenHeaders[strings.ToLower(name)] {
			return docmodel.FetchResult{}, fmt.Errorf("fetch: header %q is not permitted", name)
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return docmodel.FetchResult{}, fmt.Errorf("fetch: parse url: %w", err)
	}
	if !isHTTPScheme(u) {
		return docmodel.FetchResult{}, fmt.Errorf("fetch: unsupported scheme %q", u.Scheme)
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	fp := cache.Fingerprint(http.MethodGet, rawURL, opts.Headers, opts.UserAgent)
	if e.Cache != nil && !opts.NoCache && !opts.Fresh {
		if entry, ok := e.Cache.Lookup(fp); ok {
			return fromCacheEntry(rawURL, entry, e.Cache.BodyPath(fp), opts), nil
		}
	}

	status, respHeaders, body, finalURL, redirectChain, transportErr := e.do(ctx, u, opts)

	contentType := sniffContentType(respHeaders.Get("Content-Type"), body)
	class, reason := classify(status, transportErr, body, contentType, opts.DetectBlocks)

	truncated := int64(len(body)) >= maxBytes

	doc := docmodel.Document{
		URL:         rawURL,
		FetchedAt:   time.Now().UTC(),
		FetchMethod: docmodel.FetchMethodHTTP,
		HTTP: &docmodel.HTTPInfo{
			Status:        status,
			FinalURL:      finalURL,
			RedirectChain: redirectChain,
			SelectedHeaders: selectedHeaders(respHeaders),
			BytesRead:     int64(len(body)),
		},
		Artifact: &docmodel.Artifact{
			ContentType: contentType,
			BodyBytes:   int64(len(body)),
			Truncated:   truncated,
		},
	}
	if truncated {
		doc.AddWarning("truncated", fmt.Sprintf("body truncated at %d bytes", maxBytes))
	}

	if e.Cache != nil && !opts.NoCache && transportErr == nil && status >= 200 && status <= 299 {
		meta := cache.Meta{
			URL:          rawURL,
			Method:       http.MethodGet,
			Status:       status,
			FinalURL:     finalURL,
			ContentType:  contentType,
			ETag:         respHeaders.Get("ETag"),
			LastModified: respHeaders.Get("Last-Modified"),
			DoNotPersist: opts.DoNotPersist,
		}
		if path, err := e.Cache.Store(fp, body, meta); err == nil {
			doc.Artifact.BodyPath = path
		}
	}

	return docmodel.FetchResult{
		Document:       doc,
		Classification: class,
		Reason:         reason,
		NextSteps:      nextSteps(class),
	}, nil
}

// do performs the single bounded request, capturing redirect history. It
// returns a non-nil transportErr for connection failures, timeouts, and
// (per the caller's contract) never for 4xx/5xx status codes, which are
// reported as ordinary statuses for classify to interpret.
func (e *Engine) do(ctx context.Context, u *url.URL, opts Options) (status int, headers http.Header, body []byte, finalURL string, redirectChain []string, transportErr error) {
	e.acquire()
	defer e.release()

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	timeout := time.Duration(opts.TimeoutMS) * time.Millisecond
	if opts.TimeoutMS <= 0 {
		timeout = 15 * time.Second
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, nil, nil, "", nil, err
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}

	client := e.client(opts)
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return 0, nil, nil, "", nil, fmt.Errorf("timeout: %w", err)
		}
		return 0, nil, nil, "", nil, err
	}
	defer resp.Body.Close()

	chain := redirectHistory(resp)

	limited := io.LimitReader(resp.Body, maxBytes)
	b, err := io.ReadAll(limited)
	if err != nil {
		return resp.StatusCode, resp.Header, b, resp.Request.URL.String(), chain, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, resp.Header, b, resp.Request.URL.String(), chain, nil
}

func (e *Engine) client(opts Options) *http.Client {
	base := e.HTTPClient
	var c http.Client
	if base != nil {
		c = *base
	}
	maxHops := opts.RedirectMaxHops
	if maxHops <= 0 {
		maxHops = defaultRedirectMaxHops
	}
	if !opts.FollowRedirects {
		maxHops = 0
	}
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxHops {
			return http.ErrUseLastResponse
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
	return &c
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// allowedSelectedHeaders is the whitelist the envelope may surface.
var allowedSelectedHeaders = []string{"Content-Type", "Content-Length", "Date", "Last-Modified", "ETag"}

func selectedHeaders(h http.Header) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string)
	for _, name := range allowedSelectedHeaders {
		if v := h.Get(name); v != "" {
			out[name] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// redirectHistory walks the chain of requests Go's http.Client followed,
// oldest first. Bounded defensively since the chain is attacker-influenced.
func redirectHistory(resp *http.Response) []string {
	var chain []string
	r := resp.Request
	for i := 0; r != nil && i < defaultRedirectMaxHops+1; i++ {
		chain = append([]string{r.URL.String()}, chain...)
		if r.Response == nil {
			break
		}
		r = r.Response.Request
	}
	return chain
}

func fromCacheEntry(rawURL string, entry cache.Entry, bodyPath string, opts Options) docmodel.FetchResult {
	status := entry.Meta.Status
	if status == 0 {
		status = 200
	}
	finalURL := entry.Meta.FinalURL
	if finalURL == "" {
		finalURL = rawURL
	}
	class, reason := classify(status, nil, entry.Body, entry.Meta.ContentType, opts.DetectBlocks)
	doc := docmodel.Document{
		URL:         rawURL,
		FetchedAt:   entry.Meta.StoredAt,
		FetchMethod: docmodel.FetchMethodHTTP,
		HTTP: &docmodel.HTTPInfo{
			Status:    status,
			FinalURL:  finalURL,
			BytesRead: int64(len(entry.Body)),
		},
		Artifact: &docmodel.Artifact{
			ContentType: entry.Meta.ContentType,
			BodyBytes:   int64(len(entry.Body)),
			BodyPath:    bodyPath,
		},
	}
	doc.AddWarning("cache_hit", "served from cache")
	return docmodel.FetchResult{
		Document:       doc,
		Classification: class,
		Reason:         reason,
		NextSteps:      nextSteps(class),
	}
}
