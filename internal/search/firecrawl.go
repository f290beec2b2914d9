package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/webtool-dev/webtool/internal/docmodel"
)

// FirecrawlEndpoint implements Provider against a Firecrawl /search endpoint.
// It reads FIRECRAWL_BASE_URL / FIRECRAWL_API_KEY / FIRECRAWL_ALLOW_AUTO; in
// standard (non-auto) mode it is restricted to a local/self-hosted base URL.
// Structurally identical to SearxNG/BraveAPI's HTTP-then-JSON shape but
// POSTs a JSON body, matching Firecrawl's search API contract.
type FirecrawlEndpoint struct {
	BaseURL    string
	APIKey     string
	AllowAuto  bool
	HTTPClient *http.Client
	UserAgent  string
}

func (f *FirecrawlEndpoint) Name() string { return "firecrawl_endpoint" }

func (f *FirecrawlEndpoint) Search(ctx context.Context, query string, limit int) ([]docmodel.SearchResult, error) {
	if strings.TrimSpace(f.BaseURL) == "" {
		return nil, fmt.Errorf("missing firecrawl base url")
	}
	if !f.AllowAuto && !isLocalBaseURL(f.BaseURL) {
		return nil, fmt.Errorf("firecrawl_endpoint is restricted to a local base url unless FIRECRAWL_ALLOW_AUTO is set")
	}
	if limit <= 0 {
		limit = 10
	}

	reqBody, err := json.Marshal(map[string]any{
		"query": query,
		"limit": limit,
	})
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(f.BaseURL, "/") + "/v1/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	hc := f.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("firecrawl status: %d", resp.StatusCode)
	}

	var fr firecrawlResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, err
	}
	out := make([]docmodel.SearchResult, 0, len(fr.Data))
	for i, r := range fr.Data {
		if r.URL == "" || r.Title == "" {
			continue
		}
		out = append(out, docmodel.SearchResult{
			Title:          strings.TrimSpace(r.Title),
			URL:            strings.TrimSpace(r.URL),
			Snippet:        strings.TrimSpace(r.Description),
			SourceProvider: f.Name(),
			ResultID:       fmtResultID(f.Name(), i),
		})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type firecrawlResponse struct {
	Data []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
	} `json:"data"`
}

func isLocalBaseURL(base string) bool {
	lower := strings.ToLower(base)
	return strings.Contains(lower, "localhost") ||
		strings.Contains(lower, "127.0.0.1") ||
		strings.Contains(lower, "://0.0.0.0") ||
		strings.HasSuffix(lower, ".local") ||
		strings.Contains(lower, ".local/") ||
		strings.Contains(lower, ".local:")
}
