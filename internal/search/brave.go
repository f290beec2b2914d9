package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/webtool-dev/webtool/internal/docmodel"
)

// BraveAPI implements Provider against Brave's web search API. It reads
// BRAVE_API_KEY. Structurally identical to
// SearxNG's HTTP-GET-then-JSON-decode shape, retargeted to Brave's endpoint
// and response envelope.
type BraveAPI struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

const braveDefaultBaseURL = "https://api.search.brave.com/res/v1/web/search"

func (b *BraveAPI) Name() string { return "brave_api" }

func (b *BraveAPI) Search(ctx context.Context, query string, limit int) ([]docmodel.SearchResult, error) {
	if strings.TrimSpace(b.APIKey) == "" {
		return nil, fmt.Errorf("missing brave api key")
	}
	if limit <= 0 {
		limit = 10
	}
	base := b.BaseURL
	if base == "" {
		base = braveDefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", fmt.Sprintf("%d", limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.APIKey)
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	hc := b.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("brave status: %d", resp.StatusCode)
	}

	var br braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, err
	}
	out := make([]docmodel.SearchResult, 0, len(br.Web.Results))
	for i, r := range br.Web.Results {
		if r.URL == "" || r.Title == "" {
			continue
		}
		out = append(out, docmodel.SearchResult{
			Title:          strings.TrimSpace(r.Title),
			URL:            strings.TrimSpace(r.URL),
			Snippet:        strings.TrimSpace(r.Description),
			SourceProvider: b.Name(),
			ResultID:       fmtResultID(b.Name(), i),
		})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}
