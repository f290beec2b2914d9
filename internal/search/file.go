package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/webtool-dev/webtool/internal/docmodel"
)

// FileProvider loads search results from a local JSON file for offline/test
// use. It is registered as the "ddgs" id, an offline stand-in at the tail
// of the fallback chain.
type FileProvider struct {
	Path   string
	Policy DomainPolicy
}

func (f *FileProvider) Name() string { return "ddgs" }

type fileRecord struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

func (f *FileProvider) Search(_ context.Context, query string, limit int) ([]docmodel.SearchResult, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("file provider path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var raw []fileRecord
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]docmodel.SearchResult, 0, len(raw))
	for i, r := range raw {
		if r.URL == "" || r.Title == "" {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.Title), q) &&
			!strings.Contains(strings.ToLower(r.Snippet), q) &&
			!matchesByTokens(q, r.Title+"\n"+r.Snippet) {
			continue
		}
		if f.Policy.Denylist != nil || f.Policy.Allowlist != nil {
			if blocked, _ := isDomainBlocked(r.URL, f.Policy.Allowlist, f.Policy.Denylist); blocked {
				continue
			}
		}
		out = append(out, docmodel.SearchResult{
			Title:          r.Title,
			URL:            r.URL,
			Snippet:        r.Snippet,
			SourceProvider: f.Name(),
			ResultID:       fmtResultID(f.Name(), i),
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// matchesByTokens performs a loose token-based match between the query and
// the candidate text: true when at least two meaningful tokens (length >= 3)
// from the query appear in the text.
func matchesByTokens(query, text string) bool {
	query = strings.ToLower(query)
	text = strings.ToLower(text)
	splitter := regexp.MustCompile(`[^a-z0-9]+`)
	qTokens := splitter.Split(query, -1)
	if len(qTokens) == 0 {
		return false
	}
	meaningful := 0
	for _, tok := range qTokens {
		if len(tok) < 3 {
			continue
		}
		if strings.Contains(text, tok) {
			meaningful++
			if meaningful >= 2 {
				return true
			}
		}
	}
	return false
}

func fmtResultID(provider string, i int) string {
	return provider + ":" + strconv.Itoa(i)
}

// isDomainBlocked reports whether rawURL's host is excluded by denylist (if
// any) or, when allowlist is non-empty, not present in it. Denylist takes
// precedence over allowlist.
func isDomainBlocked(rawURL string, allowlist, denylist []string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true, err
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range denylist {
		if domainOrSubdomain(host, d) {
			return true, nil
		}
	}
	if len(allowlist) == 0 {
		return false, nil
	}
	for _, a := range allowlist {
		if domainOrSubdomain(host, a) {
			return false, nil
		}
	}
	return true, nil
}

func domainOrSubdomain(host, pattern string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return false
	}
	return host == pattern || strings.HasSuffix(host, "."+pattern)
}
