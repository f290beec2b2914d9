package selecter

import (
	"strings"
	"testing"

	"github.com/webtool-dev/webtool/internal/docmodel"
)

func result(title, rawURL string) docmodel.SearchResult {
	return docmodel.SearchResult{Title: title, URL: rawURL, SourceProvider: "test"}
}

func TestSelect_PerDomainCap(t *testing.T) {
	t.Parallel()
	in := []docmodel.SearchResult{
		result("a1", "https://a.com/1"),
		result("a2", "https://a.com/2"),
		result("a3", "https://a.com/3"),
		result("a4", "https://a.com/4"),
		result("b1", "https://b.com/1"),
	}
	out := Select(in, Options{PerDomain: 2, MaxTotal: 10})
	count := map[string]int{}
	for _, r := range out {
		if strings.HasPrefix(r.URL, "https://a.com/") {
			count["a.com"]++
		}
	}
	if got := count["a.com"]; got != 2 {
		t.Fatalf("expected per-domain cap of 2, got %d results for a.com in %+v", got, out)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 total results, got %d", len(out))
	}
}

func TestSelect_DedupesByCanonicalURL(t *testing.T) {
	t.Parallel()
	in := []docmodel.SearchResult{
		result("a", "https://a.com/x#frag"),
		result("a-dup", "https://a.com/x"),
	}
	out := Select(in, Options{})
	if len(out) != 1 {
		t.Fatalf("expected dedupe to collapse to 1 result, got %d", len(out))
	}
}

func TestSelect_PreferDomainsStablePartition(t *testing.T) {
	t.Parallel()
	in := []docmodel.SearchResult{
		result("x1", "https://x.com/1"),
		result("y1", "https://y.com/1"),
		result("x2", "https://x.com/2"),
		result("y2", "https://y.com/2"),
	}
	out := Select(in, Options{MaxTotal: 10, PerDomain: 10, PreferDomains: []string{"y.com"}})
	if len(out) != 4 {
		t.Fatalf("expected all 4 results, got %d", len(out))
	}
	want := []string{"y1", "y2", "x1", "x2"}
	for i, title := range want {
		if out[i].Title != title {
			t.Fatalf("position %d: want %q, got %q (full: %+v)", i, title, out[i].Title, out)
		}
	}
}

func TestSelect_InvalidURLsAreSkipped(t *testing.T) {
	t.Parallel()
	in := []docmodel.SearchResult{
		result("bad", "::not a url::"),
		result("good", "https://a.com/1"),
	}
	out := Select(in, Options{})
	if len(out) != 1 || out[0].Title != "good" {
		t.Fatalf("expected only the valid url to survive, got %+v", out)
	}
}
