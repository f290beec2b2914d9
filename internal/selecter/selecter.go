// Package selecter re-ranks and caps search candidates before the pipeline
// orchestrator extracts them: re-rank by prefer_domains with a stable sort
// (matches first, original order within each bucket), plus a per-domain
// diversity cap and canonical-URL dedupe.
package selecter

import (
	"net/url"
	"strings"

	"github.com/webtool-dev/webtool/internal/docmodel"
)

// Options configures selection constraints.
type Options struct {
	MaxTotal       int
	PerDomain      int
	PreferDomains  []string
}

// Select dedupes by canonical URL, caps results per domain, and stably
// re-ranks so that results whose host matches PreferDomains sort ahead of
// the rest while preserving relative order within each bucket.
func Select(results []docmodel.SearchResult, opt Options) []docmodel.SearchResult {
	if opt.MaxTotal <= 0 {
		opt.MaxTotal = 10
	}
	if opt.PerDomain <= 0 {
		opt.PerDomain = 3
	}

	deduped := dedupe(results)
	ranked := reorderByPreferredDomains(deduped, opt.PreferDomains)

	domainCounts := map[string]int{}
	out := make([]docmodel.SearchResult, 0, opt.MaxTotal)
	for _, r := range ranked {
		u, err := url.Parse(strings.TrimSpace(r.URL))
		if err != nil || u.Host == "" {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if domainCounts[host] >= opt.PerDomain {
			continue
		}
		domainCounts[host]++
		out = append(out, r)
		if len(out) >= opt.MaxTotal {
			break
		}
	}
	return out
}

func dedupe(results []docmodel.SearchResult) []docmodel.SearchResult {
	seen := map[string]struct{}{}
	out := make([]docmodel.SearchResult, 0, len(results))
	for _, r := range results {
		u, err := url.Parse(strings.TrimSpace(r.URL))
		if err != nil || u.Host == "" {
			continue
		}
		canon := canonicalizeURL(u)
		if _, ok := seen[canon]; ok {
			continue
		}
		seen[canon] = struct{}{}
		out = append(out, r)
	}
	return out
}

// reorderByPreferredDomains stably partitions results into "matches a
// preferred domain" and "the rest", each keeping its original relative
// order, without reaching for sort.SliceStable over a synthetic less-than
// (the partition is already a single linear pass).
func reorderByPreferredDomains(results []docmodel.SearchResult, preferDomains []string) []docmodel.SearchResult {
	if len(preferDomains) == 0 {
		return results
	}
	prefer := make([]string, len(preferDomains))
	for i, d := range preferDomains {
		prefer[i] = strings.ToLower(strings.TrimSpace(d))
	}

	matched := make([]docmodel.SearchResult, 0, len(results))
	rest := make([]docmodel.SearchResult, 0, len(results))
	for _, r := range results {
		u, err := url.Parse(strings.TrimSpace(r.URL))
		if err != nil || u.Host == "" {
			rest = append(rest, r)
			continue
		}
		host := strings.ToLower(u.Hostname())
		if hostMatchesAny(host, prefer) {
			matched = append(matched, r)
		} else {
			rest = append(rest, r)
		}
	}
	return append(matched, rest...)
}

func hostMatchesAny(host string, patterns []string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if host == p || strings.HasSuffix(host, "."+p) {
			return true
		}
	}
	return false
}

func canonicalizeURL(u *url.URL) string {
	u2 := *u
	u2.Fragment = ""
	u2.Host = strings.ToLower(u2.Host)
	if (u2.Scheme == "http" && strings.HasSuffix(u2.Host, ":80")) || (u2.Scheme == "https" && strings.HasSuffix(u2.Host, ":443")) {
		u2.Host = u2.Hostname()
	}
	return u2.String()
}
