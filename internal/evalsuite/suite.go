// Package evalsuite parses evaluation suite files and scores search
// results against them: JSONL with `#`-comment and blank-line skipping, or
// a JSON array/object, hit@k and MRR scoring. The line-oriented scan for
// the JSONL form uses a splitLines/state-machine idiom; the per-case
// candidate scoring loop reuses internal/cache.NormalizeURL for URL
// normalization.
package evalsuite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/webtool-dev/webtool/internal/cache"
)

// Case is one evaluation case.
type Case struct {
	ID             string   `json:"id,omitempty"`
	Query          string   `json:"query"`
	ExpectedURLs   []string `json:"expected_urls,omitempty"`
	ExpectedDomains []string `json:"expected_domains,omitempty"`
	K              int      `json:"k,omitempty"`
}

type suiteDocument struct {
	Cases []Case `json:"cases"`
}

// ParseSuite accepts either JSONL (one case per line, blank and
// `#`-prefixed lines ignored) or a JSON array of cases or a JSON object of
// the form {"cases": [...]}.
func ParseSuite(raw []byte) ([]Case, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var cases []Case
		if err := json.Unmarshal(trimmed, &cases); err != nil {
			return nil, fmt.Errorf("evalsuite: parse json array: %w", err)
		}
		return cases, nil
	}
	if trimmed[0] == '{' {
		// A {"cases": [...]} object; anything else starting with '{' is
		// JSONL whose first line is a case.
		var doc suiteDocument
		if err := json.Unmarshal(trimmed, &doc); err == nil && doc.Cases != nil {
			return doc.Cases, nil
		}
	}
	return parseJSONL(raw)
}

func parseJSONL(raw []byte) ([]Case, error) {
	var cases []Case
	for i, line := range splitLines(string(raw)) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		var c Case
		if err := json.Unmarshal([]byte(trimmed), &c); err != nil {
			return nil, fmt.Errorf("evalsuite: line %d: %w", i+1, err)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// NormalizeCandidateURLs lowercases/strips fragments so expected_urls
// comparisons match the same canonicalization the cache uses.
func NormalizeCandidateURLs(urls []string) []string {
	out := make([]string, len(urls))
	for i, u := range urls {
		out[i] = cache.NormalizeURL(u)
	}
	return out
}
