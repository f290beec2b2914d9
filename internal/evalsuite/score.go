package evalsuite

import (
	"github.com/webtool-dev/webtool/internal/cache"
	"github.com/webtool-dev/webtool/internal/docmodel"
)

// CaseResult is one scored suite case.
type CaseResult struct {
	ID                  string   `json:"id,omitempty"`
	Query               string   `json:"query"`
	Hit                 bool     `json:"hit"`
	RankOfFirstHit      int      `json:"rank_of_first_hit,omitempty"`
	ReciprocalRank      float64  `json:"reciprocal_rank"`
	FetchedURL          string   `json:"fetched_url,omitempty"`
	Blocked             bool     `json:"blocked,omitempty"`
	NeedsRender         bool     `json:"needs_render,omitempty"`
	ExtractionEmpty     bool     `json:"extraction_empty,omitempty"`
	ExtractedWordCount  int      `json:"extracted_word_count,omitempty"`
	Error               string   `json:"error,omitempty"`
}

// Summary aggregates scored cases.
type Summary struct {
	HitAtK                  float64 `json:"hit_at_k"`
	MRR                     float64 `json:"mrr"`
	BlockedRate             float64 `json:"blocked_rate"`
	NeedsRenderRate         float64 `json:"needs_render_rate"`
	ExtractionNonemptyRate  float64 `json:"extraction_nonempty_rate"`
}

// ScoreSearch computes hit@k (any expected_urls appears in the normalized
// top-k) and MRR (1/rank of first hit) for one case's search results.
func ScoreSearch(c Case, results []docmodel.SearchResult, k int) (hit bool, rank int, reciprocalRank float64) {
	if k <= 0 {
		k = len(results)
	}
	if k > len(results) {
		k = len(results)
	}
	expected := map[string]bool{}
	for _, u := range NormalizeCandidateURLs(c.ExpectedURLs) {
		expected[u] = true
	}
	expectedDomains := c.ExpectedDomains

	for i := 0; i < k; i++ {
		normalized := cache.NormalizeURL(results[i].URL)
		if expected[normalized] || matchesAnyDomain(results[i].URL, expectedDomains) {
			return true, i + 1, 1.0 / float64(i+1)
		}
	}
	return false, 0, 0
}

func matchesAnyDomain(rawURL string, domains []string) bool {
	if len(domains) == 0 {
		return false
	}
	host := hostOf(rawURL)
	if host == "" {
		return false
	}
	for _, d := range domains {
		if host == d || hasDomainSuffix(host, d) {
			return true
		}
	}
	return false
}

// Aggregate folds scored cases into a Summary.
func Aggregate(results []CaseResult) Summary {
	if len(results) == 0 {
		return Summary{}
	}
	var hits, blocked, needsRender, nonEmpty int
	var rrSum float64
	for _, r := range results {
		if r.Hit {
			hits++
		}
		rrSum += r.ReciprocalRank
		if r.Blocked {
			blocked++
		}
		if r.NeedsRender {
			needsRender++
		}
		if !r.ExtractionEmpty && r.FetchedURL != "" {
			nonEmpty++
		}
	}
	n := float64(len(results))
	return Summary{
		HitAtK:                 float64(hits) / n,
		MRR:                    rrSum / n,
		BlockedRate:            float64(blocked) / n,
		NeedsRenderRate:        float64(needsRender) / n,
		ExtractionNonemptyRate: float64(nonEmpty) / n,
	}
}
