package orchestrator

import (
	"context"
	"errors"
	"strings"

	"github.com/webtool-dev/webtool/internal/docmodel"
	"github.com/webtool-dev/webtool/internal/evalsuite"
	"github.com/webtool-dev/webtool/internal/extract"
)

var errNoProvider = errors.New("eval: no enabled search provider")

// EvalOptions configures one eval run: suite, provider selection, k, and
// fail_on.
type EvalOptions struct {
	ProviderID string
	K          int
	FailOn     evalsuite.FailOn
}

// EvalResult is the outcome of one eval run, ready for envelope.data/eval.
type EvalResult struct {
	Cases        []evalsuite.CaseResult
	Summary      evalsuite.Summary
	ExitCode     int
	CacheHits    int
	CacheLookups int
}

// Eval scores every suite case's search hit@k/MRR, then fetches+extracts a
// representative target per case to record quality metrics. Routing every fetch
// through the cache is what makes repeat runs deterministic.
func (o *Orchestrator) Eval(ctx context.Context, cases []evalsuite.Case, opts EvalOptions) (EvalResult, error) {
	info, ok := o.resolveProvider(opts.ProviderID)
	if !ok {
		return EvalResult{}, errNoProvider
	}

	results := make([]evalsuite.CaseResult, 0, len(cases))
	for _, c := range cases {
		k := c.K
		if k <= 0 {
			k = opts.K
		}
		searchResults, err := info.Provider.Search(ctx, c.Query, max(k, 10))
		cr := evalsuite.CaseResult{ID: c.ID, Query: c.Query}
		if err != nil {
			cr.Error = err.Error()
			results = append(results, cr)
			continue
		}
		hit, rank, rr := evalsuite.ScoreSearch(c, searchResults, k)
		cr.Hit = hit
		cr.RankOfFirstHit = rank
		cr.ReciprocalRank = rr

		target := pickFetchTarget(searchResults, hit, rank)
		if target != "" {
			er, eerr := o.Extract(ctx, target, ExtractOptions{Method: MethodAuto, Strategy: extract.StrategyAuto})
			switch {
			case eerr != nil:
				cr.Error = eerr.Error()
			case er.RefusalCode != "":
				cr.Blocked = er.RefusalCode == "blocked" || er.RefusalCode == "policy_refused"
				cr.NeedsRender = er.RefusalCode == "needs_render"
				cr.Error = er.Reason
			default:
				cr.FetchedURL = target
				if er.Document.Extracted != nil {
					words := len(strings.Fields(er.Document.Extracted.Text))
					cr.ExtractedWordCount = words
					cr.ExtractionEmpty = words == 0
				} else {
					cr.ExtractionEmpty = true
				}
			}
		}
		results = append(results, cr)
	}

	return EvalResult{
		Cases:    results,
		Summary:  evalsuite.Aggregate(results),
		ExitCode: evalsuite.ExitCode(opts.FailOn, results),
	}, nil
}

// pickFetchTarget selects the URL eval fetches to compute fetch/extract
// quality metrics for a case: the first hit when one was found within k,
// otherwise the top search result.
func pickFetchTarget(results []docmodel.SearchResult, hit bool, rank int) string {
	if len(results) == 0 {
		return ""
	}
	if hit && rank >= 1 && rank <= len(results) {
		return results[rank-1].URL
	}
	return results[0].URL
}
