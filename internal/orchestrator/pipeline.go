package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/webtool-dev/webtool/internal/docmodel"
	"github.com/webtool-dev/webtool/internal/extract"
	"github.com/webtool-dev/webtool/internal/policy"
	"github.com/webtool-dev/webtool/internal/search"
	"github.com/webtool-dev/webtool/internal/selecter"
)

const defaultFetchConcurrency = 4

// PipelineOptions configures one pipeline run: query, top_k, extract_k,
// prefer_domains, method, and plan.
type PipelineOptions struct {
	TopK          int
	ExtractK      int
	PreferDomains []string
	Method        Method
	Plan          bool
	ProviderID    string // empty selects the first-enabled registry entry

	// BudgetMS is accepted but not enforced; when set it is surfaced as a warning so the
	// flag is never silently a no-op.
	BudgetMS int
}

// CandidateDoc pairs a selected candidate with its extraction outcome (nil
// Document/err when Plan is true, since no fetch occurs).
type CandidateDoc struct {
	Candidate docmodel.SearchResult
	Document  *docmodel.Document
	Error     string
}

// PipelineResult is the outcome of one pipeline run.
type PipelineResult struct {
	Query      string
	Candidates []docmodel.SearchResult
	Results    []CandidateDoc
	Plan       bool
	ProviderID string
	Warnings   []string
}

// Pipeline runs search → re-rank → (optionally) bounded extraction. In plan mode it stops after selection: no fetch occurs and
// data.documents is empty.
func (o *Orchestrator) Pipeline(ctx context.Context, query string, opts PipelineOptions) (PipelineResult, error) {
	info, ok := o.resolveProvider(opts.ProviderID)
	if !ok {
		return PipelineResult{}, fmt.Errorf("pipeline: no enabled search provider")
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = 10
	}
	results, err := info.Provider.Search(ctx, query, topK)
	if err != nil {
		return PipelineResult{}, fmt.Errorf("pipeline: search via %s: %w", info.ID, err)
	}

	filtered := o.filterByDomainPolicy(results)
	ranked := selecter.Select(filtered, selecter.Options{
		MaxTotal:      topK,
		PreferDomains: opts.PreferDomains,
	})

	out := PipelineResult{Query: query, Candidates: ranked, Plan: opts.Plan, ProviderID: info.ID}
	if opts.BudgetMS > 0 {
		out.Warnings = append(out.Warnings, fmt.Sprintf("budget_ms=%d accepted but not enforced", opts.BudgetMS))
	}
	if opts.Plan {
		return out, nil
	}

	extractK := opts.ExtractK
	if extractK <= 0 || extractK > len(ranked) {
		extractK = len(ranked)
	}
	if extractK > defaultFetchConcurrency*8 {
		extractK = defaultFetchConcurrency * 8 // sane upper bound; pipeline is not meant for bulk crawling
	}

	out.Results = o.extractCandidatesConcurrently(ctx, ranked[:extractK], opts.Method)
	return out, nil
}

func (o *Orchestrator) resolveProvider(providerID string) (search.Info, bool) {
	if providerID != "" {
		return o.Registry.ByID(providerID)
	}
	return o.Registry.FirstEnabled()
}

// filterByDomainPolicy drops candidates the allow/block list already
// excludes, before spending a fetch on them. Robots enforcement is not
// checked here — it requires network I/O and is deferred to the fetch
// leg, per policy.RobotsManager's own separation of concerns.
func (o *Orchestrator) filterByDomainPolicy(results []docmodel.SearchResult) []docmodel.SearchResult {
	if len(o.Policy.AllowDomains) == 0 && len(o.Policy.BlockDomains) == 0 {
		return results
	}
	out := make([]docmodel.SearchResult, 0, len(results))
	for _, r := range results {
		if refusal, err := policy.EnforceURLPolicy(r.URL, o.Policy); err == nil && refusal == nil {
			out = append(out, r)
		}
	}
	return out
}

// extractCandidatesConcurrently fetches+extracts up to defaultFetchConcurrency
// candidates in parallel, joining results back into candidate-rank order
// regardless of completion order, via an acquire/release semaphore that
// gates one pipeline run's fan-out.
func (o *Orchestrator) extractCandidatesConcurrently(ctx context.Context, candidates []docmodel.SearchResult, method Method) []CandidateDoc {
	if method == "" {
		method = MethodAuto
	}
	out := make([]CandidateDoc, len(candidates))
	sem := make(chan struct{}, defaultFetchConcurrency)
	var wg sync.WaitGroup

	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c docmodel.SearchResult) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result := CandidateDoc{Candidate: c}
			er, err := o.Extract(ctx, c.URL, ExtractOptions{Method: method, Strategy: extract.StrategyAuto})
			switch {
			case err != nil:
				result.Error = err.Error()
			case er.RefusalCode != "":
				result.Error = fmt.Sprintf("%s: %s", er.RefusalCode, er.Reason)
			default:
				doc := er.Document
				result.Document = &doc
			}
			out[i] = result
		}(i, c)
	}
	wg.Wait()
	return out
}
