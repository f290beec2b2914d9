package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/webtool-dev/webtool/internal/cache"
	"github.com/webtool-dev/webtool/internal/docmodel"
	"github.com/webtool-dev/webtool/internal/fetch"
	"github.com/webtool-dev/webtool/internal/policy"
	"github.com/webtool-dev/webtool/internal/render"
	"github.com/webtool-dev/webtool/internal/search"
)

type fakeProvider struct {
	id      string
	results []docmodel.SearchResult
}

func (f *fakeProvider) Name() string { return f.id }

func (f *fakeProvider) Search(_ context.Context, _ string, limit int) ([]docmodel.SearchResult, error) {
	out := f.results
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func newPipelineOrchestrator(t *testing.T, srv *httptest.Server, results []docmodel.SearchResult) *Orchestrator {
	t.Helper()
	c := &cache.Cache{Dir: t.TempDir()}
	registry := search.NewRegistry(search.Info{
		ID: "fake", Type: "fake", Enabled: true,
		Provider: &fakeProvider{id: "fake", results: results},
	})
	return &Orchestrator{
		Fetch:    &fetch.Engine{HTTPClient: http.DefaultClient, Cache: c},
		Render:   render.NoopRenderer{},
		Registry: registry,
		Cache:    c,
		Policy:   policy.Default(policy.ModeStandard),
	}
}

func TestPipeline_PlanModeSkipsFetch(t *testing.T) {
	results := []docmodel.SearchResult{
		{Title: "A", URL: "https://a.example/1", SourceProvider: "fake", ResultID: "fake:0"},
		{Title: "B", URL: "https://b.example/2", SourceProvider: "fake", ResultID: "fake:1"},
	}
	o := newPipelineOrchestrator(t, nil, results)

	out, err := o.Pipeline(context.Background(), "query", PipelineOptions{Plan: true, TopK: 10})
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	if !out.Plan {
		t.Fatal("expected Plan=true to survive in result")
	}
	if len(out.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(out.Candidates))
	}
	if out.Results != nil {
		t.Fatalf("expected no fetch in plan mode, got %d results", len(out.Results))
	}
}

func TestPipeline_ConcurrentFetchPreservesCandidateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Deliberately vary latency so goroutines finish out of order.
		if r.URL.Path == "/slow" {
			time.Sleep(30 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>content for " + r.URL.Path + " with enough words to extract cleanly</p></body></html>"))
	}))
	defer srv.Close()

	results := []docmodel.SearchResult{
		{Title: "slow", URL: srv.URL + "/slow", SourceProvider: "fake", ResultID: "fake:0"},
		{Title: "fast1", URL: srv.URL + "/fast1", SourceProvider: "fake", ResultID: "fake:1"},
		{Title: "fast2", URL: srv.URL + "/fast2", SourceProvider: "fake", ResultID: "fake:2"},
	}
	o := newPipelineOrchestrator(t, srv, results)

	out, err := o.Pipeline(context.Background(), "query", PipelineOptions{TopK: 10, Method: MethodHTTP})
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	if len(out.Results) != len(results) {
		t.Fatalf("results = %d, want %d", len(out.Results), len(results))
	}
	for i, r := range out.Results {
		if r.Candidate.URL != results[i].URL {
			t.Fatalf("result[%d].Candidate.URL = %q, want %q (order must match candidate rank, not completion order)", i, r.Candidate.URL, results[i].URL)
		}
		if r.Error != "" {
			t.Fatalf("result[%d] error = %q", i, r.Error)
		}
	}
}

func TestPipeline_NoEnabledProvider(t *testing.T) {
	c := &cache.Cache{Dir: t.TempDir()}
	o := &Orchestrator{
		Fetch:    &fetch.Engine{HTTPClient: http.DefaultClient, Cache: c},
		Render:   render.NoopRenderer{},
		Registry: search.NewRegistry(),
		Cache:    c,
		Policy:   policy.Default(policy.ModeStandard),
	}
	if _, err := o.Pipeline(context.Background(), "query", PipelineOptions{}); err == nil {
		t.Fatal("expected error when no provider is enabled")
	}
}

func TestPipeline_FiltersBlockedDomainsBeforeFetch(t *testing.T) {
	results := []docmodel.SearchResult{
		{Title: "blocked", URL: "https://blocked.example/1", SourceProvider: "fake", ResultID: "fake:0"},
		{Title: "allowed", URL: "https://allowed.example/2", SourceProvider: "fake", ResultID: "fake:1"},
	}
	o := newPipelineOrchestrator(t, nil, results)
	o.Policy.BlockDomains = []string{"blocked.example"}

	out, err := o.Pipeline(context.Background(), "query", PipelineOptions{Plan: true, TopK: 10})
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	if len(out.Candidates) != 1 || out.Candidates[0].URL != "https://allowed.example/2" {
		t.Fatalf("candidates = %+v, want only the allowed domain", out.Candidates)
	}
}
