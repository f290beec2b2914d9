package main

import (
	"net/http"
	"testing"
)

func TestBuildRegistry_EnablesOnlyConfiguredProviders(t *testing.T) {
	prevSearxng := cfg.SearxNGURL
	prevRSS := cfg.RSSFeedURL
	prevEnv := searchProviderEnv
	defer func() {
		cfg.SearxNGURL = prevSearxng
		cfg.RSSFeedURL = prevRSS
		searchProviderEnv = prevEnv
	}()

	cfg.SearxNGURL = "http://searx.example/"
	cfg.RSSFeedURL = ""
	searchProviderEnv.BraveAPIKey = ""
	searchProviderEnv.FirecrawlBaseURL = ""

	reg := buildRegistry(http.DefaultClient)

	enabled := map[string]bool{}
	for _, info := range reg.List() {
		enabled[info.ID] = info.Enabled
	}

	if !enabled["searxng_local"] {
		t.Fatal("expected searxng_local to be enabled when --searxng-url is set")
	}
	if enabled["brave_api"] {
		t.Fatal("expected brave_api to be disabled without BRAVE_API_KEY")
	}
	if enabled["rss_feed"] {
		t.Fatal("expected rss_feed to be disabled without --rss-feed-url")
	}
}

func TestBuildRegistry_OrderMatchesFallbackPrecedence(t *testing.T) {
	reg := buildRegistry(http.DefaultClient)
	ids := make([]string, 0, len(reg.List()))
	for _, info := range reg.List() {
		ids = append(ids, info.ID)
	}
	want := []string{"brave_api", "searxng_local", "firecrawl_endpoint", "ddgs", "rss_feed"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d registry entries, got %d: %v", len(want), len(ids), ids)
	}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("position %d: want %q, got %q (full: %v)", i, id, ids[i], ids)
		}
	}
}
