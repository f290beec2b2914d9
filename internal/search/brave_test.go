package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBraveAPI_Search_ParsesResults(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "secret" {
			t.Errorf("missing subscription token header")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"web": map[string]any{
				"results": []map[string]any{
					{"title": "Doc", "url": "https://example.com", "description": "snippet"},
				},
			},
		})
	}))
	defer srv.Close()

	b := &BraveAPI{APIKey: "secret", BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := b.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(got) != 1 || got[0].SourceProvider != "brave_api" {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestBraveAPI_Search_RequiresAPIKey(t *testing.T) {
	t.Parallel()
	b := &BraveAPI{BaseURL: "https://api.search.brave.com/res/v1/web/search"}
	if _, err := b.Search(context.Background(), "q", 5); err == nil {
		t.Fatalf("expected error without api key")
	}
}
