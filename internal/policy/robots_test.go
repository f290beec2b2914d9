package policy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

// httptest.Server listens on a loopback address, which Allowed itself
// refuses outright (isLocalOrPrivateHost), so these cases drive the
// unexported fetch/cache machinery directly rather than Allowed.

func TestRobotsManager_FetchParsesDisallowRules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	}))
	defer srv.Close()

	m := &RobotsManager{HTTPClient: srv.Client()}
	u, _ := url.Parse(srv.URL + "/private/page")
	data, err := m.fetch(context.Background(), u)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	group := data.FindGroup(m.agent())
	if group.Test("/public/page") != true {
		t.Fatal("expected /public/page to be allowed")
	}
	if group.Test("/private/page") != false {
		t.Fatal("expected /private/page to be disallowed")
	}
}

func TestRobotsManager_FetchFailureIsReportedAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := &RobotsManager{HTTPClient: srv.Client()}
	u, _ := url.Parse(srv.URL + "/page")
	if _, err := m.fetch(context.Background(), u); err == nil {
		t.Fatal("expected a non-2xx robots.txt fetch to return an error")
	}
}

func TestRobotsManager_FetchFailureIsCachedAndReportedOnRepeat(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := &RobotsManager{HTTPClient: srv.Client(), EntryTTL: time.Hour}
	u, _ := url.Parse(srv.URL + "/page")
	for i := 0; i < 3; i++ {
		if _, err := m.fetch(context.Background(), u); err == nil {
			t.Fatal("expected a cached failure to keep returning an error")
		}
	}
	if hits != 1 {
		t.Fatalf("robots.txt fetched %d times, want 1 (the failure itself should be cached for EntryTTL)", hits)
	}
}

func TestRobotsManager_FetchCachesSuccessWithinTTL(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("User-agent: *\nDisallow: /blocked\n"))
	}))
	defer srv.Close()

	m := &RobotsManager{HTTPClient: srv.Client(), EntryTTL: time.Hour}
	u, _ := url.Parse(srv.URL + "/ok")
	for i := 0; i < 3; i++ {
		if _, err := m.fetch(context.Background(), u); err != nil {
			t.Fatalf("fetch: %v", err)
		}
	}
	if hits != 1 {
		t.Fatalf("robots.txt fetched %d times, want 1 (should be served from the in-memory cache)", hits)
	}
}

func TestRobotsManager_CustomUserAgentGroupIsHonored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: webtool-bot\nDisallow: /only-default-allowed\n\nUser-agent: *\nAllow: /\n"))
	}))
	defer srv.Close()

	m := &RobotsManager{HTTPClient: srv.Client(), UserAgent: "webtool-bot"}
	u, _ := url.Parse(srv.URL + "/only-default-allowed")
	data, err := m.fetch(context.Background(), u)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if data.FindGroup(m.agent()).Test("/only-default-allowed") != false {
		t.Fatal("expected the webtool-bot-specific group to disallow this path")
	}
}

func TestRobotsManager_AllowedRejectsPrivateHosts(t *testing.T) {
	m := &RobotsManager{}
	if _, err := m.Allowed(context.Background(), "http://localhost/page"); err == nil {
		t.Fatal("expected an error for localhost, not a silent allow/deny")
	}
	if _, err := m.Allowed(context.Background(), "http://127.0.0.1/page"); err == nil {
		t.Fatal("expected an error for a loopback IP")
	}
}

func TestRobotsManager_AllowedFailsOpenOnFetchError(t *testing.T) {
	m := &RobotsManager{HTTPClient: &http.Client{Timeout: time.Millisecond}}
	// A host under the reserved .invalid TLD never resolves: the
	// robots.txt GET fails, and Allowed must fail open (allowed=true).
	allowed, err := m.Allowed(context.Background(), "https://webtool-eval-unreachable.invalid/page")
	if err != nil {
		t.Fatalf("Allowed should fail open, got error: %v", err)
	}
	if !allowed {
		t.Fatal("expected fail-open (allowed=true) when robots.txt fetch fails")
	}
}
