package policy

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsManager is a per-process, in-memory robots.txt cache keyed by host.
// It never touches the on-disk response cache; it is intentionally a bare
// map scoped to the manager's lifetime.
type RobotsManager struct {
	HTTPClient *http.Client
	UserAgent  string
	EntryTTL   time.Duration

	mu  sync.Mutex
	mem map[string]robotsEntry
	now func() time.Time
}

type robotsEntry struct {
	data    *robotstxt.RobotsData
	expires time.Time
	failed  bool
}

// Allowed reports whether rawURL is permitted by the host's robots.txt for
// the manager's user agent. A fetch failure fails open (allowed=true),
// mirroring the reference crawler's "treat robots as advisory on fetch
// failure" behavior (tools/crawler/requests_crawler.go isAllowedByRobots).
func (m *RobotsManager) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse url: %w", err)
	}
	host := u.Host
	if host == "" {
		return false, fmt.Errorf("missing host in %q", rawURL)
	}
	if isLocalOrPrivateHost(u.Hostname()) {
		return false, fmt.Errorf("private host not allowed: %s", u.Hostname())
	}

	data, err := m.fetch(ctx, u)
	if err != nil {
		return true, nil // fail open; caller may still log a warning
	}
	group := data.FindGroup(m.agent())
	return group.Test(u.Path), nil
}

func (m *RobotsManager) agent() string {
	if strings.TrimSpace(m.UserAgent) == "" {
		return "*"
	}
	return m.UserAgent
}

func (m *RobotsManager) fetch(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	if m.now == nil {
		m.now = time.Now
	}
	host := u.Host

	m.mu.Lock()
	if ent, ok := m.mem[host]; ok && m.now().Before(ent.expires) {
		data := ent.data
		failed := ent.failed
		m.mu.Unlock()
		if failed {
			return nil, fmt.Errorf("robots fetch previously failed for %s", host)
		}
		return data, nil
	}
	m.mu.Unlock()

	robotsURL := u.Scheme + "://" + host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	if m.UserAgent != "" {
		req.Header.Set("User-Agent", m.UserAgent)
	}
	client := m.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		m.store(host, nil, true)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		m.store(host, nil, true)
		return nil, fmt.Errorf("robots.txt status %d for %s", resp.StatusCode, host)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		m.store(host, nil, true)
		return nil, err
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		m.store(host, nil, true)
		return nil, err
	}
	m.store(host, data, false)
	return data, nil
}

func (m *RobotsManager) store(host string, data *robotstxt.RobotsData, failed bool) {
	ttl := m.EntryTTL
	if ttl <= 0 {
		ttl = RobotsCacheTTL
	}
	m.mu.Lock()
	if m.mem == nil {
		m.mem = make(map[string]robotsEntry)
	}
	m.mem[host] = robotsEntry{data: data, expires: m.now().Add(ttl), failed: failed}
	m.mu.Unlock()
}

func isLocalOrPrivateHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "localhost" || h == "localhost.localdomain" || h == "::1" || h == "[::1]" {
		return true
	}
	if ip := net.ParseIP(h); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return true
		}
	}
	return false
}
