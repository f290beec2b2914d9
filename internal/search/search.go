// Package search implements the search Provider interface and an ordered
// registry: a static ordered list plus per-provider metadata {id, type,
// enabled, required_env, privacy_warning}.
package search

import (
	"context"

	"github.com/webtool-dev/webtool/internal/docmodel"
)

// Provider is the capability contract every concrete search backend
// implements.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]docmodel.SearchResult, error)
}

// DomainPolicy lets a provider filter results by host: denylist takes
// precedence over allowlist.
type DomainPolicy struct {
	Allowlist []string
	Denylist  []string
}

// Info is the static, queryable metadata for one registry entry.
type Info struct {
	ID             string
	Type           string
	Enabled        bool
	RequiredEnv    []string
	PrivacyWarning string
	Provider       Provider
}

// Registry holds providers in a fixed fallback order: brave_api >
// searxng_local > firecrawl_endpoint (standard mode, local only) > ddgs.
type Registry struct {
	entries []Info
}

// NewRegistry builds a registry from already-constructed entries, preserving
// caller-supplied order.
func NewRegistry(entries ...Info) *Registry {
	return &Registry{entries: entries}
}

// List returns the registry's entries in registration order.
func (r *Registry) List() []Info {
	return r.entries
}

// FirstEnabled returns the first enabled entry, honoring "auto" precedence:
// the first enabled provider wins.
func (r *Registry) FirstEnabled() (Info, bool) {
	for _, e := range r.entries {
		if e.Enabled {
			return e, true
		}
	}
	return Info{}, false
}

// ByID looks up a registered provider by its id (`eval --provider <id>`).
func (r *Registry) ByID(id string) (Info, bool) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Info{}, false
}
