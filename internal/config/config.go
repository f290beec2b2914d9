// Package config resolves runtime settings from flags, environment
// variables, a project config file, a user config file, and mode defaults,
// in that precedence order (flag > env > project-config > user-config >
// mode-defaults). Split into a flat Config struct, a YAML/JSON FileConfig
// overlaid only onto still-default fields, and small env-var getters.
package config

import "time"

// Policy selects the refusal posture.
type Policy string

const (
	PolicyStandard   Policy = "standard"
	PolicyStrict     Policy = "strict"
	PolicyPermissive Policy = "permissive"
)

// RobotsMode selects how robots.txt directives are enforced.
type RobotsMode string

const (
	RobotsWarn    RobotsMode = "warn"
	RobotsRespect RobotsMode = "respect"
	RobotsIgnore  RobotsMode = "ignore"
)

// Config holds the resolved runtime settings shared across every
// subcommand.
type Config struct {
	JSON     bool
	Pretty   bool
	Plain    bool
	Quiet    bool
	Verbose  bool
	NoColor  bool
	NoInput  bool

	TimeoutSec int
	ProxyURL   string

	CacheDir    string
	NoCache     bool
	Fresh       bool
	CacheMaxMB  int
	CacheTTL    time.Duration

	EvidenceDir string
	Redact      bool

	Robots RobotsMode

	AllowDomains []string
	BlockDomains []string

	Policy Policy

	// SearxNGURL configures the searxng_local provider. Unlike Brave/
	// Firecrawl it has no dedicated env var, so it is flag/config-file
	// only.
	SearxNGURL    string
	SearxNGAPIKey string

	// RSSFeedURL configures the optional rss_feed provider, mostly useful
	// for eval fixtures against a stable feed rather than interactive
	// search.
	RSSFeedURL string

	// ProviderID pins the search registry's FirstEnabled auto-selection to
	// one id (eval's --provider).
	ProviderID string

	// BudgetMS is pipeline's wall-clock budget in milliseconds. Accepted
	// but not enforced; surfaced as a warning when set so the flag is
	// never silently a no-op.
	BudgetMS int
}

// Defaults returns the mode-defaults layer.
func Defaults() Config {
	return Config{
		TimeoutSec: 30,
		CacheDir:   defaultCacheDir(),
		CacheMaxMB: 500,
		CacheTTL:   7 * 24 * time.Hour,
		Robots:     RobotsRespect,
		Policy:     PolicyStandard,
	}
}

func defaultCacheDir() string {
	return ".webtool-cache"
}
