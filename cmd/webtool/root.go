package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/webtool-dev/webtool/internal/cache"
	"github.com/webtool-dev/webtool/internal/config"
	"github.com/webtool-dev/webtool/internal/fetch"
	"github.com/webtool-dev/webtool/internal/orchestrator"
	"github.com/webtool-dev/webtool/internal/policy"
	"github.com/webtool-dev/webtool/internal/render"
	"github.com/webtool-dev/webtool/internal/search"
)

// version is stamped into every envelope's version field.
const version = "0.1.0"

var (
	cfg               config.Config
	cfgFile           string
	startedAt         time.Time
	searchProviderEnv config.ProviderEnv
)

var rootCmd = &cobra.Command{
	Use:   "webtool",
	Short: "Search, fetch, render, and extract web content behind one policy and cache",
	Long: `webtool is a portable CLI kernel: Cache, Fetch Engine, Extractor, Policy,
and a Search Registry bound together by three orchestrator operations
(extract, pipeline, eval).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		startedAt = time.Now()
		return loadConfig()
	},
}

func init() {
	defaults := config.Defaults()
	cfg = defaults

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&cfg.JSON, "json", false, "emit the JSON envelope explicitly (default output format)")
	flags.BoolVar(&cfg.Pretty, "pretty", false, "pretty-print the JSON envelope")
	flags.BoolVar(&cfg.Plain, "plain", false, "emit one semantic value per line instead of JSON")
	flags.BoolVar(&cfg.Quiet, "quiet", false, "suppress the stderr status line and non-error logs")
	flags.BoolVar(&cfg.Verbose, "verbose", false, "enable debug-level logging")
	flags.BoolVar(&cfg.NoColor, "no-color", false, "disable ANSI color in status/log output")
	flags.BoolVar(&cfg.NoInput, "no-input", false, "never prompt; fail instead of waiting on stdin")
	flags.IntVar(&cfg.TimeoutSec, "timeout", defaults.TimeoutSec, "request timeout in seconds")
	flags.StringVar(&cfg.ProxyURL, "proxy", "", "HTTP(S) proxy URL")
	flags.StringVar(&cfg.CacheDir, "cache-dir", defaults.CacheDir, "cache directory")
	flags.BoolVar(&cfg.NoCache, "no-cache", false, "bypass the cache entirely")
	flags.BoolVar(&cfg.Fresh, "fresh", false, "bypass cache lookup, still store the result")
	flags.IntVar(&cfg.CacheMaxMB, "cache-max-mb", defaults.CacheMaxMB, "cache size budget in MB before LRU pruning")
	flags.DurationVar(&cfg.CacheTTL, "cache-ttl", defaults.CacheTTL, "cache entry TTL")
	flags.StringVar(&cfg.EvidenceDir, "evidence-dir", "", "directory to persist evidence artifacts (screenshots, bodies)")
	flags.BoolVar(&cfg.Redact, "redact", false, "redact secret-like error-detail keys and plain-mode URLs (URLs inside the JSON envelope's data are not redacted)")
	flags.StringVar((*string)(&cfg.Robots), "robots", string(defaults.Robots), "robots.txt handling: warn|respect|ignore")
	flags.StringArrayVar(&cfg.AllowDomains, "allow-domain", nil, "restrict network operations to this domain (repeatable)")
	flags.StringArrayVar(&cfg.BlockDomains, "block-domain", nil, "refuse network operations to this domain (repeatable)")
	flags.StringVar((*string)(&cfg.Policy), "policy", string(defaults.Policy), "refusal posture: standard|strict|permissive")
	flags.StringVar(&cfg.SearxNGURL, "searxng-url", "", "base URL of a SearxNG instance for the searxng_local provider")
	flags.StringVar(&cfg.SearxNGAPIKey, "searxng-key", "", "API key for the searxng_local provider")
	flags.StringVar(&cfg.RSSFeedURL, "rss-feed-url", "", "Atom/RSS feed URL for the rss_feed provider")
	flags.StringVar(&cfg.ProviderID, "provider", "", "pin the search registry to this provider id instead of auto-selecting")
	flags.IntVar(&cfg.BudgetMS, "budget-ms", 0, "pipeline wall-clock budget in milliseconds (accepted, not enforced)")
	flags.StringVar(&cfgFile, "config", "", "path to a project config file (default ./.webtool.yaml)")

	rootCmd.AddCommand(providersCmd, searchCmd, fetchCmd, renderCmd, extractCmd, pipelineCmd, evalCmd)
}

// loadConfig applies the flag > env > project-config > user-config >
// mode-defaults precedence, then sets up logging.
func loadConfig() error {
	defaults := config.Defaults()

	// Env runs before the file overlays so that Overlay, which only fills
	// still-empty/default fields, cannot mask an env-provided value.
	config.ApplyEnv(&cfg)

	projectConfigPath := cfgFile
	if projectConfigPath == "" {
		projectConfigPath = "./.webtool.yaml"
	}
	if fc, err := config.LoadFile(projectConfigPath); err == nil {
		config.Overlay(&cfg, fc, defaults)
	} else if cfgFile != "" {
		return fmt.Errorf("load config %s: %w", cfgFile, err)
	}

	if home, err := os.UserHomeDir(); err == nil {
		userConfigPath := home + "/.config/webtool/config.yaml"
		if fc, err := config.LoadFile(userConfigPath); err == nil {
			config.Overlay(&cfg, fc, defaults)
		}
	}

	searchProviderEnv = config.LoadProviderEnv()

	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	switch {
	case cfg.Quiet:
		level = zerolog.Disabled
	case cfg.Verbose:
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339, NoColor: cfg.NoColor || !colorEnabled()})

	return nil
}

// Execute runs the command tree; it is the sole entry point called from
// main.
func Execute() error {
	return rootCmd.Execute()
}

// app bundles every collaborator a command might need. Not every command
// uses every field (e.g. "fetch" only needs Fetch+Robots+Cache), but
// building them together keeps one place responsible for precedence and
// wiring in one place.
type app struct {
	Cache  *cache.Cache
	Fetch  *fetch.Engine
	Robots *policy.RobotsManager
	Render render.Renderer

	Registry *search.Registry
	Orch     *orchestrator.Orchestrator
	Policy   policy.Policy
}

func buildApp() (*app, error) {
	c := &cache.Cache{
		Dir:      cfg.CacheDir,
		TTL:      cfg.CacheTTL,
		MaxBytes: int64(cfg.CacheMaxMB) * 1024 * 1024,
	}
	// Enforce the --cache-max-mb budget once per invocation.
	_, _ = c.Prune()

	httpClient := &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid --proxy: %w", err)
		}
		if t, ok := http.DefaultTransport.(*http.Transport); ok {
			transport := t.Clone()
			transport.Proxy = http.ProxyURL(proxyURL)
			httpClient.Transport = transport
		}
	}

	fetchEngine := &fetch.Engine{
		HTTPClient:    httpClient,
		Cache:         c,
		MaxConcurrent: defaultHTTPConcurrency,
	}

	robots := &policy.RobotsManager{
		HTTPClient: httpClient,
		EntryTTL:   policy.RobotsCacheTTL,
	}

	var renderer render.Renderer = &render.ChromedpRenderer{Cache: c, ScreenshotDir: cfg.EvidenceDir}

	registry := buildRegistry(httpClient)

	pol := policy.Policy{
		Mode:            policy.Mode(cfg.Policy),
		AllowDomains:    cfg.AllowDomains,
		BlockDomains:    cfg.BlockDomains,
		RobotsMode:      policy.RobotsMode(cfg.Robots),
		Redact:          cfg.Redact,
		DetectBlocks:    true,
		FollowRedirects: true,
		TimeoutMS:       cfg.TimeoutSec * 1000,
		MaxBytes:        10 * 1024 * 1024,
	}

	orch := &orchestrator.Orchestrator{
		Fetch:    fetchEngine,
		Render:   renderer,
		Robots:   robots,
		Registry: registry,
		Cache:    c,
		Policy:   pol,
	}

	return &app{
		Cache:    c,
		Fetch:    fetchEngine,
		Robots:   robots,
		Render:   renderer,
		Registry: registry,
		Orch:     orch,
		Policy:   pol,
	}, nil
}

const defaultHTTPConcurrency = 4

// buildRegistry wires every search.Provider in a fixed fallback order
// (brave_api > searxng_local > firecrawl_endpoint > ddgs), each Enabled
// only when its required credential/config is actually present.
func buildRegistry(httpClient *http.Client) *search.Registry {
	brave := &search.BraveAPI{APIKey: searchProviderEnv.BraveAPIKey, HTTPClient: httpClient}
	searxng := &search.SearxNG{BaseURL: cfg.SearxNGURL, APIKey: cfg.SearxNGAPIKey, HTTPClient: httpClient}
	firecrawl := &search.FirecrawlEndpoint{
		BaseURL:    searchProviderEnv.FirecrawlBaseURL,
		APIKey:     searchProviderEnv.FirecrawlAPIKey,
		AllowAuto:  searchProviderEnv.FirecrawlAllowAuto,
		HTTPClient: httpClient,
	}
	fileProvider := &search.FileProvider{Path: os.Getenv("WEBTOOL_DDGS_FIXTURE")}
	rssFeed := &search.RSSFeed{FeedURL: cfg.RSSFeedURL}

	return search.NewRegistry(
		search.Info{
			ID:             "brave_api",
			Type:           "api",
			Enabled:        searchProviderEnv.BraveAPIKey != "",
			RequiredEnv:    []string{"BRAVE_API_KEY"},
			PrivacyWarning: "queries leave the machine to Brave's search API",
			Provider:       brave,
		},
		search.Info{
			ID:             "searxng_local",
			Type:           "self-hosted",
			Enabled:        cfg.SearxNGURL != "",
			RequiredEnv:    nil,
			PrivacyWarning: "queries are sent to the configured SearxNG instance",
			Provider:       searxng,
		},
		search.Info{
			ID:             "firecrawl_endpoint",
			Type:           "api",
			Enabled:        searchProviderEnv.FirecrawlBaseURL != "" && (searchProviderEnv.FirecrawlAllowAuto || isLocalBaseURLFlag(searchProviderEnv.FirecrawlBaseURL)),
			RequiredEnv:    []string{"FIRECRAWL_BASE_URL", "FIRECRAWL_API_KEY"},
			PrivacyWarning: "queries leave the machine to the configured Firecrawl endpoint",
			Provider:       firecrawl,
		},
		search.Info{
			ID:             "ddgs",
			Type:           "file",
			Enabled:        fileProvider.Path != "",
			RequiredEnv:    []string{"WEBTOOL_DDGS_FIXTURE"},
			PrivacyWarning: "offline fixture, no network request is made",
			Provider:       fileProvider,
		},
		search.Info{
			ID:             "rss_feed",
			Type:           "feed",
			Enabled:        cfg.RSSFeedURL != "",
			RequiredEnv:    nil,
			PrivacyWarning: "fetches the configured Atom/RSS feed on every search",
			Provider:       rssFeed,
		},
	)
}

// isLocalBaseURLFlag mirrors search.isLocalBaseURL's loopback/private check
// for the registry's own Enabled gating (the provider re-checks this at
// call time too; this duplicate check only controls whether the registry
// advertises the entry as usable without --allow-auto).
func isLocalBaseURLFlag(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
