package config

import (
	"os"
	"strconv"
	"strings"
)

// ProviderEnv holds the search-provider credentials/flags read straight
// from the environment. Secrets are never accepted as CLI flags, so this
// is the only path that populates them; an explicit --provider flag still
// wins over whatever credentials are present.
type ProviderEnv struct {
	BraveAPIKey        string
	FirecrawlBaseURL   string
	FirecrawlAPIKey    string
	FirecrawlAllowAuto bool
}

// LoadProviderEnv reads the provider env vars.
func LoadProviderEnv() ProviderEnv {
	return ProviderEnv{
		BraveAPIKey:        os.Getenv("BRAVE_API_KEY"),
		FirecrawlBaseURL:   os.Getenv("FIRECRAWL_BASE_URL"),
		FirecrawlAPIKey:    os.Getenv("FIRECRAWL_API_KEY"),
		FirecrawlAllowAuto: parseBoolEnv(os.Getenv("FIRECRAWL_ALLOW_AUTO")),
	}
}

// ApplyEnv populates unset fields of cfg from environment variables;
// explicit cfg values (already set by flags) take precedence.
func ApplyEnv(cfg *Config) {
	if cfg.ProxyURL == "" {
		v := os.Getenv("HTTPS_PROXY")
		if v == "" {
			v = os.Getenv("HTTP_PROXY")
		}
		cfg.ProxyURL = v
	}
	if !cfg.NoColor && os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
}

func parseBoolEnv(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
