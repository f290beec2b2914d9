package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOverlay_OnlyFillsDefaultedFields(t *testing.T) {
	t.Parallel()
	defaults := Defaults()
	cfg := defaults
	cfg.CacheDir = "/explicit/from/flag"

	fc := FileConfig{}
	fc.Cache.Dir = "/from/file"
	fc.Cache.MaxMB = 900
	fc.Policy = "strict"

	Overlay(&cfg, fc, defaults)

	if cfg.CacheDir != "/explicit/from/flag" {
		t.Fatalf("flag-set CacheDir must not be overridden by file config, got %q", cfg.CacheDir)
	}
	if cfg.CacheMaxMB != 900 {
		t.Fatalf("expected file config to fill default CacheMaxMB, got %d", cfg.CacheMaxMB)
	}
	if cfg.Policy != PolicyStrict {
		t.Fatalf("expected file config to fill default Policy, got %q", cfg.Policy)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "webtool.yaml")
	content := "policy: strict\ncache:\n  maxMB: 250\ndomains:\n  allow: [\"example.com\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fc.Policy != "strict" || fc.Cache.MaxMB != 250 || len(fc.Domains.Allow) != 1 {
		t.Fatalf("unexpected file config: %+v", fc)
	}
}

func TestApplyEnv_DoesNotOverrideExplicitProxy(t *testing.T) {
	t.Setenv("HTTPS_PROXY", "https://proxy.example")
	cfg := Config{ProxyURL: "https://explicit.example"}
	ApplyEnv(&cfg)
	if cfg.ProxyURL != "https://explicit.example" {
		t.Fatalf("expected explicit proxy to survive, got %q", cfg.ProxyURL)
	}
}

func TestLoadProviderEnv_ParsesFirecrawlAllowAuto(t *testing.T) {
	t.Setenv("FIRECRAWL_ALLOW_AUTO", "true")
	env := LoadProviderEnv()
	if !env.FirecrawlAllowAuto {
		t.Fatalf("expected FirecrawlAllowAuto=true")
	}
}
