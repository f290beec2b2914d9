package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the on-disk schema for project/user config files, a
// flattened nested shape matching this tool's flag surface.
type FileConfig struct {
	Cache struct {
		Dir    string        `yaml:"dir" json:"dir"`
		MaxMB  int           `yaml:"maxMB" json:"maxMB"`
		TTL    time.Duration `yaml:"ttl" json:"ttl"`
		NoCache bool         `yaml:"noCache" json:"noCache"`
	} `yaml:"cache" json:"cache"`

	Evidence struct {
		Dir string `yaml:"dir" json:"dir"`
	} `yaml:"evidence" json:"evidence"`

	Robots string `yaml:"robots" json:"robots"`
	Policy string `yaml:"policy" json:"policy"`

	Domains struct {
		Allow []string `yaml:"allow" json:"allow"`
		Block []string `yaml:"block" json:"block"`
	} `yaml:"domains" json:"domains"`

	TimeoutSec int    `yaml:"timeoutSec" json:"timeoutSec"`
	Proxy      string `yaml:"proxy" json:"proxy"`
	Redact     bool   `yaml:"redact" json:"redact"`
	Verbose    bool   `yaml:"verbose" json:"verbose"`
	NoColor    bool   `yaml:"noColor" json:"noColor"`
}

// LoadFile reads YAML or JSON into FileConfig, guessing the format from the
// extension and falling back to trying both.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if yerr := yaml.Unmarshal(b, &fc); yerr != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", yerr, jerr)
			}
		}
	}
	return fc, nil
}

// Overlay applies fc onto cfg wherever cfg still holds the mode-default
// value, so project/user config files supply defaults without masking
// flags or env vars already resolved into cfg.
func Overlay(cfg *Config, fc FileConfig, defaults Config) {
	if cfg.CacheDir == defaults.CacheDir && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxMB == defaults.CacheMaxMB && fc.Cache.MaxMB > 0 {
		cfg.CacheMaxMB = fc.Cache.MaxMB
	}
	if cfg.CacheTTL == defaults.CacheTTL && fc.Cache.TTL > 0 {
		cfg.CacheTTL = fc.Cache.TTL
	}
	if !cfg.NoCache && fc.Cache.NoCache {
		cfg.NoCache = true
	}
	if cfg.EvidenceDir == "" && fc.Evidence.Dir != "" {
		cfg.EvidenceDir = fc.Evidence.Dir
	}
	if cfg.Robots == defaults.Robots && fc.Robots != "" {
		cfg.Robots = RobotsMode(fc.Robots)
	}
	if cfg.Policy == defaults.Policy && fc.Policy != "" {
		cfg.Policy = Policy(fc.Policy)
	}
	if len(cfg.AllowDomains) == 0 && len(fc.Domains.Allow) > 0 {
		cfg.AllowDomains = fc.Domains.Allow
	}
	if len(cfg.BlockDomains) == 0 && len(fc.Domains.Block) > 0 {
		cfg.BlockDomains = fc.Domains.Block
	}
	if cfg.TimeoutSec == defaults.TimeoutSec && fc.TimeoutSec > 0 {
		cfg.TimeoutSec = fc.TimeoutSec
	}
	if cfg.ProxyURL == "" && fc.Proxy != "" {
		cfg.ProxyURL = fc.Proxy
	}
	if !cfg.Redact && fc.Redact {
		cfg.Redact = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
	if !cfg.NoColor && fc.NoColor {
		cfg.NoColor = true
	}
}
