// Package policy implements domain allow/block gating, robots.txt
// enforcement, and redaction rules. It is the single place that decides
// whether a URL-based operation may proceed.
package policy

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/idna"
)

// Mode selects how permissive domain gating is.
type Mode string

const (
	ModeStandard   Mode = "standard"
	ModeStrict     Mode = "strict"
	ModePermissive Mode = "permissive"
)

// RobotsMode controls how robots.txt findings affect a request.
type RobotsMode string

const (
	RobotsWarn    RobotsMode = "warn"
	RobotsRespect RobotsMode = "respect"
	RobotsIgnore  RobotsMode = "ignore"
)

// Policy is the value object derived from flag/env/config precedence
// (flags > env > project-config > user-config > mode-defaults).
type Policy struct {
	Mode            Mode
	AllowDomains    []string
	BlockDomains    []string
	RobotsMode      RobotsMode
	Redact          bool
	DetectBlocks    bool
	FollowRedirects bool
	TimeoutMS       int
	MaxBytes        int64
}

// Default returns the mode-appropriate baseline policy.
func Default(mode Mode) Policy {
	p := Policy{
		Mode:            mode,
		RobotsMode:      RobotsWarn,
		DetectBlocks:    true,
		FollowRedirects: true,
		TimeoutMS:       15_000,
		MaxBytes:        10 * 1024 * 1024,
	}
	switch mode {
	case ModeStrict:
		p.RobotsMode = RobotsRespect
		p.Redact = true
	case ModePermissive:
		p.RobotsMode = RobotsIgnore
	}
	return p
}

// RefusalCode is the stable error.code for a policy refusal.
type RefusalCode string

const (
	RefusalNone           RefusalCode = ""
	RefusalPolicyBlocked  RefusalCode = "policy_refused"
	RefusalRobotsDisallow RefusalCode = "robots_disallow"
)

// Refusal describes why enforce_url_policy refused a URL.
type Refusal struct {
	Code    RefusalCode
	Message string
}

// EnforceURLPolicy normalizes the host (strip port, lowercase, IDNA) then
// applies block/allow-list gating. Robots enforcement is a separate step
// (see RobotsManager.Allowed) because it requires network I/O.
func EnforceURLPolicy(rawURL string, p Policy) (*Refusal, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	host, err := normalizeHost(u.Hostname())
	if err != nil {
		return nil, fmt.Errorf("normalize host: %w", err)
	}

	for _, blocked := range p.BlockDomains {
		if domainMatches(host, blocked) {
			return &Refusal{Code: RefusalPolicyBlocked, Message: fmt.Sprintf("host %q matches block-domain %q", host, blocked)}, nil
		}
	}

	if len(p.AllowDomains) > 0 {
		matched := false
		for _, allowed := range p.AllowDomains {
			if domainMatches(host, allowed) {
				matched = true
				break
			}
		}
		if !matched {
			return &Refusal{Code: RefusalPolicyBlocked, Message: fmt.Sprintf("host %q is not in --allow-domain list", host)}, nil
		}
	} else if p.Mode == ModeStrict {
		return &Refusal{Code: RefusalPolicyBlocked, Message: "strict mode requires at least one --allow-domain"}, nil
	}

	return nil, nil
}

// normalizeHost lowercases and strips a trailing port, applying IDNA
// ToASCII so unicode hosts compare consistently with ASCII allow/block
// entries.
func normalizeHost(host string) (string, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return "", fmt.Errorf("empty host")
	}
	ascii, err := idna.ToASCII(host)
	if err != nil {
		// Fall back to the raw (already lowercased) host; a malformed
		// unicode label should not itself abort policy evaluation.
		return host, nil
	}
	return ascii, nil
}

// domainMatches reports whether host equals pattern or is a subdomain of
// it.
func domainMatches(host, pattern string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return false
	}
	if host == pattern {
		return true
	}
	return strings.HasSuffix(host, "."+pattern)
}

// redactKeyRe matches JSON-ish detail keys that must be scrubbed under
// --redact.
var redactKeyRe = regexp.MustCompile(`(?i)token|key|secret|cookie|authorization`)

// RedactDetails replaces any value whose key matches the secret-like key
// pattern with "[redacted]", returning a shallow copy.
func RedactDetails(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		if redactKeyRe.MatchString(k) {
			out[k] = "[redacted]"
			continue
		}
		out[k] = v
	}
	return out
}

// RedactURL strips userinfo, query, and fragment from a URL for redacted
// plain-mode and error-detail output.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// RobotsCacheTTL is the per-process in-memory robots cache lifetime.
const RobotsCacheTTL = 30 * time.Minute
