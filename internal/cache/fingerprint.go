package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Fingerprint derives the cache key for a request: a content hash over the
// method, the normalized final URL, the subset of headers that affect
// content negotiation, and userAgent (carried separately since callers pass
// it outside the headers map).
func Fingerprint(method, rawURL string, headers map[string]string, userAgent string) string {
	norm := NormalizeURL(rawURL)
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte('|')
	b.WriteString(norm)
	for _, h := range []string{"accept", "accept-language"} {
		b.WriteByte('|')
		b.WriteString(h)
		b.WriteByte('=')
		b.WriteString(lookupHeaderFold(headers, h))
	}
	b.WriteString("|user-agent=")
	b.WriteString(userAgent)
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// lookupHeaderFold looks up name in headers ignoring key casing, since
// callers supply canonical-cased keys (e.g. "Accept") while Fingerprint's
// header subset is named in lowercase.
func lookupHeaderFold(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// NormalizeURL lowercases scheme+host, preserves path, sorts query keys,
// and strips the fragment.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.RawQuery != "" {
		q := u.Query()
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var qb strings.Builder
		for i, k := range keys {
			vals := q[k]
			sort.Strings(vals)
			for j, v := range vals {
				if qb.Len() > 0 {
					qb.WriteByte('&')
				}
				qb.WriteString(k)
				qb.WriteByte('=')
				qb.WriteString(v)
				_ = i
				_ = j
			}
		}
		u.RawQuery = qb.String()
	}
	return u.String()
}
