package fetch

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/webtool-dev/webtool/internal/docmodel"
)

// blockPatterns are the interstitial/anti-bot signatures checked against a
// 2xx HTML body.
var blockPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)enable javascript`),
	regexp.MustCompile(`(?i)checking your browser`),
	regexp.MustCompile(`(?i)verify you are human`),
	regexp.MustCompile(`(?i)<noscript>[^<]{0,200}required`),
}

var consentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(we use cookies|cookie consent|accept all cookies)`),
	regexp.MustCompile(`(?i)<form[^>]*>`),
}

var scriptTagRe = regexp.MustCompile(`(?i)<script[^>]*>`)
var tagStripRe = regexp.MustCompile(`(?s)<[^>]*>`)

// classify implements an ordered, first-match-wins classification taxonomy.
// body is the (possibly truncated) response body; only used for 2xx
// responses. detectBlocks disables rules 4-5 when false (--no-detect-blocks).
func classify(status int, transportErr error, body []byte, contentType string, detectBlocks bool) (docmodel.Classification, string) {
	if transportErr != nil {
		return docmodel.ClassTransportError, "transport_error"
	}
	switch status {
	case 401, 403, 429:
		return docmodel.ClassBlocked, "http_" + strconv.Itoa(status)
	case 404:
		return docmodel.ClassNotFound, "http_404"
	}
	if status >= 500 && status <= 599 {
		return docmodel.ClassTransportError, "http_" + strconv.Itoa(status)
	}
	if status < 200 || status > 299 {
		return docmodel.ClassOK, "http_" + strconv.Itoa(status)
	}

	if !detectBlocks || !strings.Contains(strings.ToLower(contentType), "html") {
		return docmodel.ClassOK, "ok"
	}

	for _, re := range blockPatterns {
		if re.Match(body) {
			return docmodel.ClassNeedsRender, "interstitial_pattern"
		}
	}
	if len(body) < 2048 && scriptTagRe.Match(body) {
		visible := strings.TrimSpace(string(tagStripRe.ReplaceAll(body, nil)))
		if len(visible) == 0 {
			return docmodel.ClassNeedsRender, "script_only_body"
		}
	}

	hasConsentKeyword := consentPatterns[0].Match(body)
	hasForm := consentPatterns[1].Match(body)
	if hasConsentKeyword && hasForm {
		return docmodel.ClassBlocked, "consent_wall"
	}

	return docmodel.ClassOK, "ok"
}

// nextSteps returns the suggested follow-up commands for a classification.
func nextSteps(c docmodel.Classification) []string {
	switch c {
	case docmodel.ClassBlocked:
		return []string{
			"retry with adjusted --header values (user-agent, accept-language)",
			"route the request through a proxy",
			"switch to a different search/fetch provider",
		}
	case docmodel.ClassNeedsRender:
		return []string{
			"retry with the render collaborator: webtool render <url>",
			"retry with: webtool extract --method browser <url>",
		}
	case docmodel.ClassNotFound:
		return []string{"verify the URL is correct and still published"}
	case docmodel.ClassTransportError:
		return []string{"retry with --fresh", "retry with a larger --timeout"}
	default:
		return nil
	}
}
