// Package extract implements readability-style dominant-content extraction,
// a docs-strategy heading-tree extraction, and the shared
// truncation/prompt-injection/content-hash machinery both strategies feed
// into. The readability tree-walk collects text nodes with a boilerplate
// skip list; the docs strategy uses goquery node-removal.
package extract

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/webtool-dev/webtool/internal/docmodel"
)

// Strategy selects the extraction algorithm.
type Strategy string

const (
	StrategyAuto        Strategy = "auto"
	StrategyReadability Strategy = "readability"
	StrategyDocs        Strategy = "docs"
)

// Limits bounds the size of the extracted output.
type Limits struct {
	MaxChars  int
	MaxTokens int
}

// docsPathSegments are path segments that count as a strong docs-site
// signal.
var docsPathSegments = map[string]bool{
	"docs": true, "api": true, "reference": true, "guide": true, "manual": true,
}

// Extract implements the extract(html, base_url, strategy, limits) contract.
func Extract(input []byte, baseURL string, strategy Strategy, limits Limits) (docmodel.Extracted, []docmodel.Warning) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil || doc == nil {
		return docmodel.Extracted{ExtractionMethod: string(strategy)}, nil
	}

	resolved := strategy
	if resolved == StrategyAuto || resolved == "" {
		if looksLikeDocsSite(doc, baseURL) {
			resolved = StrategyDocs
		} else {
			resolved = StrategyReadability
		}
	}

	var (
		extracted docmodel.Extracted
		warnings  []docmodel.Warning
	)
	switch resolved {
	case StrategyDocs:
		extracted = extractDocs(doc, baseURL)
	default:
		extracted = extractReadability(doc)
		resolved = StrategyReadability
	}
	extracted.ExtractionMethod = string(resolved)
	extracted.ExtractionVersion = "1"
	extracted.Language = detectLanguage(doc, stripMarkdownEmphasis(extracted.Markdown))

	extracted.Markdown, warnings = applyTruncation(extracted.Markdown, limits, warnings)
	extracted.Text = strings.TrimSpace(stripMarkdownEmphasis(extracted.Markdown))
	warnings = append(warnings, scanPromptInjection(extracted.Text)...)

	sum := sha256.Sum256([]byte(extracted.Markdown))
	extracted.ContentHash = hex.EncodeToString(sum[:])

	return extracted, warnings
}

// looksLikeDocsSite implements the auto-dispatch heuristic: a <nav> with
// many siblings, heading density >= 4 per 2000 chars inside
// <main>/[role=main], presence of <pre><code>, or a docs-ish path segment.
func looksLikeDocsSite(doc *goquery.Document, baseURL string) bool {
	if u, err := url.Parse(baseURL); err == nil {
		for _, seg := range strings.Split(u.Path, "/") {
			if docsPathSegments[strings.ToLower(seg)] {
				return true
			}
		}
	}

	nav := doc.Find("nav").First()
	if nav.Length() > 0 && nav.Siblings().Length() >= 3 {
		return true
	}

	main := doc.Find("main, [role=main]").First()
	if main.Length() > 0 {
		text := main.Text()
		headings := main.Find("h1, h2, h3, h4, h5, h6").Length()
		if len(text) > 0 && float64(headings)/(float64(len(text))/2000.0) >= 4 {
			return true
		}
	}

	if doc.Find("pre code").Length() > 0 {
		return true
	}
	return false
}

func detectLanguage(doc *goquery.Document, text string) string {
	if lang, ok := doc.Find("html").First().Attr("lang"); ok && strings.TrimSpace(lang) != "" {
		return normalizeLangTag(lang)
	}
	if lang, ok := doc.Find(`meta[http-equiv="content-language"]`).First().Attr("content"); ok && strings.TrimSpace(lang) != "" {
		return normalizeLangTag(lang)
	}
	return heuristicLanguage(text)
}

func normalizeLangTag(lang string) string {
	lang = strings.TrimSpace(lang)
	if idx := strings.IndexAny(lang, ",;"); idx >= 0 {
		lang = lang[:idx]
	}
	return strings.ToLower(lang)
}

// stripMarkdownEmphasis gives a cheap plain-text rendition of markdown for
// the Document.Extracted.Text field and for the prompt-injection scan.
func stripMarkdownEmphasis(md string) string {
	replacer := strings.NewReplacer("**", "", "__", "", "`", "", "#", "", "*", "", "_", "")
	return replacer.Replace(md)
}

