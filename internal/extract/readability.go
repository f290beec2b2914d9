package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/webtool-dev/webtool/internal/docmodel"
)

// boilerplateSelector strips elements by tag name as a single goquery
// selector.
const boilerplateSelector = "script, style, noscript, nav, footer, aside, iframe, form"

// consentClassHints are class/id substrings flagged as cookie/consent
// banners.
var consentClassHints = []string{"cookie", "consent", "gdpr", "cookie-banner", "cookiebar", "consent-banner", "consent-manager"}

// extractReadability scores candidate containers by text-density vs
// link-density and renders the winner to markdown. Rather than always
// picking main > article > body, it scores candidates so boilerplate-heavy
// pages with a real <main> still win.
func extractReadability(doc *goquery.Document) docmodel.Extracted {
	doc.Find(boilerplateSelector).Remove()
	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		if isConsentContainer(s) {
			s.Remove()
		}
	})

	title := extractTitle(doc)

	candidate := pickDominantNode(doc)
	if candidate == nil {
		candidate = doc.Find("body")
	}

	md := nodeToMarkdown(candidate)
	return docmodel.Extracted{
		Title:    title,
		Markdown: strings.TrimSpace(md),
	}
}

func extractTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func isConsentContainer(s *goquery.Selection) bool {
	id, _ := s.Attr("id")
	class, _ := s.Attr("class")
	role, _ := s.Attr("role")
	haystack := strings.ToLower(id + " " + class + " " + role)
	for _, hint := range consentClassHints {
		if strings.Contains(haystack, hint) {
			return true
		}
	}
	return false
}

// pickDominantNode scores <main>, <article>, and [role=main] candidates by
// (text length) / (1 + link text length), picking the highest-density
// candidate. Only when none of those exist are every <div>/<section> inside
// <body>, and <body> itself, scored instead.
func pickDominantNode(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	bestScore := -1.0

	candidates := doc.Find("main, article, [role=main]")
	if candidates.Length() == 0 {
		candidates = doc.Find("body div, body section, body")
	}

	candidates.Each(func(i int, s *goquery.Selection) {
		score := densityScore(s)
		if score > bestScore {
			bestScore = score
			best = s
		}
	})
	return best
}

func densityScore(s *goquery.Selection) float64 {
	text := s.Text()
	textLen := float64(len(strings.TrimSpace(text)))
	if textLen == 0 {
		return 0
	}
	linkLen := 0.0
	s.Find("a").Each(func(i int, a *goquery.Selection) {
		linkLen += float64(len(a.Text()))
	})
	return textLen / (1 + linkLen)
}
