package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/webtool-dev/webtool/internal/docmodel"
)

// sidebarLinkDensityThreshold is the link-density above which a candidate
// nav/aside region is pruned as a sidebar.
const sidebarLinkDensityThreshold = 0.6

// extractDocs preserves the full heading tree as a flat ordered list of
// sections: strip boilerplate via node removal, then split what remains
// by heading.
func extractDocs(doc *goquery.Document, baseURL string) docmodel.Extracted {
	doc.Find(boilerplateSelector).Remove()
	pruneSidebars(doc)

	title := extractTitle(doc)

	root := doc.Find("main, article, [role=main]").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	sections := buildSections(root, baseURL)

	var b strings.Builder
	for _, sec := range sections {
		b.WriteString(strings.Repeat("#", sec.HeadingLevel) + " " + sec.HeadingText + "\n\n")
		b.WriteString(sec.BodyMarkdown)
		b.WriteString("\n\n")
	}

	return docmodel.Extracted{
		Title:       title,
		Markdown:    strings.TrimSpace(b.String()),
		DocSections: sections,
	}
}

// pruneSidebars removes nav/aside-like candidates whose link text makes up
// more than sidebarLinkDensityThreshold of their total text.
func pruneSidebars(doc *goquery.Document) {
	doc.Find("nav, aside, [role=navigation], [role=complementary]").Each(func(i int, s *goquery.Selection) {
		if linkDensity(s) > sidebarLinkDensityThreshold {
			s.Remove()
		}
	})
}

func linkDensity(s *goquery.Selection) float64 {
	total := float64(len(strings.TrimSpace(s.Text())))
	if total == 0 {
		return 0
	}
	linkLen := 0.0
	s.Find("a").Each(func(i int, a *goquery.Selection) {
		linkLen += float64(len(strings.TrimSpace(a.Text())))
	})
	return linkLen / total
}

// buildSections walks root's direct node stream, starting a new section at
// every heading and collecting markdown + outbound links until the next
// heading of equal or higher level.
func buildSections(root *goquery.Selection, baseURL string) []docmodel.DocSection {
	if root.Length() == 0 {
		return nil
	}
	base, _ := url.Parse(baseURL)

	var sections []docmodel.DocSection
	var cur *docmodel.DocSection
	var body strings.Builder

	flush := func() {
		if cur == nil {
			return
		}
		cur.BodyMarkdown = strings.TrimSpace(normalizeBlankLines(body.String()))
		sections = append(sections, *cur)
		cur = nil
		body.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			name := strings.ToLower(n.Data)
			if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
				flush()
				level := int(name[1] - '0')
				var hb strings.Builder
				renderChildren(&hb, n, 0)
				links := collectLinks(n, base)
				cur = &docmodel.DocSection{HeadingLevel: level, HeadingText: strings.TrimSpace(hb.String()), Links: links}
				return
			}
		}
		if cur != nil {
			renderNode(&body, n, 0)
			for _, resolved := range collectLinks(n, base) {
				cur.Links = appendResolvedAbsolute(cur.Links, resolved)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range root.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	flush()
	return sections
}

func collectLinks(heading *html.Node, base *url.URL) []string {
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.ToLower(n.Data) == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					links = appendResolved(links, attr.Val, base)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(heading)
	return links
}

func appendResolvedAbsolute(links []string, resolved string) []string {
	for _, existing := range links {
		if existing == resolved {
			return links
		}
	}
	return append(links, resolved)
}

func appendResolved(links []string, href string, base *url.URL) []string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return links
	}
	resolved := href
	if base != nil {
		if u, err := url.Parse(href); err == nil {
			resolved = base.ResolveReference(u).String()
		}
	}
	for _, existing := range links {
		if existing == resolved {
			return links
		}
	}
	return append(links, resolved)
}
