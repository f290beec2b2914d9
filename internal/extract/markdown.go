package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// nodeToMarkdown walks a goquery selection's underlying node tree and
// renders headings (h1-h6), lists, blockquotes, inline emphasis, code
// spans, and fenced code blocks to markdown. It generalizes a
// collectText-style tree-walk (block-element newline bracketing, pre/code
// passthrough) retargeted at markdown syntax instead of plain text.
func nodeToMarkdown(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		renderNode(&b, n, 0)
	}
	return normalizeBlankLines(b.String())
}

func renderNode(b *strings.Builder, n *html.Node, listDepth int) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type != html.ElementNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			renderNode(b, c, listDepth)
		}
		return
	}

	name := strings.ToLower(n.Data)
	switch name {
	case "script", "style", "noscript":
		return
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(name[1] - '0')
		b.WriteString("\n" + strings.Repeat("#", level) + " ")
		renderChildren(b, n, listDepth)
		b.WriteString("\n\n")
	case "p":
		b.WriteString("\n")
		renderChildren(b, n, listDepth)
		b.WriteString("\n\n")
	case "br":
		b.WriteString("  \n")
	case "strong", "b":
		b.WriteString("**")
		renderChildren(b, n, listDepth)
		b.WriteString("**")
	case "em", "i":
		b.WriteString("_")
		renderChildren(b, n, listDepth)
		b.WriteString("_")
	case "code":
		if n.Parent != nil && strings.ToLower(n.Parent.Data) == "pre" {
			renderChildren(b, n, listDepth)
			return
		}
		b.WriteString("`")
		renderChildren(b, n, listDepth)
		b.WriteString("`")
	case "pre":
		lang := ""
		if c := n.FirstChild; c != nil && strings.ToLower(c.Data) == "code" {
			lang = codeLangFromClass(c)
		}
		b.WriteString("\n```" + lang + "\n")
		renderChildren(b, n, listDepth)
		b.WriteString("\n```\n\n")
	case "blockquote":
		var inner strings.Builder
		renderChildren(&inner, n, listDepth)
		for _, line := range strings.Split(strings.TrimSpace(inner.String()), "\n") {
			b.WriteString("> " + line + "\n")
		}
		b.WriteString("\n")
	case "ul", "ol":
		b.WriteString("\n")
		i := 1
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || strings.ToLower(c.Data) != "li" {
				continue
			}
			if name == "ol" {
				b.WriteString(fmt.Sprintf("%s%d. ", strings.Repeat("  ", listDepth), i))
				i++
			} else {
				b.WriteString(strings.Repeat("  ", listDepth) + "- ")
			}
			renderChildren(b, c, listDepth+1)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	case "a":
		href := ""
		for _, attr := range n.Attr {
			if attr.Key == "href" {
				href = attr.Val
			}
		}
		b.WriteString("[")
		renderChildren(b, n, listDepth)
		b.WriteString("](" + href + ")")
	case "table":
		renderTable(b, n)
	default:
		renderChildren(b, n, listDepth)
	}
}

func renderChildren(b *strings.Builder, n *html.Node, listDepth int) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c, listDepth)
	}
}

func codeLangFromClass(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, cls := range strings.Fields(attr.Val) {
			if strings.HasPrefix(cls, "language-") {
				return strings.TrimPrefix(cls, "language-")
			}
		}
	}
	return ""
}

// renderTable emits GFM table syntax when the column count is small enough
// to stay useful (<= 8 columns), otherwise collapses to a placeholder.
func renderTable(b *strings.Builder, table *html.Node) {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.ToLower(n.Data) == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.ElementNode {
					continue
				}
				tag := strings.ToLower(c.Data)
				if tag != "td" && tag != "th" {
					continue
				}
				cells = append(cells, strings.TrimSpace(htmlText(c)))
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)

	if len(rows) == 0 {
		return
	}
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols > 8 {
		b.WriteString(fmt.Sprintf("\n[table omitted: %d rows × %d cols]\n\n", len(rows), cols))
		return
	}

	b.WriteString("\n")
	for i, r := range rows {
		b.WriteString("| " + strings.Join(padRow(r, cols), " | ") + " |\n")
		if i == 0 {
			sep := make([]string, cols)
			for j := range sep {
				sep[j] = "---"
			}
			b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
		}
	}
	b.WriteString("\n")
}

func padRow(row []string, cols int) []string {
	for len(row) < cols {
		row = append(row, "")
	}
	return row
}

func htmlText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func normalizeBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" && len(out) > 0 && out[len(out)-1] == "" {
			continue
		}
		out = append(out, trimmed)
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
