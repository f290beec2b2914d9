package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/webtool-dev/webtool/internal/docmodel"
)

// RSSFeed wraps a single Atom/RSS feed as a Provider, parsed with
// gofeed.NewParser().ParseURL.
type RSSFeed struct {
	FeedURL string
	Parser  *gofeed.Parser
}

func (r *RSSFeed) Name() string { return "rss_feed" }

func (r *RSSFeed) Search(ctx context.Context, query string, limit int) ([]docmodel.SearchResult, error) {
	if strings.TrimSpace(r.FeedURL) == "" {
		return nil, fmt.Errorf("rss feed url is empty")
	}
	if limit <= 0 {
		limit = 10
	}
	p := r.Parser
	if p == nil {
		p = gofeed.NewParser()
	}
	feed, err := p.ParseURLWithContext(r.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", r.FeedURL, err)
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]docmodel.SearchResult, 0, len(feed.Items))
	for i, item := range feed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(item.Title), q) &&
			!strings.Contains(strings.ToLower(item.Description), q) &&
			!matchesByTokens(q, item.Title+"\n"+item.Description) {
			continue
		}
		res := docmodel.SearchResult{
			Title:          item.Title,
			URL:            item.Link,
			Snippet:        item.Description,
			SourceProvider: r.Name(),
			ResultID:       fmtResultID(r.Name(), i),
		}
		if item.PublishedParsed != nil {
			res.PublishedAt = item.PublishedParsed
		}
		out = append(out, res)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
