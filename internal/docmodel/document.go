// Package docmodel holds the shared result shapes passed between the
// cache, fetch, extract, render, and orchestrator packages. Keeping them in
// one leaf package avoids import cycles between those packages.
package docmodel

import "time"

// FetchMethod identifies how a Document's bytes were obtained.
type FetchMethod string

const (
	FetchMethodHTTP     FetchMethod = "http"
	FetchMethodBrowser  FetchMethod = "browser"
	FetchMethodProvided FetchMethod = "provided"
)

// Classification is the outcome of the Fetch Engine's block/JS-only
// detection heuristics.
type Classification string

const (
	ClassOK             Classification = "ok"
	ClassBlocked        Classification = "blocked"
	ClassNeedsRender    Classification = "needs_render"
	ClassNotFound       Classification = "not_found"
	ClassTimeout        Classification = "timeout"
	ClassTransportError Classification = "transport_error"
)

// HTTPInfo carries the subset of transport metadata the envelope is allowed
// to surface.
type HTTPInfo struct {
	Status         int               `json:"status"`
	FinalURL       string            `json:"final_url"`
	RedirectChain  []string          `json:"redirect_chain,omitempty"`
	SelectedHeaders map[string]string `json:"selected_headers,omitempty"`
	BytesRead      int64             `json:"bytes_read"`
}

// Artifact describes the raw body retained for a Document.
type Artifact struct {
	ContentType string `json:"content_type"`
	BodyPath    string `json:"body_path,omitempty"`
	BodyBytes   int64  `json:"body_bytes"`
	Truncated   bool   `json:"truncated,omitempty"`
}

// RenderInfo is populated only when fetch_method is browser.
type RenderInfo struct {
	ScreenshotPath  string `json:"screenshot_path,omitempty"`
	DOMSnapshotID   string `json:"dom_snapshot_id,omitempty"`
	WaitStrategyUsed string `json:"wait_strategy_used,omitempty"`
}

// DocSection is one heading-anchored chunk produced by the docs strategy.
type DocSection struct {
	HeadingLevel int      `json:"heading_level"`
	HeadingText  string   `json:"heading_text"`
	BodyMarkdown string   `json:"body_markdown"`
	Links        []string `json:"links,omitempty"`
}

// Extracted carries the Extractor's output, absent until extraction runs.
type Extracted struct {
	Title             string       `json:"title,omitempty"`
	Language          string       `json:"language,omitempty"`
	Markdown          string       `json:"markdown"`
	Text              string       `json:"text"`
	ContentHash       string       `json:"content_hash"`
	ExtractionMethod  string       `json:"extraction_method"`
	ExtractionVersion string       `json:"extraction_version"`
	DocSections       []DocSection `json:"doc_sections,omitempty"`
}

// Warning is one non-fatal, deduplicated diagnostic attached to a Document.
// Code is a stable machine-readable tag; Message is human-readable.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Document is the shared unit carried between fetch, extract, render, and
// the envelope serializer. Invariant: URL or SourcePath is non-empty, and
// FetchedAt is always set.
type Document struct {
	URL        string      `json:"url,omitempty"`
	SourcePath string      `json:"source_path,omitempty"`
	FetchedAt  time.Time   `json:"fetched_at"`
	FetchMethod FetchMethod `json:"fetch_method"`

	HTTP     *HTTPInfo   `json:"http,omitempty"`
	Artifact *Artifact   `json:"artifact,omitempty"`
	Render   *RenderInfo `json:"render,omitempty"`

	Extracted *Extracted `json:"extracted,omitempty"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// AddWarning appends a warning, deduplicated by exact message.
func (d *Document) AddWarning(code, message string) {
	for _, w := range d.Warnings {
		if w.Message == message {
			return
		}
	}
	d.Warnings = append(d.Warnings, Warning{Code: code, Message: message})
}

// FetchResult wraps a Document plus the Fetch Engine's classification of
// the outcome, a human reason, and a list of suggested next commands.
type FetchResult struct {
	Document       Document       `json:"document"`
	Classification Classification `json:"classification"`
	Reason         string         `json:"reason"`
	NextSteps      []string       `json:"next_steps,omitempty"`
}

// SearchResult is one hit returned by a search.Provider.
type SearchResult struct {
	Title          string     `json:"title"`
	URL            string     `json:"url"`
	Snippet        string     `json:"snippet"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	SourceProvider string     `json:"source_provider"`
	Score          *float64   `json:"score,omitempty"`
	ResultID       string     `json:"result_id"`
}
