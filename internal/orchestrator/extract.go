package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/webtool-dev/webtool/internal/docmodel"
	"github.com/webtool-dev/webtool/internal/extract"
	"github.com/webtool-dev/webtool/internal/fetch"
	"github.com/webtool-dev/webtool/internal/render"
)

// Method selects how extract obtains bytes before running the Extractor.
type Method string

const (
	MethodAuto    Method = "auto"
	MethodHTTP    Method = "http"
	MethodBrowser Method = "browser"
)

// ExtractOptions configures one extract operation.
type ExtractOptions struct {
	Method   Method
	Strategy extract.Strategy
	Limits   extract.Limits
	Headers  map[string]string
}

// ExtractResult is the outcome of one extract operation, ready to be
// wrapped in an envelope.
type ExtractResult struct {
	Document    docmodel.Document
	Refused     *docmodel.Classification
	RefusalCode string
	Reason      string
}

// Extract dispatches on input (URL vs local path vs stdin), applies
// policy, runs the Fetch Engine (with an http→browser fallback when
// Method is auto and the result classifies needs_render), then runs the
// Extractor over the resulting bytes.
func (o *Orchestrator) Extract(ctx context.Context, input string, opts ExtractOptions) (ExtractResult, error) {
	if input == "-" || strings.HasPrefix(input, "/") || strings.HasPrefix(input, "./") || strings.HasPrefix(input, "../") {
		return o.extractLocal(input, opts)
	}
	return o.extractRemote(ctx, input, opts)
}

func (o *Orchestrator) extractLocal(path string, opts ExtractOptions) (ExtractResult, error) {
	doc, body, err := loadLocal(path)
	if err != nil {
		return ExtractResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	extracted, warnings := extract.Extract(body, "", opts.Strategy, opts.Limits)
	doc.Extracted = &extracted
	for _, w := range warnings {
		doc.AddWarning(w.Code, w.Message)
	}
	return ExtractResult{Document: doc}, nil
}

func (o *Orchestrator) extractRemote(ctx context.Context, rawURL string, opts ExtractOptions) (ExtractResult, error) {
	if refusal, err := o.checkPolicy(ctx, rawURL); err != nil {
		return ExtractResult{}, err
	} else if refusal != nil {
		return ExtractResult{RefusalCode: string(refusal.Code), Reason: refusal.Message}, nil
	}

	method := opts.Method
	if method == "" {
		method = MethodAuto
	}

	var fr docmodel.FetchResult
	var body []byte
	var err error

	if method == MethodHTTP || method == MethodAuto {
		fr, body, err = o.fetchAndRead(ctx, rawURL, opts.Headers)
		if err != nil {
			return ExtractResult{}, err
		}
		if fr.Classification != docmodel.ClassNeedsRender || method == MethodHTTP {
			return o.finishExtract(fr, body, opts)
		}
	}

	// method == browser, or auto escalating past needs_render.
	renderDoc, rerr := o.Render.Render(ctx, rawURL, render.Options{})
	if rerr != nil {
		if method == MethodAuto {
			// auto: browser path failed, surface the original needs_render
			// classification rather than a generic render error.
			return o.finishExtract(fr, body, opts)
		}
		return ExtractResult{}, rerr
	}
	renderedBody, rerr := o.readCachedBody(renderDoc)
	if rerr != nil {
		return ExtractResult{}, rerr
	}
	browserResult := docmodel.FetchResult{Document: renderDoc, Classification: docmodel.ClassOK, Reason: "ok"}
	return o.finishExtract(browserResult, renderedBody, opts)
}

func (o *Orchestrator) fetchAndRead(ctx context.Context, rawURL string, headers map[string]string) (docmodel.FetchResult, []byte, error) {
	fr, err := o.Fetch.Fetch(ctx, rawURL, o.fetchOptions(headers))
	if err != nil {
		return docmodel.FetchResult{}, nil, err
	}
	body, err := o.readCachedBody(fr.Document)
	if err != nil {
		return fr, nil, err
	}
	return fr, body, nil
}

func (o *Orchestrator) readCachedBody(doc docmodel.Document) ([]byte, error) {
	if doc.Artifact == nil || doc.Artifact.BodyPath == "" {
		return nil, nil
	}
	if o.Cache == nil {
		return nil, fmt.Errorf("no cache configured to read body at %s", doc.Artifact.BodyPath)
	}
	return o.Cache.ReadBody(doc.Artifact.BodyPath)
}

func (o *Orchestrator) finishExtract(fr docmodel.FetchResult, body []byte, opts ExtractOptions) (ExtractResult, error) {
	if fr.Classification != docmodel.ClassOK {
		class := fr.Classification
		return ExtractResult{Document: fr.Document, Refused: &class, RefusalCode: string(fr.Classification), Reason: fr.Reason}, nil
	}
	extracted, warnings := extract.Extract(body, fr.Document.URL, opts.Strategy, opts.Limits)
	if strings.TrimSpace(extracted.Text) == "" {
		fr.Document.AddWarning("extraction_empty", "extraction produced no text content")
	}
	fr.Document.Extracted = &extracted
	for _, w := range warnings {
		fr.Document.AddWarning(w.Code, w.Message)
	}
	return ExtractResult{Document: fr.Document}, nil
}
