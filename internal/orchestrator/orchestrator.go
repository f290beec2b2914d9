// Package orchestrator implements the three multi-component operations
// (extract, pipeline, eval) that drive the Fetch Engine, Extractor, render
// collaborator, search registry, and selecter together. Collaborators are
// wired once and walked through a fixed operation to a single terminal
// result, split into three independently invokable operations instead of
// one linear report pipeline.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/webtool-dev/webtool/internal/cache"
	"github.com/webtool-dev/webtool/internal/docmodel"
	"github.com/webtool-dev/webtool/internal/fetch"
	"github.com/webtool-dev/webtool/internal/policy"
	"github.com/webtool-dev/webtool/internal/render"
	"github.com/webtool-dev/webtool/internal/search"
)

// Orchestrator bundles the collaborators every operation needs. Fields are
// plain struct values (no interface ceremony beyond search.Provider and
// render.Renderer, which genuinely have multiple implementations).
type Orchestrator struct {
	Fetch    *fetch.Engine
	Render   render.Renderer
	Robots   *policy.RobotsManager
	Registry *search.Registry
	Cache    *cache.Cache

	Policy policy.Policy
}

// fetchOptions derives fetch.Options from the orchestrator's policy.
func (o *Orchestrator) fetchOptions(headers map[string]string) fetch.Options {
	return fetch.Options{
		Headers:         headers,
		MaxBytes:        o.Policy.MaxBytes,
		TimeoutMS:       o.Policy.TimeoutMS,
		FollowRedirects: o.Policy.FollowRedirects,
		DetectBlocks:    o.Policy.DetectBlocks,
	}
}

// checkPolicy enforces domain allow/block and, unless robots mode is
// ignore, robots.txt for rawURL. Returns a non-nil *policy.Refusal when the
// request must not proceed.
func (o *Orchestrator) checkPolicy(ctx context.Context, rawURL string) (*policy.Refusal, error) {
	refusal, err := policy.EnforceURLPolicy(rawURL, o.Policy)
	if err != nil {
		return nil, err
	}
	if refusal != nil {
		return refusal, nil
	}
	if o.Policy.RobotsMode == policy.RobotsIgnore || o.Robots == nil {
		return nil, nil
	}
	allowed, err := o.Robots.Allowed(ctx, rawURL)
	if err != nil {
		return nil, nil // fail open, matching RobotsManager.Allowed's own fail-open contract
	}
	if !allowed && o.Policy.RobotsMode == policy.RobotsRespect {
		return &policy.Refusal{Code: policy.RefusalRobotsDisallow, Message: fmt.Sprintf("robots.txt disallows %s", rawURL)}, nil
	}
	return nil, nil
}

// loadLocal reads a local file or stdin ("-") into a Document for extract's
// path/stdin input modes.
func loadLocal(path string) (docmodel.Document, []byte, error) {
	var body []byte
	var err error
	if path == "-" {
		body, err = io.ReadAll(os.Stdin)
	} else {
		body, err = os.ReadFile(path)
	}
	if err != nil {
		return docmodel.Document{}, nil, err
	}
	doc := docmodel.Document{
		SourcePath:  path,
		FetchedAt:   time.Now().UTC(),
		FetchMethod: docmodel.FetchMethodProvided,
		Artifact: &docmodel.Artifact{
			ContentType: sniffLocalContentType(body),
			BodyBytes:   int64(len(body)),
		},
	}
	return doc, body, nil
}

func sniffLocalContentType(body []byte) string {
	trimmed := strings.ToLower(strings.TrimSpace(string(body)))
	if strings.HasPrefix(trimmed, "<!doctype html") || strings.HasPrefix(trimmed, "<html") || strings.Contains(trimmed, "<body") {
		return "text/html"
	}
	return "text/plain"
}

