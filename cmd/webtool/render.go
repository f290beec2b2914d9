package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/webtool-dev/webtool/internal/docmodel"
	"github.com/webtool-dev/webtool/internal/envelope"
	"github.com/webtool-dev/webtool/internal/render"
)

var (
	renderWaitSelector string
	renderScreenshot   bool
)

var renderCmd = &cobra.Command{
	Use:   "render <url>",
	Short: "Drive a headless browser to obtain a page's rendered DOM",
	Args:  cobra.ExactArgs(1),
	RunE:  runRenderCommand,
}

func init() {
	renderCmd.Flags().StringVar(&renderWaitSelector, "wait-selector", "", "CSS selector to wait for before capturing the DOM")
	renderCmd.Flags().BoolVar(&renderScreenshot, "screenshot", false, "capture a screenshot alongside the DOM snapshot")
}

func runRenderCommand(cmd *cobra.Command, args []string) error {
	start := time.Now()
	rawURL := args[0]

	a, err := buildApp()
	if err != nil {
		return err
	}

	meta := envelope.Meta{DurationMS: envelope.Since(start)}
	if refusal, perr := enforcePolicy(cmd, a, rawURL); perr != nil {
		return perr
	} else if refusal != nil {
		env := envelope.NewError("render", version, nil, nil, envelope.ErrorCode(refusal.Code), refusal.Message,
			map[string]any{"reason": string(refusal.Code)}, cfg.Redact, meta)
		exitWith(printEnvelope(env, plainLinesRender))
		return nil
	}

	doc, rerr := a.Render.Render(cmd.Context(), rawURL, render.Options{
		TimeoutMS:    cfg.TimeoutSec * 1000,
		WaitSelector: renderWaitSelector,
		Screenshot:   renderScreenshot,
	})
	meta.DurationMS = envelope.Since(start)
	if rerr != nil {
		env := envelope.NewError("render", version, nil, nil, envelope.ErrTransportError, rerr.Error(),
			map[string]any{"reason": "render_error"}, cfg.Redact, meta)
		exitWith(printEnvelope(env, plainLinesRender))
		return nil
	}

	env := envelope.New("render", version, renderData{Document: doc}, nil, meta)
	exitWith(printEnvelope(env, plainLinesRender))
	return nil
}

// renderData is the command's envelope data shape: {document: Document}
// with fetch_method=browser.
type renderData struct {
	Document docmodel.Document `json:"document"`
}

func plainLinesRender(env envelope.Envelope) []string {
	data, ok := env.Data.(renderData)
	if !ok {
		return nil
	}
	doc := data.Document
	return []string{fmt.Sprintf("%s\t%s", doc.URL, doc.FetchMethod)}
}
