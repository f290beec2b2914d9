package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/webtool-dev/webtool/internal/docmodel"
	"github.com/webtool-dev/webtool/internal/envelope"
	"github.com/webtool-dev/webtool/internal/extract"
	"github.com/webtool-dev/webtool/internal/orchestrator"
)

var extractMethod string

var extractCmd = &cobra.Command{
	Use:   "extract <url|path|->",
	Short: "Fetch (escalating to a browser on needs_render) and extract readable content",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtractCommand,
}

func init() {
	extractCmd.Flags().StringVar(&extractMethod, "method", "auto", "fetch method: auto|http|browser")
}

func runExtractCommand(cmd *cobra.Command, args []string) error {
	start := time.Now()
	input := args[0]

	a, err := buildApp()
	if err != nil {
		return err
	}

	result, err := a.Orch.Extract(cmd.Context(), input, orchestrator.ExtractOptions{
		Method:   orchestrator.Method(extractMethod),
		Strategy: extract.StrategyAuto,
	})
	meta := envelope.Meta{DurationMS: envelope.Since(start)}
	if err != nil {
		env := envelope.NewError("extract", version, nil, nil, envelope.ErrInvalidUsage, err.Error(), nil, cfg.Redact, meta)
		exitWith(printEnvelope(env, plainLinesExtract))
		return nil
	}

	if result.RefusalCode != "" {
		code := envelope.ErrorCode(result.RefusalCode)
		env := envelope.NewError("extract", version, extractData{Document: result.Document}, nil, code, result.Reason,
			map[string]any{"reason": result.Reason}, cfg.Redact, meta)
		exitWith(printEnvelope(env, plainLinesExtract))
		return nil
	}

	var warnings []string
	for _, w := range result.Document.Warnings {
		warnings = append(warnings, w.Message)
	}
	env := envelope.New("extract", version, extractData{Document: result.Document}, warnings, meta)
	exitWith(printEnvelope(env, plainLinesExtract))
	return nil
}

// extractData is the command's envelope data shape: {document: Document}
// where document.extracted is populated.
type extractData struct {
	Document docmodel.Document `json:"document"`
}

// plainLinesExtract prints the extracted markdown.
func plainLinesExtract(env envelope.Envelope) []string {
	data, ok := env.Data.(extractData)
	if !ok || data.Document.Extracted == nil {
		return nil
	}
	return []string{data.Document.Extracted.Markdown}
}
