package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/webtool-dev/webtool/internal/docmodel"
	"github.com/webtool-dev/webtool/internal/envelope"
	"github.com/webtool-dev/webtool/internal/orchestrator"
)

var (
	pipelineTopK          int
	pipelineExtractK      int
	pipelinePreferDomains []string
	pipelineMethod        string
	pipelinePlan          bool
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline <query>",
	Short: "Search, re-rank, and extract the top candidates in one call",
	Args:  cobra.ExactArgs(1),
	RunE:  runPipelineCommand,
}

func init() {
	pipelineCmd.Flags().IntVar(&pipelineTopK, "top-k", 10, "maximum number of search candidates to consider")
	pipelineCmd.Flags().IntVar(&pipelineExtractK, "extract-k", 0, "number of top candidates to fetch+extract (default: all of top-k; at most 32)")
	pipelineCmd.Flags().StringArrayVar(&pipelinePreferDomains, "prefer-domain", nil, "re-rank candidates matching this domain first (repeatable)")
	pipelineCmd.Flags().StringVar(&pipelineMethod, "method", "auto", "fetch method: auto|http|browser")
	pipelineCmd.Flags().BoolVar(&pipelinePlan, "plan", false, "stop after candidate selection; do not fetch")
}

func runPipelineCommand(cmd *cobra.Command, args []string) error {
	start := time.Now()
	query := args[0]

	a, err := buildApp()
	if err != nil {
		return err
	}

	result, err := a.Orch.Pipeline(cmd.Context(), query, orchestrator.PipelineOptions{
		TopK:          pipelineTopK,
		ExtractK:      pipelineExtractK,
		PreferDomains: pipelinePreferDomains,
		Method:        orchestrator.Method(pipelineMethod),
		Plan:          pipelinePlan,
		ProviderID:    cfg.ProviderID,
		BudgetMS:      cfg.BudgetMS,
	})
	meta := envelope.Meta{DurationMS: envelope.Since(start)}
	if err != nil {
		env := envelope.NewError("pipeline", version, nil, nil, envelope.ErrProviderError, err.Error(), nil, cfg.Redact, meta)
		exitWith(printEnvelope(env, plainLinesPipeline))
		return nil
	}
	meta.Providers = []string{result.ProviderID}

	env := envelope.New("pipeline", version, toPipelineData(result), result.Warnings, meta)
	exitWith(printEnvelope(env, plainLinesPipeline))
	return nil
}

// pipelineData is the command's envelope data shape:
// {query, candidates: SearchResult[], documents: Document[], plan: bool}.
// orchestrator.PipelineResult additionally tracks per-candidate errors
// (CandidateDoc.Error), dropped here since the documented shape has no slot
// for it; a failed candidate simply has no entry in documents.
type pipelineData struct {
	Query      string                  `json:"query"`
	Candidates []docmodel.SearchResult `json:"candidates"`
	Documents  []docmodel.Document     `json:"documents"`
	Plan       bool                    `json:"plan"`
}

func toPipelineData(result orchestrator.PipelineResult) pipelineData {
	docs := make([]docmodel.Document, 0, len(result.Results))
	for _, r := range result.Results {
		if r.Document != nil {
			docs = append(docs, *r.Document)
		}
	}
	return pipelineData{
		Query:      result.Query,
		Candidates: result.Candidates,
		Documents:  docs,
		Plan:       result.Plan,
	}
}

// plainLinesPipeline prints candidate URLs in plan mode, or the extracted
// content of each document joined with "\n---\n" otherwise.
func plainLinesPipeline(env envelope.Envelope) []string {
	data, ok := env.Data.(pipelineData)
	if !ok {
		return nil
	}
	if data.Plan {
		lines := make([]string, 0, len(data.Candidates))
		for _, c := range data.Candidates {
			lines = append(lines, c.URL)
		}
		return lines
	}
	contents := make([]string, 0, len(data.Documents))
	for _, doc := range data.Documents {
		if doc.Extracted != nil {
			contents = append(contents, doc.Extracted.Markdown)
		}
	}
	if len(contents) == 0 {
		return nil
	}
	return []string{strings.Join(contents, "\n---\n")}
}
