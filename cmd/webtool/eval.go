package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/webtool-dev/webtool/internal/envelope"
	"github.com/webtool-dev/webtool/internal/evalsuite"
	"github.com/webtool-dev/webtool/internal/orchestrator"
)

var (
	evalSuitePath string
	evalK         int
	evalFailOn    string
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Score a suite of queries for search hit@k/MRR and fetch/extract quality",
	RunE:  runEvalCommand,
}

func init() {
	evalCmd.Flags().StringVar(&evalSuitePath, "suite", "", "path to the suite file (JSONL or JSON)")
	evalCmd.Flags().IntVar(&evalK, "k", 10, "default top-k window for hit@k/MRR when a case omits its own k")
	evalCmd.Flags().StringVar(&evalFailOn, "fail-on", string(evalsuite.FailOnNone), "none|error|miss|miss_or_error")
	_ = evalCmd.MarkFlagRequired("suite")
}

func runEvalCommand(cmd *cobra.Command, args []string) error {
	start := time.Now()

	raw, err := os.ReadFile(evalSuitePath)
	meta := envelope.Meta{DurationMS: envelope.Since(start)}
	if err != nil {
		env := envelope.NewError("eval", version, nil, nil, envelope.ErrIOError, err.Error(), nil, cfg.Redact, meta)
		exitWith(printEnvelope(env, plainLinesEval))
		return nil
	}

	cases, err := evalsuite.ParseSuite(raw)
	if err != nil {
		env := envelope.NewError("eval", version, nil, nil, envelope.ErrParseError, err.Error(), nil, cfg.Redact, meta)
		exitWith(printEnvelope(env, plainLinesEval))
		return nil
	}

	a, err := buildApp()
	if err != nil {
		return err
	}

	result, err := a.Orch.Eval(cmd.Context(), cases, orchestrator.EvalOptions{
		ProviderID: cfg.ProviderID,
		K:          evalK,
		FailOn:     evalsuite.FailOn(evalFailOn),
	})
	meta.DurationMS = envelope.Since(start)
	if err != nil {
		env := envelope.NewError("eval", version, nil, nil, envelope.ErrProviderError, err.Error(), nil, cfg.Redact, meta)
		exitWith(printEnvelope(env, plainLinesEval))
		return nil
	}

	data := map[string]any{"cases": result.Cases, "summary": result.Summary}
	env := envelope.New("eval", version, data, nil, meta)
	printEnvelope(env, plainLinesEval)
	exitWith(result.ExitCode)
	return nil
}

func plainLinesEval(env envelope.Envelope) []string {
	data, ok := env.Data.(map[string]any)
	if !ok {
		return nil
	}
	cases, _ := data["cases"].([]evalsuite.CaseResult)
	var lines []string
	for _, c := range cases {
		hit := "miss"
		if c.Hit {
			hit = "hit"
		}
		lines = append(lines, fmt.Sprintf("%s\t%s\t%.3f", c.Query, hit, c.ReciprocalRank))
	}
	return lines
}
