package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/webtool-dev/webtool/internal/docmodel"
	"github.com/webtool-dev/webtool/internal/envelope"
	"github.com/webtool-dev/webtool/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Issue one bounded HTTP request and classify the outcome (blocked/needs_render/ok/...)",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetchCommand,
}

func runFetchCommand(cmd *cobra.Command, args []string) error {
	start := time.Now()
	rawURL := args[0]

	a, err := buildApp()
	if err != nil {
		return err
	}

	if refusal, perr := enforcePolicy(cmd, a, rawURL); perr != nil {
		return perr
	} else if refusal != nil {
		meta := envelope.Meta{DurationMS: envelope.Since(start)}
		env := envelope.NewError("fetch", version, nil, nil, envelope.ErrorCode(refusal.Code), refusal.Message,
			map[string]any{"reason": string(refusal.Code)}, cfg.Redact, meta)
		exitWith(printEnvelope(env, plainLinesFetch))
		return nil
	}

	result, err := a.Fetch.Fetch(cmd.Context(), rawURL, fetch.Options{
		MaxBytes:        a.Policy.MaxBytes,
		TimeoutMS:       a.Policy.TimeoutMS,
		FollowRedirects: a.Policy.FollowRedirects,
		DetectBlocks:    a.Policy.DetectBlocks,
		Fresh:           cfg.Fresh,
		NoCache:         cfg.NoCache,
	})
	meta := envelope.Meta{DurationMS: envelope.Since(start)}
	if err != nil {
		env := envelope.NewError("fetch", version, nil, nil, envelope.ErrInvalidUsage, err.Error(), nil, cfg.Redact, meta)
		exitWith(printEnvelope(env, plainLinesFetch))
		return nil
	}

	if result.Classification != docmodel.ClassOK {
		env := envelope.NewError("fetch", version, fetchData{Document: result.Document}, nil, envelope.FromClassification(result.Classification), result.Reason,
			map[string]any{"next_steps": result.NextSteps, "reason": result.Reason}, cfg.Redact, meta)
		exitWith(printEnvelope(env, plainLinesFetch))
		return nil
	}

	env := envelope.New("fetch", version, fetchData{Document: result.Document}, nil, meta)
	exitWith(printEnvelope(env, plainLinesFetch))
	return nil
}

// fetchData is the command's envelope data shape: {document: Document}.
type fetchData struct {
	Document docmodel.Document `json:"document"`
}

// plainLinesFetch prints the cached body path.
func plainLinesFetch(env envelope.Envelope) []string {
	data, ok := env.Data.(fetchData)
	if !ok || data.Document.Artifact == nil {
		return nil
	}
	return []string{data.Document.Artifact.BodyPath}
}
