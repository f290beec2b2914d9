package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/webtool-dev/webtool/internal/docmodel"
	"github.com/webtool-dev/webtool/internal/envelope"
	"github.com/webtool-dev/webtool/internal/search"
)

var searchTopK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search via the first enabled provider (or --provider) and return ranked results",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchCommand,
}

func init() {
	searchCmd.Flags().IntVar(&searchTopK, "top-k", 10, "maximum number of results to return")
}

func runSearchCommand(cmd *cobra.Command, args []string) error {
	start := time.Now()
	query := args[0]

	a, err := buildApp()
	if err != nil {
		return err
	}

	var info search.Info
	var ok bool
	if cfg.ProviderID != "" {
		info, ok = a.Registry.ByID(cfg.ProviderID)
	} else {
		info, ok = a.Registry.FirstEnabled()
	}
	meta := envelope.Meta{DurationMS: envelope.Since(start)}
	if !ok {
		env := envelope.NewError("search", version, nil, nil, envelope.ErrProviderError,
			"no enabled search provider (run `webtool providers` to see required credentials)", nil, cfg.Redact, meta)
		exitWith(printEnvelope(env, plainLinesSearch))
		return nil
	}
	meta.Providers = []string{info.ID}

	results, err := info.Provider.Search(cmd.Context(), query, searchTopK)
	meta.DurationMS = envelope.Since(start)
	if err != nil {
		env := envelope.NewError("search", version, nil, nil, envelope.ErrProviderError, err.Error(), nil, cfg.Redact, meta)
		exitWith(printEnvelope(env, plainLinesSearch))
		return nil
	}

	data := map[string]any{"query": query, "provider": info.ID, "results": results}
	env := envelope.New("search", version, data, nil, meta)
	exitWith(printEnvelope(env, plainLinesSearch))
	return nil
}

// plainLinesSearch prints result URLs.
func plainLinesSearch(env envelope.Envelope) []string {
	data, ok := env.Data.(map[string]any)
	if !ok {
		return nil
	}
	results, _ := data["results"].([]docmodel.SearchResult)
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, r.URL)
	}
	return lines
}
