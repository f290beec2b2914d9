package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/webtool-dev/webtool/internal/envelope"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the configured search providers and why each is enabled or not",
	RunE:  runProvidersCommand,
}

type providerInfo struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Enabled        bool     `json:"enabled"`
	RequiredEnv    []string `json:"required_env,omitempty"`
	PrivacyWarning string   `json:"privacy_warning,omitempty"`
}

func runProvidersCommand(cmd *cobra.Command, args []string) error {
	start := time.Now()
	a, err := buildApp()
	if err != nil {
		return err
	}

	var data []providerInfo
	for _, e := range a.Registry.List() {
		data = append(data, providerInfo{
			ID:             e.ID,
			Type:           e.Type,
			Enabled:        e.Enabled,
			RequiredEnv:    e.RequiredEnv,
			PrivacyWarning: e.PrivacyWarning,
		})
	}

	env := envelope.New("providers", version, data, nil, envelope.Meta{DurationMS: envelope.Since(start)})
	code := printEnvelope(env, plainLinesProviders)
	exitWith(code)
	return nil
}

// plainLinesProviders prints provider ids.
func plainLinesProviders(env envelope.Envelope) []string {
	data, ok := env.Data.([]providerInfo)
	if !ok {
		return nil
	}
	lines := make([]string, 0, len(data))
	for _, p := range data {
		lines = append(lines, p.ID)
	}
	return lines
}
