package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/webtool-dev/webtool/internal/policy"
)

// enforcePolicy applies domain allow/block gating and, unless robots mode
// is ignore, robots.txt, for commands (fetch, render) that talk to the
// network directly instead of going through orchestrator.Extract's own
// policy check.
func enforcePolicy(cmd *cobra.Command, a *app, rawURL string) (*policy.Refusal, error) {
	refusal, err := policy.EnforceURLPolicy(rawURL, a.Policy)
	if err != nil {
		return nil, fmt.Errorf("policy check: %w", err)
	}
	if refusal != nil {
		return refusal, nil
	}
	if a.Policy.RobotsMode == policy.RobotsIgnore || a.Robots == nil {
		return nil, nil
	}
	allowed, err := a.Robots.Allowed(contextOf(cmd), rawURL)
	if err != nil {
		return nil, nil // fail open, matching RobotsManager.Allowed's own contract
	}
	if !allowed && a.Policy.RobotsMode == policy.RobotsRespect {
		return &policy.Refusal{Code: policy.RefusalRobotsDisallow, Message: fmt.Sprintf("robots.txt disallows %s", rawURL)}, nil
	}
	return nil, nil
}

func contextOf(cmd *cobra.Command) context.Context {
	return cmd.Context()
}
