package main

import (
	"testing"

	"github.com/webtool-dev/webtool/internal/envelope"
)

func TestPrintEnvelope_ReturnsMappedExitCode(t *testing.T) {
	prevQuiet := cfg.Quiet
	cfg.Quiet = true
	defer func() { cfg.Quiet = prevQuiet }()

	env := envelope.NewError("fetch", version, nil, nil, envelope.ErrNeedsRender, "js required", nil, false, envelope.Meta{})
	code := printEnvelope(env, func(envelope.Envelope) []string { return nil })
	if code != 5 {
		t.Fatalf("expected exit 5 for needs_render, got %d", code)
	}
}

func TestPrintEnvelope_OKIsZero(t *testing.T) {
	prevQuiet := cfg.Quiet
	cfg.Quiet = true
	defer func() { cfg.Quiet = prevQuiet }()

	env := envelope.New("fetch", version, map[string]string{"url": "https://a.example/"}, nil, envelope.Meta{})
	code := printEnvelope(env, func(envelope.Envelope) []string { return []string{"https://a.example/"} })
	if code != 0 {
		t.Fatalf("expected exit 0 for ok envelope, got %d", code)
	}
}

func TestColorEnabled_RespectsNoColorFlag(t *testing.T) {
	prev := cfg.NoColor
	cfg.NoColor = true
	defer func() { cfg.NoColor = prev }()

	if colorEnabled() {
		t.Fatal("expected colorEnabled() to be false when --no-color is set")
	}
}
