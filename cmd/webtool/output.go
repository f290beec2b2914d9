package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/webtool-dev/webtool/internal/envelope"
	"github.com/webtool-dev/webtool/internal/policy"
)

// stdout is the data-payload writer. go-colorable wraps it so ANSI color
// codes render correctly on Windows consoles, matching a terminal-aware
// zerolog.ConsoleWriter setup generalized to our own status-line coloring.
var stdout io.Writer = colorable.NewColorableStdout()

// colorEnabled reports whether ANSI status coloring should be emitted:
// stdout must be a real terminal and neither --no-color nor NO_COLOR may be
// set.
func colorEnabled() bool {
	if cfg.NoColor {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// printEnvelope writes env to stdout per the active output mode (plain
// mode emits one semantic value per line), then returns the exit code
// envelope.ExitCode maps it to. plainLines renders the command-specific
// plain-mode projection; it is never called in JSON/pretty mode.
func printEnvelope(env envelope.Envelope, plainLines func(envelope.Envelope) []string) int {
	switch {
	case cfg.Plain:
		for _, line := range plainLines(env) {
			if cfg.Redact && strings.HasPrefix(line, "http") {
				line = policy.RedactURL(line)
			}
			fmt.Fprintln(stdout, line)
		}
	case cfg.Pretty:
		b, _ := json.MarshalIndent(env, "", "  ")
		fmt.Fprintln(stdout, string(b))
	default:
		b, _ := json.Marshal(env)
		fmt.Fprintln(stdout, string(b))
	}
	printStatusLine(env)
	return envelope.ExitCode(env)
}

// exitWith terminates the process with code. Every subcommand calls this
// directly after printing its envelope instead of returning an error from
// RunE, since cobra's own error path collapses every failure to exit 1 and
// the exit-code taxonomy needs six distinct values.
func exitWith(code int) {
	os.Exit(code)
}

// printStatusLine writes a one-line colored ok/error summary to stderr,
// suppressed under --quiet since it is a convenience for interactive use,
// not part of the data contract on stdout.
func printStatusLine(env envelope.Envelope) {
	if cfg.Quiet {
		return
	}
	if env.OK {
		if colorEnabled() {
			fmt.Fprintf(os.Stderr, "\x1b[32mok\x1b[0m %s (%dms)\n", env.Command, env.Meta.DurationMS)
		} else {
			fmt.Fprintf(os.Stderr, "ok %s (%dms)\n", env.Command, env.Meta.DurationMS)
		}
		return
	}
	msg := "error"
	if env.Error != nil {
		msg = fmt.Sprintf("%s: %s", env.Error.Code, env.Error.Message)
	}
	if colorEnabled() {
		fmt.Fprintf(os.Stderr, "\x1b[31merror\x1b[0m %s %s (%dms)\n", env.Command, msg, env.Meta.DurationMS)
	} else {
		fmt.Fprintf(os.Stderr, "error %s %s (%dms)\n", env.Command, msg, env.Meta.DurationMS)
	}
}
