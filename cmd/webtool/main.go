// Command webtool is a portable search/fetch/extract CLI kernel. It wires
// internal/config, internal/orchestrator, and the concrete search/render
// collaborators together behind a cobra subcommand tree.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
