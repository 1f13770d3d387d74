// Package main provides the entry point for steward-cli.
//
// steward-cli is the command-line client for a running steward-server:
// account registration, session management, command submission, and
// the token authorization flows.
package main

import (
	"fmt"
	"os"

	"github.com/stewardhq/steward-go/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
