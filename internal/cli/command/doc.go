// Package command provides CLI command definitions for steward-cli.
//
// It uses urfave/cli/v2 for command parsing. Commands talk to a
// running server through the client package and print either plain
// text or JSON, depending on the --json flag.
package command
