// Package main is the entry point for the ccdir CLI.
package main

import (
	"os"

	"github.com/thoreinstein/ccdir/cmd/ccdir/commands"
	"github.com/thoreinstein/ccdir/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
